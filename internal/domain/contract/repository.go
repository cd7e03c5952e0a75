package contract

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/realty/backend/internal/domain/shared"
)

// Filter defines filtering options for contract queries
type Filter struct {
	shared.Filter
	Status     *ContractStatus
	Type       *ContractType
	PropertyID *uuid.UUID
	ClientID   *uuid.UUID
	AgentID    *uuid.UUID

	// EndedBefore restricts results to contracts whose end date has passed
	// the given instant. Contracts without an end date never match.
	EndedBefore *time.Time
}

// Repository defines the interface for contract persistence.
// The caller is responsible for loading the aggregate with its installments
// and persisting the returned mutations atomically.
type Repository interface {
	// FindByID finds a contract by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Contract, error)

	// FindByNumber finds a contract by its contract number
	FindByNumber(ctx context.Context, number string) (*Contract, error)

	// FindAll lists contracts matching the filter
	FindAll(ctx context.Context, filter Filter) ([]Contract, int64, error)

	// FindByProperty lists a property's contracts in the given statuses,
	// or all of them when no status is given
	FindByProperty(ctx context.Context, propertyID uuid.UUID, statuses ...ContractStatus) ([]Contract, error)

	// Save creates or updates a contract
	Save(ctx context.Context, c *Contract) error

	// SaveWithLock saves with optimistic locking; returns
	// shared.ErrConcurrencyConflict when the stored version has moved on
	SaveWithLock(ctx context.Context, c *Contract) error
}
