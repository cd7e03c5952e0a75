package property

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines property persistence
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Property, error)
	FindAll(ctx context.Context) ([]*Property, error)
	Save(ctx context.Context, p *Property) error
}
