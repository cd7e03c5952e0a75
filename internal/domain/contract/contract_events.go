package contract

import (
	"time"

	"github.com/google/uuid"

	"github.com/realty/backend/internal/domain/shared"
)

const aggregateType = "Contract"

// ContractCreatedEvent is raised when a new contract is drafted
type ContractCreatedEvent struct {
	shared.BaseDomainEvent
	ContractID     uuid.UUID    `json:"contract_id"`
	ContractNumber string       `json:"contract_number"`
	ContractType   ContractType `json:"contract_type"`
	PropertyID     uuid.UUID    `json:"property_id"`
	ClientID       uuid.UUID    `json:"client_id"`
	TotalMinor     int64        `json:"total_minor"`
}

// EventType returns the event type name
func (e *ContractCreatedEvent) EventType() string { return "ContractCreated" }

// NewContractCreatedEvent creates a new ContractCreatedEvent
func NewContractCreatedEvent(c *Contract) *ContractCreatedEvent {
	return &ContractCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ContractCreated", aggregateType, c.ID),
		ContractID:      c.ID,
		ContractNumber:  c.ContractNumber,
		ContractType:    c.Type,
		PropertyID:      c.PropertyID,
		ClientID:        c.ClientID,
		TotalMinor:      c.TotalAmount.MinorUnits(),
	}
}

// ContractSubmittedEvent is raised when a draft goes out for signature
type ContractSubmittedEvent struct {
	shared.BaseDomainEvent
	ContractID       uuid.UUID `json:"contract_id"`
	ContractNumber   string    `json:"contract_number"`
	InstallmentCount int       `json:"installment_count"`
}

// EventType returns the event type name
func (e *ContractSubmittedEvent) EventType() string { return "ContractSubmitted" }

// NewContractSubmittedEvent creates a new ContractSubmittedEvent
func NewContractSubmittedEvent(c *Contract) *ContractSubmittedEvent {
	return &ContractSubmittedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("ContractSubmitted", aggregateType, c.ID),
		ContractID:       c.ID,
		ContractNumber:   c.ContractNumber,
		InstallmentCount: len(c.Installments),
	}
}

// ContractSignedEvent is raised when one party signs
type ContractSignedEvent struct {
	shared.BaseDomainEvent
	ContractID  uuid.UUID  `json:"contract_id"`
	Role        SignerRole `json:"role"`
	FullySigned bool       `json:"fully_signed"`
}

// EventType returns the event type name
func (e *ContractSignedEvent) EventType() string { return "ContractSigned" }

// NewContractSignedEvent creates a new ContractSignedEvent
func NewContractSignedEvent(c *Contract, role SignerRole) *ContractSignedEvent {
	return &ContractSignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ContractSigned", aggregateType, c.ID),
		ContractID:      c.ID,
		Role:            role,
		FullySigned:     c.IsFullySigned(),
	}
}

// ContractActivatedEvent is raised when all signatures are in and the
// contract becomes active
type ContractActivatedEvent struct {
	shared.BaseDomainEvent
	ContractID     uuid.UUID `json:"contract_id"`
	ContractNumber string    `json:"contract_number"`
	StartDate      time.Time `json:"start_date"`
}

// EventType returns the event type name
func (e *ContractActivatedEvent) EventType() string { return "ContractActivated" }

// NewContractActivatedEvent creates a new ContractActivatedEvent
func NewContractActivatedEvent(c *Contract) *ContractActivatedEvent {
	return &ContractActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ContractActivated", aggregateType, c.ID),
		ContractID:      c.ID,
		ContractNumber:  c.ContractNumber,
		StartDate:       c.StartDate,
	}
}

// ContractCompletedEvent is raised when the principal is fully paid
type ContractCompletedEvent struct {
	shared.BaseDomainEvent
	ContractID     uuid.UUID `json:"contract_id"`
	ContractNumber string    `json:"contract_number"`
	TotalMinor     int64     `json:"total_minor"`
}

// EventType returns the event type name
func (e *ContractCompletedEvent) EventType() string { return "ContractCompleted" }

// NewContractCompletedEvent creates a new ContractCompletedEvent
func NewContractCompletedEvent(c *Contract) *ContractCompletedEvent {
	return &ContractCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ContractCompleted", aggregateType, c.ID),
		ContractID:      c.ID,
		ContractNumber:  c.ContractNumber,
		TotalMinor:      c.TotalAmount.MinorUnits(),
	}
}

// ContractExpiredEvent is raised when an active contract passes its end date
type ContractExpiredEvent struct {
	shared.BaseDomainEvent
	ContractID uuid.UUID  `json:"contract_id"`
	EndDate    *time.Time `json:"end_date,omitempty"`
}

// EventType returns the event type name
func (e *ContractExpiredEvent) EventType() string { return "ContractExpired" }

// NewContractExpiredEvent creates a new ContractExpiredEvent
func NewContractExpiredEvent(c *Contract) *ContractExpiredEvent {
	return &ContractExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ContractExpired", aggregateType, c.ID),
		ContractID:      c.ID,
		EndDate:         c.EndDate,
	}
}

// ContractClosedEvent is raised on administrative termination or cancellation
type ContractClosedEvent struct {
	shared.BaseDomainEvent
	ContractID uuid.UUID      `json:"contract_id"`
	NewStatus  ContractStatus `json:"new_status"`
	Reason     string         `json:"reason"`
}

// EventType returns the event type name
func (e *ContractClosedEvent) EventType() string { return "ContractClosed" }

// NewContractClosedEvent creates a new ContractClosedEvent
func NewContractClosedEvent(c *Contract, status ContractStatus, reason string) *ContractClosedEvent {
	return &ContractClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ContractClosed", aggregateType, c.ID),
		ContractID:      c.ID,
		NewStatus:       status,
		Reason:          reason,
	}
}
