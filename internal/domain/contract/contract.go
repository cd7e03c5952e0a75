package contract

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/realty/backend/internal/domain/shared"
	"github.com/realty/backend/internal/domain/shared/valueobject"
)

// ContractStatus represents the lifecycle status of a contract
type ContractStatus string

const (
	StatusDraft            ContractStatus = "DRAFT"
	StatusPendingSignature ContractStatus = "PENDING_SIGNATURE"
	StatusActive           ContractStatus = "ACTIVE"
	StatusCompleted        ContractStatus = "COMPLETED"
	StatusTerminated       ContractStatus = "TERMINATED"
	StatusCancelled        ContractStatus = "CANCELLED"
	StatusExpired          ContractStatus = "EXPIRED"
)

// IsValid checks if the status is a valid ContractStatus
func (s ContractStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusPendingSignature, StatusActive,
		StatusCompleted, StatusTerminated, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// String returns the string representation of ContractStatus
func (s ContractStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the contract can no longer change status
func (s ContractStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusTerminated, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// ContractType distinguishes sale from lease agreements
type ContractType string

const (
	TypeSale  ContractType = "SALE"
	TypeLease ContractType = "LEASE"
)

// IsValid checks if the contract type is valid
func (t ContractType) IsValid() bool {
	return t == TypeSale || t == TypeLease
}

// Signature records one party's signature on the contract. The blob is an
// opaque payload supplied by the signing integration; the engine never
// inspects it.
type Signature struct {
	Signed   bool       `json:"signed"`
	Blob     string     `json:"blob,omitempty"`
	SignedAt *time.Time `json:"signed_at,omitempty"`
}

// NewInvalidTransitionError builds the error returned for a disallowed
// status transition
func NewInvalidTransitionError(from ContractStatus, action string) *shared.DomainError {
	return shared.NewDomainError(shared.ErrCodeInvalidTransition,
		fmt.Sprintf("Cannot %s a contract in %s status", action, from))
}

// Contract is the aggregate root for a sales or lease agreement. It owns the
// ordered payment plan; the ledger engine is the only writer of installment
// paid amounts and penalty fields.
type Contract struct {
	shared.BaseAggregateRoot
	ContractNumber string
	Type           ContractType
	Status         ContractStatus
	PropertyID     uuid.UUID
	ClientID       uuid.UUID
	DeveloperID    uuid.UUID
	AgentID        *uuid.UUID
	BrokerID       *uuid.UUID

	Currency          valueobject.Currency
	TotalAmount       valueobject.Money
	ReservationFee    valueobject.Money
	DownpaymentAmount valueobject.Money
	EquityAmount      valueobject.Money
	LoanableAmount    valueobject.Money
	DownpaymentMonths int
	TermMonths        int

	AgentCommissionRate  *decimal.Decimal // percent, nil when no agent commission configured
	BrokerCommissionRate *decimal.Decimal // percent, nil when no broker commission configured
	AllowPrepayment      bool

	StartDate time.Time
	EndDate   *time.Time

	ClientSignature    Signature
	DeveloperSignature Signature
	AgentSignature     Signature

	Installments Installments

	CompletedAt       *time.Time
	TerminatedAt      *time.Time
	TerminationReason string
	CancelledAt       *time.Time
	CancelReason      string
	ExpiredAt         *time.Time
}

// NewContractParams carries the inputs for creating a contract
type NewContractParams struct {
	ContractNumber    string
	Type              ContractType
	PropertyID        uuid.UUID
	ClientID          uuid.UUID
	DeveloperID       uuid.UUID
	AgentID           *uuid.UUID
	BrokerID          *uuid.UUID
	TotalAmount       valueobject.Money
	ReservationFee    valueobject.Money
	DownpaymentAmount valueobject.Money
	EquityAmount      valueobject.Money
	LoanableAmount    valueobject.Money
	DownpaymentMonths int
	TermMonths        int
	AgentRate         *decimal.Decimal
	BrokerRate        *decimal.Decimal
	AllowPrepayment   bool
	StartDate         time.Time
	EndDate           *time.Time
}

// NewContract creates a contract in DRAFT status.
// For sale contracts the financial split must reconcile exactly:
// downpayment + equity + loanable == total.
func NewContract(p NewContractParams) (*Contract, error) {
	if p.ContractNumber == "" {
		return nil, shared.NewDomainError("INVALID_CONTRACT_NUMBER", "Contract number cannot be empty")
	}
	if !p.Type.IsValid() {
		return nil, shared.NewDomainError("INVALID_CONTRACT_TYPE", "Contract type is not valid")
	}
	if p.PropertyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROPERTY", "Property ID cannot be empty")
	}
	if p.ClientID == uuid.Nil || p.DeveloperID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTY", "Client and developer IDs are required")
	}
	if !p.TotalAmount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total amount must be positive")
	}
	currency := p.TotalAmount.Currency()
	// Unset component amounts default to zero in the contract currency.
	for _, m := range []*valueobject.Money{&p.ReservationFee, &p.DownpaymentAmount, &p.EquityAmount, &p.LoanableAmount} {
		if m.IsZero() && m.Currency() == "" {
			*m = valueobject.Zero(currency)
		}
		if m.Currency() != currency {
			return nil, valueobject.ErrCurrencyMismatch
		}
		if m.IsNegative() {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Scheduled amounts cannot be negative")
		}
	}

	if p.Type == TypeSale {
		split := p.DownpaymentAmount.MustAdd(p.EquityAmount).MustAdd(p.LoanableAmount)
		if !split.Equals(p.TotalAmount) {
			return nil, shared.NewDomainError(shared.ErrCodeInvalidSchedule,
				fmt.Sprintf("Downpayment + equity + loanable (%s) must equal total amount (%s)", split, p.TotalAmount))
		}
		gt, _ := p.ReservationFee.Compare(p.DownpaymentAmount)
		if gt > 0 {
			return nil, shared.NewDomainError(shared.ErrCodeInvalidSchedule,
				"Reservation fee cannot exceed the downpayment amount")
		}
	}

	c := &Contract{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		ContractNumber:       p.ContractNumber,
		Type:                 p.Type,
		Status:               StatusDraft,
		PropertyID:           p.PropertyID,
		ClientID:             p.ClientID,
		DeveloperID:          p.DeveloperID,
		AgentID:              p.AgentID,
		BrokerID:             p.BrokerID,
		Currency:             currency,
		TotalAmount:          p.TotalAmount,
		ReservationFee:       p.ReservationFee,
		DownpaymentAmount:    p.DownpaymentAmount,
		EquityAmount:         p.EquityAmount,
		LoanableAmount:       p.LoanableAmount,
		DownpaymentMonths:    p.DownpaymentMonths,
		TermMonths:           p.TermMonths,
		AgentCommissionRate:  p.AgentRate,
		BrokerCommissionRate: p.BrokerRate,
		AllowPrepayment:      p.AllowPrepayment,
		StartDate:            p.StartDate,
		EndDate:              p.EndDate,
		Installments:         Installments{},
	}

	c.AddDomainEvent(NewContractCreatedEvent(c))

	return c, nil
}

// AttachSchedule sets the payment plan produced by the schedule builder.
// Only permitted while the contract is still a draft.
func (c *Contract) AttachSchedule(installments Installments) error {
	if c.Status != StatusDraft {
		return NewInvalidTransitionError(c.Status, "attach a schedule to")
	}
	if len(installments) == 0 {
		return shared.NewDomainError(shared.ErrCodeInvalidSchedule, "Schedule cannot be empty")
	}
	if installments.TotalScheduledMinor() != c.TotalAmount.MinorUnits() {
		return shared.NewDomainError(shared.ErrCodeInvalidSchedule,
			"Scheduled installments must sum to the contract total")
	}
	c.Installments = installments
	c.Touch()
	c.IncrementVersion()
	return nil
}

// SubmitForSignature moves DRAFT -> PENDING_SIGNATURE. A payment plan must
// have been built first.
func (c *Contract) SubmitForSignature() error {
	if c.Status != StatusDraft {
		return NewInvalidTransitionError(c.Status, "submit")
	}
	if len(c.Installments) == 0 {
		return shared.NewDomainError(shared.ErrCodeInvalidSchedule,
			"Cannot submit a contract without a payment schedule")
	}
	c.Status = StatusPendingSignature
	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewContractSubmittedEvent(c))
	return nil
}

// SignerRole identifies which party is signing
type SignerRole string

const (
	SignerClient    SignerRole = "CLIENT"
	SignerDeveloper SignerRole = "DEVELOPER"
	SignerAgent     SignerRole = "AGENT"
)

// Sign records a party's signature. Signing is only meaningful while the
// contract awaits signatures; each party signs at most once.
func (c *Contract) Sign(role SignerRole, blob string, at time.Time) error {
	if c.Status != StatusPendingSignature {
		return NewInvalidTransitionError(c.Status, "sign")
	}

	var target *Signature
	switch role {
	case SignerClient:
		target = &c.ClientSignature
	case SignerDeveloper:
		target = &c.DeveloperSignature
	case SignerAgent:
		if c.AgentID == nil {
			return shared.NewDomainError("NO_AGENT", "Contract has no assigned agent")
		}
		target = &c.AgentSignature
	default:
		return shared.NewDomainError("INVALID_SIGNER", "Unknown signer role")
	}

	if target.Signed {
		return shared.NewDomainError("ALREADY_SIGNED", fmt.Sprintf("%s has already signed", role))
	}
	target.Signed = true
	target.Blob = blob
	target.SignedAt = &at
	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewContractSignedEvent(c, role))
	return nil
}

// IsFullySigned reports whether all required signatures are present.
// Client and developer always sign; the agent only when one is assigned.
func (c *Contract) IsFullySigned() bool {
	if !c.ClientSignature.Signed || !c.DeveloperSignature.Signed {
		return false
	}
	if c.AgentID != nil && !c.AgentSignature.Signed {
		return false
	}
	return true
}

// Activate moves PENDING_SIGNATURE -> ACTIVE once all required signatures
// are present.
func (c *Contract) Activate() error {
	if c.Status != StatusPendingSignature {
		return NewInvalidTransitionError(c.Status, "activate")
	}
	if !c.IsFullySigned() {
		return shared.NewDomainError("MISSING_SIGNATURES", "All required parties must sign before activation")
	}
	c.Status = StatusActive
	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewContractActivatedEvent(c))
	return nil
}

// CompleteIfSettled moves ACTIVE -> COMPLETED when the cumulative principal
// paid equals the contract total exactly. It is invoked by the ledger engine
// after every allocation; calling it early is a no-op. The engine owns the
// version bump for the whole operation, so none happens here.
func (c *Contract) CompleteIfSettled(at time.Time) bool {
	if c.Status != StatusActive {
		return false
	}
	if c.Installments.ScheduledPaidMinor() != c.TotalAmount.MinorUnits() {
		return false
	}
	c.Status = StatusCompleted
	c.CompletedAt = &at
	c.Touch()
	c.AddDomainEvent(NewContractCompletedEvent(c))
	return true
}

// ReopenIfUnsettled reverts COMPLETED -> ACTIVE after a reversal drops the
// paid principal below the contract total again. Like CompleteIfSettled, the
// version bump belongs to the engine operation that drove it.
func (c *Contract) ReopenIfUnsettled() bool {
	if c.Status != StatusCompleted {
		return false
	}
	if c.Installments.ScheduledPaidMinor() == c.TotalAmount.MinorUnits() {
		return false
	}
	c.Status = StatusActive
	c.CompletedAt = nil
	c.Touch()
	return true
}

// Expire moves ACTIVE -> EXPIRED when now has passed the end date without
// the contract completing.
func (c *Contract) Expire(now time.Time) error {
	if c.Status != StatusActive {
		return NewInvalidTransitionError(c.Status, "expire")
	}
	if c.EndDate == nil || !now.After(*c.EndDate) {
		return shared.NewDomainError(shared.ErrCodeInvalidTransition, "Contract end date has not passed")
	}
	c.Status = StatusExpired
	c.ExpiredAt = &now
	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewContractExpiredEvent(c))
	return nil
}

// Terminate is an administrative action, legal from any non-terminal state
func (c *Contract) Terminate(reason string, at time.Time) error {
	if c.Status.IsTerminal() {
		return NewInvalidTransitionError(c.Status, "terminate")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Termination reason is required")
	}
	c.Status = StatusTerminated
	c.TerminatedAt = &at
	c.TerminationReason = reason
	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewContractClosedEvent(c, StatusTerminated, reason))
	return nil
}

// Cancel is an administrative action, legal from any non-terminal state
func (c *Contract) Cancel(reason string, at time.Time) error {
	if c.Status.IsTerminal() {
		return NewInvalidTransitionError(c.Status, "cancel")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}
	c.Status = StatusCancelled
	c.CancelledAt = &at
	c.CancelReason = reason
	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewContractClosedEvent(c, StatusCancelled, reason))
	return nil
}

// CumulativePrincipalPaid returns the principal recognized across all
// installments. Penalties are excluded.
func (c *Contract) CumulativePrincipalPaid() valueobject.Money {
	return valueobject.MustMoney(c.Installments.TotalPaidMinor(), c.Currency)
}

// OutstandingPrincipal returns the unpaid scheduled principal
func (c *Contract) OutstandingPrincipal() valueobject.Money {
	return valueobject.MustMoney(
		c.Installments.TotalScheduledMinor()-c.Installments.TotalPaidMinor(), c.Currency)
}

// PaymentProgress is a read-only snapshot of how far a contract has been
// paid down
type PaymentProgress struct {
	TotalAmount     valueobject.Money `json:"total_amount"`
	PrincipalPaid   valueobject.Money `json:"principal_paid"`
	Remaining       valueobject.Money `json:"remaining"`
	PenaltyAssessed valueobject.Money `json:"penalty_assessed"`
	ProgressPercent decimal.Decimal   `json:"progress_percent"`
}

// Progress computes the payment progress snapshot
func (c *Contract) Progress() PaymentProgress {
	paid := c.CumulativePrincipalPaid()
	percent := decimal.Zero
	if c.TotalAmount.IsPositive() {
		percent = paid.Decimal().Div(c.TotalAmount.Decimal()).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return PaymentProgress{
		TotalAmount:     c.TotalAmount,
		PrincipalPaid:   paid,
		Remaining:       c.TotalAmount.MustSubtract(paid),
		PenaltyAssessed: valueobject.MustMoney(c.Installments.TotalPenaltyMinor(), c.Currency),
		ProgressPercent: percent,
	}
}

// IsActive returns true if the contract is currently active
func (c *Contract) IsActive() bool {
	return c.Status == StatusActive
}

// HasAgent returns true when an agent is assigned
func (c *Contract) HasAgent() bool {
	return c.AgentID != nil
}

// HasBroker returns true when a broker is assigned
func (c *Contract) HasBroker() bool {
	return c.BrokerID != nil
}
