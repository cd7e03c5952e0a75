package contract

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/realty/backend/internal/domain/contract"
	"github.com/realty/backend/internal/domain/property"
	"github.com/realty/backend/internal/domain/shared"
)

// ContractService provides application-level contract operations
type ContractService struct {
	contractRepo contract.Repository
	propertyRepo property.Repository
	builder      *contract.ScheduleBuilder
}

// NewContractService creates a new ContractService
func NewContractService(contractRepo contract.Repository, propertyRepo property.Repository) *ContractService {
	return &ContractService{
		contractRepo: contractRepo,
		propertyRepo: propertyRepo,
		builder:      contract.NewScheduleBuilder(),
	}
}

// CreateContractRequest carries the inputs for creating a contract
type CreateContractRequest struct {
	ContractNumber    string
	Type              string
	PropertyID        uuid.UUID
	ClientID          uuid.UUID
	DeveloperID       uuid.UUID
	AgentID           *uuid.UUID
	BrokerID          *uuid.UUID
	TotalAmount       string // decimal string, e.g. "1000000.00"
	Currency          string
	ReservationFee    string
	DownpaymentAmount string
	EquityAmount      string
	LoanableAmount    string
	DownpaymentMonths int
	TermMonths        int
	AgentRate         *decimal.Decimal
	BrokerRate        *decimal.Decimal
	AllowPrepayment   bool
	StartDate         time.Time
	EndDate           *time.Time
}

// CreateContract creates a contract in DRAFT status with its payment plan
// already built and attached.
func (s *ContractService) CreateContract(ctx context.Context, req CreateContractRequest) (*ContractResponse, error) {
	prop, err := s.propertyRepo.FindByID(ctx, req.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	if prop == nil {
		return nil, shared.NewDomainError("PROPERTY_NOT_FOUND", "Property not found")
	}

	currency := valueCurrency(req.Currency)
	amounts, err := parseAmounts(currency,
		req.TotalAmount, req.ReservationFee, req.DownpaymentAmount, req.EquityAmount, req.LoanableAmount)
	if err != nil {
		return nil, err
	}

	number := req.ContractNumber
	if number == "" {
		number = generateContractNumber(req.Type, req.StartDate)
	}
	if existing, err := s.contractRepo.FindByNumber(ctx, number); err != nil {
		return nil, fmt.Errorf("failed to check contract number: %w", err)
	} else if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_NUMBER",
			fmt.Sprintf("Contract number %s is already in use", number))
	}

	c, err := contract.NewContract(contract.NewContractParams{
		ContractNumber:    number,
		Type:              contract.ContractType(req.Type),
		PropertyID:        req.PropertyID,
		ClientID:          req.ClientID,
		DeveloperID:       req.DeveloperID,
		AgentID:           req.AgentID,
		BrokerID:          req.BrokerID,
		TotalAmount:       amounts[0],
		ReservationFee:    amounts[1],
		DownpaymentAmount: amounts[2],
		EquityAmount:      amounts[3],
		LoanableAmount:    amounts[4],
		DownpaymentMonths: req.DownpaymentMonths,
		TermMonths:        req.TermMonths,
		AgentRate:         req.AgentRate,
		BrokerRate:        req.BrokerRate,
		AllowPrepayment:   req.AllowPrepayment,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
	})
	if err != nil {
		return nil, err
	}

	plan, err := s.builder.Build(c)
	if err != nil {
		return nil, err
	}
	if err := c.AttachSchedule(plan); err != nil {
		return nil, err
	}

	if err := s.contractRepo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save contract: %w", err)
	}
	return toContractResponse(c), nil
}

// SubmitForSignature moves a draft contract into the signing stage
func (s *ContractService) SubmitForSignature(ctx context.Context, id uuid.UUID) (*ContractResponse, error) {
	return s.mutate(ctx, id, func(c *contract.Contract) error {
		return c.SubmitForSignature()
	})
}

// SignRequest records one party's signature
type SignRequest struct {
	Role string `json:"role"`
	Blob string `json:"signature"`
}

// Sign records a signature and activates the contract once every required
// party has signed.
func (s *ContractService) Sign(ctx context.Context, id uuid.UUID, req SignRequest) (*ContractResponse, error) {
	return s.mutate(ctx, id, func(c *contract.Contract) error {
		if err := c.Sign(contract.SignerRole(req.Role), req.Blob, time.Now()); err != nil {
			return err
		}
		if c.IsFullySigned() {
			return c.Activate()
		}
		return nil
	})
}

// Terminate closes a contract administratively
func (s *ContractService) Terminate(ctx context.Context, id uuid.UUID, reason string) (*ContractResponse, error) {
	return s.mutate(ctx, id, func(c *contract.Contract) error {
		return c.Terminate(reason, time.Now())
	})
}

// Cancel cancels a contract administratively
func (s *ContractService) Cancel(ctx context.Context, id uuid.UUID, reason string) (*ContractResponse, error) {
	return s.mutate(ctx, id, func(c *contract.Contract) error {
		return c.Cancel(reason, time.Now())
	})
}

// ExpireOverdue expires an active contract whose end date has passed
func (s *ContractService) ExpireOverdue(ctx context.Context, id uuid.UUID) (*ContractResponse, error) {
	return s.mutate(ctx, id, func(c *contract.Contract) error {
		return c.Expire(time.Now())
	})
}

// GetByID gets a contract by ID
func (s *ContractService) GetByID(ctx context.Context, id uuid.UUID) (*ContractResponse, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toContractResponse(c), nil
}

// GetByNumber gets a contract by its contract number
func (s *ContractService) GetByNumber(ctx context.Context, number string) (*ContractResponse, error) {
	c, err := s.contractRepo.FindByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	if c == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Contract not found")
	}
	return toContractResponse(c), nil
}

// ListFilter defines filtering options for contract list queries
type ListFilter struct {
	Status     string     `form:"status"`
	Type       string     `form:"type"`
	PropertyID *uuid.UUID `form:"property_id"`
	ClientID   *uuid.UUID `form:"client_id"`
	AgentID    *uuid.UUID `form:"agent_id"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}

// List lists contracts with filtering
func (s *ContractService) List(ctx context.Context, filter ListFilter) (shared.Paginated[ContractResponse], error) {
	domainFilter := contract.Filter{
		PropertyID: filter.PropertyID,
		ClientID:   filter.ClientID,
		AgentID:    filter.AgentID,
	}
	if filter.Status != "" {
		status := contract.ContractStatus(filter.Status)
		domainFilter.Status = &status
	}
	if filter.Type != "" {
		contractType := contract.ContractType(filter.Type)
		domainFilter.Type = &contractType
	}
	domainFilter.Filter = shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	contracts, total, err := s.contractRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[ContractResponse]{}, fmt.Errorf("failed to list contracts: %w", err)
	}

	items := make([]ContractResponse, len(contracts))
	for i := range contracts {
		items[i] = *toContractResponse(&contracts[i])
	}
	return shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize), nil
}

// GetProgress returns the payment progress snapshot for a contract
func (s *ContractService) GetProgress(ctx context.Context, id uuid.UUID) (*contract.PaymentProgress, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	progress := c.Progress()
	return &progress, nil
}

// GetSchedule returns the contract's payment plan
func (s *ContractService) GetSchedule(ctx context.Context, id uuid.UUID) ([]InstallmentResponse, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toInstallmentResponses(c), nil
}

func (s *ContractService) load(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	c, err := s.contractRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	if c == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Contract not found")
	}
	return c, nil
}

// mutate loads a contract, applies fn and saves with optimistic locking
func (s *ContractService) mutate(ctx context.Context, id uuid.UUID, fn func(*contract.Contract) error) (*ContractResponse, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.contractRepo.SaveWithLock(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save contract: %w", err)
	}
	return toContractResponse(c), nil
}

// generateContractNumber builds a readable unique contract number
func generateContractNumber(contractType string, startDate time.Time) string {
	prefix := "CTS"
	if contract.ContractType(contractType) == contract.TypeLease {
		prefix = "CTL"
	}
	if startDate.IsZero() {
		startDate = time.Now()
	}
	suffix := uuid.New().String()[:8]
	return fmt.Sprintf("%s-%d-%s", prefix, startDate.Year(), suffix)
}
