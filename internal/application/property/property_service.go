package property

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/realty/backend/internal/domain/contract"
	"github.com/realty/backend/internal/domain/property"
	"github.com/realty/backend/internal/domain/shared"
	"github.com/realty/backend/internal/domain/shared/valueobject"
)

// PropertyService provides application-level property operations, including
// the construction milestone evaluation over a property's active contracts.
type PropertyService struct {
	propertyRepo property.Repository
	contractRepo contract.Repository

	defaultConstructionPercent *decimal.Decimal
	defaultTurnoverPercent     *decimal.Decimal
}

// PropertyServiceOption configures optional PropertyService behavior
type PropertyServiceOption func(*PropertyService)

// WithDefaultThresholds sets the milestone percentages applied to new
// properties when the create request does not specify them.
func WithDefaultThresholds(constructionPercent, turnoverPercent decimal.Decimal) PropertyServiceOption {
	return func(s *PropertyService) {
		s.defaultConstructionPercent = &constructionPercent
		s.defaultTurnoverPercent = &turnoverPercent
	}
}

// NewPropertyService creates a new PropertyService
func NewPropertyService(propertyRepo property.Repository, contractRepo contract.Repository, opts ...PropertyServiceOption) *PropertyService {
	s := &PropertyService{
		propertyRepo: propertyRepo,
		contractRepo: contractRepo,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreatePropertyRequest carries the inputs for listing a property
type CreatePropertyRequest struct {
	Name                       string
	Price                      string // decimal string
	Currency                   string
	ConstructionTriggerPercent *decimal.Decimal
	TurnoverReadinessPercent   *decimal.Decimal
}

// PropertyResponse represents a property in API responses
type PropertyResponse struct {
	ID                         uuid.UUID       `json:"id"`
	Name                       string          `json:"name"`
	Status                     string          `json:"status"`
	Price                      decimal.Decimal `json:"price"`
	Currency                   string          `json:"currency"`
	ConstructionTriggerPercent decimal.Decimal `json:"construction_trigger_percent"`
	TurnoverReadinessPercent   decimal.Decimal `json:"turnover_readiness_percent"`
	CreatedAt                  time.Time       `json:"created_at"`
	UpdatedAt                  time.Time       `json:"updated_at"`
}

// TriggerResponse reports the milestone evaluation for a property
type TriggerResponse struct {
	PropertyID            uuid.UUID       `json:"property_id"`
	Collected             decimal.Decimal `json:"collected"`
	CollectedPercent      decimal.Decimal `json:"collected_percent"`
	ConstructionThreshold decimal.Decimal `json:"construction_threshold"`
	TurnoverThreshold     decimal.Decimal `json:"turnover_threshold"`
	CanStartConstruction  bool            `json:"can_start_construction"`
	IsTurnoverReady       bool            `json:"is_turnover_ready"`
	ActiveContracts       int             `json:"active_contracts"`
}

// CreateProperty lists a new property
func (s *PropertyService) CreateProperty(ctx context.Context, req CreatePropertyRequest) (*PropertyResponse, error) {
	currency := valueobject.DefaultCurrency
	if req.Currency != "" {
		currency = valueobject.Currency(req.Currency)
	}
	price, err := valueobject.NewMoneyFromString(req.Price, currency)
	if err != nil {
		return nil, err
	}

	prop, err := property.NewProperty(req.Name, price)
	if err != nil {
		return nil, err
	}
	construction := prop.ConstructionTriggerPercent
	turnover := prop.TurnoverReadinessPercent
	if s.defaultConstructionPercent != nil {
		construction = *s.defaultConstructionPercent
	}
	if s.defaultTurnoverPercent != nil {
		turnover = *s.defaultTurnoverPercent
	}
	if req.ConstructionTriggerPercent != nil {
		construction = *req.ConstructionTriggerPercent
	}
	if req.TurnoverReadinessPercent != nil {
		turnover = *req.TurnoverReadinessPercent
	}
	if err := prop.SetThresholds(construction, turnover); err != nil {
		return nil, err
	}

	if err := s.propertyRepo.Save(ctx, prop); err != nil {
		return nil, fmt.Errorf("failed to save property: %w", err)
	}
	return toPropertyResponse(prop), nil
}

// GetByID gets a property by ID
func (s *PropertyService) GetByID(ctx context.Context, id uuid.UUID) (*PropertyResponse, error) {
	prop, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPropertyResponse(prop), nil
}

// List lists all properties
func (s *PropertyService) List(ctx context.Context) ([]PropertyResponse, error) {
	props, err := s.propertyRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	items := make([]PropertyResponse, len(props))
	for i, p := range props {
		items[i] = *toPropertyResponse(p)
	}
	return items, nil
}

// EvaluateTriggers computes the construction and turnover milestones from the
// principal collected across the property's active contracts. Completed
// contracts count too: a fully paid contract is still collected money.
func (s *PropertyService) EvaluateTriggers(ctx context.Context, id uuid.UUID) (*TriggerResponse, error) {
	prop, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	contracts, err := s.contractRepo.FindByProperty(ctx, id,
		contract.StatusActive, contract.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to load contracts: %w", err)
	}

	collected := valueobject.Zero(prop.Price.Currency())
	for i := range contracts {
		paid := contracts[i].CumulativePrincipalPaid()
		collected, err = collected.Add(paid)
		if err != nil {
			return nil, err
		}
	}

	eval, err := property.Evaluate(prop, collected)
	if err != nil {
		return nil, err
	}

	return &TriggerResponse{
		PropertyID:            prop.ID,
		Collected:             collected.Decimal(),
		CollectedPercent:      eval.CollectedPercent.Round(4),
		ConstructionThreshold: eval.ConstructionThreshold,
		TurnoverThreshold:     eval.TurnoverThreshold,
		CanStartConstruction:  eval.CanStartConstruction,
		IsTurnoverReady:       eval.IsTurnoverReady,
		ActiveContracts:       len(contracts),
	}, nil
}

// StartConstruction moves a property into construction once the collection
// threshold is met.
func (s *PropertyService) StartConstruction(ctx context.Context, id uuid.UUID) (*PropertyResponse, error) {
	eval, err := s.EvaluateTriggers(ctx, id)
	if err != nil {
		return nil, err
	}
	if !eval.CanStartConstruction {
		return nil, shared.NewDomainError("THRESHOLD_NOT_MET",
			fmt.Sprintf("Collections at %s%% are below the construction trigger of %s%%",
				eval.CollectedPercent, eval.ConstructionThreshold))
	}

	prop, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := prop.MarkUnderConstruction(); err != nil {
		return nil, err
	}
	if err := s.propertyRepo.Save(ctx, prop); err != nil {
		return nil, fmt.Errorf("failed to save property: %w", err)
	}
	return toPropertyResponse(prop), nil
}

// MarkTurnoverReady marks a property ready for handover once the readiness
// threshold is met.
func (s *PropertyService) MarkTurnoverReady(ctx context.Context, id uuid.UUID) (*PropertyResponse, error) {
	eval, err := s.EvaluateTriggers(ctx, id)
	if err != nil {
		return nil, err
	}
	if !eval.IsTurnoverReady {
		return nil, shared.NewDomainError("THRESHOLD_NOT_MET",
			fmt.Sprintf("Collections at %s%% are below the turnover readiness of %s%%",
				eval.CollectedPercent, eval.TurnoverThreshold))
	}

	prop, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := prop.MarkReadyForTurnover(); err != nil {
		return nil, err
	}
	if err := s.propertyRepo.Save(ctx, prop); err != nil {
		return nil, fmt.Errorf("failed to save property: %w", err)
	}
	return toPropertyResponse(prop), nil
}

func (s *PropertyService) load(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	prop, err := s.propertyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	if prop == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Property not found")
	}
	return prop, nil
}

func toPropertyResponse(p *property.Property) *PropertyResponse {
	return &PropertyResponse{
		ID:                         p.ID,
		Name:                       p.Name,
		Status:                     string(p.Status),
		Price:                      p.Price.Decimal(),
		Currency:                   string(p.Price.Currency()),
		ConstructionTriggerPercent: p.ConstructionTriggerPercent,
		TurnoverReadinessPercent:   p.TurnoverReadinessPercent,
		CreatedAt:                  p.CreatedAt,
		UpdatedAt:                  p.UpdatedAt,
	}
}
