package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/realty/backend/internal/domain/contract"
	"github.com/realty/backend/internal/domain/shared"
	"github.com/realty/backend/internal/infrastructure/persistence/models"
)

// GormContractRepository implements contract.Repository using GORM
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GormContractRepository
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

// FindByID finds a contract by its ID. Returns nil when no row exists.
func (r *GormContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	var model models.ContractModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a contract by its contract number. Returns nil when no
// row exists.
func (r *GormContractRepository) FindByNumber(ctx context.Context, number string) (*contract.Contract, error) {
	var model models.ContractModel
	if err := r.db.WithContext(ctx).
		Where("contract_number = ?", number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists contracts matching the filter with the total row count
func (r *GormContractRepository) FindAll(ctx context.Context, filter contract.Filter) ([]contract.Contract, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ContractModel{})
	query = applyContractFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var contractModels []models.ContractModel
	if err := applyPagination(query, filter.Filter, ContractSortFields).Find(&contractModels).Error; err != nil {
		return nil, 0, err
	}

	contracts := make([]contract.Contract, len(contractModels))
	for i := range contractModels {
		contracts[i] = *contractModels[i].ToDomain()
	}
	return contracts, total, nil
}

// FindByProperty lists a property's contracts, optionally restricted to the
// given statuses
func (r *GormContractRepository) FindByProperty(ctx context.Context, propertyID uuid.UUID, statuses ...contract.ContractStatus) ([]contract.Contract, error) {
	query := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var contractModels []models.ContractModel
	if err := query.Order("created_at ASC").Find(&contractModels).Error; err != nil {
		return nil, err
	}

	contracts := make([]contract.Contract, len(contractModels))
	for i := range contractModels {
		contracts[i] = *contractModels[i].ToDomain()
	}
	return contracts, nil
}

// Save creates or updates a contract
func (r *GormContractRepository) Save(ctx context.Context, c *contract.Contract) error {
	model := models.ContractModelFromDomain(c)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking. The update only lands when the
// stored version is still the one the aggregate was loaded at. Select("*")
// writes zero-valued columns too, so a reopened contract actually clears
// completed_at instead of keeping the stale timestamp.
func (r *GormContractRepository) SaveWithLock(ctx context.Context, c *contract.Contract) error {
	model := models.ContractModelFromDomain(c)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", c.ID, c.Version-1).
		Select("*").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// applyContractFilter applies the field filters to the query
func applyContractFilter(query *gorm.DB, filter contract.Filter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.PropertyID != nil {
		query = query.Where("property_id = ?", *filter.PropertyID)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.AgentID != nil {
		query = query.Where("agent_id = ?", *filter.AgentID)
	}
	if filter.EndedBefore != nil {
		query = query.Where("end_date IS NOT NULL AND end_date < ?", *filter.EndedBefore)
	}
	return query
}

// applyPagination applies paging and whitelisted ordering to the query
func applyPagination(query *gorm.DB, filter shared.Filter, allowedFields map[string]bool) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	field := ValidateSortField(filter.OrderBy, allowedFields, "created_at")
	return query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
}

// Ensure GormContractRepository implements contract.Repository
var _ contract.Repository = (*GormContractRepository)(nil)
