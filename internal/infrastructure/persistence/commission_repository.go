package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/realty/backend/internal/domain/ledger"
	"github.com/realty/backend/internal/infrastructure/persistence/models"
)

// GormCommissionRepository implements ledger.CommissionRepository using GORM
type GormCommissionRepository struct {
	db *gorm.DB
}

// NewGormCommissionRepository creates a new GormCommissionRepository
func NewGormCommissionRepository(db *gorm.DB) *GormCommissionRepository {
	return &GormCommissionRepository{db: db}
}

// FindByID finds a commission record by ID. Returns nil when no row exists.
func (r *GormCommissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.CommissionRecord, error) {
	var model models.CommissionRecordModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByContract lists all commission records for a contract
func (r *GormCommissionRepository) FindByContract(ctx context.Context, contractID uuid.UUID) ([]ledger.CommissionRecord, error) {
	var recordModels []models.CommissionRecordModel
	if err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("created_at ASC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}

	records := make([]ledger.CommissionRecord, len(recordModels))
	for i := range recordModels {
		records[i] = *recordModels[i].ToDomain()
	}
	return records, nil
}

// FindOpenByContract returns the unpaid record per role for a contract.
// At most one open record exists per role; the calculator opens a fresh one
// only after the previous record is paid out.
func (r *GormCommissionRepository) FindOpenByContract(ctx context.Context, contractID uuid.UUID) (map[ledger.BeneficiaryRole]*ledger.CommissionRecord, error) {
	var recordModels []models.CommissionRecordModel
	if err := r.db.WithContext(ctx).
		Where("contract_id = ? AND payout_transaction_id IS NULL", contractID).
		Find(&recordModels).Error; err != nil {
		return nil, err
	}

	open := make(map[ledger.BeneficiaryRole]*ledger.CommissionRecord, len(recordModels))
	for i := range recordModels {
		record := recordModels[i].ToDomain()
		open[record.Role] = record
	}
	return open, nil
}

// Save creates or updates a commission record
func (r *GormCommissionRepository) Save(ctx context.Context, record *ledger.CommissionRecord) error {
	model := models.CommissionRecordModelFromDomain(record)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormCommissionRepository implements ledger.CommissionRepository
var _ ledger.CommissionRepository = (*GormCommissionRepository)(nil)
