package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/realty/backend/internal/domain/ledger"
	"github.com/realty/backend/internal/domain/shared"
	"github.com/realty/backend/internal/infrastructure/persistence/models"
)

// GormTransactionRepository implements ledger.TransactionRepository using GORM.
// The ledger is append-only: rows are inserted, never deleted, and the only
// update ever issued is MarkReversed stamping the reversed-by back-reference.
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Create appends a ledger entry
func (r *GormTransactionRepository) Create(ctx context.Context, txn *ledger.Transaction) error {
	model := models.TransactionModelFromDomain(txn)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID finds a ledger entry by ID. Returns nil when no row exists.
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByContract lists a contract's ledger entries, oldest first
func (r *GormTransactionRepository) FindByContract(ctx context.Context, contractID uuid.UUID, filter ledger.TransactionFilter) ([]ledger.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.TransactionModel{}).
		Where("contract_id = ?", contractID)
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var txnModels []models.TransactionModel
	if err := query.Order("created_at ASC").Find(&txnModels).Error; err != nil {
		return nil, 0, err
	}

	txns := make([]ledger.Transaction, len(txnModels))
	for i := range txnModels {
		txns[i] = *txnModels[i].ToDomain()
	}
	return txns, total, nil
}

// MarkReversed stamps the reversed-by back-reference on the original entry.
// The IS NULL guard makes concurrent reversals race on the same row: exactly
// one update lands, the loser gets a concurrency conflict.
func (r *GormTransactionRepository) MarkReversed(ctx context.Context, originalID, reversalID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("id = ? AND reversed_by_id IS NULL", originalID).
		Update("reversed_by_id", reversalID)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Ensure GormTransactionRepository implements ledger.TransactionRepository
var _ ledger.TransactionRepository = (*GormTransactionRepository)(nil)
