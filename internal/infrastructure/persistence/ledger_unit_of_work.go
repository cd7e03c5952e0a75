package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/realty/backend/internal/domain/contract"
	"github.com/realty/backend/internal/domain/ledger"
)

// GormLedgerUnitOfWork runs ledger write sequences inside a single database
// transaction. The store handed to fn wraps repositories bound to that
// transaction, so the contract aggregate, ledger entries and commission
// records commit or roll back together.
type GormLedgerUnitOfWork struct {
	db *gorm.DB
}

// NewGormLedgerUnitOfWork creates a unit of work over the given connection
func NewGormLedgerUnitOfWork(db *gorm.DB) *GormLedgerUnitOfWork {
	return &GormLedgerUnitOfWork{db: db}
}

// Execute implements ledger.UnitOfWork
func (u *GormLedgerUnitOfWork) Execute(ctx context.Context, fn func(store ledger.UnitOfWorkStore) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormUnitOfWorkStore{tx: tx})
	})
}

type gormUnitOfWorkStore struct {
	tx *gorm.DB
}

func (s *gormUnitOfWorkStore) Contracts() contract.Repository {
	return NewGormContractRepository(s.tx)
}

func (s *gormUnitOfWorkStore) Ledger() ledger.TransactionRepository {
	return NewGormTransactionRepository(s.tx)
}

func (s *gormUnitOfWorkStore) Commissions() ledger.CommissionRepository {
	return NewGormCommissionRepository(s.tx)
}
