package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/realty/backend/internal/domain/contract"
	"github.com/realty/backend/internal/domain/shared"
)

// TransactionFilter defines filtering options for ledger queries
type TransactionFilter struct {
	shared.Filter
	Type *TransactionType
}

// TransactionRepository persists the append-only ledger. Entries are only
// ever inserted; the single permitted update is stamping the reversed-by
// back-reference on an original entry when its reversal is recorded.
type TransactionRepository interface {
	// Create appends a ledger entry
	Create(ctx context.Context, txn *Transaction) error

	// FindByID finds a ledger entry by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// FindByContract lists a contract's ledger entries, oldest first
	FindByContract(ctx context.Context, contractID uuid.UUID, filter TransactionFilter) ([]Transaction, int64, error)

	// MarkReversed stamps the reversed-by back-reference on the original
	// entry. Fails with shared.ErrConcurrencyConflict when another reversal
	// won the race.
	MarkReversed(ctx context.Context, originalID, reversalID uuid.UUID) error
}

// CommissionRepository persists commission records
type CommissionRepository interface {
	// FindByID finds a commission record by ID
	FindByID(ctx context.Context, id uuid.UUID) (*CommissionRecord, error)

	// FindByContract lists all commission records for a contract
	FindByContract(ctx context.Context, contractID uuid.UUID) ([]CommissionRecord, error)

	// FindOpenByContract returns the unpaid record per role for a contract
	FindOpenByContract(ctx context.Context, contractID uuid.UUID) (map[BeneficiaryRole]*CommissionRecord, error)

	// Save creates or updates a commission record
	Save(ctx context.Context, record *CommissionRecord) error
}

// UnitOfWorkStore bundles the repositories bound to one transaction.
type UnitOfWorkStore interface {
	Contracts() contract.Repository
	Ledger() TransactionRepository
	Commissions() CommissionRepository
}

// UnitOfWork runs fn atomically: every write made through the store commits
// together or not at all. A ledger operation persists the contract aggregate,
// its ledger entries and its commission accruals as one unit; a partial write
// would leave paid installments with no ledger entry backing them.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(store UnitOfWorkStore) error) error
}
