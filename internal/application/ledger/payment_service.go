package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/realty/backend/internal/domain/contract"
	"github.com/realty/backend/internal/domain/ledger"
	"github.com/realty/backend/internal/domain/shared"
	"github.com/realty/backend/internal/domain/shared/valueobject"
)

// PaymentService orchestrates the ledger engine: it loads the contract,
// serializes the operation per contract, runs the engine and persists the
// aggregate together with the ledger entries and commission accruals in one
// unit of work.
type PaymentService struct {
	contractRepo    contract.Repository
	transactionRepo ledger.TransactionRepository
	commissionRepo  ledger.CommissionRepository
	uow             ledger.UnitOfWork
	engine          *ledger.Engine
	calculator      *ledger.Calculator
	locks           *contractLocks
	logger          *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	contractRepo contract.Repository,
	transactionRepo ledger.TransactionRepository,
	commissionRepo ledger.CommissionRepository,
	uow ledger.UnitOfWork,
	engine *ledger.Engine,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		contractRepo:    contractRepo,
		transactionRepo: transactionRepo,
		commissionRepo:  commissionRepo,
		uow:             uow,
		engine:          engine,
		calculator:      ledger.NewCalculator(),
		locks:           newContractLocks(),
		logger:          logger,
	}
}

// ApplyPaymentRequest carries an incoming payment
type ApplyPaymentRequest struct {
	ContractID        uuid.UUID
	Amount            string // decimal string in the contract currency
	ReceivedAt        *time.Time
	ExternalReference string
}

// PaymentResponse summarizes an applied payment
type PaymentResponse struct {
	Transaction    TransactionResponse   `json:"transaction"`
	Penalties      []TransactionResponse `json:"penalties,omitempty"`
	ContractStatus string                `json:"contract_status"`
}

// ApplyPayment applies a payment against a contract's payment plan
func (s *PaymentService) ApplyPayment(ctx context.Context, req ApplyPaymentRequest) (*PaymentResponse, error) {
	unlock := s.locks.Lock(req.ContractID)
	defer unlock()

	c, err := s.loadContract(ctx, req.ContractID)
	if err != nil {
		return nil, err
	}

	amount, err := valueobject.NewMoneyFromString(req.Amount, c.Currency)
	if err != nil {
		return nil, err
	}
	receivedAt := time.Time{}
	if req.ReceivedAt != nil {
		receivedAt = *req.ReceivedAt
	}

	result, err := s.engine.ApplyPayment(c, ledger.PaymentRecord{
		ContractID:        c.ID,
		Amount:            amount,
		ReceivedAt:        receivedAt,
		ExternalReference: req.ExternalReference,
	})
	if err != nil {
		return nil, err
	}

	open, err := s.commissionRepo.FindOpenByContract(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load commission records: %w", err)
	}
	changed, err := s.calculator.OnPaymentRecognized(c, result.Payment, open)
	if err != nil {
		return nil, err
	}

	err = s.uow.Execute(ctx, func(store ledger.UnitOfWorkStore) error {
		if err := store.Contracts().SaveWithLock(ctx, c); err != nil {
			return fmt.Errorf("failed to save contract: %w", err)
		}
		for _, entry := range result.Entries() {
			if err := store.Ledger().Create(ctx, entry); err != nil {
				return fmt.Errorf("failed to save ledger entry: %w", err)
			}
		}
		for _, record := range changed {
			if err := store.Commissions().Save(ctx, record); err != nil {
				return fmt.Errorf("failed to save commission record: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment applied",
		zap.String("contract_id", c.ID.String()),
		zap.String("contract_number", c.ContractNumber),
		zap.String("amount", amount.String()),
		zap.String("principal", result.Payment.Amount.String()),
		zap.Int("penalty_entries", len(result.Penalties)),
		zap.String("status", string(c.Status)),
	)

	resp := &PaymentResponse{
		Transaction:    toTransactionResponse(result.Payment),
		ContractStatus: string(c.Status),
	}
	for _, p := range result.Penalties {
		resp.Penalties = append(resp.Penalties, toTransactionResponse(p))
	}
	return resp, nil
}

// ReverseRequest identifies the ledger entry to reverse
type ReverseRequest struct {
	ContractID    uuid.UUID
	TransactionID uuid.UUID
	Reason        string
}

// ReverseTransaction reverses a PAYMENT ledger entry, unwinding its
// allocations and netting out the commission it accrued.
func (s *PaymentService) ReverseTransaction(ctx context.Context, req ReverseRequest) (*TransactionResponse, error) {
	unlock := s.locks.Lock(req.ContractID)
	defer unlock()

	c, err := s.loadContract(ctx, req.ContractID)
	if err != nil {
		return nil, err
	}

	original, err := s.transactionRepo.FindByID(ctx, req.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if original == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Transaction not found")
	}

	reversal, err := s.engine.ReverseTransaction(c, original, req.Reason)
	if err != nil {
		return nil, err
	}

	open, err := s.commissionRepo.FindOpenByContract(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load commission records: %w", err)
	}
	changed, err := s.calculator.OnPaymentReversed(c, reversal, open)
	if err != nil {
		return nil, err
	}

	err = s.uow.Execute(ctx, func(store ledger.UnitOfWorkStore) error {
		if err := store.Contracts().SaveWithLock(ctx, c); err != nil {
			return fmt.Errorf("failed to save contract: %w", err)
		}
		if err := store.Ledger().Create(ctx, reversal); err != nil {
			return fmt.Errorf("failed to save reversal: %w", err)
		}
		if err := store.Ledger().MarkReversed(ctx, original.ID, reversal.ID); err != nil {
			return fmt.Errorf("failed to mark original reversed: %w", err)
		}
		for _, record := range changed {
			if err := store.Commissions().Save(ctx, record); err != nil {
				return fmt.Errorf("failed to save commission record: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction reversed",
		zap.String("contract_id", c.ID.String()),
		zap.String("original_id", original.ID.String()),
		zap.String("reversal_id", reversal.ID.String()),
		zap.String("reason", req.Reason),
	)

	resp := toTransactionResponse(reversal)
	return &resp, nil
}

// RefundRequest carries a refund instruction
type RefundRequest struct {
	ContractID uuid.UUID
	Amount     string
	Reason     string
}

// RecordRefund returns principal to the payer outside the reversal protocol
func (s *PaymentService) RecordRefund(ctx context.Context, req RefundRequest) (*TransactionResponse, error) {
	unlock := s.locks.Lock(req.ContractID)
	defer unlock()

	c, err := s.loadContract(ctx, req.ContractID)
	if err != nil {
		return nil, err
	}

	amount, err := valueobject.NewMoneyFromString(req.Amount, c.Currency)
	if err != nil {
		return nil, err
	}

	refund, err := s.engine.RecordRefund(c, amount, req.Reason)
	if err != nil {
		return nil, err
	}

	err = s.uow.Execute(ctx, func(store ledger.UnitOfWorkStore) error {
		if err := store.Contracts().SaveWithLock(ctx, c); err != nil {
			return fmt.Errorf("failed to save contract: %w", err)
		}
		if err := store.Ledger().Create(ctx, refund); err != nil {
			return fmt.Errorf("failed to save refund: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("refund recorded",
		zap.String("contract_id", c.ID.String()),
		zap.String("amount", amount.String()),
		zap.String("reason", req.Reason),
	)

	resp := toTransactionResponse(refund)
	return &resp, nil
}

// PayoutCommission freezes a commission record against a COMMISSION_PAYOUT
// ledger entry.
func (s *PaymentService) PayoutCommission(ctx context.Context, contractID, recordID uuid.UUID) (*CommissionResponse, error) {
	unlock := s.locks.Lock(contractID)
	defer unlock()

	c, err := s.loadContract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	record, err := s.commissionRepo.FindByID(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get commission record: %w", err)
	}
	if record == nil || record.ContractID != c.ID {
		return nil, shared.NewDomainError("NOT_FOUND", "Commission record not found")
	}
	if record.ComputedMinor <= 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Commission record has nothing to pay out")
	}

	balance := valueobject.MustMoney(c.Installments.TotalPaidMinor(), c.Currency)
	payout := ledger.NewCommissionPayout(c.ID, record, balance, time.Now())
	if err := record.MarkPaid(payout.ID); err != nil {
		return nil, err
	}

	err = s.uow.Execute(ctx, func(store ledger.UnitOfWorkStore) error {
		if err := store.Ledger().Create(ctx, payout); err != nil {
			return fmt.Errorf("failed to save payout entry: %w", err)
		}
		if err := store.Commissions().Save(ctx, record); err != nil {
			return fmt.Errorf("failed to save commission record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("commission paid out",
		zap.String("contract_id", c.ID.String()),
		zap.String("record_id", record.ID.String()),
		zap.String("role", string(record.Role)),
		zap.String("amount", record.Computed().String()),
	)

	resp := toCommissionResponse(record)
	return &resp, nil
}

// ListTransactionsFilter defines filtering options for ledger queries
type ListTransactionsFilter struct {
	Type     string `form:"type"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// ListTransactions lists a contract's ledger entries, oldest first
func (s *PaymentService) ListTransactions(ctx context.Context, contractID uuid.UUID, filter ListTransactionsFilter) (shared.Paginated[TransactionResponse], error) {
	domainFilter := ledger.TransactionFilter{}
	if filter.Type != "" {
		txnType := ledger.TransactionType(filter.Type)
		domainFilter.Type = &txnType
	}
	domainFilter.Filter = shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	entries, total, err := s.transactionRepo.FindByContract(ctx, contractID, domainFilter)
	if err != nil {
		return shared.Paginated[TransactionResponse]{}, fmt.Errorf("failed to list transactions: %w", err)
	}

	items := make([]TransactionResponse, len(entries))
	for i := range entries {
		items[i] = toTransactionResponse(&entries[i])
	}
	return shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize), nil
}

// ListCommissions lists the commission records of a contract
func (s *PaymentService) ListCommissions(ctx context.Context, contractID uuid.UUID) ([]CommissionResponse, error) {
	records, err := s.commissionRepo.FindByContract(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to list commission records: %w", err)
	}
	items := make([]CommissionResponse, len(records))
	for i := range records {
		items[i] = toCommissionResponse(&records[i])
	}
	return items, nil
}

func (s *PaymentService) loadContract(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	c, err := s.contractRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	if c == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Contract not found")
	}
	return c, nil
}
