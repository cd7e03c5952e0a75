package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/realty/backend/internal/domain/contract"
	"github.com/realty/backend/internal/domain/ledger"
	"github.com/realty/backend/internal/domain/shared"
	"github.com/realty/backend/internal/domain/shared/valueobject"
)

// ============================================
// Mock Repositories
// ============================================

type MockContractRepository struct {
	mock.Mock
}

func (m *MockContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.Contract), args.Error(1)
}

func (m *MockContractRepository) FindByNumber(ctx context.Context, number string) (*contract.Contract, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.Contract), args.Error(1)
}

func (m *MockContractRepository) FindAll(ctx context.Context, filter contract.Filter) ([]contract.Contract, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]contract.Contract), args.Get(1).(int64), args.Error(2)
}

func (m *MockContractRepository) FindByProperty(ctx context.Context, propertyID uuid.UUID, statuses ...contract.ContractStatus) ([]contract.Contract, error) {
	args := m.Called(ctx, propertyID, statuses)
	return args.Get(0).([]contract.Contract), args.Error(1)
}

func (m *MockContractRepository) Save(ctx context.Context, c *contract.Contract) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContractRepository) SaveWithLock(ctx context.Context, c *contract.Contract) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *ledger.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByContract(ctx context.Context, contractID uuid.UUID, filter ledger.TransactionFilter) ([]ledger.Transaction, int64, error) {
	args := m.Called(ctx, contractID, filter)
	return args.Get(0).([]ledger.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) MarkReversed(ctx context.Context, originalID, reversalID uuid.UUID) error {
	args := m.Called(ctx, originalID, reversalID)
	return args.Error(0)
}

type MockCommissionRepository struct {
	mock.Mock
}

func (m *MockCommissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.CommissionRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.CommissionRecord), args.Error(1)
}

func (m *MockCommissionRepository) FindByContract(ctx context.Context, contractID uuid.UUID) ([]ledger.CommissionRecord, error) {
	args := m.Called(ctx, contractID)
	return args.Get(0).([]ledger.CommissionRecord), args.Error(1)
}

func (m *MockCommissionRepository) FindOpenByContract(ctx context.Context, contractID uuid.UUID) (map[ledger.BeneficiaryRole]*ledger.CommissionRecord, error) {
	args := m.Called(ctx, contractID)
	return args.Get(0).(map[ledger.BeneficiaryRole]*ledger.CommissionRecord), args.Error(1)
}

func (m *MockCommissionRepository) Save(ctx context.Context, record *ledger.CommissionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// fakeUnitOfWork hands the write callback the same repositories the service
// already holds and counts how often a unit of work ran.
type fakeUnitOfWork struct {
	contracts   contract.Repository
	ledgerRepo  ledger.TransactionRepository
	commissions ledger.CommissionRepository
	executions  int
}

func (f *fakeUnitOfWork) Execute(_ context.Context, fn func(store ledger.UnitOfWorkStore) error) error {
	f.executions++
	return fn(f)
}

func (f *fakeUnitOfWork) Contracts() contract.Repository          { return f.contracts }
func (f *fakeUnitOfWork) Ledger() ledger.TransactionRepository    { return f.ledgerRepo }
func (f *fakeUnitOfWork) Commissions() ledger.CommissionRepository { return f.commissions }

// ============================================
// Test Helpers
// ============================================

func newTestPaymentService(t *testing.T) (*PaymentService, *MockContractRepository, *MockTransactionRepository, *MockCommissionRepository, *fakeUnitOfWork) {
	t.Helper()
	contractRepo := new(MockContractRepository)
	transactionRepo := new(MockTransactionRepository)
	commissionRepo := new(MockCommissionRepository)
	uow := &fakeUnitOfWork{
		contracts:   contractRepo,
		ledgerRepo:  transactionRepo,
		commissions: commissionRepo,
	}

	engine, err := ledger.NewEngine(ledger.DefaultPolicy())
	require.NoError(t, err)

	svc := NewPaymentService(contractRepo, transactionRepo, commissionRepo, uow, engine, zap.NewNop())
	return svc, contractRepo, transactionRepo, commissionRepo, uow
}

func newServiceTestContract(t *testing.T) *contract.Contract {
	t.Helper()
	agentID := uuid.New()
	rate := decimal.NewFromInt(5)
	start := time.Now() // first installment due today, nothing overdue
	c, err := contract.NewContract(contract.NewContractParams{
		ContractNumber: "CTS-2026-7001",
		Type:           contract.TypeSale,
		PropertyID:     uuid.New(),
		ClientID:       uuid.New(),
		DeveloperID:    uuid.New(),
		AgentID:        &agentID,
		AgentRate:      &rate,
		TotalAmount:    valueobject.NewMoneyPHP(12_000_000),
		LoanableAmount: valueobject.NewMoneyPHP(12_000_000),
		TermMonths:     12,
		StartDate:      start,
	})
	require.NoError(t, err)
	plan, err := contract.NewScheduleBuilder().Build(c)
	require.NoError(t, err)
	require.NoError(t, c.AttachSchedule(plan))
	require.NoError(t, c.SubmitForSignature())
	require.NoError(t, c.Sign(contract.SignerClient, "c", start))
	require.NoError(t, c.Sign(contract.SignerDeveloper, "d", start))
	require.NoError(t, c.Sign(contract.SignerAgent, "a", start))
	require.NoError(t, c.Activate())
	return c
}

// ============================================
// PaymentService Tests
// ============================================

func TestPaymentService_ApplyPayment(t *testing.T) {
	svc, contractRepo, transactionRepo, commissionRepo, _ := newTestPaymentService(t)
	c := newServiceTestContract(t)
	ctx := context.Background()

	contractRepo.On("FindByID", ctx, c.ID).Return(c, nil)
	contractRepo.On("SaveWithLock", ctx, c).Return(nil)
	commissionRepo.On("FindOpenByContract", ctx, c.ID).
		Return(map[ledger.BeneficiaryRole]*ledger.CommissionRecord{}, nil)
	transactionRepo.On("Create", ctx, mock.AnythingOfType("*ledger.Transaction")).Return(nil)
	commissionRepo.On("Save", ctx, mock.AnythingOfType("*ledger.CommissionRecord")).Return(nil)

	received := time.Now()
	resp, err := svc.ApplyPayment(ctx, ApplyPaymentRequest{
		ContractID:        c.ID,
		Amount:            "10000.00",
		ReceivedAt:        &received,
		ExternalReference: "OR-0001",
	})
	require.NoError(t, err)

	assert.Equal(t, "PAYMENT", resp.Transaction.Type)
	assert.True(t, resp.Transaction.Amount.Equal(decimal.RequireFromString("10000")))
	assert.Equal(t, "ACTIVE", resp.ContractStatus)

	contractRepo.AssertExpectations(t)
	transactionRepo.AssertExpectations(t)
	commissionRepo.AssertExpectations(t)
	commissionRepo.AssertNumberOfCalls(t, "Save", 1) // agent record only
}

func TestPaymentService_ApplyPayment_ContractNotFound(t *testing.T) {
	svc, contractRepo, _, _, _ := newTestPaymentService(t)
	ctx := context.Background()
	id := uuid.New()

	contractRepo.On("FindByID", ctx, id).Return(nil, nil)

	_, err := svc.ApplyPayment(ctx, ApplyPaymentRequest{ContractID: id, Amount: "100.00"})
	require.Error(t, err)
	assert.True(t, shared.IsDomainErrorWithCode(err, "NOT_FOUND"))
}

func TestPaymentService_ApplyPayment_DomainRejectionSavesNothing(t *testing.T) {
	svc, contractRepo, transactionRepo, commissionRepo, _ := newTestPaymentService(t)
	c := newServiceTestContract(t)
	ctx := context.Background()

	contractRepo.On("FindByID", ctx, c.ID).Return(c, nil)

	// Everything beyond the plan total is an overpayment.
	_, err := svc.ApplyPayment(ctx, ApplyPaymentRequest{
		ContractID: c.ID,
		Amount:     "999999.00",
	})
	require.Error(t, err)
	assert.True(t, shared.IsDomainErrorWithCode(err, shared.ErrCodeOverpayment))

	transactionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	commissionRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPaymentService_ApplyPayment_WritesRunInOneUnitOfWork(t *testing.T) {
	svc, contractRepo, transactionRepo, commissionRepo, uow := newTestPaymentService(t)
	c := newServiceTestContract(t)
	ctx := context.Background()

	contractRepo.On("FindByID", ctx, c.ID).Return(c, nil)
	contractRepo.On("SaveWithLock", ctx, c).Return(nil)
	commissionRepo.On("FindOpenByContract", ctx, c.ID).
		Return(map[ledger.BeneficiaryRole]*ledger.CommissionRecord{}, nil)
	transactionRepo.On("Create", ctx, mock.AnythingOfType("*ledger.Transaction")).
		Return(assert.AnError)

	received := time.Now()
	_, err := svc.ApplyPayment(ctx, ApplyPaymentRequest{
		ContractID: c.ID,
		Amount:     "10000.00",
		ReceivedAt: &received,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)

	// The failed ledger insert aborts the unit of work before the
	// commission write; the surrounding transaction discards the rest.
	assert.Equal(t, 1, uow.executions)
	commissionRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPaymentService_ReverseTransaction(t *testing.T) {
	svc, contractRepo, transactionRepo, commissionRepo, _ := newTestPaymentService(t)
	c := newServiceTestContract(t)
	ctx := context.Background()

	contractRepo.On("FindByID", ctx, c.ID).Return(c, nil)
	contractRepo.On("SaveWithLock", ctx, c).Return(nil)
	commissionRepo.On("FindOpenByContract", ctx, c.ID).
		Return(map[ledger.BeneficiaryRole]*ledger.CommissionRecord{}, nil)
	transactionRepo.On("Create", ctx, mock.AnythingOfType("*ledger.Transaction")).Return(nil)
	commissionRepo.On("Save", ctx, mock.AnythingOfType("*ledger.CommissionRecord")).Return(nil)

	received := time.Now()
	applied, err := svc.ApplyPayment(ctx, ApplyPaymentRequest{
		ContractID: c.ID,
		Amount:     "10000.00",
		ReceivedAt: &received,
	})
	require.NoError(t, err)

	// The payment entry is what the reversal loads back.
	paymentID := applied.Transaction.ID
	original := &ledger.Transaction{}
	for _, call := range transactionRepo.Calls {
		txn := call.Arguments.Get(1).(*ledger.Transaction)
		if txn.ID == paymentID {
			original = txn
		}
	}
	require.Equal(t, paymentID, original.ID)

	transactionRepo.On("FindByID", ctx, paymentID).Return(original, nil)
	transactionRepo.On("MarkReversed", ctx, paymentID, mock.AnythingOfType("uuid.UUID")).Return(nil)

	resp, err := svc.ReverseTransaction(ctx, ReverseRequest{
		ContractID:    c.ID,
		TransactionID: paymentID,
		Reason:        "posted to wrong contract",
	})
	require.NoError(t, err)

	assert.Equal(t, "REVERSAL", resp.Type)
	assert.True(t, resp.Amount.Equal(decimal.RequireFromString("-10000")))
	require.NotNil(t, resp.ReversedTransactionID)
	assert.Equal(t, paymentID, *resp.ReversedTransactionID)
	assert.Equal(t, int64(0), c.Installments.TotalPaidMinor())
}

func TestPaymentService_PayoutCommission(t *testing.T) {
	svc, contractRepo, transactionRepo, commissionRepo, _ := newTestPaymentService(t)
	c := newServiceTestContract(t)
	ctx := context.Background()

	record := &ledger.CommissionRecord{
		BaseEntity:    shared.NewBaseEntity(),
		ContractID:    c.ID,
		Role:          ledger.RoleAgent,
		RatePercent:   decimal.NewFromInt(5),
		Currency:      valueobject.PHP,
		BaseMinor:     1_000_000,
		ComputedMinor: 50_000,
	}

	contractRepo.On("FindByID", ctx, c.ID).Return(c, nil)
	commissionRepo.On("FindByID", ctx, record.ID).Return(record, nil)
	transactionRepo.On("Create", ctx, mock.AnythingOfType("*ledger.Transaction")).Return(nil)
	commissionRepo.On("Save", ctx, record).Return(nil)

	resp, err := svc.PayoutCommission(ctx, c.ID, record.ID)
	require.NoError(t, err)

	assert.True(t, resp.Paid)
	require.NotNil(t, resp.PayoutTransactionID)
	assert.True(t, record.IsPaid())

	// Paying out twice is rejected by the record itself.
	_, err = svc.PayoutCommission(ctx, c.ID, record.ID)
	require.Error(t, err)
	assert.True(t, shared.IsDomainErrorWithCode(err, shared.ErrCodeAlreadyPaid))
}
