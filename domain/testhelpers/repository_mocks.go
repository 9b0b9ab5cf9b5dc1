package testhelpers

import (
	"context"

	"jackpot/domain/entities"

	"github.com/stretchr/testify/mock"
)

// MockPoolRepository is a mock implementation of PoolRepository
type MockPoolRepository struct {
	mock.Mock
}

func (m *MockPoolRepository) GetOpenPool(ctx context.Context) (*entities.Pool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Pool), args.Error(1)
}

func (m *MockPoolRepository) GetCurrentPoolForUpdate(ctx context.Context) (*entities.Pool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Pool), args.Error(1)
}

func (m *MockPoolRepository) GetByID(ctx context.Context, id int64) (*entities.Pool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Pool), args.Error(1)
}

func (m *MockPoolRepository) Create(ctx context.Context, pool *entities.Pool) error {
	args := m.Called(ctx, pool)
	return args.Error(0)
}

func (m *MockPoolRepository) Update(ctx context.Context, pool *entities.Pool) error {
	args := m.Called(ctx, pool)
	return args.Error(0)
}

func (m *MockPoolRepository) IncrementTotal(ctx context.Context, poolID, amountCents int64) error {
	args := m.Called(ctx, poolID, amountCents)
	return args.Error(0)
}

func (m *MockPoolRepository) SumPaymentTotals(ctx context.Context, poolID int64) (int64, error) {
	args := m.Called(ctx, poolID)
	return args.Get(0).(int64), args.Error(1)
}

// MockTicketRepository is a mock implementation of TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) CreateBatch(ctx context.Context, tickets []*entities.Ticket) error {
	args := m.Called(ctx, tickets)
	return args.Error(0)
}

func (m *MockTicketRepository) GetByPaymentID(ctx context.Context, paymentID string) ([]*entities.Ticket, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Ticket), args.Error(1)
}

func (m *MockTicketRepository) CountForPool(ctx context.Context, poolID int64) (int64, error) {
	args := m.Called(ctx, poolID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTicketRepository) GetByOffset(ctx context.Context, poolID, offset int64) (*entities.Ticket, error) {
	args := m.Called(ctx, poolID, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Ticket), args.Error(1)
}

func (m *MockTicketRepository) CountForPoolExcludingCode(ctx context.Context, poolID int64, code string) (int64, error) {
	args := m.Called(ctx, poolID, code)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTicketRepository) GetByOffsetExcludingCode(ctx context.Context, poolID int64, code string, offset int64) (*entities.Ticket, error) {
	args := m.Called(ctx, poolID, code, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Ticket), args.Error(1)
}

func (m *MockTicketRepository) GetByCode(ctx context.Context, poolID int64, code string) (*entities.Ticket, error) {
	args := m.Called(ctx, poolID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Ticket), args.Error(1)
}

func (m *MockTicketRepository) FilterExistingCodes(ctx context.Context, poolID int64, codes []string) ([]string, error) {
	args := m.Called(ctx, poolID, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockTicketRepository) ListRecent(ctx context.Context, poolID int64, tipperUsername string, limit int) ([]*entities.TicketDetail, error) {
	args := m.Called(ctx, poolID, tipperUsername, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.TicketDetail), args.Error(1)
}

// MockDrawRepository is a mock implementation of DrawRepository
type MockDrawRepository struct {
	mock.Mock
}

func (m *MockDrawRepository) Create(ctx context.Context, draw *entities.Draw) error {
	args := m.Called(ctx, draw)
	return args.Error(0)
}

func (m *MockDrawRepository) GetByPoolID(ctx context.Context, poolID int64) (*entities.Draw, error) {
	args := m.Called(ctx, poolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Draw), args.Error(1)
}

func (m *MockDrawRepository) GetByID(ctx context.Context, id int64) (*entities.Draw, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Draw), args.Error(1)
}

// MockWinnerRepository is a mock implementation of WinnerRepository
type MockWinnerRepository struct {
	mock.Mock
}

func (m *MockWinnerRepository) CreateBatch(ctx context.Context, winners []*entities.Winner) error {
	args := m.Called(ctx, winners)
	return args.Error(0)
}

func (m *MockWinnerRepository) GetByDraw(ctx context.Context, drawID int64) ([]*entities.Winner, error) {
	args := m.Called(ctx, drawID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Winner), args.Error(1)
}

func (m *MockWinnerRepository) GetByDrawAndUser(ctx context.Context, drawID, userID int64) ([]*entities.Winner, error) {
	args := m.Called(ctx, drawID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Winner), args.Error(1)
}

func (m *MockWinnerRepository) GetByStatus(ctx context.Context, status entities.WinnerStatus, limit int) ([]*entities.Winner, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Winner), args.Error(1)
}

func (m *MockWinnerRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*entities.Winner, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Winner), args.Error(1)
}

func (m *MockWinnerRepository) ListLatest(ctx context.Context, limit int) ([]*entities.WinnerDetail, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.WinnerDetail), args.Error(1)
}

func (m *MockWinnerRepository) UpdateStatus(ctx context.Context, drawID, userID int64, from, to entities.WinnerStatus) (int64, error) {
	args := m.Called(ctx, drawID, userID, from, to)
	return args.Get(0).(int64), args.Error(1)
}

// MockCommissionPayoutRepository is a mock implementation of CommissionPayoutRepository
type MockCommissionPayoutRepository struct {
	mock.Mock
}

func (m *MockCommissionPayoutRepository) CreateIdempotent(ctx context.Context, payout *entities.CommissionPayout) (bool, error) {
	args := m.Called(ctx, payout)
	return args.Bool(0), args.Error(1)
}

func (m *MockCommissionPayoutRepository) GetBySourcePayment(ctx context.Context, paymentID string) ([]*entities.CommissionPayout, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CommissionPayout), args.Error(1)
}

func (m *MockCommissionPayoutRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*entities.CommissionPayout, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CommissionPayout), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

// MockPaymentRepository is a mock implementation of PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*entities.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetByIDForUpdate(ctx context.Context, id string) (*entities.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Payment), args.Error(1)
}
