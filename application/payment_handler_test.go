package application

import (
	"context"
	"errors"
	"testing"

	"jackpot/domain/entities"
	"jackpot/domain/interfaces"
	"jackpot/domain/services"
	"jackpot/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeUnitOfWork exposes mock repositories without a real transaction
type fakeUnitOfWork struct {
	poolRepo       *testhelpers.MockPoolRepository
	ticketRepo     *testhelpers.MockTicketRepository
	drawRepo       *testhelpers.MockDrawRepository
	winnerRepo     *testhelpers.MockWinnerRepository
	commissionRepo *testhelpers.MockCommissionPayoutRepository
	userRepo       *testhelpers.MockUserRepository
	paymentRepo    *testhelpers.MockPaymentRepository

	began      bool
	committed  bool
	rolledBack bool
	beginErr   error
}

func newFakeUnitOfWork() *fakeUnitOfWork {
	return &fakeUnitOfWork{
		poolRepo:       new(testhelpers.MockPoolRepository),
		ticketRepo:     new(testhelpers.MockTicketRepository),
		drawRepo:       new(testhelpers.MockDrawRepository),
		winnerRepo:     new(testhelpers.MockWinnerRepository),
		commissionRepo: new(testhelpers.MockCommissionPayoutRepository),
		userRepo:       new(testhelpers.MockUserRepository),
		paymentRepo:    new(testhelpers.MockPaymentRepository),
	}
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error {
	if u.beginErr != nil {
		return u.beginErr
	}
	u.began = true
	return nil
}

func (u *fakeUnitOfWork) Commit() error {
	u.committed = true
	return nil
}

func (u *fakeUnitOfWork) Rollback() error {
	if !u.committed {
		u.rolledBack = true
	}
	return nil
}

func (u *fakeUnitOfWork) PoolRepository() interfaces.PoolRepository       { return u.poolRepo }
func (u *fakeUnitOfWork) TicketRepository() interfaces.TicketRepository   { return u.ticketRepo }
func (u *fakeUnitOfWork) DrawRepository() interfaces.DrawRepository       { return u.drawRepo }
func (u *fakeUnitOfWork) WinnerRepository() interfaces.WinnerRepository   { return u.winnerRepo }
func (u *fakeUnitOfWork) UserRepository() interfaces.UserRepository       { return u.userRepo }
func (u *fakeUnitOfWork) PaymentRepository() interfaces.PaymentRepository { return u.paymentRepo }
func (u *fakeUnitOfWork) CommissionPayoutRepository() interfaces.CommissionPayoutRepository {
	return u.commissionRepo
}

// fakeUowFactory hands out prepared units of work in order
type fakeUowFactory struct {
	uows []*fakeUnitOfWork
	next int
}

func (f *fakeUowFactory) Create() interfaces.UnitOfWork {
	uow := f.uows[f.next]
	f.next++
	return uow
}

func testLimits() services.TipLimits {
	return services.TipLimits{MinTipCents: 500, MaxTipCents: 100000}
}

func testRates() entities.CommissionRates {
	return entities.CommissionRates{DirectPaidPercent: 0.10, DirectFreePercent: 0.05, UplinePercent: 0.02}
}

func strPtr(s string) *string { return &s }

func TestPaymentHandler_CompletedTip(t *testing.T) {
	t.Parallel()

	mintUow := newFakeUnitOfWork()
	commissionUow := newFakeUnitOfWork()

	payment := &entities.Payment{
		ID:            "pay-1",
		UserID:        42,
		AmountCents:   4700,
		PaymentType:   entities.PaymentTypeTip,
		PaymentStatus: entities.PaymentStatusCompleted,
		ReferredBy:    strPtr("mara"),
	}
	mintUow.paymentRepo.On("GetByIDForUpdate", mock.Anything, "pay-1").Return(payment, nil)
	mintUow.ticketRepo.On("GetByPaymentID", mock.Anything, "pay-1").Return([]*entities.Ticket(nil), nil)
	mintUow.poolRepo.On("GetOpenPool", mock.Anything).
		Return(&entities.Pool{ID: 7, Status: entities.PoolStatusOpen}, nil)
	mintUow.ticketRepo.On("FilterExistingCodes", mock.Anything, int64(7), mock.AnythingOfType("[]string")).
		Return([]string{}, nil)
	mintUow.ticketRepo.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]*entities.Ticket")).Return(nil)
	mintUow.poolRepo.On("IncrementTotal", mock.Anything, int64(7), int64(4700)).Return(nil)

	commissionUow.userRepo.On("GetByUsername", mock.Anything, "mara").
		Return(&entities.User{ID: 100, Username: "mara", MembershipTier: entities.TierPaid}, nil)
	commissionUow.commissionRepo.On("CreateIdempotent", mock.Anything, mock.AnythingOfType("*entities.CommissionPayout")).
		Return(true, nil)

	handler := NewPaymentHandler(&fakeUowFactory{uows: []*fakeUnitOfWork{mintUow, commissionUow}}, testLimits(), testRates())
	outcome, err := handler.HandlePaymentCompleted(context.Background(), "pay-1")

	require.NoError(t, err)
	assert.Equal(t, 47, outcome.TicketsMinted)
	assert.False(t, outcome.AlreadyIssued)
	assert.Equal(t, 1, outcome.Commissions)
	assert.True(t, mintUow.committed)
	assert.True(t, commissionUow.committed)
}

func TestPaymentHandler_CommissionFailureKeepsTickets(t *testing.T) {
	t.Parallel()

	mintUow := newFakeUnitOfWork()
	commissionUow := newFakeUnitOfWork()

	payment := &entities.Payment{
		ID:            "pay-1",
		UserID:        42,
		AmountCents:   500,
		PaymentType:   entities.PaymentTypeTip,
		PaymentStatus: entities.PaymentStatusCompleted,
		ReferredBy:    strPtr("mara"),
	}
	mintUow.paymentRepo.On("GetByIDForUpdate", mock.Anything, "pay-1").Return(payment, nil)
	mintUow.ticketRepo.On("GetByPaymentID", mock.Anything, "pay-1").Return([]*entities.Ticket(nil), nil)
	mintUow.poolRepo.On("GetOpenPool", mock.Anything).
		Return(&entities.Pool{ID: 7, Status: entities.PoolStatusOpen}, nil)
	mintUow.ticketRepo.On("FilterExistingCodes", mock.Anything, int64(7), mock.AnythingOfType("[]string")).
		Return([]string{}, nil)
	mintUow.ticketRepo.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]*entities.Ticket")).Return(nil)
	mintUow.poolRepo.On("IncrementTotal", mock.Anything, int64(7), int64(500)).Return(nil)

	commissionUow.userRepo.On("GetByUsername", mock.Anything, "mara").
		Return((*entities.User)(nil), errors.New("database down"))

	handler := NewPaymentHandler(&fakeUowFactory{uows: []*fakeUnitOfWork{mintUow, commissionUow}}, testLimits(), testRates())
	outcome, err := handler.HandlePaymentCompleted(context.Background(), "pay-1")

	require.NoError(t, err)
	assert.Equal(t, 5, outcome.TicketsMinted)
	assert.Zero(t, outcome.Commissions)
	assert.True(t, mintUow.committed)
	assert.False(t, commissionUow.committed)
	assert.True(t, commissionUow.rolledBack)
}

func TestPaymentHandler_DuplicateDelivery(t *testing.T) {
	t.Parallel()

	mintUow := newFakeUnitOfWork()
	commissionUow := newFakeUnitOfWork()

	payment := &entities.Payment{
		ID:            "pay-1",
		UserID:        42,
		AmountCents:   4700,
		PaymentType:   entities.PaymentTypeTip,
		PaymentStatus: entities.PaymentStatusCompleted,
	}
	mintUow.paymentRepo.On("GetByIDForUpdate", mock.Anything, "pay-1").Return(payment, nil)
	mintUow.ticketRepo.On("GetByPaymentID", mock.Anything, "pay-1").
		Return([]*entities.Ticket{{ID: 1, Code: "ABCDE"}}, nil)

	// The payment captured no referrer so the commission path writes nothing

	handler := NewPaymentHandler(&fakeUowFactory{uows: []*fakeUnitOfWork{mintUow, commissionUow}}, testLimits(), testRates())
	outcome, err := handler.HandlePaymentCompleted(context.Background(), "pay-1")

	require.NoError(t, err)
	assert.True(t, outcome.AlreadyIssued)
	assert.Equal(t, 1, outcome.TicketsMinted)
	assert.Zero(t, outcome.Commissions)
}

func TestPaymentHandler_UnknownPayment(t *testing.T) {
	t.Parallel()

	mintUow := newFakeUnitOfWork()
	mintUow.paymentRepo.On("GetByIDForUpdate", mock.Anything, "pay-x").Return((*entities.Payment)(nil), nil)

	handler := NewPaymentHandler(&fakeUowFactory{uows: []*fakeUnitOfWork{mintUow}}, testLimits(), testRates())
	_, err := handler.HandlePaymentCompleted(context.Background(), "pay-x")

	assert.Error(t, err)
	assert.False(t, mintUow.committed)
}

func TestPaymentHandler_NonTipStillEarnsCommission(t *testing.T) {
	t.Parallel()

	mintUow := newFakeUnitOfWork()
	commissionUow := newFakeUnitOfWork()

	payment := &entities.Payment{
		ID:            "pay-1",
		UserID:        42,
		AmountCents:   9900,
		PaymentType:   entities.PaymentTypeMembership,
		PaymentStatus: entities.PaymentStatusCompleted,
		ReferredBy:    strPtr("mara"),
	}
	mintUow.paymentRepo.On("GetByIDForUpdate", mock.Anything, "pay-1").Return(payment, nil)

	commissionUow.userRepo.On("GetByUsername", mock.Anything, "mara").
		Return(&entities.User{ID: 100, Username: "mara", MembershipTier: entities.TierFree}, nil)
	commissionUow.commissionRepo.On("CreateIdempotent", mock.Anything, mock.AnythingOfType("*entities.CommissionPayout")).
		Return(true, nil)

	handler := NewPaymentHandler(&fakeUowFactory{uows: []*fakeUnitOfWork{mintUow, commissionUow}}, testLimits(), testRates())
	outcome, err := handler.HandlePaymentCompleted(context.Background(), "pay-1")

	require.NoError(t, err)
	assert.Zero(t, outcome.TicketsMinted)
	assert.Equal(t, 1, outcome.Commissions)
	assert.False(t, mintUow.committed)
	assert.True(t, commissionUow.committed)
}
