package services

import (
	"context"
	"testing"
	"time"

	"jackpot/domain/entities"
	"jackpot/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }

func testPrizeTable() entities.PrizeTable {
	return entities.PrizeTable{
		"1": {
			entities.RoleTipper:       {Percent: 0.40},
			entities.RoleDime:         {Percent: 0.10},
			entities.RoleReferredDime: {Percent: 0.05},
		},
		"2": {
			entities.RoleDime:         {Percent: 0.04},
			entities.RoleReferredDime: {Percent: 0.02},
		},
		"3": {
			entities.RoleReferredTipper: {Percent: 0.03},
		},
	}
}

type drawEngineMocks struct {
	poolRepo    *testhelpers.MockPoolRepository
	ticketRepo  *testhelpers.MockTicketRepository
	drawRepo    *testhelpers.MockDrawRepository
	winnerRepo  *testhelpers.MockWinnerRepository
	userRepo    *testhelpers.MockUserRepository
	paymentRepo *testhelpers.MockPaymentRepository
}

func newDrawEngineMocks() *drawEngineMocks {
	return &drawEngineMocks{
		poolRepo:    new(testhelpers.MockPoolRepository),
		ticketRepo:  new(testhelpers.MockTicketRepository),
		drawRepo:    new(testhelpers.MockDrawRepository),
		winnerRepo:  new(testhelpers.MockWinnerRepository),
		userRepo:    new(testhelpers.MockUserRepository),
		paymentRepo: new(testhelpers.MockPaymentRepository),
	}
}

func (m *drawEngineMocks) engine() *drawEngine {
	return NewDrawEngine(
		m.poolRepo, m.ticketRepo, m.drawRepo, m.winnerRepo,
		m.userRepo, m.paymentRepo, testPrizeTable(),
	).(*drawEngine)
}

func rolesOf(winners []*entities.Winner) map[entities.WinnerRole]*entities.Winner {
	byRole := make(map[entities.WinnerRole]*entities.Winner, len(winners))
	for _, w := range winners {
		byRole[w.Role] = w
	}
	return byRole
}

func TestDrawEngine_RunDraw(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 6, 14, 0, 0, 0, time.UTC)
	m := newDrawEngineMocks()

	pool := &entities.Pool{ID: 7, Status: entities.PoolStatusOpen, TotalCents: 1000000}
	winning := &entities.Ticket{ID: 1, PoolID: 7, PaymentID: "pay-1", TipperID: 42, Code: "ABCDE"}

	m.poolRepo.On("GetCurrentPoolForUpdate", mock.Anything).Return(pool, nil)
	m.drawRepo.On("GetByPoolID", mock.Anything, int64(7)).Return((*entities.Draw)(nil), nil)
	m.ticketRepo.On("CountForPool", mock.Anything, int64(7)).Return(int64(1), nil)
	m.ticketRepo.On("GetByOffset", mock.Anything, int64(7), int64(0)).Return(winning, nil)

	// The tipped performer and the chain of referrers behind the ticket
	m.paymentRepo.On("GetByID", mock.Anything, "pay-1").
		Return(&entities.Payment{ID: "pay-1", UserID: 42, RecipientID: int64Ptr(100)}, nil)
	m.userRepo.On("GetByID", mock.Anything, int64(100)).
		Return(&entities.User{ID: 100, Username: "mara", ReferredBy: strPtr("lee")}, nil)
	m.userRepo.On("GetByUsername", mock.Anything, "lee").
		Return(&entities.User{ID: 101, Username: "lee"}, nil)
	m.userRepo.On("GetByID", mock.Anything, int64(42)).
		Return(&entities.User{ID: 42, Username: "sam", ReferredBy: strPtr("kit")}, nil)
	m.userRepo.On("GetByUsername", mock.Anything, "kit").
		Return(&entities.User{ID: 102, Username: "kit"}, nil)

	// Only one ticket exists, so no secondary selection
	m.ticketRepo.On("CountForPoolExcludingCode", mock.Anything, int64(7), "ABCDE").Return(int64(0), nil)

	m.drawRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Draw")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entities.Draw).ID = 11
		}).Return(nil)
	m.winnerRepo.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]*entities.Winner")).Return(nil)
	m.poolRepo.On("Update", mock.Anything, pool).Return(nil)

	result, err := m.engine().RunDraw(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, "ABCDE", result.Draw.DrawnCode)
	assert.False(t, result.Draw.Forced)
	assert.Equal(t, now, result.Draw.ExecutedAt)
	require.Len(t, result.Winners, 4)

	byRole := rolesOf(result.Winners)
	assert.Equal(t, int64(42), byRole[entities.RoleTipper].UserID)
	assert.Equal(t, int64(400000), byRole[entities.RoleTipper].AmountCents)
	assert.Equal(t, int64(100), byRole[entities.RoleDime].UserID)
	assert.Equal(t, int64(100000), byRole[entities.RoleDime].AmountCents)
	assert.Equal(t, int64(101), byRole[entities.RoleReferredDime].UserID)
	assert.Equal(t, int64(50000), byRole[entities.RoleReferredDime].AmountCents)
	assert.Equal(t, int64(102), byRole[entities.RoleReferredTipper].UserID)
	assert.Equal(t, int64(30000), byRole[entities.RoleReferredTipper].AmountCents)
	assert.Equal(t, 3, byRole[entities.RoleReferredTipper].Place)

	for _, w := range result.Winners {
		assert.Equal(t, int64(11), w.DrawID)
		assert.Equal(t, entities.WinnerStatusPending, w.Status)
	}

	assert.Equal(t, entities.PoolStatusDrawn, pool.Status)
	assert.Equal(t, int64(580000), pool.TotalDistributedCents)
}

func TestDrawEngine_RunDraw_SecondarySelection(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 6, 14, 0, 0, 0, time.UTC)
	m := newDrawEngineMocks()

	pool := &entities.Pool{ID: 7, Status: entities.PoolStatusOpen, TotalCents: 1000000}
	winning := &entities.Ticket{ID: 1, PoolID: 7, PaymentID: "pay-1", TipperID: 42, Code: "ABCDE"}
	secondary := &entities.Ticket{ID: 2, PoolID: 7, PaymentID: "pay-2", TipperID: 55, Code: "KLMNO"}

	m.poolRepo.On("GetCurrentPoolForUpdate", mock.Anything).Return(pool, nil)
	m.drawRepo.On("GetByPoolID", mock.Anything, int64(7)).Return((*entities.Draw)(nil), nil)
	m.ticketRepo.On("CountForPool", mock.Anything, int64(7)).Return(int64(1), nil)
	m.ticketRepo.On("GetByOffset", mock.Anything, int64(7), int64(0)).Return(winning, nil)

	// Primary ticket has no recipient and a tipper without a referrer
	m.paymentRepo.On("GetByID", mock.Anything, "pay-1").
		Return(&entities.Payment{ID: "pay-1", UserID: 42}, nil)
	m.userRepo.On("GetByID", mock.Anything, int64(42)).
		Return(&entities.User{ID: 42, Username: "sam"}, nil)

	// Secondary pick lands on a ticket whose performer has a referrer
	m.ticketRepo.On("CountForPoolExcludingCode", mock.Anything, int64(7), "ABCDE").Return(int64(5), nil)
	m.ticketRepo.On("GetByOffsetExcludingCode", mock.Anything, int64(7), "ABCDE", mock.AnythingOfType("int64")).
		Return(secondary, nil)
	m.paymentRepo.On("GetByID", mock.Anything, "pay-2").
		Return(&entities.Payment{ID: "pay-2", UserID: 55, RecipientID: int64Ptr(200)}, nil)
	m.userRepo.On("GetByID", mock.Anything, int64(200)).
		Return(&entities.User{ID: 200, Username: "joy", ReferredBy: strPtr("ada")}, nil)
	m.userRepo.On("GetByUsername", mock.Anything, "ada").
		Return(&entities.User{ID: 201, Username: "ada"}, nil)

	m.drawRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Draw")).Return(nil)
	m.winnerRepo.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]*entities.Winner")).Return(nil)
	m.poolRepo.On("Update", mock.Anything, pool).Return(nil)

	result, err := m.engine().RunDraw(context.Background(), now)

	require.NoError(t, err)
	require.Len(t, result.Winners, 3)

	byRole := rolesOf(result.Winners)
	assert.Equal(t, 1, byRole[entities.RoleTipper].Place)
	assert.Equal(t, 2, byRole[entities.RoleDime].Place)
	assert.Equal(t, int64(200), byRole[entities.RoleDime].UserID)
	assert.Equal(t, int64(40000), byRole[entities.RoleDime].AmountCents)
	assert.Equal(t, 2, byRole[entities.RoleReferredDime].Place)
	assert.Equal(t, int64(201), byRole[entities.RoleReferredDime].UserID)
	assert.Equal(t, int64(20000), byRole[entities.RoleReferredDime].AmountCents)
}

func TestDrawEngine_RunDraw_NoTickets(t *testing.T) {
	t.Parallel()

	m := newDrawEngineMocks()

	pool := &entities.Pool{ID: 7, Status: entities.PoolStatusOpen, TotalCents: 50000}
	m.poolRepo.On("GetCurrentPoolForUpdate", mock.Anything).Return(pool, nil)
	m.drawRepo.On("GetByPoolID", mock.Anything, int64(7)).Return((*entities.Draw)(nil), nil)
	m.ticketRepo.On("CountForPool", mock.Anything, int64(7)).Return(int64(0), nil)

	_, err := m.engine().RunDraw(context.Background(), time.Now().UTC())

	assert.ErrorIs(t, err, ErrNoTickets)
	m.drawRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDrawEngine_RunDraw_AlreadyDrawn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		poolStatus entities.PoolStatus
		existing   *entities.Draw
	}{
		{"pool marked drawn", entities.PoolStatusDrawn, nil},
		{"draw row exists", entities.PoolStatusOpen, &entities.Draw{ID: 11, PoolID: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := newDrawEngineMocks()
			pool := &entities.Pool{ID: 7, Status: tt.poolStatus, TotalCents: 50000}
			m.poolRepo.On("GetCurrentPoolForUpdate", mock.Anything).Return(pool, nil)
			m.drawRepo.On("GetByPoolID", mock.Anything, int64(7)).Return(tt.existing, nil)

			_, err := m.engine().RunDraw(context.Background(), time.Now().UTC())

			assert.ErrorIs(t, err, ErrDrawAlreadyExecuted)
			m.drawRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestDrawEngine_RunDraw_NoOpenPool(t *testing.T) {
	t.Parallel()

	m := newDrawEngineMocks()
	m.poolRepo.On("GetCurrentPoolForUpdate", mock.Anything).Return((*entities.Pool)(nil), nil)

	_, err := m.engine().RunDraw(context.Background(), time.Now().UTC())

	assert.ErrorIs(t, err, ErrNoOpenPool)
}

func TestDrawEngine_RunDrawForce_InvalidCode(t *testing.T) {
	t.Parallel()

	m := newDrawEngineMocks()

	for _, code := range []string{"", "ABCD", "abcde", "AB1DE", "ABCDEF"} {
		_, err := m.engine().RunDrawForce(context.Background(), code, time.Now().UTC())
		assert.ErrorIs(t, err, ErrInvalidCode, "code %q", code)
	}
	m.poolRepo.AssertNotCalled(t, "GetCurrentPoolForUpdate", mock.Anything)
}

func TestDrawEngine_RunDrawForce_UnmintedCode(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 6, 14, 0, 0, 0, time.UTC)
	m := newDrawEngineMocks()

	pool := &entities.Pool{ID: 7, Status: entities.PoolStatusOpen, TotalCents: 1000000}
	secondary := &entities.Ticket{ID: 2, PoolID: 7, PaymentID: "pay-2", TipperID: 55, Code: "KLMNO"}

	m.poolRepo.On("GetCurrentPoolForUpdate", mock.Anything).Return(pool, nil)
	m.drawRepo.On("GetByPoolID", mock.Anything, int64(7)).Return((*entities.Draw)(nil), nil)
	m.ticketRepo.On("CountForPool", mock.Anything, int64(7)).Return(int64(3), nil)
	m.ticketRepo.On("GetByCode", mock.Anything, int64(7), "ZZZZZ").Return((*entities.Ticket)(nil), nil)

	// Ticket-derived roles are skipped; the secondary selection still runs
	m.ticketRepo.On("CountForPoolExcludingCode", mock.Anything, int64(7), "ZZZZZ").Return(int64(3), nil)
	m.ticketRepo.On("GetByOffsetExcludingCode", mock.Anything, int64(7), "ZZZZZ", mock.AnythingOfType("int64")).
		Return(secondary, nil)
	m.paymentRepo.On("GetByID", mock.Anything, "pay-2").
		Return(&entities.Payment{ID: "pay-2", UserID: 55, RecipientID: int64Ptr(200)}, nil)
	m.userRepo.On("GetByID", mock.Anything, int64(200)).
		Return(&entities.User{ID: 200, Username: "joy"}, nil)

	m.drawRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Draw")).Return(nil)
	m.winnerRepo.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]*entities.Winner")).Return(nil)
	m.poolRepo.On("Update", mock.Anything, pool).Return(nil)

	result, err := m.engine().RunDrawForce(context.Background(), "ZZZZZ", now)

	require.NoError(t, err)
	assert.True(t, result.Draw.Forced)
	assert.Equal(t, "ZZZZZ", result.Draw.DrawnCode)
	require.Len(t, result.Winners, 1)
	assert.Equal(t, entities.RoleDime, result.Winners[0].Role)
	assert.Equal(t, 2, result.Winners[0].Place)
	m.ticketRepo.AssertNotCalled(t, "GetByOffset", mock.Anything, mock.Anything, mock.Anything)
}

func TestDrawEngine_RunDrawForce_MintedCode(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 6, 14, 0, 0, 0, time.UTC)
	m := newDrawEngineMocks()

	pool := &entities.Pool{ID: 7, Status: entities.PoolStatusOpen, TotalCents: 1000000}
	forced := &entities.Ticket{ID: 3, PoolID: 7, PaymentID: "pay-3", TipperID: 60, Code: "QQQQQ"}

	m.poolRepo.On("GetCurrentPoolForUpdate", mock.Anything).Return(pool, nil)
	m.drawRepo.On("GetByPoolID", mock.Anything, int64(7)).Return((*entities.Draw)(nil), nil)
	m.ticketRepo.On("CountForPool", mock.Anything, int64(7)).Return(int64(3), nil)
	m.ticketRepo.On("GetByCode", mock.Anything, int64(7), "QQQQQ").Return(forced, nil)

	m.paymentRepo.On("GetByID", mock.Anything, "pay-3").
		Return(&entities.Payment{ID: "pay-3", UserID: 60, RecipientID: int64Ptr(100)}, nil)
	m.userRepo.On("GetByID", mock.Anything, int64(100)).
		Return(&entities.User{ID: 100, Username: "mara"}, nil)
	m.userRepo.On("GetByID", mock.Anything, int64(60)).
		Return(&entities.User{ID: 60, Username: "pat"}, nil)
	m.ticketRepo.On("CountForPoolExcludingCode", mock.Anything, int64(7), "QQQQQ").Return(int64(0), nil)

	m.drawRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Draw")).Return(nil)
	m.winnerRepo.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]*entities.Winner")).Return(nil)
	m.poolRepo.On("Update", mock.Anything, pool).Return(nil)

	result, err := m.engine().RunDrawForce(context.Background(), "QQQQQ", now)

	require.NoError(t, err)
	assert.True(t, result.Draw.Forced)
	require.Len(t, result.Winners, 2)

	byRole := rolesOf(result.Winners)
	assert.Equal(t, int64(60), byRole[entities.RoleTipper].UserID)
	assert.Equal(t, int64(100), byRole[entities.RoleDime].UserID)
}

func TestDrawEngine_RunDraw_PaymentWithoutRecipient(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 6, 14, 0, 0, 0, time.UTC)
	m := newDrawEngineMocks()

	pool := &entities.Pool{ID: 7, Status: entities.PoolStatusOpen, TotalCents: 1000000}
	winning := &entities.Ticket{ID: 1, PoolID: 7, PaymentID: "pay-1", TipperID: 42, Code: "ABCDE"}

	m.poolRepo.On("GetCurrentPoolForUpdate", mock.Anything).Return(pool, nil)
	m.drawRepo.On("GetByPoolID", mock.Anything, int64(7)).Return((*entities.Draw)(nil), nil)
	m.ticketRepo.On("CountForPool", mock.Anything, int64(7)).Return(int64(1), nil)
	m.ticketRepo.On("GetByOffset", mock.Anything, int64(7), int64(0)).Return(winning, nil)

	m.paymentRepo.On("GetByID", mock.Anything, "pay-1").
		Return(&entities.Payment{ID: "pay-1", UserID: 42}, nil)
	m.userRepo.On("GetByID", mock.Anything, int64(42)).
		Return(&entities.User{ID: 42, Username: "sam"}, nil)
	m.ticketRepo.On("CountForPoolExcludingCode", mock.Anything, int64(7), "ABCDE").Return(int64(0), nil)

	m.drawRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Draw")).Return(nil)
	m.winnerRepo.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]*entities.Winner")).Return(nil)
	m.poolRepo.On("Update", mock.Anything, pool).Return(nil)

	result, err := m.engine().RunDraw(context.Background(), now)

	require.NoError(t, err)
	require.Len(t, result.Winners, 1)
	assert.Equal(t, entities.RoleTipper, result.Winners[0].Role)
	assert.Equal(t, int64(400000), pool.TotalDistributedCents)
}
