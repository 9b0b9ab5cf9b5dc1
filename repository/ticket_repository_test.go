package repository

import (
	"context"
	"sync"
	"testing"

	"jackpot/domain/entities"
	"jackpot/domain/interfaces"
	"jackpot/domain/services"
	"jackpot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTicketFixtures(t *testing.T) (*TicketRepository, *entities.Pool, int64) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	userID := testutil.InsertUser(t, testDB.DB, "sam", nil, entities.TierFree)
	testutil.InsertPayment(t, testDB.DB, testutil.CreateTestPayment("pay-1", userID, 4700))

	pool := testutil.CreateTestPool()
	require.NoError(t, NewPoolRepository(testDB.DB).Create(ctx, pool))

	return NewTicketRepository(testDB.DB), pool, userID
}

func TestTicketRepository_CreateBatch(t *testing.T) {
	repo, pool, userID := setupTicketFixtures(t)
	ctx := context.Background()

	tickets := []*entities.Ticket{
		{PoolID: pool.ID, PaymentID: "pay-1", TipperID: userID, Code: "AAAAA"},
		{PoolID: pool.ID, PaymentID: "pay-1", TipperID: userID, Code: "BBBBB"},
		{PoolID: pool.ID, PaymentID: "pay-1", TipperID: userID, Code: "CCCCC"},
	}
	require.NoError(t, repo.CreateBatch(ctx, tickets))

	for _, ticket := range tickets {
		assert.NotZero(t, ticket.ID)
		assert.False(t, ticket.CreatedAt.IsZero())
	}

	t.Run("duplicate code in pool rejected", func(t *testing.T) {
		err := repo.CreateBatch(ctx, []*entities.Ticket{
			{PoolID: pool.ID, PaymentID: "pay-1", TipperID: userID, Code: "AAAAA"},
		})
		assert.Error(t, err)
	})

	t.Run("get by payment id", func(t *testing.T) {
		got, err := repo.GetByPaymentID(ctx, "pay-1")
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("count", func(t *testing.T) {
		count, err := repo.CountForPool(ctx, pool.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}

func TestTicketRepository_OffsetSelection(t *testing.T) {
	repo, pool, userID := setupTicketFixtures(t)
	ctx := context.Background()

	codes := []string{"AAAAA", "BBBBB", "CCCCC", "DDDDD"}
	tickets := make([]*entities.Ticket, 0, len(codes))
	for _, code := range codes {
		tickets = append(tickets, &entities.Ticket{
			PoolID: pool.ID, PaymentID: "pay-1", TipperID: userID, Code: code,
		})
	}
	require.NoError(t, repo.CreateBatch(ctx, tickets))

	t.Run("offsets are stable and distinct", func(t *testing.T) {
		seen := make(map[string]bool)
		for offset := int64(0); offset < int64(len(codes)); offset++ {
			ticket, err := repo.GetByOffset(ctx, pool.ID, offset)
			require.NoError(t, err)
			require.NotNil(t, ticket)
			assert.False(t, seen[ticket.Code])
			seen[ticket.Code] = true
		}
	})

	t.Run("offset past the end", func(t *testing.T) {
		ticket, err := repo.GetByOffset(ctx, pool.ID, int64(len(codes)))
		require.NoError(t, err)
		assert.Nil(t, ticket)
	})

	t.Run("excluding code", func(t *testing.T) {
		count, err := repo.CountForPoolExcludingCode(ctx, pool.ID, "AAAAA")
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		for offset := int64(0); offset < count; offset++ {
			ticket, err := repo.GetByOffsetExcludingCode(ctx, pool.ID, "AAAAA", offset)
			require.NoError(t, err)
			require.NotNil(t, ticket)
			assert.NotEqual(t, "AAAAA", ticket.Code)
		}
	})

	t.Run("get by code", func(t *testing.T) {
		ticket, err := repo.GetByCode(ctx, pool.ID, "CCCCC")
		require.NoError(t, err)
		require.NotNil(t, ticket)
		assert.Equal(t, "CCCCC", ticket.Code)

		missing, err := repo.GetByCode(ctx, pool.ID, "ZZZZZ")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("filter existing codes", func(t *testing.T) {
		existing, err := repo.FilterExistingCodes(ctx, pool.ID, []string{"AAAAA", "ZZZZZ", "CCCCC"})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"AAAAA", "CCCCC"}, existing)
	})

	t.Run("list recent with username", func(t *testing.T) {
		details, err := repo.ListRecent(ctx, pool.ID, "", 10)
		require.NoError(t, err)
		assert.Len(t, details, 4)
		assert.Equal(t, "sam", details[0].TipperUsername)

		filtered, err := repo.ListRecent(ctx, pool.ID, "nobody", 10)
		require.NoError(t, err)
		assert.Empty(t, filtered)
	})
}

// Two deliveries of the same payment event race through full minting
// transactions. The payment row lock serializes them: exactly one mints, the
// other reports the tickets as already issued, and the pool total moves once.
func TestTicketMinting_ConcurrentDuplicateDelivery(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	userID := testutil.InsertUser(t, testDB.DB, "sam", nil, entities.TierFree)
	testutil.InsertPayment(t, testDB.DB, testutil.CreateTestPayment("pay-1", userID, 4700))

	pool := testutil.CreateTestPool()
	require.NoError(t, NewPoolRepository(testDB.DB).Create(ctx, pool))

	factory := NewUnitOfWorkFactory(testDB.DB)
	limits := services.TipLimits{MinTipCents: 500, MaxTipCents: 100000}

	deliver := func() (*interfaces.IssueResult, error) {
		uow := factory.Create()
		if err := uow.Begin(ctx); err != nil {
			return nil, err
		}
		defer uow.Rollback()

		payment, err := uow.PaymentRepository().GetByIDForUpdate(ctx, "pay-1")
		if err != nil {
			return nil, err
		}

		issuer := services.NewTicketIssuer(uow.PoolRepository(), uow.TicketRepository(), limits)
		result, err := issuer.IssueForPayment(ctx, payment)
		if err != nil {
			return nil, err
		}
		return result, uow.Commit()
	}

	var wg sync.WaitGroup
	results := make([]*interfaces.IssueResult, 2)
	errs := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = deliver()
		}(i)
	}
	wg.Wait()

	minted := 0
	for i := range results {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		assert.Len(t, results[i].Tickets, 47)
		if !results[i].AlreadyIssued {
			minted++
		}
	}
	assert.Equal(t, 1, minted)

	count, err := NewTicketRepository(testDB.DB).CountForPool(ctx, pool.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(47), count)

	got, err := NewPoolRepository(testDB.DB).GetByID(ctx, pool.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4700), got.TotalCents)
}
