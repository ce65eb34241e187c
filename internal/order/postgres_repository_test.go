package order

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fjod/sweetshop/internal/domain"
	"github.com/fjod/sweetshop/internal/fixtures"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) *PostgresRepository {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	repo, err := NewPostgresRepository(&Credentials{
		Host:     host,
		Port:     port.Int(),
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
	})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	require.NoError(t, repo.Ping(ctx))
	require.NoError(t, repo.RunMigrations())
	// running twice is a no-op
	require.NoError(t, repo.RunMigrations())
	return repo
}

func TestPostgresRepository_RoundTrip(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	for _, o := range fixtures.Orders() {
		require.NoError(t, repo.Insert(ctx, o))
	}

	got, err := repo.Get(ctx, "ORDER1234567890")
	require.NoError(t, err)
	want := fixtures.Orders()[1]
	assert.Equal(t, want.Status, got.Status)
	assert.Equal(t, want.Lines[0].ItemID, got.Lines[0].ItemID)
	assert.True(t, want.Lines[0].UnitPrice.Equal(got.Lines[0].UnitPrice))
	assert.True(t, want.Total.Equal(got.Total), got.Total.String())
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	require.NotNil(t, got.ShippingAddress)
	assert.Equal(t, *want.ShippingAddress, *got.ShippingAddress)
	assert.Equal(t, domain.PaymentMethodAlipay, got.PaymentMethod)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Insert(ctx, want), domain.ErrValidation)
}

func TestPostgresRepository_KeepsFullPrecisionTotal(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	at := time.Now().UTC().Truncate(time.Microsecond)
	lines := []domain.OrderLine{{ItemID: "7", UnitPrice: decimal.RequireFromString("12.345"), Quantity: 3}}
	require.NoError(t, repo.Insert(ctx, domain.Order{
		ID:        "ORD-PRECISE",
		UserID:    domain.GuestID,
		Lines:     lines,
		Total:     decimal.RequireFromString("37.035"),
		Status:    domain.OrderStatusPending,
		CreatedAt: at,
		UpdatedAt: at,
	}))

	got, err := repo.Get(ctx, "ORD-PRECISE")
	require.NoError(t, err)
	sum := got.Lines[0].UnitPrice.Mul(decimal.NewFromInt(int64(got.Lines[0].Quantity)))
	assert.True(t, sum.Equal(got.Total), "total %s, lines %s", got.Total, sum)
}

func TestPostgresRepository_ListNewestFirst(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	for _, o := range fixtures.Orders() {
		require.NoError(t, repo.Insert(ctx, o))
	}
	at := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.Insert(ctx, domain.Order{
		ID:        "ORD-NEW",
		UserID:    domain.GuestID,
		Lines:     []domain.OrderLine{{ItemID: "5", UnitPrice: decimal.RequireFromString("28"), Quantity: 2}},
		Total:     decimal.RequireFromString("56"),
		Status:    domain.OrderStatusPending,
		CreatedAt: at,
		UpdatedAt: at,
	}))

	orders, err := repo.ListByUser(ctx, domain.GuestID)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "ORD-NEW", orders[0].ID)
	assert.Nil(t, orders[0].ShippingAddress)
	assert.Equal(t, "ORDER0987654321", orders[1].ID)

	none, err := repo.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPostgresRepository_UpdateStatus(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	for _, o := range fixtures.Orders() {
		require.NoError(t, repo.Insert(ctx, o))
	}
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	o, prev, err := repo.UpdateStatus(ctx, "ORDER0987654321", domain.OrderStatusCancelled, at)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, prev)
	assert.Equal(t, domain.OrderStatusCancelled, o.Status)
	assert.True(t, at.Equal(o.UpdatedAt))

	_, _, err = repo.UpdateStatus(ctx, "ORDER0987654321", domain.OrderStatusShipped, at)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
	_, _, err = repo.UpdateStatus(ctx, "missing", domain.OrderStatusShipped, at)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgresRepository_ConcurrentPaymentsOneWins(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	at := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.Insert(ctx, domain.Order{
		ID:        "ORD-RACE",
		UserID:    domain.GuestID,
		Lines:     []domain.OrderLine{{ItemID: "1", UnitPrice: decimal.NewFromInt(10), Quantity: 1}},
		Total:     decimal.NewFromInt(10),
		Status:    domain.OrderStatusPending,
		CreatedAt: at,
		UpdatedAt: at,
	}))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.RecordPayment(ctx, "ORD-RACE", domain.PaymentMethodApplePay, "TXN", at); err == nil {
				wins.Add(1)
			} else {
				assert.ErrorIs(t, err, domain.ErrIllegalTransition)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, wins.Load())

	o, err := repo.Get(ctx, "ORD-RACE")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, o.Status)
	assert.Equal(t, domain.PaymentMethodApplePay, o.PaymentMethod)
}
