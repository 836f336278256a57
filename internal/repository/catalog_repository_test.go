package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"pizzeria-api/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestCatalogRepository(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCatalogRepository(pool, zerolog.Nop())
	ctx := context.Background()

	count, err := repo.CountPizzas(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	pizzas := []model.Pizza{
		{
			ID: "ny-cheese", Name: "NY Cheese Pizza", Category: "classic",
			Sizes: map[string]decimal.Decimal{
				"Medium": decimal.RequireFromString("13.95"),
				"Large":  decimal.RequireFromString("15.95"),
				"Xlarge": decimal.RequireFromString("17.95"),
			},
			IsAvailable: true,
		},
		{
			ID: "hawaiian", Name: "Hawaiian Pizza", Category: "specialty",
			Sizes:       map[string]decimal.Decimal{"Medium": decimal.RequireFromString("17.95")},
			Toppings:    []string{"ham", "pineapple"},
			IsAvailable: false,
		},
	}
	for i := range pizzas {
		require.NoError(t, repo.CreatePizza(ctx, &pizzas[i]))
	}

	items := []model.MenuItem{
		{ID: "white-slice", Name: "White Slice", Category: "slice", Price: decimal.RequireFromString("4.75"), IsAvailable: true},
		{ID: "garlic-knots", Name: "Garlic Knots", Category: "appetizers", Price: decimal.RequireFromString("5.99"), IsAvailable: true},
	}
	for i := range items {
		require.NoError(t, repo.CreateMenuItem(ctx, &items[i]))
	}

	t.Run("Count includes unavailable pizzas", func(t *testing.T) {
		count, err := repo.CountPizzas(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("List available pizzas", func(t *testing.T) {
		got, err := repo.ListAvailablePizzas(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "ny-cheese", got[0].ID)
		assert.True(t, decimal.RequireFromString("17.95").Equal(got[0].Sizes["Xlarge"]))
		assert.Empty(t, got[0].Toppings)
	})

	t.Run("List available menu items ordered by category", func(t *testing.T) {
		got, err := repo.ListAvailableMenuItems(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "garlic-knots", got[0].ID)
		assert.True(t, decimal.RequireFromString("4.75").Equal(got[1].Price))
	})
}

// countingCatalog is a CatalogRepository stub that counts list calls.
type countingCatalog struct {
	pizzaCalls int
	itemCalls  int
	pizzas     []model.Pizza
}

func (c *countingCatalog) ListAvailablePizzas(ctx context.Context) ([]model.Pizza, error) {
	c.pizzaCalls++
	return c.pizzas, nil
}

func (c *countingCatalog) ListAvailableMenuItems(ctx context.Context) ([]model.MenuItem, error) {
	c.itemCalls++
	return []model.MenuItem{}, nil
}

func (c *countingCatalog) CountPizzas(ctx context.Context) (int, error) {
	return len(c.pizzas), nil
}

func (c *countingCatalog) CreatePizza(ctx context.Context, pizza *model.Pizza) error {
	c.pizzas = append(c.pizzas, *pizza)
	return nil
}

func (c *countingCatalog) CreateMenuItem(ctx context.Context, item *model.MenuItem) error {
	return nil
}

// setupTestRedis starts a Redis testcontainer and returns a connected client.
func setupTestRedis(t *testing.T) *redis.Client {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestCachedCatalogRepository(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	backing := &countingCatalog{pizzas: []model.Pizza{
		{ID: "ny-cheese", Name: "NY Cheese Pizza", Sizes: map[string]decimal.Decimal{"Large": decimal.RequireFromString("15.95")}, IsAvailable: true},
	}}
	repo := NewCachedCatalogRepository(backing, client, time.Minute, zerolog.Nop())

	first, err := repo.ListAvailablePizzas(ctx)
	require.NoError(t, err)
	second, err := repo.ListAvailablePizzas(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, backing.pizzaCalls, "second read should be served from cache")
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Name, second[0].Name)
	assert.True(t, decimal.RequireFromString("15.95").Equal(second[0].Sizes["Large"]))

	require.NoError(t, repo.CreatePizza(ctx, &model.Pizza{ID: "deluxe", Name: "Deluxe Pizza", IsAvailable: true}))

	third, err := repo.ListAvailablePizzas(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, backing.pizzaCalls, "create should invalidate the cached list")
	assert.Len(t, third, 2)
}

func TestCachedCatalogRepository_RedisDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	backing := &countingCatalog{}
	repo := NewCachedCatalogRepository(backing, client, time.Minute, zerolog.Nop())

	items, err := repo.ListAvailableMenuItems(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Equal(t, 1, backing.itemCalls)
}
