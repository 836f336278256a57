package repository

import (
	"context"
	"fmt"
	"math"
	"time"

	"pizzeria-api/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CatalogRepository defines the interface for menu data access operations.
type CatalogRepository interface {
	// ListAvailablePizzas returns every pizza currently offered, ordered by category and name.
	ListAvailablePizzas(ctx context.Context) ([]model.Pizza, error)

	// ListAvailableMenuItems returns every non-pizza item currently offered.
	ListAvailableMenuItems(ctx context.Context) ([]model.MenuItem, error)

	// CountPizzas returns the number of pizzas in the catalog, available or not.
	CountPizzas(ctx context.Context) (int, error)

	CreatePizza(ctx context.Context, pizza *model.Pizza) error
	CreateMenuItem(ctx context.Context, item *model.MenuItem) error
}

// UserRepository defines the interface for account data access operations.
type UserRepository interface {
	// Create inserts a user. Returns model.ErrEmailTaken when the email is already registered.
	Create(ctx context.Context, user *model.User) error

	// GetByID returns nil, nil when no user has the id.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// GetByEmail matches case-insensitively and returns nil, nil when absent.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts an order as a single row.
	Create(ctx context.Context, order *model.Order) error

	// GetByID returns nil, nil when the order does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// List returns orders matching filter, newest first.
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)

	// UpdateStatus sets the status of an order within the provided transaction.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus, at time.Time) error

	// InsertStatusChange records a transition within the provided transaction.
	InsertStatusChange(ctx context.Context, tx pgx.Tx, change *model.StatusChange) error

	// History returns the transitions of an order, oldest first.
	History(ctx context.Context, orderID uuid.UUID) ([]model.StatusChange, error)
}

var (
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// toCents converts an amount to the BIGINT cents stored in the database.
func toCents(d decimal.Decimal) (int64, error) {
	c := d.Shift(2).Round(0)
	if c.GreaterThan(maxCents) || c.LessThan(minCents) {
		return 0, fmt.Errorf("amount %s out of range for cents", d)
	}
	return c.IntPart(), nil
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}
