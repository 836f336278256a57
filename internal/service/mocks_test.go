package service

import (
	"context"
	"time"

	"pizzeria-api/internal/model"
	"pizzeria-api/internal/notification"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	// Return a MockTx interface value, not a pointer
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus, at time.Time) error {
	args := m.Called(ctx, tx, id, status, at)
	return args.Error(0)
}

func (m *MockOrderRepository) InsertStatusChange(ctx context.Context, tx pgx.Tx, change *model.StatusChange) error {
	args := m.Called(ctx, tx, change)
	return args.Error(0)
}

func (m *MockOrderRepository) History(ctx context.Context, orderID uuid.UUID) ([]model.StatusChange, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StatusChange), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockCatalogRepository is a mock implementation of CatalogRepository.
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) ListAvailablePizzas(ctx context.Context) ([]model.Pizza, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Pizza), args.Error(1)
}

func (m *MockCatalogRepository) ListAvailableMenuItems(ctx context.Context) ([]model.MenuItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MenuItem), args.Error(1)
}

func (m *MockCatalogRepository) CountPizzas(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockCatalogRepository) CreatePizza(ctx context.Context, pizza *model.Pizza) error {
	args := m.Called(ctx, pizza)
	return args.Error(0)
}

func (m *MockCatalogRepository) CreateMenuItem(ctx context.Context, item *model.MenuItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// MockNotifier is a mock implementation of notification.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendOrderConfirmation(ctx context.Context, order *model.Order, contact notification.Contact) error {
	args := m.Called(ctx, order, contact)
	return args.Error(0)
}

func (m *MockNotifier) SendStatusUpdate(ctx context.Context, order *model.Order, status model.OrderStatus, contact notification.Contact) error {
	args := m.Called(ctx, order, status, contact)
	return args.Error(0)
}

func (m *MockNotifier) SendAdminNewOrderAlert(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }
