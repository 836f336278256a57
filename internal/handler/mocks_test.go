package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pizzeria-api/internal/middleware"
	"pizzeria-api/internal/model"
	"pizzeria-api/internal/payment"
	"pizzeria-api/internal/seed"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderService is a mock implementation of service.OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, actor *model.User, req *model.PlaceOrderRequest) (*model.Order, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) ListMyOrders(ctx context.Context, actor *model.User) ([]model.Order, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) ListAllOrders(ctx context.Context, status string) ([]model.Order, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, actor *model.User, id uuid.UUID, status string) (*model.Order, error) {
	args := m.Called(ctx, actor, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) StatusHistory(ctx context.Context, id uuid.UUID) ([]model.StatusChange, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StatusChange), args.Error(1)
}

// MockAuthService is a mock implementation of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResponse), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthResponse), args.Error(1)
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) BootstrapAdmin(ctx context.Context, email, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

// MockCatalogService is a mock implementation of service.CatalogService.
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListPizzas(ctx context.Context) ([]model.Pizza, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Pizza), args.Error(1)
}

func (m *MockCatalogService) ListMenuItems(ctx context.Context) ([]model.MenuItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MenuItem), args.Error(1)
}

func (m *MockCatalogService) Categories() model.Categories {
	args := m.Called()
	return args.Get(0).(model.Categories)
}

func (m *MockCatalogService) CreatePizza(ctx context.Context, pizza *model.Pizza) (*model.Pizza, error) {
	args := m.Called(ctx, pizza)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Pizza), args.Error(1)
}

func (m *MockCatalogService) CreateMenuItem(ctx context.Context, item *model.MenuItem) (*model.MenuItem, error) {
	args := m.Called(ctx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MenuItem), args.Error(1)
}

func (m *MockCatalogService) Seed(ctx context.Context, loader seed.Loader, path string) (bool, error) {
	args := m.Called(ctx, loader, path)
	return args.Bool(0), args.Error(1)
}

// MockPaymentService is a mock implementation of service.PaymentService.
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) AvailableMethods() []payment.Method {
	args := m.Called()
	return args.Get(0).([]payment.Method)
}

func (m *MockPaymentService) CreateIntentForOrder(ctx context.Context, actor *model.User, orderID uuid.UUID, req *model.PaymentIntentRequest) (*payment.Intent, error) {
	args := m.Called(ctx, actor, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

func (m *MockPaymentService) Confirm(ctx context.Context, actor *model.User, orderID uuid.UUID, intentID string, req *model.PaymentConfirmRequest) (*payment.Intent, error) {
	args := m.Called(ctx, actor, orderID, intentID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

func (m *MockPaymentService) Refund(ctx context.Context, intentID string, req *model.RefundRequest) (*payment.Refund, error) {
	args := m.Called(ctx, intentID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Refund), args.Error(1)
}

// serve routes a single request through a chi router so URL parameters resolve.
// A non-nil user is placed on the request context as the authentication
// middleware would.
func serve(t *testing.T, method, pattern, target string, h http.HandlerFunc, user *model.User, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), user))
	}

	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func testCustomer() *model.User {
	return &model.User{ID: uuid.New(), Email: "jane@example.com", FirstName: "Jane", LastName: "Doe"}
}

func testAdmin() *model.User {
	return &model.User{ID: uuid.New(), Email: "admin@example.com", FirstName: "Admin", LastName: "User", IsAdmin: true}
}
