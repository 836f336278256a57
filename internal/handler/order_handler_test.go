package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"pizzeria-api/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleOrder(userID uuid.UUID, status model.OrderStatus) *model.Order {
	now := time.Date(2025, 3, 14, 18, 30, 0, 0, time.UTC)
	return &model.Order{
		ID:     uuid.New(),
		UserID: userID,
		Lines: []model.CartLine{
			{ItemID: "cheese", ItemType: model.ItemTypePizza, Name: "Cheese Pizza", Quantity: 1, UnitPrice: decimal.RequireFromString("13.95")},
		},
		OrderType:        model.OrderTypePickup,
		PaymentMethod:    model.PaymentMethodCash,
		Subtotal:         decimal.RequireFromString("13.95"),
		Tax:              decimal.RequireFromString("1.19"),
		Total:            decimal.RequireFromString("15.14"),
		Status:           status,
		EstimatedReadyAt: now.Add(25 * time.Minute),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func TestOrderHandler_Create(t *testing.T) {
	customer := testCustomer()
	placed := sampleOrder(customer.ID, model.StatusPending)

	tests := []struct {
		name           string
		body           any
		user           *model.User
		mockReturn     *model.Order
		mockError      error
		expectService  bool
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "Success",
			body: model.PlaceOrderRequest{
				Items:         placed.Lines,
				OrderType:     model.OrderTypePickup,
				PaymentMethod: model.PaymentMethodCash,
			},
			user:           customer,
			mockReturn:     placed,
			expectService:  true,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Malformed JSON",
			body:           `{"items": [`,
			user:           customer,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
		{
			name:           "Empty cart",
			body:           model.PlaceOrderRequest{OrderType: model.OrderTypePickup, PaymentMethod: model.PaymentMethodCash},
			user:           customer,
			mockError:      model.ErrInvalidCart,
			expectService:  true,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidCart,
		},
		{
			name: "Address outside service area",
			body: model.PlaceOrderRequest{
				Items:           placed.Lines,
				OrderType:       model.OrderTypeDelivery,
				PaymentMethod:   model.PaymentMethodCash,
				DeliveryAddress: &model.Address{Street: "1 Far Rd", City: "Macon", State: "GA", ZipCode: "31201"},
			},
			user:           customer,
			mockError:      model.ErrAddressOutsideServiceArea,
			expectService:  true,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   model.ErrCodeAddressOutsideServiceArea,
		},
		{
			name: "Store timeout",
			body: model.PlaceOrderRequest{
				Items:         placed.Lines,
				OrderType:     model.OrderTypePickup,
				PaymentMethod: model.PaymentMethodCash,
			},
			user:           customer,
			mockError:      model.ErrUpstreamUnavailable,
			expectService:  true,
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   model.ErrCodeUpstreamUnavailable,
		},
		{
			name: "Unexpected error",
			body: model.PlaceOrderRequest{
				Items:         placed.Lines,
				OrderType:     model.OrderTypePickup,
				PaymentMethod: model.PaymentMethodCash,
			},
			user:           customer,
			mockError:      errors.New("connection reset"),
			expectService:  true,
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockOrderService)
			h := NewOrderHandler(svc, zerolog.Nop())

			if tt.expectService {
				svc.On("PlaceOrder", mock.Anything, tt.user, mock.AnythingOfType("*model.PlaceOrderRequest")).
					Return(tt.mockReturn, tt.mockError)
			}

			w := serve(t, http.MethodPost, "/api/orders", "/api/orders", h.Create, tt.user, tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w).Error)
			} else {
				var got model.Order
				require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
				assert.Equal(t, placed.ID, got.ID)
				assert.True(t, got.Total.Equal(decimal.RequireFromString("15.14")))
			}

			if tt.expectService {
				svc.AssertExpectations(t)
			} else {
				svc.AssertNotCalled(t, "PlaceOrder")
			}
		})
	}
}

func TestOrderHandler_Create_RetryAfterOnUpstream(t *testing.T) {
	customer := testCustomer()
	svc := new(MockOrderService)
	h := NewOrderHandler(svc, zerolog.Nop())

	svc.On("PlaceOrder", mock.Anything, customer, mock.Anything).
		Return(nil, model.ErrUpstreamUnavailable.WithDetail("store did not respond during create order", nil))

	w := serve(t, http.MethodPost, "/api/orders", "/api/orders", h.Create, customer, model.PlaceOrderRequest{})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	resp := decodeError(t, w)
	assert.Equal(t, "store did not respond during create order", resp.Detail)
}

func TestOrderHandler_MyOrders(t *testing.T) {
	customer := testCustomer()
	svc := new(MockOrderService)
	h := NewOrderHandler(svc, zerolog.Nop())

	orders := []model.Order{*sampleOrder(customer.ID, model.StatusPending), *sampleOrder(customer.ID, model.StatusReady)}
	svc.On("ListMyOrders", mock.Anything, customer).Return(orders, nil)

	w := serve(t, http.MethodGet, "/api/orders/my-orders", "/api/orders/my-orders", h.MyOrders, customer, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var got []model.Order
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Len(t, got, 2)
	svc.AssertExpectations(t)
}

func TestOrderHandler_GetByID(t *testing.T) {
	customer := testCustomer()
	order := sampleOrder(customer.ID, model.StatusPending)

	tests := []struct {
		name           string
		path           string
		mockReturn     *model.Order
		mockError      error
		expectService  bool
		expectedStatus int
	}{
		{
			name:           "Success",
			path:           "/api/orders/" + order.ID.String(),
			mockReturn:     order,
			expectService:  true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Not found",
			path:           "/api/orders/" + order.ID.String(),
			mockError:      model.ErrOrderNotFound,
			expectService:  true,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Malformed id",
			path:           "/api/orders/not-a-uuid",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockOrderService)
			h := NewOrderHandler(svc, zerolog.Nop())

			if tt.expectService {
				svc.On("GetOrder", mock.Anything, customer, order.ID).Return(tt.mockReturn, tt.mockError)
			}

			w := serve(t, http.MethodGet, "/api/orders/{id}", tt.path, h.GetByID, customer, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectService {
				svc.AssertExpectations(t)
			} else {
				svc.AssertNotCalled(t, "GetOrder")
			}
		})
	}
}

func TestOrderHandler_List(t *testing.T) {
	admin := testAdmin()

	t.Run("Filtered by status", func(t *testing.T) {
		svc := new(MockOrderService)
		h := NewOrderHandler(svc, zerolog.Nop())
		svc.On("ListAllOrders", mock.Anything, "preparing").
			Return([]model.Order{*sampleOrder(uuid.New(), model.StatusPreparing)}, nil)

		w := serve(t, http.MethodGet, "/api/admin/orders", "/api/admin/orders?status=preparing", h.List, admin, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("Unknown status", func(t *testing.T) {
		svc := new(MockOrderService)
		h := NewOrderHandler(svc, zerolog.Nop())
		svc.On("ListAllOrders", mock.Anything, "baking").Return(nil, model.ErrUnknownStatus)

		w := serve(t, http.MethodGet, "/api/admin/orders", "/api/admin/orders?status=baking", h.List, admin, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, model.ErrCodeUnknownStatus, decodeError(t, w).Error)
	})
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	admin := testAdmin()
	order := sampleOrder(uuid.New(), model.StatusConfirmed)
	path := "/api/admin/orders/" + order.ID.String() + "/status"

	tests := []struct {
		name           string
		target         string
		body           any
		wantStatus     string
		mockError      error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "Status from query",
			target:         path + "?status=confirmed",
			wantStatus:     "confirmed",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Status from body",
			target:         path,
			body:           model.StatusUpdateRequest{Status: "confirmed"},
			wantStatus:     "confirmed",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Missing status",
			target:         path,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeMissingField,
		},
		{
			name:           "Malformed body",
			target:         path,
			body:           `{"status":`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
		{
			name:           "Invalid transition",
			target:         path + "?status=pending",
			wantStatus:     "pending",
			mockError:      model.ErrInvalidTransition,
			expectedStatus: http.StatusConflict,
			expectedCode:   model.ErrCodeInvalidTransition,
		},
		{
			name:           "Unknown status",
			target:         path + "?status=baking",
			wantStatus:     "baking",
			mockError:      model.ErrUnknownStatus,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeUnknownStatus,
		},
		{
			name:           "Forbidden",
			target:         path + "?status=ready",
			wantStatus:     "ready",
			mockError:      model.ErrForbidden,
			expectedStatus: http.StatusForbidden,
			expectedCode:   model.ErrCodeForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockOrderService)
			h := NewOrderHandler(svc, zerolog.Nop())

			if tt.wantStatus != "" {
				var ret *model.Order
				if tt.mockError == nil {
					ret = order
				}
				svc.On("UpdateStatus", mock.Anything, admin, order.ID, tt.wantStatus).Return(ret, tt.mockError)
			}

			w := serve(t, http.MethodPut, "/api/admin/orders/{id}/status", tt.target, h.UpdateStatus, admin, tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w).Error)
			} else {
				var resp struct {
					Message string      `json:"message"`
					Order   model.Order `json:"order"`
				}
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, "Order status updated", resp.Message)
				assert.Equal(t, order.ID, resp.Order.ID)
			}

			if tt.wantStatus == "" {
				svc.AssertNotCalled(t, "UpdateStatus")
			} else {
				svc.AssertExpectations(t)
			}
		})
	}
}

func TestOrderHandler_History(t *testing.T) {
	admin := testAdmin()
	orderID := uuid.New()
	svc := new(MockOrderService)
	h := NewOrderHandler(svc, zerolog.Nop())

	history := []model.StatusChange{
		{ID: uuid.New(), OrderID: orderID, FromStatus: model.StatusPending, ToStatus: model.StatusConfirmed, ChangedBy: admin.ID},
	}
	svc.On("StatusHistory", mock.Anything, orderID).Return(history, nil)

	w := serve(t, http.MethodGet, "/api/admin/orders/{id}/history", "/api/admin/orders/"+orderID.String()+"/history", h.History, admin, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var got []model.StatusChange
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, model.StatusConfirmed, got[0].ToStatus)
	svc.AssertExpectations(t)
}
