package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is a position in the order lifecycle.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusDelivered OrderStatus = "delivered"
	StatusPickedUp  OrderStatus = "picked_up"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderType says how the customer receives the order.
type OrderType string

const (
	OrderTypeDelivery OrderType = "delivery"
	OrderTypePickup   OrderType = "pickup"
)

// Valid reports whether t is a known order type.
func (t OrderType) Valid() bool {
	return t == OrderTypeDelivery || t == OrderTypePickup
}

// PaymentMethod is how the customer intends to pay at checkout.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodOnline PaymentMethod = "online"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCash || m == PaymentMethodOnline
}

// ItemType distinguishes pizzas from other menu items in a cart.
type ItemType string

const (
	ItemTypePizza    ItemType = "pizza"
	ItemTypeMenuItem ItemType = "menu_item"
)

// CartLine is one priced, quantified item within an order.
type CartLine struct {
	ItemID              string          `json:"itemId"`
	ItemType            ItemType        `json:"itemType"`
	Name                string          `json:"name"`
	Size                *string         `json:"size,omitempty"`
	Toppings            []string        `json:"toppings"`
	Quantity            int             `json:"quantity"`
	UnitPrice           decimal.Decimal `json:"unitPrice"`
	SpecialInstructions *string         `json:"specialInstructions,omitempty"`
}

// LineTotal returns unitPrice × quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Address is a delivery destination.
type Address struct {
	Street  string  `json:"street"`
	City    string  `json:"city"`
	State   string  `json:"state"`
	ZipCode string  `json:"zipCode"`
	Phone   *string `json:"phone,omitempty"`
}

// Complete reports whether every required address field is present.
func (a Address) Complete() bool {
	return strings.TrimSpace(a.Street) != "" &&
		strings.TrimSpace(a.City) != "" &&
		strings.TrimSpace(a.State) != "" &&
		strings.TrimSpace(a.ZipCode) != ""
}

// String formats the address on one line.
func (a Address) String() string {
	return a.Street + ", " + a.City + ", " + a.State + " " + a.ZipCode
}

// Order represents a customer order.
type Order struct {
	ID                    uuid.UUID       `json:"id" db:"id"`
	UserID                uuid.UUID       `json:"userId" db:"user_id"`
	Lines                 []CartLine      `json:"items" db:"lines"`
	OrderType             OrderType       `json:"orderType" db:"order_type"`
	PaymentMethod         PaymentMethod   `json:"paymentMethod" db:"payment_method"`
	DeliveryAddress       *Address        `json:"deliveryAddress,omitempty" db:"delivery_address"`
	DeliveryDistanceMiles decimal.Decimal `json:"deliveryDistanceMiles" db:"delivery_distance_miles"`
	Subtotal              decimal.Decimal `json:"subtotal" db:"subtotal_cents"`
	DeliveryFee           decimal.Decimal `json:"deliveryFee" db:"delivery_fee_cents"`
	Tax                   decimal.Decimal `json:"tax" db:"tax_cents"`
	Total                 decimal.Decimal `json:"total" db:"total_cents"`
	Status                OrderStatus     `json:"status" db:"status"`
	SpecialInstructions   *string         `json:"specialInstructions,omitempty" db:"special_instructions"`
	EstimatedReadyAt      time.Time       `json:"estimatedReadyAt" db:"estimated_ready_at"`
	CreatedAt             time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt             time.Time       `json:"updatedAt" db:"updated_at"`
}

// Number is the short order reference shown to customers and staff.
func (o *Order) Number() string {
	s := o.ID.String()
	return s[:8]
}

// PlaceOrderRequest represents the request payload for creating an order.
// Client-supplied totals are never read; pricing is computed server-side.
type PlaceOrderRequest struct {
	Items               []CartLine    `json:"items"`
	OrderType           OrderType     `json:"orderType"`
	PaymentMethod       PaymentMethod `json:"paymentMethod"`
	DeliveryAddress     *Address      `json:"deliveryAddress,omitempty"`
	SpecialInstructions *string       `json:"specialInstructions,omitempty"`
}

// StatusUpdateRequest is the body accepted by the admin status endpoint.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// StatusChange records one lifecycle transition of an order.
type StatusChange struct {
	ID         uuid.UUID   `json:"id" db:"id"`
	OrderID    uuid.UUID   `json:"orderId" db:"order_id"`
	FromStatus OrderStatus `json:"fromStatus" db:"from_status"`
	ToStatus   OrderStatus `json:"toStatus" db:"to_status"`
	ChangedBy  uuid.UUID   `json:"changedBy" db:"changed_by"`
	ChangedAt  time.Time   `json:"changedAt" db:"changed_at"`
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	UserID *uuid.UUID
	Status *OrderStatus
	Limit  int
}
