package model

import "github.com/shopspring/decimal"

// PaymentIntentRequest asks for a payment intent covering an order's total.
type PaymentIntentRequest struct {
	Provider string `json:"provider"`
	Currency string `json:"currency,omitempty"`
}

// PaymentConfirmRequest names the provider that issued an intent.
type PaymentConfirmRequest struct {
	Provider string `json:"provider"`
}

// RefundRequest asks for a full or partial refund of an intent.
type RefundRequest struct {
	Provider string          `json:"provider"`
	Amount   decimal.Decimal `json:"amount"`
}
