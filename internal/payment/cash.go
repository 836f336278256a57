package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// cashProvider settles immediately without an external call.
type cashProvider struct {
	now func() time.Time
}

// NewCashProvider creates the cash provider.
func NewCashProvider() Provider {
	return &cashProvider{now: time.Now}
}

func (c *cashProvider) Name() string  { return ProviderCash }
func (c *cashProvider) Enabled() bool { return true }

func (c *cashProvider) CreateIntent(_ context.Context, req IntentRequest) (*Intent, error) {
	return &Intent{
		ID:        fmt.Sprintf("cash_%d_%s", req.Amount.Shift(2).IntPart(), req.OrderID),
		Provider:  ProviderCash,
		Status:    StatusCompleted,
		Amount:    req.Amount,
		Currency:  req.Currency,
		CreatedAt: c.now(),
	}, nil
}

func (c *cashProvider) Confirm(_ context.Context, intentID string) (*Intent, error) {
	return &Intent{
		ID:        intentID,
		Provider:  ProviderCash,
		Status:    StatusCompleted,
		Amount:    cashAmount(intentID),
		CreatedAt: c.now(),
	}, nil
}

func (c *cashProvider) Refund(_ context.Context, intentID string, amount decimal.Decimal) (*Refund, error) {
	if amount.IsZero() {
		amount = cashAmount(intentID)
	}
	return &Refund{
		ID:       "refund_" + intentID,
		IntentID: intentID,
		Provider: ProviderCash,
		Amount:   amount,
		Status:   StatusRefunded,
	}, nil
}

// cashAmount recovers the amount encoded in a cash intent id.
func cashAmount(intentID string) decimal.Decimal {
	parts := strings.SplitN(intentID, "_", 3)
	if len(parts) < 2 {
		return decimal.Zero
	}
	cents, err := decimal.NewFromString(parts[1])
	if err != nil {
		return decimal.Zero
	}
	return cents.Shift(-2)
}
