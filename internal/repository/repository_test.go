package repository

import (
	"context"
	"testing"
	"time"

	"pizzeria-api/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToCents(t *testing.T) {
	tests := []struct {
		name    string
		amount  decimal.Decimal
		want    int64
		wantErr bool
	}{
		{name: "whole cents", amount: decimal.RequireFromString("13.95"), want: 1395},
		{name: "rounds half cents", amount: decimal.RequireFromString("1.185"), want: 119},
		{name: "negative", amount: decimal.RequireFromString("-4.00"), want: -400},
		{
			name:    "past int64",
			amount:  decimal.RequireFromString("13.95").Mul(decimal.NewFromInt(1 << 60)),
			wantErr: true,
		},
		{
			name:    "below int64",
			amount:  decimal.RequireFromString("-13.95").Mul(decimal.NewFromInt(1 << 60)),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toCents(tt.amount)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "out of range")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOrderRepository_Create_RejectsAmountsPastInt64(t *testing.T) {
	order := newTestOrder(uuid.New(), model.OrderTypePickup, time.Now())
	order.Lines[0].Quantity = 1 << 60
	order.Subtotal = order.Lines[0].LineTotal()
	order.Total = order.Subtotal

	// The amounts are checked before the pool is touched.
	repo := NewOrderRepository(nil, zerolog.Nop())
	err := repo.Create(context.Background(), order)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode order amounts")
}

func TestCatalogRepository_CreateMenuItem_RejectsPricePastInt64(t *testing.T) {
	repo := NewCatalogRepository(nil, zerolog.Nop())
	err := repo.CreateMenuItem(context.Background(), &model.MenuItem{
		ID:    "garlic-knots",
		Name:  "Garlic Knots",
		Price: decimal.RequireFromString("1e20"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode menu item price")
}
