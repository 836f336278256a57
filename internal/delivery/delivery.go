// Package delivery decides whether an address can be delivered to and what it costs.
package delivery

import (
	"context"
	"errors"
	"fmt"

	"pizzeria-api/internal/model"

	"github.com/shopspring/decimal"
)

// Policy holds the fee schedule and service radius.
type Policy struct {
	BaseFee          decimal.Decimal
	FreeRadiusMiles  decimal.Decimal
	PerMileFee       decimal.Decimal
	MaxDeliveryMiles decimal.Decimal
}

// DefaultPolicy returns the restaurant's standard delivery policy.
func DefaultPolicy() Policy {
	return Policy{
		BaseFee:          decimal.NewFromInt(4),
		FreeRadiusMiles:  decimal.NewFromInt(5),
		PerMileFee:       decimal.NewFromInt(2),
		MaxDeliveryMiles: decimal.NewFromInt(9),
	}
}

// Fee returns the delivery fee for a distance and whether the distance is served.
func (p Policy) Fee(miles decimal.Decimal) (decimal.Decimal, bool) {
	if miles.GreaterThan(p.MaxDeliveryMiles) {
		return decimal.Zero, false
	}
	if miles.LessThanOrEqual(p.FreeRadiusMiles) {
		return p.BaseFee.Round(2), true
	}
	extra := miles.Sub(p.FreeRadiusMiles).Mul(p.PerMileFee)
	return p.BaseFee.Add(extra).Round(2), true
}

// Quote is the outcome of an eligibility check.
type Quote struct {
	Eligible      bool            `json:"eligible"`
	Fee           decimal.Decimal `json:"fee"`
	DistanceMiles decimal.Decimal `json:"distanceMiles"`
}

// DistanceEstimator measures the driving distance from the restaurant to an address.
type DistanceEstimator interface {
	Estimate(ctx context.Context, addr model.Address) (decimal.Decimal, error)
}

// FixedDistance reports the same distance for every address.
// It stands in until a geocoding estimator is configured.
type FixedDistance struct {
	Miles decimal.Decimal
}

// Estimate returns the fixed distance.
func (f FixedDistance) Estimate(ctx context.Context, _ model.Address) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	return f.Miles, nil
}

// Resolver combines a policy with a distance estimator.
type Resolver struct {
	policy    Policy
	estimator DistanceEstimator
}

// NewResolver creates a resolver.
func NewResolver(policy Policy, estimator DistanceEstimator) *Resolver {
	return &Resolver{policy: policy, estimator: estimator}
}

// Policy returns the resolver's fee schedule.
func (r *Resolver) Policy() Policy {
	return r.policy
}

// Resolve quotes delivery to addr. An address beyond the service radius yields
// ErrAddressOutsideServiceArea together with the non-eligible quote.
func (r *Resolver) Resolve(ctx context.Context, addr model.Address) (Quote, error) {
	if !addr.Complete() {
		return Quote{}, model.ErrMissingAddress
	}

	miles, err := r.estimator.Estimate(ctx, addr)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Quote{}, model.ErrUpstreamUnavailable.WithDetail("distance estimate timed out", err)
		}
		return Quote{}, fmt.Errorf("failed to estimate delivery distance: %w", err)
	}

	fee, ok := r.policy.Fee(miles)
	quote := Quote{Eligible: ok, Fee: fee, DistanceMiles: miles}
	if !ok {
		return quote, model.ErrAddressOutsideServiceArea.WithDetail(
			fmt.Sprintf("%s miles exceeds the %s mile delivery radius", miles.String(), r.policy.MaxDeliveryMiles.String()), nil)
	}
	return quote, nil
}
