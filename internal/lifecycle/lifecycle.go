// Package lifecycle holds the order status graph.
package lifecycle

import (
	"fmt"
	"strings"

	"pizzeria-api/internal/model"
)

var rank = map[model.OrderStatus]int{
	model.StatusPending:   0,
	model.StatusConfirmed: 1,
	model.StatusPreparing: 2,
	model.StatusReady:     3,
	model.StatusDelivered: 4,
	model.StatusPickedUp:  4,
	model.StatusCancelled: 5,
}

// Statuses lists every recognised status in lifecycle order.
func Statuses() []model.OrderStatus {
	return []model.OrderStatus{
		model.StatusPending,
		model.StatusConfirmed,
		model.StatusPreparing,
		model.StatusReady,
		model.StatusDelivered,
		model.StatusPickedUp,
		model.StatusCancelled,
	}
}

// ParseStatus converts raw input into a status.
func ParseStatus(raw string) (model.OrderStatus, error) {
	status := model.OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := rank[status]; !ok {
		return "", model.ErrUnknownStatus.WithDetail(fmt.Sprintf("%q is not a recognised order status", raw), nil)
	}
	return status, nil
}

// IsTerminal reports whether no further transitions are possible from status.
func IsTerminal(status model.OrderStatus) bool {
	switch status {
	case model.StatusDelivered, model.StatusPickedUp, model.StatusCancelled:
		return true
	}
	return false
}

// Validate checks whether an order of the given type may move from one status to another.
// Moving to the current status is allowed and treated by callers as a no-op.
func Validate(orderType model.OrderType, from, to model.OrderStatus) error {
	if from == to {
		return nil
	}
	if IsTerminal(from) {
		return model.ErrInvalidTransition.WithDetail(fmt.Sprintf("order is already %s", from), nil)
	}
	if to == model.StatusCancelled {
		return nil
	}
	if to == model.StatusDelivered && orderType != model.OrderTypeDelivery {
		return model.ErrInvalidTransition.WithDetail("only delivery orders can be delivered", nil)
	}
	if to == model.StatusPickedUp && orderType != model.OrderTypePickup {
		return model.ErrInvalidTransition.WithDetail("only pickup orders can be picked up", nil)
	}
	if rank[to] <= rank[from] {
		return model.ErrInvalidTransition.WithDetail(fmt.Sprintf("cannot move from %s back to %s", from, to), nil)
	}
	return nil
}

// CompletionStatus returns the terminal success status for an order type.
func CompletionStatus(orderType model.OrderType) model.OrderStatus {
	if orderType == model.OrderTypePickup {
		return model.StatusPickedUp
	}
	return model.StatusDelivered
}
