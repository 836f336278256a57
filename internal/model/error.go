package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Detail        string `json:"detail,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON                = "INVALID_JSON"
	ErrCodeMissingField               = "MISSING_FIELD"
	ErrCodeInvalidCart                = "INVALID_CART"
	ErrCodeInvalidOrder               = "INVALID_ORDER"
	ErrCodeMissingAddress             = "MISSING_ADDRESS"
	ErrCodeAddressOutsideServiceArea  = "ADDRESS_OUTSIDE_SERVICE_AREA"
	ErrCodeUnknownStatus              = "UNKNOWN_STATUS"
	ErrCodeInvalidTransition          = "INVALID_TRANSITION"
	ErrCodeOrderNotFound              = "ORDER_NOT_FOUND"
	ErrCodePaymentProviderUnavailable = "PAYMENT_PROVIDER_UNAVAILABLE"
	ErrCodeUnknownPaymentProvider     = "UNKNOWN_PAYMENT_PROVIDER"
	ErrCodeUpstreamUnavailable        = "UPSTREAM_UNAVAILABLE"
	ErrCodeEmailTaken                 = "EMAIL_TAKEN"
	ErrCodeInvalidCredentials         = "INVALID_CREDENTIALS"
	ErrCodeInvalidRegistration        = "INVALID_REGISTRATION"
	ErrCodeInvalidCatalogItem         = "INVALID_CATALOG_ITEM"
	ErrCodeUnauthorised               = "UNAUTHORIZED"
	ErrCodeForbidden                  = "FORBIDDEN"
	ErrCodeInternalError              = "INTERNAL_ERROR"
)

// DomainError is a recoverable business error with a stable code.
// Two domain errors match under errors.Is when their codes are equal.
type DomainError struct {
	Code    string
	Message string
	Detail  string
	cause   error
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a domain error with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetail returns a copy of the error carrying extra detail and an optional cause.
func (e *DomainError) WithDetail(detail string, cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Detail:  detail,
		cause:   cause,
	}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidCart                = NewDomainError(ErrCodeInvalidCart, "Cart must contain at least one valid item")
	ErrInvalidOrder               = NewDomainError(ErrCodeInvalidOrder, "Order request is invalid")
	ErrMissingAddress             = NewDomainError(ErrCodeMissingAddress, "Delivery orders require a complete delivery address")
	ErrAddressOutsideServiceArea  = NewDomainError(ErrCodeAddressOutsideServiceArea, "Address outside delivery area")
	ErrUnknownStatus              = NewDomainError(ErrCodeUnknownStatus, "Invalid status")
	ErrInvalidTransition          = NewDomainError(ErrCodeInvalidTransition, "Order cannot move to the requested status")
	ErrOrderNotFound              = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrPaymentProviderUnavailable = NewDomainError(ErrCodePaymentProviderUnavailable, "Payment processing unavailable")
	ErrUnknownPaymentProvider     = NewDomainError(ErrCodeUnknownPaymentProvider, "Unknown payment provider")
	ErrUpstreamUnavailable        = NewDomainError(ErrCodeUpstreamUnavailable, "A backing service did not respond in time, please retry")
	ErrEmailTaken                 = NewDomainError(ErrCodeEmailTaken, "Email already registered")
	ErrInvalidCredentials         = NewDomainError(ErrCodeInvalidCredentials, "Invalid email or password")
	ErrInvalidRegistration        = NewDomainError(ErrCodeInvalidRegistration, "Registration details are invalid")
	ErrInvalidCatalogItem         = NewDomainError(ErrCodeInvalidCatalogItem, "Catalog item is invalid")
	ErrUnauthorised               = NewDomainError(ErrCodeUnauthorised, "Invalid authentication credentials")
	ErrForbidden                  = NewDomainError(ErrCodeForbidden, "Admin access required")
)
