package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidArgument marks malformed client input.
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	// ErrEmptyCart is returned when an order is requested from a cart without lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrPaymentNotConfirmed is returned when the payment reference is not captured.
	ErrPaymentNotConfirmed = errors.New("payment not confirmed")
	// ErrInvalidTransition is returned for order status changes outside the lifecycle table.
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUploadFailed      = errors.New("upload failed")
	// ErrGatewayUnavailable marks a transient failure of an outbound gateway.
	ErrGatewayUnavailable = errors.New("gateway unavailable")
	// ErrTokenExpired is returned for one-time tokens past their expiry.
	ErrTokenExpired = errors.New("token expired")
)
