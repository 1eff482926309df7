package service

import "errors"

var (
	// ErrAccountNotFound is returned when a student medal account does not exist
	ErrAccountNotFound = errors.New("account not found")

	// ErrProductNotFound is returned when a product cannot be found
	ErrProductNotFound = errors.New("product not found")

	// ErrPurchaseNotFound is returned when a purchase cannot be found
	ErrPurchaseNotFound = errors.New("purchase not found")

	// ErrProductUnavailable is returned when a product is inactive or out of stock
	ErrProductUnavailable = errors.New("product unavailable")

	// ErrInsufficientFunds is returned when a debit would push any medal
	// denomination below zero
	ErrInsufficientFunds = errors.New("insufficient medal balance")

	// ErrQuotaExceeded is returned when an award would exceed the monthly cap
	// for its medal type
	ErrQuotaExceeded = errors.New("monthly medal quota exceeded")

	// ErrNotPending is returned when settling a purchase that has already been
	// approved or rejected
	ErrNotPending = errors.New("purchase is not pending")

	// ErrBusy is returned when a row lock could not be acquired within the
	// configured timeout; safe for the caller to retry
	ErrBusy = errors.New("resource busy, retry")

	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")
)
