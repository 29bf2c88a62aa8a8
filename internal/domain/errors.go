package domain

import "errors"

var (
	ErrOutOfStock      = errors.New("not enough stock")
	ErrInvalidQuantity = errors.New("order quantity must be greater than zero")
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrIdempotencyKey  = errors.New("idempotency key conflict")
)
