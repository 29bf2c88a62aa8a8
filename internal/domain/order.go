package domain

import "time"

type Order struct {
	ID             string
	CustomerID     string
	SKU            string
	Quantity       int64
	AmountCents    int64
	Status         string
	IdempotencyKey *string
	CreatedAt      time.Time
}

const (
	OrderStatusPlaced    = "placed"
	OrderStatusCancelled = "cancelled"
)
