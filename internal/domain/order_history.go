package domain

import "time"

// OrderHistory é um registro do trajeto do pedido, guardado no MongoDB.
type OrderHistory struct {
	OrderID     string
	Status      string
	Detail      string
	AmountCents int64
	RecordedAt  time.Time
}
