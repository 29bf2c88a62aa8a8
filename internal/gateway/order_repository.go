package gateway

import (
	"context"

	"github.com/Guilherme-G-Cadilhe/Go-OrderFlow-Inventory-API-Microservices/internal/domain"
)

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// WithTx segue o mesmo padrão do Product para participar da transação atômica
	WithTx(tx TransactionObject) OrderRepository
}
