package gateway

import (
	"context"

	"github.com/Guilherme-G-Cadilhe/Go-OrderFlow-Inventory-API-Microservices/internal/domain"
)

// OrderHistoryRepository é o trajeto do histórico no MongoDB.
// A implementação roda leituras e escritas dentro de uma sessão
// causalmente consistente, encerrada por um finalizer garantido.
type OrderHistoryRepository interface {
	Append(ctx context.Context, entry domain.OrderHistory) error
	ListByOrder(ctx context.Context, orderID string) ([]domain.OrderHistory, error)
}
