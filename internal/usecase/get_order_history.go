package usecase

import (
	"context"
	"fmt"

	"github.com/Guilherme-G-Cadilhe/Go-OrderFlow-Inventory-API-Microservices/internal/gateway"
)

type OrderHistoryItem struct {
	Status      string `json:"status"`
	Detail      string `json:"detail,omitempty"`
	AmountCents int64  `json:"amount_cents"`
	RecordedAt  string `json:"recorded_at"`
}

type GetOrderHistoryUseCase struct {
	historyRepository gateway.OrderHistoryRepository
}

func NewGetOrderHistory(historyRepo gateway.OrderHistoryRepository) *GetOrderHistoryUseCase {
	return &GetOrderHistoryUseCase{
		historyRepository: historyRepo,
	}
}

func (u *GetOrderHistoryUseCase) Execute(ctx context.Context, orderID string) ([]OrderHistoryItem, error) {
	entries, err := u.historyRepository.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar histórico do pedido: %w", err)
	}

	items := make([]OrderHistoryItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, OrderHistoryItem{
			Status:      entry.Status,
			Detail:      entry.Detail,
			AmountCents: entry.AmountCents,
			RecordedAt:  entry.RecordedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return items, nil
}
