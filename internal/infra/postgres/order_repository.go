package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Guilherme-G-Cadilhe/Go-OrderFlow-Inventory-API-Microservices/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-OrderFlow-Inventory-API-Microservices/internal/gateway"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	db dbtx
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: pool}
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	row := r.db.QueryRow(ctx,
		`INSERT INTO orders (id, customer_id, sku, quantity, amount_cents, status, idempotency_key)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		order.ID, order.CustomerID, order.SKU, order.Quantity,
		order.AmountCents, order.Status, order.IdempotencyKey,
	)
	if err := row.Scan(&order.CreatedAt); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.QueryRow(ctx,
		`SELECT id, customer_id, sku, quantity, amount_cents, status, idempotency_key, created_at
		 FROM orders WHERE id = $1`,
		id,
	).Scan(
		&o.ID, &o.CustomerID, &o.SKU, &o.Quantity,
		&o.AmountCents, &o.Status, &o.IdempotencyKey, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &o, nil
}

// WithTx retorna uma cópia do repositório usando uma transação específica
func (r *OrderRepository) WithTx(tx gateway.TransactionObject) gateway.OrderRepository {
	pgTx, ok := tx.(pgx.Tx)
	if !ok {
		return r
	}
	return &OrderRepository{db: pgTx}
}
