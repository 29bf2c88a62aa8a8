package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Guilherme-G-Cadilhe/Go-OrderFlow-Inventory-API-Microservices/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-OrderFlow-Inventory-API-Microservices/internal/gateway"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// dbtx é satisfeito por *pgxpool.Pool e por pgx.Tx.
// É o que permite ao mesmo repositório rodar dentro ou fora de uma transação.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ProductRepository implementa gateway.ProductRepository usando pgx/v5
type ProductRepository struct {
	db dbtx
}

// NewProductRepository cria uma nova instância
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{db: pool}
}

const productColumns = "sku, name, stock, price_cents, version, created_at, updated_at"

// Create insere um novo produto no catálogo
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	row := r.db.QueryRow(ctx,
		`INSERT INTO products (sku, name, stock, price_cents)
		 VALUES ($1, $2, $3, $4)
		 RETURNING version, created_at, updated_at`,
		product.SKU, product.Name, product.Stock, product.PriceCents,
	)
	if err := row.Scan(&product.Version, &product.CreatedAt, &product.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetBySKU busca um produto
func (r *ProductRepository) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return r.get(ctx, sku, false)
}

// 🔐 Implementação do Lock (SELECT ... FOR UPDATE)
func (r *ProductRepository) GetBySKUForUpdate(ctx context.Context, sku string) (*domain.Product, error) {
	return r.get(ctx, sku, true)
}

func (r *ProductRepository) get(ctx context.Context, sku string, forUpdate bool) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE sku = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var p domain.Product
	err := r.db.QueryRow(ctx, query, sku).Scan(
		&p.SKU, &p.Name, &p.Stock, &p.PriceCents, &p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		// pgx retorna pgx.ErrNoRows, diferente de sql.ErrNoRows
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

// 📦 Reserva Atômica (Valida o estoque no banco)
func (r *ProductRepository) Reserve(ctx context.Context, sku string, quantity int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE products
		 SET stock = stock - $1, version = version + 1, updated_at = now()
		 WHERE sku = $2 AND stock >= $1`,
		quantity, sku,
	)
	if err != nil {
		return fmt.Errorf("failed to reserve stock: %w", err)
	}

	// Se 0 linhas foram afetadas, a cláusula "AND stock >= quantity" falhou
	if tag.RowsAffected() == 0 {
		return domain.ErrOutOfStock
	}

	return nil
}

// Restock devolve unidades ao estoque
func (r *ProductRepository) Restock(ctx context.Context, sku string, quantity int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE products
		 SET stock = stock + $1, version = version + 1, updated_at = now()
		 WHERE sku = $2`,
		quantity, sku,
	)
	if err != nil {
		return fmt.Errorf("failed to restock product: %w", err)
	}
	return nil
}

// WithTx retorna uma cópia do repositório usando uma transação específica
func (r *ProductRepository) WithTx(tx gateway.TransactionObject) gateway.ProductRepository {
	pgTx, ok := tx.(pgx.Tx)
	if !ok {
		return r
	}
	return &ProductRepository{db: pgTx}
}
