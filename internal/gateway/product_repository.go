package gateway

import (
	"context"

	"github.com/Guilherme-G-Cadilhe/Go-OrderFlow-Inventory-API-Microservices/internal/domain"
)

// ProductRepository define o contrato para persistência do catálogo.
// O Usecase só interage com isso, sem saber se é Postgres ou MySQL.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)

	// Lock Pessimista: Retorna o produto travando a linha no banco
	GetBySKUForUpdate(ctx context.Context, sku string) (*domain.Product, error)
	// Métodos Atômicos (a validação de estoque roda no próprio UPDATE)
	Reserve(ctx context.Context, sku string, quantity int64) error
	Restock(ctx context.Context, sku string, quantity int64) error

	// WithTx permite que o repositório participe de uma transação iniciada no nível superior
	// Retorna uma nova instância do repositório ligada àquela transação.
	WithTx(tx TransactionObject) ProductRepository
}
