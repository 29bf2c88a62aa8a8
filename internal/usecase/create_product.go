package usecase

import (
	"context"

	"github.com/Guilherme-G-Cadilhe/Go-OrderFlow-Inventory-API-Microservices/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-OrderFlow-Inventory-API-Microservices/internal/gateway"
)

type CreateProductInput struct {
	SKU        string
	Name       string
	Stock      int64
	PriceCents int64
}

type CreateProductOutput struct {
	SKU   string
	Stock int64
}

type CreateProductUseCase struct {
	productRepo gateway.ProductRepository
}

func NewCreateProduct(productRepo gateway.ProductRepository) *CreateProductUseCase {
	return &CreateProductUseCase{
		productRepo: productRepo,
	}
}

func (uc *CreateProductUseCase) Execute(ctx context.Context, input CreateProductInput) (*CreateProductOutput, error) {
	// A criação de produto é uma operação atômica simples (um insert),
	// então não precisamos abrir uma transação complexa (Begin/Commit) aqui,
	// a menos que tivéssemos que salvar eventos ou outras coisas juntas.
	product := &domain.Product{
		SKU:        input.SKU,
		Name:       input.Name,
		Stock:      input.Stock,
		PriceCents: input.PriceCents,
	}
	if err := uc.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return &CreateProductOutput{
		SKU:   product.SKU,
		Stock: product.Stock,
	}, nil
}
