package usecase

import (
	"context"
	"fmt"

	"github.com/Guilherme-G-Cadilhe/Go-OrderFlow-Inventory-API-Microservices/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-OrderFlow-Inventory-API-Microservices/internal/gateway"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// PlaceOrderInput define os dados necessários para fechar um pedido.
// Usamos DTOs (Data Transfer Objects) para não acoplar a API HTTP ao UseCase.
type PlaceOrderInput struct {
	CustomerID     string
	SKU            string
	Quantity       int64
	IdempotencyKey *string
}

// PlaceOrderOutput define o que devolvemos para quem chamou.
type PlaceOrderOutput struct {
	OrderID     string
	Status      string
	AmountCents int64
}

// PlaceOrderUseCase contém as dependências necessárias.
type PlaceOrderUseCase struct {
	productRepository  gateway.ProductRepository
	orderRepository    gateway.OrderRepository
	transactionManager gateway.TransactionManager // Nosso "Unit of Work"
	eventPublisher     gateway.EventPublisher
}

// NewPlaceOrder cria uma nova instância do UseCase.
func NewPlaceOrder(
	productRepo gateway.ProductRepository,
	orderRepo gateway.OrderRepository,
	txManager gateway.TransactionManager,
	publisher gateway.EventPublisher,
) *PlaceOrderUseCase {
	return &PlaceOrderUseCase{
		productRepository:  productRepo,
		orderRepository:    orderRepo,
		transactionManager: txManager,
		eventPublisher:     publisher,
	}
}

// Execute roda a lógica de negócio.
func (u *PlaceOrderUseCase) Execute(ctx context.Context, input PlaceOrderInput) (*PlaceOrderOutput, error) {
	if input.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	// Variável para capturar o resultado de dentro da transação
	var createdOrder *domain.Order

	// u.transactionManager.Run inicia uma transação no banco (BEGIN).
	// Se a função anônima retornar erro, ele faz ROLLBACK automático.
	// Se retornar nil, ele faz COMMIT.
	err := u.transactionManager.Run(ctx, func(contextWithTx context.Context) error {

		// Recuperar o "crachá" da transação que está dentro do contexto.
		// Isso foi injetado pelo TransactionManager.Run
		transactionObject := contextWithTx.Value(gateway.TransactionKey)
		if transactionObject == nil {
			return fmt.Errorf("erro crítico: transação não encontrada no contexto")
		}

		// Criar cópias dos repositórios que usam ESSA transação específica.
		productRepoTx := u.productRepository.WithTx(transactionObject)
		orderRepoTx := u.orderRepository.WithTx(transactionObject)

		// Lock no Produto (SELECT ... FOR UPDATE)
		// A linha fica travada até o Commit: preço e estoque que o pedido
		// enxerga são os mesmos que a reserva vai abater.
		product, err := productRepoTx.GetBySKUForUpdate(contextWithTx, input.SKU)
		if err != nil {
			return fmt.Errorf("falha ao travar produto %s: %w", input.SKU, err)
		}

		// Reserva de Estoque
		// O método Reserve do repositório já valida o estoque no banco (stock >= quantity).
		err = productRepoTx.Reserve(contextWithTx, input.SKU, input.Quantity)
		if err != nil {
			// Se falhar (estoque insuficiente), retornamos erro e o txManager faz Rollback.
			return fmt.Errorf("falha ao reservar estoque (%s): %w", input.SKU, err)
		}

		// Registrar o Pedido
		createdOrder = &domain.Order{
			ID:             uuid.NewString(),
			CustomerID:     input.CustomerID,
			SKU:            input.SKU,
			Quantity:       input.Quantity,
			AmountCents:    product.PriceCents * input.Quantity,
			Status:         domain.OrderStatusPlaced,
			IdempotencyKey: input.IdempotencyKey,
		}

		err = orderRepoTx.Create(contextWithTx, createdOrder)
		if err != nil {
			return fmt.Errorf("falha ao salvar pedido: %w", err)
		}

		return nil // Sucesso! O Commit será executado agora.
	})

	if err != nil {
		return nil, err
	}

	if u.eventPublisher != nil {
		event := map[string]interface{}{
			"order_id":     createdOrder.ID,
			"customer_id":  createdOrder.CustomerID,
			"sku":          createdOrder.SKU,
			"quantity":     createdOrder.Quantity,
			"amount_cents": createdOrder.AmountCents,
			"status":       createdOrder.Status,
		}
		// Routing Key: order.placed
		if err := u.eventPublisher.Publish(ctx, "order_events", "order.placed", event); err != nil {
			// Apenas logamos o erro: o pedido já foi commitado, a request não falha
			log.Error().Err(err).Msg("Falha ao publicar evento order.placed")
		}
	}

	return &PlaceOrderOutput{
		OrderID:     createdOrder.ID,
		Status:      createdOrder.Status,
		AmountCents: createdOrder.AmountCents,
	}, nil
}
