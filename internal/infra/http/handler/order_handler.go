package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Guilherme-G-Cadilhe/Go-OrderFlow-Inventory-API-Microservices/internal/domain"
	"github.com/Guilherme-G-Cadilhe/Go-OrderFlow-Inventory-API-Microservices/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// OrderHandler expõe as operações de pedido via HTTP
type OrderHandler struct {
	placeOrderUseCase *usecase.PlaceOrderUseCase
	historyUseCase    *usecase.GetOrderHistoryUseCase
}

// NewOrderHandler cria uma nova instância
func NewOrderHandler(placeUC *usecase.PlaceOrderUseCase, historyUC *usecase.GetOrderHistoryUseCase) *OrderHandler {
	return &OrderHandler{
		placeOrderUseCase: placeUC,
		historyUseCase:    historyUC,
	}
}

// DTOs (Data Transfer Objects) para Request/Response
// Usamos tags JSON para mapear snake_case (padrão de APIs)
type PlaceOrderRequest struct {
	CustomerID string `json:"customer_id"`
	SKU        string `json:"sku"`
	Quantity   int64  `json:"quantity"`
}

type PlaceOrderResponse struct {
	OrderID     string `json:"order_id"`
	Status      string `json:"status"`
	AmountCents int64  `json:"amount_cents"`
}

// Create processa a requisição de pedido
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Payload inválido")
		return
	}

	idempotencyKey := r.Header.Get("Idempotency-Key")
	var idempotencyKeyPtr *string
	if idempotencyKey != "" {
		idempotencyKeyPtr = &idempotencyKey
	}

	input := usecase.PlaceOrderInput{
		CustomerID:     req.CustomerID,
		SKU:            req.SKU,
		Quantity:       req.Quantity,
		IdempotencyKey: idempotencyKeyPtr,
	}

	output, err := h.placeOrderUseCase.Execute(ctx, input)
	if err != nil {
		// Mapeamento de Erros de Domínio -> HTTP Status Code
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			respondError(w, http.StatusNotFound, "Produto não encontrado")
		case errors.Is(err, domain.ErrOutOfStock):
			respondError(w, http.StatusUnprocessableEntity, "Estoque insuficiente")
		case errors.Is(err, domain.ErrInvalidQuantity):
			respondError(w, http.StatusBadRequest, "Quantidade inválida")
		default:
			// Erro interno (banco caiu, bug, etc)
			log.Error().Err(err).Msg("Erro interno ao processar pedido")
			respondError(w, http.StatusInternalServerError, "Erro interno do servidor")
		}
		return
	}

	respondJSON(w, http.StatusCreated, PlaceOrderResponse{
		OrderID:     output.OrderID,
		Status:      output.Status,
		AmountCents: output.AmountCents,
	})
}

// History devolve o trajeto do pedido registrado no MongoDB
func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "ID do pedido obrigatório")
		return
	}

	items, err := h.historyUseCase.Execute(r.Context(), orderID)
	if err != nil {
		log.Error().Err(err).Str("order_id", orderID).Msg("Erro ao buscar histórico do pedido")
		respondError(w, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"order_id": orderID,
		"history":  items,
	})
}

// Helpers para resposta JSON
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Falha ao codificar resposta JSON")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
