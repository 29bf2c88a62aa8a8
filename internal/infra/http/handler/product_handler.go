package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Guilherme-G-Cadilhe/Go-OrderFlow-Inventory-API-Microservices/internal/usecase"
	"github.com/rs/zerolog/log"
)

type ProductHandler struct {
	createProductUC *usecase.CreateProductUseCase
	// Futuro: getProductUC
}

func NewProductHandler(createProductUC *usecase.CreateProductUseCase) *ProductHandler {
	return &ProductHandler{
		createProductUC: createProductUC,
	}
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SKU        string `json:"sku"`
		Name       string `json:"name"`
		Stock      int64  `json:"stock"`
		PriceCents int64  `json:"price_cents"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Payload inválido")
		return
	}

	output, err := h.createProductUC.Execute(r.Context(), usecase.CreateProductInput{
		SKU:        req.SKU,
		Name:       req.Name,
		Stock:      req.Stock,
		PriceCents: req.PriceCents,
	})
	if err != nil {
		log.Error().Err(err).Msg("Falha ao criar produto")
		respondError(w, http.StatusInternalServerError, "Erro interno")
		return
	}

	respondJSON(w, http.StatusCreated, output)
}
