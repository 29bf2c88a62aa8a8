package domain

import (
	"time"
)

// Product representa um item do catálogo com seu estoque.
// Clean Architecture: esta entidade não sabe o que é JSON nem SQL.
type Product struct {
	SKU        string
	Name       string
	Stock      int64
	PriceCents int64
	Version    int32 // Para controle de concorrência otimista (se necessário)
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Métodos de domínio (Lógica pura)

// HasStock valida a disponibilidade antes mesmo de tocar no DB
func (p *Product) HasStock(quantity int64) bool {
	return p.Stock >= quantity
}

func (p *Product) Reserve(quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if !p.HasStock(quantity) {
		return ErrOutOfStock
	}
	p.Stock -= quantity
	return nil
}

// Restock devolve unidades ao estoque (cancelamento ou devolução)
func (p *Product) Restock(quantity int64) {
	if quantity <= 0 {
		return
	}
	p.Stock += quantity
}
