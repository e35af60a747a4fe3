package domain

import "time"

// Product stock status values as persisted in the catalog document.
const (
	StatusInStock    = "em-estoque"
	StatusOutOfStock = "fora-de-estoque"
)

// Defaults applied to products created or read with missing fields.
const (
	DefaultProductName  = "Produto sem nome"
	DefaultCategory     = "Geral"
	DefaultProductImage = "/imagens/foto.jpg"
)

// Product represents a catalog entry. JSON tags follow the persisted
// document layout, which predates this service and must stay readable by it.
type Product struct {
	ID            int64    `json:"id"`
	Name          string   `json:"nome"`
	Price         float64  `json:"preco"`
	DiscountPrice *float64 `json:"precoDesconto"`
	Category      string   `json:"categoria"`
	Description   string   `json:"descricao"`
	Image         string   `json:"imagem"`
	Status        string   `json:"status"`
	Reviews       []Review `json:"avaliacoes"`
}

// InStock reports whether the product can currently be added to a cart.
func (p Product) InStock() bool {
	return p.Status != StatusOutOfStock
}

// Review is a customer rating attached to a product. Every review is also
// appended to the document's flat review log.
type Review struct {
	Rating    int       `json:"nota"`
	Text      string    `json:"texto"`
	CreatedAt time.Time `json:"data"`
}
