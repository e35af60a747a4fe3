package domain

import "time"

// CartItem is one cart row, keyed by (product, owner). The owner key is
// either a registered user's email or an anonymous session identifier;
// the field name usuarioEmail is kept for document compatibility. Product
// ids are persisted as strings, matching documents written by the legacy
// storefront.
type CartItem struct {
	ProductID string    `json:"produtoId"`
	Owner     string    `json:"usuarioEmail"`
	Quantity  int       `json:"quantidade"`
	AddedAt   time.Time `json:"dataAdicionado"`
}

// CartLine is a cart row joined with its current product record.
type CartLine struct {
	Product  Product   `json:"produto"`
	Quantity int       `json:"quantidade"`
	AddedAt  time.Time `json:"dataAdicionado"`
}

// Total returns the line total, using the discounted price when present.
func (l CartLine) Total() float64 {
	price := l.Product.Price
	if l.Product.DiscountPrice != nil {
		price = *l.Product.DiscountPrice
	}
	return price * float64(l.Quantity)
}
