package store

import (
	"strconv"
	"time"

	"farma-shop/internal/domain"
)

func cartKey(productID int64) string {
	return strconv.FormatInt(productID, 10)
}

func hasCartItem(doc Document, productID int64, owner string) bool {
	key := cartKey(productID)
	for _, item := range doc.Cart {
		if item.ProductID == key && item.Owner == owner {
			return true
		}
	}
	return false
}

// AddCartItem inserts a cart row for (product, owner) or, when one already
// exists, increments its quantity. At most one row ever exists per pair.
func (s *Store) AddCartItem(productID int64, owner string, quantity int) error {
	if quantity <= 0 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()

	found := false
	for _, p := range doc.Products {
		if p.ID == productID {
			found = true
			break
		}
	}
	if !found {
		return ErrProductNotFound
	}

	key := cartKey(productID)
	for i, item := range doc.Cart {
		if item.ProductID == key && item.Owner == owner {
			doc.Cart[i].Quantity += quantity
			return s.write(doc)
		}
	}

	doc.Cart = append(doc.Cart, domain.CartItem{
		ProductID: key,
		Owner:     owner,
		Quantity:  quantity,
		AddedAt:   time.Now(),
	})
	return s.write(doc)
}

// CartByOwner joins the owner's cart rows to current product data. Rows
// whose product no longer exists are silently dropped from the result.
func (s *Store) CartByOwner(owner string) []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()

	byID := make(map[string]domain.Product, len(doc.Products))
	for _, p := range doc.Products {
		byID[cartKey(p.ID)] = normalizeProduct(p)
	}

	lines := []domain.CartLine{}
	for _, item := range doc.Cart {
		if item.Owner != owner {
			continue
		}
		product, ok := byID[item.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, domain.CartLine{
			Product:  product,
			Quantity: item.Quantity,
			AddedAt:  item.AddedAt,
		})
	}
	return lines
}

// UpdateCartQuantity overwrites the row's quantity. A quantity of zero or
// less removes the row entirely; there is no separate delete path for
// emptied lines.
func (s *Store) UpdateCartQuantity(productID int64, owner string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	key := cartKey(productID)
	for i, item := range doc.Cart {
		if item.ProductID != key || item.Owner != owner {
			continue
		}
		if quantity <= 0 {
			doc.Cart = append(doc.Cart[:i], doc.Cart[i+1:]...)
		} else {
			doc.Cart[i].Quantity = quantity
		}
		return s.write(doc)
	}
	return ErrNotInCart
}

// RemoveCartItem deletes the (product, owner) row.
func (s *Store) RemoveCartItem(productID int64, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	key := cartKey(productID)
	for i, item := range doc.Cart {
		if item.ProductID == key && item.Owner == owner {
			doc.Cart = append(doc.Cart[:i], doc.Cart[i+1:]...)
			return s.write(doc)
		}
	}
	return ErrNotInCart
}

// HasCartItem reports whether the owner currently holds the product in
// their cart. Used to gate review creation.
func (s *Store) HasCartItem(productID int64, owner string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return hasCartItem(s.read(), productID, owner)
}

// ClearCart removes every cart row.
func (s *Store) ClearCart() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	doc.Cart = []domain.CartItem{}
	return s.write(doc)
}

// ClearCartOwner removes every row belonging to one owner. Used when an
// anonymous session's cart has been merged into a user's cart.
func (s *Store) ClearCartOwner(owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	kept := doc.Cart[:0]
	for _, item := range doc.Cart {
		if item.Owner != owner {
			kept = append(kept, item)
		}
	}
	doc.Cart = kept
	return s.write(doc)
}
