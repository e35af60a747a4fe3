package store

import (
	"strconv"
	"strings"

	"farma-shop/internal/domain"
)

// aggregateCategories maps a logical category key to the set of stored
// categories it groups together.
var aggregateCategories = map[string][]string{
	"cuidados": {"higiene", "beleza", "dermocosmeticos"},
}

// normalizeProduct fills documented defaults for fields that may be absent
// in records written by older schema versions.
func normalizeProduct(p domain.Product) domain.Product {
	if p.Name == "" {
		p.Name = domain.DefaultProductName
	}
	if p.Price < 0 {
		p.Price = 0
	}
	if p.DiscountPrice != nil && *p.DiscountPrice < 0 {
		p.DiscountPrice = nil
	}
	if p.Category == "" {
		p.Category = domain.DefaultCategory
	}
	if p.Image == "" {
		p.Image = domain.DefaultProductImage
	}
	if p.Status == "" {
		p.Status = domain.StatusInStock
	}
	if p.Reviews == nil {
		p.Reviews = []domain.Review{}
	}
	return p
}

// AddProduct persists a new product, assigning its identifier and applying
// defaults to absent fields. Returns the stored record.
func (s *Store) AddProduct(p domain.Product) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()

	p.ID = s.nextID()
	p.Reviews = []domain.Review{}
	p = normalizeProduct(p)

	doc.Products = append(doc.Products, p)
	if err := s.write(doc); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// Products returns every product, re-normalized defensively so documents
// written by older versions still come back complete.
func (s *Store) Products() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	out := make([]domain.Product, len(doc.Products))
	for i, p := range doc.Products {
		out[i] = normalizeProduct(p)
	}
	return out
}

// ProductByID returns the product with the given id.
func (s *Store) ProductByID(id int64) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	for _, p := range doc.Products {
		if p.ID == id {
			return normalizeProduct(p), nil
		}
	}
	return domain.Product{}, ErrProductNotFound
}

// ProductPatch carries the fields of a product update. Nil pointers keep
// the existing value; the identifier and review list are always preserved.
type ProductPatch struct {
	Name          *string
	Price         *float64
	DiscountPrice *float64
	ClearDiscount bool
	Category      *string
	Description   *string
	Image         *string
	Status        *string
}

// UpdateProduct merges the patch over the stored record.
func (s *Store) UpdateProduct(id int64, patch ProductPatch) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	for i, p := range doc.Products {
		if p.ID != id {
			continue
		}
		if patch.Name != nil {
			p.Name = *patch.Name
		}
		if patch.Price != nil {
			p.Price = *patch.Price
		}
		if patch.ClearDiscount {
			p.DiscountPrice = nil
		} else if patch.DiscountPrice != nil {
			p.DiscountPrice = patch.DiscountPrice
		}
		if patch.Category != nil {
			p.Category = *patch.Category
		}
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		if patch.Image != nil {
			p.Image = *patch.Image
		}
		if patch.Status != nil {
			p.Status = *patch.Status
		}
		p = normalizeProduct(p)
		doc.Products[i] = p
		if err := s.write(doc); err != nil {
			return domain.Product{}, err
		}
		return p, nil
	}
	return domain.Product{}, ErrProductNotFound
}

// DeleteProduct removes the product and every cart row referencing it, so
// no cart join ever sees a dangling reference.
func (s *Store) DeleteProduct(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()

	idx := -1
	for i, p := range doc.Products {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrProductNotFound
	}
	doc.Products = append(doc.Products[:idx], doc.Products[idx+1:]...)

	key := strconv.FormatInt(id, 10)
	kept := doc.Cart[:0]
	for _, item := range doc.Cart {
		if item.ProductID != key {
			kept = append(kept, item)
		}
	}
	doc.Cart = kept

	return s.write(doc)
}

// ProductsByCategory returns products whose category matches name,
// case-insensitively. Aggregate keys match their whole category group.
func (s *Store) ProductsByCategory(name string) []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := strings.ToLower(name)
	matches := func(category string) bool {
		got := strings.ToLower(category)
		if group, ok := aggregateCategories[want]; ok {
			for _, member := range group {
				if got == member {
					return true
				}
			}
			return false
		}
		return got == want
	}

	doc := s.read()
	out := []domain.Product{}
	for _, p := range doc.Products {
		p = normalizeProduct(p)
		if matches(p.Category) {
			out = append(out, p)
		}
	}
	return out
}
