package service

import (
	"context"
	"errors"

	"farma-shop/internal/domain"
	"farma-shop/internal/store"
)

var ErrOutOfStock = errors.New("product is out of stock")

// CartService defines the interface for cart logic. The owner key is a
// user email or an anonymous session identifier, interchangeably.
type CartService interface {
	Add(ctx context.Context, productID int64, owner string) error
	List(ctx context.Context, owner string) []domain.CartLine
	UpdateQuantity(ctx context.Context, productID int64, owner string, quantity int) error
	Remove(ctx context.Context, productID int64, owner string) error
	HasProduct(ctx context.Context, productID int64, owner string) bool
}

type cartService struct {
	store *store.Store
}

// NewCartService creates a new instance of CartService.
func NewCartService(st *store.Store) CartService {
	return &cartService{store: st}
}

// Add puts one unit of the product in the owner's cart, incrementing the
// existing row if there is one. Out-of-stock products are rejected.
func (s *cartService) Add(ctx context.Context, productID int64, owner string) error {
	product, err := s.store.ProductByID(productID)
	if err != nil {
		return err
	}
	if !product.InStock() {
		return ErrOutOfStock
	}
	return s.store.AddCartItem(productID, owner, 1)
}

func (s *cartService) List(ctx context.Context, owner string) []domain.CartLine {
	return s.store.CartByOwner(owner)
}

func (s *cartService) UpdateQuantity(ctx context.Context, productID int64, owner string, quantity int) error {
	return s.store.UpdateCartQuantity(productID, owner, quantity)
}

func (s *cartService) Remove(ctx context.Context, productID int64, owner string) error {
	return s.store.RemoveCartItem(productID, owner)
}

func (s *cartService) HasProduct(ctx context.Context, productID int64, owner string) bool {
	return s.store.HasCartItem(productID, owner)
}
