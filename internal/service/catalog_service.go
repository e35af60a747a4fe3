package service

import (
	"context"

	"farma-shop/internal/domain"
	"farma-shop/internal/store"
)

// ProductInput is the admin product form. DiscountPrice follows the
// storefront convention: absent or negative means no discount.
type ProductInput struct {
	Name          string
	Price         float64
	DiscountPrice *float64
	Category      string
	Description   string
	Image         string
	Status        string
}

// BannerInput carries the editable banner fields; nil keeps the current
// value.
type BannerInput struct {
	Image   *string
	Caption *string
	Link    *string
}

// CatalogService defines the interface for catalog and review logic.
type CatalogService interface {
	ListProducts(ctx context.Context) []domain.Product
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	ProductsByCategory(ctx context.Context, name string) []domain.Product
	CreateProduct(ctx context.Context, input ProductInput) (domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, input ProductInput) (domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	AddReview(ctx context.Context, productID int64, owner string, rating int, text string) error
	DeleteReview(ctx context.Context, productID int64, index int) error
	TotalReviews(ctx context.Context) int

	Banners(ctx context.Context) []domain.Banner
	UpdateBanner(ctx context.Context, id int, input BannerInput) (domain.Banner, error)
}

type catalogService struct {
	store *store.Store
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(st *store.Store) CatalogService {
	return &catalogService{store: st}
}

func (s *catalogService) ListProducts(ctx context.Context) []domain.Product {
	return s.store.Products()
}

func (s *catalogService) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	return s.store.ProductByID(id)
}

func (s *catalogService) ProductsByCategory(ctx context.Context, name string) []domain.Product {
	return s.store.ProductsByCategory(name)
}

func sanitizeDiscount(discount *float64) *float64 {
	if discount == nil || *discount < 0 {
		return nil
	}
	return discount
}

func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (domain.Product, error) {
	product := domain.Product{
		Name:          input.Name,
		Price:         input.Price,
		DiscountPrice: sanitizeDiscount(input.DiscountPrice),
		Category:      input.Category,
		Description:   input.Description,
		Image:         input.Image,
		Status:        input.Status,
	}
	return s.store.AddProduct(product)
}

// UpdateProduct applies the full form over the stored record; an omitted
// discount clears any existing one, matching the edit form's semantics.
func (s *catalogService) UpdateProduct(ctx context.Context, id int64, input ProductInput) (domain.Product, error) {
	patch := store.ProductPatch{
		Price: &input.Price,
	}
	if input.Name != "" {
		patch.Name = &input.Name
	}
	if discount := sanitizeDiscount(input.DiscountPrice); discount != nil {
		patch.DiscountPrice = discount
	} else {
		patch.ClearDiscount = true
	}
	if input.Category != "" {
		patch.Category = &input.Category
	}
	if input.Description != "" {
		patch.Description = &input.Description
	}
	if input.Image != "" {
		patch.Image = &input.Image
	}
	if input.Status != "" {
		patch.Status = &input.Status
	}
	return s.store.UpdateProduct(id, patch)
}

func (s *catalogService) DeleteProduct(ctx context.Context, id int64) error {
	return s.store.DeleteProduct(id)
}

func (s *catalogService) AddReview(ctx context.Context, productID int64, owner string, rating int, text string) error {
	return s.store.AddReview(productID, owner, domain.Review{Rating: rating, Text: text})
}

func (s *catalogService) DeleteReview(ctx context.Context, productID int64, index int) error {
	return s.store.DeleteReview(productID, index)
}

func (s *catalogService) TotalReviews(ctx context.Context) int {
	return s.store.TotalReviews()
}

func (s *catalogService) Banners(ctx context.Context) []domain.Banner {
	return s.store.Banners()
}

func (s *catalogService) UpdateBanner(ctx context.Context, id int, input BannerInput) (domain.Banner, error) {
	return s.store.UpdateBanner(id, store.BannerPatch{
		Image:   input.Image,
		Caption: input.Caption,
		Link:    input.Link,
	})
}
