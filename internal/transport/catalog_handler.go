package transport

import (
	"errors"
	"net/http"
	"strconv"

	"farma-shop/internal/middleware"
	"farma-shop/internal/service"
	"farma-shop/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductRequest is the admin product form. A missing or negative
// precoDesconto means the product sells at full price.
type ProductRequest struct {
	Name          string   `json:"nome"`
	Price         float64  `json:"preco" validate:"gte=0"`
	DiscountPrice *float64 `json:"precoDesconto"`
	Category      string   `json:"categoria"`
	Description   string   `json:"descricao"`
	Image         string   `json:"imagem"`
	Status        string   `json:"status"`
}

// ReviewRequest is the shopper review form.
type ReviewRequest struct {
	Rating int    `json:"nota" validate:"required,gte=1,lte=5"`
	Text   string `json:"texto" validate:"required"`
}

// BannerRequest carries the editable banner fields; omitted fields keep
// their stored values.
type BannerRequest struct {
	Image   *string `json:"imagem"`
	Caption *string `json:"legenda"`
	Link    *string `json:"link"`
}

// CatalogHandler handles HTTP requests for products, reviews and banners
type CatalogHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalog service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes registers catalog routes. Reads are public; writes are
// admin-only, except reviews which belong to authenticated shoppers.
func (h *CatalogHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware, shopperMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/produtos", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/{id}", h.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(shopperMiddleware)
			r.Post("/{id}/avaliacoes", h.AddReview)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Post("/", h.CreateProduct)
			r.Put("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
			r.Delete("/{id}/avaliacoes/{index}", h.DeleteReview)
		})
	})

	r.Get("/api/categorias/{nome}", h.ProductsByCategory)

	r.Route("/api/banners", func(r chi.Router) {
		r.Get("/", h.ListBanners)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Put("/{id}", h.UpdateBanner)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)
		r.Get("/api/avaliacoes/total", h.TotalReviews)
	})
}

func productIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// ListProducts returns the whole catalog.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.catalog.ListProducts(r.Context()))
}

// GetProduct returns a single product with its reviews.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productIDParam(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to load product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// ProductsByCategory filters the catalog by category name, including the
// aggregate categories.
func (h *CatalogHandler) ProductsByCategory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "nome")
	middleware.RespondWithJSON(w, http.StatusOK, h.catalog.ProductsByCategory(r.Context(), name))
}

// CreateProduct adds a product to the catalog.
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), service.ProductInput{
		Name:          req.Name,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		Category:      req.Category,
		Description:   req.Description,
		Image:         req.Image,
		Status:        req.Status,
	})
	if err != nil {
		h.logger.Error("Product creation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.Int64("product_id", product.ID))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct applies the edit form to a product.
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productIDParam(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), id, service.ProductInput{
		Name:          req.Name,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		Category:      req.Category,
		Description:   req.Description,
		Image:         req.Image,
		Status:        req.Status,
	})
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Product update failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	h.logger.Info("Product updated", zap.Int64("product_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct removes a product; cart rows referencing it go with it.
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productIDParam(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Product deletion failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	h.logger.Info("Product deleted", zap.Int64("product_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// AddReview records a review. Only shoppers with the product in their
// cart may review it.
func (h *CatalogHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.GetUserEmail(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := productIDParam(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req ReviewRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Review validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.catalog.AddReview(r.Context(), id, email, req.Rating, req.Text); err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		if errors.Is(err, store.ErrNotInCart) {
			middleware.RespondWithError(w, http.StatusForbidden, "product must be in your cart to review it")
			return
		}

		h.logger.Error("Review creation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add review")
		return
	}

	h.logger.Info("Review added", zap.Int64("product_id", id), zap.String("email", email))
	middleware.RespondWithJSON(w, http.StatusCreated, map[string]string{"message": "review added"})
}

// DeleteReview removes a review by its position in the product's list.
func (h *CatalogHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := productIDParam(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid review index")
		return
	}

	if err := h.catalog.DeleteReview(r.Context(), id, index); err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		if errors.Is(err, store.ErrReviewIndexOutOfRange) {
			middleware.RespondWithError(w, http.StatusNotFound, "review not found")
			return
		}

		h.logger.Error("Review deletion failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete review")
		return
	}

	h.logger.Info("Review deleted", zap.Int64("product_id", id), zap.Int("index", index))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "review deleted"})
}

// TotalReviews reports the review count for the admin dashboard.
func (h *CatalogHandler) TotalReviews(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, map[string]int{"total": h.catalog.TotalReviews(r.Context())})
}

// ListBanners returns the home page banners.
func (h *CatalogHandler) ListBanners(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.catalog.Banners(r.Context()))
}

// UpdateBanner edits one of the fixed banner slots. New banners cannot be
// created over HTTP.
func (h *CatalogHandler) UpdateBanner(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid banner id")
		return
	}

	var req BannerRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Banner decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	banner, err := h.catalog.UpdateBanner(r.Context(), id, service.BannerInput{
		Image:   req.Image,
		Caption: req.Caption,
		Link:    req.Link,
	})
	if err != nil {
		if errors.Is(err, store.ErrBannerNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "banner not found")
			return
		}

		h.logger.Error("Banner update failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update banner")
		return
	}

	h.logger.Info("Banner updated", zap.Int("banner_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, banner)
}
