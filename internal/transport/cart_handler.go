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

// QuantityRequest sets the absolute quantity of a cart row. Zero or less
// removes the row.
type QuantityRequest struct {
	Quantity int `json:"quantidade"`
}

// CartHandler handles HTTP requests for the shopping cart
type CartHandler struct {
	cart   service.CartService
	logger *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cart service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cart:   cart,
		logger: logger,
	}
}

// RegisterRoutes registers cart routes. The identity middleware resolves
// the owner key for shoppers and anonymous visitors alike; the admin has
// no cart.
func (h *CartHandler) RegisterRoutes(r chi.Router, identityMiddleware, shopperMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/carrinho", func(r chi.Router) {
		r.Use(identityMiddleware)
		r.Use(shopperMiddleware)

		r.Get("/", h.ListCart)
		r.Post("/{produtoId}", h.AddToCart)
		r.Get("/{produtoId}", h.HasProduct)
		r.Put("/{produtoId}", h.UpdateQuantity)
		r.Delete("/{produtoId}", h.RemoveFromCart)
	})
}

func (h *CartHandler) ownerKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner, ok := middleware.GetOwnerKey(r.Context())
	if !ok {
		h.logger.Error("Owner key not found in context")
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to resolve cart owner")
		return "", false
	}
	return owner, true
}

func cartProductParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "produtoId"), 10, 64)
}

// ListCart returns the owner's cart lines joined with their products.
func (h *CartHandler) ListCart(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.ownerKey(w, r)
	if !ok {
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, h.cart.List(r.Context(), owner))
}

// AddToCart puts one unit of the product in the cart.
func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.ownerKey(w, r)
	if !ok {
		return
	}

	id, err := cartProductParam(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.cart.Add(r.Context(), id, owner); err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		if errors.Is(err, service.ErrOutOfStock) {
			middleware.RespondWithError(w, http.StatusConflict, "product is out of stock")
			return
		}

		h.logger.Error("Cart add failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add to cart")
		return
	}

	h.logger.Info("Product added to cart", zap.Int64("product_id", id))
	middleware.RespondWithJSON(w, http.StatusCreated, map[string]string{"message": "product added to cart"})
}

// HasProduct reports whether the product is already in the cart.
func (h *CartHandler) HasProduct(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.ownerKey(w, r)
	if !ok {
		return
	}

	id, err := cartProductParam(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]bool{"inCart": h.cart.HasProduct(r.Context(), id, owner)})
}

// UpdateQuantity sets the cart row's quantity; zero or less removes it.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.ownerKey(w, r)
	if !ok {
		return
	}

	id, err := cartProductParam(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req QuantityRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Quantity decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.cart.UpdateQuantity(r.Context(), id, owner, req.Quantity); err != nil {
		if errors.Is(err, store.ErrNotInCart) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not in cart")
			return
		}

		h.logger.Error("Cart update failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "cart updated"})
}

// RemoveFromCart drops the product's row from the cart.
func (h *CartHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.ownerKey(w, r)
	if !ok {
		return
	}

	id, err := cartProductParam(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.cart.Remove(r.Context(), id, owner); err != nil {
		if errors.Is(err, store.ErrNotInCart) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not in cart")
			return
		}

		h.logger.Error("Cart removal failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to remove from cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product removed from cart"})
}
