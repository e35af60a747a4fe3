package service

import (
	"context"
	"testing"

	"farma-shop/internal/domain"
	"farma-shop/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddRejectsOutOfStock(t *testing.T) {
	st := newTestStore(t)
	svc := NewCartService(st)
	ctx := context.Background()

	p, err := st.AddProduct(domain.Product{Name: "Antigripal", Status: domain.StatusOutOfStock})
	require.NoError(t, err)

	err = svc.Add(ctx, p.ID, "owner@example.com")
	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.Empty(t, svc.List(ctx, "owner@example.com"))

	err = svc.Add(ctx, 404, "owner@example.com")
	assert.ErrorIs(t, err, store.ErrProductNotFound)
}

func TestCartAddIncrementsAndListJoins(t *testing.T) {
	st := newTestStore(t)
	svc := NewCartService(st)
	ctx := context.Background()

	price := 19.9
	p, err := st.AddProduct(domain.Product{Name: "Repelente", Price: 25.0, DiscountPrice: &price})
	require.NoError(t, err)

	owner := "sessao-anon"
	require.NoError(t, svc.Add(ctx, p.ID, owner))
	require.NoError(t, svc.Add(ctx, p.ID, owner))

	lines := svc.List(ctx, owner)
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "Repelente", lines[0].Product.Name)
	assert.InDelta(t, 39.8, lines[0].Total(), 0.001, "line total uses the discounted price")

	assert.True(t, svc.HasProduct(ctx, p.ID, owner))
}

func TestCartUpdateQuantityAndRemove(t *testing.T) {
	st := newTestStore(t)
	svc := NewCartService(st)
	ctx := context.Background()

	p, err := st.AddProduct(domain.Product{Name: "Fralda"})
	require.NoError(t, err)
	owner := "user@example.com"
	require.NoError(t, svc.Add(ctx, p.ID, owner))

	require.NoError(t, svc.UpdateQuantity(ctx, p.ID, owner, 4))
	lines := svc.List(ctx, owner)
	require.Len(t, lines, 1)
	assert.Equal(t, 4, lines[0].Quantity)

	// Zero quantity is the delete path.
	require.NoError(t, svc.UpdateQuantity(ctx, p.ID, owner, 0))
	assert.Empty(t, svc.List(ctx, owner))

	require.NoError(t, svc.Add(ctx, p.ID, owner))
	require.NoError(t, svc.Remove(ctx, p.ID, owner))
	assert.Empty(t, svc.List(ctx, owner))
	assert.ErrorIs(t, svc.Remove(ctx, p.ID, owner), store.ErrNotInCart)
}
