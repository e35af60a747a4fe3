package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"farma-shop/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := Open(filepath.Join(t.TempDir(), "db.json"), zap.NewNop())
	require.NoError(t, s.Init())
	return s
}

func TestInitSeedsBannersAndIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	banners := s.Banners()
	require.Len(t, banners, 3)

	// Mutate a banner, re-run Init, mutation must survive.
	caption := "Promoção de inverno"
	_, err := s.UpdateBanner(1, BannerPatch{Caption: &caption})
	require.NoError(t, err)
	require.NoError(t, s.Init())

	b, err := s.BannerByID(1)
	require.NoError(t, err)
	assert.Equal(t, caption, b.Caption)
}

func TestAddProductAppliesDefaults(t *testing.T) {
	s := newTestStore(t)

	created, err := s.AddProduct(domain.Product{})
	require.NoError(t, err)

	listed := s.Products()
	require.Len(t, listed, 1)
	got := listed[0]

	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, domain.DefaultProductName, got.Name)
	assert.Equal(t, float64(0), got.Price)
	assert.Nil(t, got.DiscountPrice)
	assert.Equal(t, domain.DefaultCategory, got.Category)
	assert.Equal(t, "", got.Description)
	assert.Equal(t, domain.DefaultProductImage, got.Image)
	assert.Equal(t, domain.StatusInStock, got.Status)
	assert.NotNil(t, got.Reviews)
	assert.Empty(t, got.Reviews)
}

func TestProductIDsAreMonotonic(t *testing.T) {
	s := newTestStore(t)

	var last int64
	for i := 0; i < 5; i++ {
		p, err := s.AddProduct(domain.Product{Name: "Dipirona"})
		require.NoError(t, err)
		assert.Greater(t, p.ID, last)
		last = p.ID
	}
}

func TestUpdateProductPreservesIDAndReviews(t *testing.T) {
	s := newTestStore(t)

	p, err := s.AddProduct(domain.Product{Name: "Vitamina C", Price: 29.9})
	require.NoError(t, err)
	require.NoError(t, s.AddCartItem(p.ID, "ana@example.com", 1))
	require.NoError(t, s.AddReview(p.ID, "ana@example.com", domain.Review{Rating: 5, Text: "ótimo"}))

	name := "Vitamina C 1g"
	price := 24.9
	updated, err := s.UpdateProduct(p.ID, ProductPatch{Name: &name, Price: &price})
	require.NoError(t, err)

	assert.Equal(t, p.ID, updated.ID)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, price, updated.Price)
	require.Len(t, updated.Reviews, 1)
	assert.Equal(t, "ótimo", updated.Reviews[0].Text)
}

func TestDeleteProductCascadesToCart(t *testing.T) {
	s := newTestStore(t)

	keep, err := s.AddProduct(domain.Product{Name: "Protetor solar"})
	require.NoError(t, err)
	gone, err := s.AddProduct(domain.Product{Name: "Esmalte"})
	require.NoError(t, err)

	owner := "bruno@example.com"
	require.NoError(t, s.AddCartItem(keep.ID, owner, 1))
	require.NoError(t, s.AddCartItem(gone.ID, owner, 2))

	require.NoError(t, s.DeleteProduct(gone.ID))

	lines := s.CartByOwner(owner)
	require.Len(t, lines, 1)
	assert.Equal(t, keep.ID, lines[0].Product.ID)

	// No orphaned rows survive in the raw document either.
	doc := s.ReadDocument()
	require.Len(t, doc.Cart, 1)

	assert.ErrorIs(t, s.DeleteProduct(gone.ID), ErrProductNotFound)
}

func TestProductsByCategory(t *testing.T) {
	s := newTestStore(t)

	add := func(name, category string) {
		_, err := s.AddProduct(domain.Product{Name: name, Category: category})
		require.NoError(t, err)
	}
	add("Sabonete", "Higiene")
	add("Batom", "beleza")
	add("Protetor", "Dermocosmeticos")
	add("Dipirona", "medicamentos")

	assert.Len(t, s.ProductsByCategory("HIGIENE"), 1)
	assert.Len(t, s.ProductsByCategory("medicamentos"), 1)
	assert.Empty(t, s.ProductsByCategory("perfumaria"))

	// The aggregate key groups its member categories.
	cuidados := s.ProductsByCategory("cuidados")
	assert.Len(t, cuidados, 3)
}

func TestAddCartItemIncrementsExistingRow(t *testing.T) {
	s := newTestStore(t)

	p, err := s.AddProduct(domain.Product{Name: "Dorflex"})
	require.NoError(t, err)
	owner := "carla@example.com"

	require.NoError(t, s.AddCartItem(p.ID, owner, 1))
	require.NoError(t, s.AddCartItem(p.ID, owner, 1))

	lines := s.CartByOwner(owner)
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)

	// A different owner gets an independent row.
	require.NoError(t, s.AddCartItem(p.ID, "outro@example.com", 1))
	assert.Len(t, s.CartByOwner(owner), 1)
	assert.Len(t, s.CartByOwner("outro@example.com"), 1)
}

func TestAddCartItemRejectsUnknownProduct(t *testing.T) {
	s := newTestStore(t)
	assert.ErrorIs(t, s.AddCartItem(42, "x@example.com", 1), ErrProductNotFound)
}

func TestUpdateCartQuantityZeroRemovesRow(t *testing.T) {
	s := newTestStore(t)

	p, err := s.AddProduct(domain.Product{Name: "Soro fisiológico"})
	require.NoError(t, err)
	owner := "dani@example.com"
	require.NoError(t, s.AddCartItem(p.ID, owner, 3))

	require.NoError(t, s.UpdateCartQuantity(p.ID, owner, 5))
	lines := s.CartByOwner(owner)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)

	require.NoError(t, s.UpdateCartQuantity(p.ID, owner, 0))
	assert.Empty(t, s.CartByOwner(owner))
	assert.False(t, s.HasCartItem(p.ID, owner))

	assert.ErrorIs(t, s.UpdateCartQuantity(p.ID, owner, 1), ErrNotInCart)
}

func TestClearCartOwnerLeavesOthersAlone(t *testing.T) {
	s := newTestStore(t)

	p, err := s.AddProduct(domain.Product{Name: "Band-aid"})
	require.NoError(t, err)
	require.NoError(t, s.AddCartItem(p.ID, "sessao-anonima", 2))
	require.NoError(t, s.AddCartItem(p.ID, "eva@example.com", 1))

	require.NoError(t, s.ClearCartOwner("sessao-anonima"))
	assert.Empty(t, s.CartByOwner("sessao-anonima"))
	assert.Len(t, s.CartByOwner("eva@example.com"), 1)

	require.NoError(t, s.ClearCart())
	assert.Empty(t, s.CartByOwner("eva@example.com"))
}

func TestAddReviewRequiresCartMembership(t *testing.T) {
	s := newTestStore(t)

	p, err := s.AddProduct(domain.Product{Name: "Xarope"})
	require.NoError(t, err)
	owner := "fabio@example.com"

	err = s.AddReview(p.ID, owner, domain.Review{Rating: 4, Text: "bom"})
	assert.ErrorIs(t, err, ErrNotInCart)
	assert.Zero(t, s.TotalReviews())

	require.NoError(t, s.AddCartItem(p.ID, owner, 1))
	require.NoError(t, s.AddReview(p.ID, owner, domain.Review{Rating: 4, Text: "bom"}))

	got, err := s.ProductByID(p.ID)
	require.NoError(t, err)
	require.Len(t, got.Reviews, 1)
	assert.Equal(t, 4, got.Reviews[0].Rating)
	assert.False(t, got.Reviews[0].CreatedAt.IsZero())

	// The flat log mirrors the per-product list.
	assert.Equal(t, 1, s.TotalReviews())

	assert.ErrorIs(t, s.AddReview(999, owner, domain.Review{}), ErrProductNotFound)
}

func TestDeleteReviewBoundsChecked(t *testing.T) {
	s := newTestStore(t)

	p, err := s.AddProduct(domain.Product{Name: "Pomada"})
	require.NoError(t, err)
	owner := "gi@example.com"
	require.NoError(t, s.AddCartItem(p.ID, owner, 1))
	require.NoError(t, s.AddReview(p.ID, owner, domain.Review{Rating: 3, Text: "ok"}))

	assert.ErrorIs(t, s.DeleteReview(p.ID, 1), ErrReviewIndexOutOfRange)
	assert.ErrorIs(t, s.DeleteReview(p.ID, -1), ErrReviewIndexOutOfRange)
	require.NoError(t, s.DeleteReview(p.ID, 0))

	got, err := s.ProductByID(p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Reviews)
}

func TestUserLifecycle(t *testing.T) {
	s := newTestStore(t)

	u := domain.User{
		Email:        "helena@example.com",
		Name:         "Helena",
		CPF:          "11144477735",
		BirthDate:    "1990-04-12",
		AreaCode:     "11",
		Phone:        "987654321",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
	}
	require.NoError(t, s.AddUser(u))

	found, err := s.FindUserByEmail(u.Email)
	require.NoError(t, err)
	assert.Equal(t, u, found)

	_, err = s.FindUserByEmail("ninguem@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	name := "Helena Souza"
	updated, err := s.UpdateUserByEmail(u.Email, UserPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, u.CPF, updated.CPF)

	p, err := s.AddProduct(domain.Product{Name: "Termômetro"})
	require.NoError(t, err)
	require.NoError(t, s.AddCartItem(p.ID, u.Email, 1))

	require.NoError(t, s.DeleteUserByEmail(u.Email))
	_, err = s.FindUserByEmail(u.Email)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, s.CartByOwner(u.Email), "user delete cascades to cart")
}

func TestBannerNumericStringIDsAreCoerced(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db.json")

	// Document written by an older version that stored banner ids as
	// numeric strings.
	raw := `{
		"produtos": [],
		"avaliacoes": [],
		"carrinho": [],
		"usuarios": [],
		"banners": [{"id": "2", "imagem": "/imagens/b.jpg", "legenda": "x", "link": "/home"}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	s := Open(path, zap.NewNop())
	require.NoError(t, s.Init())

	b, err := s.BannerByID(2)
	require.NoError(t, err)
	assert.Equal(t, "/imagens/b.jpg", b.Image)

	// And it marshals back out as a number.
	caption := "y"
	_, err = s.UpdateBanner(2, BannerPatch{Caption: &caption})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, string(decoded["banners"]), `"id": 2`)
}

func TestUpdateBannerUnknownIDFails(t *testing.T) {
	s := newTestStore(t)
	caption := "z"
	_, err := s.UpdateBanner(99, BannerPatch{Caption: &caption})
	assert.ErrorIs(t, err, ErrBannerNotFound)
}

func TestCorruptDocumentRecoversToEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := Open(path, zap.NewNop())

	assert.Empty(t, s.Products())
	assert.Empty(t, s.Users())

	// The store stays usable: the next write starts from the empty
	// default document.
	_, err := s.AddProduct(domain.Product{Name: "Álcool gel"})
	require.NoError(t, err)
	assert.Len(t, s.Products(), 1)
}

func TestListNormalizesLegacyRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db.json")

	raw := `{
		"produtos": [{"id": 123, "nome": "", "preco": -1, "precoDesconto": null}],
		"avaliacoes": [],
		"carrinho": [],
		"usuarios": [],
		"banners": []
	}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	s := Open(path, zap.NewNop())
	products := s.Products()
	require.Len(t, products, 1)

	got := products[0]
	assert.Equal(t, int64(123), got.ID)
	assert.Equal(t, domain.DefaultProductName, got.Name)
	assert.Equal(t, float64(0), got.Price)
	assert.Equal(t, domain.DefaultCategory, got.Category)
	assert.Equal(t, domain.DefaultProductImage, got.Image)
	assert.Equal(t, domain.StatusInStock, got.Status)
	assert.NotNil(t, got.Reviews)
}
