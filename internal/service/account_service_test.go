package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"farma-shop/internal/domain"
	"farma-shop/internal/store"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st := store.Open(filepath.Join(t.TempDir(), "db.json"), zap.NewNop())
	require.NoError(t, st.Init())
	return st
}

func validRegistration() RegisterInput {
	return RegisterInput{
		Name:                 "Maria Silva",
		Email:                "maria@example.com",
		CPF:                  "111.444.777-35",
		BirthDate:            "1992-06-15",
		AreaCode:             "11",
		Phone:                "987654321",
		Password:             "Segura1!",
		PasswordConfirmation: "Segura1!",
	}
}

func TestRegisterPersistsHashedPassword(t *testing.T) {
	st := newTestStore(t)
	svc := NewAccountService(st, "test-secret", "admin@example.com", "Admin1!", time.Hour)
	ctx := context.Background()

	user, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	assert.NotEqual(t, "Segura1!", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Segura1!")))

	stored, err := st.FindUserByEmail("maria@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.PasswordHash, stored.PasswordHash)
}

func TestRegisterRejectsInvalidFields(t *testing.T) {
	st := newTestStore(t)
	svc := NewAccountService(st, "test-secret", "", "", time.Hour)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		field  string
	}{
		{"short name", func(r *RegisterInput) { r.Name = "Jo" }, "nome"},
		{"bad cpf", func(r *RegisterInput) { r.CPF = "11144477736" }, "cpf"},
		{"repeated cpf", func(r *RegisterInput) { r.CPF = "11111111111" }, "cpf"},
		{"future birth date", func(r *RegisterInput) { r.BirthDate = "2999-01-01" }, "nasc"},
		{"bad area code", func(r *RegisterInput) { r.AreaCode = "20" }, "ddd"},
		{"bad phone", func(r *RegisterInput) { r.Phone = "999999999" }, "tel"},
		{"weak password", func(r *RegisterInput) { r.Password = "abc"; r.PasswordConfirmation = "abc" }, "senhan"},
		{"mismatched confirmation", func(r *RegisterInput) { r.PasswordConfirmation = "Outra1!" }, "senha"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validRegistration()
			tt.mutate(&input)

			_, err := svc.Register(ctx, input)
			require.Error(t, err)

			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)

			found := false
			for _, fe := range verrs {
				if fe.Field == tt.field {
					found = true
				}
			}
			assert.Truef(t, found, "expected a %q field error, got %v", tt.field, verrs)
		})
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	st := newTestStore(t)
	svc := NewAccountService(st, "test-secret", "", "", time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	_, err = svc.Register(ctx, validRegistration())
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLoginIssuesTokenWithClaims(t *testing.T) {
	st := newTestStore(t)
	svc := NewAccountService(st, "test-secret", "", "", time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	token, user, role, err := svc.Login(ctx, "maria@example.com", "Segura1!", "")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, role)
	assert.Equal(t, "maria@example.com", user.Email)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", claims.Email)
	assert.Equal(t, RoleUser, claims.Role)
	require.NotNil(t, claims.ExpiresAt)
}

func TestTokenLifetimeFollowsConfiguredTTL(t *testing.T) {
	st := newTestStore(t)
	svc := NewAccountService(st, "test-secret", "", "", 2*time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	token, _, _, err := svc.Login(ctx, "maria@example.com", "Segura1!", "")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
	assert.Equal(t, 2*time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	st := newTestStore(t)
	svc := NewAccountService(st, "test-secret", "", "", time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	_, _, _, err = svc.Login(ctx, "maria@example.com", "errada", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, _, err = svc.Login(ctx, "ninguem@example.com", "Segura1!", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAdminLoginShortCircuits(t *testing.T) {
	st := newTestStore(t)
	svc := NewAccountService(st, "test-secret", "admin@farma.com", "MuitoSegura1!", time.Hour)
	ctx := context.Background()

	token, _, role, err := svc.Login(ctx, "admin@farma.com", "MuitoSegura1!", "")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestLoginMergesAnonymousCart(t *testing.T) {
	st := newTestStore(t)
	svc := NewAccountService(st, "test-secret", "", "", time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	p1, err := st.AddProduct(domain.Product{Name: "Dipirona"})
	require.NoError(t, err)
	p2, err := st.AddProduct(domain.Product{Name: "Vitamina D"})
	require.NoError(t, err)

	session := uuid.NewString()
	require.NoError(t, st.AddCartItem(p1.ID, session, 2))
	require.NoError(t, st.AddCartItem(p2.ID, session, 1))

	// The user already holds p1; merge must increment, not duplicate.
	require.NoError(t, st.AddCartItem(p1.ID, "maria@example.com", 1))

	_, _, _, err = svc.Login(ctx, "maria@example.com", "Segura1!", session)
	require.NoError(t, err)

	assert.Empty(t, st.CartByOwner(session), "anonymous cart is discarded after merge")

	lines := st.CartByOwner("maria@example.com")
	require.Len(t, lines, 2)
	byID := map[int64]int{}
	for _, l := range lines {
		byID[l.Product.ID] = l.Quantity
	}
	assert.Equal(t, 3, byID[p1.ID])
	assert.Equal(t, 1, byID[p2.ID])
}

func TestLoginIgnoresForgedSessionKey(t *testing.T) {
	st := newTestStore(t)
	svc := NewAccountService(st, "test-secret", "", "", time.Hour)
	ctx := context.Background()

	victim := validRegistration()
	_, err := svc.Register(ctx, victim)
	require.NoError(t, err)

	other := validRegistration()
	other.Email = "joana@example.com"
	_, err = svc.Register(ctx, other)
	require.NoError(t, err)

	p, err := st.AddProduct(domain.Product{Name: "Dipirona"})
	require.NoError(t, err)
	require.NoError(t, st.AddCartItem(p.ID, victim.Email, 3))

	// Presenting another user's email as the session key must not drain
	// that user's cart into the caller's.
	_, _, _, err = svc.Login(ctx, other.Email, "Segura1!", victim.Email)
	require.NoError(t, err)

	victimLines := st.CartByOwner(victim.Email)
	require.Len(t, victimLines, 1)
	assert.Equal(t, 3, victimLines[0].Quantity)
	assert.Empty(t, st.CartByOwner(other.Email))
}

func TestUpdateProfileValidatesSuppliedFieldsOnly(t *testing.T) {
	st := newTestStore(t)
	svc := NewAccountService(st, "test-secret", "", "", time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	name := "Maria S. Silva"
	updated, err := svc.UpdateProfile(ctx, "maria@example.com", ProfileInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, "111.444.777-35", updated.CPF, "untouched fields survive")

	bad := "123"
	_, err = svc.UpdateProfile(ctx, "maria@example.com", ProfileInput{CPF: &bad})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
}

func TestDeleteUserCascades(t *testing.T) {
	st := newTestStore(t)
	svc := NewAccountService(st, "test-secret", "", "", time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	p, err := st.AddProduct(domain.Product{Name: "Curativo"})
	require.NoError(t, err)
	require.NoError(t, st.AddCartItem(p.ID, "maria@example.com", 1))

	require.NoError(t, svc.DeleteUser(ctx, "maria@example.com"))
	assert.Empty(t, svc.ListUsers(ctx))
	assert.Empty(t, st.CartByOwner("maria@example.com"))
}

func TestProperty_RegisteredPasswordsAreNeverStoredPlaintext(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("stored credential is a bcrypt hash of the password", prop.ForAll(
		func(local string, password string) bool {
			st := store.Open(filepath.Join(t.TempDir(), "db.json"), zap.NewNop())
			if err := st.Init(); err != nil {
				return false
			}
			svc := NewAccountService(st, "test-secret", "", "", time.Hour)

			input := validRegistration()
			input.Email = local + "@example.com"
			input.Password = password
			input.PasswordConfirmation = password

			user, err := svc.Register(context.Background(), input)
			if err != nil {
				// Generated password failed policy; nothing to check.
				return true
			}

			if user.PasswordHash == password {
				return false
			}
			return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
		},
		gen.RegexMatch(`[a-z]{3,10}`),
		gen.RegexMatch(`[A-Z][a-z]{3,10}[0-9]{1,3}[!@#$%^&*]`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
