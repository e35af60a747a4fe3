package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"farma-shop/internal/domain"
	"farma-shop/internal/store"
	"farma-shop/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10

	// AccessTokenExpiration is the token lifetime used when none is
	// configured.
	AccessTokenExpiration = 24 * time.Hour

	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrInvalidToken       = errors.New("invalid token")
)

// FieldError names a single rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors aggregates every rejected field of one request.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	fields := make([]string, len(v))
	for i, fe := range v {
		fields[i] = fe.Field
	}
	return "invalid fields: " + strings.Join(fields, ", ")
}

// Claims represents the JWT claims issued at login.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// RegisterInput is the full registration form.
type RegisterInput struct {
	Name                 string
	Email                string
	CPF                  string
	BirthDate            string
	AreaCode             string
	Phone                string
	Password             string
	PasswordConfirmation string
}

// ProfileInput carries optional profile updates; nil fields are untouched.
type ProfileInput struct {
	Name                 *string
	CPF                  *string
	BirthDate            *string
	AreaCode             *string
	Phone                *string
	Password             *string
	PasswordConfirmation *string
}

// AccountService defines the interface for account business logic.
type AccountService interface {
	Register(ctx context.Context, input RegisterInput) (domain.User, error)
	Login(ctx context.Context, email, password, sessionKey string) (token string, user domain.User, role string, err error)
	ValidateToken(tokenString string) (*Claims, error)
	Profile(ctx context.Context, email string) (domain.User, error)
	UpdateProfile(ctx context.Context, email string, input ProfileInput) (domain.User, error)
	ListUsers(ctx context.Context) []domain.User
	DeleteUser(ctx context.Context, email string) error
}

type accountService struct {
	store      *store.Store
	jwtSecret  string
	adminEmail string
	adminPass  string
	accessTTL  time.Duration
}

// NewAccountService creates a new instance of AccountService. The admin
// credentials and token lifetime come from configuration; the admin is
// not a stored user. A non-positive TTL falls back to the default.
func NewAccountService(st *store.Store, jwtSecret, adminEmail, adminPass string, accessTTL time.Duration) AccountService {
	if accessTTL <= 0 {
		accessTTL = AccessTokenExpiration
	}
	return &accountService{
		store:      st,
		jwtSecret:  jwtSecret,
		adminEmail: adminEmail,
		adminPass:  adminPass,
		accessTTL:  accessTTL,
	}
}

// validateRegistration runs the full validator battery over the form.
func validateRegistration(input RegisterInput) ValidationErrors {
	var errs ValidationErrors

	if n := len(strings.TrimSpace(input.Name)); n < 3 || n > 50 {
		errs = append(errs, FieldError{"nome", "name must be 3 to 50 characters"})
	}
	if !validation.BirthDate(input.BirthDate) {
		errs = append(errs, FieldError{"nasc", "invalid birth date"})
	}
	if !validation.CPF(input.CPF) {
		errs = append(errs, FieldError{"cpf", "invalid CPF"})
	}
	if !validation.AreaCode(input.AreaCode) {
		errs = append(errs, FieldError{"ddd", "invalid area code"})
	}
	if !validation.Phone(input.Phone) {
		errs = append(errs, FieldError{"tel", "phone must have 9 digits"})
	}
	if !validation.Password(input.Password) {
		errs = append(errs, FieldError{"senhan", "password must be 6 to 20 characters with an uppercase letter, a digit and a special character"})
	}
	if !validation.PasswordsMatch(input.PasswordConfirmation, input.Password) {
		errs = append(errs, FieldError{"senha", "passwords do not match"})
	}
	return errs
}

// Register validates the form, rejects duplicate emails and persists the
// new user with a hashed password.
func (s *accountService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	if errs := validateRegistration(input); len(errs) > 0 {
		return domain.User{}, errs
	}

	if _, err := s.store.FindUserByEmail(input.Email); err == nil {
		return domain.User{}, ErrUserAlreadyExists
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return domain.User{}, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), BcryptCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.User{
		Email:        input.Email,
		Name:         strings.TrimSpace(input.Name),
		CPF:          input.CPF,
		BirthDate:    input.BirthDate,
		AreaCode:     input.AreaCode,
		Phone:        input.Phone,
		PasswordHash: string(hash),
	}
	if err := s.store.AddUser(user); err != nil {
		return domain.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login authenticates and returns an access token. Configured admin
// credentials short-circuit to an admin token. On a user login, any cart
// accumulated under the anonymous session key is merged into the user's
// cart and the session cart is discarded.
func (s *accountService) Login(ctx context.Context, email, password, sessionKey string) (string, domain.User, string, error) {
	if s.adminEmail != "" && email == s.adminEmail && password == s.adminPass {
		token, err := s.generateToken(email, RoleAdmin)
		if err != nil {
			return "", domain.User{}, "", fmt.Errorf("failed to generate token: %w", err)
		}
		return token, domain.User{Email: email}, RoleAdmin, nil
	}

	user, err := s.store.FindUserByEmail(email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return "", domain.User{}, "", ErrInvalidCredentials
		}
		return "", domain.User{}, "", fmt.Errorf("failed to find user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", domain.User{}, "", ErrInvalidCredentials
	}

	// Merge only server-minted session keys. A client-supplied string
	// that is not a UUID (another user's email, say) must never be
	// treated as a cart to drain.
	if _, err := uuid.Parse(sessionKey); err == nil {
		if err := s.mergeCart(sessionKey, user.Email); err != nil {
			return "", domain.User{}, "", fmt.Errorf("failed to merge session cart: %w", err)
		}
	}

	token, err := s.generateToken(user.Email, RoleUser)
	if err != nil {
		return "", domain.User{}, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, user, RoleUser, nil
}

// mergeCart moves every line of the anonymous cart onto the user's cart,
// then drops the anonymous cart.
func (s *accountService) mergeCart(sessionKey, email string) error {
	for _, line := range s.store.CartByOwner(sessionKey) {
		if err := s.store.AddCartItem(line.Product.ID, email, line.Quantity); err != nil {
			return err
		}
	}
	return s.store.ClearCartOwner(sessionKey)
}

// ValidateToken validates a JWT token and returns the claims.
func (s *accountService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *accountService) Profile(ctx context.Context, email string) (domain.User, error) {
	return s.store.FindUserByEmail(email)
}

// UpdateProfile validates and applies the supplied fields only.
func (s *accountService) UpdateProfile(ctx context.Context, email string, input ProfileInput) (domain.User, error) {
	var errs ValidationErrors
	patch := store.UserPatch{}

	if input.Name != nil {
		if n := len(strings.TrimSpace(*input.Name)); n < 3 || n > 50 {
			errs = append(errs, FieldError{"nome", "name must be 3 to 50 characters"})
		} else {
			trimmed := strings.TrimSpace(*input.Name)
			patch.Name = &trimmed
		}
	}
	if input.CPF != nil {
		if !validation.CPF(*input.CPF) {
			errs = append(errs, FieldError{"cpf", "invalid CPF"})
		} else {
			patch.CPF = input.CPF
		}
	}
	if input.BirthDate != nil {
		if !validation.BirthDate(*input.BirthDate) {
			errs = append(errs, FieldError{"nasc", "invalid birth date"})
		} else {
			patch.BirthDate = input.BirthDate
		}
	}
	if input.AreaCode != nil {
		if !validation.AreaCode(*input.AreaCode) {
			errs = append(errs, FieldError{"ddd", "invalid area code"})
		} else {
			patch.AreaCode = input.AreaCode
		}
	}
	if input.Phone != nil {
		if !validation.Phone(*input.Phone) {
			errs = append(errs, FieldError{"tel", "phone must have 9 digits"})
		} else {
			patch.Phone = input.Phone
		}
	}
	if input.Password != nil {
		confirmation := ""
		if input.PasswordConfirmation != nil {
			confirmation = *input.PasswordConfirmation
		}
		switch {
		case !validation.Password(*input.Password):
			errs = append(errs, FieldError{"senhan", "password must be 6 to 20 characters with an uppercase letter, a digit and a special character"})
		case !validation.PasswordsMatch(confirmation, *input.Password):
			errs = append(errs, FieldError{"senha", "passwords do not match"})
		default:
			hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), BcryptCost)
			if err != nil {
				return domain.User{}, fmt.Errorf("failed to hash password: %w", err)
			}
			hashed := string(hash)
			patch.PasswordHash = &hashed
		}
	}

	if len(errs) > 0 {
		return domain.User{}, errs
	}
	return s.store.UpdateUserByEmail(email, patch)
}

func (s *accountService) ListUsers(ctx context.Context) []domain.User {
	return s.store.Users()
}

// DeleteUser removes the account; the store cascades the cart cleanup.
func (s *accountService) DeleteUser(ctx context.Context, email string) error {
	return s.store.DeleteUserByEmail(email)
}

func (s *accountService) generateToken(email, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
}
