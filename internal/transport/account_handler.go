package transport

import (
	"errors"
	"net/http"

	"farma-shop/internal/domain"
	"farma-shop/internal/middleware"
	"farma-shop/internal/service"
	"farma-shop/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RegisterRequest is the registration form, field names matching the
// storefront's document keys.
type RegisterRequest struct {
	Name                 string `json:"nome" validate:"required"`
	Email                string `json:"email" validate:"required,email"`
	CPF                  string `json:"cpf" validate:"required"`
	BirthDate            string `json:"nasc" validate:"required"`
	AreaCode             string `json:"ddd" validate:"required"`
	Phone                string `json:"tel" validate:"required"`
	Password             string `json:"senha" validate:"required"`
	PasswordConfirmation string `json:"confirmaSenha" validate:"required"`
}

// LoginRequest represents the login request payload. The email field is
// deliberately not format-checked: login authenticates whatever identity
// is configured, including admin identities that are not RFC addresses.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"senha" validate:"required"`
}

// UpdateProfileRequest carries optional profile changes; omitted fields
// keep their stored values.
type UpdateProfileRequest struct {
	Name                 *string `json:"nome"`
	CPF                  *string `json:"cpf"`
	BirthDate            *string `json:"nasc"`
	AreaCode             *string `json:"ddd"`
	Phone                *string `json:"tel"`
	Password             *string `json:"senha"`
	PasswordConfirmation *string `json:"confirmaSenha"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	Role        string      `json:"role"`
	User        UserProfile `json:"user"`
}

// UserProfile is the user record without the password hash.
type UserProfile struct {
	Email     string `json:"email"`
	Name      string `json:"nome"`
	CPF       string `json:"cpf"`
	BirthDate string `json:"nasc"`
	AreaCode  string `json:"ddd"`
	Phone     string `json:"tel"`
}

func toProfile(user domain.User) UserProfile {
	return UserProfile{
		Email:     user.Email,
		Name:      user.Name,
		CPF:       user.CPF,
		BirthDate: user.BirthDate,
		AreaCode:  user.AreaCode,
		Phone:     user.Phone,
	}
}

// AccountHandler handles HTTP requests for account operations
type AccountHandler struct {
	accounts service.AccountService
	logger   *zap.Logger
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accounts service.AccountService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		logger:   logger,
	}
}

// RegisterRoutes registers all account routes
func (h *AccountHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/usuarios", func(r chi.Router) {
		// Public routes
		r.Post("/cadastro", h.Register)
		r.Post("/login", h.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/perfil", h.GetProfile)
			r.Put("/perfil", h.UpdateProfile)
		})

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Get("/", h.ListUsers)
			r.Delete("/{email}", h.DeleteUser)
		})
	})
}

// Register handles user registration
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Registration validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.accounts.Register(r.Context(), service.RegisterInput{
		Name:                 req.Name,
		Email:                req.Email,
		CPF:                  req.CPF,
		BirthDate:            req.BirthDate,
		AreaCode:             req.AreaCode,
		Phone:                req.Phone,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		var fieldErrs service.ValidationErrors
		if errors.As(err, &fieldErrs) {
			h.logger.Debug("Registration rejected", zap.Error(err))
			respondWithFieldErrors(w, fieldErrs)
			return
		}
		if errors.Is(err, service.ErrUserAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "user with this email already exists")
			return
		}

		h.logger.Error("Registration failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	h.logger.Info("User registered", zap.String("email", user.Email))
	middleware.RespondWithJSON(w, http.StatusCreated, toProfile(user))
}

// Login handles authentication. The anonymous session id, when present,
// lets the service merge the session cart into the user's cart.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionKey := r.Header.Get(middleware.SessionHeader)

	token, user, role, err := h.accounts.Login(r.Context(), req.Email, req.Password, sessionKey)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.logger.Debug("Login rejected", zap.String("email", req.Email))
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}

		h.logger.Error("Login failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	response := LoginResponse{
		AccessToken: token,
		Role:        role,
		User:        toProfile(user),
	}

	h.logger.Info("User logged in", zap.String("email", user.Email), zap.String("role", role))
	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// GetProfile returns the authenticated user's record.
func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.GetUserEmail(r.Context())
	if !ok {
		h.logger.Error("Email not found in context")
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.accounts.Profile(r.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "user not found")
			return
		}

		h.logger.Error("Failed to load profile", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProfile(user))
}

// UpdateProfile applies the supplied fields to the authenticated user.
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.GetUserEmail(r.Context())
	if !ok {
		h.logger.Error("Email not found in context")
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateProfileRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Profile update decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.accounts.UpdateProfile(r.Context(), email, service.ProfileInput{
		Name:                 req.Name,
		CPF:                  req.CPF,
		BirthDate:            req.BirthDate,
		AreaCode:             req.AreaCode,
		Phone:                req.Phone,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		var fieldErrs service.ValidationErrors
		if errors.As(err, &fieldErrs) {
			h.logger.Debug("Profile update rejected", zap.Error(err))
			respondWithFieldErrors(w, fieldErrs)
			return
		}
		if errors.Is(err, store.ErrUserNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "user not found")
			return
		}

		h.logger.Error("Profile update failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	h.logger.Info("Profile updated", zap.String("email", email))
	middleware.RespondWithJSON(w, http.StatusOK, toProfile(user))
}

// ListUsers returns every registered user, for the admin dashboard.
func (h *AccountHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users := h.accounts.ListUsers(r.Context())

	profiles := make([]UserProfile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, toProfile(user))
	}

	middleware.RespondWithJSON(w, http.StatusOK, profiles)
}

// DeleteUser removes a user account and its cart.
func (h *AccountHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	if err := h.accounts.DeleteUser(r.Context(), email); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "user not found")
			return
		}

		h.logger.Error("User deletion failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	h.logger.Info("User deleted", zap.String("email", email))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

// respondWithFieldErrors maps service-level field errors onto the shared
// validation error payload.
func respondWithFieldErrors(w http.ResponseWriter, errs service.ValidationErrors) {
	formatted := make([]middleware.ValidationError, 0, len(errs))
	for _, fe := range errs {
		formatted = append(formatted, middleware.ValidationError{
			Field:   fe.Field,
			Message: fe.Message,
		})
	}
	middleware.RespondWithValidationErrors(w, formatted)
}
