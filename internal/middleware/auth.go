package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const (
	UserEmailKey contextKey = "user_email"
	UserRoleKey  contextKey = "user_role"
	OwnerKeyKey  contextKey = "owner_key"
)

// SessionHeader carries the anonymous cart session identifier. The
// Identity middleware issues one when the client has neither a token nor
// a session id, and echoes it back so the client can hold on to it.
const SessionHeader = "X-Session-Id"

// AuthMiddleware validates JWT tokens and extracts user claims. Requests
// without a valid token are rejected.
func AuthMiddleware(jwtSecret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, role, ok := parseBearer(w, r, jwtSecret, logger)
			if !ok {
				return
			}

			ctx := context.WithValue(r.Context(), UserEmailKey, email)
			ctx = context.WithValue(ctx, UserRoleKey, role)
			ctx = context.WithValue(ctx, OwnerKeyKey, email)

			logger.Debug("User authenticated",
				zap.String("email", email),
				zap.String("role", role),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityMiddleware resolves the caller's owner key without requiring
// authentication. A valid bearer token maps the owner key to the user's
// email; otherwise the anonymous session id from the request header is
// used, minted on the spot when absent or not a UUID. An invalid token is
// still a 401 — a client holding a broken token should find out, not
// silently shop as anonymous.
func IdentityMiddleware(jwtSecret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if r.Header.Get("Authorization") != "" {
				email, role, ok := parseBearer(w, r, jwtSecret, logger)
				if !ok {
					return
				}
				ctx = context.WithValue(ctx, UserEmailKey, email)
				ctx = context.WithValue(ctx, UserRoleKey, role)
				ctx = context.WithValue(ctx, OwnerKeyKey, email)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			// Only server-minted keys are honored: anything that is not
			// a UUID (a guessed email, say) gets replaced, so a client
			// can never shop under an owner key it did not receive here.
			session := r.Header.Get(SessionHeader)
			if _, err := uuid.Parse(session); err != nil {
				session = uuid.New().String()
				logger.Debug("Issued anonymous session key", zap.String("session", session))
			}
			w.Header().Set(SessionHeader, session)

			ctx = context.WithValue(ctx, OwnerKeyKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// parseBearer validates the Authorization header and returns the token's
// email and role claims. On failure it writes the error response and
// returns ok=false.
func parseBearer(w http.ResponseWriter, r *http.Request, jwtSecret string, logger *zap.Logger) (email, role string, ok bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		logger.Debug("Missing authorization header")
		RespondWithError(w, http.StatusUnauthorized, "missing authorization header")
		return "", "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		logger.Debug("Invalid authorization header format")
		RespondWithError(w, http.StatusUnauthorized, "invalid authorization header format")
		return "", "", false
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})

	if err != nil {
		logger.Debug("Token validation failed", zap.Error(err))
		if err == jwt.ErrTokenExpired {
			RespondWithError(w, http.StatusUnauthorized, "token expired")
		} else {
			RespondWithError(w, http.StatusUnauthorized, "invalid token")
		}
		return "", "", false
	}

	if !token.Valid {
		logger.Debug("Invalid token")
		RespondWithError(w, http.StatusUnauthorized, "invalid token")
		return "", "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		logger.Error("Failed to extract claims from token")
		RespondWithError(w, http.StatusUnauthorized, "invalid token claims")
		return "", "", false
	}

	email, ok = claims["email"].(string)
	if !ok {
		logger.Error("Missing email in token claims")
		RespondWithError(w, http.StatusUnauthorized, "invalid token claims")
		return "", "", false
	}

	role, ok = claims["role"].(string)
	if !ok {
		logger.Error("Missing role in token claims")
		RespondWithError(w, http.StatusUnauthorized, "invalid token claims")
		return "", "", false
	}

	return email, role, true
}

// GetUserEmail extracts the authenticated user's email from the context.
func GetUserEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailKey).(string)
	return email, ok
}

// GetUserRole extracts the user role from the context.
func GetUserRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(UserRoleKey).(string)
	return role, ok
}

// GetOwnerKey extracts the cart owner key: the user's email when
// authenticated, the anonymous session id otherwise.
func GetOwnerKey(ctx context.Context) (string, bool) {
	owner, ok := ctx.Value(OwnerKeyKey).(string)
	return owner, ok
}
