package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"dispatchai-pro/internal/models"
	"dispatchai-pro/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const UserContextKey contextKey = "user"

// TokenTTL is how long an issued login token stays valid
const TokenTTL = 7 * 24 * time.Hour

type UserClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

type tokenClaims struct {
	UserClaims
	jwt.RegisteredClaims
}

// Authenticator issues and validates HS256 tokens
type Authenticator struct {
	secret []byte
	log    logger.Logger
}

func NewAuthenticator(secret string, log logger.Logger) *Authenticator {
	return &Authenticator{secret: []byte(secret), log: log}
}

// IssueToken signs a token carrying the user's id, email and role
func (a *Authenticator) IssueToken(user models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserClaims: UserClaims{UserID: user.ID, Email: user.Email, Role: user.Role},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	})
	return token.SignedString(a.secret)
}

// ParseToken validates a token string and returns its claims
func (a *Authenticator) ParseToken(tokenString string) (UserClaims, error) {
	if len(a.secret) == 0 {
		return UserClaims{}, errors.New("jwt secret not configured")
	}

	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil {
		return UserClaims{}, err
	}
	if !token.Valid || claims.UserID == "" {
		return UserClaims{}, jwt.ErrTokenInvalidClaims
	}
	return claims.UserClaims, nil
}

// Auth validates the Bearer token and adds the user claims to the context
func (a *Authenticator) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			a.log.Warn("❌ No authorization header", "method", r.Method, "path", r.URL.Path)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			a.log.Warn("❌ Invalid authorization header format", "parts", len(parts))
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		userClaims, err := a.ParseToken(parts[1])
		if err != nil {
			a.log.Warn("❌ Invalid token", "path", r.URL.Path, "error", err)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		a.log.Debug("🔐 Authenticated", "user_id", userClaims.UserID, "role", userClaims.Role)
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userClaims)))
	})
}

// RequireRole middleware checks if user has required role (must be used after Auth)
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userClaims, ok := GetUserFromContext(r)
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if userClaims.Role != role {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WithUser stores claims in a context
func WithUser(ctx context.Context, claims UserClaims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}

// GetUserFromContext extracts user claims from request context
func GetUserFromContext(r *http.Request) (UserClaims, bool) {
	userClaims, ok := r.Context().Value(UserContextKey).(UserClaims)
	return userClaims, ok
}
