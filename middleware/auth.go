package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/estatehub/backend/models"
	"github.com/estatehub/backend/store"
	"github.com/estatehub/backend/utils"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type contextKey string

// UserKey carries the authenticated *models.User through the request
// context.
const UserKey = contextKey("user")

// TokenKey carries the raw bearer token, needed by logout to denylist it.
const TokenKey = contextKey("token")

// DenylistPrefix namespaces logged-out tokens in redis.
const DenylistPrefix = "denylist:"

// UserResolver fetches the stored user record so the role is always
// re-verified against the database, not just the token claims.
type UserResolver interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// UserFrom extracts the authenticated user placed by Auth.
func UserFrom(r *http.Request) (*models.User, bool) {
	u, ok := r.Context().Value(UserKey).(*models.User)
	return u, ok
}

// Auth resolves the caller from a bearer token in the Authorization
// header or a `token` cookie. redisClient may be nil, which disables the
// logout denylist check.
func Auth(users UserResolver, redisClient *redis.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				log.Printf("Missing token for request %s %s", r.Method, r.URL)
				utils.RespondError(w, http.StatusUnauthorized, "Access denied. No token provided.")
				return
			}

			if redisClient != nil {
				if n, err := redisClient.Exists(r.Context(), DenylistPrefix+token).Result(); err == nil && n > 0 {
					utils.RespondError(w, http.StatusUnauthorized, "Invalid token.")
					return
				}
			}

			claims, err := utils.ValidateJWT(token)
			if err != nil {
				log.Printf("Token rejected for %s %s: %v", r.Method, r.URL, err)
				if errors.Is(err, utils.ErrTokenExpired) {
					utils.RespondError(w, http.StatusUnauthorized, "Token expired.")
				} else {
					utils.RespondError(w, http.StatusUnauthorized, "Invalid token.")
				}
				return
			}

			userID, err := primitive.ObjectIDFromHex(claims.UserID)
			if err != nil {
				utils.RespondError(w, http.StatusUnauthorized, "Invalid token.")
				return
			}

			user, err := users.FindByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					utils.RespondError(w, http.StatusNotFound, "User not found.")
					return
				}
				log.Printf("Failed to load user %s: %v", claims.UserID, err)
				utils.RespondError(w, http.StatusInternalServerError, "Server error during authentication.")
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			ctx = context.WithValue(ctx, TokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly gates a route to admin users. Must run after Auth.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFrom(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Authentication required. Please login.")
			return
		}
		if user.Role != models.RoleAdmin {
			utils.RespondError(w, http.StatusForbidden, "Access denied. Admin privileges required.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	if cookie, err := r.Cookie("token"); err == nil {
		return cookie.Value
	}
	return ""
}
