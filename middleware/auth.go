package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/clerk/clerk-sdk-go/v2/jwt"
	"github.com/google/uuid"

	"mindStepsAPI/internal/logger"
)

type contextKey string

const UserIDKey contextKey = "userID"
const ClerkIDKey contextKey = "clerkID"

// SubjectVerifier checks a bearer token and returns its subject.
type SubjectVerifier func(ctx context.Context, token string) (string, error)

type UserResolver interface {
	ResolveUserID(ctx context.Context, clerkID string) (uuid.UUID, error)
}

func ClerkVerifier(ctx context.Context, token string) (string, error) {
	claims, err := jwt.Verify(ctx, &jwt.VerifyParams{
		Token: token,
	})
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ClerkAuthMiddleware validates the bearer token and stores the Clerk user
// ID in the request context.
func ClerkAuthMiddleware(verify SubjectVerifier, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondWithError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == authHeader {
				respondWithError(w, http.StatusUnauthorized, "Invalid authorization format. Use 'Bearer <token>'")
				return
			}

			subject, err := verify(r.Context(), token)
			if err != nil || subject == "" {
				log.Warn("token verification failed", "error", err)
				respondWithError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), ClerkIDKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ResolveUserMiddleware maps the authenticated Clerk ID to the internal user
// ID. It must run after ClerkAuthMiddleware.
func ResolveUserMiddleware(users UserResolver, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clerkID, ok := GetClerkID(r.Context())
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "User not authenticated")
				return
			}

			userID, err := users.ResolveUserID(r.Context(), clerkID)
			if err != nil {
				log.Error("failed to resolve user", "clerk_id", clerkID, "error", err)
				respondWithError(w, http.StatusInternalServerError, "Failed to load user")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func GetClerkID(ctx context.Context) (string, bool) {
	clerkID, ok := ctx.Value(ClerkIDKey).(string)
	return clerkID, ok
}

func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
