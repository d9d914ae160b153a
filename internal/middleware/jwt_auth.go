package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/warrantydesk/warrantydesk/internal/api"
	"github.com/warrantydesk/warrantydesk/internal/claims"
	"github.com/warrantydesk/warrantydesk/internal/database"
)

// UserClaims represents the JWT claims for a staff user
type UserClaims struct {
	UserID uint   `json:"uid"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// JWTAuthConfig holds JWT authentication configuration
type JWTAuthConfig struct {
	// JWTSecret is the secret key for signing JWT tokens
	JWTSecret string

	// JWTExpiryHours is the token expiry in hours
	JWTExpiryHours int

	// SkipPaths are paths that don't require authentication.
	// A trailing * matches by prefix.
	SkipPaths []string
}

// JWTAuthMiddleware authenticates staff users and puts the acting user in
// the request context
type JWTAuthMiddleware struct {
	config  *JWTAuthConfig
	mu      sync.RWMutex
	skipMap map[string]bool
	users   UserLookup
	now     func() time.Time
}

// UserLookup loads the account a token was issued to
type UserLookup interface {
	GetUser(ctx context.Context, id uint) (*database.User, error)
}

type actorContextKey struct{}

// NewJWTAuthMiddleware creates a new JWT authentication middleware
func NewJWTAuthMiddleware(config *JWTAuthConfig) *JWTAuthMiddleware {
	m := &JWTAuthMiddleware{
		config:  config,
		skipMap: make(map[string]bool),
		now:     time.Now,
	}
	for _, path := range config.SkipPaths {
		m.skipMap[path] = true
	}
	return m
}

// SetUserLookup makes Wrap reload the token's user on every request, so a
// deactivated or deleted account loses access before its token expires
func (m *JWTAuthMiddleware) SetUserLookup(users UserLookup) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = users
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword checks if the provided password matches the hash
func CheckPassword(password, hash string) bool {
	if hash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateToken issues a token for user and returns it with its expiry
func (m *JWTAuthMiddleware) GenerateToken(user *database.User) (string, time.Time, error) {
	m.mu.RLock()
	secret := m.config.JWTSecret
	expiryHours := m.config.JWTExpiryHours
	m.mu.RUnlock()

	issued := m.now()
	expires := issued.Add(time.Duration(expiryHours) * time.Hour)
	claims := UserClaims{
		UserID: user.ID,
		Name:   user.DisplayName(),
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(issued),
			Issuer:    "warrantydesk",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	return signed, expires, err
}

// ValidateToken validates a JWT token and returns the claims
func (m *JWTAuthMiddleware) ValidateToken(tokenString string) (*UserClaims, error) {
	m.mu.RLock()
	secret := m.config.JWTSecret
	m.mu.RUnlock()

	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid && claims.UserID != 0 {
		return claims, nil
	}
	return nil, jwt.ErrTokenInvalidClaims
}

// Wrap wraps an http.Handler with JWT authentication
func (m *JWTAuthMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || m.shouldSkipAuth(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		tokenString := extractToken(r)
		if tokenString == "" {
			unauthorized(w, "Missing authentication token")
			return
		}

		userClaims, err := m.ValidateToken(tokenString)
		if err != nil {
			log.Printf("JWTAuthMiddleware: Invalid token from %s: %v", r.RemoteAddr, err)
			unauthorized(w, "Invalid or expired token")
			return
		}

		actor := claims.Actor{UserID: userClaims.UserID, Name: userClaims.Name}
		if users := m.userLookup(); users != nil {
			user, err := users.GetUser(r.Context(), userClaims.UserID)
			switch {
			case errors.Is(err, claims.ErrNotFound):
				log.Printf("JWTAuthMiddleware: Token for unknown user %d", userClaims.UserID)
				unauthorized(w, "Invalid or expired token")
				return
			case err != nil:
				log.Printf("JWTAuthMiddleware: Failed to load user %d: %v", userClaims.UserID, err)
				api.RespondError(w, http.StatusServiceUnavailable, "Failed to verify account")
				return
			case !user.Active:
				log.Printf("JWTAuthMiddleware: Rejected token of deactivated user %d", user.ID)
				unauthorized(w, "Account is deactivated")
				return
			}
			actor.Name = user.DisplayName()
		}

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

func (m *JWTAuthMiddleware) userLookup() UserLookup {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.users
}

// shouldSkipAuth checks if the path should skip authentication
func (m *JWTAuthMiddleware) shouldSkipAuth(path string) bool {
	if m.skipMap[path] {
		return true
	}
	for skipPath := range m.skipMap {
		if strings.HasSuffix(skipPath, "*") && strings.HasPrefix(path, strings.TrimSuffix(skipPath, "*")) {
			return true
		}
	}
	return false
}

// extractToken extracts the bearer token from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer realm=\"API\"")
	api.RespondError(w, http.StatusUnauthorized, message)
}

// WithActor stores the acting user in ctx
func WithActor(ctx context.Context, actor claims.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext returns the authenticated user, if any
func ActorFromContext(ctx context.Context) (claims.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(claims.Actor)
	return actor, ok && actor.UserID != 0
}
