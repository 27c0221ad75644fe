package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/repository-api/internal/repository"
	"github.com/spec-kit/repository-api/internal/tenancy"
)

// RevocationChecker reports whether tokens minted before a per-user watermark
// should be rejected.
type RevocationChecker interface {
	Revoked(ctx context.Context, schema string, userID int64, issuedAt time.Time) bool
}

// Middleware authenticates requests from bearer material. It runs after the
// tenant resolver; the user lookup uses the resolved tenant's schema.
type Middleware struct {
	codec       *Codec
	users       repository.UserRepository
	revocations RevocationChecker
	logger      *zap.Logger
}

// NewMiddleware constructs the session authentication middleware.
func NewMiddleware(codec *Codec, users repository.UserRepository, revocations RevocationChecker, logger *zap.Logger) *Middleware {
	return &Middleware{codec: codec, users: users, revocations: revocations, logger: logger}
}

// Authenticate resolves bearer material to a principal when possible. A
// missing, expired or forged token leaves the request anonymous; endpoints
// that require identity reject anonymous requests via RequireSession. The
// expired/forged distinction is logged and never surfaced.
func (m *Middleware) Authenticate(c *fiber.Ctx) error {
	tc, ok := tenancy.FromFiber(c)
	if !ok {
		// Tenant resolution is load-bearing and must run first.
		return errors.New("tenant not resolved before authentication")
	}

	raw := BearerMaterial(c, CookieAccess)
	if raw == "" {
		return c.Next()
	}

	principal, err := m.resolve(c.UserContext(), tc.Schema(), raw)
	if err != nil {
		return err
	}
	if principal != nil {
		storePrincipal(c, principal)
	}
	return c.Next()
}

// resolve turns a raw token into a principal, or nil when the token must be
// treated as absent. Decoding uses the resolved tenant's key, so a token
// replayed against another tenant fails as forged even when user ids collide
// across tenant schemas. Only unexpected failures return an error.
func (m *Middleware) resolve(ctx context.Context, schema, raw string) (*Principal, error) {
	claims, err := m.codec.Decode(schema, raw)
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenExpired):
			m.logger.Info("expired token", zap.String("schema", schema))
		default:
			m.logger.Warn("malformed or forged token", zap.String("schema", schema))
		}
		return nil, nil
	}

	issuedAt := time.Time{}
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}
	if m.revocations != nil && m.revocations.Revoked(ctx, schema, claims.UserID, issuedAt) {
		m.logger.Info("revoked token", zap.String("schema", schema), zap.Int64("user_id", claims.UserID))
		return nil, nil
	}

	user, err := m.users.GetByID(ctx, schema, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Valid token whose subject was deleted, or a token replayed
			// against another tenant's schema.
			m.logger.Info("token subject not found", zap.String("schema", schema), zap.Int64("user_id", claims.UserID))
			return nil, nil
		}
		return nil, err
	}

	return &Principal{User: user, IssuedAt: issuedAt.Unix()}, nil
}

// RequireSession gates endpoints that need an authenticated caller. The
// rejection is generic regardless of which check failed.
func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return RenderUnauthenticated(c)
		}
		return c.Next()
	}
}

// BearerMaterial extracts the raw token for the named cookie slot, preferring
// the Authorization header.
func BearerMaterial(c *fiber.Ctx, cookieName string) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		// Some client flows send the raw token without a scheme.
		if len(parts) == 1 {
			return strings.TrimSpace(parts[0])
		}
	}
	return c.Cookies(cookieName)
}

// RenderUnauthenticated writes the generic 401 session error body.
func RenderUnauthenticated(c *fiber.Ctx) error {
	return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
		"status":  http.StatusUnauthorized,
		"code":    "Invalid credentials",
		"message": "Invalid token",
	})
}
