package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repository-api/internal/domain"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller of one request.
type Principal struct {
	User     *domain.User
	IssuedAt int64 // unix seconds the presented token was minted
}

// PrincipalFromContext retrieves the authenticated user, if any. Absence
// means the request is anonymous.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

func storePrincipal(c *fiber.Ctx, p *Principal) {
	c.Locals(principalKey, p)
}

// RequireRole ensures the authenticated user carries one of the named roles.
func RequireRole(allowed ...string) fiber.Handler {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return RenderUnauthenticated(c)
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		for _, role := range principal.User.Roles {
			if _, exists := allowedSet[role]; exists {
				return c.Next()
			}
		}
		return fiber.NewError(http.StatusForbidden, "insufficient role")
	}
}
