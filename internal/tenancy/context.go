package tenancy

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repository-api/internal/domain"
)

const localsKey = "tenant_context"

// Context is the resolved tenant for one request. It is stored per request
// and threaded explicitly; there is no process-global active tenant, so
// concurrent requests for different tenants never observe each other.
type Context struct {
	Account domain.Account
}

// Schema returns the tenant's isolated database schema. Schemas are named by
// the tenant's external identifier, mirroring how the directory provisions
// them.
func (c Context) Schema() string {
	return c.Account.Tenant
}

// Store attaches the resolved tenant to the request.
func Store(c *fiber.Ctx, tc Context) {
	c.Locals(localsKey, tc)
}

// FromFiber retrieves the resolved tenant for the current request.
func FromFiber(c *fiber.Ctx) (Context, bool) {
	val := c.Locals(localsKey)
	if val == nil {
		return Context{}, false
	}
	tc, ok := val.(Context)
	return tc, ok
}
