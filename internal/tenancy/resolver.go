package tenancy

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/repository-api/internal/repository"
)

// Resolver maps the tenant path parameter to a tenant context before any
// authentication runs. Unknown tenants are rejected here and never reach the
// authentication step.
type Resolver struct {
	accounts repository.AccountRepository
	logger   *zap.Logger
}

// NewResolver constructs the tenant resolution middleware.
func NewResolver(accounts repository.AccountRepository, logger *zap.Logger) *Resolver {
	return &Resolver{accounts: accounts, logger: logger}
}

// Handle resolves the :tenant_id path parameter and stores the tenant context
// for the remainder of the request. Every later data access, including the
// authentication lookup, uses the schema it carries.
func (r *Resolver) Handle(c *fiber.Ctx) error {
	tenantID := c.Params("tenant_id")
	if tenantID == "" {
		return notFound(c, tenantID)
	}

	account, err := r.accounts.GetByTenant(c.UserContext(), tenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Info("unknown tenant", zap.String("tenant", tenantID))
			return notFound(c, tenantID)
		}
		return err
	}

	Store(c, Context{Account: *account})
	return c.Next()
}

// The response status is 404, but the body's status field is "400": clients
// of the original API match on that exact string.
func notFound(c *fiber.Ctx, tenantID string) error {
	return c.Status(http.StatusNotFound).JSON(fiber.Map{
		"error": fiber.Map{
			"status":  "400",
			"code":    "not_found",
			"message": fmt.Sprintf("Couldn't find Account with 'tenant uuid'=%s", tenantID),
		},
	})
}
