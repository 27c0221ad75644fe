package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/repository-api/internal/api/dto"
	"github.com/spec-kit/repository-api/internal/repository"
	"github.com/spec-kit/repository-api/internal/tenancy"
)

// TenantsHandler exposes the public tenant directory endpoints.
type TenantsHandler struct {
	accounts repository.AccountRepository
}

// NewTenantsHandler constructs handler.
func NewTenantsHandler(accounts repository.AccountRepository) *TenantsHandler {
	return &TenantsHandler{accounts: accounts}
}

// Index handles GET /tenant?name=. Lookups that miss return an empty list
// rather than an error.
func (h *TenantsHandler) Index(c *fiber.Ctx) error {
	name := c.Query("name")
	if name == "" {
		return c.JSON([]dto.TenantResponse{})
	}

	account, err := h.accounts.GetByName(c.UserContext(), name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON([]dto.TenantResponse{})
		}
		return err
	}
	return c.JSON([]dto.TenantResponse{dto.NewTenantResponse(*account)})
}

// Show handles GET /tenant/:tenant_id. The resolver middleware has already
// rejected unknown tenants.
func (h *TenantsHandler) Show(c *fiber.Ctx) error {
	tc, ok := tenancy.FromFiber(c)
	if !ok {
		return errors.New("tenant not resolved")
	}
	return c.JSON(dto.NewTenantResponse(tc.Account))
}
