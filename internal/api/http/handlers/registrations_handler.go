package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repository-api/internal/api/dto"
	"github.com/spec-kit/repository-api/internal/auth"
	"github.com/spec-kit/repository-api/internal/service"
	"github.com/spec-kit/repository-api/internal/tenancy"
)

// RegistrationsHandler exposes user signup.
type RegistrationsHandler struct {
	sessions      *service.SessionService
	secureCookies bool
}

// NewRegistrationsHandler constructs handler.
func NewRegistrationsHandler(sessions *service.SessionService, secureCookies bool) *RegistrationsHandler {
	return &RegistrationsHandler{sessions: sessions, secureCookies: secureCookies}
}

// Create handles POST /tenant/:tenant_id/users/signup.
func (h *RegistrationsHandler) Create(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	tc, ok := tenancy.FromFiber(c)
	if !ok {
		return errors.New("tenant not resolved")
	}

	session, err := h.sessions.Register(c.UserContext(), tc, req.Email, req.Password, req.PasswordConfirmation)
	if err != nil {
		var validation *service.ValidationError
		if errors.As(err, &validation) {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
				"status":  http.StatusUnauthorized,
				"code":    "Invalid credentials",
				"message": validation.Messages,
			})
		}
		return err
	}

	domain := auth.CookieDomain(tc.Account.FrontendURL, c.Hostname())
	for _, cookie := range auth.SessionCookies(
		session.AccessToken, session.RefreshToken,
		session.AccessExpires, session.RefreshExpires,
		domain, h.secureCookies,
	) {
		c.Cookie(cookie)
	}

	return c.SendString(fmt.Sprintf("Please check your email at %s to complete your registration", session.User.Email))
}
