package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repository-api/internal/api/dto"
	"github.com/spec-kit/repository-api/internal/auth"
	"github.com/spec-kit/repository-api/internal/service"
	"github.com/spec-kit/repository-api/internal/tenancy"
)

// SessionsHandler exposes the tenant-scoped session endpoints.
type SessionsHandler struct {
	sessions      *service.SessionService
	secureCookies bool
}

// NewSessionsHandler constructs handler.
func NewSessionsHandler(sessions *service.SessionService, secureCookies bool) *SessionsHandler {
	return &SessionsHandler{sessions: sessions, secureCookies: secureCookies}
}

// Create handles POST /tenant/:tenant_id/users/login.
func (h *SessionsHandler) Create(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidCredentials(c)
	}

	tc, ok := tenancy.FromFiber(c)
	if !ok {
		return errors.New("tenant not resolved")
	}

	session, err := h.sessions.Login(c.UserContext(), tc, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return invalidCredentials(c)
		}
		return err
	}

	h.setSessionCookies(c, tc, session)
	return c.JSON(session.Projection)
}

// Refresh handles POST /tenant/:tenant_id/users/refresh. Only the refresh
// slot is read here; the access slot never reaches this flow.
func (h *SessionsHandler) Refresh(c *fiber.Ctx) error {
	tc, ok := tenancy.FromFiber(c)
	if !ok {
		return errors.New("tenant not resolved")
	}

	raw := auth.BearerMaterial(c, auth.CookieRefresh)
	session, err := h.sessions.Refresh(c.UserContext(), tc, raw)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			h.clearSessionCookies(c, tc)
			return auth.RenderUnauthenticated(c)
		}
		return err
	}

	h.setSessionCookies(c, tc, session)
	return c.JSON(session.Projection)
}

// Destroy handles DELETE /tenant/:tenant_id/users/log_out. Logging out twice
// succeeds both times; the second call simply clears already-empty cookies.
func (h *SessionsHandler) Destroy(c *fiber.Ctx) error {
	tc, ok := tenancy.FromFiber(c)
	if !ok {
		return errors.New("tenant not resolved")
	}

	if principal, authed := auth.PrincipalFromContext(c); authed && principal.User != nil {
		if err := h.sessions.Logout(c.UserContext(), tc, principal.User.ID); err != nil {
			return err
		}
	}

	h.clearSessionCookies(c, tc)
	return c.JSON(dto.MessageResponse{Message: "Successfully logged out"})
}

// Show handles POST /tenant/:tenant_id/users/current. It reports the session
// without minting new tokens.
func (h *SessionsHandler) Show(c *fiber.Ctx) error {
	tc, ok := tenancy.FromFiber(c)
	if !ok {
		return errors.New("tenant not resolved")
	}

	principal, authed := auth.PrincipalFromContext(c)
	if !authed || principal.User == nil {
		return auth.RenderUnauthenticated(c)
	}

	projection, err := h.sessions.Current(c.UserContext(), tc, principal.User)
	if err != nil {
		return err
	}
	return c.JSON(projection)
}

func (h *SessionsHandler) setSessionCookies(c *fiber.Ctx, tc tenancy.Context, session *service.Session) {
	domain := auth.CookieDomain(tc.Account.FrontendURL, c.Hostname())
	for _, cookie := range auth.SessionCookies(
		session.AccessToken, session.RefreshToken,
		session.AccessExpires, session.RefreshExpires,
		domain, h.secureCookies,
	) {
		c.Cookie(cookie)
	}
}

func (h *SessionsHandler) clearSessionCookies(c *fiber.Ctx, tc tenancy.Context) {
	domain := auth.CookieDomain(tc.Account.FrontendURL, c.Hostname())
	for _, cookie := range auth.ClearSessionCookies(domain, h.secureCookies) {
		c.Cookie(cookie)
	}
}

func invalidCredentials(c *fiber.Ctx) error {
	return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
		"status":  http.StatusUnauthorized,
		"code":    "Invalid credentials",
		"message": "Invalid email or password.",
	})
}
