package auth_test

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/repository-api/internal/auth"
)

func TestCookieDomainPrefersTenantFrontend(t *testing.T) {
	assert.Equal(t, "repo.example.org", auth.CookieDomain("repo.example.org", "api.internal"))
}

func TestCookieDomainFallsBackToRequestHost(t *testing.T) {
	assert.Equal(t, "api.internal", auth.CookieDomain("", "api.internal"))
}

func TestSessionCookies(t *testing.T) {
	accessExpires := time.Now().Add(time.Hour)
	refreshExpires := time.Now().Add(168 * time.Hour)

	cookies := auth.SessionCookies("acc", "ref", accessExpires, refreshExpires, "repo.example.org", true)
	require.Len(t, cookies, 2)

	access, refresh := cookies[0], cookies[1]
	assert.Equal(t, auth.CookieAccess, access.Name)
	assert.Equal(t, "acc", access.Value)
	assert.Equal(t, accessExpires, access.Expires)
	assert.Equal(t, auth.CookieRefresh, refresh.Name)
	assert.Equal(t, "ref", refresh.Value)
	assert.Equal(t, refreshExpires, refresh.Expires)

	for _, cookie := range cookies {
		assert.Equal(t, "/", cookie.Path)
		assert.Equal(t, "repo.example.org", cookie.Domain)
		assert.True(t, cookie.HTTPOnly)
		assert.True(t, cookie.Secure)
		assert.Equal(t, fiber.CookieSameSiteLaxMode, cookie.SameSite)
	}
}

func TestSessionCookiesInsecureOutsideProduction(t *testing.T) {
	cookies := auth.SessionCookies("acc", "ref", time.Now(), time.Now(), "localhost", false)
	for _, cookie := range cookies {
		assert.False(t, cookie.Secure)
		assert.True(t, cookie.HTTPOnly)
	}
}

func TestClearSessionCookies(t *testing.T) {
	cookies := auth.ClearSessionCookies("repo.example.org", true)
	require.Len(t, cookies, 2)

	for _, cookie := range cookies {
		assert.Empty(t, cookie.Value)
		assert.True(t, cookie.Expires.Before(time.Now()))
		assert.Equal(t, "repo.example.org", cookie.Domain)
	}
}
