package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Cookie slots for the two token kinds. The refresh flow only ever reads the
// refresh slot; access gates only read the jwt slot.
const (
	CookieAccess  = "jwt"
	CookieRefresh = "refresh"
)

// CookieDomain decides which domain issued cookies are scoped to. The
// tenant-configured frontend domain always wins; the request host is the
// fallback.
func CookieDomain(frontendDomain, requestHost string) string {
	if frontendDomain != "" {
		return frontendDomain
	}
	return requestHost
}

// SessionCookies builds transport instructions for a freshly minted token
// pair. Setting the cookies is the HTTP layer's job.
func SessionCookies(access, refresh string, accessExpires, refreshExpires time.Time, domain string, secure bool) []*fiber.Cookie {
	return []*fiber.Cookie{
		sessionCookie(CookieAccess, access, accessExpires, domain, secure),
		sessionCookie(CookieRefresh, refresh, refreshExpires, domain, secure),
	}
}

// ClearSessionCookies overwrites both slots with already-expired values,
// used at logout and on rejected refresh attempts.
func ClearSessionCookies(domain string, secure bool) []*fiber.Cookie {
	expired := time.Unix(0, 0)
	return []*fiber.Cookie{
		sessionCookie(CookieAccess, "", expired, domain, secure),
		sessionCookie(CookieRefresh, "", expired, domain, secure),
	}
}

func sessionCookie(name, value string, expires time.Time, domain string, secure bool) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   domain,
		Expires:  expires,
		Secure:   secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}
