package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"catalog/internal/apperrors"
	"catalog/internal/auth"

	"github.com/gofiber/fiber/v2"
)

const principalKey = "principal"

// SessionResolver turns a session token into the caller's identity.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*auth.Principal, error)
}

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// Session resolves the session token carried by the request, if any, and
// stores the principal for later handlers. Requests without a valid session
// continue anonymously. A rejected session cookie is cleared.
func Session(resolver SessionResolver, cookie CookieConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, fromCookie := sessionToken(c, cookie.Name)
		if token == "" {
			return c.Next()
		}

		principal, err := resolver.ResolveSession(c.UserContext(), token)
		if err != nil {
			if !errors.Is(err, apperrors.ErrUnauthorized) {
				return err
			}
			if fromCookie {
				ClearSessionCookie(c, cookie)
			}
			return c.Next()
		}

		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// sessionToken prefers an Authorization bearer token over the cookie.
func sessionToken(c *fiber.Ctx, cookieName string) (string, bool) {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1]), false
		}
	}
	return c.Cookies(cookieName), true
}

// PrincipalFrom returns the caller identity, or nil for anonymous requests.
func PrincipalFrom(c *fiber.Ctx) *auth.Principal {
	p, _ := c.Locals(principalKey).(*auth.Principal)
	return p
}

// SetSessionCookie stores token in the session cookie until expiresAt.
func SetSessionCookie(c *fiber.Ctx, cfg CookieConfig, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     cfg.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   cfg.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *fiber.Ctx, cfg CookieConfig) {
	c.Cookie(&fiber.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   cfg.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
