package handlers

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"time"

	"catalog/internal/apperrors"
	"catalog/internal/logger"
	"catalog/internal/middleware"
	"catalog/internal/oauth"
	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateTTL    = 10 * time.Minute
)

// ProfileProvider runs an external authorization code flow.
type ProfileProvider interface {
	AuthCodeURL(state string) string
	Profile(ctx context.Context, code string) (*oauth.Profile, error)
}

// OAuthHandler signs users in through an external provider.
type OAuthHandler struct {
	provider    ProfileProvider
	authService *services.AuthService
	cookie      middleware.CookieConfig
}

// NewOAuthHandler creates a new OAuthHandler.
func NewOAuthHandler(provider ProfileProvider, authService *services.AuthService, cookie middleware.CookieConfig) *OAuthHandler {
	return &OAuthHandler{
		provider:    provider,
		authService: authService,
		cookie:      cookie,
	}
}

// RegisterRoutes registers the login and callback routes on router.
func (h *OAuthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/login", h.HandleLogin)
	router.Get("/callback", h.HandleCallback)
}

// HandleLogin redirects to the provider's consent page.
func (h *OAuthHandler) HandleLogin(c *fiber.Ctx) error {
	state := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(oauthStateTTL),
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect(h.provider.AuthCodeURL(state), fiber.StatusTemporaryRedirect)
}

// HandleCallback completes the flow, issues a session and returns to the home page.
func (h *OAuthHandler) HandleCallback(c *fiber.Ctx) error {
	state := c.Cookies(oauthStateCookie)
	c.ClearCookie(oauthStateCookie)
	if state == "" || subtle.ConstantTimeCompare([]byte(state), []byte(c.Query("state"))) != 1 {
		return apperrors.Unauthorized("invalid oauth state")
	}

	code := c.Query("code")
	if code == "" {
		return apperrors.Unauthorized("missing authorization code")
	}

	profile, err := h.provider.Profile(c.UserContext(), code)
	if err != nil {
		logger.FromContext(c.UserContext()).Warn("oauth profile lookup failed", slog.Any("error", err))
		return apperrors.Unauthorized("external sign-in failed")
	}

	session, err := h.authService.IssueExternalSession(c.UserContext(), profile)
	if err != nil {
		return err
	}

	middleware.SetSessionCookie(c, h.cookie, session.Token, session.ExpiresAt)
	return c.Redirect("/", fiber.StatusSeeOther)
}
