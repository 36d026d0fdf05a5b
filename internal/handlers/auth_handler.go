package handlers

import (
	"time"

	"catalog/internal/auth"
	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for sessions.
type AuthHandler struct {
	authService *services.AuthService
	cookie      middleware.CookieConfig
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, cookie middleware.CookieConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookie:      cookie,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Token     string       `json:"token,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	User      *models.User `json:"user,omitempty"`
}

type currentSessionResponse struct {
	Authenticated bool            `json:"authenticated"`
	User          *auth.Principal `json:"user"`
}

// Procedures lists the session operations.
func (h *AuthHandler) Procedures() []Procedure {
	return []Procedure{
		{Method: fiber.MethodPost, Path: "/auth/login", Tier: auth.TierPublic, Handle: h.HandleLogin},
		{Method: fiber.MethodPost, Path: "/auth/logout", Tier: auth.TierPublic, Handle: h.HandleLogout},
		{Method: fiber.MethodGet, Path: "/auth/session", Tier: auth.TierPublic, Handle: h.HandleSession},
	}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	Mount(router, h.Procedures())
}

// HandleLogin verifies credentials, sets the session cookie and returns the token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	session, err := h.authService.IssueSession(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	middleware.SetSessionCookie(c, h.cookie, session.Token, session.ExpiresAt)
	return c.JSON(sessionResponse{Token: session.Token, ExpiresAt: &session.ExpiresAt, User: session.User})
}

// HandleLogout clears the session cookie. Tokens are stateless and stay
// valid until they expire or the user's sessions are revoked.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	middleware.ClearSessionCookie(c, h.cookie)
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleSession reports the caller's identity.
func (h *AuthHandler) HandleSession(c *fiber.Ctx) error {
	p := middleware.PrincipalFrom(c)
	return c.JSON(currentSessionResponse{Authenticated: p != nil, User: p})
}
