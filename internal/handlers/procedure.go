package handlers

import (
	"catalog/internal/auth"
	"catalog/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Procedure is one API operation together with the tier it requires.
type Procedure struct {
	Method string
	Path   string
	Tier   auth.Tier
	Handle fiber.Handler
}

// Mount registers every procedure on router behind the shared authorization gate.
func Mount(router fiber.Router, procedures []Procedure) {
	for _, p := range procedures {
		router.Add(p.Method, p.Path, middleware.Authorize(p.Tier), p.Handle)
	}
}
