// Package web serves the server rendered pages and the navigation gate in front of them.
package web

import (
	"strings"

	"catalog/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

const (
	HomePath   = "/"
	SignInPath = "/sign-in"
)

// Action is what the gate does with a page request.
type Action int

const (
	Pass Action = iota
	RedirectHome
	RedirectSignIn
)

var bypassPrefixes = []string{"/api", "/static", "/health", "/favicon.ico"}

// Bypass reports whether path is served without going through the gate.
func Bypass(path string) bool {
	for _, prefix := range bypassPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// IsAuthRoute reports whether path is one of the sign-in pages.
func IsAuthRoute(path string) bool {
	return path == SignInPath
}

// Decide applies the navigation table:
//
//	signed in,  auth route       -> home
//	signed out, home             -> sign-in
//	anything else                -> pass
func Decide(loggedIn bool, path string) Action {
	authRoute := IsAuthRoute(path)
	switch {
	case loggedIn && authRoute:
		return RedirectHome
	case !loggedIn && !authRoute && path == HomePath:
		return RedirectSignIn
	default:
		return Pass
	}
}

// redirectStatus keeps the method for GET and HEAD. Other methods are turned
// into a GET of the target.
func redirectStatus(method string) int {
	if method == fiber.MethodGet || method == fiber.MethodHead {
		return fiber.StatusTemporaryRedirect
	}
	return fiber.StatusSeeOther
}

// Gate redirects page requests according to Decide.
func Gate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if Bypass(path) {
			return c.Next()
		}
		switch Decide(middleware.PrincipalFrom(c) != nil, path) {
		case RedirectHome:
			return c.Redirect(HomePath, redirectStatus(c.Method()))
		case RedirectSignIn:
			return c.Redirect(SignInPath, redirectStatus(c.Method()))
		default:
			return c.Next()
		}
	}
}
