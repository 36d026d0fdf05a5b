package web

import (
	"bytes"
	"embed"
	"encoding/base64"
	"errors"
	"html/template"

	"catalog/internal/apperrors"
	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/sanitize"
	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"index.html", "sign_in.html", "product.html", "not_found.html"}

// Pages renders the HTML front end.
type Pages struct {
	auth         *services.AuthService
	products     *services.ProductService
	cookie       middleware.CookieConfig
	oauthEnabled bool
	templates    map[string]*template.Template
}

// NewPages parses the embedded templates.
func NewPages(authService *services.AuthService, products *services.ProductService, cookie middleware.CookieConfig,
	oauthEnabled bool) (*Pages, error) {
	templates := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, err
		}
		templates[name] = t
	}
	return &Pages{
		auth:         authService,
		products:     products,
		cookie:       cookie,
		oauthEnabled: oauthEnabled,
		templates:    templates,
	}, nil
}

// RegisterRoutes registers the page routes.
func (p *Pages) RegisterRoutes(router fiber.Router) {
	router.Get(HomePath, p.HandleIndex)
	router.Get(SignInPath, p.HandleSignInForm)
	router.Post(SignInPath, p.HandleSignIn)
	router.Post("/sign-out", p.HandleSignOut)
	router.Get("/product/:id", p.HandleProduct)
}

type layoutData struct {
	SignedIn bool
}

type indexData struct {
	layoutData
	Products []models.Product
}

type signInData struct {
	layoutData
	Email        string
	Error        string
	OAuthEnabled bool
}

type productData struct {
	layoutData
	Product     *models.Product
	Ingredients template.HTML
	QRCode      template.URL
	URL         string
}

type notFoundData struct {
	layoutData
	Message string
}

func (p *Pages) render(c *fiber.Ctx, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := p.templates[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}

// HandleIndex lists the products.
func (p *Pages) HandleIndex(c *fiber.Ctx) error {
	if middleware.PrincipalFrom(c) == nil {
		return c.Redirect(SignInPath, fiber.StatusTemporaryRedirect)
	}
	products, err := p.products.List(c.UserContext())
	if err != nil {
		return err
	}
	return p.render(c, fiber.StatusOK, "index.html", indexData{layoutData: layoutData{SignedIn: true}, Products: products})
}

// HandleSignInForm shows the credential form.
func (p *Pages) HandleSignInForm(c *fiber.Ctx) error {
	return p.render(c, fiber.StatusOK, "sign_in.html", signInData{OAuthEnabled: p.oauthEnabled})
}

// HandleSignIn verifies the submitted credentials and starts a session.
func (p *Pages) HandleSignIn(c *fiber.Ctx) error {
	email := c.FormValue("email")
	session, err := p.auth.IssueSession(c.UserContext(), email, c.FormValue("password"))
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			return p.render(c, fiber.StatusUnauthorized, "sign_in.html", signInData{
				Email:        email,
				Error:        apperrors.From(err).Message,
				OAuthEnabled: p.oauthEnabled,
			})
		}
		return err
	}
	middleware.SetSessionCookie(c, p.cookie, session.Token, session.ExpiresAt)
	return c.Redirect(HomePath, fiber.StatusSeeOther)
}

// HandleSignOut ends the browser session.
func (p *Pages) HandleSignOut(c *fiber.Ctx) error {
	middleware.ClearSessionCookie(c, p.cookie)
	return c.Redirect(SignInPath, fiber.StatusSeeOther)
}

// HandleProduct shows a product with its sanitized ingredients and QR code.
func (p *Pages) HandleProduct(c *fiber.Ctx) error {
	if middleware.PrincipalFrom(c) == nil {
		return c.Redirect(SignInPath, fiber.StatusTemporaryRedirect)
	}
	layout := layoutData{SignedIn: true}

	product, err := p.products.Get(c.UserContext(), c.Params("id"))
	if errors.Is(err, apperrors.ErrNotFound) {
		return p.render(c, fiber.StatusNotFound, "not_found.html", notFoundData{layoutData: layout, Message: "This product does not exist."})
	}
	if err != nil {
		return err
	}

	qr, err := p.products.RenderQRCode(product)
	if err != nil {
		return err
	}

	return p.render(c, fiber.StatusOK, "product.html", productData{
		layoutData:  layout,
		Product:     product,
		Ingredients: template.HTML(sanitize.Ingredients(product.Ingredients)),
		QRCode:      template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(qr.PNG)),
		URL:         qr.URL,
	})
}
