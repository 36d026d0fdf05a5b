// Package app assembles the catalog service from its configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"catalog/internal/auth"
	"catalog/internal/cache"
	"catalog/internal/config"
	"catalog/internal/database"
	"catalog/internal/events"
	"catalog/internal/handlers"
	"catalog/internal/middleware"
	"catalog/internal/oauth"
	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/internal/web"
	"catalog/pkg/kafka"
	"catalog/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

// Deps are the infrastructure clients the HTTP application runs on.
type Deps struct {
	DB        *gorm.DB
	Cache     *cache.Client
	Publisher events.Publisher
	Logger    *slog.Logger
	// GitHub is nil when external sign-in is disabled.
	GitHub handlers.ProfileProvider
	// AccessLog enables the fiber request log.
	AccessLog bool
}

// App is a running catalog service with the resources it owns.
type App struct {
	Fiber   *fiber.App
	cfg     *config.Config
	logger  *slog.Logger
	closers []func() error
}

// New connects to every configured backend and assembles the service.
func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: log}

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() error { return database.Close(db) })
	if err := database.Migrate(db); err != nil {
		a.close()
		return nil, err
	}

	c := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if c != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := c.Ping(ctx); err != nil {
			log.Warn("redis unavailable, session versions will be read from the database", slog.Any("error", err))
		}
		cancel()
		a.closers = append(a.closers, c.Close)
	}

	publisher, err := a.connectBroker()
	if err != nil {
		a.close()
		return nil, err
	}

	var github handlers.ProfileProvider
	if cfg.OAuthEnabled() {
		github = oauth.NewGitHub(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.BaseURL+"/api/auth/github/callback")
	}

	a.Fiber, err = Assemble(cfg, Deps{
		DB:        db,
		Cache:     c,
		Publisher: publisher,
		Logger:    log,
		GitHub:    github,
		AccessLog: true,
	})
	if err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *App) connectBroker() (events.Publisher, error) {
	switch a.cfg.EventsBroker {
	case config.BrokerRabbitMQ:
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: a.cfg.RabbitMQURL, Exchange: a.cfg.RabbitMQExchange})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		if a.cfg.RabbitMQAuditQueue != "" {
			if err := client.Consume(a.cfg.RabbitMQAuditQueue, "#", events.AuditHandler(a.logger)); err != nil {
				return nil, err
			}
		}
		return events.NewBrokerPublisher(client), nil
	case config.BrokerKafka:
		producer, err := kafka.NewProducer(a.cfg.KafkaBrokers, a.cfg.KafkaTopic)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, producer.Close)
		return events.NewBrokerPublisher(producer), nil
	default:
		return events.Noop{}, nil
	}
}

// Listen serves HTTP on the configured port until Shutdown.
func (a *App) Listen() error {
	return a.Fiber.Listen(a.cfg.AppPort)
}

// Shutdown stops the HTTP server and releases every backend connection.
func (a *App) Shutdown() error {
	err := a.Fiber.Shutdown()
	return errors.Join(err, a.close())
}

func (a *App) close() error {
	var errs []error
	// release in reverse order of acquisition
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Assemble wires repositories, services, handlers and middleware into a fiber app.
func Assemble(cfg *config.Config, deps Deps) (*fiber.App, error) {
	if deps.Publisher == nil {
		deps.Publisher = events.Noop{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	users := repositories.NewGORMUserRepository(deps.DB)
	products := repositories.NewGORMProductRepository(deps.DB)

	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL)
	versions := services.NewSessionVersions(users, deps.Cache)

	authService, err := services.NewAuthService(users, tokens, hasher, versions, deps.Publisher)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %w", err)
	}
	userService := services.NewUserService(users, hasher, versions, deps.Publisher)
	productService := services.NewProductService(products, deps.Publisher, cfg.BaseURL)

	cookie := middleware.CookieConfig{Name: cfg.CookieName, Secure: cfg.CookieSecure}
	pages, err := web.NewPages(authService, productService, cookie, deps.GitHub != nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	if deps.AccessLog {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		}))
	}
	app.Use(middleware.RequestLogger(deps.Logger))
	app.Use(middleware.Session(authService, cookie))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(authService, cookie).RegisterRoutes(apiV1)
	handlers.NewProductHandler(productService).RegisterRoutes(apiV1)
	handlers.NewUserHandler(userService).RegisterRoutes(apiV1)

	if deps.GitHub != nil {
		handlers.NewOAuthHandler(deps.GitHub, authService, cookie).RegisterRoutes(app.Group("/api/auth/github"))
	}

	app.Use(web.Gate())
	pages.RegisterRoutes(app)

	return app, nil
}
