package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/shoplight/shoplight/internal/account"
	"github.com/shoplight/shoplight/internal/auth"
	"github.com/shoplight/shoplight/internal/catalog"
	"github.com/shoplight/shoplight/internal/config"
	"github.com/shoplight/shoplight/internal/middleware"
	"github.com/shoplight/shoplight/internal/notification"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. Outside of
// dev, Postgres and Redis are mandatory; in dev the in-memory stores
// keep the app bootable without infrastructure.
func Setup(app *fiber.App, d Deps) error {
	if !isDev(d.Cfg.AppEnv) {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	// Protocol components around the two process-wide secrets.
	hasher := auth.NewHasher(d.Cfg.BcryptCost)
	sealer := auth.NewSealer(d.Cfg.TicketSecret)
	tokens := auth.NewTokenIssuer(d.Cfg.TokenSecret, d.Cfg.SessionTTL, d.Cfg.ResetTokenTTL)
	notifier := notification.NewLoggerNotifier(d.Logger)
	codes := auth.NewCodeGenerator(d.Cfg.CodeTTL, notifier, d.Logger)

	var accountRepo account.Repository
	if d.DB != nil {
		accountRepo = account.NewPostgresRepository(d.DB)
	} else {
		accountRepo = account.NewMemoryRepository()
	}
	accounts := account.NewService(accountRepo, hasher, sealer, codes, tokens, d.Logger)
	accountHandler := account.NewHandler(accounts, d.Logger)

	var catalogRepo catalog.Repository
	if d.DB != nil {
		catalogRepo = catalog.NewPostgresRepository(d.DB)
	} else {
		catalogRepo = catalog.NewMemoryRepository()
	}
	catalogHandler := catalog.NewHandler(catalog.NewService(catalogRepo))

	api := app.Group("/api")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	authenticate := middleware.Authenticate(tokens, accounts)
	codeLimiter := middleware.CodeRateLimit(d.Cache, d.Cfg.CodeRateLimit)
	RegisterAuthRoutes(api, accountHandler, authenticate, codeLimiter)

	var idempotency fiber.Handler
	if d.Cache != nil {
		idempotency = middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	}
	RegisterCatalogRoutes(api, catalogHandler, authenticate, idempotency)

	return nil
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
