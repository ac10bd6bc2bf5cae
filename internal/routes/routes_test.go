package routes

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/shoplight/shoplight/internal/apperr"
	"github.com/shoplight/shoplight/internal/config"
	"github.com/shoplight/shoplight/internal/logging"
)

func devConfig() config.Config {
	return config.Config{
		AppName:       "shoplight-test",
		AppEnv:        "dev",
		TicketSecret:  []byte("test-ticket-secret"),
		TokenSecret:   []byte("test-token-secret"),
		BcryptCost:    4,
		SessionTTL:    time.Hour,
		ResetTokenTTL: time.Minute,
		CodeTTL:       10 * time.Minute,
	}
}

func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler})
	if err := Setup(app, Deps{Cfg: devConfig(), Logger: logging.Discard()}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return app
}

func TestSetupRequiresInfraOutsideDev(t *testing.T) {
	cfg := devConfig()
	cfg.AppEnv = "production"
	app := fiber.New()
	if err := Setup(app, Deps{Cfg: cfg, Logger: logging.Discard()}); err == nil {
		t.Fatal("expected setup to fail without database in production")
	}
}

func TestPing(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/ping", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected %d, got %d", fiber.StatusOK, resp.StatusCode)
	}
}

func TestProductReadsArePublic(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/products/", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected %d, got %d", fiber.StatusOK, resp.StatusCode)
	}
}

func TestProductMutationsRequireSession(t *testing.T) {
	app := setupApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/api/products/", strings.NewReader(`{"title":"X"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected %d, got %d", fiber.StatusUnauthorized, resp.StatusCode)
	}
}

func TestVariationPatchRouteRegistered(t *testing.T) {
	app := setupApp(t)

	req := httptest.NewRequest(fiber.MethodPatch, "/api/products/p1/variations/v1", strings.NewReader(`{"available":true}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected %d, got %d", fiber.StatusUnauthorized, resp.StatusCode)
	}
}
