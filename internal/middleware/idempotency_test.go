package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/shoplight/shoplight/internal/logging"
)

func setupIdempotencyApp(t *testing.T) (*fiber.App, *atomic.Int32, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	var handled atomic.Int32
	app := fiber.New()
	app.Use(Idempotency(cache, time.Minute, logging.Discard()))
	app.Post("/products", func(c *fiber.Ctx) error {
		handled.Add(1)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success"})
	})

	return app, &handled, func() {
		cache.Close()
		mr.Close()
	}
}

func postProduct(t *testing.T, app *fiber.App, key string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/products", strings.NewReader("{}"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if key != "" {
		req.Header.Set(idempotencyKeyHeader, key)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode, string(body)
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	app, _, cleanup := setupIdempotencyApp(t)
	defer cleanup()

	if status, _ := postProduct(t, app, ""); status != fiber.StatusBadRequest {
		t.Fatalf("expected %d, got %d", fiber.StatusBadRequest, status)
	}
}

func TestIdempotencyReplaysResponseWithoutRerunningHandler(t *testing.T) {
	app, handled, cleanup := setupIdempotencyApp(t)
	defer cleanup()

	status, body := postProduct(t, app, "abc123")
	if status != fiber.StatusCreated {
		t.Fatalf("expected %d, got %d", fiber.StatusCreated, status)
	}

	replayStatus, replayBody := postProduct(t, app, "abc123")
	if replayStatus != status || replayBody != body {
		t.Fatalf("replay mismatch: %d %q vs %d %q", replayStatus, replayBody, status, body)
	}
	if got := handled.Load(); got != 1 {
		t.Fatalf("handler ran %d times, want 1", got)
	}
}
