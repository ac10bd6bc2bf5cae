package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/shoplight/shoplight/internal/account"
	"github.com/shoplight/shoplight/internal/apperr"
	"github.com/shoplight/shoplight/internal/auth"
	"github.com/shoplight/shoplight/internal/logging"
)

type authFixture struct {
	app      *fiber.App
	accounts *account.Service
	tokens   *auth.TokenIssuer
}

func newAuthFixture(t *testing.T, sessionTTL time.Duration) authFixture {
	t.Helper()
	logger := logging.Discard()
	repo := account.NewMemoryRepository()
	sealer := auth.NewSealer([]byte("test-ticket-secret"))
	tokens := auth.NewTokenIssuer([]byte("test-token-secret"), sessionTTL, time.Minute)
	codes := auth.NewCodeGenerator(10*time.Minute, nil, logger)
	accounts := account.NewService(repo, auth.NewHasher(bcrypt.MinCost), sealer, codes, tokens, logger)

	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler})
	app.Get("/me", Authenticate(tokens, accounts), func(c *fiber.Ctx) error {
		a, _ := account.FromContext(c)
		return c.JSON(fiber.Map{"id": a.ID})
	})
	app.Get("/admin", Authenticate(tokens, accounts), RequireRoles(account.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	return authFixture{app: app, accounts: accounts, tokens: tokens}
}

func (f authFixture) sessionToken(t *testing.T, mobile string) string {
	t.Helper()
	ticket, err := f.accounts.Register(context.Background(), account.Registration{
		MobileNumber: mobile,
		Password:     "secret123",
		Profile:      account.Profile{Name: "Asha"},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	token, err := f.accounts.ConfirmMobile(context.Background(), ticket)
	if err != nil {
		t.Fatalf("confirm mobile: %v", err)
	}
	return token
}

func (f authFixture) get(t *testing.T, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := f.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestAuthenticateMissingHeader(t *testing.T) {
	f := newAuthFixture(t, time.Hour)
	if status := f.get(t, "/me", ""); status != fiber.StatusUnauthorized {
		t.Fatalf("expected %d, got %d", fiber.StatusUnauthorized, status)
	}
}

func TestAuthenticateMalformedToken(t *testing.T) {
	f := newAuthFixture(t, time.Hour)
	if status := f.get(t, "/me", "garbage"); status != fiber.StatusUnauthorized {
		t.Fatalf("expected %d, got %d", fiber.StatusUnauthorized, status)
	}
}

func TestAuthenticateExpiredToken(t *testing.T) {
	f := newAuthFixture(t, -time.Minute)
	token := f.sessionToken(t, "9876543210")
	if status := f.get(t, "/me", token); status != fiber.StatusUnauthorized {
		t.Fatalf("expected %d, got %d", fiber.StatusUnauthorized, status)
	}
}

func TestAuthenticateRejectsResetToken(t *testing.T) {
	f := newAuthFixture(t, time.Hour)
	f.sessionToken(t, "9876543210")

	a, err := f.accounts.Resolve(context.Background(), mustIdentity(t, f, "9876543210"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	reset, err := f.tokens.IssuePasswordReset(a.ID)
	if err != nil {
		t.Fatalf("issue reset token: %v", err)
	}
	if status := f.get(t, "/me", reset); status != fiber.StatusUnauthorized {
		t.Fatalf("expected %d, got %d", fiber.StatusUnauthorized, status)
	}
}

func TestAuthenticateAcceptsValidSession(t *testing.T) {
	f := newAuthFixture(t, time.Hour)
	token := f.sessionToken(t, "9876543210")
	if status := f.get(t, "/me", token); status != fiber.StatusOK {
		t.Fatalf("expected %d, got %d", fiber.StatusOK, status)
	}
}

func TestAuthenticateRejectsSessionBeforePasswordChange(t *testing.T) {
	f := newAuthFixture(t, time.Hour)
	token := f.sessionToken(t, "9876543210")

	id := mustIdentity(t, f, "9876543210")
	// The credential change lands in a later second than the token's iat.
	time.Sleep(1100 * time.Millisecond)
	if err := f.accounts.ChangePassword(context.Background(), id, "secret123", "brandnewpass"); err != nil {
		t.Fatalf("change password: %v", err)
	}

	if status := f.get(t, "/me", token); status != fiber.StatusUnauthorized {
		t.Fatalf("expected %d, got %d", fiber.StatusUnauthorized, status)
	}
}

func TestRequireRolesForbidsCustomer(t *testing.T) {
	f := newAuthFixture(t, time.Hour)
	token := f.sessionToken(t, "9876543210")
	if status := f.get(t, "/admin", token); status != fiber.StatusForbidden {
		t.Fatalf("expected %d, got %d", fiber.StatusForbidden, status)
	}
}

func mustIdentity(t *testing.T, f authFixture, mobile string) string {
	t.Helper()
	token, err := f.accounts.Login(context.Background(), mobile, "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := f.tokens.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	return claims.Subject
}
