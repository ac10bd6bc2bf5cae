// Package middleware holds the per-request pipeline stages. Authenticate
// and RequireRoles compose left to right; either short-circuits the
// chain by returning a tagged error that the app error handler renders.
package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/shoplight/shoplight/internal/account"
	"github.com/shoplight/shoplight/internal/apperr"
	"github.com/shoplight/shoplight/internal/auth"
)

const bearerPrefix = "Bearer "

// Authenticate verifies the bearer session token, resolves the carried
// identity against the store and attaches the account to the request.
// Tokens issued before the account's last credential change are
// rejected, so a password reset invalidates outstanding sessions.
func Authenticate(tokens *auth.TokenIssuer, accounts *account.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(authz, bearerPrefix) {
			return apperr.Unauthorized("please login to access this route")
		}
		tokenStr := strings.TrimSpace(authz[len(bearerPrefix):])
		if tokenStr == "" {
			return apperr.Unauthorized("please login to access this route")
		}

		claims, err := tokens.Verify(tokenStr)
		if err != nil {
			return err
		}
		if claims.Purpose != auth.PurposeSession {
			return apperr.Unauthorized("invalid session token")
		}

		a, err := accounts.Resolve(c.UserContext(), claims.Subject)
		if err != nil {
			return err
		}

		// iat carries second precision, so compare against the change
		// timestamp truncated the same way.
		if claims.IssuedAt != nil && claims.IssuedAt.Time.Before(a.CredentialUpdatedAt.Truncate(time.Second)) {
			return apperr.Unauthorized("session predates a password change, please login again")
		}

		c.Locals(account.ContextKey, a)
		return c.Next()
	}
}

// RequireRoles passes the request through only when the authenticated
// account's role is one of allowed.
func RequireRoles(allowed ...account.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		a, ok := account.FromContext(c)
		if !ok {
			return apperr.Unauthorized("please login to access this route")
		}
		for _, role := range allowed {
			if a.Role == role {
				return c.Next()
			}
		}
		return apperr.Forbidden("you do not have permission to access this route")
	}
}
