package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shoplight/shoplight/internal/account"
)

// RegisterAuthRoutes wires the account lifecycle endpoints. The
// code-issuing endpoints sit behind the verification-code rate limiter.
func RegisterAuthRoutes(r fiber.Router, h *account.Handler, authenticate, codeLimiter fiber.Handler) {
	group := r.Group("/auth")

	group.Post("/create-account", codeLimiter, h.Register)
	group.Post("/verify-mobile", h.VerifyMobile)
	group.Post("/login", h.Login)

	group.Post("/forgot-password", codeLimiter, h.ForgotPassword)
	group.Post("/password-reset-token", h.PasswordResetToken)
	group.Post("/reset-password", h.ResetPassword)

	group.Post("/change-password", authenticate, h.ChangePassword)
}
