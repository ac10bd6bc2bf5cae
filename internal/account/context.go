package account

import "github.com/gofiber/fiber/v2"

// ContextKey is the Fiber locals key under which the authenticate
// middleware stores the resolved account.
const ContextKey = "account"

// FromContext returns the account attached to the request, if any.
func FromContext(c *fiber.Ctx) (Account, bool) {
	a, ok := c.Locals(ContextKey).(Account)
	return a, ok
}
