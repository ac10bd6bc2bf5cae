package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shoplight/shoplight/internal/account"
	"github.com/shoplight/shoplight/internal/catalog"
	"github.com/shoplight/shoplight/internal/middleware"
)

// RegisterCatalogRoutes wires the product endpoints. Reads are public;
// mutations require a manager or admin session and, when Redis is
// available, an Idempotency-Key.
func RegisterCatalogRoutes(r fiber.Router, h *catalog.Handler, authenticate, idempotency fiber.Handler) {
	group := r.Group("/products")

	group.Get("/", h.ListProducts)
	group.Get("/:productId", h.GetProduct)
	group.Get("/:productId/variations", h.ListVariations)

	manage := []fiber.Handler{authenticate, middleware.RequireRoles(account.RoleManager, account.RoleAdmin)}
	if idempotency != nil {
		manage = append(manage, idempotency)
	}
	mutating := group.Group("", manage...)

	mutating.Post("/", h.CreateProduct)
	mutating.Delete("/", h.DeleteProducts)
	mutating.Patch("/:productId", h.UpdateProduct)
	mutating.Delete("/:productId", h.DeleteProduct)
	mutating.Post("/:productId/variations", h.CreateVariations)
	mutating.Patch("/:productId/variations/:variationId", h.UpdateVariation)
	mutating.Delete("/:productId/variations", h.DeleteVariations)
}
