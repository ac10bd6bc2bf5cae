package catalog

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/shoplight/shoplight/internal/apperr"
)

// Handler exposes the catalog endpoints.
type Handler struct {
	svc *Service
}

// NewHandler constructs a catalog HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createProductRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Brand       string `json:"brand"`
	CategoryID  string `json:"categoryId"`
}

// CreateProduct inserts a new product.
func (h *Handler) CreateProduct(c *fiber.Ctx) error {
	var req createProductRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.InvalidInput("invalid request body")
	}
	if req.Title == "" {
		return apperr.InvalidInput("please enter the product title")
	}
	if len(req.Title) > 240 {
		return apperr.InvalidInput("title must be at most 240 characters")
	}
	if req.Description == "" {
		return apperr.InvalidInput("please add the description")
	}
	if req.Brand == "" {
		return apperr.InvalidInput("brand name is required")
	}
	if req.CategoryID == "" {
		return apperr.InvalidInput("please add the category")
	}

	p, err := h.svc.CreateProduct(c.UserContext(), CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Brand:       req.Brand,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"product": p},
	})
}

// ListProducts returns the projected product list.
func (h *Handler) ListProducts(c *fiber.Ctx) error {
	products, err := h.svc.ListProducts(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data": fiber.Map{
			"length":   len(products),
			"products": products,
		},
	})
}

// GetProduct returns one product.
func (h *Handler) GetProduct(c *fiber.Ctx) error {
	p, err := h.svc.GetProduct(c.UserContext(), c.Params("productId"))
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"product": p},
	})
}

// UpdateProduct applies a partial update to one product.
func (h *Handler) UpdateProduct(c *fiber.Ctx) error {
	var upd Update
	if err := c.BodyParser(&upd); err != nil {
		return apperr.InvalidInput("invalid request body")
	}
	if upd.Title != nil && len(*upd.Title) > 240 {
		return apperr.InvalidInput("title must be at most 240 characters")
	}
	if upd.StockQuantity != nil && *upd.StockQuantity < 0 {
		return apperr.InvalidInput("provide a valid stock quantity")
	}

	if err := h.svc.UpdateProduct(c.UserContext(), c.Params("productId"), upd); err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "success"})
}

// DeleteProduct removes one product.
func (h *Handler) DeleteProduct(c *fiber.Ctx) error {
	if err := h.svc.DeleteProduct(c.UserContext(), c.Params("productId")); err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "product is deleted",
	})
}

type deleteProductsRequest struct {
	ProductIDs []string `json:"productIds"`
}

// DeleteProducts removes a batch of products.
func (h *Handler) DeleteProducts(c *fiber.Ctx) error {
	var req deleteProductsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.InvalidInput("invalid request body")
	}
	if len(req.ProductIDs) == 0 {
		return apperr.InvalidInput("please provide the product ids")
	}

	deleted, err := h.svc.DeleteProducts(c.UserContext(), req.ProductIDs)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"deleted": deleted},
	})
}

type variationsRequest struct {
	Attributes []Attribute `json:"attributes"`
}

// CreateVariations expands the attributes into variations on the product.
func (h *Handler) CreateVariations(c *fiber.Ctx) error {
	var req variationsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.InvalidInput("invalid request body")
	}
	if len(req.Attributes) == 0 {
		return apperr.InvalidInput("add at least one attribute")
	}

	p, err := h.svc.ReplaceVariations(c.UserContext(), c.Params("productId"), req.Attributes)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"product": p},
	})
}

// ListVariations returns the variations of one product.
func (h *Handler) ListVariations(c *fiber.Ctx) error {
	p, err := h.svc.GetProduct(c.UserContext(), c.Params("productId"))
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"variations": p.Variations},
	})
}

// UpdateVariation patches price and stock fields on a single variation.
func (h *Handler) UpdateVariation(c *fiber.Ctx) error {
	var upd VariationUpdate
	if err := c.BodyParser(&upd); err != nil {
		return apperr.InvalidInput("invalid request body")
	}
	err := h.svc.UpdateVariation(c.UserContext(), c.Params("productId"), c.Params("variationId"), upd)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "success"})
}

// DeleteVariations clears all attributes and variations of one product.
func (h *Handler) DeleteVariations(c *fiber.Ctx) error {
	if err := h.svc.ClearVariations(c.UserContext(), c.Params("productId")); err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "success"})
}
