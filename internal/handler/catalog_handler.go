package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tricommerce/internal/middleware"
	"tricommerce/internal/model"
	"tricommerce/internal/service"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(s service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: s}
}

type RestockRequest struct {
	Quantity int `json:"quantity"`
}

type SellerStatusRequest struct {
	Status model.SellerStatus `json:"status" validate:"required"`
}

// Browse lists Active products for customers
// GET /api/v1/products
func (h *CatalogHandler) Browse(c *fiber.Ctx) error {
	products, err := h.catalogService.ListProducts(c.UserContext(), model.ProductActive, nil)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// GetProduct
// GET /api/v1/products/:sku
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.catalogService.GetProduct(c.UserContext(), c.Params("sku"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// CreateProduct lists a new product in Pending status
// POST /api/v1/products
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	actor, _ := middleware.ActorFrom(c)

	var input service.ProductInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	product, err := h.catalogService.CreateProduct(c.UserContext(), actor.ID, input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created", "data": product})
}

// SellerProducts
// GET /api/v1/seller/products?status=
func (h *CatalogHandler) SellerProducts(c *fiber.Ctx) error {
	actor, _ := middleware.ActorFrom(c)
	products, err := h.catalogService.ListProducts(c.UserContext(), model.ProductStatus(c.Query("status")), &actor.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// AdminProducts
// GET /api/v1/admin/products?status=
func (h *CatalogHandler) AdminProducts(c *fiber.Ctx) error {
	products, err := h.catalogService.ListProducts(c.UserContext(), model.ProductStatus(c.Query("status")), nil)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// Toggle flips a product between Active and Inactive
// POST /api/v1/products/:sku/toggle
func (h *CatalogHandler) Toggle(c *fiber.Ctx) error {
	actor, _ := middleware.ActorFrom(c)
	status, err := h.catalogService.ToggleStatus(c.UserContext(), c.Params("sku"), actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"sku": c.Params("sku"), "status": status})
}

// Restock
// POST /api/v1/products/:sku/restock
func (h *CatalogHandler) Restock(c *fiber.Ctx) error {
	actor, _ := middleware.ActorFrom(c)

	var req RestockRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	product, err := h.catalogService.Restock(c.UserContext(), c.Params("sku"), req.Quantity, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Stock updated", "data": product})
}

// Movements returns the stock ledger of a product
// GET /api/v1/products/:sku/movements
func (h *CatalogHandler) Movements(c *fiber.Ctx) error {
	actor, _ := middleware.ActorFrom(c)
	movements, err := h.catalogService.Movements(c.UserContext(), c.Params("sku"), actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(movements)
}

// Approve
// POST /api/v1/admin/products/:sku/approve
func (h *CatalogHandler) Approve(c *fiber.Ctx) error {
	actor, _ := middleware.ActorFrom(c)
	if err := h.catalogService.Approve(c.UserContext(), c.Params("sku"), actor); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product approved", "sku": c.Params("sku")})
}

// ApproveAll
// POST /api/v1/admin/products/approve-all
func (h *CatalogHandler) ApproveAll(c *fiber.Ctx) error {
	actor, _ := middleware.ActorFrom(c)
	n, err := h.catalogService.ApproveAll(c.UserContext(), actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"approved": n})
}

// Categories
// GET /api/v1/categories
func (h *CatalogHandler) Categories(c *fiber.Ctx) error {
	categories, err := h.catalogService.ListCategories(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(categories)
}

// Cities
// GET /api/v1/cities
func (h *CatalogHandler) Cities(c *fiber.Ctx) error {
	cities, err := h.catalogService.ListCities(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cities)
}

// Banks
// GET /api/v1/banks
func (h *CatalogHandler) Banks(c *fiber.Ctx) error {
	banks, err := h.catalogService.ListBanks(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(banks)
}

// Sellers
// GET /api/v1/admin/sellers
func (h *CatalogHandler) Sellers(c *fiber.Ctx) error {
	sellers, err := h.catalogService.ListSellers(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sellers)
}

// SetSellerStatus
// PUT /api/v1/admin/sellers/:id/status
func (h *CatalogHandler) SetSellerStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid seller ID")
	}
	actor, _ := middleware.ActorFrom(c)

	var req SellerStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.catalogService.SetSellerAccountStatus(c.UserContext(), id, req.Status, actor); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Seller status updated", "status": req.Status})
}
