package handler

import (
	"github.com/gofiber/fiber/v2"

	"tricommerce/internal/middleware"
	"tricommerce/internal/model"
	"tricommerce/internal/ws"
	"tricommerce/pkg/jwt"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth      *AuthHandler
	Cart      *CartHandler
	Order     *OrderHandler
	Catalog   *CatalogHandler
	Dashboard *DashboardHandler
	// Hub is optional; without it /ws is not mounted.
	Hub *ws.Hub
}

// NewApp returns a fiber app that renders handler errors as JSON.
func NewApp(name string) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      name,
		ErrorHandler: ErrorHandler,
	})
}

// Register mounts every route under /api/v1.
func Register(app *fiber.App, h Handlers, tokens *jwt.Manager) {
	api := app.Group("/api/v1")
	requireAuth := middleware.RequireAuth(tokens)
	priv := middleware.RequirePrivilege

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/customers", h.Auth.RegisterCustomer)
	auth.Post("/sellers", h.Auth.RegisterSeller)
	auth.Post("/validate-token", h.Auth.ValidateToken)
	auth.Post("/:role/login", h.Auth.Login)

	// Registration forms load these before the user has a token.
	api.Get("/cities", h.Catalog.Cities)
	api.Get("/banks", h.Catalog.Banks)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)

	protected.Get("/statuses", h.Order.Statuses)
	protected.Get("/categories", h.Catalog.Categories)
	protected.Get("/products", h.Catalog.Browse)
	protected.Get("/products/:sku", h.Catalog.GetProduct)

	// Customer. Role checks are per route: a group with an empty prefix would
	// apply its middleware to every later route.
	onlyCustomer := middleware.RequireRole(model.RoleCustomer)
	protected.Put("/me", onlyCustomer, priv(model.PrivProfileUpdate), h.Auth.UpdateProfile)
	protected.Get("/cart", onlyCustomer, priv(model.PrivCartManage), h.Cart.GetCart)
	protected.Post("/cart", onlyCustomer, priv(model.PrivCartManage), h.Cart.AddItem)
	protected.Put("/cart/:sku", onlyCustomer, priv(model.PrivCartManage), h.Cart.SetQuantity)
	protected.Delete("/cart/:sku", onlyCustomer, priv(model.PrivCartManage), h.Cart.RemoveItem)
	protected.Post("/orders", onlyCustomer, priv(model.PrivOrderPlace), h.Order.Checkout)
	protected.Get("/orders/mine", onlyCustomer, priv(model.PrivOrderView), h.Order.MyOrders)

	// Orders, visibility is enforced per role by the service
	protected.Get("/orders", middleware.RequireRole(model.RoleSeller, model.RoleAdmin), priv(model.PrivOrderView), h.Order.ListOrders)
	protected.Get("/orders/:id", priv(model.PrivOrderView), h.Order.GetOrder)
	protected.Get("/orders/:id/history", priv(model.PrivOrderView), h.Order.History)
	protected.Post("/orders/:id/cancel", priv(model.PrivOrderCancel), h.Order.Cancel)
	protected.Post("/orders/:id/ship", priv(model.PrivOrderProcess), h.Order.Ship)
	protected.Post("/orders/:id/deliver", priv(model.PrivOrderProcess), h.Order.Deliver)

	// Seller
	protected.Post("/products", priv(model.PrivProductCreate), h.Catalog.CreateProduct)
	protected.Post("/products/:sku/toggle", priv(model.PrivProductToggle), h.Catalog.Toggle)
	protected.Post("/products/:sku/restock", priv(model.PrivProductRestock), h.Catalog.Restock)
	protected.Get("/products/:sku/movements", priv(model.PrivMovementView), h.Catalog.Movements)
	seller := protected.Group("/seller", middleware.RequireRole(model.RoleSeller))
	seller.Get("/products", priv(model.PrivProductView), h.Catalog.SellerProducts)
	seller.Get("/dashboard", priv(model.PrivDashboardView), h.Dashboard.GetSellerStats)

	// Admin
	admin := protected.Group("/admin", middleware.RequireRole(model.RoleAdmin))
	admin.Get("/products", priv(model.PrivProductView), h.Catalog.AdminProducts)
	admin.Post("/products/approve-all", priv(model.PrivProductApprove), h.Catalog.ApproveAll)
	admin.Post("/products/:sku/approve", priv(model.PrivProductApprove), h.Catalog.Approve)
	admin.Get("/sellers", priv(model.PrivSellerManage), h.Catalog.Sellers)
	admin.Put("/sellers/:id/status", priv(model.PrivSellerManage), h.Catalog.SetSellerStatus)

	if h.Hub != nil {
		app.Use("/ws", ws.Upgrade)
		app.Get("/ws", h.Hub.Handler())
	}
}
