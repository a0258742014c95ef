package handler

import (
	"github.com/gofiber/fiber/v2"

	"tricommerce/internal/middleware"
	"tricommerce/internal/model"
	"tricommerce/internal/service"
	"tricommerce/pkg/jwt"
)

type AuthHandler struct {
	authService service.AuthService
	tokens      *jwt.Manager
}

func NewAuthHandler(authService service.AuthService, tokens *jwt.Manager) *AuthHandler {
	return &AuthHandler{authService: authService, tokens: tokens}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates one of the three account types
// POST /api/v1/auth/:role/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	role, ok := model.ParseRole(c.Params("role"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unknown account type"})
	}

	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	response, err := h.authService.Login(c.UserContext(), role, req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(response)
}

// RegisterCustomer
// POST /api/v1/auth/customers
func (h *AuthHandler) RegisterCustomer(c *fiber.Ctx) error {
	var req service.CustomerRegistration
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	customer, err := h.authService.RegisterCustomer(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Customer registered", "data": customer})
}

// RegisterSeller creates a seller account awaiting admin approval
// POST /api/v1/auth/sellers
func (h *AuthHandler) RegisterSeller(c *fiber.Ctx) error {
	var req service.SellerRegistration
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	seller, err := h.authService.RegisterSeller(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Seller registered, awaiting approval",
		"data":    seller,
	})
}

// UpdateProfile
// PUT /api/v1/me
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req service.ProfileUpdate
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	customer, err := h.authService.UpdateCustomerProfile(c.UserContext(), actor.ID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Profile updated", "data": customer})
}

// ValidateTokenRequest represents the validate token request body
type ValidateTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// ValidateToken reports whether a token is still valid and who it belongs to
// POST /api/v1/auth/validate-token
func (h *AuthHandler) ValidateToken(c *fiber.Ctx) error {
	var req ValidateTokenRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	claims, err := h.tokens.ValidateToken(req.Token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"valid": false, "error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"valid":      true,
		"subject_id": claims.SubjectID,
		"email":      claims.Email,
		"name":       claims.Name,
		"role":       claims.Role,
		"privileges": claims.Privileges,
		"expires_at": claims.ExpiresAt,
	})
}
