package handlers

import (
	"catalog/internal/auth"
	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for account administration.
type UserHandler struct {
	service *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type createUserRequest struct {
	Name     string      `json:"name" validate:"required,min=1"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6"`
	Role     models.Role `json:"role" validate:"omitempty,oneof=USER ADMIN"`
}

type updateUserRequest struct {
	Name     *string      `json:"name" validate:"omitnil,min=1"`
	Email    *string      `json:"email" validate:"omitnil,email"`
	Password *string      `json:"password" validate:"omitnil,min=6"`
	Role     *models.Role `json:"role" validate:"omitnil,oneof=USER ADMIN"`
}

// Procedures lists the account operations. All of them are admin only.
func (h *UserHandler) Procedures() []Procedure {
	return []Procedure{
		{Method: fiber.MethodGet, Path: "/users", Tier: auth.TierAdmin, Handle: h.HandleGetUsers},
		{Method: fiber.MethodPost, Path: "/users", Tier: auth.TierAdmin, Handle: h.HandleCreateUser},
		{Method: fiber.MethodPatch, Path: "/users/:id", Tier: auth.TierAdmin, Handle: h.HandleUpdateUser},
		{Method: fiber.MethodDelete, Path: "/users/:id", Tier: auth.TierAdmin, Handle: h.HandleDeleteUser},
	}
}

// RegisterRoutes registers the user routes.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	Mount(router, h.Procedures())
}

// HandleGetUsers lists every account.
func (h *UserHandler) HandleGetUsers(c *fiber.Ctx) error {
	users, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// HandleCreateUser creates an account.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var req createUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.service.Create(c.UserContext(), middleware.PrincipalFrom(c).UserID, services.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleUpdateUser changes an account.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	var req updateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.service.Update(c.UserContext(), middleware.PrincipalFrom(c).UserID, c.Params("id"), services.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// HandleDeleteUser deletes an account.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), middleware.PrincipalFrom(c).UserID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
