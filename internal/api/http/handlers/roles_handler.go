package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/service"
)

// RolesHandler serves /roles.
type RolesHandler struct {
	roles *service.RoleService
}

// NewRolesHandler constructs handler.
func NewRolesHandler(roles *service.RoleService) *RolesHandler {
	return &RolesHandler{roles: roles}
}

// Create handles POST /roles.
func (h *RolesHandler) Create(c *fiber.Ctx) error {
	var req dto.RoleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	role, err := h.roles.Create(c.UserContext(), caller(c), req.Name, req.Permissions)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewRoleResponse(role)})
}

// List handles GET /roles.
func (h *RolesHandler) List(c *fiber.Ctx) error {
	roles, err := h.roles.List(c.UserContext(), caller(c))
	if err != nil {
		return err
	}
	items := make([]dto.RoleResponse, 0, len(roles))
	for i := range roles {
		items = append(items, dto.NewRoleResponse(&roles[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get handles GET /roles/:id.
func (h *RolesHandler) Get(c *fiber.Ctx) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	role, err := h.roles.Get(c.UserContext(), caller(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRoleResponse(role)})
}

// Update handles PATCH /roles/:id.
func (h *RolesHandler) Update(c *fiber.Ctx) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	var req dto.RoleUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	role, err := h.roles.Update(c.UserContext(), caller(c), id, service.RoleUpdateInput{
		Name:        req.Name,
		Permissions: req.Permissions,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRoleResponse(role)})
}

// Delete handles DELETE /roles/:id.
func (h *RolesHandler) Delete(c *fiber.Ctx) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	if err := h.roles.Delete(c.UserContext(), caller(c), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
