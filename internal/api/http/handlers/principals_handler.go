package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
)

// PrincipalsHandler serves /users and /me.
type PrincipalsHandler struct {
	principals *service.PrincipalService
}

// NewPrincipalsHandler constructs handler.
func NewPrincipalsHandler(principals *service.PrincipalService) *PrincipalsHandler {
	return &PrincipalsHandler{principals: principals}
}

// Me handles GET /me. The permission payload comes from the role resolved for this request.
func (h *PrincipalsHandler) Me(c *fiber.Ctx) error {
	ac := caller(c)
	principal, err := h.principals.Me(c.UserContext(), ac)
	if err != nil {
		return err
	}
	resp := dto.MeResponse{Principal: dto.NewPrincipalResponse(principal), Permissions: ac.Permissions()}
	if ac.Role != nil {
		resp.Role = ac.Role.Name
	}
	return c.JSON(fiber.Map{"data": resp})
}

// UpdateMe handles PATCH /me.
func (h *PrincipalsHandler) UpdateMe(c *fiber.Ctx) error {
	var req dto.ProfileUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	principal, err := h.principals.UpdateProfile(c.UserContext(), caller(c), service.ProfileInput{
		Name:            req.Name,
		Email:           req.Email,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPrincipalResponse(principal)})
}

// AttachAvatar handles POST /me/avatar.
func (h *PrincipalsHandler) AttachAvatar(c *fiber.Ctx) error {
	var req dto.AttachmentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	att, err := h.principals.AttachAvatar(c.UserContext(), caller(c), attachmentInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAttachmentResponse(att)})
}

// Create handles POST /users.
func (h *PrincipalsHandler) Create(c *fiber.Ctx) error {
	var req dto.PrincipalCreateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	principal, err := h.principals.Create(c.UserContext(), caller(c), service.PrincipalCreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		RoleID:   req.RoleID,
		Active:   active,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewPrincipalResponse(principal)})
}

// List handles GET /users.
func (h *PrincipalsHandler) List(c *fiber.Ctx) error {
	limit, offset := page(c)
	filter := service.PrincipalFilter{Search: c.Query("q"), Limit: limit, Offset: offset}
	if raw := c.Query("roleId"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.RoleID = &id
		}
	}
	if raw := c.Query("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.Active = &active
		}
	}
	principals, err := h.principals.List(c.UserContext(), caller(c), filter)
	if err != nil {
		return err
	}
	items := make([]dto.PrincipalResponse, 0, len(principals))
	for i := range principals {
		items = append(items, dto.NewPrincipalResponse(&principals[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get handles GET /users/:id.
func (h *PrincipalsHandler) Get(c *fiber.Ctx) error {
	principal, err := h.principals.Get(c.UserContext(), caller(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPrincipalResponse(principal)})
}

// Update handles PATCH /users/:id.
func (h *PrincipalsHandler) Update(c *fiber.Ctx) error {
	var req dto.PrincipalUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	principal, err := h.principals.Update(c.UserContext(), caller(c), c.Params("id"), service.PrincipalUpdateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		RoleID:   req.RoleID,
		Active:   req.Active,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPrincipalResponse(principal)})
}

// Delete handles DELETE /users/:id.
func (h *PrincipalsHandler) Delete(c *fiber.Ctx) error {
	if err := h.principals.Delete(c.UserContext(), caller(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Attachments handles GET /users/:id/attachments.
func (h *PrincipalsHandler) Attachments(c *fiber.Ctx) error {
	list, err := h.principals.Attachments(c.UserContext(), caller(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": attachmentResponses(list)})
}

func attachmentInput(req dto.AttachmentRequest) service.AttachmentInput {
	return service.AttachmentInput{
		StorageKey: req.StorageKey,
		FileName:   req.FileName,
		MimeType:   req.MimeType,
		SizeBytes:  req.SizeBytes,
	}
}

func attachmentResponses(list []domain.Attachment) []dto.AttachmentResponse {
	out := make([]dto.AttachmentResponse, 0, len(list))
	for i := range list {
		out = append(out, dto.NewAttachmentResponse(&list[i]))
	}
	return out
}
