package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
)

// AlertDispatcher delivers one alert through the named platform.
type AlertDispatcher interface {
	Dispatch(ctx context.Context, req domain.AlertRequest) (*domain.DispatchResult, error)
}

// AlertsHandler serves POST /alerts/:platform.
type AlertsHandler struct {
	alerts AlertDispatcher
}

// NewAlertsHandler constructs handler.
func NewAlertsHandler(alerts AlertDispatcher) *AlertsHandler {
	return &AlertsHandler{alerts: alerts}
}

// Dispatch sends one ad-hoc alert. The caller's name is used when no username is given.
func (h *AlertsHandler) Dispatch(c *fiber.Ctx) error {
	var req dto.AlertRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Username == "" {
		req.Username = caller(c).ActorName()
	}
	res, err := h.alerts.Dispatch(c.UserContext(), req.ToDomain(c.Params("platform")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": res})
}
