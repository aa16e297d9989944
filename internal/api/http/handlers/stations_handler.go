package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/service"
)

// StationsHandler serves /stations and bot registration.
type StationsHandler struct {
	stations *service.StationService
}

// NewStationsHandler constructs handler.
func NewStationsHandler(stations *service.StationService) *StationsHandler {
	return &StationsHandler{stations: stations}
}

func stationInput(req dto.StationRequest) service.StationInput {
	return service.StationInput{
		Name:             req.Name,
		Location:         req.Location,
		TelegramBot:      req.TelegramBot,
		TelegramChatID:   req.TelegramChatID,
		TelegramThreadID: req.TelegramThreadID,
	}
}

// Create handles POST /stations.
func (h *StationsHandler) Create(c *fiber.Ctx) error {
	var req dto.StationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	station, err := h.stations.Create(c.UserContext(), caller(c), stationInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewStationResponse(station)})
}

// List handles GET /stations.
func (h *StationsHandler) List(c *fiber.Ctx) error {
	stations, err := h.stations.List(c.UserContext(), caller(c))
	if err != nil {
		return err
	}
	items := make([]dto.StationResponse, 0, len(stations))
	for i := range stations {
		items = append(items, dto.NewStationResponse(&stations[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get handles GET /stations/:id.
func (h *StationsHandler) Get(c *fiber.Ctx) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	station, err := h.stations.Get(c.UserContext(), caller(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStationResponse(station)})
}

// Update handles PUT /stations/:id.
func (h *StationsHandler) Update(c *fiber.Ctx) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	var req dto.StationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	station, err := h.stations.Update(c.UserContext(), caller(c), id, stationInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStationResponse(station)})
}

// Delete handles DELETE /stations/:id.
func (h *StationsHandler) Delete(c *fiber.Ctx) error {
	id, err := int64Param(c, "id")
	if err != nil {
		return err
	}
	if err := h.stations.Delete(c.UserContext(), caller(c), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// RegisterBot handles PUT /stations/bots.
func (h *StationsHandler) RegisterBot(c *fiber.Ctx) error {
	var req dto.BotRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.stations.RegisterBot(c.UserContext(), caller(c), req.Name, req.Token); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
