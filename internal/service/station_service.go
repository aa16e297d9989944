package service

import (
	"context"
	"errors"
	"strings"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// BotRegistry stores Telegram bot credentials.
type BotRegistry interface {
	Save(ctx context.Context, bot *domain.TelegramBot) error
}

// StationService manages stations and their alert routing.
type StationService struct {
	stations repository.StationRepository
	bots     BotRegistry
}

// NewStationService constructs the service.
func NewStationService(stations repository.StationRepository, bots BotRegistry) *StationService {
	return &StationService{stations: stations, bots: bots}
}

// StationInput is the editable station payload.
type StationInput struct {
	Name             string
	Location         string
	TelegramBot      string
	TelegramChatID   string
	TelegramThreadID *int64
}

func (in StationInput) apply(station *domain.Station) error {
	station.Name = strings.TrimSpace(in.Name)
	station.Location = strings.TrimSpace(in.Location)
	station.TelegramBot = strings.TrimSpace(in.TelegramBot)
	station.TelegramChatID = strings.TrimSpace(in.TelegramChatID)
	station.TelegramThreadID = in.TelegramThreadID
	if station.Name == "" {
		return apperrors.NewValidationError("station name is required",
			map[string]any{"fields": map[string]any{"name": "required"}})
	}
	if (station.TelegramBot == "") != (station.TelegramChatID == "") {
		return apperrors.NewValidationError("telegram bot and chat must be set together",
			map[string]any{"fields": map[string]any{"telegramBot": "required_with", "telegramChatId": "required_with"}})
	}
	return nil
}

func (s *StationService) Create(ctx context.Context, actor *domain.AuthContext, input StationInput) (*domain.Station, error) {
	if err := auth.Require(actor, domain.ResourceStations, domain.ActionAdd); err != nil {
		return nil, err
	}
	station := &domain.Station{}
	if err := input.apply(station); err != nil {
		return nil, err
	}
	if err := s.stations.Create(ctx, station); err != nil {
		return nil, uniqueConflict(err, apperrors.CodeConflict, "station name already exists",
			map[string]any{"name": station.Name})
	}
	return station, nil
}

func (s *StationService) Get(ctx context.Context, actor *domain.AuthContext, id int64) (*domain.Station, error) {
	if err := auth.Require(actor, domain.ResourceStations, domain.ActionList); err != nil {
		return nil, err
	}
	station, err := s.stations.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "station", map[string]any{"id": id})
	}
	return station, nil
}

func (s *StationService) List(ctx context.Context, actor *domain.AuthContext) ([]domain.Station, error) {
	if err := auth.Require(actor, domain.ResourceStations, domain.ActionList); err != nil {
		return nil, err
	}
	return s.stations.List(ctx)
}

func (s *StationService) Update(ctx context.Context, actor *domain.AuthContext, id int64, input StationInput) (*domain.Station, error) {
	if err := auth.Require(actor, domain.ResourceStations, domain.ActionEdit); err != nil {
		return nil, err
	}
	station, err := s.stations.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "station", map[string]any{"id": id})
	}
	if err := input.apply(station); err != nil {
		return nil, err
	}
	if err := s.stations.Update(ctx, station); err != nil {
		err = uniqueConflict(err, apperrors.CodeConflict, "station name already exists", map[string]any{"name": station.Name})
		return nil, notFoundOr(err, "station", map[string]any{"id": id})
	}
	return station, nil
}

// Delete removes a station that no ticket references.
func (s *StationService) Delete(ctx context.Context, actor *domain.AuthContext, id int64) error {
	if err := auth.Require(actor, domain.ResourceStations, domain.ActionDelete); err != nil {
		return err
	}
	err := s.stations.Delete(ctx, id)
	if errors.Is(err, repository.ErrStationInUse) {
		return apperrors.NewConflict("station still has tickets", map[string]any{"id": id})
	}
	if err != nil {
		return notFoundOr(err, "station", map[string]any{"id": id})
	}
	return nil
}

// RegisterBot stores or replaces a Telegram bot credential used by station alerts.
func (s *StationService) RegisterBot(ctx context.Context, actor *domain.AuthContext, name, token string) error {
	if err := auth.Require(actor, domain.ResourceStations, domain.ActionEdit); err != nil {
		return err
	}
	bot := &domain.TelegramBot{Name: strings.TrimSpace(name), Token: strings.TrimSpace(token)}
	if bot.Name == "" || bot.Token == "" {
		fields := map[string]any{}
		if bot.Name == "" {
			fields["name"] = "required"
		}
		if bot.Token == "" {
			fields["token"] = "required"
		}
		return apperrors.NewValidationError("bot name and token are required", map[string]any{"fields": fields})
	}
	return s.bots.Save(ctx, bot)
}
