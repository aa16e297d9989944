package alert

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// Channel is one delivery strategy. Validate must not touch the network.
type Channel interface {
	Platform() domain.Platform
	Validate(req domain.AlertRequest) error
	Send(ctx context.Context, req domain.AlertRequest) (*domain.DispatchResult, error)
}

// Observer records dispatch outcomes.
type Observer interface {
	ObserveDispatch(platform, outcome string)
}

// Dispatch outcomes reported to the Observer.
const (
	OutcomeDelivered   = "delivered"
	OutcomeInvalid     = "invalid"
	OutcomeFailed      = "failed"
	OutcomeUnsupported = "unsupported"
)

// Dispatcher selects a Channel by platform tag. Each call is independent and
// attempts exactly one delivery.
type Dispatcher struct {
	channels map[domain.Platform]Channel
	observer Observer
	logger   *zap.Logger
}

// NewDispatcher registers channels by their platform tag.
func NewDispatcher(logger *zap.Logger, observer Observer, channels ...Channel) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := make(map[domain.Platform]Channel, len(channels))
	for _, ch := range channels {
		registry[ch.Platform()] = ch
	}
	return &Dispatcher{channels: registry, observer: observer, logger: logger}
}

// Platforms lists the registered tags.
func (d *Dispatcher) Platforms() []domain.Platform {
	out := make([]domain.Platform, 0, len(d.channels))
	for p := range d.channels {
		out = append(out, p)
	}
	return out
}

// Dispatch validates req against its channel and sends it. Validation errors
// are returned before any outbound call; send failures come back as delivery errors.
func (d *Dispatcher) Dispatch(ctx context.Context, req domain.AlertRequest) (*domain.DispatchResult, error) {
	platform := domain.Platform(strings.ToLower(strings.TrimSpace(string(req.Platform))))
	ch, ok := d.channels[platform]
	if !ok {
		d.observe(string(req.Platform), OutcomeUnsupported)
		return nil, apperrors.NewValidationCode(apperrors.CodeUnsupportedPlatform,
			"unsupported platform", map[string]any{"platform": req.Platform})
	}
	req.Platform = platform

	if err := ch.Validate(req); err != nil {
		d.observe(string(platform), OutcomeInvalid)
		return nil, err
	}

	result, err := ch.Send(ctx, req)
	if err != nil {
		d.observe(string(platform), OutcomeFailed)
		d.logger.Warn("alert delivery failed", zap.String("platform", string(platform)), zap.Error(err))
		if apperrors.KindOf(err) == apperrors.KindDelivery {
			return nil, err
		}
		return nil, apperrors.NewDeliveryError(string(platform)+" delivery failed",
			map[string]any{"platform": platform}, err)
	}

	d.observe(string(platform), OutcomeDelivered)
	return result, nil
}

func (d *Dispatcher) observe(platform, outcome string) {
	if d.observer != nil {
		d.observer.ObserveDispatch(platform, outcome)
	}
}
