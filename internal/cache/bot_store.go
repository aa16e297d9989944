package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
)

const botKeyPrefix = "helpdesk:telegram_bot:"

// ErrUnknownBot is returned when no credential is stored under the requested name.
var ErrUnknownBot = errors.New("telegram bot not registered")

// BotStore resolves bot tokens from Redis, falling back to Postgres on a miss.
// A nil client disables caching.
type BotStore struct {
	client *redis.Client
	repo   repository.BotRepository
	ttl    time.Duration
	logger *zap.Logger
}

// NewBotStore wires the cache. A non-positive ttl keeps entries until overwritten.
func NewBotStore(client *redis.Client, repo repository.BotRepository, ttl time.Duration, logger *zap.Logger) *BotStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl < 0 {
		ttl = 0
	}
	return &BotStore{client: client, repo: repo, ttl: ttl, logger: logger}
}

// Token returns the credential for name.
func (s *BotStore) Token(ctx context.Context, name string) (string, error) {
	if s.client != nil {
		token, err := s.client.Get(ctx, botKeyPrefix+name).Result()
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("bot cache read failed", zap.String("bot", name), zap.Error(err))
		}
	}

	bot, err := s.repo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", ErrUnknownBot, name)
		}
		return "", fmt.Errorf("load bot %s: %w", name, err)
	}

	s.remember(ctx, bot)
	return bot.Token, nil
}

// Save stores the credential and refreshes the cached copy.
func (s *BotStore) Save(ctx context.Context, bot *domain.TelegramBot) error {
	if err := s.repo.Save(ctx, bot); err != nil {
		return err
	}
	s.remember(ctx, bot)
	return nil
}

func (s *BotStore) remember(ctx context.Context, bot *domain.TelegramBot) {
	if s.client == nil {
		return
	}
	if err := s.client.Set(ctx, botKeyPrefix+bot.Name, bot.Token, s.ttl).Err(); err != nil {
		s.logger.Warn("bot cache write failed", zap.String("bot", bot.Name), zap.Error(err))
	}
}
