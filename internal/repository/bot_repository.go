package repository

import (
	"context"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

// BotRepository resolves Telegram bot credentials by name.
type BotRepository interface {
	GetByName(ctx context.Context, name string) (*domain.TelegramBot, error)
	Save(ctx context.Context, bot *domain.TelegramBot) error
}

type botRepository struct {
	db persistence.DB
}

// NewBotRepository constructs repository.
func NewBotRepository(db persistence.DB) BotRepository {
	return &botRepository{db: db}
}

func (r *botRepository) GetByName(ctx context.Context, name string) (*domain.TelegramBot, error) {
	const query = `SELECT name, token FROM telegram_bots WHERE name=$1`
	var bot domain.TelegramBot
	if err := r.db.QueryRow(ctx, query, name).Scan(&bot.Name, &bot.Token); err != nil {
		return nil, err
	}
	return &bot, nil
}

func (r *botRepository) Save(ctx context.Context, bot *domain.TelegramBot) error {
	const query = `
        INSERT INTO telegram_bots (name, token) VALUES ($1, $2)
        ON CONFLICT (name) DO UPDATE SET token = EXCLUDED.token`
	_, err := r.db.Exec(ctx, query, bot.Name, bot.Token)
	return err
}
