package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

// StationRepository manages persistence for stations.
type StationRepository interface {
	Create(ctx context.Context, station *domain.Station) error
	Update(ctx context.Context, station *domain.Station) error
	GetByID(ctx context.Context, id int64) (*domain.Station, error)
	List(ctx context.Context) ([]domain.Station, error)
	Delete(ctx context.Context, id int64) error
}

type stationRepository struct {
	db persistence.DB
}

// NewStationRepository constructs repository.
func NewStationRepository(db persistence.DB) StationRepository {
	return &stationRepository{db: db}
}

func (r *stationRepository) Create(ctx context.Context, station *domain.Station) error {
	const query = `
        INSERT INTO stations (name, location, telegram_bot, telegram_chat_id, telegram_thread_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		station.Name,
		station.Location,
		station.TelegramBot,
		station.TelegramChatID,
		station.TelegramThreadID,
	).Scan(&station.ID, &station.CreatedAt, &station.UpdatedAt)
}

func (r *stationRepository) Update(ctx context.Context, station *domain.Station) error {
	const query = `
        UPDATE stations SET name=$1, location=$2, telegram_bot=$3, telegram_chat_id=$4, telegram_thread_id=$5,
            updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.db.Exec(ctx, query,
		station.Name,
		station.Location,
		station.TelegramBot,
		station.TelegramChatID,
		station.TelegramThreadID,
		station.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *stationRepository) GetByID(ctx context.Context, id int64) (*domain.Station, error) {
	const query = `
        SELECT id, name, location, telegram_bot, telegram_chat_id, telegram_thread_id, created_at, updated_at
        FROM stations WHERE id=$1`
	return scanStation(r.db.QueryRow(ctx, query, id))
}

func (r *stationRepository) List(ctx context.Context) ([]domain.Station, error) {
	const query = `
        SELECT id, name, location, telegram_bot, telegram_chat_id, telegram_thread_id, created_at, updated_at
        FROM stations ORDER BY name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Station
	for rows.Next() {
		station, err := scanStation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *station)
	}
	return result, rows.Err()
}

func (r *stationRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM stations WHERE id=$1`, id)
	if err != nil {
		if persistence.IsForeignKeyViolation(err) {
			return ErrStationInUse
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanStation(row pgx.Row) (*domain.Station, error) {
	var station domain.Station
	if err := row.Scan(
		&station.ID,
		&station.Name,
		&station.Location,
		&station.TelegramBot,
		&station.TelegramChatID,
		&station.TelegramThreadID,
		&station.CreatedAt,
		&station.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &station, nil
}
