package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

// PrincipalFilter captures admin listing parameters.
type PrincipalFilter struct {
	RoleID *int64
	Active *bool
	Search string
	Limit  int
	Offset int
}

// PrincipalRepository defines persistence access for accounts.
type PrincipalRepository interface {
	Create(ctx context.Context, principal *domain.Principal) error
	Update(ctx context.Context, principal *domain.Principal) error
	GetByID(ctx context.Context, id string) (*domain.Principal, error)
	GetByEmail(ctx context.Context, email string) (*domain.Principal, error)
	List(ctx context.Context, filter PrincipalFilter) ([]domain.Principal, error)
	Delete(ctx context.Context, id string) error
}

type principalRepository struct {
	db persistence.DB
}

// NewPrincipalRepository returns a Postgres-backed implementation.
func NewPrincipalRepository(db persistence.DB) PrincipalRepository {
	return &principalRepository{db: db}
}

const principalColumns = `p.id::text, p.name, p.email, p.password_hash, p.role_id, r.name,
               p.active, p.verification_code, p.created_at, p.updated_at`

func (r *principalRepository) Create(ctx context.Context, principal *domain.Principal) error {
	const query = `
        INSERT INTO principals (name, email, password_hash, role_id, active, verification_code)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id::text, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		principal.Name,
		principal.Email,
		principal.PasswordHash,
		principal.RoleID,
		principal.Active,
		principal.VerificationCode,
	).Scan(&principal.ID, &principal.CreatedAt, &principal.UpdatedAt)
}

func (r *principalRepository) Update(ctx context.Context, principal *domain.Principal) error {
	const query = `
        UPDATE principals
        SET name=$1, email=$2, password_hash=$3, role_id=$4, active=$5, verification_code=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.db.Exec(ctx, query,
		principal.Name,
		principal.Email,
		principal.PasswordHash,
		principal.RoleID,
		principal.Active,
		principal.VerificationCode,
		principal.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *principalRepository) GetByID(ctx context.Context, id string) (*domain.Principal, error) {
	query := `SELECT ` + principalColumns + `
        FROM principals p JOIN roles r ON r.id = p.role_id
        WHERE p.id=$1`
	return scanPrincipal(r.db.QueryRow(ctx, query, id))
}

func (r *principalRepository) GetByEmail(ctx context.Context, email string) (*domain.Principal, error) {
	query := `SELECT ` + principalColumns + `
        FROM principals p JOIN roles r ON r.id = p.role_id
        WHERE LOWER(p.email)=LOWER($1)`
	return scanPrincipal(r.db.QueryRow(ctx, query, email))
}

func (r *principalRepository) List(ctx context.Context, filter PrincipalFilter) ([]domain.Principal, error) {
	builder := psql.Select(principalColumns).
		From("principals p").
		Join("roles r ON r.id = p.role_id").
		OrderBy("p.created_at DESC").
		Limit(pageLimit(filter.Limit, 50)).
		Offset(pageOffset(filter.Offset))

	if filter.RoleID != nil {
		builder = builder.Where(sq.Eq{"p.role_id": *filter.RoleID})
	}
	if filter.Active != nil {
		builder = builder.Where(sq.Eq{"p.active": *filter.Active})
	}
	if term := likeTerm(filter.Search); term != "" {
		builder = builder.Where(sq.Or{
			sq.ILike{"p.name": term},
			sq.ILike{"p.email": term},
		})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Principal
	for rows.Next() {
		principal, err := scanPrincipal(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *principal)
	}
	return result, rows.Err()
}

// Delete removes the principal together with the attachments it owns.
func (r *principalRepository) Delete(ctx context.Context, id string) error {
	return persistence.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM attachments WHERE principal_id=$1`, id); err != nil {
			return err
		}
		cmd, err := tx.Exec(ctx, `DELETE FROM principals WHERE id=$1`, id)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
}

func scanPrincipal(row pgx.Row) (*domain.Principal, error) {
	var principal domain.Principal
	if err := row.Scan(
		&principal.ID,
		&principal.Name,
		&principal.Email,
		&principal.PasswordHash,
		&principal.RoleID,
		&principal.RoleName,
		&principal.Active,
		&principal.VerificationCode,
		&principal.CreatedAt,
		&principal.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &principal, nil
}
