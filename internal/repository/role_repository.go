package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
)

// RoleRepository persists roles and their permission matrices.
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	Update(ctx context.Context, role *domain.Role) error
	GetByID(ctx context.Context, id int64) (*domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
	Delete(ctx context.Context, id int64) error
}

type roleRepository struct {
	db persistence.DB
}

// NewRoleRepository returns a Postgres-backed implementation.
func NewRoleRepository(db persistence.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Create(ctx context.Context, role *domain.Role) error {
	const query = `
        INSERT INTO roles (name, permissions)
        VALUES ($1, $2)
        RETURNING id, created_at, updated_at`
	perms, err := json.Marshal(role.Permissions)
	if err != nil {
		return fmt.Errorf("encode permissions: %w", err)
	}
	return r.db.QueryRow(ctx, query, role.Name, string(perms)).
		Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt)
}

func (r *roleRepository) Update(ctx context.Context, role *domain.Role) error {
	const query = `
        UPDATE roles SET name=$1, permissions=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING updated_at`
	perms, err := json.Marshal(role.Permissions)
	if err != nil {
		return fmt.Errorf("encode permissions: %w", err)
	}
	return r.db.QueryRow(ctx, query, role.Name, string(perms), role.ID).Scan(&role.UpdatedAt)
}

func (r *roleRepository) GetByID(ctx context.Context, id int64) (*domain.Role, error) {
	const query = `
        SELECT id, name, permissions, created_at, updated_at
        FROM roles WHERE id=$1`
	return scanRole(r.db.QueryRow(ctx, query, id))
}

func (r *roleRepository) List(ctx context.Context) ([]domain.Role, error) {
	const query = `
        SELECT id, name, permissions, created_at, updated_at
        FROM roles ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *role)
	}
	return result, rows.Err()
}

// Delete removes a role unless a principal still references it.
func (r *roleRepository) Delete(ctx context.Context, id int64) error {
	return persistence.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var refs int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM principals WHERE role_id=$1`, id).Scan(&refs); err != nil {
			return err
		}
		if refs > 0 {
			return ErrRoleInUse
		}
		cmd, err := tx.Exec(ctx, `DELETE FROM roles WHERE id=$1`, id)
		if err != nil {
			if persistence.IsForeignKeyViolation(err) {
				return ErrRoleInUse
			}
			return err
		}
		if cmd.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
}

func scanRole(row pgx.Row) (*domain.Role, error) {
	var (
		role  domain.Role
		perms []byte
	)
	if err := row.Scan(&role.ID, &role.Name, &perms, &role.CreatedAt, &role.UpdatedAt); err != nil {
		return nil, err
	}
	if len(perms) > 0 {
		if err := json.Unmarshal(perms, &role.Permissions); err != nil {
			return nil, fmt.Errorf("decode permissions for role %d: %w", role.ID, err)
		}
	}
	return &role, nil
}
