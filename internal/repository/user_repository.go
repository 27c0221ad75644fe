package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/repository-api/internal/domain"
)

// UserRepository reads the user directory inside a tenant schema. The schema
// comes from the resolved tenant context on every call; there is no implicit
// active tenant.
type UserRepository interface {
	Create(ctx context.Context, schema string, user *domain.User) error
	GetByID(ctx context.Context, schema string, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, schema string, email string) (*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, schema string, user *domain.User) error {
	query := fmt.Sprintf(`
        INSERT INTO %s (email, password_hash)
        VALUES ($1, $2)
        RETURNING id, created_at, updated_at`,
		tableName(schema, "users"))

	return r.pool.QueryRow(ctx, query,
		user.Email,
		user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, schema string, id int64) (*domain.User, error) {
	query := fmt.Sprintf(`
        SELECT id, email, password_hash, created_at, updated_at
        FROM %s WHERE id=$1`,
		tableName(schema, "users"))

	return r.scanUser(ctx, schema, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, schema string, email string) (*domain.User, error) {
	query := fmt.Sprintf(`
        SELECT id, email, password_hash, created_at, updated_at
        FROM %s WHERE email=$1`,
		tableName(schema, "users"))

	return r.scanUser(ctx, schema, query, email)
}

func (r *userRepository) scanUser(ctx context.Context, schema, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}

	roles, err := r.rolesFor(ctx, schema, user.ID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles
	return &user, nil
}

func (r *userRepository) rolesFor(ctx context.Context, schema string, userID int64) ([]string, error) {
	query := fmt.Sprintf(`
        SELECT r.name
        FROM %s r
        JOIN %s ur ON ur.role_id = r.id
        WHERE ur.user_id=$1
        ORDER BY r.name`,
		tableName(schema, "roles"),
		tableName(schema, "users_roles"))

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		roles = append(roles, name)
	}
	return roles, rows.Err()
}

// tableName builds a quoted schema-qualified identifier. Schema names come
// from the tenant directory, never from request input directly.
func tableName(schema, table string) string {
	return pgx.Identifier{schema, table}.Sanitize()
}
