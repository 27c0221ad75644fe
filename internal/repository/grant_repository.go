package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/repository-api/internal/domain"
)

// GrantRepository reads admin-set permissions inside a tenant schema.
type GrantRepository interface {
	ListForUser(ctx context.Context, schema string, userID int64) ([]domain.AdminSetGrant, error)
}

type grantRepository struct {
	pool *pgxpool.Pool
}

// NewGrantRepository returns a Postgres-backed implementation.
func NewGrantRepository(pool *pgxpool.Pool) GrantRepository {
	return &grantRepository{pool: pool}
}

// ListForUser returns the user's admin-set grants. The inner join drops
// accesses whose admin set no longer resolves.
func (r *grantRepository) ListForUser(ctx context.Context, schema string, userID int64) ([]domain.AdminSetGrant, error) {
	query := fmt.Sprintf(`
        SELECT s.title, a.access
        FROM %s a
        JOIN %s s ON s.id = a.admin_set_id
        WHERE a.user_id=$1`,
		tableName(schema, "admin_set_accesses"),
		tableName(schema, "admin_sets"))

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []domain.AdminSetGrant
	for rows.Next() {
		var grant domain.AdminSetGrant
		if err := rows.Scan(&grant.AdminSet, &grant.Access); err != nil {
			return nil, err
		}
		grants = append(grants, grant)
	}
	return grants, rows.Err()
}
