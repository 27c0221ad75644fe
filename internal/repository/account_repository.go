package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/repository-api/internal/domain"
)

// AccountRepository reads the tenant directory. Accounts live in the public
// schema; this service never creates them.
type AccountRepository interface {
	GetByTenant(ctx context.Context, tenant string) (*domain.Account, error)
	GetByName(ctx context.Context, name string) (*domain.Account, error)
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

func (r *accountRepository) GetByTenant(ctx context.Context, tenant string) (*domain.Account, error) {
	const query = `
        SELECT id, tenant, name, cname, COALESCE(frontend_url, ''), created_at, updated_at
        FROM public.accounts WHERE tenant=$1`

	return r.scanAccount(ctx, query, tenant)
}

func (r *accountRepository) GetByName(ctx context.Context, name string) (*domain.Account, error) {
	const query = `
        SELECT id, tenant, name, cname, COALESCE(frontend_url, ''), created_at, updated_at
        FROM public.accounts WHERE name=$1`

	return r.scanAccount(ctx, query, name)
}

func (r *accountRepository) scanAccount(ctx context.Context, query string, arg any) (*domain.Account, error) {
	var account domain.Account
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&account.ID,
		&account.Tenant,
		&account.Name,
		&account.Cname,
		&account.FrontendURL,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &account, nil
}
