package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// Account is the minimal identity record needed to issue role-bearing
// tokens. Account lifecycle is owned upstream; the engine only reads.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         domain.Role
	CreatedAt    time.Time
}

// AccountRepository reads identities for login.
type AccountRepository interface {
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository instantiates repository.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	const query = `SELECT id, name, email, password_hash, role, created_at FROM accounts WHERE email=$1`
	return r.scanAccount(ctx, query, email)
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*Account, error) {
	const query = `SELECT id, name, email, password_hash, role, created_at FROM accounts WHERE id=$1`
	return r.scanAccount(ctx, query, id)
}

func (r *accountRepository) scanAccount(ctx context.Context, query string, arg any) (*Account, error) {
	var account Account
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&account.Role,
		&account.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}
