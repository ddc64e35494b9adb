package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store over a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore builds the store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Repos returns pool-scoped repositories for standalone reads.
func (s *PostgresStore) Repos() Repos {
	return reposFor(s.pool)
}

// WithinTx runs fn with transaction-scoped repositories. The transaction
// commits only when fn returns nil; any error rolls back every write fn made.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(Repos) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(reposFor(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func reposFor(q Querier) Repos {
	return Repos{
		Tickets:    NewTicketRepository(q),
		History:    NewTicketHistoryRepository(q),
		Categories: NewCategoryRepository(q),
		Users:      NewUserRepository(q),
	}
}
