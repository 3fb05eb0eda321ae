package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/lib/pq"
)

const dedupTableName = "processed_videos"

// PostgresStore persists dedup records in Postgres
type PostgresStore struct {
	db *sql.DB

	mu sync.Mutex
	// set when EnsureSchema failed, so the next call tries again before using the table
	schemaPending bool
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres creates the connection pool for a lib/pq connection string. No connection is made
// until the pool is first used.
func OpenPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error creating postgres dedup connection: %w", err)
	}

	// Without this, we've run into issues with exceeding our open connection limit
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// EnsureSchema creates the dedup table. On failure the store keeps retrying on each Get and Put
// until it succeeds.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.createTable(ctx)
	p.schemaPending = err != nil
	return err
}

func (p *PostgresStore) ensurePendingSchema(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.schemaPending {
		return nil
	}
	if err := p.createTable(ctx); err != nil {
		return err
	}
	p.schemaPending = false
	return nil
}

func (p *PostgresStore) createTable(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `create table if not exists "`+dedupTableName+`"(
		"hash" text primary key,
		"location" text not null,
		"created_at" timestamptz not null
	)`)
	if err != nil {
		return fmt.Errorf("error creating dedup table: %w", err)
	}
	return nil
}

func (p *PostgresStore) Get(ctx context.Context, key string) (Record, bool, error) {
	if err := p.ensurePendingSchema(ctx); err != nil {
		return Record{}, false, err
	}
	var rec Record
	err := p.db.QueryRowContext(ctx,
		`select "location", "created_at" from "`+dedupTableName+`" where "hash" = $1`,
		key,
	).Scan(&rec.Location, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("error reading dedup record: %w", err)
	}
	return rec, true, nil
}

func (p *PostgresStore) Put(ctx context.Context, key string, rec Record) error {
	if err := p.ensurePendingSchema(ctx); err != nil {
		return err
	}
	_, err := p.db.ExecContext(ctx,
		`insert into "`+dedupTableName+`"("hash", "location", "created_at") values($1, $2, $3)
		on conflict ("hash") do update set "location" = excluded."location", "created_at" = excluded."created_at"`,
		key, rec.Location, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error writing dedup record: %w", err)
	}
	return nil
}
