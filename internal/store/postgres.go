package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobboard/geo-service/internal/db"
	"jobboard/geo-service/internal/geo"
	"jobboard/geo-service/internal/model"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS jobs (
	id  TEXT PRIMARY KEY,
	doc JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS users (
	id  TEXT PRIMARY KEY,
	doc JSONB NOT NULL
);`

// PostgresStore keeps one JSONB document per row, keyed by the document id.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects, verifies the pool and ensures the tables exist.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, errors.New("postgres backend requires DATABASE_URL")
	}
	pool, err := db.NewPostgresPool(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresStore wraps an existing pool. The caller owns the schema.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) ListJobs(ctx context.Context) ([]model.Job, error) {
	return listDocs[model.Job](ctx, s.pool, `SELECT id, doc FROM jobs ORDER BY id`)
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]model.User, error) {
	return listDocs[model.User](ctx, s.pool, `SELECT id, doc FROM users ORDER BY id`)
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM users WHERE id = $1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getUser query: %w", err)
	}
	var u model.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("getUser decode: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) UpdateJobLocation(ctx context.Context, id string, c geo.Coordinate) (*model.Job, error) {
	var j model.Job
	if err := s.updateLocation(ctx, "jobs", id, c, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *PostgresStore) UpdateUserLocation(ctx context.Context, id string, c geo.Coordinate) (*model.User, error) {
	var u model.User
	if err := s.updateLocation(ctx, "users", id, c, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) Close(context.Context) error {
	s.pool.Close()
	return nil
}

// updateLocation merges latitude/longitude into the stored document. table is
// one of the two constant table names, never caller input.
func (s *PostgresStore) updateLocation(ctx context.Context, table, id string, c geo.Coordinate, dst any) error {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`UPDATE `+table+`
		 SET doc = doc || jsonb_build_object('latitude', $2::float8, 'longitude', $3::float8)
		 WHERE id = $1
		 RETURNING doc`,
		id, c.Latitude, c.Longitude,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update %s location: %w", table, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s document: %w", table, err)
	}
	return nil
}

// listDocs decodes every row; rows whose JSON does not fit the model are
// logged and skipped.
func listDocs[T any](ctx context.Context, pool *pgxpool.Pool, query string) ([]T, error) {
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			slog.Warn("skipping undecodable document", "id", id, "err", err)
			continue
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
