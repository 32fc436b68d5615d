package store

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore keeps the contribution archive. The live project document
// never lives here; Postgres only accumulates the history of accepted merges
// and imports so a coordinator can audit who sent what and when.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) InsertContribution(ctx context.Context, c Contribution) (Contribution, error) {
	const insert = `
		INSERT INTO contribution_archive (profile, kind, contributor_id, contributor_name, payload)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, received_at
	`
	err := s.db.QueryRowContext(ctx, insert,
		c.Profile, c.Kind, c.ContributorID, c.ContributorName, c.Payload,
	).Scan(&c.ID, &c.ReceivedAt)
	if err != nil {
		return Contribution{}, fmt.Errorf("insert contribution: %w", err)
	}
	return c, nil
}

// ListContributions returns the newest entries first. Payloads are included
// so a lost snapshot can be replayed from the archive.
func (s *PostgresStore) ListContributions(ctx context.Context, profile string, limit int) ([]Contribution, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	const query = `
		SELECT id, profile, kind, contributor_id, contributor_name, payload, received_at
		FROM contribution_archive
		WHERE profile = $1
		ORDER BY received_at DESC, id DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, profile, limit)
	if err != nil {
		return nil, fmt.Errorf("list contributions: %w", err)
	}
	defer rows.Close()

	var out []Contribution
	for rows.Next() {
		var c Contribution
		if err := rows.Scan(&c.ID, &c.Profile, &c.Kind, &c.ContributorID, &c.ContributorName, &c.Payload, &c.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scan contribution: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contributions: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
