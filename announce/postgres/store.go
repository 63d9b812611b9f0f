// Copyright (C) 2025 veil-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later


// Package postgres implements the announce.Store interface on PostgreSQL.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veil-x-project/veil/announce"
)

// Store implements announce.Store on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Config holds PostgreSQL connection configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// schema is applied by EnsureSchema. Raw 32-byte keys are stored as BYTEA;
// insertion order is the scan order.
const schema = `
CREATE TABLE IF NOT EXISTS announcements (
	id               BIGSERIAL PRIMARY KEY,
	ephemeral_pubkey BYTEA NOT NULL,
	view_tag         SMALLINT NOT NULL,
	stealth_address  BYTEA NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// NewStore connects to PostgreSQL and verifies the connection.
func NewStore(ctx context.Context, cfg *Config) (*Store, error) {
	connString := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// NewStoreFromDSN connects using a raw connection string.
func NewStoreFromDSN(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// EnsureSchema creates the announcements table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Save appends an announcement.
func (s *Store) Save(ctx context.Context, a *announce.Announcement) error {
	query := `
		INSERT INTO announcements (ephemeral_pubkey, view_tag, stealth_address)
		VALUES ($1, $2, $3)
	`
	if _, err := s.pool.Exec(ctx, query, a.EphemeralPubkey, int16(a.ViewTag), a.StealthAddress); err != nil {
		return fmt.Errorf("failed to save announcement: %w", err)
	}
	return nil
}

// List returns up to limit announcements starting at offset, in insertion
// order.
func (s *Store) List(ctx context.Context, offset, limit int) ([]*announce.Announcement, error) {
	if limit <= 0 {
		limit = 1000
	}
	query := `
		SELECT ephemeral_pubkey, view_tag, stealth_address
		FROM announcements
		ORDER BY id
		OFFSET $1 LIMIT $2
	`
	rows, err := s.pool.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	defer rows.Close()

	var out []*announce.Announcement
	for rows.Next() {
		var a announce.Announcement
		var tag int16
		if err := rows.Scan(&a.EphemeralPubkey, &tag, &a.StealthAddress); err != nil {
			return nil, fmt.Errorf("failed to scan announcement: %w", err)
		}
		a.ViewTag = byte(tag)
		out = append(out, &a)
	}
	return out, rows.Err()
}

// Count returns the number of stored announcements.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM announcements`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count announcements: %w", err)
	}
	return n, nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
