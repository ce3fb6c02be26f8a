// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jcodagnone/contactmap/spatial"
	"github.com/jcodagnone/contactmap/utils/textutils"
)

// Cache stores successful geocoding answers so that a retried ingestion
// pass does not pay the pacing delay again for known addresses.
type Cache interface {
	// Get returns the cached result for address, if any.
	Get(ctx context.Context, address string) (*Result, bool, error)

	// Put stores result for address, replacing any previous answer.
	Put(ctx context.Context, address string, result *Result) error
}

// CacheKey normalizes an address for cache lookups: accents removed, lower
// case, inner whitespace collapsed.
func CacheKey(address string) string {
	return strings.Join(strings.Fields(textutils.LowerASCIIFolding(address)), " ")
}

// SQLCache is a Cache backed by a duckdb database.
type SQLCache struct {
	db *sql.DB
}

// NewSQLCache creates a cache on db. Call CreateSchema before using it.
func NewSQLCache(db *sql.DB) *SQLCache {
	return &SQLCache{db: db}
}

// CreateSchema creates the geocodes table.
func (c *SQLCache) CreateSchema() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS geocodes (
			address VARCHAR PRIMARY KEY,
			query VARCHAR NOT NULL,
			lat DOUBLE NOT NULL,
			lng DOUBLE NOT NULL,
			provider VARCHAR NOT NULL,
			confidence VARCHAR NOT NULL,
			display_name VARCHAR NOT NULL,
			h3_res1 UBIGINT,
			h3_res2 UBIGINT,
			h3_res3 UBIGINT,
			h3_res4 UBIGINT,
			h3_res5 UBIGINT,
			h3_res6 UBIGINT,
			h3_res7 UBIGINT,
			h3_res8 UBIGINT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating geocodes table: %w", err)
	}

	return nil
}

// Get implements Cache.
func (c *SQLCache) Get(ctx context.Context, address string) (*Result, bool, error) {
	var r Result

	err := c.db.QueryRowContext(ctx, `
		SELECT lat, lng, provider, confidence, display_name
		FROM geocodes
		WHERE address = ?
	`, CacheKey(address)).Scan(&r.Point.Lat, &r.Point.Lng, &r.Provider, &r.Confidence, &r.DisplayName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("querying geocode cache: %w", err)
	}

	return &r, true, nil
}

// Put implements Cache.
func (c *SQLCache) Put(ctx context.Context, address string, result *Result) error {
	if result == nil {
		return errors.New("result can't be nil")
	}

	cells, err := spatial.Cells(result.Point)
	if err != nil {
		return err
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO geocodes (
			address, query, lat, lng, provider, confidence, display_name,
			h3_res1, h3_res2, h3_res3, h3_res4,
			h3_res5, h3_res6, h3_res7, h3_res8
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		CacheKey(address), address, result.Point.Lat, result.Point.Lng,
		result.Provider, result.Confidence, result.DisplayName,
		cells[0], cells[1], cells[2], cells[3],
		cells[4], cells[5], cells[6], cells[7],
	)
	if err != nil {
		return fmt.Errorf("storing geocode for %q: %w", address, err)
	}

	return nil
}

// Count returns the number of cached addresses.
func (c *SQLCache) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, "SELECT count(*) FROM geocodes").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting geocodes: %w", err)
	}

	return n, nil
}
