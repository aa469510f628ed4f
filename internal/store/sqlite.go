package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/Reso1992/DmoTimer/internal/domain"
)

// SQLiteRepo stores registry snapshots as one row per timer.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite prepares the timers database at path, creating its directory
// and schema on first use.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Snapshots are written by one registry at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

// snapshotPragmas trade durability of the last write for fast full rewrites.
var snapshotPragmas = []string{
	"PRAGMA journal_mode=WAL;",
	"PRAGMA synchronous=NORMAL;",
	"PRAGMA busy_timeout=5000;",
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	for _, p := range snapshotPragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s %w", p, err)
		}
	}
	return nil
}

// Close closes the database handle.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// Save replaces every stored timer with s in one transaction.
func (r *SQLiteRepo) Save(ctx context.Context, s Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM timers`); err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO timers (owner_id, position, duration_hours, image_ref, custom_message)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	defer stmt.Close()

	for owner, entries := range s {
		for i, e := range entries {
			if _, err := stmt.ExecContext(ctx,
				string(owner), i, e.DurationHours, e.ImageRef, toNullString(e.CustomMessage),
			); err != nil {
				return fmt.Errorf("save state: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// Load returns all stored timers grouped by owner, in insertion order.
func (r *SQLiteRepo) Load(ctx context.Context) (Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT owner_id, duration_hours, image_ref, custom_message
		FROM timers
		ORDER BY owner_id, position`)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	defer rows.Close()

	snap := Snapshot{}
	for rows.Next() {
		var (
			owner   string
			hours   float64
			image   string
			message sql.NullString
		)
		if err := rows.Scan(&owner, &hours, &image, &message); err != nil {
			return nil, fmt.Errorf("read state: %w", err)
		}
		id := domain.OwnerID(owner)
		snap[id] = append(snap[id], Entry{
			DurationHours: hours,
			ImageRef:      image,
			CustomMessage: fromNullString(message),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	return snap, nil
}
