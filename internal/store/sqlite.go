package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pablasso/listo/internal/checklist"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore keeps the collection in normalized sqlite tables. Writers
// take the database write lock up front (BEGIN IMMEDIATE), which
// serializes transactions across processes.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite migrates and opens the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := migrateSQLite(path); err != nil {
		return nil, fmt.Errorf("failed to migrate %s: %w", path, err)
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	return &SQLiteStore{db: db, path: path}, nil
}

func migrateSQLite(path string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite3://"+path)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context) (checklist.Collection, error) {
	var col checklist.Collection
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		col, err = s.read(ctx, tx)
		return err
	})
	return col, err
}

// Update implements Store.
func (s *SQLiteStore) Update(ctx context.Context, fn func(col *checklist.Collection) error) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		col, err := s.read(ctx, tx)
		if err != nil {
			return err
		}
		if err := fn(&col); err != nil {
			return err
		}
		return write(ctx, tx, col)
	})
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) read(ctx context.Context, tx *sql.Tx) (checklist.Collection, error) {
	col := emptyCollection()

	err := tx.QueryRowContext(ctx, `SELECT last_used_index FROM collection_meta WHERE id = 1`).Scan(&col.LastUsedIndex)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return col, fmt.Errorf("failed to read collection: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT id, name, execution_state, execution_started_at, execution_ended_at, execution_last_index
		FROM checklists ORDER BY position`)
	if err != nil {
		return col, fmt.Errorf("failed to query checklists: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c              checklist.Checklist
			started, ended string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.ExecutionState, &started, &ended, &c.ExecutionLastIndex); err != nil {
			return col, fmt.Errorf("failed to scan checklist: %w", err)
		}
		if c.ExecutionStartedAt, err = parseTime(started); err != nil {
			return recoverCorrupt(s.path, err), nil
		}
		if c.ExecutionEndedAt, err = parseTime(ended); err != nil {
			return recoverCorrupt(s.path, err), nil
		}
		c.Items = []checklist.Item{}
		col.Checklists = append(col.Checklists, c)
	}
	if err := rows.Err(); err != nil {
		return col, fmt.Errorf("failed to iterate checklists: %w", err)
	}

	itemRows, err := tx.QueryContext(ctx, `
		SELECT checklist_position, name, execution_state, execution_last_changed
		FROM checklist_items ORDER BY checklist_position, position`)
	if err != nil {
		return col, fmt.Errorf("failed to query items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var (
			pos     int
			changed string
			it      checklist.Item
		)
		if err := itemRows.Scan(&pos, &it.Name, &it.ExecutionState, &changed); err != nil {
			return col, fmt.Errorf("failed to scan item: %w", err)
		}
		if pos < 0 || pos >= len(col.Checklists) {
			return recoverCorrupt(s.path, fmt.Errorf("item references missing checklist %d", pos)), nil
		}
		if it.ExecutionLastChanged, err = parseTime(changed); err != nil {
			return recoverCorrupt(s.path, err), nil
		}
		col.Checklists[pos].Items = append(col.Checklists[pos].Items, it)
	}
	if err := itemRows.Err(); err != nil {
		return col, fmt.Errorf("failed to iterate items: %w", err)
	}

	if err := normalize(&col); err != nil {
		return recoverCorrupt(s.path, err), nil
	}
	return col, nil
}

func write(ctx context.Context, tx *sql.Tx, col checklist.Collection) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM checklist_items`); err != nil {
		return fmt.Errorf("failed to clear items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM checklists`); err != nil {
		return fmt.Errorf("failed to clear checklists: %w", err)
	}

	for i, c := range col.Checklists {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO checklists (position, id, name, execution_state, execution_started_at, execution_ended_at, execution_last_index)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			i, c.ID, c.Name, string(c.ExecutionState),
			formatTime(c.ExecutionStartedAt), formatTime(c.ExecutionEndedAt), c.ExecutionLastIndex)
		if err != nil {
			return fmt.Errorf("failed to insert checklist %q: %w", c.Name, err)
		}
		for j, it := range c.Items {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO checklist_items (checklist_position, position, name, execution_state, execution_last_changed)
				VALUES (?, ?, ?, ?, ?)`,
				i, j, it.Name, string(it.ExecutionState), formatTime(it.ExecutionLastChanged))
			if err != nil {
				return fmt.Errorf("failed to insert item %d of %q: %w", j+1, c.Name, err)
			}
		}
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO collection_meta (id, last_used_index) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET last_used_index = excluded.last_used_index`,
		col.LastUsedIndex)
	if err != nil {
		return fmt.Errorf("failed to save collection: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
