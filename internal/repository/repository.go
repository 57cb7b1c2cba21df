// Package repository persists whole-graph snapshots of the league state
// in SQLite. The domain objects are not mapped to tables; each snapshot
// is one opaque JSON payload, written atomically and rotated.
package repository

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kofflo/cobram/internal/errors"
)

// SnapshotStore is what the application layer needs from persistence.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, payload []byte) (int64, error)
	LoadLatest(ctx context.Context) ([]byte, error)
	Ping(ctx context.Context) error
	Close() error
}

var ErrNoSnapshot = errors.NotFound("no snapshot stored")

// Repository is the SQLite-backed snapshot store.
type Repository struct {
	db   *sql.DB
	keep int
}

// New opens (or creates) the database at dbPath. keep is how many
// snapshots to retain; older ones are pruned on save.
func New(dbPath string, keep int) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if keep < 1 {
		keep = 1
	}
	repo := &Repository{db: db, keep: keep}

	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection.
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			payload BLOB NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON snapshots(created_at)`,
	}
	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

// SaveSnapshot stores a snapshot and prunes beyond the retention limit.
func (r *Repository) SaveSnapshot(ctx context.Context, payload []byte) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"INSERT INTO snapshots (payload, created_at) VALUES (?, ?)",
		payload, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM snapshots WHERE id NOT IN (
			SELECT id FROM snapshots ORDER BY id DESC LIMIT ?
		)`, r.keep)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// LoadLatest returns the most recent snapshot payload.
func (r *Repository) LoadLatest(ctx context.Context) ([]byte, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx,
		"SELECT payload FROM snapshots ORDER BY id DESC LIMIT 1").Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// ListSnapshots returns the stored snapshot ids and timestamps, newest
// first.
func (r *Repository) ListSnapshots(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, created_at FROM snapshots ORDER BY id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		if err := rows.Scan(&info.ID, &info.CreatedAt); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// SnapshotInfo describes one stored snapshot.
type SnapshotInfo struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}
