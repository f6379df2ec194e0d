package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jgivc/darkhammer/internal/common"
	"github.com/jgivc/darkhammer/internal/entity"

	_ "modernc.org/sqlite"
)

const (
	sqliteDriver = "sqlite"

	createTableQuery = `CREATE TABLE IF NOT EXISTS snapshots (
	name TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`
	selectQuery = `SELECT value FROM snapshots WHERE name = ?`
	upsertQuery = `INSERT INTO snapshots (name, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
)

type sqliteRepository struct {
	db  *sql.DB
	log *slog.Logger
}

func NewSQLiteRepository(path string, log *slog.Logger) (*sqliteRepository, error) {
	db, err := sql.Open(sqliteDriver, path)
	if err != nil {
		return nil, fmt.Errorf("cannot open database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createTableQuery); err != nil {
		db.Close()

		return nil, fmt.Errorf("cannot create snapshots table: %w", err)
	}

	return &sqliteRepository{
		db:  db,
		log: log.With(slog.String("item", "SQLiteSnapshotRepository")),
	}, nil
}

func (r *sqliteRepository) Load(ctx context.Context, key string) (entity.Snapshot, error) {
	var value string
	if err := r.db.QueryRowContext(ctx, selectQuery, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Snapshot{}, common.ErrSnapshotNotFoundError
		}

		return entity.Snapshot{}, fmt.Errorf("cannot select snapshot %s: %w", key, err)
	}

	return decode([]byte(value))
}

func (r *sqliteRepository) Save(ctx context.Context, key string, snap entity.Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, upsertQuery, key, string(data), time.Now().Unix()); err != nil {
		return fmt.Errorf("cannot upsert snapshot %s: %w", key, err)
	}

	r.log.Debug("Snapshot saved", slog.String("key", key), slog.Int("size", len(data)))

	return nil
}

func (r *sqliteRepository) Close() error {
	return r.db.Close()
}
