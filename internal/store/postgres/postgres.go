// Package postgres implements the document store on PostgreSQL. Documents
// are rows keyed by collection and id with the fields in a jsonb column;
// a trigger raises a notification on every write and subscribers re-read
// the full collection per notification.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"

	"github.com/avelasco-dev/inventario/internal/common"
	"github.com/avelasco-dev/inventario/internal/logging"
	"github.com/avelasco-dev/inventario/internal/store"
	"github.com/avelasco-dev/inventario/internal/store/postgres/migrations"
	"github.com/google/uuid"
)

// notifyChannel is the pg_notify channel raised by the documents trigger.
// The payload is the mutated collection path.
const notifyChannel = "documents_changed"

type Store struct {
	db  *sql.DB
	dsn string
	log logging.Logger
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// New opens the database, verifies connectivity with a backed-off ping and
// runs the embedded migrations.
func New(ctx context.Context, dsn string, log logging.Logger) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	backoff := retry.WithMaxRetries(5, retry.NewFibonacci(500*time.Millisecond))
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	s := &Store{db: db, dsn: dsn, log: log.With("module", "pgstore")}
	if err := s.runMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) runMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect error: %w", err)
	}
	if err := gooseUpContext(ctx, s.db, "."); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	s.log.Debug(ctx, "migrations applied")
	return nil
}

func (s *Store) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	data, err := store.EncodeFields(fields)
	if err != nil {
		return "", fmt.Errorf("encode error: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, fields) VALUES ($1, $2, $3)`,
		collection, id, data)
	if err != nil {
		return "", fmt.Errorf("insert error: %w", err)
	}
	return id, nil
}

// Update merges the patch into the stored fields. Patch keys replace stored
// keys wholesale, which matches the jsonb || operator.
func (s *Store) Update(ctx context.Context, collection string, id string, patch map[string]any) error {
	data, err := store.EncodeFields(patch)
	if err != nil {
		return fmt.Errorf("encode error: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET fields = fields || $3::jsonb, updated_at = now()
		 WHERE collection = $1 AND id = $2`,
		collection, id, data)
	if err != nil {
		return fmt.Errorf("update error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection string, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("delete error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (s *Store) Get(ctx context.Context, collection string, id string) (store.Document, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT fields FROM documents WHERE collection = $1 AND id = $2`,
		collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Document{}, common.ErrorNotFound
	}
	if err != nil {
		return store.Document{}, fmt.Errorf("select error: %w", err)
	}

	fields, err := store.DecodeFields(data)
	if err != nil {
		return store.Document{}, fmt.Errorf("decode error: %w", err)
	}
	return store.Document{ID: id, Fields: fields}, nil
}

// Subscribe opens a dedicated connection for LISTEN/NOTIFY and emits a full
// snapshot for the current state plus one per notification touching the
// collection.
func (s *Store) Subscribe(ctx context.Context, collection string) (store.Subscription, error) {
	sub, err := newSubscription(ctx, s, collection)
	if err != nil {
		return nil, err
	}
	go sub.run()
	return sub, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) readSnapshot(ctx context.Context, collection string) (store.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, fields FROM documents WHERE collection = $1`, collection)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("select error: %w", err)
	}
	defer rows.Close()

	var docs []store.Document
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return store.Snapshot{}, fmt.Errorf("scan error: %w", err)
		}
		fields, err := store.DecodeFields(data)
		if err != nil {
			return store.Snapshot{}, fmt.Errorf("decode error: %w", err)
		}
		docs = append(docs, store.Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return store.Snapshot{}, fmt.Errorf("rows error: %w", err)
	}
	return store.Snapshot{Docs: docs}, nil
}
