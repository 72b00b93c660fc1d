// Package postgres implements store.Store on a single PostgreSQL table of JSONB
// documents. Change notifications come from a row trigger via LISTEN/NOTIFY.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/fekuna/omnipos-store-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-store-service/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const notifyChannel = "documents_changed"

//go:embed migrations/*.sql
var migrations embed.FS

var _ store.Store = (*Store)(nil)

type Store struct {
	DB       *sqlx.DB
	hub      *store.Hub
	listener *pq.Listener
	logger   logger.ZapLogger
	done     chan struct{}
}

type txKey struct{}

const selectDocuments = `
    SELECT (data || jsonb_build_object('id', id, 'createdAt', created_at))::text
    FROM documents
    WHERE collection = $1`

func NewStore(db *sqlx.DB, log logger.ZapLogger) *Store {
	s := &Store{
		DB:     db,
		logger: log,
		done:   make(chan struct{}),
	}
	s.hub = store.NewHub(func(ctx context.Context, collection string) ([]store.Document, error) {
		return s.List(ctx, collection)
	})
	return s
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		script, err := migrations.ReadFile("migrations/" + name)
		if err != nil {
			return err
		}
		if _, err := s.DB.ExecContext(ctx, string(script)); err != nil {
			return fmt.Errorf("migration %s: %w", name, err)
		}
		s.logger.Info("Applied migration", zap.String("name", name))
	}
	return nil
}

// Watch opens the change-feed connection and forwards notifications to subscribers
// until Close.
func (s *Store) Watch(dsn string) error {
	listener := pq.NewListener(dsn, time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			s.logger.Warn("Change feed connection event", zap.Int("event", int(ev)), zap.Error(err))
		}
	})
	if err := listener.Listen(notifyChannel); err != nil {
		_ = listener.Close()
		return fmt.Errorf("listen %s: %w", notifyChannel, err)
	}
	s.listener = listener

	go func() {
		for {
			select {
			case <-s.done:
				return
			case n := <-listener.Notify:
				if n == nil {
					// Reconnected; anything may have changed meanwhile.
					s.hub.NotifyAll()
					continue
				}
				s.hub.Notify(n.Extra)
			case <-time.After(90 * time.Second):
				if err := listener.Ping(); err != nil {
					s.logger.Warn("Change feed ping failed", zap.Error(err))
				}
			}
		}
	}()
	return nil
}

func (s *Store) Subscribe(collection string, fn store.SnapshotFunc) (store.Unsubscribe, error) {
	return s.hub.Subscribe(collection, fn)
}

func (s *Store) Create(ctx context.Context, collection string, data interface{}) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}

	query := `
        INSERT INTO documents (collection, id, data)
        VALUES ($1, $2, $3::jsonb - 'id' - 'createdAt')
    `
	if _, err := s.ext(ctx).ExecContext(ctx, query, collection, id.String(), string(raw)); err != nil {
		return "", fmt.Errorf("create %s: %w", collection, err)
	}
	return id.String(), nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (store.Document, error) {
	var doc string
	err := sqlx.GetContext(ctx, s.ext(ctx), &doc, selectDocuments+` AND id = $2`, collection, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return store.Document(doc), nil
}

func (s *Store) List(ctx context.Context, collection string, filters ...store.Filter) ([]store.Document, error) {
	query := selectDocuments
	args := []interface{}{collection}
	if len(filters) > 0 {
		match, err := json.Marshal(store.FiltersObject(filters))
		if err != nil {
			return nil, err
		}
		query += ` AND data @> $2::jsonb`
		args = append(args, string(match))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	var rows []string
	if err := sqlx.SelectContext(ctx, s.ext(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}

	docs := make([]store.Document, len(rows))
	for i, row := range rows {
		docs[i] = store.Document(row)
	}
	return docs, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]interface{}, preconditions ...store.Filter) error {
	values, timestamps := store.SplitFields(fields)
	patch, err := json.Marshal(values)
	if err != nil {
		return err
	}
	match, err := json.Marshal(store.FiltersObject(preconditions))
	if err != nil {
		return err
	}
	if timestamps == nil {
		timestamps = []string{}
	}

	query := `
        UPDATE documents
        SET data = data || $3::jsonb || (
            SELECT COALESCE(jsonb_object_agg(k, to_jsonb(now())), '{}'::jsonb)
            FROM unnest($4::text[]) AS k
        )
        WHERE collection = $1 AND id = $2 AND data @> $5::jsonb
    `
	res, err := s.ext(ctx).ExecContext(ctx, query, collection, id, string(patch), pq.Array(timestamps), string(match))
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	exists, err := s.exists(ctx, collection, id)
	if err != nil {
		return err
	}
	if exists {
		return store.ErrPreconditionFailed
	}
	return store.ErrNotFound
}

func (s *Store) Increment(ctx context.Context, collection, id, field string, delta int64) error {
	query := `
        UPDATE documents
        SET data = jsonb_set(data, ARRAY[$3::text], to_jsonb(COALESCE((data->>$3::text)::numeric, 0) + $4), true)
        WHERE collection = $1 AND id = $2
    `
	res, err := s.ext(ctx).ExecContext(ctx, query, collection, id, field, delta)
	if err != nil {
		return fmt.Errorf("increment %s/%s.%s: %w", collection, id, field, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) (bool, error) {
	res, err := s.ext(ctx).ExecContext(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return false, fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *Store) Close() error {
	close(s.done)
	s.hub.Close()
	var err error
	if s.listener != nil {
		err = multierr.Append(err, s.listener.Close())
	}
	return multierr.Append(err, s.DB.Close())
}

func (s *Store) exists(ctx context.Context, collection, id string) (bool, error) {
	var found bool
	err := sqlx.GetContext(ctx, s.ext(ctx), &found,
		`SELECT EXISTS (SELECT 1 FROM documents WHERE collection = $1 AND id = $2)`, collection, id)
	return found, err
}

func (s *Store) ext(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return s.DB
}
