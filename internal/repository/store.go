package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"habittracker/internal/model"
	"habittracker/pkg/db"
	"habittracker/pkg/logger"
	"habittracker/pkg/metrics"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// HabitStore persists habits and their completion log in the habits and
// tracker tables. Every exported operation runs in its own transaction.
type HabitStore struct {
	db     *sqlx.DB
	logger *zap.Logger
	clock  func() time.Time
}

type Option func(*HabitStore)

// WithClock sets the source of "today" handed to habits for streak checks.
func WithClock(clock func() time.Time) Option {
	return func(s *HabitStore) {
		s.clock = clock
	}
}

// NewHabitStore takes ownership of db; Close releases it.
func NewHabitStore(db *sqlx.DB, logger *zap.Logger, opts ...Option) *HabitStore {
	s := &HabitStore{
		db:     db,
		logger: logger,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureSchema creates the tables for the connected dialect if missing.
func (s *HabitStore) EnsureSchema(ctx context.Context) error {
	file := "schema/sqlite.sql"
	if s.db.DriverName() == db.DriverPostgres {
		file = "schema/postgres.sql"
	}

	ddl, err := schemaFS.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}

	if _, err := s.db.ExecContext(ctx, string(ddl)); err != nil {
		s.logger.Error("Failed to create schema", zap.String("file", file), zap.Error(err))
		return fmt.Errorf("create schema: %w", err)
	}

	s.logger.Debug("Schema ready", zap.String("file", file))
	return nil
}

func (s *HabitStore) Close() error {
	return s.db.Close()
}

func (s *HabitStore) log(ctx context.Context) *zap.Logger {
	return logger.WithTrace(ctx, s.logger)
}

func (s *HabitStore) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Warn("Rollback failed", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *HabitStore) observe(operation, table string, start time.Time, err error) {
	metrics.RecordDBQueryDuration(operation, table, time.Since(start))
	metrics.IncrementStoreOperation(operation, statusOf(err))
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, model.ErrHabitNotFound):
		return "not_found"
	case errors.Is(err, model.ErrDuplicateHabit):
		return "duplicate"
	case errors.Is(err, model.ErrMissingDate):
		return "invalid"
	case errors.Is(err, model.ErrDecode):
		return "decode_error"
	default:
		return "error"
	}
}
