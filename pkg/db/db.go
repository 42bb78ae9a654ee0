package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"habittracker/pkg/config"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

func init() {
	// sqlx 默认绑定表里只有 "sqlite3"/"nrsqlite3"；modernc 注册的驱动名为 "sqlite"
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// NewConnection opens the store named by cfg and verifies it with a ping.
// The caller owns the returned handle and must Close it.
func NewConnection(cfg config.DBConfig, logger *zap.Logger) (*sqlx.DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}

	logger.Info("Initializing store connection",
		zap.String("driver", driver),
		zap.String("dsn", redact(cfg.DSN)),
	)

	var (
		conn *sqlx.DB
		err  error
	)
	switch driver {
	case DriverSQLite:
		conn, err = openSQLite(cfg.DSN)
	case DriverPostgres:
		conn, err = openPostgres(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
	if err != nil {
		logger.Error("Failed to open store", zap.Error(err))
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer pingCancel()

	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		logger.Error("Store ping failed", zap.Error(err))
		return nil, fmt.Errorf("failed to ping: %w", err)
	}

	logger.Info("Store connection established successfully")
	return conn, nil
}

func openSQLite(path string) (*sqlx.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite store path is empty")
	}
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create directory: %w", err)
			}
		}
	}

	conn, err := sqlx.Open(DriverSQLite, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// 单进程单写者；一个连接也让 :memory: 库在各操作间共享
	conn.SetMaxOpenConns(1)
	return conn, nil
}

func openPostgres(cfg config.DBConfig, logger *zap.Logger) (*sqlx.DB, error) {
	connCfg, err := pgx.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse db config: %w", err)
	}
	connCfg.Tracer = NewSlowQueryTracer(logger, cfg.SlowQueryThreshold)

	sqlDB := stdlib.OpenDB(*connCfg)
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetConnMaxIdleTime(time.Minute)

	return sqlx.NewDb(sqlDB, DriverPostgres), nil
}

// redact hides the password part of a postgres URL.
func redact(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 {
		return dsn
	}
	userinfo := dsn[scheme+3 : at]
	if colon := strings.Index(userinfo, ":"); colon >= 0 {
		return dsn[:scheme+3] + userinfo[:colon] + ":***" + dsn[at:]
	}
	return dsn
}
