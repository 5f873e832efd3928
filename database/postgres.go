package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"time"

	_ "github.com/lib/pq"

	"ecomfunnel/config"
	"ecomfunnel/logger"
)

type DBClient struct {
	DB     *sql.DB
	Driver string
	log    *logger.Logger
}

// NewDBClient wraps an already open handle.
func NewDBClient(db *sql.DB, driver string, log *logger.Logger) *DBClient {
	return &DBClient{DB: db, Driver: driver, log: log}
}

// PostgresDSN builds a lib/pq connection URL from cfg.
func PostgresDSN(cfg config.LoaderConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   cfg.Host + ":" + strconv.Itoa(cfg.ResolvedPort()),
		Path:   "/" + cfg.Database,
	}
	q := u.Query()
	q.Set("sslmode", "disable") // local loader target; enable TLS through the URL if needed

	// lib/pq takes connect_timeout in whole seconds.
	if cfg.ConnectTimeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(cfg.ConnectTimeout/time.Second)))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func NewPostgresDB(ctx context.Context, cfg config.LoaderConfig, log *logger.Logger) (*DBClient, error) {
	return openSQL(ctx, "postgres", PostgresDSN(cfg), cfg, log)
}

func openSQL(ctx context.Context, driver, dsn string, cfg config.LoaderConfig, log *logger.Logger) (*DBClient, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening %s connection: %w", driver, err)
	}

	// The loader runs one transaction at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	// sql.Open does not dial; the ping is the first real connection.
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout(cfg))
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to %s (ping failed): %w", driver, err)
	}

	log.Info("Connected to database", "driver", driver, "host", cfg.Host, "database", cfg.Database)
	return NewDBClient(db, driver, log), nil
}

// connectTimeout falls back to 10s when loader.connecttimeout is unset.
func connectTimeout(cfg config.LoaderConfig) time.Duration {
	if cfg.ConnectTimeout > 0 {
		return cfg.ConnectTimeout
	}
	return 10 * time.Second
}

func (c *DBClient) Close() error {
	if c.DB == nil {
		return nil
	}
	if err := c.DB.Close(); err != nil {
		c.log.Error("Error closing database connection", "driver", c.Driver, "error", err)
		return err
	}
	c.log.Info("Database connection closed", "driver", c.Driver)
	return nil
}
