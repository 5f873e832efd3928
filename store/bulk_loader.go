package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecomfunnel/config"
	"ecomfunnel/database"
	"ecomfunnel/eventlog"
	"ecomfunnel/logger"
	"ecomfunnel/models"
)

// EventSink is a destination table for raw events.
type EventSink interface {
	CreateSchema(ctx context.Context) error
	InsertBatch(ctx context.Context, batch int, events []models.Event) error
	Optimize(ctx context.Context) error
	Close() error
}

// LoadSummary describes a completed import.
type LoadSummary struct {
	Batches  int
	Rows     int
	Duration time.Duration
}

// OpenSink connects to the database named by cfg.Driver.
func OpenSink(ctx context.Context, cfg config.LoaderConfig, log *logger.Logger) (EventSink, error) {
	switch cfg.Driver {
	case config.DriverMySQL, config.DriverPostgres:
		open := database.NewMySQLDB
		if cfg.Driver == config.DriverPostgres {
			open = database.NewPostgresDB
		}
		client, err := open(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		sink, err := NewSQLEventSink(client, cfg.Table, log)
		if err != nil {
			client.Close()
			return nil, err
		}
		return sink, nil
	case config.DriverClickHouse:
		client, err := database.NewClickHouseDB(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return NewClickHouseEventSink(client, cfg.Table, log), nil
	default:
		return nil, fmt.Errorf("unsupported loader driver %q", cfg.Driver)
	}
}

// BulkLoader copies an event log into an EventSink in fixed-size batches.
type BulkLoader struct {
	sink      EventSink
	chunkSize int
	log       *logger.Logger
}

func NewBulkLoader(sink EventSink, chunkSize int, log *logger.Logger) *BulkLoader {
	return &BulkLoader{sink: sink, chunkSize: chunkSize, log: log}
}

// Import creates the table, inserts every chunk of path in its own
// transaction and optimizes the table. The sink is closed before Import
// returns, whatever the outcome. Nothing is retried.
func (l *BulkLoader) Import(ctx context.Context, path string) (summary LoadSummary, err error) {
	start := time.Now()
	defer func() {
		if closeErr := l.sink.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing connection: %w", closeErr)
		}
	}()

	if err = l.sink.CreateSchema(ctx); err != nil {
		l.log.Error("Error creating table", "error", err)
		return summary, err
	}

	err = eventlog.ReadChunks(path, l.chunkSize, func(chunk []models.Event) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch := summary.Batches + 1
		if err := l.sink.InsertBatch(ctx, batch, chunk); err != nil {
			l.log.Error("Error inserting batch", "batch", batch, "rows", len(chunk), "error", err)
			return err
		}
		summary.Batches = batch
		summary.Rows += len(chunk)
		l.log.Info("Successfully inserted records", "batch", batch, "rows", len(chunk), "total", summary.Rows)
		return nil
	})
	if err != nil {
		var pe *eventlog.ParseError
		var ioe *eventlog.IOError
		if errors.As(err, &pe) || errors.As(err, &ioe) {
			l.log.Error("Error reading CSV file", "path", path, "error", err)
		}
		return summary, err
	}

	if err = l.sink.Optimize(ctx); err != nil {
		l.log.Error("Error optimizing table", "error", err)
		return summary, err
	}

	summary.Duration = time.Since(start)
	l.log.Info("Import completed",
		"batches", summary.Batches,
		"rows", summary.Rows,
		"seconds", fmt.Sprintf("%.2f", summary.Duration.Seconds()))
	return summary, nil
}
