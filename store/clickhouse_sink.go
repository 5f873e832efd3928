// store/clickhouse_sink.go
package store

import (
	"context"
	"fmt"

	"ecomfunnel/database"
	"ecomfunnel/logger"
	"ecomfunnel/models"
)

// ClickHouseEventSink bulk-loads events into a MergeTree table. ClickHouse has
// no auto-increment keys; rows are ordered by the sorting key instead.
type ClickHouseEventSink struct {
	DB    *database.ClickHouseClient
	table string
	log   *logger.Logger
}

func NewClickHouseEventSink(chClient *database.ClickHouseClient, table string, log *logger.Logger) *ClickHouseEventSink {
	return &ClickHouseEventSink{
		DB:    chClient,
		table: table,
		log:   log,
	}
}

func (s *ClickHouseEventSink) CreateSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			event_date DateTime64(6),
			session String,
			user String,
			page_type LowCardinality(String),
			event_type LowCardinality(String),
			product Nullable(Int64),
			created_at DateTime DEFAULT now(),
			INDEX idx_user user TYPE bloom_filter GRANULARITY 4,
			INDEX idx_session session TYPE bloom_filter GRANULARITY 4
		) ENGINE = MergeTree
		ORDER BY (event_date, page_type, event_type)
	`, s.table)

	if err := s.DB.Conn.Exec(ctx, query); err != nil {
		return &SchemaError{Table: s.table, Err: err}
	}
	s.log.Info("Table created or already exists", "table", s.table)
	return nil
}

// InsertBatch sends events as one native batch. A row that fails to append
// aborts the whole batch.
func (s *ClickHouseEventSink) InsertBatch(ctx context.Context, batchNo int, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := s.DB.Conn.PrepareBatch(ctx, fmt.Sprintf(
		"INSERT INTO %s (event_date, session, user, page_type, event_type, product)", s.table))
	if err != nil {
		return &TransactionError{Batch: batchNo, Rows: len(events), Err: fmt.Errorf("failed to prepare batch insert: %w", err)}
	}

	for _, event := range events {
		err := batch.Append(
			event.EventDate,
			event.Session,
			event.User,
			event.PageType,
			event.EventType,
			event.Product,
		)
		if err != nil {
			if abortErr := batch.Abort(); abortErr != nil {
				s.log.Error("Error aborting batch", "batch", batchNo, "error", abortErr)
			}
			return &TransactionError{Batch: batchNo, Rows: len(events), Err: fmt.Errorf("appending session %s: %w", event.Session, err)}
		}
	}

	if err := batch.Send(); err != nil {
		return &TransactionError{Batch: batchNo, Rows: len(events), Err: fmt.Errorf("failed to send batch: %w", err)}
	}
	return nil
}

func (s *ClickHouseEventSink) Optimize(ctx context.Context) error {
	if err := s.DB.Conn.Exec(ctx, fmt.Sprintf("OPTIMIZE TABLE %s FINAL", s.table)); err != nil {
		return fmt.Errorf("optimizing table %s: %w", s.table, err)
	}
	return nil
}

func (s *ClickHouseEventSink) Close() error {
	return s.DB.Close()
}
