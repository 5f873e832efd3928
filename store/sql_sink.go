package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"ecomfunnel/config"
	"ecomfunnel/database"
	"ecomfunnel/logger"
	"ecomfunnel/models"
)

var eventColumns = []string{"event_date", "session", "user", "page_type", "event_type", "product"}

// Columns that get a secondary index, in creation order.
var indexedColumns = []string{"event_date", "user", "session", "page_type", "event_type"}

type dialect struct {
	quote       func(ident string) string
	placeholder func(n int) string
	schema      func(table string) []string
	optimize    func(table string) string
}

var mysqlDialect = dialect{
	quote:       func(ident string) string { return "`" + ident + "`" },
	placeholder: func(int) string { return "?" },
	schema: func(table string) []string {
		var b strings.Builder
		fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS `%s` (\n", table)
		b.WriteString("\tid BIGINT AUTO_INCREMENT PRIMARY KEY,\n")
		b.WriteString("\tevent_date DATETIME(6),\n")
		b.WriteString("\tsession VARCHAR(255),\n")
		b.WriteString("\t`user` VARCHAR(255),\n")
		b.WriteString("\tpage_type VARCHAR(50),\n")
		b.WriteString("\tevent_type VARCHAR(50),\n")
		b.WriteString("\tproduct BIGINT,\n")
		b.WriteString("\tcreated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP")
		for _, col := range indexedColumns {
			fmt.Fprintf(&b, ",\n\tINDEX idx_%s (`%s`)", col, col)
		}
		b.WriteString("\n) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci")
		return []string{b.String()}
	},
	optimize: func(table string) string { return "OPTIMIZE TABLE `" + table + "`" },
}

var postgresDialect = dialect{
	quote:       func(ident string) string { return `"` + ident + `"` },
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	schema: func(table string) []string {
		stmts := []string{fmt.Sprintf(`CREATE TABLE IF NOT EXISTS "%s" (
	id BIGSERIAL PRIMARY KEY,
	event_date TIMESTAMPTZ,
	session VARCHAR(255),
	"user" VARCHAR(255),
	page_type VARCHAR(50),
	event_type VARCHAR(50),
	product BIGINT,
	created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
)`, table)}
		// Index names are schema-wide in PostgreSQL.
		for _, col := range indexedColumns {
			stmts = append(stmts, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS "idx_%s_%s" ON "%s" ("%s")`, table, col, table, col))
		}
		return stmts
	},
	optimize: func(table string) string { return `VACUUM ANALYZE "` + table + `"` },
}

// SQLEventSink bulk-loads events into MySQL or PostgreSQL.
type SQLEventSink struct {
	client  *database.DBClient
	table   string
	dialect dialect
	log     *logger.Logger
}

func NewSQLEventSink(client *database.DBClient, table string, log *logger.Logger) (*SQLEventSink, error) {
	var d dialect
	switch client.Driver {
	case config.DriverMySQL:
		d = mysqlDialect
	case config.DriverPostgres:
		d = postgresDialect
	default:
		return nil, fmt.Errorf("no SQL dialect for driver %q", client.Driver)
	}
	return &SQLEventSink{client: client, table: table, dialect: d, log: log}, nil
}

func (s *SQLEventSink) CreateSchema(ctx context.Context) error {
	for _, stmt := range s.dialect.schema(s.table) {
		if _, err := s.client.DB.ExecContext(ctx, stmt); err != nil {
			return &SchemaError{Table: s.table, Err: err}
		}
	}
	s.log.Info("Table created or already exists", "table", s.table)
	return nil
}

// insertStatement builds one multi-row INSERT for rows events.
func (s *SQLEventSink) insertStatement(rows int) string {
	cols := make([]string, len(eventColumns))
	for i, c := range eventColumns {
		cols[i] = s.dialect.quote(c)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", s.dialect.quote(s.table), strings.Join(cols, ", "))
	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for c := range eventColumns {
			if c > 0 {
				b.WriteString(", ")
			}
			b.WriteString(s.dialect.placeholder(n))
			n++
		}
		b.WriteByte(')')
	}
	return b.String()
}

// InsertBatch writes events in a single statement inside its own transaction.
// On failure the transaction is rolled back and a *TransactionError returned.
func (s *SQLEventSink) InsertBatch(ctx context.Context, batch int, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}

	args := make([]interface{}, 0, len(events)*len(eventColumns))
	for _, ev := range events {
		var product interface{}
		if ev.Product != nil {
			product = *ev.Product
		}
		args = append(args, ev.EventDate, ev.Session, ev.User, ev.PageType, ev.EventType, product)
	}

	tx, err := s.client.DB.BeginTx(ctx, nil)
	if err != nil {
		return &TransactionError{Batch: batch, Rows: len(events), Err: err}
	}
	if _, err := tx.ExecContext(ctx, s.insertStatement(len(events)), args...); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.Error("Rollback failed", "batch", batch, "error", rbErr)
		}
		return &TransactionError{Batch: batch, Rows: len(events), Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &TransactionError{Batch: batch, Rows: len(events), Err: err}
	}
	return nil
}

func (s *SQLEventSink) Optimize(ctx context.Context) error {
	if _, err := s.client.DB.ExecContext(ctx, s.dialect.optimize(s.table)); err != nil {
		return fmt.Errorf("optimizing table %s: %w", s.table, err)
	}
	return nil
}

func (s *SQLEventSink) Close() error {
	return s.client.Close()
}
