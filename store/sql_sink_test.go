package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomfunnel/config"
	"ecomfunnel/database"
	"ecomfunnel/logger"
	"ecomfunnel/models"
)

func newMockSink(t *testing.T, driver string) (*SQLEventSink, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	client := database.NewDBClient(db, driver, logger.NewNop())
	sink, err := NewSQLEventSink(client, "user_events", logger.NewNop())
	require.NoError(t, err)
	return sink, mock
}

func sampleEvents() []models.Event {
	id := int64(101)
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return []models.Event{
		{EventDate: ts, Session: "S1", User: "U1", PageType: "home", EventType: "page_view"},
		{EventDate: ts.Add(time.Minute), Session: "S1", User: "U1", PageType: "product_page", EventType: "add_to_cart", Product: &id},
	}
}

func TestNewSQLEventSinkRejectsUnknownDriver(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewSQLEventSink(database.NewDBClient(db, "oracle", logger.NewNop()), "user_events", logger.NewNop())
	assert.Error(t, err)
}

func TestMySQLCreateSchema(t *testing.T) {
	sink, mock := newMockSink(t, config.DriverMySQL)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS `user_events` (")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, sink.CreateSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())

	stmt := mysqlDialect.schema("user_events")[0]
	assert.Contains(t, stmt, "id BIGINT AUTO_INCREMENT PRIMARY KEY")
	for _, col := range []string{"event_date", "user", "session", "page_type", "event_type"} {
		assert.Contains(t, stmt, "INDEX idx_"+col+" (`"+col+"`)")
	}
}

func TestPostgresCreateSchema(t *testing.T) {
	sink, mock := newMockSink(t, config.DriverPostgres)

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "user_events" (`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	for _, col := range indexedColumns {
		mock.ExpectExec(regexp.QuoteMeta(`CREATE INDEX IF NOT EXISTS "idx_user_events_` + col + `"`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, sink.CreateSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSchemaFailure(t *testing.T) {
	sink, mock := newMockSink(t, config.DriverMySQL)
	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("access denied"))

	err := sink.CreateSchema(context.Background())
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "user_events", schemaErr.Table)
}

func TestInsertStatement(t *testing.T) {
	sink, _ := newMockSink(t, config.DriverMySQL)
	assert.Equal(t,
		"INSERT INTO `user_events` (`event_date`, `session`, `user`, `page_type`, `event_type`, `product`) VALUES (?, ?, ?, ?, ?, ?), (?, ?, ?, ?, ?, ?)",
		sink.insertStatement(2))

	pg, _ := newMockSink(t, config.DriverPostgres)
	assert.Equal(t,
		`INSERT INTO "user_events" ("event_date", "session", "user", "page_type", "event_type", "product") VALUES ($1, $2, $3, $4, $5, $6), ($7, $8, $9, $10, $11, $12)`,
		pg.insertStatement(2))
}

func TestInsertBatchCommits(t *testing.T) {
	sink, mock := newMockSink(t, config.DriverMySQL)
	events := sampleEvents()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(sink.insertStatement(2))).
		WithArgs(
			events[0].EventDate, "S1", "U1", "home", "page_view", nil,
			events[1].EventDate, "S1", "U1", "product_page", "add_to_cart", int64(101),
		).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, sink.InsertBatch(context.Background(), 1, events))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBatchRollsBack(t *testing.T) {
	sink, mock := newMockSink(t, config.DriverMySQL)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO").WillReturnError(errors.New("deadlock"))
	mock.ExpectRollback()

	err := sink.InsertBatch(context.Background(), 3, sampleEvents())
	var txErr *TransactionError
	require.True(t, errors.As(err, &txErr))
	assert.Equal(t, 3, txErr.Batch)
	assert.Equal(t, 2, txErr.Rows)
	assert.EqualError(t, txErr.Err, "deadlock")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBatchEmpty(t *testing.T) {
	sink, mock := newMockSink(t, config.DriverMySQL)
	require.NoError(t, sink.InsertBatch(context.Background(), 1, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOptimizeAndClose(t *testing.T) {
	sink, mock := newMockSink(t, config.DriverMySQL)
	mock.ExpectExec(regexp.QuoteMeta("OPTIMIZE TABLE `user_events`")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	require.NoError(t, sink.Optimize(context.Background()))
	require.NoError(t, sink.Close())
	require.NoError(t, mock.ExpectationsWereMet())

	pg, pgMock := newMockSink(t, config.DriverPostgres)
	pgMock.ExpectExec(regexp.QuoteMeta(`VACUUM ANALYZE "user_events"`)).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, pg.Optimize(context.Background()))
	require.NoError(t, pgMock.ExpectationsWereMet())
}
