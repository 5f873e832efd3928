package store

import "fmt"

// SchemaError reports a failure creating the destination table or its indexes.
type SchemaError struct {
	Table string
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("creating table %s: %v", e.Table, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// TransactionError reports a batch insert that failed and was rolled back.
// Batch is 1-based.
type TransactionError struct {
	Batch int
	Rows  int
	Err   error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("inserting batch %d (%d rows): %v", e.Batch, e.Rows, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }
