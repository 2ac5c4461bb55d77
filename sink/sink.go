package sink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mevdschee/qsbulk/metrics"
	"github.com/mevdschee/qsbulk/parser"
)

// ErrNoDB is returned when a SQL sink has no database handle
var ErrNoDB = errors.New("sink has no database handle")

// Executor runs a list of SQL statements as one unit of work
type Executor interface {
	ExecuteBulk(ctx context.Context, statements []string, useTransaction bool) error
}

// Func adapts a function to the Executor interface
type Func func(ctx context.Context, statements []string, useTransaction bool) error

// ExecuteBulk calls f
func (f Func) ExecuteBulk(ctx context.Context, statements []string, useTransaction bool) error {
	return f(ctx, statements, useTransaction)
}

// StatementError reports which statement of a bulk execution failed
type StatementError struct {
	Index     int
	Statement string
	Err       error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("statement %d (%s): %v", e.Index, truncateQuery(e.Statement, 60), e.Err)
}

func (e *StatementError) Unwrap() error {
	return e.Err
}

// SQL executes statements on a database/sql handle
type SQL struct {
	db *sql.DB
}

// New creates a sink on an open database handle
func New(db *sql.DB) *SQL {
	return &SQL{db: db}
}

// Open opens a database with the given driver and verifies the connection
func Open(ctx context.Context, driverName, dsn string) (*SQL, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}
	return &SQL{db: db}, nil
}

// DB returns the underlying handle
func (s *SQL) DB() *sql.DB {
	return s.db
}

// Close closes the underlying handle
func (s *SQL) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ExecuteBulk runs statements in order. With useTransaction the statements
// are executed in one transaction that is rolled back on the first failure;
// otherwise every statement is attempted and all failures are joined.
func (s *SQL) ExecuteBulk(ctx context.Context, statements []string, useTransaction bool) error {
	if s.db == nil {
		return ErrNoDB
	}
	if len(statements) == 0 {
		return nil
	}
	if useTransaction {
		return s.executeTransaction(ctx, statements)
	}
	return s.executeEach(ctx, statements)
}

// executeTransaction executes statements inside a single transaction
func (s *SQL) executeTransaction(ctx context.Context, statements []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return &StatementError{Index: i, Statement: stmt, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	for _, stmt := range statements {
		countStatement(stmt)
	}
	return nil
}

// executeEach executes statements one by one, continuing past failures
func (s *SQL) executeEach(ctx context.Context, statements []string) error {
	var errs []error
	for i, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			errs = append(errs, &StatementError{Index: i, Statement: stmt, Err: err})
			continue
		}
		countStatement(stmt)
	}
	return errors.Join(errs...)
}

func countStatement(stmt string) {
	p := parser.Parse(stmt)
	metrics.StatementsExecuted.WithLabelValues(p.Type.String(), p.Target()).Inc()
}

// truncateQuery truncates a statement for use in error messages
func truncateQuery(query string, maxLen int) string {
	if len(query) <= maxLen {
		return query
	}
	return query[:maxLen] + "..."
}
