// Package executor runs one SQL statement and normalizes what comes back.
//
// Statements are classified by their leading keyword:
//
//   - queries return the first column of the first row, or nothing
//   - updates return the affected row count
//   - everything else (DDL, SET, GRANT, ...) returns nothing
package executor

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hlop3z/sqlfixture/internal/alerr"
)

// Conn is the part of *sql.DB, *sql.Conn and *sql.Tx the executor needs.
type Conn interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Execute classifies query, runs it on conn and normalizes the outcome.
// Errors are *alerr.Error values wrapping the driver error unchanged.
func Execute(ctx context.Context, conn Conn, query string) (Result, error) {
	if strings.TrimSpace(query) == "" {
		return None(), alerr.New(alerr.ErrEmptySQL, "SQL statement is empty")
	}

	stmt := Classify(query)
	if stmt == StatementQuery {
		return executeQuery(ctx, conn, query)
	}
	return executeUpdate(ctx, conn, query, stmt)
}

func executeQuery(ctx context.Context, conn Conn, query string) (Result, error) {
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return None(), alerr.WrapSQL(err, "", query)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return None(), alerr.Wrap(alerr.ErrSQLScan, err, "failed to read result columns").WithSQL(query)
	}

	if len(cols) == 0 || !rows.Next() {
		if err := rows.Err(); err != nil {
			return None(), alerr.WrapSQL(err, "", query)
		}
		return None(), nil
	}

	values := make([]any, len(cols))
	targets := make([]any, len(cols))
	for i := range values {
		targets[i] = &values[i]
	}
	if err := rows.Scan(targets...); err != nil {
		return None(), alerr.Wrap(alerr.ErrSQLScan, err, "failed to scan first row").WithSQL(query)
	}

	// Remaining rows are discarded; errors raised while closing still count.
	if err := rows.Close(); err != nil {
		return None(), alerr.WrapSQL(err, "", query)
	}
	if err := rows.Err(); err != nil {
		return None(), alerr.WrapSQL(err, "", query)
	}

	if values[0] == nil {
		return None(), nil
	}
	return Scalar(FormatValue(values[0])), nil
}

func executeUpdate(ctx context.Context, conn Conn, query string, stmt Statement) (Result, error) {
	res, err := conn.ExecContext(ctx, query)
	if err != nil {
		return None(), alerr.WrapSQL(err, "", query)
	}

	if stmt != StatementUpdate {
		return None(), nil
	}

	n, err := res.RowsAffected()
	if err != nil {
		// Driver cannot report a count for this statement.
		return None(), nil
	}
	return RowCount(n), nil
}
