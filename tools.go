package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Tool handlers. Each one follows the same skeleton: per-call timeout
// context, dedicated connection released by defer on every exit path,
// build statement, execute, shape the result. No failure escapes a
// handler; each converts errors into the payload shape its tool
// promises and logs the detail to stderr.

// errorPayload is the uniform failure shape for tools that report
// errors to the caller.
func errorPayload(err error) map[string]any {
	return map[string]any{"error": err.Error()}
}

// reportToolError writes diagnostic detail to the log; only the message
// string travels back to the caller.
func (s *MCPServer) reportToolError(tool string, err error) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		s.logger.Error("tool rejected input", "tool", tool, "err", err)
		return
	}
	s.logger.Error("tool failed", "tool", tool, "err", err)
}

func (s *MCPServer) toolContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(s.ctx, s.cfg.QueryTimeout)
}

// fetchTableNames runs the adapter's base-table listing query. Shared
// by the list_tables tool and the resource listing.
func (s *MCPServer) fetchTableNames(ctx context.Context) ([]string, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, execErr("acquire connection", err)
	}
	defer conn.Close()

	query, args := s.adapter.ListTablesQuery(s.databaseName)
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, execErr("list tables", err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, execErr("scan table name", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, execErr("iterate tables", err)
	}
	return tables, nil
}

// toolListTables returns {tables: [...]}, or an empty list on any
// failure.
func (s *MCPServer) toolListTables() any {
	ctx, cancel := s.toolContext()
	defer cancel()

	tables, err := s.fetchTableNames(ctx)
	if err != nil {
		s.reportToolError("list_tables", err)
		return map[string]any{"tables": []string{}}
	}
	return map[string]any{"tables": tables}
}

// toolPreviewTable returns the first previewRowLimit rows of a table,
// or empty columns and rows on any failure (including an invalid name).
func (s *MCPServer) toolPreviewTable(tableName string) any {
	empty := QueryResult{Columns: []string{}, Rows: [][]any{}}

	ident, err := validateTableName(tableName)
	if err != nil {
		s.reportToolError("preview_table", err)
		return empty
	}

	ctx, cancel := s.toolContext()
	defer cancel()

	conn, err := s.db.Conn(ctx)
	if err != nil {
		s.reportToolError("preview_table", execErr("acquire connection", err))
		return empty
	}
	defer conn.Close()

	query := s.adapter.PreviewQuery(ident.Quoted(s.adapter), previewRowLimit)
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		s.reportToolError("preview_table", execErr("preview table", err))
		return empty
	}
	defer rows.Close()

	result, err := collectRows(rows, previewRowLimit)
	if err != nil {
		s.reportToolError("preview_table", err)
		return empty
	}
	return result
}

// toolDescribeTable returns per-column schema information ordered by
// ordinal position. A syntactically valid but nonexistent table yields
// an empty column list; other failures yield {error}.
func (s *MCPServer) toolDescribeTable(tableName string) any {
	ident, err := validateTableName(tableName)
	if err != nil {
		s.reportToolError("describe_table", err)
		return errorPayload(err)
	}

	ctx, cancel := s.toolContext()
	defer cancel()

	conn, err := s.db.Conn(ctx)
	if err != nil {
		s.reportToolError("describe_table", execErr("acquire connection", err))
		return errorPayload(execErr("acquire connection", err))
	}
	defer conn.Close()

	// The catalog filters on the unqualified object name.
	query, args := s.adapter.DescribeTableQuery(s.databaseName, ident.Object())
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		wrapped := execErr("describe table", err)
		s.reportToolError("describe_table", wrapped)
		return errorPayload(wrapped)
	}
	defer rows.Close()

	columns := []ColumnInfo{}
	for rows.Next() {
		col, err := s.adapter.ScanColumnInfo(rows)
		if err != nil {
			wrapped := execErr("scan column info", err)
			s.reportToolError("describe_table", wrapped)
			return errorPayload(wrapped)
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		wrapped := execErr("iterate columns", err)
		s.reportToolError("describe_table", wrapped)
		return errorPayload(wrapped)
	}

	return map[string]any{
		"table_name": ident.String(),
		"columns":    columns,
	}
}

// toolGetTableCount returns {table_name, row_count}, or {error}.
func (s *MCPServer) toolGetTableCount(tableName string) any {
	ident, err := validateTableName(tableName)
	if err != nil {
		s.reportToolError("get_table_count", err)
		return errorPayload(err)
	}

	ctx, cancel := s.toolContext()
	defer cancel()

	conn, err := s.db.Conn(ctx)
	if err != nil {
		s.reportToolError("get_table_count", execErr("acquire connection", err))
		return errorPayload(execErr("acquire connection", err))
	}
	defer conn.Close()

	var count int64
	query := "SELECT COUNT(*) FROM " + ident.Quoted(s.adapter)
	if err := conn.QueryRowContext(ctx, query).Scan(&count); err != nil {
		wrapped := execErr("count rows", err)
		s.reportToolError("get_table_count", wrapped)
		return errorPayload(wrapped)
	}

	return map[string]any{
		"table_name": ident.String(),
		"row_count":  count,
	}
}

// toolRunQuery executes arbitrary caller-supplied SQL. The statement
// runs once, inside a transaction; whether it produced a result set is
// decided from driver-reported column metadata, never from the SQL
// text. Result-set statements are read and rolled back; everything else
// is committed and reported with its affected-row count.
func (s *MCPServer) toolRunQuery(query string) any {
	if !s.cfg.AllowRawQuery {
		err := fmt.Errorf("run_query is disabled; set MCP_ALLOW_RAW_QUERY=true to enable it")
		s.reportToolError("run_query", err)
		return errorPayload(err)
	}

	ctx, cancel := s.toolContext()
	defer cancel()

	conn, err := s.db.Conn(ctx)
	if err != nil {
		s.reportToolError("run_query", execErr("acquire connection", err))
		return errorPayload(execErr("acquire connection", err))
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		wrapped := execErr("begin transaction", err)
		s.reportToolError("run_query", wrapped)
		return errorPayload(wrapped)
	}

	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		tx.Rollback()
		wrapped := execErr("execute query", err)
		s.reportToolError("run_query", wrapped)
		return errorPayload(wrapped)
	}

	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		tx.Rollback()
		wrapped := execErr("read columns", err)
		s.reportToolError("run_query", wrapped)
		return errorPayload(wrapped)
	}

	if len(columns) > 0 {
		result, err := collectRows(rows, s.cfg.MaxResultRows)
		rows.Close()
		tx.Rollback() // read path, leave the database untouched
		if err != nil {
			s.reportToolError("run_query", err)
			return errorPayload(err)
		}
		return result
	}

	// No column metadata: a write or DDL statement. Read the session's
	// affected-row counter before committing.
	rows.Close()

	var affected int64
	if counter, ok := s.adapter.AffectedRowsQuery(); ok {
		if err := tx.QueryRowContext(ctx, counter).Scan(&affected); err != nil {
			tx.Rollback()
			wrapped := execErr("read affected rows", err)
			s.reportToolError("run_query", wrapped)
			return errorPayload(wrapped)
		}
	}

	if err := tx.Commit(); err != nil {
		wrapped := execErr("commit", err)
		s.reportToolError("run_query", wrapped)
		return errorPayload(wrapped)
	}

	return ExecResult{
		Message:      "Query executed successfully",
		AffectedRows: affected,
	}
}

// collectRows drains a result set into the uniform {columns, rows}
// shape, capping at maxRows when maxRows > 0. Every row carries exactly
// one value per column; []byte values become strings so they serialize
// as text rather than base64.
func collectRows(rows *sql.Rows, maxRows int) (QueryResult, error) {
	columns, err := rows.Columns()
	if err != nil {
		return QueryResult{}, execErr("read columns", err)
	}

	result := QueryResult{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		if maxRows > 0 && len(result.Rows) >= maxRows {
			break
		}

		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return QueryResult{}, execErr("scan row", err)
		}

		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return QueryResult{}, execErr("iterate rows", err)
	}
	return result, nil
}
