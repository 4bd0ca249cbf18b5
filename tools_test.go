package main

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, mutate func(*Config)) *MCPServer {
	t.Helper()

	cfg := Config{
		Driver:        "sqlite",
		SQLitePath:    filepath.Join(t.TempDir(), "tools_test.db"),
		QueryTimeout:  30 * time.Second,
		MaxResultRows: 10000,
		AllowRawQuery: true,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := NewMCPServer(context.Background(), &SQLiteAdapter{}, cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	seedTestData(t, srv.db)
	return srv
}

func seedTestData(t *testing.T, db *sql.DB) {
	t.Helper()

	schema := []string{
		`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL, age INTEGER DEFAULT 21)`,
		`CREATE TABLE empty_table (a TEXT, b INTEGER)`,
		`CREATE TABLE big_table (n INTEGER)`,
	}
	for _, stmt := range schema {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	_, err := db.Exec(`INSERT INTO users (name, age) VALUES ('ada', 36), ('grace', 45), ('linus', 0)`)
	require.NoError(t, err)

	for i := 1; i <= 150; i++ {
		_, err := db.Exec(`INSERT INTO big_table (n) VALUES (?)`, i)
		require.NoError(t, err)
	}
}

func TestToolListTables(t *testing.T) {
	srv := newTestServer(t, nil)

	payload := srv.toolListTables().(map[string]any)
	tables := payload["tables"].([]string)

	assert.Equal(t, []string{"big_table", "empty_table", "users"}, tables)
}

func TestToolPreviewTable_CapsRows(t *testing.T) {
	srv := newTestServer(t, nil)

	result := srv.toolPreviewTable("big_table").(QueryResult)

	assert.Equal(t, []string{"n"}, result.Columns)
	assert.Len(t, result.Rows, previewRowLimit)
	for _, row := range result.Rows {
		assert.Len(t, row, len(result.Columns))
	}
}

func TestToolPreviewTable_EmptyTable(t *testing.T) {
	srv := newTestServer(t, nil)

	result := srv.toolPreviewTable("empty_table").(QueryResult)

	assert.Equal(t, []string{"a", "b"}, result.Columns)
	assert.NotNil(t, result.Rows)
	assert.Empty(t, result.Rows)
}

func TestToolPreviewTable_InvalidName(t *testing.T) {
	srv := newTestServer(t, nil)

	result := srv.toolPreviewTable("users; DROP TABLE users").(QueryResult)

	assert.Empty(t, result.Columns)
	assert.Empty(t, result.Rows)

	// Nothing from the hostile input reached the database.
	var count int
	require.NoError(t, srv.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count))
	assert.Equal(t, 3, count)
}

func TestToolPreviewTable_NonexistentTable(t *testing.T) {
	srv := newTestServer(t, nil)

	result := srv.toolPreviewTable("no_such_table").(QueryResult)

	assert.Empty(t, result.Columns)
	assert.Empty(t, result.Rows)
}

func TestToolDescribeTable(t *testing.T) {
	srv := newTestServer(t, nil)

	payload := srv.toolDescribeTable("users").(map[string]any)
	assert.Equal(t, "users", payload["table_name"])

	columns := payload["columns"].([]ColumnInfo)
	require.Len(t, columns, 3)

	// Ordinal order, not alphabetical.
	assert.Equal(t, "id", columns[0].Name)
	assert.Equal(t, "name", columns[1].Name)
	assert.Equal(t, "age", columns[2].Name)

	assert.False(t, columns[1].Nullable)
	assert.True(t, columns[2].Nullable)
	require.NotNil(t, columns[2].Default)
	assert.Equal(t, "21", *columns[2].Default)
	assert.Nil(t, columns[1].Default)
}

func TestToolDescribeTable_SchemaQualified(t *testing.T) {
	srv := newTestServer(t, nil)

	// The catalog filter uses the unqualified object name.
	payload := srv.toolDescribeTable("main.users").(map[string]any)
	assert.Equal(t, "main.users", payload["table_name"])

	columns := payload["columns"].([]ColumnInfo)
	assert.Len(t, columns, 3)
}

func TestToolDescribeTable_NonexistentTable(t *testing.T) {
	srv := newTestServer(t, nil)

	payload := srv.toolDescribeTable("no_such_table").(map[string]any)

	columns := payload["columns"].([]ColumnInfo)
	assert.Empty(t, columns)
}

func TestToolDescribeTable_InvalidName(t *testing.T) {
	srv := newTestServer(t, nil)

	payload := srv.toolDescribeTable("users; DROP TABLE users").(map[string]any)

	errMsg, ok := payload["error"].(string)
	require.True(t, ok, "expected an error payload, got %v", payload)
	assert.NotEmpty(t, errMsg)
}

func TestToolGetTableCount(t *testing.T) {
	srv := newTestServer(t, nil)

	payload := srv.toolGetTableCount("users").(map[string]any)

	assert.Equal(t, "users", payload["table_name"])
	assert.EqualValues(t, 3, payload["row_count"])
}

func TestToolGetTableCount_NonexistentTable(t *testing.T) {
	srv := newTestServer(t, nil)

	payload := srv.toolGetTableCount("no_such_table").(map[string]any)

	errMsg, ok := payload["error"].(string)
	require.True(t, ok, "expected an error payload, got %v", payload)
	assert.NotEmpty(t, errMsg)
}

func TestToolRunQuery_Select(t *testing.T) {
	srv := newTestServer(t, nil)

	result := srv.toolRunQuery("SELECT 1 AS one").(QueryResult)

	assert.Equal(t, []string{"one"}, result.Columns)
	require.Len(t, result.Rows, 1)
	require.Len(t, result.Rows[0], 1)
	assert.EqualValues(t, 1, result.Rows[0][0])
}

func TestToolRunQuery_UpdateCommits(t *testing.T) {
	srv := newTestServer(t, nil)

	result := srv.toolRunQuery("UPDATE users SET age = 99 WHERE name = 'ada'").(ExecResult)

	assert.EqualValues(t, 1, result.AffectedRows)
	assert.NotEmpty(t, result.Message)

	// The write is committed: visible to a subsequent SELECT.
	check := srv.toolRunQuery("SELECT age FROM users WHERE name = 'ada'").(QueryResult)
	require.Len(t, check.Rows, 1)
	assert.EqualValues(t, 99, check.Rows[0][0])
}

func TestToolRunQuery_InsertAffectedRows(t *testing.T) {
	srv := newTestServer(t, nil)

	result := srv.toolRunQuery("INSERT INTO empty_table (a, b) VALUES ('x', 1), ('y', 2)").(ExecResult)

	assert.EqualValues(t, 2, result.AffectedRows)
}

func TestToolRunQuery_DDL(t *testing.T) {
	srv := newTestServer(t, nil)

	payload := srv.toolRunQuery("CREATE TABLE audit_log (id INTEGER PRIMARY KEY, entry TEXT)")
	_, ok := payload.(ExecResult)
	require.True(t, ok, "expected an exec result, got %T", payload)

	tables := srv.toolListTables().(map[string]any)["tables"].([]string)
	assert.Contains(t, tables, "audit_log")
}

func TestToolRunQuery_ExecutionError(t *testing.T) {
	srv := newTestServer(t, nil)

	payload := srv.toolRunQuery("SELECT * FROM no_such_table").(map[string]any)

	errMsg, ok := payload["error"].(string)
	require.True(t, ok, "expected an error payload, got %v", payload)
	assert.NotEmpty(t, errMsg)
}

func TestToolRunQuery_Disabled(t *testing.T) {
	srv := newTestServer(t, func(cfg *Config) {
		cfg.AllowRawQuery = false
	})

	payload := srv.toolRunQuery("UPDATE users SET age = 0").(map[string]any)

	errMsg, ok := payload["error"].(string)
	require.True(t, ok, "expected an error payload, got %v", payload)
	assert.Contains(t, errMsg, "disabled")

	// The statement never executed.
	var age int
	require.NoError(t, srv.db.QueryRow(`SELECT age FROM users WHERE name = 'grace'`).Scan(&age))
	assert.Equal(t, 45, age)
}

func TestToolRunQuery_MaxResultRows(t *testing.T) {
	srv := newTestServer(t, func(cfg *Config) {
		cfg.MaxResultRows = 5
	})

	result := srv.toolRunQuery("SELECT n FROM big_table ORDER BY n").(QueryResult)

	assert.Len(t, result.Rows, 5)
}

func TestNewMCPServer_ConnectFailure(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := Config{Driver: "sqlite", QueryTimeout: time.Second}
	_, err := NewMCPServer(context.Background(), &SQLiteAdapter{}, cfg, logger)
	require.Error(t, err, "missing MCP_SQLITE_PATH must fail at construction")
}
