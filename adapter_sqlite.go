package main

import (
	"database/sql"
	"fmt"
	"strings"
)

// SQLiteAdapter implements DBAdapter for SQLite databases.
type SQLiteAdapter struct{}

func (a *SQLiteAdapter) DriverName() string { return "sqlite" }
func (a *SQLiteAdapter) ServerName() string { return "sqlite-tools-mcp-server" }
func (a *SQLiteAdapter) URIScheme() string  { return "sqlite" }

func (a *SQLiteAdapter) BuildDSN(cfg Config) (string, error) {
	if cfg.SQLitePath == "" {
		return "", fmt.Errorf("missing required environment variable: MCP_SQLITE_PATH")
	}
	return cfg.SQLitePath, nil
}

func (a *SQLiteAdapter) DatabaseName(cfg Config) string {
	// The DSN is a file path; show the bare file name.
	path := cfg.SQLitePath
	if idx := strings.Index(path, "?"); idx != -1 {
		path = path[:idx]
	}
	parts := strings.Split(path, "/")
	name := parts[len(parts)-1]
	name = strings.TrimSuffix(name, ".db")
	name = strings.TrimSuffix(name, ".sqlite")
	name = strings.TrimSuffix(name, ".sqlite3")
	return name
}

// QuoteIdent double-quotes each segment independently; embedded quotes
// are doubled.
func (a *SQLiteAdapter) QuoteIdent(segments []string) string {
	quoted := make([]string, len(segments))
	for i, seg := range segments {
		quoted[i] = `"` + strings.ReplaceAll(seg, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ".")
}

func (a *SQLiteAdapter) ListTablesQuery(databaseName string) (string, []any) {
	// SQLite has no information_schema; sqlite_master is the catalog.
	// databaseName is ignored (one database per file).
	return `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`, nil
}

func (a *SQLiteAdapter) DescribeTableQuery(databaseName, tableName string) (string, []any) {
	// PRAGMA table_info cannot use ? placeholders, so the table name is
	// embedded with its quotes escaped. Callers pass validated names
	// only, which cannot contain quotes anyway.
	return fmt.Sprintf("PRAGMA table_info('%s')", strings.ReplaceAll(tableName, "'", "''")), nil
}

func (a *SQLiteAdapter) ScanColumnInfo(rows *sql.Rows) (ColumnInfo, error) {
	// PRAGMA table_info returns: cid, name, type, notnull, dflt_value, pk
	var cid int
	var name, colType string
	var notNull, pk int
	var dfltValue sql.NullString

	if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
		return ColumnInfo{}, err
	}

	col := ColumnInfo{
		Name:     name,
		Type:     colType,
		Nullable: notNull == 0,
	}
	if dfltValue.Valid {
		col.Default = &dfltValue.String
	}
	return col, nil
}

func (a *SQLiteAdapter) PreviewQuery(quotedTable string, limit int) string {
	return fmt.Sprintf("SELECT * FROM %s LIMIT %d", quotedTable, limit)
}

func (a *SQLiteAdapter) AffectedRowsQuery() (string, bool) {
	// changes() reports rows modified by the last statement on this
	// connection.
	return "SELECT changes()", true
}
