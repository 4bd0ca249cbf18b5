package main

import (
	"database/sql"
	"fmt"
)

// ColumnInfo describes one table column as reported by the catalog.
// Default and MaxLength are nil when the catalog reports NULL.
type ColumnInfo struct {
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Nullable  bool    `json:"nullable"`
	Default   *string `json:"default"`
	MaxLength *int64  `json:"max_length"`
}

// DBAdapter defines the contract for database-specific behavior.
// Each supported database (SQL Server, MySQL, PostgreSQL, SQLite)
// implements this interface.
type DBAdapter interface {
	// DriverName returns the database/sql driver name (e.g., "sqlserver", "mysql").
	DriverName() string

	// ServerName returns the MCP server name for this adapter.
	ServerName() string

	// URIScheme returns the resource URI scheme (e.g., "mssql", "postgres").
	URIScheme() string

	// BuildDSN constructs a DSN from the loaded configuration.
	BuildDSN(cfg Config) (string, error)

	// DatabaseName returns the display name of the connected database.
	DatabaseName(cfg Config) string

	// QuoteIdent renders already-validated identifier segments in this
	// database's quoting syntax, one quoted token per segment, joined
	// with dots.
	QuoteIdent(segments []string) string

	// ListTablesQuery returns the SQL and arguments listing base tables.
	ListTablesQuery(databaseName string) (string, []any)

	// DescribeTableQuery returns the SQL and arguments reading column
	// info for one table, ordered by ordinal position. tableName is the
	// unqualified object name.
	DescribeTableQuery(databaseName, tableName string) (string, []any)

	// ScanColumnInfo scans a single row from the describe query result.
	ScanColumnInfo(rows *sql.Rows) (ColumnInfo, error)

	// PreviewQuery returns the SQL selecting the first limit rows of an
	// already-quoted table (TOP vs LIMIT dialects).
	PreviewQuery(quotedTable string, limit int) string

	// AffectedRowsQuery returns a session-scoped statement reporting the
	// rows affected by the previous statement, or ok=false when the
	// database exposes no such counter.
	AffectedRowsQuery() (string, bool)
}

// adapterForDriver selects the adapter matching a driver identifier
// from configuration.
func adapterForDriver(driver string) (DBAdapter, error) {
	switch driver {
	case "sqlserver", "mssql":
		return &SQLServerAdapter{}, nil
	case "mysql":
		return &MySQLAdapter{}, nil
	case "postgres", "postgresql":
		return &PostgresAdapter{}, nil
	case "sqlite", "sqlite3":
		return &SQLiteAdapter{}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", driver)
	}
}
