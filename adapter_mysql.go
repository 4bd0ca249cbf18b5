package main

import (
	"database/sql"
	"fmt"
	"strings"
)

// MySQLAdapter implements DBAdapter for MySQL databases.
type MySQLAdapter struct{}

func (a *MySQLAdapter) DriverName() string { return "mysql" }
func (a *MySQLAdapter) ServerName() string { return "mysql-tools-mcp-server" }
func (a *MySQLAdapter) URIScheme() string  { return "mysql" }

func (a *MySQLAdapter) BuildDSN(cfg Config) (string, error) {
	var missing []string
	if cfg.Host == "" {
		missing = append(missing, "MCP_DB_HOST")
	}
	if cfg.Database == "" {
		missing = append(missing, "MCP_DB_NAME")
	}
	if cfg.User == "" {
		missing = append(missing, "MCP_DB_USER")
	}
	if cfg.Password == "" {
		missing = append(missing, "MCP_DB_PASSWORD")
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("missing required environment variables: %v", missing)
	}

	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", cfg.User, cfg.Password, cfg.Host, port, cfg.Database), nil
}

func (a *MySQLAdapter) DatabaseName(cfg Config) string {
	return cfg.Database
}

// QuoteIdent backticks each segment independently; embedded backticks
// are doubled.
func (a *MySQLAdapter) QuoteIdent(segments []string) string {
	quoted := make([]string, len(segments))
	for i, seg := range segments {
		quoted[i] = "`" + strings.ReplaceAll(seg, "`", "``") + "`"
	}
	return strings.Join(quoted, ".")
}

func (a *MySQLAdapter) ListTablesQuery(databaseName string) (string, []any) {
	return `SELECT table_name FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'`, []any{databaseName}
}

func (a *MySQLAdapter) DescribeTableQuery(databaseName, tableName string) (string, []any) {
	return `SELECT column_name, data_type, is_nullable, column_default, character_maximum_length
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position`, []any{databaseName, tableName}
}

func (a *MySQLAdapter) ScanColumnInfo(rows *sql.Rows) (ColumnInfo, error) {
	var name, dataType, isNullable string
	var colDefault sql.NullString
	var maxLength sql.NullInt64

	if err := rows.Scan(&name, &dataType, &isNullable, &colDefault, &maxLength); err != nil {
		return ColumnInfo{}, err
	}

	col := ColumnInfo{
		Name:     name,
		Type:     dataType,
		Nullable: strings.EqualFold(isNullable, "YES"),
	}
	if colDefault.Valid {
		col.Default = &colDefault.String
	}
	if maxLength.Valid {
		length := maxLength.Int64
		col.MaxLength = &length
	}
	return col, nil
}

func (a *MySQLAdapter) PreviewQuery(quotedTable string, limit int) string {
	return fmt.Sprintf("SELECT * FROM %s LIMIT %d", quotedTable, limit)
}

func (a *MySQLAdapter) AffectedRowsQuery() (string, bool) {
	// ROW_COUNT() is session-scoped and reflects the previous statement.
	return "SELECT ROW_COUNT()", true
}
