package main

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"
)

// SQLServerAdapter implements DBAdapter for Microsoft SQL Server.
type SQLServerAdapter struct{}

func (a *SQLServerAdapter) DriverName() string { return "sqlserver" }
func (a *SQLServerAdapter) ServerName() string { return "mssql-tools-mcp-server" }
func (a *SQLServerAdapter) URIScheme() string  { return "mssql" }

func (a *SQLServerAdapter) BuildDSN(cfg Config) (string, error) {
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
		port = 1433
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, port),
		RawQuery: url.Values{"database": {cfg.Database}}.Encode(),
	}
	return u.String(), nil
}

func (a *SQLServerAdapter) DatabaseName(cfg Config) string {
	return cfg.Database
}

// QuoteIdent brackets each segment independently, dbo.Users -> [dbo].[Users].
// Closing brackets are doubled so a segment can never terminate its own
// quoting.
func (a *SQLServerAdapter) QuoteIdent(segments []string) string {
	quoted := make([]string, len(segments))
	for i, seg := range segments {
		quoted[i] = "[" + strings.ReplaceAll(seg, "]", "]]") + "]"
	}
	return strings.Join(quoted, ".")
}

func (a *SQLServerAdapter) ListTablesQuery(databaseName string) (string, []any) {
	// The connection is already scoped to one database.
	return `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_TYPE = 'BASE TABLE'`, nil
}

func (a *SQLServerAdapter) DescribeTableQuery(databaseName, tableName string) (string, []any) {
	return `SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE, COLUMN_DEFAULT, CHARACTER_MAXIMUM_LENGTH
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_NAME = @p1
		ORDER BY ORDINAL_POSITION`, []any{tableName}
}

func (a *SQLServerAdapter) ScanColumnInfo(rows *sql.Rows) (ColumnInfo, error) {
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

func (a *SQLServerAdapter) PreviewQuery(quotedTable string, limit int) string {
	return fmt.Sprintf("SELECT TOP %d * FROM %s", limit, quotedTable)
}

func (a *SQLServerAdapter) AffectedRowsQuery() (string, bool) {
	// @@ROWCOUNT reflects the previous statement on the same session.
	return "SELECT @@ROWCOUNT", true
}
