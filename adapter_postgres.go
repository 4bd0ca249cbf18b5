package main

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"
)

// PostgresAdapter implements DBAdapter for PostgreSQL databases.
type PostgresAdapter struct{}

func (a *PostgresAdapter) DriverName() string { return "postgres" }
func (a *PostgresAdapter) ServerName() string { return "postgres-tools-mcp-server" }
func (a *PostgresAdapter) URIScheme() string  { return "postgres" }

func (a *PostgresAdapter) BuildDSN(cfg Config) (string, error) {
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
		port = 5432
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=prefer",
		url.PathEscape(cfg.User), url.PathEscape(cfg.Password), cfg.Host, port, cfg.Database), nil
}

func (a *PostgresAdapter) DatabaseName(cfg Config) string {
	return cfg.Database
}

// QuoteIdent double-quotes each segment independently; embedded quotes
// are doubled.
func (a *PostgresAdapter) QuoteIdent(segments []string) string {
	quoted := make([]string, len(segments))
	for i, seg := range segments {
		quoted[i] = `"` + strings.ReplaceAll(seg, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ".")
}

func (a *PostgresAdapter) ListTablesQuery(databaseName string) (string, []any) {
	return `SELECT table_name FROM information_schema.tables
		WHERE table_catalog = $1 AND table_schema = 'public' AND table_type = 'BASE TABLE'`,
		[]any{databaseName}
}

func (a *PostgresAdapter) DescribeTableQuery(databaseName, tableName string) (string, []any) {
	return `SELECT column_name, data_type, is_nullable, column_default, character_maximum_length
		FROM information_schema.columns
		WHERE table_catalog = $1 AND table_name = $2
		ORDER BY ordinal_position`, []any{databaseName, tableName}
}

func (a *PostgresAdapter) ScanColumnInfo(rows *sql.Rows) (ColumnInfo, error) {
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

func (a *PostgresAdapter) PreviewQuery(quotedTable string, limit int) string {
	return fmt.Sprintf("SELECT * FROM %s LIMIT %d", quotedTable, limit)
}

func (a *PostgresAdapter) AffectedRowsQuery() (string, bool) {
	// PostgreSQL exposes no session counter readable from plain SQL;
	// GET DIAGNOSTICS only exists inside PL/pgSQL.
	return "", false
}
