package main

import (
	"time"

	"github.com/spf13/viper"
)

// previewRowLimit caps preview_table output regardless of table size.
const previewRowLimit = 100

// Config holds database connection parameters and server limits,
// populated from MCP_-prefixed environment variables (optionally seeded
// from a .env file before loadConfig runs).
type Config struct {
	Driver     string
	Host       string
	Port       int
	Database   string
	User       string
	Password   string
	SQLitePath string

	QueryTimeout  time.Duration
	MaxResultRows int
	AllowRawQuery bool
}

// loadConfig reads the environment. Connection parameters are not
// checked here; the adapter's BuildDSN reports exactly which variables
// it needs and which are missing.
func loadConfig() Config {
	v := viper.New()
	v.SetEnvPrefix("MCP")
	v.AutomaticEnv()

	v.SetDefault("db_driver", "sqlserver")
	v.SetDefault("query_timeout", "30s")
	v.SetDefault("max_rows", 10000)
	v.SetDefault("allow_raw_query", true)

	return Config{
		Driver:        v.GetString("db_driver"),
		Host:          v.GetString("db_host"),
		Port:          v.GetInt("db_port"),
		Database:      v.GetString("db_name"),
		User:          v.GetString("db_user"),
		Password:      v.GetString("db_password"),
		SQLitePath:    v.GetString("sqlite_path"),
		QueryTimeout:  v.GetDuration("query_timeout"),
		MaxResultRows: v.GetInt("max_rows"),
		AllowRawQuery: v.GetBool("allow_raw_query"),
	}
}
