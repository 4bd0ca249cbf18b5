package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

func (s *MCPServer) handleInitialize(params json.RawMessage) (*InitializeResult, *Error) {
	var initParams InitializeParams
	if params != nil {
		if err := json.Unmarshal(params, &initParams); err != nil {
			return nil, &Error{
				Code:    InvalidParams,
				Message: "Invalid initialize parameters",
				Data:    err.Error(),
			}
		}
	}

	s.initialized = true

	return &InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities: ServerCapabilities{
			Tools:     &ToolsCapability{},
			Resources: &ResourcesCapability{},
		},
		ServerInfo: ServerInfo{
			Name:    s.adapter.ServerName(),
			Version: ServerVersion,
		},
	}, nil
}

func tableNameSchema() InputSchema {
	return InputSchema{
		Type: "object",
		Properties: map[string]Property{
			"table_name": {
				Type:        "string",
				Description: "Table name, optionally schema-qualified (e.g. dbo.Users)",
			},
		},
		Required: []string{"table_name"},
	}
}

func (s *MCPServer) handleListTools() (*ListToolsResult, *Error) {
	return &ListToolsResult{
		Tools: []Tool{
			{
				Name:        "list_tables",
				Description: "List all base tables in the database",
				InputSchema: InputSchema{
					Type:       "object",
					Properties: map[string]Property{},
					Required:   []string{},
				},
			},
			{
				Name:        "preview_table",
				Description: fmt.Sprintf("Preview the first %d rows of a table", previewRowLimit),
				InputSchema: tableNameSchema(),
			},
			{
				Name:        "describe_table",
				Description: "Get detailed schema information for a specific table",
				InputSchema: tableNameSchema(),
			},
			{
				Name:        "get_table_count",
				Description: "Get the total row count for a table",
				InputSchema: tableNameSchema(),
			},
			{
				Name:        "run_query",
				Description: "Run any SQL query (SELECT/INSERT/UPDATE/DELETE)",
				InputSchema: InputSchema{
					Type: "object",
					Properties: map[string]Property{
						"query": {
							Type:        "string",
							Description: "The SQL statement to execute",
						},
					},
					Required: []string{"query"},
				},
			},
		},
	}, nil
}

func (s *MCPServer) handleCallTool(params json.RawMessage) (*CallToolResult, *Error) {
	var callParams CallToolParams
	if err := json.Unmarshal(params, &callParams); err != nil {
		return nil, &Error{
			Code:    InvalidParams,
			Message: "Invalid parameters",
			Data:    err.Error(),
		}
	}

	var payload any

	switch callParams.Name {
	case "list_tables":
		payload = s.toolListTables()
	case "preview_table":
		name, ok := stringArg(callParams.Arguments, "table_name")
		if !ok {
			return nil, missingArg("table_name")
		}
		payload = s.toolPreviewTable(name)
	case "describe_table":
		name, ok := stringArg(callParams.Arguments, "table_name")
		if !ok {
			return nil, missingArg("table_name")
		}
		payload = s.toolDescribeTable(name)
	case "get_table_count":
		name, ok := stringArg(callParams.Arguments, "table_name")
		if !ok {
			return nil, missingArg("table_name")
		}
		payload = s.toolGetTableCount(name)
	case "run_query":
		query, ok := stringArg(callParams.Arguments, "query")
		if !ok {
			return nil, missingArg("query")
		}
		payload = s.toolRunQuery(query)
	default:
		return nil, &Error{
			Code:    MethodNotFound,
			Message: fmt.Sprintf("Unknown tool: %s", callParams.Name),
		}
	}

	return toolResult(payload)
}

func stringArg(args map[string]any, key string) (string, bool) {
	value, ok := args[key].(string)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

func missingArg(key string) *Error {
	return &Error{
		Code:    InvalidParams,
		Message: fmt.Sprintf("Missing or invalid '%s' parameter", key),
	}
}

// toolResult serializes a tool payload into MCP text content. Error
// payloads are ordinary results here; tool failures were already folded
// into the payload shape at the handler boundary.
func toolResult(payload any) (*CallToolResult, *Error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, &Error{
			Code:    InternalError,
			Message: "Failed to marshal tool result",
			Data:    err.Error(),
		}
	}
	return &CallToolResult{
		Content: []Content{{Type: "text", Text: string(data)}},
	}, nil
}

func (s *MCPServer) handleListResources() (*ListResourcesResult, *Error) {
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.QueryTimeout)
	defer cancel()

	tables, err := s.fetchTableNames(ctx)
	if err != nil {
		return nil, &Error{
			Code:    InternalError,
			Message: fmt.Sprintf("Failed to list tables: %v", err),
		}
	}

	resources := make([]Resource, 0, len(tables))
	for _, table := range tables {
		resources = append(resources, Resource{
			URI:      fmt.Sprintf("%s://%s/%s/schema", s.adapter.URIScheme(), s.databaseName, table),
			Name:     fmt.Sprintf("Schema for table '%s'", table),
			MimeType: "application/json",
		})
	}

	return &ListResourcesResult{Resources: resources}, nil
}

func (s *MCPServer) handleReadResource(params json.RawMessage) (*ReadResourceResult, *Error) {
	var readParams ReadResourceParams
	if err := json.Unmarshal(params, &readParams); err != nil {
		return nil, &Error{
			Code:    InvalidParams,
			Message: "Invalid parameters",
			Data:    err.Error(),
		}
	}

	// Parse URI: <scheme>://dbname/tablename/schema
	uri := readParams.URI
	prefix := s.adapter.URIScheme() + "://"
	if !strings.HasPrefix(uri, prefix) {
		return nil, &Error{
			Code:    InvalidParams,
			Message: fmt.Sprintf("Invalid resource URI: must start with %s", prefix),
		}
	}

	parts := strings.Split(strings.TrimPrefix(uri, prefix), "/")
	if len(parts) < 3 || parts[2] != "schema" {
		return nil, &Error{
			Code:    InvalidParams,
			Message: fmt.Sprintf("Invalid resource URI format: expected %sdbname/tablename/schema", prefix),
		}
	}

	payload := s.toolDescribeTable(parts[1])

	schemaJSON, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, &Error{
			Code:    InternalError,
			Message: fmt.Sprintf("Failed to marshal schema: %v", err),
		}
	}

	return &ReadResourceResult{
		Contents: []ResourceContent{
			{
				URI:      uri,
				MimeType: "application/json",
				Text:     string(schemaJSON),
			},
		},
	}, nil
}
