package main

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateTableName_ValidNames(t *testing.T) {
	validNames := []string{
		"users",
		"Users",
		"USERS",
		"user_settings",
		"_hidden",
		"table123",
		"123table", // leading digits are fine, quoting handles them
		"dbo.Users",
		"sales.order_items",
		"_.x",
	}

	for _, name := range validNames {
		t.Run(name, func(t *testing.T) {
			ident, err := validateTableName(name)
			if err != nil {
				t.Fatalf("Expected name to be accepted, but got error: %v", err)
			}
			if ident.String() != name {
				t.Errorf("Expected raw name %q, got %q", name, ident.String())
			}
		})
	}
}

func TestValidateTableName_InvalidNames(t *testing.T) {
	invalidNames := []string{
		"",
		"   ",
		"users; DROP TABLE x",
		"Users; DROP TABLE x",
		"users--",
		"users/*comment*/",
		"[users]",
		"'users'",
		`"users"`,
		"us ers",
		"users;",
		"dbo..Users",
		".users",
		"users.",
		"a.b.c", // at most one qualifier
		"users`",
		"dbo.Users-archive",
		"users\n",
		"тable", // non-ASCII
	}

	for _, name := range invalidNames {
		t.Run(name, func(t *testing.T) {
			_, err := validateTableName(name)
			if err == nil {
				t.Fatalf("Expected name %q to be rejected", name)
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("Expected *ValidationError, got %T: %v", err, err)
			}
			if vErr != nil && vErr.Name != name {
				t.Errorf("Expected error to carry input %q, got %q", name, vErr.Name)
			}
		})
	}
}

func TestTableIdent_Object(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"users", "users"},
		{"dbo.Users", "Users"},
		{"sales.order_items", "order_items"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ident, err := validateTableName(tc.name)
			if err != nil {
				t.Fatalf("Unexpected validation error: %v", err)
			}
			if got := ident.Object(); got != tc.expected {
				t.Errorf("Expected object name %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestTableIdent_QuotedPerAdapter(t *testing.T) {
	tests := []struct {
		adapter DBAdapter
		name    string
		quoted  string
	}{
		{&SQLServerAdapter{}, "dbo.Users", "[dbo].[Users]"},
		{&SQLServerAdapter{}, "users", "[users]"},
		{&MySQLAdapter{}, "shop.orders", "`shop`.`orders`"},
		{&PostgresAdapter{}, "public.orders", `"public"."orders"`},
		{&SQLiteAdapter{}, "main.users", `"main"."users"`},
	}

	for _, tc := range tests {
		t.Run(tc.quoted, func(t *testing.T) {
			ident, err := validateTableName(tc.name)
			if err != nil {
				t.Fatalf("Unexpected validation error: %v", err)
			}
			if got := ident.Quoted(tc.adapter); got != tc.quoted {
				t.Errorf("Expected %q, got %q", tc.quoted, got)
			}
		})
	}
}

// Splitting the quoted form on its quoting boundaries must reconstruct
// exactly the original dot-separated segments.
func TestTableIdent_QuotedRoundTrip(t *testing.T) {
	names := []string{"users", "dbo.Users", "sales.order_items", "a.b"}
	adapter := &SQLServerAdapter{}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			ident, err := validateTableName(name)
			if err != nil {
				t.Fatalf("Unexpected validation error: %v", err)
			}
			quoted := ident.Quoted(adapter)

			var segments []string
			for _, part := range strings.Split(quoted, ".") {
				if !strings.HasPrefix(part, "[") || !strings.HasSuffix(part, "]") {
					t.Fatalf("Segment %q is not individually bracketed", part)
				}
				segments = append(segments, strings.TrimSuffix(strings.TrimPrefix(part, "["), "]"))
			}
			if got := strings.Join(segments, "."); got != name {
				t.Errorf("Round trip mismatch: expected %q, got %q", name, got)
			}
		})
	}
}
