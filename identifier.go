package main

import (
	"regexp"
	"strings"
)

// tableNamePattern accepts a bare object name or a schema-qualified
// name (schema.object). Each segment is limited to word characters;
// quotes, brackets, whitespace, and semicolons are rejected outright
// rather than escaped.
var tableNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+(\.[A-Za-z0-9_]+)?$`)

// tableIdent is a table reference that has passed validation. The zero
// value is unusable; construct one via validateTableName.
type tableIdent struct {
	raw      string
	segments []string
}

// validateTableName checks a user-supplied table reference against the
// conservative name / schema.name shape. The returned identifier is the
// only form handlers may interpolate into SQL text; the raw input never
// reaches a statement. Validation is a pure string check and says
// nothing about whether the table exists.
func validateTableName(name string) (tableIdent, error) {
	if !tableNamePattern.MatchString(name) {
		return tableIdent{}, &ValidationError{Name: name}
	}
	return tableIdent{raw: name, segments: strings.Split(name, ".")}, nil
}

// Object returns the unqualified object name (the last dot segment).
// Catalog introspection queries filter on this.
func (t tableIdent) Object() string {
	return t.segments[len(t.segments)-1]
}

// String returns the reference exactly as the caller supplied it.
func (t tableIdent) String() string { return t.raw }

// Quoted renders the identifier with each segment individually quoted
// by the adapter, so the dot separator can never be reinterpreted as
// part of a single token and no segment can close its own quote.
func (t tableIdent) Quoted(a DBAdapter) string {
	return a.QuoteIdent(t.segments)
}
