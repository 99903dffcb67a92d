package store

import (
	"database/sql"
	"strings"
)

// placeholderList returns "?,?,?" for n placeholders.
func placeholderList(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

// stringsToArgs converts []string to []any for use with database/sql.
func stringsToArgs(items []string) []any {
	args := make([]any, len(items))
	for i, s := range items {
		args[i] = s
	}
	return args
}

// nullString stores the empty string as NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func fromNull(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}
