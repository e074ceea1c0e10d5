// Package migrations ships the PostgreSQL schema with the binary.
package migrations

import "embed"

// FS holds the *.sql files of this directory
//
//go:embed *.sql
var FS embed.FS
