// Package domainvar holds assets shared by the commands and tests.
package domainvar

import "embed"

// Migrations contains the goose SQL migrations for the postgres storage.
//
//go:embed migrations/*.sql
var Migrations embed.FS
