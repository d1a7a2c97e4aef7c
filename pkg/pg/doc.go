// Package pg wires pgx connection pools, goose migrations, and common
// PostgreSQL error classification helpers.
package pg
