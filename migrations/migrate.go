// Package migrations applies the database schema of the allocation core.
// The schema is embedded so the server and the test helpers can bring a
// fresh database up without external tooling.
package migrations

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
)

//go:embed schema.sql
var schema string

// Apply executes the embedded schema statement by statement.  Every
// statement is idempotent (CREATE TABLE IF NOT EXISTS), so Apply is safe
// to run on every startup.
func Apply(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
