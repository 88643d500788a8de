package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"chatrelay/internal/domain/repositories"
)

// SchemaStatements returns the DDL that creates the transcript table and its indexes.
// Every statement is idempotent.
func SchemaStatements(tables *TableNames) []string {
	t := tables.ChatMessages
	return []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id          UUID PRIMARY KEY,
				session_key VARCHAR(255) NOT NULL DEFAULT '',
				role        VARCHAR(16)  NOT NULL,
				content     TEXT         NOT NULL DEFAULT '',
				tool_name   VARCHAR(128),
				tool_args   JSONB,
				created_at  TIMESTAMPTZ  NOT NULL DEFAULT now()
			)`, t),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_session_created_idx ON %s (session_key, created_at)`, t, t),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_created_idx ON %s (created_at)`, t, t),
	}
}

// DropStatements returns the DDL that removes the transcript table.
func DropStatements(tables *TableNames) []string {
	return []string{
		fmt.Sprintf(`DROP TABLE IF EXISTS %s CASCADE`, tables.ChatMessages),
	}
}

// ApplyStatements runs the statements in order inside one transaction.
func ApplyStatements(ctx context.Context, pool *pgxpool.Pool, txManager repositories.TransactionManager, statements []string) error {
	return txManager.ExecTx(ctx, func(ctx context.Context) error {
		executor := GetExecutor(ctx, pool)
		for _, stmt := range statements {
			if _, err := executor.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
		}
		return nil
	})
}

// ErrSchemaMissing reports that the transcript table has not been created.
var ErrSchemaMissing = errors.New("transcript table missing, run cmd/migrate")

// CheckSchema verifies the transcript table exists.
func CheckSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	_, err := pool.Exec(ctx, fmt.Sprintf(`SELECT 1 FROM %s LIMIT 0`, tables.ChatMessages))
	if IsPgUndefinedTableError(err) {
		return fmt.Errorf("%w: %s", ErrSchemaMissing, tables.ChatMessages)
	}
	return err
}
