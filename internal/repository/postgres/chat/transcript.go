package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chatrelay/internal/domain/models/chat"
	chatRepo "chatrelay/internal/domain/repositories/chat"
	"chatrelay/internal/repository/postgres"
)

// PostgresTranscriptRepository implements TranscriptRepository using PostgreSQL
type PostgresTranscriptRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewTranscriptRepository creates a new PostgresTranscriptRepository
func NewTranscriptRepository(config *postgres.RepositoryConfig) chatRepo.TranscriptRepository {
	return &PostgresTranscriptRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const transcriptColumns = "id::text, session_key, role, content, tool_name, tool_args, created_at"

// Append inserts a transcript record
func (r *PostgresTranscriptRepository) Append(ctx context.Context, record *chat.TranscriptRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	var toolArgs []byte
	if record.ToolArgs != nil {
		encoded, err := json.Marshal(record.ToolArgs)
		if err != nil {
			return fmt.Errorf("encode tool args: %w", err)
		}
		toolArgs = encoded
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, session_key, role, content, tool_name, tool_args, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.tables.ChatMessages)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		record.ID,
		record.SessionKey,
		record.Role,
		record.Content,
		record.ToolName,
		toolArgs,
		record.CreatedAt,
	)
	if err != nil {
		if postgres.IsPgUndefinedTableError(err) {
			return fmt.Errorf("append transcript: table %s missing, run migrations: %w", r.tables.ChatMessages, err)
		}
		return fmt.Errorf("append transcript: %w", err)
	}

	return nil
}

// List retrieves records matching the filter, newest first
func (r *PostgresTranscriptRepository) List(ctx context.Context, filter chat.TranscriptFilter) ([]chat.TranscriptRecord, error) {
	where, args := buildWhere(filter)

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, transcriptColumns, r.tables.ChatMessages, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	defer rows.Close()

	records := []chat.TranscriptRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transcripts: %w", err)
	}

	return records, nil
}

// Each streams records matching the filter, oldest first.
// Limit and Offset apply when set.
func (r *PostgresTranscriptRepository) Each(ctx context.Context, filter chat.TranscriptFilter, fn func(chat.TranscriptRecord) error) error {
	where, args := buildWhere(filter)

	query := fmt.Sprintf(`SELECT %s FROM %s %s ORDER BY created_at ASC, id ASC`,
		transcriptColumns, r.tables.ChatMessages, where)
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("export transcripts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return err
		}
		if err := fn(record); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate transcripts: %w", err)
	}

	return nil
}

// buildWhere renders the filter as a WHERE clause with positional args.
func buildWhere(filter chat.TranscriptFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.SessionKey != "" {
		add("session_key = $%d", filter.SessionKey)
	}
	if filter.Role != "" {
		add("role = $%d", filter.Role)
	}
	if filter.Query != "" {
		add("content ILIKE '%%' || $%d || '%%'", escapeLike(filter.Query))
	}
	if filter.Since != nil {
		add("created_at >= $%d", *filter.Since)
	}
	if filter.Until != nil {
		add("created_at < $%d", *filter.Until)
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// escapeLike escapes LIKE wildcards so the search term matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanRecord(row pgx.Row) (chat.TranscriptRecord, error) {
	var record chat.TranscriptRecord
	var toolArgs []byte

	err := row.Scan(
		&record.ID,
		&record.SessionKey,
		&record.Role,
		&record.Content,
		&record.ToolName,
		&toolArgs,
		&record.CreatedAt,
	)
	if err != nil {
		return record, fmt.Errorf("scan transcript: %w", err)
	}

	if len(toolArgs) > 0 {
		if err := json.Unmarshal(toolArgs, &record.ToolArgs); err != nil {
			return record, fmt.Errorf("decode tool args: %w", err)
		}
	}

	return record, nil
}
