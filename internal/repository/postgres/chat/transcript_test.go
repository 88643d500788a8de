package chat

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatrelay/internal/domain/models/chat"
	"chatrelay/internal/repository/postgres"
)

func TestBuildWhere(t *testing.T) {
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	until := since.Add(24 * time.Hour)

	tests := []struct {
		name     string
		filter   chat.TranscriptFilter
		wantSQL  string
		wantArgs []interface{}
	}{
		{
			name:    "no filter",
			filter:  chat.TranscriptFilter{Limit: 10},
			wantSQL: "",
		},
		{
			name:     "session and role",
			filter:   chat.TranscriptFilter{SessionKey: "lead-42", Role: "user"},
			wantSQL:  "WHERE session_key = $1 AND role = $2",
			wantArgs: []interface{}{"lead-42", "user"},
		},
		{
			name:     "search and range",
			filter:   chat.TranscriptFilter{Query: "50%_off", Since: &since, Until: &until},
			wantSQL:  "WHERE content ILIKE '%' || $1 || '%' AND created_at >= $2 AND created_at < $3",
			wantArgs: []interface{}{`50\%\_off`, since, until},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := buildWhere(tt.filter)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

// Integration tests run against TEST_DATABASE_URL when set.
func newTestRepository(t *testing.T) *PostgresTranscriptRepository {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	prefix := "test_" + uuid.NewString()[:8] + "_"
	tables := postgres.NewTableNames(prefix)
	for _, stmt := range postgres.SchemaStatements(tables) {
		_, err := pool.Exec(ctx, stmt)
		require.NoError(t, err)
	}
	t.Cleanup(func() {
		for _, stmt := range postgres.DropStatements(tables) {
			_, _ = pool.Exec(context.Background(), stmt)
		}
	})

	repo := NewTranscriptRepository(&postgres.RepositoryConfig{Pool: pool, Tables: tables})
	return repo.(*PostgresTranscriptRepository)
}

func TestTranscriptRepository_AppendListEach(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)
	toolName := "create_lead"

	records := []*chat.TranscriptRecord{
		{SessionKey: "lead-42", Role: chat.RoleUser, Content: "Hello", CreatedAt: base},
		{SessionKey: "lead-42", Role: chat.RoleTool, Content: `{"ok":true}`, ToolName: &toolName, ToolArgs: map[string]interface{}{"name": "Anna"}, CreatedAt: base.Add(time.Second)},
		{SessionKey: "lead-42", Role: chat.RoleAssistant, Content: "Hi there!", CreatedAt: base.Add(2 * time.Second)},
		{SessionKey: "other", Role: chat.RoleUser, Content: "Hej", CreatedAt: base.Add(3 * time.Second)},
	}
	for _, r := range records {
		require.NoError(t, repo.Append(ctx, r))
		assert.NotEmpty(t, r.ID)
	}

	listed, err := repo.List(ctx, chat.TranscriptFilter{SessionKey: "lead-42", Limit: 10})
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "Hi there!", listed[0].Content)
	assert.Equal(t, "Anna", listed[1].ToolArgs["name"])
	require.NotNil(t, listed[1].ToolName)
	assert.Equal(t, "create_lead", *listed[1].ToolName)

	var exported []string
	err = repo.Each(ctx, chat.TranscriptFilter{Query: "h"}, func(r chat.TranscriptRecord) error {
		exported = append(exported, r.Content)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello", "Hi there!", "Hej"}, exported)
}
