package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatrelay/internal/domain"
	"chatrelay/internal/domain/models/chat"
	chatSvc "chatrelay/internal/domain/services/chat"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubChatService struct {
	result *chat.TurnResult
	err    error
	req    *chatSvc.TurnRequest
}

func (s *stubChatService) ProcessTurn(ctx context.Context, req *chatSvc.TurnRequest) (*chat.TurnResult, error) {
	s.req = req
	return s.result, s.err
}

func TestChatHandler_PostChat(t *testing.T) {
	leadID := "lead-901"

	tests := []struct {
		name       string
		body       string
		service    *stubChatService
		wantStatus int
		wantBody   string
	}{
		{
			name:       "reply",
			body:       `{"message":"Hello","conversation_key":"lead-42"}`,
			service:    &stubChatService{result: &chat.TurnResult{Reply: "Hi there!", SessionHandle: "thread_1"}},
			wantStatus: http.StatusOK,
			wantBody:   `{"reply":"Hi there!"}`,
		},
		{
			name:       "reply with side effect",
			body:       `{"message":"Call me"}`,
			service:    &stubChatService{result: &chat.TurnResult{Reply: "", SideEffectID: &leadID}},
			wantStatus: http.StatusOK,
			wantBody:   `{"reply":"","side_effect_id":"lead-901"}`,
		},
		{
			name:       "malformed body",
			body:       `{"message":`,
			service:    &stubChatService{},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"invalid request body"}`,
		},
		{
			name:       "validation",
			body:       `{"message":""}`,
			service:    &stubChatService{err: fmt.Errorf("%w: message: cannot be blank", domain.ErrValidation)},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"validation failed: message: cannot be blank"}`,
		},
		{
			name:       "run failed",
			body:       `{"message":"hi"}`,
			service:    &stubChatService{err: &domain.RunTerminatedError{RunHandle: "run_1", Status: "failed", Reason: "server_error"}},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"run failed: server_error"}`,
		},
		{
			name:       "submission failed",
			body:       `{"message":"hi"}`,
			service:    &stubChatService{err: &domain.SubmissionError{Op: "start_run", Err: errors.New("quota")}},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"submit turn (start_run): quota"}`,
		},
		{
			name:       "timeout",
			body:       `{"message":"hi"}`,
			service:    &stubChatService{err: &domain.RunTimeoutError{RunHandle: "run_1", Timeout: 90 * time.Second}},
			wantStatus: http.StatusGatewayTimeout,
			wantBody:   `{"error":"run run_1 did not finish within 1m30s"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewChatHandler(tt.service, discardLogger())
			req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.PostChat(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestChatHandler_PassesConversationKey(t *testing.T) {
	service := &stubChatService{result: &chat.TurnResult{}}
	h := NewChatHandler(service, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"Hello","conversation_key":" lead-42 "}`))
	h.PostChat(httptest.NewRecorder(), req)

	require.NotNil(t, service.req)
	assert.Equal(t, "Hello", service.req.Message)
	assert.Equal(t, "lead-42", service.req.Key())
}

func TestChatHandler_Preflight(t *testing.T) {
	h := NewChatHandler(&stubChatService{}, discardLogger())
	rec := httptest.NewRecorder()

	h.Preflight(rec, httptest.NewRequest(http.MethodOptions, "/chat", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

type stubTranscriptService struct {
	records []chat.TranscriptRecord
	err     error
	filter  *chat.TranscriptFilter
}

func (s *stubTranscriptService) List(ctx context.Context, filter *chat.TranscriptFilter) ([]chat.TranscriptRecord, error) {
	s.filter = filter
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func (s *stubTranscriptService) Export(ctx context.Context, filter *chat.TranscriptFilter, fn func(chat.TranscriptRecord) error) error {
	s.filter = filter
	if s.err != nil {
		return s.err
	}
	for _, r := range s.records {
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

func sampleRecords() []chat.TranscriptRecord {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tool := "create_lead"
	return []chat.TranscriptRecord{
		{ID: "r1", SessionKey: "lead-42", Role: chat.RoleUser, Content: "Hello, \"world\"", CreatedAt: at},
		{ID: "r2", SessionKey: "lead-42", Role: chat.RoleTool, Content: `{"ok":true}`, ToolName: &tool, ToolArgs: map[string]interface{}{"name": "Anna"}, CreatedAt: at.Add(time.Second)},
	}
}

func TestTranscriptHandler_ListTranscripts(t *testing.T) {
	t.Run("parses filters", func(t *testing.T) {
		service := &stubTranscriptService{records: sampleRecords()}
		h := NewTranscriptHandler(service, discardLogger())

		req := httptest.NewRequest(http.MethodGet,
			"/admin/transcripts?session_key=lead-42&role=tool&q=anna&since=2026-03-01&until=2026-03-02T00:00:00Z&limit=20&offset=40", nil)
		rec := httptest.NewRecorder()
		h.ListTranscripts(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, service.filter)
		assert.Equal(t, "lead-42", service.filter.SessionKey)
		assert.Equal(t, "tool", service.filter.Role)
		assert.Equal(t, "anna", service.filter.Query)
		assert.Equal(t, 20, service.filter.Limit)
		assert.Equal(t, 40, service.filter.Offset)
		require.NotNil(t, service.filter.Since)
		assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *service.filter.Since)
		assert.Contains(t, rec.Body.String(), `"items":[`)
	})

	t.Run("bad limit", func(t *testing.T) {
		service := &stubTranscriptService{}
		h := NewTranscriptHandler(service, discardLogger())

		rec := httptest.NewRecorder()
		h.ListTranscripts(rec, httptest.NewRequest(http.MethodGet, "/admin/transcripts?limit=ten", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
		assert.Nil(t, service.filter)
	})

	t.Run("bad since", func(t *testing.T) {
		h := NewTranscriptHandler(&stubTranscriptService{}, discardLogger())

		rec := httptest.NewRecorder()
		h.ListTranscripts(rec, httptest.NewRequest(http.MethodGet, "/admin/transcripts?since=yesterday", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("service validation", func(t *testing.T) {
		service := &stubTranscriptService{err: fmt.Errorf("%w: role: must be a valid value", domain.ErrValidation)}
		h := NewTranscriptHandler(service, discardLogger())

		rec := httptest.NewRecorder()
		h.ListTranscripts(rec, httptest.NewRequest(http.MethodGet, "/admin/transcripts?role=system", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("storage failure hides detail", func(t *testing.T) {
		service := &stubTranscriptService{err: errors.New("pq: connection reset")}
		h := NewTranscriptHandler(service, discardLogger())

		rec := httptest.NewRecorder()
		h.ListTranscripts(rec, httptest.NewRequest(http.MethodGet, "/admin/transcripts", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection reset")
	})
}

func TestTranscriptHandler_ExportCSV(t *testing.T) {
	h := NewTranscriptHandler(&stubTranscriptService{records: sampleRecords()}, discardLogger())
	rec := httptest.NewRecorder()

	h.ExportCSV(rec, httptest.NewRequest(http.MethodGet, "/admin/transcripts/export.csv", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,created_at,session_key,role,content,tool_name,tool_args", lines[0])
	assert.Equal(t, `r1,2026-03-01T12:00:00Z,lead-42,user,"Hello, ""world""",,`, lines[1])
	assert.Equal(t, `r2,2026-03-01T12:00:01Z,lead-42,tool,"{""ok"":true}",create_lead,"{""name"":""Anna""}"`, lines[2])
}

func TestTranscriptHandler_ExportCSV_Empty(t *testing.T) {
	h := NewTranscriptHandler(&stubTranscriptService{}, discardLogger())
	rec := httptest.NewRecorder()

	h.ExportCSV(rec, httptest.NewRequest(http.MethodGet, "/admin/transcripts/export.csv", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "id,created_at,session_key,role,content,tool_name,tool_args\n", rec.Body.String())
}

func TestTranscriptHandler_ExportNDJSON(t *testing.T) {
	t.Run("streams records", func(t *testing.T) {
		h := NewTranscriptHandler(&stubTranscriptService{records: sampleRecords()}, discardLogger())
		rec := httptest.NewRecorder()

		h.ExportNDJSON(rec, httptest.NewRequest(http.MethodGet, "/admin/transcripts/export.ndjson", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/x-ndjson", rec.Header().Get("Content-Type"))
		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], `"id":"r1"`)
		assert.Contains(t, lines[1], `"tool_name":"create_lead"`)
	})

	t.Run("error before first row", func(t *testing.T) {
		service := &stubTranscriptService{err: fmt.Errorf("%w: limit: too big", domain.ErrValidation)}
		h := NewTranscriptHandler(service, discardLogger())
		rec := httptest.NewRecorder()

		h.ExportNDJSON(rec, httptest.NewRequest(http.MethodGet, "/admin/transcripts/export.ndjson?limit=999999999", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHealthHandler(t *testing.T) {
	t.Run("no checks", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealthHandler(nil).HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	})

	t.Run("failing dependency", func(t *testing.T) {
		h := NewHealthHandler(map[string]HealthCheckFunc{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("dial tcp: refused") },
		})
		rec := httptest.NewRecorder()
		h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
		assert.Contains(t, rec.Body.String(), `"postgres":"ok"`)
	})
}
