package handler

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"chatrelay/internal/domain"
	"chatrelay/internal/domain/models/chat"
	chatSvc "chatrelay/internal/domain/services/chat"
	"chatrelay/internal/httputil"
)

// csvColumns is the header row of CSV exports
var csvColumns = []string{"id", "created_at", "session_key", "role", "content", "tool_name", "tool_args"}

// TranscriptHandler serves the admin transcript listing and exports
type TranscriptHandler struct {
	transcriptService chatSvc.TranscriptService
	logger            *slog.Logger
}

// NewTranscriptHandler creates a new admin transcript handler
func NewTranscriptHandler(transcriptService chatSvc.TranscriptService, logger *slog.Logger) *TranscriptHandler {
	return &TranscriptHandler{
		transcriptService: transcriptService,
		logger:            logger,
	}
}

// ListTranscripts returns one page of records, newest first
// GET /admin/transcripts?session_key=&role=&since=&until=&q=&limit=&offset=
func (h *TranscriptHandler) ListTranscripts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTranscriptFilter(r.URL.Query())
	if err != nil {
		handleError(w, err)
		return
	}

	records, err := h.transcriptService.List(r.Context(), filter)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"items":  records,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// ExportCSV streams matching records as CSV, oldest first
// GET /admin/transcripts/export.csv
func (h *TranscriptHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTranscriptFilter(r.URL.Query())
	if err != nil {
		handleError(w, err)
		return
	}

	writer := csv.NewWriter(w)
	start := func() error {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", exportDisposition("csv"))
		w.WriteHeader(http.StatusOK)
		return writer.Write(csvColumns)
	}

	h.export(w, r, filter, start, func(record chat.TranscriptRecord) error {
		toolName := ""
		if record.ToolName != nil {
			toolName = *record.ToolName
		}
		toolArgs := ""
		if len(record.ToolArgs) > 0 {
			data, err := json.Marshal(record.ToolArgs)
			if err != nil {
				return err
			}
			toolArgs = string(data)
		}
		if err := writer.Write([]string{
			record.ID,
			record.CreatedAt.UTC().Format(time.RFC3339),
			record.SessionKey,
			record.Role,
			record.Content,
			toolName,
			toolArgs,
		}); err != nil {
			return err
		}
		writer.Flush()
		return writer.Error()
	})
	writer.Flush()
}

// ExportNDJSON streams matching records as newline-delimited JSON, oldest first
// GET /admin/transcripts/export.ndjson
func (h *TranscriptHandler) ExportNDJSON(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTranscriptFilter(r.URL.Query())
	if err != nil {
		handleError(w, err)
		return
	}

	encoder := json.NewEncoder(w)
	start := func() error {
		w.Header().Set("Content-Type", "application/x-ndjson")
		w.Header().Set("Content-Disposition", exportDisposition("ndjson"))
		w.WriteHeader(http.StatusOK)
		return nil
	}

	h.export(w, r, filter, start, func(record chat.TranscriptRecord) error {
		return encoder.Encode(record)
	})
}

// export runs the service export, writing headers lazily so that a failure
// before the first row still becomes a proper error response.
func (h *TranscriptHandler) export(
	w http.ResponseWriter,
	r *http.Request,
	filter *chat.TranscriptFilter,
	start func() error,
	write func(chat.TranscriptRecord) error,
) {
	started := false
	rows := 0

	err := h.transcriptService.Export(r.Context(), filter, func(record chat.TranscriptRecord) error {
		if !started {
			started = true
			if err := start(); err != nil {
				return err
			}
		}
		rows++
		if err := write(record); err != nil {
			return err
		}
		if rows%100 == 0 {
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
		return nil
	})

	switch {
	case err != nil && !started:
		handleError(w, err)
	case err != nil:
		// Headers are gone; all we can do is stop and log.
		h.logger.Error("transcript export aborted", "rows", rows, "error", err)
	case !started:
		if err := start(); err != nil {
			h.logger.Error("transcript export failed", "error", err)
		}
	}
}

func exportDisposition(ext string) string {
	return fmt.Sprintf(`attachment; filename="transcripts-%s.%s"`, time.Now().UTC().Format("20060102-150405"), ext)
}

// parseTranscriptFilter reads filter query parameters.
// since/until accept RFC 3339 timestamps or plain dates (YYYY-MM-DD).
func parseTranscriptFilter(q url.Values) (*chat.TranscriptFilter, error) {
	filter := &chat.TranscriptFilter{
		SessionKey: q.Get("session_key"),
		Role:       q.Get("role"),
		Query:      q.Get("q"),
	}

	var err error
	if filter.Limit, err = intParam(q, "limit"); err != nil {
		return nil, err
	}
	if filter.Offset, err = intParam(q, "offset"); err != nil {
		return nil, err
	}
	if filter.Since, err = timeParam(q, "since"); err != nil {
		return nil, err
	}
	if filter.Until, err = timeParam(q, "until"); err != nil {
		return nil, err
	}

	return filter, nil
}

func intParam(q url.Values, name string) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrValidation, name)
	}
	return n, nil
}

func timeParam(q url.Values, name string) (*time.Time, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s must be RFC 3339 or YYYY-MM-DD", domain.ErrValidation, name)
}
