package chat

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"chatrelay/internal/domain/models/chat"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type appendCall struct {
	Handle string
	Role   string
	Text   string
}

type submitCall struct {
	Handle    string
	RunHandle string
	Outputs   []chat.ToolOutput
	// PollsBefore is how many GetRun calls preceded this submission
	PollsBefore int
}

// stubSessionAPI replays a scripted sequence of run snapshots.
// The last snapshot repeats once the script is exhausted.
type stubSessionAPI struct {
	mu sync.Mutex

	script   []chat.Run
	messages []chat.Message

	createErr error
	appendErr error
	startErr  error
	getErr    error
	submitErr error
	listErr   error

	// pollDelay is slept outside the lock on every GetRun
	pollDelay time.Duration

	created   []string
	appended  []appendCall
	started   []string
	polls     int
	submitted []submitCall
	listed    []string
}

func (s *stubSessionAPI) CreateSession(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return "", s.createErr
	}
	handle := fmt.Sprintf("thread_%d", len(s.created)+1)
	s.created = append(s.created, handle)
	return handle, nil
}

func (s *stubSessionAPI) AppendMessage(ctx context.Context, handle, role, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appended = append(s.appended, appendCall{Handle: handle, Role: role, Text: text})
	return nil
}

func (s *stubSessionAPI) StartRun(ctx context.Context, handle string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startErr != nil {
		return "", s.startErr
	}
	s.started = append(s.started, handle)
	return fmt.Sprintf("run_%d", len(s.started)), nil
}

func (s *stubSessionAPI) GetRun(ctx context.Context, handle, runHandle string) (*chat.Run, error) {
	if s.pollDelay > 0 {
		time.Sleep(s.pollDelay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	run := chat.Run{Status: chat.RunStatusInProgress}
	if len(s.script) > 0 {
		idx := s.polls
		if idx >= len(s.script) {
			idx = len(s.script) - 1
		}
		run = s.script[idx]
	}
	s.polls++
	run.ID = runHandle
	run.ThreadID = handle
	return &run, nil
}

func (s *stubSessionAPI) SubmitToolOutputs(ctx context.Context, handle, runHandle string, outputs []chat.ToolOutput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitErr != nil {
		return s.submitErr
	}
	s.submitted = append(s.submitted, submitCall{
		Handle:      handle,
		RunHandle:   runHandle,
		Outputs:     outputs,
		PollsBefore: s.polls,
	})
	return nil
}

func (s *stubSessionAPI) ListMessages(ctx context.Context, handle string, order string) ([]chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listed = append(s.listed, handle)
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.messages, nil
}

func (s *stubSessionAPI) pollCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polls
}

// recordingSink keeps every record it is given
type recordingSink struct {
	mu      sync.Mutex
	records []chat.TranscriptRecord
}

func (r *recordingSink) Append(ctx context.Context, record chat.TranscriptRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
}

func (r *recordingSink) roles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	roles := make([]string, len(r.records))
	for i, rec := range r.records {
		roles[i] = rec.Role
	}
	return roles
}

// leadTool hands out sequential lead ids and records its inputs
type leadTool struct {
	mu     sync.Mutex
	inputs []map[string]interface{}
	err    error
}

func (l *leadTool) Execute(ctx context.Context, input map[string]interface{}) (interface{}, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.inputs = append(l.inputs, input)
	if l.err != nil {
		return nil, l.err
	}
	return map[string]interface{}{"ok": true, "id": fmt.Sprintf("lead-%d", 900+len(l.inputs))}, nil
}
