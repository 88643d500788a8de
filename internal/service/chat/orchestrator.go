package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"chatrelay/internal/domain"
	"chatrelay/internal/domain/models/chat"
	chatSvc "chatrelay/internal/domain/services/chat"
	"chatrelay/internal/service/llm/tools"
)

// RunConfig controls run polling.
type RunConfig struct {
	// PollInterval is the minimum spacing between two status fetches
	PollInterval time.Duration

	// Timeout bounds a turn, measured from Submit
	Timeout time.Duration
}

// Orchestrator drives a turn against the remote session API:
// submit the message, poll the run to a terminal state (answering tool
// calls on the way), then extract the assistant's reply.
type Orchestrator struct {
	api       chatSvc.SessionAPI
	directory *SessionDirectory
	registry  *tools.ToolRegistry
	sink      chatSvc.TranscriptSink
	config    RunConfig
	logger    *slog.Logger
}

var _ chatSvc.ChatService = (*Orchestrator)(nil)

// NewOrchestrator creates a run orchestrator
func NewOrchestrator(
	api chatSvc.SessionAPI,
	directory *SessionDirectory,
	registry *tools.ToolRegistry,
	sink chatSvc.TranscriptSink,
	config RunConfig,
	logger *slog.Logger,
) *Orchestrator {
	if sink == nil {
		sink = NopSink{}
	}
	return &Orchestrator{
		api:       api,
		directory: directory,
		registry:  registry,
		sink:      sink,
		config:    config,
		logger:    logger,
	}
}

// PollOutcome is what a run left behind once it completed.
type PollOutcome struct {
	Run             *chat.Run
	ToolInvocations []chat.ToolInvocation
	SideEffectID    *string
}

// ProcessTurn implements chatSvc.ChatService.
func (o *Orchestrator) ProcessTurn(ctx context.Context, req *chatSvc.TurnRequest) (*chat.TurnResult, error) {
	if err := validateTurnRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	key := req.Key()
	handle, err := o.directory.Resolve(ctx, key)
	if err != nil {
		return nil, err
	}
	sessionKey := key
	if sessionKey == "" {
		sessionKey = handle
	}

	deadline := time.Now().Add(o.config.Timeout)
	runHandle, err := o.Submit(ctx, handle, req.Message)
	if err != nil {
		return nil, err
	}
	o.sink.Append(ctx, chat.TranscriptRecord{
		SessionKey: sessionKey,
		Role:       chat.RoleUser,
		Content:    req.Message,
	})

	outcome, err := o.Poll(ctx, handle, runHandle, deadline, sessionKey)
	if err != nil {
		o.logger.Warn("turn failed",
			"session_handle", handle,
			"run_handle", runHandle,
			"error", err,
		)
		return nil, err
	}

	reply := o.ExtractReply(ctx, handle)
	o.sink.Append(ctx, chat.TranscriptRecord{
		SessionKey: sessionKey,
		Role:       chat.RoleAssistant,
		Content:    reply,
	})

	o.logger.Info("turn completed",
		"session_handle", handle,
		"run_handle", runHandle,
		"tool_calls", len(outcome.ToolInvocations),
		"reply_length", len(reply),
	)

	return &chat.TurnResult{
		Reply:           reply,
		SideEffectID:    outcome.SideEffectID,
		SessionHandle:   handle,
		RunHandle:       runHandle,
		ToolInvocations: outcome.ToolInvocations,
	}, nil
}

// Submit appends text to the session transcript and starts a run over it.
// Failures are returned as *domain.SubmissionError and never retried.
func (o *Orchestrator) Submit(ctx context.Context, handle, text string) (string, error) {
	if err := o.api.AppendMessage(ctx, handle, chat.RoleUser, text); err != nil {
		return "", &domain.SubmissionError{Op: "append_message", Err: err}
	}

	runHandle, err := o.api.StartRun(ctx, handle)
	if err != nil {
		return "", &domain.SubmissionError{Op: "start_run", Err: err}
	}

	o.logger.Debug("run started", "session_handle", handle, "run_handle", runHandle)
	return runHandle, nil
}

// Poll fetches the run status until it completes, fails or the deadline passes.
// A requires_action status is answered through the tool registry and polling
// resumes on the same run. Unknown statuses count as pending.
// sessionKey tags the transcript records written for tool calls.
func (o *Orchestrator) Poll(ctx context.Context, handle, runHandle string, deadline time.Time, sessionKey string) (*PollOutcome, error) {
	pollCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	limiter := rate.NewLimiter(rate.Every(o.config.PollInterval), 1)
	outcome := &PollOutcome{}

	// failure classifies an error seen while the run was unresolved.
	// Only the poll deadline counts as a timeout; the caller going away or a
	// transport error is a poll failure.
	failure := func(err error) error {
		if ctx.Err() == nil && (pollCtx.Err() != nil || !time.Now().Before(deadline)) {
			return &domain.RunTimeoutError{RunHandle: runHandle, Timeout: o.config.Timeout}
		}
		return &domain.PollError{RunHandle: runHandle, Err: err}
	}

	for {
		if err := limiter.Wait(pollCtx); err != nil {
			// Wait also fails early when the next slot lies past the deadline;
			// the timeout is only reported once the deadline has actually passed.
			if ctx.Err() == nil {
				<-pollCtx.Done()
			}
			if ctx.Err() != nil {
				return nil, &domain.PollError{RunHandle: runHandle, Err: ctx.Err()}
			}
			return nil, &domain.RunTimeoutError{RunHandle: runHandle, Timeout: o.config.Timeout}
		}

		run, err := o.api.GetRun(pollCtx, handle, runHandle)
		if err != nil {
			return nil, failure(err)
		}

		switch run.Status {
		case chat.RunStatusCompleted:
			outcome.Run = run
			return outcome, nil

		case chat.RunStatusFailed, chat.RunStatusCancelled, chat.RunStatusExpired:
			return nil, &domain.RunTerminatedError{
				RunHandle: runHandle,
				Status:    string(run.Status),
				Reason:    run.LastError,
			}

		case chat.RunStatusRequiresAction:
			invocations, outputs := o.dispatch(pollCtx, run.PendingToolCalls, sessionKey)
			if err := o.api.SubmitToolOutputs(pollCtx, handle, runHandle, outputs); err != nil {
				return nil, failure(err)
			}
			for _, inv := range invocations {
				if id := sideEffectID(inv.Result); id != nil {
					outcome.SideEffectID = id
				}
			}
			outcome.ToolInvocations = append(outcome.ToolInvocations, invocations...)

		default:
			o.logger.Debug("run pending", "run_handle", runHandle, "status", run.Status)
		}
	}
}

// dispatch answers every pending call of one requires_action episode.
// The returned outputs are in call order and cover every call.
func (o *Orchestrator) dispatch(ctx context.Context, pending []chat.ToolCall, sessionKey string) ([]chat.ToolInvocation, []chat.ToolOutput) {
	calls := make([]tools.ToolCall, len(pending))
	for i, p := range pending {
		calls[i] = tools.ToolCall{
			ID:    p.ID,
			Name:  p.Name,
			Input: tools.ParseArguments(p.Arguments),
		}
	}

	results := o.registry.ExecuteParallel(ctx, calls)

	invocations := make([]chat.ToolInvocation, len(results))
	outputs := make([]chat.ToolOutput, len(results))
	for i, result := range results {
		output := result.Output()
		invocations[i] = chat.ToolInvocation{
			CallID: result.ID,
			Name:   result.Name,
			Args:   calls[i].Input,
			Result: result.Payload(),
		}
		outputs[i] = chat.ToolOutput{ToolCallID: result.ID, Output: output}

		if result.IsError {
			o.logger.Warn("tool call failed", "tool", result.Name, "tool_call_id", result.ID, "error", result.Error)
		} else {
			o.logger.Info("tool call executed", "tool", result.Name, "tool_call_id", result.ID)
		}

		name := result.Name
		o.sink.Append(ctx, chat.TranscriptRecord{
			SessionKey: sessionKey,
			Role:       chat.RoleTool,
			Content:    output,
			ToolName:   &name,
			ToolArgs:   calls[i].Input,
		})
	}

	return invocations, outputs
}

// ExtractReply returns the newest non-empty assistant text in the session.
// Absence of such a message, or a failed listing, yields "".
func (o *Orchestrator) ExtractReply(ctx context.Context, handle string) string {
	messages, err := o.api.ListMessages(ctx, handle, "desc")
	if err != nil {
		o.logger.Warn("failed to list session messages", "session_handle", handle, "error", err)
		return ""
	}

	for _, msg := range messages {
		if msg.Role == chat.RoleAssistant && msg.Text != "" {
			return msg.Text
		}
	}
	return ""
}

// sideEffectID returns the record id a successful tool call reported, if any.
func sideEffectID(result map[string]interface{}) *string {
	if ok, _ := result["ok"].(bool); !ok {
		return nil
	}

	var id string
	switch v := result["id"].(type) {
	case nil:
		return nil
	case string:
		id = v
	default:
		id = fmt.Sprint(v)
	}
	if id == "" {
		return nil
	}
	return &id
}
