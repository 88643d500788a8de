package domain

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Turn-level errors raised by the run orchestrator.
type (
	// SubmissionError indicates the remote call that begins a turn failed
	// (session creation, message append or run start). Never retried.
	SubmissionError struct {
		Op  string // "create_session", "append_message", "start_run"
		Err error
	}

	// PollError indicates fetching run status or resuming a run failed
	// while the run was still unresolved.
	PollError struct {
		RunHandle string
		Err       error
	}

	// RunTerminatedError indicates the remote run reached failed, cancelled
	// or expired.
	RunTerminatedError struct {
		RunHandle string
		Status    string
		Reason    string
	}

	// RunTimeoutError indicates the local poll deadline passed while the run
	// was still pending. The remote run is left running, so the outcome is
	// unknown.
	RunTimeoutError struct {
		RunHandle string
		Timeout   time.Duration
	}
)

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submit turn (%s): %v", e.Op, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

func (e *PollError) Error() string {
	return fmt.Sprintf("poll run %s: %v", e.RunHandle, e.Err)
}

func (e *PollError) Unwrap() error { return e.Err }

func (e *RunTerminatedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("run %s", e.Status)
	}
	return fmt.Sprintf("run %s: %s", e.Status, e.Reason)
}

func (e *RunTimeoutError) Error() string {
	return fmt.Sprintf("run %s did not finish within %s", e.RunHandle, e.Timeout)
}

// StatusCode implementations (HTTPError interface)
func (e *SubmissionError) StatusCode() int    { return http.StatusInternalServerError }
func (e *PollError) StatusCode() int          { return http.StatusInternalServerError }
func (e *RunTerminatedError) StatusCode() int { return http.StatusInternalServerError }
func (e *RunTimeoutError) StatusCode() int    { return http.StatusGatewayTimeout }
