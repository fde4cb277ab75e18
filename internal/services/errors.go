package services

import "fmt"

// AuthenticationError marks a webhook whose signature (or payload)
// could not be trusted. Never retried.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("webhook authentication failed: %v", e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// UpstreamError marks a failed payment-processor call. Fatal to the
// current pipeline run.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: payment processor call failed: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// WorkspaceError marks a failed workspace-store call. Fatal for the
// client, payment and total steps; swallowed for the calendar step.
type WorkspaceError struct {
	Op  string
	Err error
}

func (e *WorkspaceError) Error() string {
	return fmt.Sprintf("%s: workspace store call failed: %v", e.Op, e.Err)
}

func (e *WorkspaceError) Unwrap() error { return e.Err }

// ValidationError marks malformed caller input (bad phone number,
// missing field). Handled as an expected branch, never a crash.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
