package chat

import (
	"context"
	"errors"
	"fmt"
)

var ErrNoRepositories = errors.New("at least one repository id is required")

var ErrEmptyMessage = errors.New("message is required")

// Error kinds surfaced to the handler. Timeout maps to 504, everything else
// inside the pipeline maps to 500.
const (
	KindGeneral = "general"
	KindTimeout = "timeout"
)

// ChatError wraps any failure inside the chat pipeline with a stage label so
// logs show where the pipeline broke.
type ChatError struct {
	Kind  string
	Stage string
	Err   error
}

func (e *ChatError) Error() string {
	return fmt.Sprintf("chat %s failed (%s): %v", e.Stage, e.Kind, e.Err)
}

func (e *ChatError) Unwrap() error {
	return e.Err
}

func IsTimeout(err error) bool {
	var chatErr *ChatError
	if errors.As(err, &chatErr) {
		return chatErr.Kind == KindTimeout
	}
	return false
}

func wrapStage(stage string, err error) error {
	if err == nil {
		return nil
	}
	kind := KindGeneral
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return &ChatError{Kind: kind, Stage: stage, Err: err}
}
