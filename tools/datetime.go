// Package tools provides the built-in tool set registered at session start.
package tools

import (
	"context"
	"time"
)

// DateTimeTool reports the current date and time. The clock is injectable so
// tests can pin it.
type DateTimeTool struct {
	Now func() time.Time
}

// NewDateTimeTool uses the system clock.
func NewDateTimeTool() *DateTimeTool {
	return &DateTimeTool{Now: time.Now}
}

// Name implements framework.Tool.
func (t *DateTimeTool) Name() string { return "datetime" }

// Description implements framework.Tool.
func (t *DateTimeTool) Description() string {
	return "Useful for checking the current date and time. Takes no input."
}

// Invoke returns an ISO-8601 timestamp; the input is ignored.
func (t *DateTimeTool) Invoke(ctx context.Context, input string) (string, error) {
	now := t.Now
	if now == nil {
		now = time.Now
	}
	return now().Format(time.RFC3339), nil
}
