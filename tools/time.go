package tools

import (
	"context"
	"time"
)

const dateTimeLayout = "2006-01-02 15:04:05"

// ClockTool returns the current local date and time.
type ClockTool struct {
	now func() time.Time
}

// NewClockTool creates the GetDateTime tool.
func NewClockTool() *ClockTool {
	return &ClockTool{now: time.Now}
}

func (t *ClockTool) Name() string {
	return "GetDateTime"
}

func (t *ClockTool) Description() string {
	return "Get the current date and time. Input can be any string or empty."
}

func (t *ClockTool) Invoke(_ context.Context, _ string) string {
	return t.now().Local().Format(dateTimeLayout)
}
