package tools

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockTool(t *testing.T) {
	fixed := time.Date(2024, 3, 9, 7, 5, 30, 0, time.Local)
	clock := &ClockTool{now: func() time.Time { return fixed }}

	assert.Equal(t, "2024-03-09 07:05:30", clock.Invoke(context.Background(), "anything"))
	assert.Equal(t, "GetDateTime", clock.Name())
}

func TestClockToolFormat(t *testing.T) {
	out := NewClockTool().Invoke(context.Background(), "")
	_, err := time.ParseInLocation(dateTimeLayout, out, time.Local)
	assert.NoError(t, err)
}
