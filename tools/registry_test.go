package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	name   string
	invoke func(input string) string
}

func (s *stubTool) Name() string        { return s.name }
func (s *stubTool) Description() string { return "stub " + s.name }
func (s *stubTool) Invoke(_ context.Context, input string) string {
	return s.invoke(input)
}

func echoTool(name string) *stubTool {
	return &stubTool{name: name, invoke: func(input string) string { return name + ":" + input }}
}

func TestRegistryKeepsOrder(t *testing.T) {
	r, err := NewRegistry(echoTool("B"), echoTool("A"), echoTool("C"))
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "A", "C"}, r.Names())
	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, "A", all[1].Name())

	tool, ok := r.Get("C")
	require.True(t, ok)
	assert.Equal(t, "C", tool.Name())

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistryRejectsBadNames(t *testing.T) {
	_, err := NewRegistry(echoTool("A"), echoTool("A"))
	assert.ErrorIs(t, err, ErrDuplicateTool)

	_, err = NewRegistry(echoTool(" "))
	assert.ErrorIs(t, err, ErrEmptyToolName)
}

func TestRegistryInvoke(t *testing.T) {
	boom := &stubTool{name: "Boom", invoke: func(string) string { panic("kaboom") }}
	r, err := NewRegistry(echoTool("Echo"), boom)
	require.NoError(t, err)

	obs, found := r.Invoke(context.Background(), "Echo", "hi")
	assert.True(t, found)
	assert.Equal(t, "Echo:hi", obs)

	obs, found = r.Invoke(context.Background(), "Boom", "x")
	assert.True(t, found)
	assert.Equal(t, "Error: Boom panicked: kaboom", obs)

	obs, found = r.Invoke(context.Background(), "Nope", "x")
	assert.False(t, found)
	assert.Empty(t, obs)
}

func TestRegistryAllReturnsCopy(t *testing.T) {
	r, err := NewRegistry(echoTool("A"))
	require.NoError(t, err)

	all := r.All()
	all[0] = echoTool("Z")
	assert.Equal(t, []string{"A"}, r.Names())
}
