package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type countingModel struct {
	calls int
}

func (c *countingModel) Complete(context.Context, string, []string) (string, error) {
	c.calls++
	return "ok", nil
}

func TestNewSelectsProvider(t *testing.T) {
	m, err := New(Config{Provider: "", APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, m)

	m, err = New(Config{Provider: "Anthropic", APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &Anthropic{}, m)

	m, err = New(Config{Provider: "openai", APIKey: "k", RequestsPerSecond: 2})
	require.NoError(t, err)
	assert.IsType(t, &RateLimited{}, m)

	_, err = New(Config{Provider: "llama"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestRateLimited(t *testing.T) {
	next := &countingModel{}
	m := NewRateLimited(next, 20)

	start := time.Now()
	for i := 0; i < 3; i++ {
		out, err := m.Complete(context.Background(), "p", nil)
		require.NoError(t, err)
		assert.Equal(t, "ok", out)
	}
	// burst of one, then two waits of ~50ms
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	assert.Equal(t, 3, next.calls)
}

func TestRateLimitedHonoursContext(t *testing.T) {
	next := &countingModel{}
	m := NewRateLimited(next, 0.001)
	_, err := m.Complete(context.Background(), "p", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = m.Complete(ctx, "p", nil)
	assert.Error(t, err)
	assert.Equal(t, 1, next.calls)
}

func TestOpenAIComplete(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1", "object": "chat.completion", "created": 0, "model": "gpt-4o-mini",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": " Thinking\nFinal Answer: 42"}}]
		}`))
	}))
	defer srv.Close()

	m := NewOpenAI(Config{APIKey: "test", BaseURL: srv.URL})
	out, err := m.Complete(context.Background(), "Question: q", []string{"\nObservation:"})
	require.NoError(t, err)
	assert.Equal(t, " Thinking\nFinal Answer: 42", out)

	doc := gjson.ParseBytes(body)
	assert.Equal(t, "gpt-4o-mini", doc.Get("model").String())
	assert.Equal(t, "Question: q", doc.Get("messages.0.content").String())
	assert.Equal(t, "\nObservation:", doc.Get("stop.0").String())
	assert.Equal(t, 0.0, doc.Get("temperature").Float())
}

func TestOpenAIEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "x", "object": "chat.completion", "model": "m", "choices": []}`))
	}))
	defer srv.Close()

	_, err := NewOpenAI(Config{APIKey: "test", BaseURL: srv.URL}).Complete(context.Background(), "p", nil)
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestAnthropicComplete(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-3-5-haiku-latest",
			"content": [{"type": "text", "text": "Action: Search"}, {"type": "text", "text": "\nAction Input: go"}],
			"stop_reason": "stop_sequence", "usage": {"input_tokens": 1, "output_tokens": 1}
		}`))
	}))
	defer srv.Close()

	m := NewAnthropic(Config{APIKey: "test", BaseURL: srv.URL})
	out, err := m.Complete(context.Background(), "Question: q", []string{"\nObservation:", "  "})
	require.NoError(t, err)
	assert.Equal(t, "Action: Search\nAction Input: go", out)

	doc := gjson.ParseBytes(body)
	assert.Equal(t, int64(1024), doc.Get("max_tokens").Int())
	assert.Equal(t, []string{"\nObservation:"}, stringsOf(doc.Get("stop_sequences").Array()))
}

func TestAnthropicAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type": "error", "error": {"type": "invalid_request_error", "message": "bad"}}`))
	}))
	defer srv.Close()

	_, err := NewAnthropic(Config{APIKey: "test", BaseURL: srv.URL}).Complete(context.Background(), "p", nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrEmptyCompletion))
}

func stringsOf(results []gjson.Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.String())
	}
	return out
}
