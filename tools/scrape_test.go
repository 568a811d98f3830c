package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Sample</title><style>body { color: red; }</style></head>
<body>
  <header>Site header</header>
  <nav><a href="/">Home</a></nav>
  <h1>  Welcome  </h1>
  <p>First paragraph.</p>
  <script>var tracking = true;</script>
  <div><p>Nested <b>bold</b> text.</p></div>
  <footer>Copyright</footer>
</body>
</html>`

func TestExtractText(t *testing.T) {
	text, err := extractText(samplePage)
	require.NoError(t, err)
	assert.Equal(t, "Sample\nWelcome\nFirst paragraph.\nNested\nbold\ntext.", text)
}

func TestWebFetchTool(t *testing.T) {
	var agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	out := NewWebFetchTool().Invoke(context.Background(), `"`+srv.URL+`"`)
	assert.Equal(t, "Sample\nWelcome\nFirst paragraph.\nNested\nbold\ntext.", out)
	assert.Equal(t, "Mozilla/5.0", agent)
}

func TestWebFetchToolTruncates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<p>" + strings.Repeat("z", 5000) + "</p>"))
	}))
	defer srv.Close()

	out := NewWebFetchTool().Invoke(context.Background(), srv.URL)
	assert.Len(t, out, 3000)
}

func TestWebFetchToolErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	out := NewWebFetchTool().Invoke(context.Background(), srv.URL+"/missing")
	assert.Equal(t, "Error fetching URL: HTTP 404 Not Found", out)

	out = NewWebFetchTool().Invoke(context.Background(), "   ")
	assert.True(t, strings.HasPrefix(out, "Error fetching URL: "), "got %q", out)
}
