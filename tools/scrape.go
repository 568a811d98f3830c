package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

const (
	scrapeTimeout  = 10 * time.Second
	maxScrapeChars = 3000
	browserAgent   = "Mozilla/5.0"
)

// WebFetchTool fetches web pages and extracts their visible text.
type WebFetchTool struct {
	client *resty.Client
}

// NewWebFetchTool creates the WebScraper tool.
func NewWebFetchTool() *WebFetchTool {
	client := resty.New().
		SetTimeout(scrapeTimeout).
		SetHeader("User-Agent", browserAgent)
	return &WebFetchTool{client: client}
}

func (s *WebFetchTool) Name() string {
	return "WebScraper"
}

func (s *WebFetchTool) Description() string {
	return "Fetch and read the text content of a webpage. Input: a full URL."
}

func (s *WebFetchTool) Invoke(ctx context.Context, input string) string {
	text, err := s.fetch(ctx, CleanInput(input))
	if err != nil {
		return fmt.Sprintf("Error fetching URL: %v", err)
	}
	return text
}

func (s *WebFetchTool) fetch(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("url is required")
	}
	// Ensure URL has scheme
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	log := zerolog.Ctx(ctx)
	log.Debug().Str("url", url).Msg("fetching")

	resp, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("HTTP %s", resp.Status())
	}

	log.Debug().Int("bytes", len(resp.Body())).Msg("fetched")

	text, err := extractText(string(resp.Body()))
	if err != nil {
		return "", err
	}
	text, _ = TruncateRunes(text, maxScrapeChars)
	return text, nil
}

// extractText returns the visible text of an HTML document, one stripped
// text node per line.
func extractText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	var lines []string
	extractTextFromNode(doc, &lines)
	return strings.Join(lines, "\n"), nil
}

func extractTextFromNode(n *html.Node, lines *[]string) {
	// Skip script, style, nav, footer, header elements
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "nav", "footer", "header", "noscript":
			return
		}
	}

	if n.Type == html.TextNode {
		if text := strings.TrimSpace(n.Data); text != "" {
			*lines = append(*lines, text)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractTextFromNode(c, lines)
	}
}
