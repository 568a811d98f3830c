package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

const (
	searchTimeout     = 20 * time.Second
	searchResultCount = 5
	searchTopResults  = 3
	noResults         = "No results found."

	DefaultSerpAPIURL = "https://serpapi.com"
)

// searchBackend runs one query and renders the result for the model.
type searchBackend interface {
	search(ctx context.Context, query string) (string, error)
}

// SearchTool searches the web through a pluggable backend.
type SearchTool struct {
	backend searchBackend
}

func (s *SearchTool) Name() string {
	return "Search"
}

func (s *SearchTool) Description() string {
	return "Search the web for current information. Input: a search query."
}

func (s *SearchTool) Invoke(ctx context.Context, input string) string {
	query := strings.TrimSpace(input)
	zerolog.Ctx(ctx).Debug().Str("query", query).Msg("searching")

	result, err := s.backend.search(ctx, query)
	if err != nil {
		return fmt.Sprintf("Search error: %v", err)
	}
	return result
}

type searchHit struct {
	title, snippet, link string
}

func formatHits(hits []searchHit) string {
	if len(hits) > searchTopResults {
		hits = hits[:searchTopResults]
	}
	if len(hits) == 0 {
		return noResults
	}
	parts := make([]string, 0, len(hits))
	for _, h := range hits {
		parts = append(parts, h.title+"\n"+h.snippet+"\n"+h.link)
	}
	return strings.Join(parts, "\n\n")
}

// serpAPI queries SerpAPI's Google engine.
type serpAPI struct {
	client  *resty.Client
	apiKey  string
	baseURL string
}

// NewSerpAPISearch creates a Search tool backed by SerpAPI. An empty baseURL
// uses serpapi.com.
func NewSerpAPISearch(apiKey, baseURL string) *SearchTool {
	if baseURL == "" {
		baseURL = DefaultSerpAPIURL
	}
	return &SearchTool{backend: &serpAPI{
		client:  resty.New().SetTimeout(searchTimeout),
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
	}}
}

func (s *serpAPI) search(ctx context.Context, query string) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":       query,
			"api_key": s.apiKey,
			"num":     fmt.Sprint(searchResultCount),
		}).
		Get(s.baseURL + "/search.json")
	if err != nil {
		return "", err
	}

	body := resp.Body()
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("HTTP %d: invalid JSON response", resp.StatusCode())
	}
	doc := gjson.ParseBytes(body)
	if msg := doc.Get("error"); msg.Exists() {
		return "", fmt.Errorf("%s", msg.String())
	}
	if resp.IsError() {
		return "", fmt.Errorf("HTTP %s", resp.Status())
	}

	if box := doc.Get("answer_box"); box.Exists() {
		if answer := box.Get("answer"); answer.Exists() {
			return answer.String(), nil
		}
		if snippet := box.Get("snippet"); snippet.Exists() {
			return snippet.String(), nil
		}
	}

	organic := doc.Get("organic_results")
	if !organic.Exists() {
		return noResults, nil
	}
	var hits []searchHit
	for _, r := range organic.Array() {
		hits = append(hits, searchHit{
			title:   r.Get("title").String(),
			snippet: r.Get("snippet").String(),
			link:    r.Get("link").String(),
		})
	}
	return formatHits(hits), nil
}

// googleCSE queries a Google Programmable Search Engine.
type googleCSE struct {
	svc *customsearch.Service
	cx  string
}

// NewGoogleSearch creates a Search tool backed by Google Custom Search.
func NewGoogleSearch(ctx context.Context, apiKey, engineID string, opts ...option.ClientOption) (*SearchTool, error) {
	if engineID == "" {
		return nil, fmt.Errorf("google custom search engine id is required")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating custom search service: %w", err)
	}
	return &SearchTool{backend: &googleCSE{svc: svc, cx: engineID}}, nil
}

func (g *googleCSE) search(ctx context.Context, query string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	res, err := g.svc.Cse.List().Cx(g.cx).Q(query).Num(searchResultCount).Context(ctx).Do()
	if err != nil {
		return "", err
	}

	hits := make([]searchHit, 0, len(res.Items))
	for _, item := range res.Items {
		hits = append(hits, searchHit{title: item.Title, snippet: item.Snippet, link: item.Link})
	}
	return formatHits(hits), nil
}
