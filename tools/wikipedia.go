package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const (
	wikiTimeout        = 20 * time.Second
	maxSummaryChars    = 1500
	maxDisambiguations = 5

	DefaultWikipediaURL = "https://en.wikipedia.org"
)

var errPageNotFound = errors.New("page not found")

// disambiguationError carries the alternative titles of an ambiguous topic.
type disambiguationError struct {
	options []string
}

func (e *disambiguationError) Error() string {
	return "ambiguous topic"
}

// WikipediaTool looks topics up on a MediaWiki site.
type WikipediaTool struct {
	client  *resty.Client
	baseURL string
}

// NewWikipediaTool creates the Wikipedia tool. An empty baseURL uses English
// Wikipedia.
func NewWikipediaTool(baseURL string) *WikipediaTool {
	if baseURL == "" {
		baseURL = DefaultWikipediaURL
	}
	return &WikipediaTool{
		client: resty.New().
			SetTimeout(wikiTimeout).
			SetHeader("User-Agent", "react-agent/1.0"),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (w *WikipediaTool) Name() string {
	return "Wikipedia"
}

func (w *WikipediaTool) Description() string {
	return "Look up a topic on Wikipedia for factual/encyclopedic info. Input: a topic name."
}

func (w *WikipediaTool) Invoke(ctx context.Context, input string) string {
	query := CleanInput(input)

	summary, err := w.lookup(ctx, query)
	var ambiguous *disambiguationError
	switch {
	case err == nil:
		return summary
	case errors.As(err, &ambiguous):
		return "Disambiguation: did you mean one of these? " + strings.Join(ambiguous.options, ", ")
	case errors.Is(err, errPageNotFound):
		return fmt.Sprintf("No Wikipedia page found for '%s'.", query)
	default:
		return fmt.Sprintf("Wikipedia error: %v", err)
	}
}

func (w *WikipediaTool) lookup(ctx context.Context, query string) (string, error) {
	if query == "" {
		return "", errPageNotFound
	}

	title, err := w.resolveTitle(ctx, query)
	if err != nil {
		return "", err
	}

	resp, err := w.client.R().
		SetContext(ctx).
		Get(w.baseURL + "/api/rest_v1/page/summary/" + url.PathEscape(strings.ReplaceAll(title, " ", "_")))
	if err != nil {
		return "", err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return "", errPageNotFound
	}
	if resp.IsError() {
		return "", fmt.Errorf("HTTP %s", resp.Status())
	}

	doc := gjson.ParseBytes(resp.Body())
	if doc.Get("type").String() == "disambiguation" {
		options, err := w.links(ctx, title)
		if err != nil {
			return "", err
		}
		return "", &disambiguationError{options: options}
	}

	summary, _ := TruncateRunes(doc.Get("extract").String(), maxSummaryChars)
	return summary, nil
}

// resolveTitle maps a free-text topic to a page title, preferring the search
// engine's spelling suggestion over the top hit.
func (w *WikipediaTool) resolveTitle(ctx context.Context, query string) (string, error) {
	doc, err := w.api(ctx, map[string]string{
		"list":     "search",
		"srsearch": query,
		"srlimit":  "1",
		"srinfo":   "suggestion",
		"srprop":   "",
	})
	if err != nil {
		return "", err
	}

	if suggestion := doc.Get("query.searchinfo.suggestion").String(); suggestion != "" {
		return suggestion, nil
	}
	if title := doc.Get("query.search.0.title").String(); title != "" {
		return title, nil
	}
	return "", errPageNotFound
}

// links returns the first article links of a disambiguation page.
func (w *WikipediaTool) links(ctx context.Context, title string) ([]string, error) {
	doc, err := w.api(ctx, map[string]string{
		"prop":        "links",
		"titles":      title,
		"plnamespace": "0",
		"pllimit":     fmt.Sprint(maxDisambiguations),
	})
	if err != nil {
		return nil, err
	}

	var options []string
	for _, link := range doc.Get("query.pages.0.links.#.title").Array() {
		options = append(options, link.String())
		if len(options) == maxDisambiguations {
			break
		}
	}
	return options, nil
}

func (w *WikipediaTool) api(ctx context.Context, params map[string]string) (gjson.Result, error) {
	resp, err := w.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParams(map[string]string{
			"action":        "query",
			"format":        "json",
			"formatversion": "2",
		}).
		Get(w.baseURL + "/w/api.php")
	if err != nil {
		return gjson.Result{}, err
	}
	if resp.IsError() {
		return gjson.Result{}, fmt.Errorf("HTTP %s", resp.Status())
	}
	if !gjson.ValidBytes(resp.Body()) {
		return gjson.Result{}, fmt.Errorf("invalid JSON response")
	}
	return gjson.ParseBytes(resp.Body()), nil
}
