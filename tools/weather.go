package tools

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const (
	weatherTimeout    = 20 * time.Second
	DefaultWeatherURL = "https://wttr.in"
)

// WeatherTool reports current conditions from a wttr.in compatible service.
type WeatherTool struct {
	client  *resty.Client
	baseURL string
}

// NewWeatherTool creates the Weather tool. An empty baseURL uses wttr.in.
func NewWeatherTool(baseURL string) *WeatherTool {
	if baseURL == "" {
		baseURL = DefaultWeatherURL
	}
	return &WeatherTool{
		client:  resty.New().SetTimeout(weatherTimeout),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (w *WeatherTool) Name() string {
	return "Weather"
}

func (w *WeatherTool) Description() string {
	return "Get current weather for a location. Input: city name or location."
}

func (w *WeatherTool) Invoke(ctx context.Context, input string) string {
	report, err := w.current(ctx, CleanInput(input))
	if err != nil {
		return fmt.Sprintf("Weather error: %v", err)
	}
	return report
}

func (w *WeatherTool) current(ctx context.Context, location string) (string, error) {
	resp, err := w.client.R().
		SetContext(ctx).
		SetQueryParam("format", "j1").
		Get(w.baseURL + "/" + url.PathEscape(location))
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("HTTP %s", resp.Status())
	}

	body := resp.Body()
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("invalid JSON response")
	}
	doc := gjson.ParseBytes(body)

	fields := []string{
		"nearest_area.0.areaName.0.value",
		"current_condition.0.weatherDesc.0.value",
		"current_condition.0.temp_F",
		"current_condition.0.temp_C",
		"current_condition.0.FeelsLikeF",
		"current_condition.0.humidity",
		"current_condition.0.windspeedMiles",
	}
	values := make([]any, len(fields))
	for i, path := range fields {
		v := doc.Get(path)
		if !v.Exists() {
			return "", fmt.Errorf("missing field %q", path)
		}
		values[i] = v.String()
	}

	return fmt.Sprintf("%s: %s, %s°F (%s°C), Feels like %s°F, Humidity %s%%, Wind %s mph", values...), nil
}
