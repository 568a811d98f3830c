// Package config provides configuration management for the agent.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"react-agent/logging"
)

const (
	EnvPrefix      = "REACT_AGENT"
	DefaultAppName = "react-agent"
)

// Config holds all application configuration.
type Config struct {
	LLM      LLMConfig      `mapstructure:"llm"`
	Agent    AgentConfig    `mapstructure:"agent"`
	Tools    ToolsConfig    `mapstructure:"tools"`
	Log      logging.Config `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// LLMConfig selects the model provider.
type LLMConfig struct {
	Provider          string  `mapstructure:"provider"` // "openai" or "anthropic"
	Model             string  `mapstructure:"model"`
	APIKey            string  `mapstructure:"api_key"`
	BaseURL           string  `mapstructure:"base_url"`
	Temperature       float64 `mapstructure:"temperature"`
	MaxTokens         int     `mapstructure:"max_tokens"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

// AgentConfig bounds the reasoning loop.
type AgentConfig struct {
	MaxIterations  int `mapstructure:"max_iterations"`
	MaxParseErrors int `mapstructure:"max_parse_errors"` // 0 = unlimited
}

// ToolsConfig configures the tool adapters.
type ToolsConfig struct {
	Python       string       `mapstructure:"python"`
	Shell        string       `mapstructure:"shell"`
	WeatherURL   string       `mapstructure:"weather_url"`
	WikipediaURL string       `mapstructure:"wikipedia_url"`
	Search       SearchConfig `mapstructure:"search"`
}

// SearchConfig selects the web search backend.
type SearchConfig struct {
	Provider     string `mapstructure:"provider"` // "serpapi" or "google"
	SerpAPIKey   string `mapstructure:"serpapi_key"`
	SerpAPIURL   string `mapstructure:"serpapi_url"`
	GoogleAPIKey string `mapstructure:"google_api_key"`
	GoogleCSEID  string `mapstructure:"google_cse_id"`
}

// MetricsConfig controls the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// TelegramConfig holds the bot credentials. AllowedUsers lists usernames or
// numeric user IDs; an empty list admits everyone.
type TelegramConfig struct {
	Token        string   `mapstructure:"token"`
	AllowedUsers []string `mapstructure:"allowed_users"`
}

// Well-known variables bound alongside the prefixed ones. Model API keys
// are not listed: the OpenAI and Anthropic SDKs read OPENAI_API_KEY and
// ANTHROPIC_API_KEY themselves when llm.api_key is empty.
var envAliases = map[string]string{
	"tools.search.serpapi_key":    "SERPAPI_API_KEY",
	"tools.search.google_api_key": "GOOGLE_API_KEY",
	"tools.search.google_cse_id":  "GOOGLE_CSE_ID",
	"telegram.token":              "TELEGRAM_BOT_TOKEN",
}

// Flags registers the command-line flags that override config keys.
func Flags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a YAML config file")
	fs.String("provider", "", "model provider (openai, anthropic)")
	fs.String("model", "", "model name")
	fs.Int("max-iterations", 0, "maximum reasoning cycles per question")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.String("metrics-addr", "", "serve Prometheus metrics on this address")
}

var flagKeys = map[string]string{
	"provider":       "llm.provider",
	"model":          "llm.model",
	"max-iterations": "agent.max_iterations",
	"log-level":      "log.level",
	"metrics-addr":   "metrics.addr",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.temperature", 0.0)
	v.SetDefault("llm.max_tokens", 0)
	v.SetDefault("llm.requests_per_second", 0.0)

	v.SetDefault("agent.max_iterations", 25)
	v.SetDefault("agent.max_parse_errors", 0)

	v.SetDefault("tools.python", "python3")
	v.SetDefault("tools.shell", "sh")
	v.SetDefault("tools.weather_url", "https://wttr.in")
	v.SetDefault("tools.wikipedia_url", "https://en.wikipedia.org")
	v.SetDefault("tools.search.provider", "serpapi")
	v.SetDefault("tools.search.serpapi_key", "")
	v.SetDefault("tools.search.serpapi_url", "https://serpapi.com")
	v.SetDefault("tools.search.google_api_key", "")
	v.SetDefault("tools.search.google_cse_id", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("metrics.addr", "")
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.allowed_users", []string{})
}

// Load reads configuration from .env, an optional YAML file, the
// environment and flags, in increasing order of precedence. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	configPath := ""
	if flags != nil {
		if f := flags.Lookup("config"); f != nil {
			configPath = f.Value.String()
		}
	}
	if configPath != "" {
		expanded, err := homedir.Expand(configPath)
		if err != nil {
			return nil, fmt.Errorf("expanding config path: %w", err)
		}
		v.SetConfigFile(expanded)
	} else {
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, "."+DefaultAppName))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, alias := range envAliases {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, alias); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return &cfg, nil
}
