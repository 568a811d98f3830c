package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"react-agent/agent"
	"react-agent/config"
	"react-agent/llm"
	"react-agent/logging"
	"react-agent/metrics"
	"react-agent/tools"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("react-agent", pflag.ContinueOnError)
	config.Flags(flags)
	message := flags.StringP("message", "m", "", "answer a single question and exit")
	telegram := flags.Bool("telegram", false, "serve the agent as a Telegram bot")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Log, os.Stderr)

	// Set up context with cancellation for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.With().Str("component", "main").Logger().WithContext(ctx)

	registry, err := buildRegistry(ctx, cfg.Tools, logger.With().Str("component", "tools").Logger())
	if err != nil {
		return err
	}

	model, err := llm.New(llm.Config{
		Provider:          cfg.LLM.Provider,
		Model:             cfg.LLM.Model,
		APIKey:            cfg.LLM.APIKey,
		BaseURL:           cfg.LLM.BaseURL,
		Temperature:       cfg.LLM.Temperature,
		MaxTokens:         cfg.LLM.MaxTokens,
		RequestsPerSecond: cfg.LLM.RequestsPerSecond,
	})
	if err != nil {
		return err
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(promReg)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}
	if cfg.Metrics.Addr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, promReg, logger); err != nil {
				logger.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	executor, err := agent.New(model, registry,
		agent.WithMaxIterations(cfg.Agent.MaxIterations),
		agent.WithMaxParseErrors(cfg.Agent.MaxParseErrors),
		agent.WithLogger(logger.With().Str("component", "agent").Logger()),
		agent.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("provider", cfg.LLM.Provider).
		Int("tools", len(registry.All())).
		Msg("agent ready")

	switch {
	case *message != "":
		return runOnce(ctx, os.Stdout, executor, *message)
	case *telegram:
		if cfg.Telegram.Token == "" {
			return errors.New("TELEGRAM_BOT_TOKEN environment variable is required")
		}
		if len(cfg.Telegram.AllowedUsers) == 0 {
			logger.Warn().Msg("telegram.allowed_users is empty; every user can reach the tools")
		}
		return runTelegram(ctx, cfg.Telegram.Token, newUserFilter(cfg.Telegram.AllowedUsers), executor, registry.Names())
	default:
		// Unblock a pending read when interrupted at the prompt.
		go func() {
			<-ctx.Done()
			_ = os.Stdin.Close()
		}()
		err := runREPL(ctx, os.Stdin, os.Stdout, executor, registry.Names())
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
}

// buildRegistry assembles the fixed tool set in catalog order.
func buildRegistry(ctx context.Context, cfg config.ToolsConfig, logger zerolog.Logger) (*tools.Registry, error) {
	search, err := newSearchTool(ctx, cfg.Search)
	if err != nil {
		return nil, err
	}
	if cfg.Search.SerpAPIKey == "" && strings.EqualFold(cfg.Search.Provider, "serpapi") {
		logger.Warn().Msg("SERPAPI_API_KEY is not set; Search will report errors")
	}

	return tools.NewRegistry(
		search,
		tools.NewCalculatorTool(),
		tools.NewClockTool(),
		tools.NewWikipediaTool(cfg.WikipediaURL),
		tools.NewWebFetchTool(),
		tools.NewWeatherTool(cfg.WeatherURL),
		tools.NewCodeTool(cfg.Python),
		tools.NewReadFileTool(nil),
		tools.NewWriteFileTool(nil),
		tools.NewShellTool(cfg.Shell),
	)
}

func newSearchTool(ctx context.Context, cfg config.SearchConfig) (*tools.SearchTool, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "serpapi":
		return tools.NewSerpAPISearch(cfg.SerpAPIKey, cfg.SerpAPIURL), nil
	case "google":
		return tools.NewGoogleSearch(ctx, cfg.GoogleAPIKey, cfg.GoogleCSEID)
	default:
		return nil, fmt.Errorf("unknown search provider %q", cfg.Provider)
	}
}
