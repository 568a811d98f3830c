// Package agent runs the reason-and-act loop that connects the model to tools.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"react-agent/llm"
	"react-agent/metrics"
	"react-agent/tools"
)

// DefaultMaxIterations caps the reasoning cycles of one episode.
const DefaultMaxIterations = 25

// StoppedMessage is the output of an episode that hit the iteration cap.
const StoppedMessage = "Agent stopped due to iteration limit or time limit."

var (
	ErrNoModel    = errors.New("agent: model is required")
	ErrNoRegistry = errors.New("agent: tool registry is required")
)

var stopSequences = []string{"\nObservation:"}

// Reason tells why an episode ended.
type Reason string

const (
	ReasonFinalAnswer    Reason = "final_answer"
	ReasonIterationLimit Reason = "iteration_limit"
	ReasonParseFailure   Reason = "parse_failure"
)

// Result is the outcome of one episode.
type Result struct {
	EpisodeID   string
	Output      string
	Reason      Reason
	Iterations  int
	LastThought string // most recent reasoning, useful when the episode did not finish
	Transcript  *Transcript
}

// Complete reports whether the model produced a final answer. Other results
// may be partial.
func (r *Result) Complete() bool {
	return r.Reason == ReasonFinalAnswer
}

// Executor drives episodes. It holds no per-episode state and can serve
// concurrent Run calls.
type Executor struct {
	model          llm.Model
	registry       *tools.Registry
	parser         Parser
	formatter      *PromptFormatter
	promptTemplate string
	maxIterations  int
	maxParseErrors int
	logger         zerolog.Logger
	metrics        *metrics.Metrics
}

// Option configures an Executor.
type Option func(*Executor)

// WithMaxIterations sets the iteration cap.
func WithMaxIterations(n int) Option {
	return func(e *Executor) { e.maxIterations = n }
}

// WithMaxParseErrors ends an episode after n consecutive unusable replies.
// Zero leaves parse failures bounded only by the iteration cap.
func WithMaxParseErrors(n int) Option {
	return func(e *Executor) { e.maxParseErrors = n }
}

// WithParser replaces the ReAct text parser.
func WithParser(p Parser) Option {
	return func(e *Executor) { e.parser = p }
}

// WithPromptTemplate replaces the instruction template.
func WithPromptTemplate(text string) Option {
	return func(e *Executor) { e.promptTemplate = text }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// WithMetrics records episodes and tool calls into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// New creates an Executor for model and registry.
func New(model llm.Model, registry *tools.Registry, opts ...Option) (*Executor, error) {
	if model == nil {
		return nil, ErrNoModel
	}
	if registry == nil {
		return nil, ErrNoRegistry
	}

	e := &Executor{
		model:         model,
		registry:      registry,
		parser:        ReActParser{},
		maxIterations: DefaultMaxIterations,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.maxIterations <= 0 {
		e.maxIterations = DefaultMaxIterations
	}

	formatter, err := NewPromptFormatter(registry, e.promptTemplate)
	if err != nil {
		return nil, err
	}
	e.formatter = formatter
	return e, nil
}

// Run answers one question. Tool failures never end the episode; only a
// model error or ctx cancellation returns an error.
func (e *Executor) Run(ctx context.Context, question string) (*Result, error) {
	res := &Result{
		EpisodeID:  uuid.NewString(),
		Transcript: &Transcript{},
	}
	log := e.logger.With().Str("episode", res.EpisodeID).Logger()
	ctx = log.WithContext(ctx)

	log.Info().Str("question", truncateText(question, 200)).Msg("episode started")

	parseErrors := 0
	for res.Iterations < e.maxIterations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Iterations++

		prompt, err := e.formatter.Format(question, res.Transcript.Scratchpad())
		if err != nil {
			return nil, err
		}

		reply, err := e.model.Complete(ctx, prompt, stopSequences)
		e.metrics.ObserveModelCall(err)
		if err != nil {
			log.Error().Err(err).Int("iteration", res.Iterations).Msg("model call failed")
			return nil, fmt.Errorf("model call (iteration %d): %w", res.Iterations, err)
		}

		d := e.parser.Parse(reply)
		if d.Thought != "" {
			res.LastThought = d.Thought
		}
		log.Debug().
			Int("iteration", res.Iterations).
			Stringer("kind", d.Kind).
			Str("tool", d.Tool).
			Msg("parsed reply")

		switch d.Kind {
		case KindFinish:
			res.Transcript.Finish(d.Thought, d.Answer)
			res.Output = d.Answer
			res.Reason = ReasonFinalAnswer
			return e.finish(log, res), nil

		case KindAction:
			observation, known := e.dispatch(ctx, d)
			if known {
				parseErrors = 0
			} else {
				parseErrors++
			}
			res.Transcript.AddStep(d.Thought, Step{
				Action:      d.Tool,
				ActionInput: d.Input,
				Log:         d.Log,
				Observation: observation,
			})

		default:
			parseErrors++
			log.Warn().Int("iteration", res.Iterations).Str("reason", d.Reason).Msg("unparsable reply")
			res.Transcript.AddStep(d.Thought, Step{Log: d.Log, Observation: d.Reason})
		}

		if e.maxParseErrors > 0 && parseErrors >= e.maxParseErrors {
			res.Output = fmt.Sprintf("Agent stopped after %d consecutive invalid replies.", parseErrors)
			res.Reason = ReasonParseFailure
			return e.finish(log, res), nil
		}
	}

	res.Output = StoppedMessage
	res.Reason = ReasonIterationLimit
	return e.finish(log, res), nil
}

// dispatch runs the tool named by d. known is false when no such tool is
// registered; the observation then tells the model which tools exist.
func (e *Executor) dispatch(ctx context.Context, d Decision) (observation string, known bool) {
	log := zerolog.Ctx(ctx)
	start := time.Now()

	observation, known = e.registry.Invoke(ctx, d.Tool, d.Input)
	if !known {
		e.metrics.ObserveToolCall(d.Tool, metrics.OutcomeUnknownTool, 0)
		log.Warn().Str("tool", d.Tool).Msg("unknown tool")
		return fmt.Sprintf("%s is not a valid tool, try one of [%s].", d.Tool, strings.Join(e.registry.Names(), ", ")), false
	}

	duration := time.Since(start)
	outcome := metrics.OutcomeOK
	if looksLikeFailure(observation) {
		outcome = metrics.OutcomeError
	}
	e.metrics.ObserveToolCall(d.Tool, outcome, duration)

	log.Info().
		Str("tool", d.Tool).
		Str("input", truncateText(d.Input, 100)).
		Dur("duration", duration).
		Int("observation_len", len(observation)).
		Str("outcome", outcome).
		Msg("tool executed")
	return observation, true
}

func (e *Executor) finish(log zerolog.Logger, res *Result) *Result {
	e.metrics.ObserveEpisode(string(res.Reason), res.Iterations)
	log.Info().
		Str("reason", string(res.Reason)).
		Int("iterations", res.Iterations).
		Msg("episode finished")
	return res
}

// looksLikeFailure recognises the error observations tools produce, which
// start with "Error" or a "<Label> error:" prefix.
func looksLikeFailure(observation string) bool {
	if strings.HasPrefix(strings.TrimLeft(observation, "\n"), "Error") {
		return true
	}
	head, _, found := strings.Cut(observation, ":")
	return found && !strings.Contains(head, "\n") && strings.HasSuffix(head, " error")
}

func truncateText(s string, maxLen int) string {
	if cut, truncated := tools.TruncateRunes(s, maxLen); truncated {
		return cut + "..."
	}
	return s
}
