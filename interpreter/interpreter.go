// Package interpreter runs the command interpretation pipeline: compress
// the dashboard context, build the prompt, invoke the model gateway,
// extract and validate the reply, then apply the command or translate the
// failure into one friendly sentence. The whole flow is a total function
// over the closed command grammar: garbage in the model reply degrades to
// a reject outcome, never to a crash or a partial write.
package interpreter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/plotdeck/plotdeck/command"
	"github.com/plotdeck/plotdeck/dashboard"
	"github.com/plotdeck/plotdeck/dataset"
	"github.com/plotdeck/plotdeck/llm"
	"github.com/plotdeck/plotdeck/mutator"
	"github.com/plotdeck/plotdeck/prompt"
)

// extractionUserMessage is shown when no JSON payload was recoverable
// from the model reply. The raw reply is logged for operators, never
// shown to the user.
const extractionUserMessage = "I was not able to interpret that request, please try asking again in different words."

// previewLen bounds the diagnostic preview of unextractable model text.
const previewLen = 160

// Gateway is the single external call: prompt in, raw text out. The
// production implementation is *llm.Client; tests substitute fakes.
type Gateway interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// Request is one user action against one document snapshot.
type Request struct {
	// Prompt is the literal free-form user request.
	Prompt string

	// Document is the dashboard snapshot the command applies to.
	Document *dashboard.Document

	// Schema describes the underlying data's columns.
	Schema *dataset.Schema
}

// Outcome is the terminal result of one interpretation. Exactly one of
// two shapes: an applied command with the new document, or a reject-like
// outcome with a reason and a user-facing message. Both are successes at
// the system level.
type Outcome struct {
	// Applied reports whether a mutation was performed.
	Applied bool

	// Command is the validated command, when parsing succeeded. Nil for
	// extraction and validation failures.
	Command command.Command

	// Document is the resulting document: mutated when Applied, the
	// input snapshot otherwise.
	Document *dashboard.Document

	// RejectReason is set when not Applied.
	RejectReason command.RejectReason

	// Message is the user-facing sentence describing what happened.
	Message string
}

// Interpreter wires the pipeline stages together.
type Interpreter struct {
	gateway   Gateway
	extractor llm.Extractor
	logger    *slog.Logger
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithExtractor replaces the default fenced-block extractor.
func WithExtractor(e llm.Extractor) Option {
	return func(i *Interpreter) {
		i.extractor = e
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) {
		i.logger = logger
	}
}

// New creates an Interpreter over the given gateway.
func New(gateway Gateway, opts ...Option) *Interpreter {
	i := &Interpreter{
		gateway:   gateway,
		extractor: llm.FencedExtractor{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Interpret runs one request through the pipeline. It returns an error
// only for system-level failures (ConfigurationMissingError,
// UpstreamUnavailableError); every other failure mode resolves to a
// non-applied Outcome with a friendly message, because it means the
// interpreter correctly recognized it cannot satisfy the request.
func (i *Interpreter) Interpret(ctx context.Context, req Request) (*Outcome, error) {
	if req.Document == nil {
		return nil, fmt.Errorf("document is required")
	}

	promptCtx := prompt.Compress(req.Document, req.Schema)
	messages, err := prompt.Build(req.Prompt, promptCtx)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	resp, err := i.gateway.Complete(ctx, llm.Request{Messages: messages})
	if err != nil {
		if llm.IsConfig(err) {
			return nil, &ConfigurationMissingError{Err: err}
		}
		return nil, &UpstreamUnavailableError{Err: err}
	}

	candidate, ok := i.extractor.Extract(resp.Content)
	if !ok {
		i.logger.Warn("No JSON payload recoverable from model reply",
			"model", resp.Model,
			"preview", preview(resp.Content))
		return &Outcome{
			Document:     req.Document,
			RejectReason: command.RejectOther,
			Message:      extractionUserMessage,
		}, nil
	}

	cmd, failures := command.Parse(candidate)
	if len(failures) > 0 {
		i.logger.Debug("Command validation failed",
			"model", resp.Model,
			"failures", failureStrings(failures))
		return &Outcome{
			Document:     req.Document,
			RejectReason: command.RejectOther,
			Message:      command.Translate(failures),
		}, nil
	}

	if reject, ok := cmd.(command.Reject); ok {
		msg := reject.Message
		if msg == "" {
			msg = extractionUserMessage
		}
		return &Outcome{
			Command:      cmd,
			Document:     req.Document,
			RejectReason: reject.Reason,
			Message:      msg,
		}, nil
	}

	next, err := mutator.Apply(req.Document, cmd)
	if err != nil {
		if mutator.IsBenign(err) {
			return &Outcome{
				Command:      cmd,
				Document:     req.Document,
				RejectReason: benignReason(err),
				Message:      benignMessage(err),
			}, nil
		}
		return nil, fmt.Errorf("apply command: %w", err)
	}

	msg := command.MessageOf(cmd)
	if msg == "" {
		msg = "Done."
	}
	return &Outcome{
		Applied:  true,
		Command:  cmd,
		Document: next,
		Message:  msg,
	}, nil
}

func benignReason(err error) command.RejectReason {
	var notFound *mutator.TargetNotFoundError
	if errors.As(err, &notFound) {
		return notFound.RejectReason()
	}
	var dup *mutator.DuplicateIDError
	if errors.As(err, &dup) {
		return dup.RejectReason()
	}
	return command.RejectOther
}

func benignMessage(err error) string {
	var notFound *mutator.TargetNotFoundError
	if errors.As(err, &notFound) {
		if notFound.Kind == mutator.TargetPage {
			return "I couldn't find the page you're referring to on this dashboard."
		}
		return "I couldn't find the chart you're referring to on this dashboard."
	}
	var dup *mutator.DuplicateIDError
	if errors.As(err, &dup) {
		return "Something with that identifier already exists, so I left the dashboard unchanged."
	}
	return extractionUserMessage
}

func preview(s string) string {
	if len(s) > previewLen {
		return s[:previewLen] + "..."
	}
	return s
}

func failureStrings(failures []command.Failure) []string {
	out := make([]string, len(failures))
	for i, f := range failures {
		out[i] = f.String()
	}
	return out
}
