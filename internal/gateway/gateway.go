// Package gateway performs the single outbound call to the generation
// backend for a prompt envelope.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Nina932/nyx/internal/prompts"
	"github.com/Nina932/nyx/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	// ErrUpstream covers failed calls and unusable replies.
	ErrUpstream = errors.New("upstream error")
	// ErrTimeout is returned when the call exceeds the configured bound.
	ErrTimeout = errors.New("upstream timeout")
)

// Result is a successful generation.
type Result struct {
	Provider string
	Model    string
	Text     string
	// Value is the decoded result: prompts.TextResult for free text, the
	// capability's typed result otherwise.
	Value   interface{}
	Latency time.Duration
}

// Gateway generates a reply for an envelope.
type Gateway interface {
	Generate(ctx context.Context, env *prompts.Envelope) (*Result, error)
}

// Provider is one backend SDK. Complete returns the raw reply text.
type Provider interface {
	Name() string
	Complete(ctx context.Context, env *prompts.Envelope) (string, error)
}

// Client bounds each Provider call and decodes its reply. It makes exactly
// one attempt per Generate.
type Client struct {
	provider Provider
	timeout  time.Duration
}

func NewClient(p Provider, timeout time.Duration) *Client {
	return &Client{provider: p, timeout: timeout}
}

var tracer = otel.Tracer("github.com/Nina932/nyx/internal/gateway")

// Generate runs the call detached from ctx cancellation, so a client that
// disconnects does not abort a generation already paid for. Only the
// timeout ends it early.
func (c *Client) Generate(ctx context.Context, env *prompts.Envelope) (*Result, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "ai.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.provider", c.provider.Name()),
		attribute.String("ai.model", env.Model),
		attribute.String("ai.capability", string(env.Capability)),
		attribute.Int("ai.prompt_chars", len(env.Contents)),
	)

	start := time.Now()
	text, err := c.provider.Complete(ctx, env)
	latency := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate failed")
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s: %v", ErrTimeout, c.timeout, err)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrUpstream, c.provider.Name(), err)
	}

	value, err := env.Decode(text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		logger.Warn().
			Str("capability", string(env.Capability)).
			Int("reply_chars", len(text)).
			Err(err).
			Msg("model reply rejected")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	logger.Debug().
		Str("provider", c.provider.Name()).
		Str("model", env.Model).
		Dur("latency", latency).
		Int("reply_chars", len(text)).
		Msg("generation complete")

	return &Result{
		Provider: c.provider.Name(),
		Model:    env.Model,
		Text:     text,
		Value:    value,
		Latency:  latency,
	}, nil
}
