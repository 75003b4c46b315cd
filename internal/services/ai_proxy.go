package services

import (
	"context"
	"errors"
	"time"

	"github.com/Nina932/nyx/internal/auth"
	"github.com/Nina932/nyx/internal/gateway"
	"github.com/Nina932/nyx/internal/ledger"
	"github.com/Nina932/nyx/internal/models"
	"github.com/Nina932/nyx/internal/prompts"
	"github.com/Nina932/nyx/internal/telemetry"
	"github.com/Nina932/nyx/pkg/logger"
	"github.com/Nina932/nyx/pkg/response"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// failureMessages are the client-facing messages for upstream failures.
var failureMessages = map[prompts.Capability]string{
	prompts.CapabilityChat:        "Failed to get AI response",
	prompts.CapabilityCareerPath:  "Failed to generate career path",
	prompts.CapabilitySkillGap:    "Failed to analyze skill gaps",
	prompts.CapabilityPerformance: "Failed to analyze performance",
	prompts.CapabilityDocument:    "Failed to analyze document",
	prompts.CapabilityPolicyQA:    "Failed to answer policy question",
	prompts.CapabilitySimulation:  "Failed to run simulation",
}

const timeoutMessage = "AI service timed out"

// AIProxyService turns one capability request into one generation and one
// usage record.
type AIProxyService struct {
	builder *prompts.Builder
	gateway gateway.Gateway
	usage   ledger.Writer
	rate    decimal.Decimal
	now     func() time.Time
}

func NewAIProxyService(builder *prompts.Builder, gw gateway.Gateway, usage ledger.Writer, costPerToken float64) *AIProxyService {
	return &AIProxyService{
		builder: builder,
		gateway: gw,
		usage:   usage,
		rate:    decimal.NewFromFloat(costPerToken),
		now:     time.Now,
	}
}

func (s *AIProxyService) Chat(ctx context.Context, caller *auth.Identity, req prompts.ChatRequest) (interface{}, error) {
	return s.run(ctx, caller, prompts.CapabilityChat, func() (*prompts.Envelope, error) {
		return s.builder.Chat(req)
	})
}

func (s *AIProxyService) CareerPath(ctx context.Context, caller *auth.Identity, req prompts.CareerPathRequest) (interface{}, error) {
	return s.run(ctx, caller, prompts.CapabilityCareerPath, func() (*prompts.Envelope, error) {
		return s.builder.CareerPath(req)
	})
}

func (s *AIProxyService) SkillGap(ctx context.Context, caller *auth.Identity, req prompts.SkillGapRequest) (interface{}, error) {
	return s.run(ctx, caller, prompts.CapabilitySkillGap, func() (*prompts.Envelope, error) {
		return s.builder.SkillGap(req)
	})
}

func (s *AIProxyService) Performance(ctx context.Context, caller *auth.Identity, req prompts.PerformanceRequest) (interface{}, error) {
	return s.run(ctx, caller, prompts.CapabilityPerformance, func() (*prompts.Envelope, error) {
		return s.builder.Performance(req)
	})
}

func (s *AIProxyService) Document(ctx context.Context, caller *auth.Identity, req prompts.DocumentRequest) (interface{}, error) {
	return s.run(ctx, caller, prompts.CapabilityDocument, func() (*prompts.Envelope, error) {
		return s.builder.Document(req)
	})
}

func (s *AIProxyService) PolicyQA(ctx context.Context, caller *auth.Identity, req prompts.PolicyQARequest) (interface{}, error) {
	return s.run(ctx, caller, prompts.CapabilityPolicyQA, func() (*prompts.Envelope, error) {
		return s.builder.PolicyQA(req)
	})
}

func (s *AIProxyService) Simulation(ctx context.Context, caller *auth.Identity, req prompts.SimulationRequest) (interface{}, error) {
	return s.run(ctx, caller, prompts.CapabilitySimulation, func() (*prompts.Envelope, error) {
		return s.builder.Simulation(req)
	})
}

func (s *AIProxyService) run(ctx context.Context, caller *auth.Identity, capability prompts.Capability, build func() (*prompts.Envelope, error)) (interface{}, error) {
	if caller == nil {
		return nil, response.NewUnauthorized("No token provided")
	}

	ctx, span := telemetry.StartSpan(ctx, "ai."+string(capability),
		attribute.String("ai.capability", string(capability)),
		attribute.String("user.id", caller.Subject),
	)
	defer span.End()

	log := logger.Get().With().
		Str("capability", string(capability)).
		Str("user_id", caller.Subject).
		Logger()

	env, err := build()
	if err != nil {
		span.SetStatus(codes.Error, "invalid request")
		var ve *prompts.ValidationError
		if errors.As(err, &ve) {
			log.Debug().Strs("fields", ve.Fields).Msg("request rejected")
			return nil, response.NewBadRequest(ve.Message)
		}
		return nil, response.NewServerError("Failed to build prompt", err)
	}
	log.Debug().Str("model", env.Model).Int("prompt_chars", len(env.Contents)).Msg("prompt built")

	res, err := s.gateway.Generate(ctx, env)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		log.Warn().Err(err).Msg("generation failed")
		if errors.Is(err, gateway.ErrTimeout) {
			return nil, response.NewUpstreamTimeout(timeoutMessage, err)
		}
		return nil, response.NewUpstreamError(failureMessages[capability], err)
	}
	log.Debug().Str("provider", res.Provider).Dur("latency", res.Latency).Msg("generated")

	tokens := ledger.Tokens(env.Contents)
	rec := &models.UsageRecord{
		UserID:    caller.Subject,
		Endpoint:  string(capability),
		Tokens:    tokens,
		Cost:      ledger.Cost(tokens, s.rate),
		CreatedAt: s.now(),
	}
	if err := s.usage.Write(context.WithoutCancel(ctx), rec); err != nil {
		log.Error().Err(err).Int("tokens", tokens).Msg("failed to record usage")
	} else {
		log.Debug().Int("tokens", tokens).Str("cost", rec.Cost.String()).Msg("usage logged")
	}
	span.SetAttributes(attribute.Int("ai.tokens", tokens))

	return res.Value, nil
}
