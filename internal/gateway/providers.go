package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Nina932/nyx/internal/config"
	"github.com/Nina932/nyx/internal/prompts"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ollama/ollama/api"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// New builds the Client for the configured provider.
func New(ctx context.Context, cfg config.AIConfig) (*Client, error) {
	var (
		p   Provider
		err error
	)
	switch strings.ToLower(cfg.Provider) {
	case ProviderGemini, "":
		p, err = NewGemini(ctx, cfg)
	case ProviderOpenAI:
		p = NewOpenAI(cfg)
	case ProviderAnthropic:
		p = NewAnthropic(cfg)
	case ProviderOllama:
		p, err = NewOllama(cfg)
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return NewClient(p, cfg.Timeout), nil
}

// schemaInstruction asks providers without native structured output to
// answer in the declared shape.
func schemaInstruction(s *prompts.Schema) string {
	return "\n\nRespond with JSON only, no prose and no code fences. The JSON must match this JSON Schema:\n" +
		string(s.JSON())
}

type geminiProvider struct {
	client *genai.Client
}

func NewGemini(ctx context.Context, cfg config.AIConfig) (Provider, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &geminiProvider{client: client}, nil
}

func (g *geminiProvider) Name() string { return ProviderGemini }

func (g *geminiProvider) Complete(ctx context.Context, env *prompts.Envelope) (string, error) {
	gc := &genai.GenerateContentConfig{}
	if env.SystemInstruction != "" {
		gc.SystemInstruction = genai.NewContentFromText(env.SystemInstruction, genai.RoleUser)
	}
	if env.Schema != nil {
		gc.ResponseMIMEType = "application/json"
		gc.ResponseSchema = toGenaiSchema(env.Schema)
	}

	resp, err := g.client.Models.GenerateContent(ctx, env.Model, genai.Text(env.Contents), gc)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

var genaiTypes = map[prompts.Type]genai.Type{
	prompts.TypeObject:  genai.TypeObject,
	prompts.TypeArray:   genai.TypeArray,
	prompts.TypeString:  genai.TypeString,
	prompts.TypeInteger: genai.TypeInteger,
	prompts.TypeNumber:  genai.TypeNumber,
	prompts.TypeBoolean: genai.TypeBoolean,
}

func toGenaiSchema(s *prompts.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:     genaiTypes[s.Type],
		Required: s.Required,
		Enum:     s.Enum,
		Items:    toGenaiSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}
	return out
}

type openAIProvider struct {
	client    *openai.Client
	maxTokens int
}

// NewOpenAI serves OpenAI and OpenAI-compatible endpoints.
func NewOpenAI(cfg config.AIConfig) Provider {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return &openAIProvider{client: openai.NewClientWithConfig(oc), maxTokens: cfg.MaxTokens}
}

func (o *openAIProvider) Name() string { return ProviderOpenAI }

func (o *openAIProvider) Complete(ctx context.Context, env *prompts.Envelope) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:     env.Model,
		MaxTokens: o.maxTokens,
	}
	if env.SystemInstruction != "" {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: env.SystemInstruction,
		})
	}
	user := env.Contents
	if env.Schema != nil {
		user += schemaInstruction(env.Schema)
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}
	req.Messages = append(req.Messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: user,
	})

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

type anthropicProvider struct {
	client    anthropic.Client
	maxTokens int64
}

func NewAnthropic(cfg config.AIConfig) Provider {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 4096
	}
	return &anthropicProvider{client: anthropic.NewClient(opts...), maxTokens: maxTokens}
}

func (a *anthropicProvider) Name() string { return ProviderAnthropic }

func (a *anthropicProvider) Complete(ctx context.Context, env *prompts.Envelope) (string, error) {
	user := env.Contents
	if env.Schema != nil {
		user += schemaInstruction(env.Schema)
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(env.Model),
		MaxTokens: a.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
	if env.SystemInstruction != "" {
		params.System = []anthropic.TextBlockParam{{Text: env.SystemInstruction}}
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

type ollamaProvider struct {
	client *api.Client
}

func NewOllama(cfg config.AIConfig) (Provider, error) {
	base := cfg.BaseURL
	if base == "" {
		base = "http://localhost:11434"
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base url: %w", err)
	}
	return &ollamaProvider{client: api.NewClient(u, http.DefaultClient)}, nil
}

func (o *ollamaProvider) Name() string { return ProviderOllama }

func (o *ollamaProvider) Complete(ctx context.Context, env *prompts.Envelope) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model:  env.Model,
		Stream: &stream,
	}
	if env.SystemInstruction != "" {
		req.Messages = append(req.Messages, api.Message{Role: "system", Content: env.SystemInstruction})
	}
	req.Messages = append(req.Messages, api.Message{Role: "user", Content: env.Contents})
	if env.Schema != nil {
		req.Format = json.RawMessage(env.Schema.JSON())
	}

	var sb strings.Builder
	err := o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}
