// Package prompts turns validated request input into generation envelopes
// and decodes the model's reply into typed results.
package prompts

// Models names the backing models. Fast serves latency-sensitive text
// capabilities; Pro serves structured analysis.
type Models struct {
	Fast string
	Pro  string
}

// Builder is stateless apart from the model names; it is safe for
// concurrent use.
type Builder struct {
	models Models
}

func NewBuilder(models Models) *Builder {
	return &Builder{models: models}
}

func (b *Builder) model(pro bool) string {
	if pro {
		return b.models.Pro
	}
	return b.models.Fast
}

// Chat builds a free-text conversation turn.
func (b *Builder) Chat(req ChatRequest) (*Envelope, error) {
	if blank(req.Prompt) {
		return nil, invalid("Prompt is required", "prompt")
	}
	cfg := personas[ResolvePersona(req.Persona)]
	return &Envelope{
		Capability:        CapabilityChat,
		Model:             b.model(cfg.pro),
		SystemInstruction: cfg.instruction,
		Contents:          req.Prompt,
	}, nil
}
