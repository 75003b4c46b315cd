package prompts

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Capability names an AI endpoint. The value doubles as the usage ledger
// endpoint label.
type Capability string

const (
	CapabilityChat        Capability = "chat"
	CapabilityCareerPath  Capability = "career-path"
	CapabilitySkillGap    Capability = "skill-gap"
	CapabilityPerformance Capability = "analyze-performance"
	CapabilityDocument    Capability = "analyze-document"
	CapabilityPolicyQA    Capability = "policy-qa"
	CapabilitySimulation  Capability = "simulation"
)

// Envelope is everything the generation backend needs for one call.
type Envelope struct {
	Capability        Capability
	Model             string
	SystemInstruction string
	Contents          string
	// Schema is nil for free-text capabilities.
	Schema *Schema

	decode func(raw []byte) (interface{}, error)
}

// ErrInvalidOutput marks model output that does not satisfy the capability's
// declared shape.
var ErrInvalidOutput = errors.New("invalid model output")

// TextResult is the reply of free-text capabilities.
type TextResult struct {
	Text string `json:"text"`
}

// Decode turns raw model output into the capability's result type. Output
// that is not valid JSON, misses a required field or breaks a domain rule
// yields an error wrapping ErrInvalidOutput.
func (e *Envelope) Decode(output string) (interface{}, error) {
	if e.Schema == nil {
		if strings.TrimSpace(output) == "" {
			return nil, fmt.Errorf("%w: empty text", ErrInvalidOutput)
		}
		return TextResult{Text: output}, nil
	}

	raw := []byte(StripCodeFence(output))
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if err := e.Schema.Check(generic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if e.decode == nil {
		return generic, nil
	}
	result, err := e.decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	return result, nil
}

// StripCodeFence removes a surrounding ```json ... ``` block, which models
// without native structured output tend to add.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ValidationError reports missing or malformed request input. It is raised
// before any call to the generation backend.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string, fields ...string) error {
	return &ValidationError{Message: msg, Fields: fields}
}

// missing collects the names whose flag is true into one ValidationError.
func missing(checks ...fieldCheck) error {
	var names []string
	for _, c := range checks {
		if c.absent {
			names = append(names, c.name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return invalid("Missing required fields: "+strings.Join(names, ", "), names...)
}

type fieldCheck struct {
	name   string
	absent bool
}

func field(name string, absent bool) fieldCheck { return fieldCheck{name: name, absent: absent} }
