package prompts

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ChoiceCount is the exact number of follow-up choices per simulation step.
const ChoiceCount = 2

type Choice struct {
	TextKey string    `json:"textKey"`
	Prompt  Localized `json:"prompt"`
}

type SimulationStep struct {
	Outcome      string   `json:"outcome"`
	NewSituation string   `json:"newSituation"`
	NewChoices   []Choice `json:"newChoices"`
}

var simulationSchema = object(map[string]*Schema{
	"outcome":      str(),
	"newSituation": str(),
	"newChoices": arrayOf(object(map[string]*Schema{
		"textKey": str(),
		"prompt": object(map[string]*Schema{
			"en": str(),
			"ka": str(),
		}),
	})),
})

// Simulation builds the next step of a business scenario after a decision.
func (b *Builder) Simulation(req SimulationRequest) (*Envelope, error) {
	if err := missing(
		field("scenarioPrompt", blank(req.ScenarioPrompt)),
		field("choicePrompt", blank(req.ChoicePrompt)),
	); err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("You are a business simulation engine. The user is in a scenario and has made a decision.\n")
	fmt.Fprintf(&sb, "Current Scenario: %s\n", req.ScenarioPrompt)
	fmt.Fprintf(&sb, "User's Decision: %s\n\n", req.ChoicePrompt)
	sb.WriteString(`Based on the decision, provide a realistic "outcome" of the action. `)
	sb.WriteString(`Then create a "newSituation" that results from this outcome. `)
	fmt.Fprintf(&sb, `Finally, provide exactly %d distinct "newChoices", each with a short textKey and the prompt in English (en) and Georgian (ka).`, ChoiceCount)
	sb.WriteString("\n\nReturn ONLY a JSON object.")

	return &Envelope{
		Capability: CapabilitySimulation,
		Model:      b.model(true),
		Contents:   sb.String(),
		Schema:     simulationSchema,
		decode:     decodeSimulation,
	}, nil
}

func decodeSimulation(raw []byte) (interface{}, error) {
	var out SimulationStep
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if len(out.NewChoices) < ChoiceCount {
		return nil, fmt.Errorf("got %d choices, want %d", len(out.NewChoices), ChoiceCount)
	}
	out.NewChoices = out.NewChoices[:ChoiceCount]
	return out, nil
}
