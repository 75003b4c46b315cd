package prompts

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type CareerStep struct {
	Role                string   `json:"role"`
	Description         string   `json:"description"`
	SkillsToDevelop     []string `json:"skillsToDevelop"`
	RecommendedTraining []string `json:"recommendedTraining"`
}

type CareerPath struct {
	CurrentRole   string       `json:"currentRole"`
	SuggestedPath []CareerStep `json:"suggestedPath"`
}

var careerPathSchema = object(map[string]*Schema{
	"currentRole": str(),
	"suggestedPath": arrayOf(object(map[string]*Schema{
		"role":                str(),
		"description":         str(),
		"skillsToDevelop":     arrayOf(str()),
		"recommendedTraining": arrayOf(str()),
	})),
})

// CareerPath builds a two-step progression plan for one employee.
func (b *Builder) CareerPath(req CareerPathRequest) (*Envelope, error) {
	if req.Employee == nil {
		return nil, invalid("Employee data is required", "employee")
	}
	e := req.Employee

	goals := make([]string, 0, len(e.CareerGoals))
	for _, g := range e.CareerGoals {
		goals = append(goals, g.String())
	}

	var sb strings.Builder
	sb.WriteString("Analyze the following employee profile for a tech company in Tbilisi, Georgia and generate a personalized 2-step career progression path.\n\n")
	sb.WriteString("Employee Profile:\n")
	fmt.Fprintf(&sb, "- Name: %s\n", e.Name.String())
	fmt.Fprintf(&sb, "- Current Role: %s\n", e.CurrentRole.String())
	fmt.Fprintf(&sb, "- Current Skills: %s\n", strings.Join(e.Skills, ", "))
	fmt.Fprintf(&sb, "- Performance Score: %g/100\n", e.PerformanceScore)
	fmt.Fprintf(&sb, "- Stated Career Goals: %s\n\n", strings.Join(goals, ", "))
	sb.WriteString("Suggest a realistic and ambitious career path. For each of the 2 steps provide:\n")
	sb.WriteString("1. A potential next role title.\n")
	sb.WriteString("2. A one-sentence description of the role's core responsibility.\n")
	sb.WriteString("3. A list of 3 key skills to develop.\n")
	sb.WriteString("4. A list of 2 recommended training courses or actions.\n\n")
	sb.WriteString("Return ONLY the JSON object.")

	return &Envelope{
		Capability: CapabilityCareerPath,
		Model:      b.model(true),
		Contents:   sb.String(),
		Schema:     careerPathSchema,
		decode:     decodeCareerPath,
	}, nil
}

func decodeCareerPath(raw []byte) (interface{}, error) {
	var out CareerPath
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if len(out.SuggestedPath) == 0 {
		return nil, errors.New("suggestedPath is empty")
	}
	return out, nil
}
