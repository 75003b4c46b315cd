package prompts

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Localized accepts either {"en": ..., "ka": ...} or a bare string, which is
// taken as English.
type Localized struct {
	En string `json:"en"`
	Ka string `json:"ka"`
}

func (l *Localized) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = Localized{En: s}
		return nil
	}
	type plain Localized
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = Localized(p)
	return nil
}

// String returns the English text, falling back to Georgian.
func (l Localized) String() string {
	if l.En != "" {
		return l.En
	}
	return l.Ka
}

// EmployeeProfile is the subset of an employee record used in prompts.
type EmployeeProfile struct {
	Name             Localized   `json:"name"`
	CurrentRole      Localized   `json:"currentRole"`
	Skills           []string    `json:"skills"`
	PerformanceScore float64     `json:"performanceScore"`
	CareerGoals      []Localized `json:"careerGoals"`
}

type RoleProfile struct {
	Title          Localized `json:"title"`
	RequiredSkills []string  `json:"requiredSkills"`
}

type PolicyText struct {
	Title   Localized `json:"title"`
	Content Localized `json:"content"`
}

type ChatRequest struct {
	Prompt  string `json:"prompt"`
	Persona string `json:"persona"`
}

type CareerPathRequest struct {
	Employee *EmployeeProfile `json:"employee"`
}

type SkillGapRequest struct {
	Employees []EmployeeProfile `json:"employees"`
	Roles     []RoleProfile     `json:"roles"`
}

// PerformanceSample is one month of scores on a 1-10 scale.
type PerformanceSample struct {
	Month        string  `json:"month"`
	Engagement   float64 `json:"engagement"`
	Productivity float64 `json:"productivity"`
	Wellbeing    float64 `json:"wellbeing"`
}

type PerformanceRequest struct {
	EmployeeName    string              `json:"employeeName"`
	PerformanceData []PerformanceSample `json:"performanceData"`
	Feedback        string              `json:"feedback"`
}

type DocumentTask string

const (
	TaskSummarize DocumentTask = "summarize"
	TaskComply    DocumentTask = "comply"
)

type DocumentRequest struct {
	Text string       `json:"text"`
	Task DocumentTask `json:"task"`
}

type PolicyQARequest struct {
	Policy   *PolicyText `json:"policy"`
	Question string      `json:"question"`
}

type SimulationRequest struct {
	ScenarioPrompt string `json:"scenarioPrompt"`
	ChoicePrompt   string `json:"choicePrompt"`
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
