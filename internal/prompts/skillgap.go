package prompts

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// MaxSkillGaps bounds the skill-gap reply.
const MaxSkillGaps = 3

type SkillGap struct {
	Skill               string   `json:"skill"`
	GapCount            int      `json:"gapCount"`
	Importance          string   `json:"importance"`
	RecommendedTraining []string `json:"recommendedTraining"`
}

var importanceRank = map[string]int{"High": 0, "Medium": 1, "Low": 2}

var skillGapSchema = arrayOf(object(map[string]*Schema{
	"skill":               str(),
	"gapCount":            {Type: TypeInteger},
	"importance":          strEnum("High", "Medium", "Low"),
	"recommendedTraining": arrayOf(str()),
}))

// SkillGap builds an organisation-wide comparison of current skills against
// role requirements.
func (b *Builder) SkillGap(req SkillGapRequest) (*Envelope, error) {
	if len(req.Employees) == 0 || len(req.Roles) == 0 {
		var fields []string
		if len(req.Employees) == 0 {
			fields = append(fields, "employees")
		}
		if len(req.Roles) == 0 {
			fields = append(fields, "roles")
		}
		return nil, invalid("Employees and roles data required", fields...)
	}

	var sb strings.Builder
	sb.WriteString("Analyze the provided list of employees and their skills against the job role requirements.\n\n")
	sb.WriteString("Job Roles and Required Skills:\n")
	for _, r := range req.Roles {
		fmt.Fprintf(&sb, "- %s: %s\n", r.Title.String(), strings.Join(r.RequiredSkills, ", "))
	}
	sb.WriteString("\nEmployees and Their Current Skills:\n")
	for _, e := range req.Employees {
		fmt.Fprintf(&sb, "- %s (%s): %s\n", e.Name.String(), e.CurrentRole.String(), strings.Join(e.Skills, ", "))
	}
	fmt.Fprintf(&sb, "\nIdentify the top %d most critical skill gaps. gapCount is the number of employees missing the skill; importance is High, Medium or Low.\n\n", MaxSkillGaps)
	sb.WriteString("Return ONLY the JSON array.")

	return &Envelope{
		Capability: CapabilitySkillGap,
		Model:      b.model(true),
		Contents:   sb.String(),
		Schema:     skillGapSchema,
		decode:     decodeSkillGaps,
	}, nil
}

// decodeSkillGaps orders gaps High, Medium, Low (stable within a level) and
// keeps the first MaxSkillGaps.
func decodeSkillGaps(raw []byte) (interface{}, error) {
	var gaps []SkillGap
	if err := json.Unmarshal(raw, &gaps); err != nil {
		return nil, err
	}
	for _, g := range gaps {
		if g.GapCount < 0 {
			return nil, fmt.Errorf("negative gapCount for %q", g.Skill)
		}
		if _, ok := importanceRank[g.Importance]; !ok {
			return nil, errors.New("unknown importance " + g.Importance)
		}
	}
	sort.SliceStable(gaps, func(i, j int) bool {
		return importanceRank[gaps[i].Importance] < importanceRank[gaps[j].Importance]
	})
	if len(gaps) > MaxSkillGaps {
		gaps = gaps[:MaxSkillGaps]
	}
	if gaps == nil {
		gaps = []SkillGap{}
	}
	return gaps, nil
}
