package prompts

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RecommendationCount is the exact number of recommendations returned.
const RecommendationCount = 2

type Sentiment struct {
	Score float64 `json:"score"`
	Label string  `json:"label"`
}

type PerformanceAnalysis struct {
	Sentiment       Sentiment `json:"sentiment"`
	BurnoutRisk     string    `json:"burnoutRisk"`
	Trend           string    `json:"trend"`
	Recommendations []string  `json:"recommendations"`
}

var performanceSchema = object(map[string]*Schema{
	"sentiment": object(map[string]*Schema{
		"score": {Type: TypeNumber},
		"label": strEnum("Positive", "Neutral", "Negative"),
	}),
	"burnoutRisk":     strEnum("Low", "Medium", "High"),
	"trend":           str(),
	"recommendations": arrayOf(str()),
})

// Performance builds a sentiment and burnout analysis of recent scores and
// manager feedback.
func (b *Builder) Performance(req PerformanceRequest) (*Envelope, error) {
	if err := missing(
		field("employeeName", blank(req.EmployeeName)),
		field("performanceData", len(req.PerformanceData) == 0),
		field("feedback", blank(req.Feedback)),
	); err != nil {
		return nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Analyze the recent performance data and feedback for an employee named %s.\n\n", req.EmployeeName)
	sb.WriteString("Performance Data (1-10 scale):\n")
	for _, p := range req.PerformanceData {
		fmt.Fprintf(&sb, "- %s: engagement %g, productivity %g, wellbeing %g\n", p.Month, p.Engagement, p.Productivity, p.Wellbeing)
	}
	fmt.Fprintf(&sb, "\nRecent Manager Feedback: %q\n\n", req.Feedback)
	sb.WriteString("Based on all of this data provide a concise analysis:\n")
	sb.WriteString("1. Sentiment: a score from -1 to 1 and a label (Positive, Neutral, Negative).\n")
	sb.WriteString("2. Burnout risk: Low, Medium or High.\n")
	sb.WriteString("3. Performance trend: Improving, Stable or Declining.\n")
	fmt.Fprintf(&sb, "4. Exactly %d actionable recommendations.\n\n", RecommendationCount)
	sb.WriteString("Return ONLY a JSON object.")

	return &Envelope{
		Capability: CapabilityPerformance,
		Model:      b.model(true),
		Contents:   sb.String(),
		Schema:     performanceSchema,
		decode:     decodePerformance,
	}, nil
}

func decodePerformance(raw []byte) (interface{}, error) {
	var out PerformanceAnalysis
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out.Sentiment.Score < -1 || out.Sentiment.Score > 1 {
		return nil, fmt.Errorf("sentiment score %v outside [-1, 1]", out.Sentiment.Score)
	}
	if len(out.Recommendations) < RecommendationCount {
		return nil, fmt.Errorf("got %d recommendations, want %d", len(out.Recommendations), RecommendationCount)
	}
	out.Recommendations = out.Recommendations[:RecommendationCount]
	return out, nil
}
