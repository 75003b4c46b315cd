package prompts

import (
	"fmt"
	"strings"
)

// complianceRules are the labour-code checks applied by the comply task.
var complianceRules = []string{
	"The agreement must specify a probation period no longer than 6 months.",
	"Annual leave must be at least 24 working days.",
	"Termination requires at least 30 days' notice from the employer.",
	"Overtime must be compensated at a rate of at least 125% of the normal hourly wage.",
}

// Document builds a summary or a compliance check of an uploaded text.
func (b *Builder) Document(req DocumentRequest) (*Envelope, error) {
	if err := missing(
		field("text", blank(req.Text)),
		field("task", req.Task == ""),
	); err != nil {
		return nil, err
	}

	var sb strings.Builder
	switch req.Task {
	case TaskSummarize:
		sb.WriteString("Summarize the key points of the following document in a few bullet points:\n\n")
		sb.WriteString(req.Text)
	case TaskComply:
		sb.WriteString("Analyze the following labor agreement text and check whether it complies with these rules. ")
		sb.WriteString(`For each rule, state if it is "Compliant", "Non-Compliant", or "Not Mentioned".`)
		sb.WriteString("\n\nRules:\n")
		for i, r := range complianceRules {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, r)
		}
		sb.WriteString("\nDocument Text:\n")
		sb.WriteString(req.Text)
	default:
		return nil, invalid(fmt.Sprintf("Unknown task %q: must be summarize or comply", req.Task), "task")
	}

	return &Envelope{
		Capability: CapabilityDocument,
		Model:      b.model(false),
		Contents:   sb.String(),
	}, nil
}
