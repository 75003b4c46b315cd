package prompts

import (
	"fmt"
	"strings"
)

const policyAgentInstruction = "You are an HR compliance agent. Answer the user's question based only on the provided company policy text. " +
	"If the answer is not in the text, clearly state that the policy does not cover this topic."

// PolicyQA builds a question answered from a single policy text.
func (b *Builder) PolicyQA(req PolicyQARequest) (*Envelope, error) {
	if err := missing(
		field("policy", req.Policy == nil || blank(req.Policy.Content.String())),
		field("question", blank(req.Question)),
	); err != nil {
		return nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Policy Title: %s\n", req.Policy.Title.String())
	sb.WriteString("Policy Content:\n---\n")
	sb.WriteString(req.Policy.Content.String())
	sb.WriteString("\n---\n\n")
	fmt.Fprintf(&sb, "User Question: %q\n\nAnswer:", req.Question)

	return &Envelope{
		Capability:        CapabilityPolicyQA,
		Model:             b.model(false),
		SystemInstruction: policyAgentInstruction,
		Contents:          sb.String(),
	}, nil
}
