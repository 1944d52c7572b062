package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Noop is a deterministic keyword classifier for development and tests.
// It emits the same JSON answer shape a real model is asked for, against
// the default vocabulary.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (n *Noop) Name() string  { return "noop" }
func (n *Noop) Model() string { return "noop" }

func (n *Noop) Complete(_ context.Context, promptText string) (string, error) {
	lower := strings.ToLower(complaintSegment(promptText))

	category := "other"
	severity := "low"
	tags := []string{"Other"}
	rationale := "No specific infrastructure keywords detected."

	switch {
	case strings.Contains(lower, "pothole") || strings.Contains(lower, "road"):
		category, severity = "roads", "high"
		tags = []string{"Pothole"}
		rationale = "Road surface damage reported."
	case strings.Contains(lower, "streetlight") || strings.Contains(lower, "street light"):
		category, severity = "roads", "medium"
		tags = []string{"Street Light"}
		rationale = "Street lighting fault reported."
	case strings.Contains(lower, "pipe") || strings.Contains(lower, "water"):
		category, severity = "water", "high"
		tags = []string{"Pipe Burst"}
		rationale = "Water infrastructure fault reported."
	case strings.Contains(lower, "drain") || strings.Contains(lower, "flood"):
		category, severity = "roads", "medium"
		tags = []string{"Drainage"}
		rationale = "Drainage problem reported."
	case strings.Contains(lower, "power") || strings.Contains(lower, "outage") || strings.Contains(lower, "electric"):
		category, severity = "electricity", "critical"
		tags = []string{"Power Outage"}
		rationale = "Electrical supply problem reported."
	case strings.Contains(lower, "trash") || strings.Contains(lower, "garbage") || strings.Contains(lower, "waste") || strings.Contains(lower, "dumping"):
		category, severity = "waste", "medium"
		tags = []string{"Bin Overflow"}
		rationale = "Waste management problem reported."
	}

	answer := map[string]any{
		"category":          category,
		"severity":          severity,
		"tags":              tags,
		"rationale":         rationale,
		"confidence":        0.5,
		"suggested_actions": []string{"Dispatch an inspector", "Notify the responsible department"},
	}
	out, err := json.Marshal(answer)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// complaintSegment returns the fenced citizen text from a built prompt,
// so keyword matching does not trip over the vocabulary listing above it.
// Raw text without markers is returned as-is.
func complaintSegment(promptText string) string {
	const begin, end = "BEGIN COMPLAINT", "END COMPLAINT"
	i := strings.Index(promptText, begin)
	if i == -1 {
		return promptText
	}
	rest := promptText[i+len(begin):]
	if j := strings.Index(rest, end); j != -1 {
		rest = rest[:j]
	}
	return rest
}
