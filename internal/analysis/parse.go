package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"civiclens/internal/taxonomy"
)

// answerSchema checks the structural contract the prompt asks the model
// for. Vocabulary membership is checked separately so a made-up label is
// reported as its own failure, not as schema noise.
const answerSchemaJSON = `{
	"type": "object",
	"required": ["category", "severity", "rationale", "confidence"],
	"properties": {
		"category": {"type": "string", "minLength": 1},
		"severity": {"type": "string", "minLength": 1},
		"tags": {"type": "array", "items": {"type": "string"}},
		"rationale": {"type": "string"},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1},
		"suggested_actions": {"type": "array", "items": {"type": "string"}}
	}
}`

var answerSchema = jsonschema.MustCompileString("answer.json", answerSchemaJSON)

// ParseAnswer decodes and validates a raw model answer against the
// closed taxonomy.
//
// Failures are deliberately split: an answer that does not meet the
// structural contract is KindMalformedResponse ("model refused the
// format"), while a well-formed answer carrying a label outside the
// taxonomy is KindInvalidCategory / KindInvalidSeverity ("model chose a
// nonexistent label"). Out-of-vocabulary values are never coerced to a
// closest match.
func ParseAnswer(raw string, tax *taxonomy.Taxonomy) (*Answer, *Error) {
	payload := extractJSON(raw)
	if payload == "" {
		return nil, newError(KindMalformedResponse, "model answer contained no JSON object", nil)
	}

	var decoded any
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		return nil, newError(KindMalformedResponse, "model answer is not valid JSON", err)
	}
	if err := answerSchema.Validate(decoded); err != nil {
		return nil, newError(KindMalformedResponse, fmt.Sprintf("model answer failed the format contract: %v", err), err)
	}

	var answer Answer
	if err := json.Unmarshal([]byte(payload), &answer); err != nil {
		return nil, newError(KindMalformedResponse, "model answer did not decode", err)
	}

	if !tax.HasCategory(answer.Category) {
		return nil, newError(KindInvalidCategory,
			fmt.Sprintf("model chose category %q, which is not in taxonomy %s", answer.Category, tax.Version), nil)
	}
	if !tax.HasSeverity(answer.Severity) {
		return nil, newError(KindInvalidSeverity,
			fmt.Sprintf("model chose severity %q, which is not in taxonomy %s", answer.Severity, tax.Version), nil)
	}

	// Unknown tags are dropped rather than failing the whole answer; the
	// category and severity already passed the closed-set check.
	kept := answer.Tags[:0]
	for _, tag := range answer.Tags {
		if tax.HasTag(answer.Category, tag) {
			kept = append(kept, tag)
		}
	}
	answer.Tags = kept

	return &answer, nil
}

// extractJSON locates the answer object in raw model output. Models often
// wrap JSON in a fenced code block despite instructions, so fences are
// tolerated.
func extractJSON(raw string) string {
	text := strings.TrimSpace(raw)

	if idx := strings.Index(text, "```"); idx != -1 {
		rest := text[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end != -1 {
			text = strings.TrimSpace(rest[:end])
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return text[start : end+1]
}
