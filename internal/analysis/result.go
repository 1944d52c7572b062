package analysis

import (
	"time"

	"civiclens/internal/taxonomy"
)

// Answer is the model's decoded classification before routing and
// severity floors are applied.
type Answer struct {
	Category         string   `json:"category"`
	Severity         string   `json:"severity"`
	Tags             []string `json:"tags"`
	Rationale        string   `json:"rationale"`
	Confidence       float64  `json:"confidence"`
	SuggestedActions []string `json:"suggested_actions"`
}

// Result is the finished assessment of one complaint. It is immutable
// once returned; the pipeline does not persist it.
type Result struct {
	RequestID        string         `json:"request_id"`
	Text             string         `json:"text"`
	Category         string         `json:"category"`
	Severity         string         `json:"severity"`
	Tags             []string       `json:"tags,omitempty"`
	Rationale        string         `json:"rationale"`
	Confidence       float64        `json:"confidence"`
	SuggestedActions []string       `json:"suggested_actions,omitempty"`
	Routing          taxonomy.Route `json:"routing"`
	TaxonomyVersion  string         `json:"taxonomy_version"`
	Provider         string         `json:"provider"`
	Model            string         `json:"model"`
	Attempts         int            `json:"attempts"`
	Cached           bool           `json:"cached,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}
