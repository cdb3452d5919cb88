package knowledge

import "context"

// FAQ is a single question/answer pair from the site's help content.
type FAQ struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
	Category string `json:"category" yaml:"category"`
}

// Service describes one service offering together with its site path.
type Service struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Path        string `json:"path" yaml:"path"`
}

// ImpactMetric is a headline figure shown on the impact page.
type ImpactMetric struct {
	Title string `json:"title" yaml:"title"`
	Value string `json:"value" yaml:"value"`
	Unit  string `json:"unit" yaml:"unit"`
}

// Theme describes one of the thematic goals the organisation works towards.
type Theme struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// Snapshot is the read-only content bundle used to ground assistant replies.
// It is assembled fresh for each completion request and never mutated.
type Snapshot struct {
	FAQs          []FAQ            `json:"faqs"`
	Services      []Service        `json:"services"`
	ImpactMetrics []ImpactMetric   `json:"impactMetrics"`
	Themes        map[string]Theme `json:"themes"`
}

// Provider supplies the content corpus the assistant quotes from.
type Provider interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}
