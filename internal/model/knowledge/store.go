package knowledge

import "context"

// MemorySource implements Provider with a fixed in-memory snapshot,
// suitable for a single-process deployment.
type MemorySource struct {
	snapshot Snapshot
}

// NewMemorySource returns a MemorySource serving the supplied snapshot.
func NewMemorySource(snapshot Snapshot) *MemorySource {
	return &MemorySource{snapshot: snapshot}
}

// Snapshot returns a copy of the stored content bundle so callers can never
// mutate the source.
func (s *MemorySource) Snapshot(_ context.Context) (Snapshot, error) {
	out := Snapshot{
		FAQs:          append([]FAQ(nil), s.snapshot.FAQs...),
		Services:      append([]Service(nil), s.snapshot.Services...),
		ImpactMetrics: append([]ImpactMetric(nil), s.snapshot.ImpactMetrics...),
		Themes:        make(map[string]Theme, len(s.snapshot.Themes)),
	}
	for id, theme := range s.snapshot.Themes {
		out.Themes[id] = theme
	}
	return out, nil
}

// Seed provides the default organisational content corpus.
func Seed() Snapshot {
	return Snapshot{
		FAQs: []FAQ{
			{
				Question: "How can I volunteer with Solterra?",
				Answer:   "Browse open roles on /get-involved and submit the short application form. Our volunteer team replies within a week.",
				Category: "getting-involved",
			},
			{
				Question: "Where does my donation go?",
				Answer:   "At least 85p of every pound funds programme delivery. Our annual accounts are published on /about/reports.",
				Category: "donations",
			},
			{
				Question: "Do you work with corporate partners?",
				Answer:   "Yes. We run skills-based partnerships and matched-giving schemes. Write to us via /contact to start a conversation.",
				Category: "partnerships",
			},
			{
				Question: "Which regions do you operate in?",
				Answer:   "We currently deliver programmes across East Africa and South Asia, coordinated from our London office.",
				Category: "general",
			},
		},
		Services: []Service{
			{
				Title:       "Data Analytics",
				Description: "We help community organisations turn raw field data into decisions, from survey design through to dashboards they can run themselves.",
				Path:        "/services/data-analytics",
			},
			{
				Title:       "Community Programmes",
				Description: "Locally led initiatives in education, health and livelihoods, designed with the communities they serve.",
				Path:        "/services/community-programmes",
			},
			{
				Title:       "Capacity Building",
				Description: "Training and mentoring for grassroots teams covering governance, fundraising and safeguarding.",
				Path:        "/services/capacity-building",
			},
		},
		ImpactMetrics: []ImpactMetric{
			{Title: "Communities reached", Value: "120", Unit: "communities"},
			{Title: "People trained", Value: "4800", Unit: "people"},
			{Title: "Programme funding delivered", Value: "2.3", Unit: "million GBP"},
		},
		Themes: map[string]Theme{
			"education": {
				Title:       "Quality Education",
				Description: "Improving learning outcomes through teacher training and community-run study groups.",
			},
			"health": {
				Title:       "Community Health",
				Description: "Supporting local health workers with training, supplies and data tooling.",
			},
			"livelihoods": {
				Title:       "Sustainable Livelihoods",
				Description: "Helping smallholders and cooperatives build resilient incomes.",
			},
		},
	}
}
