package reply

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Shortcut is one deterministic canned-reply rule. Triggers are plain
// substrings matched against the lower-cased, trimmed message; Template is a
// text/template body executed against the knowledge snapshot.
type Shortcut struct {
	Name     string   `yaml:"name"`
	Triggers []string `yaml:"triggers"`
	Template string   `yaml:"template"`
}

// DefaultCatalogue returns the built-in shortcut rules covering the
// highest-frequency intents. Order matters: the first matching rule wins.
func DefaultCatalogue() []Shortcut {
	return []Shortcut{
		{
			Name:     "greeting",
			Triggers: []string{"hello", "hey", "good morning", "good afternoon", "good evening", "greetings"},
			Template: "Hello! I'm the Solterra assistant. Ask me about our services, our impact, or how to get involved.",
		},
		{
			Name:     "services",
			Triggers: []string{"services", "what do you offer", "what do you do", "programmes you run"},
			Template: `Here's what we offer:
{{range .Services}}- {{.Title}}: {{.Path}}
{{end}}Each page has the full details.`,
		},
		{
			Name:     "contact",
			Triggers: []string{"contact", "get in touch", "reach you", "email address", "phone number", "speak to someone"},
			Template: "You can reach our team through /contact — we usually reply within two working days.",
		},
		{
			Name:     "donate",
			Triggers: []string{"donate", "donation", "give money", "contribute financially"},
			Template: "Thank you for wanting to support our work! You can make a one-off or monthly donation at /donate.",
		},
		{
			Name:     "impact",
			Triggers: []string{"impact", "your results", "achievements", "what difference"},
			Template: `A snapshot of our impact so far:
{{range .ImpactMetrics}}- {{.Title}}: {{.Value}} {{.Unit}}
{{end}}There's more detail on /impact.`,
		},
	}
}

// LoadCatalogue reads a shortcut catalogue from a YAML file, letting the
// trigger phrases and canned templates change without a code change.
func LoadCatalogue(path string) ([]Shortcut, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shortcut catalogue: %w", err)
	}

	var catalogue []Shortcut
	if err := yaml.Unmarshal(data, &catalogue); err != nil {
		return nil, fmt.Errorf("parse shortcut catalogue: %w", err)
	}

	for i, shortcut := range catalogue {
		if shortcut.Name == "" {
			return nil, fmt.Errorf("shortcut %d: name is required", i)
		}
		if len(shortcut.Triggers) == 0 {
			return nil, fmt.Errorf("shortcut %q: at least one trigger is required", shortcut.Name)
		}
		if shortcut.Template == "" {
			return nil, fmt.Errorf("shortcut %q: template is required", shortcut.Name)
		}
	}

	return catalogue, nil
}
