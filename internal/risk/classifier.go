package risk

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"landslide-monitor/internal/models"
)

// Level is the coarse risk category of a reading
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// Rule matches when both readings are strictly above their thresholds
type Rule struct {
	Level         Level   `json:"level"`
	Label         string  `json:"label"`
	Color         string  `json:"color"`
	MoistureAbove float64 `json:"moisture_above"`
	RainfallAbove float64 `json:"rainfall_above"`
}

func (r Rule) matches(reading models.Reading) bool {
	return reading.SoilMoisture > r.MoistureAbove && reading.Rainfall24h > r.RainfallAbove
}

// Assessment is the result of classifying a reading
type Assessment struct {
	Level Level  `json:"level"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// Status converts the assessment into the status shown for a site
func (a Assessment) Status() models.SiteStatus {
	return models.SiteStatus{Risk: a.Label, Color: a.Color}
}

// Classifier evaluates ordered rules top to bottom; the first match wins
// and Fallback applies when nothing matches.
type Classifier struct {
	rules    []Rule
	fallback Assessment
}

// DefaultRules are the slope-risk thresholds used when no rules file is given
var DefaultRules = []Rule{
	{Level: LevelHigh, Label: "HIGH RISK", Color: "#B22222", MoistureAbove: 85, RainfallAbove: 50},
	{Level: LevelMedium, Label: "MEDIUM RISK", Color: "#FF8C00", MoistureAbove: 70, RainfallAbove: 30},
}

// DefaultFallback is the catch-all assessment
var DefaultFallback = Assessment{Level: LevelLow, Label: "LOW RISK", Color: "#228B22"}

// NewClassifier creates a classifier from ordered rules and a catch-all
func NewClassifier(rules []Rule, fallback Assessment) (*Classifier, error) {
	for i, rule := range rules {
		if rule.Label == "" || rule.Color == "" {
			return nil, fmt.Errorf("risk rule %d: label and color are required", i)
		}
	}
	if fallback.Label == "" || fallback.Color == "" {
		return nil, fmt.Errorf("risk fallback: label and color are required")
	}

	c := &Classifier{
		rules:    make([]Rule, len(rules)),
		fallback: fallback,
	}
	copy(c.rules, rules)
	return c, nil
}

// DefaultClassifier returns a classifier with DefaultRules
func DefaultClassifier() *Classifier {
	c, err := NewClassifier(DefaultRules, DefaultFallback)
	if err != nil {
		panic(err)
	}
	return c
}

// rulesFile is the JSON layout accepted by LoadClassifier
type rulesFile struct {
	Rules    []Rule     `json:"rules"`
	Fallback Assessment `json:"fallback"`
}

// LoadClassifier creates a classifier from a JSON rules file.
// An empty path yields DefaultClassifier.
func LoadClassifier(path string) (*Classifier, error) {
	if path == "" {
		return DefaultClassifier(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read risk rules file: %w", err)
	}

	var f rulesFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal risk rules: %w", err)
	}

	c, err := NewClassifier(f.Rules, f.Fallback)
	if err != nil {
		return nil, err
	}

	log.Printf("Loaded %d risk rules from %s", len(f.Rules), path)
	return c, nil
}

// Classify maps a reading to its risk assessment
func (c *Classifier) Classify(reading models.Reading) Assessment {
	for _, rule := range c.rules {
		if rule.matches(reading) {
			return Assessment{Level: rule.Level, Label: rule.Label, Color: rule.Color}
		}
	}
	return c.fallback
}
