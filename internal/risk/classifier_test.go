package risk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landslide-monitor/internal/models"
)

func TestClassifyDefaultRules(t *testing.T) {
	c := DefaultClassifier()

	tests := []struct {
		name    string
		reading models.Reading
		want    Level
	}{
		{"high", models.Reading{SoilMoisture: 90, Rainfall24h: 60}, LevelHigh},
		{"medium", models.Reading{SoilMoisture: 75, Rainfall24h: 35}, LevelMedium},
		{"low", models.Reading{SoilMoisture: 50, Rainfall24h: 10}, LevelLow},
		{"high moisture low rain is medium", models.Reading{SoilMoisture: 90, Rainfall24h: 40}, LevelMedium},
		{"boundaries are exclusive", models.Reading{SoilMoisture: 85, Rainfall24h: 50}, LevelMedium},
		{"medium boundaries are exclusive", models.Reading{SoilMoisture: 70, Rainfall24h: 30}, LevelLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.reading).Level)
		})
	}
}

func TestClassifyLabelsAndColors(t *testing.T) {
	c := DefaultClassifier()

	high := c.Classify(models.Reading{SoilMoisture: 90, Rainfall24h: 60})
	assert.Equal(t, models.SiteStatus{Risk: "HIGH RISK", Color: "#B22222"}, high.Status())

	low := c.Classify(models.Reading{})
	assert.Equal(t, models.SiteStatus{Risk: "LOW RISK", Color: "#228B22"}, low.Status())
}

func TestClassifyIsTotal(t *testing.T) {
	c := DefaultClassifier()

	for m := 0.0; m <= 100; m += 0.5 {
		for r := 0.0; r <= 100; r += 0.5 {
			a := c.Classify(models.Reading{SoilMoisture: m, Rainfall24h: r})
			require.NotEmpty(t, a.Label, "moisture=%v rainfall=%v", m, r)
			require.Contains(t, []Level{LevelHigh, LevelMedium, LevelLow}, a.Level)
		}
	}
}

func TestNewClassifierValidation(t *testing.T) {
	_, err := NewClassifier([]Rule{{Level: LevelHigh}}, DefaultFallback)
	assert.Error(t, err)

	_, err = NewClassifier(DefaultRules, Assessment{})
	assert.Error(t, err)
}

func TestLoadClassifier(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	content := `{
  "rules": [
    {"level": "high", "label": "ALERT", "color": "#f00", "moisture_above": 60, "rainfall_above": 20}
  ],
  "fallback": {"level": "low", "label": "OK", "color": "#0f0"}
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := LoadClassifier(path)
	require.NoError(t, err)

	assert.Equal(t, "ALERT", c.Classify(models.Reading{SoilMoisture: 61, Rainfall24h: 21}).Label)
	assert.Equal(t, "OK", c.Classify(models.Reading{SoilMoisture: 61, Rainfall24h: 20}).Label)
}

func TestLoadClassifierEmptyPath(t *testing.T) {
	c, err := LoadClassifier("")
	require.NoError(t, err)
	assert.Equal(t, LevelHigh, c.Classify(models.Reading{SoilMoisture: 99, Rainfall24h: 99}).Level)
}
