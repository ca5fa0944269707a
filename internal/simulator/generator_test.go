package simulator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landslide-monitor/internal/models"
)

var testSite = models.Site{ID: "A", Name: "Test"}

func TestGenerateWithinRanges(t *testing.T) {
	g := NewRandomGenerator(Config{
		Moisture: Range{Min: 40, Max: 99},
		Rainfall: Range{Min: 0, Max: 100},
		Seed:     42,
	})

	for i := 0; i < 1000; i++ {
		r, err := g.Generate(testSite)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, r.SoilMoisture, 40.0)
		assert.LessOrEqual(t, r.SoilMoisture, 99.0)
		assert.GreaterOrEqual(t, r.Rainfall24h, 0.0)
		assert.LessOrEqual(t, r.Rainfall24h, 100.0)

		// two decimal places
		assert.InDelta(t, r.SoilMoisture, math.Round(r.SoilMoisture*100)/100, 1e-9)
	}
}

func TestGenerateIsReproducibleWithSeed(t *testing.T) {
	cfg := DefaultConfig()
	a := NewRandomGeneratorWithSource(cfg, rand.New(rand.NewSource(7)))
	b := NewRandomGeneratorWithSource(cfg, rand.New(rand.NewSource(7)))

	for i := 0; i < 10; i++ {
		ra, err := a.Generate(testSite)
		require.NoError(t, err)
		rb, err := b.Generate(testSite)
		require.NoError(t, err)
		assert.Equal(t, ra, rb)
	}
}

func TestGenerateRejectsInvalidRange(t *testing.T) {
	g := NewRandomGenerator(Config{
		Moisture: Range{Min: 90, Max: 10},
		Rainfall: Range{Min: 0, Max: 100},
		Seed:     1,
	})

	_, err := g.Generate(testSite)
	assert.ErrorIs(t, err, ErrGeneration)
}

func TestGenerateDegenerateRange(t *testing.T) {
	g := NewRandomGenerator(Config{
		Moisture: Range{Min: 55, Max: 55},
		Rainfall: Range{Min: 0, Max: 0},
		Seed:     3,
	})

	r, err := g.Generate(testSite)
	require.NoError(t, err)
	assert.Equal(t, models.Reading{SoilMoisture: 55, Rainfall24h: 0}, r)
}
