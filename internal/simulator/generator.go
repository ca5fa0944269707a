package simulator

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"landslide-monitor/internal/models"
)

// ErrGeneration is returned when a reading cannot be produced
var ErrGeneration = errors.New("simulator: generation failed")

// Generator produces one reading for a site per tick
type Generator interface {
	Generate(site models.Site) (models.Reading, error)
}

// Range is an inclusive [Min, Max] interval for a synthesized value
type Range struct {
	Min float64
	Max float64
}

// Config holds the value ranges and seed for RandomGenerator
type Config struct {
	Moisture Range
	Rainfall Range
	Seed     int64 // 0 seeds from the clock
}

// DefaultConfig returns the ranges used by the field simulation
func DefaultConfig() Config {
	return Config{
		Moisture: Range{Min: 40, Max: 99},
		Rainfall: Range{Min: 0, Max: 100},
	}
}

// RandomGenerator draws uniformly distributed readings.
// Readings are independent of the site and of previous ticks.
type RandomGenerator struct {
	mu       sync.Mutex
	rnd      *rand.Rand
	moisture Range
	rainfall Range
}

// NewRandomGenerator creates a generator from config
func NewRandomGenerator(config Config) *RandomGenerator {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return NewRandomGeneratorWithSource(config, rand.New(rand.NewSource(seed)))
}

// NewRandomGeneratorWithSource creates a generator using an injected random source
func NewRandomGeneratorWithSource(config Config, rnd *rand.Rand) *RandomGenerator {
	return &RandomGenerator{
		rnd:      rnd,
		moisture: config.Moisture,
		rainfall: config.Rainfall,
	}
}

// Generate returns a fresh reading with both fields rounded to two decimals
func (g *RandomGenerator) Generate(site models.Site) (models.Reading, error) {
	if err := g.moisture.validate(); err != nil {
		return models.Reading{}, fmt.Errorf("%w: moisture %v", ErrGeneration, err)
	}
	if err := g.rainfall.validate(); err != nil {
		return models.Reading{}, fmt.Errorf("%w: rainfall %v", ErrGeneration, err)
	}

	g.mu.Lock()
	moisture := g.uniform(g.moisture)
	rainfall := g.uniform(g.rainfall)
	g.mu.Unlock()

	return models.Reading{
		SoilMoisture: round2(moisture),
		Rainfall24h:  round2(rainfall),
	}, nil
}

// uniform must be called with g.mu held
func (g *RandomGenerator) uniform(r Range) float64 {
	return r.Min + g.rnd.Float64()*(r.Max-r.Min)
}

func (r Range) validate() error {
	if r.Min < 0 || r.Max > 100 || r.Min > r.Max {
		return fmt.Errorf("invalid range [%.2f, %.2f]", r.Min, r.Max)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
