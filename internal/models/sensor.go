package models

import (
	"fmt"
	"time"
)

// Metric identifies one of the two sample streams kept per site
type Metric string

const (
	MetricMoisture Metric = "moisture"
	MetricRainfall Metric = "rainfall"
)

// Metrics lists every metric in storage order
var Metrics = []Metric{MetricMoisture, MetricRainfall}

// ParseMetric converts a route parameter into a Metric
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case MetricMoisture, MetricRainfall:
		return Metric(s), nil
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// Reading represents one synthetic sensor observation for a site
type Reading struct {
	SoilMoisture float64 `json:"soil_moisture"` // Percentage 0-100
	Rainfall24h  float64 `json:"rainfall_24h"`  // Accumulated 24h rainfall, 0-100
}

// Value returns the reading field that feeds the given metric stream
func (r Reading) Value(m Metric) float64 {
	if m == MetricRainfall {
		return r.Rainfall24h
	}
	return r.SoilMoisture
}

// Sample is a single timestamped value stored in a time series
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// DisplayTimeLayout is the human-readable layout used in live updates
const DisplayTimeLayout = "02/01/2006 15:04:05"

// SiteUpdate is the per-site event pushed to subscribers of a site topic
type SiteUpdate struct {
	SiteID       string    `json:"site_id"`
	SoilMoisture float64   `json:"soil_moisture"`
	Rainfall24h  float64   `json:"rainfall_24h"`
	Risk         string    `json:"risk"`
	Color        string    `json:"color"`
	Timestamp    string    `json:"timestamp"` // DisplayTimeLayout
	ObservedAt   time.Time `json:"-"`
}
