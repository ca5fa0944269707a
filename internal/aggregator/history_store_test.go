package aggregator

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landslide-monitor/internal/models"
)

func sampleAt(i int) models.Sample {
	return models.Sample{
		Timestamp: time.Unix(int64(i), 0),
		Value:     float64(i),
	}
}

func TestDefaultHistoryCapacity(t *testing.T) {
	assert.Equal(t, 17280, DefaultHistoryCapacity)

	hs := NewHistoryStore([]string{"A"}, 0)
	assert.Equal(t, 17280, hs.Capacity())
}

func TestHistoryStoreFIFOEviction(t *testing.T) {
	hs := NewHistoryStore([]string{"A"}, DefaultHistoryCapacity)

	for i := 1; i <= DefaultHistoryCapacity+1; i++ {
		require.NoError(t, hs.Append("A", models.MetricRainfall, sampleAt(i)))
	}

	samples, err := hs.ReadAll("A", models.MetricRainfall)
	require.NoError(t, err)
	require.Len(t, samples, DefaultHistoryCapacity)
	assert.Equal(t, 2.0, samples[0].Value)
	assert.Equal(t, float64(DefaultHistoryCapacity+1), samples[len(samples)-1].Value)

	for i := 1; i < len(samples); i++ {
		require.Less(t, samples[i-1].Value, samples[i].Value)
	}
}

func TestHistoryStoreMetricsAreIndependent(t *testing.T) {
	hs := NewHistoryStore([]string{"A", "B"}, 10)

	require.NoError(t, hs.Append("A", models.MetricMoisture, sampleAt(1)))
	require.NoError(t, hs.Append("A", models.MetricMoisture, sampleAt(2)))
	require.NoError(t, hs.Append("B", models.MetricRainfall, sampleAt(3)))

	n, err := hs.Len("A", models.MetricMoisture)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = hs.Len("A", models.MetricRainfall)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	samples, err := hs.ReadAll("B", models.MetricRainfall)
	require.NoError(t, err)
	assert.Equal(t, []models.Sample{sampleAt(3)}, samples)
}

func TestHistoryStoreUnknownSite(t *testing.T) {
	hs := NewHistoryStore([]string{"A"}, 10)

	err := hs.Append("Z", models.MetricMoisture, sampleAt(1))
	assert.ErrorIs(t, err, ErrUnknownSite)

	samples, err := hs.ReadAll("Z", models.MetricMoisture)
	assert.ErrorIs(t, err, ErrUnknownSite)
	assert.Nil(t, samples)
}

func TestHistoryStoreEmptySeriesIsNotAnError(t *testing.T) {
	hs := NewHistoryStore([]string{"A"}, 10)

	samples, err := hs.ReadAll("A", models.MetricMoisture)
	require.NoError(t, err)
	assert.NotNil(t, samples)
	assert.Empty(t, samples)
}

func TestHistoryStoreUnknownMetric(t *testing.T) {
	hs := NewHistoryStore([]string{"A"}, 10)

	_, err := hs.ReadAll("A", models.Metric("temperature"))
	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func TestHistoryStoreReadAllReturnsCopy(t *testing.T) {
	hs := NewHistoryStore([]string{"A"}, 10)
	require.NoError(t, hs.Append("A", models.MetricMoisture, sampleAt(1)))

	samples, err := hs.ReadAll("A", models.MetricMoisture)
	require.NoError(t, err)
	samples[0].Value = 999

	again, err := hs.ReadAll("A", models.MetricMoisture)
	require.NoError(t, err)
	assert.Equal(t, 1.0, again[0].Value)
}

func TestHistoryStoreConcurrentAppendAndRead(t *testing.T) {
	const capacity = 50
	hs := NewHistoryStore([]string{"A"}, capacity)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= 5000; i++ {
			assert.NoError(t, hs.Append("A", models.MetricMoisture, sampleAt(i)))
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				samples, err := hs.ReadAll("A", models.MetricMoisture)
				assert.NoError(t, err)
				assert.LessOrEqual(t, len(samples), capacity)
				for j := 1; j < len(samples); j++ {
					assert.Equal(t, samples[j-1].Value+1, samples[j].Value)
				}
			}
		}()
	}

	wg.Wait()

	samples, err := hs.ReadAll("A", models.MetricMoisture)
	require.NoError(t, err)
	require.Len(t, samples, capacity)
	assert.Equal(t, 5000.0, samples[capacity-1].Value)
}
