package database

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landslide-monitor/internal/models"
)

type execCall struct {
	query string
	args  []any
}

type fakeConn struct {
	calls  []execCall
	err    error
	closed bool
}

func (c *fakeConn) Exec(ctx context.Context, query string, args ...any) error {
	c.calls = append(c.calls, execCall{query: query, args: args})
	return c.err
}

func (c *fakeConn) Ping(ctx context.Context) error { return nil }

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func TestAllTablesAreIdempotent(t *testing.T) {
	tables := AllTables()
	require.Len(t, tables, 2)
	for _, sql := range tables {
		assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS")
	}
}

func TestInitSchema(t *testing.T) {
	fc := &fakeConn{}
	db := newClickHouseDB(fc)

	require.NoError(t, db.InitSchema(context.Background()))
	require.Len(t, fc.calls, 2)
	assert.Contains(t, fc.calls[0].query, "site_readings")
	assert.Contains(t, fc.calls[1].query, "site_registry")
}

func TestInitSchemaError(t *testing.T) {
	fc := &fakeConn{err: errors.New("readonly")}
	db := newClickHouseDB(fc)

	err := db.InitSchema(context.Background())
	assert.ErrorIs(t, err, fc.err)
	assert.Len(t, fc.calls, 1)
}

func TestSaveSiteUpdate(t *testing.T) {
	fc := &fakeConn{}
	db := newClickHouseDB(fc)
	at := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

	update := models.SiteUpdate{
		SiteID:       "D",
		SoilMoisture: 88.1,
		Rainfall24h:  51.2,
		Risk:         "HIGH RISK",
		Color:        "#B22222",
		ObservedAt:   at,
	}
	require.NoError(t, db.SaveSiteUpdate(context.Background(), update))

	require.Len(t, fc.calls, 1)
	assert.True(t, strings.Contains(fc.calls[0].query, "INSERT INTO site_readings"))
	assert.Equal(t, []any{at, "D", 88.1, 51.2, "HIGH RISK", "#B22222"}, fc.calls[0].args)
}

func TestSaveSiteUpdateDefaultsTimestamp(t *testing.T) {
	fc := &fakeConn{}
	db := newClickHouseDB(fc)
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return at }

	require.NoError(t, db.SaveSiteUpdate(context.Background(), models.SiteUpdate{SiteID: "A"}))
	assert.Equal(t, at, fc.calls[0].args[0])
}

func TestSaveSiteUpdateError(t *testing.T) {
	fc := &fakeConn{err: errors.New("timeout")}
	db := newClickHouseDB(fc)

	err := db.SaveSiteUpdate(context.Background(), models.SiteUpdate{SiteID: "A"})
	assert.ErrorIs(t, err, fc.err)
	assert.Contains(t, err.Error(), "site A")
}

func TestUpsertSites(t *testing.T) {
	fc := &fakeConn{}
	db := newClickHouseDB(fc)

	sites := []models.Site{{ID: "A", Name: "North", Lat: 1, Lon: 2}, {ID: "B", Name: "South"}}
	require.NoError(t, db.UpsertSites(context.Background(), sites))

	require.Len(t, fc.calls, 2)
	assert.Equal(t, "A", fc.calls[0].args[0])
	assert.Equal(t, "South", fc.calls[1].args[1])
}

func TestClose(t *testing.T) {
	fc := &fakeConn{}
	db := newClickHouseDB(fc)

	require.NoError(t, db.Close())
	assert.True(t, fc.closed)
}
