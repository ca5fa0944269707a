package database

// SQL schemas for all ClickHouse tables

const (
	// SiteReadingsTableSQL creates the site_readings table
	SiteReadingsTableSQL = `
		CREATE TABLE IF NOT EXISTS site_readings (
			timestamp DateTime64(3),
			site_id String,
			soil_moisture Float64,
			rainfall_24h Float64,
			risk LowCardinality(String),
			color LowCardinality(String)
		) ENGINE = MergeTree()
		ORDER BY (site_id, timestamp)
		PARTITION BY toYYYYMM(timestamp)
		TTL toDateTime(timestamp) + INTERVAL 1 DAY
	`

	// SiteRegistryTableSQL creates the site_registry table
	SiteRegistryTableSQL = `
		CREATE TABLE IF NOT EXISTS site_registry (
			site_id String,
			name String,
			lat Float64,
			lon Float64,
			registered_at DateTime64(3)
		) ENGINE = ReplacingMergeTree(registered_at)
		ORDER BY site_id
	`
)

// AllTables returns all table creation SQL statements in order
func AllTables() []string {
	return []string{
		SiteReadingsTableSQL,
		SiteRegistryTableSQL,
	}
}
