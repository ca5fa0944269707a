package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"landslide-monitor/internal/models"
)

// conn is the part of the ClickHouse driver used by ClickHouseDB
type conn interface {
	Exec(ctx context.Context, query string, args ...any) error
	Ping(ctx context.Context) error
	Close() error
}

type ClickHouseDB struct {
	conn conn
	now  func() time.Time
}

// Config holds ClickHouse connection settings
type Config struct {
	Addr     string
	Database string
	Username string
	Password string
}

// NewClickHouseDB creates a new ClickHouse database connection and initializes the schema
func NewClickHouseDB(ctx context.Context, config Config) (*ClickHouseDB, error) {
	c, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{config.Addr},
		Auth: clickhouse.Auth{
			Database: config.Database,
			Username: config.Username,
			Password: config.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout: 5 * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := c.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	log.Printf("Connected to ClickHouse at %s", config.Addr)

	db := newClickHouseDB(c)
	if err := db.InitSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

func newClickHouseDB(c conn) *ClickHouseDB {
	return &ClickHouseDB{conn: c, now: time.Now}
}

// InitSchema creates the necessary tables if they don't exist
func (db *ClickHouseDB) InitSchema(ctx context.Context) error {
	for _, tableSQL := range AllTables() {
		if err := db.conn.Exec(ctx, tableSQL); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	log.Println("Database schema initialized successfully")
	return nil
}

// SaveSiteUpdate archives one classified reading
func (db *ClickHouseDB) SaveSiteUpdate(ctx context.Context, update models.SiteUpdate) error {
	query := `
		INSERT INTO site_readings (timestamp, site_id, soil_moisture, rainfall_24h, risk, color)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	observed := update.ObservedAt
	if observed.IsZero() {
		observed = db.now()
	}

	err := db.conn.Exec(ctx, query,
		observed,
		update.SiteID,
		update.SoilMoisture,
		update.Rainfall24h,
		update.Risk,
		update.Color,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reading for site %s: %w", update.SiteID, err)
	}

	return nil
}

// UpsertSites inserts or replaces the registered sites
func (db *ClickHouseDB) UpsertSites(ctx context.Context, sites []models.Site) error {
	query := `
		INSERT INTO site_registry (site_id, name, lat, lon, registered_at)
		VALUES (?, ?, ?, ?, ?)
	`

	now := db.now()
	for _, site := range sites {
		if err := db.conn.Exec(ctx, query, site.ID, site.Name, site.Lat, site.Lon, now); err != nil {
			return fmt.Errorf("failed to upsert site %s: %w", site.ID, err)
		}
	}

	log.Printf("Registered %d sites in ClickHouse", len(sites))
	return nil
}

// Close closes the ClickHouse connection
func (db *ClickHouseDB) Close() error {
	if db.conn != nil {
		if err := db.conn.Close(); err != nil {
			return fmt.Errorf("failed to close ClickHouse connection: %w", err)
		}
		log.Println("ClickHouse connection closed")
	}
	return nil
}
