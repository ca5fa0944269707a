package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"landslide-monitor/internal/aggregator"
	"landslide-monitor/internal/api"
	"landslide-monitor/internal/database"
	"landslide-monitor/internal/hub"
	"landslide-monitor/internal/metrics"
	"landslide-monitor/internal/mqtt"
	"landslide-monitor/internal/registry"
	"landslide-monitor/internal/risk"
	"landslide-monitor/internal/services"
	"landslide-monitor/internal/simulator"
	"landslide-monitor/internal/transport"
	"landslide-monitor/pkg/config"
)

func main() {
	log.Println("Starting Landslide Risk Monitor...")

	if err := run(config.Load()); err != nil {
		log.Fatalf("Landslide Risk Monitor stopped: %v", err)
	}

	log.Println("Shutdown complete. Goodbye!")
}

// run wires every component and blocks until shutdown
func run(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Create context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// === Domain components ===
	sites, err := registry.LoadFile(cfg.SitesPath)
	if err != nil {
		return fmt.Errorf("failed to load site registry: %w", err)
	}

	classifier, err := risk.LoadClassifier(cfg.RiskRulesPath)
	if err != nil {
		return fmt.Errorf("failed to load risk rules: %w", err)
	}

	generator := simulator.NewRandomGenerator(simulator.Config{
		Moisture: simulator.Range{Min: cfg.MoistureMin, Max: cfg.MoistureMax},
		Rainfall: simulator.Range{Min: cfg.RainfallMin, Max: cfg.RainfallMax},
		Seed:     cfg.SimulatorSeed,
	})

	history := aggregator.NewHistoryStore(sites.IDs(), cfg.HistoryCapacity)
	statuses := aggregator.NewStatusBoard(sites.IDs())
	topics := hub.New(sites.IDs())

	scheduler := services.NewScheduler(sites, generator, classifier, history, statuses, topics,
		services.SchedulerConfig{Interval: cfg.TickInterval})

	// === Metrics ===
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	metrics.RegisterHub(reg, topics)
	metrics.RegisterScheduler(reg, scheduler)
	scheduler.OnCycle = m.ObserveCycle

	g, gctx := errgroup.WithContext(ctx)

	// === Optional MQTT bridge ===
	if cfg.MQTTEnabled {
		log.Println("Connecting to MQTT broker...")
		mqttClient, err := mqtt.NewClient(mqtt.ClientConfig{
			Broker:   cfg.MQTTBroker,
			ClientID: cfg.MQTTClientID,
			Username: cfg.MQTTUsername,
			Password: cfg.MQTTPassword,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize MQTT client: %w", err)
		}
		defer mqttClient.Close()

		publisher := mqtt.NewPublisher(mqttClient.GetNativeClient(), mqtt.PublisherConfig{
			SiteUpdateTopic: cfg.MQTTTopicSiteUpdate,
			SnapshotTopic:   cfg.MQTTTopicSnapshot,
			QoS:             1,
			Buffer:          cfg.SubscriberBuffer,
		})
		if err := publisher.Attach(topics, sites.IDs()); err != nil {
			return fmt.Errorf("failed to attach MQTT publisher: %w", err)
		}
		g.Go(func() error {
			publisher.Start(gctx)
			return nil
		})
	}

	// === Optional ClickHouse archive ===
	if cfg.ClickHouseEnabled {
		db, err := database.NewClickHouseDB(ctx, database.Config{
			Addr:     cfg.ClickHouseAddr,
			Database: cfg.ClickHouseDB,
			Username: cfg.ClickHouseUser,
			Password: cfg.ClickHousePass,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize ClickHouse: %w", err)
		}
		defer db.Close()

		if err := db.UpsertSites(ctx, sites.Sites()); err != nil {
			log.Printf("Error registering sites in ClickHouse: %v", err)
		}

		archive := services.NewArchiveService(db, services.DefaultArchiveServiceConfig())
		if err := archive.Attach(topics, sites.IDs()); err != nil {
			return fmt.Errorf("failed to attach archive service: %w", err)
		}
		g.Go(func() error {
			archive.Start(gctx)
			return nil
		})
	}

	// === HTTP server ===
	gin.SetMode(cfg.GinMode)
	ws := transport.NewServer(gctx, topics, scheduler, transport.ServerConfig{
		SubscriberBuffer: cfg.SubscriberBuffer,
		EventRate:        rate.Limit(cfg.WSEventRate),
		EventBurst:       cfg.WSEventBurst,
	})
	router := api.NewRouter(api.Dependencies{
		Sites:     sites,
		History:   history,
		Statuses:  statuses,
		Scheduler: scheduler,
		Websocket: ws,
		Gatherer:  reg,
	})
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	g.Go(func() error {
		log.Printf("HTTP: Listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutdown signal received, stopping services...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// The producer loop starts with the first websocket client
	g.Go(func() error {
		return scheduler.Wait(gctx)
	})

	log.Println("=== Landslide Risk Monitor is running ===")
	log.Printf("Sites: %v", sites.IDs())
	log.Printf("Tick interval: %v, history capacity: %d", cfg.TickInterval, history.Capacity())
	log.Println("Press Ctrl+C to exit...")

	return g.Wait()
}
