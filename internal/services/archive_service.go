package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"landslide-monitor/internal/hub"
	"landslide-monitor/internal/models"
)

// Archive persists classified readings outside the process
type Archive interface {
	SaveSiteUpdate(ctx context.Context, update models.SiteUpdate) error
}

// ArchiveService writes every per-site update to an Archive.
// It subscribes to the site topics only; snapshots are not archived.
type ArchiveService struct {
	archive      Archive
	queue        *hub.Queue
	hub          *hub.Hub
	writeTimeout time.Duration
}

// ArchiveServiceConfig holds configuration for the archive service
type ArchiveServiceConfig struct {
	Buffer       int
	WriteTimeout time.Duration
}

// DefaultArchiveServiceConfig returns default configuration
func DefaultArchiveServiceConfig() ArchiveServiceConfig {
	return ArchiveServiceConfig{
		Buffer:       256,
		WriteTimeout: 5 * time.Second,
	}
}

// NewArchiveService creates an archive service with its own subscriber queue
func NewArchiveService(archive Archive, config ArchiveServiceConfig) *ArchiveService {
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultArchiveServiceConfig().WriteTimeout
	}
	return &ArchiveService{
		archive:      archive,
		queue:        hub.NewQueue("archive", config.Buffer),
		writeTimeout: config.WriteTimeout,
	}
}

// Attach joins the archive to every site topic
func (s *ArchiveService) Attach(h *hub.Hub, siteIDs []string) error {
	s.hub = h
	for _, id := range siteIDs {
		if err := h.Join(id, s.queue); err != nil {
			h.LeaveAll(s.queue)
			return fmt.Errorf("failed to join site %s: %w", id, err)
		}
	}
	return nil
}

// Start archives queued updates until the context is cancelled
func (s *ArchiveService) Start(ctx context.Context) {
	log.Println("ArchiveService: Starting...")
	defer func() {
		if s.hub != nil {
			s.hub.LeaveAll(s.queue)
		}
		s.queue.Close()
		log.Println("ArchiveService: Shutdown complete")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-s.queue.Messages():
			if !ok {
				return
			}
			s.processMessage(ctx, msg)
		}
	}
}

// processMessage stores one site update; failures are logged and skipped
func (s *ArchiveService) processMessage(ctx context.Context, msg hub.Message) {
	update, ok := msg.Data.(models.SiteUpdate)
	if msg.Event != EventSiteUpdate || !ok {
		log.Printf("ArchiveService: Ignoring %s event", msg.Event)
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	if err := s.archive.SaveSiteUpdate(writeCtx, update); err != nil {
		log.Printf("ArchiveService: Error saving update for %s: %v", update.SiteID, err)
	}
}
