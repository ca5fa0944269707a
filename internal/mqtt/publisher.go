package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"landslide-monitor/internal/hub"
	"landslide-monitor/internal/models"
	"landslide-monitor/internal/services"
)

// ErrUnsupportedEvent is returned for hub events the bridge does not mirror
var ErrUnsupportedEvent = errors.New("unsupported event")

// TokenPublisher is the part of the paho client the publisher needs
type TokenPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Publisher mirrors hub events to the broker.
// It is a hub subscriber; messages are drained by Start.
type Publisher struct {
	client TokenPublisher
	queue  *hub.Queue
	hub    *hub.Hub

	siteUpdateTopic string // e.g., "landslide/{site_id}/update"
	snapshotTopic   string // e.g., "landslide/status"
	qos             byte
	publishTimeout  time.Duration
}

// PublisherConfig holds configuration for the MQTT publisher
type PublisherConfig struct {
	SiteUpdateTopic string
	SnapshotTopic   string
	QoS             byte
	Buffer          int
	PublishTimeout  time.Duration
}

// NewPublisher creates a publisher with its own subscriber queue
func NewPublisher(client TokenPublisher, config PublisherConfig) *Publisher {
	timeout := config.PublishTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Publisher{
		client:          client,
		queue:           hub.NewQueue("mqtt-bridge", config.Buffer),
		siteUpdateTopic: config.SiteUpdateTopic,
		snapshotTopic:   config.SnapshotTopic,
		qos:             config.QoS,
		publishTimeout:  timeout,
	}
}

// Attach subscribes the publisher to the snapshot topic and every site topic
func (p *Publisher) Attach(h *hub.Hub, siteIDs []string) error {
	p.hub = h
	h.Connect(p.queue)
	for _, id := range siteIDs {
		if err := h.Join(id, p.queue); err != nil {
			h.LeaveAll(p.queue)
			return fmt.Errorf("failed to join site %s: %w", id, err)
		}
	}
	log.Printf("MQTT Publisher: Attached to %d site topics", len(siteIDs))
	return nil
}

// Start publishes queued hub events until the context is cancelled
func (p *Publisher) Start(ctx context.Context) {
	log.Println("MQTT Publisher: Starting...")
	defer p.detach()

	for {
		select {
		case <-ctx.Done():
			log.Println("MQTT Publisher: Context cancelled, shutting down...")
			return

		case msg, ok := <-p.queue.Messages():
			if !ok {
				log.Println("MQTT Publisher: Queue closed, shutting down...")
				return
			}
			if err := p.publishMessage(msg); err != nil {
				log.Printf("MQTT Publisher: Error publishing %s: %v", msg.Event, err)
			}
		}
	}
}

func (p *Publisher) detach() {
	if p.hub != nil {
		p.hub.LeaveAll(p.queue)
	}
	p.queue.Close()
}

// publishMessage sends the event payload to the topic matching its kind
func (p *Publisher) publishMessage(msg hub.Message) error {
	topic, err := p.topicFor(msg)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(msg.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", msg.Event, err)
	}

	token := p.client.Publish(topic, p.qos, false, payload)
	if !token.WaitTimeout(p.publishTimeout) {
		return fmt.Errorf("timed out publishing to %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

func (p *Publisher) topicFor(msg hub.Message) (string, error) {
	switch msg.Event {
	case services.EventSiteUpdate:
		update, ok := msg.Data.(models.SiteUpdate)
		if !ok {
			return "", fmt.Errorf("%w: %s carries %T", ErrUnsupportedEvent, msg.Event, msg.Data)
		}
		return formatTopic(p.siteUpdateTopic, update.SiteID), nil
	case services.EventSnapshot:
		return p.snapshotTopic, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedEvent, msg.Event)
	}
}

// formatTopic replaces the {site_id} placeholder with the actual site ID
func formatTopic(topicPattern, siteID string) string {
	return strings.ReplaceAll(topicPattern, "{site_id}", siteID)
}
