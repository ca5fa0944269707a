package hub

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
)

// AllTopic is the reserved topic every connected subscriber belongs to
const AllTopic = "all"

var (
	// ErrUnknownTopic is returned for topics that are not registered
	ErrUnknownTopic = errors.New("unknown topic")

	// ErrPublish is returned when a publish could not be carried out
	ErrPublish = errors.New("publish failed")
)

// Message is one event delivered to subscribers
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Subscriber receives messages for the topics it joined.
// Deliver must not block; it reports whether the message was accepted.
type Subscriber interface {
	ID() string
	Deliver(msg Message) bool
}

// PublishResult counts what happened to one published message
type PublishResult struct {
	Delivered int
	Dropped   int
}

// topic is a membership set guarded by its own lock
type topic struct {
	mu      sync.RWMutex
	members map[string]Subscriber
}

// Hub fans messages out to the members of a topic.
// Topics are fixed at construction: one per site plus AllTopic.
type Hub struct {
	topics map[string]*topic
}

// New creates a hub with one topic per name plus AllTopic
func New(topicNames []string) *Hub {
	h := &Hub{topics: make(map[string]*topic, len(topicNames)+1)}
	h.topics[AllTopic] = &topic{members: make(map[string]Subscriber)}
	for _, name := range topicNames {
		h.topics[name] = &topic{members: make(map[string]Subscriber)}
	}
	return h
}

// Connect registers a subscriber on AllTopic
func (h *Hub) Connect(sub Subscriber) {
	// AllTopic always exists
	_ = h.Join(AllTopic, sub)
}

// Join adds a subscriber to a topic; joining twice is the same as once
func (h *Hub) Join(name string, sub Subscriber) error {
	t, ok := h.topics[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTopic, name)
	}

	t.mu.Lock()
	t.members[sub.ID()] = sub
	t.mu.Unlock()
	return nil
}

// Leave removes a subscriber from one site topic; non-members are ignored.
// AllTopic membership lasts until LeaveAll.
func (h *Hub) Leave(name string, sub Subscriber) {
	if name == AllTopic {
		return
	}
	if t, ok := h.topics[name]; ok {
		t.remove(sub)
	}
}

// LeaveAll removes a subscriber from every topic, AllTopic included.
// Once it returns, no publish can reach the subscriber.
func (h *Hub) LeaveAll(sub Subscriber) {
	for _, t := range h.topics {
		t.remove(sub)
	}
}

func (t *topic) remove(sub Subscriber) {
	t.mu.Lock()
	delete(t.members, sub.ID())
	t.mu.Unlock()
}

// Publish delivers msg to every current member of a topic.
// Delivery runs under the topic read lock so it cannot race with Leave.
func (h *Hub) Publish(name string, msg Message) (PublishResult, error) {
	var res PublishResult

	t, ok := h.topics[name]
	if !ok {
		return res, fmt.Errorf("%w: %w: %s", ErrPublish, ErrUnknownTopic, name)
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, sub := range t.members {
		if deliver(sub, msg) {
			res.Delivered++
		} else {
			res.Dropped++
		}
	}
	return res, nil
}

// PublishAll delivers msg to every connected subscriber
func (h *Hub) PublishAll(msg Message) (PublishResult, error) {
	return h.Publish(AllTopic, msg)
}

// deliver isolates the hub from a misbehaving subscriber
func deliver(sub Subscriber, msg Message) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Hub: subscriber %s panicked on %s: %v", sub.ID(), msg.Event, r)
			ok = false
		}
	}()
	return sub.Deliver(msg)
}

// Members returns the number of subscribers in a topic
func (h *Hub) Members(name string) int {
	t, ok := h.topics[name]
	if !ok {
		return 0
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.members)
}

// Topics returns all topic names, sorted
func (h *Hub) Topics() []string {
	names := make([]string, 0, len(h.topics))
	for name := range h.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
