package aggregator

import (
	"fmt"
	"sync"
	"time"

	"landslide-monitor/internal/models"
)

// siteState holds the latest classification for a site
type siteState struct {
	status    models.SiteStatus
	updatedAt time.Time
}

// StatusBoard tracks the current status of every registered site.
// Every site starts in models.PendingStatus.
type StatusBoard struct {
	mu     sync.RWMutex
	states map[string]*siteState
}

// NewStatusBoard creates a board with every site pending
func NewStatusBoard(siteIDs []string) *StatusBoard {
	sb := &StatusBoard{states: make(map[string]*siteState, len(siteIDs))}
	for _, id := range siteIDs {
		sb.states[id] = &siteState{status: models.PendingStatus}
	}
	return sb
}

// Set records a new status for a site
func (sb *StatusBoard) Set(siteID string, status models.SiteStatus, at time.Time) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	state, ok := sb.states[siteID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSite, siteID)
	}
	state.status = status
	state.updatedAt = at
	return nil
}

// Get returns the current status of a site
func (sb *StatusBoard) Get(siteID string) (models.SiteStatus, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	state, ok := sb.states[siteID]
	if !ok {
		return models.SiteStatus{}, fmt.Errorf("%w: %s", ErrUnknownSite, siteID)
	}
	return state.status, nil
}

// UpdatedAt returns when a site was last classified; zero while pending
func (sb *StatusBoard) UpdatedAt(siteID string) (time.Time, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	state, ok := sb.states[siteID]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", ErrUnknownSite, siteID)
	}
	return state.updatedAt, nil
}

// Snapshot returns a fresh copy of every site's status
func (sb *StatusBoard) Snapshot() models.Snapshot {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	snap := make(models.Snapshot, len(sb.states))
	for id, state := range sb.states {
		snap[id] = state.status
	}
	return snap
}
