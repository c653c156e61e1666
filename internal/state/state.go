// Package state holds the most recently built observing sequence for watch
// mode, with a history of builds and change events between them.
package state

import (
	"sync"
	"time"

	"github.com/litescript/odl/internal/block"
	"github.com/litescript/odl/internal/export"
)

// EventType represents the type of change between two builds.
type EventType string

const (
	EventBlockAdded   EventType = "BLOCK_ADDED"
	EventBlockRemoved EventType = "BLOCK_REMOVED"
	EventBlockChanged EventType = "BLOCK_CHANGED"
	EventBuildFailed  EventType = "BUILD_FAILED"
)

// Event represents a change detected after a rebuild.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Index     int       `json:"index"`
	Old       string    `json:"old,omitempty"`
	New       string    `json:"new,omitempty"`
}

// HistoryEntry summarizes one successful build.
type HistoryEntry struct {
	Timestamp   time.Time
	Blocks      int
	Exposures   int
	Integration time.Duration
}

// Manager handles the shared build state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	current       *block.ObservingBlockList
	lastBuild     time.Time
	lastError     error
	buildDuration time.Duration

	// Blocks of the previous successful build
	prev []blockState

	history       []HistoryEntry
	maxHistoryLen int

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int
	eventTotal   uint64

	refreshInterval time.Duration
}

// Config holds configuration for the state manager.
type Config struct {
	MaxHistoryLen   int
	MaxEvents       int
	RefreshInterval time.Duration
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxHistoryLen:   60,
		MaxEvents:       50,
		RefreshInterval: 5 * time.Second,
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	maxHistory := cfg.MaxHistoryLen
	if maxHistory <= 0 {
		maxHistory = 60
	}
	return &Manager{
		maxHistoryLen:   maxHistory,
		maxEvents:       maxEvents,
		events:          make([]Event, 0, maxEvents),
		refreshInterval: cfg.RefreshInterval,
	}
}

// Update records the outcome of a build. A failed build keeps the previous
// list and logs a BUILD_FAILED event.
func (m *Manager) Update(list *block.ObservingBlockList, buildDuration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.lastBuild = now
	m.lastError = err
	m.buildDuration = buildDuration

	if err != nil {
		m.addEvent(Event{Type: EventBuildFailed, Timestamp: now, Index: -1, New: err.Error()})
		return
	}
	if list == nil {
		return
	}

	blocks := snapshotBlocks(list)
	if m.current != nil {
		m.detectEvents(now, blocks)
	}
	m.current = list
	m.prev = blocks

	m.history = append(m.history, HistoryEntry{
		Timestamp:   now,
		Blocks:      list.Len(),
		Exposures:   list.ExposureCount(),
		Integration: integration(list),
	})
	if len(m.history) > m.maxHistoryLen {
		m.history = m.history[1:]
	}
}

// blockState is what change detection keeps of a block: its content
// fingerprint, and a description for event text.
type blockState struct {
	desc        string
	fingerprint string
}

func snapshotBlocks(list *block.ObservingBlockList) []blockState {
	out := make([]blockState, 0, list.Len())
	for _, b := range list.All() {
		out = append(out, blockState{desc: b.Describe(), fingerprint: export.Fingerprint(b)})
	}
	return out
}

// integration sums exposure time over every exposure of the list.
func integration(list *block.ObservingBlockList) time.Duration {
	var total time.Duration
	for _, b := range list.All() {
		if b.DetConfig == nil {
			continue
		}
		total += time.Duration(b.ExposureCount()) * b.DetConfig.Exptime()
	}
	return total
}

// detectEvents compares block fingerprints position by position.
func (m *Manager) detectEvents(now time.Time, blocks []blockState) {
	for i := range max(len(blocks), len(m.prev)) {
		switch {
		case i >= len(m.prev):
			m.addEvent(Event{Type: EventBlockAdded, Timestamp: now, Index: i, New: blocks[i].desc})
		case i >= len(blocks):
			m.addEvent(Event{Type: EventBlockRemoved, Timestamp: now, Index: i, Old: m.prev[i].desc})
		case m.prev[i].fingerprint != blocks[i].fingerprint:
			m.addEvent(Event{Type: EventBlockChanged, Timestamp: now, Index: i, Old: m.prev[i].desc, New: blocks[i].desc})
		}
	}
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	m.eventTotal++
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Blocks        *block.ObservingBlockList
	LastBuild     time.Time
	LastError     error
	BuildDuration time.Duration
	History       []HistoryEntry
	Events        []Event
}

// Snapshot returns a consistent snapshot of current state. The block list
// is shared; callers must not modify it.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hist := make([]HistoryEntry, len(m.history))
	copy(hist, m.history)

	return Snapshot{
		Blocks:        m.current,
		LastBuild:     m.lastBuild,
		LastError:     m.lastError,
		BuildDuration: m.buildDuration,
		History:       hist,
		Events:        m.getEventsOrdered(),
	}
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := range m.maxEvents {
		result[i] = m.events[(m.eventWriteAt+i)%m.maxEvents]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// EventsSince returns the retained events recorded after cursor and the
// cursor to pass next time. Events already dropped from the ring buffer are
// skipped.
func (m *Manager) EventsSince(cursor uint64) ([]Event, uint64) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	first := m.eventTotal - uint64(len(all))
	if cursor < first {
		cursor = first
	}
	if cursor >= m.eventTotal {
		return nil, m.eventTotal
	}
	return all[cursor-first:], m.eventTotal
}

// RefreshInterval returns the configured refresh interval.
func (m *Manager) RefreshInterval() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshInterval
}

// SetRefreshInterval updates the refresh interval.
func (m *Manager) SetRefreshInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshInterval = d
}

// HasData returns true after the first successful build.
func (m *Manager) HasData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}
