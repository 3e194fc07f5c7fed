package status

import (
	"sync"
	"time"
)

// Known device liveness states. The heartbeat topic carries free text, so
// anything else the device sends is stored as-is after normalization.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Tracker is the in-memory liveness indicator derived from the most
// recent heartbeat message. It is written only by the ingestion goroutine
// and read by HTTP handlers, so access goes through a single-writer,
// multi-reader lock.
type Tracker struct {
	mu       sync.RWMutex
	status   string
	lastSeen time.Time
}

// NewTracker returns a tracker that reports offline until the first
// heartbeat arrives.
func NewTracker() *Tracker {
	return &Tracker{status: StatusOffline}
}

// Set records a new status together with the moment the device was seen.
func (t *Tracker) Set(status string, seen time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = status
	t.lastSeen = seen
}

// SetStatus records a new status without touching the last-seen mark.
func (t *Tracker) SetStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = status
}

// Snapshot returns a consistent view of the current status and last-seen
// time. The zero time means no device has reported online yet.
func (t *Tracker) Snapshot() (string, time.Time) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status, t.lastSeen
}
