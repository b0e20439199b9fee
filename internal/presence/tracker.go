package presence

import (
	"sync"
	"time"

	"campus-sync/internal/observability"
)

// State of a user's presence entry.
type State string

const (
	Online  State = "online"
	Offline State = "offline"
)

// Status is the ephemeral presence record for one user. It is overwritten in
// place and lost on tracker restart; readers only care about the current value.
type Status struct {
	UserID      string    `json:"user_id"`
	State       State     `json:"state"`
	LastChanged time.Time `json:"last_changed"`
}

// Tracker maintains the online/offline map, keyed by websocket connection
// liveness. It is an injected service with an explicit lifecycle, not a global.
type Tracker struct {
	mu     sync.RWMutex
	conns  map[string]int
	status map[string]Status
	subs   map[chan Status]struct{}
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		conns:  make(map[string]int),
		status: make(map[string]Status),
		subs:   make(map[chan Status]struct{}),
	}
}

// SetOnline records a live connection for the user and marks them online. The
// matching Disconnected call is armed by the caller's connection teardown.
func (t *Tracker) SetOnline(userID string) {
	t.mu.Lock()
	t.conns[userID]++
	st := Status{UserID: userID, State: Online, LastChanged: time.Now()}
	changed := t.status[userID].State != Online
	t.status[userID] = st
	t.mu.Unlock()

	if changed {
		observability.IncPresenceOnline()
		t.publish(st)
	}
}

// Disconnected is the connection-drop trigger. The user goes offline only when
// their last live connection is gone.
func (t *Tracker) Disconnected(userID string) {
	t.mu.Lock()
	if t.conns[userID] > 0 {
		t.conns[userID]--
	}
	if t.conns[userID] > 0 {
		t.mu.Unlock()
		return
	}
	delete(t.conns, userID)
	st := Status{UserID: userID, State: Offline, LastChanged: time.Now()}
	changed := t.status[userID].State == Online
	t.status[userID] = st
	t.mu.Unlock()

	if changed {
		observability.DecPresenceOnline()
		t.publish(st)
	}
}

// SetOffline is the explicit sign-out write. It races harmlessly with the
// disconnect trigger: both write offline, so last write wins with no visible
// inconsistency.
func (t *Tracker) SetOffline(userID string) {
	t.mu.Lock()
	delete(t.conns, userID)
	st := Status{UserID: userID, State: Offline, LastChanged: time.Now()}
	changed := t.status[userID].State == Online
	t.status[userID] = st
	t.mu.Unlock()

	if changed {
		observability.DecPresenceOnline()
		t.publish(st)
	}
}

// Snapshot returns the current presence map.
func (t *Tracker) Snapshot() map[string]Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]Status, len(t.status))
	for id, st := range t.status {
		out[id] = st
	}
	return out
}

// Subscribe returns a stream of presence changes and a teardown func. No
// delivery happens after teardown.
func (t *Tracker) Subscribe() (<-chan Status, func()) {
	ch := make(chan Status, 16)
	t.mu.Lock()
	t.subs[ch] = struct{}{}
	t.mu.Unlock()

	cancel := func() {
		t.mu.Lock()
		if _, ok := t.subs[ch]; ok {
			delete(t.subs, ch)
			close(ch)
		}
		t.mu.Unlock()
	}
	return ch, cancel
}

func (t *Tracker) publish(st Status) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for ch := range t.subs {
		select {
		case ch <- st:
		default:
			// Presence is advisory; a slow subscriber misses an update
			// and catches up from the next snapshot.
		}
	}
}
