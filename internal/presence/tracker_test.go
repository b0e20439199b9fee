package presence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnlineOfflineLifecycle(t *testing.T) {
	tracker := NewTracker()

	tracker.SetOnline("u1")
	assert.Equal(t, Online, tracker.Snapshot()["u1"].State)

	tracker.Disconnected("u1")
	assert.Equal(t, Offline, tracker.Snapshot()["u1"].State)
}

func TestMultipleConnectionsStayOnline(t *testing.T) {
	tracker := NewTracker()

	tracker.SetOnline("u1")
	tracker.SetOnline("u1")

	tracker.Disconnected("u1")
	assert.Equal(t, Online, tracker.Snapshot()["u1"].State, "one connection still live")

	tracker.Disconnected("u1")
	assert.Equal(t, Offline, tracker.Snapshot()["u1"].State)
}

func TestExplicitSignOutRacesHarmlessly(t *testing.T) {
	tracker := NewTracker()

	tracker.SetOnline("u1")
	tracker.SetOffline("u1")
	assert.Equal(t, Offline, tracker.Snapshot()["u1"].State)

	// The armed disconnect trigger fires afterwards; both writes are offline.
	tracker.Disconnected("u1")
	assert.Equal(t, Offline, tracker.Snapshot()["u1"].State)
}

func TestSubscribeDeliversChanges(t *testing.T) {
	tracker := NewTracker()
	ch, cancel := tracker.Subscribe()
	defer cancel()

	tracker.SetOnline("u1")

	st := <-ch
	require.Equal(t, "u1", st.UserID)
	assert.Equal(t, Online, st.State)
}

func TestSubscribeTeardownStopsDelivery(t *testing.T) {
	tracker := NewTracker()
	ch, cancel := tracker.Subscribe()
	cancel()

	tracker.SetOnline("u1")

	_, open := <-ch
	assert.False(t, open, "channel closed after teardown")
}

func TestRepeatedOnlineIsOneTransition(t *testing.T) {
	tracker := NewTracker()
	ch, cancel := tracker.Subscribe()
	defer cancel()

	tracker.SetOnline("u1")
	tracker.SetOnline("u1")

	<-ch
	select {
	case st := <-ch:
		t.Fatalf("unexpected second update: %+v", st)
	default:
	}
}
