package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"campus-sync/internal/models"
)

func TestHubAddAndRemoveConversationClient(t *testing.T) {
	hub := NewHub()

	hub.AddConversationClient("alice_bob", nil, ConnInfo{UserID: "alice"})
	if len(hub.convRooms) != 1 {
		t.Fatalf("expected conversation room to be created")
	}

	hub.RemoveConversationClient("alice_bob", nil)
	if len(hub.convRooms) != 0 {
		t.Fatalf("expected conversation room to be removed")
	}
}

func TestHubAddAndRemoveInboxClient(t *testing.T) {
	hub := NewHub()

	hub.AddInboxClient("carol", nil, ConnInfo{UserID: "carol"})
	if len(hub.inboxRooms) != 1 {
		t.Fatalf("expected inbox room to be created")
	}

	hub.RemoveInboxClient("carol", nil)
	if len(hub.inboxRooms) != 0 {
		t.Fatalf("expected inbox room to be removed")
	}
}

func TestHubPresenceClients(t *testing.T) {
	hub := NewHub()

	hub.AddPresenceClient(nil)
	if len(hub.presenceConns) != 1 {
		t.Fatalf("expected presence client to be registered")
	}

	hub.RemovePresenceClient(nil)
	if len(hub.presenceConns) != 0 {
		t.Fatalf("expected presence client to be removed")
	}
}

func dialTestConn(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	return conn
}

func TestHubBroadcastWhileClientsJoin(t *testing.T) {
	hub := NewHub()
	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.AddConversationClient("g1", conn, ConnInfo{})
	}))
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			hub.BroadcastMessage("g1", models.Message{ID: "m", ConversationID: "g1"})
		}
	}()

	conns := make([]*websocket.Conn, 0, 8)
	for i := 0; i < 8; i++ {
		conns = append(conns, dialTestConn(t, url))
	}
	<-done

	for _, conn := range conns {
		conn.Close()
	}
}

func TestHubJoinReplaysBeforeLive(t *testing.T) {
	hub := NewHub()
	up := websocket.Upgrader{}
	joined := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		err = hub.JoinConversation(context.Background(), "alice_bob", conn, ConnInfo{UserID: "alice"}, func(context.Context) ([]models.Message, error) {
			return []models.Message{{ID: "m1", ConversationID: "alice_bob"}}, nil
		})
		if err != nil {
			t.Errorf("join failed: %v", err)
			return
		}
		close(joined)
	}))
	defer srv.Close()

	conn := dialTestConn(t, "ws"+strings.TrimPrefix(srv.URL, "http"))
	defer conn.Close()

	<-joined
	hub.BroadcastMessage("alice_bob", models.Message{ID: "m2", ConversationID: "alice_bob"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got []string
	for i := 0; i < 2; i++ {
		var event models.StreamEvent
		if err := conn.ReadJSON(&event); err != nil {
			t.Fatalf("read %d failed: %v", i, err)
		}
		if event.Message == nil {
			t.Fatalf("read %d: missing message", i)
		}
		got = append(got, event.Message.ID)
	}
	if got[0] != "m1" || got[1] != "m2" {
		t.Fatalf("expected replay before live delivery, got %v", got)
	}
}
