package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"campus-sync/internal/models"
	"campus-sync/internal/observability"
	"campus-sync/internal/presence"
)

// Hub maintains active websocket rooms. Conversation rooms are keyed by
// conversation id, inbox rooms by the recipient's user id, and presence
// watchers form a single room.
type Hub struct {
	convRooms     map[string]map[*websocket.Conn]bool
	inboxRooms    map[string]map[*websocket.Conn]bool
	presenceConns map[*websocket.Conn]bool
	convConnInfo  map[string]map[*websocket.Conn]ConnInfo
	inboxConnInfo map[string]map[*websocket.Conn]ConnInfo
	mu            sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		convRooms:     make(map[string]map[*websocket.Conn]bool),
		inboxRooms:    make(map[string]map[*websocket.Conn]bool),
		presenceConns: make(map[*websocket.Conn]bool),
		convConnInfo:  make(map[string]map[*websocket.Conn]ConnInfo),
		inboxConnInfo: make(map[string]map[*websocket.Conn]ConnInfo),
	}
}

// AddConversationClient registers a websocket connection to a conversation room.
func (h *Hub) AddConversationClient(conversationID string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.addConversationClientLocked(conversationID, conn, info)
}

func (h *Hub) addConversationClientLocked(conversationID string, conn *websocket.Conn, info ConnInfo) {
	if _, ok := h.convRooms[conversationID]; !ok {
		h.convRooms[conversationID] = make(map[*websocket.Conn]bool)
	}
	h.convRooms[conversationID][conn] = true
	if _, ok := h.convConnInfo[conversationID]; !ok {
		h.convConnInfo[conversationID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.convConnInfo[conversationID][conn] = info
}

// JoinConversation replays the stored stream to the connection and registers
// it in the room as one step under the hub lock. Broadcasts are serialized
// against the join, so a message stored after the replay snapshot reaches the
// new subscriber through the room instead of falling between the two.
func (h *Hub) JoinConversation(ctx context.Context, conversationID string, conn *websocket.Conn, info ConnInfo, load func(context.Context) ([]models.Message, error)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	history, err := load(ctx)
	if err != nil {
		return err
	}
	for i := range history {
		event := models.StreamEvent{Type: "message", Message: &history[i]}
		if err := conn.WriteJSON(event); err != nil {
			return err
		}
	}

	h.addConversationClientLocked(conversationID, conn, info)
	return nil
}

// snapshotRoom copies a room's connection set under the read lock so senders
// never iterate a map the register and unregister paths are mutating.
func (h *Hub) snapshotRoom(rooms map[string]map[*websocket.Conn]bool, key string) []*websocket.Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conns := make([]*websocket.Conn, 0, len(rooms[key]))
	for conn := range rooms[key] {
		conns = append(conns, conn)
	}
	return conns
}

// RemoveConversationClient removes a conversation websocket connection.
func (h *Hub) RemoveConversationClient(conversationID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.convRooms[conversationID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.convRooms, conversationID)
		}
	}
	if infos, ok := h.convConnInfo[conversationID]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.convConnInfo, conversationID)
		}
	}
}

// BroadcastMessage sends a new message to all clients in a conversation.
func (h *Hub) BroadcastMessage(conversationID string, msg models.Message) {
	conns := h.snapshotRoom(h.convRooms, conversationID)

	event := models.StreamEvent{Type: "message", Message: &msg}
	payload, _ := json.Marshal(event)
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.RemoveConversationClient(conversationID, conn)
			h.publishWSError("conversation", conversationID, conn, err)
		}
	}
}

// BroadcastDeletion notifies a conversation's clients of a deleted message.
func (h *Hub) BroadcastDeletion(conversationID, messageID string) {
	conns := h.snapshotRoom(h.convRooms, conversationID)

	event := models.StreamEvent{Type: "delete", MessageID: messageID}
	payload, _ := json.Marshal(event)
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.RemoveConversationClient(conversationID, conn)
			h.publishWSError("conversation", conversationID, conn, err)
		}
	}
}

// AddInboxClient registers a websocket connection to the user's inbox room.
func (h *Hub) AddInboxClient(userID string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.inboxRooms[userID]; !ok {
		h.inboxRooms[userID] = make(map[*websocket.Conn]bool)
	}
	h.inboxRooms[userID][conn] = true
	if _, ok := h.inboxConnInfo[userID]; !ok {
		h.inboxConnInfo[userID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.inboxConnInfo[userID][conn] = info
}

// RemoveInboxClient removes an inbox websocket connection.
func (h *Hub) RemoveInboxClient(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.inboxRooms[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.inboxRooms, userID)
		}
	}
	if infos, ok := h.inboxConnInfo[userID]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.inboxConnInfo, userID)
		}
	}
}

// PushNotification delivers a notification to the recipient's open inbox
// connections, if any.
func (h *Hub) PushNotification(n models.Notification) {
	conns := h.snapshotRoom(h.inboxRooms, n.RecipientID)

	event := models.InboxEvent{Type: "notification", Notification: &n}
	payload, _ := json.Marshal(event)
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.RemoveInboxClient(n.RecipientID, conn)
			h.publishWSError("inbox", n.RecipientID, conn, err)
		}
	}
}

// AddPresenceClient registers a presence watcher.
func (h *Hub) AddPresenceClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.presenceConns[conn] = true
}

// RemovePresenceClient removes a presence watcher.
func (h *Hub) RemovePresenceClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.presenceConns, conn)
}

// BroadcastPresence fans a presence transition out to every watcher.
func (h *Hub) BroadcastPresence(status presence.Status) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.presenceConns))
	for conn := range h.presenceConns {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	payload, _ := json.Marshal(status)
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.RemovePresenceClient(conn)
		}
	}
}

func (h *Hub) publishWSError(kind, resourceID string, conn *websocket.Conn, err error) {
	info, ok := h.getConnInfo(kind, resourceID, conn)
	if !ok {
		return
	}

	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        kind,
			"resource_id": resourceID,
			"event":       "ws_error",
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      err.Error(),
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), wsRoutingKey(kind), observability.NewEnvelope("ws_events", "ws_error", payload), headers)
	observability.IncWSEvent(kind, "ws_error")
}

func (h *Hub) getConnInfo(kind, resourceID string, conn *websocket.Conn) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if kind == "conversation" {
		if infos, ok := h.convConnInfo[resourceID]; ok {
			info, exists := infos[conn]
			return info, exists
		}
		return ConnInfo{}, false
	}
	if infos, ok := h.inboxConnInfo[resourceID]; ok {
		info, exists := infos[conn]
		return info, exists
	}
	return ConnInfo{}, false
}

func wsRoutingKey(kind string) string {
	if kind == "inbox" {
		return "ws_events.inbox"
	}
	return "ws_events.conversations"
}
