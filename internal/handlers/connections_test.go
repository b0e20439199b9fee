package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"campus-sync/internal/mocks"
	"campus-sync/internal/models"
	"campus-sync/internal/notify"
	"campus-sync/internal/repositories"
)

func setupConnectionRouter(handler *ConnectionHandler, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	r.POST("/connections/requests", handler.SendRequest)
	r.POST("/connections/requests/:peer_id/accept", handler.AcceptRequest)
	r.DELETE("/connections/requests/:peer_id", handler.CancelRequest)
	r.DELETE("/connections/:peer_id", handler.Disconnect)
	r.GET("/connections", handler.ListConnections)
	return r
}

func newTestDispatcher(notifRepo *mocks.NotificationRepositoryMock, pusher *mocks.InboxPusherMock) *notify.Dispatcher {
	return notify.NewDispatcher(notifRepo, new(mocks.UserRepositoryMock), pusher, 1, 1)
}

func TestSendRequestNotifiesPeer(t *testing.T) {
	connRepo := new(mocks.ConnectionRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	notifRepo := new(mocks.NotificationRepositoryMock)
	pusher := new(mocks.InboxPusherMock)
	handler := NewConnectionHandler(connRepo, userRepo, newTestDispatcher(notifRepo, pusher))
	router := setupConnectionRouter(handler, "alice")

	alice := models.User{ID: "alice", DisplayName: "Alice"}
	bob := models.User{ID: "bob", DisplayName: "Bob"}
	userRepo.On("GetUser", mock.Anything, "alice").Return(alice, nil).Once()
	userRepo.On("GetUser", mock.Anything, "bob").Return(bob, nil).Once()
	connRepo.On("SendRequest", mock.Anything, alice, bob).Return(nil).Once()
	notifRepo.On("Create", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
		return n.RecipientID == "bob" && n.Type == models.NotifyConnectionRequest
	})).Return(models.Notification{ID: "n1", RecipientID: "bob"}, nil).Once()
	pusher.On("PushNotification", mock.AnythingOfType("models.Notification")).Return().Once()

	req := httptest.NewRequest(http.MethodPost, "/connections/requests", bytes.NewBufferString(`{"peer_id":"bob"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	connRepo.AssertExpectations(t)
	notifRepo.AssertExpectations(t)
}

func TestSendRequestDuplicate(t *testing.T) {
	connRepo := new(mocks.ConnectionRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewConnectionHandler(connRepo, userRepo, newTestDispatcher(new(mocks.NotificationRepositoryMock), new(mocks.InboxPusherMock)))
	router := setupConnectionRouter(handler, "alice")

	userRepo.On("GetUser", mock.Anything, "alice").Return(models.User{ID: "alice"}, nil).Once()
	userRepo.On("GetUser", mock.Anything, "bob").Return(models.User{ID: "bob"}, nil).Once()
	connRepo.On("SendRequest", mock.Anything, mock.Anything, mock.Anything).Return(repositories.ErrConnectionExists).Once()

	req := httptest.NewRequest(http.MethodPost, "/connections/requests", bytes.NewBufferString(`{"peer_id":"bob"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestAcceptRequestNotifiesRequester(t *testing.T) {
	connRepo := new(mocks.ConnectionRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	notifRepo := new(mocks.NotificationRepositoryMock)
	pusher := new(mocks.InboxPusherMock)
	handler := NewConnectionHandler(connRepo, userRepo, newTestDispatcher(notifRepo, pusher))
	router := setupConnectionRouter(handler, "bob")

	bob := models.User{ID: "bob", DisplayName: "Bob"}
	alice := models.User{ID: "alice", DisplayName: "Alice"}
	userRepo.On("GetUser", mock.Anything, "bob").Return(bob, nil).Once()
	userRepo.On("GetUser", mock.Anything, "alice").Return(alice, nil).Once()
	connRepo.On("AcceptRequest", mock.Anything, bob, alice).Return(nil).Once()
	notifRepo.On("Create", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
		return n.RecipientID == "alice" && n.Type == models.NotifyConnectionAccept
	})).Return(models.Notification{ID: "n2", RecipientID: "alice"}, nil).Once()
	pusher.On("PushNotification", mock.AnythingOfType("models.Notification")).Return().Once()

	req := httptest.NewRequest(http.MethodPost, "/connections/requests/alice/accept", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	connRepo.AssertExpectations(t)
	notifRepo.AssertExpectations(t)
}

func TestAcceptWithoutPendingRequest(t *testing.T) {
	connRepo := new(mocks.ConnectionRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewConnectionHandler(connRepo, userRepo, newTestDispatcher(new(mocks.NotificationRepositoryMock), new(mocks.InboxPusherMock)))
	router := setupConnectionRouter(handler, "bob")

	userRepo.On("GetUser", mock.Anything, "bob").Return(models.User{ID: "bob"}, nil).Once()
	userRepo.On("GetUser", mock.Anything, "alice").Return(models.User{ID: "alice"}, nil).Once()
	connRepo.On("AcceptRequest", mock.Anything, mock.Anything, mock.Anything).Return(repositories.ErrNoPendingRequest).Once()

	req := httptest.NewRequest(http.MethodPost, "/connections/requests/alice/accept", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelRequestSilent(t *testing.T) {
	connRepo := new(mocks.ConnectionRepositoryMock)
	notifRepo := new(mocks.NotificationRepositoryMock)
	handler := NewConnectionHandler(connRepo, new(mocks.UserRepositoryMock), newTestDispatcher(notifRepo, new(mocks.InboxPusherMock)))
	router := setupConnectionRouter(handler, "alice")

	connRepo.On("CancelRequest", mock.Anything, "alice", "bob").Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/connections/requests/bob", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	notifRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCancelRequestNothingPending(t *testing.T) {
	connRepo := new(mocks.ConnectionRepositoryMock)
	handler := NewConnectionHandler(connRepo, new(mocks.UserRepositoryMock), newTestDispatcher(new(mocks.NotificationRepositoryMock), new(mocks.InboxPusherMock)))
	router := setupConnectionRouter(handler, "alice")

	connRepo.On("CancelRequest", mock.Anything, "alice", "bob").Return(repositories.ErrNoPendingRequest).Once()

	req := httptest.NewRequest(http.MethodDelete, "/connections/requests/bob", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), `"code":"NOT_FOUND"`)
}

func TestDisconnectNotConnected(t *testing.T) {
	connRepo := new(mocks.ConnectionRepositoryMock)
	handler := NewConnectionHandler(connRepo, new(mocks.UserRepositoryMock), newTestDispatcher(new(mocks.NotificationRepositoryMock), new(mocks.InboxPusherMock)))
	router := setupConnectionRouter(handler, "alice")

	connRepo.On("Disconnect", mock.Anything, "alice", "bob").Return(repositories.ErrNotConnected).Once()

	req := httptest.NewRequest(http.MethodDelete, "/connections/bob", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListConnectionsStateFilter(t *testing.T) {
	connRepo := new(mocks.ConnectionRepositoryMock)
	handler := NewConnectionHandler(connRepo, new(mocks.UserRepositoryMock), newTestDispatcher(new(mocks.NotificationRepositoryMock), new(mocks.InboxPusherMock)))
	router := setupConnectionRouter(handler, "alice")

	connRepo.On("ListEdges", mock.Anything, "alice", models.ConnectionConnected).
		Return([]models.ConnectionEdge{{OwnerID: "alice", PeerID: "bob", State: models.ConnectionConnected}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/connections?state=connected", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	connRepo.AssertExpectations(t)
}

func TestListConnectionsBadState(t *testing.T) {
	handler := NewConnectionHandler(new(mocks.ConnectionRepositoryMock), new(mocks.UserRepositoryMock), newTestDispatcher(new(mocks.NotificationRepositoryMock), new(mocks.InboxPusherMock)))
	router := setupConnectionRouter(handler, "alice")

	req := httptest.NewRequest(http.MethodGet, "/connections?state=bogus", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
