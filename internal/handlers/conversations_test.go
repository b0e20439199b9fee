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
)

func setupConversationRouter(handler *ConversationHandler, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	r.GET("/dm/:peer_id", handler.ResolveDM)
	r.POST("/groups", handler.CreateGroup)
	r.GET("/groups/:group_id", handler.GetGroup)
	r.DELETE("/groups/:group_id", handler.DeleteGroup)
	r.DELETE("/groups/:group_id/members/:member_id", handler.RemoveMember)
	return r
}

func TestResolveDMCanonicalID(t *testing.T) {
	connRepo := new(mocks.ConnectionRepositoryMock)
	handler := NewConversationHandler(new(mocks.ConversationRepositoryMock), connRepo, new(mocks.MessageRepositoryMock), nil)
	router := setupConversationRouter(handler, "bob")

	connRepo.On("AreConnected", mock.Anything, "bob", "alice").Return(true, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/dm/alice", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	// sorted participant ids regardless of who asks
	require.Contains(t, rec.Body.String(), "alice_bob")
}

func TestResolveDMRequiresConnection(t *testing.T) {
	connRepo := new(mocks.ConnectionRepositoryMock)
	handler := NewConversationHandler(new(mocks.ConversationRepositoryMock), connRepo, new(mocks.MessageRepositoryMock), nil)
	router := setupConversationRouter(handler, "bob")

	connRepo.On("AreConnected", mock.Anything, "bob", "mallory").Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/dm/mallory", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateGroupRejectsBlankName(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	handler := NewConversationHandler(convRepo, new(mocks.ConnectionRepositoryMock), new(mocks.MessageRepositoryMock), nil)
	router := setupConversationRouter(handler, "alice")

	req := httptest.NewRequest(http.MethodPost, "/groups", bytes.NewBufferString(`{"name":"   "}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	convRepo.AssertNotCalled(t, "CreateGroup", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetGroupMembersOnly(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	handler := NewConversationHandler(convRepo, new(mocks.ConnectionRepositoryMock), new(mocks.MessageRepositoryMock), nil)
	router := setupConversationRouter(handler, "mallory")

	convRepo.On("Get", mock.Anything, "g1").Return(models.Conversation{ID: "g1", Kind: models.KindGroup, AdminID: "alice"}, nil).Once()
	convRepo.On("GroupMembers", mock.Anything, "g1").Return([]string{"alice", "bob"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/groups/g1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteGroupAdminOnly(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	msgRepo := new(mocks.MessageRepositoryMock)
	handler := NewConversationHandler(convRepo, new(mocks.ConnectionRepositoryMock), msgRepo, nil)
	router := setupConversationRouter(handler, "bob")

	convRepo.On("Get", mock.Anything, "g1").Return(models.Conversation{ID: "g1", Kind: models.KindGroup, AdminID: "alice"}, nil).Once()
	convRepo.On("GroupMembers", mock.Anything, "g1").Return([]string{"alice", "bob"}, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/groups/g1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	msgRepo.AssertNotCalled(t, "DeleteByConversation", mock.Anything, mock.Anything)
}

func TestRemoveMemberSelfLeave(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	handler := NewConversationHandler(convRepo, new(mocks.ConnectionRepositoryMock), new(mocks.MessageRepositoryMock), nil)
	router := setupConversationRouter(handler, "bob")

	convRepo.On("Get", mock.Anything, "g1").Return(models.Conversation{ID: "g1", Kind: models.KindGroup, AdminID: "alice"}, nil).Once()
	convRepo.On("GroupMembers", mock.Anything, "g1").Return([]string{"alice", "bob"}, nil).Once()
	convRepo.On("RemoveMember", mock.Anything, "g1", "bob").Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/groups/g1/members/bob", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	convRepo.AssertExpectations(t)
}

func TestRemoveMemberCannotRemoveAdmin(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	handler := NewConversationHandler(convRepo, new(mocks.ConnectionRepositoryMock), new(mocks.MessageRepositoryMock), nil)
	router := setupConversationRouter(handler, "bob")

	convRepo.On("Get", mock.Anything, "g1").Return(models.Conversation{ID: "g1", Kind: models.KindGroup, AdminID: "alice"}, nil).Once()
	convRepo.On("GroupMembers", mock.Anything, "g1").Return([]string{"alice", "bob"}, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/groups/g1/members/alice", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	convRepo.AssertNotCalled(t, "RemoveMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteGroupReclaimsAttachments(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	msgRepo := new(mocks.MessageRepositoryMock)
	blobs := new(mocks.BlobStoreMock)
	handler := NewConversationHandler(convRepo, new(mocks.ConnectionRepositoryMock), msgRepo, blobs)
	router := setupConversationRouter(handler, "alice")

	convRepo.On("Get", mock.Anything, "g1").Return(models.Conversation{ID: "g1", Kind: models.KindGroup, AdminID: "alice"}, nil).Once()
	convRepo.On("GroupMembers", mock.Anything, "g1").Return([]string{"alice", "bob"}, nil).Once()
	msgRepo.On("DeleteByConversation", mock.Anything, "g1").Return([]string{"uploads/bob/pic"}, nil).Once()
	convRepo.On("DeleteGroup", mock.Anything, "g1").Return(nil).Once()
	blobs.On("Delete", "uploads/bob/pic").Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/groups/g1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	blobs.AssertExpectations(t)
}
