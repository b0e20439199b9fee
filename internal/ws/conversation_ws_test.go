package ws

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"campus-sync/internal/mocks"
	"campus-sync/internal/models"
)

func newStreamHandler(convRepo *mocks.ConversationRepositoryMock, connRepo *mocks.ConnectionRepositoryMock) *ConversationWebSocketHandler {
	return NewConversationWebSocketHandler(NewHub(), convRepo, connRepo, new(mocks.MessageRepositoryMock), nil)
}

func TestStreamAuthorizeDMRequiresConnection(t *testing.T) {
	connRepo := new(mocks.ConnectionRepositoryMock)
	handler := newStreamHandler(new(mocks.ConversationRepositoryMock), connRepo)

	connRepo.On("AreConnected", mock.Anything, "alice", "bob").Return(false, nil).Once()
	require.Error(t, handler.authorize(context.Background(), "alice_bob", "alice"))

	connRepo.On("AreConnected", mock.Anything, "alice", "bob").Return(true, nil).Once()
	require.NoError(t, handler.authorize(context.Background(), "alice_bob", "alice"))
	connRepo.AssertExpectations(t)
}

func TestStreamAuthorizeDMOutsider(t *testing.T) {
	connRepo := new(mocks.ConnectionRepositoryMock)
	handler := newStreamHandler(new(mocks.ConversationRepositoryMock), connRepo)

	require.Error(t, handler.authorize(context.Background(), "alice_bob", "mallory"))
	connRepo.AssertNotCalled(t, "AreConnected", mock.Anything, mock.Anything, mock.Anything)
}

func TestStreamAuthorizeGroupMembership(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	handler := newStreamHandler(convRepo, new(mocks.ConnectionRepositoryMock))

	convRepo.On("Get", mock.Anything, "g1").Return(models.Conversation{ID: "g1", Kind: models.KindGroup, AdminID: "alice"}, nil).Twice()
	convRepo.On("IsMember", mock.Anything, "g1", "bob").Return(true, nil).Once()
	convRepo.On("IsMember", mock.Anything, "g1", "mallory").Return(false, nil).Once()

	require.NoError(t, handler.authorize(context.Background(), "g1", "bob"))
	require.Error(t, handler.authorize(context.Background(), "g1", "mallory"))
	convRepo.AssertExpectations(t)
}

func TestStreamAuthorizeChannelOpenToAll(t *testing.T) {
	convRepo := new(mocks.ConversationRepositoryMock)
	handler := newStreamHandler(convRepo, new(mocks.ConnectionRepositoryMock))

	convRepo.On("Get", mock.Anything, "general").Return(models.Conversation{ID: "general", Kind: models.KindChannel}, nil).Once()

	require.NoError(t, handler.authorize(context.Background(), "general", "anyone"))
}
