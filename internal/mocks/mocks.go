package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"campus-sync/internal/blob"
	"campus-sync/internal/models"
	"campus-sync/internal/repositories"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) UpsertOnLogin(ctx context.Context, user models.User) (models.User, error) {
	args := m.Called(ctx, user)
	var u models.User
	if val := args.Get(0); val != nil {
		u = val.(models.User)
	}
	return u, args.Error(1)
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, id string) (models.User, error) {
	args := m.Called(ctx, id)
	var u models.User
	if val := args.Get(0); val != nil {
		u = val.(models.User)
	}
	return u, args.Error(1)
}

func (m *UserRepositoryMock) UpdateProfile(ctx context.Context, id string, fields map[string]string) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *UserRepositoryMock) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	var list []models.User
	if val := args.Get(0); val != nil {
		list = val.([]models.User)
	}
	return list, args.Error(1)
}

func (m *UserRepositoryMock) ListRecipients(ctx context.Context, department string) ([]models.User, error) {
	args := m.Called(ctx, department)
	var list []models.User
	if val := args.Get(0); val != nil {
		list = val.([]models.User)
	}
	return list, args.Error(1)
}

type ConnectionRepositoryMock struct {
	mock.Mock
}

func (m *ConnectionRepositoryMock) SendRequest(ctx context.Context, from, to models.User) error {
	args := m.Called(ctx, from, to)
	return args.Error(0)
}

func (m *ConnectionRepositoryMock) AcceptRequest(ctx context.Context, recipient, requester models.User) error {
	args := m.Called(ctx, recipient, requester)
	return args.Error(0)
}

func (m *ConnectionRepositoryMock) CancelRequest(ctx context.Context, userID, peerID string) error {
	args := m.Called(ctx, userID, peerID)
	return args.Error(0)
}

func (m *ConnectionRepositoryMock) Disconnect(ctx context.Context, userID, peerID string) error {
	args := m.Called(ctx, userID, peerID)
	return args.Error(0)
}

func (m *ConnectionRepositoryMock) ListEdges(ctx context.Context, ownerID string, state models.ConnectionState) ([]models.ConnectionEdge, error) {
	args := m.Called(ctx, ownerID, state)
	var list []models.ConnectionEdge
	if val := args.Get(0); val != nil {
		list = val.([]models.ConnectionEdge)
	}
	return list, args.Error(1)
}

func (m *ConnectionRepositoryMock) AreConnected(ctx context.Context, userID, peerID string) (bool, error) {
	args := m.Called(ctx, userID, peerID)
	return args.Bool(0), args.Error(1)
}

type ConversationRepositoryMock struct {
	mock.Mock
}

func (m *ConversationRepositoryMock) Get(ctx context.Context, id string) (models.Conversation, error) {
	args := m.Called(ctx, id)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) ListChannels(ctx context.Context) ([]models.Conversation, error) {
	args := m.Called(ctx)
	var list []models.Conversation
	if val := args.Get(0); val != nil {
		list = val.([]models.Conversation)
	}
	return list, args.Error(1)
}

func (m *ConversationRepositoryMock) EnsureChannel(ctx context.Context, id, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *ConversationRepositoryMock) CreateGroup(ctx context.Context, adminID, name string, memberIDs []string) (models.Conversation, error) {
	args := m.Called(ctx, adminID, name, memberIDs)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) ListGroupsForUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	args := m.Called(ctx, userID)
	var list []models.Conversation
	if val := args.Get(0); val != nil {
		list = val.([]models.Conversation)
	}
	return list, args.Error(1)
}

func (m *ConversationRepositoryMock) GroupMembers(ctx context.Context, groupID string) ([]string, error) {
	args := m.Called(ctx, groupID)
	var list []string
	if val := args.Get(0); val != nil {
		list = val.([]string)
	}
	return list, args.Error(1)
}

func (m *ConversationRepositoryMock) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *ConversationRepositoryMock) AddMembers(ctx context.Context, groupID string, memberIDs []string) error {
	args := m.Called(ctx, groupID, memberIDs)
	return args.Error(0)
}

func (m *ConversationRepositoryMock) RemoveMember(ctx context.Context, groupID, userID string) error {
	args := m.Called(ctx, groupID, userID)
	return args.Error(0)
}

func (m *ConversationRepositoryMock) DeleteGroup(ctx context.Context, groupID string) error {
	args := m.Called(ctx, groupID)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Append(ctx context.Context, conversationID string, sender models.User, payload models.Payload, clientSeq int64) (models.Message, error) {
	args := m.Called(ctx, conversationID, sender, payload, clientSeq)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) List(ctx context.Context, conversationID string) ([]models.Message, error) {
	args := m.Called(ctx, conversationID)
	var list []models.Message
	if val := args.Get(0); val != nil {
		list = val.([]models.Message)
	}
	return list, args.Error(1)
}

func (m *MessageRepositoryMock) Get(ctx context.Context, id string) (models.Message, error) {
	args := m.Called(ctx, id)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MessageRepositoryMock) DeleteByConversation(ctx context.Context, conversationID string) ([]string, error) {
	args := m.Called(ctx, conversationID)
	var refs []string
	if val := args.Get(0); val != nil {
		refs = val.([]string)
	}
	return refs, args.Error(1)
}

type NotificationRepositoryMock struct {
	mock.Mock
}

func (m *NotificationRepositoryMock) Create(ctx context.Context, n models.Notification) (models.Notification, error) {
	args := m.Called(ctx, n)
	var stored models.Notification
	if val := args.Get(0); val != nil {
		stored = val.(models.Notification)
	}
	return stored, args.Error(1)
}

func (m *NotificationRepositoryMock) ListInbox(ctx context.Context, recipientID string) ([]models.Notification, error) {
	args := m.Called(ctx, recipientID)
	var list []models.Notification
	if val := args.Get(0); val != nil {
		list = val.([]models.Notification)
	}
	return list, args.Error(1)
}

func (m *NotificationRepositoryMock) MarkRead(ctx context.Context, recipientID, id string) error {
	args := m.Called(ctx, recipientID, id)
	return args.Error(0)
}

func (m *NotificationRepositoryMock) MarkAllRead(ctx context.Context, recipientID string) error {
	args := m.Called(ctx, recipientID)
	return args.Error(0)
}

func (m *NotificationRepositoryMock) Delete(ctx context.Context, recipientID, id string) error {
	args := m.Called(ctx, recipientID, id)
	return args.Error(0)
}

type PostRepositoryMock struct {
	mock.Mock
}

func (m *PostRepositoryMock) Create(ctx context.Context, p models.Post) (models.Post, error) {
	args := m.Called(ctx, p)
	var post models.Post
	if val := args.Get(0); val != nil {
		post = val.(models.Post)
	}
	return post, args.Error(1)
}

func (m *PostRepositoryMock) List(ctx context.Context) ([]models.Post, error) {
	args := m.Called(ctx)
	var list []models.Post
	if val := args.Get(0); val != nil {
		list = val.([]models.Post)
	}
	return list, args.Error(1)
}

func (m *PostRepositoryMock) Get(ctx context.Context, id string) (models.Post, error) {
	args := m.Called(ctx, id)
	var post models.Post
	if val := args.Get(0); val != nil {
		post = val.(models.Post)
	}
	return post, args.Error(1)
}

func (m *PostRepositoryMock) Delete(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *PostRepositoryMock) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	args := m.Called(ctx, postID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *PostRepositoryMock) AddComment(ctx context.Context, c models.Comment) (models.Comment, error) {
	args := m.Called(ctx, c)
	var comment models.Comment
	if val := args.Get(0); val != nil {
		comment = val.(models.Comment)
	}
	return comment, args.Error(1)
}

func (m *PostRepositoryMock) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	args := m.Called(ctx, postID)
	var list []models.Comment
	if val := args.Get(0); val != nil {
		list = val.([]models.Comment)
	}
	return list, args.Error(1)
}

type NoticeRepositoryMock struct {
	mock.Mock
}

func (m *NoticeRepositoryMock) Create(ctx context.Context, n models.Notice) (models.Notice, error) {
	args := m.Called(ctx, n)
	var notice models.Notice
	if val := args.Get(0); val != nil {
		notice = val.(models.Notice)
	}
	return notice, args.Error(1)
}

func (m *NoticeRepositoryMock) List(ctx context.Context) ([]models.Notice, error) {
	args := m.Called(ctx)
	var list []models.Notice
	if val := args.Get(0); val != nil {
		list = val.([]models.Notice)
	}
	return list, args.Error(1)
}

func (m *NoticeRepositoryMock) Get(ctx context.Context, id string) (models.Notice, error) {
	args := m.Called(ctx, id)
	var notice models.Notice
	if val := args.Get(0); val != nil {
		notice = val.(models.Notice)
	}
	return notice, args.Error(1)
}

func (m *NoticeRepositoryMock) SetPinned(ctx context.Context, id string, pinned bool) error {
	args := m.Called(ctx, id, pinned)
	return args.Error(0)
}

func (m *NoticeRepositoryMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type EventRepositoryMock struct {
	mock.Mock
}

func (m *EventRepositoryMock) Create(ctx context.Context, e models.Event) (models.Event, error) {
	args := m.Called(ctx, e)
	var event models.Event
	if val := args.Get(0); val != nil {
		event = val.(models.Event)
	}
	return event, args.Error(1)
}

func (m *EventRepositoryMock) List(ctx context.Context) ([]models.Event, error) {
	args := m.Called(ctx)
	var list []models.Event
	if val := args.Get(0); val != nil {
		list = val.([]models.Event)
	}
	return list, args.Error(1)
}

func (m *EventRepositoryMock) Get(ctx context.Context, id string) (models.Event, error) {
	args := m.Called(ctx, id)
	var event models.Event
	if val := args.Get(0); val != nil {
		event = val.(models.Event)
	}
	return event, args.Error(1)
}

func (m *EventRepositoryMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type BlobStoreMock struct {
	mock.Mock
}

func (m *BlobStoreMock) Put(prefix string, data []byte, contentType string) (string, error) {
	args := m.Called(prefix, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *BlobStoreMock) Get(ref string) ([]byte, string, error) {
	args := m.Called(ref)
	var data []byte
	if val := args.Get(0); val != nil {
		data = val.([]byte)
	}
	return data, args.String(1), args.Error(2)
}

func (m *BlobStoreMock) URL(ref string) string {
	args := m.Called(ref)
	return args.String(0)
}

func (m *BlobStoreMock) Delete(ref string) error {
	args := m.Called(ref)
	return args.Error(0)
}

func (m *BlobStoreMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

type InboxPusherMock struct {
	mock.Mock
}

func (m *InboxPusherMock) PushNotification(n models.Notification) {
	m.Called(n)
}

var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.ConnectionRepository = (*ConnectionRepositoryMock)(nil)
var _ repositories.ConversationRepository = (*ConversationRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.NotificationRepository = (*NotificationRepositoryMock)(nil)
var _ repositories.PostRepository = (*PostRepositoryMock)(nil)
var _ repositories.NoticeRepository = (*NoticeRepositoryMock)(nil)
var _ repositories.EventRepository = (*EventRepositoryMock)(nil)
var _ blob.Store = (*BlobStoreMock)(nil)
