package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"campus-sync/internal/mocks"
	"campus-sync/internal/models"
)

func TestNotifyStoresAndPushes(t *testing.T) {
	repo := new(mocks.NotificationRepositoryMock)
	users := new(mocks.UserRepositoryMock)
	pusher := new(mocks.InboxPusherMock)
	d := NewDispatcher(repo, users, pusher, 2, 2)

	n := models.Notification{RecipientID: "bob", SenderID: "alice", Type: models.NotifyLike, Message: "alice liked your post"}
	stored := n
	stored.ID = "n1"
	repo.On("Create", mock.Anything, n).Return(stored, nil)
	pusher.On("PushNotification", stored).Return()

	err := d.Notify(context.Background(), n)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
	pusher.AssertExpectations(t)
}

func TestNotifySuppressesSelfAction(t *testing.T) {
	repo := new(mocks.NotificationRepositoryMock)
	users := new(mocks.UserRepositoryMock)
	pusher := new(mocks.InboxPusherMock)
	d := NewDispatcher(repo, users, pusher, 2, 2)

	n := models.Notification{RecipientID: "alice", SenderID: "alice", Type: models.NotifyLike}
	err := d.Notify(context.Background(), n)

	assert.NoError(t, err)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	pusher.AssertNotCalled(t, "PushNotification", mock.Anything)
}

func TestBroadcastDeliversToAudience(t *testing.T) {
	repo := new(mocks.NotificationRepositoryMock)
	users := new(mocks.UserRepositoryMock)
	pusher := new(mocks.InboxPusherMock)
	d := NewDispatcher(repo, users, pusher, 3, 2)

	audience := []models.User{{ID: "u1"}, {ID: "u2"}, {ID: "u3"}}
	users.On("ListRecipients", mock.Anything, "CSE").Return(audience, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("models.Notification")).Return(models.Notification{ID: "n"}, nil)
	pusher.On("PushNotification", mock.AnythingOfType("models.Notification")).Return()

	report, err := d.Broadcast(context.Background(), "CSE", models.Notification{Type: models.NotifyNewNotice, Message: "exam schedule"})

	assert.NoError(t, err)
	assert.Equal(t, 3, report.Delivered)
	assert.Empty(t, report.Failed)
}

func TestBroadcastSkipsAnnouncer(t *testing.T) {
	repo := new(mocks.NotificationRepositoryMock)
	users := new(mocks.UserRepositoryMock)
	pusher := new(mocks.InboxPusherMock)
	d := NewDispatcher(repo, users, pusher, 1, 1)

	audience := []models.User{{ID: "dean"}, {ID: "u2"}}
	users.On("ListRecipients", mock.Anything, models.DepartmentAll).Return(audience, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("models.Notification")).Return(models.Notification{ID: "n"}, nil)
	pusher.On("PushNotification", mock.AnythingOfType("models.Notification")).Return()

	report, err := d.Broadcast(context.Background(), models.DepartmentAll, models.Notification{SenderID: "dean", Type: models.NotifyNewNotice})

	assert.NoError(t, err)
	assert.Equal(t, 1, report.Delivered)
	repo.AssertNumberOfCalls(t, "Create", 1)
}

func TestBroadcastCollectsFailures(t *testing.T) {
	repo := new(mocks.NotificationRepositoryMock)
	users := new(mocks.UserRepositoryMock)
	pusher := new(mocks.InboxPusherMock)
	d := NewDispatcher(repo, users, pusher, 1, 2)

	audience := []models.User{{ID: "ok"}, {ID: "bad"}}
	users.On("ListRecipients", mock.Anything, "CSE").Return(audience, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
		return n.RecipientID == "ok"
	})).Return(models.Notification{ID: "n"}, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
		return n.RecipientID == "bad"
	})).Return(models.Notification{}, errors.New("db down"))
	pusher.On("PushNotification", mock.AnythingOfType("models.Notification")).Return()

	report, err := d.Broadcast(context.Background(), "CSE", models.Notification{Type: models.NotifyNewEvent})

	assert.NoError(t, err)
	assert.Equal(t, 1, report.Delivered)
	assert.Equal(t, []string{"bad"}, report.Failed)
	// failed delivery is retried before being reported
	repo.AssertNumberOfCalls(t, "Create", 3)
}

func TestBroadcastRecipientLookupError(t *testing.T) {
	repo := new(mocks.NotificationRepositoryMock)
	users := new(mocks.UserRepositoryMock)
	pusher := new(mocks.InboxPusherMock)
	d := NewDispatcher(repo, users, pusher, 2, 1)

	users.On("ListRecipients", mock.Anything, "EEE").Return(nil, errors.New("db down"))

	_, err := d.Broadcast(context.Background(), "EEE", models.Notification{Type: models.NotifyNewNotice})
	assert.Error(t, err)
}
