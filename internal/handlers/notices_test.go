package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"campus-sync/internal/mocks"
	"campus-sync/internal/models"
	"campus-sync/internal/notify"
)

func setupNoticeRouter(handler *NoticeHandler, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	r.POST("/notices", handler.CreateNotice)
	r.GET("/notices", handler.ListNotices)
	r.DELETE("/notices/:notice_id", handler.DeleteNotice)
	return r
}

func TestCreateNoticeBroadcastsToDepartment(t *testing.T) {
	noticeRepo := new(mocks.NoticeRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	notifRepo := new(mocks.NotificationRepositoryMock)
	pusher := new(mocks.InboxPusherMock)
	dispatcher := notify.NewDispatcher(notifRepo, userRepo, pusher, 2, 1)
	handler := NewNoticeHandler(noticeRepo, userRepo, dispatcher)
	router := setupNoticeRouter(handler, "dean")

	userRepo.On("GetUser", mock.Anything, "dean").Return(models.User{ID: "dean", DisplayName: "Dean"}, nil).Once()
	noticeRepo.On("Create", mock.Anything, mock.AnythingOfType("models.Notice")).
		Return(models.Notice{ID: "nt1", Title: "Exam schedule", DepartmentFrom: "CSE"}, nil).Once()
	userRepo.On("ListRecipients", mock.Anything, "CSE").Return([]models.User{{ID: "u1"}, {ID: "u2"}}, nil).Once()
	notifRepo.On("Create", mock.Anything, mock.AnythingOfType("models.Notification")).
		Return(models.Notification{ID: "n", Type: models.NotifyNewNotice}, nil)
	pusher.On("PushNotification", mock.AnythingOfType("models.Notification")).Return()

	body := bytes.NewBufferString(`{"title":"Exam schedule","content":"See attached","department_from":"CSE"}`)
	req := httptest.NewRequest(http.MethodPost, "/notices", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Broadcast notify.Report `json:"broadcast"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, 2, resp.Broadcast.Delivered)
	require.Empty(t, resp.Broadcast.Failed)
}

func TestCreateNoticeReportsPartialFailure(t *testing.T) {
	noticeRepo := new(mocks.NoticeRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	notifRepo := new(mocks.NotificationRepositoryMock)
	pusher := new(mocks.InboxPusherMock)
	dispatcher := notify.NewDispatcher(notifRepo, userRepo, pusher, 1, 1)
	handler := NewNoticeHandler(noticeRepo, userRepo, dispatcher)
	router := setupNoticeRouter(handler, "dean")

	userRepo.On("GetUser", mock.Anything, "dean").Return(models.User{ID: "dean"}, nil).Once()
	noticeRepo.On("Create", mock.Anything, mock.AnythingOfType("models.Notice")).
		Return(models.Notice{ID: "nt2", DepartmentFrom: models.DepartmentAll}, nil).Once()
	userRepo.On("ListRecipients", mock.Anything, models.DepartmentAll).Return([]models.User{{ID: "ok"}, {ID: "bad"}}, nil).Once()
	notifRepo.On("Create", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
		return n.RecipientID == "ok"
	})).Return(models.Notification{ID: "n"}, nil).Once()
	notifRepo.On("Create", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
		return n.RecipientID == "bad"
	})).Return(models.Notification{}, assert.AnError).Once()
	pusher.On("PushNotification", mock.AnythingOfType("models.Notification")).Return()

	body := bytes.NewBufferString(`{"title":"Holiday","content":"Campus closed"}`)
	req := httptest.NewRequest(http.MethodPost, "/notices", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Broadcast notify.Report `json:"broadcast"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, 1, resp.Broadcast.Delivered)
	require.Equal(t, []string{"bad"}, resp.Broadcast.Failed)
}

func TestDeleteNoticeAuthorOnly(t *testing.T) {
	noticeRepo := new(mocks.NoticeRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	dispatcher := notify.NewDispatcher(new(mocks.NotificationRepositoryMock), userRepo, new(mocks.InboxPusherMock), 1, 1)
	handler := NewNoticeHandler(noticeRepo, userRepo, dispatcher)
	router := setupNoticeRouter(handler, "mallory")

	noticeRepo.On("Get", mock.Anything, "nt1").Return(models.Notice{ID: "nt1", CreatedBy: "dean"}, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/notices/nt1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	noticeRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
