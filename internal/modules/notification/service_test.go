package notification

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

/* ==================== MOCKS ==================== */

type MockPusher struct {
	mock.Mock
}

func (m *MockPusher) Send(userID int64, event string, payload any) error {
	args := m.Called(userID, event, payload)
	return args.Error(0)
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func setupTestService(t *testing.T, pusher Pusher) *Service {
	t.Helper()
	repo := setupTestRepo(t)
	return NewService(repo, pusher, testLogger())
}

/* ==================== CREATE ==================== */

func TestCreateValidation(t *testing.T) {
	pusher := new(MockPusher)
	svc := setupTestService(t, pusher)
	ctx := context.Background()

	cases := []CreateNotificationRequest{
		{UserID: 0, Type: "Fine", Title: "t", Message: "m"},
		{UserID: 5, Type: "", Title: "t", Message: "m"},
		{UserID: 5, Type: "Fine", Title: "  ", Message: "m"},
		{UserID: 5, Type: "Fine", Title: "t", Message: ""},
	}
	for _, req := range cases {
		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, ErrValidation)
	}

	// Nothing was written, nothing was pushed.
	counts, err := svc.Counts(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(0), counts.Total)
	pusher.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateWritesThenPushes(t *testing.T) {
	pusher := new(MockPusher)
	pusher.On("Send", int64(5), EventNotify, mock.Anything).Return(nil)
	svc := setupTestService(t, pusher)
	ctx := context.Background()

	data := `{"fineId":42}`
	dto, err := svc.Create(ctx, CreateNotificationRequest{
		UserID:   5,
		Type:     "Fine",
		Title:    "Phiếu phạt mới",
		Message:  "Bạn có phiếu phạt mới cho xe 30A-123.45.",
		DataJSON: &data,
	})
	require.NoError(t, err)
	assert.False(t, dto.IsRead)
	assert.NotZero(t, dto.ID)

	counts, err := svc.Counts(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Unread)

	pusher.AssertCalled(t, "Send", int64(5), EventNotify, mock.Anything)
	sent := pusher.Calls[0].Arguments.Get(2).(notifyPayload)
	assert.Equal(t, dto.ID, sent.Notification.ID)
	assert.Equal(t, int64(1), sent.Counts.Unread)
}

func TestCreateSurvivesPushFailure(t *testing.T) {
	pusher := new(MockPusher)
	pusher.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("transport down"))
	svc := setupTestService(t, pusher)

	dto, err := svc.Create(context.Background(), CreateNotificationRequest{
		UserID:  5,
		Type:    "Fine",
		Title:   "Phiếu phạt mới",
		Message: "m",
	})
	require.NoError(t, err, "push failure must be invisible to the producer")
	require.NotNil(t, dto)

	// The durable record is there regardless.
	counts, err := svc.Counts(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Total)
}

/* ==================== LIST / PAGING ==================== */

func TestListClampsPaging(t *testing.T) {
	pusher := new(MockPusher)
	pusher.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc := setupTestService(t, pusher)
	ctx := context.Background()

	for i := 0; i < 120; i++ {
		_, err := svc.Create(ctx, CreateNotificationRequest{
			UserID:  1,
			Type:    "Fine",
			Title:   fmt.Sprintf("t%d", i),
			Message: "m",
		})
		require.NoError(t, err)
	}

	// pageSize=500 clamps to 100.
	list, err := svc.List(ctx, 1, false, 1, 500)
	require.NoError(t, err)
	assert.Len(t, list, 100)

	// page=0 clamps to 1, pageSize=0 defaults to 20.
	list, err = svc.List(ctx, 1, false, 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 20)

	// Second page picks up where the first left off.
	first, err := svc.List(ctx, 1, false, 1, 50)
	require.NoError(t, err)
	second, err := svc.List(ctx, 1, false, 2, 50)
	require.NoError(t, err)
	require.Len(t, second, 50)
	assert.Greater(t, first[49].ID, second[0].ID)
}

func TestListIsEmptyNotNil(t *testing.T) {
	svc := setupTestService(t, new(MockPusher))

	list, err := svc.List(context.Background(), 404, false, 1, 20)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Len(t, list, 0)
}

/* ==================== READ-STATE TRANSITIONS ==================== */

func TestMarkReadPushesCountsOnlyOnFlip(t *testing.T) {
	pusher := new(MockPusher)
	pusher.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc := setupTestService(t, pusher)
	ctx := context.Background()

	dto, err := svc.Create(ctx, CreateNotificationRequest{UserID: 7, Type: "Fine", Title: "t", Message: "m"})
	require.NoError(t, err)

	found, err := svc.MarkRead(ctx, 7, dto.ID)
	require.NoError(t, err)
	assert.True(t, found)

	// Already read: still success, but no second counts push.
	found, err = svc.MarkRead(ctx, 7, dto.ID)
	require.NoError(t, err)
	assert.True(t, found)

	countsPushes := 0
	for _, call := range pusher.Calls {
		if call.Arguments.String(1) == EventNotifyCounts {
			countsPushes++
		}
	}
	assert.Equal(t, 1, countsPushes)

	// Foreign id reports not found even though the id exists.
	found, err = svc.MarkRead(ctx, 8, dto.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMarkAllReadReturnsFlippedCount(t *testing.T) {
	pusher := new(MockPusher)
	pusher.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc := setupTestService(t, pusher)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Create(ctx, CreateNotificationRequest{UserID: 3, Type: "Fine", Title: "t", Message: "m"})
		require.NoError(t, err)
	}

	n, err := svc.MarkAllRead(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = svc.MarkAllRead(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	// Second call flipped nothing, so exactly one counts push happened.
	countsPushes := 0
	for _, call := range pusher.Calls {
		if call.Arguments.String(1) == EventNotifyCounts {
			countsPushes++
		}
	}
	assert.Equal(t, 1, countsPushes)
}

func TestMarkReadMonotone(t *testing.T) {
	pusher := new(MockPusher)
	pusher.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc := setupTestService(t, pusher)
	ctx := context.Background()

	dto, err := svc.Create(ctx, CreateNotificationRequest{UserID: 6, Type: "Fine", Title: "t", Message: "m"})
	require.NoError(t, err)

	_, err = svc.MarkRead(ctx, 6, dto.ID)
	require.NoError(t, err)

	// Once read, no later query ever reports it unread again.
	for i := 0; i < 3; i++ {
		unread, err := svc.UnreadCount(ctx, 6)
		require.NoError(t, err)
		assert.Equal(t, int64(0), unread)

		list, err := svc.List(ctx, 6, false, 1, 20)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.True(t, list[0].IsRead)
	}
}

/* ==================== PRODUCER HELPERS ==================== */

type MockSink struct {
	mock.Mock
}

func (m *MockSink) Create(ctx context.Context, req CreateNotificationRequest) (*NotificationResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*NotificationResponse), args.Error(1)
}

func TestNotifyFineIssuedBuildsRequest(t *testing.T) {
	sink := new(MockSink)
	sink.On("Create", mock.Anything, mock.Anything).Return(&NotificationResponse{ID: 1}, nil)

	err := NotifyFineIssued(context.Background(), sink, 5, 42, "30A-123.45")
	require.NoError(t, err)

	req := sink.Calls[0].Arguments.Get(1).(CreateNotificationRequest)
	assert.Equal(t, int64(5), req.UserID)
	assert.Equal(t, TypeFine, req.Type)
	assert.Equal(t, "Phiếu phạt mới", req.Title)
	require.NotNil(t, req.DataJSON)
	assert.JSONEq(t, `{"fineId":42}`, *req.DataJSON)
}

func TestNotifyReportRepliedBuildsRequest(t *testing.T) {
	sink := new(MockSink)
	sink.On("Create", mock.Anything, mock.Anything).Return(&NotificationResponse{ID: 2}, nil)

	err := NotifyReportReplied(context.Background(), sink, 9, 17)
	require.NoError(t, err)

	req := sink.Calls[0].Arguments.Get(1).(CreateNotificationRequest)
	assert.Equal(t, TypeReport, req.Type)
	require.NotNil(t, req.DataJSON)
	assert.JSONEq(t, `{"reportId":17}`, *req.DataJSON)
}
