package service

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/manara-platform/manara-api/internal/dto"
	"github.com/manara-platform/manara-api/internal/models"
	"github.com/manara-platform/manara-api/internal/repository"
)

type notificationRepoStub struct {
	created  []models.Notification
	notified []string
	listErr  error
	batchErr error
}

func (n *notificationRepoStub) Create(ctx context.Context, notification *models.Notification) error {
	n.created = append(n.created, *notification)
	return nil
}

func (n *notificationRepoStub) CreateBatch(ctx context.Context, notifications []models.Notification) (int64, error) {
	if n.batchErr != nil {
		return 0, n.batchErr
	}
	n.created = append(n.created, notifications...)
	return int64(len(notifications)), nil
}

func (n *notificationRepoStub) ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	return n.created, nil
}

func (n *notificationRepoStub) MarkRead(ctx context.Context, id uint, userID string) (models.Notification, error) {
	return models.Notification{ID: id, Read: true}, nil
}

func (n *notificationRepoStub) ListNotifiedUserIDs(ctx context.Context, title string, since time.Time) ([]string, error) {
	if n.listErr != nil {
		return nil, n.listErr
	}
	return n.notified, nil
}

type dispatcherStub struct {
	dispatched []dto.NotificationResponse
}

func (d *dispatcherStub) Dispatch(ctx context.Context, notification dto.NotificationResponse) {
	d.dispatched = append(d.dispatched, notification)
}

func TestExpiryRunNotifiesEachStudentOnce(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	subscriptions := &subscriptionRepoStub{expiring: []repository.ExpiringSubscription{
		{SubscriptionID: 1, StudentID: "u1", StudentName: "سارة", SubjectID: 5, SubjectName: "الرياضيات", EndDate: now.Add(6*24*time.Hour + time.Hour)},
		{SubscriptionID: 2, StudentID: "u1", StudentName: "سارة", SubjectID: 6, SubjectName: "الفيزياء", EndDate: now.Add(6*24*time.Hour + 2*time.Hour)},
		{SubscriptionID: 3, StudentID: "u2", StudentName: "أحمد", SubjectID: 5, SubjectName: "الرياضيات", EndDate: now.Add(6*24*time.Hour + 3*time.Hour)},
	}}
	notifications := &notificationRepoStub{}
	dispatcher := &dispatcherStub{}

	svc := NewExpiryService(subscriptions, notifications, dispatcher, testLogger(), fixedClock(now))

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, 3, result.SubscriptionsChecked)
	require.Equal(t, 2, result.NotificationsSent)

	require.Len(t, notifications.created, 2)
	for _, notification := range notifications.created {
		require.Equal(t, ExpiryNoticeTitle, notification.Title)
		require.NotNil(t, notification.UserID)
	}
	require.Len(t, dispatcher.dispatched, 2)
}

func TestExpiryRunSkipsAlreadyNotifiedToday(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	subscriptions := &subscriptionRepoStub{expiring: []repository.ExpiringSubscription{
		{SubscriptionID: 1, StudentID: "u1", StudentName: "سارة", SubjectID: 5, SubjectName: "الرياضيات", EndDate: now.Add(6*24*time.Hour + time.Hour)},
	}}
	notifications := &notificationRepoStub{notified: []string{"u1"}}

	svc := NewExpiryService(subscriptions, notifications, nil, testLogger(), fixedClock(now))

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, 0, result.NotificationsSent)
	require.Empty(t, notifications.created)
}

func TestExpiryRunPublishesAlertsCrossNode(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer redisClient.Close()

	pubsub := redisClient.Subscribe(context.Background(), "manara:notifications")
	defer pubsub.Close()
	_, err = pubsub.Receive(context.Background())
	require.NoError(t, err)

	dispatcher := newNotificationService(&notificationRepoStub{}, redisClient)

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	subscriptions := &subscriptionRepoStub{expiring: []repository.ExpiringSubscription{
		{SubscriptionID: 1, StudentID: "u1", StudentName: "سارة", SubjectID: 5, SubjectName: "الرياضيات", EndDate: now.Add(6*24*time.Hour + time.Hour)},
	}}

	svc := NewExpiryService(subscriptions, &notificationRepoStub{}, dispatcher, testLogger(), fixedClock(now))

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, result.NotificationsSent)

	// Stream clients on other nodes hear about the expiry alert too.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	msg, err := pubsub.ReceiveMessage(ctx)
	require.NoError(t, err)
	require.Contains(t, msg.Payload, ExpiryNoticeTitle)
	require.Contains(t, msg.Payload, "الرياضيات")
}

func TestExpiryRunAbortsOnScanError(t *testing.T) {
	subscriptions := &subscriptionRepoStub{err: errors.New("db down")}
	notifications := &notificationRepoStub{}

	svc := NewExpiryService(subscriptions, notifications, nil, testLogger(), time.Now)

	result, err := svc.Run(context.Background())
	require.Error(t, err)
	require.False(t, result.Success)
	require.Empty(t, notifications.created)
}

func TestExpiryRunAbortsOnInsertError(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	subscriptions := &subscriptionRepoStub{expiring: []repository.ExpiringSubscription{
		{SubscriptionID: 1, StudentID: "u1", StudentName: "سارة", SubjectID: 5, SubjectName: "الرياضيات", EndDate: now.Add(6*24*time.Hour + time.Hour)},
	}}
	notifications := &notificationRepoStub{batchErr: errors.New("insert failed")}

	svc := NewExpiryService(subscriptions, notifications, nil, testLogger(), fixedClock(now))

	result, err := svc.Run(context.Background())
	require.Error(t, err)
	require.False(t, result.Success)
}

func TestRenderExpiryMessageMentionsSubjectAndDate(t *testing.T) {
	row := repository.ExpiringSubscription{
		StudentID:   "u1",
		StudentName: "سارة",
		SubjectName: "الرياضيات",
		EndDate:     time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC),
	}

	message := renderExpiryMessage(row)
	require.Contains(t, message, "الرياضيات")
	require.Contains(t, message, "2026-03-17")
}
