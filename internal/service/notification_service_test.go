package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mentorlink/mentorlink-api/internal/dto"
	"github.com/mentorlink/mentorlink-api/internal/models"
	"github.com/mentorlink/mentorlink-api/internal/repository"
)

func newNotificationService(db *gorm.DB) NotificationService {
	return NewNotificationService(
		repository.NewNotificationRepository(db),
		nil, "", nil,
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)
}

func TestNotificationServicePublishPersistsAndBroadcasts(t *testing.T) {
	db := openServiceDB(t)
	svc := newNotificationService(db)

	stream, cancel := svc.Subscribe("user-1")
	defer cancel()

	published, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:  "user-1",
		Type:    models.NotificationRequestReceived,
		Title:   "New Mentoring Request",
		Message: "You have received a new mentoring request",
		Link:    "/requests/1",
	})
	require.NoError(t, err)
	require.NotZero(t, published.ID)
	require.False(t, published.Read)

	select {
	case received := <-stream:
		require.Equal(t, published.ID, received.ID)
		require.Equal(t, "/requests/1", received.Link)
	case <-time.After(time.Second):
		t.Fatal("expected notification on SSE stream")
	}

	var stored models.Notification
	require.NoError(t, db.First(&stored, published.ID).Error)
	require.Equal(t, "New Mentoring Request", stored.Title)
}

func TestNotificationServicePublishSanitizes(t *testing.T) {
	db := openServiceDB(t)
	svc := newNotificationService(db)

	published, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:  "user-1",
		Type:    "generic",
		Title:   "Hello",
		Message: "<script>alert(1)</script>ok",
	})
	require.NoError(t, err)
	require.Equal(t, "ok", published.Message)

	_, err = svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:  "user-1",
		Type:    "generic",
		Title:   "Empty",
		Message: "<script>only markup</script>",
	})
	require.Error(t, err, "message empty after sanitization is rejected")
}

func TestNotificationServiceDispatchSkipsPersistence(t *testing.T) {
	db := openServiceDB(t)
	svc := newNotificationService(db)

	stream, cancel := svc.Subscribe("user-2")
	defer cancel()

	svc.Dispatch(context.Background(), models.Notification{
		ID:      42,
		UserID:  "user-2",
		Type:    models.NotificationSessionScheduled,
		Title:   "New Session Scheduled",
		Message: "A session has been scheduled",
	})

	select {
	case received := <-stream:
		require.EqualValues(t, 42, received.ID)
	case <-time.After(time.Second):
		t.Fatal("expected dispatched notification on stream")
	}

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	require.Zero(t, count, "dispatch never writes rows")
}

func TestNotificationServiceMailbox(t *testing.T) {
	db := openServiceDB(t)
	svc := newNotificationService(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Publish(ctx, dto.NotificationCreateRequest{
			UserID:  "user-3",
			Type:    "generic",
			Title:   "Title",
			Message: "Message",
		})
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, "user-3", false)
	require.NoError(t, err)
	require.Len(t, all, 3)

	count, err := svc.UnreadCount(ctx, "user-3")
	require.NoError(t, err)
	require.EqualValues(t, 3, count)

	marked, err := svc.MarkRead(ctx, all[0].ID)
	require.NoError(t, err)
	require.True(t, marked.Read)

	unread, err := svc.List(ctx, "user-3", true)
	require.NoError(t, err)
	require.Len(t, unread, 2)

	affected, err := svc.MarkAllRead(ctx, "user-3")
	require.NoError(t, err)
	require.EqualValues(t, 2, affected)

	count, err = svc.UnreadCount(ctx, "user-3")
	require.NoError(t, err)
	require.Zero(t, count)

	require.NoError(t, svc.Delete(ctx, all[0].ID))
	require.ErrorIs(t, svc.Delete(ctx, all[0].ID), ErrNotificationNotFound)

	_, err = svc.MarkRead(ctx, 999)
	require.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestNotificationBrokerUnsubscribe(t *testing.T) {
	db := openServiceDB(t)
	svc := newNotificationService(db)

	stream, cancel := svc.Subscribe("user-4")
	cancel()

	_, open := <-stream
	require.False(t, open, "cancel closes the subscriber channel")
}
