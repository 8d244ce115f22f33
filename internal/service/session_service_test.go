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

func newSessionService(db *gorm.DB) SessionService {
	return NewSessionService(
		repository.NewSessionRepository(db),
		repository.NewUserRepository(db),
		nil,
		nil,
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)
}

func createTestSession(t *testing.T, svc SessionService, mentee, mentor models.User) dto.SessionResponse {
	t.Helper()
	response, err := svc.Create(context.Background(), dto.SessionCreateRequest{
		MentorID:      mentor.ID,
		MenteeID:      mentee.ID,
		Topic:         "Go Basics",
		ScheduledDate: time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
	})
	require.NoError(t, err)
	return response
}

func TestSessionServiceCreateDefaultsAndNotifies(t *testing.T) {
	db := openServiceDB(t)
	mentee, mentor := seedPair(t, db)
	svc := newSessionService(db)

	session := createTestSession(t, svc, mentee, mentor)
	require.Equal(t, models.SessionStatusScheduled, session.Status)
	require.Equal(t, 60, session.Duration)
	require.Equal(t, models.SessionModeOnline, session.Mode)

	var notifications []models.Notification
	require.NoError(t, db.Where("type = ?", models.NotificationSessionScheduled).Find(&notifications).Error)
	require.Len(t, notifications, 2, "both parties get a scheduling notification")

	recipients := []string{notifications[0].UserID, notifications[1].UserID}
	require.ElementsMatch(t, []string{mentee.ID, mentor.ID}, recipients)
	require.Contains(t, notifications[0].Message, "Go Basics")
}

func TestSessionServiceCreateValidation(t *testing.T) {
	db := openServiceDB(t)
	mentee, mentor := seedPair(t, db)
	svc := newSessionService(db)

	_, err := svc.Create(context.Background(), dto.SessionCreateRequest{
		MentorID: mentor.ID,
		MenteeID: mentee.ID,
		Topic:    "Missing date",
	})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), dto.SessionCreateRequest{
		MentorID:      mentor.ID,
		MenteeID:      mentee.ID,
		Topic:         "Bad date",
		ScheduledDate: "next tuesday",
	})
	require.ErrorContains(t, err, "invalid scheduled date")

	_, err = svc.Create(context.Background(), dto.SessionCreateRequest{
		MentorID:      "ghost",
		MenteeID:      mentee.ID,
		Topic:         "No mentor",
		ScheduledDate: time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
	})
	require.ErrorIs(t, err, ErrMentorNotFound)
}

func TestSessionServiceUpdateAllowList(t *testing.T) {
	db := openServiceDB(t)
	mentee, mentor := seedPair(t, db)
	svc := newSessionService(db)
	session := createTestSession(t, svc, mentee, mentor)

	_, err := svc.Update(context.Background(), session.ID, dto.SessionUpdateRequest{})
	require.ErrorIs(t, err, ErrEmptySessionUpdate)

	topic := "Advanced Go"
	notes := "Bring questions"
	updated, err := svc.Update(context.Background(), session.ID, dto.SessionUpdateRequest{
		Topic:       &topic,
		MentorNotes: &notes,
	})
	require.NoError(t, err)
	require.Equal(t, "Advanced Go", updated.Topic)
	require.Equal(t, "Bring questions", updated.MentorNotes)
	require.Equal(t, models.SessionStatusScheduled, updated.Status, "update never changes status")

	_, err = svc.Update(context.Background(), 999, dto.SessionUpdateRequest{Topic: &topic})
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionServiceCompleteRecomputesMentorRating(t *testing.T) {
	db := openServiceDB(t)
	mentee, mentor := seedPair(t, db)
	svc := newSessionService(db)

	ratings := []int{4, 5, 3}
	for _, rating := range ratings {
		session := createTestSession(t, svc, mentee, mentor)
		completed, err := svc.Complete(context.Background(), session.ID, dto.SessionCompleteRequest{
			Rating:   rating,
			Feedback: "good",
		})
		require.NoError(t, err)
		require.Equal(t, models.SessionStatusCompleted, completed.Status)
		require.NotNil(t, completed.Rating)
		require.Equal(t, rating, *completed.Rating)
	}

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", mentor.ID).Error)
	require.NotNil(t, user.Rating)
	require.InDelta(t, 4.0, *user.Rating, 0.001)
}

func TestSessionServiceCompleteGuards(t *testing.T) {
	db := openServiceDB(t)
	mentee, mentor := seedPair(t, db)
	svc := newSessionService(db)
	session := createTestSession(t, svc, mentee, mentor)

	_, err := svc.Complete(context.Background(), session.ID, dto.SessionCompleteRequest{Rating: 6})
	require.Error(t, err, "rating above 5 must fail validation")

	_, err = svc.Complete(context.Background(), 999, dto.SessionCompleteRequest{Rating: 4})
	require.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.Complete(context.Background(), session.ID, dto.SessionCompleteRequest{Rating: 4})
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), session.ID, dto.SessionCompleteRequest{Rating: 5})
	require.ErrorIs(t, err, ErrSessionResolved)
}

func TestSessionServiceCancelAppendsReason(t *testing.T) {
	db := openServiceDB(t)
	mentee, mentor := seedPair(t, db)
	svc := newSessionService(db)

	session := createTestSession(t, svc, mentee, mentor)
	desc := "Weekly catch-up"
	_, err := svc.Update(context.Background(), session.ID, dto.SessionUpdateRequest{Description: &desc})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), session.ID, dto.SessionCancelRequest{Reason: "Mentor unavailable"})
	require.NoError(t, err)
	require.Equal(t, models.SessionStatusCancelled, cancelled.Status)
	require.Equal(t, "Weekly catch-up [Cancelled: Mentor unavailable]", cancelled.Description)

	var notifications []models.Notification
	require.NoError(t, db.Where("type = ?", models.NotificationSessionCancelled).Find(&notifications).Error)
	require.Len(t, notifications, 2)

	_, err = svc.Cancel(context.Background(), session.ID, dto.SessionCancelRequest{})
	require.ErrorIs(t, err, ErrSessionCancelled)
}

func TestSessionServiceCancelDefaultReason(t *testing.T) {
	db := openServiceDB(t)
	mentee, mentor := seedPair(t, db)
	svc := newSessionService(db)
	session := createTestSession(t, svc, mentee, mentor)

	cancelled, err := svc.Cancel(context.Background(), session.ID, dto.SessionCancelRequest{})
	require.NoError(t, err)
	require.Equal(t, "Cancelled by user", cancelled.Description)

	completed := createTestSession(t, svc, mentee, mentor)
	_, err = svc.Complete(context.Background(), completed.ID, dto.SessionCompleteRequest{Rating: 5})
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), completed.ID, dto.SessionCancelRequest{})
	require.ErrorIs(t, err, ErrSessionResolved)
}

func TestSessionServiceStats(t *testing.T) {
	db := openServiceDB(t)
	mentee, mentor := seedPair(t, db)
	svc := newSessionService(db)

	upcoming := createTestSession(t, svc, mentee, mentor)
	_ = upcoming

	done := createTestSession(t, svc, mentee, mentor)
	_, err := svc.Complete(context.Background(), done.ID, dto.SessionCompleteRequest{Rating: 5})
	require.NoError(t, err)

	dropped := createTestSession(t, svc, mentee, mentor)
	_, err = svc.Cancel(context.Background(), dropped.ID, dto.SessionCancelRequest{})
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background(), mentor.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, stats.UpcomingCount)
	require.EqualValues(t, 1, stats.CompletedCount)
	require.EqualValues(t, 3, stats.TotalSessions)
	require.NotNil(t, stats.AvgRating)
	require.InDelta(t, 5.0, *stats.AvgRating, 0.001)
}

func TestSessionServiceGetJoinsParties(t *testing.T) {
	db := openServiceDB(t)
	mentee, mentor := seedPair(t, db)
	svc := newSessionService(db)
	session := createTestSession(t, svc, mentee, mentor)

	fetched, err := svc.Get(context.Background(), session.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.Mentor)
	require.NotNil(t, fetched.Mentee)
	require.Equal(t, mentor.Name, fetched.Mentor.Name)
	require.Equal(t, mentee.Name, fetched.Mentee.Name)

	_, err = svc.Get(context.Background(), 999)
	require.ErrorIs(t, err, ErrSessionNotFound)

	listed, err := svc.ListForUser(context.Background(), mentee.ID, models.SessionStatusScheduled)
	require.NoError(t, err)
	require.Len(t, listed, 1)
}
