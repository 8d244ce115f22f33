package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/mentorlink/mentorlink-api/internal/dto"
	"github.com/mentorlink/mentorlink-api/internal/models"
	"github.com/mentorlink/mentorlink-api/internal/observability"
	"github.com/mentorlink/mentorlink-api/internal/repository"
)

var (
	// ErrSessionNotFound indicates the session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionResolved indicates the session is already completed.
	ErrSessionResolved = errors.New("session already completed")
	// ErrSessionCancelled indicates the session was already cancelled.
	ErrSessionCancelled = errors.New("session already cancelled")
	// ErrEmptySessionUpdate indicates a partial update with no usable field.
	ErrEmptySessionUpdate = errors.New("no updatable session fields provided")
)

// MatchCacheInvalidator drops cached mentor rankings after the data that
// feeds them changes, such as a rating recompute or a new learning skill.
type MatchCacheInvalidator interface {
	InvalidateMentee(ctx context.Context, menteeID string)
	InvalidateAll(ctx context.Context)
}

// SessionService drives the mentoring session lifecycle.
type SessionService interface {
	Create(ctx context.Context, payload dto.SessionCreateRequest) (dto.SessionResponse, error)
	Get(ctx context.Context, id uint) (dto.SessionResponse, error)
	ListForUser(ctx context.Context, userID, status string) ([]dto.SessionResponse, error)
	Update(ctx context.Context, id uint, payload dto.SessionUpdateRequest) (dto.SessionResponse, error)
	Complete(ctx context.Context, id uint, payload dto.SessionCompleteRequest) (dto.SessionResponse, error)
	Cancel(ctx context.Context, id uint, payload dto.SessionCancelRequest) (dto.SessionResponse, error)
	Stats(ctx context.Context, userID string) (dto.SessionStatsResponse, error)
}

type sessionService struct {
	sessions   repository.SessionRepository
	users      repository.UserRepository
	dispatcher NotificationDispatcher
	matchCache MatchCacheInvalidator
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
}

// NewSessionService builds the session lifecycle service.
func NewSessionService(sessions repository.SessionRepository, users repository.UserRepository, dispatcher NotificationDispatcher, matchCache MatchCacheInvalidator, validate *validator.Validate, logger zerolog.Logger) SessionService {
	return &sessionService{
		sessions:   sessions,
		users:      users,
		dispatcher: dispatcher,
		matchCache: matchCache,
		validator:  validate,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "session_service").Logger(),
	}
}

func (s *sessionService) Create(ctx context.Context, payload dto.SessionCreateRequest) (dto.SessionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SessionResponse{}, err
	}

	scheduledDate, err := time.Parse(time.RFC3339, payload.ScheduledDate)
	if err != nil {
		return dto.SessionResponse{}, fmt.Errorf("invalid scheduled date: %w", err)
	}

	if _, err := s.users.GetByIDAndRole(ctx, payload.MentorID, models.RoleMentor); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SessionResponse{}, ErrMentorNotFound
		}
		return dto.SessionResponse{}, err
	}
	if _, err := s.users.GetByIDAndRole(ctx, payload.MenteeID, models.RoleMentee); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SessionResponse{}, ErrMenteeNotFound
		}
		return dto.SessionResponse{}, err
	}

	session := models.Session{
		MentorID:      payload.MentorID,
		MenteeID:      payload.MenteeID,
		Topic:         strings.TrimSpace(s.sanitizer.Sanitize(payload.Topic)),
		ScheduledDate: scheduledDate,
		Duration:      payload.Duration,
		Mode:          payload.Mode,
		Location:      payload.Location,
		Status:        models.SessionStatusScheduled,
	}
	if session.Duration == 0 {
		session.Duration = 60
	}
	if session.Mode == "" {
		session.Mode = models.SessionModeOnline
	}

	var notifications []models.Notification
	err = s.sessions.Create(ctx, &session, func(created models.Session) []models.Notification {
		notifications = scheduledNotifications(created)
		return notifications
	})
	if err != nil {
		return dto.SessionResponse{}, err
	}

	for _, notification := range notifications {
		s.dispatch(ctx, notification)
	}
	observability.SessionTransitions().WithLabelValues(models.SessionStatusScheduled).Inc()

	s.logger.Info().
		Uint("session_id", session.ID).
		Str("mentor_id", session.MentorID).
		Str("mentee_id", session.MenteeID).
		Time("scheduled_date", session.ScheduledDate).
		Msg("session scheduled")

	return dto.NewSessionResponse(session), nil
}

func (s *sessionService) Get(ctx context.Context, id uint) (dto.SessionResponse, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SessionResponse{}, ErrSessionNotFound
		}
		return dto.SessionResponse{}, err
	}

	response := dto.NewSessionResponse(session)
	if mentor, err := s.users.GetByID(ctx, session.MentorID); err == nil {
		summary := dto.NewUserSummary(mentor)
		response.Mentor = &summary
	}
	if mentee, err := s.users.GetByID(ctx, session.MenteeID); err == nil {
		summary := dto.NewUserSummary(mentee)
		response.Mentee = &summary
	}

	return response, nil
}

func (s *sessionService) ListForUser(ctx context.Context, userID, status string) ([]dto.SessionResponse, error) {
	sessions, err := s.sessions.ListForUser(ctx, userID, repository.SessionFilter{Status: status})
	if err != nil {
		return nil, err
	}
	return dto.NewSessionResponseSlice(sessions), nil
}

func (s *sessionService) Update(ctx context.Context, id uint, payload dto.SessionUpdateRequest) (dto.SessionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SessionResponse{}, err
	}
	if payload.Empty() {
		return dto.SessionResponse{}, ErrEmptySessionUpdate
	}

	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SessionResponse{}, ErrSessionNotFound
		}
		return dto.SessionResponse{}, err
	}

	if payload.Topic != nil {
		session.Topic = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Topic))
	}
	if payload.ScheduledDate != nil {
		scheduledDate, err := time.Parse(time.RFC3339, *payload.ScheduledDate)
		if err != nil {
			return dto.SessionResponse{}, fmt.Errorf("invalid scheduled date: %w", err)
		}
		session.ScheduledDate = scheduledDate
	}
	if payload.Duration != nil {
		session.Duration = *payload.Duration
	}
	if payload.Mode != nil {
		session.Mode = *payload.Mode
	}
	if payload.Location != nil {
		session.Location = *payload.Location
	}
	if payload.MentorNotes != nil {
		session.MentorNotes = strings.TrimSpace(s.sanitizer.Sanitize(*payload.MentorNotes))
	}
	if payload.MenteeNotes != nil {
		session.MenteeNotes = strings.TrimSpace(s.sanitizer.Sanitize(*payload.MenteeNotes))
	}
	if payload.Description != nil {
		session.Description = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Description))
	}

	if err := s.sessions.Update(ctx, &session); err != nil {
		return dto.SessionResponse{}, err
	}

	s.logger.Info().Uint("session_id", session.ID).Msg("session updated")

	return dto.NewSessionResponse(session), nil
}

func (s *sessionService) Complete(ctx context.Context, id uint, payload dto.SessionCompleteRequest) (dto.SessionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SessionResponse{}, err
	}

	session, err := s.sessions.Complete(ctx, id, payload.Rating, strings.TrimSpace(s.sanitizer.Sanitize(payload.Feedback)))
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return dto.SessionResponse{}, ErrSessionNotFound
		case errors.Is(err, repository.ErrSessionCompleted):
			return dto.SessionResponse{}, ErrSessionResolved
		case errors.Is(err, repository.ErrSessionCancelled):
			return dto.SessionResponse{}, ErrSessionCancelled
		}
		return dto.SessionResponse{}, err
	}

	// The mentor's aggregate rating changed, so every cached ranking that
	// includes this mentor is stale.
	if s.matchCache != nil {
		s.matchCache.InvalidateAll(ctx)
	}
	observability.SessionTransitions().WithLabelValues(models.SessionStatusCompleted).Inc()

	s.logger.Info().
		Uint("session_id", session.ID).
		Int("rating", payload.Rating).
		Msg("session completed")

	return dto.NewSessionResponse(session), nil
}

func (s *sessionService) Cancel(ctx context.Context, id uint, payload dto.SessionCancelRequest) (dto.SessionResponse, error) {
	reason := strings.TrimSpace(s.sanitizer.Sanitize(payload.Reason))
	if reason == "" {
		reason = "Cancelled by user"
	}

	var notifications []models.Notification
	session, err := s.sessions.Cancel(ctx, id, reason, func(cancelled models.Session) []models.Notification {
		notifications = cancelledNotifications(cancelled)
		return notifications
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return dto.SessionResponse{}, ErrSessionNotFound
		case errors.Is(err, repository.ErrSessionCompleted):
			return dto.SessionResponse{}, ErrSessionResolved
		case errors.Is(err, repository.ErrSessionCancelled):
			return dto.SessionResponse{}, ErrSessionCancelled
		}
		return dto.SessionResponse{}, err
	}

	for _, notification := range notifications {
		s.dispatch(ctx, notification)
	}
	observability.SessionTransitions().WithLabelValues(models.SessionStatusCancelled).Inc()

	s.logger.Info().
		Uint("session_id", session.ID).
		Str("reason", reason).
		Msg("session cancelled")

	return dto.NewSessionResponse(session), nil
}

func (s *sessionService) Stats(ctx context.Context, userID string) (dto.SessionStatsResponse, error) {
	stats, err := s.sessions.Stats(ctx, userID)
	if err != nil {
		return dto.SessionStatsResponse{}, err
	}

	return dto.SessionStatsResponse{
		UpcomingCount:  stats.UpcomingCount,
		CompletedCount: stats.CompletedCount,
		AvgRating:      stats.AvgRating,
		TotalSessions:  stats.TotalSessions,
	}, nil
}

func (s *sessionService) dispatch(ctx context.Context, notification models.Notification) {
	if s.dispatcher == nil || notification.UserID == "" {
		return
	}
	s.dispatcher.Dispatch(ctx, notification)
}

func scheduledNotifications(session models.Session) []models.Notification {
	message := fmt.Sprintf("A session %q has been scheduled for %s", session.Topic, session.ScheduledDate.Format("2006-01-02 15:04"))
	link := fmt.Sprintf("/sessions/%d", session.ID)

	return []models.Notification{
		{
			UserID:  session.MentorID,
			Type:    models.NotificationSessionScheduled,
			Title:   "New Session Scheduled",
			Message: message,
			Link:    link,
		},
		{
			UserID:  session.MenteeID,
			Type:    models.NotificationSessionScheduled,
			Title:   "New Session Scheduled",
			Message: message,
			Link:    link,
		},
	}
}

func cancelledNotifications(session models.Session) []models.Notification {
	message := fmt.Sprintf("The session %q has been cancelled", session.Topic)

	return []models.Notification{
		{
			UserID:  session.MentorID,
			Type:    models.NotificationSessionCancelled,
			Title:   "Session Cancelled",
			Message: message,
		},
		{
			UserID:  session.MenteeID,
			Type:    models.NotificationSessionCancelled,
			Title:   "Session Cancelled",
			Message: message,
		},
	}
}
