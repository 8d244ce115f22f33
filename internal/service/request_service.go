package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

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
	// ErrRequestNotFound indicates the mentoring request does not exist.
	ErrRequestNotFound = errors.New("mentoring request not found")
	// ErrRequestPending indicates a pending request already exists for the pair.
	ErrRequestPending = errors.New("a pending request for this mentor already exists")
	// ErrRequestResolved indicates the request is already in a terminal state.
	ErrRequestResolved = errors.New("mentoring request already resolved")
	// ErrInvalidRequestStatus indicates an unsupported target status.
	ErrInvalidRequestStatus = errors.New("invalid request status")
	// ErrMentorNotFound indicates the mentor does not exist or the user is not a mentor.
	ErrMentorNotFound = errors.New("mentor not found")
)

// NotificationDispatcher pushes an already-persisted notification to live
// subscribers. Delivery is best-effort; the mailbox row is the source of truth.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, notification models.Notification)
}

// RequestService drives the mentoring request lifecycle.
type RequestService interface {
	Create(ctx context.Context, payload dto.RequestCreateRequest) (dto.RequestResponse, error)
	ListForUser(ctx context.Context, userID string) (dto.RequestListResponse, error)
	Transition(ctx context.Context, id uint, status string) (dto.RequestResponse, error)
	Cancel(ctx context.Context, id uint) (dto.RequestResponse, error)
}

type requestService struct {
	requests   repository.RequestRepository
	users      repository.UserRepository
	dispatcher NotificationDispatcher
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
}

// NewRequestService builds the request lifecycle service.
func NewRequestService(requests repository.RequestRepository, users repository.UserRepository, dispatcher NotificationDispatcher, validate *validator.Validate, logger zerolog.Logger) RequestService {
	return &requestService{
		requests:   requests,
		users:      users,
		dispatcher: dispatcher,
		validator:  validate,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "request_service").Logger(),
	}
}

func (s *requestService) Create(ctx context.Context, payload dto.RequestCreateRequest) (dto.RequestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.RequestResponse{}, err
	}

	if _, err := s.users.GetByIDAndRole(ctx, payload.MenteeID, models.RoleMentee); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RequestResponse{}, ErrMenteeNotFound
		}
		return dto.RequestResponse{}, err
	}

	mentor, err := s.users.GetByIDAndRole(ctx, payload.MentorID, models.RoleMentor)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RequestResponse{}, ErrMentorNotFound
		}
		return dto.RequestResponse{}, err
	}

	request := models.MentoringRequest{
		MenteeID: payload.MenteeID,
		MentorID: payload.MentorID,
		Message:  strings.TrimSpace(s.sanitizer.Sanitize(payload.Message)),
		Status:   models.RequestStatusPending,
	}

	var notification models.Notification
	err = s.requests.CreatePending(ctx, &request, func(created models.MentoringRequest) models.Notification {
		notification = models.Notification{
			UserID:  created.MentorID,
			Type:    models.NotificationRequestReceived,
			Title:   "New Mentoring Request",
			Message: "You have received a new mentoring request",
			Link:    fmt.Sprintf("/requests/%d", created.ID),
		}
		return notification
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicatePending) {
			return dto.RequestResponse{}, ErrRequestPending
		}
		return dto.RequestResponse{}, err
	}

	s.dispatch(ctx, notification)
	observability.RequestTransitions().WithLabelValues(models.RequestStatusPending).Inc()

	s.logger.Info().
		Uint("request_id", request.ID).
		Str("mentee_id", request.MenteeID).
		Str("mentor_id", mentor.ID).
		Msg("mentoring request created")

	return dto.NewRequestResponse(request), nil
}

func (s *requestService) ListForUser(ctx context.Context, userID string) (dto.RequestListResponse, error) {
	received, receivedUsers, err := s.requests.ListReceived(ctx, userID)
	if err != nil {
		return dto.RequestListResponse{}, err
	}

	sent, sentUsers, err := s.requests.ListSent(ctx, userID)
	if err != nil {
		return dto.RequestListResponse{}, err
	}

	return dto.RequestListResponse{
		Received: joinCounterparts(received, receivedUsers),
		Sent:     joinCounterparts(sent, sentUsers),
	}, nil
}

func (s *requestService) Transition(ctx context.Context, id uint, status string) (dto.RequestResponse, error) {
	switch status {
	case models.RequestStatusAccepted, models.RequestStatusDeclined, models.RequestStatusCancelled:
	default:
		return dto.RequestResponse{}, ErrInvalidRequestStatus
	}

	var notification models.Notification
	request, err := s.requests.Transition(ctx, id, status, func(updated models.MentoringRequest) models.Notification {
		notification = transitionNotification(updated)
		return notification
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return dto.RequestResponse{}, ErrRequestNotFound
		case errors.Is(err, repository.ErrRequestTerminal):
			return dto.RequestResponse{}, ErrRequestResolved
		}
		return dto.RequestResponse{}, err
	}

	s.dispatch(ctx, notification)
	observability.RequestTransitions().WithLabelValues(status).Inc()

	s.logger.Info().
		Uint("request_id", request.ID).
		Str("status", status).
		Msg("mentoring request transitioned")

	return dto.NewRequestResponse(request), nil
}

// Cancel retires the request without deleting its row so both parties keep
// their history.
func (s *requestService) Cancel(ctx context.Context, id uint) (dto.RequestResponse, error) {
	return s.Transition(ctx, id, models.RequestStatusCancelled)
}

func (s *requestService) dispatch(ctx context.Context, notification models.Notification) {
	if s.dispatcher == nil || notification.UserID == "" {
		return
	}
	s.dispatcher.Dispatch(ctx, notification)
}

func transitionNotification(request models.MentoringRequest) models.Notification {
	switch request.Status {
	case models.RequestStatusAccepted:
		return models.Notification{
			UserID:  request.MenteeID,
			Type:    models.NotificationRequestAccepted,
			Title:   "Request Accepted",
			Message: "Your mentoring request has been accepted!",
			Link:    fmt.Sprintf("/sessions/new?mentor=%s", request.MentorID),
		}
	case models.RequestStatusDeclined:
		return models.Notification{
			UserID:  request.MenteeID,
			Type:    models.NotificationRequestDeclined,
			Title:   "Request Declined",
			Message: "Your mentoring request was declined",
		}
	default:
		return models.Notification{
			UserID:  request.MentorID,
			Type:    models.NotificationRequestCancelled,
			Title:   "Request Cancelled",
			Message: "A mentoring request was cancelled by the mentee",
		}
	}
}

func joinCounterparts(requests []models.MentoringRequest, users []models.User) []dto.RequestResponse {
	responses := make([]dto.RequestResponse, 0, len(requests))
	for i, request := range requests {
		response := dto.NewRequestResponse(request)
		if i < len(users) && users[i].ID != "" {
			summary := dto.NewUserSummary(users[i])
			response.Counterpart = &summary
		}
		responses = append(responses, response)
	}
	return responses
}
