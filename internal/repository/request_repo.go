package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mentorlink/mentorlink-api/internal/models"
)

// Sentinel errors surfaced by the transactional request operations. The
// guards live here so the check and the write share one transaction.
var (
	// ErrDuplicatePending indicates a pending request already exists for the pair.
	ErrDuplicatePending = errors.New("pending request already exists for this pair")
	// ErrRequestTerminal indicates the request already reached a terminal state.
	ErrRequestTerminal = errors.New("request already in a terminal state")
)

// NotificationFactory composes the mailbox entry to persist alongside a
// request write, once the final row (with its ID) is known.
type NotificationFactory func(models.MentoringRequest) models.Notification

// RequestRepository handles persistence for mentoring requests.
type RequestRepository interface {
	CreatePending(ctx context.Context, request *models.MentoringRequest, notify NotificationFactory) error
	ListReceived(ctx context.Context, mentorID string) ([]models.MentoringRequest, []models.User, error)
	ListSent(ctx context.Context, menteeID string) ([]models.MentoringRequest, []models.User, error)
	Transition(ctx context.Context, id uint, status string, notify NotificationFactory) (models.MentoringRequest, error)
}

type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository constructs a repository backed by GORM.
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

// CreatePending inserts a new pending request and its mentor notification in
// one transaction. The duplicate check runs inside the same transaction so
// two concurrent creates for the same pair cannot both pass it.
func (r *requestRepository) CreatePending(ctx context.Context, request *models.MentoringRequest, notify NotificationFactory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.MentoringRequest{}).
			Where("mentee_id = ? AND mentor_id = ? AND status = ?",
				request.MenteeID, request.MentorID, models.RequestStatusPending).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicatePending
		}

		request.Status = models.RequestStatusPending
		if err := tx.Create(request).Error; err != nil {
			return err
		}

		if notify != nil {
			notification := notify(*request)
			if err := tx.Create(&notification).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *requestRepository) ListReceived(ctx context.Context, mentorID string) ([]models.MentoringRequest, []models.User, error) {
	var requests []models.MentoringRequest
	if err := r.db.WithContext(ctx).
		Where("mentor_id = ?", mentorID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, nil, err
	}

	counterparts, err := r.counterparts(ctx, requests, func(request models.MentoringRequest) string {
		return request.MenteeID
	})
	if err != nil {
		return nil, nil, err
	}

	return requests, counterparts, nil
}

func (r *requestRepository) ListSent(ctx context.Context, menteeID string) ([]models.MentoringRequest, []models.User, error) {
	var requests []models.MentoringRequest
	if err := r.db.WithContext(ctx).
		Where("mentee_id = ?", menteeID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, nil, err
	}

	counterparts, err := r.counterparts(ctx, requests, func(request models.MentoringRequest) string {
		return request.MentorID
	})
	if err != nil {
		return nil, nil, err
	}

	return requests, counterparts, nil
}

// counterparts resolves the opposite party's user row for every request,
// index-aligned with the input slice.
func (r *requestRepository) counterparts(ctx context.Context, requests []models.MentoringRequest, pick func(models.MentoringRequest) string) ([]models.User, error) {
	ids := make([]string, 0, len(requests))
	for _, request := range requests {
		ids = append(ids, pick(request))
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}

	byID := make(map[string]models.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}

	out := make([]models.User, len(requests))
	for i, request := range requests {
		out[i] = byID[pick(request)]
	}
	return out, nil
}

// Transition moves a pending request into a terminal state and persists the
// mentee-facing notification in the same transaction. Requests already in a
// terminal state are rejected.
func (r *requestRepository) Transition(ctx context.Context, id uint, status string, notify NotificationFactory) (models.MentoringRequest, error) {
	var request models.MentoringRequest

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&request, id).Error; err != nil {
			return err
		}
		if request.Terminal() {
			return ErrRequestTerminal
		}

		request.Status = status
		if err := tx.Save(&request).Error; err != nil {
			return err
		}

		if notify != nil {
			notification := notify(request)
			if err := tx.Create(&notification).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return models.MentoringRequest{}, err
	}

	return request, nil
}
