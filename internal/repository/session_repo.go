package repository

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"

	"github.com/mentorlink/mentorlink-api/internal/models"
)

// Sentinel errors for transactional session guards.
var (
	// ErrSessionCancelled indicates the session was already cancelled.
	ErrSessionCancelled = errors.New("session already cancelled")
	// ErrSessionCompleted indicates the session was already completed.
	ErrSessionCompleted = errors.New("session already completed")
)

// SessionNotificationFactory composes the mailbox entries to persist
// alongside a session write, once the final row is known.
type SessionNotificationFactory func(models.Session) []models.Notification

// SessionFilter narrows session list queries.
type SessionFilter struct {
	Status string
}

// SessionStats aggregates a user's sessions on both sides of the table.
type SessionStats struct {
	UpcomingCount  int64
	CompletedCount int64
	AvgRating      *float64
	TotalSessions  int64
}

// SessionRepository handles persistence for mentoring sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session, notify SessionNotificationFactory) error
	GetByID(ctx context.Context, id uint) (models.Session, error)
	ListForUser(ctx context.Context, userID string, filter SessionFilter) ([]models.Session, error)
	Update(ctx context.Context, session *models.Session) error
	Complete(ctx context.Context, id uint, rating int, feedback string) (models.Session, error)
	Cancel(ctx context.Context, id uint, reason string, notify SessionNotificationFactory) (models.Session, error)
	Stats(ctx context.Context, userID string) (SessionStats, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository constructs a repository backed by GORM.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// Create inserts the session and both participant notifications in one
// transaction so a failed mailbox write cannot leave the rows inconsistent.
func (r *sessionRepository) Create(ctx context.Context, session *models.Session, notify SessionNotificationFactory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session.Status = models.SessionStatusScheduled
		if err := tx.Create(session).Error; err != nil {
			return err
		}

		if notify != nil {
			for _, notification := range notify(*session) {
				notification := notification
				if err := tx.Create(&notification).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
}

func (r *sessionRepository) GetByID(ctx context.Context, id uint) (models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).First(&session, id).Error; err != nil {
		return models.Session{}, err
	}
	return session, nil
}

func (r *sessionRepository) ListForUser(ctx context.Context, userID string, filter SessionFilter) ([]models.Session, error) {
	query := r.db.WithContext(ctx).
		Where("mentor_id = ? OR mentee_id = ?", userID, userID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var sessions []models.Session
	if err := query.Order("scheduled_date DESC").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepository) Update(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Save(session).Error
}

// Complete marks the session completed and recomputes the mentor's aggregate
// rating over all rated sessions, in one transaction. The aggregate written
// to the user row is the value the matching engine reads.
func (r *sessionRepository) Complete(ctx context.Context, id uint, rating int, feedback string) (models.Session, error) {
	var session models.Session

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&session, id).Error; err != nil {
			return err
		}
		if err := guardNotTerminal(session); err != nil {
			return err
		}

		session.Status = models.SessionStatusCompleted
		session.Rating = &rating
		session.Feedback = feedback
		if err := tx.Save(&session).Error; err != nil {
			return err
		}

		var avg *float64
		row := tx.Model(&models.Session{}).
			Where("mentor_id = ? AND rating IS NOT NULL", session.MentorID).
			Select("AVG(rating)").
			Row()
		if err := row.Scan(&avg); err != nil {
			return err
		}
		if avg != nil {
			rounded := math.Round(*avg*100) / 100
			avg = &rounded
		}

		return tx.Model(&models.User{}).
			Where("id = ?", session.MentorID).
			Update("rating", avg).Error
	})
	if err != nil {
		return models.Session{}, err
	}

	return session, nil
}

// Cancel moves a scheduled session to cancelled, appends the reason to the
// description audit trail, and persists both participant notifications in
// the same transaction. Terminal sessions are rejected with distinct errors.
func (r *sessionRepository) Cancel(ctx context.Context, id uint, reason string, notify SessionNotificationFactory) (models.Session, error) {
	var session models.Session

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&session, id).Error; err != nil {
			return err
		}
		if err := guardNotTerminal(session); err != nil {
			return err
		}

		session.Status = models.SessionStatusCancelled
		if session.Description == "" {
			session.Description = reason
		} else {
			session.Description = fmt.Sprintf("%s [Cancelled: %s]", session.Description, reason)
		}
		if err := tx.Save(&session).Error; err != nil {
			return err
		}

		if notify != nil {
			for _, notification := range notify(session) {
				notification := notification
				if err := tx.Create(&notification).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return models.Session{}, err
	}

	return session, nil
}

func (r *sessionRepository) Stats(ctx context.Context, userID string) (SessionStats, error) {
	stats := SessionStats{}
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Model(&models.Session{}).
			Where("mentor_id = ? OR mentee_id = ?", userID, userID)
	}

	if err := base().Count(&stats.TotalSessions).Error; err != nil {
		return SessionStats{}, err
	}
	if err := base().Where("status = ?", models.SessionStatusScheduled).Count(&stats.UpcomingCount).Error; err != nil {
		return SessionStats{}, err
	}
	if err := base().Where("status = ?", models.SessionStatusCompleted).Count(&stats.CompletedCount).Error; err != nil {
		return SessionStats{}, err
	}

	var avg *float64
	row := base().Where("rating IS NOT NULL").Select("AVG(rating)").Row()
	if err := row.Scan(&avg); err != nil {
		return SessionStats{}, err
	}
	if avg != nil {
		rounded := math.Round(*avg*100) / 100
		stats.AvgRating = &rounded
	}

	return stats, nil
}

func guardNotTerminal(session models.Session) error {
	switch session.Status {
	case models.SessionStatusCancelled:
		return ErrSessionCancelled
	case models.SessionStatusCompleted:
		return ErrSessionCompleted
	default:
		return nil
	}
}
