package repository

import (
	"context"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/mentorlink/mentorlink-api/internal/models"
)

// GoalFilter narrows goal list queries.
type GoalFilter struct {
	Status   string
	Category string
}

// GoalStats aggregates a user's goals.
type GoalStats struct {
	TotalGoals     int64
	ActiveGoals    int64
	CompletedGoals int64
	OnHoldGoals    int64
	AvgProgress    int
	OverdueGoals   int64
}

// GoalRepository handles persistence for goals, milestones and the goal
// activity log.
type GoalRepository interface {
	Create(ctx context.Context, goal *models.Goal, activity *models.GoalActivity) error
	GetByID(ctx context.Context, id uint) (models.Goal, error)
	ListByUser(ctx context.Context, userID string, filter GoalFilter) ([]models.Goal, error)
	Update(ctx context.Context, goal *models.Goal, activity *models.GoalActivity) error
	Delete(ctx context.Context, id uint) error
	AddMilestone(ctx context.Context, milestone *models.GoalMilestone) error
	GetMilestone(ctx context.Context, id uint) (models.GoalMilestone, error)
	SaveMilestone(ctx context.Context, milestone *models.GoalMilestone) error
	DeleteMilestone(ctx context.Context, id uint) error
	Stats(ctx context.Context, userID string) (GoalStats, error)
	ListActivity(ctx context.Context, goalID uint) ([]models.GoalActivity, error)
}

type goalRepository struct {
	db *gorm.DB
}

// NewGoalRepository constructs a repository backed by GORM.
func NewGoalRepository(db *gorm.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) Create(ctx context.Context, goal *models.Goal, activity *models.GoalActivity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(goal).Error; err != nil {
			return err
		}
		if activity != nil {
			activity.GoalID = goal.ID
			if err := tx.Create(activity).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *goalRepository) GetByID(ctx context.Context, id uint) (models.Goal, error) {
	var goal models.Goal
	if err := r.db.WithContext(ctx).
		Preload("Milestones", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC, created_at ASC")
		}).
		First(&goal, id).Error; err != nil {
		return models.Goal{}, err
	}
	return goal, nil
}

func (r *goalRepository) ListByUser(ctx context.Context, userID string, filter GoalFilter) ([]models.Goal, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var goals []models.Goal
	if err := query.
		Preload("Milestones").
		Order("time_bound ASC").
		Find(&goals).Error; err != nil {
		return nil, err
	}
	return goals, nil
}

func (r *goalRepository) Update(ctx context.Context, goal *models.Goal, activity *models.GoalActivity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(goal).Error; err != nil {
			return err
		}
		if activity != nil {
			activity.GoalID = goal.ID
			if err := tx.Create(activity).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *goalRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Goal{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("goal_id = ?", id).Delete(&models.GoalMilestone{}).Error; err != nil {
			return err
		}
		return tx.Where("goal_id = ?", id).Delete(&models.GoalActivity{}).Error
	})
}

func (r *goalRepository) AddMilestone(ctx context.Context, milestone *models.GoalMilestone) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(milestone).Error; err != nil {
			return err
		}
		return recomputeProgress(tx, milestone.GoalID)
	})
}

func (r *goalRepository) GetMilestone(ctx context.Context, id uint) (models.GoalMilestone, error) {
	var milestone models.GoalMilestone
	if err := r.db.WithContext(ctx).First(&milestone, id).Error; err != nil {
		return models.GoalMilestone{}, err
	}
	return milestone, nil
}

func (r *goalRepository) SaveMilestone(ctx context.Context, milestone *models.GoalMilestone) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(milestone).Error; err != nil {
			return err
		}
		return recomputeProgress(tx, milestone.GoalID)
	})
}

func (r *goalRepository) DeleteMilestone(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var milestone models.GoalMilestone
		if err := tx.First(&milestone, id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.GoalMilestone{}, id).Error; err != nil {
			return err
		}
		return recomputeProgress(tx, milestone.GoalID)
	})
}

func (r *goalRepository) Stats(ctx context.Context, userID string) (GoalStats, error) {
	stats := GoalStats{}
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Goal{}).Where("user_id = ?", userID)
	}

	if err := base().Count(&stats.TotalGoals).Error; err != nil {
		return GoalStats{}, err
	}
	if err := base().Where("status = ?", models.GoalStatusActive).Count(&stats.ActiveGoals).Error; err != nil {
		return GoalStats{}, err
	}
	if err := base().Where("status = ?", models.GoalStatusCompleted).Count(&stats.CompletedGoals).Error; err != nil {
		return GoalStats{}, err
	}
	if err := base().Where("status = ?", models.GoalStatusOnHold).Count(&stats.OnHoldGoals).Error; err != nil {
		return GoalStats{}, err
	}
	if err := base().Where("status = ? AND time_bound < ?", models.GoalStatusActive, time.Now()).Count(&stats.OverdueGoals).Error; err != nil {
		return GoalStats{}, err
	}

	var avg *float64
	row := base().Where("status = ?", models.GoalStatusActive).Select("AVG(progress)").Row()
	if err := row.Scan(&avg); err != nil {
		return GoalStats{}, err
	}
	if avg != nil {
		stats.AvgProgress = int(math.Round(*avg))
	}

	return stats, nil
}

func (r *goalRepository) ListActivity(ctx context.Context, goalID uint) ([]models.GoalActivity, error) {
	var entries []models.GoalActivity
	if err := r.db.WithContext(ctx).
		Where("goal_id = ?", goalID).
		Order("created_at DESC").
		Limit(50).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// recomputeProgress derives the goal's progress from its milestone
// completion ratio inside the caller's transaction.
func recomputeProgress(tx *gorm.DB, goalID uint) error {
	var total, completed int64
	if err := tx.Model(&models.GoalMilestone{}).Where("goal_id = ?", goalID).Count(&total).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.GoalMilestone{}).Where("goal_id = ? AND completed = ?", goalID, true).Count(&completed).Error; err != nil {
		return err
	}

	progress := 0
	if total > 0 {
		progress = int(math.Round(float64(completed) / float64(total) * 100))
	}

	return tx.Model(&models.Goal{}).Where("id = ?", goalID).Update("progress", progress).Error
}
