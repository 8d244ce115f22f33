package models

import (
	"time"

	"gorm.io/datatypes"
)

// Goal statuses.
const (
	GoalStatusActive    = "active"
	GoalStatusOnHold    = "on_hold"
	GoalStatusCompleted = "completed"
	GoalStatusAbandoned = "abandoned"
)

// Goal is a SMART goal owned by a user. Progress is derived from the
// completion ratio of its milestones.
type Goal struct {
	ID          uint                        `gorm:"primaryKey" json:"goal_id"`
	UserID      string                      `gorm:"size:64;index;not null" json:"user_id"`
	Title       string                      `gorm:"size:255;not null" json:"title"`
	Description string                      `gorm:"type:text" json:"description"`
	Category    string                      `gorm:"size:64;not null" json:"category"`
	Priority    string                      `gorm:"size:16;default:medium" json:"priority"`
	Specific    string                      `gorm:"type:text" json:"specific"`
	Measurable  string                      `gorm:"type:text" json:"measurable"`
	Achievable  string                      `gorm:"type:text" json:"achievable"`
	Relevant    string                      `gorm:"type:text" json:"relevant"`
	TimeBound   time.Time                   `gorm:"not null" json:"time_bound"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Status      string                      `gorm:"size:16;index;default:active" json:"status"`
	Progress    int                         `gorm:"default:0" json:"progress"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
	Milestones  []GoalMilestone             `gorm:"foreignKey:GoalID" json:"milestones,omitempty"`
}

// GoalMilestone is a checkable step inside a goal.
type GoalMilestone struct {
	ID          uint       `gorm:"primaryKey" json:"milestone_id"`
	GoalID      uint       `gorm:"index;not null" json:"goal_id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
	OrderIndex  int        `gorm:"default:0" json:"order_index"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// GoalActivity is an append-only audit entry for goal changes.
type GoalActivity struct {
	ID           uint      `gorm:"primaryKey" json:"activity_id"`
	GoalID       uint      `gorm:"index;not null" json:"goal_id"`
	UserID       string    `gorm:"size:64;index;not null" json:"user_id"`
	ActivityType string    `gorm:"size:32;not null" json:"activity_type"`
	Description  string    `gorm:"type:text" json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}
