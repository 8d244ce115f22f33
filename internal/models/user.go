package models

import (
	"time"

	"gorm.io/datatypes"
)

// Roles a user can hold. The role is fixed at registration.
const (
	RoleMentee = "mentee"
	RoleMentor = "mentor"
	RoleAdmin  = "admin"
)

// User represents a platform account with its mentoring attributes.
// Skills holds the topics a mentor can teach; mentee learning interests
// live in MenteeLearningSkill. Availability holds opaque slot tokens of the
// form day_starttime_endtime.
type User struct {
	ID           string                      `gorm:"primaryKey;size:64" json:"user_id"`
	Name         string                      `gorm:"size:255;not null" json:"name"`
	Email        string                      `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string                      `gorm:"column:password;size:255;not null" json:"-"`
	Role         string                      `gorm:"size:16;index;not null" json:"role"`
	Department   string                      `gorm:"size:128" json:"department"`
	Skills       datatypes.JSONSlice[string] `json:"skills"`
	Availability datatypes.JSONSlice[string] `json:"availability"`
	Rating       *float64                    `json:"rating"`
	Bio          string                      `gorm:"type:text" json:"bio"`
	Avatar       string                      `gorm:"type:text" json:"avatar"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

// Learning skill priorities.
const (
	SkillPriorityLow    = "Low"
	SkillPriorityMedium = "Medium"
	SkillPriorityHigh   = "High"
)

// MenteeLearningSkill is a single skill a mentee wants to learn.
type MenteeLearningSkill struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MenteeID  string    `gorm:"size:64;index;not null" json:"mentee_id"`
	SkillName string    `gorm:"size:128;not null" json:"skill_name"`
	Priority  string    `gorm:"size:16;default:Medium" json:"priority"`
	CreatedAt time.Time `json:"created_at"`
}
