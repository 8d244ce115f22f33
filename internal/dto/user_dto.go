package dto

import (
	"time"

	"github.com/mentorlink/mentorlink-api/internal/models"
)

// RegisterRequest is the payload to create a new account.
type RegisterRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=255"`
	Email      string `json:"email" validate:"required,email,max=255"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
	Role       string `json:"role" validate:"required,oneof=mentee mentor admin"`
	Department string `json:"department" validate:"omitempty,max=128"`
}

// LoginRequest carries account credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse bundles the issued token with the authenticated profile.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse is the public view of a user, never including the password hash.
type UserResponse struct {
	ID           string    `json:"user_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	Department   string    `json:"department"`
	Skills       []string  `json:"skills"`
	Availability []string  `json:"availability"`
	Rating       *float64  `json:"rating"`
	Bio          string    `json:"bio"`
	Avatar       string    `json:"avatar"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUserResponse converts a user model into its public DTO.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
		Department:   user.Department,
		Skills:       append([]string(nil), user.Skills...),
		Availability: append([]string(nil), user.Availability...),
		Rating:       user.Rating,
		Bio:          user.Bio,
		Avatar:       user.Avatar,
		CreatedAt:    user.CreatedAt,
	}
}

// UserSummary carries the display fields joined onto requests and sessions.
type UserSummary struct {
	ID         string `json:"user_id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Avatar     string `json:"avatar"`
	Department string `json:"department"`
}

// NewUserSummary extracts the display fields of a user.
func NewUserSummary(user models.User) UserSummary {
	return UserSummary{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Avatar:     user.Avatar,
		Department: user.Department,
	}
}

// ProfileUpdateRequest mutates the mentoring attributes of a profile.
// Skills and availability replace the stored lists wholesale.
type ProfileUpdateRequest struct {
	Skills       []string `json:"skills" validate:"required,dive,max=128"`
	Availability []string `json:"availability" validate:"required,dive,max=64"`
	Department   string   `json:"department" validate:"omitempty,max=128"`
	Bio          string   `json:"bio" validate:"omitempty,max=4000"`
	Avatar       string   `json:"avatar" validate:"omitempty,max=2048"`
}

// LearningSkillCreateRequest adds one desired skill for a mentee.
type LearningSkillCreateRequest struct {
	MenteeID  string `json:"mentee_id" validate:"required,max=64"`
	SkillName string `json:"skill_name" validate:"required,min=1,max=128"`
	Priority  string `json:"priority" validate:"omitempty,oneof=Low Medium High"`
}

// LearningSkillResponse is the serialized desired-skill entry.
type LearningSkillResponse struct {
	ID        uint      `json:"id"`
	MenteeID  string    `json:"mentee_id"`
	SkillName string    `json:"skill_name"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
}

// NewLearningSkillResponse converts the model into a DTO.
func NewLearningSkillResponse(skill models.MenteeLearningSkill) LearningSkillResponse {
	return LearningSkillResponse{
		ID:        skill.ID,
		MenteeID:  skill.MenteeID,
		SkillName: skill.SkillName,
		Priority:  skill.Priority,
		CreatedAt: skill.CreatedAt,
	}
}

// NewLearningSkillResponseSlice converts a slice of models into DTOs.
func NewLearningSkillResponseSlice(skills []models.MenteeLearningSkill) []LearningSkillResponse {
	out := make([]LearningSkillResponse, 0, len(skills))
	for _, skill := range skills {
		out = append(out, NewLearningSkillResponse(skill))
	}
	return out
}
