package dto

import (
	"time"

	"github.com/mentorlink/mentorlink-api/internal/models"
)

// GoalCreateRequest is the payload to create a SMART goal. TimeBound is
// RFC3339.
type GoalCreateRequest struct {
	UserID      string   `json:"user_id" validate:"required,max=64"`
	Title       string   `json:"title" validate:"required,min=1,max=255"`
	Description string   `json:"description" validate:"omitempty,max=8000"`
	Category    string   `json:"category" validate:"required,max=64"`
	Priority    string   `json:"priority" validate:"omitempty,oneof=low medium high"`
	Specific    string   `json:"specific" validate:"omitempty,max=4000"`
	Measurable  string   `json:"measurable" validate:"omitempty,max=4000"`
	Achievable  string   `json:"achievable" validate:"omitempty,max=4000"`
	Relevant    string   `json:"relevant" validate:"omitempty,max=4000"`
	TimeBound   string   `json:"time_bound" validate:"required"`
	Tags        []string `json:"tags" validate:"omitempty,dive,max=64"`
}

// GoalUpdateRequest mutates allow-listed goal fields.
type GoalUpdateRequest struct {
	Title       *string   `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string   `json:"description" validate:"omitempty,max=8000"`
	Category    *string   `json:"category" validate:"omitempty,max=64"`
	Priority    *string   `json:"priority" validate:"omitempty,oneof=low medium high"`
	Specific    *string   `json:"specific" validate:"omitempty,max=4000"`
	Measurable  *string   `json:"measurable" validate:"omitempty,max=4000"`
	Achievable  *string   `json:"achievable" validate:"omitempty,max=4000"`
	Relevant    *string   `json:"relevant" validate:"omitempty,max=4000"`
	TimeBound   *string   `json:"time_bound"`
	Status      *string   `json:"status" validate:"omitempty,oneof=active on_hold completed abandoned"`
	Tags        *[]string `json:"tags" validate:"omitempty,dive,max=64"`
}

// Empty reports whether the update carries no allow-listed field.
func (r GoalUpdateRequest) Empty() bool {
	return r.Title == nil && r.Description == nil && r.Category == nil &&
		r.Priority == nil && r.Specific == nil && r.Measurable == nil &&
		r.Achievable == nil && r.Relevant == nil && r.TimeBound == nil &&
		r.Status == nil && r.Tags == nil
}

// MilestoneCreateRequest adds a milestone to a goal.
type MilestoneCreateRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=255"`
	Description string  `json:"description" validate:"omitempty,max=4000"`
	DueDate     *string `json:"due_date"`
	OrderIndex  int     `json:"order_index" validate:"omitempty,min=0"`
}

// MilestoneUpdateRequest mutates a milestone.
type MilestoneUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=4000"`
	DueDate     *string `json:"due_date"`
	Completed   *bool   `json:"completed"`
}

// GoalResponse is the serialized goal, with milestones when preloaded.
type GoalResponse struct {
	ID                  uint                `json:"goal_id"`
	UserID              string              `json:"user_id"`
	Title               string              `json:"title"`
	Description         string              `json:"description"`
	Category            string              `json:"category"`
	Priority            string              `json:"priority"`
	Specific            string              `json:"specific"`
	Measurable          string              `json:"measurable"`
	Achievable          string              `json:"achievable"`
	Relevant            string              `json:"relevant"`
	TimeBound           time.Time           `json:"time_bound"`
	Tags                []string            `json:"tags"`
	Status              string              `json:"status"`
	Progress            int                 `json:"progress"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
	TotalMilestones     int                 `json:"total_milestones"`
	CompletedMilestones int                 `json:"completed_milestones"`
	Milestones          []MilestoneResponse `json:"milestones,omitempty"`
}

// MilestoneResponse is the serialized milestone.
type MilestoneResponse struct {
	ID          uint       `json:"milestone_id"`
	GoalID      uint       `json:"goal_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
	OrderIndex  int        `json:"order_index"`
	CreatedAt   time.Time  `json:"created_at"`
}

// GoalStatsResponse aggregates a user's goals.
type GoalStatsResponse struct {
	TotalGoals     int64 `json:"total_goals"`
	ActiveGoals    int64 `json:"active_goals"`
	CompletedGoals int64 `json:"completed_goals"`
	OnHoldGoals    int64 `json:"on_hold_goals"`
	AvgProgress    int   `json:"avg_progress"`
	OverdueGoals   int64 `json:"overdue_goals"`
}

// GoalActivityResponse is one audit entry for a goal.
type GoalActivityResponse struct {
	ID           uint      `json:"activity_id"`
	GoalID       uint      `json:"goal_id"`
	UserID       string    `json:"user_id"`
	UserName     string    `json:"user_name,omitempty"`
	ActivityType string    `json:"activity_type"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewGoalResponse converts a goal model into a DTO, deriving milestone
// counters when milestones are preloaded.
func NewGoalResponse(goal models.Goal) GoalResponse {
	response := GoalResponse{
		ID:          goal.ID,
		UserID:      goal.UserID,
		Title:       goal.Title,
		Description: goal.Description,
		Category:    goal.Category,
		Priority:    goal.Priority,
		Specific:    goal.Specific,
		Measurable:  goal.Measurable,
		Achievable:  goal.Achievable,
		Relevant:    goal.Relevant,
		TimeBound:   goal.TimeBound,
		Tags:        append([]string(nil), goal.Tags...),
		Status:      goal.Status,
		Progress:    goal.Progress,
		CreatedAt:   goal.CreatedAt,
		UpdatedAt:   goal.UpdatedAt,
	}

	if len(goal.Milestones) > 0 {
		milestones := make([]MilestoneResponse, 0, len(goal.Milestones))
		for _, milestone := range goal.Milestones {
			milestones = append(milestones, NewMilestoneResponse(milestone))
			if milestone.Completed {
				response.CompletedMilestones++
			}
		}
		response.Milestones = milestones
		response.TotalMilestones = len(milestones)
	}

	return response
}

// NewGoalResponseSlice converts a slice of goals into DTOs.
func NewGoalResponseSlice(goals []models.Goal) []GoalResponse {
	out := make([]GoalResponse, 0, len(goals))
	for _, goal := range goals {
		out = append(out, NewGoalResponse(goal))
	}
	return out
}

// NewMilestoneResponse converts a milestone model into a DTO.
func NewMilestoneResponse(milestone models.GoalMilestone) MilestoneResponse {
	return MilestoneResponse{
		ID:          milestone.ID,
		GoalID:      milestone.GoalID,
		Title:       milestone.Title,
		Description: milestone.Description,
		DueDate:     milestone.DueDate,
		Completed:   milestone.Completed,
		CompletedAt: milestone.CompletedAt,
		OrderIndex:  milestone.OrderIndex,
		CreatedAt:   milestone.CreatedAt,
	}
}

// NewGoalActivityResponseSlice converts audit entries into DTOs.
func NewGoalActivityResponseSlice(items []models.GoalActivity) []GoalActivityResponse {
	out := make([]GoalActivityResponse, 0, len(items))
	for _, item := range items {
		out = append(out, GoalActivityResponse{
			ID:           item.ID,
			GoalID:       item.GoalID,
			UserID:       item.UserID,
			ActivityType: item.ActivityType,
			Description:  item.Description,
			CreatedAt:    item.CreatedAt,
		})
	}
	return out
}
