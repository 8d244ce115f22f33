package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mentorlink/mentorlink-api/internal/dto"
	"github.com/mentorlink/mentorlink-api/internal/models"
	"github.com/mentorlink/mentorlink-api/internal/repository"
)

var (
	// ErrGoalNotFound indicates the goal does not exist.
	ErrGoalNotFound = errors.New("goal not found")
	// ErrMilestoneNotFound indicates the milestone does not exist.
	ErrMilestoneNotFound = errors.New("milestone not found")
	// ErrEmptyGoalUpdate indicates a partial update with no usable field.
	ErrEmptyGoalUpdate = errors.New("no updatable goal fields provided")
)

// statusRank orders goal lists so work in flight comes first.
var statusRank = map[string]int{
	models.GoalStatusActive:    0,
	models.GoalStatusOnHold:    1,
	models.GoalStatusCompleted: 2,
	models.GoalStatusAbandoned: 3,
}

// GoalService drives SMART goal and milestone management.
type GoalService interface {
	Create(ctx context.Context, payload dto.GoalCreateRequest) (dto.GoalResponse, error)
	Get(ctx context.Context, id uint) (dto.GoalResponse, error)
	ListForUser(ctx context.Context, userID string, filter repository.GoalFilter) ([]dto.GoalResponse, error)
	Update(ctx context.Context, id uint, payload dto.GoalUpdateRequest) (dto.GoalResponse, error)
	Delete(ctx context.Context, id uint) error
	AddMilestone(ctx context.Context, goalID uint, payload dto.MilestoneCreateRequest) (dto.MilestoneResponse, error)
	UpdateMilestone(ctx context.Context, id uint, payload dto.MilestoneUpdateRequest) (dto.MilestoneResponse, error)
	ToggleMilestone(ctx context.Context, id uint) (dto.MilestoneResponse, error)
	DeleteMilestone(ctx context.Context, id uint) error
	Stats(ctx context.Context, userID string) (dto.GoalStatsResponse, error)
	ListActivity(ctx context.Context, goalID uint) ([]dto.GoalActivityResponse, error)
}

type goalService struct {
	goals     repository.GoalRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewGoalService builds the goal service.
func NewGoalService(goals repository.GoalRepository, validate *validator.Validate, logger zerolog.Logger) GoalService {
	return &goalService{
		goals:     goals,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "goal_service").Logger(),
		now:       time.Now,
	}
}

func (s *goalService) Create(ctx context.Context, payload dto.GoalCreateRequest) (dto.GoalResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GoalResponse{}, err
	}

	timeBound, err := time.Parse(time.RFC3339, payload.TimeBound)
	if err != nil {
		return dto.GoalResponse{}, fmt.Errorf("invalid time bound: %w", err)
	}

	goal := models.Goal{
		UserID:      payload.UserID,
		Title:       strings.TrimSpace(s.sanitizer.Sanitize(payload.Title)),
		Description: strings.TrimSpace(s.sanitizer.Sanitize(payload.Description)),
		Category:    strings.TrimSpace(payload.Category),
		Priority:    payload.Priority,
		Specific:    strings.TrimSpace(s.sanitizer.Sanitize(payload.Specific)),
		Measurable:  strings.TrimSpace(s.sanitizer.Sanitize(payload.Measurable)),
		Achievable:  strings.TrimSpace(s.sanitizer.Sanitize(payload.Achievable)),
		Relevant:    strings.TrimSpace(s.sanitizer.Sanitize(payload.Relevant)),
		TimeBound:   timeBound,
		Tags:        datatypes.NewJSONSlice(trimAll(payload.Tags)),
		Status:      models.GoalStatusActive,
	}
	if goal.Priority == "" {
		goal.Priority = "medium"
	}

	activity := models.GoalActivity{
		UserID:       payload.UserID,
		ActivityType: "created",
		Description:  fmt.Sprintf("Goal %q created", goal.Title),
	}

	if err := s.goals.Create(ctx, &goal, &activity); err != nil {
		return dto.GoalResponse{}, err
	}

	s.logger.Info().Uint("goal_id", goal.ID).Str("user_id", goal.UserID).Msg("goal created")

	return dto.NewGoalResponse(goal), nil
}

func (s *goalService) Get(ctx context.Context, id uint) (dto.GoalResponse, error) {
	goal, err := s.goals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GoalResponse{}, ErrGoalNotFound
		}
		return dto.GoalResponse{}, err
	}
	return dto.NewGoalResponse(goal), nil
}

func (s *goalService) ListForUser(ctx context.Context, userID string, filter repository.GoalFilter) ([]dto.GoalResponse, error) {
	goals, err := s.goals.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(goals, func(i, j int) bool {
		ri, rj := statusRank[goals[i].Status], statusRank[goals[j].Status]
		if ri != rj {
			return ri < rj
		}
		return goals[i].TimeBound.Before(goals[j].TimeBound)
	})

	return dto.NewGoalResponseSlice(goals), nil
}

func (s *goalService) Update(ctx context.Context, id uint, payload dto.GoalUpdateRequest) (dto.GoalResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GoalResponse{}, err
	}
	if payload.Empty() {
		return dto.GoalResponse{}, ErrEmptyGoalUpdate
	}

	goal, err := s.goals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GoalResponse{}, ErrGoalNotFound
		}
		return dto.GoalResponse{}, err
	}

	var changes []string
	if payload.Title != nil {
		goal.Title = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Title))
		changes = append(changes, "title")
	}
	if payload.Description != nil {
		goal.Description = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Description))
		changes = append(changes, "description")
	}
	if payload.Category != nil {
		goal.Category = strings.TrimSpace(*payload.Category)
		changes = append(changes, "category")
	}
	if payload.Priority != nil {
		goal.Priority = *payload.Priority
		changes = append(changes, "priority")
	}
	if payload.Specific != nil {
		goal.Specific = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Specific))
		changes = append(changes, "specific")
	}
	if payload.Measurable != nil {
		goal.Measurable = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Measurable))
		changes = append(changes, "measurable")
	}
	if payload.Achievable != nil {
		goal.Achievable = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Achievable))
		changes = append(changes, "achievable")
	}
	if payload.Relevant != nil {
		goal.Relevant = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Relevant))
		changes = append(changes, "relevant")
	}
	if payload.TimeBound != nil {
		timeBound, err := time.Parse(time.RFC3339, *payload.TimeBound)
		if err != nil {
			return dto.GoalResponse{}, fmt.Errorf("invalid time bound: %w", err)
		}
		goal.TimeBound = timeBound
		changes = append(changes, "time_bound")
	}
	if payload.Status != nil {
		goal.Status = *payload.Status
		changes = append(changes, "status")
	}
	if payload.Tags != nil {
		goal.Tags = datatypes.NewJSONSlice(trimAll(*payload.Tags))
		changes = append(changes, "tags")
	}

	activity := models.GoalActivity{
		UserID:       goal.UserID,
		ActivityType: "updated",
		Description:  fmt.Sprintf("Updated %s", strings.Join(changes, ", ")),
	}

	if err := s.goals.Update(ctx, &goal, &activity); err != nil {
		return dto.GoalResponse{}, err
	}

	s.logger.Info().Uint("goal_id", goal.ID).Strs("fields", changes).Msg("goal updated")

	return dto.NewGoalResponse(goal), nil
}

func (s *goalService) Delete(ctx context.Context, id uint) error {
	if err := s.goals.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGoalNotFound
		}
		return err
	}

	s.logger.Info().Uint("goal_id", id).Msg("goal deleted")
	return nil
}

func (s *goalService) AddMilestone(ctx context.Context, goalID uint, payload dto.MilestoneCreateRequest) (dto.MilestoneResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MilestoneResponse{}, err
	}

	if _, err := s.goals.GetByID(ctx, goalID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MilestoneResponse{}, ErrGoalNotFound
		}
		return dto.MilestoneResponse{}, err
	}

	milestone := models.GoalMilestone{
		GoalID:      goalID,
		Title:       strings.TrimSpace(s.sanitizer.Sanitize(payload.Title)),
		Description: strings.TrimSpace(s.sanitizer.Sanitize(payload.Description)),
		OrderIndex:  payload.OrderIndex,
	}
	if payload.DueDate != nil {
		dueDate, err := time.Parse(time.RFC3339, *payload.DueDate)
		if err != nil {
			return dto.MilestoneResponse{}, fmt.Errorf("invalid due date: %w", err)
		}
		milestone.DueDate = &dueDate
	}

	if err := s.goals.AddMilestone(ctx, &milestone); err != nil {
		return dto.MilestoneResponse{}, err
	}

	return dto.NewMilestoneResponse(milestone), nil
}

func (s *goalService) UpdateMilestone(ctx context.Context, id uint, payload dto.MilestoneUpdateRequest) (dto.MilestoneResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MilestoneResponse{}, err
	}

	milestone, err := s.goals.GetMilestone(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MilestoneResponse{}, ErrMilestoneNotFound
		}
		return dto.MilestoneResponse{}, err
	}

	if payload.Title != nil {
		milestone.Title = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Title))
	}
	if payload.Description != nil {
		milestone.Description = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Description))
	}
	if payload.DueDate != nil {
		dueDate, err := time.Parse(time.RFC3339, *payload.DueDate)
		if err != nil {
			return dto.MilestoneResponse{}, fmt.Errorf("invalid due date: %w", err)
		}
		milestone.DueDate = &dueDate
	}
	if payload.Completed != nil {
		s.setCompleted(&milestone, *payload.Completed)
	}

	if err := s.goals.SaveMilestone(ctx, &milestone); err != nil {
		return dto.MilestoneResponse{}, err
	}

	return dto.NewMilestoneResponse(milestone), nil
}

func (s *goalService) ToggleMilestone(ctx context.Context, id uint) (dto.MilestoneResponse, error) {
	milestone, err := s.goals.GetMilestone(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MilestoneResponse{}, ErrMilestoneNotFound
		}
		return dto.MilestoneResponse{}, err
	}

	s.setCompleted(&milestone, !milestone.Completed)

	if err := s.goals.SaveMilestone(ctx, &milestone); err != nil {
		return dto.MilestoneResponse{}, err
	}

	return dto.NewMilestoneResponse(milestone), nil
}

func (s *goalService) DeleteMilestone(ctx context.Context, id uint) error {
	if err := s.goals.DeleteMilestone(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMilestoneNotFound
		}
		return err
	}
	return nil
}

func (s *goalService) Stats(ctx context.Context, userID string) (dto.GoalStatsResponse, error) {
	stats, err := s.goals.Stats(ctx, userID)
	if err != nil {
		return dto.GoalStatsResponse{}, err
	}

	return dto.GoalStatsResponse{
		TotalGoals:     stats.TotalGoals,
		ActiveGoals:    stats.ActiveGoals,
		CompletedGoals: stats.CompletedGoals,
		OnHoldGoals:    stats.OnHoldGoals,
		AvgProgress:    stats.AvgProgress,
		OverdueGoals:   stats.OverdueGoals,
	}, nil
}

func (s *goalService) ListActivity(ctx context.Context, goalID uint) ([]dto.GoalActivityResponse, error) {
	if _, err := s.goals.GetByID(ctx, goalID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}

	entries, err := s.goals.ListActivity(ctx, goalID)
	if err != nil {
		return nil, err
	}

	return dto.NewGoalActivityResponseSlice(entries), nil
}

func (s *goalService) setCompleted(milestone *models.GoalMilestone, completed bool) {
	milestone.Completed = completed
	if completed {
		now := s.now()
		milestone.CompletedAt = &now
	} else {
		milestone.CompletedAt = nil
	}
}
