package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/mentorlink/mentorlink-api/internal/dto"
	"github.com/mentorlink/mentorlink-api/internal/models"
	"github.com/mentorlink/mentorlink-api/internal/repository"
)

var (
	// ErrAvatarTooLarge indicates the avatar exceeded the configured limit.
	ErrAvatarTooLarge = errors.New("avatar exceeds maximum allowed size")
	// ErrAvatarTypeNotAllowed indicates the detected MIME type is not an
	// accepted image format.
	ErrAvatarTypeNotAllowed = errors.New("avatar file type not allowed")
	// ErrSkillHasComma indicates a learning skill entry carried a comma.
	// Skills are added one at a time.
	ErrSkillHasComma = errors.New("skill name must be a single skill without commas")
	// ErrLearningSkillNotFound indicates the learning skill does not exist.
	ErrLearningSkillNotFound = errors.New("learning skill not found")
)

// AvatarStorage abstracts uploading avatar images and returning a URL.
type AvatarStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// ProfileService exposes profile reads and updates plus mentee learning
// skill management.
type ProfileService interface {
	GetUser(ctx context.Context, id string) (dto.UserResponse, error)
	UpdateProfile(ctx context.Context, id string, payload dto.ProfileUpdateRequest) (dto.UserResponse, error)
	UploadAvatar(ctx context.Context, id string, file *multipart.FileHeader) (dto.UserResponse, error)
	AddLearningSkill(ctx context.Context, payload dto.LearningSkillCreateRequest) (dto.LearningSkillResponse, error)
	ListLearningSkills(ctx context.Context, menteeID string) ([]dto.LearningSkillResponse, error)
	RemoveLearningSkill(ctx context.Context, id uint) error
}

type profileService struct {
	users      repository.UserRepository
	skills     repository.LearningSkillRepository
	storage    AvatarStorage
	matchCache MatchCacheInvalidator
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
	maxAvatar  int64
}

// NewProfileService builds the profile service.
func NewProfileService(users repository.UserRepository, skills repository.LearningSkillRepository, storage AvatarStorage, matchCache MatchCacheInvalidator, validate *validator.Validate, maxAvatarMB int, logger zerolog.Logger) ProfileService {
	if maxAvatarMB <= 0 {
		maxAvatarMB = 5
	}
	return &profileService{
		users:      users,
		skills:     skills,
		storage:    storage,
		matchCache: matchCache,
		validator:  validate,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "profile_service").Logger(),
		maxAvatar:  int64(maxAvatarMB) * 1024 * 1024,
	}
}

func (s *profileService) GetUser(ctx context.Context, id string) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *profileService) UpdateProfile(ctx context.Context, id string, payload dto.ProfileUpdateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	user.Skills = trimAll(payload.Skills)
	user.Availability = trimAll(payload.Availability)
	user.Department = strings.TrimSpace(payload.Department)
	user.Bio = strings.TrimSpace(s.sanitizer.Sanitize(payload.Bio))
	if payload.Avatar != "" {
		user.Avatar = payload.Avatar
	}

	if err := s.users.Update(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	// Mentor attributes feed the ranking inputs, so cached results are stale.
	if user.Role == models.RoleMentor && s.matchCache != nil {
		s.matchCache.InvalidateAll(ctx)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("profile updated")

	return dto.NewUserResponse(user), nil
}

func (s *profileService) UploadAvatar(ctx context.Context, id string, file *multipart.FileHeader) (dto.UserResponse, error) {
	if file == nil {
		return dto.UserResponse{}, errors.New("avatar file is required")
	}
	if file.Size > s.maxAvatar {
		return dto.UserResponse{}, ErrAvatarTooLarge
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	handle, err := file.Open()
	if err != nil {
		return dto.UserResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxAvatar+1)); err != nil {
		return dto.UserResponse{}, err
	}
	if int64(buf.Len()) > s.maxAvatar {
		return dto.UserResponse{}, ErrAvatarTooLarge
	}

	mime := mimetype.Detect(buf.Bytes())
	switch mime.String() {
	case "image/png", "image/jpeg", "image/webp":
	default:
		return dto.UserResponse{}, ErrAvatarTypeNotAllowed
	}

	name := fmt.Sprintf("avatar-%s%s", user.ID, mime.Extension())
	url, err := s.storage.Upload(ctx, name, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return dto.UserResponse{}, err
	}

	user.Avatar = url
	if err := s.users.Update(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("mime", mime.String()).Msg("avatar uploaded")

	return dto.NewUserResponse(user), nil
}

func (s *profileService) AddLearningSkill(ctx context.Context, payload dto.LearningSkillCreateRequest) (dto.LearningSkillResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LearningSkillResponse{}, err
	}

	name := strings.TrimSpace(s.sanitizer.Sanitize(payload.SkillName))
	if name == "" {
		return dto.LearningSkillResponse{}, errors.New("skill name is required")
	}
	if strings.Contains(name, ",") {
		return dto.LearningSkillResponse{}, ErrSkillHasComma
	}

	if _, err := s.users.GetByIDAndRole(ctx, payload.MenteeID, models.RoleMentee); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LearningSkillResponse{}, ErrMenteeNotFound
		}
		return dto.LearningSkillResponse{}, err
	}

	skill := models.MenteeLearningSkill{
		MenteeID:  payload.MenteeID,
		SkillName: name,
		Priority:  payload.Priority,
	}
	if skill.Priority == "" {
		skill.Priority = models.SkillPriorityMedium
	}

	if err := s.skills.Create(ctx, &skill); err != nil {
		return dto.LearningSkillResponse{}, err
	}

	if s.matchCache != nil {
		s.matchCache.InvalidateMentee(ctx, payload.MenteeID)
	}

	s.logger.Info().
		Str("mentee_id", skill.MenteeID).
		Str("skill", skill.SkillName).
		Msg("learning skill added")

	return dto.NewLearningSkillResponse(skill), nil
}

func (s *profileService) ListLearningSkills(ctx context.Context, menteeID string) ([]dto.LearningSkillResponse, error) {
	skills, err := s.skills.ListByMentee(ctx, menteeID)
	if err != nil {
		return nil, err
	}
	return dto.NewLearningSkillResponseSlice(skills), nil
}

func (s *profileService) RemoveLearningSkill(ctx context.Context, id uint) error {
	if err := s.skills.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLearningSkillNotFound
		}
		return err
	}
	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
