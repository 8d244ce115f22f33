package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mentorlink/mentorlink-api/internal/dto"
	"github.com/mentorlink/mentorlink-api/internal/models"
	"github.com/mentorlink/mentorlink-api/internal/repository"
)

func openServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.MenteeLearningSkill{},
		&models.MentoringRequest{},
		&models.Session{},
		&models.Notification{},
		&models.Goal{},
		&models.GoalMilestone{},
		&models.GoalActivity{},
	))
	return db
}

func floatPointer(v float64) *float64 {
	return &v
}

func TestMatchingServiceRanksByWeightedScore(t *testing.T) {
	db := openServiceDB(t)

	mentee := models.User{
		ID:           "mentee-1",
		Name:         "Mia",
		Email:        "mia@example.com",
		Role:         models.RoleMentee,
		Department:   "Computer Science",
		Availability: datatypes.NewJSONSlice([]string{"Monday", "Wednesday"}),
	}
	require.NoError(t, db.Create(&mentee).Error)

	mentors := []models.User{
		{
			ID:           "mentor-a",
			Name:         "Alan",
			Email:        "alan@example.com",
			Role:         models.RoleMentor,
			Department:   "Computer Science",
			Skills:       datatypes.NewJSONSlice([]string{"Go", "Kubernetes"}),
			Availability: datatypes.NewJSONSlice([]string{"Monday"}),
			Rating:       floatPointer(4.5),
		},
		{
			ID:         "mentor-b",
			Name:       "Bea",
			Email:      "bea@example.com",
			Role:       models.RoleMentor,
			Department: "Biology",
			Skills:     datatypes.NewJSONSlice([]string{"Python"}),
		},
		{
			ID:           "mentor-c",
			Name:         "Cleo",
			Email:        "cleo@example.com",
			Role:         models.RoleMentor,
			Department:   "Computer Engineering",
			Skills:       datatypes.NewJSONSlice([]string{"go", "Docker"}),
			Availability: datatypes.NewJSONSlice([]string{"Monday", "Wednesday"}),
			Rating:       floatPointer(5),
		},
	}
	for i := range mentors {
		require.NoError(t, db.Create(&mentors[i]).Error)
	}

	for _, skill := range []string{"Go", "Docker"} {
		require.NoError(t, db.Create(&models.MenteeLearningSkill{
			MenteeID:  mentee.ID,
			SkillName: skill,
			Priority:  models.SkillPriorityMedium,
		}).Error)
	}

	svc := NewMatchingService(
		repository.NewUserRepository(db),
		repository.NewLearningSkillRepository(db),
		nil, time.Minute, zerolog.Nop(),
	)

	response, err := svc.RankMentors(context.Background(), mentee.ID)
	require.NoError(t, err)
	require.Len(t, response.Matches, 2, "zero-score mentors must be dropped")

	// Full skill + availability overlap, leading department token, top rating.
	require.Equal(t, "mentor-c", response.Matches[0].MentorID)
	require.InDelta(t, 0.9, response.Matches[0].Score, 0.0001)
	require.ElementsMatch(t, []string{"go", "docker"}, response.Matches[0].MatchedSkills)

	// Half skill overlap, half availability, exact department, rating 4.5.
	require.Equal(t, "mentor-a", response.Matches[1].MentorID)
	require.InDelta(t, 0.64, response.Matches[1].Score, 0.0001)
	require.Equal(t, []string{"go"}, response.Matches[1].MatchedSkills)
}

func TestMatchingServiceAvailabilityTokensAreExact(t *testing.T) {
	db := openServiceDB(t)

	mentee := models.User{
		ID:           "mentee-exact",
		Name:         "Mona",
		Email:        "mona@example.com",
		Role:         models.RoleMentee,
		Availability: datatypes.NewJSONSlice([]string{"Monday_09_10"}),
	}
	require.NoError(t, db.Create(&mentee).Error)

	// Same slot differing only in case: skills fold, availability must not.
	mentor := models.User{
		ID:           "mentor-exact",
		Name:         "Milo",
		Email:        "milo@example.com",
		Role:         models.RoleMentor,
		Skills:       datatypes.NewJSONSlice([]string{"Go"}),
		Availability: datatypes.NewJSONSlice([]string{"monday_09_10"}),
	}
	require.NoError(t, db.Create(&mentor).Error)

	require.NoError(t, db.Create(&models.MenteeLearningSkill{
		MenteeID:  mentee.ID,
		SkillName: "Go",
		Priority:  models.SkillPriorityMedium,
	}).Error)

	svc := NewMatchingService(
		repository.NewUserRepository(db),
		repository.NewLearningSkillRepository(db),
		nil, time.Minute, zerolog.Nop(),
	)

	response, err := svc.RankMentors(context.Background(), mentee.ID)
	require.NoError(t, err)
	require.Len(t, response.Matches, 1)

	// Full skill overlap only; the availability component contributes nothing.
	require.InDelta(t, 0.4, response.Matches[0].Score, 0.0001)
	require.Equal(t, []string{"go"}, response.Matches[0].MatchedSkills)
}

func TestMatchingServiceNoDesiredSkills(t *testing.T) {
	db := openServiceDB(t)

	mentee := models.User{ID: "mentee-2", Name: "Ned", Email: "ned@example.com", Role: models.RoleMentee}
	require.NoError(t, db.Create(&mentee).Error)

	svc := NewMatchingService(
		repository.NewUserRepository(db),
		repository.NewLearningSkillRepository(db),
		nil, time.Minute, zerolog.Nop(),
	)

	response, err := svc.RankMentors(context.Background(), mentee.ID)
	require.NoError(t, err)
	require.Empty(t, response.Matches)
}

func TestMatchingServiceMenteeNotFound(t *testing.T) {
	db := openServiceDB(t)

	mentor := models.User{ID: "mentor-x", Name: "Max", Email: "max@example.com", Role: models.RoleMentor}
	require.NoError(t, db.Create(&mentor).Error)

	svc := NewMatchingService(
		repository.NewUserRepository(db),
		repository.NewLearningSkillRepository(db),
		nil, time.Minute, zerolog.Nop(),
	)

	_, err := svc.RankMentors(context.Background(), "missing")
	require.ErrorIs(t, err, ErrMenteeNotFound)

	// A mentor id must not pass the role check either.
	_, err = svc.RankMentors(context.Background(), mentor.ID)
	require.ErrorIs(t, err, ErrMenteeNotFound)
}

func TestMatchingServiceCaching(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	db := openServiceDB(t)

	mentee := models.User{ID: "mentee-3", Name: "Cara", Email: "cara@example.com", Role: models.RoleMentee}
	require.NoError(t, db.Create(&mentee).Error)
	mentor := models.User{
		ID:     "mentor-d",
		Name:   "Dana",
		Email:  "dana@example.com",
		Role:   models.RoleMentor,
		Skills: datatypes.NewJSONSlice([]string{"Go"}),
	}
	require.NoError(t, db.Create(&mentor).Error)
	require.NoError(t, db.Create(&models.MenteeLearningSkill{
		MenteeID: mentee.ID, SkillName: "Go", Priority: models.SkillPriorityHigh,
	}).Error)

	svc := NewMatchingService(
		repository.NewUserRepository(db),
		repository.NewLearningSkillRepository(db),
		redisClient, time.Minute, zerolog.Nop(),
	)

	ctx := context.Background()
	first, err := svc.RankMentors(ctx, mentee.ID)
	require.NoError(t, err)
	require.False(t, first.CacheHit)
	require.Len(t, first.Matches, 1)

	// The second call must come from the cache even after the data changed.
	require.NoError(t, db.Model(&mentor).Update("name", "Renamed").Error)
	second, err := svc.RankMentors(ctx, mentee.ID)
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Equal(t, first.Matches, second.Matches)

	svc.InvalidateAll(ctx)
	third, err := svc.RankMentors(ctx, mentee.ID)
	require.NoError(t, err)
	require.False(t, third.CacheHit)
	require.Equal(t, "Renamed", third.Matches[0].Name)
}

func TestMatchingServiceCacheSeed(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	db := openServiceDB(t)

	svc := NewMatchingService(
		repository.NewUserRepository(db),
		repository.NewLearningSkillRepository(db),
		redisClient, time.Minute, zerolog.Nop(),
	)

	cached := dto.MatchListResponse{Matches: []dto.MentorMatch{{MentorID: "mentor-z", Score: 0.5}}}
	payload, err := json.Marshal(cached)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, redisClient.Set(ctx, "matching:mentee:seeded", payload, time.Minute).Err())

	response, err := svc.RankMentors(ctx, "seeded")
	require.NoError(t, err)
	require.True(t, response.CacheHit)
	require.Equal(t, cached.Matches, response.Matches)
}
