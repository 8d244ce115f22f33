package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/mentorlink/mentorlink-api/internal/dto"
	"github.com/mentorlink/mentorlink-api/internal/models"
	"github.com/mentorlink/mentorlink-api/internal/observability"
	"github.com/mentorlink/mentorlink-api/internal/repository"
)

// ErrMenteeNotFound indicates the mentee does not exist or the user is not a mentee.
var ErrMenteeNotFound = errors.New("mentee not found")

// Scoring weights for mentor ranking. Skill overlap dominates, then
// availability, department proximity and rating.
const (
	weightSkills       = 0.4
	weightAvailability = 0.3
	weightDepartment   = 0.2
	weightRating       = 0.1
)

const matchCacheKeyPrefix = "matching:mentee:"

// MatchingService ranks mentors for a mentee.
type MatchingService interface {
	RankMentors(ctx context.Context, menteeID string) (dto.MatchListResponse, error)
	InvalidateMentee(ctx context.Context, menteeID string)
	InvalidateAll(ctx context.Context)
}

type matchingService struct {
	users    repository.UserRepository
	skills   repository.LearningSkillRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewMatchingService builds the matching engine.
func NewMatchingService(users repository.UserRepository, skills repository.LearningSkillRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) MatchingService {
	return &matchingService{
		users:    users,
		skills:   skills,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "matching_service").Logger(),
		tracer:   otel.Tracer("github.com/mentorlink/mentorlink-api/internal/service/matching"),
	}
}

func (s *matchingService) RankMentors(ctx context.Context, menteeID string) (dto.MatchListResponse, error) {
	spanCtx, span := s.tracer.Start(ctx, "matching.rank_mentors", trace.WithAttributes(
		attribute.String("matching.mentee_id", menteeID),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		observability.MatchLatency().Observe(time.Since(start).Seconds())
	}()

	cacheKey := matchCacheKeyPrefix + menteeID
	if s.cache != nil {
		if cached, err := s.cache.Get(spanCtx, cacheKey).Result(); err == nil {
			var response dto.MatchListResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				observability.MatchRequests().WithLabelValues("hit").Inc()
				s.logger.Debug().Str("mentee_id", menteeID).Msg("match cache hit")
				response.CacheHit = true
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read match cache")
		}
	}

	mentee, err := s.users.GetByIDAndRole(spanCtx, menteeID, models.RoleMentee)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.MatchRequests().WithLabelValues("error").Inc()
			return dto.MatchListResponse{}, ErrMenteeNotFound
		}
		observability.MatchRequests().WithLabelValues("error").Inc()
		return dto.MatchListResponse{}, err
	}

	learning, err := s.skills.ListByMentee(spanCtx, menteeID)
	if err != nil {
		observability.MatchRequests().WithLabelValues("error").Inc()
		return dto.MatchListResponse{}, err
	}

	desired := normalizeSet(skillNames(learning))
	if len(desired) == 0 {
		observability.MatchRequests().WithLabelValues("miss").Inc()
		return dto.MatchListResponse{Matches: []dto.MentorMatch{}}, nil
	}

	mentors, err := s.users.ListByRole(spanCtx, models.RoleMentor)
	if err != nil {
		observability.MatchRequests().WithLabelValues("error").Inc()
		return dto.MatchListResponse{}, err
	}

	matches := rankMentors(mentee, desired, mentors)
	span.SetAttributes(attribute.Int("matching.candidates", len(matches)))

	response := dto.MatchListResponse{Matches: matches}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(spanCtx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store match cache")
			}
		}
	}

	observability.MatchRequests().WithLabelValues("miss").Inc()
	return response, nil
}

// InvalidateMentee drops the cached ranking for one mentee.
func (s *matchingService) InvalidateMentee(ctx context.Context, menteeID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, matchCacheKeyPrefix+menteeID).Err(); err != nil {
		s.logger.Warn().Err(err).Str("mentee_id", menteeID).Msg("failed to invalidate match cache")
	}
}

// InvalidateAll flushes every cached ranking. Used when mentor data changes
// in a way that affects everyone, such as a rating update.
func (s *matchingService) InvalidateAll(ctx context.Context) {
	if s.cache == nil {
		return
	}

	iter := s.cache.Scan(ctx, 0, matchCacheKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.cache.Del(ctx, iter.Val()).Err(); err != nil {
			s.logger.Warn().Err(err).Str("key", iter.Val()).Msg("failed to invalidate match cache key")
		}
	}
	if err := iter.Err(); err != nil {
		s.logger.Warn().Err(err).Msg("match cache scan failed")
	}
}

func rankMentors(mentee models.User, desired []string, mentors []models.User) []dto.MentorMatch {
	// Availability slots are opaque tokens and intersect on exact string
	// match; only skills are case-folded.
	menteeAvail := dedupeSet(mentee.Availability)
	matches := make([]dto.MentorMatch, 0, len(mentors))

	for _, mentor := range mentors {
		taught := normalizeSet(mentor.Skills)
		matched := intersect(taught, desired)

		skillScore := float64(len(matched)) / float64(len(desired))

		availScore := 0.0
		if len(menteeAvail) > 0 {
			common := intersect(dedupeSet(mentor.Availability), menteeAvail)
			availScore = float64(len(common)) / float64(len(menteeAvail))
		}

		deptScore := departmentScore(mentee.Department, mentor.Department)

		ratingScore := 0.0
		if mentor.Rating != nil {
			ratingScore = *mentor.Rating / 5.0
		}

		score := weightSkills*skillScore +
			weightAvailability*availScore +
			weightDepartment*deptScore +
			weightRating*ratingScore
		score = math.Round(score*1000) / 1000

		if score <= 0 {
			continue
		}

		matches = append(matches, dto.MentorMatch{
			MentorID:      mentor.ID,
			Name:          mentor.Name,
			Department:    mentor.Department,
			Skills:        mentor.Skills,
			Availability:  mentor.Availability,
			Rating:        mentor.Rating,
			Bio:           mentor.Bio,
			Avatar:        mentor.Avatar,
			Score:         score,
			MatchedSkills: matched,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].MentorID < matches[j].MentorID
	})

	return matches
}

// departmentScore gives full credit for an exact match and half credit when
// the leading word matches, e.g. "Computer Science" vs "Computer Engineering".
func departmentScore(menteeDept, mentorDept string) float64 {
	a := strings.TrimSpace(strings.ToLower(menteeDept))
	b := strings.TrimSpace(strings.ToLower(mentorDept))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1.0
	}
	if firstToken(a) == firstToken(b) {
		return 0.5
	}
	return 0
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func skillNames(skills []models.MenteeLearningSkill) []string {
	names := make([]string, 0, len(skills))
	for _, skill := range skills {
		names = append(names, skill.SkillName)
	}
	return names
}

// normalizeSet lower-cases and trims entries, dropping empties and duplicates
// while preserving first-seen order.
func normalizeSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	normalized := make([]string, 0, len(values))
	for _, value := range values {
		v := strings.TrimSpace(strings.ToLower(value))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		normalized = append(normalized, v)
	}
	return normalized
}

// dedupeSet drops empty and duplicate entries, preserving first-seen order
// and leaving the tokens themselves untouched.
func dedupeSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	deduped := make([]string, 0, len(values))
	for _, value := range values {
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		deduped = append(deduped, value)
	}
	return deduped
}

func intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	result := make([]string, 0)
	for _, v := range a {
		if _, ok := set[v]; ok {
			result = append(result, v)
		}
	}
	return result
}
