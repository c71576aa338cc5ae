package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bit2byte/mentorhub-api/internal/dto"
	"github.com/bit2byte/mentorhub-api/internal/models"
	"github.com/bit2byte/mentorhub-api/internal/repository"
)

// OverviewService produces the student workload counters shown on the
// dashboard, with a redis cache in front of the aggregate queries.
type OverviewService interface {
	GetOverview(ctx context.Context, studentID uint) (dto.StudentOverviewResponse, error)
}

type overviewService struct {
	assignments repository.AssignmentRepository
	doubts      repository.DoubtRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewOverviewService builds the dashboard aggregator.
func NewOverviewService(assignments repository.AssignmentRepository, doubts repository.DoubtRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) OverviewService {
	return &overviewService{
		assignments: assignments,
		doubts:      doubts,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "overview_service").Logger(),
	}
}

func (s *overviewService) GetOverview(ctx context.Context, studentID uint) (dto.StudentOverviewResponse, error) {
	cacheKey := fmt.Sprintf("overview:student:%d", studentID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.StudentOverviewResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("student_id", studentID).Msg("overview cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read overview cache")
		}
	}

	total, err := s.assignments.Count(ctx)
	if err != nil {
		return dto.StudentOverviewResponse{}, err
	}

	responses, err := s.assignments.ListResponsesByStudent(ctx, studentID)
	if err != nil {
		return dto.StudentOverviewResponse{}, err
	}

	var solved int64
	for _, response := range responses {
		if response.Status == models.ResponseStatusSolved {
			solved++
		}
	}

	openDoubts, err := s.doubts.CountByStudent(ctx, studentID, false)
	if err != nil {
		return dto.StudentOverviewResponse{}, err
	}

	resolvedDoubts, err := s.doubts.CountByStudent(ctx, studentID, true)
	if err != nil {
		return dto.StudentOverviewResponse{}, err
	}

	response := dto.StudentOverviewResponse{
		TotalAssignments: total,
		Solved:           solved,
		Pending:          total - solved,
		OpenDoubts:       openDoubts,
		ResolvedDoubts:   resolvedDoubts,
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store overview cache")
			}
		}
	}

	return response, nil
}
