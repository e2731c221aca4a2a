package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"rideboard/internal/cache"
	"rideboard/internal/logger"
	"rideboard/internal/models"
	"rideboard/internal/repository"
)

//go:generate mockgen -destination=../mocks/mock_cache.go -package=mocks rideboard/internal/cache Cache

const statsCacheKey = "stats:community"

// StatsService reports community impact figures.
type StatsService interface {
	Summary(ctx context.Context) (*models.StatsResponse, error)
}

type statsService struct {
	repo         repository.StatsRepository
	cache        cache.Cache
	ttl          time.Duration
	co2PerSeatKg float64
	log          logger.Logger
	now          func() time.Time
}

// NewStatsService creates a stats service. cacheClient may be nil.
func NewStatsService(repo repository.StatsRepository, cacheClient cache.Cache, ttl time.Duration, co2PerSeatKg float64, log logger.Logger) StatsService {
	return &statsService{
		repo:         repo,
		cache:        cacheClient,
		ttl:          ttl,
		co2PerSeatKg: co2PerSeatKg,
		log:          log,
		now:          time.Now,
	}
}

func (s *statsService) Summary(ctx context.Context) (*models.StatsResponse, error) {
	if s.cache != nil {
		var cached models.StatsResponse
		err := s.cache.GetJSON(ctx, statsCacheKey, &cached)
		if err == nil {
			s.log.Debug("stats_cache_hit", "Serving cached stats")
			return &cached, nil
		}
		if errors.Is(err, cache.ErrMiss) {
			s.log.Debug("stats_cache_miss", "Computing stats")
		} else {
			s.log.Error("stats_cache_read_failed", err)
		}
	}

	stats, err := s.repo.Summary(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}

	resp := &models.StatsResponse{
		ActiveRides:           stats.ActiveRides,
		OpenSeats:             stats.OpenSeats,
		ConfirmedReservations: stats.ConfirmedReservations,
		WaitingReservations:   stats.WaitingReservations,
		Users:                 stats.Users,
		CO2SavedKg:            math.Round(float64(stats.ConfirmedReservations)*s.co2PerSeatKg*10) / 10,
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, statsCacheKey, resp, s.ttl); err != nil {
			s.log.Error("stats_cache_write_failed", err)
		}
	}
	return resp, nil
}
