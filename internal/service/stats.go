package service

import (
	"context"
	"strings"

	"packtrace/internal/models"
	"packtrace/internal/repository"
)

type StatsService struct {
	eventRepo      repository.EventRepo
	completionType string
}

func NewStatsService(eventRepo repository.EventRepo, completionType string) *StatsService {
	return &StatsService{eventRepo: eventRepo, completionType: completionType}
}

// Daily returns per-station activity counts by day, newest day first.
func (s *StatsService) Daily(ctx context.Context, f StatsFilter) ([]models.DailyStationStats, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, errInvalidTimeRange
	}

	return s.eventRepo.DailyStats(ctx, repository.StatsFilter{
		StationUID:     strings.TrimSpace(f.StationUID),
		From:           from,
		To:             to,
		CompletionType: s.completionType,
	})
}
