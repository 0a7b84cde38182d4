package service

import (
	"context"
	"fmt"
	"time"

	"thrivingcare-api/internal/repository"
)

// AnalyticsOverview resume el estado del pipeline para el panel de admin.
type AnalyticsOverview struct {
	CandidatesByVettingStatus map[string]int `json:"candidates_by_vetting_status"`
	SignupsLast7Days          int            `json:"signups_last_7_days"`
	ActiveJobs                int            `json:"active_jobs"`
	ApplicationsByStatus      map[string]int `json:"applications_by_status"`
	GeneratedAt               time.Time      `json:"generated_at"`
}

// AnalyticsService junta los conteos de los repositorios.
type AnalyticsService struct {
	candidates   repository.CandidateRepository
	applications repository.ApplicationRepository
	jobs         repository.JobRepository
}

func NewAnalyticsService(
	candidates repository.CandidateRepository,
	applications repository.ApplicationRepository,
	jobs repository.JobRepository,
) *AnalyticsService {
	return &AnalyticsService{candidates: candidates, applications: applications, jobs: jobs}
}

func (s *AnalyticsService) Overview(ctx context.Context) (AnalyticsOverview, error) {
	byVetting, err := s.candidates.CountByVettingStatus(ctx)
	if err != nil {
		return AnalyticsOverview{}, fmt.Errorf("count candidates: %w", err)
	}
	signups, err := s.candidates.CountCreatedSince(ctx, time.Now().UTC().AddDate(0, 0, -7))
	if err != nil {
		return AnalyticsOverview{}, fmt.Errorf("count signups: %w", err)
	}
	activeJobs, err := s.jobs.CountActive(ctx)
	if err != nil {
		return AnalyticsOverview{}, fmt.Errorf("count jobs: %w", err)
	}
	byStatus, err := s.applications.CountByStatus(ctx)
	if err != nil {
		return AnalyticsOverview{}, fmt.Errorf("count applications: %w", err)
	}
	return AnalyticsOverview{
		CandidatesByVettingStatus: byVetting,
		SignupsLast7Days:          signups,
		ActiveJobs:                activeJobs,
		ApplicationsByStatus:      byStatus,
		GeneratedAt:               time.Now().UTC(),
	}, nil
}
