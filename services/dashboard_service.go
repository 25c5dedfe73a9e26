package services

import (
	"context"

	"github.com/Dosada05/bracket-pool/models"
	"github.com/Dosada05/bracket-pool/repositories"
)

type DashboardService interface {
	GetStats(ctx context.Context) (models.DashboardStats, error)
}

type dashboardService struct {
	userRepo   repositories.UserRepository
	poolRepo   repositories.PoolRepository
	entryRepo  repositories.EntryRepository
	resultRepo repositories.ResultRepository
}

func NewDashboardService(
	userRepo repositories.UserRepository,
	poolRepo repositories.PoolRepository,
	entryRepo repositories.EntryRepository,
	resultRepo repositories.ResultRepository,
) DashboardService {
	return &dashboardService{
		userRepo:   userRepo,
		poolRepo:   poolRepo,
		entryRepo:  entryRepo,
		resultRepo: resultRepo,
	}
}

func (s *dashboardService) GetStats(ctx context.Context) (models.DashboardStats, error) {
	usersTotal, _ := s.userRepo.Count(ctx)
	poolsTotal, _ := s.poolRepo.Count(ctx, nil)

	open := models.StatusOpen
	locked := models.StatusLocked
	openPools, _ := s.poolRepo.Count(ctx, &open)
	lockedPools, _ := s.poolRepo.Count(ctx, &locked)

	entriesTotal, _ := s.entryRepo.CountAll(ctx)
	resultsRecorded, _ := s.resultRepo.CountAll(ctx)

	return models.DashboardStats{
		UsersTotal:      usersTotal,
		PoolsTotal:      poolsTotal,
		ActivePools:     openPools + lockedPools,
		EntriesTotal:    entriesTotal,
		ResultsRecorded: resultsRecorded,
	}, nil
}
