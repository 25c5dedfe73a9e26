package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/bracket-pool/brackets"
	"github.com/Dosada05/bracket-pool/metrics"
	"github.com/Dosada05/bracket-pool/models"
	"github.com/Dosada05/bracket-pool/repositories"
	"github.com/google/uuid"
)

type StandingsService interface {
	RescorePool(ctx context.Context, poolID int) error
	GetLeaderboard(ctx context.Context, poolID, viewerID int, viewerIsAdmin bool) ([]LeaderboardRow, error)
	FinalizePool(ctx context.Context, poolID, currentUserID int) ([]models.PoolWinner, error)
	GetWinners(ctx context.Context, poolID int) ([]models.PoolWinner, error)
}

// LeaderboardRow — строка таблицы лидеров. Очки видны всегда;
// PicksVisible сообщает клиенту, можно ли запрашивать сами прогнозы.
type LeaderboardRow struct {
	Rank         int       `json:"rank"`
	EntryID      int       `json:"entry_id"`
	PublicID     uuid.UUID `json:"public_id"`
	UserID       int       `json:"user_id"`
	Nickname     string    `json:"nickname"`
	TotalPoints  int       `json:"total_points"`
	BasePoints   int       `json:"base_points"`
	BonusPoints  int       `json:"bonus_points"`
	CorrectPicks int       `json:"correct_picks"`
	PicksVisible bool      `json:"picks_visible"`
}

type standingsService struct {
	db            *sql.DB
	poolRepo      repositories.PoolRepository
	entryRepo     repositories.EntryRepository
	resultRepo    repositories.ResultRepository
	winnerRepo    repositories.WinnerRepository
	exceptionRepo repositories.ExceptionRepository
	configService BracketConfigService
	policy        brackets.VisibilityPolicy
	logger        *slog.Logger
}

func NewStandingsService(
	db *sql.DB,
	poolRepo repositories.PoolRepository,
	entryRepo repositories.EntryRepository,
	resultRepo repositories.ResultRepository,
	winnerRepo repositories.WinnerRepository,
	exceptionRepo repositories.ExceptionRepository,
	configService BracketConfigService,
	policy brackets.VisibilityPolicy,
	logger *slog.Logger,
) StandingsService {
	return &standingsService{
		db:            db,
		poolRepo:      poolRepo,
		entryRepo:     entryRepo,
		resultRepo:    resultRepo,
		winnerRepo:    winnerRepo,
		exceptionRepo: exceptionRepo,
		configService: configService,
		policy:        policy,
		logger:        logger,
	}
}

// RescorePool пересчитывает кэш очков всех записей пула по текущему набору
// результатов. Операция идемпотентна и безопасна для частичных турниров.
func (s *standingsService) RescorePool(ctx context.Context, poolID int) error {
	pool, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, repositories.ErrPoolNotFound) {
			return ErrPoolNotFound
		}
		return fmt.Errorf("failed to get pool %d: %w", poolID, err)
	}

	structure, resultsMap, settings, err := s.scoringInputs(ctx, pool)
	if err != nil {
		return err
	}

	entries, err := s.entryRepo.ListByPool(ctx, poolID)
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}
	picksByEntry, err := s.entryRepo.ListPicksByPool(ctx, poolID)
	if err != nil {
		return fmt.Errorf("failed to load picks: %w", err)
	}

	for i := range entries {
		e := &entries[i]
		picks := make(map[string]int, len(picksByEntry[e.ID]))
		for _, p := range picksByEntry[e.ID] {
			picks[p.MatchupUID] = p.TeamID
		}
		b := brackets.Score(picks, structure, resultsMap, settings)
		if b.Total == e.TotalPoints && b.BasePoints == e.BasePoints &&
			b.BonusPoints == e.BonusPoints && b.CorrectPicks == e.CorrectPicks {
			continue
		}
		if err := s.entryRepo.UpdateScoreCache(ctx, nil, e.ID, b.Total, b.BasePoints, b.BonusPoints, b.CorrectPicks); err != nil {
			return fmt.Errorf("failed to update score cache for entry %d: %w", e.ID, err)
		}
	}

	metrics.PoolRescores.Inc()
	s.logger.DebugContext(ctx, "pool rescored",
		slog.Int("pool_id", poolID), slog.Int("entries", len(entries)), slog.Int("results", len(resultsMap)))
	return nil
}

// GetLeaderboard строит таблицу лидеров по кэшированным очкам.
// Официальная справочная запись в ранжирование не входит.
func (s *standingsService) GetLeaderboard(ctx context.Context, poolID, viewerID int, viewerIsAdmin bool) ([]LeaderboardRow, error) {
	pool, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, repositories.ErrPoolNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, fmt.Errorf("failed to get pool %d: %w", poolID, err)
	}

	entries, err := s.entryRepo.ListByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	exceptions, err := s.exceptionRepo.ViewerSetByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to load visibility exceptions: %w", err)
	}

	scored := make([]brackets.ScoredEntry, 0, len(entries))
	byEntryID := make(map[int]*models.Entry, len(entries))
	for i := range entries {
		e := &entries[i]
		if e.IsOfficial {
			continue
		}
		byEntryID[e.ID] = e
		scored = append(scored, brackets.ScoredEntry{
			EntryID: e.ID,
			OwnerID: e.UserID,
			Breakdown: brackets.Breakdown{
				Total:        e.TotalPoints,
				BasePoints:   e.BasePoints,
				BonusPoints:  e.BonusPoints,
				CorrectPicks: e.CorrectPicks,
			},
		})
	}

	settings := pool.VisibilitySettings(exceptions)
	viewer := brackets.Viewer{UserID: viewerID, IsAdmin: viewerIsAdmin}

	ranked := brackets.Rank(scored)
	rows := make([]LeaderboardRow, 0, len(ranked))
	for _, r := range ranked {
		e := byEntryID[r.EntryID]
		row := LeaderboardRow{
			Rank:         r.Rank,
			EntryID:      e.ID,
			PublicID:     e.PublicID,
			UserID:       e.UserID,
			TotalPoints:  e.TotalPoints,
			BasePoints:   e.BasePoints,
			BonusPoints:  e.BonusPoints,
			CorrectPicks: e.CorrectPicks,
			PicksVisible: brackets.EntryVisible(
				brackets.EntryRef{OwnerID: e.UserID, IsOfficial: false},
				viewer, settings, s.policy,
			),
		}
		if e.Owner != nil {
			row.Nickname = e.Owner.Nickname
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// FinalizePool определяет победителей и завершает пул. Требует записанного
// результата чемпионского матчапа. Повторная финализация после исправления
// результатов перезаписывает набор победителей.
func (s *standingsService) FinalizePool(ctx context.Context, poolID, currentUserID int) ([]models.PoolWinner, error) {
	pool, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, repositories.ErrPoolNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, fmt.Errorf("failed to get pool %d: %w", poolID, err)
	}
	if pool.OwnerID != currentUserID {
		return nil, ErrOwnerActionForbidden
	}
	if pool.Status != models.StatusLocked && pool.Status != models.StatusCompleted {
		return nil, ErrFinalizeNotReady
	}

	structure, resultsMap, settings, err := s.scoringInputs(ctx, pool)
	if err != nil {
		return nil, err
	}

	entries, err := s.entryRepo.ListByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	picksByEntry, err := s.entryRepo.ListPicksByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to load picks: %w", err)
	}

	scored := make([]brackets.ScoredEntry, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		if e.IsOfficial {
			continue
		}
		picks := make(map[string]int, len(picksByEntry[e.ID]))
		for _, p := range picksByEntry[e.ID] {
			picks[p.MatchupUID] = p.TeamID
		}
		scored = append(scored, brackets.ScoredEntry{
			EntryID:   e.ID,
			OwnerID:   e.UserID,
			Breakdown: brackets.Score(picks, structure, resultsMap, settings),
		})
	}

	winners, err := brackets.DetermineWinners(scored, structure, resultsMap)
	if err != nil {
		return nil, fmt.Errorf("cannot finalize pool %d: %w", poolID, err)
	}

	now := time.Now()
	rows := make([]models.PoolWinner, 0, len(winners))
	for _, w := range winners {
		rows = append(rows, models.PoolWinner{
			PoolID:      poolID,
			EntryID:     w.EntryID,
			UserID:      w.OwnerID,
			TotalPoints: w.Breakdown.Total,
			FinalizedAt: now,
		})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	var txErr error
	defer func() {
		if txErr != nil {
			_ = tx.Rollback()
		}
	}()

	for i := range entries {
		e := &entries[i]
		if e.IsOfficial {
			continue
		}
		// Финализация фиксирует кэш по тем же breakdown, что легли в winners.
		for _, sc := range scored {
			if sc.EntryID == e.ID {
				b := sc.Breakdown
				if txErr = s.entryRepo.UpdateScoreCache(ctx, tx, e.ID, b.Total, b.BasePoints, b.BonusPoints, b.CorrectPicks); txErr != nil {
					return nil, fmt.Errorf("failed to update score cache for entry %d: %w", e.ID, txErr)
				}
				break
			}
		}
	}
	if txErr = s.winnerRepo.ReplaceForPool(ctx, tx, poolID, rows); txErr != nil {
		return nil, fmt.Errorf("failed to persist pool winners: %w", txErr)
	}
	if txErr = s.poolRepo.SetFinalized(ctx, tx, poolID, now); txErr != nil {
		return nil, fmt.Errorf("failed to finalize pool: %w", txErr)
	}
	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit finalization: %w", txErr)
	}

	s.logger.InfoContext(ctx, "pool finalized",
		slog.Int("pool_id", poolID), slog.Int("winners", len(rows)))
	return rows, nil
}

func (s *standingsService) GetWinners(ctx context.Context, poolID int) ([]models.PoolWinner, error) {
	if _, err := s.poolRepo.GetByID(ctx, poolID); err != nil {
		if errors.Is(err, repositories.ErrPoolNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, fmt.Errorf("failed to get pool %d: %w", poolID, err)
	}
	winners, err := s.winnerRepo.ListByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pool winners: %w", err)
	}
	for i := range winners {
		if winners[i].User != nil {
			winners[i].User.PasswordHash = ""
		}
	}
	return winners, nil
}

func (s *standingsService) scoringInputs(ctx context.Context, pool *models.Pool) (*brackets.Structure, brackets.Results, brackets.ScoringSettings, error) {
	structure, err := s.configService.PoolStructure(ctx, pool)
	if err != nil {
		return nil, nil, brackets.ScoringSettings{}, fmt.Errorf("failed to build bracket for pool %d: %w", pool.ID, err)
	}

	results, err := s.resultRepo.ListByPool(ctx, nil, pool.ID)
	if err != nil {
		return nil, nil, brackets.ScoringSettings{}, fmt.Errorf("failed to list results: %w", err)
	}
	resultsMap := make(brackets.Results, len(results))
	for _, r := range results {
		resultsMap[r.MatchupUID] = r.WinnerTeamID
	}

	settings, err := pool.ScoringSettings(structure.Rounds)
	if err != nil {
		return nil, nil, brackets.ScoringSettings{}, fmt.Errorf("%w: %w", ErrInvalidScoring, err)
	}
	return structure, resultsMap, settings, nil
}
