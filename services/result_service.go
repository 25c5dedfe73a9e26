package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Dosada05/bracket-pool/metrics"
	"github.com/Dosada05/bracket-pool/models"
	"github.com/Dosada05/bracket-pool/repositories"
)

// PoolRescorer пересчитывает кэш очков всех записей пула.
// Реализуется StandingsService; выделен для подмены в тестах.
type PoolRescorer interface {
	RescorePool(ctx context.Context, poolID int) error
}

type ResultService interface {
	RecordResult(ctx context.Context, poolID, currentUserID int, matchupUID string, winnerTeamID int) (*models.Result, error)
	DeleteResult(ctx context.Context, poolID, currentUserID int, matchupUID string) error
	ListResults(ctx context.Context, poolID int) ([]models.Result, error)
}

type resultService struct {
	db            *sql.DB
	poolRepo      repositories.PoolRepository
	resultRepo    repositories.ResultRepository
	entryRepo     repositories.EntryRepository
	configService BracketConfigService
	rescorer      PoolRescorer
	logger        *slog.Logger
}

func NewResultService(
	db *sql.DB,
	poolRepo repositories.PoolRepository,
	resultRepo repositories.ResultRepository,
	entryRepo repositories.EntryRepository,
	configService BracketConfigService,
	rescorer PoolRescorer,
	logger *slog.Logger,
) ResultService {
	return &resultService{
		db:            db,
		poolRepo:      poolRepo,
		resultRepo:    resultRepo,
		entryRepo:     entryRepo,
		configService: configService,
		rescorer:      rescorer,
		logger:        logger,
	}
}

// RecordResult фиксирует официального победителя матчапа. Повторная запись
// того же матчапа трактуется как исправление и перезаписывает победителя.
func (s *resultService) RecordResult(ctx context.Context, poolID, currentUserID int, matchupUID string, winnerTeamID int) (*models.Result, error) {
	pool, err := s.ownedLockedPool(ctx, poolID, currentUserID)
	if err != nil {
		return nil, err
	}

	structure, err := s.configService.PoolStructure(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("failed to build bracket for pool %d: %w", poolID, err)
	}
	if _, ok := structure.Matchup(matchupUID); !ok {
		return nil, fmt.Errorf("%w: %q", ErrResultUnknownMatchup, matchupUID)
	}
	if !structure.CanReach(matchupUID, winnerTeamID) {
		return nil, fmt.Errorf("%w: team %d in matchup %q", ErrResultUnknownTeam, winnerTeamID, matchupUID)
	}

	result := &models.Result{
		PoolID:       poolID,
		MatchupUID:   matchupUID,
		WinnerTeamID: winnerTeamID,
		RecordedBy:   &currentUserID,
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

	if txErr = s.resultRepo.Upsert(ctx, tx, result); txErr != nil {
		if errors.Is(txErr, repositories.ErrResultTeamInvalid) {
			return nil, fmt.Errorf("%w: team %d", ErrResultUnknownTeam, winnerTeamID)
		}
		return nil, fmt.Errorf("failed to record result: %w", txErr)
	}
	if txErr = s.syncOfficialEntry(ctx, tx, poolID); txErr != nil {
		return nil, txErr
	}
	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit result: %w", txErr)
	}

	metrics.ResultsRecorded.Inc()
	if err := s.rescorer.RescorePool(ctx, poolID); err != nil {
		// Кэш очков отстал от результатов; следующая запись результата
		// или финализация пересчитают его заново.
		s.logger.ErrorContext(ctx, "rescore after result failed",
			slog.Int("pool_id", poolID), slog.String("matchup_uid", matchupUID), slog.Any("error", err))
	}
	return result, nil
}

// DeleteResult снимает ранее записанный результат (исправление).
func (s *resultService) DeleteResult(ctx context.Context, poolID, currentUserID int, matchupUID string) error {
	if _, err := s.ownedLockedPool(ctx, poolID, currentUserID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	var txErr error
	defer func() {
		if txErr != nil {
			_ = tx.Rollback()
		}
	}()

	if txErr = s.resultRepo.Delete(ctx, tx, poolID, matchupUID); txErr != nil {
		if errors.Is(txErr, repositories.ErrResultNotFound) {
			return ErrResultNotFound
		}
		return fmt.Errorf("failed to delete result: %w", txErr)
	}
	if txErr = s.syncOfficialEntry(ctx, tx, poolID); txErr != nil {
		return txErr
	}
	if txErr = tx.Commit(); txErr != nil {
		return fmt.Errorf("failed to commit result deletion: %w", txErr)
	}

	if err := s.rescorer.RescorePool(ctx, poolID); err != nil {
		s.logger.ErrorContext(ctx, "rescore after result deletion failed",
			slog.Int("pool_id", poolID), slog.String("matchup_uid", matchupUID), slog.Any("error", err))
	}
	return nil
}

func (s *resultService) ListResults(ctx context.Context, poolID int) ([]models.Result, error) {
	if _, err := s.poolRepo.GetByID(ctx, poolID); err != nil {
		if errors.Is(err, repositories.ErrPoolNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, fmt.Errorf("failed to get pool %d: %w", poolID, err)
	}
	results, err := s.resultRepo.ListByPool(ctx, nil, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return results, nil
}

// syncOfficialEntry перестраивает прогнозы официальной записи из полного
// набора результатов, чтобы она всегда отражала фактический ход турнира.
func (s *resultService) syncOfficialEntry(ctx context.Context, exec repositories.SQLExecutor, poolID int) error {
	official, err := s.entryRepo.GetOfficialByPool(ctx, poolID)
	if err != nil {
		return fmt.Errorf("failed to get official entry for pool %d: %w", poolID, err)
	}
	results, err := s.resultRepo.ListByPool(ctx, exec, poolID)
	if err != nil {
		return fmt.Errorf("failed to list results for official sync: %w", err)
	}

	picks := make([]models.Pick, 0, len(results))
	for _, r := range results {
		picks = append(picks, models.Pick{MatchupUID: r.MatchupUID, TeamID: r.WinnerTeamID})
	}
	sort.Slice(picks, func(i, j int) bool { return picks[i].MatchupUID < picks[j].MatchupUID })

	if err := s.entryRepo.ReplacePicks(ctx, exec, official.ID, picks); err != nil {
		return fmt.Errorf("failed to sync official entry picks: %w", err)
	}
	return nil
}

func (s *resultService) ownedLockedPool(ctx context.Context, poolID, currentUserID int) (*models.Pool, error) {
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
	// Результаты принимаются после закрытия приёма сеток; для завершённого
	// пула запись остаётся доступной как путь исправления с новой финализацией.
	if pool.Status != models.StatusLocked && pool.Status != models.StatusCompleted {
		return nil, ErrResultsNotAcceptable
	}
	return pool, nil
}
