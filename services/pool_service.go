package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/bracket-pool/brackets"
	"github.com/Dosada05/bracket-pool/metrics"
	"github.com/Dosada05/bracket-pool/models"
	"github.com/Dosada05/bracket-pool/repositories"
	"github.com/Dosada05/bracket-pool/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type PoolService interface {
	CreatePool(ctx context.Context, ownerID int, input CreatePoolInput) (*models.Pool, error)
	GetPoolByID(ctx context.Context, poolID int) (*models.Pool, error)
	GetPoolDetails(ctx context.Context, poolID int) (*models.Pool, error)
	ListPools(ctx context.Context, filter repositories.ListPoolsFilter) ([]models.Pool, error)
	UpdatePool(ctx context.Context, poolID, currentUserID int, input UpdatePoolInput) (*models.Pool, error)
	UpdatePoolStatus(ctx context.Context, poolID, currentUserID int, next models.PoolStatus) (*models.Pool, error)
	UpdatePoolLogo(ctx context.Context, poolID, currentUserID int, file io.Reader, contentType string) (*models.Pool, error)
	DeletePool(ctx context.Context, poolID, currentUserID int) error
	AutoLockPools(ctx context.Context) (int, error)
}

type CreatePoolInput struct {
	Name        string                    `json:"name"`
	Description *string                   `json:"description,omitempty"`
	GameType    string                    `json:"game_type"`
	LockTime    time.Time                 `json:"lock_time"`
	FogOfWar    bool                      `json:"fog_of_war"`
	Scoring     *brackets.ScoringSettings `json:"scoring,omitempty"`
}

type UpdatePoolInput struct {
	Name        *string                   `json:"name,omitempty"`
	Description *string                   `json:"description,omitempty"`
	LockTime    *time.Time                `json:"lock_time,omitempty"`
	FogOfWar    *bool                     `json:"fog_of_war,omitempty"`
	Scoring     *brackets.ScoringSettings `json:"scoring,omitempty"`
}

type poolService struct {
	db             *sql.DB
	poolRepo       repositories.PoolRepository
	userRepo       repositories.UserRepository
	membershipRepo repositories.MembershipRepository
	entryRepo      repositories.EntryRepository
	regionRepo     repositories.RegionRepository
	teamRepo       repositories.TeamRepository
	resultRepo     repositories.ResultRepository
	configService  BracketConfigService
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewPoolService(
	db *sql.DB,
	poolRepo repositories.PoolRepository,
	userRepo repositories.UserRepository,
	membershipRepo repositories.MembershipRepository,
	entryRepo repositories.EntryRepository,
	regionRepo repositories.RegionRepository,
	teamRepo repositories.TeamRepository,
	resultRepo repositories.ResultRepository,
	configService BracketConfigService,
	uploader storage.FileUploader,
	logger *slog.Logger,
) PoolService {
	return &poolService{
		db:             db,
		poolRepo:       poolRepo,
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		entryRepo:      entryRepo,
		regionRepo:     regionRepo,
		teamRepo:       teamRepo,
		resultRepo:     resultRepo,
		configService:  configService,
		uploader:       uploader,
		logger:         logger,
	}
}

func validateScoringSettings(s *brackets.ScoringSettings) error {
	if s == nil {
		return nil
	}
	for _, p := range s.RoundPoints {
		if p < 0 {
			return fmt.Errorf("%w: round points must be non-negative", ErrInvalidScoring)
		}
	}
	if s.UpsetMinSeedDiff < 0 {
		return fmt.Errorf("%w: upset_min_seed_diff must be non-negative", ErrInvalidScoring)
	}
	if s.UpsetPointsPerSeed < 0 {
		return fmt.Errorf("%w: upset_points_per_seed must be non-negative", ErrInvalidScoring)
	}
	return nil
}

func scoringToJSON(s *brackets.ScoringSettings) (*string, error) {
	if s == nil {
		return nil, nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScoring, err)
	}
	str := string(raw)
	return &str, nil
}

func (s *poolService) CreatePool(ctx context.Context, ownerID int, input CreatePoolInput) (*models.Pool, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrPoolNameRequired
	}
	if _, ok := brackets.Lookup(input.GameType); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGameType, input.GameType)
	}
	if input.LockTime.IsZero() {
		return nil, ErrLockTimeRequired
	}
	if !input.LockTime.After(time.Now()) {
		return nil, ErrLockTimeInPast
	}
	if err := validateScoringSettings(input.Scoring); err != nil {
		return nil, err
	}
	scoringJSON, err := scoringToJSON(input.Scoring)
	if err != nil {
		return nil, err
	}

	pool := &models.Pool{
		Name:        name,
		Description: input.Description,
		GameType:    input.GameType,
		OwnerID:     ownerID,
		Status:      models.StatusSetup,
		LockTime:    input.LockTime,
		FogOfWar:    input.FogOfWar,
		ScoringJSON: scoringJSON,
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

	if txErr = s.poolRepo.Create(ctx, tx, pool); txErr != nil {
		switch {
		case errors.Is(txErr, repositories.ErrPoolNameConflict):
			return nil, ErrPoolNameConflict
		case errors.Is(txErr, repositories.ErrPoolInvalidOwner):
			return nil, ErrUserNotFound
		default:
			return nil, fmt.Errorf("failed to create pool: %w", txErr)
		}
	}

	// Владелец сразу становится участником, а пул получает официальную
	// справочную сетку, которая будет заполняться из результатов.
	membership := &models.Membership{PoolID: pool.ID, UserID: ownerID, Status: models.MembershipActive}
	if txErr = s.membershipRepo.Create(ctx, tx, membership); txErr != nil {
		return nil, fmt.Errorf("failed to create owner membership: %w", txErr)
	}

	official := &models.Entry{PoolID: pool.ID, UserID: ownerID, PublicID: uuid.New(), IsOfficial: true}
	if txErr = s.entryRepo.Create(ctx, tx, official); txErr != nil {
		return nil, fmt.Errorf("failed to create official entry: %w", txErr)
	}

	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit pool creation: %w", txErr)
	}

	return pool, nil
}

func (s *poolService) GetPoolByID(ctx context.Context, poolID int) (*models.Pool, error) {
	pool, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, repositories.ErrPoolNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, fmt.Errorf("failed to get pool %d: %w", poolID, err)
	}
	populatePoolLogoURLFunc(pool, s.uploader)
	return pool, nil
}

// GetPoolDetails собирает пул со связанными данными параллельно.
func (s *poolService) GetPoolDetails(ctx context.Context, poolID int) (*models.Pool, error) {
	pool, err := s.GetPoolByID(ctx, poolID)
	if err != nil {
		return nil, err
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		owner, err := s.userRepo.GetByID(gCtx, pool.OwnerID)
		if err != nil {
			return fmt.Errorf("failed to fetch pool owner %d: %w", pool.OwnerID, err)
		}
		populateUserDetailsFunc(owner, s.uploader)
		pool.Owner = owner
		return nil
	})

	g.Go(func() error {
		regions, err := s.regionRepo.ListByPool(gCtx, poolID)
		if err != nil {
			return fmt.Errorf("failed to fetch pool regions: %w", err)
		}
		teams, err := s.teamRepo.ListByPool(gCtx, poolID)
		if err != nil {
			return fmt.Errorf("failed to fetch pool teams: %w", err)
		}
		byRegion := make(map[int][]models.Team, len(regions))
		for _, t := range teams {
			populateTeamLogoURLFunc(&t, s.uploader)
			byRegion[t.RegionID] = append(byRegion[t.RegionID], t)
		}
		for i := range regions {
			regions[i].Teams = byRegion[regions[i].ID]
		}
		pool.Regions = regions
		return nil
	})

	g.Go(func() error {
		results, err := s.resultRepo.ListByPool(gCtx, nil, poolID)
		if err != nil {
			return fmt.Errorf("failed to fetch pool results: %w", err)
		}
		pool.Results = results
		return nil
	})

	g.Go(func() error {
		count, err := s.membershipRepo.CountByPool(gCtx, poolID, models.MembershipActive)
		if err != nil {
			return fmt.Errorf("failed to count pool members: %w", err)
		}
		pool.MemberCount = &count
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pool, nil
}

func (s *poolService) ListPools(ctx context.Context, filter repositories.ListPoolsFilter) ([]models.Pool, error) {
	pools, err := s.poolRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list pools: %w", err)
	}
	for i := range pools {
		populatePoolLogoURLFunc(&pools[i], s.uploader)
	}
	return pools, nil
}

func (s *poolService) UpdatePool(ctx context.Context, poolID, currentUserID int, input UpdatePoolInput) (*models.Pool, error) {
	pool, err := s.getOwnedPool(ctx, poolID, currentUserID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, ErrPoolNameRequired
		}
		pool.Name = trimmed
	}
	if input.Description != nil {
		pool.Description = input.Description
	}
	if input.LockTime != nil {
		if pool.Status != models.StatusSetup && pool.Status != models.StatusOpen {
			return nil, fmt.Errorf("%w: lock time is frozen once entries are locked", ErrPoolInvalidStatusTransition)
		}
		if !input.LockTime.After(time.Now()) {
			return nil, ErrLockTimeInPast
		}
		pool.LockTime = *input.LockTime
	}
	if input.FogOfWar != nil {
		pool.FogOfWar = *input.FogOfWar
	}

	if err := s.poolRepo.Update(ctx, pool); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPoolNotFound):
			return nil, ErrPoolNotFound
		case errors.Is(err, repositories.ErrPoolNameConflict):
			return nil, ErrPoolNameConflict
		default:
			return nil, fmt.Errorf("failed to update pool %d: %w", poolID, err)
		}
	}

	// Правила подсчёта замораживаются с момента открытия пула,
	// чтобы набранные очки не менялись задним числом.
	if input.Scoring != nil {
		if pool.Status != models.StatusSetup {
			return nil, fmt.Errorf("%w: scoring settings are frozen once the pool opens", ErrPoolNotInSetup)
		}
		if err := validateScoringSettings(input.Scoring); err != nil {
			return nil, err
		}
		scoringJSON, err := scoringToJSON(input.Scoring)
		if err != nil {
			return nil, err
		}
		if err := s.poolRepo.UpdateScoringJSON(ctx, poolID, scoringJSON); err != nil {
			return nil, fmt.Errorf("failed to update pool scoring: %w", err)
		}
		pool.ScoringJSON = scoringJSON
	}

	populatePoolLogoURLFunc(pool, s.uploader)
	return pool, nil
}

func (s *poolService) UpdatePoolStatus(ctx context.Context, poolID, currentUserID int, next models.PoolStatus) (*models.Pool, error) {
	switch next {
	case models.StatusSetup, models.StatusOpen, models.StatusLocked, models.StatusCompleted, models.StatusCanceled:
	default:
		return nil, fmt.Errorf("%w: %q", ErrPoolInvalidStatus, next)
	}

	pool, err := s.getOwnedPool(ctx, poolID, currentUserID)
	if err != nil {
		return nil, err
	}

	if !isValidPoolStatusTransition(pool.Status, next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrPoolInvalidStatusTransition, pool.Status, next)
	}
	if pool.Status == next {
		return pool, nil
	}

	// Открытие пула блокируется, пока конфигурация сетки не собирается
	// в валидную структуру.
	if next == models.StatusOpen {
		if _, err := s.configService.PoolStructure(ctx, pool); err != nil {
			var structErr *brackets.StructureError
			if errors.As(err, &structErr) {
				return nil, fmt.Errorf("%w: %w", ErrPoolActivationBlocked, structErr)
			}
			return nil, fmt.Errorf("failed to verify bracket before opening pool %d: %w", poolID, err)
		}
		if !pool.LockTime.After(time.Now()) {
			return nil, ErrLockTimeInPast
		}
	}

	if err := s.poolRepo.UpdateStatus(ctx, nil, poolID, next); err != nil {
		if errors.Is(err, repositories.ErrPoolNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, fmt.Errorf("failed to update pool %d status: %w", poolID, err)
	}
	pool.Status = next
	return pool, nil
}

func (s *poolService) UpdatePoolLogo(ctx context.Context, poolID, currentUserID int, file io.Reader, contentType string) (*models.Pool, error) {
	pool, err := s.getOwnedPool(ctx, poolID, currentUserID)
	if err != nil {
		return nil, err
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	key := fmt.Sprintf("pools/%d/logo%s", poolID, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload pool logo: %w", err)
	}
	if pool.LogoKey != nil && *pool.LogoKey != key {
		_ = s.uploader.Delete(ctx, *pool.LogoKey)
	}
	if err := s.poolRepo.UpdateLogoKey(ctx, poolID, &key); err != nil {
		return nil, fmt.Errorf("failed to persist pool logo key: %w", err)
	}
	pool.LogoKey = &key
	populatePoolLogoURLFunc(pool, s.uploader)
	return pool, nil
}

func (s *poolService) DeletePool(ctx context.Context, poolID, currentUserID int) error {
	if _, err := s.getOwnedPool(ctx, poolID, currentUserID); err != nil {
		return err
	}
	if err := s.poolRepo.Delete(ctx, poolID); err != nil {
		if errors.Is(err, repositories.ErrPoolNotFound) {
			return ErrPoolNotFound
		}
		return fmt.Errorf("failed to delete pool %d: %w", poolID, err)
	}
	return nil
}

// AutoLockPools переводит открытые пулы с истёкшим lock_time в статус locked.
// Вызывается планировщиком из main.
func (s *poolService) AutoLockPools(ctx context.Context) (int, error) {
	pools, err := s.poolRepo.GetPoolsForAutoLock(ctx, nil, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to select pools for auto-lock: %w", err)
	}

	locked := 0
	for _, pool := range pools {
		if err := s.poolRepo.UpdateStatus(ctx, nil, pool.ID, models.StatusLocked); err != nil {
			s.logger.WarnContext(ctx, "auto-lock failed for pool",
				slog.Int("pool_id", pool.ID), slog.Any("error", err))
			continue
		}
		locked++
		metrics.PoolsAutoLocked.Inc()
		s.logger.InfoContext(ctx, "pool auto-locked",
			slog.Int("pool_id", pool.ID), slog.Time("lock_time", pool.LockTime))
	}
	return locked, nil
}

func (s *poolService) getOwnedPool(ctx context.Context, poolID, currentUserID int) (*models.Pool, error) {
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
	return pool, nil
}
