package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Dosada05/bracket-pool/brackets"
	"github.com/Dosada05/bracket-pool/models"
	"github.com/Dosada05/bracket-pool/repositories"
	"github.com/Dosada05/bracket-pool/storage"
)

type BracketConfigService interface {
	ReplaceRegions(ctx context.Context, poolID, currentUserID int, input []RegionInput) ([]models.Region, error)
	UpdateSemifinals(ctx context.Context, poolID, currentUserID int, input SemifinalInput) (ValidationReport, error)
	GetValidation(ctx context.Context, poolID int) (ValidationReport, error)
	CheckCandidate(ctx context.Context, poolID, currentUserID int, candidate SemifinalInput) (ValidationReport, error)
	PreviewStructure(ctx context.Context, poolID int) (*brackets.Structure, error)
	PoolStructure(ctx context.Context, pool *models.Pool) (*brackets.Structure, error)
	UpdateTeamLogo(ctx context.Context, teamID, currentUserID int, file io.Reader, contentType string) (*models.Team, error)
}

type RegionInput struct {
	Name  string      `json:"name"`
	Teams []TeamInput `json:"teams"`
}

type TeamInput struct {
	Name string `json:"name"`
	Seed int    `json:"seed"`
}

type SemifinalInput struct {
	Semifinal1A *int `json:"semifinal1_a"`
	Semifinal1B *int `json:"semifinal1_b"`
	Semifinal2A *int `json:"semifinal2_a"`
	Semifinal2B *int `json:"semifinal2_b"`
}

// ValidationReport — ответ на проверку конфигурации: список проблем
// полуфинальных слотов и готовность пула к открытию.
type ValidationReport struct {
	Problems        []brackets.Problem `json:"problems"`
	ActivationReady bool               `json:"activation_ready"`
	Reason          string             `json:"reason,omitempty"`
}

type bracketConfigService struct {
	db         *sql.DB
	poolRepo   repositories.PoolRepository
	regionRepo repositories.RegionRepository
	teamRepo   repositories.TeamRepository
	uploader   storage.FileUploader
}

func NewBracketConfigService(
	db *sql.DB,
	poolRepo repositories.PoolRepository,
	regionRepo repositories.RegionRepository,
	teamRepo repositories.TeamRepository,
	uploader storage.FileUploader,
) BracketConfigService {
	return &bracketConfigService{
		db:         db,
		poolRepo:   poolRepo,
		regionRepo: regionRepo,
		teamRepo:   teamRepo,
		uploader:   uploader,
	}
}

// ReplaceRegions полностью заменяет регионы и посев пула. Разрешено только
// в статусе setup; прежние слоты полуфиналов сбрасываются, так как
// идентификаторы регионов меняются.
func (s *bracketConfigService) ReplaceRegions(ctx context.Context, poolID, currentUserID int, input []RegionInput) ([]models.Region, error) {
	pool, gt, err := s.getEditablePool(ctx, poolID, currentUserID)
	if err != nil {
		return nil, err
	}

	meta := gt.Metadata()
	if len(input) > meta.RegionCount {
		return nil, fmt.Errorf("%w: game type %q allows at most %d regions", ErrValidationFailed, pool.GameType, meta.RegionCount)
	}
	seenNames := make(map[string]bool, len(input))
	for _, region := range input {
		name := strings.TrimSpace(region.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: region name is required", ErrValidationFailed)
		}
		if seenNames[name] {
			return nil, fmt.Errorf("%w: duplicate region name %q", ErrValidationFailed, name)
		}
		seenNames[name] = true
		if len(region.Teams) > meta.SeedCount {
			return nil, fmt.Errorf("%w: region %q has more than %d teams", ErrValidationFailed, name, meta.SeedCount)
		}
		seenSeeds := make(map[int]bool, len(region.Teams))
		for _, team := range region.Teams {
			if strings.TrimSpace(team.Name) == "" {
				return nil, fmt.Errorf("%w: team name is required in region %q", ErrValidationFailed, name)
			}
			if team.Seed < 1 || team.Seed > meta.SeedCount {
				return nil, fmt.Errorf("%w: seed %d out of range 1..%d in region %q", ErrValidationFailed, team.Seed, meta.SeedCount, name)
			}
			if seenSeeds[team.Seed] {
				return nil, fmt.Errorf("%w: seed %d in region %q", ErrSeedConflict, team.Seed, name)
			}
			seenSeeds[team.Seed] = true
		}
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

	if txErr = s.poolRepo.UpdateSemifinalSlots(ctx, tx, poolID, nil, nil, nil, nil); txErr != nil {
		return nil, fmt.Errorf("failed to reset semifinal slots: %w", txErr)
	}
	if txErr = s.regionRepo.DeleteByPool(ctx, tx, poolID); txErr != nil {
		return nil, fmt.Errorf("failed to clear pool regions: %w", txErr)
	}

	created := make([]models.Region, 0, len(input))
	for position, regionInput := range input {
		region := &models.Region{
			PoolID:   poolID,
			Name:     strings.TrimSpace(regionInput.Name),
			Position: position + 1,
		}
		if txErr = s.regionRepo.Create(ctx, tx, region); txErr != nil {
			return nil, fmt.Errorf("failed to create region %q: %w", region.Name, txErr)
		}
		region.Teams = make([]models.Team, 0, len(regionInput.Teams))
		for _, teamInput := range regionInput.Teams {
			team := &models.Team{
				RegionID: region.ID,
				Name:     strings.TrimSpace(teamInput.Name),
				Seed:     teamInput.Seed,
			}
			if txErr = s.teamRepo.Create(ctx, tx, team); txErr != nil {
				if errors.Is(txErr, repositories.ErrTeamSeedConflict) {
					return nil, fmt.Errorf("%w: seed %d in region %q", ErrSeedConflict, team.Seed, region.Name)
				}
				return nil, fmt.Errorf("failed to create team %q: %w", team.Name, txErr)
			}
			region.Teams = append(region.Teams, *team)
		}
		created = append(created, *region)
	}

	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit region replacement: %w", txErr)
	}
	return created, nil
}

// UpdateSemifinals сохраняет назначение регионов по слотам полуфиналов.
// Сохранение не блокируется проблемами конфигурации: отчёт возвращается
// вместе с результатом, а открытие пула проверяет его отдельно.
func (s *bracketConfigService) UpdateSemifinals(ctx context.Context, poolID, currentUserID int, input SemifinalInput) (ValidationReport, error) {
	pool, gt, err := s.getEditablePool(ctx, poolID, currentUserID)
	if err != nil {
		return ValidationReport{}, err
	}
	if gt.Metadata().RegionCount < 2 {
		return ValidationReport{}, fmt.Errorf("%w: game type %q has no semifinal configuration", ErrValidationFailed, pool.GameType)
	}

	regions, err := s.regionRepo.ListByPool(ctx, poolID)
	if err != nil {
		return ValidationReport{}, fmt.Errorf("failed to list pool regions: %w", err)
	}
	nameByID := make(map[int]string, len(regions))
	for _, r := range regions {
		nameByID[r.ID] = r.Name
	}
	for _, slot := range []*int{input.Semifinal1A, input.Semifinal1B, input.Semifinal2A, input.Semifinal2B} {
		if slot != nil {
			if _, ok := nameByID[*slot]; !ok {
				return ValidationReport{}, fmt.Errorf("%w: region %d does not belong to pool %d", ErrRegionNotFound, *slot, poolID)
			}
		}
	}

	if err := s.poolRepo.UpdateSemifinalSlots(ctx, nil, poolID,
		input.Semifinal1A, input.Semifinal1B, input.Semifinal2A, input.Semifinal2B); err != nil {
		if errors.Is(err, repositories.ErrPoolInvalidSemiSlot) {
			return ValidationReport{}, ErrRegionNotFound
		}
		return ValidationReport{}, fmt.Errorf("failed to update semifinal slots: %w", err)
	}

	pool.Semifinal1A = input.Semifinal1A
	pool.Semifinal1B = input.Semifinal1B
	pool.Semifinal2A = input.Semifinal2A
	pool.Semifinal2B = input.Semifinal2B
	return s.buildReport(ctx, pool, gt, nameByID), nil
}

func (s *bracketConfigService) GetValidation(ctx context.Context, poolID int) (ValidationReport, error) {
	pool, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, repositories.ErrPoolNotFound) {
			return ValidationReport{}, ErrPoolNotFound
		}
		return ValidationReport{}, fmt.Errorf("failed to get pool %d: %w", poolID, err)
	}
	gt, ok := brackets.Lookup(pool.GameType)
	if !ok {
		return ValidationReport{}, fmt.Errorf("%w: %q", ErrUnknownGameType, pool.GameType)
	}

	regions, err := s.regionRepo.ListByPool(ctx, poolID)
	if err != nil {
		return ValidationReport{}, fmt.Errorf("failed to list pool regions: %w", err)
	}
	nameByID := make(map[int]string, len(regions))
	for _, r := range regions {
		nameByID[r.ID] = r.Name
	}
	return s.buildReport(ctx, pool, gt, nameByID), nil
}

// CheckCandidate проверяет кандидатскую конфигурацию, не сохраняя её.
// Используется интерактивной сессией валидации по веб-сокету.
func (s *bracketConfigService) CheckCandidate(ctx context.Context, poolID, currentUserID int, candidate SemifinalInput) (ValidationReport, error) {
	pool, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, repositories.ErrPoolNotFound) {
			return ValidationReport{}, ErrPoolNotFound
		}
		return ValidationReport{}, fmt.Errorf("failed to get pool %d: %w", poolID, err)
	}
	if pool.OwnerID != currentUserID {
		return ValidationReport{}, ErrOwnerActionForbidden
	}
	gt, ok := brackets.Lookup(pool.GameType)
	if !ok {
		return ValidationReport{}, fmt.Errorf("%w: %q", ErrUnknownGameType, pool.GameType)
	}

	regions, err := s.regionRepo.ListByPool(ctx, poolID)
	if err != nil {
		return ValidationReport{}, fmt.Errorf("failed to list pool regions: %w", err)
	}
	nameByID := make(map[int]string, len(regions))
	for _, r := range regions {
		nameByID[r.ID] = r.Name
	}
	for _, slot := range []*int{candidate.Semifinal1A, candidate.Semifinal1B, candidate.Semifinal2A, candidate.Semifinal2B} {
		if slot != nil {
			if _, ok := nameByID[*slot]; !ok {
				return ValidationReport{}, fmt.Errorf("%w: region %d does not belong to pool %d", ErrRegionNotFound, *slot, poolID)
			}
		}
	}

	pool.Semifinal1A = candidate.Semifinal1A
	pool.Semifinal1B = candidate.Semifinal1B
	pool.Semifinal2A = candidate.Semifinal2A
	pool.Semifinal2B = candidate.Semifinal2B
	return s.buildReport(ctx, pool, gt, nameByID), nil
}

func (s *bracketConfigService) PreviewStructure(ctx context.Context, poolID int) (*brackets.Structure, error) {
	pool, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, repositories.ErrPoolNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, fmt.Errorf("failed to get pool %d: %w", poolID, err)
	}
	return s.PoolStructure(ctx, pool)
}

// PoolStructure собирает сетку пула из сохранённых регионов, посева и
// слотов полуфиналов. Возвращает *brackets.StructureError, если
// конфигурация не образует валидную структуру.
func (s *bracketConfigService) PoolStructure(ctx context.Context, pool *models.Pool) (*brackets.Structure, error) {
	gt, ok := brackets.Lookup(pool.GameType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGameType, pool.GameType)
	}

	regions, err := s.regionRepo.ListByPool(ctx, pool.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pool regions: %w", err)
	}
	teams, err := s.teamRepo.ListByPool(ctx, pool.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pool teams: %w", err)
	}

	byRegion := make(map[int][]brackets.TeamSeed, len(regions))
	for _, t := range teams {
		byRegion[t.RegionID] = append(byRegion[t.RegionID], brackets.TeamSeed{
			TeamID: t.ID,
			Name:   t.Name,
			Seed:   t.Seed,
		})
	}

	seedings := make([]brackets.RegionSeeding, 0, len(regions))
	nameByID := make(map[int]string, len(regions))
	for _, r := range regions {
		nameByID[r.ID] = r.Name
		seedings = append(seedings, brackets.RegionSeeding{
			Name:  r.Name,
			Teams: byRegion[r.ID],
		})
	}

	var cfg *brackets.SemifinalConfig
	if gt.Metadata().RegionCount > 1 && pool.SemifinalConfigured() {
		cfg = &brackets.SemifinalConfig{
			Semifinal1: brackets.RegionPair{RegionA: nameByID[*pool.Semifinal1A], RegionB: nameByID[*pool.Semifinal1B]},
			Semifinal2: brackets.RegionPair{RegionA: nameByID[*pool.Semifinal2A], RegionB: nameByID[*pool.Semifinal2B]},
		}
	}

	return gt.Build(seedings, cfg)
}

func (s *bracketConfigService) UpdateTeamLogo(ctx context.Context, teamID, currentUserID int, file io.Reader, contentType string) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}
	region, err := s.regionRepo.GetByID(ctx, team.RegionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get region %d: %w", team.RegionID, err)
	}
	pool, err := s.poolRepo.GetByID(ctx, region.PoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool %d: %w", region.PoolID, err)
	}
	if pool.OwnerID != currentUserID {
		return nil, ErrOwnerActionForbidden
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	key := fmt.Sprintf("pools/%d/teams/%d/logo%s", pool.ID, teamID, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload team logo: %w", err)
	}
	if team.LogoKey != nil && *team.LogoKey != key {
		_ = s.uploader.Delete(ctx, *team.LogoKey)
	}
	if err := s.teamRepo.UpdateLogoKey(ctx, teamID, &key); err != nil {
		return nil, fmt.Errorf("failed to persist team logo key: %w", err)
	}
	team.LogoKey = &key
	populateTeamLogoURLFunc(team, s.uploader)
	return team, nil
}

// buildReport формирует отчёт: проблемы конфигурации слотов плюс попытка
// собрать полную структуру, определяющая готовность к открытию.
func (s *bracketConfigService) buildReport(ctx context.Context, pool *models.Pool, gt brackets.GameType, nameByID map[int]string) ValidationReport {
	report := ValidationReport{Problems: []brackets.Problem{}}

	if gt.Metadata().RegionCount > 1 {
		cfg := &brackets.SemifinalConfig{}
		if pool.Semifinal1A != nil {
			cfg.Semifinal1.RegionA = nameByID[*pool.Semifinal1A]
		}
		if pool.Semifinal1B != nil {
			cfg.Semifinal1.RegionB = nameByID[*pool.Semifinal1B]
		}
		if pool.Semifinal2A != nil {
			cfg.Semifinal2.RegionA = nameByID[*pool.Semifinal2A]
		}
		if pool.Semifinal2B != nil {
			cfg.Semifinal2.RegionB = nameByID[*pool.Semifinal2B]
		}
		if problems := gt.ValidateConfig(cfg); len(problems) > 0 {
			report.Problems = problems
		}
	}

	if _, err := s.PoolStructure(ctx, pool); err != nil {
		var structErr *brackets.StructureError
		if errors.As(err, &structErr) {
			report.Reason = structErr.Reason
			if len(report.Problems) == 0 && len(structErr.Problems) > 0 {
				report.Problems = structErr.Problems
			}
		} else {
			report.Reason = err.Error()
		}
		return report
	}

	report.ActivationReady = true
	return report
}

func (s *bracketConfigService) getEditablePool(ctx context.Context, poolID, currentUserID int) (*models.Pool, brackets.GameType, error) {
	pool, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, repositories.ErrPoolNotFound) {
			return nil, nil, ErrPoolNotFound
		}
		return nil, nil, fmt.Errorf("failed to get pool %d: %w", poolID, err)
	}
	if pool.OwnerID != currentUserID {
		return nil, nil, ErrOwnerActionForbidden
	}
	if pool.Status != models.StatusSetup {
		return nil, nil, ErrPoolNotInSetup
	}
	gt, ok := brackets.Lookup(pool.GameType)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownGameType, pool.GameType)
	}
	return pool, gt, nil
}
