package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Dosada05/bracket-pool/brackets"
	"github.com/Dosada05/bracket-pool/metrics"
	"github.com/Dosada05/bracket-pool/models"
	"github.com/Dosada05/bracket-pool/repositories"
	"github.com/google/uuid"
)

type EntryService interface {
	SubmitEntry(ctx context.Context, poolID, currentUserID int, picks map[string]int) (*models.Entry, error)
	GetOwnEntry(ctx context.Context, poolID, currentUserID int) (*models.Entry, error)
	GetEntryByPublicID(ctx context.Context, publicID uuid.UUID, viewerID int, viewerIsAdmin bool) (*models.Entry, error)
	ListPoolEntries(ctx context.Context, poolID, viewerID int, viewerIsAdmin bool) ([]models.Entry, error)
}

type entryService struct {
	db             *sql.DB
	poolRepo       repositories.PoolRepository
	entryRepo      repositories.EntryRepository
	membershipRepo repositories.MembershipRepository
	exceptionRepo  repositories.ExceptionRepository
	configService  BracketConfigService
	policy         brackets.VisibilityPolicy
	lockGrace      time.Duration

	// Подменяется в тестах для проверки дедлайна приёма сеток.
	now func() time.Time
}

func NewEntryService(
	db *sql.DB,
	poolRepo repositories.PoolRepository,
	entryRepo repositories.EntryRepository,
	membershipRepo repositories.MembershipRepository,
	exceptionRepo repositories.ExceptionRepository,
	configService BracketConfigService,
	policy brackets.VisibilityPolicy,
	lockGrace time.Duration,
) EntryService {
	return &entryService{
		db:             db,
		poolRepo:       poolRepo,
		entryRepo:      entryRepo,
		membershipRepo: membershipRepo,
		exceptionRepo:  exceptionRepo,
		configService:  configService,
		policy:         policy,
		lockGrace:      lockGrace,
		now:            time.Now,
	}
}

// SubmitEntry создаёт или полностью заменяет сетку участника.
// После наступления lock_time (с учётом льготного интервала) приём закрыт.
func (s *entryService) SubmitEntry(ctx context.Context, poolID, currentUserID int, picks map[string]int) (*models.Entry, error) {
	pool, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, repositories.ErrPoolNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, fmt.Errorf("failed to get pool %d: %w", poolID, err)
	}

	switch pool.Status {
	case models.StatusOpen:
	case models.StatusSetup:
		return nil, ErrPoolNotOpen
	default:
		return nil, ErrEntriesLocked
	}
	if !s.now().Before(pool.LockTime.Add(s.lockGrace)) {
		return nil, ErrEntriesLocked
	}

	membership, err := s.membershipRepo.GetByPoolAndUser(ctx, poolID, currentUserID)
	if err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return nil, ErrForbiddenOperation
		}
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if membership.Status != models.MembershipActive {
		return nil, ErrForbiddenOperation
	}

	if len(picks) == 0 {
		return nil, ErrEntryEmpty
	}

	structure, err := s.configService.PoolStructure(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("failed to build bracket for pool %d: %w", poolID, err)
	}
	pickRows := make([]models.Pick, 0, len(picks))
	for uid, teamID := range picks {
		if _, ok := structure.Matchup(uid); !ok {
			return nil, fmt.Errorf("%w: matchup %q", ErrEntryPickInvalid, uid)
		}
		if !structure.CanReach(uid, teamID) {
			return nil, fmt.Errorf("%w: team %d cannot win matchup %q", ErrEntryPickInvalid, teamID, uid)
		}
		pickRows = append(pickRows, models.Pick{MatchupUID: uid, TeamID: teamID})
	}
	sort.Slice(pickRows, func(i, j int) bool { return pickRows[i].MatchupUID < pickRows[j].MatchupUID })

	entry, err := s.entryRepo.GetByPoolAndUser(ctx, poolID, currentUserID)
	if err != nil && !errors.Is(err, repositories.ErrEntryNotFound) {
		return nil, fmt.Errorf("failed to look up entry: %w", err)
	}
	isNew := entry == nil

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

	if isNew {
		entry = &models.Entry{PoolID: poolID, UserID: currentUserID, PublicID: uuid.New()}
		if txErr = s.entryRepo.Create(ctx, tx, entry); txErr != nil {
			return nil, fmt.Errorf("failed to create entry: %w", txErr)
		}
	}
	if txErr = s.entryRepo.ReplacePicks(ctx, tx, entry.ID, pickRows); txErr != nil {
		return nil, fmt.Errorf("failed to store picks: %w", txErr)
	}
	if !isNew {
		if txErr = s.entryRepo.Touch(ctx, tx, entry.ID); txErr != nil {
			return nil, fmt.Errorf("failed to touch entry: %w", txErr)
		}
	}
	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit entry: %w", txErr)
	}

	metrics.EntriesSubmitted.Inc()
	entry.Picks = pickRows
	return entry, nil
}

func (s *entryService) GetOwnEntry(ctx context.Context, poolID, currentUserID int) (*models.Entry, error) {
	entry, err := s.entryRepo.GetByPoolAndUser(ctx, poolID, currentUserID)
	if err != nil {
		if errors.Is(err, repositories.ErrEntryNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	picks, err := s.entryRepo.ListPicks(ctx, entry.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load picks: %w", err)
	}
	entry.Picks = picks
	return entry, nil
}

// GetEntryByPublicID выдаёт чужую сетку по публичному идентификатору.
// Очки видны всегда; сами прогнозы скрываются туманом войны.
func (s *entryService) GetEntryByPublicID(ctx context.Context, publicID uuid.UUID, viewerID int, viewerIsAdmin bool) (*models.Entry, error) {
	entry, err := s.entryRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, repositories.ErrEntryNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	pool, err := s.poolRepo.GetByID(ctx, entry.PoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool %d: %w", entry.PoolID, err)
	}
	exceptions, err := s.exceptionRepo.ViewerSetByPool(ctx, pool.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load visibility exceptions: %w", err)
	}

	visible := brackets.EntryVisible(
		brackets.EntryRef{OwnerID: entry.UserID, IsOfficial: entry.IsOfficial},
		brackets.Viewer{UserID: viewerID, IsAdmin: viewerIsAdmin},
		pool.VisibilitySettings(exceptions),
		s.policy,
	)
	if !visible {
		entry.PicksHidden = true
		return entry, nil
	}

	picks, err := s.entryRepo.ListPicks(ctx, entry.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load picks: %w", err)
	}
	entry.Picks = picks
	return entry, nil
}

func (s *entryService) ListPoolEntries(ctx context.Context, poolID, viewerID int, viewerIsAdmin bool) ([]models.Entry, error) {
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
	picksByEntry, err := s.entryRepo.ListPicksByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to load picks: %w", err)
	}

	settings := pool.VisibilitySettings(exceptions)
	viewer := brackets.Viewer{UserID: viewerID, IsAdmin: viewerIsAdmin}
	for i := range entries {
		e := &entries[i]
		if e.Owner != nil {
			e.Owner.PasswordHash = ""
		}
		ref := brackets.EntryRef{OwnerID: e.UserID, IsOfficial: e.IsOfficial}
		if brackets.EntryVisible(ref, viewer, settings, s.policy) {
			e.Picks = picksByEntry[e.ID]
		} else {
			e.PicksHidden = true
		}
	}
	return entries, nil
}
