package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/bracket-pool/models"
	"github.com/Dosada05/bracket-pool/repositories"
)

type MemberService interface {
	JoinByInvite(ctx context.Context, token string, currentUserID int) (*models.Membership, error)
	ListMembers(ctx context.Context, poolID int) ([]models.Membership, error)
	RemoveMember(ctx context.Context, poolID, targetUserID, currentUserID int) error
	GrantException(ctx context.Context, poolID, viewerUserID, currentUserID int) (*models.VisibilityException, error)
	RevokeException(ctx context.Context, poolID, viewerUserID, currentUserID int) error
	ListExceptions(ctx context.Context, poolID, currentUserID int) ([]models.VisibilityException, error)
}

type memberService struct {
	db             *sql.DB
	poolRepo       repositories.PoolRepository
	membershipRepo repositories.MembershipRepository
	entryRepo      repositories.EntryRepository
	inviteRepo     repositories.InviteRepository
	exceptionRepo  repositories.ExceptionRepository
	userRepo       repositories.UserRepository
	logger         *slog.Logger
}

func NewMemberService(
	db *sql.DB,
	poolRepo repositories.PoolRepository,
	membershipRepo repositories.MembershipRepository,
	entryRepo repositories.EntryRepository,
	inviteRepo repositories.InviteRepository,
	exceptionRepo repositories.ExceptionRepository,
	userRepo repositories.UserRepository,
	logger *slog.Logger,
) MemberService {
	return &memberService{
		db:             db,
		poolRepo:       poolRepo,
		membershipRepo: membershipRepo,
		entryRepo:      entryRepo,
		inviteRepo:     inviteRepo,
		exceptionRepo:  exceptionRepo,
		userRepo:       userRepo,
		logger:         logger,
	}
}

// JoinByInvite вступает в пул по токену приглашения. Приглашение многоразовое
// и действует до истечения срока. Ранее удалённое членство активируется заново,
// но прежняя запись участника не восстанавливается.
func (s *memberService) JoinByInvite(ctx context.Context, token string, currentUserID int) (*models.Membership, error) {
	invite, err := s.inviteRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrInviteNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite by token: %w", err)
	}
	if time.Now().After(invite.ExpiresAt) {
		return nil, ErrInviteExpired
	}

	pool, err := s.poolRepo.GetByID(ctx, invite.PoolID)
	if err != nil {
		if errors.Is(err, repositories.ErrPoolNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, fmt.Errorf("failed to get pool %d: %w", invite.PoolID, err)
	}
	if pool.Status == models.StatusCompleted || pool.Status == models.StatusCanceled {
		return nil, ErrPoolInvalidStatus
	}

	existing, err := s.membershipRepo.GetByPoolAndUser(ctx, pool.ID, currentUserID)
	switch {
	case err == nil:
		if existing.Status == models.MembershipActive {
			return nil, ErrAlreadyMember
		}
		if updErr := s.membershipRepo.UpdateStatus(ctx, nil, existing.ID, models.MembershipActive); updErr != nil {
			return nil, fmt.Errorf("failed to reactivate membership: %w", updErr)
		}
		existing.Status = models.MembershipActive
		return existing, nil
	case errors.Is(err, repositories.ErrMembershipNotFound):
		// Новый участник.
	default:
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	membership := &models.Membership{
		PoolID: pool.ID,
		UserID: currentUserID,
		Status: models.MembershipActive,
	}
	if err := s.membershipRepo.Create(ctx, nil, membership); err != nil {
		switch {
		case errors.Is(err, repositories.ErrMembershipConflict):
			return nil, ErrAlreadyMember
		case errors.Is(err, repositories.ErrMembershipUserInvalid):
			return nil, ErrUserNotFound
		case errors.Is(err, repositories.ErrMembershipPoolInvalid):
			return nil, ErrPoolNotFound
		}
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}

	s.logger.InfoContext(ctx, "member joined pool",
		slog.Int("pool_id", pool.ID), slog.Int("user_id", currentUserID), slog.Int("invite_id", invite.ID))
	return membership, nil
}

func (s *memberService) ListMembers(ctx context.Context, poolID int) ([]models.Membership, error) {
	if _, err := s.poolRepo.GetByID(ctx, poolID); err != nil {
		if errors.Is(err, repositories.ErrPoolNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, fmt.Errorf("failed to get pool %d: %w", poolID, err)
	}

	active := models.MembershipActive
	members, err := s.membershipRepo.ListByPool(ctx, poolID, &active)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	for i := range members {
		if members[i].User != nil {
			members[i].User.PasswordHash = ""
		}
	}
	return members, nil
}

// RemoveMember исключает участника из пула. Владелец может исключить любого
// участника, обычный участник — только себя (выход из пула). Вместе с членством
// уничтожается запись участника: это единственный путь удаления записи.
func (s *memberService) RemoveMember(ctx context.Context, poolID, targetUserID, currentUserID int) error {
	pool, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, repositories.ErrPoolNotFound) {
			return ErrPoolNotFound
		}
		return fmt.Errorf("failed to get pool %d: %w", poolID, err)
	}
	if targetUserID == pool.OwnerID {
		return ErrOwnerCannotLeave
	}
	if currentUserID != pool.OwnerID && currentUserID != targetUserID {
		return ErrForbiddenOperation
	}

	membership, err := s.membershipRepo.GetByPoolAndUser(ctx, poolID, targetUserID)
	if err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to get membership: %w", err)
	}
	if membership.Status != models.MembershipActive {
		return ErrMemberNotFound
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

	if txErr = s.membershipRepo.UpdateStatus(ctx, tx, membership.ID, models.MembershipRemoved); txErr != nil {
		return fmt.Errorf("failed to update membership status: %w", txErr)
	}
	txErr = s.entryRepo.DeleteByPoolAndUser(ctx, tx, poolID, targetUserID)
	if txErr != nil && !errors.Is(txErr, repositories.ErrEntryNotFound) {
		return fmt.Errorf("failed to delete member entry: %w", txErr)
	}
	txErr = nil
	if txErr = tx.Commit(); txErr != nil {
		return fmt.Errorf("failed to commit member removal: %w", txErr)
	}

	// Исключение из тумана войны теряет смысл вместе с членством.
	if err := s.exceptionRepo.Delete(ctx, poolID, targetUserID); err != nil &&
		!errors.Is(err, repositories.ErrExceptionNotFound) {
		s.logger.WarnContext(ctx, "failed to revoke visibility exception after removal",
			slog.Int("pool_id", poolID), slog.Int("user_id", targetUserID), slog.Any("error", err))
	}

	s.logger.InfoContext(ctx, "member removed from pool",
		slog.Int("pool_id", poolID), slog.Int("user_id", targetUserID), slog.Int("removed_by", currentUserID))
	return nil
}

// GrantException открывает зрителю прогнозы пула до завершения турнира.
func (s *memberService) GrantException(ctx context.Context, poolID, viewerUserID, currentUserID int) (*models.VisibilityException, error) {
	if _, err := s.ownedPool(ctx, poolID, currentUserID); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, viewerUserID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", viewerUserID, err)
	}

	exception := &models.VisibilityException{
		PoolID:       poolID,
		ViewerUserID: viewerUserID,
		GrantedBy:    currentUserID,
	}
	if err := s.exceptionRepo.Create(ctx, exception); err != nil {
		if errors.Is(err, repositories.ErrExceptionConflict) {
			return nil, ErrExceptionConflict
		}
		return nil, fmt.Errorf("failed to create visibility exception: %w", err)
	}
	return exception, nil
}

func (s *memberService) RevokeException(ctx context.Context, poolID, viewerUserID, currentUserID int) error {
	if _, err := s.ownedPool(ctx, poolID, currentUserID); err != nil {
		return err
	}
	if err := s.exceptionRepo.Delete(ctx, poolID, viewerUserID); err != nil {
		if errors.Is(err, repositories.ErrExceptionNotFound) {
			return ErrExceptionNotFound
		}
		return fmt.Errorf("failed to delete visibility exception: %w", err)
	}
	return nil
}

func (s *memberService) ListExceptions(ctx context.Context, poolID, currentUserID int) ([]models.VisibilityException, error) {
	if _, err := s.ownedPool(ctx, poolID, currentUserID); err != nil {
		return nil, err
	}
	exceptions, err := s.exceptionRepo.ListByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to list visibility exceptions: %w", err)
	}
	return exceptions, nil
}

func (s *memberService) ownedPool(ctx context.Context, poolID, currentUserID int) (*models.Pool, error) {
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
