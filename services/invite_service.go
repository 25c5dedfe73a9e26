package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/bracket-pool/models"
	"github.com/Dosada05/bracket-pool/repositories"
)

const (
	inviteTokenLength = 16                 // Длина токена в байтах (32 символа в hex)
	inviteDuration    = 7 * 24 * time.Hour // Срок действия приглашения (7 дней)
)

var (
	ErrInviteCreationFailed  = errors.New("failed to create invite")
	ErrInviteTokenGeneration = errors.New("failed to generate unique invite token")
)

type InviteService interface {
	CreateInvite(ctx context.Context, poolID int, currentUserID int) (*models.Invite, error)
	ListPoolInvites(ctx context.Context, poolID int, currentUserID int) ([]*models.Invite, error)
	DeleteInvite(ctx context.Context, inviteID int, currentUserID int) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type inviteService struct {
	inviteRepo repositories.InviteRepository
	poolRepo   repositories.PoolRepository
}

func NewInviteService(
	inviteRepo repositories.InviteRepository,
	poolRepo repositories.PoolRepository,
) InviteService {
	return &inviteService{
		inviteRepo: inviteRepo,
		poolRepo:   poolRepo,
	}
}

func generateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// CreateInvite создаёт многоразовую ссылку-приглашение в пул. Приглашение
// действует до истечения срока, повторное использование не гасит его.
func (s *inviteService) CreateInvite(ctx context.Context, poolID int, currentUserID int) (*models.Invite, error) {
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
	if pool.Status == models.StatusCompleted || pool.Status == models.StatusCanceled {
		return nil, ErrPoolInvalidStatus
	}

	maxAttempts := 3 // Попытки сгенерировать уникальный токен

	for attempt := 0; attempt < maxAttempts; attempt++ {
		token, err := generateSecureToken(inviteTokenLength)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInviteTokenGeneration, err)
		}

		invite := &models.Invite{
			PoolID:    poolID,
			Token:     token,
			CreatedBy: currentUserID,
			ExpiresAt: time.Now().Add(inviteDuration),
		}

		err = s.inviteRepo.Create(ctx, invite)
		if err == nil {
			return invite, nil
		}

		// Если ошибка - конфликт токена, пробуем снова
		if !errors.Is(err, repositories.ErrInviteTokenConflict) {
			if errors.Is(err, repositories.ErrInvitePoolInvalid) {
				return nil, ErrPoolNotFound
			}
			return nil, fmt.Errorf("%w: %w", ErrInviteCreationFailed, err)
		}
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrInviteTokenGeneration, maxAttempts)
}

// ListPoolInvites возвращает действующие приглашения пула. Просроченные
// отфильтровываются; их физически удаляет фоновая очистка.
func (s *inviteService) ListPoolInvites(ctx context.Context, poolID int, currentUserID int) ([]*models.Invite, error) {
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

	invites, err := s.inviteRepo.ListByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites for pool %d: %w", poolID, err)
	}

	now := time.Now()
	active := make([]*models.Invite, 0, len(invites))
	for _, invite := range invites {
		if invite.ExpiresAt.After(now) {
			active = append(active, invite)
		}
	}
	return active, nil
}

func (s *inviteService) DeleteInvite(ctx context.Context, inviteID int, currentUserID int) error {
	invite, err := s.inviteRepo.GetByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, repositories.ErrInviteNotFound) {
			return ErrInviteNotFound
		}
		return fmt.Errorf("failed to get invite %d: %w", inviteID, err)
	}

	pool, err := s.poolRepo.GetByID(ctx, invite.PoolID)
	if err != nil {
		if errors.Is(err, repositories.ErrPoolNotFound) {
			return ErrPoolNotFound
		}
		return fmt.Errorf("failed to get pool %d: %w", invite.PoolID, err)
	}
	if pool.OwnerID != currentUserID {
		return ErrOwnerActionForbidden
	}

	if err := s.inviteRepo.Delete(ctx, inviteID); err != nil {
		if errors.Is(err, repositories.ErrInviteNotFound) {
			return ErrInviteNotFound
		}
		return fmt.Errorf("failed to delete invite %d: %w", inviteID, err)
	}
	return nil
}

// DeleteExpired удаляет просроченные приглашения. Вызывается планировщиком.
func (s *inviteService) DeleteExpired(ctx context.Context) (int64, error) {
	return s.inviteRepo.DeleteExpired(ctx)
}
