package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/bracket-pool/models"
	"github.com/lib/pq"
)

var (
	ErrInviteNotFound      = errors.New("invite not found")
	ErrInviteTokenConflict = errors.New("invite token conflict")
	ErrInvitePoolInvalid   = errors.New("invite pool reference invalid")
)

type InviteRepository interface {
	Create(ctx context.Context, invite *models.Invite) error
	GetByID(ctx context.Context, id int) (*models.Invite, error)
	GetByToken(ctx context.Context, token string) (*models.Invite, error)
	ListByPool(ctx context.Context, poolID int) ([]*models.Invite, error)
	Delete(ctx context.Context, id int) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type postgresInviteRepository struct {
	db *sql.DB
}

func NewPostgresInviteRepository(db *sql.DB) InviteRepository {
	return &postgresInviteRepository{db: db}
}

func (r *postgresInviteRepository) Create(ctx context.Context, invite *models.Invite) error {
	query := `
		INSERT INTO invites (pool_id, token, created_by, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		invite.PoolID, invite.Token, invite.CreatedBy, invite.ExpiresAt,
	).Scan(&invite.ID, &invite.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return ErrInviteTokenConflict
			case "23503":
				return ErrInvitePoolInvalid
			}
		}
		return err
	}
	return nil
}

func (r *postgresInviteRepository) GetByID(ctx context.Context, id int) (*models.Invite, error) {
	query := `SELECT id, pool_id, token, created_by, expires_at, created_at FROM invites WHERE id = $1`
	return r.scanInviteRow(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresInviteRepository) GetByToken(ctx context.Context, token string) (*models.Invite, error) {
	query := `SELECT id, pool_id, token, created_by, expires_at, created_at FROM invites WHERE token = $1`
	return r.scanInviteRow(r.db.QueryRowContext(ctx, query, token))
}

func (r *postgresInviteRepository) ListByPool(ctx context.Context, poolID int) ([]*models.Invite, error) {
	query := `SELECT id, pool_id, token, created_by, expires_at, created_at FROM invites WHERE pool_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, poolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invites := make([]*models.Invite, 0)
	for rows.Next() {
		var inv models.Invite
		if scanErr := rows.Scan(&inv.ID, &inv.PoolID, &inv.Token, &inv.CreatedBy, &inv.ExpiresAt, &inv.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		invites = append(invites, &inv)
	}
	return invites, rows.Err()
}

func (r *postgresInviteRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM invites WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrInviteNotFound)
}

func (r *postgresInviteRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM invites WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *postgresInviteRepository) scanInviteRow(row *sql.Row) (*models.Invite, error) {
	var inv models.Invite
	err := row.Scan(&inv.ID, &inv.PoolID, &inv.Token, &inv.CreatedBy, &inv.ExpiresAt, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}
	return &inv, nil
}
