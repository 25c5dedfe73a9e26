package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/bracket-pool/models"
	"github.com/lib/pq"
)

var (
	ErrMembershipNotFound    = errors.New("membership not found")
	ErrMembershipConflict    = errors.New("user already joined this pool")
	ErrMembershipPoolInvalid = errors.New("membership pool reference invalid")
	ErrMembershipUserInvalid = errors.New("membership user reference invalid")
)

type MembershipRepository interface {
	Create(ctx context.Context, exec SQLExecutor, m *models.Membership) error
	GetByPoolAndUser(ctx context.Context, poolID, userID int) (*models.Membership, error)
	ListByPool(ctx context.Context, poolID int, status *models.MembershipStatus) ([]models.Membership, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MembershipStatus) error
	CountByPool(ctx context.Context, poolID int, status models.MembershipStatus) (int, error)
}

type postgresMembershipRepository struct {
	db *sql.DB
}

func NewPostgresMembershipRepository(db *sql.DB) MembershipRepository {
	return &postgresMembershipRepository{db: db}
}

func (r *postgresMembershipRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMembershipRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Membership) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO memberships (pool_id, user_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query, m.PoolID, m.UserID, m.Status).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return ErrMembershipConflict
			case "23503":
				switch pqErr.Constraint {
				case "memberships_pool_id_fkey":
					return ErrMembershipPoolInvalid
				case "memberships_user_id_fkey":
					return ErrMembershipUserInvalid
				}
			}
		}
		return err
	}
	return nil
}

func (r *postgresMembershipRepository) GetByPoolAndUser(ctx context.Context, poolID, userID int) (*models.Membership, error) {
	query := `SELECT id, pool_id, user_id, status, created_at FROM memberships WHERE pool_id = $1 AND user_id = $2`

	var m models.Membership
	err := r.db.QueryRowContext(ctx, query, poolID, userID).Scan(&m.ID, &m.PoolID, &m.UserID, &m.Status, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ListByPool возвращает участников вместе с данными пользователей.
func (r *postgresMembershipRepository) ListByPool(ctx context.Context, poolID int, status *models.MembershipStatus) ([]models.Membership, error) {
	query := `
		SELECT m.id, m.pool_id, m.user_id, m.status, m.created_at,
		       u.id, u.first_name, u.last_name, u.nickname, u.role, u.email, u.created_at
		FROM memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.pool_id = $1`

	args := []interface{}{poolID}
	if status != nil {
		query += ` AND m.status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY m.created_at, m.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]models.Membership, 0)
	for rows.Next() {
		var m models.Membership
		var u models.User
		if scanErr := rows.Scan(
			&m.ID, &m.PoolID, &m.UserID, &m.Status, &m.CreatedAt,
			&u.ID, &u.FirstName, &u.LastName, &u.Nickname, &u.Role, &u.Email, &u.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		m.User = &u
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *postgresMembershipRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MembershipStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE memberships SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMembershipNotFound)
}

func (r *postgresMembershipRepository) CountByPool(ctx context.Context, poolID int, status models.MembershipStatus) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memberships WHERE pool_id = $1 AND status = $2`,
		poolID, status,
	).Scan(&count)
	return count, err
}
