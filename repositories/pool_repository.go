package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/bracket-pool/models"
	"github.com/lib/pq"
)

var (
	ErrPoolNotFound        = errors.New("pool not found")
	ErrPoolNameConflict    = errors.New("pool name conflict for this owner")
	ErrPoolInUse           = errors.New("pool is in use (entries/results exist)")
	ErrPoolInvalidOwner    = errors.New("invalid owner reference")
	ErrPoolInvalidSemiSlot = errors.New("invalid region reference in semifinal slot")
)

type ListPoolsFilter struct {
	OwnerID  *int
	MemberID *int
	GameType *string
	Status   *models.PoolStatus
	Limit    int
	Offset   int
}

type PoolRepository interface {
	Create(ctx context.Context, exec SQLExecutor, pool *models.Pool) error
	GetByID(ctx context.Context, id int) (*models.Pool, error)
	List(ctx context.Context, filter ListPoolsFilter) ([]models.Pool, error)
	Update(ctx context.Context, pool *models.Pool) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.PoolStatus) error
	UpdateSemifinalSlots(ctx context.Context, exec SQLExecutor, id int, s1a, s1b, s2a, s2b *int) error
	UpdateScoringJSON(ctx context.Context, id int, scoringJSON *string) error
	UpdateLogoKey(ctx context.Context, poolID int, logoKey *string) error
	SetFinalized(ctx context.Context, exec SQLExecutor, poolID int, finalizedAt time.Time) error
	Delete(ctx context.Context, id int) error
	GetPoolsForAutoLock(ctx context.Context, exec SQLExecutor, currentTime time.Time) ([]*models.Pool, error)
	Count(ctx context.Context, status *models.PoolStatus) (int, error)
}

type postgresPoolRepository struct {
	db *sql.DB
}

func NewPostgresPoolRepository(db *sql.DB) PoolRepository {
	return &postgresPoolRepository{db: db}
}

func (r *postgresPoolRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const poolColumns = `
	id, name, description, game_type, owner_id, status, lock_time, fog_of_war,
	semifinal1_a, semifinal1_b, semifinal2_a, semifinal2_b,
	scoring_json, logo_key, created_at, finalized_at`

func (r *postgresPoolRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Pool) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO pools (
			name, description, game_type, owner_id, status, lock_time, fog_of_war, scoring_json
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		p.Name, p.Description, p.GameType, p.OwnerID, p.Status, p.LockTime, p.FogOfWar, p.ScoringJSON,
	).Scan(&p.ID, &p.CreatedAt)

	return r.handlePoolError(err)
}

func (r *postgresPoolRepository) GetByID(ctx context.Context, id int) (*models.Pool, error) {
	executor := r.getExecutor(nil)
	query := `SELECT ` + poolColumns + ` FROM pools WHERE id = $1`

	p := &models.Pool{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.GameType, &p.OwnerID, &p.Status, &p.LockTime, &p.FogOfWar,
		&p.Semifinal1A, &p.Semifinal1B, &p.Semifinal2A, &p.Semifinal2B,
		&p.ScoringJSON, &p.LogoKey, &p.CreatedAt, &p.FinalizedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPoolNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPoolRepository) List(ctx context.Context, filter ListPoolsFilter) ([]models.Pool, error) {
	executor := r.getExecutor(nil)
	query := `SELECT ` + poolColumns + ` FROM pools WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.OwnerID != nil {
		query += fmt.Sprintf(" AND owner_id = $%d", argID)
		args = append(args, *filter.OwnerID)
		argID++
	}
	if filter.MemberID != nil {
		query += fmt.Sprintf(" AND id IN (SELECT pool_id FROM memberships WHERE user_id = $%d AND status = 'member')", argID)
		args = append(args, *filter.MemberID)
		argID++
	}
	if filter.GameType != nil {
		query += fmt.Sprintf(" AND game_type = $%d", argID)
		args = append(args, *filter.GameType)
		argID++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}

	query += " ORDER BY lock_time DESC, created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pools := make([]models.Pool, 0)
	for rows.Next() {
		var p models.Pool
		if scanErr := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.GameType, &p.OwnerID, &p.Status, &p.LockTime, &p.FogOfWar,
			&p.Semifinal1A, &p.Semifinal1B, &p.Semifinal2A, &p.Semifinal2B,
			&p.ScoringJSON, &p.LogoKey, &p.CreatedAt, &p.FinalizedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		pools = append(pools, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return pools, nil
}

func (r *postgresPoolRepository) Update(ctx context.Context, p *models.Pool) error {
	executor := r.getExecutor(nil)
	// Слоты полуфиналов, логотип и финализация обновляются отдельными методами.
	query := `
		UPDATE pools SET
			name = $1,
			description = $2,
			lock_time = $3,
			fog_of_war = $4
		WHERE id = $5`

	result, err := executor.ExecContext(ctx, query,
		p.Name, p.Description, p.LockTime, p.FogOfWar, p.ID,
	)
	if err != nil {
		return r.handlePoolError(err)
	}
	return checkAffectedRows(result, ErrPoolNotFound)
}

func (r *postgresPoolRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.PoolStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE pools SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return r.handlePoolError(err)
	}
	return checkAffectedRows(result, ErrPoolNotFound)
}

func (r *postgresPoolRepository) UpdateSemifinalSlots(ctx context.Context, exec SQLExecutor, id int, s1a, s1b, s2a, s2b *int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE pools SET
			semifinal1_a = $1,
			semifinal1_b = $2,
			semifinal2_a = $3,
			semifinal2_b = $4
		WHERE id = $5`
	result, err := executor.ExecContext(ctx, query, s1a, s1b, s2a, s2b, id)
	if err != nil {
		return r.handlePoolError(err)
	}
	return checkAffectedRows(result, ErrPoolNotFound)
}

func (r *postgresPoolRepository) UpdateScoringJSON(ctx context.Context, id int, scoringJSON *string) error {
	executor := r.getExecutor(nil)
	result, err := executor.ExecContext(ctx, `UPDATE pools SET scoring_json = $1 WHERE id = $2`, scoringJSON, id)
	if err != nil {
		return fmt.Errorf("failed to update pool scoring settings: %w", err)
	}
	return checkAffectedRows(result, ErrPoolNotFound)
}

func (r *postgresPoolRepository) UpdateLogoKey(ctx context.Context, poolID int, logoKey *string) error {
	executor := r.getExecutor(nil)
	result, err := executor.ExecContext(ctx, `UPDATE pools SET logo_key = $1 WHERE id = $2`, logoKey, poolID)
	if err != nil {
		return fmt.Errorf("failed to update pool logo key: %w", err)
	}
	return checkAffectedRows(result, ErrPoolNotFound)
}

func (r *postgresPoolRepository) SetFinalized(ctx context.Context, exec SQLExecutor, poolID int, finalizedAt time.Time) error {
	executor := r.getExecutor(exec)
	query := `UPDATE pools SET status = $1, finalized_at = $2 WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, models.StatusCompleted, finalizedAt, poolID)
	if err != nil {
		return r.handlePoolError(err)
	}
	return checkAffectedRows(result, ErrPoolNotFound)
}

func (r *postgresPoolRepository) Delete(ctx context.Context, id int) error {
	executor := r.getExecutor(nil)
	result, err := executor.ExecContext(ctx, `DELETE FROM pools WHERE id = $1`, id)
	if err != nil {
		return r.handlePoolError(err)
	}
	return checkAffectedRows(result, ErrPoolNotFound)
}

// GetPoolsForAutoLock выбирает открытые пулы, чьё время блокировки прошло.
func (r *postgresPoolRepository) GetPoolsForAutoLock(ctx context.Context, exec SQLExecutor, currentTime time.Time) ([]*models.Pool, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + poolColumns + ` FROM pools WHERE status = $1 AND lock_time <= $2`

	rows, err := executor.QueryContext(ctx, query, models.StatusOpen, currentTime)
	if err != nil {
		return nil, fmt.Errorf("failed to query pools for auto lock: %w", err)
	}
	defer rows.Close()

	var pools []*models.Pool
	for rows.Next() {
		var p models.Pool
		if scanErr := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.GameType, &p.OwnerID, &p.Status, &p.LockTime, &p.FogOfWar,
			&p.Semifinal1A, &p.Semifinal1B, &p.Semifinal2A, &p.Semifinal2B,
			&p.ScoringJSON, &p.LogoKey, &p.CreatedAt, &p.FinalizedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan pool for auto lock: %w", scanErr)
		}
		pools = append(pools, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during pool rows iteration for auto lock: %w", err)
	}
	return pools, nil
}

func (r *postgresPoolRepository) Count(ctx context.Context, status *models.PoolStatus) (int, error) {
	query := `SELECT COUNT(*) FROM pools`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	var count int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *postgresPoolRepository) handlePoolError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "pools_owner_id_name_key" {
				return ErrPoolNameConflict
			}
		case "23503":
			switch pqErr.Constraint {
			case "pools_owner_id_fkey":
				return ErrPoolInvalidOwner
			case "pools_semifinal1_a_fkey", "pools_semifinal1_b_fkey",
				"pools_semifinal2_a_fkey", "pools_semifinal2_b_fkey":
				return ErrPoolInvalidSemiSlot
			default:
				return ErrPoolInUse
			}
		}
	}
	return err
}
