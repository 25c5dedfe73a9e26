package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/bracket-pool/models"
)

type WinnerRepository interface {
	ReplaceForPool(ctx context.Context, exec SQLExecutor, poolID int, winners []models.PoolWinner) error
	ListByPool(ctx context.Context, poolID int) ([]models.PoolWinner, error)
}

type postgresWinnerRepository struct {
	db *sql.DB
}

func NewPostgresWinnerRepository(db *sql.DB) WinnerRepository {
	return &postgresWinnerRepository{db: db}
}

func (r *postgresWinnerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// ReplaceForPool атомарно заменяет набор победителей пула. Повторная
// финализация (после исправления результатов) перезаписывает прежний набор.
func (r *postgresWinnerRepository) ReplaceForPool(ctx context.Context, exec SQLExecutor, poolID int, winners []models.PoolWinner) error {
	executor := r.getExecutor(exec)

	if _, err := executor.ExecContext(ctx, `DELETE FROM pool_winners WHERE pool_id = $1`, poolID); err != nil {
		return fmt.Errorf("failed to clear winners for pool %d: %w", poolID, err)
	}

	query := `
		INSERT INTO pool_winners (pool_id, entry_id, user_id, total_points, finalized_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	for i := range winners {
		w := &winners[i]
		if err := executor.QueryRowContext(ctx, query,
			poolID, w.EntryID, w.UserID, w.TotalPoints, w.FinalizedAt,
		).Scan(&w.ID); err != nil {
			return fmt.Errorf("failed to insert winner entry %d for pool %d: %w", w.EntryID, poolID, err)
		}
	}
	return nil
}

func (r *postgresWinnerRepository) ListByPool(ctx context.Context, poolID int) ([]models.PoolWinner, error) {
	query := `
		SELECT w.id, w.pool_id, w.entry_id, w.user_id, w.total_points, w.finalized_at,
		       u.id, u.first_name, u.last_name, u.nickname, u.role, u.email, u.created_at
		FROM pool_winners w
		JOIN users u ON u.id = w.user_id
		WHERE w.pool_id = $1
		ORDER BY w.id`

	rows, err := r.db.QueryContext(ctx, query, poolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	winners := make([]models.PoolWinner, 0)
	for rows.Next() {
		var w models.PoolWinner
		var u models.User
		if scanErr := rows.Scan(
			&w.ID, &w.PoolID, &w.EntryID, &w.UserID, &w.TotalPoints, &w.FinalizedAt,
			&u.ID, &u.FirstName, &u.LastName, &u.Nickname, &u.Role, &u.Email, &u.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		w.User = &u
		winners = append(winners, w)
	}
	return winners, rows.Err()
}
