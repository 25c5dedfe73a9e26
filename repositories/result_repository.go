package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/bracket-pool/models"
	"github.com/lib/pq"
)

var (
	ErrResultNotFound    = errors.New("result not found")
	ErrResultTeamInvalid = errors.New("result winner team reference invalid")
	ErrResultPoolInvalid = errors.New("result pool reference invalid")
)

type ResultRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, result *models.Result) error
	GetByPoolAndMatchup(ctx context.Context, poolID int, matchupUID string) (*models.Result, error)
	ListByPool(ctx context.Context, exec SQLExecutor, poolID int) ([]models.Result, error)
	Delete(ctx context.Context, exec SQLExecutor, poolID int, matchupUID string) error
	CountAll(ctx context.Context) (int, error)
}

type postgresResultRepository struct {
	db *sql.DB
}

func NewPostgresResultRepository(db *sql.DB) ResultRepository {
	return &postgresResultRepository{db: db}
}

func (r *postgresResultRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// Upsert записывает результат матчапа; повторная запись того же матчапа
// перезаписывает победителя (исправление).
func (r *postgresResultRepository) Upsert(ctx context.Context, exec SQLExecutor, res *models.Result) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO results (pool_id, matchup_uid, winner_team_id, recorded_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (pool_id, matchup_uid)
		DO UPDATE SET winner_team_id = EXCLUDED.winner_team_id,
		              recorded_by = EXCLUDED.recorded_by,
		              recorded_at = NOW()
		RETURNING id, recorded_at`

	err := executor.QueryRowContext(ctx, query,
		res.PoolID, res.MatchupUID, res.WinnerTeamID, res.RecordedBy,
	).Scan(&res.ID, &res.RecordedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			switch pqErr.Constraint {
			case "results_winner_team_id_fkey":
				return ErrResultTeamInvalid
			case "results_pool_id_fkey":
				return ErrResultPoolInvalid
			}
		}
		return err
	}
	return nil
}

func (r *postgresResultRepository) GetByPoolAndMatchup(ctx context.Context, poolID int, matchupUID string) (*models.Result, error) {
	query := `
		SELECT id, pool_id, matchup_uid, winner_team_id, recorded_by, recorded_at
		FROM results
		WHERE pool_id = $1 AND matchup_uid = $2`

	var res models.Result
	err := r.db.QueryRowContext(ctx, query, poolID, matchupUID).Scan(
		&res.ID, &res.PoolID, &res.MatchupUID, &res.WinnerTeamID, &res.RecordedBy, &res.RecordedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, err
	}
	return &res, nil
}

func (r *postgresResultRepository) ListByPool(ctx context.Context, exec SQLExecutor, poolID int) ([]models.Result, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, pool_id, matchup_uid, winner_team_id, recorded_by, recorded_at
		FROM results
		WHERE pool_id = $1
		ORDER BY recorded_at, id`

	rows, err := executor.QueryContext(ctx, query, poolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]models.Result, 0)
	for rows.Next() {
		var res models.Result
		if scanErr := rows.Scan(
			&res.ID, &res.PoolID, &res.MatchupUID, &res.WinnerTeamID, &res.RecordedBy, &res.RecordedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

func (r *postgresResultRepository) Delete(ctx context.Context, exec SQLExecutor, poolID int, matchupUID string) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM results WHERE pool_id = $1 AND matchup_uid = $2`, poolID, matchupUID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrResultNotFound)
}

func (r *postgresResultRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results`).Scan(&count)
	return count, err
}
