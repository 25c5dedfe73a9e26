package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/bracket-pool/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound      = errors.New("team not found")
	ErrTeamSeedConflict  = errors.New("seed already taken in region")
	ErrTeamRegionInvalid = errors.New("team region reference invalid")
)

type TeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListByRegion(ctx context.Context, regionID int) ([]models.Team, error)
	ListByPool(ctx context.Context, poolID int) ([]models.Team, error)
	UpdateLogoKey(ctx context.Context, teamID int, logoKey *string) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO teams (region_id, name, seed)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := executor.QueryRowContext(ctx, query, team.RegionID, team.Name, team.Seed).Scan(&team.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				if pqErr.Constraint == "teams_region_id_seed_key" {
					return ErrTeamSeedConflict
				}
			case "23503":
				return ErrTeamRegionInvalid
			}
		}
		return err
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT id, region_id, name, seed, logo_key FROM teams WHERE id = $1`

	var t models.Team
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.RegionID, &t.Name, &t.Seed, &t.LogoKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *postgresTeamRepository) ListByRegion(ctx context.Context, regionID int) ([]models.Team, error) {
	query := `SELECT id, region_id, name, seed, logo_key FROM teams WHERE region_id = $1 ORDER BY seed`
	return r.list(ctx, query, regionID)
}

func (r *postgresTeamRepository) ListByPool(ctx context.Context, poolID int) ([]models.Team, error) {
	query := `
		SELECT t.id, t.region_id, t.name, t.seed, t.logo_key
		FROM teams t
		JOIN regions r ON r.id = t.region_id
		WHERE r.pool_id = $1
		ORDER BY r.position, t.seed`
	return r.list(ctx, query, poolID)
}

func (r *postgresTeamRepository) UpdateLogoKey(ctx context.Context, teamID int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE teams SET logo_key = $1 WHERE id = $2`, logoKey, teamID)
	if err != nil {
		return fmt.Errorf("failed to update team logo key: %w", err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) list(ctx context.Context, query string, arg interface{}) ([]models.Team, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		var t models.Team
		if scanErr := rows.Scan(&t.ID, &t.RegionID, &t.Name, &t.Seed, &t.LogoKey); scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}
