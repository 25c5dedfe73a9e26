package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/bracket-pool/models"
	"github.com/lib/pq"
)

var (
	ErrRegionNotFound     = errors.New("region not found")
	ErrRegionNameConflict = errors.New("region name conflict within pool")
	ErrRegionPoolInvalid  = errors.New("region pool reference invalid")
)

type RegionRepository interface {
	Create(ctx context.Context, exec SQLExecutor, region *models.Region) error
	GetByID(ctx context.Context, id int) (*models.Region, error)
	ListByPool(ctx context.Context, poolID int) ([]models.Region, error)
	DeleteByPool(ctx context.Context, exec SQLExecutor, poolID int) error
}

type postgresRegionRepository struct {
	db *sql.DB
}

func NewPostgresRegionRepository(db *sql.DB) RegionRepository {
	return &postgresRegionRepository{db: db}
}

func (r *postgresRegionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRegionRepository) Create(ctx context.Context, exec SQLExecutor, region *models.Region) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO regions (pool_id, name, position)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := executor.QueryRowContext(ctx, query, region.PoolID, region.Name, region.Position).Scan(&region.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return ErrRegionNameConflict
			case "23503":
				return ErrRegionPoolInvalid
			}
		}
		return err
	}
	return nil
}

func (r *postgresRegionRepository) GetByID(ctx context.Context, id int) (*models.Region, error) {
	query := `SELECT id, pool_id, name, position FROM regions WHERE id = $1`

	var region models.Region
	err := r.db.QueryRowContext(ctx, query, id).Scan(&region.ID, &region.PoolID, &region.Name, &region.Position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegionNotFound
		}
		return nil, err
	}
	return &region, nil
}

func (r *postgresRegionRepository) ListByPool(ctx context.Context, poolID int) ([]models.Region, error) {
	query := `SELECT id, pool_id, name, position FROM regions WHERE pool_id = $1 ORDER BY position`

	rows, err := r.db.QueryContext(ctx, query, poolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regions := make([]models.Region, 0)
	for rows.Next() {
		var region models.Region
		if scanErr := rows.Scan(&region.ID, &region.PoolID, &region.Name, &region.Position); scanErr != nil {
			return nil, scanErr
		}
		regions = append(regions, region)
	}
	return regions, rows.Err()
}

func (r *postgresRegionRepository) DeleteByPool(ctx context.Context, exec SQLExecutor, poolID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM regions WHERE pool_id = $1`, poolID)
	return err
}
