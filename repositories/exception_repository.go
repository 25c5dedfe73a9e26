package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/bracket-pool/models"
	"github.com/lib/pq"
)

var (
	ErrExceptionNotFound = errors.New("visibility exception not found")
	ErrExceptionConflict = errors.New("visibility exception already granted")
)

type ExceptionRepository interface {
	Create(ctx context.Context, exception *models.VisibilityException) error
	Delete(ctx context.Context, poolID, viewerUserID int) error
	ListByPool(ctx context.Context, poolID int) ([]models.VisibilityException, error)
	ViewerSetByPool(ctx context.Context, poolID int) (map[int]bool, error)
}

type postgresExceptionRepository struct {
	db *sql.DB
}

func NewPostgresExceptionRepository(db *sql.DB) ExceptionRepository {
	return &postgresExceptionRepository{db: db}
}

func (r *postgresExceptionRepository) Create(ctx context.Context, e *models.VisibilityException) error {
	query := `
		INSERT INTO visibility_exceptions (pool_id, viewer_user_id, granted_by)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, e.PoolID, e.ViewerUserID, e.GrantedBy).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrExceptionConflict
		}
		return err
	}
	return nil
}

func (r *postgresExceptionRepository) Delete(ctx context.Context, poolID, viewerUserID int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM visibility_exceptions WHERE pool_id = $1 AND viewer_user_id = $2`,
		poolID, viewerUserID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrExceptionNotFound)
}

func (r *postgresExceptionRepository) ListByPool(ctx context.Context, poolID int) ([]models.VisibilityException, error) {
	query := `
		SELECT id, pool_id, viewer_user_id, granted_by, created_at
		FROM visibility_exceptions
		WHERE pool_id = $1
		ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, poolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exceptions := make([]models.VisibilityException, 0)
	for rows.Next() {
		var e models.VisibilityException
		if scanErr := rows.Scan(&e.ID, &e.PoolID, &e.ViewerUserID, &e.GrantedBy, &e.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		exceptions = append(exceptions, e)
	}
	return exceptions, rows.Err()
}

// ViewerSetByPool возвращает исключения в форме, которую принимает движок видимости.
func (r *postgresExceptionRepository) ViewerSetByPool(ctx context.Context, poolID int) (map[int]bool, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT viewer_user_id FROM visibility_exceptions WHERE pool_id = $1`, poolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	viewers := make(map[int]bool)
	for rows.Next() {
		var id int
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, scanErr
		}
		viewers[id] = true
	}
	return viewers, rows.Err()
}
