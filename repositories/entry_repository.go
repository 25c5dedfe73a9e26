package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/bracket-pool/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrEntryNotFound    = errors.New("entry not found")
	ErrEntryConflict    = errors.New("entry already exists for this user in pool")
	ErrEntryPoolInvalid = errors.New("entry pool reference invalid")
	ErrEntryUserInvalid = errors.New("entry user reference invalid")
)

type EntryRepository interface {
	Create(ctx context.Context, exec SQLExecutor, entry *models.Entry) error
	GetByID(ctx context.Context, id int) (*models.Entry, error)
	GetByPublicID(ctx context.Context, publicID uuid.UUID) (*models.Entry, error)
	GetByPoolAndUser(ctx context.Context, poolID, userID int) (*models.Entry, error)
	GetOfficialByPool(ctx context.Context, poolID int) (*models.Entry, error)
	ListByPool(ctx context.Context, poolID int) ([]models.Entry, error)
	ReplacePicks(ctx context.Context, exec SQLExecutor, entryID int, picks []models.Pick) error
	ListPicks(ctx context.Context, entryID int) ([]models.Pick, error)
	ListPicksByPool(ctx context.Context, poolID int) (map[int][]models.Pick, error)
	UpdateScoreCache(ctx context.Context, exec SQLExecutor, entryID int, total, base, bonus, correct int) error
	Touch(ctx context.Context, exec SQLExecutor, entryID int) error
	DeleteByPoolAndUser(ctx context.Context, exec SQLExecutor, poolID, userID int) error
	CountAll(ctx context.Context) (int, error)
}

type postgresEntryRepository struct {
	db *sql.DB
}

func NewPostgresEntryRepository(db *sql.DB) EntryRepository {
	return &postgresEntryRepository{db: db}
}

func (r *postgresEntryRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const entryColumns = `
	id, pool_id, user_id, public_id, is_official,
	total_points, base_points, bonus_points, correct_picks,
	submitted_at, updated_at`

func (r *postgresEntryRepository) Create(ctx context.Context, exec SQLExecutor, e *models.Entry) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO entries (pool_id, user_id, public_id, is_official)
		VALUES ($1, $2, $3, $4)
		RETURNING id, submitted_at, updated_at`

	err := executor.QueryRowContext(ctx, query,
		e.PoolID, e.UserID, e.PublicID, e.IsOfficial,
	).Scan(&e.ID, &e.SubmittedAt, &e.UpdatedAt)

	return handleEntryError(err)
}

func (r *postgresEntryRepository) GetByID(ctx context.Context, id int) (*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = $1`
	return r.scanEntryRow(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresEntryRepository) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE public_id = $1`
	return r.scanEntryRow(r.db.QueryRowContext(ctx, query, publicID))
}

func (r *postgresEntryRepository) GetByPoolAndUser(ctx context.Context, poolID, userID int) (*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE pool_id = $1 AND user_id = $2 AND is_official = FALSE`
	return r.scanEntryRow(r.db.QueryRowContext(ctx, query, poolID, userID))
}

func (r *postgresEntryRepository) GetOfficialByPool(ctx context.Context, poolID int) (*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE pool_id = $1 AND is_official = TRUE`
	return r.scanEntryRow(r.db.QueryRowContext(ctx, query, poolID))
}

// ListByPool выдаёт записи пула в порядке подачи вместе с владельцами.
// Порядок подачи служит отображаемым тай-брейком в таблице лидеров.
func (r *postgresEntryRepository) ListByPool(ctx context.Context, poolID int) ([]models.Entry, error) {
	query := `
		SELECT e.id, e.pool_id, e.user_id, e.public_id, e.is_official,
		       e.total_points, e.base_points, e.bonus_points, e.correct_picks,
		       e.submitted_at, e.updated_at,
		       u.id, u.first_name, u.last_name, u.nickname, u.role, u.email, u.created_at, u.logo_key
		FROM entries e
		JOIN users u ON u.id = e.user_id
		WHERE e.pool_id = $1
		ORDER BY e.submitted_at, e.id`

	rows, err := r.db.QueryContext(ctx, query, poolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.Entry, 0)
	for rows.Next() {
		var e models.Entry
		var u models.User
		if scanErr := rows.Scan(
			&e.ID, &e.PoolID, &e.UserID, &e.PublicID, &e.IsOfficial,
			&e.TotalPoints, &e.BasePoints, &e.BonusPoints, &e.CorrectPicks,
			&e.SubmittedAt, &e.UpdatedAt,
			&u.ID, &u.FirstName, &u.LastName, &u.Nickname, &u.Role, &u.Email, &u.CreatedAt, &u.LogoKey,
		); scanErr != nil {
			return nil, scanErr
		}
		e.Owner = &u
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *postgresEntryRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE is_official = FALSE`).Scan(&count)
	return count, err
}

// ReplacePicks заменяет весь набор прогнозов записи. Вызывать в транзакции
// вместе с Touch, чтобы отправка сетки оставалась атомарной.
func (r *postgresEntryRepository) ReplacePicks(ctx context.Context, exec SQLExecutor, entryID int, picks []models.Pick) error {
	executor := r.getExecutor(exec)

	if _, err := executor.ExecContext(ctx, `DELETE FROM entry_picks WHERE entry_id = $1`, entryID); err != nil {
		return fmt.Errorf("failed to clear picks for entry %d: %w", entryID, err)
	}

	query := `INSERT INTO entry_picks (entry_id, matchup_uid, team_id) VALUES ($1, $2, $3)`
	for i := range picks {
		picks[i].EntryID = entryID
		if _, err := executor.ExecContext(ctx, query, entryID, picks[i].MatchupUID, picks[i].TeamID); err != nil {
			return fmt.Errorf("failed to insert pick %s for entry %d: %w", picks[i].MatchupUID, entryID, err)
		}
	}
	return nil
}

func (r *postgresEntryRepository) ListPicks(ctx context.Context, entryID int) ([]models.Pick, error) {
	query := `SELECT id, entry_id, matchup_uid, team_id FROM entry_picks WHERE entry_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	picks := make([]models.Pick, 0)
	for rows.Next() {
		var p models.Pick
		if scanErr := rows.Scan(&p.ID, &p.EntryID, &p.MatchupUID, &p.TeamID); scanErr != nil {
			return nil, scanErr
		}
		picks = append(picks, p)
	}
	return picks, rows.Err()
}

// ListPicksByPool загружает прогнозы всех записей пула одним запросом,
// сгруппированные по entry_id. Используется при пересчёте очков.
func (r *postgresEntryRepository) ListPicksByPool(ctx context.Context, poolID int) (map[int][]models.Pick, error) {
	query := `
		SELECT p.id, p.entry_id, p.matchup_uid, p.team_id
		FROM entry_picks p
		JOIN entries e ON e.id = p.entry_id
		WHERE e.pool_id = $1
		ORDER BY p.entry_id, p.id`

	rows, err := r.db.QueryContext(ctx, query, poolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byEntry := make(map[int][]models.Pick)
	for rows.Next() {
		var p models.Pick
		if scanErr := rows.Scan(&p.ID, &p.EntryID, &p.MatchupUID, &p.TeamID); scanErr != nil {
			return nil, scanErr
		}
		byEntry[p.EntryID] = append(byEntry[p.EntryID], p)
	}
	return byEntry, rows.Err()
}

func (r *postgresEntryRepository) UpdateScoreCache(ctx context.Context, exec SQLExecutor, entryID int, total, base, bonus, correct int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE entries SET
			total_points = $1,
			base_points = $2,
			bonus_points = $3,
			correct_picks = $4
		WHERE id = $5`
	result, err := executor.ExecContext(ctx, query, total, base, bonus, correct, entryID)
	if err != nil {
		return fmt.Errorf("failed to update score cache for entry %d: %w", entryID, err)
	}
	return checkAffectedRows(result, ErrEntryNotFound)
}

func (r *postgresEntryRepository) Touch(ctx context.Context, exec SQLExecutor, entryID int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE entries SET updated_at = NOW() WHERE id = $1`, entryID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrEntryNotFound)
}

func (r *postgresEntryRepository) DeleteByPoolAndUser(ctx context.Context, exec SQLExecutor, poolID, userID int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM entries WHERE pool_id = $1 AND user_id = $2 AND is_official = FALSE`
	_, err := executor.ExecContext(ctx, query, poolID, userID)
	return err
}

func (r *postgresEntryRepository) scanEntryRow(row *sql.Row) (*models.Entry, error) {
	var e models.Entry
	err := row.Scan(
		&e.ID, &e.PoolID, &e.UserID, &e.PublicID, &e.IsOfficial,
		&e.TotalPoints, &e.BasePoints, &e.BonusPoints, &e.CorrectPicks,
		&e.SubmittedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to scan entry: %w", err)
	}
	return &e, nil
}

func handleEntryError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "entries_pool_id_user_id_key" {
				return ErrEntryConflict
			}
		case "23503":
			switch pqErr.Constraint {
			case "entries_pool_id_fkey":
				return ErrEntryPoolInvalid
			case "entries_user_id_fkey":
				return ErrEntryUserInvalid
			}
		}
	}
	return err
}
