package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Dosada05/bracket-pool/brackets"
	"github.com/Dosada05/bracket-pool/models"
	"github.com/Dosada05/bracket-pool/repositories"
	"github.com/Dosada05/bracket-pool/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// testDB возвращает *sql.DB поверх драйвера-заглушки: транзакции открываются
// и закрываются, но никуда не пишут. Сами запросы в тестах не выполняются,
// репозитории подменяются фейками.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db := sql.OpenDB(noopConnector{})
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type noopConnector struct{}

func (noopConnector) Connect(context.Context) (driver.Conn, error) { return &noopConn{}, nil }
func (noopConnector) Driver() driver.Driver                        { return noopDriver{} }

type noopDriver struct{}

func (noopDriver) Open(string) (driver.Conn, error) { return &noopConn{}, nil }

type noopConn struct{}

func (*noopConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("noop driver does not prepare statements") }
func (*noopConn) Close() error                        { return nil }
func (*noopConn) Begin() (driver.Tx, error)           { return noopTx{}, nil }

type noopTx struct{}

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Фикстуры ---

// testPool возвращает открытый пул single16 с дедлайном в будущем.
func testPool() *models.Pool {
	return &models.Pool{
		ID:       7,
		Name:     "Office Madness",
		GameType: "single16",
		OwnerID:  1,
		Status:   models.StatusOpen,
		LockTime: time.Now().Add(time.Hour),
	}
}

// testStructure16 строит сетку single16 на командах с id 1..16 (id == seed).
func testStructure16(t *testing.T) *brackets.Structure {
	t.Helper()
	teams := make([]brackets.TeamSeed, 0, 16)
	for seed := 1; seed <= 16; seed++ {
		teams = append(teams, brackets.TeamSeed{TeamID: seed, Name: fmt.Sprintf("Team %d", seed), Seed: seed})
	}
	st, err := brackets.BuildStructure(brackets.BuildParams{
		Regions:   []brackets.RegionSeeding{{Name: "Field", Teams: teams}},
		SeedCount: 16,
	})
	require.NoError(t, err)
	return st
}

// fullResults проигрывает весь турнир в пользу меньшего id (равносильно
// победам фаворитов, id совпадает с посевом).
func fullResults(t *testing.T, st *brackets.Structure) brackets.Results {
	t.Helper()
	results := brackets.Results{}
	for _, m := range st.Matchups {
		t1, t2 := st.ResolveTeams(m, results)
		require.NotNil(t, t1, "matchup %s side 1 unresolved", m.UID)
		require.NotNil(t, t2, "matchup %s side 2 unresolved", m.UID)
		w := *t1
		if *t2 < w {
			w = *t2
		}
		results[m.UID] = w
	}
	return results
}

func resultRows(poolID int, results brackets.Results) []models.Result {
	rows := make([]models.Result, 0, len(results))
	for uid, team := range results {
		rows = append(rows, models.Result{PoolID: poolID, MatchupUID: uid, WinnerTeamID: team})
	}
	return rows
}

func picksOf(entryID int, results brackets.Results) []models.Pick {
	picks := make([]models.Pick, 0, len(results))
	for uid, team := range results {
		picks = append(picks, models.Pick{EntryID: entryID, MatchupUID: uid, TeamID: team})
	}
	return picks
}

func testEntry(id, poolID, userID int) models.Entry {
	return models.Entry{
		ID:       id,
		PoolID:   poolID,
		UserID:   userID,
		PublicID: uuid.New(),
	}
}

// --- Фейки репозиториев ---
// Каждый метод делегирует в одноимённое поле-функцию; вызов без неё — ошибка
// теста: фейк сообщает о непредусмотренном обращении паникой.

type fakePoolRepo struct {
	CreateFunc               func(ctx context.Context, exec repositories.SQLExecutor, pool *models.Pool) error
	GetByIDFunc              func(ctx context.Context, id int) (*models.Pool, error)
	ListFunc                 func(ctx context.Context, filter repositories.ListPoolsFilter) ([]models.Pool, error)
	UpdateFunc               func(ctx context.Context, pool *models.Pool) error
	UpdateStatusFunc         func(ctx context.Context, exec repositories.SQLExecutor, id int, status models.PoolStatus) error
	UpdateSemifinalSlotsFunc func(ctx context.Context, exec repositories.SQLExecutor, id int, s1a, s1b, s2a, s2b *int) error
	UpdateScoringJSONFunc    func(ctx context.Context, id int, scoringJSON *string) error
	UpdateLogoKeyFunc        func(ctx context.Context, poolID int, logoKey *string) error
	SetFinalizedFunc         func(ctx context.Context, exec repositories.SQLExecutor, poolID int, finalizedAt time.Time) error
	DeleteFunc               func(ctx context.Context, id int) error
	GetPoolsForAutoLockFunc  func(ctx context.Context, exec repositories.SQLExecutor, currentTime time.Time) ([]*models.Pool, error)
	CountFunc                func(ctx context.Context, status *models.PoolStatus) (int, error)
}

var _ repositories.PoolRepository = (*fakePoolRepo)(nil)

func (f *fakePoolRepo) Create(ctx context.Context, exec repositories.SQLExecutor, pool *models.Pool) error {
	if f.CreateFunc == nil {
		panic("unexpected PoolRepository.Create call")
	}
	return f.CreateFunc(ctx, exec, pool)
}

func (f *fakePoolRepo) GetByID(ctx context.Context, id int) (*models.Pool, error) {
	if f.GetByIDFunc == nil {
		panic("unexpected PoolRepository.GetByID call")
	}
	return f.GetByIDFunc(ctx, id)
}

func (f *fakePoolRepo) List(ctx context.Context, filter repositories.ListPoolsFilter) ([]models.Pool, error) {
	if f.ListFunc == nil {
		panic("unexpected PoolRepository.List call")
	}
	return f.ListFunc(ctx, filter)
}

func (f *fakePoolRepo) Update(ctx context.Context, pool *models.Pool) error {
	if f.UpdateFunc == nil {
		panic("unexpected PoolRepository.Update call")
	}
	return f.UpdateFunc(ctx, pool)
}

func (f *fakePoolRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.PoolStatus) error {
	if f.UpdateStatusFunc == nil {
		panic("unexpected PoolRepository.UpdateStatus call")
	}
	return f.UpdateStatusFunc(ctx, exec, id, status)
}

func (f *fakePoolRepo) UpdateSemifinalSlots(ctx context.Context, exec repositories.SQLExecutor, id int, s1a, s1b, s2a, s2b *int) error {
	if f.UpdateSemifinalSlotsFunc == nil {
		panic("unexpected PoolRepository.UpdateSemifinalSlots call")
	}
	return f.UpdateSemifinalSlotsFunc(ctx, exec, id, s1a, s1b, s2a, s2b)
}

func (f *fakePoolRepo) UpdateScoringJSON(ctx context.Context, id int, scoringJSON *string) error {
	if f.UpdateScoringJSONFunc == nil {
		panic("unexpected PoolRepository.UpdateScoringJSON call")
	}
	return f.UpdateScoringJSONFunc(ctx, id, scoringJSON)
}

func (f *fakePoolRepo) UpdateLogoKey(ctx context.Context, poolID int, logoKey *string) error {
	if f.UpdateLogoKeyFunc == nil {
		panic("unexpected PoolRepository.UpdateLogoKey call")
	}
	return f.UpdateLogoKeyFunc(ctx, poolID, logoKey)
}

func (f *fakePoolRepo) SetFinalized(ctx context.Context, exec repositories.SQLExecutor, poolID int, finalizedAt time.Time) error {
	if f.SetFinalizedFunc == nil {
		panic("unexpected PoolRepository.SetFinalized call")
	}
	return f.SetFinalizedFunc(ctx, exec, poolID, finalizedAt)
}

func (f *fakePoolRepo) Delete(ctx context.Context, id int) error {
	if f.DeleteFunc == nil {
		panic("unexpected PoolRepository.Delete call")
	}
	return f.DeleteFunc(ctx, id)
}

func (f *fakePoolRepo) GetPoolsForAutoLock(ctx context.Context, exec repositories.SQLExecutor, currentTime time.Time) ([]*models.Pool, error) {
	if f.GetPoolsForAutoLockFunc == nil {
		panic("unexpected PoolRepository.GetPoolsForAutoLock call")
	}
	return f.GetPoolsForAutoLockFunc(ctx, exec, currentTime)
}

func (f *fakePoolRepo) Count(ctx context.Context, status *models.PoolStatus) (int, error) {
	if f.CountFunc == nil {
		panic("unexpected PoolRepository.Count call")
	}
	return f.CountFunc(ctx, status)
}

type fakeEntryRepo struct {
	CreateFunc              func(ctx context.Context, exec repositories.SQLExecutor, entry *models.Entry) error
	GetByIDFunc             func(ctx context.Context, id int) (*models.Entry, error)
	GetByPublicIDFunc       func(ctx context.Context, publicID uuid.UUID) (*models.Entry, error)
	GetByPoolAndUserFunc    func(ctx context.Context, poolID, userID int) (*models.Entry, error)
	GetOfficialByPoolFunc   func(ctx context.Context, poolID int) (*models.Entry, error)
	ListByPoolFunc          func(ctx context.Context, poolID int) ([]models.Entry, error)
	ReplacePicksFunc        func(ctx context.Context, exec repositories.SQLExecutor, entryID int, picks []models.Pick) error
	ListPicksFunc           func(ctx context.Context, entryID int) ([]models.Pick, error)
	ListPicksByPoolFunc     func(ctx context.Context, poolID int) (map[int][]models.Pick, error)
	UpdateScoreCacheFunc    func(ctx context.Context, exec repositories.SQLExecutor, entryID int, total, base, bonus, correct int) error
	TouchFunc               func(ctx context.Context, exec repositories.SQLExecutor, entryID int) error
	DeleteByPoolAndUserFunc func(ctx context.Context, exec repositories.SQLExecutor, poolID, userID int) error
	CountAllFunc            func(ctx context.Context) (int, error)
}

var _ repositories.EntryRepository = (*fakeEntryRepo)(nil)

func (f *fakeEntryRepo) Create(ctx context.Context, exec repositories.SQLExecutor, entry *models.Entry) error {
	if f.CreateFunc == nil {
		panic("unexpected EntryRepository.Create call")
	}
	return f.CreateFunc(ctx, exec, entry)
}

func (f *fakeEntryRepo) GetByID(ctx context.Context, id int) (*models.Entry, error) {
	if f.GetByIDFunc == nil {
		panic("unexpected EntryRepository.GetByID call")
	}
	return f.GetByIDFunc(ctx, id)
}

func (f *fakeEntryRepo) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*models.Entry, error) {
	if f.GetByPublicIDFunc == nil {
		panic("unexpected EntryRepository.GetByPublicID call")
	}
	return f.GetByPublicIDFunc(ctx, publicID)
}

func (f *fakeEntryRepo) GetByPoolAndUser(ctx context.Context, poolID, userID int) (*models.Entry, error) {
	if f.GetByPoolAndUserFunc == nil {
		panic("unexpected EntryRepository.GetByPoolAndUser call")
	}
	return f.GetByPoolAndUserFunc(ctx, poolID, userID)
}

func (f *fakeEntryRepo) GetOfficialByPool(ctx context.Context, poolID int) (*models.Entry, error) {
	if f.GetOfficialByPoolFunc == nil {
		panic("unexpected EntryRepository.GetOfficialByPool call")
	}
	return f.GetOfficialByPoolFunc(ctx, poolID)
}

func (f *fakeEntryRepo) ListByPool(ctx context.Context, poolID int) ([]models.Entry, error) {
	if f.ListByPoolFunc == nil {
		panic("unexpected EntryRepository.ListByPool call")
	}
	return f.ListByPoolFunc(ctx, poolID)
}

func (f *fakeEntryRepo) ReplacePicks(ctx context.Context, exec repositories.SQLExecutor, entryID int, picks []models.Pick) error {
	if f.ReplacePicksFunc == nil {
		panic("unexpected EntryRepository.ReplacePicks call")
	}
	return f.ReplacePicksFunc(ctx, exec, entryID, picks)
}

func (f *fakeEntryRepo) ListPicks(ctx context.Context, entryID int) ([]models.Pick, error) {
	if f.ListPicksFunc == nil {
		panic("unexpected EntryRepository.ListPicks call")
	}
	return f.ListPicksFunc(ctx, entryID)
}

func (f *fakeEntryRepo) ListPicksByPool(ctx context.Context, poolID int) (map[int][]models.Pick, error) {
	if f.ListPicksByPoolFunc == nil {
		panic("unexpected EntryRepository.ListPicksByPool call")
	}
	return f.ListPicksByPoolFunc(ctx, poolID)
}

func (f *fakeEntryRepo) UpdateScoreCache(ctx context.Context, exec repositories.SQLExecutor, entryID int, total, base, bonus, correct int) error {
	if f.UpdateScoreCacheFunc == nil {
		panic("unexpected EntryRepository.UpdateScoreCache call")
	}
	return f.UpdateScoreCacheFunc(ctx, exec, entryID, total, base, bonus, correct)
}

func (f *fakeEntryRepo) Touch(ctx context.Context, exec repositories.SQLExecutor, entryID int) error {
	if f.TouchFunc == nil {
		panic("unexpected EntryRepository.Touch call")
	}
	return f.TouchFunc(ctx, exec, entryID)
}

func (f *fakeEntryRepo) DeleteByPoolAndUser(ctx context.Context, exec repositories.SQLExecutor, poolID, userID int) error {
	if f.DeleteByPoolAndUserFunc == nil {
		panic("unexpected EntryRepository.DeleteByPoolAndUser call")
	}
	return f.DeleteByPoolAndUserFunc(ctx, exec, poolID, userID)
}

func (f *fakeEntryRepo) CountAll(ctx context.Context) (int, error) {
	if f.CountAllFunc == nil {
		panic("unexpected EntryRepository.CountAll call")
	}
	return f.CountAllFunc(ctx)
}

type fakeResultRepo struct {
	UpsertFunc              func(ctx context.Context, exec repositories.SQLExecutor, result *models.Result) error
	GetByPoolAndMatchupFunc func(ctx context.Context, poolID int, matchupUID string) (*models.Result, error)
	ListByPoolFunc          func(ctx context.Context, exec repositories.SQLExecutor, poolID int) ([]models.Result, error)
	DeleteFunc              func(ctx context.Context, exec repositories.SQLExecutor, poolID int, matchupUID string) error
	CountAllFunc            func(ctx context.Context) (int, error)
}

var _ repositories.ResultRepository = (*fakeResultRepo)(nil)

func (f *fakeResultRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, result *models.Result) error {
	if f.UpsertFunc == nil {
		panic("unexpected ResultRepository.Upsert call")
	}
	return f.UpsertFunc(ctx, exec, result)
}

func (f *fakeResultRepo) GetByPoolAndMatchup(ctx context.Context, poolID int, matchupUID string) (*models.Result, error) {
	if f.GetByPoolAndMatchupFunc == nil {
		panic("unexpected ResultRepository.GetByPoolAndMatchup call")
	}
	return f.GetByPoolAndMatchupFunc(ctx, poolID, matchupUID)
}

func (f *fakeResultRepo) ListByPool(ctx context.Context, exec repositories.SQLExecutor, poolID int) ([]models.Result, error) {
	if f.ListByPoolFunc == nil {
		panic("unexpected ResultRepository.ListByPool call")
	}
	return f.ListByPoolFunc(ctx, exec, poolID)
}

func (f *fakeResultRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, poolID int, matchupUID string) error {
	if f.DeleteFunc == nil {
		panic("unexpected ResultRepository.Delete call")
	}
	return f.DeleteFunc(ctx, exec, poolID, matchupUID)
}

func (f *fakeResultRepo) CountAll(ctx context.Context) (int, error) {
	if f.CountAllFunc == nil {
		panic("unexpected ResultRepository.CountAll call")
	}
	return f.CountAllFunc(ctx)
}

type fakeMembershipRepo struct {
	CreateFunc           func(ctx context.Context, exec repositories.SQLExecutor, m *models.Membership) error
	GetByPoolAndUserFunc func(ctx context.Context, poolID, userID int) (*models.Membership, error)
	ListByPoolFunc       func(ctx context.Context, poolID int, status *models.MembershipStatus) ([]models.Membership, error)
	UpdateStatusFunc     func(ctx context.Context, exec repositories.SQLExecutor, id int, status models.MembershipStatus) error
	CountByPoolFunc      func(ctx context.Context, poolID int, status models.MembershipStatus) (int, error)
}

var _ repositories.MembershipRepository = (*fakeMembershipRepo)(nil)

func (f *fakeMembershipRepo) Create(ctx context.Context, exec repositories.SQLExecutor, m *models.Membership) error {
	if f.CreateFunc == nil {
		panic("unexpected MembershipRepository.Create call")
	}
	return f.CreateFunc(ctx, exec, m)
}

func (f *fakeMembershipRepo) GetByPoolAndUser(ctx context.Context, poolID, userID int) (*models.Membership, error) {
	if f.GetByPoolAndUserFunc == nil {
		panic("unexpected MembershipRepository.GetByPoolAndUser call")
	}
	return f.GetByPoolAndUserFunc(ctx, poolID, userID)
}

func (f *fakeMembershipRepo) ListByPool(ctx context.Context, poolID int, status *models.MembershipStatus) ([]models.Membership, error) {
	if f.ListByPoolFunc == nil {
		panic("unexpected MembershipRepository.ListByPool call")
	}
	return f.ListByPoolFunc(ctx, poolID, status)
}

func (f *fakeMembershipRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.MembershipStatus) error {
	if f.UpdateStatusFunc == nil {
		panic("unexpected MembershipRepository.UpdateStatus call")
	}
	return f.UpdateStatusFunc(ctx, exec, id, status)
}

func (f *fakeMembershipRepo) CountByPool(ctx context.Context, poolID int, status models.MembershipStatus) (int, error) {
	if f.CountByPoolFunc == nil {
		panic("unexpected MembershipRepository.CountByPool call")
	}
	return f.CountByPoolFunc(ctx, poolID, status)
}

type fakeInviteRepo struct {
	CreateFunc        func(ctx context.Context, invite *models.Invite) error
	GetByIDFunc       func(ctx context.Context, id int) (*models.Invite, error)
	GetByTokenFunc    func(ctx context.Context, token string) (*models.Invite, error)
	ListByPoolFunc    func(ctx context.Context, poolID int) ([]*models.Invite, error)
	DeleteFunc        func(ctx context.Context, id int) error
	DeleteExpiredFunc func(ctx context.Context) (int64, error)
}

var _ repositories.InviteRepository = (*fakeInviteRepo)(nil)

func (f *fakeInviteRepo) Create(ctx context.Context, invite *models.Invite) error {
	if f.CreateFunc == nil {
		panic("unexpected InviteRepository.Create call")
	}
	return f.CreateFunc(ctx, invite)
}

func (f *fakeInviteRepo) GetByID(ctx context.Context, id int) (*models.Invite, error) {
	if f.GetByIDFunc == nil {
		panic("unexpected InviteRepository.GetByID call")
	}
	return f.GetByIDFunc(ctx, id)
}

func (f *fakeInviteRepo) GetByToken(ctx context.Context, token string) (*models.Invite, error) {
	if f.GetByTokenFunc == nil {
		panic("unexpected InviteRepository.GetByToken call")
	}
	return f.GetByTokenFunc(ctx, token)
}

func (f *fakeInviteRepo) ListByPool(ctx context.Context, poolID int) ([]*models.Invite, error) {
	if f.ListByPoolFunc == nil {
		panic("unexpected InviteRepository.ListByPool call")
	}
	return f.ListByPoolFunc(ctx, poolID)
}

func (f *fakeInviteRepo) Delete(ctx context.Context, id int) error {
	if f.DeleteFunc == nil {
		panic("unexpected InviteRepository.Delete call")
	}
	return f.DeleteFunc(ctx, id)
}

func (f *fakeInviteRepo) DeleteExpired(ctx context.Context) (int64, error) {
	if f.DeleteExpiredFunc == nil {
		panic("unexpected InviteRepository.DeleteExpired call")
	}
	return f.DeleteExpiredFunc(ctx)
}

type fakeExceptionRepo struct {
	CreateFunc          func(ctx context.Context, exception *models.VisibilityException) error
	DeleteFunc          func(ctx context.Context, poolID, viewerUserID int) error
	ListByPoolFunc      func(ctx context.Context, poolID int) ([]models.VisibilityException, error)
	ViewerSetByPoolFunc func(ctx context.Context, poolID int) (map[int]bool, error)
}

var _ repositories.ExceptionRepository = (*fakeExceptionRepo)(nil)

func (f *fakeExceptionRepo) Create(ctx context.Context, exception *models.VisibilityException) error {
	if f.CreateFunc == nil {
		panic("unexpected ExceptionRepository.Create call")
	}
	return f.CreateFunc(ctx, exception)
}

func (f *fakeExceptionRepo) Delete(ctx context.Context, poolID, viewerUserID int) error {
	if f.DeleteFunc == nil {
		panic("unexpected ExceptionRepository.Delete call")
	}
	return f.DeleteFunc(ctx, poolID, viewerUserID)
}

func (f *fakeExceptionRepo) ListByPool(ctx context.Context, poolID int) ([]models.VisibilityException, error) {
	if f.ListByPoolFunc == nil {
		panic("unexpected ExceptionRepository.ListByPool call")
	}
	return f.ListByPoolFunc(ctx, poolID)
}

func (f *fakeExceptionRepo) ViewerSetByPool(ctx context.Context, poolID int) (map[int]bool, error) {
	if f.ViewerSetByPoolFunc == nil {
		panic("unexpected ExceptionRepository.ViewerSetByPool call")
	}
	return f.ViewerSetByPoolFunc(ctx, poolID)
}

type fakeWinnerRepo struct {
	ReplaceForPoolFunc func(ctx context.Context, exec repositories.SQLExecutor, poolID int, winners []models.PoolWinner) error
	ListByPoolFunc     func(ctx context.Context, poolID int) ([]models.PoolWinner, error)
}

var _ repositories.WinnerRepository = (*fakeWinnerRepo)(nil)

func (f *fakeWinnerRepo) ReplaceForPool(ctx context.Context, exec repositories.SQLExecutor, poolID int, winners []models.PoolWinner) error {
	if f.ReplaceForPoolFunc == nil {
		panic("unexpected WinnerRepository.ReplaceForPool call")
	}
	return f.ReplaceForPoolFunc(ctx, exec, poolID, winners)
}

func (f *fakeWinnerRepo) ListByPool(ctx context.Context, poolID int) ([]models.PoolWinner, error) {
	if f.ListByPoolFunc == nil {
		panic("unexpected WinnerRepository.ListByPool call")
	}
	return f.ListByPoolFunc(ctx, poolID)
}

type fakeUserRepo struct {
	CreateFunc        func(ctx context.Context, user *models.User) error
	GetByIDFunc       func(ctx context.Context, id int) (*models.User, error)
	GetByEmailFunc    func(ctx context.Context, email string) (*models.User, error)
	UpdateFunc        func(ctx context.Context, user *models.User) error
	UpdateLogoKeyFunc func(ctx context.Context, userID int, logoKey *string) error
	DeleteFunc        func(ctx context.Context, id int) error
	ListFunc          func(ctx context.Context, filter repositories.UserFilter) ([]models.User, int, error)
	CountFunc         func(ctx context.Context) (int, error)
}

var _ repositories.UserRepository = (*fakeUserRepo)(nil)

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if f.CreateFunc == nil {
		panic("unexpected UserRepository.Create call")
	}
	return f.CreateFunc(ctx, user)
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	if f.GetByIDFunc == nil {
		panic("unexpected UserRepository.GetByID call")
	}
	return f.GetByIDFunc(ctx, id)
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.GetByEmailFunc == nil {
		panic("unexpected UserRepository.GetByEmail call")
	}
	return f.GetByEmailFunc(ctx, email)
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	if f.UpdateFunc == nil {
		panic("unexpected UserRepository.Update call")
	}
	return f.UpdateFunc(ctx, user)
}

func (f *fakeUserRepo) UpdateLogoKey(ctx context.Context, userID int, logoKey *string) error {
	if f.UpdateLogoKeyFunc == nil {
		panic("unexpected UserRepository.UpdateLogoKey call")
	}
	return f.UpdateLogoKeyFunc(ctx, userID, logoKey)
}

func (f *fakeUserRepo) Delete(ctx context.Context, id int) error {
	if f.DeleteFunc == nil {
		panic("unexpected UserRepository.Delete call")
	}
	return f.DeleteFunc(ctx, id)
}

func (f *fakeUserRepo) List(ctx context.Context, filter repositories.UserFilter) ([]models.User, int, error) {
	if f.ListFunc == nil {
		panic("unexpected UserRepository.List call")
	}
	return f.ListFunc(ctx, filter)
}

func (f *fakeUserRepo) Count(ctx context.Context) (int, error) {
	if f.CountFunc == nil {
		panic("unexpected UserRepository.Count call")
	}
	return f.CountFunc(ctx)
}

type fakeRegionRepo struct {
	CreateFunc       func(ctx context.Context, exec repositories.SQLExecutor, region *models.Region) error
	GetByIDFunc      func(ctx context.Context, id int) (*models.Region, error)
	ListByPoolFunc   func(ctx context.Context, poolID int) ([]models.Region, error)
	DeleteByPoolFunc func(ctx context.Context, exec repositories.SQLExecutor, poolID int) error
}

var _ repositories.RegionRepository = (*fakeRegionRepo)(nil)

func (f *fakeRegionRepo) Create(ctx context.Context, exec repositories.SQLExecutor, region *models.Region) error {
	if f.CreateFunc == nil {
		panic("unexpected RegionRepository.Create call")
	}
	return f.CreateFunc(ctx, exec, region)
}

func (f *fakeRegionRepo) GetByID(ctx context.Context, id int) (*models.Region, error) {
	if f.GetByIDFunc == nil {
		panic("unexpected RegionRepository.GetByID call")
	}
	return f.GetByIDFunc(ctx, id)
}

func (f *fakeRegionRepo) ListByPool(ctx context.Context, poolID int) ([]models.Region, error) {
	if f.ListByPoolFunc == nil {
		panic("unexpected RegionRepository.ListByPool call")
	}
	return f.ListByPoolFunc(ctx, poolID)
}

func (f *fakeRegionRepo) DeleteByPool(ctx context.Context, exec repositories.SQLExecutor, poolID int) error {
	if f.DeleteByPoolFunc == nil {
		panic("unexpected RegionRepository.DeleteByPool call")
	}
	return f.DeleteByPoolFunc(ctx, exec, poolID)
}

type fakeTeamRepo struct {
	CreateFunc        func(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error
	GetByIDFunc       func(ctx context.Context, id int) (*models.Team, error)
	ListByRegionFunc  func(ctx context.Context, regionID int) ([]models.Team, error)
	ListByPoolFunc    func(ctx context.Context, poolID int) ([]models.Team, error)
	UpdateLogoKeyFunc func(ctx context.Context, teamID int, logoKey *string) error
}

var _ repositories.TeamRepository = (*fakeTeamRepo)(nil)

func (f *fakeTeamRepo) Create(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error {
	if f.CreateFunc == nil {
		panic("unexpected TeamRepository.Create call")
	}
	return f.CreateFunc(ctx, exec, team)
}

func (f *fakeTeamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	if f.GetByIDFunc == nil {
		panic("unexpected TeamRepository.GetByID call")
	}
	return f.GetByIDFunc(ctx, id)
}

func (f *fakeTeamRepo) ListByRegion(ctx context.Context, regionID int) ([]models.Team, error) {
	if f.ListByRegionFunc == nil {
		panic("unexpected TeamRepository.ListByRegion call")
	}
	return f.ListByRegionFunc(ctx, regionID)
}

func (f *fakeTeamRepo) ListByPool(ctx context.Context, poolID int) ([]models.Team, error) {
	if f.ListByPoolFunc == nil {
		panic("unexpected TeamRepository.ListByPool call")
	}
	return f.ListByPoolFunc(ctx, poolID)
}

func (f *fakeTeamRepo) UpdateLogoKey(ctx context.Context, teamID int, logoKey *string) error {
	if f.UpdateLogoKeyFunc == nil {
		panic("unexpected TeamRepository.UpdateLogoKey call")
	}
	return f.UpdateLogoKeyFunc(ctx, teamID, logoKey)
}

// fakeConfigService подменяет сборку структуры; остальные методы в
// сервисных тестах не используются.
type fakeConfigService struct {
	ReplaceRegionsFunc   func(ctx context.Context, poolID, currentUserID int, input []RegionInput) ([]models.Region, error)
	UpdateSemifinalsFunc func(ctx context.Context, poolID, currentUserID int, input SemifinalInput) (ValidationReport, error)
	GetValidationFunc    func(ctx context.Context, poolID int) (ValidationReport, error)
	CheckCandidateFunc   func(ctx context.Context, poolID, currentUserID int, candidate SemifinalInput) (ValidationReport, error)
	PreviewStructureFunc func(ctx context.Context, poolID int) (*brackets.Structure, error)
	PoolStructureFunc    func(ctx context.Context, pool *models.Pool) (*brackets.Structure, error)
	UpdateTeamLogoFunc   func(ctx context.Context, teamID, currentUserID int, file io.Reader, contentType string) (*models.Team, error)
}

var _ BracketConfigService = (*fakeConfigService)(nil)

func (f *fakeConfigService) ReplaceRegions(ctx context.Context, poolID, currentUserID int, input []RegionInput) ([]models.Region, error) {
	if f.ReplaceRegionsFunc == nil {
		panic("unexpected BracketConfigService.ReplaceRegions call")
	}
	return f.ReplaceRegionsFunc(ctx, poolID, currentUserID, input)
}

func (f *fakeConfigService) UpdateSemifinals(ctx context.Context, poolID, currentUserID int, input SemifinalInput) (ValidationReport, error) {
	if f.UpdateSemifinalsFunc == nil {
		panic("unexpected BracketConfigService.UpdateSemifinals call")
	}
	return f.UpdateSemifinalsFunc(ctx, poolID, currentUserID, input)
}

func (f *fakeConfigService) GetValidation(ctx context.Context, poolID int) (ValidationReport, error) {
	if f.GetValidationFunc == nil {
		panic("unexpected BracketConfigService.GetValidation call")
	}
	return f.GetValidationFunc(ctx, poolID)
}

func (f *fakeConfigService) CheckCandidate(ctx context.Context, poolID, currentUserID int, candidate SemifinalInput) (ValidationReport, error) {
	if f.CheckCandidateFunc == nil {
		panic("unexpected BracketConfigService.CheckCandidate call")
	}
	return f.CheckCandidateFunc(ctx, poolID, currentUserID, candidate)
}

func (f *fakeConfigService) PreviewStructure(ctx context.Context, poolID int) (*brackets.Structure, error) {
	if f.PreviewStructureFunc == nil {
		panic("unexpected BracketConfigService.PreviewStructure call")
	}
	return f.PreviewStructureFunc(ctx, poolID)
}

func (f *fakeConfigService) PoolStructure(ctx context.Context, pool *models.Pool) (*brackets.Structure, error) {
	if f.PoolStructureFunc == nil {
		panic("unexpected BracketConfigService.PoolStructure call")
	}
	return f.PoolStructureFunc(ctx, pool)
}

func (f *fakeConfigService) UpdateTeamLogo(ctx context.Context, teamID, currentUserID int, file io.Reader, contentType string) (*models.Team, error) {
	if f.UpdateTeamLogoFunc == nil {
		panic("unexpected BracketConfigService.UpdateTeamLogo call")
	}
	return f.UpdateTeamLogoFunc(ctx, teamID, currentUserID, file, contentType)
}

type fakeUploader struct {
	UploadFunc       func(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error)
	DeleteFunc       func(ctx context.Context, key string) error
	GetPublicURLFunc func(key string) string
}

var _ storage.FileUploader = (*fakeUploader)(nil)

func (f *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if f.UploadFunc == nil {
		panic("unexpected FileUploader.Upload call")
	}
	return f.UploadFunc(ctx, key, contentType, reader)
}

func (f *fakeUploader) Delete(ctx context.Context, key string) error {
	if f.DeleteFunc == nil {
		panic("unexpected FileUploader.Delete call")
	}
	return f.DeleteFunc(ctx, key)
}

func (f *fakeUploader) GetPublicURL(key string) string {
	if f.GetPublicURLFunc == nil {
		return ""
	}
	return f.GetPublicURLFunc(key)
}
