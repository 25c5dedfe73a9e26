package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/bracket-pool/brackets"
	"github.com/Dosada05/bracket-pool/models"
	"github.com/Dosada05/bracket-pool/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type poolServiceFixture struct {
	svc      PoolService
	pools    *fakePoolRepo
	users    *fakeUserRepo
	members  *fakeMembershipRepo
	entries  *fakeEntryRepo
	regions  *fakeRegionRepo
	teams    *fakeTeamRepo
	results  *fakeResultRepo
	config   *fakeConfigService
	uploader *fakeUploader
}

func newPoolServiceFixture(t *testing.T, pool *models.Pool) *poolServiceFixture {
	t.Helper()
	f := &poolServiceFixture{
		pools:    &fakePoolRepo{},
		users:    &fakeUserRepo{},
		members:  &fakeMembershipRepo{},
		entries:  &fakeEntryRepo{},
		regions:  &fakeRegionRepo{},
		teams:    &fakeTeamRepo{},
		results:  &fakeResultRepo{},
		config:   &fakeConfigService{},
		uploader: &fakeUploader{},
	}
	f.pools.GetByIDFunc = func(_ context.Context, id int) (*models.Pool, error) {
		if pool != nil && id == pool.ID {
			p := *pool
			return &p, nil
		}
		return nil, repositories.ErrPoolNotFound
	}
	f.svc = NewPoolService(
		testDB(t), f.pools, f.users, f.members, f.entries, f.regions, f.teams, f.results,
		f.config, f.uploader, testLogger(),
	)
	return f
}

func validCreateInput() CreatePoolInput {
	return CreatePoolInput{
		Name:     "Office Madness",
		GameType: "single16",
		LockTime: time.Now().Add(48 * time.Hour),
		FogOfWar: true,
	}
}

func TestCreatePool(t *testing.T) {
	t.Run("creates pool with owner membership and official entry", func(t *testing.T) {
		f := newPoolServiceFixture(t, nil)
		f.pools.CreateFunc = func(_ context.Context, _ repositories.SQLExecutor, p *models.Pool) error {
			p.ID = 7
			return nil
		}
		var membership *models.Membership
		f.members.CreateFunc = func(_ context.Context, _ repositories.SQLExecutor, m *models.Membership) error {
			membership = m
			return nil
		}
		var official *models.Entry
		f.entries.CreateFunc = func(_ context.Context, _ repositories.SQLExecutor, e *models.Entry) error {
			official = e
			return nil
		}

		pool, err := f.svc.CreatePool(context.Background(), 1, validCreateInput())
		require.NoError(t, err)

		assert.Equal(t, models.StatusSetup, pool.Status)
		assert.Equal(t, 1, pool.OwnerID)

		require.NotNil(t, membership)
		assert.Equal(t, pool.ID, membership.PoolID)
		assert.Equal(t, models.MembershipActive, membership.Status)

		require.NotNil(t, official)
		assert.True(t, official.IsOfficial)
		assert.NotEqual(t, uuid.Nil, official.PublicID)
	})

	t.Run("blank name", func(t *testing.T) {
		f := newPoolServiceFixture(t, nil)
		input := validCreateInput()
		input.Name = "   "
		_, err := f.svc.CreatePool(context.Background(), 1, input)
		assert.ErrorIs(t, err, ErrPoolNameRequired)
	})

	t.Run("unknown game type", func(t *testing.T) {
		f := newPoolServiceFixture(t, nil)
		input := validCreateInput()
		input.GameType = "march1024"
		_, err := f.svc.CreatePool(context.Background(), 1, input)
		assert.ErrorIs(t, err, ErrUnknownGameType)
	})

	t.Run("lock time required", func(t *testing.T) {
		f := newPoolServiceFixture(t, nil)
		input := validCreateInput()
		input.LockTime = time.Time{}
		_, err := f.svc.CreatePool(context.Background(), 1, input)
		assert.ErrorIs(t, err, ErrLockTimeRequired)
	})

	t.Run("lock time in the past", func(t *testing.T) {
		f := newPoolServiceFixture(t, nil)
		input := validCreateInput()
		input.LockTime = time.Now().Add(-time.Hour)
		_, err := f.svc.CreatePool(context.Background(), 1, input)
		assert.ErrorIs(t, err, ErrLockTimeInPast)
	})

	t.Run("negative round points", func(t *testing.T) {
		f := newPoolServiceFixture(t, nil)
		input := validCreateInput()
		input.Scoring = &brackets.ScoringSettings{RoundPoints: []int{1, -2}}
		_, err := f.svc.CreatePool(context.Background(), 1, input)
		assert.ErrorIs(t, err, ErrInvalidScoring)
	})

	t.Run("duplicate name for owner", func(t *testing.T) {
		f := newPoolServiceFixture(t, nil)
		f.pools.CreateFunc = func(_ context.Context, _ repositories.SQLExecutor, _ *models.Pool) error {
			return repositories.ErrPoolNameConflict
		}
		_, err := f.svc.CreatePool(context.Background(), 1, validCreateInput())
		assert.ErrorIs(t, err, ErrPoolNameConflict)
	})
}

func TestUpdatePoolStatus(t *testing.T) {
	t.Run("opening requires a valid bracket", func(t *testing.T) {
		pool := testPool()
		pool.Status = models.StatusSetup
		f := newPoolServiceFixture(t, pool)
		f.config.PoolStructureFunc = func(_ context.Context, _ *models.Pool) (*brackets.Structure, error) {
			return nil, &brackets.StructureError{
				Reason:   "invalid semifinal config",
				Problems: []brackets.Problem{{Kind: brackets.ProblemSameRegionMatchup, Slot: 1, Region: "Field"}},
			}
		}

		_, err := f.svc.UpdatePoolStatus(context.Background(), pool.ID, pool.OwnerID, models.StatusOpen)
		assert.ErrorIs(t, err, ErrPoolActivationBlocked)

		var structErr *brackets.StructureError
		assert.ErrorAs(t, err, &structErr)
	})

	t.Run("opening succeeds with valid bracket", func(t *testing.T) {
		pool := testPool()
		pool.Status = models.StatusSetup
		f := newPoolServiceFixture(t, pool)
		st := testStructure16(t)
		f.config.PoolStructureFunc = func(_ context.Context, _ *models.Pool) (*brackets.Structure, error) {
			return st, nil
		}
		f.pools.UpdateStatusFunc = func(_ context.Context, _ repositories.SQLExecutor, _ int, status models.PoolStatus) error {
			require.Equal(t, models.StatusOpen, status)
			return nil
		}

		updated, err := f.svc.UpdatePoolStatus(context.Background(), pool.ID, pool.OwnerID, models.StatusOpen)
		require.NoError(t, err)
		assert.Equal(t, models.StatusOpen, updated.Status)
	})

	t.Run("opening with expired lock time", func(t *testing.T) {
		pool := testPool()
		pool.Status = models.StatusSetup
		pool.LockTime = time.Now().Add(-time.Hour)
		f := newPoolServiceFixture(t, pool)
		f.config.PoolStructureFunc = func(_ context.Context, _ *models.Pool) (*brackets.Structure, error) {
			return testStructure16(t), nil
		}

		_, err := f.svc.UpdatePoolStatus(context.Background(), pool.ID, pool.OwnerID, models.StatusOpen)
		assert.ErrorIs(t, err, ErrLockTimeInPast)
	})

	t.Run("transition table", func(t *testing.T) {
		cases := []struct {
			name    string
			from    models.PoolStatus
			to      models.PoolStatus
			allowed bool
		}{
			{"open to locked", models.StatusOpen, models.StatusLocked, true},
			{"open to canceled", models.StatusOpen, models.StatusCanceled, true},
			{"locked to canceled", models.StatusLocked, models.StatusCanceled, true},
			{"locked back to open", models.StatusLocked, models.StatusOpen, false},
			{"locked to completed bypassing finalize", models.StatusLocked, models.StatusCompleted, false},
			{"completed is terminal", models.StatusCompleted, models.StatusCanceled, false},
			{"canceled is terminal", models.StatusCanceled, models.StatusOpen, false},
			{"setup straight to locked", models.StatusSetup, models.StatusLocked, false},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				pool := testPool()
				pool.Status = tc.from
				f := newPoolServiceFixture(t, pool)
				if tc.allowed {
					f.pools.UpdateStatusFunc = func(_ context.Context, _ repositories.SQLExecutor, _ int, _ models.PoolStatus) error {
						return nil
					}
				}

				_, err := f.svc.UpdatePoolStatus(context.Background(), pool.ID, pool.OwnerID, tc.to)
				if tc.allowed {
					assert.NoError(t, err)
				} else {
					assert.ErrorIs(t, err, ErrPoolInvalidStatusTransition)
				}
			})
		}
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		pool := testPool()
		f := newPoolServiceFixture(t, pool)
		// UpdateStatusFunc не задаётся: запись в БД не ожидается.

		updated, err := f.svc.UpdatePoolStatus(context.Background(), pool.ID, pool.OwnerID, pool.Status)
		require.NoError(t, err)
		assert.Equal(t, pool.Status, updated.Status)
	})

	t.Run("only the owner changes status", func(t *testing.T) {
		pool := testPool()
		f := newPoolServiceFixture(t, pool)
		_, err := f.svc.UpdatePoolStatus(context.Background(), pool.ID, 999, models.StatusLocked)
		assert.ErrorIs(t, err, ErrOwnerActionForbidden)
	})
}

func TestUpdatePool(t *testing.T) {
	t.Run("scoring is frozen after setup", func(t *testing.T) {
		pool := testPool() // статус open
		f := newPoolServiceFixture(t, pool)
		f.pools.UpdateFunc = func(_ context.Context, _ *models.Pool) error { return nil }

		_, err := f.svc.UpdatePool(context.Background(), pool.ID, pool.OwnerID, UpdatePoolInput{
			Scoring: &brackets.ScoringSettings{RoundPoints: []int{1, 2, 4, 8}},
		})
		assert.ErrorIs(t, err, ErrPoolNotInSetup)
	})

	t.Run("scoring updates during setup", func(t *testing.T) {
		pool := testPool()
		pool.Status = models.StatusSetup
		f := newPoolServiceFixture(t, pool)
		f.pools.UpdateFunc = func(_ context.Context, _ *models.Pool) error { return nil }
		var storedJSON *string
		f.pools.UpdateScoringJSONFunc = func(_ context.Context, _ int, scoringJSON *string) error {
			storedJSON = scoringJSON
			return nil
		}

		updated, err := f.svc.UpdatePool(context.Background(), pool.ID, pool.OwnerID, UpdatePoolInput{
			Scoring: &brackets.ScoringSettings{RoundPoints: []int{2, 3, 5, 8}, UpsetMinSeedDiff: 4, UpsetPointsPerSeed: 1},
		})
		require.NoError(t, err)
		require.NotNil(t, storedJSON)
		assert.True(t, strings.Contains(*storedJSON, "upset_min_seed_diff"))
		assert.Equal(t, storedJSON, updated.ScoringJSON)
	})

	t.Run("lock time is frozen once locked", func(t *testing.T) {
		pool := testPool()
		pool.Status = models.StatusLocked
		f := newPoolServiceFixture(t, pool)
		future := time.Now().Add(time.Hour)

		_, err := f.svc.UpdatePool(context.Background(), pool.ID, pool.OwnerID, UpdatePoolInput{LockTime: &future})
		assert.ErrorIs(t, err, ErrPoolInvalidStatusTransition)
	})
}

func TestAutoLockPools(t *testing.T) {
	t.Run("locks every due pool", func(t *testing.T) {
		due1, due2 := testPool(), testPool()
		due1.ID, due2.ID = 7, 8
		f := newPoolServiceFixture(t, nil)
		f.pools.GetPoolsForAutoLockFunc = func(_ context.Context, _ repositories.SQLExecutor, _ time.Time) ([]*models.Pool, error) {
			return []*models.Pool{due1, due2}, nil
		}
		var lockedIDs []int
		f.pools.UpdateStatusFunc = func(_ context.Context, _ repositories.SQLExecutor, id int, status models.PoolStatus) error {
			require.Equal(t, models.StatusLocked, status)
			lockedIDs = append(lockedIDs, id)
			return nil
		}

		locked, err := f.svc.AutoLockPools(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, locked)
		assert.Equal(t, []int{7, 8}, lockedIDs)
	})

	t.Run("continues past a failing pool", func(t *testing.T) {
		due1, due2 := testPool(), testPool()
		due1.ID, due2.ID = 7, 8
		f := newPoolServiceFixture(t, nil)
		f.pools.GetPoolsForAutoLockFunc = func(_ context.Context, _ repositories.SQLExecutor, _ time.Time) ([]*models.Pool, error) {
			return []*models.Pool{due1, due2}, nil
		}
		f.pools.UpdateStatusFunc = func(_ context.Context, _ repositories.SQLExecutor, id int, _ models.PoolStatus) error {
			if id == due1.ID {
				return errors.New("deadlock detected")
			}
			return nil
		}

		locked, err := f.svc.AutoLockPools(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, locked)
	})
}

func TestDeletePool(t *testing.T) {
	pool := testPool()
	f := newPoolServiceFixture(t, pool)
	f.pools.DeleteFunc = func(_ context.Context, id int) error {
		require.Equal(t, pool.ID, id)
		return nil
	}

	require.NoError(t, f.svc.DeletePool(context.Background(), pool.ID, pool.OwnerID))

	err := f.svc.DeletePool(context.Background(), pool.ID, 999)
	assert.ErrorIs(t, err, ErrOwnerActionForbidden)
}
