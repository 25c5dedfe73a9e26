package handlers

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/Dosada05/bracket-pool/middleware"
	"github.com/Dosada05/bracket-pool/models"
	"github.com/Dosada05/bracket-pool/repositories"
	"github.com/Dosada05/bracket-pool/services"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "handler-test-secret"

// poolRoutes повторяет схему монтирования из routes.SetupRoutes для
// маршрутов, участвующих в тестах.
func poolRoutes(pool *PoolHandler, entry *EntryHandler, standings *StandingsHandler) *chi.Mux {
	router := chi.NewRouter()
	authenticate := middleware.Authenticate(testJWTSecret)

	router.Route("/pools", func(r chi.Router) {
		if standings != nil {
			r.Get("/{poolID}/winners", standings.WinnersHandler)
		}

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			if pool != nil {
				r.Post("/", pool.CreateHandler)
				r.Patch("/{poolID}/status", pool.UpdateStatusHandler)
			}
			if entry != nil {
				r.Put("/{poolID}/entry", entry.SubmitHandler)
			}
			if standings != nil {
				r.Get("/{poolID}/leaderboard", standings.LeaderboardHandler)
			}
		})
	})
	return router
}

func authHeader(t *testing.T, userID int, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func withAuth(t *testing.T, req *http.Request, userID int, role string) *http.Request {
	t.Helper()
	req.Header.Set("Authorization", authHeader(t, userID, role))
	return req
}

// --- Фейки сервисов ---

type fakePoolService struct {
	CreatePoolFunc       func(ctx context.Context, ownerID int, input services.CreatePoolInput) (*models.Pool, error)
	GetPoolByIDFunc      func(ctx context.Context, poolID int) (*models.Pool, error)
	GetPoolDetailsFunc   func(ctx context.Context, poolID int) (*models.Pool, error)
	ListPoolsFunc        func(ctx context.Context, filter repositories.ListPoolsFilter) ([]models.Pool, error)
	UpdatePoolFunc       func(ctx context.Context, poolID, currentUserID int, input services.UpdatePoolInput) (*models.Pool, error)
	UpdatePoolStatusFunc func(ctx context.Context, poolID, currentUserID int, next models.PoolStatus) (*models.Pool, error)
	UpdatePoolLogoFunc   func(ctx context.Context, poolID, currentUserID int, file io.Reader, contentType string) (*models.Pool, error)
	DeletePoolFunc       func(ctx context.Context, poolID, currentUserID int) error
	AutoLockPoolsFunc    func(ctx context.Context) (int, error)
}

var _ services.PoolService = (*fakePoolService)(nil)

func (f *fakePoolService) CreatePool(ctx context.Context, ownerID int, input services.CreatePoolInput) (*models.Pool, error) {
	if f.CreatePoolFunc == nil {
		panic("unexpected PoolService.CreatePool call")
	}
	return f.CreatePoolFunc(ctx, ownerID, input)
}

func (f *fakePoolService) GetPoolByID(ctx context.Context, poolID int) (*models.Pool, error) {
	if f.GetPoolByIDFunc == nil {
		panic("unexpected PoolService.GetPoolByID call")
	}
	return f.GetPoolByIDFunc(ctx, poolID)
}

func (f *fakePoolService) GetPoolDetails(ctx context.Context, poolID int) (*models.Pool, error) {
	if f.GetPoolDetailsFunc == nil {
		panic("unexpected PoolService.GetPoolDetails call")
	}
	return f.GetPoolDetailsFunc(ctx, poolID)
}

func (f *fakePoolService) ListPools(ctx context.Context, filter repositories.ListPoolsFilter) ([]models.Pool, error) {
	if f.ListPoolsFunc == nil {
		panic("unexpected PoolService.ListPools call")
	}
	return f.ListPoolsFunc(ctx, filter)
}

func (f *fakePoolService) UpdatePool(ctx context.Context, poolID, currentUserID int, input services.UpdatePoolInput) (*models.Pool, error) {
	if f.UpdatePoolFunc == nil {
		panic("unexpected PoolService.UpdatePool call")
	}
	return f.UpdatePoolFunc(ctx, poolID, currentUserID, input)
}

func (f *fakePoolService) UpdatePoolStatus(ctx context.Context, poolID, currentUserID int, next models.PoolStatus) (*models.Pool, error) {
	if f.UpdatePoolStatusFunc == nil {
		panic("unexpected PoolService.UpdatePoolStatus call")
	}
	return f.UpdatePoolStatusFunc(ctx, poolID, currentUserID, next)
}

func (f *fakePoolService) UpdatePoolLogo(ctx context.Context, poolID, currentUserID int, file io.Reader, contentType string) (*models.Pool, error) {
	if f.UpdatePoolLogoFunc == nil {
		panic("unexpected PoolService.UpdatePoolLogo call")
	}
	return f.UpdatePoolLogoFunc(ctx, poolID, currentUserID, file, contentType)
}

func (f *fakePoolService) DeletePool(ctx context.Context, poolID, currentUserID int) error {
	if f.DeletePoolFunc == nil {
		panic("unexpected PoolService.DeletePool call")
	}
	return f.DeletePoolFunc(ctx, poolID, currentUserID)
}

func (f *fakePoolService) AutoLockPools(ctx context.Context) (int, error) {
	if f.AutoLockPoolsFunc == nil {
		panic("unexpected PoolService.AutoLockPools call")
	}
	return f.AutoLockPoolsFunc(ctx)
}

type fakeEntryService struct {
	SubmitEntryFunc        func(ctx context.Context, poolID, currentUserID int, picks map[string]int) (*models.Entry, error)
	GetOwnEntryFunc        func(ctx context.Context, poolID, currentUserID int) (*models.Entry, error)
	GetEntryByPublicIDFunc func(ctx context.Context, publicID uuid.UUID, viewerID int, viewerIsAdmin bool) (*models.Entry, error)
	ListPoolEntriesFunc    func(ctx context.Context, poolID, viewerID int, viewerIsAdmin bool) ([]models.Entry, error)
}

var _ services.EntryService = (*fakeEntryService)(nil)

func (f *fakeEntryService) SubmitEntry(ctx context.Context, poolID, currentUserID int, picks map[string]int) (*models.Entry, error) {
	if f.SubmitEntryFunc == nil {
		panic("unexpected EntryService.SubmitEntry call")
	}
	return f.SubmitEntryFunc(ctx, poolID, currentUserID, picks)
}

func (f *fakeEntryService) GetOwnEntry(ctx context.Context, poolID, currentUserID int) (*models.Entry, error) {
	if f.GetOwnEntryFunc == nil {
		panic("unexpected EntryService.GetOwnEntry call")
	}
	return f.GetOwnEntryFunc(ctx, poolID, currentUserID)
}

func (f *fakeEntryService) GetEntryByPublicID(ctx context.Context, publicID uuid.UUID, viewerID int, viewerIsAdmin bool) (*models.Entry, error) {
	if f.GetEntryByPublicIDFunc == nil {
		panic("unexpected EntryService.GetEntryByPublicID call")
	}
	return f.GetEntryByPublicIDFunc(ctx, publicID, viewerID, viewerIsAdmin)
}

func (f *fakeEntryService) ListPoolEntries(ctx context.Context, poolID, viewerID int, viewerIsAdmin bool) ([]models.Entry, error) {
	if f.ListPoolEntriesFunc == nil {
		panic("unexpected EntryService.ListPoolEntries call")
	}
	return f.ListPoolEntriesFunc(ctx, poolID, viewerID, viewerIsAdmin)
}

type fakeStandingsService struct {
	RescorePoolFunc    func(ctx context.Context, poolID int) error
	GetLeaderboardFunc func(ctx context.Context, poolID, viewerID int, viewerIsAdmin bool) ([]services.LeaderboardRow, error)
	FinalizePoolFunc   func(ctx context.Context, poolID, currentUserID int) ([]models.PoolWinner, error)
	GetWinnersFunc     func(ctx context.Context, poolID int) ([]models.PoolWinner, error)
}

var _ services.StandingsService = (*fakeStandingsService)(nil)

func (f *fakeStandingsService) RescorePool(ctx context.Context, poolID int) error {
	if f.RescorePoolFunc == nil {
		panic("unexpected StandingsService.RescorePool call")
	}
	return f.RescorePoolFunc(ctx, poolID)
}

func (f *fakeStandingsService) GetLeaderboard(ctx context.Context, poolID, viewerID int, viewerIsAdmin bool) ([]services.LeaderboardRow, error) {
	if f.GetLeaderboardFunc == nil {
		panic("unexpected StandingsService.GetLeaderboard call")
	}
	return f.GetLeaderboardFunc(ctx, poolID, viewerID, viewerIsAdmin)
}

func (f *fakeStandingsService) FinalizePool(ctx context.Context, poolID, currentUserID int) ([]models.PoolWinner, error) {
	if f.FinalizePoolFunc == nil {
		panic("unexpected StandingsService.FinalizePool call")
	}
	return f.FinalizePoolFunc(ctx, poolID, currentUserID)
}

func (f *fakeStandingsService) GetWinners(ctx context.Context, poolID int) ([]models.PoolWinner, error) {
	if f.GetWinnersFunc == nil {
		panic("unexpected StandingsService.GetWinners call")
	}
	return f.GetWinnersFunc(ctx, poolID)
}
