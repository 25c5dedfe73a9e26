package routes

import (
	"github.com/Dosada05/bracket-pool/docs"
	"github.com/Dosada05/bracket-pool/handlers"
	"github.com/Dosada05/bracket-pool/metrics"
	"github.com/Dosada05/bracket-pool/middleware"
	"github.com/Dosada05/bracket-pool/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

func SetupRoutes(
	router *chi.Mux,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	gameTypeHandler *handlers.GameTypeHandler,
	poolHandler *handlers.PoolHandler,
	configHandler *handlers.BracketConfigHandler,
	entryHandler *handlers.EntryHandler,
	resultHandler *handlers.ResultHandler,
	standingsHandler *handlers.StandingsHandler,
	memberHandler *handlers.MemberHandler,
	inviteHandler *handlers.InviteHandler,
	adminUserHandler *handlers.AdminUserHandler,
	dashboardHandler *handlers.DashboardHandler,
	webSocketHandler *handlers.WebSocketHandler,
	jwtSecret string,
	corsAllowedOrigins []string,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(metrics.Middleware)

	authenticate := middleware.Authenticate(jwtSecret)

	router.Get("/metrics", metrics.Handler().ServeHTTP)
	router.Get("/swagger/doc.json", docs.ServeOpenAPI)
	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	router.Get("/gametypes", gameTypeHandler.ListHandler)

	router.Route("/users", func(r chi.Router) {
		r.Get("/{userID}", userHandler.GetUserByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Patch("/me", userHandler.UpdateMe)
			r.Put("/me/avatar", userHandler.UploadAvatar)
		})
	})

	router.Route("/pools", func(r chi.Router) {
		// Публичные маршруты для просмотра пулов
		r.Get("/", poolHandler.ListHandler)
		r.Get("/{poolID}", poolHandler.GetByIDHandler)
		r.Get("/{poolID}/validation", configHandler.GetValidationHandler)
		r.Get("/{poolID}/bracket", configHandler.GetBracketHandler)
		r.Get("/{poolID}/results", resultHandler.ListHandler)
		r.Get("/{poolID}/winners", standingsHandler.WinnersHandler)
		r.Get("/{poolID}/members", memberHandler.ListMembersHandler)

		// Защищенные маршруты
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/", poolHandler.CreateHandler)
			r.Patch("/{poolID}", poolHandler.UpdateHandler)
			r.Patch("/{poolID}/status", poolHandler.UpdateStatusHandler)
			r.Delete("/{poolID}", poolHandler.DeleteHandler)
			r.Put("/{poolID}/logo", poolHandler.UploadLogoHandler)

			r.Put("/{poolID}/regions", configHandler.ReplaceRegionsHandler)
			r.Put("/{poolID}/semifinals", configHandler.UpdateSemifinalsHandler)

			r.Put("/{poolID}/entry", entryHandler.SubmitHandler)
			r.Get("/{poolID}/entry", entryHandler.GetOwnHandler)
			r.Get("/{poolID}/entries", entryHandler.ListHandler)
			r.Get("/{poolID}/leaderboard", standingsHandler.LeaderboardHandler)

			r.Put("/{poolID}/results/{matchupUID}", resultHandler.RecordHandler)
			r.Delete("/{poolID}/results/{matchupUID}", resultHandler.DeleteHandler)
			r.Post("/{poolID}/finalize", standingsHandler.FinalizeHandler)

			r.Post("/{poolID}/invites", inviteHandler.CreateHandler)
			r.Get("/{poolID}/invites", inviteHandler.ListHandler)
			r.Delete("/{poolID}/members/{userID}", memberHandler.RemoveMemberHandler)
			r.Post("/{poolID}/exceptions", memberHandler.GrantExceptionHandler)
			r.Get("/{poolID}/exceptions", memberHandler.ListExceptionsHandler)
			r.Delete("/{poolID}/exceptions/{userID}", memberHandler.RevokeExceptionHandler)
		})
	})

	router.Route("/teams", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Put("/{teamID}/logo", configHandler.UploadTeamLogoHandler)
		})
	})

	router.Route("/invites", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{token}/accept", memberHandler.JoinHandler)
			r.Delete("/{inviteID}", inviteHandler.DeleteHandler)
		})
	})

	router.Route("/entries", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/{publicID}", entryHandler.GetByPublicIDHandler)
		})
	})

	// Маршруты только для администраторов платформы
	router.Route("/admin", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(middleware.Authorize(models.RoleAdmin))

		r.Get("/users", adminUserHandler.ListUsers)
		r.Delete("/users/{userID}", adminUserHandler.DeleteUser)
		r.Get("/stats", dashboardHandler.Stats)
	})

	// Интерактивная проверка конфигурации
	router.Route("/ws", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/pools/{poolID}/config", webSocketHandler.ServeConfigCheck)
	})
}
