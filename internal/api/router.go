package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/SammyBolger/NBA-Analytics/internal/api/handlers"
	"github.com/SammyBolger/NBA-Analytics/internal/api/middleware"
	"github.com/SammyBolger/NBA-Analytics/internal/providers"
	"github.com/SammyBolger/NBA-Analytics/pkg/config"
	"github.com/SammyBolger/NBA-Analytics/pkg/database"
)

// Dependencies are the long-lived components the handlers share.
type Dependencies struct {
	DB     *database.DB
	Config *config.Config
	Feed   handlers.FeedReader
	Client *providers.FeedClient
	Picks  handlers.PickService
	// Cache is optional; leave it nil when Redis is not configured.
	Cache  handlers.ModelCache
	Logger *logrus.Logger
}

// SessionConfig derives the cookie session settings from the config.
func SessionConfig(cfg *config.Config) middleware.SessionConfig {
	return middleware.SessionConfig{
		Secret:     cfg.JWTSecret,
		CookieName: cfg.SessionCookieName,
		TTL:        cfg.SessionTTL,
	}
}

// NewRouter builds the engine with the shared middleware stack, the
// liveness probe, the /auth routes and every API route under /api.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.CORS(deps.Config.CorsOrigins))

	healthHandler := handlers.NewHealthHandler(deps.Feed, breakerOf(deps))
	router.GET("/health", healthHandler.GetHealth)

	// Auth lives beside /api, not under it
	authHandler := handlers.NewAuthHandler(deps.DB, SessionConfig(deps.Config), deps.Config.SecureCookies, deps.Logger)
	authHandler.RegisterRoutes(&router.RouterGroup)

	SetupRoutes(router.Group("/api"), deps)
	return router
}

// SetupRoutes configures all API routes on the given router group
func SetupRoutes(group *gin.RouterGroup, deps Dependencies) {
	session := SessionConfig(deps.Config)
	clock := handlers.Clock{
		Location:   deps.Config.Location(),
		CutoffHour: deps.Config.NBADayCutoffHour,
	}

	healthHandler := handlers.NewHealthHandler(deps.Feed, breakerOf(deps))
	gamesHandler := handlers.NewGamesHandler(deps.Feed, clock, deps.Logger)
	oddsHandler := handlers.NewOddsHandler(deps.Feed, deps.Picks, clock, deps.Logger)
	picksHandler := handlers.NewPicksHandler(deps.Picks, deps.Feed, clock, deps.Logger)

	group.GET("/status", healthHandler.GetStatus)

	// Games endpoints
	group.GET("/games/today", gamesHandler.GetTodayGames)
	group.GET("/games/today/board", gamesHandler.GetTodayBoard)
	group.GET("/games/calendar", gamesHandler.GetCalendar)
	group.GET("/games/calendar/month", gamesHandler.GetCalendarMonth)

	// Prediction endpoints; a session only adds lock state
	group.GET("/model-odds", oddsHandler.GetModelOdds)
	group.GET("/model-odds/board", middleware.OptionalSession(session), oddsHandler.GetOddsBoard)

	if deps.Client != nil {
		modelHandler := handlers.NewModelHandler(deps.Client, deps.Cache, deps.DB, deps.Logger)
		group.GET("/model/health", modelHandler.GetModelHealth)
		group.POST("/model/retrain", middleware.SessionAuth(session), modelHandler.Retrain)
	}

	// Pick endpoints (authenticated)
	picksGroup := group.Group("/picks")
	picksGroup.Use(middleware.SessionAuth(session))
	{
		picksGroup.GET("", picksHandler.GetPicks)
		picksGroup.POST("", picksHandler.CreatePick)
		picksGroup.GET("/export", picksHandler.ExportPicks)
		picksGroup.DELETE("/:id", picksHandler.DeletePick)
	}
}

func breakerOf(deps Dependencies) handlers.BreakerReporter {
	if deps.Client == nil {
		return nil
	}
	return deps.Client
}
