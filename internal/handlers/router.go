package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"repurpose-backend/internal/middleware"
)

type RouterConfig struct {
	Production  bool
	FrontendURL string
	Verifier    middleware.TokenVerifier
	Logger      *slog.Logger

	Videos  *VideosHandler
	Content *ContentHandler
	Profile *ProfileHandler
	Health  *HealthHandler
}

// NewRouter mounts every route under /api. Health is public; the rest need
// a bearer token.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(cfg.Logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg.FrontendURL))
	router.Use(middleware.NewRateLimiter(middleware.GeneralLimit).Middleware())
	router.Use(middleware.ErrorHandler(cfg.Production, cfg.Logger))

	api := router.Group("/api")
	api.GET("/health", cfg.Health.Health)

	auth := api.Group("")
	auth.Use(middleware.AuthMiddleware(cfg.Verifier))

	videoLimit := middleware.NewRateLimiter(middleware.VideoCreationLimit).Middleware()
	auth.POST("/videos", videoLimit, cfg.Videos.CreateVideo)
	auth.GET("/videos", cfg.Videos.ListVideos)
	auth.GET("/videos/:id", cfg.Videos.GetVideo)
	auth.DELETE("/videos/:id", cfg.Videos.DeleteVideo)

	// POST /content/:type/:videoId and GET /content/:videoId/:contentType
	// share a shape, which gin resolves per method.
	contentLimit := middleware.NewRateLimiter(middleware.ContentGenerationLimit).Middleware()
	auth.POST("/content/:type/:videoId", contentLimit, cfg.Content.GenerateContent)
	auth.GET("/content/:videoId/:contentType", cfg.Content.GetContent)

	auth.GET("/profile", cfg.Profile.GetProfile)

	return router
}
