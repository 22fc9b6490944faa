package router

import (
	"time"

	"github.com/edusync/edusync-portal/internal/config"
	"github.com/edusync/edusync-portal/internal/handler"
	"github.com/edusync/edusync-portal/internal/metrics"
	"github.com/edusync/edusync-portal/internal/middleware"
	"github.com/edusync/edusync-portal/internal/response"
	"github.com/edusync/edusync-portal/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	// mediaMaxAge is the Cache-Control max-age for downloaded blobs (1 day).
	mediaMaxAge = 86400
	// attemptRateFactor scales the per-user budget for answer traffic.
	attemptRateFactor = 10
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	Course  *handler.CourseHandler
	Draft   *handler.DraftHandler
	Attempt *handler.AttemptHandler
	Result  *handler.ResultHandler
	File    *handler.FileHandler
	WS      *handler.WSHandler
	System  *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Metrics())
	router.Use(middleware.Brotli())

	// ─── Ops ───────────────────────────────────────────────────────────
	router.GET("/health", handlers.System.Health)
	router.GET("/metrics", metrics.Handler())

	requireAuth := []gin.HandlerFunc{
		middleware.RequireJWT(authService),
		middleware.RequireSession(authService, log),
	}
	instructorOnly := middleware.RequireInstructor()

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	authLimiter := middleware.NewRateLimiter(cfg.RateLimit, time.Minute)
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/forgot-password", handlers.Auth.ForgotPassword)
		auth.POST("/reset-password", handlers.Auth.ResetPassword)
	}

	// ─── 2. Authenticated API (JWT + Session) ──────────────────────────
	api := router.Group("/api/v1")
	api.Use(requireAuth...)
	{
		api.POST("/auth/logout", handlers.Auth.Logout)
		api.GET("/auth/me", handlers.Auth.Me)

		// Courses
		api.GET("/courses", handlers.Course.List)
		api.GET("/courses/:id", handlers.Course.Get)

		// Attempts
		attemptLimiter := middleware.NewRateLimiter(cfg.RateLimit*attemptRateFactor, time.Minute).ByUser()
		attempts := api.Group("")
		attempts.Use(middleware.NoStore(), attemptLimiter.Middleware())
		{
			attempts.POST("/assessments/:id/attempts", handlers.Attempt.Start)
			attempts.GET("/attempts/:id", handlers.Attempt.Get)
			attempts.PUT("/attempts/:id/answers", handlers.Attempt.Answer)
			attempts.POST("/attempts/:id/submit", handlers.Attempt.Submit)
		}

		// Results
		api.GET("/results/me", handlers.Result.MyResults)
		api.GET("/submissions/me", handlers.Result.MySubmissions)

		// Files
		api.GET("/files/download/*blob", middleware.CacheControl(mediaMaxAge), handlers.File.Download)
	}

	// ─── 3. Instructor API (JWT + Session + Role) ──────────────────────
	instructor := router.Group("/api/v1")
	instructor.Use(requireAuth...)
	instructor.Use(instructorOnly)
	{
		instructor.GET("/instructor/courses", handlers.Course.ListOwned)
		instructor.POST("/courses", handlers.Course.Create)
		instructor.PUT("/courses/:id", handlers.Course.Update)
		instructor.DELETE("/courses/:id", handlers.Course.Delete)
		instructor.POST("/courses/:id/media", handlers.Course.AttachMedia)
		instructor.POST("/files/upload", handlers.File.Upload)

		// Authoring drafts
		drafts := instructor.Group("")
		drafts.Use(middleware.NoStore())
		{
			drafts.POST("/courses/:id/drafts", handlers.Draft.Create)
			drafts.POST("/assessments/:id/drafts", handlers.Draft.Edit)
			drafts.DELETE("/assessments/:id", handlers.Draft.DeleteAssessment)

			drafts.GET("/drafts/:id", handlers.Draft.Get)
			drafts.DELETE("/drafts/:id", handlers.Draft.Discard)
			drafts.PUT("/drafts/:id/title", handlers.Draft.SetTitle)
			drafts.POST("/drafts/:id/submit", handlers.Draft.Submit)

			drafts.POST("/drafts/:id/questions", handlers.Draft.AddQuestion)
			drafts.PATCH("/drafts/:id/questions/:q", handlers.Draft.UpdateQuestion)
			drafts.DELETE("/drafts/:id/questions/:q", handlers.Draft.RemoveQuestion)
			drafts.PUT("/drafts/:id/questions/:q/type", handlers.Draft.ChangeType)
			drafts.PUT("/drafts/:id/questions/:q/correct", handlers.Draft.SelectCorrect)
			drafts.POST("/drafts/:id/questions/:q/options", handlers.Draft.AddOption)
			drafts.PUT("/drafts/:id/questions/:q/options/:o", handlers.Draft.SetOptionText)
			drafts.DELETE("/drafts/:id/questions/:q/options/:o", handlers.Draft.RemoveOption)
		}

		// Reports
		instructor.GET("/courses/:id/assessments/:aid/results", handlers.Result.AssessmentResults)
		instructor.GET("/courses/:id/assessments/:aid/results/stream", handlers.Result.StreamResults)
		instructor.GET("/instructor/performance", handlers.Result.Performance)
	}

	// ─── 4. WebSocket Group (token query param) ────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService), middleware.RequireSession(authService, log))
	{
		ws.GET("/attempts/:id/stream", handlers.WS.AttemptStream)
	}

	return router
}
