package router

import (
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/solarworks/solarworks/internal/auth"
	"github.com/solarworks/solarworks/internal/handlers"
	"github.com/solarworks/solarworks/internal/middleware"
	"github.com/solarworks/solarworks/internal/store"
	"github.com/solarworks/solarworks/internal/validation"
)

type Deps struct {
	Handler        *handlers.Handler
	Hub            *handlers.Hub
	Issuer         *auth.Issuer
	Admins         store.AdminStore
	LoginLimiter   *middleware.RateLimiter
	AllowedOrigins []string
	VideoDir       string
	Debug          bool
}

var bindingOnce sync.Once

func NewRouter(d Deps) *gin.Engine {
	bindingOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			validation.Register(v)
		}
	})

	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Debug(d.Debug),
		middleware.RequestLogger(),
		middleware.Recovery(),
		middleware.PrometheusMetrics(),
	)

	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Static("/videos", d.VideoDir)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := d.Handler
	requireAuth := middleware.AuthMiddleware(d.Issuer, d.Admins)

	api := r.Group("/api")
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/ws", requireAuth, d.Hub.WebSocket)

		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", h.Register)
			authRoutes.POST("/login", d.LoginLimiter.Middleware(), h.Login)
			authRoutes.GET("/me", requireAuth, h.Me)
		}

		projects := api.Group("/projects")
		{
			projects.GET("", h.ListProjects)
			projects.GET("/:id", h.GetProject)
			projects.POST("", requireAuth, h.CreateProject)
			projects.PUT("/:id", requireAuth, h.UpdateProject)
			projects.DELETE("/:id", requireAuth, h.DeleteProject)
		}

		team := api.Group("/team")
		{
			team.GET("", h.ListTeamMembers)
			team.GET("/:id", h.GetTeamMember)
			team.POST("", requireAuth, h.CreateTeamMember)
			team.PUT("/reorder", requireAuth, h.ReorderTeamMembers)
			team.PUT("/:id", requireAuth, h.UpdateTeamMember)
			team.DELETE("/:id", requireAuth, h.DeleteTeamMember)
		}

		news := api.Group("/news")
		{
			news.GET("", h.ListNews)
			news.GET("/:id", h.GetNews)
			news.POST("", requireAuth, h.CreateNews)
			news.PUT("/:id", requireAuth, h.UpdateNews)
			news.DELETE("/:id", requireAuth, h.DeleteNews)
		}

		videos := api.Group("/homepage-video")
		{
			videos.GET("", h.ListHomepageVideos)
			videos.GET("/active", h.GetActiveHomepageVideo)
			videos.GET("/:id", h.GetHomepageVideo)
			videos.POST("", requireAuth, h.CreateHomepageVideo)
			videos.PUT("/:id", requireAuth, h.UpdateHomepageVideo)
			videos.DELETE("/:id", requireAuth, h.DeleteHomepageVideo)
		}
	}

	return r
}
