package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/solarworks/solarworks/internal/auth"
	"github.com/solarworks/solarworks/internal/bootstrap"
	"github.com/solarworks/solarworks/internal/handlers"
	"github.com/solarworks/solarworks/internal/logging"
	"github.com/solarworks/solarworks/internal/media"
	"github.com/solarworks/solarworks/internal/middleware"
	"github.com/solarworks/solarworks/internal/router"
	"github.com/solarworks/solarworks/internal/scheduler"
	"github.com/solarworks/solarworks/internal/services"
	"github.com/solarworks/solarworks/internal/supervisor"
)

func main() {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := bootstrap.OpenStore(ctx, cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open store")
	}

	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			logging.Error().Err(err).Msg("Failed to close store")
		}
	}()

	if cfg.Auth.AdminEmail != "" && cfg.Auth.AdminPassword != "" {
		admin, err := auth.EnsureAdmin(ctx, st, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword, cfg.Auth.AdminName)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to bootstrap admin")
		}
		logging.Info().Str("email", admin.Email).Msg("Bootstrap admin ready")
	}

	issuer, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create token issuer")
	}

	videos, err := media.NewVideoStore(cfg.Media.StaticDir, cfg.Media.MaxVideoBytes)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to prepare video directory")
	}

	var host media.ImageHost
	if cfg.Cloudinary.Enabled() {
		cld, err := media.NewCloudinaryHost(cfg.Cloudinary)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to configure Cloudinary")
		}
		host = cld
	} else {
		logging.Warn().Msg("Cloudinary is not configured, images are stored as sent")
	}

	images := media.NewImages(host, cfg.Cloudinary.Timeout)

	hub := handlers.NewHub(cfg.AllowedOrigins())
	defer hub.Close()

	notifier := services.NewWebhookNotifier(cfg.Notify)
	defer notifier.Wait()

	h := handlers.New(st, issuer, videos, images, services.Fanout{hub, notifier}, handlers.Options{
		AllowRegister: cfg.Auth.AllowRegister,
		SiteName:      cfg.Notify.SiteName,
	})

	loginLimiter := middleware.NewRateLimiter(cfg.Auth.LoginRateLimit, cfg.Auth.LoginWindow)

	r := router.NewRouter(router.Deps{
		Handler:        h,
		Hub:            hub,
		Issuer:         issuer,
		Admins:         st,
		LoginLimiter:   loginLimiter,
		AllowedOrigins: cfg.AllowedOrigins(),
		VideoDir:       videos.Dir(),
		Debug:          cfg.IsDevelopment(),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	tree := supervisor.NewTree("solarworks", supervisor.TreeConfig{ShutdownTimeout: cfg.Server.ShutdownTimeout})
	tree.Add(supervisor.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	tree.Add(loginLimiter)

	if cfg.Media.SweepInterval > 0 {
		tree.Add(scheduler.NewSweeper(videos, st, cfg.Media.SweepInterval, cfg.Media.SweepGrace))
	}

	logging.Info().Str("port", cfg.Server.Port).Str("env", cfg.AppEnv).Msg("Server starting")

	if err := <-tree.ServeBackground(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor stopped")
	}

	logging.Info().Msg("Server stopped")
}
