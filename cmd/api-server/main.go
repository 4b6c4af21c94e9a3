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

	"mangashelf/internal/auth"
	"mangashelf/internal/browse"
	"mangashelf/internal/catalog"
	"mangashelf/internal/library"
	"mangashelf/internal/live"
	"mangashelf/internal/logging"
	"mangashelf/internal/metrics"
	"mangashelf/internal/normalize"
	"mangashelf/pkg/database"
	"mangashelf/pkg/utils"
)

func main() {
	cfg, err := utils.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	log := logging.Component("api")

	db := database.MustOpen(cfg.Database)
	defer db.Close()

	src, err := catalog.Select(cfg.Catalog.URL, cfg.Catalog.File, cfg.Catalog.Timeout, db)
	if err != nil {
		logging.Fatal().Err(err).Msg("catalog source")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), logging.Requests())
	_ = router.SetTrustedProxies(cfg.Server.TrustedProxies)

	hub := live.NewHub()
	registry := browse.NewRegistry()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.Database.Path, "catalog": src.Name()})
	})
	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "not_ready",
				"db_error": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"db":         "ok",
			"sessions":   registry.Len(),
			"topics":     stats.Topics,
			"ws_clients": stats.WSClients,
		})
	})
	router.GET("/metrics", metrics.Handler())

	tokens := auth.TokenService{
		Secret:   []byte(cfg.Auth.JWTSecret),
		Issuer:   cfg.Auth.JWTIssuer,
		Duration: cfg.Auth.JWTDuration,
	}
	authRepo := auth.NewRepo(db)
	auth.NewHandler(authRepo, tokens).RegisterRoutes(router.Group("/auth"))

	protected := router.Group("/users")
	protected.Use(auth.AuthMiddleware(tokens, authRepo))
	protected.GET("/me", func(c *gin.Context) {
		claims := auth.MustGetClaims(c)
		c.JSON(http.StatusOK, gin.H{"id": claims.UserID, "username": claims.Username})
	})

	libRepo := library.NewRepo(db)
	library.NewHandler(libRepo, hub).RegisterRoutes(protected)

	sessions := &browse.Handler{
		Registry:    registry,
		Source:      src,
		Normalizer:  normalize.New(cfg.Catalog.CoverBaseURL),
		Locale:      cfg.Browse.Locale,
		PageSize:    cfg.Browse.PageSize,
		Libraries:   libRepo,
		Hub:         hub,
		LoadTimeout: cfg.Catalog.Timeout,
	}
	sessions.RegisterRoutes(router.Group("/sessions"), auth.OptionalAuth(tokens, authRepo))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go registry.Run(ctx, cfg.Browse.SweepInterval, cfg.Browse.SessionTTL)

	httpSrv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.HTTPAddr).Str("catalog", src.Name()).Msg("http api listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	log.Info().Msg("server stopped")
}
