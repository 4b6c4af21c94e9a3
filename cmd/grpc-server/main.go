package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"mangashelf/internal/browse"
	"mangashelf/internal/catalog"
	"mangashelf/internal/grpcserver"
	"mangashelf/internal/logging"
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
	log := logging.Component("grpc")

	db := database.MustOpen(cfg.Database)
	defer db.Close()

	src, err := catalog.Select(cfg.Catalog.URL, cfg.Catalog.File, cfg.Catalog.Timeout, db)
	if err != nil {
		logging.Fatal().Err(err).Msg("catalog source")
	}

	listener, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logging.Fatal().Err(err).Str("addr", cfg.Server.GRPCAddr).Msg("grpc listen")
	}

	registry := browse.NewRegistry()
	svc := grpcserver.NewServer(registry, src, normalize.New(cfg.Catalog.CoverBaseURL))
	svc.Locale = cfg.Browse.Locale
	svc.PageSize = cfg.Browse.PageSize

	srv := grpc.NewServer(grpc.UnaryInterceptor(grpcserver.LoggingInterceptor()))
	grpcserver.RegisterBrowseServer(srv, svc)
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(srv, healthSrv)
	healthSrv.SetServingStatus(grpcserver.ServiceName, healthpb.HealthCheckResponse_SERVING)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go registry.Run(ctx, cfg.Browse.SweepInterval, cfg.Browse.SessionTTL)
	go func() {
		<-ctx.Done()
		log.Info().Msg("shutdown signal received")
		healthSrv.Shutdown()
		srv.GracefulStop()
	}()

	log.Info().Str("addr", cfg.Server.GRPCAddr).Str("catalog", src.Name()).Msg("grpc server listening")
	if err := srv.Serve(listener); err != nil {
		logging.Fatal().Err(err).Msg("grpc server stopped")
	}
}
