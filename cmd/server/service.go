package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/JaimeStill/pdf-annotator/internal/api"
	"github.com/JaimeStill/pdf-annotator/internal/config"
	"github.com/JaimeStill/pdf-annotator/internal/infrastructure"
	"github.com/JaimeStill/pdf-annotator/internal/routes"
	"github.com/JaimeStill/pdf-annotator/internal/server"
)

// Service coordinates the lifecycle of all subsystems.
type Service struct {
	ctx        context.Context
	cancel     context.CancelFunc
	shutdownWg sync.WaitGroup

	infra   *infrastructure.Infrastructure
	runtime *api.Runtime
	server  server.System
	logger  *slog.Logger
}

// NewService creates and initializes the service with all subsystems.
func NewService(cfg *config.Config) (*Service, error) {
	ctx, cancel := context.WithCancel(context.Background())

	infra, err := infrastructure.New(ctx, cfg)
	if err != nil {
		cancel()
		return nil, err
	}

	rt, err := api.NewRuntime(cfg, infra.Logger, infra.Storage)
	if err != nil {
		cancel()
		infra.Close()
		return nil, fmt.Errorf("runtime init failed: %w", err)
	}

	module, err := api.NewModule(cfg, rt)
	if err != nil {
		cancel()
		rt.Close()
		infra.Close()
		return nil, fmt.Errorf("api module init failed: %w", err)
	}

	routeSys := routes.New(infra.Logger)
	if err := registerRoutes(routeSys, rt, cfg); err != nil {
		cancel()
		rt.Close()
		infra.Close()
		return nil, fmt.Errorf("route registration failed: %w", err)
	}
	routeSys.Handle(cfg.API.BasePath+"/", module)

	handler := buildMiddleware(infra.Logger).Apply(routeSys.Build())

	infra.Logger.Info(
		"service initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"storage", cfg.Storage.Backend,
	)

	return &Service{
		ctx:     ctx,
		cancel:  cancel,
		infra:   infra,
		runtime: rt,
		server:  server.New(&cfg.Server, handler, infra.Logger),
		logger:  infra.Logger,
	}, nil
}

// Start begins all subsystems and returns when they are ready.
func (s *Service) Start() error {
	s.logger.Info("starting service")

	if err := s.server.Start(s.ctx, &s.shutdownWg); err != nil {
		return fmt.Errorf("server start failed: %w", err)
	}

	s.logger.Info("service started")
	return nil
}

// Shutdown stops the HTTP server, closes every open session, and releases
// infrastructure within the provided context deadline.
func (s *Service) Shutdown(ctx context.Context) error {
	s.logger.Info("initiating shutdown")

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.shutdownWg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %w", ctx.Err())
	}

	s.runtime.Close()
	if err := s.infra.Close(); err != nil {
		return err
	}

	s.logger.Info("all subsystems shut down successfully")
	return nil
}
