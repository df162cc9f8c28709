package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"staking_sim/internal/config"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	ServiceProvider *ServiceProvider
	opts            Options
}

func NewApp(opts Options) *App {
	return &App{opts: opts}
}

func (s *App) initServiceProvider() {
	s.ServiceProvider = newServiceProvider(s.opts)
}

// Init читает .env и создаёт ServiceProvider; зависимости создаются при первом обращении
func (s *App) Init(envPath string) {
	err := config.Load(envPath)
	if err != nil {
		log.Printf("Error loading %s file: %v", envPath, err)
	}
	s.initServiceProvider()
}

// Run HTTP сервер до SIGINT/SIGTERM
func (s *App) Run() error {
	s.Init(".env")
	defer s.ServiceProvider.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sp := s.ServiceProvider
	srv := &http.Server{
		Addr:    sp.HTTPCfg().Address(),
		Handler: sp.Router(ctx),
	}

	errCh := make(chan error, 1)
	go func() {
		sp.Logger().Info("starting server", zap.String("address", srv.Addr), zap.Bool("persistence", sp.PersistenceEnabled()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	sp.Logger().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
