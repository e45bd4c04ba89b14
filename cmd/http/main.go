package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/awmpietro/interbank-contagion/internal/app"
	"github.com/awmpietro/interbank-contagion/internal/config"
	"github.com/awmpietro/interbank-contagion/internal/contagion"
	"github.com/awmpietro/interbank-contagion/internal/contagion/cache"
	"github.com/awmpietro/interbank-contagion/internal/logging"
	"github.com/awmpietro/interbank-contagion/internal/transport/httptransport"
)

func main() {
	cfg := config.Load()
	logger := logging.New(logging.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	rounds := contagion.NewAsyncRoundObserver(contagion.NewRoundLogger(logger), cfg.ObsBuffer)
	defer rounds.Close()

	alloc := contagion.NewAllocator(contagion.WithRoundObserver(rounds))
	svc := app.NewService(
		contagion.NewLoader(),
		alloc,
		contagion.NewFundSearcher(alloc, contagion.WithWorkers(cfg.SearchWorkers)),
		contagion.NewPlanner(alloc, contagion.WithMaxSteps(cfg.PlanMaxSteps)),
		cache.NewInMemory(cfg.CacheMaxItems),
		app.WithLogger(logger),
		app.WithMaxFund(cfg.MaxFund),
		app.WithSweepWorkers(cfg.SearchWorkers),
	)
	h := httptransport.NewHandler(svc, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
	if dropped := rounds.Dropped(); dropped > 0 {
		logger.Warn().Uint64("dropped", dropped).Msg("round observations dropped")
	}
}
