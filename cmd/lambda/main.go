package main

import (
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/awmpietro/interbank-contagion/internal/app"
	"github.com/awmpietro/interbank-contagion/internal/config"
	"github.com/awmpietro/interbank-contagion/internal/contagion"
	"github.com/awmpietro/interbank-contagion/internal/contagion/cache"
	"github.com/awmpietro/interbank-contagion/internal/logging"
	"github.com/awmpietro/interbank-contagion/internal/transport/lambdatransport"
)

func main() {
	cfg := config.Load()
	logger := logging.New(logging.Config{Level: cfg.LogLevel})

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
	h := lambdatransport.NewHandler(svc)

	lambda.Start(h.Handle)
}
