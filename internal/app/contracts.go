package app

import (
	"context"

	"github.com/awmpietro/interbank-contagion/internal/contagion"
)

// SimulationService is what the transports depend on.
type SimulationService interface {
	Cascade(ctx context.Context, src NetworkSource, trigger int) (*contagion.CascadeResult, *RunInfo, error)
	Bailout(ctx context.Context, src NetworkSource, trigger int, fundLimit float64, opts BailoutOptions) (*contagion.CascadeResult, *contagion.CascadeTrace, *RunInfo, error)
	MinimumFund(ctx context.Context, src NetworkSource, step, maxFund float64) (*contagion.FundSearchResult, *RunInfo, error)
	Plan(ctx context.Context, src NetworkSource, trigger int, fundLimit float64) (*contagion.BailoutPlan, *RunInfo, error)
	Sweep(ctx context.Context, src NetworkSource, opts contagion.SweepOptions) (*contagion.SweepReport, *RunInfo, error)
	Shock(ctx context.Context, src NetworkSource, trigger int) (map[int]float64, *RunInfo, error)
}

// NetworkSource carries a network either as DOT text or in list form.
// Exactly one must be set.
type NetworkSource struct {
	DOT  string
	Spec *contagion.NetworkSpec
}

type BailoutOptions struct {
	Trace bool
}

type RunInfo struct {
	RunID     string `json:"run_id"`
	Banks     int    `json:"banks"`
	Exposures int    `json:"exposures"`
}
