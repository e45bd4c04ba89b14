package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/awmpietro/interbank-contagion/internal/contagion"
)

var (
	ErrNetworkRequired  = errors.New("network_dot or network is required")
	ErrAmbiguousNetwork = errors.New("network_dot and network are mutually exclusive")
)

type Loader interface {
	Load(dot string) (*contagion.Network, error)
}

type Simulator interface {
	Cascade(n *contagion.Network, trigger int) (*contagion.CascadeResult, error)
	Allocate(n *contagion.Network, trigger int, fundLimit float64) (*contagion.CascadeResult, error)
	AllocateWithTrace(n *contagion.Network, trigger int, fundLimit float64) (*contagion.CascadeResult, *contagion.CascadeTrace, error)
	Sweep(ctx context.Context, n *contagion.Network, opts contagion.SweepOptions) (*contagion.SweepReport, error)
}

type FundSearcher interface {
	FindMinimumFund(ctx context.Context, n *contagion.Network, step, maxFund float64) (*contagion.FundSearchResult, error)
}

type Planner interface {
	Plan(n *contagion.Network, trigger int, fundLimit float64) (*contagion.BailoutPlan, error)
}

type Cache interface {
	GetOrCompute(source string, fn func() (*contagion.Network, error)) (*contagion.Network, error)
}

type Service struct {
	loader   Loader
	sim      Simulator
	searcher FundSearcher
	planner  Planner
	cache    Cache

	logger       zerolog.Logger
	maxFund      float64
	sweepWorkers int
}

type ServiceOption func(*Service)

func WithLogger(l zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

// WithMaxFund caps fund limits and search ranges accepted by the service.
// Zero disables the cap.
func WithMaxFund(max float64) ServiceOption {
	return func(s *Service) {
		if max >= 0 {
			s.maxFund = max
		}
	}
}

// WithSweepWorkers applies when a sweep request does not set its own worker count.
func WithSweepWorkers(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.sweepWorkers = n
		}
	}
}

func NewService(loader Loader, sim Simulator, searcher FundSearcher, planner Planner, cache Cache, opts ...ServiceOption) *Service {
	s := &Service{
		loader:       loader,
		sim:          sim,
		searcher:     searcher,
		planner:      planner,
		cache:        cache,
		logger:       zerolog.Nop(),
		sweepWorkers: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Cascade(ctx context.Context, src NetworkSource, trigger int) (*contagion.CascadeResult, *RunInfo, error) {
	n, info, err := s.begin(ctx, src)
	if err != nil {
		return nil, nil, err
	}
	start := time.Now()

	res, err := s.sim.Cascade(n, trigger)
	if err != nil {
		return nil, info, err
	}
	s.done(info, "cascade", start).Int("trigger", trigger).Int("affected", len(res.Affected)).Msg("run finished")
	return res, info, nil
}

// Bailout runs the priority allocator. The round trace is only built when
// requested.
func (s *Service) Bailout(ctx context.Context, src NetworkSource, trigger int, fundLimit float64, opts BailoutOptions) (*contagion.CascadeResult, *contagion.CascadeTrace, *RunInfo, error) {
	if err := s.checkFund(fundLimit); err != nil {
		return nil, nil, nil, err
	}
	n, info, err := s.begin(ctx, src)
	if err != nil {
		return nil, nil, nil, err
	}
	start := time.Now()

	var (
		res   *contagion.CascadeResult
		trace *contagion.CascadeTrace
	)
	if opts.Trace {
		res, trace, err = s.sim.AllocateWithTrace(n, trigger, fundLimit)
	} else {
		res, err = s.sim.Allocate(n, trigger, fundLimit)
	}
	if err != nil {
		return nil, nil, info, err
	}

	s.done(info, "bailout", start).
		Int("trigger", trigger).
		Int("affected", len(res.Affected)).
		Float64("fund_used", res.FundUsed()).
		Msg("run finished")
	return res, trace, info, nil
}

func (s *Service) MinimumFund(ctx context.Context, src NetworkSource, step, maxFund float64) (*contagion.FundSearchResult, *RunInfo, error) {
	if err := s.checkFund(maxFund); err != nil {
		return nil, nil, err
	}
	n, info, err := s.begin(ctx, src)
	if err != nil {
		return nil, nil, err
	}
	start := time.Now()

	res, err := s.searcher.FindMinimumFund(ctx, n, step, maxFund)
	if err != nil {
		return nil, info, err
	}
	s.done(info, "minimum_fund", start).
		Bool("found", res.Found).
		Float64("fund", res.Fund).
		Int("candidates", res.Candidates).
		Msg("run finished")
	return res, info, nil
}

func (s *Service) Plan(ctx context.Context, src NetworkSource, trigger int, fundLimit float64) (*contagion.BailoutPlan, *RunInfo, error) {
	if err := s.checkFund(fundLimit); err != nil {
		return nil, nil, err
	}
	n, info, err := s.begin(ctx, src)
	if err != nil {
		return nil, nil, err
	}
	start := time.Now()

	plan, err := s.planner.Plan(n, trigger, fundLimit)
	if err != nil {
		return nil, info, err
	}
	s.done(info, "plan", start).
		Int("trigger", trigger).
		Int("steps", len(plan.Steps)).
		Float64("disbursed", plan.Total()).
		Msg("run finished")
	return plan, info, nil
}

func (s *Service) Sweep(ctx context.Context, src NetworkSource, opts contagion.SweepOptions) (*contagion.SweepReport, *RunInfo, error) {
	if err := s.checkFund(opts.FundLimit); err != nil {
		return nil, nil, err
	}
	n, info, err := s.begin(ctx, src)
	if err != nil {
		return nil, nil, err
	}
	start := time.Now()

	if opts.Workers <= 0 {
		opts.Workers = s.sweepWorkers
	}
	report, err := s.sim.Sweep(ctx, n, opts)
	if err != nil {
		return nil, info, err
	}
	s.done(info, "sweep", start).
		Int("triggers", report.Summary.Triggers).
		Int("cascading", report.Summary.Cascading).
		Msg("run finished")
	return report, info, nil
}

func (s *Service) Shock(ctx context.Context, src NetworkSource, trigger int) (map[int]float64, *RunInfo, error) {
	n, info, err := s.begin(ctx, src)
	if err != nil {
		return nil, nil, err
	}
	start := time.Now()

	equity, err := contagion.FirstOrderShock(n, trigger)
	if err != nil {
		return nil, info, err
	}
	s.done(info, "shock", start).Int("trigger", trigger).Msg("run finished")
	return equity, info, nil
}

func (s *Service) begin(ctx context.Context, src NetworkSource) (*contagion.Network, *RunInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	n, err := s.network(src)
	if err != nil {
		return nil, nil, err
	}
	info := &RunInfo{
		RunID:     uuid.NewString(),
		Banks:     n.Len(),
		Exposures: len(n.Exposures()),
	}
	return n, info, nil
}

func (s *Service) done(info *RunInfo, op string, start time.Time) *zerolog.Event {
	return s.logger.Info().
		Str("run_id", info.RunID).
		Str("op", op).
		Int("banks", info.Banks).
		Dur("elapsed", time.Since(start))
}

// network resolves the source through the cache. Cached networks are shared
// between requests; every core operation clones before mutating.
func (s *Service) network(src NetworkSource) (*contagion.Network, error) {
	switch {
	case src.DOT != "" && src.Spec != nil:
		return nil, ErrAmbiguousNetwork
	case src.DOT != "":
		return s.cache.GetOrCompute("dot:"+src.DOT, func() (*contagion.Network, error) {
			return s.loader.Load(src.DOT)
		})
	case src.Spec != nil:
		key, err := json.Marshal(src.Spec)
		if err != nil {
			return nil, fmt.Errorf("encode network: %w", err)
		}
		spec := *src.Spec
		return s.cache.GetOrCompute("spec:"+string(key), spec.Build)
	default:
		return nil, ErrNetworkRequired
	}
}

func (s *Service) checkFund(fund float64) error {
	if s.maxFund > 0 && fund > s.maxFund {
		return fmt.Errorf("%w: %v exceeds the configured maximum %v", contagion.ErrInvalidFund, fund, s.maxFund)
	}
	return nil
}
