package contagion

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

type FundSearchResult struct {
	Fund       float64 `json:"fund"`
	Found      bool    `json:"found"`
	Step       float64 `json:"step"`
	MaxFund    float64 `json:"max_fund"`
	Candidates int     `json:"candidates_tried"`
}

// FundSearcher looks for the smallest bailout fund, on a step grid, that
// stops every single-bank failure from cascading.
type FundSearcher struct {
	alloc   *Allocator
	workers int
}

type SearchOption func(*FundSearcher)

// WithWorkers bounds how many trigger trials run at once. Trials operate on
// independent clones, so results do not depend on this value.
func WithWorkers(n int) SearchOption {
	return func(s *FundSearcher) {
		if n > 0 {
			s.workers = n
		}
	}
}

func NewFundSearcher(alloc *Allocator, opts ...SearchOption) *FundSearcher {
	if alloc == nil {
		alloc = NewAllocator()
	}
	s := &FundSearcher{alloc: alloc, workers: 1}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindMinimumFund scans step, 2*step, ... up to maxFund. A candidate passes
// when no bank, failing alone, leaves any affected bank behind. Larger funds
// never hurt, so the first passing candidate is the minimum at this
// granularity. Found is false when maxFund is exceeded.
func (s *FundSearcher) FindMinimumFund(ctx context.Context, n *Network, step, maxFund float64) (*FundSearchResult, error) {
	if n == nil {
		return nil, fmt.Errorf("network is nil")
	}
	if math.IsNaN(step) || math.IsInf(step, 0) || step <= 0 {
		return nil, fmt.Errorf("%w: step must be positive, got %v", ErrInvalidStep, step)
	}
	if err := validateFund(maxFund); err != nil {
		return nil, err
	}

	res := &FundSearchResult{Step: step, MaxFund: maxFund}
	for k := 1; ; k++ {
		fund := step * float64(k)
		if fund > maxFund {
			return res, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res.Candidates++
		ok, err := s.PreventsAll(ctx, n, fund)
		if err != nil {
			return nil, err
		}
		if ok {
			res.Fund = fund
			res.Found = true
			return res, nil
		}
	}
}

type cascadeFound struct {
	trigger int
}

func (e *cascadeFound) Error() string {
	return fmt.Sprintf("bank %d still cascades", e.trigger)
}

// PreventsAll reports whether fund stops the cascade for every trigger.
// It stops at the first trigger that still cascades.
func (s *FundSearcher) PreventsAll(ctx context.Context, n *Network, fund float64) (bool, error) {
	if err := validateFund(fund); err != nil {
		return false, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, id := range n.order {
		trigger := id
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			res := s.alloc.allocate(n.Clone(), trigger, fund, nil)
			if len(res.Affected) > 0 {
				return &cascadeFound{trigger: trigger}
			}
			return nil
		})
	}

	err := g.Wait()
	var cf *cascadeFound
	if errors.As(err, &cf) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return true, nil
}
