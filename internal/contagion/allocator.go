package contagion

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Allocator runs cascades on cloned networks. The bailout variant works in
// synchronous rounds and spends a limited fund on the most systemically
// important distressed banks first.
type Allocator struct {
	observer RoundObserver
}

type AllocatorOption func(*Allocator)

func WithRoundObserver(observer RoundObserver) AllocatorOption {
	return func(a *Allocator) {
		a.observer = observer
	}
}

func NewAllocator(opts ...AllocatorOption) *Allocator {
	a := &Allocator{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Allocator) Allocate(n *Network, trigger int, fundLimit float64) (*CascadeResult, error) {
	if err := validateRun(n, trigger, fundLimit); err != nil {
		return nil, err
	}
	return a.allocate(n.Clone(), trigger, fundLimit, nil), nil
}

func (a *Allocator) AllocateWithTrace(n *Network, trigger int, fundLimit float64) (*CascadeResult, *CascadeTrace, error) {
	if err := validateRun(n, trigger, fundLimit); err != nil {
		return nil, nil, err
	}
	trace := &CascadeTrace{Trigger: trigger, FundLimit: fundLimit, Rounds: []RoundTrace{}}
	res := a.allocate(n.Clone(), trigger, fundLimit, trace)
	return res, trace, nil
}

func validateRun(n *Network, trigger int, fundLimit float64) error {
	if n == nil {
		return fmt.Errorf("network is nil")
	}
	if !n.Has(trigger) {
		return fmt.Errorf("%w: %d", ErrUnknownBank, trigger)
	}
	return validateFund(fundLimit)
}

func validateFund(fundLimit float64) error {
	if math.IsNaN(fundLimit) || math.IsInf(fundLimit, 0) || fundLimit < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidFund, fundLimit)
	}
	return nil
}

type candidate struct {
	bank   int
	equity float64
	impact int
}

// allocate mutates n in place.
func (a *Allocator) allocate(n *Network, trigger int, fundLimit float64, trace *CascadeTrace) *CascadeResult {
	remaining := fundLimit
	affected := newBankSet()
	n.equity[trigger] = 0

	queue := []int{trigger}
	round := 0

	for len(queue) > 0 {
		round++
		roundStart := time.Now()
		candidates := roundCandidates(n, queue)

		sort.SliceStable(candidates, func(i, j int) bool {
			if candidates[i].impact != candidates[j].impact {
				return candidates[i].impact > candidates[j].impact
			}
			return candidates[i].equity < candidates[j].equity
		})

		var rt *RoundTrace
		if trace != nil {
			trace.Rounds = append(trace.Rounds, RoundTrace{
				Round:      round,
				Processing: append([]int(nil), queue...),
				Candidates: make([]CandidateTrace, 0, len(candidates)),
			})
			rt = &trace.Rounds[len(trace.Rounds)-1]
		}

		next := make([]int, 0)
		drawnInRound := 0.0
		for _, c := range candidates {
			equity := c.equity
			drawn := 0.0
			if equity < 0 && remaining > 0 {
				drawn = math.Min(-equity, remaining)
				remaining -= drawn
				equity += drawn
			}
			drawnInRound += drawn

			n.equity[c.bank] = equity

			failed := equity < 0 && affected.add(c.bank)
			if failed {
				next = append(next, c.bank)
			}

			if rt != nil {
				rt.Candidates = append(rt.Candidates, CandidateTrace{
					Bank:               c.bank,
					HypotheticalEquity: c.equity,
					Impact:             c.impact,
					BailoutDrawn:       drawn,
					CommittedEquity:    equity,
					Failed:             failed,
				})
			}
		}

		a.observeRound(RoundStats{
			Trigger:       trigger,
			Round:         round,
			Processing:    len(queue),
			Candidates:    len(candidates),
			NewFailures:   len(next),
			FundDrawn:     drawnInRound,
			FundRemaining: remaining,
			Duration:      time.Since(roundStart),
		})
		queue = next
	}

	return &CascadeResult{
		Trigger:       trigger,
		Affected:      affected.list(),
		Critical:      affected.list(),
		Equity:        n.equitySnapshot(),
		FundLimit:     fundLimit,
		RemainingFund: remaining,
		Rounds:        round,
	}
}

// roundCandidates evaluates every successor of the processing set against
// the equity committed so far. A bank hit by several processing banks keeps
// its first-seen position and the values of the last hit.
func roundCandidates(n *Network, processing []int) []candidate {
	out := make([]candidate, 0)
	index := map[int]int{}

	for _, current := range processing {
		for _, e := range n.adj[current] {
			reduced := n.equity[e.To] - e.Exposure

			// one-step lookahead: successors that fail on this bank's own exposure
			impact := 0
			for _, onward := range n.adj[e.To] {
				if n.equity[onward.To]-onward.Exposure < 0 {
					impact++
				}
			}

			if i, ok := index[e.To]; ok {
				out[i].equity = reduced
				out[i].impact = impact
				continue
			}
			index[e.To] = len(out)
			out = append(out, candidate{bank: e.To, equity: reduced, impact: impact})
		}
	}
	return out
}

func (a *Allocator) observeRound(stats RoundStats) {
	if a == nil || a.observer == nil {
		return
	}
	a.observer.ObserveRound(stats)
}
