package contagion

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/awmpietro/interbank-contagion/internal/contagion/selector"
)

type SweepOptions struct {
	FundLimit float64
	// Plain runs the FIFO cascade with no bailout instead of the allocator.
	Plain bool
	// Select restricts triggers to banks matching a selector expression.
	Select  string
	Workers int
}

type SweepRow struct {
	Trigger       int     `json:"trigger"`
	Name          string  `json:"name"`
	AffectedCount int     `json:"affected_count"`
	Affected      []int   `json:"affected"`
	RemainingFund float64 `json:"remaining_fund"`
}

type SweepSummary struct {
	Triggers       int     `json:"triggers"`
	Cascading      int     `json:"cascading"`
	MeanAffected   float64 `json:"mean_affected"`
	StdDevAffected float64 `json:"stddev_affected"`
	MaxAffected    float64 `json:"max_affected"`
}

type SweepReport struct {
	FundLimit float64      `json:"fund_limit"`
	Plain     bool         `json:"plain"`
	Select    string       `json:"select,omitempty"`
	Rows      []SweepRow   `json:"rows"`
	Summary   SweepSummary `json:"summary"`
}

// Sweep fails every selected bank in turn, each on its own clone, and
// reports the damage. Rows follow network bank order.
func (a *Allocator) Sweep(ctx context.Context, n *Network, opts SweepOptions) (*SweepReport, error) {
	if n == nil {
		return nil, fmt.Errorf("network is nil")
	}
	if err := validateFund(opts.FundLimit); err != nil {
		return nil, err
	}
	sel, err := selector.Compile(opts.Select)
	if err != nil {
		return nil, err
	}

	triggers := make([]int, 0, n.Len())
	for _, id := range n.order {
		ok, err := sel.Match(n.selectorVars(id))
		if err != nil {
			return nil, fmt.Errorf("selector on bank %d: %w", id, err)
		}
		if ok {
			triggers = append(triggers, id)
		}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	rows := make([]SweepRow, len(triggers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, id := range triggers {
		i, id := i, id
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var res *CascadeResult
			if opts.Plain {
				res = cascade(n.Clone(), id)
			} else {
				res = a.allocate(n.Clone(), id, opts.FundLimit, nil)
			}
			rows[i] = SweepRow{
				Trigger:       id,
				Name:          n.names[id],
				AffectedCount: len(res.Affected),
				Affected:      res.Affected,
				RemainingFund: res.RemainingFund,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &SweepReport{
		FundLimit: opts.FundLimit,
		Plain:     opts.Plain,
		Select:    sel.String(),
		Rows:      rows,
		Summary:   summarize(rows),
	}, nil
}

func summarize(rows []SweepRow) SweepSummary {
	s := SweepSummary{Triggers: len(rows)}
	if len(rows) == 0 {
		return s
	}

	counts := make([]float64, 0, len(rows))
	for _, r := range rows {
		counts = append(counts, float64(r.AffectedCount))
		if r.AffectedCount > 0 {
			s.Cascading++
		}
	}

	s.MeanAffected = stat.Mean(counts, nil)
	if len(counts) > 1 {
		s.StdDevAffected = stat.StdDev(counts, nil)
	}
	s.MaxAffected = floats.Max(counts)
	return s
}

func (n *Network) selectorVars(id int) map[string]any {
	inDegree := 0
	for _, from := range n.order {
		for _, e := range n.adj[from] {
			if e.To == id {
				inDegree++
			}
		}
	}
	return map[string]any{
		selector.VarID:          id,
		selector.VarName:        n.names[id],
		selector.VarEquity:      n.equity[id],
		selector.VarOutExposure: n.outExposure(id),
		selector.VarInExposure:  n.inExposure(id),
		selector.VarOutDegree:   len(n.adj[id]),
		selector.VarInDegree:    inDegree,
	}
}
