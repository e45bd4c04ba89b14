package contagion

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

type Disbursement struct {
	Bank   int     `json:"bank"`
	Amount float64 `json:"amount"`
}

// BailoutPlan lists disbursements in the order the planner decided them.
type BailoutPlan struct {
	Trigger       int             `json:"trigger"`
	FundLimit     float64         `json:"fund_limit"`
	Steps         []Disbursement  `json:"steps"`
	RemainingFund float64         `json:"remaining_fund"`
	Affected      []int           `json:"affected"`
	Equity        map[int]float64 `json:"equity"`
}

func (p *BailoutPlan) Total() float64 {
	amounts := make([]float64, 0, len(p.Steps))
	for _, s := range p.Steps {
		amounts = append(amounts, s.Amount)
	}
	return floats.Sum(amounts)
}

const defaultPlanMaxSteps = 10_000

// Planner builds a bailout plan greedily: each step funds the affected bank
// whose rescue removes the most critical banks in a full re-simulation.
type Planner struct {
	alloc    *Allocator
	maxSteps int
}

type PlannerOption func(*Planner)

func WithMaxSteps(n int) PlannerOption {
	return func(p *Planner) {
		if n > 0 {
			p.maxSteps = n
		}
	}
}

func NewPlanner(alloc *Allocator, opts ...PlannerOption) *Planner {
	if alloc == nil {
		alloc = NewAllocator()
	}
	p := &Planner{alloc: alloc, maxSteps: defaultPlanMaxSteps}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan works on one private copy of n that carries state from step to step:
// every allocator run and every disbursement is applied to it. Candidate
// scoring runs on throwaway clones of that copy.
func (p *Planner) Plan(n *Network, trigger int, fundLimit float64) (*BailoutPlan, error) {
	if err := validateRun(n, trigger, fundLimit); err != nil {
		return nil, err
	}

	work := n.Clone()
	fund := fundLimit
	plan := &BailoutPlan{Trigger: trigger, FundLimit: fundLimit, Steps: []Disbursement{}}

	current := p.alloc.allocate(work, trigger, fund, nil)
	if len(current.Affected) == 0 {
		plan.RemainingFund = fundLimit
		plan.Affected = current.Affected
		plan.Equity = current.Equity
		return plan, nil
	}

	for step := 0; fund > 0 && len(current.Affected) > 0; step++ {
		if step >= p.maxSteps {
			return nil, fmt.Errorf("plan maxSteps exceeded (%d)", p.maxSteps)
		}

		best := p.mostEffective(work, trigger, fund, current.Affected)

		needed := 0.0
		if eq := work.equity[best]; eq < 0 {
			needed = -eq
		}
		used := min(needed, fund)
		if used <= 0 {
			// the best candidate is already solvent, nothing left to buy
			break
		}

		fund -= used
		work.equity[best] += used
		plan.Steps = append(plan.Steps, Disbursement{Bank: best, Amount: used})

		current = p.alloc.allocate(work, trigger, fund, nil)
	}

	plan.RemainingFund = fund
	plan.Affected = current.Affected
	plan.Equity = current.Equity
	return plan, nil
}

// mostEffective scores each affected bank by crediting it the whole
// remaining fund on a clone and counting how many critical banks disappear.
// Ties go to the lowest bank id.
func (p *Planner) mostEffective(work *Network, trigger int, fund float64, affected []int) int {
	best, bestImpact := 0, 0
	for i, bank := range affected {
		trial := work.Clone()
		trial.equity[bank] += fund
		res := p.alloc.allocate(trial, trigger, fund, nil)

		impact := len(affected) - len(res.Critical)
		if i == 0 || impact > bestImpact || (impact == bestImpact && bank < best) {
			best, bestImpact = bank, impact
		}
	}
	return best
}
