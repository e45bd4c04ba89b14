package contagion

import "fmt"

// Cascade propagates the failure of trigger through a clone of n with a FIFO
// worklist and no bailout. The trigger's own equity is left untouched.
func (a *Allocator) Cascade(n *Network, trigger int) (*CascadeResult, error) {
	if n == nil {
		return nil, fmt.Errorf("network is nil")
	}
	if !n.Has(trigger) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBank, trigger)
	}
	return cascade(n.Clone(), trigger), nil
}

func cascade(n *Network, trigger int) *CascadeResult {
	affected := newBankSet()
	queue := []int{trigger}
	steps := 0

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		steps++

		for _, e := range n.adj[current] {
			n.equity[e.To] -= e.Exposure
			if n.equity[e.To] < 0 && affected.add(e.To) {
				queue = append(queue, e.To)
			}
		}
	}

	return &CascadeResult{
		Trigger:  trigger,
		Affected: affected.list(),
		Equity:   n.equitySnapshot(),
		Rounds:   steps,
	}
}

// FirstOrderShock fails trigger (equity forced to 0) and applies only the
// direct exposures of its counterparties. Nothing propagates further.
func FirstOrderShock(n *Network, trigger int) (map[int]float64, error) {
	if n == nil {
		return nil, fmt.Errorf("network is nil")
	}
	if !n.Has(trigger) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBank, trigger)
	}

	work := n.Clone()
	work.equity[trigger] = 0
	for _, e := range work.adj[trigger] {
		work.equity[e.To] -= e.Exposure
	}
	return work.equitySnapshot(), nil
}
