package contagion

import (
	"fmt"
	"math"
)

type Bank struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Equity float64 `json:"equity"`
}

// Exposure is the loss From's failure inflicts on To.
type Exposure struct {
	From   int     `json:"from"`
	To     int     `json:"to"`
	Amount float64 `json:"amount"`
}

type Edge struct {
	To       int
	Exposure float64
}

// Network is an owned bank graph. Banks and successor lists keep insertion
// order, which fixes the iteration order of every propagation.
type Network struct {
	order  []int
	names  map[int]string
	equity map[int]float64
	adj    map[int][]Edge
}

func newNetwork(capacity int) *Network {
	return &Network{
		order:  make([]int, 0, capacity),
		names:  make(map[int]string, capacity),
		equity: make(map[int]float64, capacity),
		adj:    make(map[int][]Edge, capacity),
	}
}

// NewNetwork validates banks and exposures and builds a network.
// Every exposure must reference known banks.
func NewNetwork(banks []Bank, exposures []Exposure) (*Network, error) {
	n := newNetwork(len(banks))
	for _, b := range banks {
		if err := n.addBank(b); err != nil {
			return nil, err
		}
	}
	for _, e := range exposures {
		if err := n.addExposure(e); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (n *Network) addBank(b Bank) error {
	if _, ok := n.equity[b.ID]; ok {
		return fmt.Errorf("%w: duplicate bank %d", ErrMalformedNetwork, b.ID)
	}
	if math.IsNaN(b.Equity) || math.IsInf(b.Equity, 0) {
		return fmt.Errorf("%w: bank %d has non-finite equity", ErrMalformedNetwork, b.ID)
	}
	n.order = append(n.order, b.ID)
	n.names[b.ID] = b.Name
	n.equity[b.ID] = b.Equity
	return nil
}

func (n *Network) addExposure(e Exposure) error {
	if _, ok := n.equity[e.From]; !ok {
		return fmt.Errorf("%w: exposure %d->%d references unknown source bank %d", ErrMalformedNetwork, e.From, e.To, e.From)
	}
	if _, ok := n.equity[e.To]; !ok {
		return fmt.Errorf("%w: exposure %d->%d references unknown target bank %d", ErrMalformedNetwork, e.From, e.To, e.To)
	}
	if math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) || e.Amount < 0 {
		return fmt.Errorf("%w: exposure %d->%d must be a finite non-negative amount", ErrMalformedNetwork, e.From, e.To)
	}

	edges := n.adj[e.From]
	for i := range edges {
		if edges[i].To == e.To {
			// last value wins, position is kept
			edges[i].Exposure = e.Amount
			return nil
		}
	}
	n.adj[e.From] = append(edges, Edge{To: e.To, Exposure: e.Amount})
	return nil
}

// Clone returns an independent copy. Propagation mutates equity, so every
// trial runs on its own clone.
func (n *Network) Clone() *Network {
	c := newNetwork(len(n.order))
	c.order = append(c.order, n.order...)
	for id, name := range n.names {
		c.names[id] = name
	}
	for id, eq := range n.equity {
		c.equity[id] = eq
	}
	for id, edges := range n.adj {
		c.adj[id] = append([]Edge(nil), edges...)
	}
	return c
}

func (n *Network) Len() int { return len(n.order) }

func (n *Network) Has(id int) bool {
	_, ok := n.equity[id]
	return ok
}

// BankIDs returns bank ids in insertion order.
func (n *Network) BankIDs() []int {
	return append([]int(nil), n.order...)
}

func (n *Network) Banks() []Bank {
	out := make([]Bank, 0, len(n.order))
	for _, id := range n.order {
		out = append(out, Bank{ID: id, Name: n.names[id], Equity: n.equity[id]})
	}
	return out
}

func (n *Network) Bank(id int) (Bank, bool) {
	eq, ok := n.equity[id]
	if !ok {
		return Bank{}, false
	}
	return Bank{ID: id, Name: n.names[id], Equity: eq}, true
}

func (n *Network) Equity(id int) float64 { return n.equity[id] }

// Successors returns the banks that lose money when id fails, in edge order.
func (n *Network) Successors(id int) []Edge {
	return append([]Edge(nil), n.adj[id]...)
}

func (n *Network) Exposures() []Exposure {
	out := make([]Exposure, 0)
	for _, from := range n.order {
		for _, e := range n.adj[from] {
			out = append(out, Exposure{From: from, To: e.To, Amount: e.Exposure})
		}
	}
	return out
}

// Credit adds amount to a bank's equity. It is how a bailout disbursement is
// applied to a network outside of a propagation run.
func (n *Network) Credit(id int, amount float64) error {
	if !n.Has(id) {
		return fmt.Errorf("%w: %d", ErrUnknownBank, id)
	}
	n.equity[id] += amount
	return nil
}

func (n *Network) equitySnapshot() map[int]float64 {
	out := make(map[int]float64, len(n.equity))
	for id, eq := range n.equity {
		out[id] = eq
	}
	return out
}

func (n *Network) outExposure(id int) float64 {
	total := 0.0
	for _, e := range n.adj[id] {
		total += e.Exposure
	}
	return total
}

func (n *Network) inExposure(id int) float64 {
	total := 0.0
	for _, from := range n.order {
		for _, e := range n.adj[from] {
			if e.To == id {
				total += e.Exposure
			}
		}
	}
	return total
}
