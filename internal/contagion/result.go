package contagion

// CascadeResult is the outcome of one propagation run. Affected lists banks
// in the order they failed; Critical mirrors it for the bailout variant.
type CascadeResult struct {
	Trigger       int             `json:"trigger"`
	Affected      []int           `json:"affected"`
	Critical      []int           `json:"critical,omitempty"`
	Equity        map[int]float64 `json:"equity"`
	FundLimit     float64         `json:"fund_limit"`
	RemainingFund float64         `json:"remaining_fund"`
	Rounds        int             `json:"rounds"`
}

func (r *CascadeResult) IsAffected(id int) bool {
	for _, a := range r.Affected {
		if a == id {
			return true
		}
	}
	return false
}

func (r *CascadeResult) FundUsed() float64 {
	return r.FundLimit - r.RemainingFund
}

type bankSet struct {
	seen  map[int]struct{}
	order []int
}

func newBankSet() *bankSet {
	return &bankSet{seen: map[int]struct{}{}}
}

func (s *bankSet) add(id int) bool {
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

func (s *bankSet) list() []int {
	return append([]int{}, s.order...)
}
