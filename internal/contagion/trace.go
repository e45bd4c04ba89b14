package contagion

type CascadeTrace struct {
	Trigger   int          `json:"trigger"`
	FundLimit float64      `json:"fund_limit"`
	Rounds    []RoundTrace `json:"rounds"`
}

type RoundTrace struct {
	Round      int              `json:"round"`
	Processing []int            `json:"processing"`
	Candidates []CandidateTrace `json:"candidates"`
}

// CandidateTrace is one bank hit during a round, listed in priority order.
type CandidateTrace struct {
	Bank               int     `json:"bank"`
	HypotheticalEquity float64 `json:"hypothetical_equity"`
	Impact             int     `json:"impact"`
	BailoutDrawn       float64 `json:"bailout_drawn,omitempty"`
	CommittedEquity    float64 `json:"committed_equity"`
	Failed             bool    `json:"failed"`
}
