package simdto

import (
	"github.com/awmpietro/interbank-contagion/internal/app"
	"github.com/awmpietro/interbank-contagion/internal/contagion"
)

// NetworkInput is embedded by every request. Exactly one field must be set.
type NetworkInput struct {
	NetworkDOT string                 `json:"network_dot,omitempty"`
	Network    *contagion.NetworkSpec `json:"network,omitempty"`
}

func (n NetworkInput) Source() app.NetworkSource {
	return app.NetworkSource{DOT: n.NetworkDOT, Spec: n.Network}
}

type CascadeRequest struct {
	NetworkInput
	Trigger int `json:"trigger"`
}

type BailoutRequest struct {
	NetworkInput
	Trigger   int     `json:"trigger"`
	FundLimit float64 `json:"fund_limit"`
	Debug     bool    `json:"debug,omitempty"`
}

type MinimumFundRequest struct {
	NetworkInput
	Step    float64 `json:"step"`
	MaxFund float64 `json:"max_fund"`
}

type PlanRequest struct {
	NetworkInput
	Trigger   int     `json:"trigger"`
	FundLimit float64 `json:"fund_limit"`
}

type SweepRequest struct {
	NetworkInput
	FundLimit float64 `json:"fund_limit"`
	Plain     bool    `json:"plain,omitempty"`
	Select    string  `json:"select,omitempty"`
	Workers   int     `json:"workers,omitempty"`
}

func (r SweepRequest) Options() contagion.SweepOptions {
	return contagion.SweepOptions{
		FundLimit: r.FundLimit,
		Plain:     r.Plain,
		Select:    r.Select,
		Workers:   r.Workers,
	}
}

type ShockRequest struct {
	NetworkInput
	Trigger int `json:"trigger"`
}

type CascadeResponse struct {
	Result *contagion.CascadeResult `json:"result"`
	Trace  *contagion.CascadeTrace  `json:"trace,omitempty"`
	Run    *app.RunInfo             `json:"run,omitempty"`
}

type MinimumFundResponse struct {
	Result *contagion.FundSearchResult `json:"result"`
	Run    *app.RunInfo                `json:"run,omitempty"`
}

type PlanResponse struct {
	Plan  *contagion.BailoutPlan `json:"plan"`
	Total float64                `json:"total"`
	Run   *app.RunInfo           `json:"run,omitempty"`
}

type SweepResponse struct {
	Report *contagion.SweepReport `json:"report"`
	Run    *app.RunInfo           `json:"run,omitempty"`
}

type ShockResponse struct {
	Equity map[int]float64 `json:"equity"`
	Run    *app.RunInfo    `json:"run,omitempty"`
}

func ErrorBody(msg string, err error, trace *contagion.CascadeTrace, run *app.RunInfo) map[string]any {
	body := map[string]any{
		"error":   msg,
		"details": err.Error(),
	}
	if trace != nil {
		body["trace"] = trace
	}
	if run != nil {
		body["run"] = run
	}
	return body
}
