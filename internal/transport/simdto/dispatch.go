package simdto

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/awmpietro/interbank-contagion/internal/app"
)

// Operation decodes one request body, calls the service and returns the
// HTTP status and response body.
type Operation func(ctx context.Context, svc app.SimulationService, body []byte) (int, any)

var operations = map[string]Operation{
	"cascade":      cascade,
	"bailout":      bailout,
	"minimum-fund": minimumFund,
	"plan":         plan,
	"sweep":        sweep,
	"shock":        shock,
}

// Lookup returns the operation served under /v1/<name>.
func Lookup(name string) (Operation, bool) {
	op, ok := operations[name]
	return op, ok
}

// Names lists the operation names in sorted order.
func Names() []string {
	out := make([]string, 0, len(operations))
	for name := range operations {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func decode(body []byte, v any) error {
	if len(body) == 0 {
		return fmt.Errorf("empty body")
	}
	return json.Unmarshal(body, v)
}

func invalidJSON(err error) (int, any) {
	return http.StatusBadRequest, map[string]any{"error": "invalid json", "details": err.Error()}
}

func cascade(ctx context.Context, svc app.SimulationService, body []byte) (int, any) {
	var in CascadeRequest
	if err := decode(body, &in); err != nil {
		return invalidJSON(err)
	}
	res, run, err := svc.Cascade(ctx, in.Source(), in.Trigger)
	if err != nil {
		return http.StatusBadRequest, ErrorBody("cascade failed", err, nil, run)
	}
	return http.StatusOK, CascadeResponse{Result: res, Run: run}
}

func bailout(ctx context.Context, svc app.SimulationService, body []byte) (int, any) {
	var in BailoutRequest
	if err := decode(body, &in); err != nil {
		return invalidJSON(err)
	}
	res, trace, run, err := svc.Bailout(ctx, in.Source(), in.Trigger, in.FundLimit, app.BailoutOptions{Trace: in.Debug})
	if err != nil {
		return http.StatusBadRequest, ErrorBody("bailout failed", err, trace, run)
	}
	return http.StatusOK, CascadeResponse{Result: res, Trace: trace, Run: run}
}

func minimumFund(ctx context.Context, svc app.SimulationService, body []byte) (int, any) {
	var in MinimumFundRequest
	if err := decode(body, &in); err != nil {
		return invalidJSON(err)
	}
	res, run, err := svc.MinimumFund(ctx, in.Source(), in.Step, in.MaxFund)
	if err != nil {
		return http.StatusBadRequest, ErrorBody("minimum fund search failed", err, nil, run)
	}
	return http.StatusOK, MinimumFundResponse{Result: res, Run: run}
}

func plan(ctx context.Context, svc app.SimulationService, body []byte) (int, any) {
	var in PlanRequest
	if err := decode(body, &in); err != nil {
		return invalidJSON(err)
	}
	p, run, err := svc.Plan(ctx, in.Source(), in.Trigger, in.FundLimit)
	if err != nil {
		return http.StatusBadRequest, ErrorBody("plan failed", err, nil, run)
	}
	return http.StatusOK, PlanResponse{Plan: p, Total: p.Total(), Run: run}
}

func sweep(ctx context.Context, svc app.SimulationService, body []byte) (int, any) {
	var in SweepRequest
	if err := decode(body, &in); err != nil {
		return invalidJSON(err)
	}
	report, run, err := svc.Sweep(ctx, in.Source(), in.Options())
	if err != nil {
		return http.StatusBadRequest, ErrorBody("sweep failed", err, nil, run)
	}
	return http.StatusOK, SweepResponse{Report: report, Run: run}
}

func shock(ctx context.Context, svc app.SimulationService, body []byte) (int, any) {
	var in ShockRequest
	if err := decode(body, &in); err != nil {
		return invalidJSON(err)
	}
	equity, run, err := svc.Shock(ctx, in.Source(), in.Trigger)
	if err != nil {
		return http.StatusBadRequest, ErrorBody("shock failed", err, nil, run)
	}
	return http.StatusOK, ShockResponse{Equity: equity, Run: run}
}
