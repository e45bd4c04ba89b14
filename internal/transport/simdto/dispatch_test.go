package simdto

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awmpietro/interbank-contagion/internal/app"
	"github.com/awmpietro/interbank-contagion/internal/contagion"
)

type svcStub struct {
	app.SimulationService

	lastSource app.NetworkSource
	lastOpts   app.BailoutOptions
	err        error
}

var stubRun = &app.RunInfo{RunID: "run-1", Banks: 3, Exposures: 2}

func (s *svcStub) Bailout(ctx context.Context, src app.NetworkSource, trigger int, fundLimit float64, opts app.BailoutOptions) (*contagion.CascadeResult, *contagion.CascadeTrace, *app.RunInfo, error) {
	s.lastSource = src
	s.lastOpts = opts
	var trace *contagion.CascadeTrace
	if opts.Trace {
		trace = &contagion.CascadeTrace{Trigger: trigger, FundLimit: fundLimit, Rounds: []contagion.RoundTrace{}}
	}
	if s.err != nil {
		return nil, trace, stubRun, s.err
	}
	return &contagion.CascadeResult{Trigger: trigger, Affected: []int{2}, FundLimit: fundLimit}, trace, stubRun, nil
}

func (s *svcStub) Plan(ctx context.Context, src app.NetworkSource, trigger int, fundLimit float64) (*contagion.BailoutPlan, *app.RunInfo, error) {
	s.lastSource = src
	return &contagion.BailoutPlan{
		Trigger:   trigger,
		FundLimit: fundLimit,
		Steps:     []contagion.Disbursement{{Bank: 2, Amount: 3}, {Bank: 3, Amount: 4}},
	}, stubRun, nil
}

func (s *svcStub) Sweep(ctx context.Context, src app.NetworkSource, opts contagion.SweepOptions) (*contagion.SweepReport, *app.RunInfo, error) {
	s.lastSource = src
	return &contagion.SweepReport{FundLimit: opts.FundLimit, Plain: opts.Plain, Select: opts.Select}, stubRun, nil
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"bailout", "cascade", "minimum-fund", "plan", "shock", "sweep"}, Names())
	_, ok := Lookup("simulate")
	assert.False(t, ok)
}

func TestBailout_DecodesNetworkSpecAndDebug(t *testing.T) {
	svc := &svcStub{}
	op, ok := Lookup("bailout")
	require.True(t, ok)

	body := `{"network":{"banks":[{"id":1,"equity":10}],"exposures":[]},"trigger":1,"fund_limit":5,"debug":true}`
	status, out := op(context.Background(), svc, []byte(body))

	require.Equal(t, http.StatusOK, status)
	resp, ok := out.(CascadeResponse)
	require.True(t, ok)
	assert.NotNil(t, resp.Trace)
	assert.Equal(t, "run-1", resp.Run.RunID)
	assert.True(t, svc.lastOpts.Trace)
	require.NotNil(t, svc.lastSource.Spec)
	assert.Empty(t, svc.lastSource.DOT)
	assert.Equal(t, 10.0, svc.lastSource.Spec.Banks[0].Equity)
}

func TestBailout_ErrorBodyKeepsTraceAndRun(t *testing.T) {
	svc := &svcStub{err: errors.New("unknown bank")}
	op, _ := Lookup("bailout")

	status, out := op(context.Background(), svc, []byte(`{"network_dot":"digraph{}","trigger":9,"debug":true}`))
	require.Equal(t, http.StatusBadRequest, status)

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "bailout failed", body["error"])
	assert.Equal(t, "unknown bank", body["details"])
	assert.NotNil(t, body["trace"])
	assert.NotNil(t, body["run"])
	assert.Equal(t, "digraph{}", svc.lastSource.DOT)
}

func TestOperations_InvalidJSON(t *testing.T) {
	for _, name := range Names() {
		op, _ := Lookup(name)
		status, out := op(context.Background(), &svcStub{}, []byte("{"))
		assert.Equal(t, http.StatusBadRequest, status, name)
		assert.Equal(t, "invalid json", out.(map[string]any)["error"], name)

		status, _ = op(context.Background(), &svcStub{}, nil)
		assert.Equal(t, http.StatusBadRequest, status, name)
	}
}

func TestPlan_ReportsTotal(t *testing.T) {
	op, _ := Lookup("plan")
	status, out := op(context.Background(), &svcStub{}, []byte(`{"network_dot":"digraph{}","trigger":1,"fund_limit":10}`))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 7.0, out.(PlanResponse).Total)
}

func TestSweep_PassesOptions(t *testing.T) {
	op, _ := Lookup("sweep")
	status, out := op(context.Background(), &svcStub{}, []byte(`{"network_dot":"digraph{}","fund_limit":3,"plain":true,"select":"equity > 10"}`))
	require.Equal(t, http.StatusOK, status)
	report := out.(SweepResponse).Report
	assert.Equal(t, 3.0, report.FundLimit)
	assert.True(t, report.Plain)
	assert.Equal(t, "equity > 10", report.Select)
}
