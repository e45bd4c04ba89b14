package contagion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spyRoundObserver struct {
	rounds []RoundStats
}

func (s *spyRoundObserver) ObserveRound(stats RoundStats) {
	s.rounds = append(s.rounds, stats)
}

func TestAllocate_NoFundMatchesChainCascade(t *testing.T) {
	res, err := NewAllocator().Allocate(threeBanks(t), 1, 0)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3}, res.Affected)
	assert.Equal(t, res.Affected, res.Critical)
	assert.Equal(t, 0.0, res.Equity[1])
	assert.Equal(t, 0.0, res.RemainingFund)
}

func TestAllocate_FundStopsCascade(t *testing.T) {
	res, err := NewAllocator().Allocate(threeBanks(t), 1, 15)
	require.NoError(t, err)

	assert.Empty(t, res.Affected)
	assert.Equal(t, 0.0, res.Equity[2])
	assert.Equal(t, 20.0, res.Equity[3])
	assert.Equal(t, 5.0, res.RemainingFund)
	assert.Equal(t, 10.0, res.FundUsed())
}

func TestAllocate_PartialBailoutStillFails(t *testing.T) {
	res, err := NewAllocator().Allocate(threeBanks(t), 1, 4)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3}, res.Affected)
	assert.Equal(t, -6.0, res.Equity[2])
	assert.Equal(t, 0.0, res.RemainingFund)
}

func TestAllocate_FundsSystemicBankFirst(t *testing.T) {
	res, err := NewAllocator().Allocate(priorityNetwork(t), 1, 6)
	require.NoError(t, err)

	// bank 3 would sink bank 4, so it is rescued before the more distressed bank 2
	assert.Equal(t, []int{2}, res.Affected)
	assert.Equal(t, 0.0, res.Equity[3])
	assert.Equal(t, -9.0, res.Equity[2])
	assert.Equal(t, 5.0, res.Equity[4])
	assert.Equal(t, 0.0, res.RemainingFund)
}

func TestAllocate_TieOnImpactFundsMostDistressedFirst(t *testing.T) {
	n, err := NewNetwork(
		[]Bank{{ID: 1, Equity: 100}, {ID: 2, Equity: 25}, {ID: 3, Equity: 20}},
		[]Exposure{{From: 1, To: 2, Amount: 30}, {From: 1, To: 3, Amount: 30}},
	)
	require.NoError(t, err)

	res, err := NewAllocator().Allocate(n, 1, 10)
	require.NoError(t, err)

	assert.Equal(t, []int{2}, res.Affected)
	assert.Equal(t, 0.0, res.Equity[3])
	assert.Equal(t, -5.0, res.Equity[2])
}

func TestAllocate_SameRoundHitsKeepLastExposure(t *testing.T) {
	res, err := NewAllocator().Allocate(diamond(t), 1, 0)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3}, res.Affected)
	assert.Equal(t, 3.0, res.Equity[4])
}

func TestAllocate_MoreFundNeverWidensCascade(t *testing.T) {
	networks := map[string]*Network{
		"chain":    threeBanks(t),
		"priority": priorityNetwork(t),
	}
	funds := []float64{0, 1, 5, 6, 10, 15, 20}

	for name, n := range networks {
		t.Run(name, func(t *testing.T) {
			prev := -1
			for _, fund := range funds {
				res, err := NewAllocator().Allocate(n, 1, fund)
				require.NoError(t, err)
				if prev >= 0 {
					assert.LessOrEqual(t, len(res.Affected), prev, "fund %v", fund)
				}
				prev = len(res.Affected)
			}
		})
	}
}

func TestAllocate_LeavesInputUntouched(t *testing.T) {
	n := threeBanks(t)
	_, err := NewAllocator().Allocate(n, 1, 3)
	require.NoError(t, err)

	assert.Equal(t, 100.0, n.Equity(1))
	assert.Equal(t, 40.0, n.Equity(2))
}

func TestAllocate_RejectsBadInput(t *testing.T) {
	a := NewAllocator()

	_, err := a.Allocate(threeBanks(t), 1, -1)
	assert.ErrorIs(t, err, ErrInvalidFund)

	_, err = a.Allocate(threeBanks(t), 7, 1)
	assert.ErrorIs(t, err, ErrUnknownBank)

	_, err = a.Allocate(nil, 1, 1)
	assert.Error(t, err)
}

func TestAllocateWithTrace_RecordsPriorityOrder(t *testing.T) {
	res, trace, err := NewAllocator().AllocateWithTrace(priorityNetwork(t), 1, 6)
	require.NoError(t, err)
	require.NotNil(t, trace)

	require.Len(t, trace.Rounds, res.Rounds)
	first := trace.Rounds[0]
	assert.Equal(t, []int{1}, first.Processing)
	require.Len(t, first.Candidates, 2)

	assert.Equal(t, 3, first.Candidates[0].Bank)
	assert.Equal(t, 1, first.Candidates[0].Impact)
	assert.Equal(t, 5.0, first.Candidates[0].BailoutDrawn)
	assert.False(t, first.Candidates[0].Failed)

	assert.Equal(t, 2, first.Candidates[1].Bank)
	assert.Equal(t, -10.0, first.Candidates[1].HypotheticalEquity)
	assert.Equal(t, -9.0, first.Candidates[1].CommittedEquity)
	assert.True(t, first.Candidates[1].Failed)
}

func TestAllocate_ObservesEveryRound(t *testing.T) {
	spy := &spyRoundObserver{}
	res, err := NewAllocator(WithRoundObserver(spy)).Allocate(threeBanks(t), 1, 0)
	require.NoError(t, err)

	require.Len(t, spy.rounds, 3)
	assert.Equal(t, 3, res.Rounds)
	assert.Equal(t, 1, spy.rounds[0].NewFailures)
	assert.Equal(t, 1, spy.rounds[1].NewFailures)
	assert.Equal(t, 0, spy.rounds[2].Candidates)
	for _, r := range spy.rounds {
		assert.Equal(t, 1, r.Trigger)
		assert.GreaterOrEqual(t, int64(r.Duration), int64(0))
	}
}
