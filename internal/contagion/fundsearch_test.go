package contagion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindMinimumFund_ThreeBanks(t *testing.T) {
	s := NewFundSearcher(NewAllocator())

	res, err := s.FindMinimumFund(context.Background(), threeBanks(t), 1, 100)
	require.NoError(t, err)

	require.True(t, res.Found)
	assert.Equal(t, 10.0, res.Fund)
	assert.Equal(t, 10, res.Candidates)
}

func TestFindMinimumFund_ResultHoldsForEveryTriggerAndStepBelowFails(t *testing.T) {
	n := priorityNetwork(t)
	a := NewAllocator()
	s := NewFundSearcher(a, WithWorkers(4))

	res, err := s.FindMinimumFund(context.Background(), n, 1, 1000)
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, 15.0, res.Fund)

	for _, id := range n.BankIDs() {
		out, err := a.Allocate(n, id, res.Fund)
		require.NoError(t, err)
		assert.Empty(t, out.Affected, "trigger %d", id)
	}

	ok, err := s.PreventsAll(context.Background(), n, res.Fund-res.Step)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindMinimumFund_GranularityIsCallerChosen(t *testing.T) {
	s := NewFundSearcher(nil)

	res, err := s.FindMinimumFund(context.Background(), priorityNetwork(t), 4, 1000)
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, 16.0, res.Fund)
}

func TestFindMinimumFund_NotFoundWithinMax(t *testing.T) {
	s := NewFundSearcher(NewAllocator())

	res, err := s.FindMinimumFund(context.Background(), threeBanks(t), 1, 5)
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Equal(t, 5, res.Candidates)
}

func TestFindMinimumFund_RejectsDegenerateConfig(t *testing.T) {
	s := NewFundSearcher(NewAllocator())
	n := threeBanks(t)

	_, err := s.FindMinimumFund(context.Background(), n, 0, 10)
	assert.ErrorIs(t, err, ErrInvalidStep)

	_, err = s.FindMinimumFund(context.Background(), n, -1, 10)
	assert.ErrorIs(t, err, ErrInvalidStep)

	_, err = s.FindMinimumFund(context.Background(), n, 1, -10)
	assert.ErrorIs(t, err, ErrInvalidFund)
}

func TestFindMinimumFund_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFundSearcher(NewAllocator()).FindMinimumFund(ctx, threeBanks(t), 1, 100)
	assert.ErrorIs(t, err, context.Canceled)
}
