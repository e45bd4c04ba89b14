package contagion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCascade_ThreeBankChain(t *testing.T) {
	res, err := NewAllocator().Cascade(threeBanks(t), 1)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3}, res.Affected)
	assert.Equal(t, -10.0, res.Equity[2])
	assert.Equal(t, -10.0, res.Equity[3])
	// the plain cascade leaves the trigger's equity alone
	assert.Equal(t, 100.0, res.Equity[1])
}

func TestCascade_TriggerWithoutExposuresAffectsNobody(t *testing.T) {
	res, err := NewAllocator().Cascade(threeBanks(t), 3)
	require.NoError(t, err)

	assert.Empty(t, res.Affected)
	assert.Equal(t, 20.0, res.Equity[3])
}

func TestCascade_AppliesEveryIncomingExposure(t *testing.T) {
	res, err := NewAllocator().Cascade(diamond(t), 1)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3, 4}, res.Affected)
	assert.Equal(t, -2.0, res.Equity[4])
}

func TestCascade_TriggerCanFailThroughFeedback(t *testing.T) {
	n, err := NewNetwork(
		[]Bank{{ID: 1, Equity: 100}, {ID: 2, Equity: 40}},
		[]Exposure{{From: 1, To: 2, Amount: 50}, {From: 2, To: 1, Amount: 200}},
	)
	require.NoError(t, err)

	res, err := NewAllocator().Cascade(n, 1)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 1}, res.Affected)
	assert.Equal(t, -100.0, res.Equity[1])
	// already failed banks keep absorbing losses but are not re-queued
	assert.Equal(t, -60.0, res.Equity[2])
}

func TestCascade_IsRepeatableAndLeavesInputUntouched(t *testing.T) {
	n := diamond(t)
	a := NewAllocator()

	first, err := a.Cascade(n, 1)
	require.NoError(t, err)
	second, err := a.Cascade(n, 1)
	require.NoError(t, err)

	assert.Equal(t, first.Affected, second.Affected)
	assert.Equal(t, first.Equity, second.Equity)
	assert.Equal(t, 10.0, n.Equity(4))
}

func TestCascade_UnknownTrigger(t *testing.T) {
	_, err := NewAllocator().Cascade(threeBanks(t), 99)
	assert.ErrorIs(t, err, ErrUnknownBank)
}

func TestFirstOrderShock_OnlyDirectCounterparties(t *testing.T) {
	eq, err := FirstOrderShock(threeBanks(t), 1)
	require.NoError(t, err)

	assert.Equal(t, map[int]float64{1: 0, 2: -10, 3: 20}, eq)
}
