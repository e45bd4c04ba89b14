package contagion

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// threeBanks: 1 -> 2 (50), 2 -> 3 (30); equities 100, 40, 20.
func threeBanks(t testing.TB) *Network {
	t.Helper()
	n, err := NewNetwork(
		[]Bank{{ID: 1, Name: "A", Equity: 100}, {ID: 2, Name: "B", Equity: 40}, {ID: 3, Name: "C", Equity: 20}},
		[]Exposure{{From: 1, To: 2, Amount: 50}, {From: 2, To: 3, Amount: 30}},
	)
	require.NoError(t, err)
	return n
}

// priorityNetwork: bank 1 hits 2 (to -10) and 3 (to -5); only 3 has an
// onward exposure that would sink bank 4.
func priorityNetwork(t testing.TB) *Network {
	t.Helper()
	n, err := NewNetwork(
		[]Bank{{ID: 1, Equity: 100}, {ID: 2, Equity: 20}, {ID: 3, Equity: 25}, {ID: 4, Equity: 5}},
		[]Exposure{{From: 1, To: 2, Amount: 30}, {From: 1, To: 3, Amount: 30}, {From: 3, To: 4, Amount: 10}},
	)
	require.NoError(t, err)
	return n
}

// diamond: 1 hits 2 and 3, both of which hit 4.
func diamond(t testing.TB) *Network {
	t.Helper()
	n, err := NewNetwork(
		[]Bank{{ID: 1, Equity: 100}, {ID: 2, Equity: 5}, {ID: 3, Equity: 5}, {ID: 4, Equity: 10}},
		[]Exposure{
			{From: 1, To: 2, Amount: 10},
			{From: 1, To: 3, Amount: 10},
			{From: 2, To: 4, Amount: 5},
			{From: 3, To: 4, Amount: 7},
		},
	)
	require.NoError(t, err)
	return n
}
