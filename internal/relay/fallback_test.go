package relay

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFallback(t *testing.T) {
	budget := fallbackRules[0].reply
	saving := fallbackRules[1].reply
	expense := fallbackRules[2].reply

	cases := []struct {
		msg  string
		want string
	}{
		{"Help me plan a budget", budget},
		{"My SPENDING is out of control", budget},
		{"How can I save more?", saving},
		{"saving for a car", saving},
		{"Show my expenses", expense},
		{"Explain this transaction", expense},
		{"What is the weather?", defaultFallback},
		{"", defaultFallback},
		// Earlier rules take precedence.
		{"budget vs saving", budget},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Fallback(tc.msg), "msg=%q", tc.msg)
	}
}

func TestFallback_BudgetTip(t *testing.T) {
	require.Contains(t, Fallback("budget"), "50/30/20 rule")
}
