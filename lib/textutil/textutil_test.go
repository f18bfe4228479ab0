package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		text     string
		expected int64
	}{
		{text: "23.133.150 baht", expected: 23133150},
		{text: "1,250,000", expected: 1250000},
		{text: "5.264.850 baht (+ 1.314.550 baht)", expected: 5264850},
		{text: "  300000  ", expected: 300000},
		{text: "-", expected: 0},
		{text: "N/A", expected: 0},
		{text: "", expected: 0},
	}
	for _, test := range cases {
		require.Equal(t, test.expected, ParseMoney(test.text), "text: %q", test.text)
	}
}

func TestIsDigits(t *testing.T) {
	require.True(t, IsDigits("17"))
	require.True(t, IsDigits(" 17 "))
	require.False(t, IsDigits("100%"))
	require.False(t, IsDigits("Completely Fit"))
	require.False(t, IsDigits(""))
}

func TestMatchName(t *testing.T) {
	require.True(t, MatchName("Estimated Transfer Value", []string{"transfervalue"}))
	require.False(t, MatchName("Asking Price for Bid", []string{"transfervalue"}))
}
