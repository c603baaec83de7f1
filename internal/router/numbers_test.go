package router

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"3", 3, true},
		{" 42 ", 42, true},
		{"three", 3, true},
		{"Twelve", 12, true},
		{"twenty-five", 25, true},
		{"twenty five", 25, true},
		{"ninety", 90, true},
		{"one hundred and two", 102, true},
		{"a hundred", 100, true},
		{"two thousand three hundred", 2300, true},
		{"zero", 0, true},
		{"-2", -2, true},
		{"three four", 0, false},
		{"twenty thirty", 0, false},
		{"a million million", 0, false},
		{"thousand thousand", 0, false},
		{"two thousand three million", 0, false},
		{"two million three thousand and five", 2_003_005, true},
		{"twenty twelve", 0, false},
		{"and", 0, false},
		{"five and", 0, false},
		{"many", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseNumber(tt.in)
			require.Equal(t, tt.ok, ok)
			if ok {
				require.Equal(t, tt.want, got)
			}
		})
	}
}
