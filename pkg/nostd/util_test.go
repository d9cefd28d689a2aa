package nostd

import "testing"

func TestRound(t *testing.T) {
	tests := []struct {
		value    float64
		decimals int
		want     float64
	}{
		{94.90500001, 6, 94.905},
		{2.004999, 2, 2.0},
		{2.005001, 2, 2.01},
		{-5.004, 2, -5.0},
		{100, 0, 100},
	}
	for _, tt := range tests {
		if got := Round(tt.value, tt.decimals); got != tt.want {
			t.Errorf("Round(%v, %d) = %v, want %v", tt.value, tt.decimals, got, tt.want)
		}
	}
}
