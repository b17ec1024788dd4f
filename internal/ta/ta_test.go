package ta

import (
	"math"
	"testing"
)

func TestPivotLevelsOrdering(t *testing.T) {
	high, low, close := 7550.0, 7400.0, 7525.0

	s1, s2, s3, r1, r2, r3 := PivotLevels(high, low, close)

	if !(s1 > s2 && s2 > s3) {
		t.Errorf("Expected S1 > S2 > S3, got %f / %f / %f", s1, s2, s3)
	}
	if !(r1 < r2 && r2 < r3) {
		t.Errorf("Expected R1 < R2 < R3, got %f / %f / %f", r1, r2, r3)
	}
	if s1 >= r1 {
		t.Errorf("Expected S1 below R1, got S1=%f R1=%f", s1, r1)
	}

	pivot := (high + low + close) / 3
	if got := 2*pivot - high; math.Abs(s1-got) > 1e-9 {
		t.Errorf("Expected S1 %f, got %f", got, s1)
	}
	if got := high + 2*(pivot-low); math.Abs(r3-got) > 1e-9 {
		t.Errorf("Expected R3 %f, got %f", got, r3)
	}
}

func TestPivotLevelsDegenerateBar(t *testing.T) {
	s1, _, _, r1, _, _ := PivotLevels(7500, 7500, 7500)
	if !math.IsNaN(s1) || !math.IsNaN(r1) {
		t.Errorf("Expected NaN levels for zero-range bar, got S1=%f R1=%f", s1, r1)
	}

	s1, _, _, _, _, _ = PivotLevels(math.NaN(), 7400, 7500)
	if !math.IsNaN(s1) {
		t.Errorf("Expected NaN levels for NaN input, got S1=%f", s1)
	}
}
