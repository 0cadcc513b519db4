package montyhall

import (
	"math"
	"testing"
)

func TestCalcStats(t *testing.T) {
	if s := calcStats(nil); s.Mean != 0 || s.Samples != nil {
		t.Fatalf("empty stats = %+v", s)
	}

	s := calcStats([]float64{0.2, 0.4, 0.6, 0.8})
	if math.Abs(s.Mean-0.5) > 1e-12 {
		t.Fatalf("mean=%f", s.Mean)
	}
	if math.Abs(s.Var-0.05) > 1e-12 {
		t.Fatalf("var=%f", s.Var)
	}
	if math.Abs(s.P50-0.5) > 1e-12 {
		t.Fatalf("p50=%f", s.P50)
	}
	if s.Min != 0.2 || s.Max != 0.8 {
		t.Fatalf("min/max = %f/%f", s.Min, s.Max)
	}

	one := calcStats([]float64{0.7})
	if one.P99 != 0.7 || one.StdDev != 0 {
		t.Fatalf("single sample stats = %+v", one)
	}
}

func TestDeriveSeedDistinct(t *testing.T) {
	seen := map[uint64]bool{}
	for k := uint64(0); k < 1000; k++ {
		v := deriveSeed(42, k)
		if seen[v] {
			t.Fatalf("collision at k=%d", k)
		}
		seen[v] = true
	}
}
