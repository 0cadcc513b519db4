package montyhall_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/xtding233/montyhall/internal/montyhall"
)

func TestEstimateThreeDoorsConverges(t *testing.T) {
	const n = 200000
	cmp, err := montyhall.Compare(3, n, montyhall.NewSeededRNG(42))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Switch.WinRate() - 2.0/3.0; math.Abs(diff) > 0.01 {
		t.Fatalf("switch rate=%f not close to 2/3", cmp.Switch.WinRate())
	}
	if diff := cmp.Stay.WinRate() - 1.0/3.0; math.Abs(diff) > 0.01 {
		t.Fatalf("stay rate=%f not close to 1/3", cmp.Stay.WinRate())
	}
}

func TestEstimateManyDoorsConverges(t *testing.T) {
	const n = 50000
	rng := montyhall.NewSeededRNG(2024)
	for _, doors := range []int{4, 10, 100, 1000} {
		sw, err := montyhall.Estimate(doors, n, montyhall.StrategySwitch, rng)
		if err != nil {
			t.Fatal(err)
		}
		st, err := montyhall.Estimate(doors, n, montyhall.StrategyStay, rng)
		if err != nil {
			t.Fatal(err)
		}
		want := float64(doors-1) / float64(doors)
		if math.Abs(sw.WinRate()-want) > 0.01 {
			t.Fatalf("doors=%d: switch rate=%f, want ~%f", doors, sw.WinRate(), want)
		}
		if math.Abs(st.WinRate()-1/float64(doors)) > 0.01 {
			t.Fatalf("doors=%d: stay rate=%f, want ~%f", doors, st.WinRate(), 1/float64(doors))
		}
		// a host opening doors at random would pull switching down to 1/D
		if doors >= 10 && sw.WinRate() < 0.5 {
			t.Fatalf("doors=%d: switch rate=%f looks like a naive host", doors, sw.WinRate())
		}
		if sw.Expected() != want {
			t.Fatalf("doors=%d: expected=%f, want %f", doors, sw.Expected(), want)
		}
	}
}

func TestEstimateConcreteScenario(t *testing.T) {
	cmp, err := montyhall.Compare(3, 10000, montyhall.NewSeededRNG(1))
	if err != nil {
		t.Fatal(err)
	}
	if r := cmp.Switch.WinRate(); r < 0.64 || r > 0.70 {
		t.Fatalf("switch rate=%f outside [0.64,0.70]", r)
	}
	if r := cmp.Stay.WinRate(); r < 0.30 || r > 0.36 {
		t.Fatalf("stay rate=%f outside [0.30,0.36]", r)
	}
}

func TestEstimateTotalTrialsExact(t *testing.T) {
	rng := montyhall.NewSeededRNG(3)
	for _, n := range []int{1, 2, 7, 1000, 12345} {
		for _, s := range []montyhall.Strategy{montyhall.StrategySwitch, montyhall.StrategyStay} {
			res, err := montyhall.Estimate(5, n, s, rng)
			if err != nil {
				t.Fatal(err)
			}
			if res.TotalTrials != n {
				t.Fatalf("total=%d, want %d", res.TotalTrials, n)
			}
			if res.Wins < 0 || res.Wins > n {
				t.Fatalf("wins=%d out of range for %d trials", res.Wins, n)
			}
		}
	}
}

func TestEstimateSingleTrial(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		cmp, err := montyhall.Compare(3, 1, montyhall.NewSeededRNG(seed))
		if err != nil {
			t.Fatal(err)
		}
		for _, r := range []float64{cmp.Switch.WinRate(), cmp.Stay.WinRate()} {
			if r != 0 && r != 1 {
				t.Fatalf("single trial rate=%f, want 0 or 1", r)
			}
		}
	}
}

func TestEstimateNilRNG(t *testing.T) {
	res, err := montyhall.Estimate(3, 100, montyhall.StrategyStay, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalTrials != 100 {
		t.Fatalf("total=%d, want 100", res.TotalTrials)
	}
}

func TestEstimateInvalidConfiguration(t *testing.T) {
	cases := []struct{ doors, trials int }{
		{2, 10},
		{0, 10},
		{-3, 10},
		{3, 0},
		{3, -1},
	}
	for _, c := range cases {
		_, err := montyhall.Estimate(c.doors, c.trials, montyhall.StrategySwitch, montyhall.NewSeededRNG(1))
		if !errors.Is(err, montyhall.ErrInvalidConfiguration) {
			t.Fatalf("doors=%d trials=%d: err=%v, want ErrInvalidConfiguration", c.doors, c.trials, err)
		}
		if _, err := montyhall.Compare(c.doors, c.trials, nil); !errors.Is(err, montyhall.ErrInvalidConfiguration) {
			t.Fatalf("compare doors=%d trials=%d: err=%v", c.doors, c.trials, err)
		}
	}
}

func TestStrategyResultConfidence(t *testing.T) {
	var empty montyhall.StrategyResult
	if empty.WinRate() != 0 || empty.StdErr() != 0 {
		t.Fatalf("empty result must not divide by zero")
	}

	lost := montyhall.StrategyResult{Wins: 0, TotalTrials: 1}
	lo, hi := lost.Wilson(montyhall.Z95)
	if lo < 0 || lo > 1e-12 || hi <= 0 || hi > 1 {
		t.Fatalf("wilson for 0/1 = [%f,%f]", lo, hi)
	}

	res := montyhall.StrategyResult{Strategy: montyhall.StrategySwitch, NumDoors: 3, Wins: 6670, TotalTrials: 10000}
	lo, hi = res.Wilson(montyhall.Z95)
	if !(lo < res.WinRate() && res.WinRate() < hi) {
		t.Fatalf("interval [%f,%f] must contain %f", lo, hi, res.WinRate())
	}
	if !(lo < res.Expected() && res.Expected() < hi) {
		t.Fatalf("interval [%f,%f] should cover 2/3", lo, hi)
	}
	if se := res.StdErr(); se < 0.004 || se > 0.005 {
		t.Fatalf("stderr=%f, want ~0.0047", se)
	}
}

func TestExpectedWinRate(t *testing.T) {
	if got := montyhall.ExpectedWinRate(3, montyhall.StrategyStay); math.Abs(got-1.0/3.0) > 1e-12 {
		t.Fatalf("stay expected=%f", got)
	}
	if got := montyhall.ExpectedWinRate(1000, montyhall.StrategySwitch); math.Abs(got-0.999) > 1e-12 {
		t.Fatalf("switch expected=%f", got)
	}
	if got := montyhall.ExpectedWinRate(0, montyhall.StrategySwitch); got != 0 {
		t.Fatalf("zero doors expected=%f", got)
	}
}

func TestIndependentEstimatesAgree(t *testing.T) {
	const n = 200000
	a, err := montyhall.Estimate(10, n, montyhall.StrategySwitch, montyhall.NewSeededRNG(100))
	if err != nil {
		t.Fatal(err)
	}
	b, err := montyhall.Estimate(10, n, montyhall.StrategySwitch, montyhall.NewSeededRNG(200))
	if err != nil {
		t.Fatal(err)
	}
	if diff := math.Abs(a.WinRate() - b.WinRate()); diff > 0.005 {
		t.Fatalf("independent estimates differ by %f", diff)
	}
}

func TestStrategyResultJSONCarriesRates(t *testing.T) {
	res := montyhall.StrategyResult{Strategy: montyhall.StrategySwitch, NumDoors: 3, Wins: 657, TotalTrials: 1000}
	b, err := json.Marshal(montyhall.Comparison{NumDoors: 3, Seed: 1 << 63, Switch: res})
	if err != nil {
		t.Fatal(err)
	}
	var got struct {
		Seed   string `json:"seed"`
		Switch struct {
			Strategy    string  `json:"strategy"`
			Wins        int     `json:"wins"`
			TotalTrials int     `json:"total_trials"`
			WinRate     float64 `json:"win_rate"`
			CILow       float64 `json:"ci_low"`
			CIHigh      float64 `json:"ci_high"`
			Expected    float64 `json:"expected"`
		} `json:"switch"`
	}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if got.Seed != "9223372036854775808" {
		t.Fatalf("seed=%q, want the exact decimal string", got.Seed)
	}
	sw := got.Switch
	if sw.Strategy != "switch" || sw.Wins != 657 || sw.TotalTrials != 1000 {
		t.Fatalf("counts lost: %s", b)
	}
	if sw.WinRate != 0.657 {
		t.Fatalf("win_rate=%f, want 0.657", sw.WinRate)
	}
	if !(sw.CILow < 0.657 && 0.657 < sw.CIHigh) || math.Abs(sw.Expected-2.0/3.0) > 1e-12 {
		t.Fatalf("derived figures wrong: %s", b)
	}

	// derived fields are ignored on the way back in
	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatal(err)
	}
	var back montyhall.StrategyResult
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if back != res {
		t.Fatalf("decoded %+v, want %+v", back, res)
	}
}
