package montyhall

import (
	"encoding/json"
	"fmt"
	"math"
)

// Z95 is the two-sided normal quantile for a 95% interval.
const Z95 = 1.959963984540054

// StrategyResult aggregates one batch of trials for one strategy.
type StrategyResult struct {
	Strategy    Strategy `json:"strategy"`
	NumDoors    int      `json:"num_doors"`
	Wins        int      `json:"wins"`
	TotalTrials int      `json:"total_trials"`
}

// WinRate is Wins/TotalTrials, or 0 for an empty result.
func (r StrategyResult) WinRate() float64 {
	if r.TotalTrials <= 0 {
		return 0
	}
	return float64(r.Wins) / float64(r.TotalTrials)
}

// StdErr is the binomial standard error of WinRate.
func (r StrategyResult) StdErr() float64 {
	if r.TotalTrials <= 0 {
		return 0
	}
	p := r.WinRate()
	return math.Sqrt(p * (1 - p) / float64(r.TotalTrials))
}

// Wilson returns the Wilson score interval for quantile z.
// Unlike the normal approximation it stays inside [0,1] and is non-degenerate
// when Wins is 0 or TotalTrials.
func (r StrategyResult) Wilson(z float64) (low, high float64) {
	if r.TotalTrials <= 0 {
		return 0, 1
	}
	n := float64(r.TotalTrials)
	p := r.WinRate()
	den := 1 + z*z/n
	center := p + z*z/(2*n)
	half := z * math.Sqrt(p*(1-p)/n+z*z/(4*n*n))
	low = (center - half) / den
	high = (center + half) / den
	return math.Max(0, low), math.Min(1, high)
}

// Expected is the exact win probability for the result's door count:
// 1/D when staying, (D-1)/D when switching.
func (r StrategyResult) Expected() float64 {
	return ExpectedWinRate(r.NumDoors, r.Strategy)
}

// ExpectedWinRate returns the closed-form win probability.
func ExpectedWinRate(numDoors int, s Strategy) float64 {
	if numDoors <= 0 {
		return 0
	}
	d := float64(numDoors)
	if s.Switches() {
		return (d - 1) / d
	}
	return 1 / d
}

// MarshalJSON adds the derived win rate, its 95% Wilson interval and the
// theoretical rate to the stored counts.
func (r StrategyResult) MarshalJSON() ([]byte, error) {
	type plain StrategyResult
	lo, hi := r.Wilson(Z95)
	return json.Marshal(struct {
		plain
		WinRate  float64 `json:"win_rate"`
		CILow    float64 `json:"ci_low"`
		CIHigh   float64 `json:"ci_high"`
		Expected float64 `json:"expected"`
	}{plain(r), r.WinRate(), lo, hi, r.Expected()})
}

func (r StrategyResult) String() string {
	return fmt.Sprintf("%s doors=%d wins=%d/%d rate=%.4f", r.Strategy, r.NumDoors, r.Wins, r.TotalTrials, r.WinRate())
}

// Comparison pairs the two strategies run on the same door and trial counts.
// Seed is set by Runner and is zero for the rng-driven Compare.
type Comparison struct {
	Scenario string         `json:"scenario,omitempty"`
	NumDoors int            `json:"num_doors"`
	Seed     uint64         `json:"seed,omitempty,string"`
	Switch   StrategyResult `json:"switch"`
	Stay     StrategyResult `json:"stay"`
}

// Estimate runs numTrials independent trials of strategy s.
// If rng is nil a freshly seeded source is used.
func Estimate(numDoors, numTrials int, s Strategy, rng RandomSource) (StrategyResult, error) {
	if err := Validate(numDoors, numTrials); err != nil {
		return StrategyResult{}, err
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	return StrategyResult{
		Strategy:    s,
		NumDoors:    numDoors,
		Wins:        countWins(numDoors, numTrials, s.Switches(), rng),
		TotalTrials: numTrials,
	}, nil
}

// Compare estimates switch then stay. The two batches consume consecutive,
// non-overlapping stretches of rng and are statistically independent.
func Compare(numDoors, numTrials int, rng RandomSource) (Comparison, error) {
	if rng == nil {
		rng = DefaultRNG()
	}
	sw, err := Estimate(numDoors, numTrials, StrategySwitch, rng)
	if err != nil {
		return Comparison{}, err
	}
	st, err := Estimate(numDoors, numTrials, StrategyStay, rng)
	if err != nil {
		return Comparison{}, err
	}
	return Comparison{NumDoors: numDoors, Switch: sw, Stay: st}, nil
}

func countWins(numDoors, numTrials int, switchDoors bool, rng RandomSource) int {
	wins := 0
	for i := 0; i < numTrials; i++ {
		if RunTrial(numDoors, switchDoors, rng) {
			wins++
		}
	}
	return wins
}
