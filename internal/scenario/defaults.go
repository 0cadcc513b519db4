package scenario

const (
	DefaultTrials  = 10000
	DefaultVersion = "builtin"
)

// Builtin is the catalogue used when no scenario files exist: the classic
// game plus the 10 and 1000 door variants.
func Builtin() RawConfig {
	trials := DefaultTrials
	workers := 0
	return RawConfig{
		Version:  DefaultVersion,
		Defaults: DefaultsConfig{Trials: &trials, Workers: &workers},
		Scenarios: []ScenarioConfig{
			{Name: "classic", Doors: intPtr(3)},
			{Name: "ten", Doors: intPtr(10)},
			{Name: "thousand", Doors: intPtr(1000)},
		},
	}
}

func intPtr(v int) *int { return &v }
