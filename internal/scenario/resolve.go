// resolve.go
package scenario

// Overrides carries per-invocation settings, e.g. from CLI flags or query params.
type Overrides struct {
	Trials  *int
	Workers *int
	Seed    *uint64
}

type Resolver interface {
	// Returns merged RawConfig and the normalized Catalog
	Resolve(profile string, o Overrides) (RawConfig, Catalog, error)
}

// Resolve merges builtin → default → profile → overrides, validates the
// result and normalizes it into a Catalog.
// A trials override replaces every scenario's trial count.
func (l *Loader) Resolve(profile string, o Overrides) (RawConfig, Catalog, error) {
	raw, err := l.LoadMerged(profile)
	if err != nil {
		return RawConfig{}, Catalog{}, err
	}
	if o.Trials != nil {
		raw.Defaults.Trials = o.Trials
		scs := make([]ScenarioConfig, len(raw.Scenarios))
		for i, sc := range raw.Scenarios {
			sc.Trials = nil
			scs[i] = sc
		}
		raw.Scenarios = scs
	}
	if o.Workers != nil {
		raw.Defaults.Workers = o.Workers
	}
	if o.Seed != nil {
		raw.Defaults.Seed = o.Seed
	}
	if err := ValidateRaw(raw); err != nil {
		return raw, Catalog{}, err
	}
	return raw, normalize(raw), nil
}

func normalize(raw RawConfig) Catalog {
	cat := Catalog{Version: raw.Version, Seed: raw.Defaults.Seed}
	if raw.Defaults.Workers != nil {
		cat.Workers = *raw.Defaults.Workers
	}
	defTrials := DefaultTrials
	if raw.Defaults.Trials != nil {
		defTrials = *raw.Defaults.Trials
	}
	for _, sc := range raw.Scenarios {
		trials := defTrials
		if sc.Trials != nil {
			trials = *sc.Trials
		}
		cat.Scenarios = append(cat.Scenarios, Scenario{Name: sc.Name, NumDoors: *sc.Doors, NumTrials: trials})
	}
	return cat
}

var _ Resolver = (*Loader)(nil)
