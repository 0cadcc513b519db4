// types.go
package scenario

import "github.com/xtding233/montyhall/internal/montyhall"

// Raw config loaded from YAML.
type RawConfig struct {
	Version   string           `yaml:"version"`
	Defaults  DefaultsConfig   `yaml:"defaults"`
	Scenarios []ScenarioConfig `yaml:"scenarios,omitempty"`
	Notes     string           `yaml:"notes,omitempty"`
}

type DefaultsConfig struct {
	Trials  *int    `yaml:"trials"`
	Workers *int    `yaml:"workers"`
	Seed    *uint64 `yaml:"seed,omitempty"`
}

type ScenarioConfig struct {
	Name   string `yaml:"name"`
	Doors  *int   `yaml:"doors"`
	Trials *int   `yaml:"trials,omitempty"` // falls back to defaults.trials
}

// Scenario is one normalized door/trial configuration.
type Scenario struct {
	Name      string `json:"name"`
	NumDoors  int    `json:"num_doors"`
	NumTrials int    `json:"num_trials"`
}

// Job converts the scenario into a runner job.
func (s Scenario) Job() montyhall.Job {
	return montyhall.Job{Name: s.Name, NumDoors: s.NumDoors, NumTrials: s.NumTrials}
}

// Catalog is the resolved, ordered list of scenarios plus run settings.
type Catalog struct {
	Version   string     `json:"version,omitempty"`
	Workers   int        `json:"workers"`
	Seed      *uint64    `json:"seed,omitempty,string"`
	Scenarios []Scenario `json:"scenarios"`
}

// Find looks a scenario up by name.
func (c Catalog) Find(name string) (Scenario, bool) {
	for _, s := range c.Scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}

// Jobs returns every scenario as a runner job, in catalogue order.
func (c Catalog) Jobs() []montyhall.Job {
	out := make([]montyhall.Job, 0, len(c.Scenarios))
	for _, s := range c.Scenarios {
		out = append(out, s.Job())
	}
	return out
}
