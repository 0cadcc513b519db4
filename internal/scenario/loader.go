package scenario

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Paths helper for default/profile files.
type Paths struct {
	BaseDir string // base directory, e.g., /opt/app/config
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "scenarios", "default.yaml")
}
func (p Paths) ProfilePath(profile string) string {
	return filepath.Join(p.BaseDir, "scenarios", profile+".yaml")
}

// Loader reads YAML configs and merges builtin → default → profile.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: profile name or "$default"
}

// NewLoader creates a config loader with the given base directory.
// An empty baseDir yields the builtin catalogue only.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

// Paths returns the files a watcher should poll for the given profile.
func (l *Loader) Paths(profile string) []string {
	if l.paths.BaseDir == "" {
		return nil
	}
	out := []string{l.paths.DefaultPath()}
	if profile != "" {
		out = append(out, l.paths.ProfilePath(profile))
	}
	return out
}

// LoadMerged loads and merges builtin → default → profile (profile optional).
// It returns the merged RawConfig (without normalization).
func (l *Loader) LoadMerged(profile string) (RawConfig, error) {
	key := profile
	if key == "" {
		key = "$default"
	}
	l.mu.RLock()
	if cfg, ok := l.cache[key]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	merged := Builtin()
	if l.paths.BaseDir != "" {
		defCfg, err := readYAML(l.paths.DefaultPath())
		if err != nil {
			return RawConfig{}, fmt.Errorf("read default: %w", err)
		}
		merged = mergeRaw(merged, defCfg)
		if profile != "" {
			profCfg, err := readYAML(l.paths.ProfilePath(profile))
			if err != nil {
				return RawConfig{}, fmt.Errorf("read profile %q: %w", profile, err)
			}
			merged = mergeRaw(merged, profCfg)
		}
	}

	l.mu.Lock()
	l.cache[key] = merged
	l.mu.Unlock()

	return merged, nil
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads a YAML file into RawConfig. Missing files return zero cfg, no error.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, err
	}
	return cfg, nil
}

// mergeRaw overlays 'b' on 'a' where 'b' is set.
// Scenarios merge by name: a same-named entry in 'b' replaces the fields it
// sets, new names are appended in 'b' order.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a
	out.Scenarios = append([]ScenarioConfig(nil), a.Scenarios...)

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	// defaults
	if b.Defaults.Trials != nil {
		out.Defaults.Trials = b.Defaults.Trials
	}
	if b.Defaults.Workers != nil {
		out.Defaults.Workers = b.Defaults.Workers
	}
	if b.Defaults.Seed != nil {
		out.Defaults.Seed = b.Defaults.Seed
	}

	// scenarios
	for _, sc := range b.Scenarios {
		idx := -1
		for i := range out.Scenarios {
			if out.Scenarios[i].Name == sc.Name {
				idx = i
				break
			}
		}
		if idx < 0 {
			out.Scenarios = append(out.Scenarios, sc)
			continue
		}
		if sc.Doors != nil {
			out.Scenarios[idx].Doors = sc.Doors
		}
		if sc.Trials != nil {
			out.Scenarios[idx].Trials = sc.Trials
		}
	}

	return out
}
