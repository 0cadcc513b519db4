package scenario

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xtding233/montyhall/internal/montyhall"
)

var ErrScenarioConfig = errors.New("invalid scenario config")

// ValidateRaw checks semantic constraints of a RawConfig.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	if cfg.Defaults.Trials != nil && *cfg.Defaults.Trials < montyhall.MinTrials {
		errs = append(errs, fmt.Sprintf("defaults.trials must be >= %d", montyhall.MinTrials))
	}
	if cfg.Defaults.Workers != nil && *cfg.Defaults.Workers < 0 {
		errs = append(errs, "defaults.workers must be >= 0 (0 means one per CPU)")
	}

	seen := make(map[string]bool, len(cfg.Scenarios))
	for i, sc := range cfg.Scenarios {
		name := strings.TrimSpace(sc.Name)
		if name == "" {
			errs = append(errs, fmt.Sprintf("scenarios[%d].name is required", i))
		} else if seen[name] {
			errs = append(errs, fmt.Sprintf("scenarios[%d].name %q is duplicated", i, name))
		}
		seen[name] = true

		if sc.Doors == nil {
			errs = append(errs, fmt.Sprintf("scenarios[%d].doors is required", i))
		} else if *sc.Doors < montyhall.MinDoors {
			errs = append(errs, fmt.Sprintf("scenarios[%d].doors must be >= %d", i, montyhall.MinDoors))
		}
		if sc.Trials != nil && *sc.Trials < montyhall.MinTrials {
			errs = append(errs, fmt.Sprintf("scenarios[%d].trials must be >= %d", i, montyhall.MinTrials))
		}
		if sc.Trials == nil && cfg.Defaults.Trials == nil {
			errs = append(errs, fmt.Sprintf("scenarios[%d].trials is required when defaults.trials is unset", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrScenarioConfig, strings.Join(errs, "; "))
	}
	return nil
}
