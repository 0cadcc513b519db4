package simulator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xtding233/montyhall/internal/montyhall"
	"github.com/xtding233/montyhall/internal/scenario"
	"github.com/xtding233/montyhall/internal/store"
)

// maxListedDoors bounds how many revealed doors a trial response spells out.
const maxListedDoors = 100

// Store persists results; *store.SQLiteStorage satisfies it.
type Store interface {
	SaveComparison(ctx context.Context, cmp montyhall.Comparison, seed *uint64) (string, error)
	SaveResult(ctx context.Context, scenario string, res montyhall.StrategyResult, seed *uint64) (string, error)
	ListRuns(ctx context.Context, limit int) ([]store.Run, error)
}

// Options configures a Service. Zero values are usable.
type Options struct {
	Scenarios scenario.Resolver // nil means the builtin catalogue
	Profile   string
	Store     Store // nil disables history
	Workers   int
	MaxTrials int // <= 0 means unlimited
	Logger    *slog.Logger
}

// Service is the transport-independent API behind the HTTP and gRPC servers.
type Service struct {
	opts Options
}

func New(opts Options) *Service {
	if opts.Scenarios == nil {
		opts.Scenarios = scenario.NewLoader("")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{opts: opts}
}

// EstimateRequest selects doors and trials directly or through a named scenario.
// Explicit values win over the scenario's.
type EstimateRequest struct {
	Scenario  string
	NumDoors  int
	NumTrials int
	Strategy  montyhall.Strategy
	Seed      *uint64
}

// TrialResult is one resolved game.
type TrialResult struct {
	Trial    montyhall.Trial  `json:"trial"`
	Switch   bool             `json:"switch"`
	Won      bool             `json:"won"`
	Revealed []montyhall.Door `json:"revealed,omitempty"` // only for small games
	Seed     uint64           `json:"seed,string"`
}

// EstimateResult is one strategy's estimate.
type EstimateResult struct {
	RunID  string                   `json:"run_id,omitempty"`
	Seed   uint64                   `json:"seed,string"`
	Result montyhall.StrategyResult `json:"result"`
}

// CompareResult is both strategies' estimates.
type CompareResult struct {
	RunID      string               `json:"run_id,omitempty"`
	Seed       uint64               `json:"seed,string"`
	Comparison montyhall.Comparison `json:"comparison"`
}

// Trial plays one game.
func (s *Service) Trial(numDoors int, switchDoors bool, seed *uint64) (TrialResult, error) {
	if err := montyhall.Validate(numDoors, 1); err != nil {
		return TrialResult{}, err
	}
	sd := seedOrNew(seed)
	t := montyhall.NewTrial(numDoors, montyhall.NewSeededRNG(sd))
	out := TrialResult{
		Trial:  t,
		Switch: switchDoors,
		Won:    t.Won(montyhall.StrategyFor(switchDoors)),
		Seed:   sd,
	}
	if numDoors <= maxListedDoors {
		out.Revealed = t.Revealed()
	}
	return out, nil
}

// Estimate runs one strategy and records it when a store is configured.
func (s *Service) Estimate(ctx context.Context, req EstimateRequest) (EstimateResult, error) {
	if err := checkStrategy(req.Strategy); err != nil {
		return EstimateResult{}, err
	}
	doors, trials, err := s.resolve(req)
	if err != nil {
		return EstimateResult{}, err
	}
	sd := seedOrNew(req.Seed)
	res, err := montyhall.NewRunner(s.opts.Workers, &sd).Estimate(ctx, doors, trials, req.Strategy)
	if err != nil {
		return EstimateResult{}, err
	}
	out := EstimateResult{Seed: sd, Result: res}
	if s.opts.Store != nil {
		out.RunID, err = s.opts.Store.SaveResult(ctx, req.Scenario, res, &sd)
		if err != nil {
			return EstimateResult{}, err
		}
	}
	s.opts.Logger.Info("estimate",
		"scenario", req.Scenario,
		"doors", doors,
		"trials", trials,
		"strategy", req.Strategy,
		"win_rate", res.WinRate(),
		"run_id", out.RunID,
	)
	return out, nil
}

// Compare runs both strategies and records them when a store is configured.
func (s *Service) Compare(ctx context.Context, req EstimateRequest) (CompareResult, error) {
	doors, trials, err := s.resolve(req)
	if err != nil {
		return CompareResult{}, err
	}
	sd := seedOrNew(req.Seed)
	cmp, err := montyhall.NewRunner(s.opts.Workers, &sd).Compare(ctx, doors, trials)
	if err != nil {
		return CompareResult{}, err
	}
	cmp.Scenario = req.Scenario
	out := CompareResult{Seed: sd, Comparison: cmp}
	if s.opts.Store != nil {
		out.RunID, err = s.opts.Store.SaveComparison(ctx, cmp, &sd)
		if err != nil {
			return CompareResult{}, err
		}
	}
	s.opts.Logger.Info("compare",
		"scenario", req.Scenario,
		"doors", doors,
		"trials", trials,
		"switch_rate", cmp.Switch.WinRate(),
		"stay_rate", cmp.Stay.WinRate(),
		"run_id", out.RunID,
	)
	return out, nil
}

// Scenarios returns the current catalogue.
func (s *Service) Scenarios() (scenario.Catalog, error) {
	_, cat, err := s.opts.Scenarios.Resolve(s.opts.Profile, scenario.Overrides{})
	return cat, err
}

// Runs lists stored history; it is empty without a store.
func (s *Service) Runs(ctx context.Context, limit int) ([]store.Run, error) {
	if s.opts.Store == nil {
		return nil, nil
	}
	return s.opts.Store.ListRuns(ctx, limit)
}

func (s *Service) resolve(req EstimateRequest) (int, int, error) {
	doors, trials := req.NumDoors, req.NumTrials
	if req.Scenario != "" {
		cat, err := s.Scenarios()
		if err != nil {
			return 0, 0, err
		}
		sc, ok := cat.Find(req.Scenario)
		if !ok {
			return 0, 0, fmt.Errorf("%w: unknown scenario %q", montyhall.ErrInvalidConfiguration, req.Scenario)
		}
		if doors == 0 {
			doors = sc.NumDoors
		}
		if trials == 0 {
			trials = sc.NumTrials
		}
	}
	if trials == 0 {
		trials = scenario.DefaultTrials
	}
	if err := montyhall.Validate(doors, trials); err != nil {
		return 0, 0, err
	}
	if s.opts.MaxTrials > 0 && trials > s.opts.MaxTrials {
		return 0, 0, fmt.Errorf("%w: numTrials=%d exceeds limit %d", montyhall.ErrInvalidConfiguration, trials, s.opts.MaxTrials)
	}
	return doors, trials, nil
}

func checkStrategy(st montyhall.Strategy) error {
	switch st {
	case montyhall.StrategySwitch, montyhall.StrategyStay:
		return nil
	}
	return fmt.Errorf("%w: strategy %q must be switch or stay", montyhall.ErrInvalidConfiguration, st)
}

func seedOrNew(seed *uint64) uint64 {
	if seed != nil {
		return *seed
	}
	return montyhall.NewSeed()
}
