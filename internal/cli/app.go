// Package cli implements the montyhall command.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xtding233/montyhall/internal/config"
	"github.com/xtding233/montyhall/internal/montyhall"
	"github.com/xtding233/montyhall/internal/report"
	"github.com/xtding233/montyhall/internal/scenario"
	"github.com/xtding233/montyhall/internal/store"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// app is one invocation's resolved state.
type app struct {
	opts    Options
	logger  *slog.Logger
	console *report.Console
	catalog scenario.Catalog
	trials  int
	runner  *montyhall.Runner
	store   *store.SQLiteStorage
	stdin   io.Reader
	stdout  io.Writer
}

// Run executes the command and returns its exit code.
func Run(ctx context.Context, argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := NewFlagSet("montyhall")
	fs.SetOutput(stderr)
	opts, err := ParseArgs(fs, argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	a, err := newApp(opts, stdin, stdout, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		if errors.Is(err, montyhall.ErrInvalidConfiguration) || errors.Is(err, scenario.ErrScenarioConfig) {
			return exitUsage
		}
		return exitFailure
	}
	defer a.store.Close()

	if err := a.run(ctx); err != nil {
		fmt.Fprintln(stderr, err)
		if errors.Is(err, montyhall.ErrInvalidConfiguration) {
			return exitUsage
		}
		return exitFailure
	}
	return exitOK
}

func newApp(opts Options, stdin io.Reader, stdout, stderr io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}
	if opts.DBPath == "" {
		opts.DBPath = cfg.DBPath
	}
	if opts.ConfigDir == "" {
		opts.ConfigDir = cfg.ScenarioDir
	}
	if opts.Profile == "" {
		opts.Profile = cfg.Profile
	}
	format, err := report.ParseFormat(opts.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", montyhall.ErrInvalidConfiguration, err)
	}

	var ov scenario.Overrides
	if opts.trialsSet {
		ov.Trials = &opts.Trials
	}
	if opts.workersSet {
		ov.Workers = &opts.Workers
	}
	ov.Seed = opts.Seed
	raw, cat, err := scenario.NewLoader(opts.ConfigDir).Resolve(opts.Profile, ov)
	if err != nil {
		return nil, err
	}

	a := &app{
		opts:    opts,
		logger:  config.NewLogger(cfg.Log, stderr),
		console: report.NewConsoleWriter(stdout, format),
		catalog: cat,
		trials:  scenario.DefaultTrials,
		stdin:   stdin,
		stdout:  stdout,
	}
	if raw.Defaults.Trials != nil {
		a.trials = *raw.Defaults.Trials
	}

	// Always pin a seed so every run can be replayed.
	seed := montyhall.NewSeed()
	if cat.Seed != nil {
		seed = *cat.Seed
	}
	a.runner = &montyhall.Runner{Workers: cat.Workers, Seed: &seed, Logger: a.logger}

	if opts.DBPath != "" {
		a.store, err = store.NewSQLiteStorage(opts.DBPath)
		if err != nil {
			return nil, err
		}
	}
	a.logger.Debug("resolved configuration",
		"catalogue", cat.Version,
		"scenarios", len(cat.Scenarios),
		"workers", cat.Workers,
		"seed", seed,
		"db", opts.DBPath,
	)
	return a, nil
}

func (a *app) run(ctx context.Context) error {
	switch {
	case a.opts.History > 0:
		return a.history(ctx)
	case a.opts.Interactive:
		return a.menu(ctx)
	case a.opts.All:
		return a.sweep(ctx, a.catalog.Jobs())
	}

	job := montyhall.Job{NumDoors: a.opts.Doors, NumTrials: a.trials}
	if a.opts.Scenario != "" {
		sc, ok := a.catalog.Find(a.opts.Scenario)
		if !ok {
			return fmt.Errorf("%w: unknown scenario %q", montyhall.ErrInvalidConfiguration, a.opts.Scenario)
		}
		job = sc.Job()
	}
	if a.opts.Replicate > 0 {
		return a.replicate(ctx, job)
	}
	return a.sweep(ctx, []montyhall.Job{job})
}

func (a *app) sweep(ctx context.Context, jobs []montyhall.Job) error {
	cmps, err := a.runner.Sweep(ctx, jobs)
	if err != nil {
		return err
	}
	if err := a.console.PrintComparisons(cmps); err != nil {
		return err
	}
	if a.store == nil {
		return nil
	}
	for _, cmp := range cmps {
		id, err := a.store.SaveComparison(ctx, cmp, &cmp.Seed)
		if err != nil {
			return err
		}
		a.logger.Debug("saved run", "run_id", id, "scenario", cmp.Scenario)
	}
	return nil
}

func (a *app) replicate(ctx context.Context, job montyhall.Job) error {
	for _, s := range []montyhall.Strategy{montyhall.StrategySwitch, montyhall.StrategyStay} {
		st, err := a.runner.Replicate(ctx, job.NumDoors, job.NumTrials, s, a.opts.Replicate)
		if err != nil {
			return err
		}
		if err := a.console.PrintStats(job.NumDoors, job.NumTrials, s, st); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) history(ctx context.Context) error {
	if a.store == nil {
		return fmt.Errorf("%w: -history needs -db or MONTYHALL_DB_PATH", montyhall.ErrInvalidConfiguration)
	}
	runs, err := a.store.ListRuns(ctx, a.opts.History)
	if err != nil {
		return err
	}
	return a.console.PrintRuns(runs)
}

// menu loops until the exit entry is chosen or input ends.
func (a *app) menu(ctx context.Context) error {
	n := len(a.catalog.Scenarios)
	in := bufio.NewScanner(a.stdin)
	for {
		a.console.PrintMenu(a.catalog)
		if !in.Scan() {
			fmt.Fprintln(a.stdout)
			return in.Err()
		}
		choice, err := strconv.Atoi(strings.TrimSpace(in.Text()))
		switch {
		case err != nil || choice < 1 || choice > n+2:
			fmt.Fprintf(a.stdout, "Invalid choice. Please enter a number between 1 and %d.\n", n+2)
			continue
		case choice == n+2:
			fmt.Fprintln(a.stdout, "Goodbye!")
			return nil
		case choice == n+1:
			err = a.sweep(ctx, a.catalog.Jobs())
		default:
			err = a.sweep(ctx, []montyhall.Job{a.catalog.Scenarios[choice-1].Job()})
		}
		if a.catalog.Seed == nil {
			// fresh numbers for the next pick unless the seed was pinned
			seed := montyhall.NewSeed()
			a.runner.Seed = &seed
		}
		if err != nil {
			return err
		}
	}
}
