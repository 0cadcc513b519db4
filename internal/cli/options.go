package cli

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
)

// Options holds all CLI flags.
type Options struct {
	// Game
	Doors    int
	Trials   int
	Seed     *uint64
	Workers  int
	Scenario string
	All      bool

	// Modes
	Interactive bool
	Replicate   int // batches; 0 disables
	History     int // rows of stored history to print; 0 disables

	// Output and storage
	Format     string
	DBPath     string
	ConfigDir  string
	Profile    string
	Verbose    bool
	trialsSet  bool
	workersSet bool
}

// NewFlagSet returns a FlagSet with a usage banner.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), `%s: Monte Carlo estimate of switching vs staying in the N-door Monty Hall game

Usage of %s:
`, name, name)
		fs.PrintDefaults()
	}
	return fs
}

// seedFlag parses a uint64 and remembers that it was given.
type seedFlag struct{ v **uint64 }

func (s seedFlag) String() string {
	if s.v == nil || *s.v == nil {
		return ""
	}
	return strconv.FormatUint(**s.v, 10)
}

func (s seedFlag) Set(raw string) error {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return errors.New("seed must be an unsigned integer")
	}
	*s.v = &v
	return nil
}

// ParseArgs registers and parses all flags. Values left at zero are filled
// from the environment and the scenario catalogue by Run.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var opt Options

	fs.IntVar(&opt.Doors, "doors", 3, "number of doors (>= 3)")
	fs.IntVar(&opt.Trials, "trials", 0, "trials per strategy (default: catalogue default, 10000)")
	fs.Var(seedFlag{&opt.Seed}, "seed", "seed for a reproducible run")
	fs.IntVar(&opt.Workers, "workers", 0, "worker goroutines (default: number of CPUs)")
	fs.StringVar(&opt.Scenario, "scenario", "", "run a named catalogue scenario")
	fs.BoolVar(&opt.All, "all", false, "run every catalogue scenario")

	fs.BoolVar(&opt.Interactive, "interactive", false, "choose scenarios from a menu")
	fs.IntVar(&opt.Replicate, "replicate", 0, "repeat the run this many times and report the spread of win rates")
	fs.IntVar(&opt.History, "history", 0, "print this many stored results and exit (needs -db)")

	fs.StringVar(&opt.Format, "format", "table", "output format: table|json")
	fs.StringVar(&opt.DBPath, "db", "", "SQLite file to record results in (env MONTYHALL_DB_PATH)")
	fs.StringVar(&opt.ConfigDir, "config", "", "directory holding scenarios/*.yaml (env MONTYHALL_SCENARIO_DIR)")
	fs.StringVar(&opt.Profile, "profile", "", "scenario profile layered over scenarios/default.yaml (env MONTYHALL_PROFILE)")
	fs.BoolVar(&opt.Verbose, "verbose", false, "debug logging")

	if err := fs.Parse(argv); err != nil {
		return opt, err
	}
	if fs.NArg() > 0 {
		return opt, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "trials":
			opt.trialsSet = true
		case "workers":
			opt.workersSet = true
		}
	})

	modes := 0
	for _, on := range []bool{opt.Scenario != "", opt.All, opt.Interactive, opt.History > 0} {
		if on {
			modes++
		}
	}
	if modes > 1 {
		return opt, errors.New("-scenario, -all, -interactive and -history are mutually exclusive")
	}
	if opt.Replicate < 0 || opt.History < 0 {
		return opt, errors.New("-replicate and -history must not be negative")
	}
	if opt.Replicate > 0 && (opt.All || opt.Interactive) {
		return opt, errors.New("-replicate needs a single game: use -doors or -scenario")
	}
	return opt, nil
}
