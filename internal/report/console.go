package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/xtding233/montyhall/internal/montyhall"
	"github.com/xtding233/montyhall/internal/scenario"
	"github.com/xtding233/montyhall/internal/store"
)

// Format selects how results are written.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat accepts "table" (default when empty) or "json".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("report: unknown format %q", s)
}

// Console writes comparisons to a writer.
type Console struct {
	out    io.Writer
	format Format
}

// NewConsoleWriter writes to w.
func NewConsoleWriter(w io.Writer, format Format) *Console {
	return &Console{out: w, format: format}
}

// jsonRow flattens one strategy result with its derived figures.
type jsonRow struct {
	Scenario    string             `json:"scenario,omitempty"`
	Strategy    montyhall.Strategy `json:"strategy"`
	NumDoors    int                `json:"num_doors"`
	Wins        int                `json:"wins"`
	TotalTrials int                `json:"total_trials"`
	WinRate     float64            `json:"win_rate"`
	CILow       float64            `json:"ci_low"`
	CIHigh      float64            `json:"ci_high"`
	Expected    float64            `json:"expected"`
}

func rowFor(scenarioName string, r montyhall.StrategyResult) jsonRow {
	lo, hi := r.Wilson(montyhall.Z95)
	return jsonRow{
		Scenario:    scenarioName,
		Strategy:    r.Strategy,
		NumDoors:    r.NumDoors,
		Wins:        r.Wins,
		TotalTrials: r.TotalTrials,
		WinRate:     r.WinRate(),
		CILow:       lo,
		CIHigh:      hi,
		Expected:    r.Expected(),
	}
}

// PrintComparisons prints every comparison in the configured format.
func (c *Console) PrintComparisons(cmps []montyhall.Comparison) error {
	if c.format == FormatJSON {
		rows := make([]jsonRow, 0, 2*len(cmps))
		for _, cmp := range cmps {
			rows = append(rows, rowFor(cmp.Scenario, cmp.Switch), rowFor(cmp.Scenario, cmp.Stay))
		}
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Scenario", "Doors", "Strategy", "Wins", "Trials", "Win rate", "95% CI", "Expected")
	for _, cmp := range cmps {
		for _, r := range []montyhall.StrategyResult{cmp.Switch, cmp.Stay} {
			lo, hi := r.Wilson(montyhall.Z95)
			if err := table.Append(
				labelOr(cmp.Scenario, "-"),
				fmt.Sprintf("%d", r.NumDoors),
				string(r.Strategy),
				fmt.Sprintf("%d", r.Wins),
				fmt.Sprintf("%d", r.TotalTrials),
				fmt.Sprintf("%.4f", r.WinRate()),
				fmt.Sprintf("[%.4f, %.4f]", lo, hi),
				fmt.Sprintf("%.4f", r.Expected()),
			); err != nil {
				return err
			}
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	for _, cmp := range cmps {
		fmt.Fprintf(c.out, "  %d doors: switching wins %.2f%%, staying wins %.2f%%\n",
			cmp.NumDoors, 100*cmp.Switch.WinRate(), 100*cmp.Stay.WinRate())
	}
	return nil
}

// PrintStats prints the spread of win rates across replicated batches.
func (c *Console) PrintStats(doors, trials int, s montyhall.Strategy, st montyhall.Stats) error {
	if c.format == FormatJSON {
		return json.NewEncoder(c.out).Encode(struct {
			Doors    int                `json:"doors"`
			Trials   int                `json:"trials"`
			Strategy montyhall.Strategy `json:"strategy"`
			Batches  int                `json:"batches"`
			montyhall.Stats
		}{doors, trials, s, len(st.Samples), st})
	}
	table := tablewriter.NewWriter(c.out)
	table.Header("Doors", "Strategy", "Batches", "Mean", "StdDev", "Min", "P50", "P90", "P99", "Max")
	if err := table.Append(
		fmt.Sprintf("%d", doors),
		string(s),
		fmt.Sprintf("%d", len(st.Samples)),
		fmt.Sprintf("%.4f", st.Mean),
		fmt.Sprintf("%.4f", st.StdDev),
		fmt.Sprintf("%.4f", st.Min),
		fmt.Sprintf("%.4f", st.P50),
		fmt.Sprintf("%.4f", st.P90),
		fmt.Sprintf("%.4f", st.P99),
		fmt.Sprintf("%.4f", st.Max),
	); err != nil {
		return err
	}
	return table.Render()
}

// PrintMenu lists the catalogue as a numbered menu followed by "run all" and "exit".
func (c *Console) PrintMenu(cat scenario.Catalog) {
	fmt.Fprintln(c.out, "\nMonty Hall Simulator")
	for i, s := range cat.Scenarios {
		fmt.Fprintf(c.out, "%d. Run %s (%d doors, %d trials)\n", i+1, s.Name, s.NumDoors, s.NumTrials)
	}
	fmt.Fprintf(c.out, "%d. Run all scenarios\n", len(cat.Scenarios)+1)
	fmt.Fprintf(c.out, "%d. Exit\n", len(cat.Scenarios)+2)
	fmt.Fprintf(c.out, "\nEnter your choice (1-%d): ", len(cat.Scenarios)+2)
}

// PrintRuns prints stored history rows.
func (c *Console) PrintRuns(runs []store.Run) error {
	if c.format == FormatJSON {
		return json.NewEncoder(c.out).Encode(runs)
	}
	table := tablewriter.NewWriter(c.out)
	table.Header("Run", "When", "Scenario", "Doors", "Strategy", "Wins", "Trials", "Win rate")
	for _, r := range runs {
		if err := table.Append(
			shortID(r.RunID),
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			labelOr(r.Scenario, "-"),
			fmt.Sprintf("%d", r.Result.NumDoors),
			string(r.Result.Strategy),
			fmt.Sprintf("%d", r.Result.Wins),
			fmt.Sprintf("%d", r.Result.TotalTrials),
			fmt.Sprintf("%.4f", r.Result.WinRate()),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

func labelOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
