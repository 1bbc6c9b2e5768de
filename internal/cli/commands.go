package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"monoledger/internal/backup"
	"monoledger/internal/core"
	"monoledger/internal/log"
	"monoledger/internal/middleware/trace"
	"monoledger/internal/services"
	"monoledger/internal/settings"
	"monoledger/internal/sheets"
)

// Exit codes returned by Run.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// ErrUsage marks a malformed command line.
var ErrUsage = errors.New("usage")

// IO bundles the streams a command reads from and writes to.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

type command struct {
	usage string
	run   func(ctx context.Context, r *runner, args []string) error
}

var commands = map[string]command{
	"add":        {"add [-date YYYY-MM-DD] <amount> <category> <description...>", runAdd},
	"list":       {"list [-n N] [-category LABEL]", runList},
	"history":    {"history", runHistory},
	"delete":     {"delete <id>", runDelete},
	"stats":      {"stats", runStats},
	"categories": {"categories [add <label> | remove <label> | shuffle]", runCategories},
	"budget":     {"budget [<daily> <monthly>]", runBudget},
	"currency":   {"currency [<code>]", runCurrency},
	"currencies": {"currencies [query]", runCurrencies},
	"theme":      {"theme [<id>]", runTheme},
	"onboard":    {"onboard [-currency CODE] [-daily N] [-monthly N] [-categories A,B,C]", runOnboard},
	"export":     {"export [-format json|csv|xlsx] [-o path]", runExport},
	"import":     {"import <path|->", runImport},
	"reset":      {"reset -yes", runReset},
	"device":     {"device", runDevice},
}

type runner struct {
	tr  *services.Tracker
	io  IO
	cmd string
}

// Run executes one command against tr and returns the process exit code.
func Run(ctx context.Context, tr *services.Tracker, logger *log.Logger, args []string, stdio IO) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printUsage(stdio.Out)
		return ExitOK
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stdio.Err, "unknown command %q\n\n", args[0])
		printUsage(stdio.Err)
		return ExitUsage
	}

	r := &runner{tr: tr, io: stdio, cmd: args[0]}
	var runID string
	err := trace.Command(ctx, logger, args[0], func(ctx context.Context) error {
		runID = trace.GetRunID(ctx)
		return cmd.run(ctx, r, args[1:])
	})
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage):
		fmt.Fprintf(stdio.Err, "%v\nusage: monoledger %s\n", err, cmd.usage)
		return ExitUsage
	default:
		fmt.Fprintf(stdio.Err, "%s: %v (%s)\n", args[0], err, runID)
		return ExitError
	}
}

func printUsage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "usage: monoledger <command> [arguments]")
	fmt.Fprintln(w)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
}

func (r *runner) flags() *flag.FlagSet {
	fs := flag.NewFlagSet(r.cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (r *runner) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

func (r *runner) table() *tabwriter.Writer {
	return tabwriter.NewWriter(r.io.Out, 0, 4, 2, ' ', 0)
}

func usageErr(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrUsage}, args...)...)
}

func runAdd(ctx context.Context, r *runner, args []string) error {
	fs := r.flags()
	date := fs.String("date", "", "expense date (YYYY-MM-DD), defaults to today")
	if err := r.parse(fs, args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 3 {
		return usageErr("amount, category and description are required")
	}

	amount, err := core.ParseAmount(rest[0])
	if err != nil {
		return fmt.Errorf("%w: %q", err, rest[0])
	}
	d := r.tr.Today()
	if *date != "" {
		if d, err = core.ParseDate(*date); err != nil {
			return err
		}
	}

	e, err := r.tr.AddExpense(ctx, core.NewExpense{
		Amount:      amount,
		Description: strings.Join(rest[2:], " "),
		Category:    rest[1],
		Date:        d,
	})
	if errors.Is(err, services.ErrUnknownCategory) {
		return fmt.Errorf("%w (known: %s)", err, strings.Join(r.tr.Categories(), ", "))
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(r.io.Out, "Added %s  %s  %s  %s  %s\n",
		e.ID, e.Date, e.Category, r.tr.FormatAmount(e.Amount), e.Description)
	return nil
}

func runList(_ context.Context, r *runner, args []string) error {
	fs := r.flags()
	limit := fs.Int("n", 0, "show at most N records")
	category := fs.String("category", "", "only this category")
	if err := r.parse(fs, args); err != nil {
		return err
	}

	filter := core.NormalizeLabel(*category)
	tw := r.table()
	fmt.Fprintln(tw, "ID\tDATE\tCATEGORY\tAMOUNT\tDESCRIPTION")
	shown := 0
	for _, e := range r.tr.Expenses() {
		if filter != "" && e.Category != filter {
			continue
		}
		if *limit > 0 && shown >= *limit {
			break
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Date, e.Category, r.tr.FormatAmount(e.Amount), e.Description)
		shown++
	}
	return tw.Flush()
}

func runHistory(_ context.Context, r *runner, _ []string) error {
	groups := r.tr.History()
	if len(groups) == 0 {
		fmt.Fprintln(r.io.Out, "No expenses recorded.")
		return nil
	}
	tw := r.table()
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\t\t%s\n", g.Date, r.tr.FormatAmount(g.Total))
		for _, e := range g.Expenses {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", e.Category, e.Description, r.tr.FormatAmount(e.Amount))
		}
	}
	return tw.Flush()
}

func runDelete(ctx context.Context, r *runner, args []string) error {
	if len(args) != 1 {
		return usageErr("exactly one id is required")
	}
	id := args[0]
	_, existed := r.tr.Expense(id)
	if err := r.tr.DeleteExpense(ctx, id); err != nil {
		return err
	}
	if existed {
		fmt.Fprintf(r.io.Out, "Deleted %s\n", id)
	} else {
		fmt.Fprintf(r.io.Out, "No expense %s, nothing to delete\n", id)
	}
	return nil
}

func runStats(_ context.Context, r *runner, _ []string) error {
	rep := r.tr.Report()
	f := r.tr.FormatAmount

	tw := r.table()
	fmt.Fprintf(tw, "Lifetime total\t%s\n", f(rep.Total))
	fmt.Fprintf(tw, "Transactions\t%d\n", rep.Count)
	fmt.Fprintf(tw, "Average\t%s\n", f(rep.Average))
	fmt.Fprintf(tw, "Month to date\t%s\n", f(rep.MonthToDate))
	if rep.HasMonthly {
		fmt.Fprintf(tw, "Month remaining\t%s\n", f(rep.MonthRemaining))
		fmt.Fprintf(tw, "Month burn\t%s%%\n", strconv.FormatFloat(rep.MonthBurn, 'f', 0, 64))
	}
	fmt.Fprintf(tw, "Spent today\t%s\n", f(rep.Daily.Spent))
	if rep.Daily.Enabled {
		status := "within limit"
		if rep.Daily.Exceeded {
			status = "OVER LIMIT"
		}
		fmt.Fprintf(tw, "Daily remaining\t%s\t%s\n", f(rep.Daily.Remaining), status)
	}

	fmt.Fprintln(tw, "\nLast 7 days")
	for _, d := range rep.Week {
		fmt.Fprintf(tw, "  %s\t%s\n", d.Date, f(d.Amount))
	}

	if len(rep.Categories) > 0 {
		fmt.Fprintln(tw, "\nBy category")
		for _, c := range rep.Categories {
			fmt.Fprintf(tw, "  %s\t%s\n", c.Name, f(c.Amount))
		}
	}
	if len(rep.Recurring) > 0 {
		fmt.Fprintln(tw, "\nRecurring")
		for _, p := range rep.Recurring {
			fmt.Fprintf(tw, "  %s\t%s\tx%d\n", p.Description, f(p.Amount), p.Count)
		}
	}
	return tw.Flush()
}

func runCategories(ctx context.Context, r *runner, args []string) error {
	if len(args) == 0 {
		for _, c := range r.tr.Categories() {
			fmt.Fprintln(r.io.Out, c)
		}
		return nil
	}

	switch args[0] {
	case "add", "remove":
		if len(args) != 2 {
			return usageErr("%s needs exactly one label", args[0])
		}
		label := core.NormalizeLabel(args[1])
		if args[0] == "add" {
			added, err := r.tr.AddCategory(ctx, label)
			if err != nil {
				return err
			}
			if !added {
				fmt.Fprintf(r.io.Out, "Category %q already present\n", label)
				return nil
			}
			fmt.Fprintf(r.io.Out, "Added category %s\n", label)
			return nil
		}
		removed, err := r.tr.RemoveCategory(ctx, label)
		if err != nil {
			return err
		}
		if !removed {
			fmt.Fprintf(r.io.Out, "Category %q not found\n", label)
			return nil
		}
		fmt.Fprintf(r.io.Out, "Removed category %s\n", label)
		return nil
	case "shuffle":
		if err := r.tr.ShuffleCategories(ctx); err != nil {
			return err
		}
		fmt.Fprintln(r.io.Out, strings.Join(r.tr.Categories(), " "))
		return nil
	default:
		return usageErr("unknown categories action %q", args[0])
	}
}

func runBudget(ctx context.Context, r *runner, args []string) error {
	switch len(args) {
	case 0:
	case 2:
		if err := r.tr.SetBudgetFromInput(ctx, args[0], args[1]); err != nil {
			return err
		}
	default:
		return usageErr("give both daily and monthly limits, 0 to unset")
	}
	b := r.tr.Budget()
	fmt.Fprintf(r.io.Out, "Daily:   %s\n", r.limit(b.HasDaily(), b.Daily))
	fmt.Fprintf(r.io.Out, "Monthly: %s\n", r.limit(b.HasMonthly(), b.Monthly))
	return nil
}

func (r *runner) limit(set bool, v float64) string {
	if !set {
		return "not set"
	}
	return r.tr.FormatAmount(v)
}

func runCurrency(ctx context.Context, r *runner, args []string) error {
	if len(args) > 1 {
		return usageErr("at most one currency code")
	}
	if len(args) == 1 {
		if err := r.tr.SetCurrency(ctx, args[0]); err != nil {
			return err
		}
	}
	code := r.tr.Currency()
	if c, ok := core.LookupCurrency(code); ok {
		fmt.Fprintf(r.io.Out, "%s  %s  %s\n", c.Code, c.Symbol, c.Name)
		return nil
	}
	fmt.Fprintln(r.io.Out, code)
	return nil
}

func runCurrencies(_ context.Context, r *runner, args []string) error {
	list := core.SearchCurrencies(strings.Join(args, " "))
	if len(list) == 0 {
		fmt.Fprintln(r.io.Out, "No matching currencies.")
		return nil
	}
	tw := r.table()
	for _, c := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Code, c.Symbol, c.Name)
	}
	return tw.Flush()
}

func runTheme(ctx context.Context, r *runner, args []string) error {
	if len(args) > 1 {
		return usageErr("at most one theme id")
	}
	if len(args) == 1 {
		err := r.tr.SetTheme(ctx, args[0])
		if errors.Is(err, settings.ErrUnknownTheme) {
			return usageErr("%v", err)
		}
		if err != nil {
			return err
		}
	}
	current := r.tr.Theme()
	tw := r.table()
	for _, th := range core.Themes() {
		mark := " "
		if th.ID == current.ID {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s %s\t%s\n", mark, th.ID, th.Name)
	}
	return tw.Flush()
}

func runOnboard(ctx context.Context, r *runner, args []string) error {
	fs := r.flags()
	currency := fs.String("currency", "", "display currency code")
	daily := fs.String("daily", "", "daily limit, empty for none")
	monthly := fs.String("monthly", "", "monthly limit, empty for none")
	categories := fs.String("categories", "", "comma-separated category labels")
	if err := r.parse(fs, args); err != nil {
		return err
	}

	ob := services.Onboarding{Currency: *currency, Daily: *daily, Monthly: *monthly}
	if *categories != "" {
		ob.Categories = strings.Split(*categories, ",")
	}
	if err := r.tr.CompleteOnboarding(ctx, ob); err != nil {
		return err
	}
	fmt.Fprintf(r.io.Out, "Setup complete. Device %s\n", r.tr.DeviceID())
	return nil
}

func runExport(ctx context.Context, r *runner, args []string) error {
	fs := r.flags()
	format := fs.String("format", "json", "json, csv or xlsx")
	out := fs.String("o", "", "output file or directory, stdout when empty")
	if err := r.parse(fs, args); err != nil {
		return err
	}

	name := r.tr.ExportFileName()
	var write func(io.Writer) error
	if strings.EqualFold(*format, "json") {
		write = func(w io.Writer) error { return r.tr.Export(ctx, w) }
	} else {
		sw, err := sheets.ForFormat(*format)
		if err != nil {
			return usageErr("%v", err)
		}
		name = strings.TrimSuffix(name, filepath.Ext(name)) + sw.Ext()
		write = func(w io.Writer) error { return sw.Write(w, r.tr.Expenses(), r.tr.Currency()) }
	}

	if *out == "" {
		return write(r.io.Out)
	}
	path := *out
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, name)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	fmt.Fprintf(r.io.Err, "Wrote %s\n", path)
	return nil
}

func runImport(ctx context.Context, r *runner, args []string) error {
	if len(args) != 1 {
		return usageErr("exactly one path is required, - for stdin")
	}
	in := r.io.In
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer f.Close()
		in = f
	}

	rep, err := r.tr.Import(ctx, in)
	if errors.Is(err, backup.ErrCorrupt) {
		return fmt.Errorf("data corrupt, import aborted, nothing changed: %w", err)
	}
	if len(rep.Applied) > 0 {
		fmt.Fprintf(r.io.Out, "Restored: %s\n", strings.Join(rep.Applied, ", "))
	}
	if len(rep.Skipped) > 0 {
		fmt.Fprintf(r.io.Out, "Skipped malformed: %s\n", strings.Join(rep.Skipped, ", "))
	}
	if err != nil {
		return err
	}
	if len(rep.Applied) == 0 {
		fmt.Fprintln(r.io.Out, "Nothing to restore.")
	}
	return nil
}

func runReset(ctx context.Context, r *runner, args []string) error {
	fs := r.flags()
	yes := fs.Bool("yes", false, "confirm erasing all expenses")
	if err := r.parse(fs, args); err != nil {
		return err
	}
	if !*yes {
		return usageErr("reset erases every expense; pass -yes to confirm")
	}
	if err := r.tr.Reset(ctx); err != nil {
		return err
	}
	fmt.Fprintln(r.io.Out, "All expenses erased; categories and budget restored to defaults.")
	return nil
}

func runDevice(_ context.Context, r *runner, _ []string) error {
	fmt.Fprintln(r.io.Out, r.tr.DeviceID())
	return nil
}
