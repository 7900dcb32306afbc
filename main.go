package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gdamore/tcell/v2"
	"github.com/go-logr/logr"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"ztop/config"
	"ztop/dataset"
	"ztop/kstat"
	"ztop/ui"
	"ztop/view"
)

// Version will be set at build time
var Version = "dev"

const usageHeader = `Display ZFS datasets' I/O in real time.

Usage: ztop [options] [pool ...]

Options:
`

// options are the raw command line values. Only flags the user actually set
// override the config file.
type options struct {
	auto       bool
	children   bool
	depth      int
	filter     string
	interval   string
	reverse    bool
	sort       string
	configPath string
	batch      bool
	count      int
	help       bool
	version    bool
	pools      []string
}

func newFlagSet(o *options, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("ztop", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SortFlags = false
	fs.BoolVarP(&o.auto, "auto", "a", false, "only display datasets that are moving data")
	fs.BoolVarP(&o.children, "children", "c", false, "include child datasets' stats with their parents'")
	fs.IntVarP(&o.depth, "depth", "d", 0, "display datasets no more than this many levels deep")
	fs.StringVarP(&o.filter, "filter", "f", "", "display only datasets whose name matches this regular expression")
	fs.StringVarP(&o.interval, "time", "t", "", "update interval, in seconds or with a unit (250ms, 2s)")
	fs.BoolVarP(&o.reverse, "reverse", "r", false, "reverse the sort")
	fs.StringVarP(&o.sort, "sort", "s", "", "sort by the named column; the name must match the column header")
	fs.StringVar(&o.configPath, "config", "", "config file (default $"+config.EnvConfig+" or ~/.config/ztop/config.yaml)")
	fs.BoolVarP(&o.batch, "batch", "b", false, "print JSON lines instead of drawing a table")
	fs.IntVarP(&o.count, "count", "n", 0, "in batch mode, exit after this many samples")
	fs.BoolVarP(&o.help, "help", "h", false, "print this help")
	fs.BoolVar(&o.version, "version", false, "print the version")
	fs.Usage = func() {
		fmt.Fprint(stderr, usageHeader)
		fmt.Fprint(stderr, fs.FlagUsages())
	}
	return fs
}

// settings is the merged result of the config file and the command line.
type settings struct {
	interval time.Duration
	children bool
	pools    []string
	batch    bool
	count    int
	view     view.Options
}

// Purpose: Merge config file values with explicitly set flags.
// Key aspects: Flags win only when changed; every value is validated here.
// Upstream: run.
// Downstream: config.ParseInterval, view.ParseColumn, regexp.Compile.
func resolve(cfg *config.Config, fs *pflag.FlagSet, o *options) (settings, error) {
	s := settings{
		interval: time.Duration(cfg.Interval),
		children: cfg.Children,
		pools:    cfg.Pools,
		batch:    o.batch,
		count:    o.count,
		view: view.Options{
			Auto:    cfg.Auto,
			Depth:   cfg.Depth,
			Reverse: cfg.Reverse,
			Sort:    view.NoColumn,
		},
	}
	filter, sortName := cfg.Filter, cfg.Sort

	if fs.Changed("auto") {
		s.view.Auto = o.auto
	}
	if fs.Changed("children") {
		s.children = o.children
	}
	if fs.Changed("reverse") {
		s.view.Reverse = o.reverse
	}
	if fs.Changed("depth") {
		if o.depth < 1 {
			return s, errors.WithHint(errors.Newf("invalid depth %d", o.depth), "depth counts path components and starts at 1")
		}
		s.view.Depth = o.depth
	}
	if fs.Changed("time") {
		d, err := config.ParseInterval(o.interval)
		if err != nil {
			return s, err
		}
		s.interval = d
	}
	if s.interval <= 0 {
		return s, errors.Newf("interval must be positive, got %s", s.interval)
	}
	if fs.Changed("count") && o.count < 0 {
		return s, errors.Newf("invalid count %d", o.count)
	}
	if fs.Changed("filter") {
		filter = o.filter
	}
	if filter != "" {
		re, err := regexp.Compile(filter)
		if err != nil {
			return s, errors.Wrap(err, "invalid filter")
		}
		s.view.Filter = re
	}
	if fs.Changed("sort") {
		sortName = o.sort
	}
	if sortName != "" {
		col, err := view.ParseColumn(sortName)
		if err != nil {
			return s, err
		}
		s.view.Sort = col
	}
	if args := fs.Args(); len(args) > 0 {
		s.pools = args
	}
	return s, nil
}

// Purpose: Report whether stdout is a TTY for UI gating.
// Key aspects: Uses term.IsTerminal on stdout fd.
// Upstream: run, to pick batch or table output.
// Downstream: term.IsTerminal.
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// report prints err and any hints attached to it.
func report(w io.Writer, err error) {
	fmt.Fprintf(w, "ztop: %v\n", err)
	for _, h := range errors.GetAllHints(err) {
		fmt.Fprintf(w, "hint: %s\n", h)
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run is main with its exit status returned: 0 on success, 1 on a runtime
// failure, 2 on bad usage.
func run(args []string, stdout, stderr io.Writer) int {
	var o options
	fs := newFlagSet(&o, stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if o.help {
		fs.SetOutput(stdout)
		fmt.Fprint(stdout, usageHeader)
		fmt.Fprint(stdout, fs.FlagUsages())
		return 0
	}
	if o.version {
		fmt.Fprintf(stdout, "ztop %s\n", Version)
		return 0
	}

	cfg, err := config.LoadDefault(o.configPath, os.Getenv)
	if err != nil {
		report(stderr, err)
		return 1
	}
	s, err := resolve(cfg, fs, &o)
	if err != nil {
		report(stderr, err)
		return 2
	}
	if !s.batch && !isStdoutTTY() {
		s.batch = true
	}

	logger, closeLog, err := setupLogging(cfg.Logging, s.batch, stderr)
	if err != nil {
		report(stderr, err)
		return 1
	}
	defer closeLog()
	if cfg.LoadedFrom != "" {
		logger.Info("loaded configuration", "path", cfg.LoadedFrom)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ds := dataset.NewDataSource(kstat.NewSource(logger), dataset.SystemClock{}, s.pools, logger)
	ds.SetChildren(s.children)
	// Pool and kernel problems surface here, before the terminal is taken over.
	if err := ds.Refresh(ctx); err != nil {
		report(stderr, err)
		return 1
	}
	state := view.New(ds, s.view)

	if s.batch {
		err = ui.NewBatch(state, stdout, s.interval, s.count, logger).Run(ctx)
	} else {
		err = runTable(ctx, state, s.interval, cfg.UI, logger)
	}
	if err != nil {
		logger.Error(err, "session ended")
		report(stderr, err)
		return 1
	}
	return 0
}

// Purpose: Run the interactive table until the user quits.
// Key aspects: Owns the tcell screen; restores the terminal before returning.
// Upstream: run.
// Downstream: ui.NewTable, ui.NewScreenEvents, ui.Session.Run.
func runTable(ctx context.Context, state *view.State, interval time.Duration, cfg config.UIConfig, logger logr.Logger) error {
	header, err := config.ParseColor(cfg.HeaderColor)
	if err != nil {
		return err
	}
	selected, err := config.ParseColor(cfg.SelectedColor)
	if err != nil {
		return err
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return errors.Wrap(err, "open terminal")
	}
	if err := screen.Init(); err != nil {
		return errors.Wrap(err, "init terminal")
	}
	defer screen.Fini()
	events := ui.NewScreenEvents(screen)
	defer events.Close()

	metrics := ui.NewMetrics()
	table := ui.NewTable(screen, ui.TableOptions{HeaderColor: header, SelectedColor: selected})
	err = ui.NewSession(state, events, table, interval, metrics, logger).Run(ctx)
	r := metrics.RenderSnapshot()
	logger.V(1).Info("render latency", "p50", r.P50, "p99", r.P99, "frames", r.N)
	return err
}
