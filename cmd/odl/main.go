// Command odl builds Keck observing sequences from recipes or an
// instrument's standard calibrations and writes them as YAML, JSON or a
// summary table.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/litescript/odl/internal/block"
	"github.com/litescript/odl/internal/export"
	"github.com/litescript/odl/internal/logging"
	"github.com/litescript/odl/internal/recipe"
	"github.com/litescript/odl/internal/settings"
	"github.com/litescript/odl/internal/state"
	"github.com/litescript/odl/internal/version"
)

const minWatch = 1 * time.Second

// options is the parsed command line.
type options struct {
	configFile  string
	showVersion bool
	overrides   map[string]any
}

// flagKeys maps flag names to settings keys where they differ.
var flagKeys = map[string]string{
	"o": settings.KeyOutput,
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("odl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	d := settings.Defaults()
	opts := &options{overrides: map[string]any{}}
	fs.StringVar(&opts.configFile, "config", "", "Settings file (YAML, JSON or TOML)")
	fs.BoolVar(&opts.showVersion, "version", false, "Print version and exit")

	instrument := fs.String(settings.KeyInstrument, d.Instrument, "Instrument for cals-only runs (kcwi, mosfire, nires)")
	recipePath := fs.String(settings.KeyRecipe, d.Recipe, "Recipe file describing the observing blocks")
	cals := fs.Bool(settings.KeyCals, d.Cals, "Append the instrument's calibrations")
	seq := fs.Bool(settings.KeySeq, d.Seq, "Emit a target-less sequence instead of blocks")
	noInternal := fs.Bool(settings.KeyNoInternal, d.NoInternal, "Skip internal calibrations (arcs, bars, darks)")
	noDomeFlats := fs.Bool(settings.KeyNoDomeFlats, d.NoDomeFlats, "Skip dome flats")
	format := fs.String(settings.KeyFormat, d.Format, "Output format (yaml, json, table)")
	output := fs.String("o", d.Output, "Output file (default stdout, - for stdout)")
	logLevel := fs.String(settings.KeyLogLevel, d.LogLevel, "Log level (debug, info, warn, error)")
	watch := fs.Duration(settings.KeyWatch, d.Watch, "Rebuild the recipe at interval (e.g., 30s)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	values := map[string]any{
		settings.KeyInstrument:  *instrument,
		settings.KeyRecipe:      *recipePath,
		settings.KeyCals:        *cals,
		settings.KeySeq:         *seq,
		settings.KeyNoInternal:  *noInternal,
		settings.KeyNoDomeFlats: *noDomeFlats,
		settings.KeyFormat:      *format,
		settings.KeyOutput:      *output,
		settings.KeyLogLevel:    *logLevel,
		settings.KeyWatch:       *watch,
	}
	// Only flags given on the command line override file and environment.
	fs.Visit(func(f *flag.Flag) {
		key := f.Name
		if k, ok := flagKeys[key]; ok {
			key = k
		}
		if v, ok := values[key]; ok {
			opts.overrides[key] = v
		}
	})
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	if opts.showVersion {
		fmt.Println("odl", version.Version)
		return
	}

	cfg, err := settings.Load(opts.configFile, opts.overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	logger := logging.New(logging.ParseLevel(cfg.LogLevel))

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	stateCfg := state.DefaultConfig()
	if cfg.Watch > 0 {
		stateCfg.RefreshInterval = max(cfg.Watch, minWatch)
	}
	stateMgr := state.NewManager(stateCfg)

	if err := run(ctx, cfg, stateMgr, logger); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

// run builds once, or keeps rebuilding in watch mode until ctx is done.
func run(ctx context.Context, cfg *settings.Settings, stateMgr *state.Manager, logger *logging.Logger) error {
	if err := buildOnce(cfg, stateMgr, logger); err != nil {
		return err
	}
	if err := emit(cfg, stateMgr.Snapshot().Blocks, logger); err != nil {
		return err
	}
	if cfg.Watch == 0 {
		return nil
	}

	logger.Info("Watching %s every %v", cfg.Recipe, stateMgr.RefreshInterval())
	ticker := time.NewTicker(stateMgr.RefreshInterval())
	defer ticker.Stop()

	_, cursor := stateMgr.EventsSince(0)
	for {
		select {
		case <-ctx.Done():
			logger.Debug("Watch loop shutting down")
			return nil
		case <-ticker.C:
			if err := buildOnce(cfg, stateMgr, logger); err != nil {
				// Keep watching; the last good build stays current.
				logger.Warn("Rebuild failed: %v", err)
			}
			var fresh []state.Event
			fresh, cursor = stateMgr.EventsSince(cursor)
			if !changed(fresh) {
				continue
			}
			for _, e := range fresh {
				if e.Type != state.EventBuildFailed {
					logger.Info("%s #%d %s", e.Type, e.Index, firstNonEmpty(e.New, e.Old))
				}
			}
			if err := emit(cfg, stateMgr.Snapshot().Blocks, logger); err != nil {
				logger.Error("Write failed: %v", err)
			}
		}
	}
}

func changed(events []state.Event) bool {
	for _, e := range events {
		if e.Type != state.EventBuildFailed {
			return true
		}
	}
	return false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func buildOnce(cfg *settings.Settings, stateMgr *state.Manager, logger *logging.Logger) error {
	start := time.Now()
	list, err := build(cfg)
	dur := time.Since(start)
	stateMgr.Update(list, dur, err)
	if err != nil {
		return err
	}
	logger.Debug("Built %d blocks, %d exposures in %v", list.Len(), list.ExposureCount(), dur)
	return nil
}

// build creates the block list described by the settings.
func build(cfg *settings.Settings) (*block.ObservingBlockList, error) {
	calOpts := recipe.CalOptions{Internal: !cfg.NoInternal, DomeFlats: !cfg.NoDomeFlats}

	if cfg.Recipe == "" {
		return recipe.Cals(cfg.Instrument, calOpts)
	}

	r, err := recipe.Load(cfg.Recipe)
	if err != nil {
		return nil, err
	}
	if cfg.Instrument != "" {
		if _, err := recipe.Lookup(cfg.Instrument); err != nil {
			return nil, err
		}
		r.Instrument = cfg.Instrument
	}
	if cfg.Cals {
		r.Cals = true
	}
	return r.Build(calOpts)
}

// document converts the list to an export document, as a sequence if asked.
func document(cfg *settings.Settings, list *block.ObservingBlockList, now time.Time) (*export.Document, error) {
	if cfg.Seq {
		return export.Sequence(list.Sequence(), now)
	}
	return export.Blocks(list, now)
}

func emit(cfg *settings.Settings, list *block.ObservingBlockList, logger *logging.Logger) error {
	doc, err := document(cfg, list, time.Now().UTC())
	if err != nil {
		return err
	}

	if cfg.Output == "" || cfg.Output == "-" {
		styled := term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("NO_COLOR") == ""
		return doc.Write(os.Stdout, cfg.Format, styled)
	}

	f, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := doc.Write(f, cfg.Format, false); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", cfg.Output, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", cfg.Output, err)
	}
	logger.Info("Wrote %d blocks to %s", len(doc.Blocks), cfg.Output)
	return nil
}
