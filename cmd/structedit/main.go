// Package main is the entry point for the structedit command.
//
// structedit reads an XML document, applies a Lua edit script to it and
// writes the result. With -watch it keeps running and reapplies the script
// whenever the document or the script changes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/structedit/internal/config"
	"github.com/dshills/structedit/internal/engine"
	"github.com/dshills/structedit/internal/script"
	"github.com/dshills/structedit/internal/watch"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// options holds the command line settings.
type options struct {
	ConfigPath string
	ScriptPath string
	OutPath    string
	LogLevel   string
	ReadOnly   bool
	Watch      bool
	Input      string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading config: %v\n", err)
		return 1
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.ReadOnly {
		cfg.Editor.ReadOnly = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	// Handle signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.Watch {
		err = watchLoop(ctx, cfg, opts, logger)
	} else {
		err = process(ctx, cfg, opts, logger)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (.toml, .yaml)")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.ScriptPath, "script", "", "Lua edit script to apply")
	flag.StringVar(&opts.ScriptPath, "s", "", "Lua edit script to apply (shorthand)")
	flag.StringVar(&opts.OutPath, "o", "", "Output file (default stdout)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.ReadOnly, "readonly", false, "Reject edits")
	flag.BoolVar(&opts.Watch, "watch", false, "Reapply the script when the input or script changes")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "structedit - structured document editor\n\n")
		fmt.Fprintf(os.Stderr, "Usage: structedit [options] [file.xml]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  structedit -s fix.lua doc.xml          Apply fix.lua, print the result\n")
		fmt.Fprintf(os.Stderr, "  structedit -s fix.lua -o out.xml doc.xml\n")
		fmt.Fprintf(os.Stderr, "  structedit -watch -s fix.lua -o out.xml doc.xml\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("structedit %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(2)
	}
	opts.Input = flag.Arg(0)
	return opts
}

// engineOptions maps configuration to engine options.
func engineOptions(cfg *config.Config, logger *slog.Logger) []engine.Option {
	opts := []engine.Option{
		engine.WithMaxUndoEntries(cfg.Editor.MaxUndoEntries),
		engine.WithPreserve(cfg.WhiteSpace.Preserve...),
		engine.WithLogger(logger),
	}
	if cfg.Editor.ReadOnly {
		opts = append(opts, engine.WithReadOnly())
	}
	return opts
}

// process loads the input, applies the script and writes the output once.
func process(ctx context.Context, cfg *config.Config, opts options, logger *slog.Logger) error {
	in, err := openInput(opts.Input)
	if err != nil {
		return err
	}
	eng, err := engine.NewFromReader(in, engineOptions(cfg, logger)...)
	in.Close()
	if err != nil {
		return err
	}
	defer eng.Close()

	if opts.ScriptPath != "" {
		rt := script.New(eng,
			script.WithCallLimit(int64(cfg.Script.CallLimit)),
			script.WithLogger(logger),
			script.WithOutput(os.Stderr),
		)
		defer rt.Close()

		runCtx := ctx
		if cfg.Script.Timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(ctx, cfg.Script.Timeout)
			defer cancel()
		}
		if err := rt.RunFile(runCtx, opts.ScriptPath); err != nil {
			return err
		}
		logger.Info("script applied", "script", opts.ScriptPath, "calls", rt.Calls())
	}
	if err := eng.CheckNormalized(); err != nil {
		logger.Warn("document left with adjacent or empty text", "error", err)
	}

	return writeOutput(opts.OutPath, eng)
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	return f, nil
}

func writeOutput(path string, eng *engine.Engine) error {
	if path == "" || path == "-" {
		if err := eng.WriteTo(os.Stdout); err != nil {
			return err
		}
		_, err := fmt.Fprintln(os.Stdout)
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	if err := eng.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// watchLoop runs process once and again after every change to the input or
// script file, until ctx is done.
func watchLoop(ctx context.Context, cfg *config.Config, opts options, logger *slog.Logger) error {
	if opts.Input == "" || opts.Input == "-" || opts.ScriptPath == "" {
		return errors.New("-watch needs an input file and a script")
	}
	if opts.OutPath == "" || opts.OutPath == opts.Input {
		return errors.New("-watch needs an output file distinct from the input")
	}

	w, err := watch.New()
	if err != nil {
		return err
	}
	defer w.Close()
	for _, p := range []string{opts.Input, opts.ScriptPath} {
		if err := w.Add(p); err != nil {
			return fmt.Errorf("watching %s: %w", p, err)
		}
	}

	apply := func() {
		if err := process(ctx, cfg, opts, logger); err != nil {
			logger.Error("apply failed", "error", err)
			return
		}
		logger.Info("output written", "path", opts.OutPath)
	}
	apply()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			logger.Debug("change detected", "path", ev.Path)
			apply()
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}
