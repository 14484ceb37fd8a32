// Package main is the entry point for the gridstorm command.
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

	"github.com/dshills/gridstorm/internal/config"
	"github.com/dshills/gridstorm/internal/engine"
	"github.com/dshills/gridstorm/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// errUsage marks errors caused by bad arguments; usage is printed for them.
var errUsage = errors.New("usage")

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

// options holds the global flags.
type options struct {
	configPath string
	logLevel   string
	logFormat  string
	delimiter  string
	output     string
	format     string
	mode       string
	matchCase  bool
	backward   bool
}

// app is what a command runs against.
type app struct {
	opts   options
	cfg    *config.Config
	logger *slog.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("gridstorm", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	var showVersion bool
	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file (.toml, .yaml)")
	fs.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error, off)")
	fs.StringVar(&opts.logFormat, "log-format", "", "Log format (text, json)")
	fs.StringVar(&opts.delimiter, "delimiter", "", "Cell delimiter: a character or tab, comma, semicolon, pipe")
	fs.StringVar(&opts.delimiter, "d", "", "Cell delimiter (shorthand)")
	fs.StringVar(&opts.output, "o", "", "Output path (default: edit in place)")
	fs.StringVar(&opts.format, "format", "", "Export format (html, markdown, json)")
	fs.StringVar(&opts.mode, "mode", "contains", "Search mode (contains, exact, regex)")
	fs.BoolVar(&opts.matchCase, "case", false, "Match case when searching")
	fs.BoolVar(&opts.backward, "backward", false, "Search from the end towards the start")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if showVersion {
		fmt.Fprintf(stdout, "gridstorm %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return 0
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return 2
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", rest[0])
		fs.Usage()
		return 2
	}

	a, err := newApp(opts, stdin, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if err := cmd.run(ctx, a, rest[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "Usage: gridstorm [options] %s %s\n", rest[0], cmd.args)
			return 2
		}
		if errors.Is(err, context.Canceled) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// newApp loads configuration and applies flag overrides on top of it.
func newApp(opts options, stdin io.Reader, stdout, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Logging.Format = opts.logFormat
	}
	if opts.delimiter != "" {
		cfg.Document.Delimiter = opts.delimiter
	}
	if opts.format != "" {
		cfg.Export.Format = opts.format
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &app{
		opts:   opts,
		cfg:    cfg,
		logger: logging.Setup(cfg.Logging.Level, cfg.Logging.Format, stderr),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}, nil
}

// open loads the document at path, showing progress on a terminal.
func (a *app) open(path string) (*engine.Document, error) {
	opts, err := a.cfg.DocumentOptions(a.logger)
	if err != nil {
		return nil, err
	}
	doc := engine.New(opts...)

	bar := newProgressBar(a.stderr, "Indexing")
	err = doc.Load(path, bar.Update)
	bar.Done()
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// save writes doc to the -o path, or back to its own file.
func (a *app) save(doc *engine.Document) error {
	path := a.opts.output
	if path == "" {
		path = doc.Path()
	}
	return doc.Save(path)
}

func usage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintf(w, "gridstorm - edit large delimited text files\n\n")
	fmt.Fprintf(w, "Usage: gridstorm [options] <command> <file> [args...]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, name := range commandNames() {
		c := commands[name]
		fmt.Fprintf(w, "  %-11s %s\n", name, c.help)
	}
	fmt.Fprintf(w, "\nOptions:\n")
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  gridstorm info data.csv\n")
	fmt.Fprintf(w, "  gridstorm set data.csv 3 2 \"new value\"\n")
	fmt.Fprintf(w, "  gridstorm -mode regex replace data.csv '(\\d+)-(\\d+)' '$2/$1'\n")
	fmt.Fprintf(w, "  gridstorm -o report.md export data.csv\n")
}
