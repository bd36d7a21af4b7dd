// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"payee-scan/internal/config"
	"payee-scan/internal/core"
	"payee-scan/internal/formatters"
	_ "payee-scan/internal/formatters/csv"
	_ "payee-scan/internal/formatters/json"
	_ "payee-scan/internal/formatters/text"
	_ "payee-scan/internal/formatters/yaml"
	"payee-scan/internal/help"
	"payee-scan/internal/observability"
	"payee-scan/internal/parallel"
	"payee-scan/internal/preprocessors"
	"payee-scan/internal/validators/account"
	"payee-scan/internal/validators/phone"
	"payee-scan/internal/version"
	"payee-scan/internal/web"
)

// Exit codes
const (
	exitOK        = 0
	exitError     = 1
	exitMalformed = 2
)

// maxStdinBytes bounds how much piped input is read
const maxStdinBytes = 10 << 20

// cliFlags holds command line flag values
type cliFlags struct {
	text          string
	inputFile     string
	country       string
	mode          string
	format        string
	configFile    string
	profileName   string
	rulesFile     string
	port          string
	workers       int
	batch         bool
	verbose       bool
	debug         bool
	noColor       bool
	web           bool
	listCountries bool
	listProfiles  bool
	showHelp      bool
	showVersion   bool
	set           map[string]bool
	args          []string
}

// finalConfiguration holds values resolved from config file, profile and flags
type finalConfiguration struct {
	country   string
	mode      core.Mode
	format    string
	noColor   bool
	debug     bool
	verbose   bool
	batch     bool
	workers   int
	separator string
	port      string
}

// streams bundles the process input and output so run can be tested
type streams struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], streams{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr})
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, s streams) int {
	flags, err := parseFlags(args, s.stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitMalformed
	}

	if flags.showVersion {
		fmt.Fprintln(s.stdout, version.Info())
		return exitOK
	}

	cfg := loadConfiguration(flags.configFile, s.stderr)

	if flags.listProfiles {
		listProfiles(cfg, s.stdout)
		return exitOK
	}
	if flags.profileName != "" {
		if err := cfg.ApplyProfile(flags.profileName); err != nil {
			fmt.Fprintf(s.stderr, "Error: %v\n", err)
			return exitMalformed
		}
	}
	if flags.rulesFile != "" {
		cfg.RulesFile = flags.rulesFile
	}

	final, err := resolveConfiguration(cfg, flags, s.stdout)
	if err != nil {
		fmt.Fprintf(s.stderr, "Error: %v\n", err)
		return exitMalformed
	}

	if os.Getenv("PAYEE_DEBUG") != "" {
		final.debug = true
	}
	// Validators read PAYEE_DEBUG to log rejected candidates
	if final.debug {
		os.Setenv("PAYEE_DEBUG", "1")
	}

	observer := observability.New(final.debug, s.stderr)
	if observer.DebugObserver != nil {
		observer.DebugObserver.LogDetail("main", fmt.Sprintf("Command line arguments: %v", args))
		observer.DebugObserver.LogDetail("main", fmt.Sprintf("Country: %s, mode: %s, format: %s", final.country, final.mode, final.format))
	}

	engine, err := core.BuildEngine(cfg)
	if err != nil {
		fmt.Fprintf(s.stderr, "Error: %v\n", err)
		return exitError
	}
	engine.SetObserver(observer)

	if flags.showHelp {
		showHelp(flags.args, final.noColor, engine, s.stdout)
		return exitOK
	}
	if flags.listCountries {
		help.NewSystemWithWriter(final.noColor, s.stdout).ShowCountriesHelp(engine.Registry())
		return exitOK
	}

	if flags.web {
		if flags.text != "" || flags.inputFile != "" || flags.batch {
			fmt.Fprintln(s.stderr, "Error: --web cannot be combined with --text, --file or --batch")
			return exitMalformed
		}
		server := web.NewWebServer(final.port, engine, cfg.Web.MaxBodyBytes, s.stdout)
		server.SetObserver(observer)
		if err := server.Start(ctx); err != nil {
			fmt.Fprintf(s.stderr, "Error: %v\n", err)
			return exitError
		}
		return exitOK
	}

	text, source, err := readInput(flags, s, observer)
	if err != nil {
		fmt.Fprintf(s.stderr, "Error: %v\n", err)
		if errors.Is(err, errNoInput) {
			return exitMalformed
		}
		return exitError
	}

	entries, err := extract(ctx, engine, observer, final, text, source)
	if err != nil {
		fmt.Fprintf(s.stderr, "Error: %v\n", err)
		if errors.Is(err, core.ErrMalformedInput) {
			return exitMalformed
		}
		return exitError
	}

	output, err := formatters.Export(final.format, entries, formatters.FormatterOptions{
		NoColor: final.noColor,
		Verbose: final.verbose,
	})
	if err != nil {
		fmt.Fprintf(s.stderr, "Error: %v\n", err)
		return exitError
	}
	fmt.Fprintln(s.stdout, output)
	return exitOK
}

func parseFlags(args []string, stderr io.Writer) (*cliFlags, error) {
	fs := flag.NewFlagSet("payee-scan", flag.ContinueOnError)
	fs.SetOutput(stderr)

	f := &cliFlags{set: map[string]bool{}}
	fs.StringVar(&f.text, "text", "", "Message text to parse")
	fs.StringVar(&f.inputFile, "file", "", "Read the message from a text or PDF file")
	fs.StringVar(&f.country, "country", "", "ISO 3166-1 alpha-2 country of the receiver")
	fs.StringVar(&f.mode, "mode", "", "Identifier to extract: phone or account")
	fs.StringVar(&f.format, "format", "", "Output format: text, json, yaml, csv")
	fs.StringVar(&f.configFile, "config", "", "Path to configuration file (YAML)")
	fs.StringVar(&f.profileName, "profile", "", "Profile name to use from config file")
	fs.StringVar(&f.rulesFile, "rules", "", "Country rule overrides (YAML)")
	fs.StringVar(&f.port, "port", "", "Port for web server")
	fs.IntVar(&f.workers, "workers", 0, "Workers used in batch mode")
	fs.BoolVar(&f.batch, "batch", false, "Treat input as several messages separated by '---' lines")
	fs.BoolVar(&f.verbose, "verbose", false, "Prefix each record with its message number, country and mode")
	fs.BoolVar(&f.debug, "debug", false, "Enable debug logging of scanning and validation")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&f.web, "web", false, "Start web server mode")
	fs.BoolVar(&f.listCountries, "list-countries", false, "List the supported countries and exit")
	fs.BoolVar(&f.listProfiles, "list-profiles", false, "List available profiles in config file")
	fs.BoolVar(&f.showHelp, "help", false, "Show help information")
	fs.BoolVar(&f.showVersion, "version", false, "Show version information")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	f.args = fs.Args()

	if len(f.args) > 0 && !f.showHelp {
		fmt.Fprintf(stderr, "Error: unexpected arguments: %s\n", strings.Join(f.args, " "))
		return nil, fmt.Errorf("unexpected arguments")
	}
	return f, nil
}

// loadConfiguration loads the configuration file or returns default config
func loadConfiguration(configFile string, stderr io.Writer) *config.Config {
	configPath := configFile
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: Error loading config file: %v\n", err)
		fmt.Fprintf(stderr, "Using default configuration\n")
		cfg, _ = config.LoadConfig("")
	}
	return cfg
}

// resolveConfiguration layers explicitly set flags over the config defaults
func resolveConfiguration(cfg *config.Config, flags *cliFlags, stdout io.Writer) (*finalConfiguration, error) {
	final := &finalConfiguration{
		country:   cfg.Defaults.Country,
		format:    cfg.Defaults.Format,
		noColor:   cfg.Defaults.NoColor,
		debug:     cfg.Defaults.Debug,
		verbose:   flags.verbose,
		batch:     flags.batch,
		workers:   cfg.Batch.Workers,
		separator: cfg.Batch.Separator,
		port:      cfg.Web.Port,
	}
	modeName := cfg.Defaults.Mode

	if flags.set["country"] {
		final.country = flags.country
	}
	if flags.set["mode"] {
		modeName = flags.mode
	}
	if flags.set["format"] {
		final.format = flags.format
	}
	if flags.set["no-color"] {
		final.noColor = flags.noColor
	}
	if flags.set["debug"] {
		final.debug = flags.debug
	}
	if flags.set["workers"] {
		if flags.workers < 1 {
			return nil, fmt.Errorf("--workers must be at least 1, got %d", flags.workers)
		}
		final.workers = flags.workers
	}
	if flags.set["port"] {
		final.port = flags.port
	}

	mode, err := core.ParseMode(modeName)
	if err != nil {
		return nil, err
	}
	final.mode = mode

	final.format = strings.ToLower(final.format)
	if _, ok := formatters.Get(final.format); !ok {
		return nil, fmt.Errorf("unknown format %q (available: %s)", final.format, strings.Join(formatters.List(), ", "))
	}

	if strings.TrimSpace(final.country) == "" && !flags.web && !flags.showHelp && !flags.listCountries {
		return nil, fmt.Errorf("--country is required")
	}

	// Colors only make sense on an interactive terminal
	if !isTerminalWriter(stdout) || os.Getenv("NO_COLOR") != "" {
		final.noColor = true
	}
	return final, nil
}

func listProfiles(cfg *config.Config, stdout io.Writer) {
	profiles := cfg.ListProfiles()
	if len(profiles) == 0 {
		fmt.Fprintln(stdout, "No profiles defined in configuration file.")
		return
	}
	fmt.Fprintln(stdout, "Available profiles:")
	for _, name := range profiles {
		profile := cfg.GetProfile(name)
		if profile != nil && profile.Description != "" {
			fmt.Fprintf(stdout, "  - %s: %s\n", name, profile.Description)
		} else {
			fmt.Fprintf(stdout, "  - %s\n", name)
		}
	}
}

func showHelp(args []string, noColor bool, engine *core.Engine, stdout io.Writer) {
	helpSystem := help.NewSystemWithWriter(noColor, stdout)
	helpSystem.RegisterProvider(phone.NewValidator())
	helpSystem.RegisterProvider(account.NewValidator())

	if len(args) == 0 {
		helpSystem.ShowGeneralHelp()
		return
	}
	switch strings.ToLower(args[0]) {
	case "countries":
		helpSystem.ShowCountriesHelp(engine.Registry())
	case "checks":
		helpSystem.ShowChecksHelp()
	default:
		if !helpSystem.ShowCheckHelp(args[0]) {
			fmt.Fprintln(stdout)
			helpSystem.ShowChecksHelp()
		}
	}
}

var errNoInput = errors.New("no input: pass --text, --file or pipe a message on stdin")

// readInput returns the message text and a short label for where it came from
func readInput(flags *cliFlags, s streams, observer *observability.StandardObserver) (string, string, error) {
	switch {
	case flags.text != "":
		return flags.text, "text", nil
	case flags.inputFile != "":
		content, err := preprocessors.NewPreprocessorManager(observer).ProcessFile(flags.inputFile)
		if err != nil {
			return "", "", err
		}
		return content.Text, content.Filename, nil
	}

	if s.stdin == nil || isTerminalReader(s.stdin) {
		return "", "", errNoInput
	}
	data, err := io.ReadAll(io.LimitReader(s.stdin, maxStdinBytes+1))
	if err != nil {
		return "", "", fmt.Errorf("failed to read stdin: %w", err)
	}
	if len(data) > maxStdinBytes {
		return "", "", fmt.Errorf("stdin exceeds %d bytes", maxStdinBytes)
	}
	return string(data), "stdin", nil
}

// extract runs a single message through the engine, or fans a batch out
// over the worker pool
func extract(ctx context.Context, engine *core.Engine, observer *observability.StandardObserver, final *finalConfiguration, text, source string) ([]formatters.Entry, error) {
	if !final.batch {
		res, err := engine.Extract(core.Request{Text: text, CountryCode: final.country, Mode: final.mode})
		if err != nil {
			return nil, err
		}
		return []formatters.Entry{{Source: source, Country: final.country, Mode: final.mode, Result: res}}, nil
	}

	messages := parallel.SplitMessages(text, final.separator)
	requests := make([]core.Request, len(messages))
	for i, msg := range messages {
		requests[i] = core.Request{Text: msg, CountryCode: final.country, Mode: final.mode}
	}

	var progress parallel.ProgressCallback
	if observer.DebugObserver != nil {
		progress = func(completed, total int) {
			observer.DebugObserver.LogProgress("main", completed, total)
		}
	}

	processor := parallel.NewParallelProcessor(final.workers, engine, observer)
	results, stats, err := processor.ProcessMessages(ctx, requests, progress)
	if err != nil {
		return nil, err
	}
	if observer.DebugObserver != nil {
		observer.DebugObserver.LogDetail("main", fmt.Sprintf("Batch: %d messages, %d valid, %d workers, %dms",
			stats.TotalMessages, stats.ValidMessages, stats.WorkerCount, stats.TotalDuration.Milliseconds()))
	}

	entries := make([]formatters.Entry, len(results))
	for i, r := range results {
		entries[i] = formatters.Entry{Index: r.Index, Source: source, Country: final.country, Mode: final.mode, Result: r.Result}
	}
	return entries, nil
}

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func isTerminalReader(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
