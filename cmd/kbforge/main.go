// Kbforge - A command line tool for managing keyboard firmware config repos
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/kbforge/kbforge/internal/config"
	"github.com/kbforge/kbforge/internal/errors"
	"github.com/kbforge/kbforge/internal/menu"
	"github.com/kbforge/kbforge/internal/output"
)

// Build information - set by linker flags
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// command is one top-level CLI verb. The full set is assembled in run; there
// is no global registry.
type command struct {
	name    string
	summary string
	run     func(a *app, args []string) error
}

// app carries the state shared by every command.
type app struct {
	ctx       context.Context
	formatter *output.Formatter
	config    *config.Config
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		os.Exit(handleError(err))
	}
}

func run(args []string) error {
	configPath := ""
	verbose := false
	forceHome := false

	// Global flags may appear before the command name.
globals:
	for len(args) > 0 {
		switch args[0] {
		case "--verbose":
			verbose = true
			args = args[1:]
		case "--home":
			forceHome = true
			args = args[1:]
		case "--config":
			if len(args) < 2 {
				return errors.ValidationError("--config", "", "a file path is required")
			}
			configPath = args[1]
			args = args[2:]
		case "--help", "-h":
			printUsage()
			return nil
		case "--version", "-v":
			printVersion()
			return nil
		default:
			break globals
		}
	}

	setupLogging(verbose)

	if len(args) == 0 {
		printUsage()
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg.SetForceHome(forceHome)

	a := &app{
		ctx:       context.Background(),
		formatter: output.NewFormatter(os.Stdout),
		config:    cfg,
	}

	name := args[0]
	for _, cmd := range commands() {
		if cmd.name == name {
			return cmd.run(a, args[1:])
		}
	}

	return errors.New(errors.ValidationFailed, fmt.Sprintf("Unknown command %q", name)).
		WithSuggestion(`Run "kbforge help" to see the available commands`)
}

func commands() []command {
	return []command{
		{"keyboard", "Add, remove, or list keyboards in the build", runKeyboard},
		{"module", "Add, remove, or list Zephyr modules", runModule},
		{"config", "Get and set kbforge settings", runConfig},
		{"update", "Fetch the latest keyboard data", runUpdate},
		{"version", "Show version information", runVersion},
		{"help", "Show this help message", runHelp},
	}
}

// setupLogging routes logs to stderr and, when KBFORGE_LOG names a file, to
// that file as well.
func setupLogging(verbose bool) {
	logger := output.NewLogger()
	if verbose {
		logger.SetLevel(output.LogLevelDebug)
	}

	if path := os.Getenv("KBFORGE_LOG"); path != "" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			logger.SetOutputs(os.Stderr, file)
		}
	}

	output.SetGlobalLogger(logger)
}

func runVersion(_ *app, _ []string) error {
	printVersion()
	return nil
}

func runHelp(_ *app, _ []string) error {
	printUsage()
	return nil
}

// runUpdate fetches the latest modules and keyboard data with west.
func runUpdate(a *app, args []string) error {
	r, err := a.config.Repo()
	if err != nil {
		return err
	}

	_, err = r.RunWest(a.ctx, false, append([]string{"update"}, args...)...)
	return err
}

func printVersion() {
	formatter := output.NewFormatter(os.Stdout)

	formatter.Header(fmt.Sprintf("Kbforge %s", version))

	table := formatter.Table()
	table.Headers("Component", "Version")
	table.Row("Kbforge", version)
	table.Row("Git commit", commit)
	table.Row("Build date", date)
	table.Row("Go version", runtime.Version())
	table.Row("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH))
	table.Print()
}

func printUsage() {
	formatter := output.NewFormatter(os.Stdout)

	formatter.Header("Kbforge - Keyboard Firmware Config Manager")

	fmt.Println("Usage:")
	fmt.Println("  kbforge [OPTIONS] COMMAND [ARGS...]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config PATH          Use an alternate settings file")
	fmt.Println("  --home                 Use the registered repo even inside another repo")
	fmt.Println("  --verbose              Enable debug logging")
	fmt.Println("  -v, --version          Show version information")
	fmt.Println("  -h, --help             Show this help message")
	fmt.Println()
	fmt.Println("Commands:")
	for _, cmd := range commands() {
		fmt.Printf("  %-22s %s\n", cmd.name, cmd.summary)
	}
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  kbforge keyboard add               # Pick a keyboard interactively")
	fmt.Println("  kbforge keyboard add -k corne      # Add a keyboard by ID")
	fmt.Println("  kbforge module add <git-url>       # Track an extra Zephyr module")
	fmt.Println("  kbforge config user.home ~/zmk-config")
	fmt.Println()
	fmt.Println("Interactive Menu Controls:")
	fmt.Println("  ↑/↓           Navigate up/down")
	fmt.Println("  Enter         Confirm selection")
	fmt.Println("  Esc           Cancel")
	fmt.Println("  Typing        Filter the list")
}

func handleError(err error) int {
	// A cancelled menu is a deliberate exit, not a failure to report.
	if menu.IsCancelled(err) {
		return 1
	}

	formatter := output.NewFormatter(os.Stderr)

	if kbErr, ok := err.(*errors.Error); ok {
		formatter.Error("%s", kbErr.Message)
		if kbErr.Details != "" {
			formatter.Dim("%s", kbErr.Details)
		}
		for _, suggestion := range kbErr.Suggestions {
			formatter.Info("%s", suggestion)
		}
	} else {
		formatter.Error("Unexpected error: %v", err)
	}
	return 1
}
