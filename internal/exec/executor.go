// Package exec provides process execution with context cancellation, timeouts,
// and retry for the external tools the CLI wraps.
package exec

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"
	"time"

	"github.com/kbforge/kbforge/internal/errors"
	"github.com/kbforge/kbforge/internal/output"
)

// Options configures process execution behavior.
type Options struct {
	// Timeout for process execution
	Timeout time.Duration

	// Environment variables (if nil, inherits current environment)
	Environment map[string]string

	// Working directory (if empty, uses current directory)
	WorkingDir string

	// Whether to capture stdout and stderr instead of inheriting them
	CaptureOutput bool

	// Whether this command owns the terminal (no timeout)
	Interactive bool

	// Retry configuration
	Retry RetryOptions
}

// RetryOptions configures retry behavior for process execution.
type RetryOptions struct {
	// Number of attempts before giving up
	MaxAttempts int

	// Base delay between retries
	BaseDelay time.Duration

	// Maximum delay between retries
	MaxDelay time.Duration

	// Exponential backoff multiplier
	BackoffMultiplier float64

	// Retry only on these exit codes (empty retries on any failure)
	RetryOnExitCodes []int
}

// Result holds the result of process execution.
type Result struct {
	// Exit code of the process
	ExitCode int

	// Standard output (if captured)
	Stdout string

	// Standard error (if captured)
	Stderr string

	// Execution duration
	Duration time.Duration

	// Whether the process was killed due to timeout
	TimedOut bool

	// Number of retry attempts made
	RetryAttempts int
}

// Executor runs external commands.
type Executor struct {
	defaultOptions Options
}

// New creates a new Executor with default options.
func New(options Options) *Executor {
	if options.Timeout == 0 {
		options.Timeout = 30 * time.Second
	}
	if options.Retry.MaxAttempts == 0 {
		options.Retry.MaxAttempts = 1
	}
	if options.Retry.BaseDelay == 0 {
		options.Retry.BaseDelay = 100 * time.Millisecond
	}
	if options.Retry.MaxDelay == 0 {
		options.Retry.MaxDelay = 5 * time.Second
	}
	if options.Retry.BackoffMultiplier == 0 {
		options.Retry.BackoffMultiplier = 2.0
	}

	return &Executor{defaultOptions: options}
}

// Execute runs a command with the given options merged over the defaults.
func (e *Executor) Execute(ctx context.Context, command string, args []string, options *Options) (*Result, error) {
	finalOptions := e.defaultOptions
	if options != nil {
		finalOptions = mergeOptions(finalOptions, *options)
	}

	return e.executeWithRetry(ctx, command, args, finalOptions)
}

// executeWithRetry handles retry logic for command execution.
func (e *Executor) executeWithRetry(ctx context.Context, command string, args []string, options Options) (*Result, error) {
	var lastResult *Result
	var lastError error

	delay := options.Retry.BaseDelay

	for attempt := 0; attempt < options.Retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}

			delay = min(time.Duration(float64(delay)*options.Retry.BackoffMultiplier), options.Retry.MaxDelay)

			output.Debug("Retrying command", map[string]any{
				"command": command,
				"attempt": attempt + 1,
			})
		}

		result, err := e.executeSingle(ctx, command, args, options)
		if result != nil {
			result.RetryAttempts = attempt
		}

		if err == nil && result.ExitCode == 0 {
			return result, nil
		}

		lastResult = result
		lastError = err

		if result != nil && len(options.Retry.RetryOnExitCodes) > 0 {
			if !slices.Contains(options.Retry.RetryOnExitCodes, result.ExitCode) {
				break
			}
		}
	}

	if lastError != nil {
		if _, ok := lastError.(*errors.Error); ok {
			return lastResult, lastError
		}
		return lastResult, errors.Wrap(lastError, errors.ToolFailure, "Command execution failed").
			WithDetails(fmt.Sprintf("Command: %s %s", command, strings.Join(args, " "))).
			WithSuggestion("Check that the command is installed and in your PATH")
	}

	return lastResult, nil
}

// executeSingle executes a command once without retry logic.
func (e *Executor) executeSingle(ctx context.Context, command string, args []string, options Options) (*Result, error) {
	startTime := time.Now()

	output.Debug("Running command", map[string]any{
		"command": command,
		"args":    strings.Join(args, " "),
	})

	execCtx := ctx
	cancel := context.CancelFunc(func() {})
	if !options.Interactive {
		execCtx, cancel = context.WithTimeout(ctx, options.Timeout)
	}
	defer cancel()

	cmd := exec.CommandContext(execCtx, command, args...)

	if options.WorkingDir != "" {
		cmd.Dir = options.WorkingDir
	}

	if options.Environment != nil {
		env := os.Environ()
		for key, value := range options.Environment {
			env = append(env, fmt.Sprintf("%s=%s", key, value))
		}
		cmd.Env = env
	}

	result := &Result{}

	if options.CaptureOutput {
		var stdout, stderr strings.Builder
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		err := cmd.Run()

		result.Stdout = stdout.String()
		result.Stderr = stderr.String()
		result.Duration = time.Since(startTime)

		return e.handleCommandResult(err, result, execCtx, options)
	}

	// Inherit parent streams so tools can print progress and prompt.
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	err := cmd.Run()
	result.Duration = time.Since(startTime)

	return e.handleCommandResult(err, result, execCtx, options)
}

// handleCommandResult processes the result of command execution.
func (e *Executor) handleCommandResult(err error, result *Result, ctx context.Context, options Options) (*Result, error) {
	if ctx.Err() != nil {
		result.TimedOut = ctx.Err() == context.DeadlineExceeded
		if result.TimedOut {
			return result, errors.New(errors.ToolTimeout, "Command execution timed out").
				WithDetails(fmt.Sprintf("Timeout: %v", options.Timeout))
		}
		return result, errors.Wrap(ctx.Err(), errors.ToolFailure, "Command execution cancelled")
	}

	if exitError, ok := err.(*exec.ExitError); ok {
		result.ExitCode = exitError.ExitCode()
		return result, nil
	}
	if err != nil {
		return result, errors.Wrap(err, errors.ToolFailure, "Failed to execute command")
	}

	result.ExitCode = 0
	return result, nil
}

// mergeOptions merges execution options
func mergeOptions(base Options, override Options) Options {
	result := base

	if override.Timeout != 0 {
		result.Timeout = override.Timeout
	}
	if override.Environment != nil {
		result.Environment = override.Environment
	}
	if override.WorkingDir != "" {
		result.WorkingDir = override.WorkingDir
	}
	if override.CaptureOutput {
		result.CaptureOutput = true
	}
	if override.Interactive {
		result.Interactive = true
	}
	if override.Retry.MaxAttempts > 0 {
		result.Retry.MaxAttempts = override.Retry.MaxAttempts
	}
	if override.Retry.BaseDelay > 0 {
		result.Retry.BaseDelay = override.Retry.BaseDelay
	}
	if override.Retry.MaxDelay > 0 {
		result.Retry.MaxDelay = override.Retry.MaxDelay
	}
	if override.Retry.BackoffMultiplier > 0 {
		result.Retry.BackoffMultiplier = override.Retry.BackoffMultiplier
	}
	if len(override.Retry.RetryOnExitCodes) > 0 {
		result.Retry.RetryOnExitCodes = override.Retry.RetryOnExitCodes
	}

	return result
}
