package exec

import (
	"bytes"
	"context"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/kbforge/kbforge/internal/errors"
	"github.com/kbforge/kbforge/internal/output"
)

func TestNew_Defaults(t *testing.T) {
	executor := New(Options{})

	if executor.defaultOptions.Timeout != 30*time.Second {
		t.Errorf("Expected default timeout of 30s, got %v", executor.defaultOptions.Timeout)
	}
	if executor.defaultOptions.Retry.MaxAttempts != 1 {
		t.Errorf("Expected 1 attempt by default, got %d", executor.defaultOptions.Retry.MaxAttempts)
	}
	if executor.defaultOptions.Retry.BackoffMultiplier != 2.0 {
		t.Errorf("Expected backoff multiplier 2.0, got %f", executor.defaultOptions.Retry.BackoffMultiplier)
	}
}

func TestExecute_CaptureOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on POSIX echo")
	}

	executor := New(Options{CaptureOutput: true})

	result, err := executor.Execute(context.Background(), "echo", []string{"hello"}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", result.ExitCode)
	}
	if strings.TrimSpace(result.Stdout) != "hello" {
		t.Errorf("Expected stdout %q, got %q", "hello", result.Stdout)
	}
}

func TestExecute_NonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on POSIX false")
	}

	executor := New(Options{CaptureOutput: true})

	result, err := executor.Execute(context.Background(), "false", nil, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.ExitCode == 0 {
		t.Error("Expected a non-zero exit code")
	}
}

func TestExecute_MissingCommand(t *testing.T) {
	executor := New(Options{CaptureOutput: true})

	_, err := executor.Execute(context.Background(), "definitely-not-a-command-xyz", nil, nil)
	if err == nil {
		t.Fatal("Expected an error for a missing command")
	}
	if !errors.IsType(err, errors.ToolFailure) {
		t.Errorf("Expected a tool failure, got type %q", errors.GetType(err))
	}
}

func TestExecute_Timeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on POSIX sleep")
	}

	executor := New(Options{CaptureOutput: true})

	result, err := executor.Execute(context.Background(), "sleep", []string{"5"}, &Options{
		Timeout: 50 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("Expected a timeout error")
	}
	if !errors.IsType(err, errors.ToolTimeout) {
		t.Errorf("Expected a timeout error type, got %q", errors.GetType(err))
	}
	if result != nil && !result.TimedOut {
		t.Error("Expected the result to be marked as timed out")
	}
}

func TestExecute_RetryCountsAttempts(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on POSIX false")
	}

	executor := New(Options{CaptureOutput: true})

	result, err := executor.Execute(context.Background(), "false", nil, &Options{
		Retry: RetryOptions{
			MaxAttempts: 3,
			BaseDelay:   time.Millisecond,
		},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.RetryAttempts != 2 {
		t.Errorf("Expected 2 retry attempts, got %d", result.RetryAttempts)
	}
}

func TestMergeOptions(t *testing.T) {
	base := Options{
		Timeout:       30 * time.Second,
		WorkingDir:    "/base",
		CaptureOutput: false,
		Retry:         RetryOptions{MaxAttempts: 1, BaseDelay: time.Second},
	}

	merged := mergeOptions(base, Options{
		Timeout:       time.Minute,
		CaptureOutput: true,
		Retry:         RetryOptions{MaxAttempts: 5},
	})

	if merged.Timeout != time.Minute {
		t.Errorf("Expected timeout override, got %v", merged.Timeout)
	}
	if merged.WorkingDir != "/base" {
		t.Errorf("Expected base working dir to survive, got %q", merged.WorkingDir)
	}
	if !merged.CaptureOutput {
		t.Error("Expected capture output override")
	}
	if merged.Retry.MaxAttempts != 5 {
		t.Errorf("Expected retry attempts override, got %d", merged.Retry.MaxAttempts)
	}
	if merged.Retry.BaseDelay != time.Second {
		t.Errorf("Expected base retry delay to survive, got %v", merged.Retry.BaseDelay)
	}
}

func TestExecute_DebugLogging(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on POSIX echo")
	}

	var buf bytes.Buffer
	prev := output.GetGlobalLogger()
	output.SetGlobalLogger(output.NewLogger().SetLevel(output.LogLevelDebug).SetOutputs(&buf))
	defer output.SetGlobalLogger(prev)

	executor := New(Options{CaptureOutput: true})
	if _, err := executor.Execute(context.Background(), "echo", []string{"hello"}, nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	logged := buf.String()
	if !strings.Contains(logged, "Running command") || !strings.Contains(logged, "command=echo") {
		t.Errorf("Expected a debug entry for the command, got %q", logged)
	}
}

func TestExecute_RetryLogging(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on POSIX false")
	}

	var buf bytes.Buffer
	prev := output.GetGlobalLogger()
	output.SetGlobalLogger(output.NewLogger().SetLevel(output.LogLevelDebug).SetOutputs(&buf))
	defer output.SetGlobalLogger(prev)

	executor := New(Options{CaptureOutput: true})
	_, err := executor.Execute(context.Background(), "false", nil, &Options{
		Retry: RetryOptions{MaxAttempts: 2, BaseDelay: time.Millisecond},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.Contains(buf.String(), "Retrying command") {
		t.Errorf("Expected a debug entry for the retry, got %q", buf.String())
	}
}
