package output

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"sort"
	"strings"
	"time"
)

// LogLevel represents the importance level of a log message
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LogFormat represents the output format for logs
type LogFormat int

const (
	LogFormatText LogFormat = iota
	LogFormatJSON
)

// LogEntry represents a single log entry
type LogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     LogLevel       `json:"level"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Logger handles structured logging with multiple outputs and formats
type Logger struct {
	level     LogLevel
	format    LogFormat
	outputs   []io.Writer
	fields    map[string]any
	formatter *Formatter
}

// NewLogger creates a new structured logger writing to stderr
func NewLogger() *Logger {
	return &Logger{
		level:     LogLevelWarn,
		format:    LogFormatText,
		outputs:   []io.Writer{os.Stderr},
		fields:    make(map[string]any),
		formatter: NewFormatter(os.Stderr),
	}
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level LogLevel) *Logger {
	l.level = level
	return l
}

// SetFormat sets the output format (text or JSON)
func (l *Logger) SetFormat(format LogFormat) *Logger {
	l.format = format
	return l
}

// SetOutputs replaces all output writers
func (l *Logger) SetOutputs(outputs ...io.Writer) *Logger {
	l.outputs = outputs
	return l
}

// WithField returns a logger that includes the field in every entry
func (l *Logger) WithField(key string, value any) *Logger {
	newLogger := &Logger{
		level:     l.level,
		format:    l.format,
		outputs:   l.outputs,
		fields:    make(map[string]any),
		formatter: l.formatter,
	}
	maps.Copy(newLogger.fields, l.fields)
	newLogger.fields[key] = value
	return newLogger
}

// WithError adds an error field
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

// log is the internal logging method
func (l *Logger) log(level LogLevel, message string, fields ...map[string]any) {
	if level < l.level {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Fields:    make(map[string]any),
	}

	maps.Copy(entry.Fields, l.fields)
	for _, fieldMap := range fields {
		maps.Copy(entry.Fields, fieldMap)
	}
	if len(entry.Fields) == 0 {
		entry.Fields = nil
	}

	l.writeEntry(entry)
}

// writeEntry writes a log entry to all configured outputs
func (l *Logger) writeEntry(entry LogEntry) {
	var output string

	switch l.format {
	case LogFormatJSON:
		if data, err := json.Marshal(entry); err == nil {
			output = string(data) + "\n"
		} else {
			output = fmt.Sprintf(`{"level":"ERROR","message":"Failed to marshal log entry: %v"}%s`, err, "\n")
		}
	case LogFormatText:
		output = l.formatTextEntry(entry)
	}

	for _, w := range l.outputs {
		fmt.Fprint(w, output)
	}
}

// formatTextEntry formats a log entry as human-readable text
func (l *Logger) formatTextEntry(entry LogEntry) string {
	var parts []string

	parts = append(parts, entry.Timestamp.Format("15:04:05"))
	parts = append(parts, l.formatLogLevel(entry.Level))
	parts = append(parts, entry.Message)

	if len(entry.Fields) > 0 {
		parts = append(parts, l.formatFields(entry.Fields))
	}

	return strings.Join(parts, " ") + "\n"
}

// formatLogLevel formats the log level with appropriate colors
func (l *Logger) formatLogLevel(level LogLevel) string {
	var color Color
	var style Style

	switch level {
	case LogLevelDebug:
		color, style = l.formatter.theme.Muted, StyleDim
	case LogLevelInfo:
		color, style = l.formatter.theme.Info, StyleNormal
	case LogLevelWarn:
		color, style = l.formatter.theme.Warning, StyleBold
	case LogLevelError:
		color, style = l.formatter.theme.Error, StyleBold
	default:
		color, style = l.formatter.theme.Muted, StyleNormal
	}

	return l.formatter.colorize(fmt.Sprintf("[%s]", level), color, style)
}

// formatFields formats the log fields in sorted key order
func (l *Logger) formatFields(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var fieldPairs []string
	for _, k := range keys {
		fieldPairs = append(fieldPairs, fmt.Sprintf("%s=%v", k, fields[k]))
	}

	return l.formatter.colorize(fmt.Sprintf("[%s]", strings.Join(fieldPairs, " ")), l.formatter.theme.Secondary, StyleDim)
}

// Debug logs a debug message
func (l *Logger) Debug(message string, fields ...map[string]any) {
	l.log(LogLevelDebug, message, fields...)
}

// Info logs an info message
func (l *Logger) Info(message string, fields ...map[string]any) {
	l.log(LogLevelInfo, message, fields...)
}

// Warn logs a warning message
func (l *Logger) Warn(message string, fields ...map[string]any) {
	l.log(LogLevelWarn, message, fields...)
}

// Error logs an error message
func (l *Logger) Error(message string, fields ...map[string]any) {
	l.log(LogLevelError, message, fields...)
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...any) {
	l.Debug(fmt.Sprintf(format, args...))
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...any) {
	l.Info(fmt.Sprintf(format, args...))
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...any) {
	l.Warn(fmt.Sprintf(format, args...))
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...any) {
	l.Error(fmt.Sprintf(format, args...))
}

// Global logger instance
var globalLogger = NewLogger()

// SetGlobalLogger sets the global logger instance
func SetGlobalLogger(logger *Logger) {
	globalLogger = logger
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	return globalLogger
}

func Debug(message string, fields ...map[string]any) {
	globalLogger.Debug(message, fields...)
}

func Info(message string, fields ...map[string]any) {
	globalLogger.Info(message, fields...)
}

func Warn(message string, fields ...map[string]any) {
	globalLogger.Warn(message, fields...)
}

func Error(message string, fields ...map[string]any) {
	globalLogger.Error(message, fields...)
}

func Debugf(format string, args ...any) {
	globalLogger.Debugf(format, args...)
}

func Infof(format string, args ...any) {
	globalLogger.Infof(format, args...)
}

func Warnf(format string, args ...any) {
	globalLogger.Warnf(format, args...)
}

func Errorf(format string, args ...any) {
	globalLogger.Errorf(format, args...)
}
