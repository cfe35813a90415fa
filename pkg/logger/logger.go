// Package logger provides the leveled logger shared by the server and client
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// LogLevel represents logging severity
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name into a LogLevel. Unknown names map to INFO.
func ParseLevel(name string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

var (
	globalLevel = INFO
	globalMu    sync.RWMutex

	levelColors = map[LogLevel]*color.Color{
		DEBUG: color.New(color.FgHiBlack),
		INFO:  color.New(color.FgCyan),
		WARN:  color.New(color.FgYellow, color.Bold),
		ERROR: color.New(color.FgRed, color.Bold),
	}
)

// Server is the logger used by the lobby server
var Server = New("SERVER")

// Client is the logger used by the console client
var Client = New("CLIENT")

// SetGlobalLogLevel sets the minimum level for every logger
func SetGlobalLogLevel(level LogLevel) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLevel = level
}

// GlobalLogLevel returns the current minimum level
func GlobalLogLevel() LogLevel {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLevel
}

// Logger writes leveled, timestamped lines to one destination
type Logger struct {
	name     string
	out      io.Writer
	file     *os.File
	colorize bool
	mu       sync.Mutex
}

// New creates a logger writing to stdout
func New(name string) *Logger {
	l := &Logger{name: name}
	l.SetOutput(os.Stdout)
	return l
}

// SetOutput redirects the logger. Level tags are colored only for terminals.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
	l.colorize = isTerminal(w) && !color.NoColor
}

// SetFile sends log output to the given file, appending to it
func (l *Logger) SetFile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.mu.Lock()
	old := l.file
	l.file = f
	l.out = io.MultiWriter(os.Stdout, f)
	l.colorize = false
	l.mu.Unlock()

	if old != nil {
		old.Close()
	}
	return nil
}

// Close releases the log file, if any
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.out = os.Stdout
	return err
}

// With returns a logger sharing this logger's destination with an extra name segment
func (l *Logger) With(name string) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return &Logger{
		name:     l.name + "/" + name,
		out:      l.out,
		colorize: l.colorize,
	}
}

func (l *Logger) Debug(format string, args ...interface{}) { l.log(DEBUG, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.log(INFO, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.log(WARN, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.log(ERROR, format, args...) }

// Fatal logs at ERROR level and exits the process
func (l *Logger) Fatal(format string, args ...interface{}) {
	l.log(ERROR, format, args...)
	os.Exit(1)
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if level < GlobalLogLevel() {
		return
	}

	tag := "[" + level.String() + "]"
	msg := fmt.Sprintf(format, args...)
	ts := time.Now().Format("2006-01-02 15:04:05")

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.colorize {
		tag = levelColors[level].Sprint(tag)
	}
	fmt.Fprintf(l.out, "%s %s [%s] %s\n", ts, tag, l.name, msg)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
