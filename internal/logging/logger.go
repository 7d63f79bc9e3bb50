package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	base      = newBase()
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
	logFile   *os.File
)

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(os.Getenv("TILER_LOG_LEVEL")); err == nil {
		l.SetLevel(level)
	}
	return l
}

// NewLogger returns the logger for a specific component. Every component
// shares one underlying logrus.Logger, so Configure affects all of them.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}
	entry := base.WithField("component", component)
	loggers[component] = entry
	return entry
}

// Configure applies cfg to the shared logger. A window manager is started
// from an X session script, not a terminal, so "auto" normally means stderr
// ends up in ~/.xsession-errors.
func Configure(cfg Settings) error {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	levelStr := "info"
	if v := os.Getenv("TILER_LOG_LEVEL"); v != "" {
		levelStr = v
	} else if cfg.Level != "" {
		levelStr = cfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	base.SetLevel(level)
	base.SetReportCaller(cfg.ReportCaller || os.Getenv("TILER_LOG_CALLER") == "true")

	switch cfg.Format {
	case "json":
		base.SetFormatter(&logrus.JSONFormatter{})
	default:
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	var writers []io.Writer
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	if cfg.File != "" {
		path := expandPath(cfg.File)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		logFile = f
		writers = append(writers, f)
	}

	toStderr := true
	switch cfg.Stderr {
	case "never":
		toStderr = false
	case "always":
		toStderr = true
	default:
		// With a file sink and an interactive terminal, keep the terminal quiet
		// unless debugging.
		interactive := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
		toStderr = len(writers) == 0 || !interactive || level >= logrus.DebugLevel
	}
	if toStderr {
		writers = append(writers, os.Stderr)
	}

	switch len(writers) {
	case 0:
		base.SetOutput(io.Discard)
	case 1:
		base.SetOutput(writers[0])
	default:
		base.SetOutput(io.MultiWriter(writers...))
	}
	return nil
}

// SetOutput redirects the shared logger, mostly for tests.
func SetOutput(w io.Writer) {
	base.SetOutput(w)
}

// expandPath expands tilde in file paths
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
