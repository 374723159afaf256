// Package common provides shared constants, types, and utilities
// used across the VPN Switcher application.
package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig holds configuration options for the logger.
type LogConfig struct {
	Level      string // debug, info, warn or error; empty means info
	Format     string // text or json; empty means text
	EnableFile bool
	FilePath   string // defaults to <config dir>/logs/vpn-switcher.log
	MaxSizeMB  int    // megabytes before rotation, default 5
	MaxBackups int    // number of rotated files to keep, default 5
}

const (
	defaultMaxSizeMB  = 5
	defaultMaxBackups = 5
)

var (
	defaultLogger *logrus.Logger
	loggerOnce    sync.Once

	fileMu     sync.Mutex
	fileOutput *lumberjack.Logger
)

// isSymlink checks if a path is a symbolic link.
// Returns false if path doesn't exist (safe to create).
func isSymlink(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false // Doesn't exist, safe to create
	}
	return info.Mode()&os.ModeSymlink != 0
}

// GetLogger returns the singleton logger instance.
func GetLogger() *logrus.Logger {
	loggerOnce.Do(func() {
		defaultLogger = logrus.New()
		defaultLogger.SetOutput(os.Stdout)
		defaultLogger.SetLevel(logrus.InfoLevel)
		defaultLogger.SetFormatter(textFormatter())
	})
	return defaultLogger
}

func textFormatter() logrus.Formatter {
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 15:04:05",
	}
}

// InitLogger initializes the logger with custom configuration.
// Should be called early in application startup.
func InitLogger(config LogConfig) error {
	logger := GetLogger()

	level, err := parseLevel(config.Level)
	if err != nil {
		return err
	}
	logger.SetLevel(level)

	switch strings.ToLower(config.Format) {
	case "", "text":
		logger.SetFormatter(textFormatter())
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006/01/02 15:04:05"})
	default:
		return fmt.Errorf("unknown log format %q", config.Format)
	}

	if !config.EnableFile {
		return nil
	}

	path := config.FilePath
	if path == "" {
		configDir, err := GetConfigDir()
		if err != nil {
			return WrapError(err, "failed to resolve log path")
		}
		path = filepath.Join(configDir, "logs", LogFileName)
	}

	// Security: verify the log path is not a symlink to prevent symlink attacks
	if isSymlink(path) || isSymlink(filepath.Dir(path)) {
		return fmt.Errorf("security error: log path is a symlink")
	}

	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	maxSize := config.MaxSizeMB
	if maxSize <= 0 {
		maxSize = defaultMaxSizeMB
	}
	maxBackups := config.MaxBackups
	if maxBackups <= 0 {
		maxBackups = defaultMaxBackups
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		Compress:   true, // rotated logs are gzipped
	}

	fileMu.Lock()
	if fileOutput != nil {
		fileOutput.Close()
	}
	fileOutput = rotator
	fileMu.Unlock()

	logger.SetOutput(io.MultiWriter(os.Stdout, rotator))
	return nil
}

// parseLevel maps a configuration string to a logrus level.
// An empty string selects the info level.
func parseLevel(s string) (logrus.Level, error) {
	if s == "" {
		return logrus.InfoLevel, nil
	}
	level, err := logrus.ParseLevel(s)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// logMessage writes a message at the given level, applying printf formatting
// only when arguments are present.
func logMessage(level logrus.Level, msg string, args ...interface{}) {
	if len(args) > 0 {
		GetLogger().Logf(level, msg, args...)
		return
	}
	GetLogger().Log(level, msg)
}

// Shorthand functions for the default logger.

// LogDebug logs a debug message to the default logger.
func LogDebug(msg string, args ...interface{}) {
	logMessage(logrus.DebugLevel, msg, args...)
}

// LogInfo logs an info message to the default logger.
func LogInfo(msg string, args ...interface{}) {
	logMessage(logrus.InfoLevel, msg, args...)
}

// LogWarn logs a warning message to the default logger.
func LogWarn(msg string, args ...interface{}) {
	logMessage(logrus.WarnLevel, msg, args...)
}

// LogError logs an error message to the default logger.
func LogError(msg string, args ...interface{}) {
	logMessage(logrus.ErrorLevel, msg, args...)
}

type stdLogger struct{}

func (stdLogger) Debug(msg string, args ...interface{}) { LogDebug(msg, args...) }
func (stdLogger) Info(msg string, args ...interface{})  { LogInfo(msg, args...) }
func (stdLogger) Warn(msg string, args ...interface{})  { LogWarn(msg, args...) }
func (stdLogger) Error(msg string, args ...interface{}) { LogError(msg, args...) }

// DefaultLogger returns a Logger backed by the shared logrus instance.
func DefaultLogger() Logger { return stdLogger{} }

// CloseLogger closes the rotating log file. Should be called on shutdown.
func CloseLogger() error {
	fileMu.Lock()
	defer fileMu.Unlock()
	if fileOutput != nil {
		err := fileOutput.Close()
		fileOutput = nil
		return err
	}
	return nil
}
