// Package log provides the unified logging interface for keel.
// It wraps the Kratos logging system and emits through a zerolog backend.
package log

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/go-kratos/kratos/v2/log"
)

// Level represents the logging level.
type Level int32

const (
	// DebugLevel logs are typically voluminous, and are usually disabled in production.
	DebugLevel Level = iota
	// InfoLevel is the default logging priority.
	InfoLevel
	// WarnLevel logs are more important than Info, but don't need individual human review.
	WarnLevel
	// ErrorLevel logs are high-priority. If an application is running smoothly,
	// it shouldn't generate any error-level logs.
	ErrorLevel
)

// helperStore stores *log.Helper atomically so Init can be called while
// other goroutines log.
var helperStore atomic.Value // of *log.Helper

// minLevel is the current filter level (kratos log.Level as int32).
var minLevel atomic.Int32

func init() {
	minLevel.Store(int32(log.LevelInfo))
}

// Init installs a logger built from the given Kratos logger.
// Convenient entry points are InitDefault and the boot package.
func Init(logger log.Logger) {
	helperStore.Store(log.NewHelper(logger))
}

// InitDefault installs the zerolog-backed logger writing to stderr.
func InitDefault() {
	Init(NewZerologLogger(os.Stderr))
}

// SetLevel sets the global logging level.
func SetLevel(level Level) {
	var lvl log.Level
	switch level {
	case DebugLevel:
		lvl = log.LevelDebug
	case InfoLevel:
		lvl = log.LevelInfo
	case WarnLevel:
		lvl = log.LevelWarn
	case ErrorLevel:
		lvl = log.LevelError
	default:
		lvl = log.LevelInfo
	}
	minLevel.Store(int32(lvl))
}

// GetLevel returns the current global logging level.
func GetLevel() Level {
	switch log.Level(minLevel.Load()) {
	case log.LevelDebug:
		return DebugLevel
	case log.LevelInfo:
		return InfoLevel
	case log.LevelWarn:
		return WarnLevel
	case log.LevelError:
		return ErrorLevel
	default:
		return InfoLevel
	}
}

func allowLog(level log.Level) bool {
	return int32(level) >= minLevel.Load()
}

// helper returns the installed log helper, or nil before Init.
// Before initialization the package falls back to plain stderr lines so that
// early messages are not silently dropped.
func helper() *log.Helper {
	if v := helperStore.Load(); v != nil {
		if h, ok := v.(*log.Helper); ok {
			return h
		}
	}
	return nil
}

func fallbackLog(level, format string, a ...any) {
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	msg := fmt.Sprintf(format, a...)
	fmt.Fprintf(os.Stderr, "[%s] [%s] [keel-log-fallback] %s\n", timestamp, level, msg)
}

// Debug uses the log helper to record debug-level log information.
func Debug(a ...any) {
	if h := helper(); h != nil {
		h.Debug(a...)
	} else if allowLog(log.LevelDebug) {
		fallbackLog("DEBUG", "%s", fmt.Sprint(a...))
	}
}

// Debugf records formatted debug-level log information.
func Debugf(format string, a ...any) {
	if h := helper(); h != nil {
		h.Debugf(format, a...)
	} else if allowLog(log.LevelDebug) {
		fallbackLog("DEBUG", format, a...)
	}
}

// Info uses the log helper to record info-level log information.
func Info(a ...any) {
	if h := helper(); h != nil {
		h.Info(a...)
	} else if allowLog(log.LevelInfo) {
		fallbackLog("INFO", "%s", fmt.Sprint(a...))
	}
}

// Infof records formatted info-level log information.
func Infof(format string, a ...any) {
	if h := helper(); h != nil {
		h.Infof(format, a...)
	} else if allowLog(log.LevelInfo) {
		fallbackLog("INFO", format, a...)
	}
}

// Warn uses the log helper to record warn-level log information.
func Warn(a ...any) {
	if h := helper(); h != nil {
		h.Warn(a...)
	} else if allowLog(log.LevelWarn) {
		fallbackLog("WARN", "%s", fmt.Sprint(a...))
	}
}

// Warnf records formatted warn-level log information.
func Warnf(format string, a ...any) {
	if h := helper(); h != nil {
		h.Warnf(format, a...)
	} else if allowLog(log.LevelWarn) {
		fallbackLog("WARN", format, a...)
	}
}

// Error uses the log helper to record error-level log information.
func Error(a ...any) {
	if h := helper(); h != nil {
		h.Error(a...)
	} else if allowLog(log.LevelError) {
		fallbackLog("ERROR", "%s", fmt.Sprint(a...))
	}
}

// Errorf records formatted error-level log information.
func Errorf(format string, a ...any) {
	if h := helper(); h != nil {
		h.Errorf(format, a...)
	} else if allowLog(log.LevelError) {
		fallbackLog("ERROR", format, a...)
	}
}
