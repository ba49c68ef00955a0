// Package permlog is a small leveled, key-value logger for registry
// mutations and loads, adapted from the teacher's pkg/logging: the same
// level-filtered, single-line "timestamp level: message k=v k=v" format,
// minus the go-log interface and log-rotation machinery that came from the
// FTP daemon it no longer serves.
package permlog

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// Level is the severity of a log message.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

var levelOrder = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// Logger writes leveled, key-value log lines. The zero value is not usable;
// construct one with New.
type Logger struct {
	level  Level
	logger *log.Logger
}

// New returns a Logger that writes to w (typically os.Stdout), filtering
// out any message below level.
func New(w interface {
	Write([]byte) (int, error)
}, level Level) *Logger {
	if level == "" {
		level = LevelInfo
	}
	return &Logger{level: level, logger: log.New(w, "", 0)}
}

func (l *Logger) shouldLog(level Level) bool {
	if l == nil {
		return false
	}
	return levelOrder[level] >= levelOrder[l.level]
}

func (l *Logger) log(level Level, message string, keyvals ...interface{}) {
	if !l.shouldLog(level) {
		return
	}
	var parts []string
	for i := 0; i < len(keyvals); i += 2 {
		if i+1 < len(keyvals) {
			parts = append(parts, fmt.Sprintf("%v=%v", keyvals[i], sanitize(keyvals[i+1])))
		}
	}
	timestamp := time.Now().UTC().Format("2006-01-02 15:04:05 -0700")
	l.logger.Printf("%s %s: %s %s", timestamp, level, message, strings.Join(parts, " "))
}

func sanitize(v interface{}) string {
	s := fmt.Sprintf("%v", v)
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.Join(strings.Fields(s), " ")
}

// Debug logs at LevelDebug.
func (l *Logger) Debug(message string, keyvals ...interface{}) { l.log(LevelDebug, message, keyvals...) }

// Info logs at LevelInfo.
func (l *Logger) Info(message string, keyvals ...interface{}) { l.log(LevelInfo, message, keyvals...) }

// Warn logs at LevelWarn.
func (l *Logger) Warn(message string, keyvals ...interface{}) { l.log(LevelWarn, message, keyvals...) }

// Error logs at LevelError.
func (l *Logger) Error(message string, keyvals ...interface{}) {
	l.log(LevelError, message, keyvals...)
}
