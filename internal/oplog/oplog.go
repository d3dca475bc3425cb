// Package oplog writes the CLI's rotating operations log. Each
// mutating command appends one line; rotation keeps the log bounded
// without any cleanup job.
package oplog

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger appends timestamped lines to a size-rotated log file.
type Logger struct {
	out *lumberjack.Logger
}

// New returns a Logger writing to path. Rotation limits come from
// SPOOL_LOG_MAX_SIZE (MB), SPOOL_LOG_MAX_BACKUPS, and
// SPOOL_LOG_MAX_AGE (days).
func New(path string) *Logger {
	return &Logger{
		out: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    getEnvInt("SPOOL_LOG_MAX_SIZE", 10),
			MaxBackups: getEnvInt("SPOOL_LOG_MAX_BACKUPS", 3),
			MaxAge:     getEnvInt("SPOOL_LOG_MAX_AGE", 7),
			Compress:   true,
		},
	}
}

// Printf appends one formatted, timestamped line.
func (l *Logger) Printf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	_, _ = fmt.Fprintf(l.out, "[%s] %s\n", timestamp, msg)
}

// Close closes the underlying log file.
func (l *Logger) Close() error {
	return l.out.Close()
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultValue
}
