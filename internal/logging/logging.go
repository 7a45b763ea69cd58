// Package logging builds the process logger from the [log] config section.
package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/chrischeng-c4/agentd-sub001/internal/config"
)

// Overrides adjust the configured level from command-line flags.
type Overrides struct {
	Verbose bool
	Quiet   bool
}

// New returns a logger writing to w at the configured level and format.
// Verbose wins over Quiet.
func New(cfg config.LogConfig, o Overrides, w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)

	// Set log level
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		l.Warnf("Invalid log level '%s', using 'info' instead. Error: %v", cfg.Level, err)
		level = logrus.InfoLevel
	}
	switch {
	case o.Verbose:
		level = logrus.DebugLevel
	case o.Quiet:
		level = logrus.WarnLevel
	}
	l.SetLevel(level)

	// Set log format
	switch strings.ToLower(cfg.Format) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: true,
		})
	}
	return l
}
