// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Init configures the standard logrus logger from LOG_LEVEL and LOG_FORMAT
// and returns it. debug forces the debug level. Logs go to stderr so that
// stdout stays free for the MCP stdio transport.
func Init(debug bool) *logrus.Logger {
	return Configure(logrus.StandardLogger(), os.Stderr, debug)
}

// Configure applies the environment settings to log
func Configure(log *logrus.Logger, out io.Writer, debug bool) *logrus.Logger {
	logLevel, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		logLevel = "info"
	}
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	if debug {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	log.SetOutput(out)
	return log
}
