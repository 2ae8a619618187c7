package utils

import (
	"io"
	"os"
	"time"

	"github.com/amaumene/cinesync/internal/config"
	"github.com/sirupsen/logrus"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// NewLogger creates a new configured logger
func NewLogger(cfg *config.Config) *logrus.Logger {
	return newLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
}

func newLogger(out io.Writer, level, format string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	// Parse log level
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	return logger
}

// NewQueryLogger routes gorm's slow-query and error logs through logger.
// Every statement is logged at trace level.
func NewQueryLogger(logger *logrus.Logger) gormlogger.Interface {
	level := gormlogger.Warn
	switch {
	case logger.IsLevelEnabled(logrus.TraceLevel):
		level = gormlogger.Info
	case !logger.IsLevelEnabled(logrus.WarnLevel):
		level = gormlogger.Error
	}

	return gormlogger.New(logger.WithField("component", "gorm"), gormlogger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
