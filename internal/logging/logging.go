// Package logging configures the structured application logger and bridges it into gorm.
package logging

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	gormlogger "gorm.io/gorm/logger"
)

// New returns a JSON logger at the given level, falling back to info.
func New(level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
		log.WithField("level", level).Warn("unknown log level, using info")
	}
	log.SetLevel(lvl)
	return log
}

// GormLogger routes gorm's SQL logging through log. Slow queries are warned about at any
// level; every statement is logged only at debug.
func GormLogger(log *logrus.Logger) gormlogger.Interface {
	level := gormlogger.Warn
	switch {
	case log.IsLevelEnabled(logrus.DebugLevel):
		level = gormlogger.Info
	case !log.IsLevelEnabled(logrus.WarnLevel):
		level = gormlogger.Error
	}

	return gormlogger.New(log, gormlogger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
