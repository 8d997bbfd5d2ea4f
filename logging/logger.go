package logging

import (
	"io"
	"os"

	"restaurant-ordering/config"

	"github.com/sirupsen/logrus"
)

// New builds the process logger: JSON lines in production, readable text otherwise.
func New(cfg config.Config) *logrus.Logger {
	return NewWithOutput(cfg, os.Stdout)
}

func NewWithOutput(cfg config.Config, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.IsProduction() {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	if err != nil && cfg.LogLevel != "" {
		logger.WithField("log_level", cfg.LogLevel).Warn("unknown log level, using info")
	}
	return logger
}
