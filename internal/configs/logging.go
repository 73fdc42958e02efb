package configs

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// SetupLogging applies LOG_LEVEL and LOG_FORMAT to the standard logrus logger.
func (c Config) SetupLogging() error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return errors.Wrap(err, "LOG_LEVEL")
	}
	logrus.SetLevel(level)

	switch c.LogFormat {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return errors.Errorf("LOG_FORMAT: unknown format %q", c.LogFormat)
	}
	return nil
}

// GroupID returns the consumer group for cache fan-out. Every replica
// needs its own group so each one sees every event.
func (c Config) GroupID(instance string) string {
	if c.KafkaGroupID != "" {
		return c.KafkaGroupID
	}
	return "airport-cache-" + instance
}
