package common

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

const ServiceName = "taskboard"

func init() {
	ConfigureLogging(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// ConfigureLogging sets up the logrus standard logger. Unknown levels fall back to info.
func ConfigureLogging(level, format string) {
	logger := logrus.StandardLogger()
	logger.Out = os.Stdout
	if strings.EqualFold(format, "json") {
		logger.Formatter = &logrus.JSONFormatter{}
	} else {
		logger.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	logger.ReplaceHooks(logrus.LevelHooks{})
	logger.AddHook(&DefaultFieldsHook{})
}

type DefaultFieldsHook struct {
}

func (hook *DefaultFieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (hook *DefaultFieldsHook) Fire(e *logrus.Entry) error {
	e.Data["service"] = ServiceName
	return nil
}
