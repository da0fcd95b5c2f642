// Package logs wires an additional logrus sink that persists everything
// written to stdout into a log file on disk.
package logs

import (
	"os"
	"strings"

	joonix "github.com/joonix/log"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

var _ = logrus.Hook(&writerHook{})

// writerHook duplicates log entries of all levels into the file logger.
type writerHook struct {
	logger *logrus.Logger
}

// Fire formats the entry and appends it to the log file.
func (hook *writerHook) Fire(entry *logrus.Entry) error {
	line, err := entry.String()
	if err != nil {
		return err
	}
	hook.logger.Println(strings.TrimSuffix(line, "\n"))
	return nil
}

// Levels reports which log levels this hook triggers on.
func (hook *writerHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// ConfigurePersistentLogging appends all subsequent log output to the named
// file, formatted per format ("text", "fluentd" or "json"). Colors are always
// disabled for file output since ANSI codes are gibberish on disk.
func ConfigurePersistentLogging(logFileName, format string) error {
	f, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return errors.Wrapf(err, "could not open log file %s", logFileName)
	}

	fileLogger := &logrus.Logger{
		Out:   f,
		Level: logrus.TraceLevel,
	}
	switch format {
	case "text":
		formatter := new(prefixed.TextFormatter)
		formatter.TimestampFormat = "2006-01-02 15:04:05"
		formatter.FullTimestamp = true
		formatter.DisableColors = true
		fileLogger.SetFormatter(formatter)
	case "fluentd":
		fileLogger.SetFormatter(joonix.NewFormatter())
	case "json":
		fileLogger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return errors.Errorf("unknown log file format %s", format)
	}

	logrus.WithField("logFileName", logFileName).Info("Logs will be made persistent")
	logrus.AddHook(&writerHook{logger: fileLogger})
	return nil
}
