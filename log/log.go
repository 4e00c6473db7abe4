// Package log wraps logrus behind package-level functions so callers
// never touch the logger instance directly.
package log

import "github.com/sirupsen/logrus"

type Level logrus.Level

const (
	FatalLevel = Level(logrus.FatalLevel)
	ErrorLevel = Level(logrus.ErrorLevel)
	WarnLevel  = Level(logrus.WarnLevel)
	InfoLevel  = Level(logrus.InfoLevel)
	DebugLevel = Level(logrus.DebugLevel)
)

var logger *logrus.Logger

func init() {
	logger = logrus.New()
	logger.Formatter = &logrus.TextFormatter{
		DisableLevelTruncation: true,
		PadLevelText:           true,
		TimestampFormat:        "2006/01/02 15:04:05",
		FullTimestamp:          true,
	}
}

func SetLevel(level Level) {
	logger.Level = logrus.Level(level)
}

func Logf(level Level, fmt string, args ...any) {
	logger.Logf(logrus.Level(level), fmt, args...)
}
func Log(level Level, args ...any) {
	logger.Logln(logrus.Level(level), args...)
}

func Debugf(fmt string, args ...any) {
	logger.Debugf(fmt, args...)
}
func Debug(args ...any) {
	logger.Debugln(args...)
}

func Infof(fmt string, args ...any) {
	logger.Infof(fmt, args...)
}
func Info(args ...any) {
	logger.Infoln(args...)
}

func Warnf(fmt string, args ...any) {
	logger.Warnf(fmt, args...)
}
func Warn(args ...any) {
	logger.Warnln(args...)
}

func Errorf(fmt string, args ...any) {
	logger.Errorf(fmt, args...)
}
func Error(args ...any) {
	logger.Errorln(args...)
}

func Fatalf(fmt string, args ...any) {
	logger.Fatalf(fmt, args...)
}
func Fatal(args ...any) {
	logger.Fatalln(args...)
}
