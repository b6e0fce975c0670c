// Package log configures logrus for mailgate and exposes the package level
// helpers the rest of the code logs through. The level is driven by the
// DEBUG and LOG_LEVEL environment variables; in debug and trace mode every
// line is annotated with the caller.
package log

import (
	"os"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		DisableQuote:    true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logrus.SetLevel(logrus.InfoLevel)
	if os.Getenv("DEBUG") != "" || strings.ToUpper(os.Getenv("LOG_LEVEL")) == "DEBUG" {
		logrus.SetLevel(logrus.DebugLevel)
		logrus.Debugln("DEBUG MODE IS ENABLED")
	}
	if strings.ToUpper(os.Getenv("LOG_LEVEL")) == "TRACE" {
		logrus.SetLevel(logrus.TraceLevel)
		logrus.Debugln("TRACE MODE IS ENABLED")
	}
	logrus.SetOutput(os.Stdout)
}

func Tracef(format string, args ...interface{}) {
	_, file, line, _ := runtime.Caller(1)
	logrus.Tracef(format+" call:%s:%d", append(args, file, line)...)
}

func Debugf(format string, args ...interface{}) {
	_, file, line, _ := runtime.Caller(1)
	logrus.Debugf(format+" call:%s:%d", append(args, file, line)...)
}

func Infof(format string, args ...interface{}) {
	if logrus.GetLevel() >= logrus.DebugLevel {
		_, file, line, _ := runtime.Caller(1)
		logrus.Infof(format+" call:%s:%d", append(args, file, line)...)
	} else {
		logrus.Infof(format, args...)
	}
}

func Infoln(args ...interface{}) {
	logrus.Infoln(args...)
}

func Warnf(format string, args ...interface{}) {
	if logrus.GetLevel() >= logrus.DebugLevel {
		_, file, line, _ := runtime.Caller(1)
		logrus.Warnf(format+" call:%s:%d", append(args, file, line)...)
	} else {
		logrus.Warnf(format, args...)
	}
}

func Errorf(format string, args ...interface{}) {
	if logrus.GetLevel() >= logrus.DebugLevel {
		_, file, line, _ := runtime.Caller(1)
		logrus.Errorf(format+" call:%s:%d", append(args, file, line)...)
	} else {
		logrus.Errorf(format, args...)
	}
}

func Fatalf(format string, args ...interface{}) {
	if logrus.GetLevel() >= logrus.DebugLevel {
		_, file, line, _ := runtime.Caller(1)
		logrus.Fatalf(format+" call:%s:%d", append(args, file, line)...)
	} else {
		logrus.Fatalf(format, args...)
	}
}
