package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestCallerAnnotation(t *testing.T) {
	buf := bytes.NewBufferString("")
	logrus.SetOutput(buf)

	t.Run("infof", func(t *testing.T) {
		logrus.SetLevel(logrus.DebugLevel)
		Infof("test %s", "infof")
		if !strings.Contains(buf.String(), "call:") {
			t.Errorf(" %s should contain call:", buf.String())
		}
		buf.Reset()
		logrus.SetLevel(logrus.InfoLevel)
		Infof("test %s", "infof")
		if strings.Contains(buf.String(), "call:") {
			t.Errorf(" %s should not contain call:", buf.String())
		}
	})

	t.Run("errorf", func(t *testing.T) {
		logrus.SetLevel(logrus.DebugLevel)
		Errorf("test %s", "errorf")
		if !strings.Contains(buf.String(), "call:") {
			t.Errorf(" %s should contain call:", buf.String())
		}
		buf.Reset()
		logrus.SetLevel(logrus.InfoLevel)
		Errorf("test %s", "errorf")
		if strings.Contains(buf.String(), "call:") {
			t.Errorf(" %s should not contain call:", buf.String())
		}
	})

	t.Run("warnf", func(t *testing.T) {
		logrus.SetLevel(logrus.DebugLevel)
		Warnf("test %s", "warnf")
		if !strings.Contains(buf.String(), "call:") {
			t.Errorf(" %s should contain call:", buf.String())
		}
		buf.Reset()
		logrus.SetLevel(logrus.InfoLevel)
		Warnf("test %s", "warnf")
		if strings.Contains(buf.String(), "call:") {
			t.Errorf(" %s should not contain call:", buf.String())
		}
	})

	t.Run("tracef", func(t *testing.T) {
		buf.Reset()
		logrus.SetLevel(logrus.TraceLevel)
		Tracef("test %s", "tracef")
		if !strings.Contains(buf.String(), "call:") {
			t.Errorf(" %s should contain call:", buf.String())
		}
	})
}
