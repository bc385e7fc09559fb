// Package applog provides the object-keyed logging idiom used throughout
// this repository, mirroring rclone's backend-wide convention of calling
// fs.Debugf(obj, format, args...)/fs.Errorf(obj, format, args...) with the
// object the log line is about as the first argument (see e.g.
// backend/sftp/sftp.go, backend/chunker/chunker.go).
//
// obj may be nil, an fsevent.Event, or anything with a String() method; it
// is rendered as a field on the log entry rather than interpolated into the
// message, so callers never format it into the message string themselves.
package applog

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Log is the package-wide logger. Replaced wholesale by SetLogger (e.g. for
// a JSON formatter in production, or a buffer in tests).
var Log = logrus.StandardLogger()

// SetLogger replaces the package-wide logger.
func SetLogger(l *logrus.Logger) {
	Log = l
}

func entry(obj interface{}) *logrus.Entry {
	if obj == nil {
		return logrus.NewEntry(Log)
	}
	return Log.WithField("object", describe(obj))
}

func describe(obj interface{}) string {
	if s, ok := obj.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", obj)
}

// Debugf logs a debug-level line about obj.
func Debugf(obj interface{}, format string, args ...interface{}) {
	entry(obj).Debugf(format, args...)
}

// Infof logs an info-level line about obj.
func Infof(obj interface{}, format string, args ...interface{}) {
	entry(obj).Infof(format, args...)
}

// Errorf logs an error-level line about obj.
func Errorf(obj interface{}, format string, args ...interface{}) {
	entry(obj).Errorf(format, args...)
}

// Fatalf logs an error-level line about obj then exits the process with
// status 1, mirroring logrus.Fatalf. Reserved for unrecoverable startup
// failures in cmd/rbh-fsevents.
func Fatalf(obj interface{}, format string, args ...interface{}) {
	entry(obj).Fatalf(format, args...)
}
