// Package errors wires optional Sentry error reporting.
package errors

import (
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/camerakit/go/logging"
	"github.com/camerakit/go/version"
)

var logger = logging.New("errors")

var enabled bool

// Init configures Sentry with dsn. An empty dsn disables reporting.
func Init(dsn string) {
	if dsn == "" {
		logger.Debug("sentry DSN not set: skipping Sentry initialization")
		return
	}

	logger.Info("initializing Sentry")
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		AttachStacktrace: true,
		Release:          version.Version(),
	})
	if err != nil {
		logger.Warn("failed to initialize Sentry client", zap.Error(err))
		return
	}
	enabled = true
}

// Capture reports err to Sentry when reporting is enabled. tags are attached
// to the event.
func Capture(err error, tags map[string]string) {
	if !enabled || err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		sentry.CaptureException(err)
	})
}

// Flush waits up to timeout for buffered events to be delivered.
func Flush(timeout time.Duration) bool {
	if !enabled {
		return true
	}
	return sentry.Flush(timeout)
}
