package host

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the host package's logger instance.
// It uses a no-op logger by default. Script console output goes here too.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the host package's logger.
// This must be called before any runtime is created.
func SetLogger(l *zap.Logger) {
	logger = l
}

// consolePrinter routes console.log/warn/error to zap.
type consolePrinter struct{}

func (consolePrinter) Log(s string)   { Logger().Named("console").Info(s) }
func (consolePrinter) Warn(s string)  { Logger().Named("console").Warn(s) }
func (consolePrinter) Error(s string) { Logger().Named("console").Error(s) }
