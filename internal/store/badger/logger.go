package badger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// badgerLogger routes badger's internal logging through zap.
type badgerLogger struct {
	logger *zap.Logger
}

func newBadgerLogger(logger *zap.Logger) *badgerLogger {
	return &badgerLogger{logger: logger.Named("badger")}
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(render(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(render(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(render(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(render(format, args...))
}

func render(format string, args ...any) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
