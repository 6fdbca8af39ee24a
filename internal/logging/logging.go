// Package logging provides the warning surface for data-quality
// anomalies. Anomalies (mapping/data mismatches, dropping absent
// columns, unseen categories at encode time) are logged and processing
// continues; they are never returned as errors.
package logging

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu     sync.RWMutex
	logger = zap.NewNop()
)

// SetLogger installs the logger used for data-quality warnings.
// Passing nil restores the no-op default.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		logger = zap.NewNop()
		return
	}
	logger = l
}

// Logger returns the currently installed logger.
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Warn emits a data-quality warning with the operator name attached.
func Warn(op, msg string, fields ...zap.Field) {
	Logger().Warn(msg, append([]zap.Field{zap.String("op", op)}, fields...)...)
}
