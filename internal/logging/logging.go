// Package logging wires the process-wide zap logger. Component constructors
// accept a *zap.Logger; nothing here is a package-level global except the
// safe no-op default used by tests that don't care about log output.
package logging

import "go.uber.org/zap"

// New builds a production JSON logger, or a development console logger
// when dev is true.
func New(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// NoOp returns a logger that discards everything, for tests.
func NoOp() *zap.Logger {
	return zap.NewNop()
}
