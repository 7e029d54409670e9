// Package logging builds the slog loggers used across shortreel.
//
// Two output formats are supported: a human-oriented console handler that
// prints a compact header line followed by indented attribute bullets, and a
// machine-oriented JSON handler. Attr helpers mirror the slog constructors so
// call sites stay terse, and WithComponent standardizes the component field
// each subsystem logs under.
package logging
