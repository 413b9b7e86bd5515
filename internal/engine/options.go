package engine

import (
	"log/slog"

	"github.com/dshills/structedit/internal/engine/tree"
)

// Default configuration values.
const (
	DefaultMaxUndoEntries = 1000
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithMaxUndoEntries sets the maximum number of undo history entries.
func WithMaxUndoEntries(max int) Option {
	return func(e *Engine) {
		if max > 0 {
			e.maxUndoEntries = max
		}
	}
}

// WithReadOnly creates a read-only engine.
// Write operations will return ErrReadOnly.
func WithReadOnly() Option {
	return func(e *Engine) {
		e.readOnly = true
	}
}

// WithLogger sets the logger for edit and history events. By default the
// engine logs nothing.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithView keeps a mirrored view tree in step with the document.
func WithView() Option {
	return func(e *Engine) {
		e.withView = true
	}
}

// WithPreserve marks elements whose content keeps all whitespace when
// documents are read.
func WithPreserve(names ...string) Option {
	return func(e *Engine) {
		e.preserve = append(e.preserve, names...)
	}
}

// WithRootWhiteSpace sets the whitespace mode of the document root.
func WithRootWhiteSpace(ws tree.WhiteSpace) Option {
	return func(e *Engine) {
		e.rootWS = ws
	}
}

// WithAsyncEvents delivers change events from a background goroutine with
// the given buffer size.
func WithAsyncEvents(bufferSize int) Option {
	return func(e *Engine) {
		e.asyncEvents = bufferSize
	}
}
