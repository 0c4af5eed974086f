package darknet

import (
	"go.uber.org/zap"
)

// Library binds the handle types of this package to a native Engine
type Library struct {
	// engine makes the native calls
	engine Engine
	// log receives debug messages on load and release of native resources
	log *zap.Logger
}

// Option configures a Library
type Option func(*Library)

// WithLogger sets the logger used by the Library, the default discards all
// output
func WithLogger(log *zap.Logger) Option {
	return func(l *Library) {
		if log != nil {
			l.log = log
		}
	}
}

// New returns a Library making native calls through engine
func New(engine Engine, opts ...Option) (*Library, error) {

	if engine == nil {
		return nil, invalidArgf("New", "engine is nil")
	}

	l := &Library{
		engine: engine,
		log:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}

// Engine returns the native engine used by the Library
func (l *Library) Engine() Engine {
	return l.engine
}
