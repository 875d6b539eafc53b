package sgp4

import (
	"io"
	"log/slog"
)

// Option configures a Propagator.
type Option func(*Propagator)

// WithGravity selects the Earth model, WGS72 when not given.
func WithGravity(g GravitationalConstants) Option {
	return func(p *Propagator) {
		p.grav = g
	}
}

// WithLogger attaches a structured logger. Records are emitted at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(p *Propagator) {
		if l != nil {
			p.logger = l
		}
	}
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
