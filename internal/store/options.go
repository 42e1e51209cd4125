package store

import "go.uber.org/zap"

type options struct {
	log    *zap.Logger
	format Format
}

// Option configures a repository.
type Option func(*options)

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithFormat forces the file encoding instead of deriving it from the
// extension. Ignored by the other repositories.
func WithFormat(f Format) Option {
	return func(o *options) { o.format = f }
}

func buildOptions(opts []Option) options {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	return o
}
