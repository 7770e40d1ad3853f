package pagination

const defaultPageSize = 20

// Options holds pagination settings.
type Options struct {
	PageSize int
}

// Option configures pagination behavior.
type Option func(*Options)

func defaultOptions() Options {
	return Options{PageSize: defaultPageSize}
}

// WithPageSize overrides the fixed page size.
func WithPageSize(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.PageSize = size
		}
	}
}
