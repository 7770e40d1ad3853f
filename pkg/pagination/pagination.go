// Package pagination provides fixed-size window pagination for list endpoints.
package pagination

// Request carries a zero-based page index. Page sizes are fixed per endpoint
// and applied during Normalize; out-of-range input degrades to the first page
// rather than failing.
type Request struct {
	Page int `query:"page" json:"page"`

	size int
}

// Normalize applies defaults and constraints.
// Must be called before Offset or Limit.
func (r *Request) Normalize(opts ...Option) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if r.Page < 0 {
		r.Page = 0
	}
	r.size = o.PageSize
}

// Offset returns the number of records to skip.
func (r *Request) Offset() int {
	return r.Page * r.size
}

// Limit returns the window size.
func (r *Request) Limit() int {
	return r.size
}
