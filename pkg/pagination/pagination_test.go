package pagination_test

import (
	"testing"

	"github.com/rise-and-shine/filestash/pkg/pagination"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		page       int
		opts       []pagination.Option
		wantOffset int
		wantLimit  int
	}{
		{
			name:       "first page by default",
			page:       0,
			wantOffset: 0,
			wantLimit:  20,
		},
		{
			name:       "second page skips one window",
			page:       1,
			wantOffset: 20,
			wantLimit:  20,
		},
		{
			name:       "negative page degrades to first",
			page:       -3,
			wantOffset: 0,
			wantLimit:  20,
		},
		{
			name:       "custom page size",
			page:       2,
			opts:       []pagination.Option{pagination.WithPageSize(5)},
			wantOffset: 10,
			wantLimit:  5,
		},
		{
			name:       "non-positive page size option is ignored",
			page:       1,
			opts:       []pagination.Option{pagination.WithPageSize(0)},
			wantOffset: 20,
			wantLimit:  20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := pagination.Request{Page: tt.page}
			req.Normalize(tt.opts...)

			assert.Equal(t, tt.wantOffset, req.Offset())
			assert.Equal(t, tt.wantLimit, req.Limit())
		})
	}
}

func TestWindowsAreDisjoint(t *testing.T) {
	t.Parallel()

	seen := map[int]bool{}
	for page := range 5 {
		req := pagination.Request{Page: page}
		req.Normalize()

		for i := req.Offset(); i < req.Offset()+req.Limit(); i++ {
			assert.False(t, seen[i], "offset %d covered twice", i)
			seen[i] = true
		}
	}
}
