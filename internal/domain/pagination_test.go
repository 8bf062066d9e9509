package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPagination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		page    *int
		limit   *int
		want    Pagination
		wantErr error
	}{
		{"defaults", nil, nil, Pagination{Page: 1, Limit: 10}, nil},
		{"explicit", ptr(3), ptr(25), Pagination{Page: 3, Limit: 25}, nil},
		{"max limit", nil, ptr(MaxLimit), Pagination{Page: 1, Limit: MaxLimit}, nil},
		{"page zero", ptr(0), nil, Pagination{}, ErrInvalidPage},
		{"negative page", ptr(-1), nil, Pagination{}, ErrInvalidPage},
		{"limit zero", nil, ptr(0), Pagination{}, ErrInvalidLimit},
		{"limit above max", nil, ptr(MaxLimit + 1), Pagination{}, ErrInvalidLimit},
		{"page overflows offset", ptr(math.MaxInt), ptr(10), Pagination{}, ErrPageTooLarge},
		{"page overflows default limit", ptr(math.MaxInt/DefaultLimit + 2), nil, Pagination{}, ErrPageTooLarge},
		{"largest page with representable offset", ptr(math.MaxInt/MaxLimit + 1), ptr(MaxLimit),
			Pagination{Page: math.MaxInt/MaxLimit + 1, Limit: MaxLimit}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewPagination(tt.page, tt.limit)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPaginationMath(t *testing.T) {
	t.Parallel()

	p := Pagination{Page: 2, Limit: 10}
	assert.Equal(t, 10, p.Offset())
	assert.Equal(t, 3, p.TotalPages(25))
	assert.Equal(t, 2, p.TotalPages(20))
	assert.Equal(t, 1, p.TotalPages(1))
	assert.Equal(t, 0, p.TotalPages(0))

	last, err := NewPagination(ptr(math.MaxInt/MaxLimit+1), ptr(MaxLimit))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, last.Offset(), 0)
}
