package ports

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		name   string
		number int
		size   int
		want   Page
	}{
		{name: "first page", number: 1, size: 20, want: Page{Offset: 0, Limit: 20}},
		{name: "third page", number: 3, size: 20, want: Page{Offset: 40, Limit: 20}},
		{name: "non positive values", number: -4, size: 0, want: Page{Offset: 0, Limit: 1}},
		{name: "huge page number", number: math.MaxInt, size: 100, want: Page{Offset: math.MaxInt / 100 * 100, Limit: 100}},
		{name: "huge page and size", number: math.MaxInt, size: math.MaxInt, want: Page{Offset: math.MaxInt, Limit: math.MaxInt}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPage(tt.number, tt.size)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got.Offset, 0)
		})
	}
}
