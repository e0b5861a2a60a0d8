package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 6))
	assert.Equal(t, 1, TotalPages(6, 6))
	assert.Equal(t, 2, TotalPages(7, 6))
	assert.Equal(t, 3, TotalPages(13, 0))
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Pagination{}.Offset())
	assert.Equal(t, 12, Pagination{Page: 3}.Offset())
	assert.Equal(t, 20, Pagination{Page: 3, PageSize: 10}.Offset())
}

func TestBuildPageInfo(t *testing.T) {
	info := BuildPageInfo(Pagination{Page: 2}, 13)
	assert.Equal(t, PageInfo{Page: 2, TotalPages: 3, TotalItems: 13}, info)
}
