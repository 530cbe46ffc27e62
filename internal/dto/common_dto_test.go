package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 20, 41)
	assert.EqualValues(t, 3, p.TotalPages)
	assert.EqualValues(t, 0, NewPagination(1, 0, 5).TotalPages)
}

func TestPageParams(t *testing.T) {
	page, limit := PageParams(0, 500, 100)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, limit)

	page, limit = PageParams(3, 50, 100)
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, limit)
}
