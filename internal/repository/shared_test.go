package repository

import (
	"math"
	"testing"
)

func TestPaginationNormalize(t *testing.T) {
	p := Pagination{}
	p.Normalize()
	if p.PageNo != 1 || p.PageSize != DefaultPageSize || p.Offset() != 0 {
		t.Fatalf("unexpected defaults %+v offset %d", p, p.Offset())
	}
}

func TestPaginationOffsetDoesNotWrap(t *testing.T) {
	p := Pagination{PageNo: math.MaxInt32, PageSize: 1000}
	want := int64(math.MaxInt32-1) * 1000
	if got := p.Offset(); got != want {
		t.Fatalf("want offset %d, got %d", want, got)
	}
}
