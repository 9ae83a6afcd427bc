package expand

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestByteSizeOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b ByteSize
		want ByteSize
		ok   bool
	}{
		{"exact equal", Exact(4), Exact(4), Exact(4), true},
		{"exact different", Exact(4), Exact(8), ByteSize{}, false},
		{"exact inside range", Exact(2), Range(1, 8), Exact(2), true},
		{"exact at range end", Exact(8), Range(1, 8), Exact(8), true},
		{"exact outside range", Exact(1), Range(2, 8), ByteSize{}, false},
		{"ranges intersect", Range(1, 4), Range(2, 8), Range(2, 4), true},
		{"ranges touch", Range(1, 2), Range(2, 8), Exact(2), true},
		{"ranges disjoint", Range(1, 2), Range(4, 8), ByteSize{}, false},
		{"unconstrained and exact", Unconstrained(), Exact(4), Exact(4), true},
		{"unconstrained and range", Unconstrained(), Range(2, 8), Range(2, 8), true},
		{"both unconstrained", Unconstrained(), Unconstrained(), Unconstrained(), true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, ok := test.a.Overlap(test.b)
			be.Equal(t, ok, test.ok)
			be.Equal(t, got, test.want)

			// Overlap is commutative.
			got, ok = test.b.Overlap(test.a)
			be.Equal(t, ok, test.ok)
			be.Equal(t, got, test.want)
		})
	}
}

func TestByteSizeZeroValueIsUnconstrained(t *testing.T) {
	var size ByteSize
	be.Equal(t, size, Unconstrained())
	be.True(t, size.Contains(0))
	be.True(t, size.Contains(1000))
	_, ok := size.Smallest()
	be.True(t, !ok)
}

func TestByteSizeContains(t *testing.T) {
	be.True(t, Exact(4).Contains(4))
	be.True(t, !Exact(4).Contains(3))
	be.True(t, Range(2, 8).Contains(2))
	be.True(t, Range(2, 8).Contains(8))
	be.True(t, !Range(2, 8).Contains(1))
	be.True(t, !Range(2, 8).Contains(9))
}

func TestByteSizeSmallest(t *testing.T) {
	n, ok := Exact(4).Smallest()
	be.True(t, ok)
	be.Equal(t, n, 4)

	n, ok = Range(2, 8).Smallest()
	be.True(t, ok)
	be.Equal(t, n, 2)
}

func TestByteSizeString(t *testing.T) {
	be.Equal(t, Exact(4).String(), "4b")
	be.Equal(t, Range(1, 8).String(), "(1..8)b")
	be.Equal(t, Unconstrained().String(), "any")
}

func TestMinWidth(t *testing.T) {
	tests := []struct {
		v    int64
		want int
	}{
		{0, 1},
		{3, 1},
		{255, 1},
		{-128, 1},
		{256, 2},
		{300, 2},
		{-129, 2},
		{65535, 2},
		{65536, 4},
		{1 << 31, 4},
		{1<<32 - 1, 4},
		{1 << 32, 8},
		{-1 << 40, 8},
	}

	for _, test := range tests {
		be.Equal(t, minWidth(test.v), test.want)
	}
}
