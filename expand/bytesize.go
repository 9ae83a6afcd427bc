package expand

import "fmt"

// SizeKind tells which shape a ByteSize has.
type SizeKind uint8

const (
	SizeUnconstrained SizeKind = iota
	SizeExact
	SizeRange
)

// ByteSize describes how many bytes a type or value occupies.
//
// Ranges are inclusive on both ends. The zero value is Unconstrained.
type ByteSize struct {
	Kind SizeKind
	Lo   int
	Hi   int
}

func Exact(n int) ByteSize {
	return ByteSize{Kind: SizeExact, Lo: n, Hi: n}
}

func Range(lo, hi int) ByteSize {
	return ByteSize{Kind: SizeRange, Lo: lo, Hi: hi}
}

func Unconstrained() ByteSize {
	return ByteSize{}
}

// Contains reports whether a value of n bytes satisfies the size.
func (b ByteSize) Contains(n int) bool {
	switch b.Kind {
	case SizeExact:
		return b.Lo == n
	case SizeRange:
		return b.Lo <= n && n <= b.Hi
	default:
		return true
	}
}

// Overlap computes the narrowest size satisfying both b and other.
// It returns false if no size could satisfy both.
func (b ByteSize) Overlap(other ByteSize) (ByteSize, bool) {
	if b.Kind == SizeUnconstrained {
		return other, true
	}
	if other.Kind == SizeUnconstrained {
		return b, true
	}

	if b.Kind == SizeExact {
		if other.Contains(b.Lo) {
			return b, true
		}
		return ByteSize{}, false
	}
	if other.Kind == SizeExact {
		if b.Contains(other.Lo) {
			return other, true
		}
		return ByteSize{}, false
	}

	// 1..4 <-> 2..8 => 2..4
	lo := max(b.Lo, other.Lo)
	hi := min(b.Hi, other.Hi)
	if lo > hi {
		return ByteSize{}, false
	}
	if lo == hi {
		return Exact(lo), true
	}
	return Range(lo, hi), true
}

// Smallest returns the fewest bytes the size allows.
func (b ByteSize) Smallest() (int, bool) {
	if b.Kind == SizeUnconstrained {
		return 0, false
	}
	return b.Lo, true
}

func (b ByteSize) String() string {
	switch b.Kind {
	case SizeExact:
		return fmt.Sprintf("%db", b.Lo)
	case SizeRange:
		return fmt.Sprintf("(%d..%d)b", b.Lo, b.Hi)
	default:
		return "any"
	}
}

// minWidth returns the fewest bytes (1, 2, 4 or 8) that hold v,
// accepting either a signed or an unsigned reading.
func minWidth(v int64) int {
	switch {
	case v >= -1<<7 && v < 1<<8:
		return 1
	case v >= -1<<15 && v < 1<<16:
		return 2
	case v >= -1<<31 && v < 1<<32:
		return 4
	default:
		return 8
	}
}
