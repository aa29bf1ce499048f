package set

import (
	"math/bits"

	"tlog.app/go/tlog/tlwire"
)

type (
	// Bitmap is a set of local slot numbers.
	// Zero value is an empty set.
	Bitmap struct {
		w []uint64
	}
)

// Add puts slot n into the set.
// It reports false if n was already there.
func (s *Bitmap) Add(n int) bool {
	i, m := n/64, uint64(1)<<(n%64)

	for i >= len(s.w) {
		s.w = append(s.w, 0)
	}

	if s.w[i]&m != 0 {
		return false
	}

	s.w[i] |= m

	return true
}

func (s *Bitmap) Has(n int) bool {
	i := n / 64

	return i < len(s.w) && s.w[i]&(1<<(n%64)) != 0
}

// Size is the number of slots in the set.
func (s *Bitmap) Size() (r int) {
	for _, x := range s.w {
		r += bits.OnesCount64(x)
	}

	return r
}

// Len is one past the highest slot, 0 for an empty set.
func (s *Bitmap) Len() int {
	for i := len(s.w) - 1; i >= 0; i-- {
		if s.w[i] != 0 {
			return i*64 + 64 - bits.LeadingZeros64(s.w[i])
		}
	}

	return 0
}

// Dense reports whether the set is exactly 0..Len()-1.
func (s *Bitmap) Dense() bool {
	return s.Size() == s.Len()
}

// Missing returns the first slot below Len() not in the set, -1 if Dense.
func (s *Bitmap) Missing() int {
	for i, x := range s.w {
		if x != ^uint64(0) {
			n := i*64 + bits.TrailingZeros64(^x)
			if n < s.Len() {
				return n
			}

			return -1
		}
	}

	return -1
}

func (s *Bitmap) Reset() {
	s.w = s.w[:0]
}

func (s *Bitmap) Range(f func(n int) bool) {
	for i, x := range s.w {
		for x != 0 {
			j := bits.TrailingZeros64(x)
			x &^= 1 << j

			if !f(i*64 + j) {
				return
			}
		}
	}
}

func (s Bitmap) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	b = e.AppendTag(b, tlwire.Array, -1)

	s.Range(func(n int) bool {
		b = e.AppendInt(b, n)

		return true
	})

	return e.AppendBreak(b)
}
