// Package records walks the repeated fixed-width sample records that trail
// periodic data frames.
package records

// Series describes samples laid out back to back from Start, each Stride
// bytes wide. Sample 1 is the one at Start; later samples are older.
type Series struct {
	Start  int
	Stride int
}

// Each calls fn for every sample that starts before length, in order, with
// the 1-based sample index and its byte offset.
func (s Series) Each(length int, fn func(index, offset int)) {
	if s.Stride <= 0 {
		return
	}
	for off, idx := s.Start, 1; off < length; off, idx = off+s.Stride, idx+1 {
		fn(idx, off)
	}
}

