// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package chunked

// chunk is one node of the reverse-linked chain backing a Builder.
//
// The logical sequence is the concatenation of the live prefixes of all
// chunks, walking the prev links from the head down, in reverse order.
type chunk[T comparable] struct {
	// backing array; len(data) is the chunk capacity, and every chunk
	// except the head is kept full (length == len(data))
	data []T

	// previous chunk in logical order (lower offset), nil for the first one
	prev *chunk[T]

	// skip table: skip[n-1] references a chunk 2^n positions earlier in the
	// chain; populated only on chunks promoted at an even index
	skip []*chunk[T]

	// live prefix of data
	length int

	// logical index of data[0] within the whole sequence; set to -1 when
	// the chunk is spliced out of the chain
	offset int

	// promotion counter, 0 for the original head
	index int
}

// contains reports whether logical index i falls into the chunk's live range.
func (c *chunk[T]) contains(i int) bool {
	return c.offset <= i && i < c.offset+c.length
}
