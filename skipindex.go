// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package chunked

// The skip table is a sparse hierarchy of back-pointers over the chunk
// chain. A chunk promoted at index i carries an entry for every exponent
// n with 2^n dividing i, referencing the chunk 2^n positions earlier.
// Every second chunk can thus be reached with stride 2, every fourth with
// stride 4, and so on, which turns the linear back-walk of a random index
// lookup into a coarse-to-fine descent.
//
// Below SkipIndexThreshold chunks the plain walk wins on constant factor,
// so the descent only engages above it.

// populateSkipIndex fills the skip table of a freshly promoted head.
//
// The stride-2 entry is the chunk two positions back. Each coarser stride
// 2^n is copied from the first chunk, found by hopping backward from
// there (two chunks at a time through stride-2 entries), whose table
// already carries stride 2^(n-1).
func (b *Builder[T]) populateSkipIndex(head *chunk[T]) {
	idx := head.index

	if idx == 0 || idx%2 != 0 || head.prev == nil {
		return
	}

	back := head.prev.prev
	if back == nil {
		return
	}

	for n := 1; 1<<n <= idx && idx%(1<<n) == 0; n++ {
		if n == 1 {
			head.skip = append(head.skip, back)

			continue
		}

		c := back

		for c != nil && len(c.skip) < n-1 {
			if len(c.skip) > 0 {
				c = c.skip[0]
			} else {
				c = c.prev
			}
		}

		if c == nil {
			return
		}

		head.skip = append(head.skip, c.skip[n-2])
	}
}

// findChunk locates the chunk containing logical index target.
//
// The caller guarantees 0 <= target < Len. Descent rule: follow the
// largest-stride entry whose chunk still lies after the target (its
// current offset is above it), otherwise step to the previous chunk.
// Entries are only trusted through their current offset, so pointers to
// chunks spliced out by Remove (offset -1) are never followed.
func (b *Builder[T]) findChunk(target int) *chunk[T] {
	c := b.head

	for c.offset > target {
		if b.opt.UseSkipIndex && c.index > SkipIndexThreshold && len(c.skip) > 0 {
			stepped := false

			for n := len(c.skip) - 1; n >= 0; n-- {
				if c.skip[n].offset > target {
					c = c.skip[n]
					stepped = true

					break
				}
			}

			if !stepped {
				c = c.prev
			}

			continue
		}

		c = c.prev
	}

	return c
}
