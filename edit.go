// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package chunked

import (
	"fmt"
)

// Insert inserts count concatenated copies of values at logical index.
//
// index may equal Len, in which case Insert degrades to an append. The
// total number of inserted values must fit under MaxCap.
func (b *Builder[T]) Insert(index int, values []T, count int) {
	if values == nil {
		panic(fmt.Errorf("%w: values is nil", ErrInvalidArgument))
	}

	if count < 0 {
		panic(fmt.Errorf("%w: count is negative: %d", ErrInvalidArgument, count))
	}

	if index < 0 || index > b.Len() {
		panic(fmt.Errorf("%w: insert index %d, length %d", ErrOutOfRange, index, b.Len()))
	}

	total := len(values) * count
	if total > b.opt.MaxCapacity-b.Len() {
		panic(fmt.Errorf("%w: inserting %d values at length %d, max capacity %d", ErrCapacityExceeded, total, b.Len(), b.opt.MaxCapacity))
	}

	if total == 0 {
		return
	}

	if index == b.Len() {
		for range count {
			b.AppendSlice(values, 0, len(values))
		}

		return
	}

	c, at := b.makeRoom(index, total)

	for i := range count {
		copy(c.data[at+i*len(values):], values)
	}
}

// makeRoom opens a gap of count values starting at logical index,
// returning the chunk holding the gap and the gap position within it.
//
// Chunks after the gap have their offsets shifted up front. The gap is
// opened in place when the target chunk is small and has enough slack
// (only the head ever does); otherwise the target chunk is split: a new
// chunk adopts the prefix plus the gap, and the remainder keeps the tail
// of the original backing array. The gap is always contiguous within the
// returned chunk.
func (b *Builder[T]) makeRoom(index, count int) (*chunk[T], int) {
	c := b.head

	for c.offset > index {
		c.offset += count
		c = c.prev
	}

	at := index - c.offset

	if c.length <= DefaultCapacity*2 && len(c.data)-c.length >= count {
		copy(c.data[at+count:c.length+count], c.data[at:c.length])
		c.length += count

		return c, at
	}

	split := &chunk[T]{
		data:   make([]T, at+count),
		prev:   c.prev,
		length: at + count,
		offset: c.offset,
		index:  c.index,
	}

	copy(split.data, c.data[:at])

	c.data = c.data[at:]
	c.length -= at
	c.offset += at + count
	c.prev = split

	b.head.index++
	b.head.skip = nil

	if b.opt.UseSkipIndex {
		b.populateSkipIndex(b.head)
	}

	return split, at
}

// Remove deletes the range [start, start+length) from the sequence.
//
// Removing the entire sequence resets it to the empty single-chunk state.
func (b *Builder[T]) Remove(start, length int) {
	if start < 0 || length < 0 || start+length > b.Len() {
		panic(fmt.Errorf("%w: range [%d, %d), length %d", ErrOutOfRange, start, start+length, b.Len()))
	}

	if length == 0 {
		return
	}

	if start == 0 && length == b.Len() {
		b.reset()

		return
	}

	b.removeRange(start, length)
}

//nolint:gocognit
func (b *Builder[T]) removeRange(start, count int) {
	end := start + count

	// shift down everything past the removed span
	var above *chunk[T]

	c := b.head

	for c.offset >= end {
		c.offset -= count
		above = c
		c = c.prev
	}

	// c holds the last removed value; end <= c.offset + c.length
	endIdx := end - c.offset

	if c.offset <= start {
		// the whole span is inside c
		at := start - c.offset

		copy(c.data[at:], c.data[endIdx:c.length])
		c.length -= count

		if c != b.head {
			c.data = c.data[:c.length]
		}

		if c.length == 0 && c != b.head {
			above.prev = c.prev
			c.offset = -1
		}

		return
	}

	// chunks strictly between the boundary chunks are dropped whole
	s := c.prev

	for s.offset > start {
		dead := s
		s = s.prev
		dead.offset = -1
	}

	at := start - s.offset

	link := s

	if at == 0 {
		link = s.prev
		s.offset = -1
	} else {
		s.length = at
		s.data = s.data[:at]
	}

	// slide the surviving tail of c down to the start of the hole
	c.data = c.data[endIdx:]
	c.length -= endIdx
	c.offset = start
	c.prev = link

	if c.length == 0 && c != b.head {
		above.prev = link
		c.offset = -1
	}
}

// Replace substitutes every occurrence of old with new within the window
// [start, start+count), returning the number of occurrences replaced.
//
// Occurrences are matched left to right without overlap and must lie
// entirely inside the window. old must not be empty.
func (b *Builder[T]) Replace(old, new []T, start, count int) int {
	if len(old) == 0 {
		panic(fmt.Errorf("%w: old is empty", ErrInvalidArgument))
	}

	if count < 0 {
		panic(fmt.Errorf("%w: count is negative: %d", ErrInvalidArgument, count))
	}

	if start < 0 || start+count > b.Len() {
		panic(fmt.Errorf("%w: window [%d, %d), length %d", ErrOutOfRange, start, start+count, b.Len()))
	}

	var matches []int

	for p := start; p+len(old) <= start+count; {
		if b.matchAt(p, old) {
			matches = append(matches, p)
			p += len(old)
		} else {
			p++
		}
	}

	if len(matches) == 0 {
		return 0
	}

	if len(new) == len(old) {
		for _, p := range matches {
			b.copyIn(p, new)
		}

		return len(matches)
	}

	// applied back to front so earlier match positions stay valid while
	// the sequence length changes
	common := min(len(old), len(new))

	for i := len(matches) - 1; i >= 0; i-- {
		p := matches[i]

		b.copyIn(p, new[:common])

		if len(new) > len(old) {
			b.Insert(p+len(old), new[len(old):], 1)
		} else {
			b.Remove(p+len(new), len(old)-len(new))
		}
	}

	return len(matches)
}

// matchAt reports whether the sequence carries pattern starting at p,
// returning false on the first mismatch.
func (b *Builder[T]) matchAt(p int, pattern []T) bool {
	c := b.findChunk(p)

	for i, v := range pattern {
		for p+i >= c.offset+c.length {
			c = b.findChunk(p + i)
		}

		if c.data[p+i-c.offset] != v {
			return false
		}
	}

	return true
}

// ReplaceValue substitutes new for every value equal to old within the
// window [start, start+count), in place, returning the number of
// substitutions.
//
// The chain is walked backward from the chunk containing the window end.
func (b *Builder[T]) ReplaceValue(old, new T, start, count int) int {
	if count < 0 {
		panic(fmt.Errorf("%w: count is negative: %d", ErrInvalidArgument, count))
	}

	if start < 0 || start+count > b.Len() {
		panic(fmt.Errorf("%w: window [%d, %d), length %d", ErrOutOfRange, start, start+count, b.Len()))
	}

	if count == 0 {
		return 0
	}

	end := start + count
	replaced := 0

	for c := b.findChunk(end - 1); c != nil; c = c.prev {
		if c.offset+c.length <= start {
			break
		}

		lo := max(start, c.offset)
		hi := min(end, c.offset+c.length)

		for i := lo - c.offset; i < hi-c.offset; i++ {
			if c.data[i] == old {
				c.data[i] = new
				replaced++
			}
		}
	}

	return replaced
}
