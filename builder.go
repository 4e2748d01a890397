// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package chunked provides a chunked mutable sequence of fixed-size values
// and a byte stream facade over it.
package chunked

import (
	"fmt"
	"unsafe"

	"github.com/siderolabs/gen/xslices"
	"go.uber.org/zap"
)

// Builder is an append-optimized mutable sequence of values of type T,
// stored as a reverse-linked chain of array chunks.
//
// The head chunk is the logical tail of the sequence, so appends write
// into the head with no pointer chasing; when the head fills up, its
// array is frozen into a new previous node and the head is repointed at
// a fresh array. The sequence never requires a single contiguous
// allocation, which keeps very large buffers off the large-object path
// of the allocator.
//
// Builder is not safe for concurrent use; mutation methods are serialized
// by the caller. Argument misuse panics with an error wrapping one of the
// sentinel errors of this package.
type Builder[T comparable] struct {
	head *chunk[T]
	opt  Options
}

// NewBuilder creates an empty Builder with the specified options.
func NewBuilder[T comparable](opts ...OptionFunc) (*Builder[T], error) {
	opt, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}

	return &Builder[T]{
		head: &chunk[T]{data: make([]T, opt.InitialCapacity)},
		opt:  opt,
	}, nil
}

// NewBuilderFromSlice creates a Builder holding a copy of values.
func NewBuilderFromSlice[T comparable](values []T, opts ...OptionFunc) (*Builder[T], error) {
	opt, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}

	if len(values) > opt.MaxCapacity {
		return nil, fmt.Errorf("initial contents (%d values) exceed max capacity (%d)", len(values), opt.MaxCapacity)
	}

	head := &chunk[T]{
		data:   make([]T, max(len(values), opt.InitialCapacity)),
		length: len(values),
	}

	copy(head.data, values)

	return &Builder[T]{
		head: head,
		opt:  opt,
	}, nil
}

// Len returns the logical length of the sequence.
func (b *Builder[T]) Len() int {
	return b.head.offset + b.head.length
}

// Cap returns the total capacity across all chunks.
func (b *Builder[T]) Cap() int {
	return b.head.offset + len(b.head.data)
}

// MaxCap returns the maximum logical length the sequence may grow to.
func (b *Builder[T]) MaxCap() int {
	return b.opt.MaxCapacity
}

// Get returns the value at logical index i.
//
// Get panics with ErrOutOfRange if i is outside [0, Len).
func (b *Builder[T]) Get(i int) T {
	if i < 0 || i >= b.Len() {
		panic(fmt.Errorf("%w: index %d, length %d", ErrOutOfRange, i, b.Len()))
	}

	c := b.findChunk(i)

	return c.data[i-c.offset]
}

// Set replaces the value at logical index i.
//
// Set panics with ErrOutOfRange if i is outside [0, Len).
func (b *Builder[T]) Set(i int, value T) {
	if i < 0 || i >= b.Len() {
		panic(fmt.Errorf("%w: index %d, length %d", ErrOutOfRange, i, b.Len()))
	}

	c := b.findChunk(i)

	c.data[i-c.offset] = value
}

// Append appends values to the end of the sequence.
//
// One- and two-value appends which fit into the head chunk are inlined,
// as they dominate value-at-a-time building.
func (b *Builder[T]) Append(values ...T) {
	head := b.head

	switch {
	case len(values) == 1 && head.length < len(head.data):
		head.data[head.length] = values[0]
		head.length++
	case len(values) == 2 && head.length+2 <= len(head.data):
		head.data[head.length] = values[0]
		head.data[head.length+1] = values[1]
		head.length += 2
	default:
		b.AppendSlice(values, 0, len(values))
	}
}

// AppendRepeat appends repeatCount copies of value.
func (b *Builder[T]) AppendRepeat(value T, repeatCount int) {
	if repeatCount < 0 {
		panic(fmt.Errorf("%w: repeat count is negative: %d", ErrInvalidArgument, repeatCount))
	}

	for repeatCount > 0 {
		head := b.head

		room := len(head.data) - head.length
		if room == 0 {
			b.expand(1)

			continue
		}

		m := min(room, repeatCount)

		for i := head.length; i < head.length+m; i++ {
			head.data[i] = value
		}

		head.length += m
		repeatCount -= m
	}
}

// AppendSlice appends count values starting at values[start].
//
// The head is filled first; at most one new chunk is allocated for the
// remainder, sized max(remainder, min(Len, MaxChunkSize)), so it may keep
// slack past the remainder.
func (b *Builder[T]) AppendSlice(values []T, start, count int) {
	if start < 0 || count < 0 || start+count > len(values) {
		panic(fmt.Errorf("%w: range [%d, %d) does not fit the source of %d values", ErrInvalidArgument, start, start+count, len(values)))
	}

	if count == 0 {
		return
	}

	head := b.head

	m := min(len(head.data)-head.length, count)
	copy(head.data[head.length:], values[start:start+m])
	head.length += m

	remaining := count - m
	if remaining == 0 {
		return
	}

	b.expandTo(max(remaining, min(b.Len(), MaxChunkSize)), remaining)

	head = b.head
	copy(head.data, values[start+m:start+count])
	head.length = remaining
}

// expand promotes a full head and allocates a fresh head array sized by
// the growth formula: min(max(minNeeded, Len), MaxChunkSize).
func (b *Builder[T]) expand(minNeeded int) {
	b.expandTo(min(max(minNeeded, b.Len()), MaxChunkSize), minNeeded)
}

// expandTo promotes the current head into a frozen previous node and
// repoints the head at a fresh backing array of the given size.
//
// The head must be full. Running over MaxCapacity is a capacity failure.
func (b *Builder[T]) expandTo(size, minNeeded int) {
	head := b.head

	if head.length != len(head.data) {
		panic(fmt.Sprintf("chunked: expanding a head with slack: %d of %d", head.length, len(head.data)))
	}

	newOffset := head.offset + head.length

	if size > b.opt.MaxCapacity-newOffset {
		size = b.opt.MaxCapacity - newOffset
	}

	if size < minNeeded {
		panic(fmt.Errorf("%w: need %d more values at offset %d, max capacity %d", ErrCapacityExceeded, minNeeded, newOffset, b.opt.MaxCapacity))
	}

	frozen := &chunk[T]{
		data:   head.data,
		prev:   head.prev,
		skip:   head.skip,
		length: head.length,
		offset: head.offset,
		index:  head.index,
	}

	head.prev = frozen
	head.offset = newOffset
	head.length = 0
	head.index++
	head.skip = nil
	head.data = make([]T, size)

	if b.opt.UseSkipIndex {
		b.populateSkipIndex(head)
	}
}

// SetCap reallocates the head backing array so that the total capacity
// becomes capacity.
//
// SetCap panics if capacity is below Len or above MaxCap.
func (b *Builder[T]) SetCap(capacity int) {
	if capacity < b.Len() {
		panic(fmt.Errorf("%w: capacity %d is below length %d", ErrInvalidArgument, capacity, b.Len()))
	}

	if capacity > b.opt.MaxCapacity {
		panic(fmt.Errorf("%w: capacity %d, max capacity %d", ErrCapacityExceeded, capacity, b.opt.MaxCapacity))
	}

	head := b.head

	data := make([]T, capacity-head.offset)
	copy(data, head.data[:head.length])
	head.data = data

	b.opt.Logger.Debug("reallocated head chunk", zap.Int("capacity", capacity))
}

// SetLen grows or shrinks the sequence to length n.
//
// Growing appends zero values. Shrinking repoints the head at the chunk
// containing the new end, preserving the total capacity.
func (b *Builder[T]) SetLen(n int) {
	if n < 0 {
		panic(fmt.Errorf("%w: length is negative: %d", ErrInvalidArgument, n))
	}

	if n > b.opt.MaxCapacity {
		panic(fmt.Errorf("%w: length %d, max capacity %d", ErrCapacityExceeded, n, b.opt.MaxCapacity))
	}

	length := b.Len()

	switch {
	case n > length:
		var zero T

		b.AppendRepeat(zero, n-length)
	case n < length:
		b.shrink(n)
	}
}

func (b *Builder[T]) shrink(n int) {
	capacity := b.Cap()

	c := b.head
	for c.offset >= n && c.prev != nil {
		c = c.prev
	}

	if c != b.head {
		// enlarge the backing array so the shrunk sequence keeps the total
		// capacity it had before
		data := make([]T, capacity-c.offset)
		copy(data, c.data[:c.length])
		c.data = data

		b.head = c

		b.opt.Logger.Debug("repointed head on shrink", zap.Int("length", n), zap.Int("chunk_index", c.index))
	}

	c.length = n - c.offset
}

// reset drops all chunks and restores the empty single-head state.
func (b *Builder[T]) reset() {
	b.head = &chunk[T]{data: make([]T, b.opt.InitialCapacity)}
}

// CopyTo copies count values starting at logical index srcIdx into
// dest[destIdx:], walking the chunk chain backward from the end of the
// range.
func (b *Builder[T]) CopyTo(srcIdx int, dest []T, destIdx, count int) {
	if srcIdx < 0 || count < 0 || srcIdx+count > b.Len() {
		panic(fmt.Errorf("%w: range [%d, %d), length %d", ErrOutOfRange, srcIdx, srcIdx+count, b.Len()))
	}

	if destIdx < 0 || destIdx+count > len(dest) {
		panic(fmt.Errorf("%w: range [%d, %d) does not fit the destination of %d values", ErrInvalidArgument, destIdx, destIdx+count, len(dest)))
	}

	end := srcIdx + count

	for c := b.head; c != nil; c = c.prev {
		if c.offset >= end {
			continue
		}

		if c.offset+c.length <= srcIdx {
			break
		}

		lo := max(srcIdx, c.offset)
		hi := min(end, c.offset+c.length)

		copy(dest[destIdx+lo-srcIdx:destIdx+hi-srcIdx], c.data[lo-c.offset:hi-c.offset])
	}
}

// copyIn writes values over the range starting at logical index idx,
// which must lie entirely within the sequence.
func (b *Builder[T]) copyIn(idx int, values []T) {
	end := idx + len(values)

	for c := b.head; c != nil; c = c.prev {
		if c.offset >= end {
			continue
		}

		if c.offset+c.length <= idx {
			break
		}

		lo := max(idx, c.offset)
		hi := min(end, c.offset+c.length)

		copy(c.data[lo-c.offset:hi-c.offset], values[lo-idx:hi-idx])
	}
}

// ToArray materializes the sequence as a single contiguous slice.
func (b *Builder[T]) ToArray() []T {
	out := make([]T, b.Len())

	for c := b.head; c != nil; c = c.prev {
		if c.offset+c.length > len(out) {
			panic(fmt.Sprintf("chunked: chunk [%d, %d) overruns sequence of length %d", c.offset, c.offset+c.length, len(out)))
		}

		copy(out[c.offset:], c.data[:c.length])
	}

	return out
}

// Slice copies the sub-range [start, start+length) into a new slice.
func (b *Builder[T]) Slice(start, length int) []T {
	if start < 0 || length < 0 || start+length > b.Len() {
		panic(fmt.Errorf("%w: range [%d, %d), length %d", ErrOutOfRange, start, start+length, b.Len()))
	}

	out := make([]T, length)

	b.CopyTo(start, out, 0, length)

	return out
}

// Equal reports whether both sequences hold the same values with the same
// length, capacity and maximum capacity.
//
// The chains are walked backward in parallel, so differently chunked
// sequences compare correctly without materializing either side.
func (b *Builder[T]) Equal(other *Builder[T]) bool {
	if other == nil {
		return false
	}

	if b.Len() != other.Len() || b.Cap() != other.Cap() || b.MaxCap() != other.MaxCap() {
		return false
	}

	ca, cb := b.head, other.head
	ia, ib := ca.length, cb.length

	for {
		for ca != nil && ia == 0 {
			ca = ca.prev

			if ca != nil {
				ia = ca.length
			}
		}

		for cb != nil && ib == 0 {
			cb = cb.prev

			if cb != nil {
				ib = cb.length
			}
		}

		if ca == nil || cb == nil {
			return ca == nil && cb == nil
		}

		ia--
		ib--

		if ca.data[ia] != cb.data[ib] {
			return false
		}
	}
}

// MemSize reports the memory held by backing arrays and skip tables, in bytes.
func (b *Builder[T]) MemSize() int {
	var (
		elem T
		ptr  uintptr
	)

	sizes := xslices.Map(b.chunkList(), func(c *chunk[T]) int {
		return len(c.data)*int(unsafe.Sizeof(elem)) + len(c.skip)*int(unsafe.Sizeof(ptr))
	})

	var total int

	for _, s := range sizes {
		total += s
	}

	return total
}

// chunkList collects the chain into a slice, head first.
func (b *Builder[T]) chunkList() []*chunk[T] {
	var list []*chunk[T]

	for c := b.head; c != nil; c = c.prev {
		list = append(list, c)
	}

	return list
}
