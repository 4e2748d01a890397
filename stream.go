// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package chunked

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/siderolabs/gen/optional"
)

// Stream is a random-access, resizable byte stream backed by a
// Builder[byte], so its contents never require a contiguous allocation.
//
// Stream implements io.Reader, io.Writer, io.Seeker, io.ByteReader,
// io.ByteWriter, io.WriterTo and io.Closer. Writes at a position below
// the length overwrite in place and append past the end; writing with
// the position past the end zero-fills the gap first.
//
// Position and length are bounded by math.MaxInt32 regardless of the
// platform word size.
//
// Stream is not safe for concurrent use.
type Stream struct {
	builder *Builder[byte]

	// memoized chunk containing the current position, dropped on every
	// mutation; makes sequential small reads O(1) per call
	cursor optional.Optional[*chunk[byte]]

	pos int

	open     bool
	writable bool
}

// NewStream creates an empty Stream with the specified options.
func NewStream(opts ...OptionFunc) (*Stream, error) {
	builder, err := NewBuilder[byte](opts...)
	if err != nil {
		return nil, err
	}

	return &Stream{
		builder:  builder,
		open:     true,
		writable: !builder.opt.ReadOnly,
	}, nil
}

// NewStreamFromBytes creates a Stream holding a copy of data, positioned
// at the start.
func NewStreamFromBytes(data []byte, opts ...OptionFunc) (*Stream, error) {
	builder, err := NewBuilderFromSlice(data, opts...)
	if err != nil {
		return nil, err
	}

	return &Stream{
		builder:  builder,
		open:     true,
		writable: !builder.opt.ReadOnly,
	}, nil
}

// Len returns the stream length.
func (s *Stream) Len() (int, error) {
	if !s.open {
		return 0, ErrClosed
	}

	return s.builder.Len(), nil
}

// Pos returns the current read/write position.
func (s *Stream) Pos() (int, error) {
	if !s.open {
		return 0, ErrClosed
	}

	return s.pos, nil
}

// Cap returns the total capacity of the backing chunks.
func (s *Stream) Cap() (int, error) {
	if !s.open {
		return 0, ErrClosed
	}

	return s.builder.Cap(), nil
}

// Writable reports whether the stream accepts writes.
func (s *Stream) Writable() bool {
	return s.open && s.writable
}

// Read implements io.Reader.
//
// Read copies up to len(p) bytes from the current position, advancing it.
func (s *Stream) Read(p []byte) (int, error) {
	if !s.open {
		return 0, ErrClosed
	}

	if len(p) == 0 {
		return 0, nil
	}

	length := s.builder.Len()
	if s.pos >= length {
		return 0, io.EOF
	}

	want := min(len(p), length-s.pos)

	n := 0
	for n < want {
		c := s.chunkAt(s.pos)

		m := min(want-n, c.offset+c.length-s.pos)
		copy(p[n:], c.data[s.pos-c.offset:s.pos-c.offset+m])

		n += m
		s.pos += m
	}

	return n, nil
}

// ReadByte implements io.ByteReader.
func (s *Stream) ReadByte() (byte, error) {
	if !s.open {
		return 0, ErrClosed
	}

	if s.pos >= s.builder.Len() {
		return 0, io.EOF
	}

	c := s.chunkAt(s.pos)
	v := c.data[s.pos-c.offset]
	s.pos++

	return v, nil
}

// Write implements io.Writer.
//
// Bytes below the current length are overwritten in place, the remainder
// appends. A position past the end zero-fills the gap first.
func (s *Stream) Write(p []byte) (int, error) {
	if err := s.checkWritable(); err != nil {
		return 0, err
	}

	if len(p) == 0 {
		return 0, nil
	}

	if len(p) > s.builder.MaxCap()-s.pos {
		return 0, fmt.Errorf("%w: writing %d bytes at position %d, max capacity %d", ErrCapacityExceeded, len(p), s.pos, s.builder.MaxCap())
	}

	s.cursor = optional.Optional[*chunk[byte]]{}

	length := s.builder.Len()

	if s.pos > length {
		s.builder.AppendRepeat(0, s.pos-length)
		length = s.pos
	}

	overwrite := min(length-s.pos, len(p))

	if overwrite > 0 {
		s.builder.copyIn(s.pos, p[:overwrite])
	}

	if overwrite < len(p) {
		s.builder.AppendSlice(p, overwrite, len(p)-overwrite)
	}

	s.pos += len(p)

	return len(p), nil
}

// WriteByte implements io.ByteWriter.
func (s *Stream) WriteByte(v byte) error {
	if err := s.checkWritable(); err != nil {
		return err
	}

	if s.pos == s.builder.Len() && s.pos < s.builder.MaxCap() {
		s.cursor = optional.Optional[*chunk[byte]]{}

		s.builder.Append(v)
		s.pos++

		return nil
	}

	var buf [1]byte

	buf[0] = v

	_, err := s.Write(buf[:])

	return err
}

// Seek implements io.Seeker.
//
// Seeking past the end is allowed up to math.MaxInt32; seeking before the
// start fails with ErrSeekBeforeStart.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	if !s.open {
		return 0, ErrClosed
	}

	var base int64

	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = int64(s.pos)
	case io.SeekEnd:
		base = int64(s.builder.Len())
	default:
		return int64(s.pos), fmt.Errorf("%w: unknown seek whence %d", ErrInvalidArgument, whence)
	}

	newOff := base + offset

	if newOff < 0 {
		return int64(s.pos), ErrSeekBeforeStart
	}

	if newOff > math.MaxInt32 {
		return int64(s.pos), fmt.Errorf("%w: position %d", ErrCapacityExceeded, newOff)
	}

	s.pos = int(newOff)

	return newOff, nil
}

// SetLen truncates or zero-extends the stream to length n.
//
// The position is left untouched, even if it ends up past the new end.
func (s *Stream) SetLen(n int) error {
	if err := s.checkWritable(); err != nil {
		return err
	}

	if n < 0 {
		return fmt.Errorf("%w: length is negative: %d", ErrInvalidArgument, n)
	}

	if n > s.builder.MaxCap() {
		return fmt.Errorf("%w: length %d, max capacity %d", ErrCapacityExceeded, n, s.builder.MaxCap())
	}

	s.cursor = optional.Optional[*chunk[byte]]{}

	s.builder.SetLen(n)

	return nil
}

// Bytes materializes the contents as a contiguous byte slice.
//
// The result is a snapshot, not an aliasing view of the chunks. Bytes
// keeps working after Close.
func (s *Stream) Bytes() []byte {
	return s.builder.ToArray()
}

// WriteTo implements io.WriterTo: it writes everything from the current
// position to the end, advancing the position by the amount written.
func (s *Stream) WriteTo(w io.Writer) (int64, error) {
	if !s.open {
		return 0, ErrClosed
	}

	n, err := s.writeRange(w, s.pos)

	s.pos += int(n)

	return n, err
}

// CopyTo copies everything from the current position to the end into dst.
//
// The context is checked once at entry; the copy itself is synchronous
// and runs to completion. When dst is another Stream, the destination
// capacity is pre-grown so the copy does not reallocate per chunk.
func (s *Stream) CopyTo(ctx context.Context, dst io.Writer) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if !s.open {
		return 0, ErrClosed
	}

	if ds, ok := dst.(*Stream); ok && ds.Writable() {
		remaining := s.builder.Len() - s.pos

		if needed := ds.pos + remaining; remaining > 0 && needed <= ds.builder.MaxCap() && needed > ds.builder.Cap() {
			ds.builder.SetCap(needed)
		}
	}

	return s.WriteTo(dst)
}

// Flush is a no-op: nothing is buffered outside the chunks.
func (s *Stream) Flush() error {
	if !s.open {
		return ErrClosed
	}

	return nil
}

// Close implements io.Closer.
//
// Closing flips the stream into the closed, non-writable state; the
// backing chunks are retained so Bytes keeps working. Double close is a
// no-op.
func (s *Stream) Close() error {
	s.open = false
	s.writable = false

	return nil
}

func (s *Stream) checkWritable() error {
	if !s.open {
		return ErrClosed
	}

	if !s.writable {
		return ErrNotWritable
	}

	return nil
}

// chunkAt returns the chunk containing position pos, consulting the
// memoized cursor first.
func (s *Stream) chunkAt(pos int) *chunk[byte] {
	if c, ok := s.cursor.Get(); ok && c.contains(pos) {
		return c
	}

	c := s.builder.findChunk(pos)
	s.cursor = optional.Some(c)

	return c
}

// writeRange writes the contents from logical position from to the end
// into w, walking the chunks in forward order.
func (s *Stream) writeRange(w io.Writer, from int) (int64, error) {
	chunks := s.builder.chunkList()

	var total int64

	for i := len(chunks) - 1; i >= 0; i-- {
		c := chunks[i]

		if c.offset+c.length <= from {
			continue
		}

		lo := max(from, c.offset)

		n, err := w.Write(c.data[lo-c.offset : c.length])
		total += int64(n)

		if err != nil {
			return total, err
		}
	}

	return total, nil
}
