// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package chunked

import (
	"fmt"

	"go.uber.org/zap"
)

// Compressor implements an optional interface for snapshot compression.
//
// Compress and Decompress append to the dest slice and return the result.
//
// Compressor should be safe for concurrent use by multiple goroutines.
// Compressor should verify checksums of the compressed data.
type Compressor interface {
	Compress(src, dest []byte) ([]byte, error)
	Decompress(src, dest []byte) ([]byte, error)
	DecompressedSize(src []byte) (int64, error)
}

// Snapshot returns the full stream contents compressed with c.
//
// The position is unaffected, and Snapshot keeps working after Close,
// like Bytes.
func (s *Stream) Snapshot(c Compressor) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: compressor is nil", ErrInvalidArgument)
	}

	compressed, err := c.Compress(s.builder.ToArray(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to compress snapshot: %w", err)
	}

	s.builder.opt.Logger.Debug("compressed snapshot",
		zap.Int("size", s.builder.Len()),
		zap.Int("compressed_size", len(compressed)),
	)

	return compressed, nil
}

// NewStreamFromSnapshot creates a Stream holding the decompressed
// contents of a snapshot produced by Snapshot, positioned at the start.
func NewStreamFromSnapshot(data []byte, c Compressor, opts ...OptionFunc) (*Stream, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: compressor is nil", ErrInvalidArgument)
	}

	size, err := c.DecompressedSize(data)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot size: %w", err)
	}

	decompressed, err := c.Decompress(data, make([]byte, 0, size))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
	}

	s, err := NewStreamFromBytes(decompressed, opts...)
	if err != nil {
		return nil, err
	}

	s.builder.opt.Logger.Debug("restored snapshot",
		zap.Int("size", len(decompressed)),
		zap.Int("compressed_size", len(data)),
	)

	return s, nil
}
