// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package zstd implements stream snapshot compression with zstd.
package zstd

import (
	"fmt"
	"math"

	"github.com/klauspost/compress/zstd"

	"github.com/siderolabs/go-chunked"
)

// Compressor compresses and restores stream snapshots using zstd.
//
// A single Compressor can be shared by any number of snapshot operations.
type Compressor struct {
	dec *zstd.Decoder
	enc *zstd.Encoder
}

// Compressor implements the snapshot interface of the chunked package.
var _ chunked.Compressor = (*Compressor)(nil)

// NewCompressor creates new Compressor.
func NewCompressor(opts ...zstd.EOption) (*Compressor, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	enc, err := zstd.NewWriter(nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	return &Compressor{
		dec: dec,
		enc: enc,
	}, nil
}

// Compress a snapshot using zstd.
func (c *Compressor) Compress(src, dest []byte) ([]byte, error) {
	return c.enc.EncodeAll(src, dest), nil
}

// Decompress a snapshot using zstd.
func (c *Compressor) Decompress(src, dest []byte) ([]byte, error) {
	decompressed, err := c.dec.DecodeAll(src, dest)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress zstd frame: %w", err)
	}

	return decompressed, nil
}

// DecompressedSize returns the size of the decompressed snapshot.
//
// Non-empty snapshots produced by Compress carry the frame content size in
// the frame header; an empty snapshot holds no frame and has size 0. The size is also checked against the stream position
// bound, so a corrupt or foreign frame fails here instead of growing a
// stream past its contract.
func (c *Compressor) DecompressedSize(src []byte) (int64, error) {
	if len(src) == 0 {
		return 0, nil
	}

	var header zstd.Header

	if err := header.Decode(src); err != nil {
		return 0, fmt.Errorf("failed to decode snapshot frame header: %w", err)
	}

	if !header.HasFCS {
		return 0, fmt.Errorf("%w: frame content size is not set", chunked.ErrInvalidArgument)
	}

	if header.FrameContentSize > math.MaxInt32 {
		return 0, fmt.Errorf("%w: snapshot of %d bytes", chunked.ErrCapacityExceeded, header.FrameContentSize)
	}

	return int64(header.FrameContentSize), nil
}
