// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package chunked

import "errors"

// Errors returned by Stream operations and carried by Builder panics.
var (
	// ErrClosed is returned when an operation requires an open stream.
	ErrClosed = errors.New("stream is closed")

	// ErrNotWritable is returned when writing to a read-only stream.
	ErrNotWritable = errors.New("stream is not writable")

	// ErrSeekBeforeStart is returned when a seek would move the position before the start of the stream.
	ErrSeekBeforeStart = errors.New("seek position is before the start of the stream")

	// ErrInvalidArgument indicates a malformed argument: a negative count, a nil
	// required input, or a range which doesn't fit the supplied buffer.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOutOfRange indicates a logical index outside the sequence bounds.
	ErrOutOfRange = errors.New("index out of range")

	// ErrCapacityExceeded indicates growth beyond the configured maximum capacity.
	ErrCapacityExceeded = errors.New("maximum capacity exceeded")
)
