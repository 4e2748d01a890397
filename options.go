// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package chunked

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

const (
	// DefaultCapacity is the initial head chunk capacity.
	DefaultCapacity = 16

	// MaxChunkSize caps the backing array length of promoted chunks.
	MaxChunkSize = 2000

	// SkipIndexThreshold is the minimum chunk index before lookups consult
	// the skip table instead of walking the chain one chunk at a time.
	SkipIndexThreshold = 400
)

// Options defines settings for Builder and Stream.
type Options struct {
	Logger *zap.Logger

	InitialCapacity int
	MaxCapacity     int

	UseSkipIndex bool
	ReadOnly     bool
}

// defaultOptions returns default initial values.
func defaultOptions() Options {
	return Options{
		InitialCapacity: DefaultCapacity,
		MaxCapacity:     math.MaxInt32,
		Logger:          zap.NewNop(),
	}
}

// OptionFunc allows setting Builder and Stream options.
type OptionFunc func(*Options) error

func buildOptions(opts []OptionFunc) (Options, error) {
	opt := defaultOptions()

	for _, o := range opts {
		if err := o(&opt); err != nil {
			return opt, err
		}
	}

	if opt.InitialCapacity > opt.MaxCapacity {
		return opt, fmt.Errorf("initial capacity (%d) should be less or equal to max capacity (%d)", opt.InitialCapacity, opt.MaxCapacity)
	}

	return opt, nil
}

// WithInitialCapacity sets the capacity of the head chunk at construction.
func WithInitialCapacity(capacity int) OptionFunc {
	return func(opt *Options) error {
		if capacity <= 0 {
			return fmt.Errorf("initial capacity should be positive: %d", capacity)
		}

		opt.InitialCapacity = capacity

		return nil
	}
}

// WithMaxCapacity sets the maximum logical length of the sequence.
//
// The default is math.MaxInt32, which is also the hard upper bound.
func WithMaxCapacity(capacity int) OptionFunc {
	return func(opt *Options) error {
		if capacity <= 0 {
			return fmt.Errorf("max capacity should be positive: %d", capacity)
		}

		if capacity > math.MaxInt32 {
			return fmt.Errorf("max capacity should not exceed %d: %d", math.MaxInt32, capacity)
		}

		opt.MaxCapacity = capacity

		return nil
	}
}

// WithSkipIndex enables the per-chunk skip table.
//
// The table accelerates random index lookups once the chain grows past
// SkipIndexThreshold chunks, at the cost of a few back-pointers per
// promoted chunk. Sequences below the threshold are unaffected.
func WithSkipIndex() OptionFunc {
	return func(opt *Options) error {
		opt.UseSkipIndex = true

		return nil
	}
}

// WithReadOnly makes a Stream reject writes.
//
// It has no effect on a Builder.
func WithReadOnly() OptionFunc {
	return func(opt *Options) error {
		opt.ReadOnly = true

		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) OptionFunc {
	return func(opt *Options) error {
		opt.Logger = logger

		return nil
	}
}
