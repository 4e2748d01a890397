// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package chunked_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/siderolabs/go-chunked"
)

func TestInsertAtFixedPosition(t *testing.T) {
	t.Parallel()

	for _, test := range []struct {
		name string

		options []chunked.OptionFunc
	}{
		{
			name: "linear",
		},
		{
			name: "skip index",

			options: []chunked.OptionFunc{chunked.WithSkipIndex()},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			req := require.New(t)

			b, source := buildSequence(t, 50000, 2000, test.options...)

			pattern := []int64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

			for range 8 {
				b.Insert(10, pattern, 1)
			}

			req.Equal(50080, b.Len())

			for i := range 10 {
				req.Equal(source[i], b.Get(i), "index %d", i)
			}

			for i := 10; i < 90; i++ {
				req.EqualValues(i%10, b.Get(i), "index %d", i)
			}

			out := b.ToArray()

			for i := 90; i < 50080; i++ {
				req.Equal(source[i-80], out[i], "index %d", i)
			}
		})
	}
}

func TestInsertRepeated(t *testing.T) {
	t.Parallel()

	req := require.New(t)

	b, err := chunked.NewBuilderFromSlice([]int16{1, 2, 3, 4})
	req.NoError(err)

	b.Insert(2, []int16{8, 9}, 3)

	req.Equal([]int16{1, 2, 8, 9, 8, 9, 8, 9, 3, 4}, b.ToArray())

	b.Insert(0, []int16{7}, 1)
	req.Equal([]int16{7, 1, 2, 8, 9, 8, 9, 8, 9, 3, 4}, b.ToArray())

	// count 0 inserts nothing
	b.Insert(5, []int16{6}, 0)
	req.Equal(11, b.Len())

	// insert at the end appends
	b.Insert(11, []int16{5, 5}, 2)
	req.Equal([]int16{7, 1, 2, 8, 9, 8, 9, 8, 9, 3, 4, 5, 5, 5, 5}, b.ToArray())
}

func TestInsertValidation(t *testing.T) {
	t.Parallel()

	b, _ := buildSequence(t, 100, 10)

	requirePanicsIs(t, chunked.ErrInvalidArgument, func() { b.Insert(0, nil, 1) })
	requirePanicsIs(t, chunked.ErrInvalidArgument, func() { b.Insert(0, []int64{1}, -1) })
	requirePanicsIs(t, chunked.ErrOutOfRange, func() { b.Insert(101, []int64{1}, 1) })
	requirePanicsIs(t, chunked.ErrOutOfRange, func() { b.Insert(-1, []int64{1}, 1) })

	limited, err := chunked.NewBuilder[int64](chunked.WithMaxCapacity(100))
	require.NoError(t, err)

	limited.AppendRepeat(1, 99)

	requirePanicsIs(t, chunked.ErrCapacityExceeded, func() { limited.Insert(50, []int64{1, 2}, 1) })
}

func TestRemoveSpan(t *testing.T) {
	t.Parallel()

	req := require.New(t)

	b, source := buildSequence(t, 50000, 2000)

	for range 8 {
		b.Remove(10, 2000)
	}

	req.Equal(34000, b.Len())

	for i := range 10 {
		req.Equal(source[i], b.Get(i), "index %d", i)
	}

	out := b.ToArray()

	for i := 10; i < 34000; i++ {
		req.Equal(source[i+16000], out[i], "index %d", i)
	}
}

func TestRemoveBoundaries(t *testing.T) {
	t.Parallel()

	req := require.New(t)

	b, err := chunked.NewBuilder[int64](chunked.WithInitialCapacity(10))
	req.NoError(err)

	source := make([]int64, 100)
	for i := range source {
		source[i] = int64(i)

		b.Append(int64(i))
	}

	// span aligned on chunk boundaries drops whole chunks
	b.Remove(10, 30)
	req.Equal(append(append([]int64{}, source[:10]...), source[40:]...), b.ToArray())

	// span inside a single chunk
	b.Remove(2, 5)
	req.Equal(65, b.Len())
	req.EqualValues(0, b.Get(0))
	req.EqualValues(7, b.Get(2))

	// remove the tail
	b.Remove(60, 5)
	req.Equal(60, b.Len())

	// remove everything resets to empty
	b.Remove(0, 60)
	req.Equal(0, b.Len())
	req.Empty(b.ToArray())

	b.Append(1, 2)
	req.Equal([]int64{1, 2}, b.ToArray())
}

func TestRemoveValidation(t *testing.T) {
	t.Parallel()

	b, _ := buildSequence(t, 100, 10)

	requirePanicsIs(t, chunked.ErrOutOfRange, func() { b.Remove(90, 11) })
	requirePanicsIs(t, chunked.ErrOutOfRange, func() { b.Remove(-1, 5) })
	requirePanicsIs(t, chunked.ErrOutOfRange, func() { b.Remove(0, -1) })
}

func TestInsertRemoveInversion(t *testing.T) {
	t.Parallel()

	req := require.New(t)

	b, source := buildSequence(t, 10000, 128)

	pattern := []int64{-1, -2, -3, -4, -5}

	for _, index := range []int{0, 1, 10, 127, 128, 129, 5000, 9999, 10000} {
		b.Insert(index, pattern, 1)
		req.Equal(10005, b.Len())

		b.Remove(index, len(pattern))

		req.Equal(10000, b.Len())
		req.Equal(source, b.ToArray(), "index %d", index)
	}
}

func TestScalarReplace(t *testing.T) {
	t.Parallel()

	req := require.New(t)

	// source[i] = 3i, so values 100002, 100005, ... fall into the window
	b, source := buildSequence(t, 50000, 2000)

	for v := int64(100000); v <= 100100; v++ {
		b.ReplaceValue(v, 0, 0, b.Len())
	}

	out := b.ToArray()

	for i := range source {
		if source[i] >= 100000 && source[i] <= 100100 {
			req.EqualValues(0, out[i], "index %d", i)
		} else {
			req.Equal(source[i], out[i], "index %d", i)
		}
	}
}

func TestReplaceValueWindow(t *testing.T) {
	t.Parallel()

	req := require.New(t)

	b, err := chunked.NewBuilderFromSlice([]byte("abcabcabc"))
	req.NoError(err)

	req.Equal(2, b.ReplaceValue('a', 'x', 1, 8))
	req.Equal([]byte("abcxbcxbc"), b.ToArray())

	req.Equal(0, b.ReplaceValue('a', 'y', 1, 8))
	req.Equal(1, b.ReplaceValue('a', 'y', 0, 9))
	req.Equal([]byte("ybcxbcxbc"), b.ToArray())

	requirePanicsIs(t, chunked.ErrOutOfRange, func() { b.ReplaceValue('a', 'z', 5, 5) })
}

func TestReplacePattern(t *testing.T) {
	t.Parallel()

	for _, test := range []struct {
		name string

		contents string
		old      string
		new      string

		expected   string
		occurrence int
	}{
		{
			name: "same size",

			contents: "the cat sat on the mat",
			old:      "at",
			new:      "og",

			expected:   "the cog sog on the mog",
			occurrence: 3,
		},
		{
			name: "growing",

			contents: "a-b-c-d",
			old:      "-",
			new:      "--",

			expected:   "a--b--c--d",
			occurrence: 3,
		},
		{
			name: "shrinking",

			contents: "aabbaabbaa",
			old:      "bb",
			new:      "b",

			expected:   "aabaabaa",
			occurrence: 2,
		},
		{
			name: "no match",

			contents: "aabbaabbaa",
			old:      "zz",
			new:      "b",

			expected:   "aabbaabbaa",
			occurrence: 0,
		},
		{
			name: "non-overlapping",

			contents: "aaaa",
			old:      "aa",
			new:      "b",

			expected:   "bb",
			occurrence: 2,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			req := require.New(t)

			// tiny chunks so patterns cross chunk boundaries
			b, err := chunked.NewBuilder[byte](chunked.WithInitialCapacity(3))
			req.NoError(err)

			for i := range len(test.contents) {
				b.Append(test.contents[i])
			}

			replaced := b.Replace([]byte(test.old), []byte(test.new), 0, b.Len())

			req.Equal(test.occurrence, replaced)
			req.Equal(test.expected, string(b.ToArray()))

			delta := (len(test.new) - len(test.old)) * replaced
			req.Equal(len(test.contents)+delta, b.Len())
		})
	}
}

func TestReplacePatternWindow(t *testing.T) {
	t.Parallel()

	req := require.New(t)

	b, err := chunked.NewBuilderFromSlice([]byte("xxoxxoxx"))
	req.NoError(err)

	// occurrences must lie entirely inside the window
	req.Equal(1, b.Replace([]byte("xx"), []byte("yy"), 1, 6))
	req.Equal("xxoyyoxx", string(b.ToArray()))

	requirePanicsIs(t, chunked.ErrInvalidArgument, func() { b.Replace(nil, []byte("a"), 0, 4) })
	requirePanicsIs(t, chunked.ErrInvalidArgument, func() { b.Replace([]byte("a"), nil, 0, -1) })
	requirePanicsIs(t, chunked.ErrOutOfRange, func() { b.Replace([]byte("a"), nil, 4, 5) })
}
