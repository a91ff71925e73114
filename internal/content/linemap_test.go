package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedAll(m *LineMap, data []byte) {
	m.Next(data, true)
}

// S2 — CRLF handling, at the LineMap level: CRLF and LF terminators both
// close a logical line and advance the physical line number.
func TestLineMap_S2_CRLFBoundary(t *testing.T) {
	m := NewLineMap(textIteratorOpts(), true, true)
	feedAll(m, []byte("hi\r\nok\n"))

	require.Equal(t, 2, m.Count())
	assert.Equal(t, FileOffset(0), m.GetOffset(0))
	assert.Equal(t, FileOffset(4), m.GetOffset(1))
	assert.Equal(t, FileOffset(7), m.Processed())
	assert.Equal(t, 1, m.GetLineNumber(0))
	assert.Equal(t, 2, m.GetLineNumber(1))
}

// Invariant: offsets strictly increase, and the last line starts before
// Processed(), so the indexed lines cover the processed prefix in order.
func TestLineMap_OffsetsTileProcessedPrefix(t *testing.T) {
	opts := textIteratorOpts()
	opts.WrapWidth = 9
	m := NewLineMap(opts, true, true)
	feedAll(m, []byte("aaaa bbbb cccc dddd\n"))

	require.Equal(t, 4, m.Count())
	var prev FileOffset
	for i := 0; i < m.Count(); i++ {
		off := m.GetOffset(i)
		if i > 0 {
			assert.Greater(t, off, prev)
		}
		prev = off
	}

	last := m.GetOffset(m.Count() - 1)
	assert.Less(t, last, m.Processed())
}

// Invariant: the sum of all line lengths (derived from successive offsets,
// plus the tail reaching Processed()) equals the total bytes fed in.
func TestLineMap_SumOfLengthsEqualsProcessedOffset(t *testing.T) {
	opts := textIteratorOpts()
	opts.WrapWidth = 9
	m := NewLineMap(opts, true, true)
	src := []byte("aaaa bbbb cccc dddd\n")
	feedAll(m, src)

	var total FileOffset
	for i := 0; i < m.Count(); i++ {
		var length FileOffset
		if i+1 < m.Count() {
			length = m.GetOffset(i+1) - m.GetOffset(i)
		} else {
			length = m.Processed() - m.GetOffset(i)
		}
		total += length
	}
	assert.Equal(t, FileOffset(len(src)), total)
	assert.Equal(t, FileOffset(len(src)), m.Processed())
}

// Invariant: rebuilding a map with the same wrap options over the same
// bytes after Clear produces identical offsets (wrap is a pure function of
// options + bytes, not of any leftover state).
func TestLineMap_WrapIdempotentAcrossClear(t *testing.T) {
	opts := textIteratorOpts()
	opts.WrapWidth = 9
	src := []byte("aaaa bbbb cccc dddd\n")

	m := NewLineMap(opts, true, true)
	feedAll(m, src)
	first := append([]FileOffset(nil), m.offsets...)

	m.Clear(opts, true, true)
	feedAll(m, src)
	second := append([]FileOffset(nil), m.offsets...)

	assert.Equal(t, first, second)
}

func TestLineMap_OffsetToIndex(t *testing.T) {
	m := NewLineMap(textIteratorOpts(), true, true)
	feedAll(m, []byte("aaa\nbbb\nccc\n"))

	require.Equal(t, 3, m.Count())
	assert.Equal(t, 0, m.OffsetToIndex(0))
	assert.Equal(t, 0, m.OffsetToIndex(3))
	assert.Equal(t, 1, m.OffsetToIndex(4))
	assert.Equal(t, 2, m.OffsetToIndex(8))
	assert.Equal(t, 2, m.OffsetToIndex(11))
}

func TestLineMap_FriendlyLineNumberToIndex(t *testing.T) {
	opts := textIteratorOpts()
	opts.WrapWidth = 3
	m := NewLineMap(opts, true, true)
	feedAll(m, []byte("aaaa\nbb\nc\n")) // "aaaa\n" wraps into 2 logical lines

	require.Equal(t, 4, m.Count())
	assert.Equal(t, 1, m.GetLineNumber(0))
	assert.Equal(t, 1, m.GetLineNumber(1)) // still physical line 1, post-wrap

	idx := m.FriendlyLineNumberToIndex(2)
	assert.Equal(t, 2, m.GetLineNumber(idx))
}

// A wrap-width change is a hard reset: Clear followed by re-feeding must not
// retain any of the previous pass's offsets or physical line numbers.
func TestLineMap_ClearResetsState(t *testing.T) {
	opts := textIteratorOpts()
	m := NewLineMap(opts, true, true)
	feedAll(m, []byte("one\ntwo\nthree\n"))
	require.Equal(t, 3, m.Count())

	opts.WrapWidth = 2
	m.Clear(opts, true, true)
	assert.Equal(t, 0, m.Count())
	assert.Equal(t, FileOffset(0), m.Processed())
	assert.Equal(t, 1, m.GetLineNumber(0))
}

// BreakWrapResyncSkip must not leave a partial line-map entry behind: Next
// returns without recording anything until the skip resolves on a later
// call, and the eventual entry's byte length folds in everything skipped.
func TestLineMap_ResyncSkipDoesNotEmitPartialLine(t *testing.T) {
	opts := textIteratorOpts()
	opts.WrapWidth = 4
	m := NewLineMap(opts, true, true)

	m.Next([]byte("aa  "), false) // "aa" + 2 of a 3-space run, more to come
	assert.Equal(t, 0, m.Count(), "no line should be committed mid-resync")

	m.Next([]byte(" bb\n"), true)
	require.Equal(t, 2, m.Count())
	assert.Equal(t, FileOffset(0), m.GetOffset(0))
	assert.Equal(t, FileOffset(5), m.GetOffset(1)) // "aa" + 3 skipped spaces
}
