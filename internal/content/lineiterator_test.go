package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textIteratorOpts() IteratorOptions {
	return IteratorOptions{
		Decoder:       NewDecoder(CodepageUTF8),
		MaxLineLength: 1024,
		TabWidth:      8,
		ExpandTabs:    true,
		ControlMode:   ControlExpand,
	}
}

// driveIterator runs it over the whole of buf (as if it were already fully
// resident and at EOF) and returns each line's starting offset, byte
// length, width, and the indent that applied to it (StepResult.Indent
// describes the NEXT line, so indents are shifted by one on read).
func driveIterator(t *testing.T, it *LineIterator, buf []byte) (offsets []int, lengths []int, widths []int, indents []int) {
	t.Helper()
	pos := 0
	indent := 0
	for pos < len(buf) {
		res, adv := it.Step(buf[pos:], true)
		if res.Outcome == Exhausted {
			t.Fatalf("Step reported Exhausted with atEOF=true at pos %d", pos)
		}
		offsets = append(offsets, pos)
		lengths = append(lengths, res.ByteLength)
		widths = append(widths, res.Width)
		indents = append(indents, indent)
		indent = res.Indent
		pos += adv
	}
	return offsets, lengths, widths, indents
}

// S1 — Pure ASCII wrap.
func TestLineIterator_S1_PureASCIIWrap(t *testing.T) {
	opts := textIteratorOpts()
	opts.WrapWidth = 9
	it := NewLineIterator(opts)

	offsets, lengths, widths, indents := driveIterator(t, it, []byte("aaaa bbbb cccc dddd\n"))

	assert.Equal(t, []int{0, 5, 10, 15}, offsets)
	assert.Equal(t, 4, widths[0])
	assert.Equal(t, []int{0, 0, 0, 0}, indents)

	total := 0
	for _, l := range lengths {
		total += l
	}
	assert.Equal(t, 20, offsets[len(offsets)-1]+lengths[len(lengths)-1])
	assert.Equal(t, 20, total)
}

// S1 regression: the trailing space before a wrap break must be consumed
// (skipped), not carried onto the next line.
func TestLineIterator_S1_TrailingSpaceIsSkippedNotEmitted(t *testing.T) {
	opts := textIteratorOpts()
	opts.WrapWidth = 9
	it := NewLineIterator(opts)

	res, adv := it.Step([]byte("aaaa bbbb cccc dddd\n"), true)
	assert.Equal(t, BreakWrapSkip, res.Outcome)
	assert.Equal(t, 5, res.ByteLength) // "aaaa ": the skipped space counts in the line's bytes; only Width leaves it out
	assert.Equal(t, 4, res.Width)
	assert.Equal(t, 5, adv) // "aaaa " (4 + 1 skipped space) consumed from buf
}

// S2 — CRLF handling, at the LineIterator level: the terminator bytes are
// counted into the line but never rendered (FormatLineText strips them).
func TestLineIterator_S2_CRLFBoundary(t *testing.T) {
	opts := textIteratorOpts()
	it := NewLineIterator(opts)

	res, adv := it.Step([]byte("hi\r\nok\n"), true)
	assert.Equal(t, BreakNewline, res.Outcome)
	assert.Equal(t, 4, res.ByteLength)
	assert.Equal(t, 4, adv)

	res2, adv2 := it.Step([]byte("ok\n"), true)
	assert.Equal(t, BreakNewline, res2.Outcome)
	assert.Equal(t, 3, res2.ByteLength)
	assert.Equal(t, 3, adv2)
}

// S3 — UTF-8 BOM suppression: the BOM's bytes stay part of line 0's byte
// range (so offsets still tile the stream) but do not add to the rendered
// width, and advance/ByteLength agree.
func TestLineIterator_S3_UTF8BOMSuppression(t *testing.T) {
	opts := textIteratorOpts()
	opts.SuppressLeadingBOM = true
	it := NewLineIterator(opts)

	buf := append([]byte{0xEF, 0xBB, 0xBF}, []byte("A\n")...)
	res, adv := it.Step(buf, true)

	require.Equal(t, BreakNewline, res.Outcome)
	assert.Equal(t, 5, res.ByteLength) // 3 BOM bytes + "A" + "\n"
	assert.Equal(t, 5, adv)
	assert.Equal(t, res.ByteLength, adv, "ByteLength and advance must agree so offsets tile the stream")
	assert.Equal(t, 1, res.Width) // BOM contributes no display cells
}

// A BOM is only suppressed on the very first Step call; a U+FEFF elsewhere
// in the stream is an ordinary character.
func TestLineIterator_BOMOnlySuppressedOnFirstCall(t *testing.T) {
	opts := textIteratorOpts()
	opts.SuppressLeadingBOM = true
	it := NewLineIterator(opts)

	res1, adv1 := it.Step([]byte("A\n"), true)
	assert.Equal(t, 2, res1.ByteLength)
	assert.Equal(t, 2, adv1)

	bomBuf := append([]byte{0xEF, 0xBB, 0xBF}, []byte("B\n")...)
	res2, adv2 := it.Step(bomBuf, true)
	assert.Equal(t, 5, res2.ByteLength)
	assert.Equal(t, 5, adv2)
	assert.Equal(t, 2, res2.Width) // BOM now renders as one ordinary cell + 'B'
}

// BreakWrapResyncSkip: a whitespace run that doesn't finish within the
// currently available buffer must be resumed by a later Step call with the
// same running break state, and bytes skipped across several resync calls
// must all still land in the final ByteLength.
func TestLineIterator_BreakWrapResyncSkipAcrossBuffers(t *testing.T) {
	opts := textIteratorOpts()
	opts.WrapWidth = 4
	it := NewLineIterator(opts)

	// "aa" (width 2) then a 3-space run, with the buffer cut after only the
	// first two of those spaces are visible.
	res, adv := it.Step([]byte("aa  "), false)
	require.Equal(t, BreakWrapResyncSkip, res.Outcome)
	assert.Equal(t, 4, res.ByteLength) // "aa" (2) + the 2 spaces seen so far
	assert.Equal(t, 4, adv)            // all 4 bytes consumed from this buffer
	assert.Equal(t, 2, res.Width)      // only "aa" renders; spaces don't count

	res2, adv2 := it.Step([]byte(" bb"), true)
	require.Equal(t, BreakWrapSkip, res2.Outcome)
	assert.Equal(t, 5, res2.ByteLength) // "aa" (2) + all 3 skipped spaces
	assert.Equal(t, 2, res2.Width)
	assert.Equal(t, 1, adv2) // only the 3rd space consumed; "bb" untouched
}

// Invariant 4 (wrapping idempotence) and invariant 5 (encoding override
// round-trip) are exercised at the Cache level in cache_test.go, where
// SetWrapWidth/SetEncodingOverride live; here we check the narrower claim
// that two LineIterators built from identical options produce identical
// boundaries (no hidden mutable global state).
func TestLineIterator_DeterministicAcrossInstances(t *testing.T) {
	opts := textIteratorOpts()
	opts.WrapWidth = 6
	buf := []byte("hello there world\n")

	o1, l1, w1, _ := driveIterator(t, NewLineIterator(opts), buf)
	o2, l2, w2, _ := driveIterator(t, NewLineIterator(opts), buf)

	assert.Equal(t, o1, o2)
	assert.Equal(t, l1, l2)
	assert.Equal(t, w1, w2)
}

// max_line_length is a hard cap independent of wrap: a run with no
// whitespace at all must still break once the byte cap is hit.
func TestLineIterator_MaxLineLengthHardCap(t *testing.T) {
	opts := textIteratorOpts()
	opts.MaxLineLength = 4
	it := NewLineIterator(opts)

	res, adv := it.Step([]byte("aaaaaaaa\n"), true)
	assert.Equal(t, BreakMax, res.Outcome)
	assert.Equal(t, 4, res.ByteLength)
	assert.Equal(t, 4, adv)
}
