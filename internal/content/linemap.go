package content

import "sort"

// FileOffset is an unsigned byte position in the source stream.
type FileOffset = uint64

// LineMap maintains the parallel offset/formatting/line-number arrays over
// a stream (spec section 4.4), fed forward by the ingest loop and driven by
// a LineIterator. It is grown monotonically; wrap-width or encoding changes
// clear it wholesale (invalidating all boundaries) rather than patching it
// in place.
type LineMap struct {
	wrapOn  bool // whether to store per-line formatting info
	textual bool // whether to store physical line numbers (text, not binary)

	offsets    []FileOffset
	formatting []int // leading indent in cells; only populated when wrapOn
	lineNos    []int // 1-based physical line number; only populated when wrapOn && textual

	processedOffset FileOffset
	physicalLineNo  int

	iter *LineIterator
	buf  []byte // growable ingest buffer; starts at processedOffset, or past the iterator's pending skipped bytes mid-skip
}

// NewLineMap creates an empty map driven by the given iterator options.
func NewLineMap(opts IteratorOptions, wrapOn, textual bool) *LineMap {
	return &LineMap{
		wrapOn:         wrapOn,
		textual:        textual,
		physicalLineNo: 1,
		iter:           NewLineIterator(opts),
	}
}

// Clear wipes all index state. Called on wrap-width change or encoding
// override, both of which invalidate previously computed line boundaries.
func (m *LineMap) Clear(opts IteratorOptions, wrapOn, textual bool) {
	m.wrapOn = wrapOn
	m.textual = textual
	m.offsets = nil
	m.formatting = nil
	m.lineNos = nil
	m.processedOffset = 0
	m.physicalLineNo = 1
	m.iter = NewLineIterator(opts)
	m.buf = nil
}

// Processed returns the byte position up to which line boundaries are
// known (invariant 3: monotone, never exceeds the known stream size).
func (m *LineMap) Processed() FileOffset { return m.processedOffset }

// Next feeds newly available bytes to the iterator, appending a line-map
// entry for each completed logical line, until either the buffer is
// exhausted (more data needed) or every currently available byte has been
// turned into committed lines (when atEOF).
func (m *LineMap) Next(data []byte, atEOF bool) {
	if len(data) > 0 {
		m.buf = append(m.buf, data...)
	}

	for {
		res, adv := m.iter.Step(m.buf, atEOF)

		switch res.Outcome {
		case Exhausted:
			return

		case BreakWrapResyncSkip:
			m.buf = m.buf[adv:]
			return

		default:
			offset := m.processedOffset
			m.offsets = append(m.offsets, offset)
			if m.wrapOn {
				// res.Indent is the hanging indent of the line that follows,
				// so line 0 gets 0 and each emission records its successor's.
				if len(m.formatting) == 0 {
					m.formatting = append(m.formatting, 0)
				}
				m.formatting = append(m.formatting, res.Indent)
				if m.textual {
					m.lineNos = append(m.lineNos, m.physicalLineNo)
				}
			}
			if res.Outcome == BreakNewline {
				m.physicalLineNo++
			}
			m.processedOffset += FileOffset(res.ByteLength)
			m.buf = m.buf[adv:]
		}

		if len(m.buf) == 0 && !atEOF {
			return
		}
	}
}

// Count returns the number of logical lines indexed so far.
func (m *LineMap) Count() int { return len(m.offsets) }

// GetOffset returns the byte offset of line i's first byte.
func (m *LineMap) GetOffset(i int) FileOffset { return m.offsets[i] }

// GetFormattingInfo returns the leading indent (cells) stored for line i, or
// 0 if formatting info isn't tracked (wrap disabled).
func (m *LineMap) GetFormattingInfo(i int) int {
	if !m.wrapOn || i >= len(m.formatting) {
		return 0
	}
	return m.formatting[i]
}

// GetLineNumber returns the 1-based physical line number for line i. When
// line numbers aren't tracked (wrap disabled, or binary content), this
// falls back to i+1, which is correct exactly when there is no wrapping
// (logical line == physical line).
func (m *LineMap) GetLineNumber(i int) int {
	if m.wrapOn && m.textual && i < len(m.lineNos) {
		return m.lineNos[i]
	}
	return i + 1
}

// OffsetToIndex returns the largest line index i with GetOffset(i) <= off.
func (m *LineMap) OffsetToIndex(off FileOffset) int {
	n := len(m.offsets)
	if n == 0 {
		return 0
	}
	i := sort.Search(n, func(i int) bool { return m.offsets[i] > off })
	if i == 0 {
		return 0
	}
	return i - 1
}

// FriendlyLineNumberToIndex maps a 1-based physical line number to a line
// index, via binary search over line numbers when tracked, else by direct
// arithmetic (no wrapping means physical == logical).
func (m *LineMap) FriendlyLineNumberToIndex(n int) int {
	if !m.wrapOn || !m.textual || len(m.lineNos) == 0 {
		idx := n - 1
		if idx < 0 {
			idx = 0
		}
		return idx
	}
	i := sort.Search(len(m.lineNos), func(i int) bool { return m.lineNos[i] >= n })
	if i >= len(m.lineNos) {
		i = len(m.lineNos) - 1
	}
	return i
}

// GetLineText decodes b (exactly one logical line's raw bytes) into a Go
// string using dec. When hexMode is true the caller is expected to have
// already normalized dec to a single-byte codepage (EnsureSingleByteCP) so
// that one input byte maps to exactly one output rune.
func GetLineText(b []byte, dec Decoder, hexMode bool) string {
	out := make([]rune, 0, len(b))
	i := 0
	for i < len(b) {
		r, n := dec.Decode(b[i:])
		if n == 0 {
			break
		}
		out = append(out, r)
		i += n
	}
	return string(out)
}
