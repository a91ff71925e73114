package content

// Outcome tags what happened on one LineIterator.Step call. Modeled as an
// explicit enum (not an implicit generator/yield) per the design notes: the
// "resync and skip whitespace across a buffer boundary" case requires the
// caller to re-enter the loop with a freshly grown buffer, which reads more
// naturally as a returned tag than as hidden control flow.
type Outcome int

const (
	// Exhausted means buf did not contain enough bytes to decide a break;
	// the caller must grow buf (read more from the source) and call Step
	// again with the same starting position.
	Exhausted Outcome = iota
	// BreakNewline: hit LF or CRLF; the terminator bytes belong to the line.
	BreakNewline
	// BreakMax: max_line_length was reached.
	BreakMax
	// BreakWrap: the wrap width was reached with no better break point.
	BreakWrap
	// BreakWrapSkip: wrap broke at a previously recorded whitespace
	// boundary; trailing whitespace up to the next non-space was consumed
	// (skipped, not emitted) within this same buffer.
	BreakWrapSkip
	// BreakWrapResyncSkip: same as BreakWrapSkip, but the whitespace run
	// was not exhausted within this buffer. The caller must grow buf (or
	// supply a fresh one starting where this call left off, per `advance`)
	// and call Step again to keep skipping.
	BreakWrapResyncSkip
)

// StepResult is what the iterator reports for one Step call.
type StepResult struct {
	Outcome    Outcome
	ByteLength int // total bytes belonging to the line (incl. any skipped trailing whitespace); valid for Break* outcomes
	Width      int // display cell width of the line's rendered content
	Indent     int // hanging indent to apply to the NEXT line
}

// IteratorOptions configures a LineIterator for one file's current settings.
type IteratorOptions struct {
	Decoder            Decoder
	WrapWidth          int // 0 disables wrapping
	MaxLineLength      int // hard cap on bytes per logical line; must be > 0
	TabWidth           int
	ExpandTabs         bool
	ControlMode        ControlMode
	Binary             bool // true forces single-byte stepping, no smart wrap
	HelpModeIndent     bool
	SuppressLeadingBOM bool // only meaningful on the very first Step call
}

// LineIterator is a lazy, state-holding producer of logical-line boundaries
// over a byte buffer that always starts at the current line's first
// not-yet-committed byte (the driver never discards bytes it hasn't been
// told, via `advance`, belong to a completed line).
type LineIterator struct {
	opts IteratorOptions

	carriedIndent int  // indent to apply to the line currently being scanned
	firstCall     bool // true until the first Step call completes

	skipping         bool
	pendingOutcome   Outcome
	pendingByteLen   int
	pendingWidth     int
	pendingIndent    int
}

// NewLineIterator returns an iterator ready to scan from the start of a
// stream (or, after a SetWrapWidth/SetEncoding reset, from a cleared line
// map — see Cache).
func NewLineIterator(opts IteratorOptions) *LineIterator {
	if opts.MaxLineLength <= 0 {
		opts.MaxLineLength = 2048
	}
	if opts.TabWidth <= 0 {
		opts.TabWidth = 8
	}
	return &LineIterator{opts: opts, firstCall: true}
}

func isWrapWhitespace(r rune) bool {
	return r == ' ' || r == '\t'
}

func isBOMRune(r rune) bool { return r == '﻿' }

// Step scans as much of buf as needed to either complete one logical line
// or determine that more bytes are required. buf must always start at the
// first unconsumed byte of the current line (including any bytes a prior
// Exhausted/BreakWrapResyncSkip result left for this call). atEOF indicates
// no more bytes will ever be appended to buf.
//
// Returns the result and `advance`: the number of bytes of buf that belong
// to the stream position once this call returns (the driver should not
// re-present those bytes on the next call). On Exhausted, advance is 0.
func (it *LineIterator) Step(buf []byte, atEOF bool) (StepResult, int) {
	if it.skipping {
		return it.continueSkip(buf, atEOF)
	}

	col := 0
	byteLen := 0
	breakBytePos := -1
	breakCol := 0
	sawWS := false
	indentAcc := it.carriedIndent
	atLineStart := true
	helpIndentCol := -1
	helpSet := false
	spaceRun := 0
	var width WidthAccountant

	pos := 0
	suppressBOM := it.firstCall && it.opts.SuppressLeadingBOM

	for {
		r, n := it.opts.Decoder.Decode(buf[pos:])
		if n == 0 {
			if atEOF {
				it.firstCall = false
				if byteLen == 0 && pos == 0 {
					return StepResult{Outcome: Exhausted}, 0
				}
				it.carriedIndent = 0
				return StepResult{Outcome: BreakMax, ByteLength: byteLen, Width: col, Indent: 0}, pos
			}
			return StepResult{Outcome: Exhausted}, 0
		}

		if pos == 0 && suppressBOM && isBOMRune(r) {
			suppressBOM = false
			pos += n
			byteLen += n
			continue
		}
		suppressBOM = false

		// Newline: CRLF or LF. A lone CR (no following LF) is also treated
		// as a line terminator (legacy classic-Mac text).
		if r == '\r' {
			r2, n2 := it.opts.Decoder.Decode(buf[pos+n:])
			total := n
			if n2 > 0 && r2 == '\n' {
				total += n2
			} else if n2 == 0 && !atEOF {
				return StepResult{Outcome: Exhausted}, 0
			}
			byteLen += total
			it.firstCall = false
			it.carriedIndent = 0
			return StepResult{Outcome: BreakNewline, ByteLength: byteLen, Width: col, Indent: 0}, pos + total
		}
		if r == '\n' {
			byteLen += n
			it.firstCall = false
			it.carriedIndent = 0
			return StepResult{Outcome: BreakNewline, ByteLength: byteLen, Width: col, Indent: 0}, pos + n
		}

		it.firstCall = false

		// Hanging indent accumulation for leading whitespace.
		if atLineStart {
			switch {
			case r == ' ':
				indentAcc++
			case r == '\t':
				if it.opts.ExpandTabs {
					indentAcc += it.opts.TabWidth - (indentAcc % it.opts.TabWidth)
				} else {
					indentAcc += ControlWidth(it.opts.ControlMode)
				}
			default:
				atLineStart = false
			}
		}

		// Cell width for this codepoint.
		var addWidth int
		switch {
		case r == '\t':
			if it.opts.ExpandTabs {
				addWidth = it.opts.TabWidth - (col % it.opts.TabWidth)
			} else {
				addWidth = ControlWidth(it.opts.ControlMode)
			}
		case r < 0x20 || r == 0x7F:
			addWidth = ControlWidth(it.opts.ControlMode)
		case it.opts.Binary:
			addWidth = 1
		case isBOMRune(r):
			// A BOM that was not suppressed occupies one ordinary cell.
			addWidth = 1
		default:
			d, _ := width.Step(r)
			addWidth = d
		}

		// help-mode secondary indent: "flag: description"-style tables. Once
		// text has started, two consecutive spaces within the first 24
		// bytes marks the column where continuation lines should hang.
		if it.opts.HelpModeIndent && !helpSet && !atLineStart && byteLen < 24 {
			if r == ' ' {
				spaceRun++
				if spaceRun == 2 {
					helpIndentCol = col - 1
					helpSet = true
				}
			} else {
				spaceRun = 0
			}
		}

		// Smart-wrap whitespace transition tracking (text mode only).
		if !it.opts.Binary {
			isWS := isWrapWhitespace(r)
			if isWS && !sawWS {
				// entering whitespace: this is a break point, before the
				// space, so the space itself becomes trailing whitespace to
				// skip (BreakWrapSkip) rather than text on the next line.
				breakBytePos = byteLen
				breakCol = col
			}
			sawWS = isWS
		}

		// max_line_length: hard cap, independent of wrap.
		if it.opts.MaxLineLength > 0 && byteLen > 0 && byteLen+n > it.opts.MaxLineLength {
			it.carriedIndent = clampIndent(indentAcc, it.opts.MaxLineLength)
			return StepResult{Outcome: BreakMax, ByteLength: byteLen, Width: col, Indent: it.carriedIndent}, pos
		}

		// wrap width. A line filling the width exactly leaves no room to
		// tell a hard stop from a word that happens to land on the last
		// cell, so a tentative width reaching WrapWidth already wraps.
		if it.opts.WrapWidth > 0 && col > 0 && col+addWidth >= it.opts.WrapWidth {
			nextIndent := indentAcc
			if it.opts.HelpModeIndent && helpSet && helpIndentCol >= 0 {
				nextIndent = helpIndentCol
			}
			nextIndent = clampIndent(nextIndent, it.opts.MaxLineLength)

			if !it.opts.Binary && breakBytePos > 0 && breakBytePos < byteLen {
				// Since buf starts at this line's first byte, the line's
				// byte-length coordinates coincide with buf indices, so the
				// break point's buffer offset is just breakBytePos.
				breakBufPos := breakBytePos

				it.pendingOutcome = BreakWrapSkip
				it.pendingByteLen = breakBytePos
				it.pendingWidth = breakCol
				it.pendingIndent = nextIndent
				it.skipping = true
				it.carriedIndent = nextIndent

				result, adv := it.continueSkip(buf[breakBufPos:], atEOF)
				return result, breakBufPos + adv
			}

			it.carriedIndent = nextIndent
			return StepResult{Outcome: BreakWrap, ByteLength: byteLen, Width: col, Indent: nextIndent}, pos
		}

		col += addWidth
		byteLen += n
		pos += n
	}
}

// continueSkip drains a run of wrap whitespace, either finishing the
// pending break (BreakWrapSkip, fully resolved within buf) or reporting
// BreakWrapResyncSkip if buf runs out first.
func (it *LineIterator) continueSkip(buf []byte, atEOF bool) (StepResult, int) {
	pos := 0
	for pos < len(buf) {
		r, n := it.opts.Decoder.Decode(buf[pos:])
		if n == 0 {
			break
		}
		if !isWrapWhitespace(r) {
			break
		}
		pos += n
	}

	if pos == len(buf) && !atEOF {
		// This run didn't finish; fold what we saw into pendingByteLen so a
		// later resolving call doesn't have to remember how much whitespace
		// earlier resync calls already consumed.
		it.pendingByteLen += pos
		return StepResult{
			Outcome:    BreakWrapResyncSkip,
			ByteLength: it.pendingByteLen,
			Width:      it.pendingWidth,
			Indent:     it.pendingIndent,
		}, pos
	}

	it.skipping = false
	result := StepResult{
		Outcome:    BreakWrapSkip,
		ByteLength: it.pendingByteLen + pos,
		Width:      it.pendingWidth,
		Indent:     it.pendingIndent,
	}
	return result, pos
}

func clampIndent(indent, maxLineLength int) int {
	limit := maxLineLength / 2
	if limit > 0 && indent > limit {
		return limit
	}
	return indent
}
