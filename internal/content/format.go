package content

import (
	"fmt"
	"strings"
)

// FormattedLine is one logical line rendered for display: decoded, tab and
// control-character expanded, indent applied, line-ending bytes stripped,
// with an optional highlighted match span reported in Text's byte
// coordinates (not source byte coordinates).
type FormattedLine struct {
	Text        string
	FoundStart  int // -1 if no match to highlight on this line
	FoundLength int
}

// trimLineEnding drops a trailing CRLF, lone CR, or LF from raw; line
// endings are part of a logical line's byte length (for indexing) but are
// never rendered.
func trimLineEnding(raw []byte) []byte {
	n := len(raw)
	if n >= 2 && raw[n-2] == '\r' && raw[n-1] == '\n' {
		return raw[:n-2]
	}
	if n >= 1 && (raw[n-1] == '\n' || raw[n-1] == '\r') {
		return raw[:n-1]
	}
	return raw
}

func writeControl(sb *strings.Builder, r rune, mode ControlMode) {
	switch mode {
	case ControlExpand:
		sb.WriteByte('^')
		if r == 0x7F {
			sb.WriteByte('?')
		} else {
			sb.WriteByte(byte(r) | 0x40)
		}
	case ControlOEM:
		sb.WriteRune(rune(0x2400 + r)) // Unicode control-picture block
	case ControlPeriod:
		sb.WriteByte('.')
	case ControlSpace:
		sb.WriteByte(' ')
	}
}

// FormatLineText renders one logical line's raw bytes (as returned by a
// Window slice) into display text, given the hanging indent computed for it
// by the line map and the iterator options in force. foundOffset/foundLength
// are source-byte coordinates of an active match within raw (from Searcher,
// via DecodeWithOffsets/SourceRange); pass foundLength 0 for none. isFirstLine
// marks the line starting at source offset 0, the only place a leading BOM
// can occur; when opts.SuppressLeadingBOM is set (mirroring the iterator's
// own boundary-math suppression) the BOM rune is dropped before rendering
// rather than shown as U+FEFF.
func FormatLineText(raw []byte, dec Decoder, indentCells int, opts IteratorOptions, foundOffset, foundLength int, isFirstLine bool) FormattedLine {
	raw = trimLineEnding(raw)

	if isFirstLine && opts.SuppressLeadingBOM {
		if r, n := dec.Decode(raw); n > 0 && isBOMRune(r) {
			raw = raw[n:]
			if foundLength > 0 {
				foundOffset -= n
			}
		}
	}

	var sb strings.Builder
	sb.Grow(len(raw) + indentCells)
	for i := 0; i < indentCells; i++ {
		sb.WriteByte(' ')
	}

	col := indentCells
	foundStart, foundLen := -1, 0

	i := 0
	for i < len(raw) {
		if foundLength > 0 && i == foundOffset {
			foundStart = sb.Len()
		}

		r, n := dec.Decode(raw[i:])
		if n == 0 {
			break
		}

		switch {
		case r == '\t':
			if opts.ExpandTabs {
				spaces := opts.TabWidth - (col % opts.TabWidth)
				for k := 0; k < spaces; k++ {
					sb.WriteByte(' ')
				}
				col += spaces
			} else {
				writeControl(&sb, '\t', opts.ControlMode)
				col += ControlWidth(opts.ControlMode)
			}
		case r < 0x20 || r == 0x7F:
			writeControl(&sb, r, opts.ControlMode)
			col += ControlWidth(opts.ControlMode)
		default:
			sb.WriteRune(r)
			col++
		}

		i += n
		if foundLength > 0 && i == foundOffset+foundLength {
			foundLen = sb.Len() - foundStart
		}
	}

	return FormattedLine{Text: sb.String(), FoundStart: foundStart, FoundLength: foundLen}
}

// HexByte is one byte cell in a hex row, with its patch-overlay state so the
// UI can pick a highlight palette (spec 4.6: pending/saved/clean).
type HexByte struct {
	Value   byte
	State   PatchState
	Present bool // false for trailing cells past end-of-stream on the final row
}

// HexRow is one row of a hex-mode view: bytesPerRow byte cells plus the
// single-byte-decoded character gutter alongside them.
type HexRow struct {
	Offset FileOffset
	Bytes  []HexByte
	Text   string
}

// FormatHexRow builds one hex row starting at off. raw holds the bytes
// actually available (may be shorter than bytesPerRow on the final row);
// patches may be nil. dec must already be normalized to a single-byte
// codepage (EnsureSingleByteCP) so one byte maps to exactly one character
// cell.
func FormatHexRow(off FileOffset, raw []byte, bytesPerRow int, patches *PatchStore, dec Decoder, controlMode ControlMode) HexRow {
	row := HexRow{Offset: off, Bytes: make([]HexByte, bytesPerRow)}
	var sb strings.Builder

	for i := 0; i < bytesPerRow; i++ {
		if i >= len(raw) {
			row.Bytes[i] = HexByte{Present: false}
			continue
		}
		value := raw[i]
		state := PatchNone
		if patches != nil {
			if v, st := patches.IsByteDirty(off + FileOffset(i)); st != PatchNone {
				value, state = v, st
			}
		}
		row.Bytes[i] = HexByte{Value: value, State: state, Present: true}

		r, _ := dec.Decode([]byte{value})
		if r < 0x20 || r == 0x7F {
			writeControl(&sb, r, controlMode)
		} else {
			sb.WriteRune(r)
		}
	}

	row.Text = sb.String()
	return row
}

// FormatHexGroups renders row's byte cells as "XX XX XX" hex text, grouped
// into clusters of groupSize with an extra gap between clusters. Cells past
// end-of-stream render as two blank filler spaces rather than "00", so the
// last row doesn't look like it ends in a run of zero bytes.
func FormatHexGroups(row HexRow, groupSize int) []string {
	var groups []string
	var cur strings.Builder

	for i, hb := range row.Bytes {
		if i > 0 && groupSize > 0 && i%groupSize == 0 {
			groups = append(groups, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		if hb.Present {
			fmt.Fprintf(&cur, "%02X", hb.Value)
		} else {
			cur.WriteString("  ")
		}
	}
	if cur.Len() > 0 {
		groups = append(groups, cur.String())
	}
	return groups
}
