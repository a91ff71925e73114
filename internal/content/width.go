package content

import "github.com/mattn/go-runewidth"

// ControlMode selects how control characters (and, when expansion is off,
// tabs) are rendered in the content column.
type ControlMode int

const (
	ControlExpand ControlMode = iota // "^X", two cells
	ControlOEM                       // OEM-437 pictograph, one cell
	ControlPeriod                    // "." substitute, one cell
	ControlSpace                     // blank, one cell
)

// ControlWidth returns the cell width a control character occupies under
// mode.
func ControlWidth(mode ControlMode) int {
	if mode == ControlExpand {
		return 2
	}
	return 1
}

const (
	runeZWJ            = rune(0x200D)
	runeVariationStart = rune(0xFE00)
	runeVariationEnd   = rune(0xFE0F)
	runeRegionalStart  = rune(0x1F1E6)
	runeRegionalEnd    = rune(0x1F1FF)
)

func isVariantSelector(r rune) bool {
	return (r >= runeVariationStart && r <= runeVariationEnd) ||
		(r >= 0xE0100 && r <= 0xE01EF) // variation selectors supplement
}

func isRegionalIndicator(r rune) bool {
	return r >= runeRegionalStart && r <= runeRegionalEnd
}

// isCombiningMark is a narrow, dependency-free approximation of Unicode
// category Mn/Me/Mc covering the common diacritical blocks; good enough for
// width accounting (these always contribute zero cells).
func isCombiningMark(r rune) bool {
	switch {
	case r >= 0x0300 && r <= 0x036F: // Combining Diacritical Marks
		return true
	case r >= 0x1AB0 && r <= 0x1AFF: // Combining Diacritical Marks Extended
		return true
	case r >= 0x1DC0 && r <= 0x1DFF: // Combining Diacritical Marks Supplement
		return true
	case r >= 0x20D0 && r <= 0x20FF: // Combining Diacritical Marks for Symbols
		return true
	case r >= 0xFE20 && r <= 0xFE2F: // Combining Half Marks
		return true
	default:
		return false
	}
}

// WidthAccountant tracks the shared width state machine used while scanning
// a line: emoji ZWJ sequences, variant selectors, regional-indicator flag
// pairs, and combining marks all affect whether a codepoint adds cells to
// the running total or merely extends the previous cluster.
//
// Known caveat (carried from the original implementation, flagged for
// revisit rather than fixed): a ZWJ-joined sequence's total width can grow
// as later components are consumed, but the line iterator stops accumulating
// as soon as the running width exceeds the wrap limit — it does not look
// ahead to keep a whole grapheme cluster together, so a wrap can in
// principle sever a multi-codepoint emoji sequence.
type WidthAccountant struct {
	inZWJSequence            bool
	pendingRegionalIndicator bool
}

// Step consumes one decoded codepoint and returns the cell width it adds to
// the running line width, plus whether it merely extended the previous
// cluster (and therefore is not itself a new break opportunity).
func (w *WidthAccountant) Step(r rune) (delta int, extendsPrevious bool) {
	switch {
	case r == runeZWJ:
		w.inZWJSequence = true
		return 0, true

	case isVariantSelector(r):
		return 0, true

	case isCombiningMark(r):
		return 0, true

	case isRegionalIndicator(r):
		if w.pendingRegionalIndicator {
			w.pendingRegionalIndicator = false
			w.inZWJSequence = false
			return 0, true
		}
		w.pendingRegionalIndicator = true
		return cellWidth(r), false

	default:
		joined := w.inZWJSequence
		w.inZWJSequence = false
		w.pendingRegionalIndicator = false
		return cellWidth(r), joined
	}
}

// Reset clears sequence state, e.g. at the start of a new logical line.
func (w *WidthAccountant) Reset() {
	w.inZWJSequence = false
	w.pendingRegionalIndicator = false
}

func cellWidth(r rune) int {
	w := runewidth.RuneWidth(r)
	if w < 0 {
		return 0
	}
	return w
}
