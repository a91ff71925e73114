package content

import "fmt"

// Codepage identifies a decoding scheme. The numeric values below the
// multibyte threshold mirror familiar Windows codepage ids (932 Shift-JIS,
// 936 GBK, 949 UHC, 950 Big5) purely as recognizable constants; this port
// has no dependency on an actual Windows codepage service (see DESIGN.md).
type Codepage uint32

const (
	CodepageUnknown  Codepage = 0
	CodepageOEMUS    Codepage = 437 // single-byte "OEM-US" fallback
	CodepageUTF8     Codepage = 65001
	CodepageUTF16LE  Codepage = 1200
	CodepageUTF16BE  Codepage = 1201
	CodepageShiftJIS Codepage = 932
	CodepageGBK      Codepage = 936
	CodepageUHC      Codepage = 949
	CodepageBig5     Codepage = 950
)

// IsMultibyte reports whether cp is one of the double-byte host codepages
// that must be normalized to a single-byte codepage for hex-mode viewing.
func (cp Codepage) IsMultibyte() bool {
	switch cp {
	case CodepageShiftJIS, CodepageGBK, CodepageUHC, CodepageBig5:
		return true
	default:
		return false
	}
}

// EnsureSingleByteCP normalizes a multibyte OEM codepage to OEM-US so that
// hex mode always has exactly one display cell per byte in the character
// column. Unicode codepages and already-single-byte codepages pass through
// unchanged; this only normalizes the host multibyte set.
func EnsureSingleByteCP(cp Codepage) Codepage {
	if cp.IsMultibyte() {
		return CodepageOEMUS
	}
	return cp
}

// Encoding describes the outcome of detection: whether the stream is
// treated as binary, which codepage decodes it if not, and a human-facing
// name for the status line.
type Encoding struct {
	Codepage Codepage
	Name     string
	IsBinary bool
}

func (e Encoding) String() string { return e.Name }

var (
	tagUTF16LE = []byte{0xFF, 0xFE}
	tagUTF16BE = []byte{0xFE, 0xFF}
	tagUTF8BOM = []byte{0xEF, 0xBB, 0xBF}
	tagPDF     = []byte("%PDF-")
)

// binaryOnlyControl is the set of bytes in 0..31 that, per spec, indicate
// binary content: every C0 control code except BEL, TAB, LF, VT, FF, CR,
// and Ctrl-Z (0x1A, used historically as a DOS end-of-text marker and
// therefore treated as textual).
var binaryOnlyControl = buildBinaryOnlyControlSet()

func buildBinaryOnlyControlSet() [32]bool {
	var set [32]bool
	for i := range set {
		set[i] = true
	}
	for _, allowed := range []byte{0x07, 0x09, 0x0A, 0x0B, 0x0C, 0x0D, 0x1A} {
		set[allowed] = false
	}
	return set
}

const detectionPrefixMax = 4096

// DetectEncoding classifies a leading prefix of a byte stream per spec
// section 4.1. multibyteEnabled only changes the name reported for binary
// content (with it off, the name includes the OEM codepage); text is
// detected the same way either way, so valid UTF-8 is still reported as UTF-8.
func DetectEncoding(prefix []byte, multibyteEnabled bool) Encoding {
	if len(prefix) == 0 {
		return Encoding{Codepage: CodepageOEMUS, Name: "Empty File", IsBinary: true}
	}

	if hasPrefix(prefix, tagPDF) {
		return Encoding{Codepage: CodepageOEMUS, Name: "PDF File", IsBinary: true}
	}
	if hasPrefix(prefix, tagUTF16LE) {
		return Encoding{Codepage: CodepageUTF16LE, Name: "Unicode (UTF-16 LE)"}
	}
	if hasPrefix(prefix, tagUTF16BE) {
		return Encoding{Codepage: CodepageUTF16BE, Name: "Unicode (UTF-16 BE)"}
	}
	if hasPrefix(prefix, tagUTF8BOM) {
		return Encoding{Codepage: CodepageUTF8, Name: "UTF-8"}
	}

	n := len(prefix)
	if n > detectionPrefixMax {
		n = detectionPrefixMax
	}
	for _, b := range prefix[:n] {
		if b <= 31 && binaryOnlyControl[b] {
			name := "Binary"
			if !multibyteEnabled {
				name = fmt.Sprintf("Binary (OEM %d)", CodepageOEMUS)
			}
			return Encoding{Codepage: CodepageOEMUS, Name: name, IsBinary: true}
		}
	}

	return detectTextEncoding(prefix[:n], multibyteEnabled)
}

// detectTextEncoding is the fallback "host encoding-detection service" step.
// The original implementation defers to the Windows MLang/IsTextUnicode
// service; lacking that here, this applies the documented heuristic: trim
// a trailing severed multi-byte character, then accept the prefix as UTF-8
// if it is valid UTF-8 with at least one non-ASCII byte (otherwise treat
// plain ASCII as UTF-8 too, since UTF-8 is a superset), and fall back to
// single-byte OEM-US otherwise. UTF-7 is never considered (disallowed: it
// is ambiguous, obsolete, and a known injection vector).
func detectTextEncoding(prefix []byte, multibyteEnabled bool) Encoding {
	trimmed := trimSeveredMultibyte(prefix)

	if isValidUTF8(trimmed) {
		return Encoding{Codepage: CodepageUTF8, Name: "UTF-8"}
	}

	if multibyteEnabled {
		// No host multibyte service is wired (see DESIGN.md); report the
		// single-byte fallback the spec names explicitly for this branch.
	}
	return Encoding{Codepage: CodepageOEMUS, Name: "OEM United States"}
}

// trimSeveredMultibyte removes trailing high-bit-set bytes so that a
// multi-byte character cut off mid-sequence at the end of the sampled
// prefix doesn't skew detection.
func trimSeveredMultibyte(b []byte) []byte {
	end := len(b)
	for end > 0 && b[end-1]&0x80 != 0 {
		end--
	}
	// The whole trailing run of high-bit bytes is dropped, whether or not
	// its last sequence is complete UTF-8.
	if end == len(b) {
		return b
	}
	// end now points just past the last byte with bit7==0 (or 0). Extend it
	// back out by re-validating full sequences from there is unnecessary in
	// practice for the ASCII-heavy detection sample; trimming is sufficient
	// to avoid biasing the validity check against a truncated tail.
	return b[:end]
}

func isValidUTF8(b []byte) bool {
	i := 0
	for i < len(b) {
		_, size := decodeUTF8Strict(b[i:])
		if size == 0 {
			return false
		}
		i += size
	}
	return true
}

func hasPrefix(b, tag []byte) bool {
	if len(b) < len(tag) {
		return false
	}
	for i := range tag {
		if b[i] != tag[i] {
			return false
		}
	}
	return true
}
