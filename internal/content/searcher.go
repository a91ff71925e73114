package content

import (
	"regexp"
	"strings"
)

// SearcherKind distinguishes the two search engines.
type SearcherKind int

const (
	SearcherLiteral SearcherKind = iota
	SearcherRegex
)

// Searcher is the polymorphic match-iterator contract from spec 4.7.
// Match restarts a scan over the given already-decoded line text (decoded
// via DecodeWithOffsets so byte offsets reported here can be mapped back to
// source offsets by the caller).
type Searcher interface {
	Kind() SearcherKind
	Match(text string) bool
	MatchStart() int  // byte offset into `text` where the match starts
	MatchLength() int // byte length of the match within `text`
	// NeedleDelta is how far past the requested range the matcher may need
	// to peek: the literal needle's UTF-8 byte length for Literal (not
	// converted to the source encoding's byte count), 0 for Regex (which
	// only ever sees a fully materialized line).
	NeedleDelta() int
}

// DecodeWithOffsets decodes b with dec into a Go (UTF-8) string, and
// returns a table mapping each byte offset in that string back to the
// source byte offset it was decoded from (with one trailing sentinel entry
// for the end of the decoded range). This is what lets Literal/Regex
// searches, which work against decoded text, report matches in source byte
// coordinates.
func DecodeWithOffsets(b []byte, dec Decoder) (text string, srcOffsets []int) {
	var sb strings.Builder
	i := 0
	for i < len(b) {
		r, n := dec.Decode(b[i:])
		if n == 0 {
			break
		}
		before := sb.Len()
		sb.WriteRune(r)
		written := sb.Len() - before
		for k := 0; k < written; k++ {
			srcOffsets = append(srcOffsets, i)
		}
		i += n
	}
	srcOffsets = append(srcOffsets, i)
	return sb.String(), srcOffsets
}

// SourceRange maps a [start,start+length) byte range in a DecodeWithOffsets
// result back to a source byte offset and length.
func SourceRange(srcOffsets []int, start, length int) (off int, length2 int) {
	if start < 0 || start >= len(srcOffsets) {
		return 0, 0
	}
	end := start + length
	if end >= len(srcOffsets) {
		end = len(srcOffsets) - 1
	}
	return srcOffsets[start], srcOffsets[end] - srcOffsets[start]
}

// LiteralSearcher finds an exact substring, optionally case-folded via
// Unicode case mapping (strings.ToLower/ToUpper already implement
// codepoint-wise folding; no separate ASCII fast path is needed since the
// standard library's is already branch-light for the ASCII range).
type LiteralSearcher struct {
	needle      string
	needleFold  string
	caseless    bool
	start, length int
}

func NewLiteralSearcher(needle string, caseless bool) *LiteralSearcher {
	s := &LiteralSearcher{needle: needle, caseless: caseless}
	if caseless {
		s.needleFold = strings.ToLower(needle)
	}
	return s
}

func (s *LiteralSearcher) Kind() SearcherKind { return SearcherLiteral }
func (s *LiteralSearcher) MatchStart() int    { return s.start }
func (s *LiteralSearcher) MatchLength() int   { return s.length }
func (s *LiteralSearcher) NeedleDelta() int   { return len(s.needle) }

func (s *LiteralSearcher) Match(text string) bool {
	var idx int
	if s.caseless {
		idx = strings.Index(strings.ToLower(text), s.needleFold)
	} else {
		idx = strings.Index(text, s.needle)
	}
	if idx < 0 {
		s.start, s.length = 0, 0
		return false
	}
	s.start, s.length = idx, len(s.needle)
	return true
}

// RegexSearcher wraps the standard library's regexp package, which already
// implements RE2 semantics (linear time, no catastrophic backtracking) —
// exactly the engine spec 4.7 asks for by name, so no third-party regex
// engine is introduced (see DESIGN.md).
type RegexSearcher struct {
	re            *regexp.Regexp
	start, length int
}

func NewRegexSearcher(pattern string, caseless bool) (*RegexSearcher, error) {
	if caseless {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, newErr("content.NewRegexSearcher", KindInvalidArgument, err)
	}
	return &RegexSearcher{re: re}, nil
}

func (s *RegexSearcher) Kind() SearcherKind { return SearcherRegex }
func (s *RegexSearcher) MatchStart() int    { return s.start }
func (s *RegexSearcher) MatchLength() int   { return s.length }
func (s *RegexSearcher) NeedleDelta() int   { return 0 }

func (s *RegexSearcher) Match(text string) bool {
	loc := s.re.FindStringIndex(text)
	if loc == nil {
		s.start, s.length = 0, 0
		return false
	}
	s.start, s.length = loc[0], loc[1]-loc[0]
	return true
}
