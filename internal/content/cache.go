package content

import (
	"bytes"
	"errors"
	"io"
)

const (
	defaultSlop          = 4096
	defaultMain          = 64 * 1024
	defaultMaxLineLength = 2048
	detectPrefixSize     = 4096
	ingestChunkSize      = 64 * 1024
)

// Cache is the facade spec 4.6 describes: it owns one file's window, line
// index, decoder/encoding state, and patch overlay, and is the only thing
// the Viewer model talks to. Every method that may need to read more of the
// stream polls Interrupt and returns Aborted promptly.
type Cache struct {
	source Source
	window *Window
	lines  *LineMap

	patches *PatchStore

	encoding         Encoding
	decoder          Decoder
	opts             IteratorOptions
	wrapOn, textual  bool
	multibyteEnabled bool
}

var errLineOutOfRange = errors.New("line index out of range")
var errNotWritable = errors.New("source has no durable backing store to save to")

// Open detects the source's encoding from its leading bytes and prepares an
// empty (not yet ingested) cache over it.
func Open(source Source, multibyteEnabled bool) (*Cache, error) {
	prefix := make([]byte, detectPrefixSize)
	n, err := source.ReadAt(prefix, 0)
	if err != nil && err != io.EOF {
		return nil, newErr("content.Cache.Open", KindIoFailure, err)
	}
	prefix = prefix[:n]

	encoding := DetectEncoding(prefix, multibyteEnabled)
	decoder := NewDecoder(encoding.Codepage)

	c := &Cache{
		source:           source,
		encoding:         encoding,
		decoder:          decoder,
		multibyteEnabled: multibyteEnabled,
	}

	c.window = NewWindow(source, defaultSlop, defaultMain)
	c.patches = NewPatchStore(func(off FileOffset) (byte, error) {
		b, err := c.window.Slice(off, 1)
		if err != nil {
			return 0, err
		}
		if len(b) == 0 {
			return 0, newErr("content.Cache.readByte", KindIoFailure, io.EOF)
		}
		return b[0], nil
	})

	c.opts = IteratorOptions{
		Decoder:            decoder,
		MaxLineLength:       defaultMaxLineLength,
		TabWidth:            8,
		ExpandTabs:          true,
		ControlMode:         ControlExpand,
		Binary:              encoding.IsBinary,
		SuppressLeadingBOM:  hasPrefix(prefix, tagUTF8BOM) || hasPrefix(prefix, tagUTF16LE) || hasPrefix(prefix, tagUTF16BE),
	}
	c.wrapOn = !encoding.IsBinary
	c.textual = !encoding.IsBinary
	c.lines = NewLineMap(c.opts, c.wrapOn, c.textual)

	return c, nil
}

// Close releases the underlying source.
func (c *Cache) Close() error { return c.source.Close() }

// Encoding reports the detected (or overridden) encoding.
func (c *Cache) Encoding() Encoding { return c.encoding }

// SetWrapWidth changes the wrap width and invalidates the line index: all
// previously computed boundaries assumed the old width and must be
// recomputed the next time they're needed.
func (c *Cache) SetWrapWidth(width int) {
	c.opts.WrapWidth = width
	c.lines.Clear(c.opts, c.wrapOn, c.textual)
}

// SetEncodingOverride forces a different codepage (the user picking a
// specific encoding off the status-line menu) and invalidates the index.
func (c *Cache) SetEncodingOverride(cp Codepage) {
	c.encoding.Codepage = cp
	c.decoder = NewDecoder(cp)
	c.opts.Decoder = c.decoder
	c.lines.Clear(c.opts, c.wrapOn, c.textual)
}

// SetControlMode / SetExpandTabs / SetMaxLineLength / SetHelpModeIndent tune
// the reflow rules; each invalidates the index like SetWrapWidth.
func (c *Cache) SetControlMode(mode ControlMode) {
	c.opts.ControlMode = mode
	c.lines.Clear(c.opts, c.wrapOn, c.textual)
}
func (c *Cache) SetExpandTabs(expand bool) {
	c.opts.ExpandTabs = expand
	c.lines.Clear(c.opts, c.wrapOn, c.textual)
}
func (c *Cache) SetMaxLineLength(n int) {
	c.opts.MaxLineLength = n
	c.lines.Clear(c.opts, c.wrapOn, c.textual)
}
func (c *Cache) SetHelpModeIndent(on bool) {
	c.opts.HelpModeIndent = on
	c.lines.Clear(c.opts, c.wrapOn, c.textual)
}

// ingestChunk reads and indexes one more chunk of the stream, starting just
// past the bytes already handed to the line map (its processed offset plus
// whatever it still holds unconsumed). progressed is false exactly when
// nothing more can ever be indexed (stream exhausted).
func (c *Cache) ingestChunk() (progressed bool, atEOF bool, err error) {
	pos := c.lines.Processed() + FileOffset(len(c.lines.buf))
	if c.lines.iter.skipping {
		pos += FileOffset(c.lines.iter.pendingByteLen)
	}
	chunk := make([]byte, ingestChunkSize)
	n, rerr := c.source.ReadAt(chunk, pos)
	if rerr == io.EOF {
		atEOF = true
	} else if rerr != nil {
		return false, false, newErr("content.Cache.ingest", KindIoFailure, rerr)
	}

	beforeOffset := c.lines.Processed()
	beforeCount := c.lines.Count()
	c.lines.Next(chunk[:n], atEOF)
	progressed = c.lines.Processed() > beforeOffset || c.lines.Count() > beforeCount
	return progressed, atEOF, nil
}

// ProcessThrough indexes the stream until at least targetOffset bytes are
// accounted for, or the stream ends first.
func (c *Cache) ProcessThrough(targetOffset FileOffset) error {
	for c.lines.Processed() < targetOffset {
		if Interrupt.Requested() {
			return Aborted
		}
		progressed, atEOF, err := c.ingestChunk()
		if err != nil {
			return err
		}
		if !progressed && atEOF {
			return nil
		}
	}
	return nil
}

// ProcessToEnd indexes the entire remaining stream (used before reporting a
// final line count, e.g. when the Viewer jumps to the bottom).
func (c *Cache) ProcessToEnd() error {
	for {
		if Interrupt.Requested() {
			return Aborted
		}
		progressed, atEOF, err := c.ingestChunk()
		if err != nil {
			return err
		}
		if !progressed && atEOF {
			return nil
		}
	}
}

// ensureLineIndexed indexes forward until line idx exists or the stream
// ends; ok is false when idx is (or is beyond) the last line.
func (c *Cache) ensureLineIndexed(idx int) (ok bool, err error) {
	for c.lines.Count() <= idx {
		if Interrupt.Requested() {
			return false, Aborted
		}
		progressed, atEOF, err := c.ingestChunk()
		if err != nil {
			return false, err
		}
		if !progressed && atEOF {
			return false, nil
		}
	}
	return true, nil
}

// GetLength reports the source's total byte length and whether it is known
// (always true once Open succeeds: files are stat'd and pipes are fully
// captured up front, so there is no "still growing" case to report).
func (c *Cache) GetLength() (FileOffset, bool) { return c.source.Size() }

// LineCount reports how many logical lines have been indexed so far; call
// ProcessToEnd first for a final count.
func (c *Cache) LineCount() int { return c.lines.Count() }

// OffsetToLine indexes through off and returns the line index containing
// it (used by the jump-to-offset prompt when not in hex mode).
func (c *Cache) OffsetToLine(off FileOffset) (int, error) {
	if err := c.ProcessThrough(off + 1); err != nil {
		return 0, err
	}
	return c.lines.OffsetToIndex(off), nil
}

// lineByteRange resolves line idx's [offset, offset+length) span, indexing
// one line further ahead if needed to learn where it ends.
func (c *Cache) lineByteRange(idx int) (FileOffset, int, error) {
	if ok, err := c.ensureLineIndexed(idx); err != nil {
		return 0, 0, err
	} else if !ok {
		return 0, 0, newErr("content.Cache.lineByteRange", KindInvalidArgument, errLineOutOfRange)
	}
	off := c.lines.GetOffset(idx)

	var end FileOffset
	if ok, err := c.ensureLineIndexed(idx + 1); err != nil {
		return 0, 0, err
	} else if ok {
		end = c.lines.GetOffset(idx + 1)
	} else {
		end = c.lines.Processed()
	}
	return off, int(end - off), nil
}

// FormatLineData renders line idx for display. found, if non-nil and
// pointing at this line, is highlighted in the returned text.
func (c *Cache) FormatLineData(idx int, found *FindResult) (FormattedLine, error) {
	off, length, err := c.lineByteRange(idx)
	if err != nil {
		return FormattedLine{}, err
	}
	raw, err := c.window.Slice(off, length)
	if err != nil {
		return FormattedLine{}, err
	}

	indent := c.lines.GetFormattingInfo(idx)
	foundOff, foundLen := -1, 0
	if found != nil && found.LineIndex == idx {
		foundOff = int(found.Offset - off)
		foundLen = found.Length
	}
	return FormatLineText(raw, c.decoder, indent, c.opts, foundOff, foundLen, off == 0), nil
}

// FormatHexData renders bytesPerRow bytes starting at rowOffset as a hex
// row (used for binary files, or the hex-edit pane over a text file).
func (c *Cache) FormatHexData(rowOffset FileOffset, bytesPerRow int) (HexRow, error) {
	raw, err := c.window.Slice(rowOffset, bytesPerRow)
	if err != nil {
		return HexRow{}, err
	}
	hexDec := NewDecoder(EnsureSingleByteCP(c.encoding.Codepage))
	return FormatHexRow(rowOffset, raw, bytesPerRow, c.patches, hexDec, c.opts.ControlMode), nil
}

// FindResult locates a search match by line index and source byte range.
type FindResult struct {
	LineIndex int
	Offset    FileOffset
	Length    int
}

// FindFrom scans logical lines starting at fromLine (inclusive) for the
// first match of searcher, going forward or backward. fromCol restricts the
// very first line scanned to content starting at that decoded-text byte
// offset (used for "find next" continuing past a previous hit on the same
// line); it only applies going forward. A nil result with a nil error means
// the search reached the relevant end of the stream with no match.
//
// Binary/hex-mode content is indexed by Cache just like text, as rows capped
// at max-line-length (IteratorOptions.Binary) that also end at CR/LF bytes,
// so this same loop serves
// as the hex-mode Find as well — no separate byte-oriented loop is needed.
func (c *Cache) FindFrom(searcher Searcher, fromLine, fromCol int, forward bool) (*FindResult, error) {
	idx := fromLine
	for {
		if Interrupt.Requested() {
			return nil, Aborted
		}

		if forward {
			ok, err := c.ensureLineIndexed(idx)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, nil
			}
		} else if idx < 0 {
			return nil, nil
		}

		off, length, err := c.lineByteRange(idx)
		if err != nil {
			return nil, err
		}

		// Extend the scanned range by up to needle_delta-1 bytes so a match
		// straddling a forced (wrap) line break is still found, without
		// ever crossing an actual newline into the next logical record.
		if extra := searcher.NeedleDelta() - 1; extra > 0 {
			if extRaw, extErr := c.window.Slice(off, length+extra); extErr == nil && len(extRaw) > length {
				if nl := bytes.IndexByte(extRaw[length:], '\n'); nl >= 0 {
					length += nl
				} else {
					length = len(extRaw)
				}
			}
		}

		raw, err := c.window.Slice(off, length)
		if err != nil {
			return nil, err
		}

		text, srcOffsets := DecodeWithOffsets(raw, c.decoder)

		searchText := text
		colBias := 0
		if idx == fromLine && forward && fromCol > 0 {
			if fromCol >= len(text) {
				searchText = ""
			} else {
				searchText = text[fromCol:]
				colBias = fromCol
			}
		}

		if searchText != "" && searcher.Match(searchText) {
			start := searcher.MatchStart() + colBias
			srcOff, srcLen := SourceRange(srcOffsets, start, searcher.MatchLength())
			return &FindResult{LineIndex: idx, Offset: off + FileOffset(srcOff), Length: srcLen}, nil
		}

		if forward {
			idx++
		} else {
			idx--
		}
	}
}

// SetByte / RevertByte / IsDirty / NextEditedByteRow delegate to the patch
// store; Save / UndoSave additionally need a writable backing source.
func (c *Cache) SetByte(off FileOffset, nibble byte, highNibble bool) error {
	return c.patches.SetByte(off, nibble, highNibble)
}
func (c *Cache) RevertByte(off FileOffset) { c.patches.RevertByte(off) }
func (c *Cache) IsDirty() bool             { return c.patches.IsDirty() }
func (c *Cache) NextEditedByteRow(here FileOffset, forward bool, bytesPerRow FileOffset) (FileOffset, bool) {
	return c.patches.NextEditedByteRow(here, forward, bytesPerRow)
}

func (c *Cache) writableSource() (WritableSource, error) {
	ws, ok := c.source.(WritableSource)
	if !ok {
		return nil, newErr("content.Cache", KindSaveFailure, errNotWritable)
	}
	return ws, nil
}

// Save persists all pending hex edits to the backing file.
func (c *Cache) Save() error {
	ws, err := c.writableSource()
	if err != nil {
		return err
	}
	return c.patches.Save(func(off FileOffset, data []byte) error {
		_, werr := ws.WriteAt(data, off)
		return werr
	})
}

// UndoSave restores every previously saved edit's original bytes.
func (c *Cache) UndoSave() error {
	ws, err := c.writableSource()
	if err != nil {
		return err
	}
	return c.patches.UndoSave(func(off FileOffset, data []byte) error {
		_, werr := ws.WriteAt(data, off)
		return werr
	})
}
