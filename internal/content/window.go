package content

import (
	"io"
	"os"
)

// Source abstracts the byte-addressable backing store for a sliding
// window: a regular file, a fully-captured pipe, or an in-memory string.
type Source interface {
	// ReadAt fills p from off, following io.ReaderAt conventions: it may
	// return n < len(p) with err == io.EOF when off+len(p) exceeds the
	// source's extent.
	ReadAt(p []byte, off FileOffset) (int, error)
	// Size reports the source's length and whether it is fully known. A
	// pipe mid-capture reports ok=false.
	Size() (FileOffset, bool)
	Close() error
}

// FileSource reads from a regular, seekable OS file.
type FileSource struct {
	f    *os.File
	size FileOffset
}

func NewFileSource(f *os.File) (*FileSource, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return &FileSource{f: f, size: FileOffset(info.Size())}, nil
}

func (s *FileSource) ReadAt(p []byte, off FileOffset) (int, error) {
	if off >= s.size {
		return 0, io.EOF
	}
	return s.f.ReadAt(p, int64(off))
}
func (s *FileSource) Size() (FileOffset, bool) { return s.size, true }
func (s *FileSource) Close() error {
	if s.f == nil {
		return nil
	}
	return s.f.Close()
}

// WriteAt writes p at off and grows the tracked size if the write extends
// past it. Only FileSource implements WritableSource: a pipe or in-memory
// help buffer has nowhere durable to save a hex edit to.
func (s *FileSource) WriteAt(p []byte, off FileOffset) (int, error) {
	n, err := s.f.WriteAt(p, int64(off))
	if end := off + FileOffset(n); end > s.size {
		s.size = end
	}
	return n, err
}

// WritableSource is implemented by sources that can persist a hex-edit
// save/undo back to durable storage.
type WritableSource interface {
	WriteAt(p []byte, off FileOffset) (int, error)
}

// PipeChunkSize is the platform page granularity pipe captures are sized
// at (spec 4.5: "sized at a platform page granularity").
const PipeChunkSize = 64 * 1024

// PipeSource holds an immutable, already-fully-captured stdin stream as a
// list of page-sized chunks. Capture happens once, during Open("<stdin>");
// subsequent window loads are pure copies out of these chunks, never I/O.
type PipeSource struct {
	chunks [][]byte
	size   FileOffset
}

// CapturePipe drains r into PipeChunkSize-sized immutable chunks.
func CapturePipe(r io.Reader) (*PipeSource, error) {
	ps := &PipeSource{}
	for {
		chunk := make([]byte, PipeChunkSize)
		n, err := io.ReadFull(r, chunk)
		if n > 0 {
			ps.chunks = append(ps.chunks, chunk[:n])
			ps.size += FileOffset(n)
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return ps, nil
		}
		if err != nil {
			return ps, err
		}
	}
}

func (s *PipeSource) Size() (FileOffset, bool) { return s.size, true }
func (s *PipeSource) Close() error             { return nil }

func (s *PipeSource) ReadAt(p []byte, off FileOffset) (int, error) {
	if off >= s.size {
		return 0, io.EOF
	}
	total := 0
	chunkStart := FileOffset(0)
	for _, c := range s.chunks {
		chunkEnd := chunkStart + FileOffset(len(c))
		if off < chunkEnd {
			srcOff := int(0)
			if off > chunkStart {
				srcOff = int(off - chunkStart)
			}
			n := copy(p[total:], c[srcOff:])
			total += n
			off += FileOffset(n)
			if total == len(p) {
				return total, nil
			}
		}
		chunkStart = chunkEnd
	}
	if total < len(p) {
		return total, io.EOF
	}
	return total, nil
}

// MemorySource backs a window with an in-memory byte slice (used by the
// help-text viewer, which has no file handle).
type MemorySource struct{ data []byte }

func NewMemorySource(s string) *MemorySource { return &MemorySource{data: []byte(s)} }

func (s *MemorySource) Size() (FileOffset, bool) { return FileOffset(len(s.data)), true }
func (s *MemorySource) Close() error             { return nil }
func (s *MemorySource) ReadAt(p []byte, off FileOffset) (int, error) {
	if off >= FileOffset(len(s.data)) {
		return 0, io.EOF
	}
	n := copy(p, s.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Window is a single contiguous buffer caching [dataOffset, dataOffset+len)
// of a Source, with slop bytes of padding at each end (spec 4.5) so that
// a full line plus a max-needle worth of look-ahead is resident whenever
// the requested line is inside the window.
type Window struct {
	source Source
	slop   int
	main   int

	data       []byte
	dataOffset FileOffset
}

// NewWindow constructs a window over source with the given slop/main sizes.
// Searches assume maxNeedle <= slop; nothing checks a needle's length against it.
func NewWindow(source Source, slop, main int) *Window {
	return &Window{source: source, slop: slop, main: main}
}

func (w *Window) Slop() int { return w.slop }

// Offset and Length report the currently resident range.
func (w *Window) Offset() FileOffset { return w.dataOffset }
func (w *Window) Length() int        { return len(w.data) }

// Bytes returns the resident buffer.
func (w *Window) Bytes() []byte { return w.data }

// Covers reports whether [off, off+length) is fully resident.
func (w *Window) Covers(off FileOffset, length int) bool {
	if len(w.data) == 0 {
		return false
	}
	end := w.dataOffset + FileOffset(len(w.data))
	return off >= w.dataOffset && off+FileOffset(length) <= end
}

// EnsureCovers reloads the window if [off, off+length) is not resident. Per
// invariant 4, the formatter calls this before touching any bytes.
func (w *Window) EnsureCovers(off FileOffset, length int) error {
	if w.Covers(off, length) {
		return nil
	}
	return w.reload(off)
}

// Slice returns the bytes at [off, off+length), reloading first if needed.
func (w *Window) Slice(off FileOffset, length int) ([]byte, error) {
	if err := w.EnsureCovers(off, length); err != nil {
		return nil, err
	}
	start := off - w.dataOffset
	end := start + FileOffset(length)
	if end > FileOffset(len(w.data)) {
		end = FileOffset(len(w.data))
	}
	return w.data[start:end], nil
}

// reload starts the window slop bytes before requestOffset (or at 0), reusing any overlap with the
// currently resident range via a single copy of the retained portion, and
// reading only the delta from the source.
func (w *Window) reload(requestOffset FileOffset) error {
	var begin FileOffset
	if requestOffset > FileOffset(w.slop) {
		begin = requestOffset - FileOffset(w.slop)
	}
	end := requestOffset + FileOffset(w.main) + FileOffset(w.slop)
	if size, known := w.source.Size(); known && end > size {
		end = size
	}
	if end < begin {
		end = begin
	}

	want := int(end - begin)
	newData := make([]byte, want)

	oldEnd := w.dataOffset + FileOffset(len(w.data))
	haveOverlap := len(w.data) > 0 && begin < oldEnd && end > w.dataOffset

	if haveOverlap {
		ovBegin := maxOffset(begin, w.dataOffset)
		ovEnd := minOffset(end, oldEnd)
		if ovEnd > ovBegin {
			srcStart := ovBegin - w.dataOffset
			dstStart := ovBegin - begin
			copy(newData[dstStart:dstStart+(ovEnd-ovBegin)], w.data[srcStart:srcStart+(ovEnd-ovBegin)])
		}
		if begin < ovBegin {
			if err := w.fill(newData[0:ovBegin-begin], begin); err != nil {
				return err
			}
		}
		if ovEnd < end {
			if err := w.fill(newData[ovEnd-begin:], ovEnd); err != nil {
				return err
			}
		}
	} else if want > 0 {
		if err := w.fill(newData, begin); err != nil {
			return err
		}
	}

	w.data = newData
	w.dataOffset = begin
	return nil
}

func (w *Window) fill(p []byte, off FileOffset) error {
	if len(p) == 0 {
		return nil
	}
	n, err := w.source.ReadAt(p, off)
	if err != nil && err != io.EOF {
		return newErr("content.Window.reload", KindIoFailure, err)
	}
	if n < len(p) {
		// Short read at end-of-stream: zero the remainder rather than leave
		// stale bytes from a previous allocation (new slice is already
		// zeroed by make, so nothing further is needed).
		_ = n
	}
	return nil
}

func maxOffset(a, b FileOffset) FileOffset {
	if a > b {
		return a
	}
	return b
}
func minOffset(a, b FileOffset) FileOffset {
	if a < b {
		return a
	}
	return b
}
