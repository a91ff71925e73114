package content

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySource_ReadAt(t *testing.T) {
	s := NewMemorySource("hello world")
	buf := make([]byte, 5)
	n, err := s.ReadAt(buf, 6)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "world", string(buf))
}

func TestMemorySource_ReadAtPastEndReportsEOF(t *testing.T) {
	s := NewMemorySource("hi")
	buf := make([]byte, 4)
	n, err := s.ReadAt(buf, 0)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 2, n)

	n, err = s.ReadAt(buf, 10)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 0, n)
}

func TestFileSource_ReadAtAndWriteAt(t *testing.T) {
	f := newTempFile(t, []byte("ABCDEFGH"))
	s, err := NewFileSource(f)
	require.NoError(t, err)

	buf := make([]byte, 4)
	n, err := s.ReadAt(buf, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "CDEF", string(buf))

	size, known := s.Size()
	assert.True(t, known)
	assert.Equal(t, FileOffset(8), size)

	_, err = s.WriteAt([]byte("XY"), 8) // extends past current size
	require.NoError(t, err)
	size, _ = s.Size()
	assert.Equal(t, FileOffset(10), size)
}

func TestCapturePipe_ChunksData(t *testing.T) {
	data := bytes.Repeat([]byte("x"), PipeChunkSize+10)
	ps, err := CapturePipe(strings.NewReader(string(data)))
	require.NoError(t, err)

	size, known := ps.Size()
	assert.True(t, known)
	assert.Equal(t, FileOffset(len(data)), size)
	assert.Len(t, ps.chunks, 2)
	assert.Len(t, ps.chunks[0], PipeChunkSize)
	assert.Len(t, ps.chunks[1], 10)
}

func TestPipeSource_ReadAtAcrossChunkBoundary(t *testing.T) {
	data := append(bytes.Repeat([]byte("a"), PipeChunkSize), []byte("bcdef")...)
	ps, err := CapturePipe(bytes.NewReader(data))
	require.NoError(t, err)

	buf := make([]byte, 10)
	n, err := ps.ReadAt(buf, FileOffset(PipeChunkSize-5))
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, "aaaaabcdef", string(buf))
}

func TestPipeSource_ReadAtPastEnd(t *testing.T) {
	ps, err := CapturePipe(strings.NewReader("short"))
	require.NoError(t, err)

	buf := make([]byte, 3)
	n, err := ps.ReadAt(buf, 100)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 0, n)
}

func TestWindow_CoversAndEnsureCovers(t *testing.T) {
	f := newTempFile(t, bytes.Repeat([]byte("0123456789"), 10)) // 100 bytes
	src, err := NewFileSource(f)
	require.NoError(t, err)

	w := NewWindow(src, 4, 10)
	assert.False(t, w.Covers(0, 1))

	require.NoError(t, w.EnsureCovers(20, 5))
	assert.True(t, w.Covers(20, 5))
	assert.False(t, w.Covers(0, 1))

	b, err := w.Slice(20, 5)
	require.NoError(t, err)
	assert.Equal(t, "01234", string(b))
}

func TestWindow_ReloadReusesOverlap(t *testing.T) {
	data := []byte("abcdefghijklmnopqrstuvwxyz")
	f := newTempFile(t, data)
	src, err := NewFileSource(f)
	require.NoError(t, err)

	w := NewWindow(src, 2, 4)
	require.NoError(t, w.EnsureCovers(10, 4))
	firstSlice, err := w.Slice(10, 4)
	require.NoError(t, err)
	assert.Equal(t, "klmn", string(firstSlice))

	// Shift the window forward by a small amount so the new range overlaps
	// the old one; reload must splice in only the new delta.
	require.NoError(t, w.EnsureCovers(14, 4))
	secondSlice, err := w.Slice(14, 4)
	require.NoError(t, err)
	assert.Equal(t, "opqr", string(secondSlice))
}

func TestWindow_SliceNearEndOfStreamTruncates(t *testing.T) {
	data := []byte("abcdefgh")
	f := newTempFile(t, data)
	src, err := NewFileSource(f)
	require.NoError(t, err)

	w := NewWindow(src, 2, 4)
	b, err := w.Slice(6, 10) // asks for more than remains
	require.NoError(t, err)
	assert.Equal(t, "gh", string(b))
}

func TestWindow_SliceOverEntireMemorySource(t *testing.T) {
	src := NewMemorySource("the quick brown fox")
	w := NewWindow(src, 2, 8)

	b, err := w.Slice(4, 5)
	require.NoError(t, err)
	assert.Equal(t, "quick", string(b))
}
