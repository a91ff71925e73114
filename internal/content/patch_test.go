package content

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDisk is a minimal in-memory backing store for exercising PatchStore
// without a real file, matching the ReadByteFunc/WriteRunFunc seams.
type fakeDisk struct {
	data    []byte
	failNext bool
}

func (d *fakeDisk) readByte(off FileOffset) (byte, error) {
	if int(off) >= len(d.data) {
		return 0, errors.New("read past end")
	}
	return d.data[off], nil
}

func (d *fakeDisk) writeRun(off FileOffset, data []byte) error {
	if d.failNext {
		return errors.New("simulated write failure")
	}
	copy(d.data[off:], data)
	return nil
}

// S5 — Hex edit round trip: two nibble writes merge into one pending byte,
// Save commits it to disk, UndoSave restores the original.
func TestPatchStore_S5_HexEditRoundTrip(t *testing.T) {
	disk := &fakeDisk{data: []byte{0x00}}
	p := NewPatchStore(disk.readByte)

	require.NoError(t, p.SetByte(0, 0xA, true))  // high nibble -> 0xA0
	require.NoError(t, p.SetByte(0, 0xB, false)) // low nibble -> 0xAB

	v, state := p.IsByteDirty(0)
	assert.Equal(t, byte(0xAB), v)
	assert.Equal(t, PatchPending, state)
	assert.True(t, p.IsDirty())

	require.NoError(t, p.Save(disk.writeRun))
	assert.False(t, p.IsDirty())
	assert.Equal(t, byte(0xAB), disk.data[0])

	v, state = p.IsByteDirty(0)
	assert.Equal(t, byte(0xAB), v)
	assert.Equal(t, PatchCommitted, state)

	require.NoError(t, p.UndoSave(disk.writeRun))
	assert.Equal(t, byte(0x00), disk.data[0])
	_, state = p.IsByteDirty(0)
	assert.Equal(t, PatchNone, state)
}

// Invariant: reverting a byte only drops the pending override; it never
// touches a committed override from an earlier save.
func TestPatchStore_RevertByteLeavesCommittedAlone(t *testing.T) {
	disk := &fakeDisk{data: []byte{0x41}}
	p := NewPatchStore(disk.readByte)

	require.NoError(t, p.SetByte(0, 0x5, true))
	require.NoError(t, p.Save(disk.writeRun))

	require.NoError(t, p.SetByte(0, 0x2, false)) // second edit, still pending
	v, state := p.IsByteDirty(0)
	assert.Equal(t, PatchPending, state)
	assert.Equal(t, byte(0x52), v)

	p.RevertByte(0)
	v, state = p.IsByteDirty(0)
	assert.Equal(t, PatchCommitted, state)
	assert.Equal(t, byte(0x51), v)
}

// RevertByte on an offset with no pending entry is a no-op, not an error.
func TestPatchStore_RevertByteNoPendingIsNoop(t *testing.T) {
	disk := &fakeDisk{data: []byte{0xFF}}
	p := NewPatchStore(disk.readByte)
	p.RevertByte(5)
	_, state := p.IsByteDirty(5)
	assert.Equal(t, PatchNone, state)
}

// Invariant: a save/undo round trip restores the exact pre-edit byte
// regardless of how many times the offset was rewritten before saving.
func TestPatchStore_SaveUndoRoundTripAfterMultipleEdits(t *testing.T) {
	disk := &fakeDisk{data: []byte{0x00}}
	p := NewPatchStore(disk.readByte)

	require.NoError(t, p.SetByte(0, 0x1, true))
	require.NoError(t, p.SetByte(0, 0x2, true))
	require.NoError(t, p.SetByte(0, 0x3, true))
	require.NoError(t, p.SetByte(0, 0x9, false))

	require.NoError(t, p.Save(disk.writeRun))
	assert.Equal(t, byte(0x39), disk.data[0])

	require.NoError(t, p.UndoSave(disk.writeRun))
	assert.Equal(t, byte(0x00), disk.data[0])
}

// UndoSave is illegal while pending edits exist, to avoid ambiguity about
// which layer "undo" should discard.
func TestPatchStore_UndoSaveRejectsWithPendingEdits(t *testing.T) {
	disk := &fakeDisk{data: []byte{0x00}}
	p := NewPatchStore(disk.readByte)

	require.NoError(t, p.SetByte(0, 0xA, true))
	require.NoError(t, p.Save(disk.writeRun))
	require.NoError(t, p.SetByte(0, 0xB, true)) // new pending edit after save

	err := p.UndoSave(disk.writeRun)
	require.Error(t, err)
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindInvalidArgument, ce.Kind)
}

// A Save that fails to write leaves both layers untouched.
func TestPatchStore_SaveFailureLeavesPendingIntact(t *testing.T) {
	disk := &fakeDisk{data: []byte{0x00}, failNext: true}
	p := NewPatchStore(disk.readByte)

	require.NoError(t, p.SetByte(0, 0xA, true))
	err := p.Save(disk.writeRun)
	require.Error(t, err)
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindSaveFailure, ce.Kind)

	assert.True(t, p.IsDirty())
	v, state := p.IsByteDirty(0)
	assert.Equal(t, PatchPending, state)
	assert.Equal(t, byte(0xA0), v)
}

// Contiguous overridden bytes within a block are written as a single run,
// not byte by byte; this is observable only via the write call count.
func TestPatchStore_SaveGroupsContiguousRunsWithinABlock(t *testing.T) {
	disk := &fakeDisk{data: make([]byte, PatchBlockSize)}
	p := NewPatchStore(disk.readByte)

	var calls int
	countingWrite := func(off FileOffset, data []byte) error {
		calls++
		return disk.writeRun(off, data)
	}

	require.NoError(t, p.SetByte(1, 0xA, true))
	require.NoError(t, p.SetByte(1, 0xA, false))
	require.NoError(t, p.SetByte(2, 0xB, true))
	require.NoError(t, p.SetByte(2, 0xB, false))
	// offset 5 is not contiguous with 1-2, so it must be a separate run.
	require.NoError(t, p.SetByte(5, 0xC, true))
	require.NoError(t, p.SetByte(5, 0xC, false))

	require.NoError(t, p.Save(countingWrite))
	assert.Equal(t, 2, calls)
	assert.Equal(t, []byte{0x00, 0xAA, 0xBB, 0x00, 0x00, 0xCC, 0x00, 0x00}, disk.data)
}

// NextEditedByteRow merges pending and committed layers and reports the
// nearest row boundary in the requested direction.
func TestPatchStore_NextEditedByteRow(t *testing.T) {
	disk := &fakeDisk{data: make([]byte, 64)}
	p := NewPatchStore(disk.readByte)

	require.NoError(t, p.SetByte(10, 0xA, true))
	require.NoError(t, p.Save(disk.writeRun))
	require.NoError(t, p.SetByte(40, 0xB, true))

	// here=0 is already inside the row containing offset 10, so forward
	// search (strictly after here) must skip it and land on offset 40's row.
	row, ok := p.NextEditedByteRow(0, true, 16)
	require.True(t, ok)
	assert.Equal(t, FileOffset(32), row)

	row, ok = p.NextEditedByteRow(16, true, 16)
	require.True(t, ok)
	assert.Equal(t, FileOffset(32), row) // row containing offset 40 starts at 32

	row, ok = p.NextEditedByteRow(64, false, 16)
	require.True(t, ok)
	assert.Equal(t, FileOffset(32), row)

	_, ok = p.NextEditedByteRow(32, true, 16)
	assert.False(t, ok, "no edited row strictly after 32")
}
