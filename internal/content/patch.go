package content

import "sort"

// PatchBlockSize is the sparse patch block's fixed size (spec 4.8: "a
// small power of two, e.g. 8").
const PatchBlockSize = 8

const patchBlockMask = FileOffset(PatchBlockSize - 1)

func patchBlockKey(off FileOffset) FileOffset { return off &^ patchBlockMask }
func patchBlockIndex(off FileOffset) int      { return int(off & patchBlockMask) }

type patchBlock struct {
	overridden [PatchBlockSize]bool
	value      [PatchBlockSize]byte
	original   [PatchBlockSize]byte
}

func (b *patchBlock) anyOverridden() bool {
	for _, ov := range b.overridden {
		if ov {
			return true
		}
	}
	return false
}

// PatchState communicates which layer (if any) a byte is overridden in,
// used by the formatter to pick the pending/saved highlight palette.
type PatchState int

const (
	PatchNone PatchState = iota
	PatchPending
	PatchCommitted
)

// WriteRunFunc writes a contiguous run of bytes at a file offset, used by
// Save/UndoSave to perform the actual I/O without the store importing os
// directly (keeps the store independently testable against a fake).
type WriteRunFunc func(off FileOffset, data []byte) error

// ReadByteFunc reads the single underlying (unedited) byte at off, used to
// capture "observed original" the first time a byte is overridden.
type ReadByteFunc func(off FileOffset) (byte, error)

// PatchStore is the two-layer sparse byte overlay used for hex editing:
// pending holds unsaved edits, committed holds saved overrides whose
// originals are retained so UndoSave can restore them.
type PatchStore struct {
	pending   map[FileOffset]*patchBlock
	committed map[FileOffset]*patchBlock
	readByte  ReadByteFunc
}

// NewPatchStore creates an empty store. readByte must return the file's
// current on-disk byte, ignoring any overlay (used only to seed a pending
// edit's "original" the first time a given offset is touched and no
// committed entry already covers it).
func NewPatchStore(readByte ReadByteFunc) *PatchStore {
	return &PatchStore{
		pending:   make(map[FileOffset]*patchBlock),
		committed: make(map[FileOffset]*patchBlock),
		readByte:  readByte,
	}
}

func lookupByte(m map[FileOffset]*patchBlock, off FileOffset) (byte, bool) {
	blk, ok := m[patchBlockKey(off)]
	if !ok {
		return 0, false
	}
	idx := patchBlockIndex(off)
	if !blk.overridden[idx] {
		return 0, false
	}
	return blk.value[idx], true
}

// IsByteDirty reports the effective value and which layer (if any)
// overrides off. Pending wins over committed per invariant 6.
func (p *PatchStore) IsByteDirty(off FileOffset) (value byte, state PatchState) {
	if v, ok := lookupByte(p.pending, off); ok {
		return v, PatchPending
	}
	if v, ok := lookupByte(p.committed, off); ok {
		return v, PatchCommitted
	}
	return 0, PatchNone
}

// EffectiveByte returns the byte that should be displayed/used at off: the
// pending or committed override if any, else the true disk byte.
func (p *PatchStore) EffectiveByte(off FileOffset) (byte, error) {
	if v, state := p.IsByteDirty(off); state != PatchNone {
		return v, nil
	}
	return p.readByte(off)
}

// originalFor computes the value SetByte should remember as "original" the
// first time off is overridden in pending: the committed value if one
// already exists there (so a second round of edits doesn't leapfrog an
// earlier save), else the true on-disk byte.
func (p *PatchStore) originalFor(off FileOffset) (byte, error) {
	if v, ok := lookupByte(p.committed, off); ok {
		return v, nil
	}
	return p.readByte(off)
}

// SetByte replaces one nibble of the effective byte at off and upserts the
// result into pending.
func (p *PatchStore) SetByte(off FileOffset, nibble byte, highNibble bool) error {
	cur, err := p.EffectiveByte(off)
	if err != nil {
		return err
	}

	var next byte
	if highNibble {
		next = (nibble<<4)&0xF0 | cur&0x0F
	} else {
		next = cur&0xF0 | nibble&0x0F
	}

	key := patchBlockKey(off)
	idx := patchBlockIndex(off)
	blk, ok := p.pending[key]
	if !ok {
		blk = &patchBlock{}
		p.pending[key] = blk
	}
	if !blk.overridden[idx] {
		orig, err := p.originalFor(off)
		if err != nil {
			return err
		}
		blk.original[idx] = orig
		blk.overridden[idx] = true
	}
	blk.value[idx] = next
	return nil
}

// RevertByte removes off's entry from pending only (never touches
// committed); reverting a byte never restores from disk directly, it
// simply drops the pending override so the committed/disk value shows
// through again.
func (p *PatchStore) RevertByte(off FileOffset) {
	key := patchBlockKey(off)
	blk, ok := p.pending[key]
	if !ok {
		return
	}
	idx := patchBlockIndex(off)
	if !blk.overridden[idx] {
		return
	}
	blk.overridden[idx] = false
	blk.value[idx] = 0
	blk.original[idx] = 0
	if !blk.anyOverridden() {
		delete(p.pending, key)
	}
}

// IsDirty reports whether any unsaved edits exist.
func (p *PatchStore) IsDirty() bool { return len(p.pending) > 0 }

func sortedKeys(m map[FileOffset]*patchBlock) []FileOffset {
	keys := make([]FileOffset, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// runsOf groups contiguous overridden indices in blk into byte runs,
// calling fn(startOffset, bytes) for each.
func runsOf(key FileOffset, blk *patchBlock, bytesOf func(idx int) byte, fn func(off FileOffset, data []byte)) {
	idx := 0
	for idx < PatchBlockSize {
		if !blk.overridden[idx] {
			idx++
			continue
		}
		start := idx
		var data []byte
		for idx < PatchBlockSize && blk.overridden[idx] {
			data = append(data, bytesOf(idx))
			idx++
		}
		fn(key+FileOffset(start), data)
	}
}

// Save writes every pending edit to the file via writeRun, grouping
// contiguous overridden bytes within a block into single runs. Critical
// subtlety (spec 4.8): it never re-reads current disk bytes to "refresh"
// originals — only the originals captured at SetByte time are ever used,
// so a partial-failure retry can't corrupt UndoSave semantics by mistaking
// an already-written byte for an original. On success, pending merges into
// committed (preserving any earlier committed original) and pending is
// cleared. On failure, both maps are left untouched.
func (p *PatchStore) Save(writeRun WriteRunFunc) error {
	keys := sortedKeys(p.pending)

	for _, key := range keys {
		blk := p.pending[key]
		var writeErr error
		runsOf(key, blk, func(idx int) byte { return blk.value[idx] }, func(off FileOffset, data []byte) {
			if writeErr != nil {
				return
			}
			writeErr = writeRun(off, data)
		})
		if writeErr != nil {
			return newErr("content.PatchStore.Save", KindSaveFailure, writeErr)
		}
	}

	for _, key := range keys {
		blk := p.pending[key]
		cblk, ok := p.committed[key]
		if !ok {
			cblk = &patchBlock{}
			p.committed[key] = cblk
		}
		for idx := 0; idx < PatchBlockSize; idx++ {
			if !blk.overridden[idx] {
				continue
			}
			if !cblk.overridden[idx] {
				cblk.original[idx] = blk.original[idx]
			}
			cblk.overridden[idx] = true
			cblk.value[idx] = blk.value[idx]
		}
	}

	p.pending = make(map[FileOffset]*patchBlock)
	return nil
}

// UndoSave restores every committed override's original bytes to the file
// and clears committed. Only legal when pending is empty.
func (p *PatchStore) UndoSave(writeRun WriteRunFunc) error {
	if p.IsDirty() {
		return newErr("content.PatchStore.UndoSave", KindInvalidArgument, errUndoWithPending)
	}

	keys := sortedKeys(p.committed)
	for _, key := range keys {
		blk := p.committed[key]
		var writeErr error
		runsOf(key, blk, func(idx int) byte { return blk.original[idx] }, func(off FileOffset, data []byte) {
			if writeErr != nil {
				return
			}
			writeErr = writeRun(off, data)
		})
		if writeErr != nil {
			return newErr("content.PatchStore.UndoSave", KindSaveFailure, writeErr)
		}
	}

	p.committed = make(map[FileOffset]*patchBlock)
	return nil
}

// NextEditedByteRow steps to the next (forward) or previous (!forward) hex
// row containing any overridden byte, merging both layers by taking the
// min candidate row when scanning forward and the max when scanning
// backward.
func (p *PatchStore) NextEditedByteRow(here FileOffset, forward bool, bytesPerRow FileOffset) (FileOffset, bool) {
	if bytesPerRow == 0 {
		bytesPerRow = 1
	}
	var best FileOffset
	found := false

	consider := func(off FileOffset) {
		row := (off / bytesPerRow) * bytesPerRow
		if forward {
			if row > here && (!found || row < best) {
				best, found = row, true
			}
		} else {
			if row < here && (!found || row > best) {
				best, found = row, true
			}
		}
	}

	for _, m := range []map[FileOffset]*patchBlock{p.pending, p.committed} {
		for key, blk := range m {
			for idx, ov := range blk.overridden {
				if ov {
					consider(key + FileOffset(idx))
				}
			}
		}
	}

	return best, found
}

var errUndoWithPending = undoWithPendingError{}

type undoWithPendingError struct{}

func (undoWithPendingError) Error() string {
	return "UndoSave is not legal while pending edits exist"
}
