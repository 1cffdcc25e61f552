package fs

// tableEntry is one slot of the open-file table.
type tableEntry struct {
	inUse    bool
	file     *BlockFile
	sector   int
	name     string
	cursor   int
	nextFree int
}

// openFileTable is a fixed-capacity arena of open-file slots. A Handle
// is a slot index. Free slots are chained through nextFree so
// acquiring one is a pop, not a scan. At most one slot references any
// given sector; Open enforces that by probing bySector first.
type openFileTable struct {
	slots    [MaxOpenFiles]tableEntry
	freeHead int
}

func newOpenFileTable() *openFileTable {
	t := &openFileTable{}
	for i := range t.slots {
		t.slots[i].nextFree = i + 1
	}
	t.slots[MaxOpenFiles-1].nextFree = -1
	return t
}

// acquire pops a free slot, or returns InvalidHandle when the table is
// full.
func (t *openFileTable) acquire() Handle {
	if t.freeHead == -1 {
		return InvalidHandle
	}
	h := Handle(t.freeHead)
	t.freeHead = t.slots[h].nextFree
	t.slots[h].inUse = true
	return h
}

// release resets a slot to its empty state and pushes it on the free
// list. The underlying file is the caller's to close.
func (t *openFileTable) release(h Handle) {
	t.slots[h] = tableEntry{nextFree: t.freeHead}
	t.freeHead = int(h)
}

// valid reports whether h names an in-use slot backed by an open file.
func (t *openFileTable) valid(h Handle) bool {
	return h >= 0 && int(h) < MaxOpenFiles &&
		t.slots[h].inUse && t.slots[h].file != nil
}

// bySector returns the handle already open on the given sector, or
// InvalidHandle.
func (t *openFileTable) bySector(sector int) Handle {
	for i := range t.slots {
		if t.slots[i].inUse && t.slots[i].sector == sector {
			return Handle(i)
		}
	}
	return InvalidHandle
}

// entry returns the slot for a handle the caller has validated.
func (t *openFileTable) entry(h Handle) *tableEntry {
	return &t.slots[h]
}
