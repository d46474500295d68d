package web

import (
	"sync"

	"github.com/google/uuid"

	"github.com/edusuite/gridcalc/sheet"
)

// SheetStore keeps uploaded sheet snapshots in memory, keyed by ID.
// Edits are whole-snapshot replacements; the stored snapshots themselves
// are never mutated, so readers can evaluate without holding the lock.
type SheetStore struct {
	mu     sync.RWMutex
	sheets map[uuid.UUID]sheet.Sheet
}

func NewSheetStore() *SheetStore {
	return &SheetStore{
		sheets: make(map[uuid.UUID]sheet.Sheet),
	}
}

// Put stores a new snapshot and returns its generated ID
func (st *SheetStore) Put(s sheet.Sheet) uuid.UUID {
	id := uuid.New()
	st.mu.Lock()
	st.sheets[id] = s
	st.mu.Unlock()
	return id
}

// Get returns the snapshot for an ID
func (st *SheetStore) Get(id uuid.UUID) (sheet.Sheet, bool) {
	st.mu.RLock()
	s, ok := st.sheets[id]
	st.mu.RUnlock()
	return s, ok
}

// Replace swaps in a new snapshot for an existing ID. Returns false if
// the ID is unknown.
func (st *SheetStore) Replace(id uuid.UUID, s sheet.Sheet) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sheets[id]; !ok {
		return false
	}
	st.sheets[id] = s
	return true
}

// Delete drops a snapshot. Returns false if the ID is unknown.
func (st *SheetStore) Delete(id uuid.UUID) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sheets[id]; !ok {
		return false
	}
	delete(st.sheets, id)
	return true
}

// Len returns the number of stored snapshots
func (st *SheetStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sheets)
}
