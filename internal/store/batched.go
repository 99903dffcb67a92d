package store

import "sync"

// BatchedStore buffers inserts in memory using fake (negative) IDs so an
// export is written by CommitBatch in one transaction. Foreign keys between
// buffered rows use the fake IDs and are remapped at commit.
type BatchedStore struct {
	mu sync.Mutex

	// Replace clears every exported table before the batch is written.
	Replace bool

	Modules  []Module
	Symbols  []Symbol
	Attrs    []SymbolAttr
	Metadata map[string]string

	nextFakeID int64 // starts at -1, decrements
}

// NewBatchedStore creates an empty BatchedStore.
func NewBatchedStore() *BatchedStore {
	return &BatchedStore{
		Metadata:   make(map[string]string),
		nextFakeID: -1,
	}
}

func (b *BatchedStore) allocFakeID() int64 {
	id := b.nextFakeID
	b.nextFakeID--
	return id
}

func (b *BatchedStore) InsertModule(m *Module) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m.ID = b.allocFakeID()
	b.Modules = append(b.Modules, *m)
	return m.ID, nil
}

func (b *BatchedStore) InsertSymbol(sym *Symbol) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sym.ID = b.allocFakeID()
	b.Symbols = append(b.Symbols, *sym)
	return sym.ID, nil
}

func (b *BatchedStore) InsertSymbolAttr(attr *SymbolAttr) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	attr.ID = b.allocFakeID()
	b.Attrs = append(b.Attrs, *attr)
	return attr.ID, nil
}

func (b *BatchedStore) SetMetadata(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Metadata[key] = value
	return nil
}

// Len reports the number of buffered rows, metadata excluded.
func (b *BatchedStore) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Modules) + len(b.Symbols) + len(b.Attrs)
}
