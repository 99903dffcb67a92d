package store

// DataStore is the write interface for exported tables. Both Store (direct
// SQLite) and BatchedStore (in-memory buffering committed in a single
// transaction) implement it.
type DataStore interface {
	InsertModule(m *Module) (int64, error)
	InsertSymbol(sym *Symbol) (int64, error)
	InsertSymbolAttr(attr *SymbolAttr) (int64, error)
	SetMetadata(key, value string) error
}

var (
	_ DataStore = (*Store)(nil)
	_ DataStore = (*BatchedStore)(nil)
)
