package tranp

import (
	"fmt"

	"github.com/jward/tranp/internal/store"
)

// QueryBuilder reads an exported symbol table.
type QueryBuilder struct {
	store *store.Store
}

// SymbolInfo is a stored symbol with its attributes.
type SymbolInfo struct {
	Symbol
	Module string
	Attrs  []*SymbolAttr
}

// Open opens an exported database for reading.
func Open(dbPath string) (*QueryBuilder, error) {
	st, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("tranp: open: %w", err)
	}
	if err := st.Migrate(); err != nil {
		st.Close()
		return nil, fmt.Errorf("tranp: open: %w", err)
	}
	return &QueryBuilder{store: st}, nil
}

// Close releases the database.
func (q *QueryBuilder) Close() error {
	return q.store.Close()
}

// Store returns the underlying Store for direct access.
func (q *QueryBuilder) Store() *Store {
	return q.store
}

// Root returns the root module id of the export.
func (q *QueryBuilder) Root() (string, error) {
	return q.store.Metadata(store.MetaRoot)
}

// Modules returns the exported modules in expansion order.
func (q *QueryBuilder) Modules() ([]*Module, error) {
	return q.store.Modules()
}

// Symbol returns the symbol registered under name with its attributes, or
// nil when absent.
func (q *QueryBuilder) Symbol(name string) (*SymbolInfo, error) {
	sym, err := q.store.SymbolByName(name)
	if err != nil {
		return nil, fmt.Errorf("symbol: %w", err)
	}
	if sym == nil {
		return nil, nil
	}
	infos, err := q.describe([]*Symbol{sym})
	if err != nil {
		return nil, fmt.Errorf("symbol: %w", err)
	}
	return infos[0], nil
}

// ModuleSymbols returns a module's symbols in table order.
func (q *QueryBuilder) ModuleSymbols(id string) ([]*SymbolInfo, error) {
	m, err := q.store.ModuleByName(id)
	if err != nil {
		return nil, fmt.Errorf("module symbols: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("module symbols: %s: %w", id, ErrModuleNotFound)
	}
	syms, err := q.store.SymbolsByModule(m.ID)
	if err != nil {
		return nil, fmt.Errorf("module symbols: %w", err)
	}
	return q.describe(syms)
}

// ByRole returns every symbol of role in table order.
func (q *QueryBuilder) ByRole(role Role) ([]*SymbolInfo, error) {
	syms, err := q.store.SymbolsByRole(role.String())
	if err != nil {
		return nil, fmt.Errorf("by role: %w", err)
	}
	return q.describe(syms)
}

// Derived returns the symbols whose origin is name: imports of a
// declaration, variables typed by a class, and so on.
func (q *QueryBuilder) Derived(name string) ([]*SymbolInfo, error) {
	syms, err := q.store.SymbolsByOrigin(name)
	if err != nil {
		return nil, fmt.Errorf("derived: %w", err)
	}
	return q.describe(syms)
}

// Verify recomputes the table digest and compares it with the one stored at
// export time.
func (q *QueryBuilder) Verify() (bool, error) {
	want, err := q.store.Metadata(store.MetaDigest)
	if err != nil {
		return false, fmt.Errorf("verify: %w", err)
	}
	got, err := q.store.Digest()
	if err != nil {
		return false, fmt.Errorf("verify: %w", err)
	}
	return want != "" && want == got, nil
}

func (q *QueryBuilder) describe(syms []*Symbol) ([]*SymbolInfo, error) {
	mods, err := q.store.Modules()
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(mods))
	for _, m := range mods {
		names[m.ID] = m.Name
	}

	out := make([]*SymbolInfo, 0, len(syms))
	for _, sym := range syms {
		attrs, err := q.store.AttrsBySymbol(sym.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, &SymbolInfo{Symbol: *sym, Module: names[sym.ModuleID], Attrs: attrs})
	}
	return out, nil
}
