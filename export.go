package tranp

import (
	"fmt"
	"strings"

	"github.com/jward/tranp/internal/store"
)

// Export writes the session's modules and symbol table to a SQLite
// database at dbPath, replacing any previous export, in one transaction.
// The table digest is stored as metadata so readers can verify it.
func (s *Session) Export(dbPath string) error {
	st, err := store.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("tranp: export: %w", err)
	}
	defer st.Close()
	if err := st.Migrate(); err != nil {
		return fmt.Errorf("tranp: export: %w", err)
	}

	batch, err := s.Batch()
	if err != nil {
		return fmt.Errorf("tranp: export: %w", err)
	}
	batch.Replace = true
	if err := st.CommitBatch(batch); err != nil {
		return fmt.Errorf("tranp: export: %w", err)
	}
	return nil
}

// Batch stages the session's export rows without writing them.
func (s *Session) Batch() (*store.BatchedStore, error) {
	batch := store.NewBatchedStore()

	moduleIDs := make(map[string]int64, len(s.program.Order))
	for i, id := range s.program.Order {
		m := &store.Module{Name: id, Ordinal: i}
		if loaded, ok := s.modules.Get(id); ok {
			m.Path = loaded.Path
			m.IsPackage = loaded.IsPackage
		}
		fakeID, err := batch.InsertModule(m)
		if err != nil {
			return nil, err
		}
		moduleIDs[id] = fakeID
	}

	ordinal := 0
	for name, r := range s.program.Table.All() {
		owner := s.moduleOf(name)
		modID, ok := moduleIDs[owner]
		if !ok {
			return nil, fmt.Errorf("symbol %s has no module: %w", name, ErrLogic)
		}
		sym := &store.Symbol{
			ModuleID:    modID,
			Ordinal:     ordinal,
			Name:        name,
			Fullname:    r.Fullyname(),
			RefFullname: r.RefFullyname(),
			Domain:      r.Domain(),
			Role:        r.Role().String(),
			Shorthand:   r.Shorthand(),
			Qualified:   r.Qualified(),
		}
		if o := r.Origin(); o != nil {
			sym.Origin = o.RefFullyname()
		}
		if d := r.Decl(); d != nil {
			sym.DeclKind = d.Kind()
			sym.DeclPath = d.Path().String()
		}
		symID, err := batch.InsertSymbol(sym)
		if err != nil {
			return nil, err
		}
		for i, a := range r.Attrs() {
			attr := &store.SymbolAttr{
				SymbolID:  symID,
				Ordinal:   i,
				Fullname:  a.Fullyname(),
				Shorthand: a.Shorthand(),
				Qualified: a.Qualified(),
			}
			if _, err := batch.InsertSymbolAttr(attr); err != nil {
				return nil, err
			}
		}
		ordinal++
	}

	meta := map[string]string{
		store.MetaRoot:   s.program.Root,
		store.MetaCore:   strings.Join(s.core, ","),
		store.MetaDigest: store.ComputeDigest(batch.Symbols, batch.Attrs),
	}
	for k, v := range meta {
		if err := batch.SetMetadata(k, v); err != nil {
			return nil, err
		}
	}
	return batch, nil
}

// moduleOf returns the longest module id that prefixes name.
func (s *Session) moduleOf(name string) string {
	best := ""
	for _, id := range s.program.Order {
		if strings.HasPrefix(name, id+".") && len(id) > len(best) {
			best = id
		}
	}
	return best
}
