package store

import (
	"database/sql"
	"fmt"
)

func (s *Store) InsertModule(m *Module) (int64, error) {
	id, err := insertModuleTx(s.db, m)
	if err != nil {
		return 0, fmt.Errorf("insert module: %w", err)
	}
	m.ID = id
	return id, nil
}

func (s *Store) InsertSymbol(sym *Symbol) (int64, error) {
	id, err := insertSymbolTx(s.db, sym)
	if err != nil {
		return 0, fmt.Errorf("insert symbol: %w", err)
	}
	sym.ID = id
	return id, nil
}

func (s *Store) InsertSymbolAttr(attr *SymbolAttr) (int64, error) {
	id, err := insertSymbolAttrTx(s.db, attr)
	if err != nil {
		return 0, fmt.Errorf("insert symbol attr: %w", err)
	}
	attr.ID = id
	return id, nil
}

func (s *Store) SetMetadata(key, value string) error {
	if err := setMetadataTx(s.db, key, value); err != nil {
		return fmt.Errorf("set metadata: %w", err)
	}
	return nil
}

// Metadata returns the value stored under key, or "" when absent.
func (s *Store) Metadata(key string) (string, error) {
	var v sql.NullString
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("metadata: %w", err)
	}
	return fromNull(v), nil
}

// Modules returns every module in expansion order.
func (s *Store) Modules() ([]*Module, error) {
	rows, err := s.db.Query("SELECT id, name, path, is_package, ordinal FROM modules ORDER BY ordinal")
	if err != nil {
		return nil, fmt.Errorf("modules: %w", err)
	}
	defer rows.Close()

	var mods []*Module
	for rows.Next() {
		m := &Module{}
		var path sql.NullString
		if err := rows.Scan(&m.ID, &m.Name, &path, &m.IsPackage, &m.Ordinal); err != nil {
			return nil, fmt.Errorf("modules: scan: %w", err)
		}
		m.Path = fromNull(path)
		mods = append(mods, m)
	}
	return mods, rows.Err()
}

// ModuleByName returns the module, or nil when absent.
func (s *Store) ModuleByName(name string) (*Module, error) {
	m := &Module{}
	var path sql.NullString
	err := s.db.QueryRow(
		"SELECT id, name, path, is_package, ordinal FROM modules WHERE name = ?", name,
	).Scan(&m.ID, &m.Name, &path, &m.IsPackage, &m.Ordinal)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("module by name: %w", err)
	}
	m.Path = fromNull(path)
	return m, nil
}

const symbolColumns = `id, module_id, ordinal, name, fullname, ref_fullname, domain, role,
	shorthand, qualified, origin, decl_kind, decl_path`

func scanSymbol(sc interface{ Scan(...any) error }) (*Symbol, error) {
	sym := &Symbol{}
	var shorthand, qualified, origin, declKind, declPath sql.NullString
	err := sc.Scan(&sym.ID, &sym.ModuleID, &sym.Ordinal, &sym.Name, &sym.Fullname, &sym.RefFullname,
		&sym.Domain, &sym.Role, &shorthand, &qualified, &origin, &declKind, &declPath)
	if err != nil {
		return nil, err
	}
	sym.Shorthand = fromNull(shorthand)
	sym.Qualified = fromNull(qualified)
	sym.Origin = fromNull(origin)
	sym.DeclKind = fromNull(declKind)
	sym.DeclPath = fromNull(declPath)
	return sym, nil
}

func (s *Store) querySymbols(op, query string, args ...any) ([]*Symbol, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var syms []*Symbol
	for rows.Next() {
		sym, err := scanSymbol(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		syms = append(syms, sym)
	}
	return syms, rows.Err()
}

// SymbolByName returns the symbol registered under name, or nil.
func (s *Store) SymbolByName(name string) (*Symbol, error) {
	sym, err := scanSymbol(s.db.QueryRow("SELECT "+symbolColumns+" FROM symbols WHERE name = ?", name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("symbol by name: %w", err)
	}
	return sym, nil
}

// SymbolsByNames returns the registered symbols among names in table order.
func (s *Store) SymbolsByNames(names []string) ([]*Symbol, error) {
	if len(names) == 0 {
		return nil, nil
	}
	return s.querySymbols("symbols by names",
		"SELECT "+symbolColumns+" FROM symbols WHERE name IN ("+placeholderList(len(names))+") ORDER BY ordinal",
		stringsToArgs(names)...)
}

// AllSymbols returns every symbol in table order.
func (s *Store) AllSymbols() ([]*Symbol, error) {
	return s.querySymbols("all symbols", "SELECT "+symbolColumns+" FROM symbols ORDER BY ordinal")
}

// SymbolsByModule returns a module's symbols in table order.
func (s *Store) SymbolsByModule(moduleID int64) ([]*Symbol, error) {
	return s.querySymbols("symbols by module",
		"SELECT "+symbolColumns+" FROM symbols WHERE module_id = ? ORDER BY ordinal", moduleID)
}

// SymbolsByRole returns every symbol of role in table order.
func (s *Store) SymbolsByRole(role string) ([]*Symbol, error) {
	return s.querySymbols("symbols by role",
		"SELECT "+symbolColumns+" FROM symbols WHERE role = ? ORDER BY ordinal", role)
}

// SymbolsByOrigin returns the symbols whose origin is fullname.
func (s *Store) SymbolsByOrigin(fullname string) ([]*Symbol, error) {
	return s.querySymbols("symbols by origin",
		"SELECT "+symbolColumns+" FROM symbols WHERE origin = ? ORDER BY ordinal", fullname)
}

// AttrsBySymbol returns a symbol's attributes in attribute order.
func (s *Store) AttrsBySymbol(symbolID int64) ([]*SymbolAttr, error) {
	rows, err := s.db.Query(
		"SELECT id, symbol_id, ordinal, fullname, shorthand, qualified FROM symbol_attrs WHERE symbol_id = ? ORDER BY ordinal",
		symbolID,
	)
	if err != nil {
		return nil, fmt.Errorf("attrs by symbol: %w", err)
	}
	defer rows.Close()

	var attrs []*SymbolAttr
	for rows.Next() {
		a := &SymbolAttr{}
		var shorthand, qualified sql.NullString
		if err := rows.Scan(&a.ID, &a.SymbolID, &a.Ordinal, &a.Fullname, &shorthand, &qualified); err != nil {
			return nil, fmt.Errorf("attrs by symbol: scan: %w", err)
		}
		a.Shorthand = fromNull(shorthand)
		a.Qualified = fromNull(qualified)
		attrs = append(attrs, a)
	}
	return attrs, rows.Err()
}

// AllAttrs returns every stored attribute.
func (s *Store) AllAttrs() ([]SymbolAttr, error) {
	rows, err := s.db.Query("SELECT id, symbol_id, ordinal, fullname, shorthand, qualified FROM symbol_attrs ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("all attrs: %w", err)
	}
	defer rows.Close()

	var attrs []SymbolAttr
	for rows.Next() {
		var a SymbolAttr
		var shorthand, qualified sql.NullString
		if err := rows.Scan(&a.ID, &a.SymbolID, &a.Ordinal, &a.Fullname, &shorthand, &qualified); err != nil {
			return nil, fmt.Errorf("all attrs: scan: %w", err)
		}
		a.Shorthand = fromNull(shorthand)
		a.Qualified = fromNull(qualified)
		attrs = append(attrs, a)
	}
	return attrs, rows.Err()
}

// Digest recomputes the table digest from stored rows.
func (s *Store) Digest() (string, error) {
	syms, err := s.AllSymbols()
	if err != nil {
		return "", err
	}
	attrs, err := s.AllAttrs()
	if err != nil {
		return "", err
	}
	rows := make([]Symbol, len(syms))
	for i, sym := range syms {
		rows[i] = *sym
	}
	return ComputeDigest(rows, attrs), nil
}
