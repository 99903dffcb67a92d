package store

import (
	"database/sql"
	"fmt"
	"sort"
)

// CommitBatch inserts all buffered data from a BatchedStore within a single
// transaction. Fake (negative) IDs are remapped to real IDs and every
// in-batch foreign key is rewritten through the mapping.
//
// Insert order respects FK dependencies:
//  1. Modules
//  2. Symbols (depend on module_id)
//  3. SymbolAttrs (depend on symbol_id)
//  4. Metadata
func (s *Store) CommitBatch(batch *BatchedStore) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("commit batch: begin: %w", err)
	}
	defer tx.Rollback()

	if batch.Replace {
		if err := clearTx(tx); err != nil {
			return fmt.Errorf("commit batch: %w", err)
		}
	}

	fakeToReal := make(map[int64]int64)
	remap := func(id int64) int64 {
		if id < 0 {
			return fakeToReal[id]
		}
		return id
	}

	for _, m := range batch.Modules {
		realID, err := insertModuleTx(tx, &m)
		if err != nil {
			return fmt.Errorf("commit batch: module %q: %w", m.Name, err)
		}
		fakeToReal[m.ID] = realID
	}

	for _, sym := range batch.Symbols {
		sym.ModuleID = remap(sym.ModuleID)
		realID, err := insertSymbolTx(tx, &sym)
		if err != nil {
			return fmt.Errorf("commit batch: symbol %q: %w", sym.Name, err)
		}
		fakeToReal[sym.ID] = realID
	}

	for _, attr := range batch.Attrs {
		attr.SymbolID = remap(attr.SymbolID)
		if _, err := insertSymbolAttrTx(tx, &attr); err != nil {
			return fmt.Errorf("commit batch: attr %q: %w", attr.Fullname, err)
		}
	}

	keys := make([]string, 0, len(batch.Metadata))
	for k := range batch.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := setMetadataTx(tx, k, batch.Metadata[k]); err != nil {
			return fmt.Errorf("commit batch: metadata %q: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: commit: %w", err)
	}
	return nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func clearTx(tx execer) error {
	for _, table := range []string{"symbol_attrs", "symbols", "modules", "metadata"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func insertModuleTx(tx execer, m *Module) (int64, error) {
	res, err := tx.Exec(
		"INSERT INTO modules (name, path, is_package, ordinal) VALUES (?, ?, ?, ?)",
		m.Name, m.Path, m.IsPackage, m.Ordinal,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func insertSymbolTx(tx execer, sym *Symbol) (int64, error) {
	res, err := tx.Exec(
		`INSERT INTO symbols (module_id, ordinal, name, fullname, ref_fullname, domain, role,
		 shorthand, qualified, origin, decl_kind, decl_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sym.ModuleID, sym.Ordinal, sym.Name, sym.Fullname, sym.RefFullname, sym.Domain, sym.Role,
		sym.Shorthand, sym.Qualified, nullString(sym.Origin), nullString(sym.DeclKind), nullString(sym.DeclPath),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func insertSymbolAttrTx(tx execer, attr *SymbolAttr) (int64, error) {
	res, err := tx.Exec(
		"INSERT INTO symbol_attrs (symbol_id, ordinal, fullname, shorthand, qualified) VALUES (?, ?, ?, ?, ?)",
		attr.SymbolID, attr.Ordinal, attr.Fullname, attr.Shorthand, attr.Qualified,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func setMetadataTx(tx execer, key, value string) error {
	_, err := tx.Exec(
		"INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}
