package store

import (
	"crypto/sha256"
	"fmt"
	"sort"
)

// ComputeDigest computes a deterministic hash over an exported table.
// Symbol order is significant: two tables holding the same symbols in a
// different order hash differently. Attributes are hashed in attribute
// order under their owning symbol.
func ComputeDigest(symbols []Symbol, attrs []SymbolAttr) string {
	h := sha256.New()

	byOwner := make(map[int64][]SymbolAttr)
	for _, a := range attrs {
		byOwner[a.SymbolID] = append(byOwner[a.SymbolID], a)
	}

	ordered := make([]Symbol, len(symbols))
	copy(ordered, symbols)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Ordinal < ordered[j].Ordinal
	})

	for _, sym := range ordered {
		fmt.Fprintf(h, "symbol:%s:%s:%s:%s:%s\n", sym.Name, sym.Fullname, sym.Role, sym.Qualified, sym.Origin)

		owned := byOwner[sym.ID]
		sort.SliceStable(owned, func(i, j int) bool {
			return owned[i].Ordinal < owned[j].Ordinal
		})
		for _, a := range owned {
			fmt.Fprintf(h, "attr:%d:%s:%s\n", a.Ordinal, a.Fullname, a.Qualified)
		}
	}

	return fmt.Sprintf("%x", h.Sum(nil))
}
