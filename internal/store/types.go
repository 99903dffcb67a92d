package store

// Module is one expanded module in expansion order.
type Module struct {
	ID        int64
	Name      string
	Path      string
	IsPackage bool
	Ordinal   int
}

// Symbol is one symbol table entry. Name is the key the table registered
// the symbol under; Fullname is the declaration it stands for.
type Symbol struct {
	ID          int64
	ModuleID    int64
	Ordinal     int
	Name        string
	Fullname    string
	RefFullname string
	Domain      string
	Role        string
	Shorthand   string
	Qualified   string
	Origin      string // fullname of the origin symbol; empty for origins
	DeclKind    string
	DeclPath    string
}

// SymbolAttr is one resolved attribute of a symbol, in attribute order.
type SymbolAttr struct {
	ID        int64
	SymbolID  int64
	Ordinal   int
	Fullname  string
	Shorthand string
	Qualified string
}

// Metadata keys written by an export.
const (
	MetaRoot   = "root"
	MetaDigest = "digest"
	MetaCore   = "core"
)
