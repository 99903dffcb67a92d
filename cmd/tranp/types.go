package main

import (
	"github.com/jward/tranp"
)

// CLIResult is the top-level envelope for every command's output.
type CLIResult struct {
	Command    string `json:"command" yaml:"command"`
	Results    any    `json:"results" yaml:"results"`
	TotalCount *int   `json:"total_count,omitempty" yaml:"total_count,omitempty"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// CLISymbol is one symbol table entry.
type CLISymbol struct {
	Name      string   `json:"name" yaml:"name"`
	Module    string   `json:"module,omitempty" yaml:"module,omitempty"`
	Role      string   `json:"role" yaml:"role"`
	Type      string   `json:"type" yaml:"type"`
	Qualified string   `json:"qualified,omitempty" yaml:"qualified,omitempty"`
	Origin    string   `json:"origin,omitempty" yaml:"origin,omitempty"`
	Decl      string   `json:"decl,omitempty" yaml:"decl,omitempty"`
	Attrs     []string `json:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// CLIAnalysis is the outcome of analyzing one root module.
type CLIAnalysis struct {
	Root    string      `json:"root" yaml:"root"`
	Order   []string    `json:"order" yaml:"order"`
	Symbols []CLISymbol `json:"symbols" yaml:"symbols"`
}

// CLIPath is one indexed position of a parse tree.
type CLIPath struct {
	Path  string `json:"path" yaml:"path"`
	Tag   string `json:"tag" yaml:"tag"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

// CLIModule is a discovered module.
type CLIModule struct {
	ID string `json:"id" yaml:"id"`
}

// CLIDiagnostic is a module that failed to parse.
type CLIDiagnostic struct {
	Module string `json:"module" yaml:"module"`
	Path   string `json:"path" yaml:"path"`
	Error  string `json:"error" yaml:"error"`
}

func toCLISymbol(name string, r *tranp.Reflection) CLISymbol {
	sym := CLISymbol{
		Name:      name,
		Role:      r.Role().String(),
		Type:      r.Shorthand(),
		Qualified: r.Qualified(),
	}
	if o := r.Origin(); o != nil {
		sym.Origin = o.RefFullyname()
	}
	if d := r.Decl(); d != nil {
		sym.Decl = d.Kind() + "@" + d.Path().String()
	}
	for _, a := range r.Attrs() {
		sym.Attrs = append(sym.Attrs, a.Shorthand())
	}
	return sym
}

func storedToCLISymbol(info *tranp.SymbolInfo) CLISymbol {
	sym := CLISymbol{
		Name:      info.Name,
		Module:    info.Module,
		Role:      info.Role,
		Type:      info.Shorthand,
		Qualified: info.Qualified,
		Origin:    info.Origin,
	}
	if info.DeclKind != "" {
		sym.Decl = info.DeclKind + "@" + info.DeclPath
	}
	for _, a := range info.Attrs {
		sym.Attrs = append(sym.Attrs, a.Shorthand)
	}
	return sym
}
