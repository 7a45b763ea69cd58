package parser

import "fmt"

// Language is the tag of a supported source language.
type Language string

const (
	Rust       Language = "rust"
	Python     Language = "python"
	Go         Language = "go"
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
)

// SymbolKind is the syntactic kind of a declared symbol.
type SymbolKind string

const (
	Function  SymbolKind = "Function"
	Method    SymbolKind = "Method"
	Struct    SymbolKind = "Struct"
	Class     SymbolKind = "Class"
	Enum      SymbolKind = "Enum"
	Interface SymbolKind = "Interface"
	TypeAlias SymbolKind = "TypeAlias"
	Const     SymbolKind = "Const"
)

// SymbolKinds lists every kind in documentation order.
var SymbolKinds = []SymbolKind{Struct, Class, Enum, Interface, TypeAlias, Function, Method, Const}

// Plural returns a section heading for the kind.
func (k SymbolKind) Plural() string {
	switch k {
	case Class:
		return "Classes"
	case TypeAlias:
		return "Type Aliases"
	default:
		return string(k) + "s"
	}
}

// Visibility is whether a symbol is part of the module's public surface.
type Visibility string

const (
	Public  Visibility = "Public"
	Private Visibility = "Private"
)

// Symbol is a named declaration found in a module.
type Symbol struct {
	Name       string
	Kind       SymbolKind
	Visibility Visibility
	Line       int
}

// ImportEdge is one import statement target. Whether it is internal or
// external is decided when the dependency graph is built.
type ImportEdge struct {
	RawPath string
	Line    int
}

// ModuleAnalysis is the analysis of one source file.
type ModuleAnalysis struct {
	Name     string
	Language Language
	FilePath string
	Symbols  []Symbol
	Imports  []ImportEdge
}

// PublicSymbols returns the symbols with Public visibility.
func (m *ModuleAnalysis) PublicSymbols() []Symbol {
	var out []Symbol
	for _, s := range m.Symbols {
		if s.Visibility == Public {
			out = append(out, s)
		}
	}
	return out
}

// Symbol looks up a symbol by name.
func (m *ModuleAnalysis) Symbol(name string) (Symbol, bool) {
	for _, s := range m.Symbols {
		if s.Name == name {
			return s, true
		}
	}
	return Symbol{}, false
}

// ParseError reports a file whose syntax the grammar could not recover from.
type ParseError struct {
	Path    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}
