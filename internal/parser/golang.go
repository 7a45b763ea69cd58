package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
)

// goVisibility applies the exported-identifier rule.
func goVisibility(name string) Visibility {
	r, _ := utf8.DecodeRuneInString(name)
	if unicode.IsUpper(r) {
		return Public
	}
	return Private
}

func goSymbols(e *extractor, root *sitter.Node) {
	for _, n := range namedChildren(root) {
		switch n.Type() {
		case "function_declaration":
			name := e.fieldText(n, "name")
			e.addSymbol(name, Function, goVisibility(name), n)
		case "method_declaration":
			name := e.fieldText(n, "name")
			if recv := goReceiverType(e, n); recv != "" {
				e.addSymbol(recv+"."+name, Method, goVisibility(name), n)
			} else {
				e.addSymbol(name, Method, goVisibility(name), n)
			}
		case "type_declaration":
			for _, spec := range namedChildren(n) {
				goTypeSpec(e, spec)
			}
		case "const_declaration":
			for _, spec := range namedChildren(n) {
				if spec.Type() != "const_spec" {
					continue
				}
				for _, id := range namedChildren(spec) {
					if id.Type() != "identifier" {
						continue
					}
					if name := e.text(id); name != "_" {
						e.addSymbol(name, Const, goVisibility(name), id)
					}
				}
			}
		}
	}
}

func goTypeSpec(e *extractor, spec *sitter.Node) {
	name := e.fieldText(spec, "name")
	switch spec.Type() {
	case "type_spec":
		kind := TypeAlias
		if t := spec.ChildByFieldName("type"); t != nil {
			switch t.Type() {
			case "struct_type":
				kind = Struct
			case "interface_type":
				kind = Interface
			}
		}
		e.addSymbol(name, kind, goVisibility(name), spec)
	case "type_alias":
		e.addSymbol(name, TypeAlias, goVisibility(name), spec)
	}
}

// goReceiverType returns the receiver's base type name with pointer and
// type parameters removed.
func goReceiverType(e *extractor, n *sitter.Node) string {
	for _, param := range namedChildren(n.ChildByFieldName("receiver")) {
		if param.Type() != "parameter_declaration" {
			continue
		}
		t := strings.TrimLeft(e.fieldText(param, "type"), "*")
		if i := strings.Index(t, "["); i >= 0 {
			t = t[:i]
		}
		return strings.TrimSpace(t)
	}
	return ""
}

func goImport(e *extractor, n *sitter.Node) {
	if n.Type() != "import_spec" {
		return
	}
	e.addImport(unquote(e.fieldText(n, "path")), n)
}
