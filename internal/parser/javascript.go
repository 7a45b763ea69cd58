package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// jsSymbols handles both the JavaScript and TypeScript grammars. A symbol
// is Public when its declaration is wrapped in `export` or its name appears
// in an `export { ... }` clause.
func jsSymbols(e *extractor, root *sitter.Node) {
	exported := make(map[string]bool)
	start := len(e.mod.Symbols)

	for _, n := range namedChildren(root) {
		if n.Type() != "export_statement" {
			jsDeclaration(e, n, false)
			continue
		}
		if decl := n.ChildByFieldName("declaration"); decl != nil {
			jsDeclaration(e, decl, true)
			continue
		}
		if v := n.ChildByFieldName("value"); v != nil && v.Type() == "identifier" {
			exported[e.text(v)] = true
		}
		for _, c := range namedChildren(n) {
			if c.Type() != "export_clause" {
				continue
			}
			for _, spec := range namedChildren(c) {
				if spec.Type() == "export_specifier" {
					exported[e.fieldText(spec, "name")] = true
				}
			}
		}
	}

	for i := start; i < len(e.mod.Symbols); i++ {
		if exported[e.mod.Symbols[i].Name] {
			e.mod.Symbols[i].Visibility = Public
		}
	}
}

func jsVisibility(exported bool) Visibility {
	if exported {
		return Public
	}
	return Private
}

func jsDeclaration(e *extractor, n *sitter.Node, exported bool) {
	vis := jsVisibility(exported)
	switch n.Type() {
	case "function_declaration", "generator_function_declaration":
		e.addSymbol(e.fieldText(n, "name"), Function, vis, n)
	case "class_declaration", "abstract_class_declaration":
		name := e.fieldText(n, "name")
		e.addSymbol(name, Class, vis, n)
		jsClassMethods(e, name, n.ChildByFieldName("body"), exported)
	case "lexical_declaration":
		if n.ChildCount() == 0 || n.Child(0).Type() != "const" {
			return
		}
		for _, d := range namedChildren(n) {
			if d.Type() != "variable_declarator" {
				continue
			}
			id := d.ChildByFieldName("name")
			if id == nil || id.Type() != "identifier" {
				continue
			}
			kind := Const
			if v := d.ChildByFieldName("value"); v != nil {
				switch v.Type() {
				case "arrow_function", "function_expression", "function", "generator_function":
					kind = Function
				}
			}
			e.addSymbol(e.text(id), kind, vis, d)
		}
	case "interface_declaration":
		e.addSymbol(e.fieldText(n, "name"), Interface, vis, n)
	case "type_alias_declaration":
		e.addSymbol(e.fieldText(n, "name"), TypeAlias, vis, n)
	case "enum_declaration":
		e.addSymbol(e.fieldText(n, "name"), Enum, vis, n)
	case "ambient_declaration":
		for _, c := range namedChildren(n) {
			jsDeclaration(e, c, exported)
		}
	}
}

// jsClassMethods records methods as Class.method. Methods of an exported
// class are Public unless marked private, protected or #private.
func jsClassMethods(e *extractor, class string, body *sitter.Node, exported bool) {
	for _, m := range namedChildren(body) {
		if m.Type() != "method_definition" {
			continue
		}
		nameNode := m.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		public := exported && nameNode.Type() != "private_property_identifier"
		for _, c := range namedChildren(m) {
			if c.Type() == "accessibility_modifier" && e.text(c) != "public" {
				public = false
			}
		}
		e.addSymbol(class+"."+e.text(nameNode), Method, jsVisibility(public), m)
	}
}

func jsImport(e *extractor, n *sitter.Node) {
	switch n.Type() {
	case "import_statement", "export_statement":
		if src := n.ChildByFieldName("source"); src != nil {
			e.addImport(unquote(e.text(src)), n)
		}
	case "call_expression":
		fn := n.ChildByFieldName("function")
		if fn == nil {
			return
		}
		if !(fn.Type() == "import" || (fn.Type() == "identifier" && e.text(fn) == "require")) {
			return
		}
		args := namedChildren(n.ChildByFieldName("arguments"))
		if len(args) == 1 && args[0].Type() == "string" {
			e.addImport(unquote(e.text(args[0])), n)
		}
	}
}
