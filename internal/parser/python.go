package parser

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

var pyConstRe = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// pythonVisibility follows the leading-underscore convention.
func pythonVisibility(name string) Visibility {
	if strings.HasPrefix(name, "_") {
		return Private
	}
	return Public
}

func pythonSymbols(e *extractor, root *sitter.Node) {
	for _, n := range namedChildren(root) {
		switch n.Type() {
		case "function_definition", "class_definition", "decorated_definition":
			pythonDefinition(e, n)
		case "expression_statement":
			pythonConstant(e, n)
		}
	}
}

func pythonDefinition(e *extractor, n *sitter.Node) {
	if n.Type() == "decorated_definition" {
		n = n.ChildByFieldName("definition")
		if n == nil {
			return
		}
	}
	name := e.fieldText(n, "name")
	switch n.Type() {
	case "function_definition":
		e.addSymbol(name, Function, pythonVisibility(name), n)
	case "class_definition":
		e.addSymbol(name, Class, pythonVisibility(name), n)
		for _, member := range namedChildren(n.ChildByFieldName("body")) {
			if member.Type() == "decorated_definition" {
				member = member.ChildByFieldName("definition")
			}
			if member == nil || member.Type() != "function_definition" {
				continue
			}
			method := e.fieldText(member, "name")
			if method == "" {
				continue
			}
			e.addSymbol(name+"."+method, Method, pythonVisibility(method), member)
		}
	}
}

// pythonConstant records module-level ALL_CAPS assignments.
func pythonConstant(e *extractor, stmt *sitter.Node) {
	for _, n := range namedChildren(stmt) {
		if n.Type() != "assignment" {
			continue
		}
		left := n.ChildByFieldName("left")
		if left == nil || left.Type() != "identifier" {
			continue
		}
		name := e.text(left)
		if pyConstRe.MatchString(name) {
			e.addSymbol(name, Const, pythonVisibility(name), n)
		}
	}
}

func pythonImport(e *extractor, n *sitter.Node) {
	switch n.Type() {
	case "import_statement":
		// import a.b, c as d
		for _, c := range namedChildren(n) {
			e.addImport(pythonImportName(e, c), n)
		}
	case "import_from_statement":
		module := n.ChildByFieldName("module_name")
		if module == nil {
			return
		}
		path := e.text(module)
		if strings.Trim(path, ".") != "" {
			e.addImport(path, n)
			return
		}
		// from . import sibling: each name is itself a module.
		for _, c := range namedChildren(n) {
			if c.StartByte() == module.StartByte() {
				continue
			}
			if name := pythonImportName(e, c); name != "" {
				e.addImport(path+name, n)
			}
		}
	}
}

func pythonImportName(e *extractor, n *sitter.Node) string {
	switch n.Type() {
	case "dotted_name":
		return e.text(n)
	case "aliased_import":
		return e.fieldText(n, "name")
	}
	return ""
}
