package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// rustSymbols collects top-level items. Functions in impl blocks are
// flattened in as methods and inline mod bodies are flattened as well.
func rustSymbols(e *extractor, root *sitter.Node) {
	for _, n := range namedChildren(root) {
		rustItem(e, n)
	}
}

func rustItem(e *extractor, n *sitter.Node) {
	name := e.fieldText(n, "name")
	switch n.Type() {
	case "function_item":
		e.addSymbol(name, Function, rustVisibility(e, n), n)
	case "struct_item", "union_item":
		e.addSymbol(name, Struct, rustVisibility(e, n), n)
	case "enum_item":
		e.addSymbol(name, Enum, rustVisibility(e, n), n)
	case "type_item":
		e.addSymbol(name, TypeAlias, rustVisibility(e, n), n)
	case "const_item", "static_item":
		e.addSymbol(name, Const, rustVisibility(e, n), n)
	case "trait_item":
		e.addSymbol(name, Interface, rustVisibility(e, n), n)
	case "impl_item":
		owner := rustTypeName(e.fieldText(n, "type"))
		for _, item := range namedChildren(n.ChildByFieldName("body")) {
			if item.Type() != "function_item" {
				continue
			}
			method := e.fieldText(item, "name")
			if owner != "" {
				method = owner + "::" + method
			}
			e.addSymbol(method, Method, rustVisibility(e, item), item)
		}
	case "mod_item":
		if body := n.ChildByFieldName("body"); body != nil {
			for _, item := range namedChildren(body) {
				rustItem(e, item)
			}
		}
	}
}

// rustVisibility reports Public only for a bare `pub` modifier; restricted
// forms such as pub(crate) stay Private.
func rustVisibility(e *extractor, n *sitter.Node) Visibility {
	for _, c := range namedChildren(n) {
		if c.Type() == "visibility_modifier" && strings.TrimSpace(e.text(c)) == "pub" {
			return Public
		}
	}
	return Private
}

// rustTypeName strips generic arguments and references from an impl target.
func rustTypeName(text string) string {
	text = strings.TrimLeft(strings.TrimSpace(text), "&")
	if i := strings.Index(text, "<"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

// rustImport records `use` declarations and out-of-line `mod name;`
// declarations, which pull a sibling file into the crate.
func rustImport(e *extractor, n *sitter.Node) {
	switch n.Type() {
	case "use_declaration":
		for _, path := range rustUsePaths(e.fieldText(n, "argument")) {
			e.addImport(path, n)
		}
	case "mod_item":
		if n.ChildByFieldName("body") == nil {
			e.addImport(e.fieldText(n, "name"), n)
		}
	}
}

// rustUsePaths expands a use argument into one path per imported item:
// `crate::{config::Config, utils::*}` -> `crate::config::Config`,
// `crate::utils`. Aliases are dropped. Paths made only of `crate`, `self`
// and `super` name no module and are skipped.
func rustUsePaths(text string) []string {
	text = strings.TrimPrefix(collapseWhitespace(text), "::")
	return expandUseTree("", text)
}

func expandUseTree(prefix, item string) []string {
	item = strings.TrimSpace(item)
	if item == "" {
		return nil
	}

	if open := strings.Index(item, "{"); open >= 0 {
		head := strings.TrimSuffix(strings.TrimSpace(item[:open]), "::")
		body := item[open+1:]
		if end := strings.LastIndex(body, "}"); end >= 0 {
			body = body[:end]
		}
		base := joinRustPath(prefix, head)
		var out []string
		for _, part := range splitUseList(body) {
			out = append(out, expandUseTree(base, part)...)
		}
		return out
	}

	if i := strings.Index(item, " as "); i >= 0 {
		item = item[:i]
	}
	item = strings.TrimSuffix(strings.TrimSpace(item), "*")
	item = strings.TrimSuffix(item, "::")
	if item == "self" {
		item = ""
	}

	path := joinRustPath(prefix, item)
	if rustKeywordPath(path) {
		return nil
	}
	return []string{path}
}

// splitUseList splits the items of a use list on top-level commas.
func splitUseList(body string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range body {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, body[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, body[start:])
}

func joinRustPath(prefix, rest string) string {
	switch {
	case prefix == "":
		return rest
	case rest == "":
		return prefix
	default:
		return prefix + "::" + rest
	}
}

// rustKeywordPath reports whether path has no component besides the
// crate-relative keywords.
func rustKeywordPath(path string) bool {
	for _, part := range strings.Split(path, "::") {
		switch strings.TrimSpace(part) {
		case "", "crate", "self", "super":
		default:
			return false
		}
	}
	return true
}
