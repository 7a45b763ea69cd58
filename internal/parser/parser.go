// Package parser provides tree-sitter-based multi-language source analysis.
// It classifies files by extension and extracts declared symbols and import
// statements into a language-independent ModuleAnalysis.
package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// ErrUnsupported is returned by ParseFile for files whose extension is not
// in the registry.
var ErrUnsupported = errors.New("unsupported file extension")

// langInfo holds the tree-sitter grammar and the symbol extractor for one
// file extension.
type langInfo struct {
	tag     Language
	grammar *sitter.Language
	symbols func(e *extractor, root *sitter.Node)
	imports func(e *extractor, node *sitter.Node)
}

var (
	rustInfo       = langInfo{tag: Rust, grammar: rust.GetLanguage(), symbols: rustSymbols, imports: rustImport}
	pythonInfo     = langInfo{tag: Python, grammar: python.GetLanguage(), symbols: pythonSymbols, imports: pythonImport}
	goInfo         = langInfo{tag: Go, grammar: golang.GetLanguage(), symbols: goSymbols, imports: goImport}
	javascriptInfo = langInfo{tag: JavaScript, grammar: javascript.GetLanguage(), symbols: jsSymbols, imports: jsImport}
	typescriptInfo = langInfo{tag: TypeScript, grammar: typescript.GetLanguage(), symbols: jsSymbols, imports: jsImport}
	tsxInfo        = langInfo{tag: TypeScript, grammar: tsx.GetLanguage(), symbols: jsSymbols, imports: jsImport}
)

// registry maps lower-cased file extensions to language info.
var registry = map[string]langInfo{
	".rs":  rustInfo,
	".py":  pythonInfo,
	".pyi": pythonInfo,
	".go":  goInfo,
	".js":  javascriptInfo,
	".jsx": javascriptInfo,
	".mjs": javascriptInfo,
	".cjs": javascriptInfo,
	".ts":  typescriptInfo,
	".mts": typescriptInfo,
	".cts": typescriptInfo,
	".tsx": tsxInfo,
}

// Classify maps a file extension (with or without the leading dot) to its
// language tag. The second result is false for unsupported extensions.
func Classify(ext string) (Language, bool) {
	info, ok := lookup(ext)
	if !ok {
		return "", false
	}
	return info.tag, true
}

// Extensions returns every supported extension in sorted order.
func Extensions() []string {
	exts := make([]string, 0, len(registry))
	for ext := range registry {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func lookup(ext string) (langInfo, bool) {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	info, ok := registry[ext]
	return info, ok
}

// ModuleName derives a module name from a file path: the base name without
// its final extension.
func ModuleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Parser wraps a tree-sitter parser. A Parser is not safe for concurrent
// use; create one per goroutine.
type Parser struct {
	inner *sitter.Parser
}

// NewParser creates a new Parser instance.
func NewParser() *Parser {
	return &Parser{
		inner: sitter.NewParser(),
	}
}

// ParseFile analyzes the source content of path. The path is used only to
// pick the grammar and to derive the module name. Syntax the grammar cannot
// recover from yields a *ParseError.
func (p *Parser) ParseFile(path string, content []byte) (*ModuleAnalysis, error) {
	info, ok := lookup(filepath.Ext(path))
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnsupported, filepath.Ext(path))
	}

	p.inner.SetLanguage(info.grammar)
	tree, err := p.inner.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, &ParseError{Path: path, Message: err.Error()}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		bad := firstError(root)
		line := int(bad.StartPoint().Row) + 1
		msg := "syntax error"
		if bad.IsMissing() {
			msg = fmt.Sprintf("missing %s", bad.Type())
		}
		return nil, &ParseError{Path: path, Line: line, Message: msg}
	}

	e := &extractor{
		source: content,
		mod: &ModuleAnalysis{
			Name:     ModuleName(path),
			Language: info.tag,
			FilePath: path,
		},
	}
	info.symbols(e, root)
	walk(root, func(n *sitter.Node) {
		info.imports(e, n)
	})
	return e.mod, nil
}

// firstError returns the first ERROR or MISSING node in document order.
func firstError(node *sitter.Node) *sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		if bad := firstError(child); bad != nil {
			return bad
		}
	}
	return node
}

// extractor accumulates symbols and imports for one file.
type extractor struct {
	source []byte
	mod    *ModuleAnalysis
}

func (e *extractor) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(e.source)
}

// fieldText returns the content of the named field child, or "".
func (e *extractor) fieldText(n *sitter.Node, field string) string {
	return e.text(n.ChildByFieldName(field))
}

func (e *extractor) addSymbol(name string, kind SymbolKind, vis Visibility, n *sitter.Node) {
	if name == "" {
		return
	}
	if vis == "" {
		vis = Private
	}
	e.mod.Symbols = append(e.mod.Symbols, Symbol{
		Name:       name,
		Kind:       kind,
		Visibility: vis,
		Line:       int(n.StartPoint().Row) + 1,
	})
}

func (e *extractor) addImport(path string, n *sitter.Node) {
	path = strings.TrimSpace(path)
	if path == "" {
		return
	}
	e.mod.Imports = append(e.mod.Imports, ImportEdge{
		RawPath: path,
		Line:    int(n.StartPoint().Row) + 1,
	})
}

// namedChildren returns the named children of n.
func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// walk performs a depth-first traversal of the syntax tree, calling fn for each node.
func walk(node *sitter.Node, fn func(*sitter.Node)) {
	if node == nil {
		return
	}
	fn(node)
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child != nil {
			walk(child, fn)
		}
	}
}

// unquote strips string delimiters from a literal.
func unquote(text string) string {
	text = strings.TrimSpace(text)
	return strings.Trim(text, "\"'`")
}

// collapseWhitespace replaces runs of whitespace with a single space.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
