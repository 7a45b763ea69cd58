package fillback

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/chrischeng-c4/agentd-sub001/internal/output"
	"github.com/chrischeng-c4/agentd-sub001/internal/specgen"
)

// openSpecDir is the directory marking an OpenSpec project.
const openSpecDir = "openspec"

var openSpecExts = map[string]bool{".yaml": true, ".yml": true, ".json": true}

// OpenSpecStrategy transcodes structured YAML/JSON spec documents, or an
// openspec/ directory of them, into markdown.
type OpenSpecStrategy struct {
	opts Options
	last *output.Report
}

// NewOpenSpecStrategy creates an OpenSpecStrategy.
func NewOpenSpecStrategy(opts Options) *OpenSpecStrategy {
	return &OpenSpecStrategy{opts: opts}
}

func (s *OpenSpecStrategy) Name() string { return OpenSpec }

// Report returns the report of the last Execute, or nil.
func (s *OpenSpecStrategy) Report() *output.Report {
	return s.last
}

// CanHandle accepts a .yaml, .yml or .json file, or a directory with an
// openspec/ subdirectory.
func (s *OpenSpecStrategy) CanHandle(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if !info.IsDir() {
		return openSpecExts[strings.ToLower(filepath.Ext(path))]
	}
	sub, err := os.Stat(filepath.Join(path, openSpecDir))
	return err == nil && sub.IsDir()
}

// Execute transcodes every source document and writes the results.
func (s *OpenSpecStrategy) Execute(ctx context.Context, path, changeID string) error {
	started := time.Now()
	log := s.opts.logger().WithFields(logrus.Fields{"strategy": OpenSpec, "path": path})
	outDir := s.opts.outputDir(path)

	report := &output.Report{
		Strategy:   OpenSpec,
		SourcePath: path,
		OutputDir:  outDir,
		ChangeID:   changeID,
	}
	s.last = report

	docs, err := s.collect(ctx, path)
	if err == nil && len(docs) == 0 {
		err = fmt.Errorf("no openspec documents under %s", path)
	}
	if err == nil {
		report.Files, err = writeDocs(s.opts, outDir, docs)
	}
	record(s.opts, report, started, err, nil)
	if err != nil {
		return err
	}
	log.WithField("files", len(report.Files)).Info("fillback done")
	return nil
}

// collect gathers the documents for a single file or an openspec/ tree.
func (s *OpenSpecStrategy) collect(ctx context.Context, path string) ([]specgen.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("source path %s: %w", path, err)
	}
	if !info.IsDir() {
		doc, err := transcodeFile(path, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		if err != nil {
			return nil, err
		}
		return []specgen.Document{doc}, nil
	}

	root := filepath.Join(path, openSpecDir)
	var docs []specgen.Document
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		ext := strings.ToLower(filepath.Ext(p))
		name := docName(rel)
		switch {
		case openSpecExts[ext]:
			doc, err := transcodeFile(p, name)
			if err != nil {
				return err
			}
			docs = append(docs, doc)
		case ext == ".md":
			data, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			docs = append(docs, specgen.Document{Path: name + ".md", Title: name, Content: string(data)})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}
	return docs, nil
}

// docName flattens a relative path into a file stem: specs/auth/spec.yaml
// becomes specs-auth-spec.
func docName(rel string) string {
	rel = strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel))
	return strings.ReplaceAll(rel, "/", "-")
}

func transcodeFile(path, name string) (specgen.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return specgen.Document{}, fmt.Errorf("reading %s: %w", path, err)
	}
	content, title, err := Transcode(data, name)
	if err != nil {
		return specgen.Document{}, fmt.Errorf("transcoding %s: %w", path, err)
	}
	return specgen.Document{Path: name + ".md", Title: title, Content: content}, nil
}

// Transcode renders a YAML or JSON document as markdown, keeping the
// source key order. The title comes from a top-level "title" or "name"
// scalar, falling back to fallbackTitle.
func Transcode(data []byte, fallbackTitle string) (content, title string, err error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return "", "", err
	}

	title = fallbackTitle
	var body *yaml.Node
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		body = root.Content[0]
	}
	titleKey := ""
	if body != nil && body.Kind == yaml.MappingNode {
		for _, key := range []string{"title", "name"} {
			if v := mappingValue(body, key); v != nil && v.Kind == yaml.ScalarNode && v.Value != "" {
				title, titleKey = v.Value, key
				break
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if body != nil {
		w := &mdWriter{b: &b, skipKey: titleKey}
		w.node(body, 2, true)
	}
	return strings.TrimRight(b.String(), "\n") + "\n", title, nil
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

type mdWriter struct {
	b       *strings.Builder
	skipKey string
}

func (w *mdWriter) heading(depth int, text string) {
	if depth > 6 {
		fmt.Fprintf(w.b, "**%s**\n\n", text)
		return
	}
	fmt.Fprintf(w.b, "%s %s\n\n", strings.Repeat("#", depth), text)
}

func (w *mdWriter) node(n *yaml.Node, depth int, top bool) {
	switch n.Kind {
	case yaml.AliasNode:
		if n.Alias != nil {
			w.node(n.Alias, depth, top)
		}
	case yaml.ScalarNode:
		if v := strings.TrimSpace(n.Value); v != "" {
			w.b.WriteString(v)
			w.b.WriteString("\n\n")
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i].Value, n.Content[i+1]
			if top && key == w.skipKey {
				continue
			}
			if val.Kind == yaml.ScalarNode && !strings.Contains(val.Value, "\n") {
				fmt.Fprintf(w.b, "**%s:** %s\n\n", humanize(key), val.Value)
				continue
			}
			w.heading(depth, humanize(key))
			w.node(val, depth+1, false)
		}
	case yaml.SequenceNode:
		scalars := true
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode {
				scalars = false
				break
			}
		}
		if scalars {
			for _, item := range n.Content {
				fmt.Fprintf(w.b, "- %s\n", item.Value)
			}
			w.b.WriteString("\n")
			return
		}
		for i, item := range n.Content {
			w.heading(depth, itemLabel(item, i))
			w.node(item, depth+1, false)
		}
	}
}

// itemLabel names a sequence entry by its id, title or name field.
func itemLabel(item *yaml.Node, i int) string {
	if item.Kind == yaml.MappingNode {
		var parts []string
		for _, key := range []string{"id", "title", "name"} {
			if v := mappingValue(item, key); v != nil && v.Kind == yaml.ScalarNode && v.Value != "" {
				parts = append(parts, v.Value)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, ": ")
		}
	}
	return fmt.Sprintf("Item %d", i+1)
}

// humanize turns a key like "acceptance_criteria" into "Acceptance criteria".
func humanize(key string) string {
	s := strings.NewReplacer("_", " ", "-", " ").Replace(key)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// writeDocs negotiates overwrite and writes docs, returning their names
// sorted.
func writeDocs(opts Options, outDir string, docs []specgen.Document) ([]string, error) {
	existing, err := specgen.CheckExistingSpecs(outDir)
	if err != nil {
		return nil, err
	}
	ok, err := opts.generator().ConfirmOverwrite(existing)
	if err != nil {
		return nil, fmt.Errorf("confirming overwrite: %w", err)
	}
	if !ok {
		return nil, specgen.ErrOverwriteDeclined
	}
	if err := specgen.WriteDocuments(outDir, docs); err != nil {
		return nil, err
	}
	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Path
	}
	sort.Strings(names)
	return names, nil
}
