// Package codebase walks a source tree, analyzes every supported file and
// folds the per-file results into a single Context.
package codebase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	ignore "github.com/sabhiram/go-gitignore"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"

	"github.com/chrischeng-c4/agentd-sub001/internal/parser"
)

var (
	// ErrNoModules is returned when nothing analyzable survives the walk
	// and the module filter.
	ErrNoModules = errors.New("no analyzable modules found")
	// ErrNotDirectory is returned when the source path is not a directory.
	ErrNotDirectory = errors.New("source path is not a directory")
)

// DefaultExclude lists gitignore-style patterns pruned from every walk.
var DefaultExclude = []string{
	".git",
	"node_modules",
	"target",
	"vendor",
	"__pycache__",
	".venv",
	"venv",
	"dist",
	"build",
}

// Options controls a codebase analysis.
type Options struct {
	// ModuleFilter keeps only modules whose name equals it exactly.
	ModuleFilter string
	// Concurrency bounds parallel file parsing. Values <= 0 use NumCPU.
	Concurrency int
	// Exclude holds gitignore-style patterns for paths to prune.
	Exclude []string
	// RespectGitignore also prunes paths matched by the root .gitignore.
	RespectGitignore bool
	Logger           logrus.FieldLogger
}

// DefaultOptions returns Options with the default exclusions and
// .gitignore support enabled.
func DefaultOptions() Options {
	return Options{
		Concurrency:      runtime.NumCPU(),
		Exclude:          append([]string(nil), DefaultExclude...),
		RespectGitignore: true,
	}
}

// Context is the folded result of one analysis run. It is not modified
// after Analyze returns.
type Context struct {
	Root           string
	Modules        []*parser.ModuleAnalysis
	LanguageCounts map[parser.Language]int
	// SkippedFiles holds files with an unsupported extension.
	SkippedFiles []string
	// Errors holds files whose parse failed; the run continues past them.
	Errors []parser.ParseError
	// Filtered holds files that parsed but did not match the module filter.
	Filtered []string
}

// AnalyzeCodebase analyzes root with the default options and an optional
// exact-match module filter.
func AnalyzeCodebase(root, moduleFilter string) (*Context, error) {
	opts := DefaultOptions()
	opts.ModuleFilter = moduleFilter
	return Analyze(context.Background(), root, opts)
}

// fileEntry is one regular file visited by the walk.
type fileEntry struct {
	rel       string
	abs       string
	supported bool
}

// parseResult is the outcome of analyzing one supported file.
type parseResult struct {
	module *parser.ModuleAnalysis
	err    *parser.ParseError
}

// Analyze walks root, parses supported files on a bounded worker pool and
// folds the results in traversal order. It fails with ErrNoModules when no
// module survives.
func Analyze(ctx context.Context, root string, opts Options) (*Context, error) {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("source path %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	entries, err := walkFiles(root, newMatcher(root, opts, log))
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	results, err := parseAll(ctx, entries, opts.Concurrency)
	if err != nil {
		return nil, err
	}

	out := &Context{
		Root:           root,
		LanguageCounts: make(map[parser.Language]int),
	}
	for i, entry := range entries {
		if !entry.supported {
			log.WithField("path", entry.rel).Debug("skipping unsupported file")
			out.SkippedFiles = append(out.SkippedFiles, entry.rel)
			continue
		}
		res := results[i]
		if res.err != nil {
			log.WithField("path", entry.rel).Warnf("parse failed: %s", res.err.Message)
			out.Errors = append(out.Errors, *res.err)
			continue
		}
		if opts.ModuleFilter != "" && res.module.Name != opts.ModuleFilter {
			out.Filtered = append(out.Filtered, entry.rel)
			continue
		}
		out.Modules = append(out.Modules, res.module)
		out.LanguageCounts[res.module.Language]++
	}

	if len(out.Modules) == 0 {
		if opts.ModuleFilter != "" {
			return nil, fmt.Errorf("%w under %s matching module %q", ErrNoModules, root, opts.ModuleFilter)
		}
		return nil, fmt.Errorf("%w under %s", ErrNoModules, root)
	}

	log.WithFields(logrus.Fields{
		"modules": len(out.Modules),
		"skipped": len(out.SkippedFiles),
		"errors":  len(out.Errors),
	}).Info("codebase analyzed")
	return out, nil
}

// walkFiles lists regular files under root in lexical order, pruning paths
// the matcher ignores.
func walkFiles(root string, ignored func(rel string, dir bool) bool) ([]fileEntry, error) {
	var entries []fileEntry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if ignored(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || ignored(rel, false) {
			return nil
		}
		_, supported := parser.Classify(filepath.Ext(path))
		entries = append(entries, fileEntry{rel: rel, abs: path, supported: supported})
		return nil
	})
	return entries, err
}

// parseAll analyzes every supported entry. Results are indexed like
// entries so the caller can fold them in traversal order. Only read
// failures are returned as errors; parse failures land in the result.
func parseAll(ctx context.Context, entries []fileEntry, concurrency int) ([]parseResult, error) {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	results := make([]parseResult, len(entries))
	parsers := sync.Pool{New: func() any { return parser.NewParser() }}

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError().WithMaxGoroutines(concurrency)
	for i, entry := range entries {
		if !entry.supported {
			continue
		}
		i, entry := i, entry
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			content, err := os.ReadFile(entry.abs)
			if err != nil {
				return fmt.Errorf("reading %s: %w", entry.rel, err)
			}
			psr := parsers.Get().(*parser.Parser)
			defer parsers.Put(psr)

			mod, err := psr.ParseFile(entry.rel, content)
			var perr *parser.ParseError
			switch {
			case errors.As(err, &perr):
				results[i] = parseResult{err: perr}
			case err != nil:
				results[i] = parseResult{err: &parser.ParseError{Path: entry.rel, Message: err.Error()}}
			default:
				results[i] = parseResult{module: mod}
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// newMatcher builds the prune predicate from configured patterns and the
// root .gitignore.
func newMatcher(root string, opts Options, log logrus.FieldLogger) func(rel string, dir bool) bool {
	var matchers []*ignore.GitIgnore
	if len(opts.Exclude) > 0 {
		matchers = append(matchers, ignore.CompileIgnoreLines(opts.Exclude...))
	}
	if opts.RespectGitignore {
		path := filepath.Join(root, ".gitignore")
		if _, err := os.Stat(path); err == nil {
			gi, err := ignore.CompileIgnoreFile(path)
			if err != nil {
				log.WithField("path", path).Warnf("ignoring unreadable .gitignore: %v", err)
			} else {
				matchers = append(matchers, gi)
			}
		}
	}
	return func(rel string, dir bool) bool {
		if dir {
			rel += "/"
		}
		for _, m := range matchers {
			if m.MatchesPath(rel) {
				return true
			}
		}
		return false
	}
}

// ContainsSource reports whether root is a directory holding at least one
// supported source file outside the default exclusions.
func ContainsSource(root string) bool {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return false
	}
	ignored := newMatcher(root, Options{Exclude: DefaultExclude}, logrus.StandardLogger())
	found := errors.New("found")
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, _ := filepath.Rel(root, path)
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && ignored(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := parser.Classify(filepath.Ext(path)); ok && d.Type().IsRegular() {
			return found
		}
		return nil
	})
	return errors.Is(err, found)
}

// SortedModules returns the modules ordered by name, then file path.
func (c *Context) SortedModules() []*parser.ModuleAnalysis {
	mods := append([]*parser.ModuleAnalysis(nil), c.Modules...)
	sort.SliceStable(mods, func(i, j int) bool {
		if mods[i].Name != mods[j].Name {
			return mods[i].Name < mods[j].Name
		}
		return mods[i].FilePath < mods[j].FilePath
	})
	return mods
}

// ModuleNames returns the distinct module names in sorted order.
func (c *Context) ModuleNames() []string {
	seen := make(map[string]bool, len(c.Modules))
	var names []string
	for _, m := range c.Modules {
		if !seen[m.Name] {
			seen[m.Name] = true
			names = append(names, m.Name)
		}
	}
	sort.Strings(names)
	return names
}

// Languages returns the languages present, most modules first, ties by name.
func (c *Context) Languages() []parser.Language {
	langs := make([]parser.Language, 0, len(c.LanguageCounts))
	for l := range c.LanguageCounts {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool {
		ci, cj := c.LanguageCounts[langs[i]], c.LanguageCounts[langs[j]]
		if ci != cj {
			return ci > cj
		}
		return strings.Compare(string(langs[i]), string(langs[j])) < 0
	})
	return langs
}
