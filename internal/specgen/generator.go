// Package specgen renders an analyzed codebase and its dependency graph
// into markdown specification documents.
package specgen

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/chrischeng-c4/agentd-sub001/internal/codebase"
	"github.com/chrischeng-c4/agentd-sub001/internal/depgraph"
)

// ErrOverwriteDeclined is returned when existing specs were found and the
// overwrite was not confirmed. Nothing is written in that case.
var ErrOverwriteDeclined = errors.New("overwrite of existing specs declined")

// ConfirmFunc decides whether the listed existing files may be overwritten.
type ConfirmFunc func(existing []string) (bool, error)

// Generator writes spec documents to an output directory.
type Generator struct {
	// Force skips the overwrite confirmation.
	Force bool
	// Confirm is asked when Force is off and specs already exist. A nil
	// Confirm declines.
	Confirm ConfirmFunc
	Logger  logrus.FieldLogger
}

// New creates a Generator.
func New(force bool, confirm ConfirmFunc) *Generator {
	return &Generator{Force: force, Confirm: confirm}
}

func (g *Generator) logger() logrus.FieldLogger {
	if g.Logger == nil {
		return logrus.StandardLogger()
	}
	return g.Logger
}

// ConfirmOverwrite reports whether existing files may be replaced. Force
// mode always allows it; an empty list needs no confirmation.
func (g *Generator) ConfirmOverwrite(existing []string) (bool, error) {
	if g.Force {
		return true, nil
	}
	if len(existing) == 0 {
		return true, nil
	}
	if g.Confirm == nil {
		return false, nil
	}
	return g.Confirm(existing)
}

// CheckExistingSpecs lists the .md files already present in dir, sorted.
// A missing directory has none.
func CheckExistingSpecs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading output directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), ".md") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// GenerateSpecs renders every document, negotiates overwriting existing
// specs and writes the set to outputDir. It returns the written file
// names in document order.
func (g *Generator) GenerateSpecs(c *codebase.Context, graph *depgraph.Graph, outputDir string, clar Clarifications) ([]string, error) {
	docs := Assemble(c, graph, clar)

	existing, err := CheckExistingSpecs(outputDir)
	if err != nil {
		return nil, err
	}
	ok, err := g.ConfirmOverwrite(existing)
	if err != nil {
		return nil, fmt.Errorf("confirming overwrite: %w", err)
	}
	if !ok {
		return nil, ErrOverwriteDeclined
	}

	if err := WriteDocuments(outputDir, docs); err != nil {
		return nil, err
	}

	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Path
	}
	g.logger().WithFields(logrus.Fields{
		"dir":      outputDir,
		"files":    len(names),
		"replaced": len(existing),
	}).Info("specs generated")
	return names, nil
}

// renameFile is swapped in tests to simulate commit failures.
var renameFile = os.Rename

// WriteDocuments writes docs into dir, creating it if needed. Every
// document is staged in a temp file first. Targets that already exist are
// moved aside while the staged files are renamed into place; if any step
// fails, committed targets are restored from those backups and all
// temporary files are removed.
func WriteDocuments(dir string, docs []Document) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	staged := make([]string, 0, len(docs))
	removeStaged := func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}

	for _, d := range docs {
		tmp, err := stageDoc(dir, d.Content)
		if err != nil {
			removeStaged()
			return fmt.Errorf("writing %s: %w", d.Path, err)
		}
		staged = append(staged, tmp)
	}

	// backups[i] is the moved-aside original of target i, or "" when the
	// target did not exist.
	backups := make([]string, 0, len(docs))
	rollback := func() {
		for i := len(backups) - 1; i >= 0; i-- {
			target := filepath.Join(dir, docs[i].Path)
			if backups[i] == "" {
				os.Remove(target)
				continue
			}
			renameFile(backups[i], target)
		}
		removeStaged()
	}

	for i, d := range docs {
		target := filepath.Join(dir, d.Path)
		backup, err := moveAside(dir, target)
		if err != nil {
			rollback()
			return fmt.Errorf("writing %s: %w", target, err)
		}
		backups = append(backups, backup)
		if err := renameFile(staged[i], target); err != nil {
			rollback()
			return fmt.Errorf("writing %s: %w", target, err)
		}
	}

	for _, b := range backups {
		if b != "" {
			os.Remove(b)
		}
	}
	return nil
}

// moveAside renames an existing target to a unique backup name in dir and
// returns that name. A missing target has no backup.
func moveAside(dir, target string) (string, error) {
	if _, err := os.Lstat(target); errors.Is(err, os.ErrNotExist) {
		return "", nil
	} else if err != nil {
		return "", err
	}
	f, err := os.CreateTemp(dir, ".agentd-*.bak")
	if err != nil {
		return "", err
	}
	backup := f.Name()
	f.Close()
	os.Remove(backup)
	if err := renameFile(target, backup); err != nil {
		return "", err
	}
	return backup, nil
}

func stageDoc(dir, content string) (string, error) {
	f, err := os.CreateTemp(dir, ".agentd-*.tmp")
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	if err := os.Chmod(f.Name(), 0o644); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
