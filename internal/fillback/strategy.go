// Package fillback reverse-engineers specification documents from an
// existing source. Each supported source format is a Strategy; Detect
// picks one automatically.
package fillback

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/chrischeng-c4/agentd-sub001/internal/output"
	"github.com/chrischeng-c4/agentd-sub001/internal/specgen"
	"github.com/chrischeng-c4/agentd-sub001/internal/store"
)

var (
	// ErrNoStrategy is returned when auto-detection finds no strategy
	// able to handle the source.
	ErrNoStrategy = errors.New("no fillback strategy can handle source")
	// ErrUnknownStrategy is returned for an unrecognized strategy name.
	ErrUnknownStrategy = errors.New("unknown fillback strategy")
)

// Strategy names.
const (
	Auto     = "auto"
	Code     = "code"
	OpenSpec = "openspec"
	Speckit  = "speckit"
)

// DefaultOutputDir is the directory, relative to the source, used when
// Options.OutputDir is empty.
const DefaultOutputDir = "specs"

// Strategy imports one source format into spec documents.
type Strategy interface {
	Name() string
	CanHandle(path string) bool
	Execute(ctx context.Context, path, changeID string) error
}

// Reporter is implemented by strategies that expose the outcome of their
// most recent Execute.
type Reporter interface {
	Report() *output.Report
}

// Options is shared by every strategy.
type Options struct {
	// ModuleFilter keeps only the module with exactly this name.
	ModuleFilter string
	// Force overwrites existing specs without asking.
	Force bool
	// OutputDir receives the generated documents. Empty means a "specs"
	// directory next to the source.
	OutputDir        string
	Concurrency      int
	Exclude          []string
	RespectGitignore bool
	Clarifications   specgen.Clarifications
	// Confirm is asked before overwriting existing specs.
	Confirm specgen.ConfirmFunc
	// History records runs when non-nil.
	History *store.Store
	Logger  logrus.FieldLogger
}

// DefaultOptions returns Options with .gitignore support enabled.
func DefaultOptions() Options {
	return Options{RespectGitignore: true}
}

func (o Options) logger() logrus.FieldLogger {
	if o.Logger == nil {
		return logrus.StandardLogger()
	}
	return o.Logger
}

// outputDir resolves where documents for source path are written.
func (o Options) outputDir(path string) string {
	if o.OutputDir != "" {
		return o.OutputDir
	}
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return filepath.Join(filepath.Dir(path), DefaultOutputDir)
	}
	return filepath.Join(path, DefaultOutputDir)
}

func (o Options) generator() *specgen.Generator {
	return &specgen.Generator{Force: o.Force, Confirm: o.Confirm, Logger: o.Logger}
}

// Names lists the concrete strategies in auto-detection order.
func Names() []string {
	return []string{OpenSpec, Speckit, Code}
}

// New returns the strategy registered under name.
func New(name string, opts Options) (Strategy, error) {
	switch name {
	case Code:
		return NewCodeStrategy(opts), nil
	case OpenSpec:
		return NewOpenSpecStrategy(opts), nil
	case Speckit:
		return NewSpeckitStrategy(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// Detect tries each strategy in order (openspec, speckit, code) and
// returns the first that can handle path.
func Detect(path string, opts Options) (Strategy, error) {
	for _, name := range Names() {
		s, err := New(name, opts)
		if err != nil {
			return nil, err
		}
		if s.CanHandle(path) {
			opts.logger().WithFields(logrus.Fields{"strategy": name, "path": path}).Debug("strategy detected")
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoStrategy, path)
}

// Resolve returns the named strategy, or detects one when name is empty
// or "auto".
func Resolve(name, path string, opts Options) (Strategy, error) {
	if name == "" || name == Auto {
		return Detect(path, opts)
	}
	return New(name, opts)
}
