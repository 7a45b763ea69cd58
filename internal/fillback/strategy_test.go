package fillback

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrischeng-c4/agentd-sub001/internal/specgen"
	"github.com/chrischeng-c4/agentd-sub001/internal/store"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func testOptions(t *testing.T) Options {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	opts := DefaultOptions()
	opts.Logger = logger
	return opts
}

func testHistory(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var rustCrate = map[string]string{
	"src/main.rs":   "mod config;\nmod utils;\nuse config::Config;\n\nfn main() {\n    utils::helper();\n}\n",
	"src/config.rs": "pub struct Config {}\npub enum ConfigError { Missing }\n",
	"src/utils.rs":  "pub fn helper() {}\npub fn format_string() {}\nfn internal_fn() {}\n",
}

func TestNewKnownAndUnknown(t *testing.T) {
	for _, name := range Names() {
		s, err := New(name, testOptions(t))
		require.NoError(t, err)
		assert.Equal(t, name, s.Name())
		_, ok := s.(Reporter)
		assert.True(t, ok, "%s reports", name)
	}

	_, err := New("markdown", testOptions(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownStrategy))
}

func TestNamesOrder(t *testing.T) {
	assert.Equal(t, []string{OpenSpec, Speckit, Code}, Names())
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		sub   string
		want  string
	}{
		{"code tree", rustCrate, "", Code},
		{"openspec dir", map[string]string{"openspec/specs/auth.yaml": "title: Auth\n", "main.go": "package main\n"}, "", OpenSpec},
		{"yaml file", map[string]string{"spec.yaml": "title: X\n"}, "spec.yaml", OpenSpec},
		{"json file", map[string]string{"spec.JSON": "{}"}, "spec.JSON", OpenSpec},
		{"speckit marker", map[string]string{".specify/memory/constitution.md": "x", "app.py": "X = 1\n"}, "", Speckit},
		{"speckit feature", map[string]string{"specs/001-login/spec.md": "# Login\n"}, "", Speckit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := writeTree(t, tt.files)
			s, err := Detect(filepath.Join(root, tt.sub), testOptions(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Name())
		})
	}
}

func TestDetectNothing(t *testing.T) {
	root := writeTree(t, map[string]string{"README.md": "# hi\n"})
	_, err := Detect(root, testOptions(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoStrategy))

	_, err = Detect(filepath.Join(root, "missing"), testOptions(t))
	assert.True(t, errors.Is(err, ErrNoStrategy))
}

func TestResolve(t *testing.T) {
	root := writeTree(t, rustCrate)

	s, err := Resolve("", root, testOptions(t))
	require.NoError(t, err)
	assert.Equal(t, Code, s.Name())

	s, err = Resolve(Auto, root, testOptions(t))
	require.NoError(t, err)
	assert.Equal(t, Code, s.Name())

	s, err = Resolve(Speckit, root, testOptions(t))
	require.NoError(t, err)
	assert.Equal(t, Speckit, s.Name())

	_, err = Resolve("bogus", root, testOptions(t))
	assert.True(t, errors.Is(err, ErrUnknownStrategy))
}

func TestOutputDirDefaults(t *testing.T) {
	root := writeTree(t, map[string]string{"spec.yaml": "a: b\n"})

	assert.Equal(t, filepath.Join(root, "specs"), Options{}.outputDir(root))
	assert.Equal(t, filepath.Join(root, "specs"), Options{}.outputDir(filepath.Join(root, "spec.yaml")))
	assert.Equal(t, "/out", Options{OutputDir: "/out"}.outputDir(root))
}

func TestCodeStrategyExecute(t *testing.T) {
	root := writeTree(t, rustCrate)
	opts := testOptions(t)
	opts.History = testHistory(t)
	s := NewCodeStrategy(opts)

	require.True(t, s.CanHandle(root))
	require.NoError(t, s.Execute(context.Background(), root, "reverse-auth"))

	out := filepath.Join(root, "specs")
	for _, name := range []string{"_overview.md", "_dependency-graph.md", "main.md", "config.md", "utils.md"} {
		assert.FileExists(t, filepath.Join(out, name))
	}

	report := s.Report()
	require.NotNil(t, report)
	assert.Equal(t, Code, report.Strategy)
	assert.Equal(t, "reverse-auth", report.ChangeID)
	assert.Equal(t, out, report.OutputDir)
	assert.Equal(t, 3, report.Modules)
	assert.Equal(t, map[string]int{"rust": 3}, report.LanguageCounts)
	require.NotNil(t, report.Graph)
	assert.Equal(t, 3, report.Graph.InternalModules)
	assert.Len(t, report.Files, 5)
	assert.NotEmpty(t, report.RunID)

	run, err := opts.History.GetRun(report.RunID)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, store.StatusSucceeded, run.Status)
	assert.Equal(t, "reverse-auth", run.ChangeID)
	assert.Equal(t, 5, run.Files)

	mods, err := opts.History.ListRunModules(report.RunID)
	require.NoError(t, err)
	assert.Len(t, mods, 3)
}

func TestCodeStrategyRerunIgnoresOwnOutput(t *testing.T) {
	root := writeTree(t, rustCrate)
	opts := testOptions(t)
	opts.Force = true
	s := NewCodeStrategy(opts)

	require.NoError(t, s.Execute(context.Background(), root, ""))
	first, err := os.ReadFile(filepath.Join(root, "specs", "_overview.md"))
	require.NoError(t, err)

	require.NoError(t, s.Execute(context.Background(), root, ""))
	second, err := os.ReadFile(filepath.Join(root, "specs", "_overview.md"))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Empty(t, s.Report().SkippedFiles)
}

func TestCodeStrategyRerunRelativeSourceAbsoluteOutput(t *testing.T) {
	root := writeTree(t, rustCrate)
	chdir(t, root)

	opts := testOptions(t)
	opts.Force = true
	opts.OutputDir = filepath.Join(root, "specs")
	s := NewCodeStrategy(opts)

	require.NoError(t, s.Execute(context.Background(), ".", ""))
	first, err := os.ReadFile(filepath.Join(root, "specs", "_overview.md"))
	require.NoError(t, err)

	require.NoError(t, s.Execute(context.Background(), ".", ""))
	second, err := os.ReadFile(filepath.Join(root, "specs", "_overview.md"))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Empty(t, s.Report().SkippedFiles)
}

func TestNestedRel(t *testing.T) {
	root := t.TempDir()
	chdir(t, root)

	rel, ok := nestedRel(".", filepath.Join(root, "docs", "specs"))
	require.True(t, ok)
	assert.Equal(t, filepath.Join("docs", "specs"), rel)

	_, ok = nestedRel(root, root)
	assert.False(t, ok)
	_, ok = nestedRel(filepath.Join(root, "src"), filepath.Join(root, "specs"))
	assert.False(t, ok)
	rel, ok = nestedRel(root, filepath.Join(root, "..specs"))
	require.True(t, ok)
	assert.Equal(t, "..specs", rel)
}

func TestCodeStrategyModuleFilter(t *testing.T) {
	root := writeTree(t, rustCrate)
	opts := testOptions(t)
	opts.ModuleFilter = "config"
	opts.OutputDir = filepath.Join(t.TempDir(), "out")
	s := NewCodeStrategy(opts)

	require.NoError(t, s.Execute(context.Background(), root, ""))
	assert.Equal(t, []string{"_overview.md", "_dependency-graph.md", "config.md"}, s.Report().Files)
	assert.NoFileExists(t, filepath.Join(opts.OutputDir, "main.md"))
}

func TestCodeStrategyDeclinedOverwrite(t *testing.T) {
	root := writeTree(t, rustCrate)
	out := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(out, "main.md"), []byte("mine"), 0o644))

	opts := testOptions(t)
	opts.OutputDir = out
	opts.History = testHistory(t)
	opts.Confirm = func(existing []string) (bool, error) { return false, nil }
	s := NewCodeStrategy(opts)

	err := s.Execute(context.Background(), root, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, specgen.ErrOverwriteDeclined))

	data, readErr := os.ReadFile(filepath.Join(out, "main.md"))
	require.NoError(t, readErr)
	assert.Equal(t, "mine", string(data))

	runs, err := opts.History.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, store.StatusDeclined, runs[0].Status)
	assert.Equal(t, 3, runs[0].Modules)
}

func TestCodeStrategyFatalAnalysis(t *testing.T) {
	root := writeTree(t, map[string]string{"README.md": "# nothing\n"})
	opts := testOptions(t)
	opts.History = testHistory(t)
	s := NewCodeStrategy(opts)

	err := s.Execute(context.Background(), root, "")
	require.Error(t, err)
	assert.NoDirExists(t, filepath.Join(root, "specs"))

	runs, err := opts.History.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, store.StatusFailed, runs[0].Status)
	assert.Contains(t, runs[0].Error, "no analyzable modules")
}

func TestCodeStrategyReportsParseErrors(t *testing.T) {
	root := writeTree(t, map[string]string{
		"good.py": "def ok():\n    pass\n",
		"bad.py":  "def broken(:\n    pass\n",
	})
	s := NewCodeStrategy(testOptions(t))

	require.NoError(t, s.Execute(context.Background(), root, ""))
	require.Len(t, s.Report().ParseErrors, 1)
	assert.Equal(t, "bad.py", s.Report().ParseErrors[0].Path)
}

func TestCodeStrategyClarifications(t *testing.T) {
	root := writeTree(t, rustCrate)
	opts := testOptions(t)
	opts.Clarifications = specgen.Clarifications{specgen.KeyProjectDescription: "Config loader."}
	s := NewCodeStrategy(opts)

	require.NoError(t, s.Execute(context.Background(), root, ""))
	data, err := os.ReadFile(filepath.Join(root, "specs", "_overview.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Config loader.")
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
