package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/workbench/internal/param"
	"github.com/mesh-intelligence/workbench/pkg/types"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, exitSuccess},
		{"user error", types.ErrNotFound, exitUserError},
		{"system error", sysErr(errors.New("disk full")), exitSysError},
		{"wrapped system error", fmt.Errorf("save: %w", sysErr(errors.New("disk full"))), exitSysError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
	assert.NoError(t, sysErr(nil))
}

func TestLoadConfigWritesDefault(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cfg")

	v, err := loadConfig(dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, configFileExt))

	cfg, err := sessionConfig(v)
	require.NoError(t, err)
	def := types.DefaultConfig()
	assert.Equal(t, def.LangNone, cfg.LangNone)
	assert.Equal(t, def.RefTypes, cfg.RefTypes)
	assert.Equal(t, def.Formats, cfg.Formats)
	assert.Equal(t, defaultLogLevel, v.GetString(cfgKeyLogLevel))
}

func TestLoadConfigKeepsUserFile(t *testing.T) {
	dir := t.TempDir()
	custom := "lang_none: none\nref_types: [SPEAKER]\nformats:\n  audio: [.wav]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileExt), []byte(custom), 0o644))

	v, err := loadConfig(dir)
	require.NoError(t, err)
	cfg, err := sessionConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "none", cfg.LangNone)
	assert.Equal(t, []string{"SPEAKER"}, cfg.RefTypes)
	assert.Equal(t, map[string][]string{"audio": {".wav"}}, cfg.Formats)
}

func TestSessionConfigValidates(t *testing.T) {
	v := viper.New()
	v.Set(cfgKeyLangNone, "")
	_, err := sessionConfig(v)
	assert.ErrorIs(t, err, types.ErrLangNoneEmpty)
}

func TestStepsEnv(t *testing.T) {
	steps := []param.Step{
		{Key: "ipus", Options: []param.Option{{ID: "shift", Value: "0.02"}}},
		{Key: "align", Lang: "fra"},
	}
	outputs := map[string]string{"transcription": ".TextGrid", "image": ".png"}
	assert.Equal(t, []string{
		"WORKBENCH_STEPS=ipus:;align:fra",
		"WORKBENCH_OPTIONS=ipus.shift=0.02",
		"WORKBENCH_OUTPUTS=image=.png;transcription=.TextGrid",
	}, stepsEnv(steps, outputs))
}

const echoStep = `
key = "echo"
name = "Echo the files"
order = 1
enabled = true
langs = ["fra", "eng"]
outputs = ["transcription"]

[extensions]
transcription = ".csv"

[[options]]
id = "depth"
type = "int"
value = "1"
`

// cli runs the root command in-process against private directories.
type cli struct {
	t         *testing.T
	configDir string
	dataDir   string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	return &cli{t: t, configDir: t.TempDir(), dataDir: t.TempDir()}
}

func resetFlags() {
	flagWorkspace, flagLogLevel, flagJSON = "", "", false
	wsFolder = ""
	attrType, attrDescription = "str", ""
	filterScope, filterMode = "files", "all"
	linkFileMode, linkRefMode = "all", "all"
	reportsKeep = false
	runLang, runProgram = "", ""
	linkFiles, linkRefs, runSteps, runOptions, runOutputs = nil, nil, nil, nil, nil
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--config-dir", c.configDir, "--data-dir", c.dataDir}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, "workbench %s", strings.Join(args, " "))
	return out
}

func TestCLI(t *testing.T) {
	c := newCLI(t)
	corpus := t.TempDir()
	for _, name := range []string{"a.wav", "a.TextGrid", "b.wav"} {
		require.NoError(t, os.WriteFile(filepath.Join(corpus, name), []byte("x"), 0o644))
	}
	abs := func(name string) string { return filepath.Join(corpus, name) }

	t.Run("version", func(t *testing.T) {
		assert.Contains(t, c.mustRun("version"), version)
	})

	t.Run("changes to Blank are refused", func(t *testing.T) {
		_, err := c.run("files", "add", corpus)
		assert.ErrorIs(t, err, errNoWorkspace)
		assert.Equal(t, exitUserError, exitCode(err))
	})

	t.Run("unknown workspace", func(t *testing.T) {
		_, err := c.run("-w", "nope", "files", "list")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("pin and list", func(t *testing.T) {
		assert.Contains(t, c.mustRun("ws", "pin", "corpus"), "pinned corpus at 1")
		out := c.mustRun("ws", "list")
		assert.Contains(t, out, "Blank")
		assert.Contains(t, out, "corpus")
	})

	t.Run("add files", func(t *testing.T) {
		out := c.mustRun("-w", "corpus", "files", "add", corpus)
		assert.Len(t, strings.Fields(out), 3)
		assert.Contains(t, c.mustRun("-w", "corpus", "files", "list"), abs("b.wav"))
	})

	t.Run("references", func(t *testing.T) {
		c.mustRun("-w", "corpus", "refs", "create", "spk1", "SPEAKER")
		c.mustRun("-w", "corpus", "refs", "set", "--type", "int", "spk1", "age", "30")
		out := c.mustRun("-w", "corpus", "refs", "list")
		assert.Contains(t, out, "spk1 (SPEAKER)")
		assert.Contains(t, out, "age = 30 (int)")

		_, err := c.run("-w", "corpus", "refs", "set", "--type", "int", "spk1", "age", "old")
		assert.ErrorIs(t, err, types.ErrTypeMismatch)
	})

	t.Run("link by filter", func(t *testing.T) {
		out := c.mustRun("-w", "corpus", "link", "--file", "name:exact:a", "--ref", "reference:exact:spk1")
		assert.Contains(t, out, "linked 1 pairs")

		out = c.mustRun("-w", "corpus", "filter", "reference:exact:spk1")
		assert.ElementsMatch(t, []string{abs("a.wav"), abs("a.TextGrid")}, strings.Fields(out))

		out = c.mustRun("-w", "corpus", "filter", "attribute:gt:age:18")
		assert.ElementsMatch(t, []string{abs("a.wav"), abs("a.TextGrid")}, strings.Fields(out))
	})

	t.Run("registry counts", func(t *testing.T) {
		c.mustRun("--json", "ws", "list")
		out := c.mustRun("ws", "list", "--folder", corpus)
		assert.Contains(t, out, "corpus")
		assert.Contains(t, out, "3 files")
		assert.Contains(t, out, "1 links")
	})

	t.Run("export and import", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "copy")
		c.mustRun("-w", "corpus", "ws", "export", file)
		assert.FileExists(t, file+".wjson")
		assert.Contains(t, c.mustRun("ws", "import", file+".wjson"), "imported copy")
		c.mustRun("ws", "remove", "copy")
		assert.NotContains(t, c.mustRun("ws", "list"), "copy")
	})

	t.Run("remove keeps files on disk", func(t *testing.T) {
		assert.Contains(t, c.mustRun("-w", "corpus", "files", "remove", abs("b.wav")), "removed 1 files")
		assert.FileExists(t, abs("b.wav"))
		assert.NotContains(t, c.mustRun("-w", "corpus", "files", "list"), abs("b.wav"))
	})

	t.Run("default workspace from config", func(t *testing.T) {
		c.mustRun("ws", "use", "corpus")
		assert.Contains(t, c.mustRun("files", "list"), abs("a.wav"))
		c.mustRun("ws", "use", "Blank")
		assert.NotContains(t, c.mustRun("files", "list"), abs("a.wav"))
	})

	t.Run("annotate records a report", func(t *testing.T) {
		if _, err := exec.LookPath("echo"); err != nil {
			t.Skip("echo not available")
		}
		steps := filepath.Join(c.configDir, "steps")
		require.NoError(t, os.MkdirAll(steps, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(steps, "echo.toml"), []byte(echoStep), 0o644))
		assert.Contains(t, c.mustRun("steps"), "output: transcription=.csv")

		_, err := c.run("-w", "corpus", "annotate", "--cmd", "echo")
		assert.ErrorIs(t, err, types.ErrNotRunnable)

		_, err = c.run("-w", "corpus", "annotate", "--cmd", "echo", "--lang", "fra", "--output", "transcription=.png", abs("a.wav"))
		assert.ErrorIs(t, err, types.ErrUnsupportedExtension)

		out := c.mustRun("-w", "corpus", "annotate", "--cmd", "echo", "--lang", "fra", "--set", "echo.depth=2",
			"--output", "transcription=textgrid", abs("a.wav"))
		assert.Contains(t, out, "report:")

		names := strings.Fields(c.mustRun("reports", "list"))
		require.Len(t, names, 1)
		content := c.mustRun("reports", "show")
		assert.Contains(t, content, "step: echo fra")
		assert.Contains(t, content, "outputs: transcription=.TextGrid")
		assert.Contains(t, content, abs("a.wav"))

		assert.Contains(t, c.mustRun("reports", "remove", names[0]), "removed "+names[0])
		assert.Empty(t, strings.TrimSpace(c.mustRun("reports", "list")))
	})

	t.Run("convert adds outputs", func(t *testing.T) {
		if _, err := exec.LookPath("cp"); err != nil {
			t.Skip("cp not available")
		}
		out := c.mustRun("-w", "corpus", "convert", ".csv", "--cmd", "cp", abs("a.TextGrid"))
		assert.Equal(t, abs("a.csv"), strings.TrimSpace(out))
		assert.FileExists(t, abs("a.csv"))
		assert.Contains(t, c.mustRun("-w", "corpus", "files", "list"), abs("a.csv"))
	})
}
