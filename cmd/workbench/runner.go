// External programs behind the annotate and convert commands.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mesh-intelligence/workbench/internal/param"
)

const reportTimeLayout = "20060102-150405.000"

// commandRunner runs one program over the checked files and writes its
// output to a new report of the logs folder.
type commandRunner struct {
	program string
	logsDir string
	now     func() time.Time
}

func newCommandRunner(program, logsDir string) *commandRunner {
	return &commandRunner{program: program, logsDir: logsDir, now: time.Now}
}

// stepsEnv encodes the steps as "key:lang" pairs, their options as
// "key.option=value" pairs and the output extensions as "family=ext"
// pairs sorted by family, all separated by semicolons.
func stepsEnv(steps []param.Step, outputs map[string]string) []string {
	var keys, opts, exts []string
	for _, s := range steps {
		keys = append(keys, s.Key+":"+s.Lang)
		for _, o := range s.Options {
			opts = append(opts, s.Key+"."+o.ID+"="+o.Value)
		}
	}
	for family, ext := range outputs {
		exts = append(exts, family+"="+ext)
	}
	sort.Strings(exts)
	return []string{
		"WORKBENCH_STEPS=" + strings.Join(keys, ";"),
		"WORKBENCH_OPTIONS=" + strings.Join(opts, ";"),
		"WORKBENCH_OUTPUTS=" + strings.Join(exts, ";"),
	}
}

// Run executes the program and returns the report path. The report is
// written even when the program fails.
func (r *commandRunner) Run(ctx context.Context, files []string, steps []param.Step, outputs map[string]string) (string, error) {
	var out bytes.Buffer
	start := r.now()
	fmt.Fprintf(&out, "program: %s\nstarted: %s\n", r.program, start.Format(time.RFC3339))
	for _, s := range steps {
		fmt.Fprintf(&out, "step: %s %s\n", s.Key, s.Lang)
	}
	env := stepsEnv(steps, outputs)
	fmt.Fprintf(&out, "outputs: %s\n", strings.TrimPrefix(env[2], "WORKBENCH_OUTPUTS="))
	fmt.Fprintf(&out, "files: %d\n\n", len(files))

	c := exec.CommandContext(ctx, r.program, files...)
	c.Env = append(os.Environ(), env...)
	c.Stdout = &out
	c.Stderr = &out
	runErr := c.Run()
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if runErr != nil {
		fmt.Fprintf(&out, "\nerror: %s\n", runErr)
	}

	if err := os.MkdirAll(r.logsDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(r.logsDir, "report-"+start.Format(reportTimeLayout)+".txt")
	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		return "", err
	}
	return path, runErr
}

// commandConverter runs "program <input> <output>" for one file.
type commandConverter struct {
	program string
}

func newCommandConverter(program string) *commandConverter {
	return &commandConverter{program: program}
}

// Convert returns the output path, which has the stem of file and ext.
func (c *commandConverter) Convert(ctx context.Context, file, ext string) (string, error) {
	out := strings.TrimSuffix(file, filepath.Ext(file)) + ext
	if out == file {
		return "", fmt.Errorf("%s already has extension %s", file, ext)
	}
	cmd := exec.CommandContext(ctx, c.program, file, out)
	if msg, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("%s: %w: %s", c.program, err, bytes.TrimSpace(msg))
	}
	return out, nil
}
