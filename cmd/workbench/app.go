// Session wiring shared by the workbench commands.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/mesh-intelligence/workbench/internal/catalog"
	"github.com/mesh-intelligence/workbench/internal/logging"
	"github.com/mesh-intelligence/workbench/internal/param"
	"github.com/mesh-intelligence/workbench/internal/paths"
	"github.com/mesh-intelligence/workbench/internal/report"
	"github.com/mesh-intelligence/workbench/internal/views"
	"github.com/mesh-intelligence/workbench/pkg/types"
)

const logFileName = "workbench.log"

// errNoWorkspace is returned by commands that change a workspace when
// none is selected; changes to Blank would be lost on exit.
var errNoWorkspace = errors.New("no workspace selected (use --workspace or set workspace in config.yaml)")

// app holds the session of one command invocation.
type app struct {
	cfg     types.Config
	dataDir string
	log     *logging.Log
	catalog *catalog.Catalog
	session *views.Session
}

// openApp resolves the directories, opens the log file and the workspaces
// catalog, loads the step descriptors and the reports folder, then makes
// the selected workspace current. The caller must call close.
func openApp() (*app, error) {
	dataDir, err := paths.ResolveDataDir(flagDataDir, settings.GetString(cfgKeyDataDir))
	if err != nil {
		return nil, sysErr(fmt.Errorf("resolve data dir: %w", err))
	}
	cfg, err := sessionConfig(settings)
	if err != nil {
		return nil, err
	}
	cfg = paths.Apply(cfg, dataDir)

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, sysErr(fmt.Errorf("create data dir: %w", err))
	}
	l, err := logging.New().FromPath(filepath.Join(dataDir, logFileName)).Level(logLevel()).Make()
	if err != nil {
		return nil, sysErr(fmt.Errorf("open log: %w", err))
	}
	log := l.Logger

	cat, err := catalog.Open(cfg, catalog.WithLogger(log))
	if err != nil {
		l.Close()
		return nil, sysErr(err)
	}
	a := &app{cfg: cfg, dataDir: dataDir, log: l, catalog: cat}

	steps, err := loadSteps()
	if err != nil {
		a.close()
		return nil, err
	}
	params, err := param.New(cfg, steps, param.WithLogger(log))
	if err != nil {
		a.close()
		return nil, err
	}
	reports := report.New(cfg.LogsDir, report.WithLogger(log))
	if err := reports.Scan(); err != nil {
		a.close()
		return nil, sysErr(err)
	}

	a.session = views.NewSession(cfg,
		views.WithLogger(log),
		views.WithCatalog(cat),
		views.WithParams(params),
		views.WithReports(reports),
	)
	if name := workspaceName(); name != "" {
		if err := a.use(name); err != nil {
			a.close()
			return nil, err
		}
	}
	log.Debug().Str("data_dir", dataDir).Str("workspace", workspaceName()).Msg("session opened")
	return a, nil
}

// loadSteps reads the step descriptors of the config directory. A missing
// folder means no step.
func loadSteps() ([]param.Step, error) {
	fs := afero.NewOsFs()
	dir := paths.StepsDir(configDir)
	ok, err := afero.DirExists(fs, dir)
	if err != nil || !ok {
		return nil, nil
	}
	return param.LoadDir(fs, dir)
}

// use makes the named workspace current.
func (a *app) use(name string) error {
	for i, n := range a.catalog.List() {
		if n == name {
			return views.NewWorkspacesBar(a.session).Switch(i)
		}
	}
	return fmt.Errorf("%w: workspace %s", types.ErrNotFound, name)
}

// requireWorkspace fails when the current workspace is Blank.
func (a *app) requireWorkspace() error {
	if a.catalog.Index() == 0 {
		return errNoWorkspace
	}
	return nil
}

// close saves the current workspace and releases the catalog and log.
func (a *app) close() error {
	err := a.catalog.Close()
	a.log.Close()
	return sysErr(err)
}

// withApp runs fn with an open session and closes it afterwards. When
// write is true the command needs a named workspace.
func withApp(write bool, fn func(a *app) error) (err error) {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(); err == nil {
			err = cerr
		}
	}()
	if write {
		if err := a.requireWorkspace(); err != nil {
			return err
		}
	}
	return fn(a)
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysErr(fmt.Errorf("marshal JSON: %w", err))
	}
	fmt.Fprintln(w, string(out))
	return nil
}
