package views

import (
	"context"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/workbench/internal/param"
	"github.com/mesh-intelligence/workbench/pkg/types"
	"github.com/mesh-intelligence/workbench/pkg/workspace"
)

// Runner executes the annotation pipeline on files. outputs maps each
// format family written by the steps to the extension to produce. It
// returns the name of the report it wrote in the logs folder, possibly
// alongside an error.
type Runner interface {
	Run(ctx context.Context, files []string, steps []param.Step, outputs map[string]string) (report string, err error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, files []string, steps []param.Step, outputs map[string]string) (string, error)

// Run implements Runner.
func (f RunnerFunc) Run(ctx context.Context, files []string, steps []param.Step, outputs map[string]string) (string, error) {
	return f(ctx, files, steps, outputs)
}

// Annotate is the page that configures and launches the pipeline.
type Annotate struct {
	view
}

// NewAnnotate returns the annotate page of s.
func NewAnnotate(s *Session) *Annotate {
	return &Annotate{view: newView(s)}
}

// Steps returns the pipeline steps.
func (v *Annotate) Steps() []param.Step { return v.s.params.Steps() }

// Enable sets the activation of step i.
func (v *Annotate) Enable(i int, on bool) error { return v.s.params.Enable(i, on) }

// SetLang sets the language of step i.
func (v *Annotate) SetLang(i int, lang string) error { return v.s.params.SetLang(i, lang) }

// SetGlobalLang applies lang to the active steps that support it.
func (v *Annotate) SetGlobalLang(lang string) int { return v.s.params.SetGlobalLang(lang) }

// SetOption sets option key of step i.
func (v *Annotate) SetOption(i int, key, value string) error {
	return v.s.params.SetOption(i, key, value)
}

// SetOutputExtension chooses the extension written for family.
func (v *Annotate) SetOutputExtension(family, ext string) error {
	return v.s.params.SetOutputExtension(family, ext)
}

// Outputs returns the extension written for each family of the active
// steps.
func (v *Annotate) Outputs() map[string]string { return v.s.params.Outputs() }

// LangSummary returns the language shown on the page.
func (v *Annotate) LangSummary() string { return v.s.params.LangSummary() }

// CheckedFiles returns the identifiers of the checked files.
func (v *Annotate) CheckedFiles() []string {
	var ids []string
	for _, f := range v.ws().FilesWithState(types.StateChecked) {
		ids = append(ids, f.ID())
	}
	return ids
}

// Runnable reports why the run button is disabled, or nil.
func (v *Annotate) Runnable() error {
	if err := v.s.params.Runnable(); err != nil {
		return err
	}
	if len(v.CheckedFiles()) == 0 {
		return fmt.Errorf("%w: no checked file", types.ErrNotRunnable)
	}
	return nil
}

// Run locks the checked files, hands them to runner with the active
// steps and their output extensions, then restores the files. The returned report is inserted in the
// report model. When ctx is cancelled the files get their previous state
// back and no report is recorded. When the runner fails the files become
// unused and the report, if any, is still recorded.
func (v *Annotate) Run(ctx context.Context, runner Runner) (string, error) {
	if err := v.Runnable(); err != nil {
		return "", err
	}
	ws := v.ws()
	files := v.CheckedFiles()
	prev := lockFiles(ws, files)

	report, err := runner.Run(ctx, files, v.s.params.EnabledSteps(), v.s.params.Outputs())
	switch {
	case ctx.Err() != nil:
		ws.RestoreStates(prev)
		v.s.log.Info().Int("files", len(files)).Msg("annotation cancelled")
		v.publish(true)
		return "", ctx.Err()
	case err != nil:
		ws.RestoreStates(fill(prev, types.StateUnused))
		v.s.log.Error().Err(err).Int("files", len(files)).Msg("annotation failed")
	default:
		ws.RestoreStates(prev)
	}
	if report != "" {
		v.s.reports.Insert(report)
	}
	v.publish(true)
	if err != nil {
		return report, fmt.Errorf("annotation: %w", err)
	}
	return report, nil
}

// lockFiles locks the named files, and only them, and returns their
// previous states.
func lockFiles(ws *workspace.Workspace, files []string) map[string]types.State {
	prev := make(map[string]types.State, len(files))
	for _, id := range files {
		f := ws.File(id)
		if f == nil {
			continue
		}
		prev[id] = f.State()
		ws.SetObjectState(types.StateLocked, id)
	}
	return prev
}

// fill returns a copy of prev with every state set to s.
func fill(prev map[string]types.State, s types.State) map[string]types.State {
	out := make(map[string]types.State, len(prev))
	for id := range prev {
		out[id] = s
	}
	return out
}

// errCancelled reports whether err comes from a cancelled context.
func errCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
