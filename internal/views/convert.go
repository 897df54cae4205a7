package views

import (
	"context"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/workbench/pkg/types"
)

// Converter converts one file to ext and returns the name of the result.
type Converter interface {
	Convert(ctx context.Context, file, ext string) (string, error)
}

// ConverterFunc adapts a function to Converter.
type ConverterFunc func(ctx context.Context, file, ext string) (string, error)

// Convert implements Converter.
func (f ConverterFunc) Convert(ctx context.Context, file, ext string) (string, error) {
	return f(ctx, file, ext)
}

// Convert is the page that converts checked files to another format.
type Convert struct {
	view
}

// NewConvert returns the convert page of s.
func NewConvert(s *Session) *Convert {
	return &Convert{view: newView(s)}
}

// Extensions returns the extensions of every configured family.
func (v *Convert) Extensions() map[string][]string {
	out := make(map[string][]string)
	for _, f := range v.s.cfg.Families() {
		out[f], _ = v.s.cfg.Extensions(f)
	}
	return out
}

// Run converts every checked file to ext, which must belong to one of the
// configured families. The files are locked during the work and get their
// state back afterwards, except the files whose conversion failed, which
// become unused. Results are added to the workspace as new files. A
// cancelled ctx stops after the current file; results produced so far are
// kept. Per-file failures are returned joined.
func (v *Convert) Run(ctx context.Context, conv Converter, ext string) ([]string, error) {
	norm, err := v.normalize(ext)
	if err != nil {
		return nil, err
	}
	ws := v.ws()
	var files []string
	for _, f := range ws.FilesWithState(types.StateChecked) {
		files = append(files, f.ID())
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no checked file", types.ErrNotRunnable)
	}
	prev := lockFiles(ws, files)

	var added []string
	var errs []error
	failed := make(map[string]types.State)
	for _, f := range files {
		if ctx.Err() != nil {
			break
		}
		out, err := conv.Convert(ctx, f, norm)
		if err != nil {
			if errCancelled(err) {
				break
			}
			v.s.log.Error().Str("file", f).Err(err).Msg("conversion failed")
			errs = append(errs, fmt.Errorf("converting %s: %w", f, err))
			failed[f] = types.StateUnused
			continue
		}
		if ws.File(out) != nil {
			continue
		}
		if _, err := ws.AddFile(out); err != nil {
			errs = append(errs, err)
			continue
		}
		added = append(added, out)
	}
	ws.RestoreStates(prev)
	ws.RestoreStates(failed)
	v.publish(true)
	if ctx.Err() != nil {
		errs = append(errs, ctx.Err())
	}
	return added, errors.Join(errs...)
}

// normalize finds the configured spelling of ext in any family.
func (v *Convert) normalize(ext string) (string, error) {
	for _, family := range v.s.cfg.Families() {
		if norm, err := v.s.cfg.NormalizeExtension(family, ext); err == nil {
			return norm, nil
		}
	}
	return "", fmt.Errorf("%w: %q", types.ErrUnsupportedExtension, ext)
}
