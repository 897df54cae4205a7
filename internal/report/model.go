// Package report lists the procedure reports found in the logs folder.
// Reports are written by the external runner; this package only lists,
// shows and deletes them.
package report

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/mesh-intelligence/workbench/pkg/types"
)

// Pattern matches report file names in the logs folder.
const Pattern = "report-*.txt"

// IsReport reports whether the basename of name matches Pattern.
func IsReport(name string) bool {
	ok, _ := filepath.Match(Pattern, filepath.Base(name))
	return ok
}

// Report is one entry of the list.
type Report struct {
	Name    string
	Checked bool
}

// Model is the ordered list of reports, newest first. It is safe for
// concurrent use because the folder watcher inserts from its own goroutine.
type Model struct {
	mu       sync.Mutex
	fs       afero.Fs
	dir      string
	log      zerolog.Logger
	reports  []Report
	selected string
}

// Option configures a Model.
type Option func(*Model)

// WithFs sets the file system of the logs folder.
func WithFs(fs afero.Fs) Option {
	return func(m *Model) { m.fs = fs }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Model) { m.log = l }
}

// New returns an empty model over the logs folder dir. Call Scan to fill it.
func New(dir string, opts ...Option) *Model {
	m := &Model{fs: afero.NewOsFs(), dir: dir, log: zerolog.Nop()}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Dir returns the logs folder.
func (m *Model) Dir() string { return m.dir }

// Path returns the file of report name.
func (m *Model) Path(name string) string {
	return filepath.Join(m.dir, filepath.Base(name))
}

// Scan rebuilds the list from the logs folder, newest first. Check marks
// and the selection survive for reports that are still present. A missing
// folder yields an empty list.
func (m *Model) Scan() error {
	infos, err := afero.ReadDir(m.fs, m.dir)
	if err != nil {
		if ok, _ := afero.DirExists(m.fs, m.dir); !ok {
			infos = nil
		} else {
			return fmt.Errorf("scanning %s: %w", m.dir, err)
		}
	}
	var found []string
	modTime := make(map[string]int64)
	for _, info := range infos {
		if info.IsDir() || !IsReport(info.Name()) {
			continue
		}
		found = append(found, info.Name())
		modTime[info.Name()] = info.ModTime().UnixNano()
	}
	sort.SliceStable(found, func(i, j int) bool {
		if modTime[found[i]] != modTime[found[j]] {
			return modTime[found[i]] > modTime[found[j]]
		}
		return found[i] > found[j]
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	checked := make(map[string]bool)
	for _, r := range m.reports {
		checked[r.Name] = r.Checked
	}
	m.reports = m.reports[:0]
	present := false
	for _, name := range found {
		m.reports = append(m.reports, Report{Name: name, Checked: checked[name]})
		present = present || name == m.selected
	}
	if !present {
		m.selected = ""
	}
	return nil
}

// Insert puts name at the top of the list. A name already listed moves
// to the top. Only the basename is kept.
func (m *Model) Insert(name string) {
	name = filepath.Base(name)
	m.mu.Lock()
	defer m.mu.Unlock()
	checked := false
	if i := m.index(name); i >= 0 {
		checked = m.reports[i].Checked
		m.reports = append(m.reports[:i], m.reports[i+1:]...)
	}
	m.reports = append([]Report{{Name: name, Checked: checked}}, m.reports...)
}

// forget drops name from the list without touching the file.
func (m *Model) forget(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(name)
	if i < 0 {
		return false
	}
	m.reports = append(m.reports[:i], m.reports[i+1:]...)
	if m.selected == name {
		m.selected = ""
	}
	return true
}

// Check sets the check mark of name. Returns ErrNotFound if not listed.
func (m *Model) Check(name string, on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(name)
	if i < 0 {
		return fmt.Errorf("%w: report %s", types.ErrNotFound, name)
	}
	m.reports[i].Checked = on
	return nil
}

// Select makes name the displayed report. Returns ErrNotFound if not listed.
func (m *Model) Select(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index(name) < 0 {
		return fmt.Errorf("%w: report %s", types.ErrNotFound, name)
	}
	m.selected = name
	return nil
}

// Selected returns the displayed report, or "".
func (m *Model) Selected() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected
}

// Names returns the listed report names, newest first.
func (m *Model) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.reports))
	for i, r := range m.reports {
		out[i] = r.Name
	}
	return out
}

// Reports returns a copy of the list.
func (m *Model) Reports() []Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Report(nil), m.reports...)
}

// Content returns the text of report name.
func (m *Model) Content(name string) (string, error) {
	m.mu.Lock()
	listed := m.index(name) >= 0
	m.mu.Unlock()
	if !listed {
		return "", fmt.Errorf("%w: report %s", types.ErrNotFound, name)
	}
	data, err := afero.ReadFile(m.fs, m.Path(name))
	if err != nil {
		return "", fmt.Errorf("reading report %s: %w", name, err)
	}
	return string(data), nil
}

// RemoveChecked deletes the files of the checked reports and drops them
// from the list. Entries whose file could not be deleted are kept and
// their errors are returned joined.
func (m *Model) RemoveChecked() ([]string, error) {
	return m.remove(true)
}

// RemoveUnchecked is RemoveChecked for the unchecked reports.
func (m *Model) RemoveUnchecked() ([]string, error) {
	return m.remove(false)
}

func (m *Model) remove(checked bool) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed []string
	var errs []error
	kept := m.reports[:0]
	for _, r := range m.reports {
		if r.Checked != checked {
			kept = append(kept, r)
			continue
		}
		if err := m.fs.Remove(m.Path(r.Name)); err != nil {
			m.log.Error().Str("report", r.Name).Err(err).Msg("cannot delete report")
			errs = append(errs, fmt.Errorf("deleting report %s: %w", r.Name, err))
			kept = append(kept, r)
			continue
		}
		if m.selected == r.Name {
			m.selected = ""
		}
		removed = append(removed, r.Name)
	}
	m.reports = kept
	return removed, errors.Join(errs...)
}

// index returns the position of name or -1. The caller must hold m.mu.
func (m *Model) index(name string) int {
	for i, r := range m.reports {
		if r.Name == name {
			return i
		}
	}
	return -1
}
