package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/workbench/pkg/types"
)

// writeReports creates report files with increasing modification times.
func writeReports(t *testing.T, fs afero.Fs, dir string, names ...string) {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, n := range names {
		p := filepath.Join(dir, n)
		require.NoError(t, afero.WriteFile(fs, p, []byte("log of "+n), 0o644))
		mt := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, fs.Chtimes(p, mt, mt))
	}
}

func TestIsReport(t *testing.T) {
	assert.True(t, IsReport("/logs/report-2026.txt"))
	assert.False(t, IsReport("report.txt"))
	assert.False(t, IsReport("report-1.log"))
}

func TestScanNewestFirst(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeReports(t, fs, "/logs", "report-a.txt", "report-b.txt", "report-c.txt")
	require.NoError(t, afero.WriteFile(fs, "/logs/other.txt", nil, 0o644))

	m := New("/logs", WithFs(fs))
	require.NoError(t, m.Scan())
	assert.Equal(t, []string{"report-c.txt", "report-b.txt", "report-a.txt"}, m.Names())
}

func TestScanMissingFolder(t *testing.T) {
	m := New("/nowhere", WithFs(afero.NewMemMapFs()))
	require.NoError(t, m.Scan())
	assert.Empty(t, m.Names())
}

func TestScanKeepsMarks(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeReports(t, fs, "/logs", "report-a.txt", "report-b.txt")
	m := New("/logs", WithFs(fs))
	require.NoError(t, m.Scan())
	require.NoError(t, m.Check("report-a.txt", true))
	require.NoError(t, m.Select("report-b.txt"))

	require.NoError(t, m.Scan())
	assert.Equal(t, []Report{{Name: "report-b.txt"}, {Name: "report-a.txt", Checked: true}}, m.Reports())
	assert.Equal(t, "report-b.txt", m.Selected())
}

func TestInsertAtTop(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeReports(t, fs, "/logs", "report-a.txt", "report-b.txt")
	m := New("/logs", WithFs(fs))
	require.NoError(t, m.Scan())

	m.Insert("/logs/report-new.txt")
	assert.Equal(t, []string{"report-new.txt", "report-b.txt", "report-a.txt"}, m.Names())

	m.Insert("report-a.txt")
	assert.Equal(t, []string{"report-a.txt", "report-new.txt", "report-b.txt"}, m.Names())
}

func TestSelectAndContent(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeReports(t, fs, "/logs", "report-a.txt")
	m := New("/logs", WithFs(fs))
	require.NoError(t, m.Scan())

	assert.ErrorIs(t, m.Select("report-z.txt"), types.ErrNotFound)
	assert.ErrorIs(t, m.Check("report-z.txt", true), types.ErrNotFound)
	require.NoError(t, m.Select("report-a.txt"))

	text, err := m.Content("report-a.txt")
	require.NoError(t, err)
	assert.Equal(t, "log of report-a.txt", text)

	_, err = m.Content("report-z.txt")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestRemoveCheckedAndUnchecked(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeReports(t, fs, "/logs", "report-a.txt", "report-b.txt", "report-c.txt")
	m := New("/logs", WithFs(fs))
	require.NoError(t, m.Scan())
	require.NoError(t, m.Check("report-b.txt", true))
	require.NoError(t, m.Select("report-b.txt"))

	removed, err := m.RemoveChecked()
	require.NoError(t, err)
	assert.Equal(t, []string{"report-b.txt"}, removed)
	assert.Equal(t, []string{"report-c.txt", "report-a.txt"}, m.Names())
	assert.Empty(t, m.Selected())
	ok, _ := afero.Exists(fs, "/logs/report-b.txt")
	assert.False(t, ok)

	removed, err = m.RemoveUnchecked()
	require.NoError(t, err)
	assert.Equal(t, []string{"report-c.txt", "report-a.txt"}, removed)
	assert.Empty(t, m.Names())
}

func TestRemoveFailureKeepsEntry(t *testing.T) {
	base := afero.NewMemMapFs()
	writeReports(t, base, "/logs", "report-a.txt", "report-b.txt")
	m := New("/logs", WithFs(afero.NewReadOnlyFs(base)))
	require.NoError(t, m.Scan())

	removed, err := m.RemoveUnchecked()
	assert.Error(t, err)
	assert.Empty(t, removed)
	assert.Equal(t, []string{"report-b.txt", "report-a.txt"}, m.Names())
}

func TestWatcherTracksFolder(t *testing.T) {
	dir := t.TempDir()
	m := New(dir)
	require.NoError(t, m.Scan())

	w, err := NewWatcher(m)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	file := filepath.Join(dir, "report-live.txt")
	require.NoError(t, os.WriteFile(file, []byte("done"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.log"), []byte("x"), 0o644))

	select {
	case c := <-w.Changes:
		assert.Equal(t, Change{Kind: ChangeAdded, Name: "report-live.txt"}, c)
	case <-time.After(5 * time.Second):
		t.Fatal("no change received for the new report")
	}
	assert.Equal(t, []string{"report-live.txt"}, m.Names())

	require.NoError(t, os.Remove(file))
	select {
	case c := <-w.Changes:
		assert.Equal(t, Change{Kind: ChangeRemoved, Name: "report-live.txt"}, c)
	case <-time.After(5 * time.Second):
		t.Fatal("no change received for the removed report")
	}
	assert.Empty(t, m.Names())
}
