// Tests for the workspaces index.
package sqlite

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/mesh-intelligence/workbench/internal/wio"
	"github.com/mesh-intelligence/workbench/pkg/types"
	"github.com/mesh-intelligence/workbench/pkg/workspace"
)

// saveWorkspace writes a workspace holding one file of folder under dir.
func saveWorkspace(t *testing.T, dir, name, folder string) {
	t.Helper()
	fs := afero.NewOsFs()
	file := filepath.Join(folder, "a.wav")
	if err := os.MkdirAll(folder, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	ws := workspace.New(types.DefaultConfig(), workspace.WithFs(fs), workspace.WithID(name))
	if _, err := ws.AddFile(file); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	if err := wio.Save(fs, wio.PathFor(dir, name), ws); err != nil {
		t.Fatalf("Save: %v", err)
	}
}

func TestRegistry_Attach(t *testing.T) {
	dir := t.TempDir()
	saveWorkspace(t, dir, "beta", filepath.Join(t.TempDir(), "b"))
	saveWorkspace(t, dir, "alpha", filepath.Join(t.TempDir(), "a"))
	if err := os.WriteFile(filepath.Join(dir, "broken.wjson"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	if err := r.Attach(dir); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	defer r.Detach()

	if _, err := os.Stat(filepath.Join(dir, DBFile)); os.IsNotExist(err) {
		t.Errorf("%s not created", DBFile)
	}
	if err := r.Attach(dir); err != types.ErrAlreadyAttached {
		t.Errorf("expected ErrAlreadyAttached, got %v", err)
	}

	names, err := r.Names()
	if err != nil {
		t.Fatalf("Names: %v", err)
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("Names = %v, want [alpha beta]", names)
	}
	if skipped := r.Skipped(); len(skipped) != 1 || skipped[0] != "broken" {
		t.Errorf("Skipped = %v, want [broken]", skipped)
	}
}

func TestRegistry_GetAndWithFolder(t *testing.T) {
	dir := t.TempDir()
	folder := filepath.Join(t.TempDir(), "corpus")
	saveWorkspace(t, dir, "alpha", folder)

	r := NewRegistry()
	if err := r.Attach(dir); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	defer r.Detach()

	e, err := r.Get("alpha")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if e.Files != 1 || e.Paths != 1 || e.Version != workspace.DocumentVersion {
		t.Errorf("unexpected entry %+v", e)
	}
	if len(e.Folders) != 1 || e.Folders[0] != folder {
		t.Errorf("Folders = %v, want [%s]", e.Folders, folder)
	}

	names, err := r.WithFolder(folder)
	if err != nil {
		t.Fatalf("WithFolder: %v", err)
	}
	if len(names) != 1 || names[0] != "alpha" {
		t.Errorf("WithFolder = %v", names)
	}

	if _, err := r.Get("ghost"); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	ok, err := r.Has("ghost")
	if err != nil || ok {
		t.Errorf("Has(ghost) = %v, %v", ok, err)
	}
}

func TestRegistry_RenameRefreshRemove(t *testing.T) {
	dir := t.TempDir()
	saveWorkspace(t, dir, "alpha", filepath.Join(t.TempDir(), "a"))

	r := NewRegistry()
	if err := r.Attach(dir); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	defer r.Detach()

	if err := os.Rename(wio.PathFor(dir, "alpha"), wio.PathFor(dir, "gamma")); err != nil {
		t.Fatal(err)
	}
	if err := r.Rename("alpha", "gamma"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	names, _ := r.Names()
	if len(names) != 1 || names[0] != "gamma" {
		t.Fatalf("Names after rename = %v", names)
	}

	saveWorkspace(t, dir, "delta", filepath.Join(t.TempDir(), "d"))
	if err := r.Refresh("delta"); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if ok, _ := r.Has("delta"); !ok {
		t.Error("delta not indexed after Refresh")
	}

	if err := r.Remove("gamma"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := r.Remove("gamma"); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRegistry_Detach(t *testing.T) {
	r := NewRegistry()
	if err := r.Attach(t.TempDir()); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if err := r.Detach(); err != nil {
		t.Fatalf("Detach failed: %v", err)
	}
	if err := r.Detach(); err != nil {
		t.Errorf("second Detach: %v", err)
	}
	if _, err := r.Names(); err != types.ErrDetached {
		t.Errorf("expected ErrDetached, got %v", err)
	}
}

func TestRegistry_AttachInMemory(t *testing.T) {
	dir := t.TempDir()
	mem := afero.NewMemMapFs()
	if err := afero.WriteFile(mem, "/corpus/a.wav", []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	ws := workspace.New(types.DefaultConfig(), workspace.WithFs(mem), workspace.WithID("mem"))
	if _, err := ws.AddFile("/corpus/a.wav"); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	if err := wio.Save(mem, wio.PathFor(dir, "mem"), ws); err != nil {
		t.Fatalf("Save: %v", err)
	}

	r := NewRegistry(WithFs(mem))
	if err := r.Attach(dir); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	defer r.Detach()

	if _, err := os.Stat(filepath.Join(dir, DBFile)); err != nil {
		t.Errorf("database not on the operating system file system: %v", err)
	}
	if _, err := os.Stat(wio.PathFor(dir, "mem")); !os.IsNotExist(err) {
		t.Errorf("workspace file leaked to the operating system file system: %v", err)
	}
	names, err := r.Names()
	if err != nil {
		t.Fatalf("Names: %v", err)
	}
	if len(names) != 1 || names[0] != "mem" {
		t.Errorf("Names = %v, want [mem]", names)
	}
}
