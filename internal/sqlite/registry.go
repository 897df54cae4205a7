// Package sqlite indexes the workspaces folder in SQLite. The workspace
// files are the source of truth; the database is rebuilt from them on
// every Attach and only serves queries for the workspaces bar.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/workbench/internal/wio"
	"github.com/mesh-intelligence/workbench/pkg/types"
)

// DBFile is the name of the index database inside the workspaces folder.
const DBFile = "workspaces.db"

// Entry describes one persisted workspace.
type Entry struct {
	Name       string
	File       string
	Version    int
	Paths      int
	Files      int
	Refs       int
	Links      int
	ModifiedAt time.Time
	Folders    []string
}

// Registry is the SQLite index of a workspaces folder.
type Registry struct {
	mu       sync.RWMutex
	attached bool
	dir      string
	db       *sql.DB
	fs       afero.Fs
	log      zerolog.Logger
	skipped  []string
}

// Option configures a Registry.
type Option func(*Registry)

// WithFs sets the file system the workspace files are read from. The
// database itself always lives on the operating system file system, so
// Attach creates the folder there as well, even when fs is in memory.
// Tests injecting a MemMapFs should attach a t.TempDir() folder.
func WithFs(fs afero.Fs) Option {
	return func(r *Registry) { r.fs = fs }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// NewRegistry creates a detached registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{fs: afero.NewOsFs(), log: zerolog.Nop()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Attach creates dir if needed, on the operating system file system for
// the database and on the registry file system for the workspace files,
// rebuilds the index database from scratch and loads every workspace file
// found in dir.
// Returns ErrAlreadyAttached if already attached.
func (r *Registry) Attach(dir string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.attached {
		return types.ErrAlreadyAttached
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := r.fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	dbPath := filepath.Join(dir, DBFile)
	// The index is derived data: start from an empty database.
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	db.SetMaxOpenConns(1)

	for _, ddl := range append(append([]string{}, schemaDDL...), indexDDL...) {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	skipped, err := r.loadAll(db, dir)
	if err != nil {
		db.Close()
		return fmt.Errorf("load workspaces: %w", err)
	}

	r.db = db
	r.dir = dir
	r.skipped = skipped
	r.attached = true
	r.log.Debug().Str("dir", dir).Int("skipped", len(skipped)).Msg("workspaces index attached")
	return nil
}

// Detach closes the database. Detach is idempotent.
func (r *Registry) Detach() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.attached {
		return nil
	}
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			return err
		}
		r.db = nil
	}
	r.attached = false
	return nil
}

// Dir returns the indexed folder.
func (r *Registry) Dir() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dir
}

// Skipped returns the names of the files that could not be read on Attach.
func (r *Registry) Skipped() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.skipped...)
}

// Names returns the indexed workspace names sorted alphabetically.
func (r *Registry) Names() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.attached {
		return nil, types.ErrDetached
	}
	rows, err := r.db.Query(`SELECT name FROM workspaces ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing workspaces: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning workspace row: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Has reports whether name is indexed.
func (r *Registry) Has(name string) (bool, error) {
	_, err := r.Get(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, types.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// Get returns the entry of name. Returns ErrNotFound if it is not indexed.
func (r *Registry) Get(name string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.attached {
		return Entry{}, types.ErrDetached
	}
	var e Entry
	var modified string
	err := r.db.QueryRow(
		`SELECT name, file, version, paths, files, refs, links, modified_at FROM workspaces WHERE name = ?`, name,
	).Scan(&e.Name, &e.File, &e.Version, &e.Paths, &e.Files, &e.Refs, &e.Links, &modified)
	if err == sql.ErrNoRows {
		return Entry{}, fmt.Errorf("%w: workspace %s", types.ErrNotFound, name)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("reading workspace %s: %w", name, err)
	}
	e.ModifiedAt, _ = time.Parse(time.RFC3339Nano, modified)

	rows, err := r.db.Query(`SELECT folder FROM workspace_folders WHERE name = ? ORDER BY folder`, name)
	if err != nil {
		return Entry{}, fmt.Errorf("reading folders of %s: %w", name, err)
	}
	defer rows.Close()
	for rows.Next() {
		var folder string
		if err := rows.Scan(&folder); err != nil {
			return Entry{}, err
		}
		e.Folders = append(e.Folders, folder)
	}
	return e, rows.Err()
}

// WithFolder returns the names of the workspaces that contain folder.
func (r *Registry) WithFolder(folder string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.attached {
		return nil, types.ErrDetached
	}
	rows, err := r.db.Query(`SELECT name FROM workspace_folders WHERE folder = ? ORDER BY name`, filepath.Clean(folder))
	if err != nil {
		return nil, fmt.Errorf("querying folder %s: %w", folder, err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Refresh re-reads the workspace file of name and replaces its entry.
func (r *Registry) Refresh(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.attached {
		return types.ErrDetached
	}
	e, err := r.entryFromFile(wio.PathFor(r.dir, name))
	if err != nil {
		return err
	}
	return r.replace(name, e)
}

// Rename moves the entry of oldName to newName. The file must already
// have been renamed on disk.
func (r *Registry) Rename(oldName, newName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.attached {
		return types.ErrDetached
	}
	e, err := r.entryFromFile(wio.PathFor(r.dir, newName))
	if err != nil {
		return err
	}
	return r.replace(oldName, e)
}

// Remove drops the entry of name. Returns ErrNotFound if absent.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.attached {
		return types.ErrDetached
	}
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	n, err := deleteEntry(tx, name)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: workspace %s", types.ErrNotFound, name)
	}
	return tx.Commit()
}

// replace deletes old and inserts e in one transaction.
// The caller must hold r.mu.
func (r *Registry) replace(old string, e Entry) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := deleteEntry(tx, old); err != nil {
		return err
	}
	if old != e.Name {
		if _, err := deleteEntry(tx, e.Name); err != nil {
			return err
		}
	}
	if err := insertEntry(tx, e); err != nil {
		return err
	}
	return tx.Commit()
}

// entryFromFile builds the index entry of one workspace file.
func (r *Registry) entryFromFile(file string) (Entry, error) {
	info, err := r.fs.Stat(file)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %s", types.ErrNotFound, file)
	}
	doc, err := wio.ReadDocument(r.fs, file)
	if err != nil {
		return Entry{}, err
	}
	wd := doc.Workspace
	e := Entry{
		Name:       wio.Name(file),
		File:       file,
		Version:    wd.Version,
		Paths:      len(wd.Paths),
		Refs:       len(wd.References),
		Links:      len(wd.Associations),
		ModifiedAt: info.ModTime().UTC(),
	}
	for _, p := range wd.Paths {
		e.Folders = append(e.Folders, filepath.Clean(p.ID))
		for _, root := range p.Roots {
			e.Files += len(root.Files)
		}
	}
	sort.Strings(e.Folders)
	return e, nil
}

func insertEntry(tx *sql.Tx, e Entry) error {
	_, err := tx.Exec(
		`INSERT INTO workspaces (name, file, version, paths, files, refs, links, modified_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Name, e.File, e.Version, e.Paths, e.Files, e.Refs, e.Links, e.ModifiedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting workspace %s: %w", e.Name, err)
	}
	for _, folder := range e.Folders {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO workspace_folders (name, folder) VALUES (?, ?)`, e.Name, folder); err != nil {
			return fmt.Errorf("inserting folder %s: %w", folder, err)
		}
	}
	return nil
}

// deleteEntry removes name and its folders. Returns the number of
// workspace rows removed.
func deleteEntry(tx *sql.Tx, name string) (int64, error) {
	if _, err := tx.Exec(`DELETE FROM workspace_folders WHERE name = ?`, name); err != nil {
		return 0, fmt.Errorf("deleting folders of %s: %w", name, err)
	}
	res, err := tx.Exec(`DELETE FROM workspaces WHERE name = ?`, name)
	if err != nil {
		return 0, fmt.Errorf("deleting workspace %s: %w", name, err)
	}
	return res.RowsAffected()
}
