// Startup scan: every workspace file of the folder is read and indexed.
package sqlite

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/mesh-intelligence/workbench/internal/wio"
)

// scanDir lists the workspace files directly under dir, sorted by name.
// Hidden files, such as the temp files of an interrupted save, are ignored.
func scanDir(fs afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != wio.Ext {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// loadAll indexes every readable workspace file of dir in one transaction.
// Unreadable documents are skipped and returned by name.
func (r *Registry) loadAll(db *sql.DB, dir string) ([]string, error) {
	files, err := scanDir(r.fs, dir)
	if err != nil {
		return nil, err
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	var skipped []string
	for _, file := range files {
		e, err := r.entryFromFile(file)
		if err != nil {
			r.log.Warn().Str("file", file).Err(err).Msg("workspace skipped")
			skipped = append(skipped, wio.Name(file))
			continue
		}
		if err := insertEntry(tx, e); err != nil {
			return nil, fmt.Errorf("indexing %s: %w", file, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing load transaction: %w", err)
	}
	return skipped, nil
}
