// Package wio reads and writes workspace documents on an afero file system.
// Writes go through a temp file, fsync and rename so that a crash never
// leaves a half-written workspace behind.
package wio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/mesh-intelligence/workbench/pkg/types"
	"github.com/mesh-intelligence/workbench/pkg/workspace"
)

// Ext is the file extension of a persisted workspace.
const Ext = ".wjson"

// Save writes the document of ws to path atomically.
func Save(fs afero.Fs, path string, ws *workspace.Workspace) error {
	data, err := json.MarshalIndent(ws.Document(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding workspace %s: %w", ws.ID(), err)
	}
	return writeAtomic(fs, path, data)
}

// Load reads the workspace stored at path. A document that fails
// validation is reported as ErrInvalidDocument and nothing is returned.
func Load(fs afero.Fs, path string, cfg types.Config, opts ...workspace.Option) (*workspace.Workspace, error) {
	doc, err := ReadDocument(fs, path)
	if err != nil {
		return nil, err
	}
	opts = append([]workspace.Option{workspace.WithFs(fs)}, opts...)
	ws, err := workspace.FromDocument(doc, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return ws, nil
}

// ReadDocument decodes the document stored at path without building a
// workspace.
func ReadDocument(fs afero.Fs, path string) (workspace.Document, error) {
	var doc workspace.Document
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return doc, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("%w: %s: %v", types.ErrInvalidDocument, path, err)
	}
	return doc, nil
}

// Name returns the workspace name stored in a file name: the basename
// without Ext.
func Name(path string) string {
	return strings.TrimSuffix(filepath.Base(path), Ext)
}

// PathFor returns the file that holds workspace name in dir.
func PathFor(dir, name string) string {
	return filepath.Join(dir, name+Ext)
}

// UniqueName returns base, or base-1, base-2 and so on, choosing the first
// name with no workspace file in dir.
func UniqueName(fs afero.Fs, dir, base string) (string, error) {
	for i := 0; ; i++ {
		name := base
		if i > 0 {
			name = base + "-" + strconv.Itoa(i)
		}
		ok, err := afero.Exists(fs, PathFor(dir, name))
		if err != nil {
			return "", fmt.Errorf("probing %s: %w", name, err)
		}
		if !ok {
			return name, nil
		}
	}
}

// writeAtomic writes data using the temp-file, fsync, rename pattern.
func writeAtomic(fs afero.Fs, path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := afero.TempFile(fs, dir, ".wjson-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	if _, err := w.Write(data); err != nil {
		tmp.Close()
		fs.Remove(tmpName)
		return fmt.Errorf("writing document: %w", err)
	}
	if err := w.WriteByte('\n'); err != nil {
		tmp.Close()
		fs.Remove(tmpName)
		return fmt.Errorf("writing newline: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		fs.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		fs.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		fs.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := fs.Rename(tmpName, path); err != nil {
		fs.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
