package views

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// trashName returns the destination of src inside dir. A name already
// taken gets a unique suffix before its extension.
func trashName(fs afero.Fs, dir, src string) (string, error) {
	base := filepath.Base(src)
	dst := filepath.Join(dir, base)
	ok, err := afero.Exists(fs, dst)
	if err != nil {
		return "", err
	}
	if !ok {
		return dst, nil
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, stem+"_"+uuid.NewString()+ext), nil
}

// moveToTrash moves src into dir and returns its new name. When rename
// fails, as it does across devices, the file is copied then removed.
func moveToTrash(fs afero.Fs, dir, src string) (string, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating trash %s: %w", dir, err)
	}
	dst, err := trashName(fs, dir, src)
	if err != nil {
		return "", err
	}
	if err := fs.Rename(src, dst); err == nil {
		return dst, nil
	}
	if err := copyFile(fs, src, dst); err != nil {
		fs.Remove(dst)
		return "", fmt.Errorf("moving %s to trash: %w", src, err)
	}
	if err := fs.Remove(src); err != nil {
		return "", fmt.Errorf("removing %s: %w", src, err)
	}
	return dst, nil
}

func copyFile(fs afero.Fs, src, dst string) error {
	in, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := fs.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
