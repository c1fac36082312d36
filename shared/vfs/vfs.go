// Package vfs is the file currency between every build stage. A FileSet is a
// mapping from a normalized relative path (forward slashes, no leading slash)
// to a file handle; the source tree, the build output tree, and every lambda
// input are all FileSets.
package vfs

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"nextbuilder/shared"
)

var vlog = shared.PackageLogger("vfs", "🗂️ VFS")

// File is an opaque handle to file content.
type File interface {
	Open() (io.ReadCloser, error)
	Mode() os.FileMode
}

// FSRef is a File backed by a path on the local filesystem.
type FSRef struct {
	Path     string // absolute path on disk
	FileMode os.FileMode
}

func (r FSRef) Open() (io.ReadCloser, error) {
	return os.Open(r.Path)
}

func (r FSRef) Mode() os.FileMode {
	if r.FileMode == 0 {
		return 0644
	}
	return r.FileMode
}

// Blob is a File held in memory. Used for generated content like rendered
// launcher shims.
type Blob struct {
	Data     []byte
	FileMode os.FileMode
}

func (b Blob) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.Data)), nil
}

func (b Blob) Mode() os.FileMode {
	if b.FileMode == 0 {
		return 0644
	}
	return b.FileMode
}

// FileSet maps normalized relative paths to file handles. Keys are unique and
// always relative to a declared root.
type FileSet map[string]File

// NormalizePath converts an OS path into FileSet key form. It returns an
// error when the path escapes the root.
func NormalizePath(p string) (string, error) {
	p = filepath.ToSlash(p)
	p = path.Clean(strings.TrimPrefix(p, "/"))
	if p == "." {
		return "", nil
	}
	if p == ".." || strings.HasPrefix(p, "../") {
		return "", fmt.Errorf("path %q escapes the root", p)
	}
	return p, nil
}

// Walk builds a FileSet from every regular file under root, keyed relative
// to root.
func Walk(root string) (FileSet, error) {
	return WalkDir(root, "")
}

// WalkDir builds a FileSet from every regular file under root/dir, keyed
// relative to root. A missing dir yields an empty set, not an error.
func WalkDir(root, dir string) (FileSet, error) {
	out := FileSet{}
	start := filepath.Join(root, filepath.FromSlash(dir))
	if _, err := os.Stat(start); os.IsNotExist(err) {
		return out, nil
	}
	err := filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		key, err := NormalizePath(rel)
		if err != nil {
			vlog.Warn("skipping file outside root: %s", rel)
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out[key] = FSRef{Path: p, FileMode: info.Mode().Perm()}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", start, err)
	}
	return out, nil
}

// ListDir builds a FileSet from the direct children of root/dir only, keyed
// relative to root. Subdirectories are not descended into. A missing dir
// yields an empty set.
func ListDir(root, dir string) (FileSet, error) {
	out := FileSet{}
	start := filepath.Join(root, filepath.FromSlash(dir))
	entries, err := os.ReadDir(start)
	if os.IsNotExist(err) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", start, err)
	}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		key := path.Join(dir, e.Name())
		out[key] = FSRef{Path: filepath.Join(start, e.Name()), FileMode: info.Mode().Perm()}
	}
	return out, nil
}

// Download materializes a FileSet onto dest, creating parent directories as
// needed. This is the inverse of Walk.
func Download(files FileSet, dest string) error {
	for key, f := range files {
		target := filepath.Join(dest, filepath.FromSlash(key))
		if !strings.HasPrefix(target, filepath.Clean(dest)+string(filepath.Separator)) {
			return fmt.Errorf("refusing to write outside destination: %s", key)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("mkdir for %s: %w", key, err)
		}
		if err := writeFile(f, target); err != nil {
			return fmt.Errorf("write %s: %w", key, err)
		}
	}
	return nil
}

func writeFile(f File, target string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// Subtree returns the entries of files whose keys sit under prefix, keys
// unchanged.
func Subtree(files FileSet, prefix string) FileSet {
	out := FileSet{}
	for key, f := range files {
		if key == prefix || strings.HasPrefix(key, prefix+"/") {
			out[key] = f
		}
	}
	return out
}

// Rekey returns files with every key transformed by fn. Entries for which fn
// returns an empty string are dropped.
func Rekey(files FileSet, fn func(string) string) FileSet {
	out := FileSet{}
	for key, f := range files {
		if nk := fn(key); nk != "" {
			out[nk] = f
		}
	}
	return out
}

// Merge copies every entry of src into dst, overwriting on collision.
func Merge(dst, src FileSet) {
	for key, f := range src {
		dst[key] = f
	}
}

// ReadAll reads the full content of a file handle.
func ReadAll(f File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
