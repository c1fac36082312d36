// Package lambda packages a file set into an immutable deployable unit the
// platform can upload and invoke.
package lambda

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"sort"

	"nextbuilder/shared"
	"nextbuilder/shared/vfs"
)

var llog = shared.PackageLogger("lambda", "λ LAMBDA")

// Lambda is an opaque deployable compute unit: a zipped file set with a
// designated handler entry point and a runtime tag. Immutable once created.
type Lambda struct {
	Handler string
	Runtime string

	zip []byte
}

// Options configure Create.
type Options struct {
	Files   vfs.FileSet
	Handler string
	Runtime string
	// MaxSize, when positive, is the size budget for the zipped unit.
	MaxSize int64
}

// Size returns the zipped artifact size in bytes.
func (l *Lambda) Size() int64 {
	return int64(len(l.zip))
}

// Bytes exposes the zipped artifact for upload.
func (l *Lambda) Bytes() []byte {
	return l.zip
}

// Create zips the file set deterministically (entries sorted by path) and
// stamps it with the handler and runtime.
func Create(opts Options) (*Lambda, error) {
	if opts.Handler == "" {
		return nil, fmt.Errorf("lambda handler must not be empty")
	}
	if opts.Runtime == "" {
		return nil, fmt.Errorf("lambda runtime must not be empty")
	}

	keys := make([]string, 0, len(opts.Files))
	for key := range opts.Files {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, key := range keys {
		if err := addEntry(zw, key, opts.Files[key]); err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", key, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	if opts.MaxSize > 0 && int64(buf.Len()) > opts.MaxSize {
		llog.Warn("unit exceeds size budget: %d > %d bytes", buf.Len(), opts.MaxSize)
	}

	return &Lambda{
		Handler: opts.Handler,
		Runtime: opts.Runtime,
		zip:     buf.Bytes(),
	}, nil
}

func addEntry(zw *zip.Writer, key string, f vfs.File) error {
	hdr := &zip.FileHeader{
		Name:   key,
		Method: zip.Deflate,
	}
	hdr.SetMode(f.Mode())

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	_, err = io.Copy(w, rc)
	return err
}
