package lambda

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"nextbuilder/shared/vfs"
)

func TestCreate(t *testing.T) {
	unit, err := Create(Options{
		Files: vfs.FileSet{
			"launcher.js": vfs.Blob{Data: []byte("exports.launcher = 1;")},
			"page.js":     vfs.Blob{Data: []byte("module.exports = {};")},
		},
		Handler: "launcher.launcher",
		Runtime: "nodejs8.10",
	})
	require.NoError(t, err)
	require.Equal(t, "launcher.launcher", unit.Handler)
	require.Equal(t, "nodejs8.10", unit.Runtime)
	require.Equal(t, int64(len(unit.Bytes())), unit.Size())

	zr, err := zip.NewReader(bytes.NewReader(unit.Bytes()), unit.Size())
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	// Entries are sorted for determinism.
	require.Equal(t, "launcher.js", zr.File[0].Name)
	require.Equal(t, "page.js", zr.File[1].Name)
}

func TestCreateValidates(t *testing.T) {
	_, err := Create(Options{Files: vfs.FileSet{}, Runtime: "nodejs8.10"})
	require.Error(t, err)

	_, err = Create(Options{Files: vfs.FileSet{}, Handler: "launcher.launcher"})
	require.Error(t, err)
}

func TestCreateDeterministic(t *testing.T) {
	files := vfs.FileSet{
		"b.js": vfs.Blob{Data: []byte("b")},
		"a.js": vfs.Blob{Data: []byte("a")},
		"c.js": vfs.Blob{Data: []byte("c")},
	}
	first, err := Create(Options{Files: files, Handler: "h", Runtime: "r"})
	require.NoError(t, err)
	second, err := Create(Options{Files: files, Handler: "h", Runtime: "r"})
	require.NoError(t, err)
	require.Equal(t, first.Bytes(), second.Bytes())
}
