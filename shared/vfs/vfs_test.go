package vfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
}

func TestNormalizePath(t *testing.T) {
	cases := []struct {
		in   string
		out  string
		fail bool
	}{
		{in: "a/b.js", out: "a/b.js"},
		{in: "/a/b.js", out: "a/b.js"},
		{in: "a/./b.js", out: "a/b.js"},
		{in: ".", out: ""},
		{in: "../escape.js", fail: true},
		{in: "a/../../escape.js", fail: true},
	}
	for _, tc := range cases {
		got, err := NormalizePath(tc.in)
		if tc.fail {
			require.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.out, got)
	}
}

func TestWalkAndDownloadRoundTrip(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"package.json":   `{}`,
		"pages/index.js": "index",
		"static/a.png":   "png",
	})

	files, err := Walk(src)
	require.NoError(t, err)
	require.Len(t, files, 3)
	require.Contains(t, files, "pages/index.js")

	dest := t.TempDir()
	require.NoError(t, Download(files, dest))

	raw, err := os.ReadFile(filepath.Join(dest, "pages", "index.js"))
	require.NoError(t, err)
	require.Equal(t, "index", string(raw))
}

func TestWalkDirMissingIsEmpty(t *testing.T) {
	files, err := WalkDir(t.TempDir(), "does/not/exist")
	require.NoError(t, err)
	require.Empty(t, files)
}

func TestListDirSkipsNested(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".next/BUILD_ID":        "abc",
		".next/server/deep.js":  "deep",
		".next/routes-manifest": "{}",
	})

	files, err := ListDir(root, ".next")
	require.NoError(t, err)
	require.Contains(t, files, ".next/BUILD_ID")
	require.Contains(t, files, ".next/routes-manifest")
	require.NotContains(t, files, ".next/server/deep.js")
}

func TestSubtreeAndRekey(t *testing.T) {
	files := FileSet{
		"static/a.png":  Blob{Data: []byte("a")},
		"static2/b.png": Blob{Data: []byte("b")},
		"pages/c.js":    Blob{Data: []byte("c")},
	}

	sub := Subtree(files, "static")
	require.Len(t, sub, 1)
	require.Contains(t, sub, "static/a.png")

	rekeyed := Rekey(files, func(key string) string {
		if key == "pages/c.js" {
			return ""
		}
		return "out/" + key
	})
	require.Len(t, rekeyed, 2)
	require.Contains(t, rekeyed, "out/static/a.png")
}

func TestDownloadRejectsEscape(t *testing.T) {
	err := Download(FileSet{"../evil": Blob{Data: []byte("x")}}, t.TempDir())
	require.Error(t, err)
}

func TestBlobRead(t *testing.T) {
	raw, err := ReadAll(Blob{Data: []byte("hello")})
	require.NoError(t, err)
	require.Equal(t, "hello", string(raw))
}
