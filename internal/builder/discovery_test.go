package builder

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

func TestRouteFromBundle(t *testing.T) {
	cases := []struct {
		bundle string
		route  string
	}{
		{"about.js", "about"},
		{"blog/index.js", "blog"},
		{"index.js", ""},
		{"blog/post.js", "blog/post"},
		{"_app.js", "_app"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.route, routeFromBundle(tc.bundle), tc.bundle)
	}
}

func TestLegacyDiscoverRequiresBuildID(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		".next/routes-manifest.json": "{}",
	})

	_, err := legacyStrategy{}.discover(dir)
	require.Error(t, err)
	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	require.Contains(t, buildErr.Message, "did not invoke")
}

func TestLegacyDiscover(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		".next/BUILD_ID":                                 "abc123\n",
		".next/build-manifest":                           "{}",
		".next/server/runtime.js":                        "chunk",
		".next/server/static/abc123/pages/index.js":      "idx",
		".next/server/static/abc123/pages/about.js":      "about",
		".next/server/static/abc123/pages/blog/index.js": "blog",
		".next/server/static/abc123/pages/_app.js":       "app",
		".next/server/static/abc123/pages/_document.js":  "doc",
		"node_modules/next/dist/server.js":               "srv",
		"node_modules/.cache/terser/x":                   "cache",
		"next.config.js":                                 "module.exports = {};",
	})

	arts, err := legacyStrategy{}.discover(dir)
	require.NoError(t, err)
	require.Equal(t, "abc123", arts.buildID)

	routes := map[string]bool{}
	for _, p := range arts.pages {
		routes[p.Route] = true
	}
	require.Equal(t, map[string]bool{"": true, "about": true, "blog": true}, routes)

	require.Contains(t, arts.support, "node_modules/next/dist/server.js")
	require.NotContains(t, arts.support, "node_modules/.cache/terser/x")
	require.Contains(t, arts.support, ".next/build-manifest")
	require.Contains(t, arts.support, ".next/server/runtime.js")
	require.Contains(t, arts.support, ".next/server/static/abc123/pages/_app.js")
	require.Contains(t, arts.support, "next.config.js")
	require.Equal(t, "module.exports = {};", string(arts.nextConfig))
}

func TestServerlessDiscoverZeroPagesFails(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"next.config.js": "module.exports = { target: 'server' };",
	})

	_, err := serverlessStrategy{}.discover(dir)
	require.Error(t, err)
	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	require.Contains(t, buildErr.Message, "no serverless pages")
	// The discovered framework config is surfaced to aid debugging.
	require.Contains(t, buildErr.Message, "target: 'server'")
}

func TestServerlessDiscover(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		".next/serverless/pages/index.js":   "idx",
		".next/serverless/pages/about.js":   "about",
		".next/serverless/pages/_error.js":  "err",
		".next/serverless/pages/about.html": "not a bundle",
		"assets/logo.svg":                   "svg",
	})

	arts, err := serverlessStrategy{}.discover(dir)
	require.NoError(t, err)

	routes := map[string]bool{}
	for _, p := range arts.pages {
		routes[p.Route] = true
	}
	require.Equal(t, map[string]bool{"": true, "about": true}, routes)
	require.Contains(t, arts.support, "assets/logo.svg")
}
