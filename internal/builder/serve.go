package builder

import (
	"path"
	"regexp"
	"strings"

	"nextbuilder/shared/vfs"
)

// clientBundleRe matches unoptimized client page bundles requested by the
// browser in development builds.
var clientBundleRe = regexp.MustCompile(`^_next/static/unoptimized-build/pages/(.+)\.js$`)

// Candidate source files for a page name, probed in order.
var pageExtensions = []string{".js", ".ts", ".jsx", ".tsx", ".mdx"}

// ShouldServe decides whether this adapter is responsible for serving a
// request path, judged against the source file set (not build output). The
// platform uses it to route among multiple adapters.
func ShouldServe(entrypoint string, files vfs.FileSet, requestPath string) bool {
	entryDir := entryDirectory(entrypoint)
	requestPath = strings.TrimPrefix(requestPath, "/")

	if underDir(requestPath, path.Join(entryDir, "static")) {
		return true
	}

	local := requestPath
	if entryDir != "" {
		if !underDir(requestPath, entryDir) {
			return false
		}
		local = strings.TrimPrefix(strings.TrimPrefix(requestPath, entryDir), "/")
	}

	if m := clientBundleRe.FindStringSubmatch(local); m != nil {
		name := m[1]
		if specialPages[name] {
			return true
		}
		return pageExists(files, entryDir, name)
	}

	if strings.HasPrefix(local, "_next/") {
		return true
	}

	// Trailing slash is insignificant; "" and "/" check the index page.
	name := strings.TrimSuffix(local, "/")
	if name == "" {
		name = "index"
	}
	return pageExists(files, entryDir, name)
}

func underDir(p, dir string) bool {
	if dir == "" {
		return true
	}
	return p == dir || strings.HasPrefix(p, dir+"/")
}

// pageExists probes the source tree for a page file matching name, trying
// each extension and the directory-index form.
func pageExists(files vfs.FileSet, entryDir, name string) bool {
	base := path.Join(entryDir, "pages", name)
	for _, ext := range pageExtensions {
		if _, ok := files[base+ext]; ok {
			return true
		}
	}
	for _, ext := range pageExtensions {
		if _, ok := files[base+"/index"+ext]; ok {
			return true
		}
	}
	return false
}
