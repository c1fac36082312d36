package builder

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"nextbuilder/shared/vfs"
)

// Special pages are never deployed as standalone routes; they are bundled
// into other units as dependencies.
var specialPages = map[string]bool{
	"_app":      true,
	"_error":    true,
	"_document": true,
}

const nextConfigFile = "next.config.js"

// pageBundle is one compiled page discovered in the build output.
type pageBundle struct {
	// Name is the bundle path relative to the compiled pages directory,
	// e.g. "blog/index.js".
	Name string
	// Route is the public route name derived from Name.
	Route string
	File  vfs.File
}

// artifacts is everything discovery hands to the packaging strategy. All
// file sets are read-only from here on.
type artifacts struct {
	pages []pageBundle
	// support is bundled into every unit: shared runtime chunks and
	// dependencies (legacy) or the assets directory (serverless). Keys are
	// relative to the project directory.
	support vfs.FileSet
	buildID string
	// nextConfig is the framework config content when present, surfaced in
	// error messages.
	nextConfig []byte
}

// routeFromBundle derives the route name: strip the compiled-file extension
// and collapse a trailing index segment to the directory root.
func routeFromBundle(name string) string {
	r := strings.TrimSuffix(name, path.Ext(name))
	if r == "index" {
		return ""
	}
	return strings.TrimSuffix(r, "/index")
}

// discoverPages enumerates compiled .js bundles under projectDir/dir, split
// into routable pages and the special-page set.
func discoverPages(projectDir, dir string) (pages []pageBundle, specials vfs.FileSet, err error) {
	found, err := vfs.WalkDir(projectDir, dir)
	if err != nil {
		return nil, nil, err
	}
	specials = vfs.FileSet{}
	for key, f := range found {
		if path.Ext(key) != ".js" {
			continue
		}
		name := strings.TrimPrefix(key, dir+"/")
		route := routeFromBundle(name)
		if specialPages[route] {
			specials[key] = f
			continue
		}
		pages = append(pages, pageBundle{Name: name, Route: route, File: f})
	}
	return pages, specials, nil
}

func readNextConfig(projectDir string) (vfs.File, []byte) {
	p := filepath.Join(projectDir, nextConfigFile)
	info, err := os.Stat(p)
	if err != nil || !info.Mode().IsRegular() {
		return nil, nil
	}
	content, err := os.ReadFile(p)
	if err != nil {
		return nil, nil
	}
	return vfs.FSRef{Path: p, FileMode: info.Mode().Perm()}, content
}

// legacyStrategy packages whole-app units: every page carries the complete
// dependency tree plus the shared server chunks.
type legacyStrategy struct{}

func (legacyStrategy) discover(projectDir string) (*artifacts, error) {
	buildIDRaw, err := os.ReadFile(filepath.Join(projectDir, BuildOutputDir, "BUILD_ID"))
	if err != nil {
		return nil, &BuildError{
			Message: fmt.Sprintf("no BUILD_ID file found inside %s: the build script did not invoke `next build`; make sure your build script runs the next compiler", BuildOutputDir),
		}
	}
	buildID := strings.TrimSpace(string(buildIDRaw))

	support := vfs.FileSet{}

	nodeModules, err := vfs.WalkDir(projectDir, "node_modules")
	if err != nil {
		return nil, err
	}
	for key, f := range nodeModules {
		// The package manager's cache is not needed at runtime and can be
		// enormous.
		if strings.HasPrefix(key, "node_modules/.cache/") {
			continue
		}
		support[key] = f
	}

	topLevel, err := vfs.ListDir(projectDir, BuildOutputDir)
	if err != nil {
		return nil, err
	}
	vfs.Merge(support, topLevel)

	serverFiles, err := vfs.ListDir(projectDir, path.Join(BuildOutputDir, "server"))
	if err != nil {
		return nil, err
	}
	vfs.Merge(support, serverFiles)

	pagesDir := path.Join(BuildOutputDir, "server", "static", buildID, "pages")
	pages, specials, err := discoverPages(projectDir, pagesDir)
	if err != nil {
		return nil, err
	}
	vfs.Merge(support, specials)

	configFile, configContent := readNextConfig(projectDir)
	if configFile != nil {
		support[nextConfigFile] = configFile
	}

	blog.Info("discovered %d legacy pages for build %s", len(pages), buildID)
	return &artifacts{
		pages:      pages,
		support:    support,
		buildID:    buildID,
		nextConfig: configContent,
	}, nil
}

// serverlessStrategy packages one self-contained unit per compiled
// serverless page bundle.
type serverlessStrategy struct{}

func (serverlessStrategy) discover(projectDir string) (*artifacts, error) {
	pagesDir := path.Join(BuildOutputDir, "serverless", "pages")
	pages, specials, err := discoverPages(projectDir, pagesDir)
	if err != nil {
		return nil, err
	}

	_, configContent := readNextConfig(projectDir)
	if len(pages) == 0 && len(specials) == 0 {
		msg := fmt.Sprintf("no serverless pages were built under %s: the next compiler did not run in serverless mode", pagesDir)
		if configContent != nil {
			msg += fmt.Sprintf("\nfound %s:\n%s", nextConfigFile, configContent)
		}
		return nil, &BuildError{Message: msg}
	}

	support, err := vfs.WalkDir(projectDir, "assets")
	if err != nil {
		return nil, err
	}

	blog.Info("discovered %d serverless pages", len(pages))
	return &artifacts{
		pages:      pages,
		support:    support,
		nextConfig: configContent,
	}, nil
}
