package builder

import (
	"path"

	"nextbuilder/shared/vfs"
)

// assembleRoutes merges compiled static output and source static
// passthrough files into the output set and emits the route table. Page
// keys, `_next/static` keys, and `static/` keys are disjoint prefixes, so
// no collisions occur between the three groups.
func assembleRoutes(output Output, srcFiles vfs.FileSet, projectDir, entryDir string) ([]RouteEntry, error) {
	staticOut, err := vfs.WalkDir(projectDir, path.Join(BuildOutputDir, "static"))
	if err != nil {
		return nil, err
	}
	prefix := path.Join(BuildOutputDir, "static") + "/"
	for key, f := range staticOut {
		rel := key[len(prefix):]
		output[path.Join(entryDir, "_next", "static", rel)] = StaticFile{f}
	}

	// Files the user keeps in static/ are served as-is, scoped to the
	// entry's project directory.
	for key, f := range vfs.Subtree(srcFiles, path.Join(entryDir, "static")) {
		output[key] = StaticFile{f}
	}

	routes := []RouteEntry{
		{
			Src:  path.Join("/", entryDir, "_next", "static", "(.*)"),
			Dest: path.Join(entryDir, "_next", "static", "$1"),
		},
		{
			Src:  path.Join("/", entryDir, "static", "(.*)"),
			Dest: path.Join(entryDir, "static", "$1"),
		},
	}
	return routes, nil
}
