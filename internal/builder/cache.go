package builder

import (
	"path"
	"path/filepath"

	"nextbuilder/internal/version"
	"nextbuilder/shared/npm"
	"nextbuilder/shared/vfs"
)

// PrepareCache decides which output paths are persisted for the next build.
// Legacy mode caches nothing: its full install and production-only reinstall
// would contaminate each other across runs. Serverless mode caches the
// dependency tree, the compiler cache, and both lockfiles.
func PrepareCache(workPath, entrypoint string) (vfs.FileSet, error) {
	entryDir := entryDirectory(entrypoint)
	projectDir := filepath.Join(workPath, filepath.FromSlash(entryDir))

	pkg, err := npm.LoadPackageJSON(projectDir)
	if err != nil {
		return nil, err
	}
	requirement, ok := pkg.NextVersionRequirement()
	if !ok {
		return nil, &ConfigError{Message: `no "next" dependency found in package.json`}
	}
	legacy, err := version.IsLegacy(requirement)
	if err != nil {
		return nil, &ConfigError{Message: err.Error()}
	}
	if legacy {
		blog.Info("legacy mode, skipping cache")
		return vfs.FileSet{}, nil
	}

	cache := vfs.FileSet{}
	for _, dir := range []string{
		path.Join(entryDir, "node_modules"),
		path.Join(entryDir, BuildOutputDir, "cache"),
	} {
		found, err := vfs.WalkDir(workPath, dir)
		if err != nil {
			return nil, err
		}
		vfs.Merge(cache, found)
	}
	topLevel, err := vfs.ListDir(workPath, entryDir)
	if err != nil {
		return nil, err
	}
	for _, name := range []string{npm.NPMLockfile, npm.YarnLockfile} {
		key := path.Join(entryDir, name)
		if f, ok := topLevel[key]; ok {
			cache[key] = f
		}
	}

	blog.Info("caching %d files for the next build", len(cache))
	return cache, nil
}
