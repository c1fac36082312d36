package npm

import (
	"os"
	"path/filepath"
)

// PackageManager identifies the tool used to install and run scripts.
type PackageManager string

const (
	NPM  PackageManager = "npm"
	Yarn PackageManager = "yarn"
)

func (pm PackageManager) String() string {
	return string(pm)
}

// Lockfiles that may be checked in alongside the manifest.
const (
	NPMLockfile  = "package-lock.json"
	YarnLockfile = "yarn.lock"
)

// DetectPackageManager picks the package manager for a project directory by
// its lockfile. Yarn wins when both lockfiles are present since its lockfile
// is the more deliberate artifact; no lockfile at all means npm.
func DetectPackageManager(projectPath string) PackageManager {
	if _, err := os.Stat(filepath.Join(projectPath, YarnLockfile)); err == nil {
		nlog.Debug("found %s, using yarn", YarnLockfile)
		return Yarn
	}
	if _, err := os.Stat(filepath.Join(projectPath, NPMLockfile)); err == nil {
		nlog.Debug("found %s, using npm", NPMLockfile)
		return NPM
	}
	return NPM
}

// RemoveLockfiles deletes any checked-in lockfiles from the project
// directory. Absence is not an error; the legacy pipeline calls this before
// its full install so the later production-only reinstall does not fight a
// stale lockfile.
func RemoveLockfiles(projectPath string) {
	for _, name := range []string{NPMLockfile, YarnLockfile} {
		err := os.Remove(filepath.Join(projectPath, name))
		if err == nil {
			nlog.Info("removed checked-in lockfile %s", name)
		} else if !os.IsNotExist(err) {
			nlog.Warn("could not remove %s: %v", name, err)
		}
	}
}
