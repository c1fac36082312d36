package builder

import (
	"path"

	"nextbuilder/shared/vfs"
)

// strategy is the capability "discover compiled pages and assemble a
// deployable file set". The driver selects a variant once per invocation,
// based on the version classification, and never branches on mode again.
type strategy interface {
	discover(projectDir string) (*artifacts, error)
	assemble(page pageBundle, arts *artifacts) (vfs.FileSet, error)
}

func selectStrategy(legacy bool) strategy {
	if legacy {
		return legacyStrategy{}
	}
	return serverlessStrategy{}
}

// assemble for legacy bundles the whole app: shared dependency and server
// chunks, the page's own bundle at its compiled path, and a launcher
// rendered with this page's route baked in.
func (legacyStrategy) assemble(page pageBundle, arts *artifacts) (vfs.FileSet, error) {
	files := vfs.FileSet{}
	vfs.Merge(files, arts.support)

	bundleKey := path.Join(BuildOutputDir, "server", "static", arts.buildID, "pages", page.Name)
	files[bundleKey] = page.File

	launcher, err := renderLegacyLauncher("/" + page.Route)
	if err != nil {
		return nil, err
	}
	files[launcherFile] = vfs.Blob{Data: launcher}
	files[bridgeFile] = vfs.Blob{Data: []byte(bridgeSource)}
	return files, nil
}

// assemble for serverless pairs the page's self-contained bundle with the
// launcher shim and any discovered assets.
func (serverlessStrategy) assemble(page pageBundle, arts *artifacts) (vfs.FileSet, error) {
	files := vfs.FileSet{}
	vfs.Merge(files, arts.support)

	files[pageFile] = page.File
	files[launcherFile] = vfs.Blob{Data: []byte(serverlessLauncherSource)}
	files[bridgeFile] = vfs.Blob{Data: []byte(bridgeSource)}
	return files, nil
}
