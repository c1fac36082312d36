// Package builder turns a Next.js source tree into per-page serverless
// deployable units, static assets, and a route table. In interactive mode it
// instead proxies requests to a locally spawned dev server.
package builder

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"nextbuilder/internal/config"
	"nextbuilder/internal/devserver"
	"nextbuilder/internal/lambda"
	"nextbuilder/internal/version"
	"nextbuilder/shared"
	"nextbuilder/shared/npm"
	"nextbuilder/shared/vfs"
)

var blog = shared.PackageLogger("builder", "🧱 BUILD")

// BuildOutputDir is the directory the framework compiles into.
const BuildOutputDir = ".next"

// Meta carries per-invocation mode flags from the platform.
type Meta struct {
	IsDev       bool
	RequestPath string
}

// BuildRequest is the build invocation contract.
type BuildRequest struct {
	// Files is the user's source tree.
	Files vfs.FileSet
	// WorkPath is the scratch directory the source is materialized into.
	WorkPath string
	// Entrypoint anchors the project: its parent directory is the project
	// root for every subsequent operation.
	Entrypoint string
	Config     *config.Config
	Meta       Meta
	// Registry holds running dev servers across invocations. Required only
	// in interactive mode.
	Registry *devserver.Registry
}

// RouteEntry maps a source path matcher to a destination. The platform
// evaluates entries first match wins.
type RouteEntry struct {
	Src  string `json:"src"`
	Dest string `json:"dest"`
}

// Artifact is one entry of the merged build output: either a static file or
// a deployable function.
type Artifact interface {
	artifact()
}

// StaticFile is an output file served as-is.
type StaticFile struct {
	vfs.File
}

func (StaticFile) artifact() {}

// Function is a per-page deployable unit.
type Function struct {
	*lambda.Lambda
}

func (Function) artifact() {}

// Output maps public route keys to artifacts.
type Output map[string]Artifact

// BuildResult is what the platform receives back.
type BuildResult struct {
	Routes []RouteEntry
	Output Output
	// Watch lists directories to observe for incremental rebuilds in
	// interactive mode.
	Watch []string
}

// Build runs the full pipeline: materialize, classify, normalize, install,
// compile, discover, package. Each step's failure aborts the remainder.
func Build(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	if req.Config == nil {
		req.Config = config.Default()
	}
	if req.Meta.IsDev {
		return buildDev(ctx, req)
	}

	entryDir := entryDirectory(req.Entrypoint)
	projectDir := filepath.Join(req.WorkPath, filepath.FromSlash(entryDir))

	blog.Info("downloading user files to %s", req.WorkPath)
	if err := vfs.Download(req.Files, req.WorkPath); err != nil {
		return nil, fmt.Errorf("failed to materialize source files: %w", err)
	}

	if hasStaleBuildOutput(req.Files, entryDir) {
		blog.Warn("%s directory found in source files; it will be overwritten by this build and should not be uploaded", BuildOutputDir)
	}

	pkg, err := npm.LoadPackageJSON(projectDir)
	if err != nil {
		return nil, err
	}

	requirement, ok := pkg.NextVersionRequirement()
	if !ok {
		return nil, &ConfigError{
			Message: `no "next" dependency found in package.json; add next to dependencies and retry`,
		}
	}
	legacy, err := version.IsLegacy(requirement)
	if err != nil {
		return nil, &ConfigError{Message: err.Error()}
	}
	blog.Info("next version requirement %q classified as %s", requirement, modeName(legacy))

	if legacy {
		npm.RemoveLockfiles(projectDir)
		normalizeLegacyManifest(pkg)
		if err := pkg.Save(projectDir); err != nil {
			return nil, err
		}
	} else if pkg.EnsureBuildScript() {
		if err := pkg.Save(projectDir); err != nil {
			return nil, err
		}
	}

	pm := npm.DetectPackageManager(projectDir)

	if err := installWithCredentials(ctx, projectDir, pm); err != nil {
		return nil, &BuildError{Message: fmt.Sprintf("dependency installation failed: %v", err)}
	}

	blog.Info("running build script")
	if err := npm.RunScript(ctx, projectDir, pm, npm.BuildScriptName); err != nil {
		return nil, &BuildError{Message: fmt.Sprintf("build script failed: %v", err)}
	}

	if legacy {
		if err := npm.InstallProduction(ctx, projectDir, pm); err != nil {
			return nil, &BuildError{Message: fmt.Sprintf("production dependency installation failed: %v", err)}
		}
	}

	strat := selectStrategy(legacy)
	arts, err := strat.discover(projectDir)
	if err != nil {
		return nil, err
	}

	output, err := packagePages(ctx, strat, arts, entryDir, req.Config)
	if err != nil {
		return nil, err
	}

	routes, err := assembleRoutes(output, req.Files, projectDir, entryDir)
	if err != nil {
		return nil, err
	}

	return &BuildResult{
		Routes: routes,
		Output: output,
		Watch:  []string{path.Join(entryDir, BuildOutputDir)},
	}, nil
}

// installWithCredentials runs the full install, writing a scoped registry
// credentials file first when a token is present in the environment. The
// credentials file is removed on every exit path so the token never reaches
// later build stages or packaged output.
func installWithCredentials(ctx context.Context, projectDir string, pm npm.PackageManager) error {
	if token := os.Getenv(npm.AuthTokenEnv); token != "" {
		blog.Info("registry auth token present, scoping credentials to the install")
		cleanup, err := npm.WriteCredentials(projectDir, token)
		if err != nil {
			return err
		}
		defer cleanup()
	}
	return npm.Install(ctx, projectDir, pm)
}

// packagePages fans out one packaging operation per discovered page. Pages
// share only the read-only discovery file sets, so the fan-out is unordered.
func packagePages(ctx context.Context, strat strategy, arts *artifacts, entryDir string, cfg *config.Config) (Output, error) {
	output := Output{}
	results := make([]*lambda.Lambda, len(arts.pages))

	g, gctx := errgroup.WithContext(ctx)
	for i, page := range arts.pages {
		i, page := i, page
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			files, err := strat.assemble(page, arts)
			if err != nil {
				return err
			}
			unit, err := lambda.Create(lambda.Options{
				Files:   files,
				Handler: launcherHandler,
				Runtime: cfg.Runtime,
				MaxSize: cfg.MaxLambdaSize,
			})
			if err != nil {
				return fmt.Errorf("failed to package page %s: %w", page.Name, err)
			}
			blog.Debug("packaged page %s (%d bytes)", page.Name, unit.Size())
			results[i] = unit
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, page := range arts.pages {
		output[path.Join(entryDir, page.Route)] = Function{results[i]}
	}
	return output, nil
}

// entryDirectory is the project root for an entrypoint, "" when the
// entrypoint sits at the repository root.
func entryDirectory(entrypoint string) string {
	dir := path.Dir(strings.TrimPrefix(path.Clean("/"+entrypoint), "/"))
	if dir == "." {
		return ""
	}
	return dir
}

func hasStaleBuildOutput(files vfs.FileSet, entryDir string) bool {
	prefix := path.Join(entryDir, BuildOutputDir)
	for key := range files {
		if key == prefix || strings.HasPrefix(key, prefix+"/") {
			return true
		}
	}
	return false
}

func modeName(legacy bool) string {
	if legacy {
		return "legacy"
	}
	return "serverless"
}

// normalizeLegacyManifest rewrites the manifest into the flat shape the
// legacy pipeline expects: runtime dependencies only, a known build script,
// no unrecognized fields.
func normalizeLegacyManifest(pkg *npm.PackageJSON) {
	if pkg.Dependencies == nil {
		pkg.Dependencies = map[string]string{}
	}
	// next may be declared as a dev dependency; the production-only
	// reinstall would drop it, so promote it.
	if v, ok := pkg.DevDependencies["next"]; ok {
		if _, exists := pkg.Dependencies["next"]; !exists {
			pkg.Dependencies["next"] = v
		}
	}
	pkg.DevDependencies = nil
	pkg.Scripts = map[string]string{npm.BuildScriptName: "next build"}
	pkg.Rest = nil
}
