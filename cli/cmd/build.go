package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"nextbuilder/internal/builder"
	"nextbuilder/internal/config"
	"nextbuilder/shared/vfs"
)

const outputDir = ".nextbuilder/output"

var writeCache bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the app in the current directory into deployable units",
	Long: `Runs the full pipeline against the current directory: classify the
next version, install dependencies, run the build script, and package every
compiled page into its own deployable unit.

Artifacts are written under ` + outputDir + `:
  - one .zip per page route
  - static assets as plain files
  - routes.json with the route table`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().BoolVar(&writeCache, "cache", false, "Also write the cache manifest (cache.json)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	files, err := vfs.Walk(cwd)
	if err != nil {
		return fmt.Errorf("failed to read source tree: %w", err)
	}
	// Artifacts from a previous run are not source.
	files = vfs.Rekey(files, func(key string) string {
		if strings.HasPrefix(key, ".nextbuilder/") || strings.HasPrefix(key, "node_modules/") {
			return ""
		}
		return key
	})

	cfg, err := config.Load(cwd)
	if err != nil {
		return err
	}

	workPath, err := os.MkdirTemp("", "nextbuilder-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(workPath)

	fmt.Printf("%s building in %s\n", cyan("→"), workPath)
	result, err := builder.Build(cmd.Context(), builder.BuildRequest{
		Files:      files,
		WorkPath:   workPath,
		Entrypoint: "package.json",
		Config:     cfg,
	})
	if err != nil {
		return err
	}

	if err := writeOutput(cwd, result); err != nil {
		return err
	}

	if writeCache {
		cache, err := builder.PrepareCache(workPath, "package.json")
		if err != nil {
			return err
		}
		if err := writeCacheManifest(cwd, cache); err != nil {
			return err
		}
		fmt.Printf("%s cache manifest: %d files\n", green("✓"), len(cache))
	}

	fmt.Printf("%s %d artifacts, %d routes\n", green("✓"), len(result.Output), len(result.Routes))
	return nil
}

func writeOutput(cwd string, result *builder.BuildResult) error {
	outDir := filepath.Join(cwd, filepath.FromSlash(outputDir))
	if err := os.RemoveAll(outDir); err != nil {
		return err
	}

	for key, artifact := range result.Output {
		switch a := artifact.(type) {
		case builder.Function:
			name := key
			if name == "" {
				name = "index"
			}
			target := filepath.Join(outDir, filepath.FromSlash(name)+".zip")
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			if err := os.WriteFile(target, a.Bytes(), 0644); err != nil {
				return err
			}
			fmt.Printf("  %s %s (%d bytes, %s)\n", yellow("λ"), key, a.Size(), a.Runtime)
		case builder.StaticFile:
			if err := vfs.Download(vfs.FileSet{key: a.File}, outDir); err != nil {
				return err
			}
		}
	}

	routes, err := json.MarshalIndent(result.Routes, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outDir, "routes.json"), append(routes, '\n'), 0644)
}

func writeCacheManifest(cwd string, cache vfs.FileSet) error {
	paths := make([]string, 0, len(cache))
	for key := range cache {
		paths = append(paths, key)
	}
	raw, err := json.MarshalIndent(paths, "", "  ")
	if err != nil {
		return err
	}
	target := filepath.Join(cwd, filepath.FromSlash(outputDir), "cache.json")
	return os.WriteFile(target, append(raw, '\n'), 0644)
}
