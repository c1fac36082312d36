package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"nextbuilder/internal/builder"
	"nextbuilder/internal/config"
	"nextbuilder/internal/devserver"
	"nextbuilder/internal/watch"
	"nextbuilder/shared/vfs"
)

var devCmd = &cobra.Command{
	Use:   "dev",
	Short: "Run the app in interactive mode behind the dev proxy",
	Long: `Starts the project's own dev server (once per entry point) and prints
the proxy route the platform would use. Blocks until interrupted, logging
build-output changes as they happen.`,
	RunE: runDev,
}

func init() {
	rootCmd.AddCommand(devCmd)
}

func runDev(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	files, err := vfs.Walk(cwd)
	if err != nil {
		return err
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := builder.Build(ctx, builder.BuildRequest{
		Files:      files,
		WorkPath:   cwd,
		Entrypoint: "package.json",
		Config:     cfg,
		Meta:       builder.Meta{IsDev: true, RequestPath: "/"},
		Registry:   devserver.NewRegistry(),
	})
	if err != nil {
		return err
	}

	for _, route := range result.Routes {
		fmt.Printf("%s %s %s %s\n", green("✓"), bold(route.Src), cyan("→"), route.Dest)
	}

	// The framework recompiles into .next as files change; surface that.
	err = watch.Watch(ctx, []string{filepath.Join(cwd, builder.BuildOutputDir)}, func(p string) {
		if rel, relErr := filepath.Rel(cwd, p); relErr == nil {
			fmt.Printf("%s rebuilt %s\n", yellow("↻"), rel)
		}
	})
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
