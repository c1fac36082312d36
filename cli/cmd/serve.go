package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nextbuilder/internal/builder"
	"nextbuilder/shared/vfs"
)

var serveCmd = &cobra.Command{
	Use:   "should-serve <request-path>",
	Short: "Check whether this adapter would serve a request path",
	Long: `Runs the serve predicate against the source tree in the current
directory. The platform uses the same check to route a request among
multiple adapters. Exits 0 when this adapter is responsible, 1 otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: runShouldServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runShouldServe(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	files, err := vfs.Walk(cwd)
	if err != nil {
		return err
	}

	if builder.ShouldServe("package.json", files, args[0]) {
		fmt.Printf("%s %s\n", green("✓"), args[0])
		return nil
	}
	fmt.Printf("%s %s\n", red("✗"), args[0])
	os.Exit(1)
	return nil
}
