/*
nextbuilder - build adapter that turns a Next.js app into per-page
serverless functions plus static assets, or proxies to a local dev server.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nextbuilder",
	Short: "Build a Next.js app into per-page serverless functions",
	Long: fmt.Sprintf(`%s

Turns a Next.js source tree into one deployable unit per page, a set of
static assets, and a route table the platform can serve from.

%s
%s  Classifies the next version (legacy vs serverless build)
%s  Installs dependencies and runs the project build script
%s  Packages every compiled page into its own unit
%s  Proxies to a live dev server in interactive mode

Run '%s' to see available commands.
`,
		bold("🧱 nextbuilder"),
		bold("What it does:"),
		green("✓"),
		green("✓"),
		green("✓"),
		green("✓"),
		cyan("nextbuilder --help"),
	),
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("✗"), err)
		os.Exit(1)
	}
}

func init() {
	// Local overrides like NPM_AUTH_TOKEN may live in a .env file.
	_ = godotenv.Load()
}
