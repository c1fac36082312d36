// nextbuilder CLI builds a Next.js app into per-page serverless deployable
// units plus static assets, and can run the app behind a dev proxy.
//
// Typical usage:
//
//	nextbuilder build          # package the app in the current directory
//	nextbuilder dev            # interactive mode behind the dev proxy
//	nextbuilder should-serve / # check the serve predicate for a path
package main

import "nextbuilder/cli/cmd"

func main() {
	cmd.Execute()
}
