package npm

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

// AuthTokenEnv is the environment variable holding a registry auth token for
// installs from private scopes. Consumed once per build, never persisted.
const AuthTokenEnv = "NPM_AUTH_TOKEN"

const npmrcName = ".npmrc"

// Install runs a full dependency install in dir, preferring already-fetched
// packages.
func Install(ctx context.Context, dir string, pm PackageManager) error {
	nlog.Info("installing dependencies with %s in %s", pm, dir)
	switch pm {
	case Yarn:
		return run(ctx, dir, "yarn", "install")
	default:
		return run(ctx, dir, "npm", "install", "--prefer-offline")
	}
}

// InstallProduction reinstalls production-only dependencies, shedding
// dev-only packages. The legacy pipeline runs this after the build script so
// dev dependencies never reach the packaged output.
func InstallProduction(ctx context.Context, dir string, pm PackageManager) error {
	nlog.Info("pruning to production dependencies with %s", pm)
	switch pm {
	case Yarn:
		return run(ctx, dir, "yarn", "install", "--production")
	default:
		return run(ctx, dir, "npm", "install", "--prefer-offline", "--production")
	}
}

// RunScript runs a named manifest script to completion.
func RunScript(ctx context.Context, dir string, pm PackageManager, script string) error {
	nlog.Info("running script %q with %s", script, pm)
	switch pm {
	case Yarn:
		return run(ctx, dir, "yarn", "run", script)
	default:
		return run(ctx, dir, "npm", "run", script)
	}
}

// DevServerCommand builds (without starting) the command that serves the
// project's own dev server on the given port. Projects with a "dev" script
// get it invoked through the package manager; otherwise the locally
// installed next binary is used directly.
func DevServerCommand(dir string, pm PackageManager, pkg *PackageJSON, port int) *exec.Cmd {
	p := strconv.Itoa(port)
	var cmd *exec.Cmd
	if pkg != nil && pkg.HasScript("dev") {
		switch pm {
		case Yarn:
			cmd = exec.Command("yarn", "run", "dev", "--port", p)
		default:
			cmd = exec.Command("npm", "run", "dev", "--", "--port", p)
		}
	} else {
		next := filepath.Join(dir, "node_modules", ".bin", "next")
		cmd = exec.Command(next, "dev", "--port", p)
	}
	cmd.Dir = dir
	return cmd
}

func run(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %v failed: %w", name, args, err)
	}
	return nil
}

// WriteCredentials writes a scoped .npmrc carrying the given registry token
// into dir. It returns a cleanup function that removes the file again; the
// cleanup must run on every exit path from the install step so the token
// never leaks into later build stages or packaged output.
func WriteCredentials(dir, token string) (func(), error) {
	target := filepath.Join(dir, npmrcName)
	content := fmt.Sprintf("//registry.npmjs.org/:_authToken=%s\n", token)
	if err := os.WriteFile(target, []byte(content), 0600); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", npmrcName, err)
	}
	nlog.Debug("wrote scoped registry credentials to %s", npmrcName)
	return func() {
		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			nlog.Error("failed to remove %s: %v", npmrcName, err)
		}
	}, nil
}
