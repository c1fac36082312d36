// Package devserver owns the process-wide registry of running development
// servers. At most one server is ever started per entry point; later
// interactive requests reuse the running instance.
package devserver

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"strings"
	"sync"

	"nextbuilder/internal/config"
	"nextbuilder/shared"
	"nextbuilder/shared/npm"
)

var dlog = shared.PackageLogger("devserver", "🔁 DEV")

// Registry maps entry points to the base URL of their running dev server.
// Populated lazily, never cleared within a process.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*serverEntry
}

type serverEntry struct {
	// mu serializes the start for this entry point: two interleaved first
	// requests must not spawn two servers.
	mu  sync.Mutex
	url string
}

func NewRegistry() *Registry {
	return &Registry{entries: map[string]*serverEntry{}}
}

// GetOrStart returns the base URL of the dev server for entrypoint,
// starting one in projectDir if none is running. The call blocks until the
// server's startup output signals readiness or ctx is cancelled.
func (r *Registry) GetOrStart(ctx context.Context, entrypoint, projectDir string, cfg config.DevConfig) (string, error) {
	r.mu.Lock()
	entry, ok := r.entries[entrypoint]
	if !ok {
		entry = &serverEntry{}
		r.entries[entrypoint] = entry
	}
	r.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.url != "" {
		dlog.Debug("reusing dev server for %s at %s", entrypoint, entry.url)
		return entry.url, nil
	}

	url, err := start(ctx, projectDir, cfg)
	if err != nil {
		return "", err
	}
	entry.url = url
	dlog.Success("dev server for %s ready at %s", entrypoint, url)
	return url, nil
}

func start(ctx context.Context, projectDir string, cfg config.DevConfig) (string, error) {
	pkg, err := npm.LoadPackageJSON(projectDir)
	if err != nil {
		return "", err
	}
	pm := npm.DetectPackageManager(projectDir)

	port, err := freePort(cfg.BasePort, cfg.PortAttempts)
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("http://localhost:%d", port)

	cmd := npm.DevServerCommand(projectDir, pm, pkg, port)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", err
	}

	dlog.Info("starting dev server in %s on port %d", projectDir, port)
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start dev server: %w", err)
	}

	ready := make(chan struct{})
	exited := make(chan error, 1)
	go watchOutput(cmd, io.MultiReader(stdout, stderr), url, ready, exited)

	select {
	case <-ready:
		return url, nil
	case err := <-exited:
		return "", fmt.Errorf("dev server exited before becoming ready: %v", err)
	case <-ctx.Done():
		// The process is left running: a later request may still find it
		// ready, and the registry entry was never set so a retry is safe.
		return "", ctx.Err()
	}
}

// watchOutput scans the server's combined output for the readiness signal
// (a line containing the constructed URL), then keeps draining output to
// our own stdout for the life of the process. Once the output closes it
// reaps the child so an exited server does not linger as a zombie.
func watchOutput(cmd *exec.Cmd, r io.Reader, url string, ready chan<- struct{}, exited chan<- error) {
	scanner := bufio.NewScanner(r)
	// Webpack stats lines can exceed bufio's default token limit.
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	signalled := false
	for scanner.Scan() {
		line := scanner.Text()
		fmt.Fprintln(os.Stdout, line)
		if !signalled && strings.Contains(line, url) {
			signalled = true
			close(ready)
		}
	}
	err := cmd.Wait()
	if !signalled {
		if err == nil {
			err = fmt.Errorf("exited without readiness signal")
		}
		exited <- err
	}
}

// freePort probes consecutive ports starting at base and returns the first
// one that can be bound.
func freePort(base, attempts int) (int, error) {
	for port := base; port < base+attempts; port++ {
		l, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err != nil {
			continue
		}
		l.Close()
		return port, nil
	}
	return 0, fmt.Errorf("no free port found in range %d-%d", base, base+attempts-1)
}
