package builder

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// buildDev handles interactive mode: no artifacts are produced, requests are
// forwarded to the project's own dev server instead.
func buildDev(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	if req.Registry == nil {
		return nil, fmt.Errorf("interactive mode requires a dev server registry")
	}

	entryDir := entryDirectory(req.Entrypoint)
	projectDir := filepath.Join(req.WorkPath, filepath.FromSlash(entryDir))

	baseURL, err := req.Registry.GetOrStart(ctx, req.Entrypoint, projectDir, req.Config.Dev)
	if err != nil {
		return nil, err
	}

	// The matcher is regex based; a literal '?' in the source pattern would
	// be read as a metacharacter, so the query string never reaches it.
	requestPath := req.Meta.RequestPath
	if i := strings.IndexByte(requestPath, '?'); i >= 0 {
		requestPath = requestPath[:i]
	}
	requestPath = strings.TrimPrefix(requestPath, "/")

	return &BuildResult{
		Routes: []RouteEntry{
			{
				Src:  path.Join("/", entryDir, requestPath),
				Dest: baseURL + "/" + requestPath,
			},
		},
		Output: Output{},
	}, nil
}
