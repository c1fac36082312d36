// Package npm drives the Node toolchain: reading and rewriting package.json,
// detecting the package manager, running installs and build scripts, and
// scoping registry credentials to a single install.
package npm

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"nextbuilder/shared"
)

var nlog = shared.PackageLogger("npm", "📦 NPM")

const (
	// BuildScriptName is the script the platform invokes to compile the app.
	BuildScriptName = "nextbuilder-build"

	// DefaultBuildCommand is injected when the manifest has no build script
	// of its own.
	DefaultBuildCommand = "next build --lambdas"
)

// PackageJSON is the subset of the manifest this system reads or rewrites.
// Unknown fields survive a load/save round trip via Rest.
type PackageJSON struct {
	Name            string            `json:"name,omitempty"`
	Version         string            `json:"version,omitempty"`
	Scripts         map[string]string `json:"scripts,omitempty"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`

	Rest map[string]json.RawMessage `json:"-"`
}

// LoadPackageJSON reads dir/package.json. A missing file is not an error:
// the caller gets an empty manifest, matching the behavior of the toolchain
// itself.
func LoadPackageJSON(dir string) (*PackageJSON, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if os.IsNotExist(err) {
		nlog.Warn("no package.json found in %s, continuing with an empty manifest", dir)
		return &PackageJSON{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read package.json: %w", err)
	}
	return ParsePackageJSON(raw)
}

// ParsePackageJSON decodes a manifest, keeping unrecognized top-level fields.
func ParsePackageJSON(raw []byte) (*PackageJSON, error) {
	var pkg PackageJSON
	if err := json.Unmarshal(raw, &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse package.json: %w", err)
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, fmt.Errorf("failed to parse package.json: %w", err)
	}
	for _, known := range []string{"name", "version", "scripts", "dependencies", "devDependencies"} {
		delete(all, known)
	}
	pkg.Rest = all
	return &pkg, nil
}

// Save overwrites dir/package.json in place.
func (p *PackageJSON) Save(dir string) error {
	out := map[string]interface{}{}
	for k, v := range p.Rest {
		out[k] = v
	}
	if p.Name != "" {
		out["name"] = p.Name
	}
	if p.Version != "" {
		out["version"] = p.Version
	}
	if len(p.Scripts) > 0 {
		out["scripts"] = p.Scripts
	}
	if len(p.Dependencies) > 0 {
		out["dependencies"] = p.Dependencies
	}
	if len(p.DevDependencies) > 0 {
		out["devDependencies"] = p.DevDependencies
	}

	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode package.json: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "package.json"), append(raw, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write package.json: %w", err)
	}
	return nil
}

// NextVersionRequirement returns the declared version range for the next
// dependency, looking at dependencies then devDependencies. ok is false when
// the framework is not declared at all.
func (p *PackageJSON) NextVersionRequirement() (string, bool) {
	if v, ok := p.Dependencies["next"]; ok {
		return v, true
	}
	if v, ok := p.DevDependencies["next"]; ok {
		return v, true
	}
	return "", false
}

// HasScript reports whether the manifest declares the named script.
func (p *PackageJSON) HasScript(name string) bool {
	_, ok := p.Scripts[name]
	return ok
}

// EnsureBuildScript injects the platform build script when absent, leaving
// every other script untouched. It reports whether the manifest was changed.
func (p *PackageJSON) EnsureBuildScript() bool {
	if p.HasScript(BuildScriptName) {
		return false
	}
	if p.Scripts == nil {
		p.Scripts = map[string]string{}
	}
	p.Scripts[BuildScriptName] = DefaultBuildCommand
	nlog.Debug("injected %q script into package.json", BuildScriptName)
	return true
}
