package npm

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureBuildScriptInjectsOnce(t *testing.T) {
	pkg := &PackageJSON{
		Scripts: map[string]string{"dev": "next dev"},
	}

	require.True(t, pkg.EnsureBuildScript())
	require.Equal(t, DefaultBuildCommand, pkg.Scripts[BuildScriptName])
	require.Equal(t, "next dev", pkg.Scripts["dev"], "other scripts must not be clobbered")

	// Running the normalizer again must be a no-op.
	require.False(t, pkg.EnsureBuildScript())
	require.Len(t, pkg.Scripts, 2)
}

func TestEnsureBuildScriptKeepsExisting(t *testing.T) {
	pkg := &PackageJSON{
		Scripts: map[string]string{BuildScriptName: "custom build"},
	}
	require.False(t, pkg.EnsureBuildScript())
	require.Equal(t, "custom build", pkg.Scripts[BuildScriptName])
}

func TestNextVersionRequirement(t *testing.T) {
	pkg := &PackageJSON{Dependencies: map[string]string{"next": "^9.0.0"}}
	v, ok := pkg.NextVersionRequirement()
	require.True(t, ok)
	require.Equal(t, "^9.0.0", v)

	pkg = &PackageJSON{DevDependencies: map[string]string{"next": "canary"}}
	v, ok = pkg.NextVersionRequirement()
	require.True(t, ok)
	require.Equal(t, "canary", v)

	_, ok = (&PackageJSON{}).NextVersionRequirement()
	require.False(t, ok)
}

func TestLoadMissingManifestIsEmpty(t *testing.T) {
	pkg, err := LoadPackageJSON(t.TempDir())
	require.NoError(t, err)
	_, ok := pkg.NextVersionRequirement()
	require.False(t, ok)
}

func TestSaveRoundTripKeepsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	src := `{
  "name": "demo",
  "dependencies": { "next": "latest" },
  "browserslist": ["last 2 versions"]
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(src), 0644))

	pkg, err := LoadPackageJSON(dir)
	require.NoError(t, err)
	pkg.EnsureBuildScript()
	require.NoError(t, pkg.Save(dir))

	raw, err := os.ReadFile(filepath.Join(dir, "package.json"))
	require.NoError(t, err)
	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Contains(t, out, "browserslist")
	require.Contains(t, out, "scripts")
}

func TestDetectPackageManager(t *testing.T) {
	dir := t.TempDir()
	require.Equal(t, NPM, DetectPackageManager(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, NPMLockfile), []byte("{}"), 0644))
	require.Equal(t, NPM, DetectPackageManager(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, YarnLockfile), []byte(""), 0644))
	require.Equal(t, Yarn, DetectPackageManager(dir))
}

func TestRemoveLockfilesBestEffort(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, YarnLockfile), []byte(""), 0644))

	// One present, one absent: both outcomes are fine.
	RemoveLockfiles(dir)

	_, err := os.Stat(filepath.Join(dir, YarnLockfile))
	require.True(t, os.IsNotExist(err))
}

func TestWriteCredentialsCleanup(t *testing.T) {
	dir := t.TempDir()
	cleanup, err := WriteCredentials(dir, "secret-token")
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, ".npmrc"))
	require.NoError(t, err)
	require.Contains(t, string(raw), "secret-token")

	cleanup()
	_, err = os.Stat(filepath.Join(dir, ".npmrc"))
	require.True(t, os.IsNotExist(err))
}
