// Package version decides which packaging strategy a declared framework
// version requirement maps to. Versions predating serverless build support
// take the legacy path; everything newer builds one lambda per page.
package version

import (
	"fmt"

	mm "github.com/Masterminds/semver/v3"
)

// distTags resolve to whatever the registry currently publishes, which is
// always newer than the legacy cutoff.
var distTags = map[string]bool{
	"latest": true,
	"canary": true,
}

// IsLegacy classifies a version requirement from the project manifest.
// An unparseable requirement is a build-time failure.
func IsLegacy(requirement string) (bool, error) {
	if distTags[requirement] {
		return false, nil
	}

	for _, v := range legacyVersions {
		if v == requirement {
			return true, nil
		}
	}

	constraint, err := mm.NewConstraint(requirement)
	if err != nil {
		return false, fmt.Errorf("invalid next version requirement %q: %w", requirement, err)
	}

	// Highest legacy version satisfying the range; if none does, the range
	// can only be met by newer releases.
	if _, ok := maxSatisfying(constraint, legacyVersions); ok {
		return true, nil
	}
	return false, nil
}

func maxSatisfying(c *mm.Constraints, candidates []string) (*mm.Version, bool) {
	var best *mm.Version
	for _, raw := range candidates {
		v, err := mm.NewVersion(raw)
		if err != nil {
			continue
		}
		if !c.Check(v) {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
		}
	}
	return best, best != nil
}
