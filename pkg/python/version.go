package python

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Satisfies checks whether version is at least minVersion. Both sides
// are normalized first so PyPI-style version strings parse as semver.
func Satisfies(version, minVersion string) (bool, error) {
	// Handle special cases
	if version == "latest" || version == "*" || version == "" {
		return true, nil
	}

	normalizedVersion := normalizeVersion(version)
	normalizedMin := normalizeVersion(minVersion)

	v, err := semver.NewVersion(normalizedVersion)
	if err != nil {
		return false, fmt.Errorf("invalid version format: %s", version)
	}

	min, err := semver.NewVersion(normalizedMin)
	if err != nil {
		return false, fmt.Errorf("invalid minimum version format: %s", minVersion)
	}

	if !v.LessThan(min) {
		return true, nil
	}

	// Prerelease builds of the minimum release still count
	// (e.g. 3.12.0rc1 passes a 3.12 floor).
	vBase := v.String()
	minBase := min.String()
	if strings.Contains(vBase, "-") {
		vBase = strings.Split(vBase, "-")[0]
	}
	if strings.Contains(minBase, "-") {
		minBase = strings.Split(minBase, "-")[0]
	}
	if vBase == minBase && v.LessThan(min) {
		return true, nil
	}

	return false, nil
}

// normalizeVersion normalizes version strings for semver parsing
func normalizeVersion(version string) string {
	version = strings.TrimSpace(version)
	version = strings.Trim(version, " \"'")

	// Strip leading comparison operators
	version = regexp.MustCompile(`^[=~><!]+`).ReplaceAllString(version, "")

	// Strip range shorthands
	if strings.HasPrefix(version, "^") || strings.HasPrefix(version, "~") {
		version = version[1:]
	}

	// Dot-separated prerelease (1.0.0.rc2 -> 1.0.0-rc2)
	if dotIndex := strings.LastIndex(version, "."); dotIndex > 0 {
		if dotIndex < len(version)-1 && regexp.MustCompile(`^[a-zA-Z]`).MatchString(version[dotIndex+1:]) {
			version = version[:dotIndex] + "-" + version[dotIndex+1:]
		}
	}

	// Attached prerelease, padded to MAJOR.MINOR.PATCH
	// (1.3.0rc1 -> 1.3.0-rc1, 3.12rc -> 3.12.0-rc)
	prereleasePattern := regexp.MustCompile(`^(\d+(?:\.\d+)*)([a-zA-Z][a-zA-Z0-9]*.*)$`)
	if matches := prereleasePattern.FindStringSubmatch(version); matches != nil {
		baseVersion := matches[1]
		prerelease := matches[2]

		parts := strings.Split(baseVersion, ".")
		for len(parts) < 3 {
			parts = append(parts, "0")
		}
		version = strings.Join(parts, ".") + "-" + prerelease
	}

	return version
}
