package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// versionPattern loosely matches a release version.
var versionPattern = regexp.MustCompile(`\d{1,2}\.\d+(\.\d+)?`)

// IsValidVersion reports whether s contains a release version.
func IsValidVersion(s string) bool {
	return versionPattern.MatchString(s)
}

// Version is a major.minor.patch version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses "major.minor[.patch]". Leading zeros are accepted,
// so "1.00.01" parses as 1.0.1. A leading "v" is ignored.
func ParseVersion(s string) (Version, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "v")
	parts := strings.Split(raw, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// String formats the version as major.minor.patch.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Bump returns the next version for the given release kind.
func (v Version) Bump(kind ReleaseKind) Version {
	switch kind {
	case ReleaseMajor:
		return Version{Major: v.Major + 1}
	case ReleaseMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1}
	default:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	}
}

// ReleaseKind selects which version component is bumped.
type ReleaseKind string

const (
	ReleasePatch ReleaseKind = "patch"
	ReleaseMinor ReleaseKind = "minor"
	ReleaseMajor ReleaseKind = "major"
)

// ParseReleaseKind parses patch, minor or major.
func ParseReleaseKind(s string) (ReleaseKind, error) {
	switch k := ReleaseKind(strings.ToLower(s)); k {
	case ReleasePatch, ReleaseMinor, ReleaseMajor:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidReleaseKind, s)
}

// PushTarget is the environment a release is pushed to.
type PushTarget string

const (
	PushStaging PushTarget = "staging"
	PushProd    PushTarget = "prod"
	PushAll     PushTarget = "all"
)

// ParsePushTarget parses staging, prod or all.
func ParsePushTarget(s string) (PushTarget, error) {
	switch p := PushTarget(strings.ToLower(s)); p {
	case PushStaging, PushProd, PushAll:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPushTarget, s)
}

// Environments returns the environments the target expands to.
func (p PushTarget) Environments() []PushTarget {
	if p == PushAll {
		return []PushTarget{PushStaging, PushProd}
	}
	return []PushTarget{p}
}
