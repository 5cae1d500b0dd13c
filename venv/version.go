package venv

import (
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/mod/semver"
)

// Version is a pinned Django release such as 4.2.6, 5.0 or 5.1rc1.
type Version struct {
	raw        string
	major      string
	minor      string
	bugfix     string
	prerelease string
}

// MinimumVersion is the oldest Django release whose project layout the generated files target.
const MinimumVersion = "2.0"

var (
	ErrInvalidVersion = errors.New("invalid Django version")

	versionRegex = regexp.MustCompile(`^(\d+)\.(\d+)(?:\.(\d+))?((?:a|b|rc)\d+)?$`)
)

func ParseVersion(raw string) (v Version, err error) {
	err = v.UnmarshalText([]byte(raw))

	return v, err
}

func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersionUnchecked(string(text))
	if err != nil {
		return err
	}

	floor, _ := ParseVersionUnchecked(MinimumVersion)

	if semver.Compare(parsed.Canonical(), floor.Canonical()) < 0 {
		return fmt.Errorf("%w: %q is older than the minimum supported release %s", ErrInvalidVersion, string(text), MinimumVersion)
	}

	*v = parsed

	return nil
}

// ParseVersionUnchecked parses raw without enforcing MinimumVersion.
func ParseVersionUnchecked(raw string) (Version, error) {
	m := versionRegex.FindStringSubmatch(raw)
	if len(m) == 0 {
		return Version{}, fmt.Errorf("%w: %q is not of the %s format", ErrInvalidVersion, raw, versionRegex)
	}

	v := Version{raw: raw, major: m[1], minor: m[2], bugfix: m[3], prerelease: m[4]}
	if v.bugfix == "" {
		v.bugfix = "0"
	}

	return v, nil
}

// String returns the version exactly as the user typed it, which is what gets pinned.
func (v Version) String() string {
	return v.raw
}

// Canonical returns the semantic version form, e.g. v5.1.0-rc1.
func (v Version) Canonical() string {
	s := fmt.Sprintf("v%s.%s.%s", v.major, v.minor, v.bugfix)

	if v.prerelease != "" {
		s += "-" + v.prerelease
	}

	return semver.Canonical(s)
}

func (v Version) Set() bool {
	return v.raw != ""
}
