// Package version renders the build identity of the binary for --version.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

const unavailable = "unavailable"

func FromBuildInfo() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return unavailable
	}

	return describe(info)
}

func describe(info *debug.BuildInfo) string {
	var revision, ts string

	dirty := false

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.time":
			ts = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}

	var parts []string

	if v := info.Main.Version; v != "" && v != "(devel)" {
		parts = append(parts, v)
	}

	if revision != "" {
		if len(revision) > 12 {
			revision = revision[:12]
		}

		if dirty {
			revision += "-dirty"
		}

		parts = append(parts, "revision "+revision)
	}

	if ts != "" {
		parts = append(parts, "built "+ts)
	}

	if len(parts) == 0 {
		return unavailable
	}

	if len(parts) == 1 {
		return "djangogen " + parts[0]
	}

	return fmt.Sprintf("djangogen %s (%s)", parts[0], strings.Join(parts[1:], ", "))
}
