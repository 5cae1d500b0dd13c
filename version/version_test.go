package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	var tests = []struct {
		name     string
		info     debug.BuildInfo
		expected string
	}{
		{
			name:     "nothing stamped",
			info:     debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			expected: "unavailable",
		},
		{
			name:     "module version only",
			info:     debug.BuildInfo{Main: debug.Module{Version: "v0.3.0"}},
			expected: "djangogen v0.3.0",
		},
		{
			name: "local build",
			info: debug.BuildInfo{
				Main: debug.Module{Version: "(devel)"},
				Settings: []debug.BuildSetting{
					{Key: "vcs", Value: "git"},
					{Key: "vcs.revision", Value: "0123456789abcdef0123"},
					{Key: "vcs.time", Value: "2026-10-01T10:00:00Z"},
					{Key: "vcs.modified", Value: "true"},
				},
			},
			expected: "djangogen revision 0123456789ab-dirty (built 2026-10-01T10:00:00Z)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, describe(&tt.info))
		})
	}
}
