package cli

import (
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	original := version
	version = v
	t.Cleanup(func() { version = original })
}

func TestVersionCmd(t *testing.T) {
	withVersion(t, "0.4.1")

	out, err := runCommand("version")

	require.NoError(t, err)
	assert.Contains(t, out, "merkuze version 0.4.1\n")
	assert.Contains(t, out, runtime.Version())
}

func TestVersionCmd_Short(t *testing.T) {
	withVersion(t, "dev")

	out, err := runCommand("version", "--short")

	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestVersionCmd_NeedsNoServices(t *testing.T) {
	_, err := runCommand("version")

	assert.NoError(t, err)
}

func TestRevision(t *testing.T) {
	build := func(settings ...debug.BuildSetting) *debug.BuildInfo {
		return &debug.BuildInfo{Settings: settings}
	}

	tests := []struct {
		name string
		info *debug.BuildInfo
		ok   bool
		want string
	}{
		{name: "no build info", ok: false, want: ""},
		{name: "no vcs stamp", info: build(), ok: true, want: ""},
		{
			name: "clean tree",
			info: build(debug.BuildSetting{Key: "vcs.revision", Value: "3f9c2a71be04d5e6f7a8"}),
			ok:   true,
			want: "3f9c2a71be04",
		},
		{
			name: "modified tree",
			info: build(
				debug.BuildSetting{Key: "vcs.revision", Value: "3f9c2a7"},
				debug.BuildSetting{Key: "vcs.modified", Value: "true"},
			),
			ok:   true,
			want: "3f9c2a7-dirty",
		},
		{
			name: "modified without revision",
			info: build(debug.BuildSetting{Key: "vcs.modified", Value: "true"}),
			ok:   true,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, revision(tt.info, tt.ok))
		})
	}
}
