package cli

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func stubBuildInfo(t *testing.T, info *debug.BuildInfo, ok bool) {
	t.Helper()
	orig := readBuildInfo
	t.Cleanup(func() { readBuildInfo = orig })
	readBuildInfo = func() (*debug.BuildInfo, bool) { return info, ok }
}

func TestResolvedVersionPrefersInjectedVersion(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{Main: debug.Module{Version: "v9.9.9"}}, true)
	assert.Equal(t, "v1.2.3", resolvedVersion("v1.2.3"))
}

func TestResolvedVersionUsesModuleVersion(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{Main: debug.Module{Version: "v0.4.0"}}, true)
	assert.Equal(t, "v0.4.0", resolvedVersion(devVersion))
}

func TestResolvedVersionUsesRevision(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{
		Main: debug.Module{Version: goDevelMainVersion},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.modified", Value: "true"},
		},
	}, true)
	assert.Equal(t, "0123456789ab-dirty", resolvedVersion(""))
}

func TestResolvedVersionFallsBackToDev(t *testing.T) {
	stubBuildInfo(t, nil, false)
	assert.Equal(t, devVersion, resolvedVersion(""))
}
