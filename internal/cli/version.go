package cli

import (
	"runtime/debug"
	"strings"
)

const (
	devVersion         = "dev"
	goDevelMainVersion = "(devel)"
)

var readBuildInfo = debug.ReadBuildInfo

// resolvedVersion prefers the version injected at link time, then the
// module version, then the VCS revision stamped into the binary.
func resolvedVersion(raw string) string {
	injected := strings.TrimSpace(raw)
	if injected != "" && injected != devVersion {
		return injected
	}

	if info, ok := readBuildInfo(); ok && info != nil {
		if v := strings.TrimSpace(info.Main.Version); v != "" && v != goDevelMainVersion {
			return v
		}
		if rev, dirty := vcsRevision(info.Settings); rev != "" {
			if dirty {
				return rev + "-dirty"
			}
			return rev
		}
	}

	return devVersion
}

// vcsRevision returns the short commit hash and whether the tree was
// modified.
func vcsRevision(settings []debug.BuildSetting) (string, bool) {
	var rev string
	var dirty bool
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			rev = strings.TrimSpace(s.Value)
		case "vcs.modified":
			dirty = strings.EqualFold(strings.TrimSpace(s.Value), "true")
		}
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	return rev, dirty
}
