// Package buildinfo holds the version stamped into schedsvg at link time.
//
// Release builds set the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/schedsvg/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/schedsvg/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/schedsvg/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// The version also scopes cache keys, so sheets rendered by one build are
// never served to another.
package buildinfo

import "fmt"

// Link-time values. Unset variables keep their zero-build defaults.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// devVersion is the Version of a build without ldflags.
const devVersion = "dev"

// shortCommit is the commit prefix length used in CacheScope.
const shortCommit = 12

// CacheScope identifies the renderer for cache keys: the release version, or
// "dev+<commit>" for untagged builds that know their commit.
func CacheScope() string {
	if Version != devVersion || Commit == "none" || Commit == "" {
		return Version
	}
	c := Commit
	if len(c) > shortCommit {
		c = c[:shortCommit]
	}
	return devVersion + "+" + c
}

// String returns the build information, one field per line.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template is the cobra version template.
func Template() string {
	return "{{.Name}} " + String() + "\n"
}
