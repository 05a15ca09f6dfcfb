// Package version exposes the build identity stamped into the binary.
//
// Release builds set these via ldflags, e.g.:
//
//	go build -ldflags "\
//	  -X github.com/rickgao/chainfeed/internal/version.Version=1.0.0 \
//	  -X github.com/rickgao/chainfeed/internal/version.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/rickgao/chainfeed/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

var (
	// Version is the semantic version; "dev" for local builds.
	Version = "dev"

	// Commit is the short git commit hash.
	Commit = "unknown"

	// BuildTime is the UTC build timestamp in ISO 8601.
	BuildTime = "unknown"
)

// String renders the identity as "VERSION (COMMIT) built BUILDTIME".
func String() string {
	return Version + " (" + Commit + ") built " + BuildTime
}
