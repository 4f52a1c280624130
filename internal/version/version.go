// Package version exposes the bot's build metadata. Release builds stamp
// the variables through -ldflags; a plain `go build` keeps the dev values.
package version

var (
	// Version is the release tag, e.g. v1.2.0.
	Version = "v0.0.0-dev"

	// GitCommit is the short hash of the commit the binary was built from.
	GitCommit = "unknown"

	// BuildTime is when the binary was built, RFC 3339.
	BuildTime = "unknown"
)

// Info renders the metadata as a single line for logs and the about
// command.
func Info() string {
	return Version + " (" + GitCommit + ") built at " + BuildTime
}
