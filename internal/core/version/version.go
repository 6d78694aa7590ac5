// Package version reports build information for the running binary.
package version

// BuildInfo holds version information about the service build.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information. Version, commit and date are stamped at
// link time, e.g.
//
//	-ldflags "-X 'rowkeeper/internal/core/version.version=v0.1.0' -X 'rowkeeper/internal/core/version.commit=abcd'"
func Info() BuildInfo {
	return BuildInfo{
		Service: Service,
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

// Service is the name reported by the API binary
const Service = "rowkeeper-api"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
