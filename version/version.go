// Package version carries build information stamped in with -ldflags and a
// cobra command that prints it.
package version

import "fmt"

// Build-time values, set with
//
//	-ldflags "-X github.com/monerokon/xmrpos-login/version.Version=1.2.3"
var (
	Version   = "0.0.0-dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// Info holds version information for a binary.
type Info struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	BuildDate string `json:"buildDate"`
	GitCommit string `json:"gitCommit"`
}

// New returns Info for name using the build-time values.
func New(name string) *Info {
	return &Info{
		Name:      name,
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
	}
}

// UserAgent returns name/version, as sent in HTTP requests.
func (i *Info) UserAgent() string {
	return i.Name + "/" + i.Version
}

// String returns a human-readable version string.
func (i *Info) String() string {
	return fmt.Sprintf("%s version %s (commit: %s, built: %s)", i.Name, i.Version, i.GitCommit, i.BuildDate)
}
