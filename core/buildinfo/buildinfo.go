package buildinfo

import "fmt"

// Set at link time, for example:
//
//	go build -ldflags "-X 'github.com/m3rciful/eventbot/core/buildinfo.Version=v1.0.0' \
//	  -X 'github.com/m3rciful/eventbot/core/buildinfo.Commit=abcdef0'"
var (
	// Version is the release tag of the binary.
	Version = "dev"
	// Commit is the source revision the binary was built from.
	Commit = "local"
	// Date is the build timestamp in RFC3339.
	Date = ""
)

// Summary renders the build identity for startup logs.
func Summary() string {
	if Date == "" {
		return fmt.Sprintf("%s (%s)", Version, Commit)
	}
	return fmt.Sprintf("%s (%s, %s)", Version, Commit, Date)
}
