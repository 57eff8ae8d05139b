// Package version carries build metadata. The variables are set with
// -ldflags "-X github.com/pynezz/scriptshield/pkg/version.version=..." etc.
package version

import (
	"fmt"
	"runtime"
)

// ClientVersion is the loader/client protocol version advertised in the
// X-Client-Version header and shown on the site.
const ClientVersion = "2.0.1"

var (
	version   = "dev"
	commit    = "none"
	buildDate = "na"
)

// Build describes the running binary.
type Build struct {
	Version       string `json:"version"`
	ClientVersion string `json:"clientVersion"`
	Commit        string `json:"commit"`
	Date          string `json:"buildDate"`
	Go            string `json:"go"`
	Platform      string `json:"platform"`
}

func Get() Build {
	return Build{
		Version:       version,
		ClientVersion: ClientVersion,
		Commit:        commit,
		Date:          buildDate,
		Go:            runtime.Version(),
		Platform:      runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// Info renders Get for the version command.
func Info() string {
	b := Get()
	return fmt.Sprintf("Version: %s\nClient version: %s\nGit commit: %s\nGo version: %s\nOS/Arch: %s\nBuild date: %s\n",
		b.Version, b.ClientVersion, b.Commit, b.Go, b.Platform, b.Date)
}

// Version returns the server version.
func Version() string {
	return version
}
