package version

import (
	_ "embed"
	"fmt"
	"runtime/debug"
	"strings"
)

//go:generate sh -c "printf %s $(git describe --tags) > version"
//go:generate sh -c "git status --porcelain > status"

var (
	//go:embed version
	tag string

	//go:embed status
	status string

	platform string
)

// Version is the release tag, marked dirty for uncommitted builds,
// followed by the target platform.
func Version() string {
	v := strings.TrimSpace(tag)
	if v == "" {
		v = "devel"
	}
	if strings.TrimSpace(status) != "" {
		v += "-dirty"
	}
	if platform == "" {
		return v
	}
	return fmt.Sprintf("%s %s", v, platform)
}

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	var goos, goarch string
	for _, s := range info.Settings {
		switch s.Key {
		case "GOOS":
			goos = s.Value
		case "GOARCH":
			goarch = s.Value
		}
	}

	if goos != "" {
		platform = fmt.Sprintf("%s/%s", goos, goarch)
	}
}
