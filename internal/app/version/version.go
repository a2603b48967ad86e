package version

import (
	"runtime"
	"runtime/debug"
)

// Overridden at build time with -ldflags "-X allowhost/internal/app/version.buildVersion=...".
var (
	buildVersion = "dev"
	builtAt      = ""
)

type Info struct {
	Version   string `json:"version"`
	BuiltAt   string `json:"built_at,omitempty"`
	GoVersion string `json:"go_version"`
	Revision  string `json:"revision,omitempty"`
}

func BuildVersion() string {
	return buildVersion
}

func GetInfo() Info {
	info := Info{
		Version:   buildVersion,
		BuiltAt:   builtAt,
		GoVersion: runtime.Version(),
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				info.Revision = s.Value
			}
		}
	}

	return info
}
