// Package version reports build information for the sen emulator.
package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
)

// Set at build time with -ldflags "-X sen/internal/version.Version=...".
var (
	Version   = "dev"
	GitCommit = ""
)

// Mappers lists the cartridge mapper numbers the emulator accepts.
var Mappers = []int{0}

// BuildInfo describes the running binary
type BuildInfo struct {
	Version   string
	Revision  string
	Modified  bool
	GoVersion string
	Platform  string
}

// GetBuildInfo merges the linker-set values with the VCS stamp the Go
// toolchain embeds.
func GetBuildInfo() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		Revision:  GitCommit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.Revision == "" {
					info.Revision = s.Value
				}
			case "vcs.modified":
				info.Modified = s.Value == "true"
			}
		}
	}

	return info
}

// GetVersion returns the version, with the short revision for dev builds.
func GetVersion() string {
	info := GetBuildInfo()
	if info.Version == "dev" && len(info.Revision) >= 7 {
		v := "dev-" + info.Revision[:7]
		if info.Modified {
			v += "+dirty"
		}
		return v
	}
	return info.Version
}

// GetDetailedVersion returns a one-line version string
func GetDetailedVersion() string {
	info := GetBuildInfo()
	return fmt.Sprintf("sen version %s (%s, %s)", GetVersion(), info.GoVersion, info.Platform)
}

// WriteBuildInfo writes the build information and emulated hardware as
// aligned name/value lines
func WriteBuildInfo(w io.Writer) {
	info := GetBuildInfo()

	fmt.Fprintf(w, "sen - NES emulator\n")
	fmt.Fprintf(w, "Version:    %s\n", GetVersion())
	if info.Revision != "" {
		fmt.Fprintf(w, "Revision:   %s\n", info.Revision)
	}
	fmt.Fprintf(w, "Go Version: %s\n", info.GoVersion)
	fmt.Fprintf(w, "Platform:   %s\n", info.Platform)
	fmt.Fprintf(w, "Hardware:   2A03 CPU, 2C02 PPU (NTSC)\n")
	fmt.Fprintf(w, "Mappers:    %v\n", Mappers)
}
