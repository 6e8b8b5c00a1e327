package version

import (
	"strings"
	"testing"
)

func TestGetVersion(t *testing.T) {
	saved := Version
	defer func() { Version = saved }()

	Version = "1.2.0"
	if got := GetVersion(); got != "1.2.0" {
		t.Errorf("GetVersion() = %q, want 1.2.0", got)
	}

	Version = "dev"
	if got := GetVersion(); !strings.HasPrefix(got, "dev") {
		t.Errorf("GetVersion() = %q, want a dev version", got)
	}
}

func TestGetDetailedVersion(t *testing.T) {
	v := GetDetailedVersion()
	if !strings.HasPrefix(v, "sen version ") {
		t.Errorf("GetDetailedVersion() = %q", v)
	}
	if !strings.Contains(v, GetBuildInfo().GoVersion) {
		t.Errorf("GetDetailedVersion() should name the Go version: %q", v)
	}
}

func TestWriteBuildInfo(t *testing.T) {
	var sb strings.Builder
	WriteBuildInfo(&sb)

	for _, want := range []string{"Version:", "Go Version:", "Platform:", "Mappers:    [0]"} {
		if !strings.Contains(sb.String(), want) {
			t.Errorf("build info missing %q:\n%s", want, sb.String())
		}
	}
}
