package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestGetInfo(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date
	Version, Commit, Date = "1.2.0", "abc123def456", "2025-03-03T09:00:00Z"
	defer func() { Version, Commit, Date = origVersion, origCommit, origDate }()

	info := GetInfo()
	if info.Version != "1.2.0" || info.Commit != "abc123def456" || info.Date != "2025-03-03T09:00:00Z" {
		t.Errorf("GetInfo() = %+v", info)
	}
	if info.APIVersion != APIVersion {
		t.Errorf("APIVersion = %s, want %s", info.APIVersion, APIVersion)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %s, want %s", info.GoVersion, runtime.Version())
	}
	if want := runtime.GOOS + "/" + runtime.GOARCH; info.Platform != want {
		t.Errorf("Platform = %s, want %s", info.Platform, want)
	}
}

func TestInfoString(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want []string
	}{
		{
			name: "release",
			info: Info{Version: "1.2.0", APIVersion: "2.0.0", Commit: "abc123def456", Date: "2025-03-03", GoVersion: "go1.24.6", Platform: "linux/amd64"},
			want: []string{"Smartplan 1.2.0", "API 2.0.0", "abc123de)", "built 2025-03-03", "with go1.24.6", "for linux/amd64"},
		},
		{
			name: "short commit",
			info: Info{Version: "1.2.0", APIVersion: "2.0.0", Commit: "abc123", Date: "2025-03-03", GoVersion: "go1.24.6", Platform: "darwin/arm64"},
			want: []string{"abc123)", "darwin/arm64"},
		},
		{
			name: "dev build",
			info: GetInfo(),
			want: []string{"Smartplan", "API " + APIVersion},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.info.String()
			for _, substr := range tt.want {
				if !strings.Contains(got, substr) {
					t.Errorf("String() = %q, missing %q", got, substr)
				}
			}
		})
	}
}

func TestInfoShort(t *testing.T) {
	for _, v := range []string{"1.2.0", "dev", "1.2.0-rc1"} {
		if got := (Info{Version: v}).Short(); got != v {
			t.Errorf("Short() = %s, want %s", got, v)
		}
	}
}
