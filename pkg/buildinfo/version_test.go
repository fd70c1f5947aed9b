package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFill(t *testing.T) {
	defer func(v, c, d string) { Version, Commit, Date = v, c, d }(Version, Commit, Date)

	tests := []struct {
		name string
		set  [3]string
		info debug.BuildInfo
		want [3]string
	}{
		{
			name: "ldflags win",
			set:  [3]string{"v1.0.0", "abc", "2025-01-01"},
			info: debug.BuildInfo{
				Main:     debug.Module{Version: "v0.9.0"},
				Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "def"}},
			},
			want: [3]string{"v1.0.0", "abc", "2025-01-01"},
		},
		{
			name: "toolchain stamp fills defaults",
			set:  [3]string{"dev", "none", "unknown"},
			info: debug.BuildInfo{
				Main: debug.Module{Version: "v0.9.0"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "def"},
					{Key: "vcs.time", Value: "2025-02-02T00:00:00Z"},
				},
			},
			want: [3]string{"v0.9.0", "def", "2025-02-02T00:00:00Z"},
		},
		{
			name: "devel build keeps dev",
			set:  [3]string{"dev", "none", "unknown"},
			info: debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			want: [3]string{"dev", "none", "unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, Commit, Date = tt.set[0], tt.set[1], tt.set[2]
			fill(&tt.info)
			if got := [3]string{Version, Commit, Date}; got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTemplate(t *testing.T) {
	tmpl := Template()
	if !strings.HasPrefix(tmpl, "{{.Name}} version ") {
		t.Errorf("Template() = %q", tmpl)
	}
	if !strings.Contains(String(), "commit: ") {
		t.Errorf("String() = %q", String())
	}
	if !strings.HasPrefix(Product(), "branchdeck/") {
		t.Errorf("Product() = %q", Product())
	}
}
