package version

import (
	"encoding/json"
	"regexp"
	"runtime"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion_FollowsSemverOrDev(t *testing.T) {
	// Given: the version package is imported

	// When: accessing Version

	// Then: it should follow semver format or be "dev" for development builds
	if Version == "dev" {
		t.Log("Version is 'dev' (development build without ldflags)")
		return
	}
	semverRegex := regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-zA-Z0-9.]+)?$`)
	require.True(t, semverRegex.MatchString(Version), "Version should follow semver format, got: %s", Version)
}

func TestString_ReturnsFormattedString(t *testing.T) {
	// When: calling String()
	str := String()

	// Then: it should contain version, program name and build info
	assert.Contains(t, str, Version)
	assert.Contains(t, str, "indexbench")
	assert.Contains(t, str, "commit")
	assert.Contains(t, str, "go")
}

func TestShort_ReturnsVersion(t *testing.T) {
	assert.Equal(t, Version, Short())
}

func TestGetInfo_IsJSONSerializable(t *testing.T) {
	// Given: the build info
	info := GetInfo()
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS, info.OS)
	assert.Equal(t, runtime.GOARCH, info.Arch)

	// When: serializing to JSON
	data, err := json.Marshal(info)
	require.NoError(t, err)

	// Then: it should produce the expected fields
	var parsed map[string]string
	require.NoError(t, json.Unmarshal(data, &parsed))
	for _, key := range []string{"version", "commit", "date", "go_version", "os", "arch"} {
		assert.Contains(t, parsed, key)
	}
}

func TestRuntimeAndPlatform(t *testing.T) {
	assert.Equal(t, "Go "+strings.TrimPrefix(runtime.Version(), "go")+" ("+runtime.Compiler+" compiler)", Runtime())
	assert.True(t, strings.HasPrefix(Platform(), runtime.GOOS+" "))
	assert.True(t, strings.HasSuffix(Platform(), " "+runtime.GOARCH))
}

func TestPlatform_IncludesOSRelease(t *testing.T) {
	tests := []struct {
		name    string
		release string
		want    string
	}{
		{"release known", "6.8.0-45-generic", runtime.GOOS + " 6.8.0-45-generic " + runtime.GOARCH},
		{"release unavailable", "", runtime.GOOS + " " + runtime.GOARCH},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := osRelease
			osRelease = func() string { return tt.release }
			t.Cleanup(func() { osRelease = orig })

			assert.Equal(t, tt.want, Platform())
		})
	}
}

func withBuildInfo(t *testing.T, info *debug.BuildInfo, ok bool) {
	t.Helper()
	orig := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return info, ok }
	t.Cleanup(func() { readBuildInfo = orig })
}

func TestModuleVersion(t *testing.T) {
	withBuildInfo(t, &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/Aman-CERP/indexbench", Version: "(devel)"},
		Deps: []*debug.Module{
			{Path: "github.com/blevesearch/bleve/v2", Version: "v2.5.7"},
			{Path: "modernc.org/sqlite", Version: "v1.44.0", Replace: &debug.Module{Version: "v1.44.1"}},
		},
	}, true)

	tests := []struct {
		name string
		path string
		want string
	}{
		{"dependency", "github.com/blevesearch/bleve/v2", "v2.5.7"},
		{"replaced dependency", "modernc.org/sqlite", "v1.44.1"},
		{"main module", "github.com/Aman-CERP/indexbench", "(devel)"},
		{"missing", "example.com/none", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ModuleVersion(tt.path))
		})
	}
}

func TestModuleVersion_NoBuildInfo(t *testing.T) {
	// Given: a binary built without module support
	withBuildInfo(t, nil, false)

	// Then: the version is unknown
	assert.Equal(t, "unknown", ModuleVersion("github.com/blevesearch/bleve/v2"))
}
