package jemput

import (
	"strings"
	"testing"
)

func TestGetVersion(t *testing.T) {
	v := GetVersion()
	if !strings.HasPrefix(v, "Jemput ") {
		t.Errorf("Expected version string to start with the library name, got %q", v)
	}
	if !strings.Contains(v, Version) {
		t.Errorf("Expected version string to contain %q, got %q", Version, v)
	}
}

func TestGetVersionInfo(t *testing.T) {
	info := GetVersionInfo()
	if info["version"] != Version {
		t.Errorf("Expected version %q, got %q", Version, info["version"])
	}
	for _, key := range []string{"commit", "build_date", "go_version"} {
		if info[key] == "" {
			t.Errorf("Expected version info key %q to be set", key)
		}
	}
}
