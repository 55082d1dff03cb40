package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	info := Info()
	if !strings.HasPrefix(info, "pgedge-sales "+Version) {
		t.Errorf("Expected info to start with name and version, got %q", info)
	}
	if !strings.Contains(info, "commit: "+Commit) {
		t.Errorf("Expected commit in info, got %q", info)
	}
}

func TestShort(t *testing.T) {
	if Short() != Version {
		t.Errorf("Expected %q, got %q", Version, Short())
	}
}
