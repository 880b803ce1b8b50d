package buildinfo

import (
	"strings"
	"testing"
)

func TestLinkedVersionWins(t *testing.T) {
	old := Version
	Version = "v1.2.3"
	t.Cleanup(func() { Version = old })

	if got := Get().Version; got != "v1.2.3" {
		t.Errorf("Get().Version = %q", got)
	}
	if !strings.Contains(String(), "version: v1.2.3") {
		t.Errorf("String() = %q", String())
	}
	if !strings.HasPrefix(Template(), "{{.Name}} version v1.2.3") {
		t.Errorf("Template() = %q", Template())
	}
}

func TestGetWithoutLdflags(t *testing.T) {
	if Get().Version == "" {
		t.Error("empty version")
	}
}
