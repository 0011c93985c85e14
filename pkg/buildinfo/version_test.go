package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplate(t *testing.T) {
	old := [3]string{Version, Commit, Date}
	t.Cleanup(func() { Version, Commit, Date = old[0], old[1], old[2] })

	Version, Commit, Date = "v1.2.3", "abc123", "2026-01-02"

	got := Template()
	for _, want := range []string{"{{.Name}} v1.2.3", "commit: abc123", "built: 2026-01-02"} {
		if !strings.Contains(got, want) {
			t.Errorf("Template() = %q, missing %q", got, want)
		}
	}
	if !strings.HasPrefix(String(), "version: v1.2.3\n") {
		t.Errorf("String() = %q", String())
	}
}
