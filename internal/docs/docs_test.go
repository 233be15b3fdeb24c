package docs

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTopics(t *testing.T) {
	want := []string{"editor", "files", "grid", "server"}
	if diff := cmp.Diff(want, Topics()); diff != "" {
		t.Fatalf("topics (-want +got):\n%s", diff)
	}
}

func TestGet(t *testing.T) {
	body, ok := Get(" Grid ")
	if !ok || !strings.HasPrefix(body, "# The grid") {
		t.Fatalf("Get(grid) = %q, %v", body, ok)
	}
	for _, bad := range []string{"", "nope", "../docs", "grid.md"} {
		if _, ok := Get(bad); ok {
			t.Fatalf("Get(%q) should fail", bad)
		}
	}
}
