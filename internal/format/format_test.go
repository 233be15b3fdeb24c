package format

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mandalart/internal/grid"
)

type envelope struct {
	Data  any      `json:"data"`
	Hints []string `json:"_hints,omitempty"`
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, envelope{Data: map[string]any{"view_count": 3}}, "", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := buf.String(); got != "{\"data\":{\"view_count\":3}}\n" {
		t.Fatalf("unexpected json: %q", got)
	}
}

func TestWrite_EDN(t *testing.T) {
	var buf bytes.Buffer
	v := envelope{
		Data:  map[string]any{"view_count": 3, "is_public": true, "center": "Goal", "ratio": 0.5, "og": nil},
		Hints: []string{"mandalart show x"},
	}
	if err := Write(&buf, v, "edn", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := `{:-hints ["mandalart show x"] :data {:center "Goal" :is-public true :og nil :ratio 0.5 :view-count 3}}` + "\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected edn:\n got %s\nwant %s", got, want)
	}

	buf.Reset()
	if err := Write(&buf, []any{}, "edn", true); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.String() != "[]\n" {
		t.Fatalf("unexpected empty vector: %q", buf.String())
	}
}

func TestWrite_EDNPretty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEDN(&buf, map[string]any{"a": []int{1, 2}}, true); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "{\n  :a [\n    1\n    2\n  ]\n}\n"
	if buf.String() != want {
		t.Fatalf("unexpected pretty edn: %q", buf.String())
	}
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, envelope{Data: map[string]any{"center": "Goal", "view_count": 2}}, "yaml", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "data:\n  center: Goal\n  view_count: 2\n"
	if buf.String() != want {
		t.Fatalf("unexpected yaml: %q", buf.String())
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, 1, "xml", false); err == nil {
		t.Fatalf("expected error")
	}
}

func TestReadGridDocument_YAMLAndJSON(t *testing.T) {
	yamlDoc := `
center: Become a pro
themes:
  - title: Body
    details: [Sleep, Stretch]
  - title: Mind
tags: [sports]
`
	d, err := ReadGridDocument(strings.NewReader(yamlDoc), "")
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	g, err := d.Grid()
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	if g.Center != "Become a pro" || g.Themes[0].Details[1] != "Stretch" || g.Themes[1].Title != "Mind" {
		t.Fatalf("unexpected grid: %+v", g)
	}
	if diff := cmp.Diff([]string{"sports"}, d.Tags); diff != "" {
		t.Fatalf("tags (-want +got):\n%s", diff)
	}

	jsonDoc := `{"center":"Become a pro","themes":[{"title":"Body","details":["Sleep","Stretch"]},{"title":"Mind","details":[]}],"tags":["sports"]}`
	dj, err := ReadGridDocument(strings.NewReader(jsonDoc), "")
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	gj, _ := dj.Grid()
	if diff := cmp.Diff(g, gj); diff != "" {
		t.Fatalf("json and yaml disagree (-yaml +json):\n%s", diff)
	}
}

func TestReadGridDocument_RejectsUnknownFields(t *testing.T) {
	if _, err := ReadGridDocument(strings.NewReader(`{"centre":"x"}`), "json"); err == nil {
		t.Fatalf("expected unknown field error for json")
	}
	if _, err := ReadGridDocument(strings.NewReader("centre: x\n"), "yaml"); err == nil {
		t.Fatalf("expected unknown field error for yaml")
	}
}

func TestReadGridFile_DocumentRoundTrip(t *testing.T) {
	var g grid.Grid
	g.Center = "Goal"
	g.Themes[7].Title = "Last"
	g.Themes[7].Details[7] = "last detail"

	var buf bytes.Buffer
	if err := WriteYAML(&buf, DocumentFromGrid(g)); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	path := filepath.Join(t.TempDir(), "grid.yaml")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	d, err := ReadGridFile(path, nil)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	back, err := d.Grid()
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	if diff := cmp.Diff(g, back); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}

	stdin, err := ReadGridFile("-", strings.NewReader(`{"center":"From stdin"}`))
	if err != nil || stdin.Center != "From stdin" {
		t.Fatalf("stdin: %+v %v", stdin, err)
	}
}
