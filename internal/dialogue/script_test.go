package dialogue

import (
	"errors"
	"testing"
	"testing/fstest"
)

// TestParseScripts exercises the YAML format, including the next/choices
// shorthand and the multi-document form.
func TestParseScripts(t *testing.T) {
	t.Run("single graph with next shorthand", func(t *testing.T) {
		graphs, err := ParseScripts([]byte(`
id: t.slides
nodes:
  - id: one
    text: First thing.
    next: two
  - id: two
    text: Second thing.
`))
		if err != nil {
			t.Fatalf("ParseScripts: %v", err)
		}
		if len(graphs) != 1 {
			t.Fatalf("got %d graphs, want 1", len(graphs))
		}
		g := graphs[0]
		if g.Entry != "one" {
			t.Errorf("entry defaults to first node, got %s", g.Entry)
		}
		if got := g.Nodes["one"].Choices; len(got) != 1 || got[0].Target != "two" {
			t.Errorf("next shorthand choices = %v", got)
		}
		if !g.Nodes["two"].Terminal() {
			t.Error("node without next or choices should be terminal")
		}
	})

	t.Run("multiple documents", func(t *testing.T) {
		graphs, err := ParseScripts([]byte(`
id: t.a
nodes:
  - id: only
    text: A.
---
id: t.b
entry: start
nodes:
  - id: start
    text: B.
    ending: true
`))
		if err != nil {
			t.Fatalf("ParseScripts: %v", err)
		}
		if len(graphs) != 2 {
			t.Fatalf("got %d graphs, want 2", len(graphs))
		}
		if graphs[1].ID != "t.b" || !graphs[1].Nodes["start"].Ending {
			t.Errorf("second document parsed wrong: %+v", graphs[1])
		}
	})

	t.Run("choices with text and target", func(t *testing.T) {
		graphs, err := ParseScripts([]byte(`
id: t.branch
nodes:
  - id: ask
    speaker: Keeper
    text: Which way?
    choices:
      - text: Left.
        target: done
      - text: Right.
        target: done
  - id: done
    text: There you go.
`))
		if err != nil {
			t.Fatalf("ParseScripts: %v", err)
		}
		node := graphs[0].Nodes["ask"]
		if !node.Branching() {
			t.Fatal("two choices should be branching")
		}
		if node.Choices[1].Text != "Right." {
			t.Errorf("choice text = %q", node.Choices[1].Text)
		}
	})

	bad := []struct {
		name string
		yaml string
	}{
		{"missing graph id", "nodes:\n  - id: a\n    text: x\n"},
		{"node without id", "id: t.x\nnodes:\n  - text: x\n"},
		{"both next and choices", `
id: t.x
nodes:
  - id: a
    text: x
    next: b
    choices:
      - text: y
        target: b
  - id: b
    text: z
`},
		{"choice without target", `
id: t.x
nodes:
  - id: a
    text: x
    choices:
      - text: y
`},
		{"duplicate node id", `
id: t.x
nodes:
  - id: a
    text: x
  - id: a
    text: y
`},
		{"dangling next", "id: t.x\nnodes:\n  - id: a\n    text: x\n    next: ghost\n"},
		{"empty file", ""},
		{"not yaml", ":\n  - ::\n"},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseScripts([]byte(tt.yaml)); err == nil {
				t.Error("ParseScripts should fail")
			}
		})
	}
}

// TestLoadScripts checks directory loading over an in-memory filesystem.
func TestLoadScripts(t *testing.T) {
	fsys := fstest.MapFS{
		"scripts/a.yaml": &fstest.MapFile{Data: []byte(
			"id: t.a\nnodes:\n  - id: only\n    text: A.\n")},
		"scripts/b.yaml": &fstest.MapFile{Data: []byte(
			"id: t.b\nnodes:\n  - id: only\n    text: B.\n")},
		"scripts/notes.txt": &fstest.MapFile{Data: []byte("not a script")},
	}
	lib, err := LoadScripts(fsys, "scripts")
	if err != nil {
		t.Fatalf("LoadScripts: %v", err)
	}
	ids := lib.IDs()
	if len(ids) != 2 || ids[0] != "t.a" || ids[1] != "t.b" {
		t.Errorf("IDs() = %v, want [t.a t.b]", ids)
	}
}

// TestLoadScriptsFailsWhole checks that one malformed file fails the load.
func TestLoadScriptsFailsWhole(t *testing.T) {
	fsys := fstest.MapFS{
		"scripts/good.yaml": &fstest.MapFile{Data: []byte(
			"id: t.good\nnodes:\n  - id: only\n    text: fine\n")},
		"scripts/bad.yaml": &fstest.MapFile{Data: []byte(
			"id: t.bad\nnodes:\n  - id: a\n    text: x\n    next: ghost\n")},
	}
	if _, err := LoadScripts(fsys, "scripts"); err == nil {
		t.Fatal("LoadScripts should fail when any file is malformed")
	}
}

// TestLoadScriptsEmptyDir checks the zero-graphs guard.
func TestLoadScriptsEmptyDir(t *testing.T) {
	fsys := fstest.MapFS{
		"scripts/readme.txt": &fstest.MapFile{Data: []byte("nothing here")},
	}
	_, err := LoadScripts(fsys, "scripts")
	if !errors.Is(err, ErrScriptInvalid) {
		t.Errorf("LoadScripts on empty dir = %v, want ErrScriptInvalid", err)
	}
}
