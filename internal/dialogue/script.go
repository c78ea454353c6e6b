package dialogue

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Script files are YAML, one graph per document. A node either lists
// choices or names a single `next` node; neither makes it terminal.
//
//	id: pier.piermaster
//	entry: greet
//	nodes:
//	  - id: greet
//	    speaker: Piermaster
//	    text: The pier needs fixing... it's a tragedy.
//	    choices:
//	      - text: What happened here?
//	        target: storm
//	      - text: Good day to you.
//	        target: farewell
//	  - id: farewell
//	    speaker: Piermaster
//	    text: Mind the loose planks.
//	    ending: true

type choiceYAML struct {
	Text   string `yaml:"text"`
	Target string `yaml:"target"`
}

type nodeYAML struct {
	ID      string       `yaml:"id"`
	Speaker string       `yaml:"speaker"`
	Text    string       `yaml:"text"`
	Next    string       `yaml:"next"`
	Choices []choiceYAML `yaml:"choices"`
	Ending  bool         `yaml:"ending"`
}

type graphYAML struct {
	ID    string     `yaml:"id"`
	Entry string     `yaml:"entry"`
	Nodes []nodeYAML `yaml:"nodes"`
}

var ErrScriptInvalid = errors.New("dialogue: invalid script")

func graphFromYAML(doc graphYAML) (*Graph, error) {
	if doc.ID == "" {
		return nil, fmt.Errorf("%w: missing graph id", ErrScriptInvalid)
	}
	g := &Graph{
		ID:    GraphID(doc.ID),
		Entry: NodeID(doc.Entry),
		Nodes: make(map[NodeID]*Node, len(doc.Nodes)),
	}
	if doc.Entry == "" && len(doc.Nodes) > 0 {
		g.Entry = NodeID(doc.Nodes[0].ID)
	}
	for _, n := range doc.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("%w: graph %s has a node without id", ErrScriptInvalid, doc.ID)
		}
		if n.Next != "" && len(n.Choices) > 0 {
			return nil, fmt.Errorf("%w: graph %s node %s has both next and choices",
				ErrScriptInvalid, doc.ID, n.ID)
		}
		node := &Node{
			ID:      NodeID(n.ID),
			Speaker: n.Speaker,
			Text:    n.Text,
			Ending:  n.Ending,
		}
		if n.Next != "" {
			node.Choices = []Choice{{Target: NodeID(n.Next)}}
		}
		for _, c := range n.Choices {
			if c.Target == "" {
				return nil, fmt.Errorf("%w: graph %s node %s choice %q has no target",
					ErrScriptInvalid, doc.ID, n.ID, c.Text)
			}
			node.Choices = append(node.Choices, Choice{Text: c.Text, Target: NodeID(c.Target)})
		}
		if _, dup := g.Nodes[node.ID]; dup {
			return nil, fmt.Errorf("%w: graph %s duplicate node %s", ErrScriptInvalid, doc.ID, n.ID)
		}
		g.Nodes[node.ID] = node
	}
	return g, nil
}

// ParseScripts decodes every YAML document in data into validated graphs.
func ParseScripts(data []byte) ([]*Graph, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var graphs []*Graph
	for {
		var doc graphYAML
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrScriptInvalid, err)
		}
		g, err := graphFromYAML(doc)
		if err != nil {
			return nil, err
		}
		if err := g.Validate(); err != nil {
			return nil, err
		}
		graphs = append(graphs, g)
	}
	if len(graphs) == 0 {
		return nil, fmt.Errorf("%w: no graphs in script", ErrScriptInvalid)
	}
	return graphs, nil
}

// LoadScripts builds a library from every *.yaml under dir in fsys. Any
// malformed script fails the whole load; nothing partial reaches runtime.
func LoadScripts(fsys fs.FS, dir string) (*Library, error) {
	lib := NewLibrary()
	if err := mergeScripts(lib, fsys, dir); err != nil {
		return nil, err
	}
	return lib, nil
}

// mergeScripts parses dir into lib, replacing graphs that share an id. Used
// both at boot and by the authoring-mode reload.
func mergeScripts(lib *Library, fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("dialogue: read dir %s: %w", dir, err)
	}
	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("dialogue: read %s: %w", entry.Name(), err)
		}
		graphs, err := ParseScripts(data)
		if err != nil {
			return fmt.Errorf("dialogue: %s: %w", entry.Name(), err)
		}
		for _, g := range graphs {
			if err := lib.Add(g); err != nil {
				return fmt.Errorf("dialogue: %s: %w", entry.Name(), err)
			}
			loaded++
		}
	}
	if loaded == 0 {
		return fmt.Errorf("%w: no scripts under %s", ErrScriptInvalid, dir)
	}
	return nil
}
