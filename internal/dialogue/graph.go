// Package dialogue implements the branching-script engine that drives the
// kiosk's story vignettes.
//
// A script is a finite directed graph of narrative nodes. Graphs are
// validated when loaded and immutable afterwards; the runtime state machine
// in engine.go never has to handle malformed script data.
package dialogue

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// NodeID uniquely identifies a node within its graph.
type NodeID string

// GraphID uniquely identifies a script graph.
type GraphID string

// Choice is one outgoing edge of a node. Linear nodes carry a single choice
// with empty text, the implicit "continue" edge.
type Choice struct {
	Text   string
	Target NodeID
}

// Node is a single narrative beat: who speaks, what they say, and where the
// script can go next. An empty Choices list makes the node terminal.
type Node struct {
	ID      NodeID
	Speaker string
	Text    string
	Choices []Choice
	// Ending marks a terminal node that completes the surrounding story.
	Ending bool
}

// Branching reports whether the node waits on a player choice rather than a
// plain advance.
func (n *Node) Branching() bool { return len(n.Choices) >= 2 }

// Terminal reports whether the node has no outgoing edge.
func (n *Node) Terminal() bool { return len(n.Choices) == 0 }

// Graph is a fully-resolved dialogue script. Immutable after Validate.
type Graph struct {
	ID    GraphID
	Entry NodeID
	Nodes map[NodeID]*Node
}

var (
	ErrGraphInvalid  = errors.New("dialogue: invalid graph")
	ErrGraphNotFound = errors.New("dialogue: graph not found")
	ErrNodeNotFound  = errors.New("dialogue: node not found")
)

// Validate checks the load-time invariants: the entry node exists, every
// choice target exists, and from every node reachable from the entry some
// terminal node is reachable. The last check is what guarantees the runtime
// state machine always hands control back to the exploration loop.
func (g *Graph) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("%w: missing graph id", ErrGraphInvalid)
	}
	if len(g.Nodes) == 0 {
		return fmt.Errorf("%w: graph %s has no nodes", ErrGraphInvalid, g.ID)
	}
	if _, ok := g.Nodes[g.Entry]; !ok {
		return fmt.Errorf("%w: graph %s entry node %q does not exist", ErrGraphInvalid, g.ID, g.Entry)
	}
	for id, node := range g.Nodes {
		if node.ID != id {
			return fmt.Errorf("%w: graph %s node keyed %q carries id %q", ErrGraphInvalid, g.ID, id, node.ID)
		}
		for _, c := range node.Choices {
			if _, ok := g.Nodes[c.Target]; !ok {
				return fmt.Errorf("%w: graph %s node %s targets missing node %q",
					ErrGraphInvalid, g.ID, id, c.Target)
			}
		}
		if node.Ending && !node.Terminal() {
			return fmt.Errorf("%w: graph %s ending node %s has outgoing edges", ErrGraphInvalid, g.ID, id)
		}
	}

	escapes := g.nodesThatReachTerminal()
	for _, id := range g.reachableFromEntry() {
		if !escapes[id] {
			return fmt.Errorf("%w: graph %s node %s cannot reach a terminal node",
				ErrGraphInvalid, g.ID, id)
		}
	}
	return nil
}

// reachableFromEntry returns every node reachable from the entry, sorted for
// deterministic error reporting.
func (g *Graph) reachableFromEntry() []NodeID {
	seen := map[NodeID]bool{g.Entry: true}
	stack := []NodeID{g.Entry}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range g.Nodes[id].Choices {
			if !seen[c.Target] {
				seen[c.Target] = true
				stack = append(stack, c.Target)
			}
		}
	}
	out := make([]NodeID, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// nodesThatReachTerminal walks the reverse edges outward from all terminal
// nodes.
func (g *Graph) nodesThatReachTerminal() map[NodeID]bool {
	reverse := make(map[NodeID][]NodeID)
	var frontier []NodeID
	escapes := make(map[NodeID]bool)
	for id, node := range g.Nodes {
		for _, c := range node.Choices {
			reverse[c.Target] = append(reverse[c.Target], id)
		}
		if node.Terminal() {
			escapes[id] = true
			frontier = append(frontier, id)
		}
	}
	for len(frontier) > 0 {
		id := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		for _, prev := range reverse[id] {
			if !escapes[prev] {
				escapes[prev] = true
				frontier = append(frontier, prev)
			}
		}
	}
	return escapes
}

// Library holds every validated graph the kiosk can play. It is the
// "dialogue script source" boundary: once built, lookups cannot fail for
// any graph id a level binds. The mutex exists only for the authoring-mode
// hot reload, which swaps graphs from outside the session tick loops.
type Library struct {
	mu     sync.RWMutex
	graphs map[GraphID]*Graph
}

func NewLibrary() *Library {
	return &Library{graphs: make(map[GraphID]*Graph)}
}

// Add validates the graph and stores it. Replacing an existing graph is
// allowed so the authoring-mode watcher can hot-swap scripts.
func (l *Library) Add(g *Graph) error {
	if err := g.Validate(); err != nil {
		return err
	}
	l.mu.Lock()
	l.graphs[g.ID] = g
	l.mu.Unlock()
	return nil
}

func (l *Library) Get(id GraphID) (*Graph, error) {
	l.mu.RLock()
	g, ok := l.graphs[id]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGraphNotFound, id)
	}
	return g, nil
}

func (l *Library) Has(id GraphID) bool {
	l.mu.RLock()
	_, ok := l.graphs[id]
	l.mu.RUnlock()
	return ok
}

func (l *Library) IDs() []GraphID {
	l.mu.RLock()
	ids := make([]GraphID, 0, len(l.graphs))
	for id := range l.graphs {
		ids = append(ids, id)
	}
	l.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
