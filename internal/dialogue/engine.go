package dialogue

import (
	"errors"
	"fmt"
)

// Phase is the engine's state-machine state. There is no stored Closed
// phase: closing runs its effects and drops straight back to Idle within
// the same transition, ready for the next trigger.
type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhaseAwaitingAdvance Phase = "awaiting_advance"
	PhaseAwaitingChoice  Phase = "awaiting_choice"
)

var (
	// ErrChoiceOutOfRange is the recoverable invalid-input condition: the
	// caller ignores it and the engine state is untouched.
	ErrChoiceOutOfRange = errors.New("dialogue: choice index out of range")
	// ErrNotAwaiting is returned for advance/choose input that does not
	// match the current phase. Also recoverable.
	ErrNotAwaiting = errors.New("dialogue: input does not match engine phase")
)

// Effects receives the engine's control signals. The session layer
// implements it to lock movement, track visited nodes, consume one-shot
// zones, and record story completion.
type Effects interface {
	// OnOpen fires when a trigger is accepted, before the first node shows.
	OnOpen(graphID GraphID, zoneID string)
	// OnNodeLeft fires when a node is advanced or chosen past, including
	// the final node on close.
	OnNodeLeft(graphID GraphID, nodeID NodeID)
	// OnClose fires when a terminal node is passed. ending is the node's
	// story-ending flag.
	OnClose(graphID GraphID, zoneID string, oneShot, ending bool)
}

// NoOpEffects is a default implementation that does nothing.
type NoOpEffects struct{}

func (NoOpEffects) OnOpen(GraphID, string)              {}
func (NoOpEffects) OnNodeLeft(GraphID, NodeID)          {}
func (NoOpEffects) OnClose(GraphID, string, bool, bool) {}

// SessionView is the engine's read-only window onto session state. Zone
// consumption gates one-shot triggers; seen-node lookups feed the render
// sink's "already seen" suppression.
type SessionView interface {
	ZoneConsumed(zoneID string) bool
	NodeSeen(graphID GraphID, nodeID NodeID) bool
}

// ZoneEntered is the trigger event emitted by the exploration controller.
type ZoneEntered struct {
	ZoneID  string
	GraphID GraphID
	OneShot bool
}

// NodeView is the render request for the currently shown node.
type NodeView struct {
	GraphID GraphID
	NodeID  NodeID
	Speaker string
	Text    string
	Choices []string
	// Seen means the node was already visited this session; the sink may
	// fast-forward or dim it. Never used to block progress.
	Seen bool
}

// Engine is the dialogue state machine. One engine serves one kiosk
// session; all methods are called from that session's tick loop.
type Engine struct {
	lib     *Library
	effects Effects
	view    SessionView

	phase   Phase
	graph   *Graph
	node    *Node
	zoneID  string
	oneShot bool
}

func NewEngine(lib *Library, effects Effects, view SessionView) *Engine {
	if effects == nil {
		effects = NoOpEffects{}
	}
	return &Engine{lib: lib, effects: effects, view: view, phase: PhaseIdle}
}

func (e *Engine) Phase() Phase { return e.phase }

// Active reports whether a dialogue currently holds control.
func (e *Engine) Active() bool { return e.phase != PhaseIdle }

// Current returns the render view for the showing node, or nil when idle.
func (e *Engine) Current() *NodeView {
	if e.node == nil {
		return nil
	}
	view := &NodeView{
		GraphID: e.graph.ID,
		NodeID:  e.node.ID,
		Speaker: e.node.Speaker,
		Text:    e.node.Text,
	}
	if e.node.Branching() {
		for _, c := range e.node.Choices {
			view.Choices = append(view.Choices, c.Text)
		}
	}
	if e.view != nil {
		view.Seen = e.view.NodeSeen(e.graph.ID, e.node.ID)
	}
	return view
}

// HandleZoneEntered consumes a trigger event. In any phase other than Idle
// the event is dropped: a dialogue already holds control. In Idle the event
// is dropped when the graph is unbound or the one-shot zone was already
// consumed. Returns whether a dialogue opened.
func (e *Engine) HandleZoneEntered(ev ZoneEntered) bool {
	if e.phase != PhaseIdle {
		return false
	}
	if ev.OneShot && e.view != nil && e.view.ZoneConsumed(ev.ZoneID) {
		return false
	}
	graph, err := e.lib.Get(ev.GraphID)
	if err != nil {
		return false
	}
	e.graph = graph
	e.zoneID = ev.ZoneID
	e.oneShot = ev.OneShot
	e.effects.OnOpen(graph.ID, ev.ZoneID)
	e.show(graph.Nodes[graph.Entry])
	return true
}

// Advance moves past a linear node. On a terminal node this closes the
// dialogue and returns control to exploration.
func (e *Engine) Advance() error {
	if e.phase != PhaseAwaitingAdvance {
		return fmt.Errorf("%w: advance in %s", ErrNotAwaiting, e.phase)
	}
	e.effects.OnNodeLeft(e.graph.ID, e.node.ID)
	if e.node.Terminal() {
		e.close()
		return nil
	}
	e.show(e.graph.Nodes[e.node.Choices[0].Target])
	return nil
}

// Choose follows choice k of a branching node. An out-of-range k leaves
// node and phase untouched.
func (e *Engine) Choose(k int) error {
	if e.phase != PhaseAwaitingChoice {
		return fmt.Errorf("%w: choose in %s", ErrNotAwaiting, e.phase)
	}
	if k < 0 || k >= len(e.node.Choices) {
		return fmt.Errorf("%w: %d of %d", ErrChoiceOutOfRange, k, len(e.node.Choices))
	}
	e.effects.OnNodeLeft(e.graph.ID, e.node.ID)
	e.show(e.graph.Nodes[e.node.Choices[k].Target])
	return nil
}

// show renders a node and classifies the waiting phase. Re-entering an
// already-visited node is fine; the load-time reach-a-terminal check is the
// only cycle guard.
func (e *Engine) show(node *Node) {
	e.node = node
	if node.Branching() {
		e.phase = PhaseAwaitingChoice
	} else {
		e.phase = PhaseAwaitingAdvance
	}
}

// Abort drops any open dialogue without running close effects. The session
// calls it when it tears the level down under the engine.
func (e *Engine) Abort() {
	e.graph = nil
	e.node = nil
	e.zoneID = ""
	e.oneShot = false
	e.phase = PhaseIdle
}

func (e *Engine) close() {
	e.effects.OnClose(e.graph.ID, e.zoneID, e.oneShot, e.node.Ending)
	e.graph = nil
	e.node = nil
	e.zoneID = ""
	e.oneShot = false
	e.phase = PhaseIdle
}
