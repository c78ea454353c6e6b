package dialogue

import (
	"errors"
	"testing"
)

// recordingEffects captures every effect call for assertion.
type recordingEffects struct {
	opened []string
	left   []NodeID
	closed int
	ending bool
}

func (r *recordingEffects) OnOpen(_ GraphID, zoneID string) { r.opened = append(r.opened, zoneID) }
func (r *recordingEffects) OnNodeLeft(_ GraphID, id NodeID) { r.left = append(r.left, id) }
func (r *recordingEffects) OnClose(_ GraphID, _ string, _ bool, ending bool) {
	r.closed++
	r.ending = ending
}

// fakeView is a minimal SessionView backed by maps.
type fakeView struct {
	consumed map[string]bool
	seen     map[string]bool
}

func (v *fakeView) ZoneConsumed(zoneID string) bool { return v.consumed[zoneID] }
func (v *fakeView) NodeSeen(g GraphID, n NodeID) bool {
	return v.seen[string(g)+"/"+string(n)]
}

func newFakeView() *fakeView {
	return &fakeView{consumed: make(map[string]bool), seen: make(map[string]bool)}
}

func testLibrary(t *testing.T) *Library {
	t.Helper()
	lib := NewLibrary()
	graphs := []*Graph{
		{
			ID:    "t.chat",
			Entry: "greet",
			Nodes: map[NodeID]*Node{
				"greet": {ID: "greet", Speaker: "Keeper", Text: "Hello.", Choices: []Choice{
					{Text: "What is this place?", Target: "explain"},
					{Text: "Goodbye.", Target: "bye"},
				}},
				"explain": {ID: "explain", Speaker: "Keeper", Text: "The old pier.",
					Choices: []Choice{{Target: "bye"}}},
				"bye": {ID: "bye", Speaker: "Keeper", Text: "Safe travels.", Ending: true},
			},
		},
		{
			ID:    "t.slide",
			Entry: "one",
			Nodes: map[NodeID]*Node{
				"one": {ID: "one", Text: "First.", Choices: []Choice{{Target: "two"}}},
				"two": {ID: "two", Text: "Last."},
			},
		},
	}
	for _, g := range graphs {
		if err := lib.Add(g); err != nil {
			t.Fatalf("Add(%s): %v", g.ID, err)
		}
	}
	return lib
}

// TestEngineLinearFlow walks open, advance, advance, close.
func TestEngineLinearFlow(t *testing.T) {
	fx := &recordingEffects{}
	e := NewEngine(testLibrary(t), fx, newFakeView())

	if e.Phase() != PhaseIdle {
		t.Fatalf("fresh engine phase = %s, want idle", e.Phase())
	}
	if !e.HandleZoneEntered(ZoneEntered{ZoneID: "z1", GraphID: "t.slide"}) {
		t.Fatal("zone entry should open the dialogue")
	}
	if e.Phase() != PhaseAwaitingAdvance {
		t.Fatalf("phase = %s, want awaiting_advance", e.Phase())
	}
	if got := e.Current(); got == nil || got.Text != "First." {
		t.Fatalf("Current() = %+v, want First.", got)
	}
	if len(fx.opened) != 1 || fx.opened[0] != "z1" {
		t.Fatalf("opened = %v, want [z1]", fx.opened)
	}

	if err := e.Advance(); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if got := e.Current(); got == nil || got.Text != "Last." {
		t.Fatalf("Current() = %+v, want Last.", got)
	}

	if err := e.Advance(); err != nil {
		t.Fatalf("Advance past terminal: %v", err)
	}
	if e.Phase() != PhaseIdle {
		t.Fatalf("phase after close = %s, want idle", e.Phase())
	}
	if e.Current() != nil {
		t.Error("Current() should be nil after close")
	}
	if fx.closed != 1 {
		t.Errorf("closed = %d, want 1", fx.closed)
	}
	if fx.ending {
		t.Error("t.slide terminal is not an ending node")
	}
	if len(fx.left) != 2 {
		t.Errorf("left = %v, want both nodes", fx.left)
	}
}

// TestEngineChoiceFlow exercises the branching path and the ending flag.
func TestEngineChoiceFlow(t *testing.T) {
	fx := &recordingEffects{}
	e := NewEngine(testLibrary(t), fx, newFakeView())

	e.HandleZoneEntered(ZoneEntered{ZoneID: "npc", GraphID: "t.chat"})
	if e.Phase() != PhaseAwaitingChoice {
		t.Fatalf("phase = %s, want awaiting_choice", e.Phase())
	}
	view := e.Current()
	if len(view.Choices) != 2 {
		t.Fatalf("choices = %v, want 2 entries", view.Choices)
	}

	// Advance is the wrong input for a branching node.
	if err := e.Advance(); !errors.Is(err, ErrNotAwaiting) {
		t.Errorf("Advance on choice node = %v, want ErrNotAwaiting", err)
	}
	if e.Phase() != PhaseAwaitingChoice {
		t.Error("rejected advance must not change phase")
	}

	if err := e.Choose(0); err != nil {
		t.Fatalf("Choose(0): %v", err)
	}
	if got := e.Current(); got.NodeID != "explain" {
		t.Fatalf("node after choose = %s, want explain", got.NodeID)
	}

	if err := e.Advance(); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if err := e.Advance(); err != nil {
		t.Fatalf("Advance past ending: %v", err)
	}
	if !fx.ending {
		t.Error("closing on the ending node should report ending=true")
	}
}

// TestEngineChoiceOutOfRange checks the recoverable invalid-input path.
func TestEngineChoiceOutOfRange(t *testing.T) {
	e := NewEngine(testLibrary(t), nil, newFakeView())
	e.HandleZoneEntered(ZoneEntered{ZoneID: "npc", GraphID: "t.chat"})

	for _, k := range []int{-1, 2, 99} {
		if err := e.Choose(k); !errors.Is(err, ErrChoiceOutOfRange) {
			t.Errorf("Choose(%d) = %v, want ErrChoiceOutOfRange", k, err)
		}
		if e.Phase() != PhaseAwaitingChoice {
			t.Errorf("Choose(%d) changed phase to %s", k, e.Phase())
		}
		if e.Current().NodeID != "greet" {
			t.Errorf("Choose(%d) moved the node", k)
		}
	}

	// A valid choice still works afterwards.
	if err := e.Choose(1); err != nil {
		t.Fatalf("Choose(1) after rejects: %v", err)
	}
}

// TestEngineIgnoresTriggersWhileActive checks that an open dialogue drops
// further zone events instead of restarting.
func TestEngineIgnoresTriggersWhileActive(t *testing.T) {
	e := NewEngine(testLibrary(t), nil, newFakeView())
	e.HandleZoneEntered(ZoneEntered{ZoneID: "a", GraphID: "t.slide"})
	if e.HandleZoneEntered(ZoneEntered{ZoneID: "b", GraphID: "t.chat"}) {
		t.Fatal("second trigger while active should be dropped")
	}
	if e.Current().GraphID != "t.slide" {
		t.Error("active graph must be unchanged")
	}
}

// TestEngineOneShotSuppression checks consumed one-shot zones do not reopen.
func TestEngineOneShotSuppression(t *testing.T) {
	view := newFakeView()
	e := NewEngine(testLibrary(t), nil, view)

	ev := ZoneEntered{ZoneID: "intro", GraphID: "t.slide", OneShot: true}
	if !e.HandleZoneEntered(ev) {
		t.Fatal("first one-shot entry should open")
	}
	// Session layer marks the zone consumed when the dialogue closes.
	view.consumed["intro"] = true
	e.Advance()
	e.Advance()

	if e.HandleZoneEntered(ev) {
		t.Error("consumed one-shot zone should not reopen")
	}
	if e.Phase() != PhaseIdle {
		t.Errorf("phase = %s, want idle", e.Phase())
	}
}

// TestEngineUnboundGraphDropped checks a zone bound to a missing graph is a
// no-op rather than a panic.
func TestEngineUnboundGraphDropped(t *testing.T) {
	e := NewEngine(testLibrary(t), nil, newFakeView())
	if e.HandleZoneEntered(ZoneEntered{ZoneID: "z", GraphID: "t.missing"}) {
		t.Fatal("unbound graph should not open")
	}
	if e.Phase() != PhaseIdle {
		t.Errorf("phase = %s, want idle", e.Phase())
	}
}

// TestEngineInputInIdle checks advance/choose outside a dialogue are
// recoverable errors.
func TestEngineInputInIdle(t *testing.T) {
	e := NewEngine(testLibrary(t), nil, newFakeView())
	if err := e.Advance(); !errors.Is(err, ErrNotAwaiting) {
		t.Errorf("Advance while idle = %v, want ErrNotAwaiting", err)
	}
	if err := e.Choose(0); !errors.Is(err, ErrNotAwaiting) {
		t.Errorf("Choose while idle = %v, want ErrNotAwaiting", err)
	}
}

// TestEngineSeenFlag checks the render view reflects the session's visited
// set without blocking progress.
func TestEngineSeenFlag(t *testing.T) {
	view := newFakeView()
	view.seen["t.slide/one"] = true
	e := NewEngine(testLibrary(t), nil, view)

	e.HandleZoneEntered(ZoneEntered{ZoneID: "z", GraphID: "t.slide"})
	if got := e.Current(); !got.Seen {
		t.Error("previously visited node should render Seen")
	}
	if err := e.Advance(); err != nil {
		t.Fatalf("seen node must still advance: %v", err)
	}
	if got := e.Current(); got.Seen {
		t.Error("unvisited node should not render Seen")
	}
}
