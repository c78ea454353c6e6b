package game

import (
	"errors"
	"fmt"
	"sync"

	"PierToThePast/internal/dialogue"
)

var (
	// ErrStoryActive is the state-conflict error: another story is in
	// progress and not yet completed.
	ErrStoryActive = errors.New("session: a story is already active")
	// ErrStoryUnknown is returned for ids missing from the registry.
	ErrStoryUnknown = errors.New("session: unknown story")
	// ErrStoryLocked is returned when replay is disabled and the story was
	// already completed this session.
	ErrStoryLocked = errors.New("session: story already completed")
)

// StoryState is the per-story narrative record. Process lifetime only;
// nothing here is ever written to disk.
type StoryState struct {
	StoryID       string
	CurrentGraph  dialogue.GraphID
	CurrentNode   dialogue.NodeID
	Visited       map[string]bool
	ConsumedZones map[string]bool
	Completed     bool
}

func newStoryState(id string) *StoryState {
	return &StoryState{
		StoryID:       id,
		Visited:       make(map[string]bool),
		ConsumedZones: make(map[string]bool),
	}
}

func visitKey(graphID dialogue.GraphID, nodeID dialogue.NodeID) string {
	return string(graphID) + "/" + string(nodeID)
}

// SessionState is the single process-wide record of which story is active,
// what has been seen, and whether dialogue currently holds movement. It is
// only ever touched from the session's tick loop.
type SessionState struct {
	ActiveStory    string
	Stories        map[string]*StoryState
	MovementLocked bool

	// AllowReplay is the pinned product rule for completed stories: the
	// kiosk serves walk-up visitors, so a finished vignette can be started
	// again. Replaying clears its one-shot zone consumption.
	AllowReplay bool
}

func NewSessionState(allowReplay bool) *SessionState {
	return &SessionState{
		Stories:     make(map[string]*StoryState),
		AllowReplay: allowReplay,
	}
}

// StartStory activates a story. Only one story can be in progress at a
// time; a completed story can be re-entered when AllowReplay is set.
func (s *SessionState) StartStory(id string) (*StoryState, error) {
	if StoryByID(id) == nil {
		return nil, fmt.Errorf("%w: %s", ErrStoryUnknown, id)
	}
	if s.ActiveStory != "" && s.ActiveStory != id {
		if active := s.Stories[s.ActiveStory]; active != nil && !active.Completed {
			return nil, fmt.Errorf("%w: %s", ErrStoryActive, s.ActiveStory)
		}
	}
	st, ok := s.Stories[id]
	if !ok {
		st = newStoryState(id)
		s.Stories[id] = st
	} else if st.Completed {
		if !s.AllowReplay {
			return nil, fmt.Errorf("%w: %s", ErrStoryLocked, id)
		}
		// Completed stays set for the hub screen; zones re-arm so the
		// vignette plays through again.
		st.ConsumedZones = make(map[string]bool)
		st.CurrentGraph = ""
		st.CurrentNode = ""
	}
	s.ActiveStory = id
	return st, nil
}

// Active returns the state of the story in progress, or nil.
func (s *SessionState) Active() *StoryState {
	if s.ActiveStory == "" {
		return nil
	}
	return s.Stories[s.ActiveStory]
}

// Reset clears all story state and unlocks movement: the hub screen
// lifecycle transition.
func (s *SessionState) Reset() {
	s.ActiveStory = ""
	s.Stories = make(map[string]*StoryState)
	s.MovementLocked = false
}

// ZoneConsumed implements dialogue.SessionView.
func (s *SessionState) ZoneConsumed(zoneID string) bool {
	if st := s.Active(); st != nil {
		return st.ConsumedZones[zoneID]
	}
	return false
}

// NodeSeen implements dialogue.SessionView.
func (s *SessionState) NodeSeen(graphID dialogue.GraphID, nodeID dialogue.NodeID) bool {
	if st := s.Active(); st != nil {
		return st.Visited[visitKey(graphID, nodeID)]
	}
	return false
}

/* ---------------------------- dialogue wiring ---------------------------- */

// storyEffects routes the dialogue engine's control signals into the
// session state and records what happened this tick for the TickResult.
type storyEffects struct {
	state *SessionState

	opened         bool
	closed         bool
	completedStory string
}

func (e *storyEffects) resetTick() {
	e.opened = false
	e.closed = false
	e.completedStory = ""
}

func (e *storyEffects) OnOpen(graphID dialogue.GraphID, zoneID string) {
	e.state.MovementLocked = true
	e.opened = true
	if st := e.state.Active(); st != nil {
		st.CurrentGraph = graphID
	}
}

func (e *storyEffects) OnNodeLeft(graphID dialogue.GraphID, nodeID dialogue.NodeID) {
	if st := e.state.Active(); st != nil {
		st.Visited[visitKey(graphID, nodeID)] = true
		st.CurrentNode = nodeID
	}
}

func (e *storyEffects) OnClose(graphID dialogue.GraphID, zoneID string, oneShot, ending bool) {
	e.state.MovementLocked = false
	e.closed = true
	st := e.state.Active()
	if st == nil {
		return
	}
	if oneShot {
		st.ConsumedZones[zoneID] = true
	}
	if ending {
		// The story stays active so zone consumption and seen-node lookups
		// keep working while the visitor is still walking the level.
		// StartStory lets them switch to another story from here.
		st.Completed = true
		e.completedStory = st.StoryID
	}
}

/* -------------------------------- session -------------------------------- */

// InputFrame is one tick's worth of input-device events. Choice is -1 when
// no selection was made.
type InputFrame struct {
	Move    Vec2
	Advance bool
	Choice  int
}

// TickResult reports what one frame did, for the transport layer to log
// and trace.
type TickResult struct {
	Frame          FrameResult
	DialogueOpened bool
	DialogueClosed bool
	CompletedStory string
	LevelChanged   bool
}

// Session is one visitor's run of the kiosk: the world, the active level,
// the dialogue engine, and the narrative state, all driven by a single
// tick loop. Mu guards against the transport goroutines; within a tick
// everything is single-writer.
type Session struct {
	ID    string
	Now   float64
	World *World
	State *SessionState

	Mu sync.Mutex

	levels   *LevelLibrary
	engine   *dialogue.Engine
	effects  *storyEffects
	explorer *Explorer
	level    *Level
	player   EntityID
}

func NewSession(id string, levels *LevelLibrary, scripts *dialogue.Library, allowReplay bool) *Session {
	state := NewSessionState(allowReplay)
	effects := &storyEffects{state: state}
	s := &Session{
		ID:      id,
		World:   NewWorld(),
		State:   state,
		levels:  levels,
		effects: effects,
	}
	s.engine = dialogue.NewEngine(scripts, effects, state)
	return s
}

// Level returns the active level, or nil while on the hub screen.
func (s *Session) Level() *Level { return s.level }

// Player returns the player entity id; zero while on the hub screen.
func (s *Session) Player() EntityID { return s.player }

// Dialogue returns the current render request, or nil when no dialogue is
// showing.
func (s *Session) Dialogue() *dialogue.NodeView { return s.engine.Current() }

// DialoguePhase reports the engine's state-machine phase for the render sink.
func (s *Session) DialoguePhase() dialogue.Phase { return s.engine.Phase() }

// StartStory activates a registry story and loads its level. The
// state-conflict error surfaces to the caller; nothing is torn down on
// failure.
func (s *Session) StartStory(storyID string) error {
	story := StoryByID(storyID)
	if story == nil {
		return fmt.Errorf("%w: %s", ErrStoryUnknown, storyID)
	}
	lvl, err := s.levels.Get(story.LevelID)
	if err != nil {
		return err
	}
	if _, err := s.State.StartStory(storyID); err != nil {
		return err
	}
	s.engine.Abort()
	s.State.MovementLocked = false
	s.loadLevel(lvl, lvl.Spawn)
	return nil
}

// ReturnToHub resets all narrative state and drops the level.
func (s *Session) ReturnToHub() {
	s.engine.Abort()
	s.State.Reset()
	s.World = NewWorld()
	s.level = nil
	s.player = 0
	s.explorer = nil
}

// loadLevel rebuilds the world for lvl and places the player at entry.
func (s *Session) loadLevel(lvl *Level, entry Vec2) {
	s.World = NewWorld()
	sheet := lvl.PlayerSheet
	if sheet == "" {
		sheet = "gentleman"
	}
	s.player = SpawnPlayer(s.World, entry, sheet)
	for _, npc := range lvl.NPCs {
		SpawnNPC(s.World, npc.Name, npc.Pos, npc.Sheet, npc.Facing)
	}
	s.level = lvl
	if s.explorer == nil {
		s.explorer = NewExplorer(s.World, lvl, s.player, func() bool {
			return s.State.MovementLocked
		})
	}
	s.explorer.world = s.World
	s.explorer.SetLevel(lvl, s.player)
}

// Tick runs one logical frame: dialogue input, movement resolution, trigger
// dispatch, level transitions, animation. Never blocks, never halts on bad
// input.
func (s *Session) Tick(in InputFrame) TickResult {
	s.Now += Dt
	s.effects.resetTick()
	var result TickResult

	// Dialogue input first, so closing a dialogue frees movement within
	// the same tick.
	if s.engine.Active() {
		switch {
		case in.Advance:
			_ = s.engine.Advance() // mismatched phase: ignored
		case in.Choice >= 0:
			// Out-of-range and mismatched-phase errors are the recoverable
			// invalid-input category; the node stays put.
			_ = s.engine.Choose(in.Choice)
		}
	}

	if s.explorer != nil {
		result.Frame = s.explorer.Update(in.Move, Dt)
		for _, zone := range result.Frame.Entered {
			s.engine.HandleZoneEntered(dialogue.ZoneEntered{
				ZoneID:  zone.ID,
				GraphID: dialogue.GraphID(zone.GraphID),
				OneShot: zone.OneShot,
			})
		}
		if t := result.Frame.Transition; t != nil && !s.State.MovementLocked {
			if next, err := s.levels.Get(t.ToLevel); err == nil {
				s.loadLevel(next, t.Entry)
				result.LevelChanged = true
			}
		}
	}

	s.World.ForEach([]ComponentKey{CompAnim}, func(id EntityID) {
		s.World.Anim(id).AdvanceAnimation(Dt)
	})

	result.DialogueOpened = s.effects.opened
	result.DialogueClosed = s.effects.closed
	result.CompletedStory = s.effects.completedStory
	return result
}
