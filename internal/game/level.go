package game

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// TriggerZone is a map-bound rectangle whose entry can start a dialogue
// graph. Read-only to the core once the level is loaded.
type TriggerZone struct {
	ID      string
	Bounds  Rect
	GraphID string
	OneShot bool
}

// EdgeSide names a level boundary for walk-off transitions.
type EdgeSide string

const (
	EdgeLeft   EdgeSide = "left"
	EdgeRight  EdgeSide = "right"
	EdgeTop    EdgeSide = "top"
	EdgeBottom EdgeSide = "bottom"
)

// EdgeExit transitions the player to another level when they walk past a
// boundary, the way the pier/palace maps chain together.
type EdgeExit struct {
	Side    EdgeSide
	ToLevel string
	Entry   Vec2 // world coords in the target level
}

type NPCSpec struct {
	Name   string
	Sheet  string
	Pos    Vec2
	Facing Facing
}

// Level is the parsed geometry for one map: a solid-cell grid, trigger
// zones, NPC placements, and edge exits. Immutable after load.
type Level struct {
	ID          string
	Name        string
	WidthTiles  int
	HeightTiles int
	Spawn       Vec2
	PlayerSheet string
	NPCs        []NPCSpec
	Zones       []TriggerZone
	Edges       []EdgeExit

	solid map[[2]int]bool
}

func (l *Level) Width() float64  { return float64(l.WidthTiles) * TileSize }
func (l *Level) Height() float64 { return float64(l.HeightTiles) * TileSize }

// SolidAt reports whether the tile at (tx, ty) blocks movement. Tiles
// outside the grid are solid so entities cannot leave the map except
// through a declared edge exit.
func (l *Level) SolidAt(tx, ty int) bool {
	if tx < 0 || ty < 0 || tx >= l.WidthTiles || ty >= l.HeightTiles {
		return true
	}
	return l.solid[[2]int{tx, ty}]
}

// Blocked reports whether box overlaps any solid tile.
func (l *Level) Blocked(box Rect) bool {
	minTX := int(box.MinX() / TileSize)
	maxTX := int(box.MaxX() / TileSize)
	minTY := int(box.MinY() / TileSize)
	maxTY := int(box.MaxY() / TileSize)
	if box.MinX() < 0 {
		minTX--
	}
	if box.MinY() < 0 {
		minTY--
	}
	for ty := minTY; ty <= maxTY; ty++ {
		for tx := minTX; tx <= maxTX; tx++ {
			if !l.SolidAt(tx, ty) {
				continue
			}
			tile := RectFromBounds(
				float64(tx)*TileSize, float64(ty)*TileSize,
				float64(tx+1)*TileSize, float64(ty+1)*TileSize,
			)
			if box.Overlaps(tile) {
				return true
			}
		}
	}
	return false
}

// Zone returns the trigger zone with the given id, or nil.
func (l *Level) Zone(id string) *TriggerZone {
	for i := range l.Zones {
		if l.Zones[i].ID == id {
			return &l.Zones[i]
		}
	}
	return nil
}

// EdgeAt returns the exit the player has crossed, if any.
func (l *Level) EdgeAt(pos Vec2) *EdgeExit {
	for i := range l.Edges {
		e := &l.Edges[i]
		switch e.Side {
		case EdgeLeft:
			if pos.X <= EdgeTransitionBuffer {
				return e
			}
		case EdgeRight:
			if pos.X >= l.Width()-EdgeTransitionBuffer {
				return e
			}
		case EdgeTop:
			if pos.Y <= EdgeTransitionBuffer {
				return e
			}
		case EdgeBottom:
			if pos.Y >= l.Height()-EdgeTransitionBuffer {
				return e
			}
		}
	}
	return nil
}

/* ------------------------------ YAML form ------------------------------ */

type tileXY struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

type tileRect struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

type npcYAML struct {
	Name   string `yaml:"name"`
	Sheet  string `yaml:"sheet"`
	Tile   tileXY `yaml:"tile"`
	Facing string `yaml:"facing"`
}

type zoneYAML struct {
	ID      string   `yaml:"id"`
	Graph   string   `yaml:"graph"`
	OneShot bool     `yaml:"one_shot"`
	Rect    tileRect `yaml:"rect"`
}

type edgeYAML struct {
	Side  string `yaml:"side"`
	To    string `yaml:"to"`
	Entry tileXY `yaml:"entry"`
}

type levelYAML struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	PlayerSheet string     `yaml:"player_sheet"`
	Collision   []string   `yaml:"collision"`
	Spawn       tileXY     `yaml:"spawn"`
	NPCs        []npcYAML  `yaml:"npcs"`
	Zones       []zoneYAML `yaml:"zones"`
	Edges       []edgeYAML `yaml:"edges"`
}

var (
	ErrLevelInvalid  = errors.New("level: invalid map data")
	ErrLevelNotFound = errors.New("level: not found")
)

func tileCenter(t tileXY) Vec2 {
	return Vec2{
		X: (float64(t.X) + 0.5) * TileSize,
		Y: (float64(t.Y) + 0.5) * TileSize,
	}
}

func parseFacing(raw string) (Facing, error) {
	switch Facing(raw) {
	case FacingUp, FacingDown, FacingLeft, FacingRight:
		return Facing(raw), nil
	case "":
		return FacingDown, nil
	}
	return "", fmt.Errorf("%w: unknown facing %q", ErrLevelInvalid, raw)
}

// ParseLevel decodes and validates one level document. All precondition
// failures surface here, never at tick time.
func ParseLevel(data []byte) (*Level, error) {
	var doc levelYAML
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLevelInvalid, err)
	}
	if doc.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrLevelInvalid)
	}
	if len(doc.Collision) == 0 {
		return nil, fmt.Errorf("%w: level %s has no collision rows", ErrLevelInvalid, doc.ID)
	}

	width := len(doc.Collision[0])
	lvl := &Level{
		ID:          doc.ID,
		Name:        doc.Name,
		WidthTiles:  width,
		HeightTiles: len(doc.Collision),
		PlayerSheet: doc.PlayerSheet,
		solid:       make(map[[2]int]bool),
	}
	for y, row := range doc.Collision {
		if len(row) != width {
			return nil, fmt.Errorf("%w: level %s row %d has width %d, want %d",
				ErrLevelInvalid, doc.ID, y, len(row), width)
		}
		for x, cell := range row {
			if cell != '.' {
				lvl.solid[[2]int{x, y}] = true
			}
		}
	}

	lvl.Spawn = tileCenter(doc.Spawn)
	if lvl.SolidAt(doc.Spawn.X, doc.Spawn.Y) {
		return nil, fmt.Errorf("%w: level %s spawn (%d,%d) is solid",
			ErrLevelInvalid, doc.ID, doc.Spawn.X, doc.Spawn.Y)
	}

	for _, n := range doc.NPCs {
		facing, err := parseFacing(n.Facing)
		if err != nil {
			return nil, err
		}
		lvl.NPCs = append(lvl.NPCs, NPCSpec{
			Name:   n.Name,
			Sheet:  n.Sheet,
			Pos:    tileCenter(n.Tile),
			Facing: facing,
		})
	}

	seen := make(map[string]bool)
	for _, z := range doc.Zones {
		if z.ID == "" || z.Graph == "" {
			return nil, fmt.Errorf("%w: level %s zone needs id and graph", ErrLevelInvalid, doc.ID)
		}
		if seen[z.ID] {
			return nil, fmt.Errorf("%w: level %s duplicate zone %s", ErrLevelInvalid, doc.ID, z.ID)
		}
		seen[z.ID] = true
		if z.Rect.W <= 0 || z.Rect.H <= 0 {
			return nil, fmt.Errorf("%w: level %s zone %s has empty rect", ErrLevelInvalid, doc.ID, z.ID)
		}
		if z.Rect.X < 0 || z.Rect.Y < 0 ||
			z.Rect.X+z.Rect.W > lvl.WidthTiles || z.Rect.Y+z.Rect.H > lvl.HeightTiles {
			return nil, fmt.Errorf("%w: level %s zone %s outside grid", ErrLevelInvalid, doc.ID, z.ID)
		}
		lvl.Zones = append(lvl.Zones, TriggerZone{
			ID: z.ID,
			Bounds: RectFromBounds(
				float64(z.Rect.X)*TileSize, float64(z.Rect.Y)*TileSize,
				float64(z.Rect.X+z.Rect.W)*TileSize, float64(z.Rect.Y+z.Rect.H)*TileSize,
			),
			GraphID: z.Graph,
			OneShot: z.OneShot,
		})
	}

	for _, e := range doc.Edges {
		side := EdgeSide(e.Side)
		switch side {
		case EdgeLeft, EdgeRight, EdgeTop, EdgeBottom:
		default:
			return nil, fmt.Errorf("%w: level %s unknown edge side %q", ErrLevelInvalid, doc.ID, e.Side)
		}
		if e.To == "" {
			return nil, fmt.Errorf("%w: level %s edge %s has no target", ErrLevelInvalid, doc.ID, e.Side)
		}
		lvl.Edges = append(lvl.Edges, EdgeExit{
			Side:    side,
			ToLevel: e.To,
			Entry:   tileCenter(e.Entry),
		})
	}

	return lvl, nil
}

// LevelLibrary is the map data provider: all levels for the kiosk, loaded
// and cross-validated at startup.
type LevelLibrary struct {
	levels map[string]*Level
}

func (lib *LevelLibrary) Get(id string) (*Level, error) {
	lvl, ok := lib.levels[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLevelNotFound, id)
	}
	return lvl, nil
}

func (lib *LevelLibrary) IDs() []string {
	ids := make([]string, 0, len(lib.levels))
	for id := range lib.levels {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadLevels reads every *.yaml under dir in fsys. Edge targets are checked
// against the full set so a dangling transition fails at boot.
func LoadLevels(fsys fs.FS, dir string) (*LevelLibrary, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("level: read dir %s: %w", dir, err)
	}
	lib := &LevelLibrary{levels: make(map[string]*Level)}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("level: read %s: %w", entry.Name(), err)
		}
		lvl, err := ParseLevel(data)
		if err != nil {
			return nil, fmt.Errorf("level: %s: %w", entry.Name(), err)
		}
		if _, dup := lib.levels[lvl.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate level id %s", ErrLevelInvalid, lvl.ID)
		}
		lib.levels[lvl.ID] = lvl
	}
	if len(lib.levels) == 0 {
		return nil, fmt.Errorf("%w: no levels under %s", ErrLevelInvalid, dir)
	}
	for _, lvl := range lib.levels {
		for _, e := range lvl.Edges {
			if _, ok := lib.levels[e.ToLevel]; !ok {
				return nil, fmt.Errorf("%w: level %s edge points at missing level %s",
					ErrLevelInvalid, lvl.ID, e.ToLevel)
			}
		}
	}
	return lib, nil
}
