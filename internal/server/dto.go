package server

import (
	"sort"

	"PierToThePast/internal/game"
)

type levelDTO struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	TileSize float64  `json:"tile_size"`
	Tiles    []string `json:"tiles"`
}

type entityDTO struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name,omitempty"`
	Sheet   string  `json:"sheet"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Facing  string  `json:"facing"`
	Frame   int     `json:"frame"`
	Walking bool    `json:"walking"`
	Player  bool    `json:"player"`
}

type choiceDTO struct {
	Text string `json:"text"`
}

type dialogueDTO struct {
	Phase   string      `json:"phase"`
	Speaker string      `json:"speaker"`
	Text    string      `json:"text"`
	Choices []choiceDTO `json:"choices,omitempty"`
	Seen    bool        `json:"seen"`
}

type storyDTO struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Blurb     string `json:"blurb"`
	Completed bool   `json:"completed"`
	Active    bool   `json:"active"`
}

type hubDTO struct {
	Title   string     `json:"title"`
	Stories []storyDTO `json:"stories"`
}

// frameMsg is one render-sink push: everything the client needs to draw
// this tick.
type frameMsg struct {
	Type     string       `json:"type"`
	Now      float64      `json:"now"`
	Locked   bool         `json:"locked"`
	Level    *levelDTO    `json:"level,omitempty"`
	Entities []entityDTO  `json:"entities,omitempty"`
	Dialogue *dialogueDTO `json:"dialogue,omitempty"`
	Hub      *hubDTO      `json:"hub,omitempty"`
}

type errorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func levelToDTO(lvl *game.Level) *levelDTO {
	if lvl == nil {
		return nil
	}
	tiles := make([]string, lvl.HeightTiles)
	for y := 0; y < lvl.HeightTiles; y++ {
		row := make([]byte, lvl.WidthTiles)
		for x := 0; x < lvl.WidthTiles; x++ {
			if lvl.SolidAt(x, y) {
				row[x] = '#'
			} else {
				row[x] = '.'
			}
		}
		tiles[y] = string(row)
	}
	return &levelDTO{
		ID:       lvl.ID,
		Name:     lvl.Name,
		Width:    lvl.WidthTiles,
		Height:   lvl.HeightTiles,
		TileSize: game.TileSize,
		Tiles:    tiles,
	}
}

// buildFrame assembles the outbound frame for a session. Caller holds the
// session mutex.
func buildFrame(k *Kiosk, s *game.Session) frameMsg {
	msg := frameMsg{
		Type:   "frame",
		Now:    s.Now,
		Locked: s.State.MovementLocked,
		Level:  levelToDTO(s.Level()),
	}

	if lvl := s.Level(); lvl != nil {
		s.World.ForEach([]game.ComponentKey{game.CompTransform, game.CompSprite}, func(id game.EntityID) {
			tr := s.World.Transform(id)
			sprite := s.World.Sprite(id)
			dto := entityDTO{
				ID:     int64(id),
				Sheet:  sprite.Sheet,
				X:      tr.Pos.X,
				Y:      tr.Pos.Y,
				Facing: string(sprite.Facing),
				Player: id == s.Player(),
			}
			if anim := s.World.Anim(id); anim != nil {
				dto.Frame = anim.Frame
				dto.Walking = anim.Walking
			}
			if npc := s.World.NPC(id); npc != nil {
				dto.Name = npc.Name
			}
			msg.Entities = append(msg.Entities, dto)
		})
		sort.Slice(msg.Entities, func(i, j int) bool {
			return msg.Entities[i].ID < msg.Entities[j].ID
		})
	} else {
		msg.Hub = buildHub(k, s)
	}

	if view := s.Dialogue(); view != nil {
		dlg := &dialogueDTO{
			Phase:   string(s.DialoguePhase()),
			Speaker: view.Speaker,
			Text:    view.Text,
			Seen:    view.Seen,
		}
		for _, text := range view.Choices {
			dlg.Choices = append(dlg.Choices, choiceDTO{Text: text})
		}
		msg.Dialogue = dlg
	}
	return msg
}

func buildHub(k *Kiosk, s *game.Session) *hubDTO {
	hub := &hubDTO{Title: k.Params.Title}
	for _, story := range game.Stories() {
		dto := storyDTO{
			ID:    story.ID,
			Title: story.Title,
			Blurb: story.Blurb,
		}
		if st, ok := s.State.Stories[story.ID]; ok {
			dto.Completed = st.Completed
			dto.Active = s.State.ActiveStory == story.ID && !st.Completed
		}
		hub.Stories = append(hub.Stories, dto)
	}
	return hub
}
