package game

// Story is one of the kiosk's vignettes: a titled walk through one map
// whose ending dialogue node marks it complete on the hub screen.
type Story struct {
	ID      string
	Title   string
	Blurb   string
	LevelID string
}

// Stories is the kiosk's fixed registry, shown on the hub screen in this
// order.
func Stories() []Story {
	return []Story{
		{
			ID:      "pier",
			Title:   "The Morning After the Storm",
			Blurb:   "October 1833. Walk the ruined Chain Pier and speak with the piermaster.",
			LevelID: "pier",
		},
		{
			ID:      "streets",
			Title:   "Voices of the Town",
			Blurb:   "The residents remember the Birthday Storm, each in their own way.",
			LevelID: "streets",
		},
		{
			ID:      "palace",
			Title:   "The Mayor's Dilemma",
			Blurb:   "Repairs cost money the town does not have. Help the mayor decide.",
			LevelID: "palace",
		},
	}
}

// StoryByID returns the registry entry, or nil for an unknown id.
func StoryByID(id string) *Story {
	for _, s := range Stories() {
		if s.ID == id {
			out := s
			return &out
		}
	}
	return nil
}
