package state

// Settings is a channel's public configuration, embedded in ch frames and
// channel-list entries.
type Settings struct {
	Color     string `json:"color"`
	Color2    string `json:"color2,omitempty"`
	Lobby     bool   `json:"lobby"`
	Visible   bool   `json:"visible"`
	Chat      bool   `json:"chat"`
	Crownsolo bool   `json:"crownsolo"`
}

// SettingsPatch carries a validated chset update. Nil fields are left
// untouched.
type SettingsPatch struct {
	Color     *string
	Visible   *bool
	Chat      *bool
	Crownsolo *bool
}

func (s *Settings) apply(p SettingsPatch) {
	if p.Color != nil {
		s.Color = *p.Color
	}
	if p.Visible != nil {
		s.Visible = *p.Visible
	}
	if p.Chat != nil {
		s.Chat = *p.Chat
	}
	if p.Crownsolo != nil {
		s.Crownsolo = *p.Crownsolo
	}
}

func defaultSettings(special bool) Settings {
	if special {
		return Settings{
			Color:   "#73b3cc",
			Color2:  "#273546",
			Lobby:   true,
			Visible: true,
			Chat:    true,
		}
	}
	return Settings{
		Color:   "#ecfaed",
		Visible: true,
		Chat:    true,
	}
}
