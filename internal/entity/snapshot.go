package entity

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

func (t Theme) Valid() bool {
	return t == ThemeDark || t == ThemeLight
}

// Snapshot is the persisted subset of the application state.
type Snapshot struct {
	Theme             Theme            `json:"theme" yaml:"theme"`
	SidebarCollapsed  bool             `json:"sidebarCollapsed" yaml:"sidebarCollapsed"`
	SelectedChannelID *string          `json:"selectedChannelId" yaml:"selectedChannelId"`
	DateRange         DateRange        `json:"dateRange" yaml:"dateRange"`
	CustomDateRange   CustomDateRange  `json:"customDateRange" yaml:"customDateRange"`
	YouTubeAPIKey     *string          `json:"youtubeApiKey" yaml:"youtubeApiKey"`
	IsAuthenticated   bool             `json:"isAuthenticated" yaml:"isAuthenticated"`
	UserName          string           `json:"userName" yaml:"userName"`
	UploadTemplates   []UploadTemplate `json:"uploadTemplates" yaml:"uploadTemplates"`
	Channels          []Channel        `json:"channels" yaml:"channels"`
}

// Clone returns a deep copy. Nil slices become empty ones.
func (s Snapshot) Clone() Snapshot {
	c := s
	c.SelectedChannelID = CloneString(s.SelectedChannelID)
	c.YouTubeAPIKey = CloneString(s.YouTubeAPIKey)
	c.CustomDateRange = s.CustomDateRange.Clone()

	c.Channels = make([]Channel, len(s.Channels))
	copy(c.Channels, s.Channels)

	c.UploadTemplates = make([]UploadTemplate, 0, len(s.UploadTemplates))
	for _, t := range s.UploadTemplates {
		c.UploadTemplates = append(c.UploadTemplates, t.Clone())
	}

	return c
}

// CloneString returns a copy of s that shares no memory with it.
func CloneString(s *string) *string {
	if s == nil {
		return nil
	}

	v := *s

	return &v
}
