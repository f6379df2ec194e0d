package entity

// Channel is a YouTube channel managed from the dashboard.
type Channel struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Thumbnail   string `json:"thumbnail" yaml:"thumbnail"`
	IsConnected bool   `json:"isConnected" yaml:"isConnected"`
}
