package entity

import "time"

type DataPoint struct {
	Date  time.Time `json:"date" yaml:"date"`
	Views int64     `json:"views" yaml:"views"`
}

// Analytics is an aggregate over one channel or all of them.
type Analytics struct {
	ChannelID    *string     `json:"channelId"`
	DateRange    DateRange   `json:"dateRange"`
	Views        int64       `json:"views" yaml:"views"`
	WatchHours   int64       `json:"watchHours" yaml:"watchHours"`
	Subscribers  int64       `json:"subscribers" yaml:"subscribers"`
	RevenueCents int64       `json:"revenueCents" yaml:"revenueCents"`
	DailyViews   []DataPoint `json:"dailyViews" yaml:"dailyViews"`
}

type UploadStatus string

const (
	UploadStatusPublished  UploadStatus = "published"
	UploadStatusScheduled  UploadStatus = "scheduled"
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusDraft      UploadStatus = "draft"
)

type Upload struct {
	ID            string       `json:"id" yaml:"id"`
	ChannelID     string       `json:"channelId" yaml:"channelId"`
	Title         string       `json:"title" yaml:"title"`
	Thumbnail     string       `json:"thumbnail" yaml:"thumbnail"`
	Status        UploadStatus `json:"status" yaml:"status"`
	Visibility    Visibility   `json:"visibility" yaml:"visibility"`
	Views         int64        `json:"views" yaml:"views"`
	PublishedAt   *time.Time   `json:"publishedAt" yaml:"publishedAt"`
	ScheduledDate *time.Time   `json:"scheduledDate" yaml:"scheduledDate"`
}

type CommentStatus string

const (
	CommentStatusPublished CommentStatus = "published"
	CommentStatusHeld      CommentStatus = "held"
	CommentStatusSpam      CommentStatus = "spam"
)

type Comment struct {
	ID        string        `json:"id" yaml:"id"`
	ChannelID string        `json:"channelId" yaml:"channelId"`
	VideoID   string        `json:"videoId" yaml:"videoId"`
	Author    string        `json:"author" yaml:"author"`
	Text      string        `json:"text" yaml:"text"`
	Likes     int64         `json:"likes" yaml:"likes"`
	Status    CommentStatus `json:"status" yaml:"status"`
	CreatedAt time.Time     `json:"createdAt" yaml:"createdAt"`
}

// Dashboard bundles every fixture set for one filter.
type Dashboard struct {
	Channels  []Channel `json:"channels"`
	Analytics Analytics `json:"analytics"`
	Uploads   []Upload  `json:"uploads"`
	Comments  []Comment `json:"comments"`
}
