package entity

import (
	"fmt"
	"time"
)

type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPrivate  Visibility = "private"
)

func ParseVisibility(s string) (Visibility, error) {
	switch v := Visibility(s); v {
	case VisibilityPublic, VisibilityUnlisted, VisibilityPrivate:
		return v, nil
	}

	return "", fmt.Errorf("unknown visibility: %q", s)
}

// UploadTemplate is a named, reusable bundle of video metadata.
type UploadTemplate struct {
	ID            string     `json:"id" yaml:"id"`
	ChannelID     *string    `json:"channelId" yaml:"channelId"` // nil - applies to every channel
	Name          string     `json:"name" yaml:"name"`
	Title         string     `json:"title" yaml:"title"`
	Description   string     `json:"description" yaml:"description"`
	Tags          []string   `json:"tags" yaml:"tags"`
	Visibility    Visibility `json:"visibility" yaml:"visibility"`
	ScheduledDate *time.Time `json:"scheduledDate" yaml:"scheduledDate"`
}

func (t UploadTemplate) Clone() UploadTemplate {
	c := t
	if t.ChannelID != nil {
		id := *t.ChannelID
		c.ChannelID = &id
	}
	c.Tags = append([]string{}, t.Tags...)
	c.ScheduledDate = cloneTime(t.ScheduledDate)

	return c
}

// TemplatePatch holds the fields to merge into a template. Nil fields are left untouched.
type TemplatePatch struct {
	ChannelID     **string    `json:"channelId,omitempty"`
	Name          *string     `json:"name,omitempty"`
	Title         *string     `json:"title,omitempty"`
	Description   *string     `json:"description,omitempty"`
	Tags          *[]string   `json:"tags,omitempty"`
	Visibility    *Visibility `json:"visibility,omitempty"`
	ScheduledDate **time.Time `json:"scheduledDate,omitempty"`
}

func (p TemplatePatch) Apply(t UploadTemplate) UploadTemplate {
	if p.ChannelID != nil {
		t.ChannelID = *p.ChannelID
	}
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Tags != nil {
		t.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.Visibility != nil {
		t.Visibility = *p.Visibility
	}
	if p.ScheduledDate != nil {
		t.ScheduledDate = *p.ScheduledDate
	}

	return t
}

// UploadForm is the draft state of the upload form.
type UploadForm struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Tags          []string   `json:"tags"`
	Visibility    Visibility `json:"visibility"`
	ScheduledDate *time.Time `json:"scheduledDate"`
}

// DescriptionPreview is a rendered description with the hashtags it uses.
type DescriptionPreview struct {
	HTML     string   `json:"html"`
	Hashtags []string `json:"hashtags"`
}

// TemplateFile is a template read from the import directory.
type TemplateFile struct {
	SourcePath string
	Template   UploadTemplate
	ModTime    time.Time
}
