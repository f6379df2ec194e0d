// Package query derives presentation values from a store snapshot without mutating it.
// Lookups never fail: a missing value degrades to an empty result or the all-channels sentinel.
package query

import (
	"slices"
	"time"

	"github.com/jgivc/darkhammer/internal/entity"
)

const day = 24 * time.Hour

// ConnectedChannels returns channels with the connection flag set, in input order. Never nil.
func ConnectedChannels(channels []entity.Channel) []entity.Channel {
	connected := make([]entity.Channel, 0, len(channels))
	for _, c := range channels {
		if c.IsConnected {
			connected = append(connected, c)
		}
	}

	return connected
}

// Active is the resolved channel filter. All is the all-channels sentinel, Channel is nil then.
type Active struct {
	Channel *entity.Channel `json:"channel"`
	All     bool            `json:"all"`
}

func ActiveChannel(selectedID *string, channels []entity.Channel) Active {
	if selectedID == nil {
		return Active{All: true}
	}

	for i := range channels {
		if channels[i].ID == *selectedID {
			c := channels[i]

			return Active{Channel: &c}
		}
	}

	return Active{All: true}
}

// Window is an inclusive time window. A nil bound is unbounded.
type Window struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

func (w Window) Unbounded() bool {
	return w.Start == nil && w.End == nil
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	if w.Start != nil && t.Before(*w.Start) {
		return false
	}
	if w.End != nil && t.After(*w.End) {
		return false
	}

	return true
}

// ResolveWindow turns the selector into a concrete window ending at now for presets.
// The custom range is used as stored; its ordering is enforced when it is written.
func ResolveWindow(dr entity.DateRange, custom entity.CustomDateRange, now time.Time) Window {
	if dr == entity.DateRangeCustom {
		return Window{Start: custom.StartDate, End: custom.EndDate}
	}

	dur, ok := dr.Duration()
	if !ok {
		return Window{}
	}

	start := now.Add(-dur)

	return Window{Start: &start, End: &now}
}

// DayCount returns end - start in calendar days plus one. ok is false until both ends are set.
func DayCount(custom entity.CustomDateRange) (int, bool) {
	if !custom.Complete() {
		return 0, false
	}

	return daysBetween(*custom.StartDate, *custom.EndDate) + 1, true
}

func daysBetween(start, end time.Time) int {
	start, end = start.UTC(), end.UTC()
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	return int(e.Sub(s) / day)
}

// TemplatesForChannel returns global templates plus those scoped to channelID.
// A nil channelID returns every template.
func TemplatesForChannel(templates []entity.UploadTemplate, channelID *string) []entity.UploadTemplate {
	res := make([]entity.UploadTemplate, 0, len(templates))
	for _, t := range templates {
		if channelID == nil || t.ChannelID == nil || *t.ChannelID == *channelID {
			res = append(res, t)
		}
	}

	return res
}

// ApplyTemplate overwrites the draft with the template fields. The draft is returned untouched
// and ok is false when id is unknown.
func ApplyTemplate(templates []entity.UploadTemplate, id string, draft entity.UploadForm) (entity.UploadForm, bool) {
	i := slices.IndexFunc(templates, func(t entity.UploadTemplate) bool { return t.ID == id })
	if i < 0 {
		return draft, false
	}

	t := templates[i].Clone()

	return entity.UploadForm{
		Title:         t.Title,
		Description:   t.Description,
		Tags:          t.Tags,
		Visibility:    t.Visibility,
		ScheduledDate: t.ScheduledDate,
	}, true
}
