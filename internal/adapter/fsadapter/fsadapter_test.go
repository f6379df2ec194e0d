package fsadapter

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jgivc/darkhammer/internal/entity"
	"github.com/jgivc/darkhammer/internal/util"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestToTemplate(t *testing.T) {
	fs := afero.NewMemMapFs()

	files := map[string]string{
		"/tpl/weekly.md": `---
id: weekly
name: Weekly update
channel: UCdh-main-0001
title: "Weekly update"
tags: [weekly, "#News", weekly, " "]
visibility: Unlisted
scheduled: 2024-05-10T16:00:00Z
---
Fresh from the forge #steel

Second paragraph.
`,
		"/tpl/plain.md":    "Just a description",
		"/tpl/bad-vis.md":  "---\nvisibility: secret\n---\nbody\n",
		"/tpl/bad-date.md": "---\nscheduled: tomorrow\n---\nbody\n",
		"/tpl/bare.md":     "---\ntitle: Bare\n---\n",
	}
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0644))
	}

	a := NewFSAdapterWithFS(fs, testLogger())

	t.Run("full frontmatter", func(t *testing.T) {
		tf, err := a.ToTemplate("/tpl/weekly.md")
		require.NoError(t, err)
		require.Equal(t, "/tpl/weekly.md", tf.SourcePath)

		tmpl := tf.Template
		require.Equal(t, "weekly", tmpl.ID)
		require.Equal(t, "Weekly update", tmpl.Name)
		require.Equal(t, "UCdh-main-0001", *tmpl.ChannelID)
		require.Equal(t, "Weekly update", tmpl.Title)
		require.Equal(t, []string{"weekly", "News"}, tmpl.Tags)
		require.Equal(t, entity.VisibilityUnlisted, tmpl.Visibility)
		require.Equal(t, time.Date(2024, 5, 10, 16, 0, 0, 0, time.UTC), tmpl.ScheduledDate.UTC())
		require.Equal(t, "Fresh from the forge #steel\n\nSecond paragraph.", tmpl.Description)
	})

	t.Run("no frontmatter", func(t *testing.T) {
		tf, err := a.ToTemplate("/tpl/plain.md")
		require.NoError(t, err)

		path := "/tpl/plain.md"
		tmpl := tf.Template
		require.Equal(t, util.GetIDFromString(&path), tmpl.ID)
		require.Equal(t, "plain", tmpl.Name)
		require.Nil(t, tmpl.ChannelID)
		require.Nil(t, tmpl.ScheduledDate)
		require.Equal(t, entity.VisibilityPublic, tmpl.Visibility)
		require.Equal(t, "Just a description", tmpl.Description)
		require.NotNil(t, tmpl.Tags)
	})

	t.Run("empty body", func(t *testing.T) {
		tf, err := a.ToTemplate("/tpl/bare.md")
		require.NoError(t, err)
		require.Equal(t, "Bare", tf.Template.Title)
		require.Empty(t, tf.Template.Description)
	})

	t.Run("errors", func(t *testing.T) {
		for _, path := range []string{"/tpl/bad-vis.md", "/tpl/bad-date.md", "/tpl/missing.md", "/tpl/../etc/passwd"} {
			_, err := a.ToTemplate(path)
			require.Error(t, err, path)
		}
	})
}
