package fsadapter

import (
	"bufio"
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/jgivc/darkhammer/internal/entity"
	"github.com/jgivc/darkhammer/internal/util"
	"github.com/spf13/afero"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/frontmatter"
)

const (
	maxFileSize = 1 << 20

	delimYAML = "---"
	delimTOML = "+++"
)

// Frontmatter is the metadata block of a template file:
//
//	---
//	name: Weekly update
//	channel: UCdh-main-0001
//	title: "Weekly update #{{n}}"
//	tags: [weekly, news]
//	visibility: unlisted
//	scheduled: 2024-05-10T16:00:00Z
//	---
//	Description text with #hashtags.
type Frontmatter struct {
	ID         string   `yaml:"id" toml:"id"`
	Name       string   `yaml:"name" toml:"name"`
	Channel    string   `yaml:"channel" toml:"channel"`
	Title      string   `yaml:"title" toml:"title"`
	Tags       []string `yaml:"tags" toml:"tags"`
	Visibility string   `yaml:"visibility" toml:"visibility"`
	Scheduled  string   `yaml:"scheduled" toml:"scheduled"`
}

type fsAdapter struct {
	fs  afero.Fs
	md  goldmark.Markdown
	log *slog.Logger
}

func NewFSAdapter(log *slog.Logger) *fsAdapter {
	return NewFSAdapterWithFS(afero.NewOsFs(), log)
}

func NewFSAdapterWithFS(fs afero.Fs, log *slog.Logger) *fsAdapter {
	md := goldmark.New(
		goldmark.WithExtensions(
			&frontmatter.Extender{},
		),
	)

	return &fsAdapter{
		fs:  fs,
		md:  md,
		log: log.With(slog.String("item", "FSAdapter")),
	}
}

/*
ToTemplate reads one template file:
 1. frontmatter fields map onto the template, id defaults to a hash of the path;
 2. name defaults to the file name without extension;
 3. the body after the frontmatter becomes the description.
*/
func (a *fsAdapter) ToTemplate(filePath string) (*entity.TemplateFile, error) {
	if strings.Contains(filePath, "..") {
		return nil, fmt.Errorf("invalid file path")
	}

	stat, err := a.fs.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("cannot stat file: %w", err)
	}

	if stat.Size() > maxFileSize {
		return nil, fmt.Errorf("file is too large: %d bytes", stat.Size())
	}

	src, err := afero.ReadFile(a.fs, filePath)
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}

	fm, err := a.getFrontmatter(src)
	if err != nil {
		return nil, fmt.Errorf("cannot get frontmatter: %w", err)
	}

	tmpl, err := toTemplate(fm, filePath)
	if err != nil {
		return nil, err
	}

	tmpl.Description = body(src)
	a.log.Debug("Template parsed", slog.String("path", filePath), slog.String("id", tmpl.ID))

	return &entity.TemplateFile{
		SourcePath: filePath,
		Template:   tmpl,
		ModTime:    stat.ModTime(),
	}, nil
}

func (a *fsAdapter) getFrontmatter(src []byte) (*Frontmatter, error) {
	ctx := parser.NewContext()
	a.md.Parser().Parse(text.NewReader(src), parser.WithContext(ctx))

	var fm Frontmatter

	data := frontmatter.Get(ctx)
	if data == nil {
		return &fm, nil
	}

	if err := data.Decode(&fm); err != nil {
		return nil, fmt.Errorf("cannot decode frontmatter: %w", err)
	}

	return &fm, nil
}

func toTemplate(fm *Frontmatter, filePath string) (entity.UploadTemplate, error) {
	tmpl := entity.UploadTemplate{
		ID:         strings.TrimSpace(fm.ID),
		Name:       strings.TrimSpace(fm.Name),
		Title:      fm.Title,
		Tags:       cleanTags(fm.Tags),
		Visibility: entity.VisibilityPublic,
	}

	if tmpl.ID == "" {
		tmpl.ID = util.GetIDFromString(&filePath)
	}

	if tmpl.Name == "" {
		base := filepath.Base(filePath)
		tmpl.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	if channel := strings.TrimSpace(fm.Channel); channel != "" {
		tmpl.ChannelID = &channel
	}

	if fm.Visibility != "" {
		v, err := entity.ParseVisibility(strings.ToLower(strings.TrimSpace(fm.Visibility)))
		if err != nil {
			return entity.UploadTemplate{}, err
		}
		tmpl.Visibility = v
	}

	if fm.Scheduled != "" {
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(fm.Scheduled))
		if err != nil {
			return entity.UploadTemplate{}, fmt.Errorf("cannot parse scheduled date: %w", err)
		}
		tmpl.ScheduledDate = &t
	}

	return tmpl, nil
}

func cleanTags(tags []string) []string {
	res := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
		if tag == "" {
			continue
		}

		key := strings.ToLower(tag)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		res = append(res, tag)
	}

	return res
}

// body returns src without its frontmatter block.
func body(src []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), maxFileSize)

	if !sc.Scan() {
		return ""
	}

	delim := strings.TrimSpace(sc.Text())
	if delim != delimYAML && delim != delimTOML {
		return strings.TrimSpace(string(src))
	}

	var lines []string
	closed := false
	for sc.Scan() {
		line := sc.Text()
		if !closed {
			closed = strings.TrimSpace(line) == delim

			continue
		}

		lines = append(lines, line)
	}

	if !closed {
		return strings.TrimSpace(string(src))
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
