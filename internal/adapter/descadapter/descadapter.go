package descadapter

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/jgivc/darkhammer/internal/entity"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

const DefaultHashtagURL = "https://www.youtube.com/hashtag/"

type descAdapter struct {
	md  goldmark.Markdown
	log *slog.Logger
}

// NewDescAdapter renders video descriptions. hashtagTemplate may be empty to use the built-in link.
func NewDescAdapter(hashtagURL, hashtagTemplate string, log *slog.Logger) (*descAdapter, error) {
	if hashtagURL == "" {
		hashtagURL = DefaultHashtagURL
	}
	if hashtagTemplate == "" {
		hashtagTemplate = defaultHashtagTemplate
	}

	tmpl, err := template.New("").Parse(hashtagTemplate)
	if err != nil {
		return nil, fmt.Errorf("cannot parse hashtag template: %w", err)
	}

	if tmpl.Lookup(tmplNameHashtag) == nil {
		return nil, fmt.Errorf("template with name %s must be defined", tmplNameHashtag)
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Linkify,
			NewHashtagExtension(hashtagURL, tmpl),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)

	return &descAdapter{
		md:  md,
		log: log.With(slog.String("item", "DescAdapter")),
	}, nil
}

func (a *descAdapter) Render(description string) (*entity.DescriptionPreview, error) {
	var buf bytes.Buffer

	ctx := parser.NewContext()
	if err := a.md.Convert([]byte(description), &buf, parser.WithContext(ctx)); err != nil {
		a.log.Error("Cannot render description", slog.Any("error", err))

		return nil, fmt.Errorf("cannot convert description: %w", err)
	}

	return &entity.DescriptionPreview{
		HTML:     buf.String(),
		Hashtags: Hashtags(ctx),
	}, nil
}
