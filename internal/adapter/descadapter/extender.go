package descadapter

import (
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

type HashtagExtension struct {
	baseURL string
	tmpl    *template.Template
}

func NewHashtagExtension(baseURL string, tmpl *template.Template) goldmark.Extender {
	return &HashtagExtension{baseURL: baseURL, tmpl: tmpl}
}

func (e *HashtagExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithInlineParsers(
			util.Prioritized(NewHashtagParser(), 199),
		),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(
			util.Prioritized(NewHashtagRenderer(e.baseURL, e.tmpl), 199),
		),
	)
}
