package descadapter

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

const (
	tmplNameHashtag = "HASHTAG"

	defaultHashtagTemplate = `{{ define "HASHTAG" }}<a class="hashtag" href="{{ .URL }}">#{{ .Tag }}</a>{{ end }}`
)

type hashtagData struct {
	Tag string
	URL string
}

type HashtagRenderer struct {
	baseURL string
	tmpl    *template.Template
}

func NewHashtagRenderer(baseURL string, tmpl *template.Template) renderer.NodeRenderer {
	return &HashtagRenderer{baseURL: baseURL, tmpl: tmpl}
}

func (r *HashtagRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindHashtag, r.renderHashtag)
}

func (r *HashtagRenderer) renderHashtag(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	hashtag, ok := n.(*Hashtag)
	if !ok {
		return ast.WalkStop, fmt.Errorf("unexpected node %T, expected *Hashtag", n)
	}

	data, err := r.renderTemplate(tmplNameHashtag, &hashtagData{
		Tag: hashtag.Tag,
		URL: r.baseURL + url.PathEscape(strings.ToLower(hashtag.Tag)),
	})
	if err != nil {
		return ast.WalkStop, err
	}

	w.Write(data)

	return ast.WalkContinue, nil
}

func (r *HashtagRenderer) renderTemplate(tmplName string, data any) ([]byte, error) {
	tmpl := r.tmpl.Lookup(tmplName)
	if tmpl == nil {
		return nil, fmt.Errorf("template with name %s must be defined", tmplName)
	}

	buf := &bytes.Buffer{}
	if err := tmpl.Execute(buf, data); err != nil {
		return nil, fmt.Errorf("cannot execute template: %w", err)
	}

	return buf.Bytes(), nil
}
