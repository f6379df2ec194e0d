package descadapter

import (
	"github.com/yuin/goldmark/ast"
)

var KindHashtag = ast.NewNodeKind("Hashtag")

type Hashtag struct {
	ast.BaseInline
	Tag string
}

func (n *Hashtag) Kind() ast.NodeKind {
	return KindHashtag
}

func (n *Hashtag) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Tag": n.Tag,
	}, nil)
}
