package descadapter

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

const (
	hashSign     = '#'
	maxTagLength = 100
)

var hashtagsKey = parser.NewContextKey()

/*
 * Hashtag
 * #forging     - tag "forging"
 * C#, #123     - not tags: preceded by a word rune or no letter
 */
type HashtagParser struct{}

func NewHashtagParser() parser.InlineParser {
	return &HashtagParser{}
}

func (s *HashtagParser) Trigger() []byte {
	return []byte{hashSign}
}

func (s *HashtagParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	if isTagRune(block.PrecendingCharacter()) {
		return nil
	}

	line, _ := block.PeekLine()
	if len(line) < 2 || line[0] != hashSign {
		return nil
	}

	var (
		n         = 1
		hasLetter bool
	)
	for n < len(line) && n <= maxTagLength {
		r, size := utf8.DecodeRune(line[n:])
		if !isTagRune(r) {
			break
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
		n += size
	}

	if !hasLetter {
		return nil
	}

	tag := string(line[1:n])
	block.Advance(n)
	addHashtag(pc, tag)

	return &Hashtag{Tag: tag}
}

func isTagRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// addHashtag records tag once per parse, ignoring case.
func addHashtag(pc parser.Context, tag string) {
	tags, _ := pc.Get(hashtagsKey).([]string)
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return
		}
	}

	pc.Set(hashtagsKey, append(tags, tag))
}

// Hashtags returns the tags found while parsing with pc, in order of appearance.
func Hashtags(pc parser.Context) []string {
	tags, _ := pc.Get(hashtagsKey).([]string)
	if tags == nil {
		return []string{}
	}

	return tags
}
