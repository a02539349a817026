package report

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/charmbracelet/lipgloss"
)

type markupPalette struct {
	Default   lipgloss.Style
	Tag       lipgloss.Style
	Attribute lipgloss.Style
	String    lipgloss.Style
	Comment   lipgloss.Style
	Punct     lipgloss.Style
}

var snapshotPalette = markupPalette{
	Default:   lipgloss.NewStyle().Foreground(brightWhite),
	Tag:       lipgloss.NewStyle().Foreground(salmonPink).Bold(true),
	Attribute: lipgloss.NewStyle().Foreground(amber),
	String:    lipgloss.NewStyle().Foreground(mintGreen),
	Comment:   lipgloss.NewStyle().Foreground(mutedGray).Italic(true),
	Punct:     lipgloss.NewStyle().Foreground(mutedGray),
}

// HighlightHTML colors a DOM snapshot for terminal output. Input the lexer
// cannot tokenise is returned unchanged.
func HighlightHTML(src string) string {
	if src == "" {
		return ""
	}
	lexer := lexers.Get("html")
	if lexer == nil {
		return src
	}
	lexer = chroma.Coalesce(lexer)

	iter, err := lexer.Tokenise(nil, src)
	if err != nil {
		return src
	}

	var b strings.Builder
	for token := iter(); token != chroma.EOF; token = iter() {
		if token.Value == "" {
			continue
		}
		style := snapshotPalette.styleFor(token.Type)
		// Style each line separately so newlines survive rendering.
		parts := strings.Split(token.Value, "\n")
		for i, part := range parts {
			if part != "" {
				b.WriteString(style.Render(part))
			}
			if i < len(parts)-1 {
				b.WriteByte('\n')
			}
		}
	}
	return b.String()
}

func (p markupPalette) styleFor(t chroma.TokenType) lipgloss.Style {
	switch {
	case t == chroma.NameTag:
		return p.Tag
	case t == chroma.NameAttribute:
		return p.Attribute
	case t.InCategory(chroma.LiteralString):
		return p.String
	case t.InCategory(chroma.Comment):
		return p.Comment
	case t.InCategory(chroma.Punctuation), t.InCategory(chroma.Operator):
		return p.Punct
	default:
		return p.Default
	}
}
