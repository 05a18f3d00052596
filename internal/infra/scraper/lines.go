package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// line is one visual line inside a menu box.
type line struct {
	text       string
	emphasized bool // inside <strong> or <b>
}

// boxLines returns the text lines of sel in document order.
// Text nodes are additionally split on newlines and blank fragments are
// skipped. Script and style content is ignored.
func boxLines(sel *goquery.Selection) []line {
	var out []line
	for _, n := range sel.Nodes {
		collectLines(n, false, &out)
	}
	return out
}

func collectLines(n *html.Node, emphasized bool, out *[]line) {
	switch n.Type {
	case html.TextNode:
		for _, part := range strings.Split(n.Data, "\n") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			*out = append(*out, line{text: part, emphasized: emphasized})
		}
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style:
			return
		case atom.Strong, atom.B:
			emphasized = true
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectLines(c, emphasized, out)
	}
}
