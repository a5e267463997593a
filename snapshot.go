package web2pdf

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// snapshot is the serialised DOM captured from the live page, rendered
// twice afterwards from a local file so both surfaces see the same
// markup.
type snapshot struct {
	HTML    string
	BaseURL string
}

// buildSnapshot reparses the captured markup, injects a <base href> so
// relative resources resolve against the original origin when rendered
// from a file:// surface, and reserialises.
func buildSnapshot(rawHTML, baseURL string) (snapshot, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return snapshot{}, fmt.Errorf("parsing captured markup: %w", err)
	}

	head := findFirst(doc, atom.Head)
	if head == nil {
		return snapshot{}, fmt.Errorf("captured markup has no <head>")
	}
	// An existing <base> wins over ours, so drop it first.
	for c := head.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && c.DataAtom == atom.Base {
			head.RemoveChild(c)
		}
		c = next
	}
	base := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Base,
		Data:     "base",
		Attr:     []html.Attribute{{Key: "href", Val: baseURL}},
	}
	head.InsertBefore(base, head.FirstChild)

	var sb strings.Builder
	if err := html.Render(&sb, doc); err != nil {
		return snapshot{}, fmt.Errorf("serialising snapshot: %w", err)
	}
	return snapshot{HTML: sb.String(), BaseURL: baseURL}, nil
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

// snapshotStats counts elements of interest in a snapshot. Used for
// verbose logging only; the authoritative filter counts come from the
// in-page script.
type snapshotStats struct {
	Images  int
	Iframes int
	Headers int
}

var (
	imgMatcher    = cascadia.MustCompile("img")
	iframeMatcher = cascadia.MustCompile("iframe")
	headerMatcher = cascadia.MustCompile("[" + headerAttr + "]")
)

func (s snapshot) stats() (snapshotStats, error) {
	doc, err := html.Parse(strings.NewReader(s.HTML))
	if err != nil {
		return snapshotStats{}, err
	}
	return snapshotStats{
		Images:  len(cascadia.QueryAll(doc, imgMatcher)),
		Iframes: len(cascadia.QueryAll(doc, iframeMatcher)),
		Headers: len(cascadia.QueryAll(doc, headerMatcher)),
	}, nil
}
