package corpus

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"
)

// blockElements end the current sentence when entered or left.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "td": true, "th": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"title": true, "section": true, "article": true, "blockquote": true,
	"pre": true, "tr": true,
}

// skipElements hold no visible text.
var skipElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
}

// ReadHTML extracts the visible text of an HTML document, one sentence per
// block element, and returns it as an in-memory Source.
func ReadHTML(r io.Reader, opts TextOptions) (*Slice, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var (
		sents [][]string
		cur   []string
	)
	flush := func() {
		if len(cur) > 0 {
			sents = append(sents, cur)
			cur = nil
		}
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			text := n.Data
			if opts.Lowercase {
				text = strings.ToLower(text)
			}
			cur = append(cur, strings.Fields(text)...)
			return
		}
		block := n.Type == html.ElementNode && blockElements[n.Data]
		if block {
			flush()
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
		if block {
			flush()
		}
	}
	walk(doc)
	flush()

	if opts.MaxSentences > 0 && len(sents) > opts.MaxSentences {
		sents = sents[:opts.MaxSentences]
	}
	return NewSlice(sents), nil
}

// OpenHTML reads the HTML document at path.
func OpenHTML(path string, opts TextOptions) (*Slice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadHTML(f, opts)
}
