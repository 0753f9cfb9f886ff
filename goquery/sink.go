// Package goquery provides an HTML display sink that writes rendered text
// into one element of a page, the way a script sets an element's textContent.
package goquery

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/oser-cs/apiview"
	"golang.org/x/net/html"
)

// DefaultElementID identifies the display region of DefaultPage.
const DefaultElementID = "content"

// DefaultPage is a minimal page with a single display region.
const DefaultPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>API</title></head>
<body>
<div id="content">` + apiview.DefaultPlaceholder + `</div>
</body>
</html>
`

// Ensure DocumentSink implements apiview.Sink at compile time.
var _ apiview.Sink = (*DocumentSink)(nil)

// DocumentSink implements apiview.Sink over an in-memory HTML document.
type DocumentSink struct {
	mu   sync.Mutex
	root *html.Node
	elem *goquery.Selection
}

// NewDocumentSink parses page and targets the first element whose id
// attribute equals id. Returns EINVALID if no such element exists.
func NewDocumentSink(page, id string) (*DocumentSink, error) {
	root, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, apiview.Errorf(apiview.EINVALID, "failed to parse HTML: %v", err)
	}

	doc := goquery.NewDocumentFromNode(root)
	elem := doc.Find("[id]").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		v, _ := sel.Attr("id")
		return v == id
	}).First()
	if elem.Length() == 0 {
		return nil, apiview.Errorf(apiview.EINVALID, "element with id %q not found", id)
	}

	return &DocumentSink{root: root, elem: elem}, nil
}

// SetText replaces the element's children with a single text node holding
// text verbatim. Escaping happens only when the page is rendered, so raw
// text elements such as <script> keep the text as is.
func (s *DocumentSink) SetText(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.elem.Nodes {
		for c := n.FirstChild; c != nil; c = n.FirstChild {
			n.RemoveChild(c)
		}
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	return nil
}

// Text returns the element's text content.
func (s *DocumentSink) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elem.Text()
}

// Render writes the whole document as HTML.
func (s *DocumentSink) Render(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return html.Render(w, s.root)
}

// HTML returns the whole document as an HTML string.
func (s *DocumentSink) HTML() (string, error) {
	var buf bytes.Buffer
	if err := s.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
