package embed

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Page is a parsed hosting document. It is not safe for concurrent use.
type Page struct {
	Root     *html.Node
	Location *url.URL

	navigated string
	mounts    map[*html.Node]*mount
}

// ParsePage parses a hosting document served from location. An empty
// location is treated as a local file.
func ParsePage(r io.Reader, location string) (*Page, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	if location == "" {
		location = "file:///"
	}
	loc, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("parse page location: %w", err)
	}
	return &Page{Root: root, Location: loc, mounts: map[*html.Node]*mount{}}, nil
}

// ElementByID returns the first element with the given id, or nil.
func (p *Page) ElementByID(id string) *html.Node {
	if id == "" {
		return nil
	}
	return find(p.Root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, "id") == id
	})
}

// Navigate records a top-level navigation of the hosting page.
func (p *Page) Navigate(href string) { p.navigated = href }

// NavigatedTo is the last navigation target, or "" if none happened.
func (p *Page) NavigatedTo() string { return p.navigated }

// HTML renders the current document.
func (p *Page) HTML() string {
	var buf bytes.Buffer
	if err := html.Render(&buf, p.Root); err != nil {
		return ""
	}
	return buf.String()
}

// Fill sets the value of the named control inside the form mounted in the
// container, the way a user typing or clicking would. Radios and checkboxes
// are checked when their value is listed and unchecked otherwise; select
// options likewise.
func (p *Page) Fill(containerID, name string, values ...string) error {
	form := p.mountedForm(containerID)
	if form == nil {
		return fmt.Errorf("no form mounted in %q", containerID)
	}
	want := make(map[string]bool, len(values))
	for _, v := range values {
		want[v] = true
	}
	found := false
	walk(form, func(n *html.Node) {
		if n.Type != html.ElementNode || attr(n, "name") != name {
			return
		}
		found = true
		switch n.DataAtom {
		case atom.Input:
			switch strings.ToLower(attr(n, "type")) {
			case "radio", "checkbox":
				v := attr(n, "value")
				if !hasAttr(n, "value") {
					v = "on"
				}
				toggleAttr(n, "checked", want[v])
			default:
				setAttr(n, "value", first(values))
			}
		case atom.Textarea:
			setText(n, first(values))
		case atom.Select:
			for _, opt := range findAll(n, isElement(atom.Option)) {
				toggleAttr(opt, "selected", want[optionValue(opt)])
			}
		}
	})
	if !found {
		return fmt.Errorf("no control named %q", name)
	}
	return nil
}

// Reset unticks every radio and checkbox and deselects every option in the
// form mounted in the container. Posted form bodies omit unticked controls,
// so replaying one onto a freshly built form starts from here.
func (p *Page) Reset(containerID string) error {
	form := p.mountedForm(containerID)
	if form == nil {
		return fmt.Errorf("no form mounted in %q", containerID)
	}
	walk(form, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		switch n.DataAtom {
		case atom.Input:
			switch strings.ToLower(attr(n, "type")) {
			case "radio", "checkbox":
				removeAttr(n, "checked")
			}
		case atom.Option:
			removeAttr(n, "selected")
		}
	})
	return nil
}

func (p *Page) mountedForm(containerID string) *html.Node {
	c := p.ElementByID(containerID)
	if c == nil || p.mounts[c] == nil {
		return nil
	}
	return find(c, isElement(atom.Form))
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// node helpers

func el(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func appendAll(parent *html.Node, children ...*html.Node) *html.Node {
	for _, c := range children {
		if c != nil {
			parent.AppendChild(c)
		}
	}
	return parent
}

func removeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

func replaceChildren(n *html.Node, children ...*html.Node) {
	removeChildren(n)
	appendAll(n, children...)
}

func setText(n *html.Node, s string) {
	replaceChildren(n, text(s))
}

func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return true
		}
	}
	return false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace != "" || a.Key != key {
			out = append(out, a)
		}
	}
	n.Attr = out
}

// toggleAttr sets or removes a boolean attribute.
func toggleAttr(n *html.Node, key string, on bool) {
	if on {
		setAttr(n, key, "")
	} else {
		removeAttr(n, key)
	}
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if m := find(c, match); m != nil {
			return m
		}
	}
	return nil
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	walk(n, func(c *html.Node) {
		if match(c) {
			out = append(out, c)
		}
	})
	return out
}

func isElement(a atom.Atom) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Type == html.ElementNode && n.DataAtom == a }
}

func optionValue(opt *html.Node) string {
	if hasAttr(opt, "value") {
		return attr(opt, "value")
	}
	return strings.TrimSpace(textContent(opt))
}
