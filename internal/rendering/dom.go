package rendering

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Pagination classes understood by the print stylesheet.
const (
	ClassPageBreak  = "page-break"
	ClassAvoidBreak = "avoid-break"
)

// el builds an element node. Nil children are skipped so optional blocks can
// be passed inline.
func el(tag atom.Atom, class string, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag.String(), DataAtom: tag}
	if class != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: class})
	}
	appendChildren(n, children...)
	return n
}

func appendChildren(n *html.Node, children ...*html.Node) {
	for _, c := range children {
		if c != nil {
			n.AppendChild(c)
		}
	}
}

func setAttr(n *html.Node, key, val string) *html.Node {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return n
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// textEl is an element holding a single text node, or nil for blank text.
func textEl(tag atom.Atom, class, s string) *html.Node {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return el(tag, class, text(s))
}

// field is a labelled line such as "Credential ID: ABC-123", or nil for a blank value.
func field(class, label, value string) *html.Node {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return el(atom.Div, class, text(label+" "+value))
}

// link renders an external anchor, or nil when href is blank.
func link(href, label string) *html.Node {
	href = strings.TrimSpace(href)
	if href == "" {
		return nil
	}
	a := el(atom.A, "link", text(label))
	setAttr(a, "href", href)
	setAttr(a, "target", "_blank")
	setAttr(a, "rel", "noopener noreferrer")
	return a
}

// pills renders a row of tag badges, or nil when every label is blank.
func pills(variant string, labels ...string) *html.Node {
	row := el(atom.Div, "pills pills-"+variant)
	for _, l := range labels {
		if l = strings.TrimSpace(l); l != "" {
			row.AppendChild(el(atom.Span, "pill pill-"+variant, text(l)))
		}
	}
	if row.FirstChild == nil {
		return nil
	}
	return row
}

// joinMeta joins non-blank parts with a bullet separator.
func joinMeta(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " • ")
}

// card is an atomic entry that must not be split across pages.
func card(class string, children ...*html.Node) *html.Node {
	return el(atom.Div, "entry "+class+" "+ClassAvoidBreak, children...)
}
