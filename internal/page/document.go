// Package page implements motif's headless document model: HTML pages are
// parsed into documents whose module-bound elements carry attribute maps
// and document-space geometry, giving the motion runtime something to
// observe without a browser.
package page

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/motifkit/motif/internal/layout"
)

// ModuleAttr is the attribute through which elements opt into lifecycle
// binding. Its value selects the binding module.
const ModuleAttr = "data-module"

// DefaultSectionHeight is the stacked height, in pixels, of elements that
// do not declare data-height.
const DefaultSectionHeight = 720.0

// Element is a module-bound element extracted from a page.
type Element struct {
	// ID uniquely identifies the element within its document. Taken from
	// the id attribute, or synthesized from the module name and index.
	ID string
	// Tag is the element's HTML tag name.
	Tag string
	// Module is the binding module name from data-module.
	Module string
	// Attrs holds every data-* attribute, keys stripped of the prefix.
	Attrs map[string]string
	// Rect is the element's document-space rectangle.
	Rect layout.Rect
}

// Attr returns a data attribute value or the fallback when absent.
func (e *Element) Attr(name, fallback string) string {
	if v, ok := e.Attrs[name]; ok {
		return v
	}
	return fallback
}

// FloatAttr returns a numeric data attribute or the fallback when absent
// or malformed.
func (e *Element) FloatAttr(name string, fallback float64) float64 {
	v, ok := e.Attrs[name]
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fallback
	}
	return f
}

// Document is a parsed page.
type Document struct {
	// Name is the page's registry key, usually the file stem.
	Name string
	// Path is the source file the document was parsed from.
	Path string
	// Title is the contents of the page's <title>, if any.
	Title string
	// Elements lists module-bound elements in document order.
	Elements []*Element
	// Height is the total document height derived from element geometry.
	Height float64

	byID map[string]*Element
}

// ElementByID returns the element with the given id.
func (d *Document) ElementByID(id string) (*Element, bool) {
	el, ok := d.byID[id]
	return el, ok
}

// Modules returns the distinct module names used by the document, in first
// appearance order.
func (d *Document) Modules() []string {
	seen := make(map[string]bool)
	var names []string
	for _, el := range d.Elements {
		if !seen[el.Module] {
			seen[el.Module] = true
			names = append(names, el.Module)
		}
	}
	return names
}

// ParseFile parses the HTML file at path into a document named after the
// file stem.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening page %s: %w", path, err)
	}
	defer f.Close()

	name := strings.TrimSuffix(baseName(path), ".html")
	doc, err := Parse(name, f)
	if err != nil {
		return nil, fmt.Errorf("parsing page %s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

func baseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Parse reads an HTML document and extracts its module-bound elements.
//
// Geometry: elements declaring data-top are placed absolutely; the rest
// stack vertically in document order, each data-height (default
// DefaultSectionHeight) tall. The document height is the deepest element
// bottom.
func Parse(name string, r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Name: name,
		byID: make(map[string]*Element),
	}

	var stackTop float64
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					doc.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			default:
				if el := extractElement(n); el != nil {
					placeElement(el, &stackTop)
					doc.addElement(el)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	for _, el := range doc.Elements {
		if bottom := el.Rect.Bottom(); bottom > doc.Height {
			doc.Height = bottom
		}
	}
	return doc, nil
}

// extractElement returns an Element for nodes carrying data-module, nil
// otherwise.
func extractElement(n *html.Node) *Element {
	var module, id string
	attrs := make(map[string]string)
	for _, a := range n.Attr {
		switch {
		case a.Key == "id":
			id = a.Val
		case a.Key == ModuleAttr:
			module = a.Val
			attrs["module"] = a.Val
		case strings.HasPrefix(a.Key, "data-"):
			attrs[strings.TrimPrefix(a.Key, "data-")] = a.Val
		}
	}
	if module == "" {
		return nil
	}
	return &Element{ID: id, Tag: n.Data, Module: module, Attrs: attrs}
}

// placeElement resolves the element's rectangle against the vertical stack.
func placeElement(el *Element, stackTop *float64) {
	height := el.FloatAttr("height", DefaultSectionHeight)
	if explicit, ok := el.Attrs["top"]; ok {
		top, err := strconv.ParseFloat(strings.TrimSpace(explicit), 64)
		if err == nil {
			el.Rect = layout.Rect{Top: top, Height: height}
			return
		}
	}
	el.Rect = layout.Rect{Top: *stackTop, Height: height}
	*stackTop += height
}

func (d *Document) addElement(el *Element) {
	if el.ID == "" {
		el.ID = fmt.Sprintf("%s-%d", el.Module, len(d.Elements))
	}
	d.Elements = append(d.Elements, el)
	d.byID[el.ID] = el
}
