package svg

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

const (
	xlinkNS = "http://www.w3.org/1999/xlink"
	svgNS   = "http://www.w3.org/2000/svg"
)

// OriginMarkerID is the reserved id of an artwork's origin marker. It is
// the only id exempt from uniqueness rewriting so the placement engine
// can always locate it.
const OriginMarkerID = "origin"

const emptyDocumentTemplate = `<?xml version="1.0" standalone="no"?>
<!DOCTYPE svg PUBLIC "-//W3C//DTD SVG 1.1//EN"
    "http://www.w3.org/Graphics/SVG/1.1/DTD/svg11.dtd">
<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" version="1.1"
    width="29.7002cm" height="21.0007cm" viewBox="0 0 116930 82680">
    <title>Picture generated by OpenTraceDraw</title>
    <desc>Picture generated by OpenTraceDraw</desc>
</svg>`

// EmptyDocument returns a fresh SVG 1.1 document; attrs override the
// root element's attributes (width, height, viewBox).
func EmptyDocument(attrs map[string]string) *etree.Document {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(emptyDocumentTemplate); err != nil {
		// The template is a compile-time constant; failing to parse it is
		// a programming error
		panic(fmt.Sprintf("svg: broken document template: %v", err))
	}
	root := doc.Root()
	for key, value := range attrs {
		root.CreateAttr(key, value)
	}
	return doc
}

// Walk visits el and all its descendant elements in document order.
func Walk(el *etree.Element, fn func(*etree.Element)) {
	fn(el)
	for _, child := range el.ChildElements() {
		Walk(child, fn)
	}
}

// ReadUnique loads an SVG file and rewrites every id (except the origin
// marker) with the given prefix, updating "#id" references in attribute
// values. Two artworks loaded into one document can therefore never
// collide on clip/gradient/use references.
func ReadUnique(filename string, prefix string) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(filename); err != nil {
		return nil, fmt.Errorf("cannot read SVG %s: %w", filename, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("cannot read SVG %s: no root element", filename)
	}

	var ids []string
	Walk(root, func(el *etree.Element) {
		if id := el.SelectAttrValue("id", ""); id != "" && id != OriginMarkerID {
			ids = append(ids, id)
		}
	})
	// Longest first so "#band1" does not clobber "#band10"
	sort.Slice(ids, func(i, j int) bool { return len(ids[i]) > len(ids[j]) })

	Walk(root, func(el *etree.Element) {
		for i := range el.Attr {
			val := el.Attr[i].Value
			if !strings.Contains(val, "#") {
				continue
			}
			for _, id := range ids {
				val = strings.ReplaceAll(val, "#"+id, "#"+prefix+id)
			}
			el.Attr[i].Value = val
		}
	})
	Walk(root, func(el *etree.Element) {
		if attr := el.SelectAttr("id"); attr != nil && attr.Value != OriginMarkerID {
			attr.Value = prefix + attr.Value
		}
	})

	return root, nil
}

// ExtractContent detaches and returns the renderable children of an SVG
// root, dropping title and desc and stripping namespace prefixes from
// tags so downstream code can match on plain names.
func ExtractContent(root *etree.Element) []*etree.Element {
	var out []*etree.Element
	for _, child := range root.ChildElements() {
		if child.Tag == "title" || child.Tag == "desc" {
			continue
		}
		child.Space = ""
		Walk(child, func(el *etree.Element) { el.Space = "" })
		root.RemoveChild(child)
		out = append(out, child)
	}
	return out
}

// ParseStyleAttr splits an inline style attribute into ordered key/value
// pairs.
func ParseStyleAttr(style string) [][2]string {
	var out [][2]string
	for _, part := range strings.Split(style, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, found := strings.Cut(part, ":")
		if !found {
			continue
		}
		out = append(out, [2]string{strings.TrimSpace(key), strings.TrimSpace(val)})
	}
	return out
}

// FormatStyleAttr renders key/value pairs back to inline style text.
func FormatStyleAttr(styles [][2]string) string {
	parts := make([]string, len(styles))
	for i, kv := range styles {
		parts[i] = kv[0] + ": " + kv[1]
	}
	return strings.Join(parts, ";")
}

// StripStyle removes the listed style keys from root and all descendants
// so the importer can recolor them. Elements whose fill or stroke is one
// of the forbidden colors are removed entirely. Reports whether root
// itself was discarded.
func StripStyle(root *etree.Element, keys []string, forbidden []string) bool {
	keySet := map[string]bool{}
	for _, k := range keys {
		keySet[k] = true
	}
	forbiddenSet := map[string]bool{}
	for _, c := range forbidden {
		forbiddenSet[strings.ToLower(c)] = true
	}

	rootDropped := false
	var doomed []*etree.Element
	Walk(root, func(el *etree.Element) {
		style := el.SelectAttrValue("style", "")
		if style == "" {
			return
		}
		styles := ParseStyleAttr(style)
		fill, stroke := "", ""
		kept := styles[:0]
		for _, kv := range styles {
			switch kv[0] {
			case "fill":
				fill = strings.ToLower(kv[1])
			case "stroke":
				stroke = strings.ToLower(kv[1])
			}
			if !keySet[kv[0]] {
				kept = append(kept, kv)
			}
		}
		if forbiddenSet[fill] || forbiddenSet[stroke] {
			if el == root {
				rootDropped = true
			} else {
				doomed = append(doomed, el)
			}
			return
		}
		el.CreateAttr("style", FormatStyleAttr(kept))
	})
	for _, el := range doomed {
		if parent := el.Parent(); parent != nil {
			parent.RemoveChild(el)
		}
	}
	return rootDropped
}

// ReplaceStyleColor rewrites a color everywhere it appears in inline
// styles below root. Used to invert mask layers plotted black.
func ReplaceStyleColor(root *etree.Element, from, to string) {
	Walk(root, func(el *etree.Element) {
		if style := el.SelectAttrValue("style", ""); style != "" {
			el.CreateAttr("style", strings.ReplaceAll(style, from, to))
		}
	})
}

// RemoveEmptyGroups prunes g and defs elements that ended up with no
// content after composition.
func RemoveEmptyGroups(el *etree.Element) {
	for _, child := range el.ChildElements() {
		RemoveEmptyGroups(child)
	}
	for _, child := range el.ChildElements() {
		if child.Tag != "g" && child.Tag != "defs" {
			continue
		}
		if len(child.ChildElements()) == 0 && len(child.Child) == countCharData(child) {
			el.RemoveChild(child)
		}
	}
}

func countCharData(el *etree.Element) int {
	n := 0
	for _, tok := range el.Child {
		if _, ok := tok.(*etree.CharData); ok {
			n++
		}
	}
	return n
}

// RemoveEditorAnnotations strips inkscape/sodipodi attributes and
// namespace declarations that drawing editors leave in artwork files.
func RemoveEditorAnnotations(el *etree.Element) {
	Walk(el, func(e *etree.Element) {
		var keep []etree.Attr
		for _, attr := range e.Attr {
			if isEditorAttr(attr) {
				continue
			}
			keep = append(keep, attr)
		}
		e.Attr = keep
	})
}

func isEditorAttr(attr etree.Attr) bool {
	for _, marker := range []string{"inkscape", "sodipodi"} {
		if strings.Contains(attr.Space, marker) || strings.Contains(attr.Key, marker) {
			return true
		}
	}
	return false
}

var (
	xmlIdentInvalid = regexp.MustCompile(`[^0-9a-zA-Z_]`)
	xmlIdentLead    = regexp.MustCompile(`^[^a-zA-Z_]+`)
)

// MakeXMLIdentifier strips characters that cannot appear in an XML id.
func MakeXMLIdentifier(s string) string {
	s = xmlIdentInvalid.ReplaceAllString(s, "")
	return xmlIdentLead.ReplaceAllString(s, "")
}

func attrFloat(el *etree.Element, key string, def float64) float64 {
	val := el.SelectAttrValue(key, "")
	if val == "" {
		return def
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return def
	}
	return f
}
