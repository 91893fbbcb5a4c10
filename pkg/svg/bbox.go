package svg

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Box is an axis-aligned extent in SVG user units.
type Box struct {
	MinX, MinY float64
	MaxX, MaxY float64
	valid      bool
}

func (b *Box) add(x, y float64) {
	if !b.valid {
		b.MinX, b.MaxX = x, x
		b.MinY, b.MaxY = y, y
		b.valid = true
		return
	}
	b.MinX = math.Min(b.MinX, x)
	b.MaxX = math.Max(b.MaxX, x)
	b.MinY = math.Min(b.MinY, y)
	b.MaxY = math.Max(b.MaxY, y)
}

// ContentBounds computes the drawn extent of a document by walking the
// visible elements with their accumulated transforms. Control points of
// curves are included, making the result slightly conservative, which is
// what canvas cropping wants.
func ContentBounds(doc *etree.Document) (Box, bool) {
	root := doc.Root()
	if root == nil {
		return Box{}, false
	}
	byID := map[string]*etree.Element{}
	Walk(root, func(el *etree.Element) {
		if id := el.SelectAttrValue("id", ""); id != "" {
			byID[id] = el
		}
	})
	box := Box{}
	for _, child := range root.ChildElements() {
		boundsWalk(child, Identity(), byID, &box, 0)
	}
	return box, box.valid
}

// Containers that do not render directly.
var invisibleTags = map[string]bool{
	"defs": true, "mask": true, "clipPath": true,
	"metadata": true, "title": true, "desc": true,
	"namedview": true, "symbol": true,
}

func boundsWalk(el *etree.Element, m Matrix, byID map[string]*etree.Element, box *Box, depth int) {
	if depth > 64 || invisibleTags[el.Tag] {
		return
	}
	if attr := el.SelectAttrValue("transform", ""); attr != "" {
		m = m.Mul(ParseTransform(attr))
	}

	emit := func(x, y float64) {
		px, py := m.Apply(x, y)
		box.add(px, py)
	}

	switch el.Tag {
	case "path":
		for _, p := range pathPoints(el.SelectAttrValue("d", "")) {
			emit(p[0], p[1])
		}
	case "circle":
		cx := attrFloat(el, "cx", 0)
		cy := attrFloat(el, "cy", 0)
		r := attrFloat(el, "r", 0)
		emit(cx-r, cy-r)
		emit(cx+r, cy+r)
		emit(cx-r, cy+r)
		emit(cx+r, cy-r)
	case "ellipse":
		cx := attrFloat(el, "cx", 0)
		cy := attrFloat(el, "cy", 0)
		rx := attrFloat(el, "rx", 0)
		ry := attrFloat(el, "ry", 0)
		emit(cx-rx, cy-ry)
		emit(cx+rx, cy+ry)
		emit(cx-rx, cy+ry)
		emit(cx+rx, cy-ry)
	case "rect":
		x := attrFloat(el, "x", 0)
		y := attrFloat(el, "y", 0)
		w := attrFloat(el, "width", 0)
		h := attrFloat(el, "height", 0)
		emit(x, y)
		emit(x+w, y)
		emit(x, y+h)
		emit(x+w, y+h)
	case "line":
		emit(attrFloat(el, "x1", 0), attrFloat(el, "y1", 0))
		emit(attrFloat(el, "x2", 0), attrFloat(el, "y2", 0))
	case "polyline", "polygon":
		nums := numberList(el.SelectAttrValue("points", ""))
		for i := 0; i+1 < len(nums); i += 2 {
			emit(nums[i], nums[i+1])
		}
	case "use":
		href := el.SelectAttrValue("href", "")
		if href == "" {
			href = el.SelectAttrValue("xlink:href", "")
		}
		if strings.HasPrefix(href, "#") {
			if target, ok := byID[href[1:]]; ok {
				shift := m.Mul(Translate(attrFloat(el, "x", 0), attrFloat(el, "y", 0)))
				boundsWalk(target, shift, byID, box, depth+1)
			}
		}
		return
	case "text", "image":
		emit(attrFloat(el, "x", 0), attrFloat(el, "y", 0))
	}

	for _, child := range el.ChildElements() {
		boundsWalk(child, m, byID, box, depth+1)
	}
}

var numberRe = regexp.MustCompile(`[-+]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][-+]?\d+)?`)

func numberList(s string) []float64 {
	matches := numberRe.FindAllString(s, -1)
	out := make([]float64, 0, len(matches))
	for _, m := range matches {
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		out = append(out, f)
	}
	return out
}

// pathPoints extracts the on-curve and control points of SVG path data,
// understanding both absolute and relative commands. Arc radii and flags
// are skipped; only arc endpoints contribute.
func pathPoints(d string) [][2]float64 {
	var out [][2]float64
	var cur, start [2]float64

	i := 0
	for i < len(d) {
		c := d[i]
		if c == ' ' || c == ',' || c == '\t' || c == '\n' || c == '\r' {
			i++
			continue
		}
		if !isPathCommand(c) {
			// Malformed path; bail out with what we have
			return out
		}
		cmd := c
		i++
		rel := cmd >= 'a' && cmd <= 'z'
		upper := cmd
		if rel {
			upper = cmd - 'a' + 'A'
		}

		nums, rest := takeNumbers(d[i:], argCount(upper))
		i = len(d) - len(rest)

		for {
			switch upper {
			case 'Z':
				cur = start
			case 'H':
				if len(nums) < 1 {
					return out
				}
				x := nums[0]
				if rel {
					x += cur[0]
				}
				cur = [2]float64{x, cur[1]}
				out = append(out, cur)
			case 'V':
				if len(nums) < 1 {
					return out
				}
				y := nums[0]
				if rel {
					y += cur[1]
				}
				cur = [2]float64{cur[0], y}
				out = append(out, cur)
			case 'A':
				if len(nums) < 7 {
					return out
				}
				x, y := nums[5], nums[6]
				if rel {
					x += cur[0]
					y += cur[1]
				}
				cur = [2]float64{x, y}
				out = append(out, cur)
			default:
				// M, L, T, C, S, Q: pairs of coordinates, all collected
				if len(nums) == 0 || len(nums)%2 != 0 {
					return out
				}
				for j := 0; j+1 < len(nums); j += 2 {
					x, y := nums[j], nums[j+1]
					if rel {
						x += cur[0]
						y += cur[1]
					}
					out = append(out, [2]float64{x, y})
					cur = [2]float64{x, y}
				}
				if upper == 'M' {
					start = out[len(out)-1]
					// Implicit following coordinates are linetos
					upper = 'L'
				}
			}

			if upper == 'Z' {
				break
			}
			// Repeated argument groups without an explicit command
			nums, rest = takeNumbers(d[i:], argCount(upper))
			if len(nums) == 0 {
				break
			}
			i = len(d) - len(rest)
		}
	}
	return out
}

func isPathCommand(c byte) bool {
	return strings.IndexByte("MmLlHhVvCcSsQqTtAaZz", c) >= 0
}

func argCount(upper byte) int {
	switch upper {
	case 'M', 'L', 'T':
		return 2
	case 'H', 'V':
		return 1
	case 'C':
		return 6
	case 'S', 'Q':
		return 4
	case 'A':
		return 7
	default:
		return 0
	}
}

// takeNumbers reads up to n leading numbers from s, returning them and
// the unconsumed remainder.
func takeNumbers(s string, n int) ([]float64, string) {
	if n == 0 {
		return nil, s
	}
	var out []float64
	rest := s
	for len(out) < n {
		trimmed := strings.TrimLeft(rest, " ,\t\n\r")
		loc := numberRe.FindStringIndex(trimmed)
		if loc == nil || loc[0] != 0 {
			return nil, s
		}
		f, err := strconv.ParseFloat(trimmed[:loc[1]], 64)
		if err != nil {
			return nil, s
		}
		out = append(out, f)
		rest = trimmed[loc[1]:]
	}
	return out, rest
}

// Shrink crops the document canvas to its content plus a margin given in
// KiCad native units, rewriting viewBox and the physical width/height.
func Shrink(doc *etree.Document, margin int) {
	box, ok := ContentBounds(doc)
	if !ok {
		return
	}
	m := float64(KiToSVG(margin))
	box.MinX -= m
	box.MinY -= m
	box.MaxX += m
	box.MaxY += m

	width := box.MaxX - box.MinX
	height := box.MaxY - box.MinY
	root := doc.Root()
	root.CreateAttr("viewBox", fmt.Sprintf("%s %s %s %s",
		formatCoord(box.MinX), formatCoord(box.MinY),
		formatCoord(width), formatCoord(height)))
	root.CreateAttr("width", fmt.Sprintf("%vmm", KiToMM(SVGToKi(int(width)))))
	root.CreateAttr("height", fmt.Sprintf("%vmm", KiToMM(SVGToKi(int(height)))))
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
