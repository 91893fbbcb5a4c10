package plot

import (
	"math"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/OpenTraceLab/OpenTraceDraw/pkg/svg"
)

// StitchTolerance is the maximum endpoint distance, in plot units, at
// which two fragments are considered connected. Plotted geometry is
// often slightly misaligned, so exact matching would leave gaps.
const StitchTolerance = 5.0

func endpointDistance(a, b [2]float64) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	return math.Sqrt(dx*dx + dy*dy)
}

// attachment describes one way to connect a pool fragment to a chain.
type attachment struct {
	index   int
	dist    float64
	flip    bool
	prepend bool
}

// StitchFragments reconstructs contours from an unordered fragment bag.
// Chains grow greedily from both ends, taking the closest candidate
// within tolerance each round. Leftover fragments seed new chains, and
// a chain that never closes is still emitted as an open contour.
// The returned text is the concatenated path data of all chains.
func StitchFragments(frags []*PathFragment) string {
	pool := make([]*PathFragment, len(frags))
	copy(pool, frags)

	var path strings.Builder
	for len(pool) > 0 {
		chain := []*PathFragment{pool[0]}
		pool = pool[1:]
		for {
			best, ok := closestAttachment(chain, pool)
			if !ok {
				break
			}
			frag := pool[best.index]
			pool = append(pool[:best.index], pool[best.index+1:]...)
			if best.flip {
				frag.Flip()
			}
			if best.prepend {
				chain = append([]*PathFragment{frag}, chain...)
			} else {
				chain = append(chain, frag)
			}
		}
		for i, f := range chain {
			path.WriteString(f.Format(i == 0))
		}
	}
	return path.String()
}

func closestAttachment(chain, pool []*PathFragment) (attachment, bool) {
	head := chain[0].Start
	tail := chain[len(chain)-1].End
	best := attachment{dist: math.Inf(1)}
	for i, e := range pool {
		options := []attachment{
			{index: i, dist: endpointDistance(head, e.End), prepend: true},
			{index: i, dist: endpointDistance(head, e.Start), prepend: true, flip: true},
			{index: i, dist: endpointDistance(tail, e.Start)},
			{index: i, dist: endpointDistance(tail, e.End), flip: true},
		}
		for _, opt := range options {
			if opt.dist < StitchTolerance && opt.dist < best.dist {
				best = opt
			}
		}
	}
	return best, !math.IsInf(best.dist, 1)
}

// BoardPolygon assembles the board outline from the plotted edge layer:
// path fragments are stitched into contours, circles pass through
// unchanged. Even-odd fill makes inner contours into cutouts.
func BoardPolygon(groups []*etree.Element) (*etree.Element, error) {
	var frags []*PathFragment
	var path strings.Builder
	var parseErr error
	for _, group := range groups {
		svg.Walk(group, func(el *etree.Element) {
			switch el.Tag {
			case "path":
				frag, err := ParseFragment(el.SelectAttrValue("d", ""))
				if err != nil {
					if parseErr == nil {
						parseErr = err
					}
					return
				}
				frags = append(frags, frag)
			case "circle":
				cx := el.SelectAttrValue("cx", "0")
				cy := el.SelectAttrValue("cy", "0")
				r := el.SelectAttrValue("r", "0")
				path.WriteString(circleAsPath(cx, cy, r))
			}
		})
	}
	if parseErr != nil {
		return nil, parseErr
	}
	path.WriteString(StitchFragments(frags))

	el := etree.NewElement("path")
	el.CreateAttr("d", path.String())
	el.CreateAttr("style", "fill-rule: evenodd;")
	return el, nil
}

// circleAsPath renders a self-closed circle as two relative arcs so it
// can join the outline path without stitching.
func circleAsPath(cx, cy, r string) string {
	rv, _ := strconv.ParseFloat(r, 64)
	d := fmtNum(2 * rv)
	return " M " + cx + " " + cy + " m-" + r + " 0 " +
		"a " + r + " " + r + " 0 1 0 " + d + " 0 " +
		"a " + r + " " + r + " 0 1 0 -" + d + " 0 "
}
