package svg

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/beevik/etree"
)

// transformLexer tokenizes the SVG transform attribute mini-language,
// e.g. "translate(10, 20) rotate(45)".
var transformLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Number", Pattern: `[-+]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][-+]?\d+)?`},
	{Name: "Ident", Pattern: `[a-zA-Z]+`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// transformChain is the parsed form of a transform attribute: a sequence
// of named operations with numeric arguments.
type transformChain struct {
	Ops []*transformOp `parser:"@@*"`
}

type transformOp struct {
	Name string    `parser:"@Ident"`
	Args []float64 `parser:"LParen ( @Number ( Comma? @Number )* )? RParen"`
}

var transformParser = participle.MustBuild[transformChain](
	participle.Lexer(transformLexer),
	participle.Elide("Whitespace"),
)

// ParseTransform converts an SVG transform attribute into a Matrix.
// Operators compose left to right. Unknown operators and malformed input
// yield the identity matrix: a broken decorative attribute must never
// abort a render.
func ParseTransform(text string) Matrix {
	m := Identity()
	if text == "" {
		return m
	}
	chain, err := transformParser.ParseString("", text)
	if err != nil {
		return Identity()
	}
	for _, op := range chain.Ops {
		m = m.Mul(opMatrix(op))
	}
	return m
}

func opMatrix(op *transformOp) Matrix {
	arg := func(i int, def float64) float64 {
		if i < len(op.Args) {
			return op.Args[i]
		}
		return def
	}
	switch op.Name {
	case "matrix":
		if len(op.Args) < 6 {
			return Identity()
		}
		a := op.Args
		return Matrix{
			{a[0], a[2], a[4]},
			{a[1], a[3], a[5]},
			{0, 0, 1},
		}
	case "translate":
		if len(op.Args) < 1 {
			return Identity()
		}
		return Translate(op.Args[0], arg(1, 0))
	case "scale":
		if len(op.Args) < 1 {
			return Identity()
		}
		return Scale(op.Args[0], arg(1, op.Args[0]))
	case "rotate":
		switch len(op.Args) {
		case 1:
			return Rotate(op.Args[0])
		case 3:
			return RotateAbout(op.Args[0], op.Args[1], op.Args[2])
		default:
			return Identity()
		}
	case "skewX":
		if len(op.Args) < 1 {
			return Identity()
		}
		return SkewX(op.Args[0])
	case "skewY":
		if len(op.Args) < 1 {
			return Identity()
		}
		return SkewY(op.Args[0])
	default:
		return Identity()
	}
}

// CollectTransform composes every transform attribute on the path from
// stop (exclusive) down to el, outermost first. A nil stop walks to the
// document root.
func CollectTransform(el *etree.Element, stop *etree.Element) Matrix {
	var chain []*etree.Element
	for cur := el; cur != nil && cur != stop; cur = cur.Parent() {
		chain = append(chain, cur)
	}
	m := Identity()
	for i := len(chain) - 1; i >= 0; i-- {
		if attr := chain[i].SelectAttrValue("transform", ""); attr != "" {
			m = m.Mul(ParseTransform(attr))
		}
	}
	return m
}

// ElementPosition resolves the absolute position of an element's x/y
// attributes in the coordinate space of stop.
func ElementPosition(el *etree.Element, stop *etree.Element) (float64, float64) {
	x := attrFloat(el, "x", 0)
	y := attrFloat(el, "y", 0)
	return CollectTransform(el, stop).Apply(x, y)
}
