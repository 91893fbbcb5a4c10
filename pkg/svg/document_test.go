package svg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "art.svg")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadUniquePrefixesIDs(t *testing.T) {
	path := writeTemp(t, `<svg width="10mm" height="10mm" viewBox="0 0 100 100">
	  <defs><clipPath id="clip1"><rect width="1" height="1"/></clipPath></defs>
	  <g id="body" clip-path="url(#clip1)"><rect id="origin" x="5" y="5"/></g>
	</svg>`)

	root, err := ReadUnique(path, "u1_")
	require.NoError(t, err)

	body := root.FindElement("//g")
	require.NotNil(t, body)
	assert.Equal(t, "u1_body", body.SelectAttrValue("id", ""))
	assert.Equal(t, "url(#u1_clip1)", body.SelectAttrValue("clip-path", ""))

	// The origin marker keeps its well-known id
	origin := root.FindElement("//rect[@id='origin']")
	assert.NotNil(t, origin)
}

func TestReadUniqueMissingFile(t *testing.T) {
	_, err := ReadUnique(filepath.Join(t.TempDir(), "nope.svg"), "p_")
	assert.Error(t, err)
}

func TestExtractContentDropsTitleAndDesc(t *testing.T) {
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(
		`<svg><title>t</title><desc>d</desc><g id="a"/><path d="M 0 0 L 1 1"/></svg>`))
	content := ExtractContent(doc.Root())
	require.Len(t, content, 2)
	assert.Equal(t, "g", content[0].Tag)
	assert.Equal(t, "path", content[1].Tag)
	assert.Nil(t, content[0].Parent())
}

func TestStripStyleRemovesKeysAndForbidden(t *testing.T) {
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(`<g style="fill:#111111; stroke-width:2">
	  <path style="fill:#ffffff; stroke:none" d="M 0 0 L 1 1"/>
	  <path style="fill: #222222; stroke: #333333" d="M 0 0 L 2 2"/>
	</g>`))
	root := doc.Root()

	dropped := StripStyle(root, []string{"fill", "stroke"}, []string{"#ffffff"})
	assert.False(t, dropped)

	// The white-filled via sentinel is gone entirely
	assert.Len(t, root.ChildElements(), 1)

	// Remaining elements lost fill/stroke but kept other keys
	assert.Equal(t, "stroke-width: 2", root.SelectAttrValue("style", ""))
	assert.Equal(t, "", root.ChildElements()[0].SelectAttrValue("style", ""))
}

func TestStripStyleReportsDroppedRoot(t *testing.T) {
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(`<path style="fill:#ffffff" d="M 0 0"/>`))
	assert.True(t, StripStyle(doc.Root(), []string{"fill"}, []string{"#ffffff"}))
}

func TestReplaceStyleColor(t *testing.T) {
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(
		`<g style="fill:#000000"><path style="stroke:#000000" d="M 0 0"/></g>`))
	ReplaceStyleColor(doc.Root(), "#000000", "#ffffff")
	assert.Equal(t, "fill:#ffffff", doc.Root().SelectAttrValue("style", ""))
}

func TestRemoveEmptyGroups(t *testing.T) {
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(
		`<svg><g id="empty"></g><g id="full"><rect/></g><defs></defs></svg>`))
	RemoveEmptyGroups(doc.Root())
	var ids []string
	for _, el := range doc.Root().ChildElements() {
		ids = append(ids, el.SelectAttrValue("id", el.Tag))
	}
	assert.Equal(t, []string{"full"}, ids)
}

func TestRemoveEditorAnnotations(t *testing.T) {
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(
		`<svg xmlns:inkscape="http://www.inkscape.org/namespaces/inkscape">`+
			`<g inkscape:label="layer1" id="keep"/></svg>`))
	RemoveEditorAnnotations(doc.Root())
	g := doc.Root().ChildElements()[0]
	assert.Equal(t, "", g.SelectAttrValue("inkscape:label", ""))
	assert.Equal(t, "keep", g.SelectAttrValue("id", ""))
}

func TestMakeXMLIdentifier(t *testing.T) {
	assert.Equal(t, "R_0603", MakeXMLIdentifier("R_0603"))
	assert.Equal(t, "R0805", MakeXMLIdentifier("0R-0805"))
	assert.Equal(t, "led5mm", MakeXMLIdentifier("led:5mm"))
}

func TestUnits(t *testing.T) {
	assert.Equal(t, 1000000, MMToKi(1))
	assert.InDelta(t, 1.0, KiToMM(1000000), 1e-12)

	ki, err := ToKiUnits("25.4mm")
	require.NoError(t, err)
	assert.Equal(t, MMToKi(25.4), ki)

	ki, err = ToKiUnits("1in")
	require.NoError(t, err)
	assert.InDelta(t, 25.4, KiToMM(ki), 1e-9)

	ki, err = ToKiUnits("96")
	require.NoError(t, err)
	assert.InDelta(t, 25.4, KiToMM(ki), 1e-9)

	uu, err := ToUserUnits("10mm")
	require.NoError(t, err)
	assert.InDelta(t, 35.43307, uu, 1e-6)

	_, err = ToKiUnits("abc")
	assert.Error(t, err)
}

func TestShrinkCropsToContent(t *testing.T) {
	doc := EmptyDocument(nil)
	g := doc.Root().CreateElement("g")
	rect := g.CreateElement("rect")
	rect.CreateAttr("x", "100")
	rect.CreateAttr("y", "200")
	rect.CreateAttr("width", "50")
	rect.CreateAttr("height", "25")

	Shrink(doc, 0)
	assert.Equal(t, "100 200 50 25", doc.Root().SelectAttrValue("viewBox", ""))

	Shrink(doc, 1)
	assert.Equal(t, "99 199 52 27", doc.Root().SelectAttrValue("viewBox", ""))
}

func TestContentBoundsFollowsUseAndTransforms(t *testing.T) {
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(`<svg viewBox="0 0 10 10">
	  <g id="unit"><rect x="0" y="0" width="10" height="10"/></g>
	  <g transform="translate(100,0)"><use href="#unit"/></g>
	</svg>`))
	box, ok := ContentBounds(doc)
	require.True(t, ok)
	assert.InDelta(t, 0, box.MinX, 1e-9)
	assert.InDelta(t, 110, box.MaxX, 1e-9)
	assert.InDelta(t, 10, box.MaxY, 1e-9)
}

func TestPathPoints(t *testing.T) {
	pts := pathPoints("M 10 20 L 30 40")
	require.Len(t, pts, 2)
	assert.Equal(t, [2]float64{10, 20}, pts[0])
	assert.Equal(t, [2]float64{30, 40}, pts[1])

	// Relative commands and implicit linetos
	pts = pathPoints("m 10 10 10 0 v 5 h -10 z")
	require.Len(t, pts, 4)
	assert.Equal(t, [2]float64{20, 10}, pts[1])
	assert.Equal(t, [2]float64{20, 15}, pts[2])
	assert.Equal(t, [2]float64{10, 15}, pts[3])

	// Arc contributes its endpoint
	pts = pathPoints("M 0 0 A 5 5 0 1 0 10 0")
	require.Len(t, pts, 2)
	assert.Equal(t, [2]float64{10, 0}, pts[1])
}
