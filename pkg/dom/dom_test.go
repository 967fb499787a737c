package dom_test

import (
	"strings"
	"testing"

	"github.com/delaneyj/domwire/pkg/dom"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func body(t *testing.T, s string) *dom.Node {
	t.Helper()
	b, err := dom.ParseBody(s)
	require.NoError(t, err)
	return b
}

func TestParseAndRenderRoundTrip(t *testing.T) {
	src := `<div id="a" class="x y"><p>hello <b>world</b></p><input type="checkbox" checked=""><br></div>`
	b := body(t, src)
	assert.Equal(t, src, b.InnerHTML())
}

func TestRenderEscapes(t *testing.T) {
	el := dom.NewElement("span", dom.Attribute{Name: "title", Value: `a "b" <c>`})
	el.SetTextContent("1 < 2 & 3")
	assert.Equal(t, `<span title="a &quot;b&quot; &lt;c&gt;">1 &lt; 2 &amp; 3</span>`, el.OuterHTML())
}

func TestParseDocument(t *testing.T) {
	doc, err := dom.Parse(strings.NewReader(`<!DOCTYPE html><html><body><p id="x">hi</p></body></html>`))
	require.NoError(t, err)
	assert.Equal(t, dom.DocumentNode, doc.Type)
	p := doc.GetElementByID("x")
	require.NotNil(t, p)
	assert.Equal(t, "hi", p.TextContent())
	assert.Equal(t, "body", p.Parent.Tag)
}

func TestClasses(t *testing.T) {
	el := dom.NewElement("div", dom.Attribute{Name: "class", Value: "a b a"})
	assert.Equal(t, []string{"a", "b"}, el.Classes())

	el.AddClass("c", "a", "d e")
	el.RemoveClass("b")
	if diff := cmp.Diff([]string{"a", "c", "d", "e"}, el.Classes()); diff != "" {
		t.Errorf("classes mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, el.HasClass("d"))

	el.ToggleClass("a c d e", false)
	assert.False(t, el.HasAttr("class"))
}

func TestStyles(t *testing.T) {
	el := dom.NewElement("div", dom.Attribute{Name: "style", Value: "color: red;display:none"})
	assert.Equal(t, "red", el.Style("color"))
	assert.Equal(t, "none", el.Style("display"))

	el.SetStyle("display", "block")
	el.SetStyle("margin", "0")
	el.RemoveStyle("color")
	v, _ := el.Attr("style")
	assert.Equal(t, "display: block; margin: 0", v)

	el.SetStyle("display", "")
	el.RemoveStyle("margin")
	assert.False(t, el.HasAttr("style"))
}

func TestChildrenManipulation(t *testing.T) {
	ul := dom.NewElement("ul")
	a, b, c := dom.NewElement("li"), dom.NewElement("li"), dom.NewElement("li")
	ul.AppendChild(a, c)
	ul.InsertBefore(b, c)
	assert.Equal(t, []*dom.Node{a, b, c}, ul.Children())
	assert.Equal(t, c, b.NextSibling())

	other := dom.NewElement("ol")
	other.AppendChild(b)
	assert.Equal(t, []*dom.Node{a, c}, ul.Children())
	assert.Equal(t, other, b.Parent)

	removed := ul.RemoveChildren()
	assert.Len(t, removed, 2)
	assert.Nil(t, a.Parent)
	assert.Equal(t, 0, ul.ChildCount())
}

func TestCloneIsIndependent(t *testing.T) {
	b := body(t, `<div class="t"><span>x</span></div>`)
	div := b.FirstChild()
	clone := div.Clone(true)
	clone.FirstChild().SetTextContent("y")
	clone.AddClass("u")

	assert.Equal(t, `<div class="t"><span>x</span></div>`, div.OuterHTML())
	assert.Equal(t, `<div class="t u"><span>y</span></div>`, clone.OuterHTML())
	assert.Nil(t, clone.Parent)
}

func TestEventsBubbleAndDispose(t *testing.T) {
	b := body(t, `<div><button>go</button></div>`)
	div := b.FirstChild()
	btn := div.FirstChild()

	var order []string
	d := btn.AddEventListener("click", func(e *dom.Event) { order = append(order, "button") })
	div.AddEventListener("click", func(e *dom.Event) {
		order = append(order, "div")
		assert.Equal(t, btn, e.Target)
		assert.Equal(t, div, e.CurrentTarget)
	})

	btn.Click()
	assert.Equal(t, []string{"button", "div"}, order)

	d.Dispose()
	d.Dispose()
	assert.Equal(t, 0, btn.ListenerCount("click"))
	btn.Click()
	assert.Equal(t, []string{"button", "div", "div"}, order)
}

func TestStopPropagation(t *testing.T) {
	b := body(t, `<div><a>x</a></div>`)
	a := b.FirstChild().FirstChild()
	reached := false
	a.AddEventListener("click", func(e *dom.Event) { e.StopPropagation(); e.PreventDefault() })
	b.FirstChild().AddEventListener("click", func(*dom.Event) { reached = true })

	assert.False(t, a.Click())
	assert.False(t, reached)
}

func TestCheckboxClick(t *testing.T) {
	b := body(t, `<input type="checkbox">`)
	cb := b.FirstChild()
	changes := 0
	cb.AddEventListener("change", func(*dom.Event) { changes++ })

	cb.Click()
	assert.True(t, cb.Checked())
	cb.Click()
	assert.False(t, cb.Checked())
	assert.Equal(t, 2, changes)
}

func TestRadioGroup(t *testing.T) {
	b := body(t, `<input type="radio" name="g" value="a" checked><input type="radio" name="g" value="b"><input type="radio" name="h" checked>`)
	radios := b.Children()
	assert.True(t, radios[0].Checked())

	radios[1].Click()
	assert.False(t, radios[0].Checked())
	assert.True(t, radios[1].Checked())
	assert.True(t, radios[2].Checked())
}

func TestValue(t *testing.T) {
	b := body(t, `<input value="a"><textarea>t</textarea>`)
	in, ta := b.Children()[0], b.Children()[1]
	assert.Equal(t, "a", in.Value())
	assert.Equal(t, "t", ta.Value())

	var got string
	in.AddEventListener("input", func(e *dom.Event) { got = e.Target.Value() })
	in.Input("b")
	assert.Equal(t, "b", got)
}

// rendering shows the live form state, not the parsed attributes
func TestRenderFormState(t *testing.T) {
	b := body(t, `<input id="c" type="checkbox"><input id="u" type="checkbox" checked=""><input id="t" value="old"><input id="n"><textarea id="a">old</textarea>`)
	b.GetElementByID("c").SetChecked(true)
	b.GetElementByID("u").SetChecked(false)
	b.GetElementByID("t").SetValue("new")
	b.GetElementByID("n").SetValue(`"x" & y`)
	b.GetElementByID("a").SetValue("a < b")

	assert.Equal(t,
		`<input id="c" type="checkbox" checked=""><input id="u" type="checkbox"><input id="t" value="new"><input id="n" value="&quot;x&quot; &amp; y"><textarea id="a">a &lt; b</textarea>`,
		b.InnerHTML(),
	)

	again := body(t, b.InnerHTML())
	assert.True(t, again.GetElementByID("c").Checked())
	assert.False(t, again.GetElementByID("u").Checked())
	assert.Equal(t, "new", again.GetElementByID("t").Value())
	assert.Equal(t, "a < b", again.GetElementByID("a").Value())
}

func TestSetInnerHTML(t *testing.T) {
	el := dom.NewElement("div")
	require.NoError(t, el.SetInnerHTML(`<em>a</em>b`))
	assert.Equal(t, 2, el.ChildCount())
	assert.Equal(t, "ab", el.TextContent())
	assert.Equal(t, el, el.FirstChild().Parent)
}

func TestDisabled(t *testing.T) {
	btn := dom.NewElement("button")
	btn.SetDisabled(true)
	assert.Equal(t, `<button disabled=""></button>`, btn.OuterHTML())
	btn.SetDisabled(false)
	assert.False(t, btn.Disabled())
}
