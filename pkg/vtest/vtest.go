package vtest

import (
	"strings"
	"testing"

	"github.com/vango-dev/toastkit/pkg/render"
	"github.com/vango-dev/toastkit/pkg/toastui"
	"github.com/vango-dev/toastkit/pkg/vdom"
)

// RenderToString renders a VNode and returns the HTML string.
// This is useful for asserting on rendered output.
func RenderToString(node *vdom.VNode) string {
	r := render.NewRenderer(render.RendererConfig{})
	html, err := r.RenderToString(node)
	if err != nil {
		return ""
	}
	return html
}

// ExpectContains asserts that rendered output contains expected substring.
func ExpectContains(t testing.TB, node *vdom.VNode, expected string) {
	t.Helper()
	html := RenderToString(node)
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that rendered output does not contain substring.
func ExpectNotContains(t testing.TB, node *vdom.VNode, unexpected string) {
	t.Helper()
	html := RenderToString(node)
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectAttribute asserts that rendered output contains an attribute value.
func ExpectAttribute(t testing.TB, node *vdom.VNode, attr, value string) {
	t.Helper()
	html := RenderToString(node)
	needle := attr + `="` + value + `"`
	if !strings.Contains(html, needle) {
		t.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(html, 500))
	}
}

// ByClass matches elements whose class list contains class.
func ByClass(class string) func(*vdom.VNode) bool {
	return func(n *vdom.VNode) bool {
		for _, c := range strings.Fields(n.AttrString("class")) {
			if c == class {
				return true
			}
		}
		return false
	}
}

// ByTag matches elements with the given tag.
func ByTag(tag string) func(*vdom.VNode) bool {
	return func(n *vdom.VNode) bool { return n.Tag == tag }
}

// MustFind returns the first element matching match or fails the test.
func MustFind(t testing.TB, node *vdom.VNode, match func(*vdom.VNode) bool) *vdom.VNode {
	t.Helper()
	found := vdom.Find(node, match)
	if found == nil {
		t.Fatalf("no matching element in:\n%s", truncate(RenderToString(node), 500))
	}
	return found
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// handler returns the handler bound to event on node or fails the test.
func handler(t testing.TB, node *vdom.VNode, event string) any {
	t.Helper()
	h := node.Handler(event)
	if h == nil {
		t.Fatalf("<%s class=%q> has no %s handler", node.Tag, node.AttrString("class"), event)
	}
	return h
}

// Click invokes node's click handler.
func Click(t testing.TB, node *vdom.VNode) {
	t.Helper()
	fire(t, node, "click")
}

// MouseEnter invokes node's mouseenter handler.
func MouseEnter(t testing.TB, node *vdom.VNode) {
	t.Helper()
	fire(t, node, "mouseenter")
}

// MouseLeave invokes node's mouseleave handler.
func MouseLeave(t testing.TB, node *vdom.VNode) {
	t.Helper()
	fire(t, node, "mouseleave")
}

// Focus invokes node's focus handler.
func Focus(t testing.TB, node *vdom.VNode) {
	t.Helper()
	fire(t, node, "focus")
}

// Blur invokes node's blur handler.
func Blur(t testing.TB, node *vdom.VNode) {
	t.Helper()
	fire(t, node, "blur")
}

func fire(t testing.TB, node *vdom.VNode, event string) {
	t.Helper()
	fn, ok := handler(t, node, event).(func())
	if !ok {
		t.Fatalf("%s handler has unexpected signature %T", event, node.Handler(event))
	}
	fn()
}

// KeyDown invokes node's keydown handler with key.
func KeyDown(t testing.TB, node *vdom.VNode, key string) {
	t.Helper()
	fn, ok := handler(t, node, "keydown").(func(toastui.KeyboardEvent))
	if !ok {
		t.Fatalf("keydown handler has unexpected signature %T", node.Handler("keydown"))
	}
	fn(toastui.KeyboardEvent{Key: key})
}

// Swipe invokes node's touchstart and touchend handlers for a horizontal
// swipe from startX to endX.
func Swipe(t testing.TB, node *vdom.VNode, startX, endX float64) {
	t.Helper()
	start, ok := handler(t, node, "touchstart").(func(toastui.TouchEvent))
	if !ok {
		t.Fatalf("touchstart handler has unexpected signature %T", node.Handler("touchstart"))
	}
	end, ok := handler(t, node, "touchend").(func(toastui.TouchEvent))
	if !ok {
		t.Fatalf("touchend handler has unexpected signature %T", node.Handler("touchend"))
	}
	start(toastui.TouchEvent{Touches: []toastui.TouchPoint{{ClientX: startX}}})
	end(toastui.TouchEvent{ChangedTouches: []toastui.TouchPoint{{ClientX: endX}}})
}
