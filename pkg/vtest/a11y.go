package vtest

import (
	"testing"

	"github.com/vango-dev/toastkit/pkg/vdom"
)

// landmarkRoles are the ARIA landmark roles.
var landmarkRoles = map[string]bool{
	"banner":        true,
	"complementary": true,
	"contentinfo":   true,
	"form":          true,
	"main":          true,
	"navigation":    true,
	"region":        true,
	"search":        true,
}

// landmarkTags are elements that are landmarks without an explicit role.
// section only becomes a region when it has an accessible name.
var landmarkTags = map[string]bool{
	"aside":  true,
	"footer": true,
	"header": true,
	"main":   true,
	"nav":    true,
}

// Landmarks returns every landmark element in node.
func Landmarks(node *vdom.VNode) []*vdom.VNode {
	return vdom.FindAll(node, func(n *vdom.VNode) bool {
		if landmarkRoles[n.AttrString("role")] {
			return true
		}
		if landmarkTags[n.Tag] {
			return true
		}
		return n.Tag == "section" && (n.AttrString("aria-label") != "" || n.AttrString("aria-labelledby") != "")
	})
}

// LiveRegions returns every element with an aria-live attribute.
func LiveRegions(node *vdom.VNode) []*vdom.VNode {
	return vdom.FindAll(node, func(n *vdom.VNode) bool { return n.AttrString("aria-live") != "" })
}

// ExpectRoleCount asserts how many elements carry role.
func ExpectRoleCount(t testing.TB, node *vdom.VNode, role string, want int) {
	t.Helper()
	if got := len(vdom.ByRole(node, role)); got != want {
		t.Errorf("role=%q count = %d, want %d in:\n%s", role, got, want, truncate(RenderToString(node), 500))
	}
}

// ExpectNoLandmarks asserts that node exposes no landmark to assistive
// technology.
func ExpectNoLandmarks(t testing.TB, node *vdom.VNode) {
	t.Helper()
	if found := Landmarks(node); len(found) > 0 {
		t.Errorf("expected no landmarks, found %d in:\n%s", len(found), truncate(RenderToString(node), 500))
	}
}

// ExpectLive asserts that node itself is a live region with politeness.
func ExpectLive(t testing.TB, node *vdom.VNode, politeness string) {
	t.Helper()
	if got := node.AttrString("aria-live"); got != politeness {
		t.Errorf("aria-live = %q, want %q", got, politeness)
	}
}
