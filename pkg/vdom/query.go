package vdom

import (
	"fmt"
	"strings"
)

// Walk visits node and its descendants depth-first in document order.
// Component nodes are rendered and their output visited. Returning false
// from fn stops the walk below that node.
func Walk(node *VNode, fn func(*VNode) bool) {
	if node == nil {
		return
	}
	if node.Kind == KindComponent {
		if node.Comp != nil {
			Walk(node.Comp.Render(), fn)
		}
		return
	}
	if !fn(node) {
		return
	}
	for _, child := range node.Children {
		Walk(child, fn)
	}
}

// FindAll returns every element below (and including) node that matches.
func FindAll(node *VNode, match func(*VNode) bool) []*VNode {
	var out []*VNode
	Walk(node, func(n *VNode) bool {
		if n.Kind == KindElement && match(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Find returns the first element that matches, or nil.
func Find(node *VNode, match func(*VNode) bool) *VNode {
	found := FindAll(node, match)
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

// ByRole returns every element with the given role attribute.
func ByRole(node *VNode, role string) []*VNode {
	return FindAll(node, func(n *VNode) bool { return n.AttrString("role") == role })
}

// ByClass returns every element whose class list contains class.
func ByClass(node *VNode, class string) []*VNode {
	return FindAll(node, func(n *VNode) bool {
		for _, c := range strings.Fields(n.AttrString("class")) {
			if c == class {
				return true
			}
		}
		return false
	})
}

// AttrString returns an attribute rendered as a string, or "" when unset.
func (v *VNode) AttrString(key string) string {
	if v == nil || v.Props == nil {
		return ""
	}
	val, ok := v.Props[key]
	if !ok || val == nil {
		return ""
	}
	switch x := val.(type) {
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	case float64:
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// Handler returns the handler bound to event ("click", "keydown", ...).
func (v *VNode) Handler(event string) any {
	if v == nil || v.Props == nil {
		return nil
	}
	return v.Props["on"+event]
}

// TextContent concatenates every text node below node.
func TextContent(node *VNode) string {
	var b strings.Builder
	Walk(node, func(n *VNode) bool {
		if n.Kind == KindText {
			b.WriteString(n.Text)
		}
		return true
	})
	return b.String()
}
