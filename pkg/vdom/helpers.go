package vdom

import "fmt"

// Text creates an escaped text node.
func Text(content string) *VNode {
	return &VNode{Kind: KindText, Text: content}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Raw creates a node whose HTML is written unescaped. Only use it for
// markup the server produced itself.
func Raw(html string) *VNode {
	return &VNode{Kind: KindRaw, Text: html}
}

// Fragment groups children without a wrapper element. It accepts the same
// child arguments as the element constructors; attributes and handlers are
// ignored.
func Fragment(children ...any) *VNode {
	node := &VNode{Kind: KindFragment}
	for _, child := range children {
		node.appendChild(child)
	}
	return node
}

// appendChild adds a child argument, skipping nils. It reports whether arg
// was a child form.
func (v *VNode) appendChild(arg any) bool {
	switch c := arg.(type) {
	case *VNode:
		if c != nil {
			v.Children = append(v.Children, c)
		}
	case []*VNode:
		for _, n := range c {
			if n != nil {
				v.Children = append(v.Children, n)
			}
		}
	case string:
		v.Children = append(v.Children, Text(c))
	case Component:
		v.Children = append(v.Children, &VNode{Kind: KindComponent, Comp: c})
	default:
		return false
	}
	return true
}

// If returns node when condition holds, nil otherwise.
func If(condition bool, node *VNode) *VNode {
	if condition {
		return node
	}
	return nil
}

// When is If with a lazily built node.
func When(condition bool, fn func() *VNode) *VNode {
	if condition {
		return fn()
	}
	return nil
}

// Key sets the node key. Toast elements are keyed by toast id.
func Key(key any) Attr {
	return attr("key", fmt.Sprint(key))
}

// HIDKeyProp holds the stable hydration ID requested by HIDKey.
const HIDKeyProp = "_hid"

// HIDKey asks the renderer to use key as the element's hydration ID so that
// events sent against an older render still reach the same element, or no
// element at all once it is gone.
func HIDKey(key string) Attr {
	return attr(HIDKeyProp, key)
}
