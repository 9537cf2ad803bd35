package vdom

import "strings"

// VKind tells the renderer how to write a node.
type VKind uint8

const (
	KindElement   VKind = iota
	KindText            // escaped text
	KindFragment        // children without a wrapper
	KindComponent       // rendered lazily through Comp
	KindRaw             // unescaped HTML
)

var kindNames = [...]string{
	KindElement:   "Element",
	KindText:      "Text",
	KindFragment:  "Fragment",
	KindComponent: "Component",
	KindRaw:       "Raw",
}

func (k VKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// VNode is one node of a rendered toast tree.
type VNode struct {
	Kind     VKind
	Tag      string
	Props    Props
	Children []*VNode
	Key      string
	Text     string    // KindText and KindRaw
	Comp     Component // KindComponent

	// HID is the hydration id the renderer assigns to interactive elements.
	// Browser events name their target by it.
	HID string
}

// Props maps attribute names to values and "on<event>" keys to handlers.
type Props map[string]any

// IsInteractive reports whether the node binds at least one handler and so
// needs a HID.
func (v *VNode) IsInteractive() bool {
	if v == nil || v.Kind != KindElement {
		return false
	}
	for key := range v.Props {
		if IsHandlerKey(key) {
			return true
		}
	}
	return false
}

// IsHandlerKey reports whether a prop key names an event handler.
func IsHandlerKey(key string) bool {
	return len(key) > 2 && strings.HasPrefix(key, "on")
}

// Attr is a single attribute argument. An Attr with an empty Key is
// skipped, which lets AttrIf and ClassIf return a zero Attr.
type Attr struct {
	Key   string
	Value any
}

// EventHandler binds Handler to the "on<event>" prop.
type EventHandler struct {
	Event   string
	Handler any
}

// Component renders to a VNode when the tree is written or walked.
type Component interface {
	Render() *VNode
}

// Func adapts a render function to a Component.
func Func(render func() *VNode) Component {
	return funcComponent(render)
}

type funcComponent func() *VNode

func (f funcComponent) Render() *VNode { return f() }
