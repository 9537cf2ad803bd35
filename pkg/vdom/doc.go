// Package vdom provides the virtual element tree toast views are built from.
//
// A VNode tree is an in-memory description of the markup: elements,
// text, fragments and components. Props hold both attributes and event
// handlers; keys starting with "on" are handlers. The tree is rendered to
// HTML by package render and queried directly by tests and by the
// accessibility scan in package vtest.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("toast"), Role("status"), AriaLive("polite"),
//	    Strong(Text("Saved")),
//	    Button(Type("button"), OnClick(dismiss), Text("Close")),
//	)
//
// # Queries
//
// Walk, Find, FindAll and ByRole traverse a tree without rendering it.
// TextContent concatenates the text a screen reader would reach.
package vdom
