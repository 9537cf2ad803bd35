// Package render turns vdom trees into HTML for the toast container.
//
// The renderer escapes all text and attribute values, handles void and
// boolean attributes, and assigns a hydration ID (data-hid) to every
// element that carries event handlers. The handlers are collected into a
// registry keyed "hid_onevent" (e.g. "h3_onclick") so the websocket
// session can dispatch browser events back to Go code. Elements marked with
// vdom.HIDKey keep the same ID across renders; the rest are numbered in
// render order:
//
//	r := render.NewRenderer(render.RendererConfig{})
//	html, err := r.RenderToString(node)
//	handlers := r.Handlers()
//
// RenderPage wraps a tree in a complete HTML document with the inline
// thin client script.
//
// All text content is escaped. KindRaw nodes bypass escaping and should
// only carry trusted markup.
package render
