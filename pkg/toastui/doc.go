// Package toastui renders the toast store as an accessible element tree and
// turns browser input back into store operations.
//
// Renderer builds one vdom tree per toast from a toast.Toast and its
// ToastView. It binds no behaviour of its own: every handler is a
// Callbacks field supplied by the Container, which wires them to the pure
// Handle* translation functions in handlers.go.
//
// Container owns per-toast view state (expanded details, touch start, copy
// feedback), the viewport width and the last batch announcement, and
// renders the whole stack:
//
//	c := toastui.NewContainer(st, toastui.Config{Position: toastui.TopRight})
//	defer c.Close()
//	c.OnChange(push)
//	tree := c.Render()
package toastui
