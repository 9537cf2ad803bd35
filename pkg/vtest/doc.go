// Package vtest provides testing helpers for toast element trees.
//
// # Render Assertions
//
// Assert on rendered HTML output:
//
//	vtest.ExpectContains(t, node, "Saved")
//	vtest.ExpectAttribute(t, node, "role", "alert")
//
// # Accessibility Assertions
//
// Assert on the tree itself, the way a screen reader would see it:
//
//	vtest.ExpectRoleCount(t, node, "status", 2)
//	vtest.ExpectNoLandmarks(t, node)
//	vtest.ExpectLive(t, node, "polite")
//
// # Triggering Handlers
//
// Invoke the handler bound to an element without a browser:
//
//	vtest.Click(t, vtest.MustFind(t, node, vtest.ByClass("toast-close")))
//	vtest.KeyDown(t, toastNode, "Escape")
package vtest
