// Package errors provides coded, structured errors for toastkit.
//
// Every error that crosses a package boundary carries a short code
// (e.g. "T001") registered in this package. The code maps to a category,
// a one-line message and a longer explanation, so that HTTP handlers can
// return stable machine-readable codes and the CLI can print a helpful
// hint.
//
// # Error Categories
//
//   - validation: a producer handed the store a toast it cannot accept
//   - config: the configuration file is missing, malformed or out of range
//   - transport: HTTP / WebSocket delivery failures
//   - runtime: recoverable internal faults (clipboard, effects, actions)
//
// # Usage
//
//	err := errors.New(errors.CodeEmptyMessage).
//	    WithSuggestion("Pass a non-empty message to toast.Success")
//
//	if errors.HasCode(err, errors.CodeEmptyMessage) {
//	    // reject with 422
//	}
//
//	fmt.Println(err.Format())
package errors
