// Package clipboard abstracts the clipboard a copyable toast writes to.
//
// The websocket session supplies a Writer that round-trips the write to
// the connected browser. System writes to the local clipboard of the
// process and backs the CLI.
package clipboard

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/vango-dev/toastkit/internal/errors"
)

// Writer writes text to a clipboard. Write must return once ctx is done.
type Writer interface {
	Write(ctx context.Context, text string) error
}

// Func adapts a function to a Writer.
type Func func(ctx context.Context, text string) error

// Write implements Writer.
func (f Func) Write(ctx context.Context, text string) error {
	return f(ctx, text)
}

// System returns a Writer backed by the operating system clipboard.
func System() Writer {
	return Func(writeSystem)
}

// Unavailable is a Writer that always fails. It is used when no browser
// is attached and the host has no clipboard.
var Unavailable Writer = Func(func(context.Context, string) error {
	return errors.New(errors.CodeClipboardWrite).WithDetail("no clipboard available")
})

func writeSystem(ctx context.Context, text string) error {
	if clipboard.Unsupported {
		return errors.New(errors.CodeClipboardWrite).WithDetail("system clipboard unsupported")
	}

	done := make(chan error, 1)
	go func() {
		done <- clipboard.WriteAll(text)
	}()

	select {
	case err := <-done:
		if err != nil {
			return errors.FromError(fmt.Errorf("system clipboard: %w", err), errors.CodeClipboardWrite)
		}
		return nil
	case <-ctx.Done():
		return errors.New(errors.CodeClipboardWrite).Wrap(ctx.Err())
	}
}
