package toastui

import (
	"fmt"

	"github.com/vango-dev/toastkit/internal/errors"
	"github.com/vango-dev/toastkit/pkg/toast"
	"github.com/vango-dev/toastkit/pkg/vdom"
)

// Effect produces cosmetic attributes for a toast, such as its enter
// animation. A failing or panicking Effect is skipped.
type Effect func(t toast.Toast) ([]vdom.Attr, error)

// EnterAnimation tags toasts with the named enter animation.
func EnterAnimation(name string) Effect {
	return func(toast.Toast) ([]vdom.Attr, error) {
		if name == "" {
			return nil, fmt.Errorf("empty animation name")
		}
		return []vdom.Attr{vdom.Data("enter", name)}, nil
	}
}

// runEffect calls e, converting a panic into an error.
func runEffect(e Effect, t toast.Toast) (attrs []vdom.Attr, err error) {
	defer func() {
		if r := recover(); r != nil {
			attrs = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	attrs, err = e(t)
	if err != nil {
		return nil, errors.FromError(err, errors.CodeEffectFailed)
	}
	return attrs, nil
}

// Recorder counts failures the renderer absorbs. middleware.Metrics
// implements it.
type Recorder interface {
	ClipboardFailed()
	EffectFailed()
}

type nopRecorder struct{}

func (nopRecorder) ClipboardFailed() {}
func (nopRecorder) EffectFailed()    {}
