package server

import (
	"context"

	"github.com/google/uuid"
	"github.com/vango-dev/toastkit/internal/errors"
)

type clipboardResult struct {
	ok  bool
	err string
}

// browserClipboard writes to the clipboard of the session's browser. The
// request travels as a clipboard frame; the browser answers with a
// clipboard-result frame carrying the same id.
type browserClipboard struct {
	session *Session
}

// Write implements clipboard.Writer.
func (b browserClipboard) Write(ctx context.Context, text string) error {
	s := b.session
	id := uuid.NewString()
	ch := make(chan clipboardResult, 1)

	s.pendingMu.Lock()
	s.pending[id] = ch
	s.pendingMu.Unlock()
	defer func() {
		s.pendingMu.Lock()
		delete(s.pending, id)
		s.pendingMu.Unlock()
	}()

	if err := s.writeFrame(clipboardFrame{Type: frameClipboard, ID: id, Text: text}); err != nil {
		return errors.New(errors.CodeClientGone).Wrap(err)
	}

	select {
	case res := <-ch:
		if !res.ok {
			return errors.New(errors.CodeClipboardWrite).WithDetail(res.err)
		}
		return nil
	case <-ctx.Done():
		return errors.New(errors.CodeClipboardWrite).Wrap(ctx.Err())
	case <-s.done:
		return errors.New(errors.CodeClientGone)
	}
}

// resolveClipboard delivers a browser answer to the waiting Write. Unknown
// ids are answers that arrived after their write gave up.
func (s *Session) resolveClipboard(id string, res clipboardResult) {
	s.pendingMu.Lock()
	ch, ok := s.pending[id]
	s.pendingMu.Unlock()
	if !ok {
		s.logger.Debug().Str("clipboard_id", id).Msg("late clipboard result")
		return
	}
	select {
	case ch <- res:
	default:
	}
}
