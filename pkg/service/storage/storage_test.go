package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
)

type fakeWriter struct {
	limit   int
	written []byte
	closed  bool
	// aborted records whether abort ran before Close
	aborted bool
	ctx     context.Context
}

var errShortWrite = errors.New("connection reset")

func (w *fakeWriter) Write(p []byte) (int, error) {
	if w.limit >= 0 && len(w.written)+len(p) > w.limit {
		n := w.limit - len(w.written)
		w.written = append(w.written, p[:n]...)
		return n, errShortWrite
	}
	w.written = append(w.written, p...)
	return len(p), nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	w.aborted = w.ctx.Err() != nil
	return w.ctx.Err()
}

func TestWriteObject(t *testing.T) {
	data := []byte("report number,risk level\nHZD-20240315-ABC123,High\n")

	t.Run("commits on success", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		w := &fakeWriter{limit: -1, ctx: ctx}

		gt.NoError(t, writeObject(w, data, cancel))
		gt.Bool(t, w.closed).True()
		gt.Bool(t, w.aborted).False()
		gt.Value(t, string(w.written)).Equal(string(data))
	})

	t.Run("aborts before close on write failure", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		w := &fakeWriter{limit: 10, ctx: ctx}

		err := writeObject(w, data, cancel)
		gt.Error(t, err).Is(errShortWrite)
		gt.Bool(t, w.closed).True()
		gt.Bool(t, w.aborted).True()
	})
}

func TestObjectName(t *testing.T) {
	gt.Value(t, (&Client{}).objectName("a.xlsx")).Equal("a.xlsx")
	gt.Value(t, (&Client{prefix: "exports/"}).objectName("a.xlsx")).Equal("exports/a.xlsx")
}
