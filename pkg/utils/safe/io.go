package safe

import (
	"context"
	"io"

	"github.com/secmon-lab/avsafe/pkg/utils/logging"
)

// Close closes c and logs a failure instead of returning it. Nil is ignored.
func Close(ctx context.Context, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.From(ctx).Warn("close failed", "error", err)
	}
}

// Write writes data to w for response bodies where the client may already be
// gone. Short writes and errors are logged.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	n, err := w.Write(data)
	if err != nil {
		logging.From(ctx).Warn("write failed", "error", err, "written", n, "size", len(data))
	}
}
