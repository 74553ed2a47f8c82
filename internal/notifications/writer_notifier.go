package notifications

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// WriterNotifier prints notices as single lines, for terminals.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Notify(_ context.Context, notice Notice) {
	mark := "ok"
	if notice.Level == LevelError {
		mark = "error"
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if notice.Description != "" {
		fmt.Fprintf(n.w, "[%s] %s: %s\n", mark, notice.Title, notice.Description)
		return
	}
	fmt.Fprintf(n.w, "[%s] %s\n", mark, notice.Title)
}
