package cli

import (
	"fmt"
	"io"
	"sync"
)

type ToastLevel string

const (
	ToastInfo  ToastLevel = "info"
	ToastWarn  ToastLevel = "warn"
	ToastError ToastLevel = "error"
)

type Toast struct {
	Level   ToastLevel
	Message string
}

// Toaster queues short notifications until the shell next draws a prompt.
// Safe for concurrent use.
type Toaster struct {
	mu    sync.Mutex
	queue []Toast
}

func (t *Toaster) Push(level ToastLevel, format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.queue = append(t.queue, Toast{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (t *Toaster) Info(format string, args ...any)  { t.Push(ToastInfo, format, args...) }
func (t *Toaster) Warn(format string, args ...any)  { t.Push(ToastWarn, format, args...) }
func (t *Toaster) Error(format string, args ...any) { t.Push(ToastError, format, args...) }

// Drain writes and removes every queued toast, oldest first.
func (t *Toaster) Drain(w io.Writer) int {
	t.mu.Lock()
	q := t.queue
	t.queue = nil
	t.mu.Unlock()

	for _, toast := range q {
		fmt.Fprintf(w, "[%s] %s\n", toast.Level, toast.Message)
	}
	return len(q)
}
